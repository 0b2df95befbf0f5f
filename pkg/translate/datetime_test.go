package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteGetDate(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "simple",
			query: "SELECT GETDATE()",
			want:  "SELECT CURRENT_TIMESTAMP",
		},
		{
			name:  "case insensitive with spaces",
			query: "select getdate ( ) as now",
			want:  "select CURRENT_TIMESTAMP as now",
		},
		{
			name:  "multiple occurrences",
			query: "SELECT GETDATE(), GETDATE()",
			want:  "SELECT CURRENT_TIMESTAMP, CURRENT_TIMESTAMP",
		},
		{
			name:  "not part of longer identifier",
			query: "SELECT MY_GETDATE() FROM t",
			want:  "SELECT MY_GETDATE() FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteGetDate(tt.query))
		})
	}
}

func TestRewriteDateAdd(t *testing.T) {
	got := rewriteDateAdd("SELECT DATEADD(day, 7, OrderDate) FROM Orders")

	// The unit drives exactly one nesting level through the repeated guard.
	assert.Contains(t, got, "ADD_SECONDS(ADD_DAYS(ADD_MONTHS(OrderDate,")
	assert.Contains(t, got, "WHEN 'day' IN ('day', 'dd', 'd') THEN 7")
	assert.Contains(t, got, "ELSE 0 END")
	assert.NotContains(t, got, "DATEADD")
}

func TestRewriteDateAdd_QuotedUnit(t *testing.T) {
	got := rewriteDateAdd("SELECT DATEADD('month', 3, HireDate) FROM Employees")

	assert.Contains(t, got, "WHEN 'month' IN ('month', 'mm', 'm') THEN 3")
	assert.NotContains(t, got, "''month''")
}

func TestRewriteDateAdd_ScaledUnits(t *testing.T) {
	got := rewriteDateAdd("SELECT DATEADD(hour, 2, StartTime) FROM Shifts")

	// Hours land on the seconds level scaled by 3600.
	assert.Contains(t, got, "WHEN 'hour' IN ('hour', 'hh') THEN (2) * 3600")
}

func TestRewriteDateAdd_WrongArity(t *testing.T) {
	q := "SELECT DATEADD(day, 7) FROM Orders"
	assert.Equal(t, q, rewriteDateAdd(q), "unmatched arity passes through")
}

func TestRewriteDateDiff(t *testing.T) {
	got := rewriteDateDiff("SELECT DATEDIFF(day, OrderDate, ShipDate) FROM Orders")

	// end/start order is swapped for the target's subtraction direction.
	assert.Contains(t, got, "WHEN 'day' IN ('day', 'dd', 'd') THEN DAYS_BETWEEN(ShipDate, OrderDate)")
	assert.Contains(t, got, "ELSE DAYS_BETWEEN(ShipDate, OrderDate) END")
	assert.NotContains(t, got, "DATEDIFF")
}

func TestRewriteDateDiff_NestedArguments(t *testing.T) {
	got := rewriteDateDiff("SELECT DATEDIFF(day, MIN(OrderDate), MAX(ShipDate)) FROM Orders")

	assert.Contains(t, got, "DAYS_BETWEEN(MAX(ShipDate), MIN(OrderDate))")
}

func TestRewriteAddFunctions(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT ADD_DAYS(d, 1)", "SELECT DATEADD(day, 1, d)"},
		{"SELECT ADD_MONTHS(d, 2)", "SELECT DATEADD(month, 2, d)"},
		{"SELECT ADD_SECONDS(d, 30)", "SELECT DATEADD(second, 30, d)"},
		{"SELECT ADD_YEARS(d, 1)", "SELECT DATEADD(year, 1, d)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rewriteAddFunctions(tt.query))
	}
}
