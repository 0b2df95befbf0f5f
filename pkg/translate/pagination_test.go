package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteTop(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "top with order by",
			query: "SELECT TOP 10 * FROM Products ORDER BY Price DESC",
			want:  "SELECT * FROM Products ORDER BY Price DESC LIMIT 10",
		},
		{
			name:  "top with parentheses",
			query: "SELECT TOP (25) Name FROM Products",
			want:  "SELECT Name FROM Products LIMIT 25",
		},
		{
			name:  "top distinct",
			query: "SELECT DISTINCT TOP 5 Region FROM Customers",
			want:  "SELECT DISTINCT Region FROM Customers LIMIT 5",
		},
		{
			name:  "trailing semicolon stays terminal",
			query: "SELECT TOP 3 * FROM t;",
			want:  "SELECT * FROM t LIMIT 3;",
		},
		{
			name:  "no top",
			query: "SELECT * FROM Products",
			want:  "SELECT * FROM Products",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteTop(tt.query))
		})
	}
}

func TestRewriteOffsetFetch(t *testing.T) {
	got := rewriteOffsetFetch("SELECT * FROM t ORDER BY id OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY")
	assert.Equal(t, "SELECT * FROM t ORDER BY id LIMIT 10 OFFSET 20", got)

	// FIRST and singular ROW are accepted spellings.
	got = rewriteOffsetFetch("SELECT * FROM t ORDER BY id OFFSET 1 ROW FETCH FIRST 1 ROW ONLY")
	assert.Equal(t, "SELECT * FROM t ORDER BY id LIMIT 1 OFFSET 1", got)
}

func TestRewriteRowNumber(t *testing.T) {
	query := "SELECT * FROM (SELECT ProductName, Price, ROW_NUMBER() OVER (ORDER BY Price DESC) AS RowNum FROM Products) t WHERE RowNum BETWEEN 11 AND 20"

	got := rewriteRowNumber(query)

	// The wrapper collapses to a flat statement: inner column list preserved
	// verbatim, window ORDER BY reused, bounds turned into LIMIT/OFFSET.
	assert.Equal(t, "SELECT ProductName, Price FROM Products ORDER BY Price DESC LIMIT 10 OFFSET 10", got)
}

func TestRewriteRowNumber_NoAlias(t *testing.T) {
	query := "SELECT * FROM (SELECT Id, ROW_NUMBER() OVER (ORDER BY Id) AS rn FROM Items) WHERE rn BETWEEN 1 AND 5"

	got := rewriteRowNumber(query)

	assert.Equal(t, "SELECT Id FROM Items ORDER BY Id LIMIT 5 OFFSET 0", got)
}

func TestRewriteRowNumber_MismatchedAlias(t *testing.T) {
	// Outer WHERE references a different column than the window alias; the
	// matcher must not guess.
	query := "SELECT * FROM (SELECT Id, ROW_NUMBER() OVER (ORDER BY Id) AS rn FROM Items) t WHERE other BETWEEN 1 AND 5"
	assert.Equal(t, query, rewriteRowNumber(query))
}

func TestRewriteRowNumber_InvalidBounds(t *testing.T) {
	query := "SELECT * FROM (SELECT Id, ROW_NUMBER() OVER (ORDER BY Id) AS rn FROM Items) t WHERE rn BETWEEN 10 AND 5"
	assert.Equal(t, query, rewriteRowNumber(query))
}

func TestRewriteLimit(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "limit offset",
			query: "SELECT * FROM t ORDER BY id LIMIT 10 OFFSET 30",
			want:  "SELECT * FROM t ORDER BY id OFFSET 30 ROWS FETCH NEXT 10 ROWS ONLY",
		},
		{
			name:  "bare limit gets offset zero",
			query: "SELECT * FROM t LIMIT 7",
			want:  "SELECT * FROM t OFFSET 0 ROWS FETCH NEXT 7 ROWS ONLY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteLimit(tt.query))
		})
	}
}
