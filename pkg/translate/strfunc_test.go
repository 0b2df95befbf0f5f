package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteCharIndex(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "two args swap",
			query: "SELECT CHARINDEX('find', ProductName) FROM Products",
			want:  "SELECT LOCATE(ProductName, 'find') FROM Products",
		},
		{
			name:  "three args keep start position",
			query: "SELECT CHARINDEX('a', Name, 3) FROM t",
			want:  "SELECT LOCATE(Name, 'a', 3) FROM t",
		},
		{
			name:  "comma inside string literal",
			query: "SELECT CHARINDEX('a,b', Name) FROM t",
			want:  "SELECT LOCATE(Name, 'a,b') FROM t",
		},
		{
			name:  "nested call argument",
			query: "SELECT CHARINDEX('x', UPPER(Name)) FROM t",
			want:  "SELECT LOCATE(UPPER(Name), 'x') FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteCharIndex(tt.query))
		})
	}
}

func TestRewriteStuff(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "literal bounds folded",
			query: "SELECT STUFF(Phone, 1, 3, '+49')",
			want:  "SELECT CONCAT(SUBSTRING(Phone, 1, 0), '+49', SUBSTRING(Phone, 4, LENGTH(Phone)))",
		},
		{
			name:  "symbolic bounds kept",
			query: "SELECT STUFF(Phone, @p, @n, '-')",
			want:  "SELECT CONCAT(SUBSTRING(Phone, 1, @p - 1), '-', SUBSTRING(Phone, @p + @n, LENGTH(Phone)))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteStuff(tt.query))
		})
	}
}

func TestRewriteIsNull(t *testing.T) {
	assert.Equal(t,
		"SELECT IFNULL(a, 0), COALESCE(b, 1) FROM t",
		rewriteIsNull("SELECT ISNULL(a, 0), COALESCE(b, 1) FROM t"),
		"ISNULL renames, COALESCE is dialect-neutral")
}

func TestScanArgs_UnbalancedParens(t *testing.T) {
	q := "SELECT CHARINDEX('a', Name FROM t"
	assert.Equal(t, q, rewriteCharIndex(q), "incomplete call passes through")
}
