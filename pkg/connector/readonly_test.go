package connector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReadOnlyQuery(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		readOnly bool
	}{
		{"plain select", "SELECT * FROM users", true},
		{"lowercase select", "select id from orders where total > 10", true},
		{"cte", "WITH recent AS (SELECT * FROM orders) SELECT * FROM recent", true},
		{"explain", "EXPLAIN SELECT * FROM users", true},
		{"insert", "INSERT INTO users (name) VALUES ('a')", false},
		{"update", "UPDATE users SET name = 'b' WHERE id = 1", false},
		{"delete", "DELETE FROM users", false},
		{"drop", "DROP TABLE users", false},
		{"truncate", "TRUNCATE TABLE users", false},
		{"create", "CREATE TABLE t (id INT)", false},
		{"exec", "EXEC sp_help", false},
		{"call", "CALL refresh_stats()", false},
		{"merge", "MERGE INTO t USING s ON t.id = s.id WHEN MATCHED THEN UPDATE SET x = 1", false},
		{"write verb inside string literal", "SELECT 'DROP TABLE users' AS threat FROM DUMMY", true},
		{"write verb inside comment", "SELECT 1 -- cleanup job will DELETE old rows\nFROM DUMMY", true},
		{"select wrapping a delete", "SELECT * FROM t; DELETE FROM t", false},
		{"empty", "", false},
		{"whitespace only", "   \n\t", false},
		{"starts with write verb", "UPDATE users SET a = (SELECT 1)", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.readOnly, IsReadOnlyQuery(tt.sql))
		})
	}
}

func TestValidateStatement(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		ok     bool
		reason string
	}{
		{"valid", "SELECT * FROM users WHERE id = 1", true, ""},
		{"valid with trailing semicolon", "SELECT 1 FROM DUMMY;", true, ""},
		{"valid with literal semicolon", "SELECT ';' FROM DUMMY", true, ""},
		{"empty", "   ", false, "empty"},
		{"unterminated literal", "SELECT 'oops FROM t", false, "unterminated"},
		{"escaped quotes are fine", "SELECT 'it''s fine' FROM DUMMY", true, ""},
		{"unbalanced open paren", "SELECT COUNT( FROM t", false, "parentheses"},
		{"unbalanced close paren", "SELECT COUNT(id)) FROM t", false, "parentheses"},
		{"multiple statements", "SELECT 1; SELECT 2", false, "multiple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateStatement(tt.sql)
			assert.Equal(t, tt.ok, ok)
			if tt.reason != "" {
				assert.Contains(t, reason, tt.reason)
			}
		})
	}
}
