package connector

import (
	"strings"
)

// writeVerbs are the statement keywords the safety gate refuses outside
// write mode. Matching happens on the statement with string literals and
// comments stripped, so SELECT 'DROP TABLE x' stays read-only.
var writeVerbs = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "TRUNCATE",
	"MERGE", "GRANT", "REVOKE", "EXEC", "EXECUTE", "CALL",
}

// readOnlyHeads are the keywords a read-only statement may start with.
var readOnlyHeads = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
}

// IsReadOnlyQuery reports whether sql contains no data-modification or
// schema-modification verbs. Shared by every connector; the Executor
// consults it before dispatch unless the caller opted into write mode.
func IsReadOnlyQuery(sql string) bool {
	bare := stripLiteralsAndComments(sql)
	fields := strings.Fields(strings.ToUpper(bare))
	if len(fields) == 0 {
		return false
	}
	if !readOnlyHeads[fields[0]] {
		return false
	}
	for _, f := range fields {
		word := strings.Trim(f, "();,")
		for _, verb := range writeVerbs {
			if word == verb {
				return false
			}
		}
	}
	return true
}

// stripLiteralsAndComments blanks out single-quoted strings, line comments
// and block comments so keyword scanning cannot be fooled by quoted text.
func stripLiteralsAndComments(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	for i := 0; i < len(sql); {
		switch {
		case sql[i] == '\'':
			// String literal; doubled quotes escape.
			j := i + 1
			for j < len(sql) {
				if sql[j] == '\'' {
					if j+1 < len(sql) && sql[j+1] == '\'' {
						j += 2
						continue
					}
					break
				}
				j++
			}
			b.WriteByte(' ')
			i = min(j+1, len(sql))
		case strings.HasPrefix(sql[i:], "--"):
			j := strings.IndexByte(sql[i:], '\n')
			if j < 0 {
				i = len(sql)
			} else {
				i += j
			}
		case strings.HasPrefix(sql[i:], "/*"):
			j := strings.Index(sql[i:], "*/")
			b.WriteByte(' ')
			if j < 0 {
				i = len(sql)
			} else {
				i += j + 2
			}
		default:
			b.WriteByte(sql[i])
			i++
		}
	}
	return b.String()
}

// ValidateStatement is the lexical validation shared by connectors: the
// statement must be non-empty, single, and balanced. Backend-specific
// checks layer on top in each connector's ValidateQuery.
func ValidateStatement(sql string) (bool, string) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return false, "statement is empty"
	}

	if unterminatedLiteral(sql) {
		return false, "unterminated string literal"
	}

	bare := stripLiteralsAndComments(sql)
	depth := 0
	for _, r := range bare {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false, "unbalanced parentheses"
			}
		}
	}
	if depth != 0 {
		return false, "unbalanced parentheses"
	}
	if rest := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(bare), ";")); strings.Contains(rest, ";") {
		return false, "multiple statements are not allowed"
	}
	return true, ""
}

// unterminatedLiteral reports whether sql ends inside a single-quoted
// string (doubled quotes escape).
func unterminatedLiteral(sql string) bool {
	inStr := false
	for i := 0; i < len(sql); i++ {
		if sql[i] != '\'' {
			continue
		}
		if inStr && i+1 < len(sql) && sql[i+1] == '\'' {
			i++
			continue
		}
		inStr = !inStr
	}
	return inStr
}
