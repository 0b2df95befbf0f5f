package translate

import (
	"strings"
	"unicode"
)

// funcCall is one occurrence of name(arg, arg, ...) located in a query.
// start is the index of the function name, end is the index just past the
// closing parenthesis, and args holds the top-level arguments verbatim.
type funcCall struct {
	start int
	end   int
	args  []string
}

// findCall locates the first case-insensitive call of name at or after from.
// Arguments are split on top-level commas only: nested parentheses and
// single-quoted string literals are scanned through, which is what lets the
// rewriter handle CHARINDEX('a,b', col) without a SQL parser. Returns false
// when no complete call is found.
func findCall(query, name string, from int) (funcCall, bool) {
	upper := strings.ToUpper(query)
	target := strings.ToUpper(name)

	for i := from; i < len(upper); {
		idx := strings.Index(upper[i:], target)
		if idx < 0 {
			return funcCall{}, false
		}
		start := i + idx
		i = start + 1

		// Word boundary: GETDATE must not match inside AGGREGATE_DATE.
		if start > 0 && isWordChar(rune(query[start-1])) {
			continue
		}
		pos := start + len(target)
		for pos < len(query) && unicode.IsSpace(rune(query[pos])) {
			pos++
		}
		if pos >= len(query) || query[pos] != '(' {
			continue
		}

		args, end, ok := scanArgs(query, pos)
		if !ok {
			return funcCall{}, false
		}
		return funcCall{start: start, end: end, args: args}, true
	}
	return funcCall{}, false
}

// scanArgs scans a parenthesized argument list starting at the opening
// parenthesis. Returns the trimmed top-level arguments and the index just
// past the matching close.
func scanArgs(query string, open int) (args []string, end int, ok bool) {
	depth := 0
	inString := false
	argStart := open + 1

	for i := open; i < len(query); i++ {
		c := query[i]
		if inString {
			if c == '\'' {
				// Doubled quote is an escaped quote inside the literal.
				if i+1 < len(query) && query[i+1] == '\'' {
					i++
					continue
				}
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				last := strings.TrimSpace(query[argStart:i])
				if last != "" || len(args) > 0 {
					args = append(args, last)
				}
				return args, i + 1, true
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(query[argStart:i]))
				argStart = i + 1
			}
		}
	}
	return nil, 0, false
}

// rewriteCalls replaces every call of name in query using rewrite. When
// rewrite returns ok=false the call is left untouched (pass-through for
// shapes the rule does not understand).
func rewriteCalls(query, name string, rewrite func(args []string) (string, bool)) string {
	var out strings.Builder
	pos := 0
	for {
		call, found := findCall(query, name, pos)
		if !found {
			out.WriteString(query[pos:])
			return out.String()
		}
		replacement, ok := rewrite(call.args)
		out.WriteString(query[pos:call.start])
		if ok {
			out.WriteString(replacement)
		} else {
			out.WriteString(query[call.start:call.end])
		}
		pos = call.end
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// unquoteIdent strips single quotes from a unit argument so both
// DATEADD(day, ...) and DATEADD('day', ...) normalize to day.
func unquoteIdent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return strings.ToLower(s)
}
