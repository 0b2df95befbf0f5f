package translate

import (
	"fmt"
	"regexp"
	"strconv"
)

// rewriteCharIndex converts CHARINDEX(needle, haystack[, start]) to
// LOCATE(haystack, needle[, start]). The target's LOCATE takes the haystack
// first, so the first two arguments swap.
func rewriteCharIndex(query string) string {
	return rewriteCalls(query, "CHARINDEX", func(args []string) (string, bool) {
		switch len(args) {
		case 2:
			return fmt.Sprintf("LOCATE(%s, %s)", args[1], args[0]), true
		case 3:
			return fmt.Sprintf("LOCATE(%s, %s, %s)", args[1], args[0], args[2]), true
		default:
			return "", false
		}
	})
}

// rewriteLocate is the reverse direction: LOCATE(haystack, needle[, start])
// back to CHARINDEX(needle, haystack[, start]).
func rewriteLocate(query string) string {
	return rewriteCalls(query, "LOCATE", func(args []string) (string, bool) {
		switch len(args) {
		case 2:
			return fmt.Sprintf("CHARINDEX(%s, %s)", args[1], args[0]), true
		case 3:
			return fmt.Sprintf("CHARINDEX(%s, %s, %s)", args[1], args[0], args[2]), true
		default:
			return "", false
		}
	})
}

// rewriteStuff decomposes STUFF(expr, start, len, replacement) into the
// three primitives HANA has: the prefix before start, the replacement, and
// the suffix after the deleted range.
//
//	CONCAT(SUBSTRING(expr, 1, start-1), replacement, SUBSTRING(expr, start+len, LENGTH(expr)))
//
// When start and len are integer literals the arithmetic is folded; any
// other expression is emitted symbolically.
func rewriteStuff(query string) string {
	return rewriteCalls(query, "STUFF", func(args []string) (string, bool) {
		if len(args) != 4 {
			return "", false
		}
		expr, start, length, repl := args[0], args[1], args[2], args[3]

		prefixLen := fmt.Sprintf("%s - 1", start)
		suffixStart := fmt.Sprintf("%s + %s", start, length)
		if s, err1 := strconv.Atoi(start); err1 == nil {
			prefixLen = strconv.Itoa(s - 1)
			if l, err2 := strconv.Atoi(length); err2 == nil {
				suffixStart = strconv.Itoa(s + l)
			}
		}
		return fmt.Sprintf("CONCAT(SUBSTRING(%[1]s, 1, %[2]s), %[3]s, SUBSTRING(%[1]s, %[4]s, LENGTH(%[1]s)))",
			expr, prefixLen, repl, suffixStart), true
	})
}

var (
	isNullRe = regexp.MustCompile(`(?i)\bISNULL\s*\(`)
	ifNullRe = regexp.MustCompile(`(?i)\bIFNULL\s*\(`)
)

// rewriteIsNull renames ISNULL( to IFNULL(; the argument semantics match so
// a rename is the whole rewrite. COALESCE is dialect-neutral and never
// touched.
func rewriteIsNull(query string) string {
	return isNullRe.ReplaceAllString(query, "IFNULL(")
}

// rewriteIfNull is the reverse rename.
func rewriteIfNull(query string) string {
	return ifNullRe.ReplaceAllString(query, "ISNULL(")
}
