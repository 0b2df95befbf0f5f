package translate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The pagination family runs after the function rewrites: three distinct
// T-SQL source shapes converge on HANA's LIMIT n [OFFSET m], and the
// ROW_NUMBER collapse must see function calls already in target form.

var topRe = regexp.MustCompile(`(?is)^(\s*SELECT\s+)(DISTINCT\s+)?TOP\s+\(?(\d+)\)?\s+(.*)$`)

// rewriteTop removes a statement-head TOP n and appends LIMIT n after the
// final clause. TOP inside subqueries is outside what the lexical matcher
// attempts and passes through.
func rewriteTop(query string) string {
	m := topRe.FindStringSubmatch(query)
	if m == nil {
		return query
	}
	rest := strings.TrimRight(m[4], " \t\r\n")
	semi := ""
	if strings.HasSuffix(rest, ";") {
		semi = ";"
		rest = strings.TrimRight(strings.TrimSuffix(rest, ";"), " \t\r\n")
	}
	return m[1] + m[2] + rest + " LIMIT " + m[3] + semi
}

var offsetFetchRe = regexp.MustCompile(`(?i)\bOFFSET\s+(\d+)\s+ROWS?\s+FETCH\s+(?:NEXT|FIRST)\s+(\d+)\s+ROWS?\s+ONLY\b`)

// rewriteOffsetFetch converts OFFSET m ROWS FETCH NEXT n ROWS ONLY to
// LIMIT n OFFSET m in place.
func rewriteOffsetFetch(query string) string {
	return offsetFetchRe.ReplaceAllString(query, "LIMIT $2 OFFSET $1")
}

// rowNumberRe matches the windowed pagination idiom: an outer SELECT over a
// derived table that adds ROW_NUMBER() OVER (ORDER BY ...) AS RowNum, with
// an outer WHERE RowNum BETWEEN lo AND hi.
var rowNumberRe = regexp.MustCompile(`(?is)^\s*SELECT\s+.*?\s+FROM\s*\(\s*SELECT\s+(.*?)\s*,\s*ROW_NUMBER\s*\(\s*\)\s+OVER\s*\(\s*ORDER\s+BY\s+(.*?)\s*\)\s+AS\s+(\w+)\s+FROM\s+(.*?)\s*\)\s*(?:(?:AS\s+)?(\w+)\s+)?WHERE\s+(\w+)\s+BETWEEN\s+(\d+)\s+AND\s+(\d+)\s*;?\s*$`)

// rewriteRowNumber collapses the wrapper: the inner SELECT's column list is
// preserved verbatim (minus the synthetic RowNum column), the window's ORDER
// BY becomes the statement's ORDER BY, and the BETWEEN bounds become
// LIMIT (hi-lo+1) OFFSET (lo-1). This is the one rewrite that changes
// statement shape rather than substituting tokens.
func rewriteRowNumber(query string) string {
	m := rowNumberRe.FindStringSubmatch(query)
	if m == nil {
		return query
	}
	innerCols, orderBy, alias, from := m[1], m[2], m[3], m[4]
	whereCol := m[6]
	if !strings.EqualFold(alias, whereCol) {
		return query
	}
	lo, err1 := strconv.Atoi(m[7])
	hi, err2 := strconv.Atoi(m[8])
	if err1 != nil || err2 != nil || lo < 1 || hi < lo {
		return query
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT %d OFFSET %d",
		innerCols, from, orderBy, hi-lo+1, lo-1)
}

var limitRe = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)(?:\s+OFFSET\s+(\d+))?\b`)

// rewriteLimit is the hana→mssql direction. Every LIMIT becomes the
// OFFSET/FETCH shape; a statement that originally used TOP does not round
// trip back to TOP. That asymmetry is accepted and documented, not a bug:
// the source shape is unrecoverable after the forward conversion.
func rewriteLimit(query string) string {
	return limitRe.ReplaceAllStringFunc(query, func(s string) string {
		m := limitRe.FindStringSubmatch(s)
		offset := m[2]
		if offset == "" {
			offset = "0"
		}
		return fmt.Sprintf("OFFSET %s ROWS FETCH NEXT %s ROWS ONLY", offset, m[1])
	})
}
