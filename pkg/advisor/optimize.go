package advisor

import (
	"regexp"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

var (
	selectRe  = regexp.MustCompile(`(?i)^\s*SELECT\b`)
	limitedRe = regexp.MustCompile(`(?i)\b(?:TOP\s+\(?\d+\)?|LIMIT\s+\d+|FETCH\s+(?:NEXT|FIRST)\s+\d+)\b`)
	nolockRe  = regexp.MustCompile(`(?i)\bWITH\s*\(\s*NOLOCK\s*\)`)
	groupByRe = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)
	starRe    = regexp.MustCompile(`(?i)^\s*SELECT\s+(?:DISTINCT\s+)?(?:TOP\s+\(?\d+\)?\s+)?\*`)
	joinRe    = regexp.MustCompile(`(?i)\bJOIN\b`)
)

// SuggestOptimizations returns heuristic, non-blocking advice for running
// query on the given dialect. Suggestions are advisory strings only and are
// never applied automatically.
func SuggestOptimizations(query string, dialect core.DialectTag) []string {
	var out []string
	if !selectRe.MatchString(query) {
		return out
	}

	switch dialect {
	case core.DialectMSSQL:
		if !nolockRe.MatchString(query) && !joinRe.MatchString(query) {
			out = append(out, "consider WITH (NOLOCK) for read-only reporting queries to avoid shared locks")
		}
		if !limitedRe.MatchString(query) {
			out = append(out, "no row limit found; consider TOP n to bound the result set")
		}
	case core.DialectHANA:
		if groupByRe.MatchString(query) {
			out = append(out, "aggregation on a column store: consider the USE_OLAP_PLAN hint for large GROUP BY queries")
			out = append(out, "consider PARALLEL_EXECUTION hint if the aggregation spans many partitions")
		}
		if !limitedRe.MatchString(query) {
			out = append(out, "no row limit found; consider LIMIT n to bound the result set")
		}
	}

	if starRe.MatchString(query) {
		out = append(out, "SELECT * fetches every column; list the columns you need")
	}
	return out
}
