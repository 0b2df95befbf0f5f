package translate

import (
	"fmt"
	"regexp"
	"strings"
)

var getDateRe = regexp.MustCompile(`(?i)\bGETDATE\s*\(\s*\)`)

// rewriteGetDate replaces GETDATE() with CURRENT_TIMESTAMP verbatim.
func rewriteGetDate(query string) string {
	return getDateRe.ReplaceAllString(query, "CURRENT_TIMESTAMP")
}

// guardBranch is one WHEN arm of the unit guard: if the unit is in aliases,
// the branch contributes n scaled by factor.
type guardBranch struct {
	aliases []string
	factor  int
}

// unitGuard renders the CASE expression that turns a DATEADD unit into the
// amount for one nesting level:
//
//	CASE WHEN 'day' IN ('day', 'dd', 'd') THEN 10 ELSE 0 END
//
// Repeating the same guard at every level lets a single unit value drive
// exactly one of the nested ADD_* calls without per-unit branching.
func unitGuard(unit, n string, branches []guardBranch) string {
	var b strings.Builder
	b.WriteString("CASE")
	for _, br := range branches {
		quoted := make([]string, len(br.aliases))
		for i, a := range br.aliases {
			quoted[i] = "'" + a + "'"
		}
		fmt.Fprintf(&b, " WHEN '%s' IN (%s) THEN %s", unit, strings.Join(quoted, ", "), scaled(n, br.factor))
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

func scaled(n string, factor int) string {
	if factor == 1 {
		return n
	}
	return fmt.Sprintf("(%s) * %d", n, factor)
}

var (
	monthBranches = []guardBranch{
		{aliases: []string{"year", "yy", "yyyy"}, factor: 12},
		{aliases: []string{"quarter", "qq", "q"}, factor: 3},
		{aliases: []string{"month", "mm", "m"}, factor: 1},
	}
	dayBranches = []guardBranch{
		{aliases: []string{"week", "wk", "ww"}, factor: 7},
		{aliases: []string{"day", "dd", "d"}, factor: 1},
	}
	secondBranches = []guardBranch{
		{aliases: []string{"hour", "hh"}, factor: 3600},
		{aliases: []string{"minute", "mi", "n"}, factor: 60},
		{aliases: []string{"second", "ss", "s"}, factor: 1},
	}
)

// rewriteDateAdd converts DATEADD(unit, n, expr) into the nested HANA form
// ADD_SECONDS(ADD_DAYS(ADD_MONTHS(expr, months), days), seconds) where each
// amount is unit-guarded, so exactly one level receives a non-zero delta.
func rewriteDateAdd(query string) string {
	return rewriteCalls(query, "DATEADD", func(args []string) (string, bool) {
		if len(args) != 3 {
			return "", false
		}
		unit := unquoteIdent(args[0])
		n, expr := args[1], args[2]
		return fmt.Sprintf("ADD_SECONDS(ADD_DAYS(ADD_MONTHS(%s, %s), %s), %s)",
			expr,
			unitGuard(unit, n, monthBranches),
			unitGuard(unit, n, dayBranches),
			unitGuard(unit, n, secondBranches),
		), true
	})
}

// rewriteDateDiff converts DATEDIFF(unit, start, end) into a unit-conditioned
// selection of HANA's *_BETWEEN functions. The end/start argument order is
// swapped to match the target's subtraction direction.
func rewriteDateDiff(query string) string {
	return rewriteCalls(query, "DATEDIFF", func(args []string) (string, bool) {
		if len(args) != 3 {
			return "", false
		}
		unit := unquoteIdent(args[0])
		start, end := args[1], args[2]
		return fmt.Sprintf(
			"CASE"+
				" WHEN '%[1]s' IN ('day', 'dd', 'd') THEN DAYS_BETWEEN(%[3]s, %[2]s)"+
				" WHEN '%[1]s' IN ('month', 'mm', 'm') THEN MONTHS_BETWEEN(%[3]s, %[2]s)"+
				" WHEN '%[1]s' IN ('year', 'yy', 'yyyy') THEN MONTHS_BETWEEN(%[3]s, %[2]s) / 12"+
				" WHEN '%[1]s' IN ('second', 'ss', 's') THEN SECONDS_BETWEEN(%[3]s, %[2]s)"+
				" ELSE DAYS_BETWEEN(%[3]s, %[2]s) END",
			unit, start, end,
		), true
	})
}

var currentTimestampRe = regexp.MustCompile(`(?i)\bCURRENT_TIMESTAMP\b`)

// rewriteCurrentTimestamp is the hana→mssql direction. CURRENT_TIMESTAMP is
// valid T-SQL too, so this mapping is a normalization choice, not a
// necessity.
func rewriteCurrentTimestamp(query string) string {
	return currentTimestampRe.ReplaceAllString(query, "GETDATE()")
}

// addFnUnits maps HANA's single-unit date arithmetic back to DATEADD.
var addFnUnits = map[string]string{
	"ADD_YEARS":   "year",
	"ADD_MONTHS":  "month",
	"ADD_DAYS":    "day",
	"ADD_SECONDS": "second",
}

// rewriteAddFunctions converts ADD_DAYS(expr, n) and friends to
// DATEADD(unit, n, expr). Nested guard expressions produced by the forward
// direction are not reconstructed; this is the documented lossy asymmetry.
func rewriteAddFunctions(query string) string {
	for fn, unit := range addFnUnits {
		u := unit
		query = rewriteCalls(query, fn, func(args []string) (string, bool) {
			if len(args) != 2 {
				return "", false
			}
			return fmt.Sprintf("DATEADD(%s, %s, %s)", u, args[1], args[0]), true
		})
	}
	return query
}

// betweenFnUnits maps HANA difference functions back to DATEDIFF.
var betweenFnUnits = map[string]string{
	"DAYS_BETWEEN":    "day",
	"MONTHS_BETWEEN":  "month",
	"SECONDS_BETWEEN": "second",
}

// rewriteBetweenFunctions converts DAYS_BETWEEN(a, b) to DATEDIFF(day, b, a),
// undoing the argument swap the forward direction applies.
func rewriteBetweenFunctions(query string) string {
	for fn, unit := range betweenFnUnits {
		u := unit
		query = rewriteCalls(query, fn, func(args []string) (string, bool) {
			if len(args) != 2 {
				return "", false
			}
			return fmt.Sprintf("DATEDIFF(%s, %s, %s)", u, args[1], args[0]), true
		})
	}
	return query
}
