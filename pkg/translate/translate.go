// Package translate implements the rule-based SQL dialect translator.
//
// Translation is lexical and pattern-based by design: there is no SQL
// grammar here. Each rule detects one dialect-specific construct over the
// raw text and rewrites it; unmatched input always passes through
// unchanged. Nested or irregular statements a rule does not recognize are
// left alone rather than guessed at.
package translate

import "github.com/impo12-ty0076/sql-agent-sub002/pkg/core"

// Rule is one named rewrite applied to the raw query text.
type Rule struct {
	Name  string
	Apply func(query string) string
}

// dialectPair keys a rule set by (source, target).
type dialectPair struct {
	from core.DialectTag
	to   core.DialectTag
}

// ruleSets holds the ordered rules per direction. Order is deliberate, not
// incidental: function rewrites run first and the pagination family runs
// last, because the ROW_NUMBER collapse re-assembles text that must already
// be in target form. Tests assert this order stays fixed.
var ruleSets = map[dialectPair][]Rule{
	{core.DialectMSSQL, core.DialectHANA}: {
		{Name: "getdate", Apply: rewriteGetDate},
		{Name: "dateadd", Apply: rewriteDateAdd},
		{Name: "datediff", Apply: rewriteDateDiff},
		{Name: "charindex", Apply: rewriteCharIndex},
		{Name: "stuff", Apply: rewriteStuff},
		{Name: "isnull", Apply: rewriteIsNull},
		{Name: "row_number_pagination", Apply: rewriteRowNumber},
		{Name: "top_pagination", Apply: rewriteTop},
		{Name: "offset_fetch_pagination", Apply: rewriteOffsetFetch},
	},
	{core.DialectHANA, core.DialectMSSQL}: {
		{Name: "current_timestamp", Apply: rewriteCurrentTimestamp},
		{Name: "add_functions", Apply: rewriteAddFunctions},
		{Name: "between_functions", Apply: rewriteBetweenFunctions},
		{Name: "locate", Apply: rewriteLocate},
		{Name: "ifnull", Apply: rewriteIfNull},
		{Name: "limit_pagination", Apply: rewriteLimit},
	},
}

// Convert rewrites query from one dialect to another. It is pure and total:
// it never fails, and for unsupported direction pairs or queries without any
// recognized construct the input is returned unchanged.
func Convert(query string, from, to core.DialectTag) string {
	if from == to {
		return query
	}
	for _, rule := range ruleSets[dialectPair{from, to}] {
		query = rule.Apply(query)
	}
	return query
}

// Supported reports whether a rule set exists for the direction.
func Supported(from, to core.DialectTag) bool {
	_, ok := ruleSets[dialectPair{from, to}]
	return ok
}

// RuleNames returns the rule application order for a direction. Used by
// tests to pin the documented order and by diagnostics output.
func RuleNames(from, to core.DialectTag) []string {
	rules := ruleSets[dialectPair{from, to}]
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}
