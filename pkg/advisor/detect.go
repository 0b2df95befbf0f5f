// Package advisor answers compatibility and tuning questions about a query
// without executing it: which dialect-specific constructs it contains,
// whether it can run on a given target, and what heuristic optimizations
// apply.
//
// Detection is one scan over the raw text against every known construct
// token, regardless of which dialect the query is nominally written in.
// That lets "what mssql-isms are present" and "what hana-isms are present"
// both be answered from the same result, and it means ambiguous constructs
// (IFNULL also matches the ISNULL family, CURRENT_TIMESTAMP is both native
// HANA and the product of a GETDATE rewrite) surface under more than one
// dialect on purpose.
package advisor

import (
	"regexp"
	"sort"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// FeatureHit is one detected dialect-specific construct.
type FeatureHit struct {
	// Name is the construct's canonical token, e.g. "TOP" or "NOLOCK".
	Name string
	// Count is how many times the pattern matched.
	Count int
}

// featurePattern binds one construct token to its detection pattern.
type featurePattern struct {
	name    string
	pattern *regexp.Regexp
	// blocking marks constructs with no equivalent on other targets; they
	// make IsCompatible fail closed instead of relying on translation.
	blocking bool
}

var featureSets = map[core.DialectTag][]featurePattern{
	core.DialectMSSQL: {
		{name: "TOP", pattern: regexp.MustCompile(`(?i)\bSELECT\s+(?:DISTINCT\s+)?TOP\s+\(?\d+\)?`)},
		{name: "GETDATE", pattern: regexp.MustCompile(`(?i)\bGETDATE\s*\(`)},
		{name: "DATEADD", pattern: regexp.MustCompile(`(?i)\bDATEADD\s*\(`)},
		{name: "DATEDIFF", pattern: regexp.MustCompile(`(?i)\bDATEDIFF\s*\(`)},
		{name: "CHARINDEX", pattern: regexp.MustCompile(`(?i)\bCHARINDEX\s*\(`)},
		{name: "STUFF", pattern: regexp.MustCompile(`(?i)\bSTUFF\s*\(`)},
		// The ISNULL family pattern also matches IFNULL, so a HANA-flavored
		// query surfaces here too. Intentional: ambiguity is reported, not
		// resolved, at detection time.
		{name: "ISNULL", pattern: regexp.MustCompile(`(?i)\bI[FS]NULL\s*\(`)},
		{name: "OFFSET_FETCH", pattern: regexp.MustCompile(`(?i)\bOFFSET\s+\d+\s+ROWS?\s+FETCH\b`)},
		{name: "ROW_NUMBER_PAGING", pattern: regexp.MustCompile(`(?i)\bROW_NUMBER\s*\(\s*\)\s+OVER\b`)},
		{name: "NOLOCK", pattern: regexp.MustCompile(`(?i)\bWITH\s*\(\s*NOLOCK\s*\)`), blocking: true},
		{name: "TABLE_HINT", pattern: regexp.MustCompile(`(?i)\bWITH\s*\(\s*(?:READPAST|UPDLOCK|ROWLOCK|TABLOCK|HOLDLOCK|INDEX\s*\()`), blocking: true},
		{name: "BRACKET_IDENTIFIER", pattern: regexp.MustCompile(`\[[A-Za-z_][^\]\[]*\]`)},
	},
	core.DialectHANA: {
		{name: "LIMIT", pattern: regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)},
		{name: "IFNULL", pattern: regexp.MustCompile(`(?i)\bIFNULL\s*\(`)},
		{name: "LOCATE", pattern: regexp.MustCompile(`(?i)\bLOCATE\s*\(`)},
		{name: "ADD_DAYS", pattern: regexp.MustCompile(`(?i)\bADD_(?:DAYS|MONTHS|SECONDS|YEARS)\s*\(`)},
		{name: "DAYS_BETWEEN", pattern: regexp.MustCompile(`(?i)\b(?:DAYS|MONTHS|SECONDS)_BETWEEN\s*\(`)},
		// Native HANA now(), but also what GETDATE() rewrites to, so it is
		// flagged on both sides of the conversion.
		{name: "CURRENT_TIMESTAMP", pattern: regexp.MustCompile(`(?i)\bCURRENT_TIMESTAMP\b`)},
		{name: "DUMMY", pattern: regexp.MustCompile(`(?i)\bFROM\s+DUMMY\b`)},
		{name: "HANA_HINT", pattern: regexp.MustCompile(`(?i)\bWITH\s+HINT\s*\(`), blocking: true},
	},
}

// DetectFeatures scans query once and buckets every hit by the dialect the
// token is native to. Dialects with no hits are absent from the map.
func DetectFeatures(query string) map[core.DialectTag][]FeatureHit {
	out := make(map[core.DialectTag][]FeatureHit)
	for tag, patterns := range featureSets {
		var hits []FeatureHit
		for _, p := range patterns {
			if n := len(p.pattern.FindAllStringIndex(query, -1)); n > 0 {
				hits = append(hits, FeatureHit{Name: p.name, Count: n})
			}
		}
		if len(hits) > 0 {
			sort.Slice(hits, func(i, j int) bool { return hits[i].Name < hits[j].Name })
			out[tag] = hits
		}
	}
	return out
}

// HasFeatures reports whether query contains any construct native to tag.
func HasFeatures(query string, tag core.DialectTag) bool {
	for _, p := range featureSets[tag] {
		if p.pattern.MatchString(query) {
			return true
		}
	}
	return false
}
