package advisor

import (
	"fmt"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// IsCompatible reports whether query can run on target. It fails closed: a
// detected construct from another dialect's blocking set (table hints like
// NOLOCK have no HANA equivalent, HANA WITH HINT has no T-SQL one) makes the
// query incompatible, and the reason names the offending token. Features the
// translator can rewrite do not block; translation, not blocking, applies
// to those.
func IsCompatible(query string, target core.DialectTag) (bool, string) {
	for tag, patterns := range featureSets {
		if tag == target {
			continue
		}
		for _, p := range patterns {
			if p.blocking && p.pattern.MatchString(query) {
				return false, fmt.Sprintf("construct %s (%s) has no %s equivalent", p.name, tag, target)
			}
		}
	}
	return true, ""
}
