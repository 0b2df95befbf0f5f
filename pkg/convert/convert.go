// Package convert orchestrates dialect translation for a target backend:
// it decides the source dialect, applies the rule engine, and reports what
// happened as warnings instead of errors. Conversion is a best-effort step
// that must never corrupt or drop the caller's SQL: every failure path
// returns the original query with a warning attached.
package convert

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/advisor"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/translate"
)

// Outcome is the result of one conversion attempt. If no dialect-specific
// feature was detected, Query equals the input and Warnings is empty.
type Outcome struct {
	Query    string
	Warnings []string
}

// Converter applies translation toward a fixed target dialect.
type Converter struct {
	logger *slog.Logger

	// convertFn is translate.Convert in production; tests substitute a
	// failing implementation to exercise the recovery path.
	convertFn func(query string, from, to core.DialectTag) string
}

// New creates a Converter. A nil logger falls back to a discard logger.
func New(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{logger: logger, convertFn: translate.Convert}
}

// AutoConvert rewrites query for the dialect in cfg. The source dialect is
// inferred from detected features. Behavior on the edges:
//
//   - unsupported target dialect: original query, "unsupported database
//     type" warning;
//   - blocking feature present: converted (or original) query plus a
//     soft "may not be fully compatible" warning; callers decide whether
//     to proceed;
//   - any panic inside rule application: original query, "Failed to convert
//     query" warning. Conversion failure is never an execution failure.
func (c *Converter) AutoConvert(query string, cfg core.ConnectionConfig) (out Outcome) {
	target := cfg.Type
	out = Outcome{Query: query}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("query conversion panicked",
				slog.String("target", target.String()),
				slog.Any("cause", r))
			out = Outcome{
				Query:    query,
				Warnings: []string{fmt.Sprintf("Failed to convert query: %v", r)},
			}
		}
	}()

	if !target.Known() {
		out.Warnings = append(out.Warnings, fmt.Sprintf("unsupported database type %q; query left unchanged", string(target)))
		return out
	}

	source := c.inferSource(query, target)
	if source == core.DialectUnknown || source == target || !translate.Supported(source, target) {
		// Nothing to translate; still surface hard incompatibilities.
		return c.withCompatWarning(query, target, out)
	}

	converted := c.convertFn(query, source, target)
	if converted != query {
		out.Query = converted
		out.Warnings = append(out.Warnings, fmt.Sprintf("converted from %s to %s", source, target))
		c.logger.Debug("query converted",
			slog.String("from", source.String()),
			slog.String("to", target.String()))
	}
	return c.withCompatWarning(out.Query, target, out)
}

// inferSource picks the apparent source dialect: the non-target dialect
// with detected features. Ambiguous queries (features from several foreign
// dialects) resolve to the dialect with the most hits.
func (c *Converter) inferSource(query string, target core.DialectTag) core.DialectTag {
	features := advisor.DetectFeatures(query)

	best := core.DialectUnknown
	bestHits := 0
	for tag, hits := range features {
		if tag == target {
			continue
		}
		n := 0
		for _, h := range hits {
			n += h.Count
		}
		if n > bestHits {
			best, bestHits = tag, n
		}
	}
	return best
}

// withCompatWarning appends the soft compatibility warning when a blocking
// feature survives conversion. Soft-fail by design: the query is returned,
// not rejected.
func (c *Converter) withCompatWarning(query string, target core.DialectTag, out Outcome) Outcome {
	if ok, reason := advisor.IsCompatible(query, target); !ok {
		out.Warnings = append(out.Warnings, fmt.Sprintf("query may not be fully compatible with %s: %s", target, reason))
	}
	return out
}
