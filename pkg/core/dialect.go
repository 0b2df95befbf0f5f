// Package core defines the shared types used across SQLBridge's query
// execution layer: dialect tags, connection configuration, result sets,
// execution records, and the normalized error model.
//
// Higher-level packages (translate, advisor, convert, connector) all depend
// on core; core depends on nothing but the standard library.
package core

import "strings"

// DialectTag identifies a SQL dialect. It is immutable and used as a map key
// throughout the feature-detection and translation layers.
type DialectTag string

const (
	// DialectMSSQL is the T-SQL flavored dialect (SQL Server, Azure SQL).
	DialectMSSQL DialectTag = "mssql"

	// DialectHANA is the column-store dialect with LIMIT/OFFSET pagination.
	DialectHANA DialectTag = "hana"

	// DialectPostgres is supported as an execution backend but has no
	// translation rule sets; conversion passes queries through unchanged.
	DialectPostgres DialectTag = "postgres"

	// DialectUnknown marks a dialect that could not be determined.
	DialectUnknown DialectTag = ""
)

// ParseDialect normalizes a user-supplied dialect name to a DialectTag.
// Unrecognized names map to DialectUnknown.
func ParseDialect(s string) DialectTag {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mssql", "sqlserver", "tsql":
		return DialectMSSQL
	case "hana", "saphana", "hdb":
		return DialectHANA
	case "postgres", "postgresql", "pg":
		return DialectPostgres
	default:
		return DialectUnknown
	}
}

// String returns the tag's canonical name, or "unknown" for the zero value.
func (d DialectTag) String() string {
	if d == DialectUnknown {
		return "unknown"
	}
	return string(d)
}

// Known returns true for dialects SQLBridge can execute against.
func (d DialectTag) Known() bool {
	switch d {
	case DialectMSSQL, DialectHANA, DialectPostgres:
		return true
	}
	return false
}
