package core

import "time"

// Column describes one column of a result set or table.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Position   int
}

// ResultSet is a fully materialized query result. Connectors drain the
// driver rows before returning so the pooled connection can be released on
// every exit path.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// RowCount returns the number of rows in the set.
func (r *ResultSet) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// QueryResult is what ExecuteQuery hands back to callers: the data plus any
// conversion warnings accumulated on the way. Warnings and hard errors
// travel on separate channels so a successful-but-warned execution is
// distinguishable from a failed one.
type QueryResult struct {
	ExecutionID  string
	Data         *ResultSet
	EffectiveSQL string
	Warnings     []string
	Duration     time.Duration
}

// TableMetadata holds metadata about one backend table.
type TableMetadata struct {
	Schema   string
	Name     string
	Columns  []Column
	RowCount int64
}

// SchemaDescription lists the tables visible to a connection.
type SchemaDescription struct {
	Database string
	Tables   []TableMetadata
}
