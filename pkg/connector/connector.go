// Package connector defines the contract all backend connectors implement
// and the shared execution layer wrapped around them: pooled connections,
// automatic dialect conversion, the read-only safety gate, transient-error
// retries, error normalization, and cooperative cancellation.
//
// Concrete connectors live in pkg/connectors/ subdirectories and register
// themselves with this package's registry in their init() functions.
package connector

import (
	"context"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// Connector is the per-backend contract. Implementations own the native
// driver, DSN construction, schema introspection, and the mapping from
// backend-native errors to the normalized error model. The shared wrapper
// logic (retry, safety, conversion) lives in Executor, which composes a
// Connector rather than subclassing it.
type Connector interface {
	// Dialect returns the SQL dialect this connector speaks.
	Dialect() core.DialectTag

	// Connect establishes the backend session(s) described by cfg.
	Connect(ctx context.Context, cfg core.ConnectionConfig) error

	// Close releases the pool and the underlying driver handle.
	Close() error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Query runs one statement on a pooled connection and materializes the
	// result. It performs no conversion, validation or retries; that is the
	// Executor's job.
	Query(ctx context.Context, sql string, args ...any) (*core.ResultSet, error)

	// Schema describes the tables visible to this connection.
	Schema(ctx context.Context) (*core.SchemaDescription, error)

	// ValidateQuery checks a statement without executing it. The reason is
	// empty when valid.
	ValidateQuery(ctx context.Context, sql string) (bool, string)

	// IsTransient classifies a backend error as retryable (deadlock,
	// connection reset, timeout while connecting) using the backend's
	// native error codes.
	IsTransient(err error) bool

	// FormatError maps a backend-native error to the normalized shape so
	// callers never branch on driver types.
	FormatError(err error) *core.QueryError
}
