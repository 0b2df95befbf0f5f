package connector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/pool"
)

// Base provides the database/sql plumbing common to all connectors: pool
// setup over the driver handle, pooled query execution, ping and close.
// Embed it in concrete connectors; they add Connect, Schema and the
// error-classification methods.
type Base struct {
	DB     *sql.DB
	Cfg    core.ConnectionConfig
	Logger *slog.Logger
	Pool   *pool.Pool
}

// queryConn is the slice of *sql.Conn the pooled query path needs.
type queryConn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// InitPool builds the connection pool on top of the opened driver handle.
// Call from Connect after DB and Cfg are set.
func (b *Base) InitPool() {
	db := b.DB
	b.Pool = pool.New(b.Cfg.Pool, func(ctx context.Context) (pool.Conn, error) {
		return db.Conn(ctx)
	}, b.Logger)

	// The pool owns the bound; the driver-level pool must not cap below it.
	db.SetMaxOpenConns(b.Cfg.Pool.MaxSize)
}

// Close shuts the pool down and releases the driver handle.
func (b *Base) Close() error {
	if b.Pool != nil {
		_ = b.Pool.Close()
	}
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection", slog.String("connection", b.Cfg.Name))
		}
		return b.DB.Close()
	}
	return nil
}

// Ping verifies the backend is reachable.
func (b *Base) Ping(ctx context.Context) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	return b.DB.PingContext(ctx)
}

// IsConnected reports whether Connect succeeded.
func (b *Base) IsConnected() bool { return b.DB != nil }

// Query leases a pooled connection, runs the statement, and materializes
// the rows. The lease is released on every exit path; it is marked broken
// when the context was cancelled mid-flight, since the session state of an
// interrupted connection is not worth trusting.
func (b *Base) Query(ctx context.Context, sqlText string, args ...any) (*core.ResultSet, error) {
	if b.DB == nil || b.Pool == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	lease, err := b.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	broken := false
	defer func() { lease.Release(broken) }()

	conn, ok := lease.Conn().(queryConn)
	if !ok {
		broken = true
		return nil, fmt.Errorf("pooled connection does not support queries")
	}

	rows, err := conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		broken = ctx.Err() != nil
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rs, err := scanRows(rows)
	if err != nil {
		broken = ctx.Err() != nil
		return nil, err
	}
	return rs, nil
}

// scanRows drains rows into a materialized ResultSet. []byte values become
// strings so results survive the connection being released.
func scanRows(rows *sql.Rows) (*core.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	rs := &core.ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if raw, ok := v.([]byte); ok {
				values[i] = string(raw)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return rs, nil
}
