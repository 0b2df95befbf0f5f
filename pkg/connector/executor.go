package connector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/convert"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// Options tune a single ExecuteQuery call.
type Options struct {
	// Params are positional query parameters passed through to the driver.
	Params []any

	// NoConvert skips dialect conversion and sends the SQL verbatim.
	NoConvert bool

	// AllowWrites bypasses the read-only safety gate.
	AllowWrites bool

	// Timeout bounds the whole execution including retries. Zero means the
	// caller's context is the only bound.
	Timeout time.Duration
}

// Executor wraps a Connector with the shared execution policy: dialect
// conversion, the read-only safety gate, transient-error retries with fixed
// delay, error normalization, and per-query cancellation. One Executor
// serves concurrent ExecuteQuery calls; the pool inside the connector
// bounds actual backend concurrency.
type Executor struct {
	conn      Connector
	cfg       core.ConnectionConfig
	retry     core.RetryOptions
	converter *convert.Converter
	logger    *slog.Logger

	mu      sync.Mutex
	records map[string]*core.ExecutionRecord
	cancels map[string]context.CancelFunc
}

// NewExecutor wraps conn with the execution policy from cfg.
func NewExecutor(conn Connector, cfg core.ConnectionConfig, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	retry := cfg.Retry
	retry.ApplyDefaults()
	return &Executor{
		conn:      conn,
		cfg:       cfg,
		retry:     retry,
		converter: convert.New(logger),
		logger:    logger,
		records:   map[string]*core.ExecutionRecord{},
		cancels:   map[string]context.CancelFunc{},
	}
}

// ExecuteQuery runs one statement through the full pipeline. The returned
// QueryResult carries conversion warnings even on success; hard failures
// come back as *core.QueryError.
func (e *Executor) ExecuteQuery(ctx context.Context, sql string, opts Options) (*core.QueryResult, error) {
	id := uuid.NewString()
	rec := core.NewExecutionRecord(id, sql)

	e.mu.Lock()
	e.records[id] = rec
	e.mu.Unlock()

	effective := sql
	var warnings []string
	if !opts.NoConvert {
		outcome := e.converter.AutoConvert(sql, e.cfg)
		effective = outcome.Query
		warnings = outcome.Warnings
		rec.SetEffectiveSQL(effective)
	}

	// The safety gate runs on the SQL that would actually be dispatched, and
	// a rejected statement never reaches the backend.
	if !opts.AllowWrites {
		if !IsReadOnlyQuery(effective) {
			rec.Finish(core.StatusFailed)
			return nil, core.NewQueryError(core.ErrValidationRejected, "read_only",
				"statement modifies data or schema; read-only mode rejected it", nil)
		}
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	e.mu.Lock()
	e.cancels[id] = cancel
	e.mu.Unlock()
	defer func() {
		cancel()
		e.mu.Lock()
		delete(e.cancels, id)
		e.mu.Unlock()
	}()

	start := time.Now()
	data, err := e.runWithRetry(runCtx, rec, effective, opts.Params)
	if err != nil {
		qe := e.normalize(runCtx, err)
		status := core.StatusFailed
		if qe.Code == "cancelled" {
			status = core.StatusCancelled
		}
		rec.Finish(status)
		e.logger.Warn("query failed",
			slog.String("execution_id", id),
			slog.String("class", string(qe.Class)),
			slog.Int("retries", rec.Retries()),
			slog.Any("error", err))
		return nil, qe
	}

	rec.Finish(core.StatusCompleted)
	e.logger.Debug("query completed",
		slog.String("execution_id", id),
		slog.Int("rows", data.RowCount()),
		slog.Duration("duration", time.Since(start)))

	return &core.QueryResult{
		ExecutionID:  id,
		Data:         data,
		EffectiveSQL: effective,
		Warnings:     warnings,
		Duration:     time.Since(start),
	}, nil
}

// runWithRetry dispatches the statement up to MaxAttempts times. Only
// transient failures are retried, never cancellations, and each retry waits
// the configured fixed delay.
func (e *Executor) runWithRetry(ctx context.Context, rec *core.ExecutionRecord, sql string, params []any) (*core.ResultSet, error) {
	var lastErr error
	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		data, err := e.conn.Query(ctx, sql, params...)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// The deadline or a cancel fired; the context is dead, so a
			// retry could never succeed.
			return nil, err
		}
		if !e.conn.IsTransient(err) {
			return nil, err
		}
		if attempt == e.retry.MaxAttempts {
			break
		}

		rec.AddRetry()
		e.logger.Debug("retrying after transient failure",
			slog.String("execution_id", rec.ID()),
			slog.Int("attempt", attempt),
			slog.Any("error", err))

		select {
		case <-time.After(e.retry.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, &retriesExhaustedError{attempts: e.retry.MaxAttempts, cause: lastErr}
}

// retriesExhaustedError marks a transient failure that survived every
// attempt. normalize keeps the transient class so callers can still see the
// failure was environmental.
type retriesExhaustedError struct {
	attempts int
	cause    error
}

func (e *retriesExhaustedError) Error() string {
	return fmt.Sprintf("query failed after %d attempts: %v", e.attempts, e.cause)
}

func (e *retriesExhaustedError) Unwrap() error { return e.cause }

// normalize maps any failure from the retry loop to the normalized error
// shape, delegating backend-native errors to the connector.
func (e *Executor) normalize(ctx context.Context, err error) *core.QueryError {
	var qe *core.QueryError
	if errors.As(err, &qe) {
		return qe
	}

	var exhausted *retriesExhaustedError
	if errors.As(err, &exhausted) {
		return core.NewQueryError(core.ErrTransient, "retries_exhausted",
			exhausted.Error(), exhausted.cause)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewQueryError(core.ErrTransient, "timeout",
			"query exceeded its time limit", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return core.NewQueryError(core.ErrPermanent, "cancelled",
			"query was cancelled", err)
	}

	return e.conn.FormatError(err)
}

// CancelQuery requests cooperative cancellation of a running query. It
// returns false for unknown ids and for queries that already finished;
// cancelling a finished query changes nothing.
func (e *Executor) CancelQuery(id string) bool {
	e.mu.Lock()
	rec, known := e.records[id]
	cancel := e.cancels[id]
	e.mu.Unlock()

	if !known || rec.Status().Terminal() || cancel == nil {
		return false
	}
	cancel()
	e.logger.Info("cancellation requested", slog.String("execution_id", id))
	return true
}

// Record returns the execution record for id, or nil when unknown.
func (e *Executor) Record(id string) *core.ExecutionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.records[id]
}

// Validate checks a statement without executing it: the shared lexical
// checks first, then the connector's backend-specific ones.
func (e *Executor) Validate(ctx context.Context, sql string) (bool, string) {
	if ok, reason := ValidateStatement(sql); !ok {
		return false, reason
	}
	return e.conn.ValidateQuery(ctx, sql)
}

// Schema proxies schema introspection to the connector.
func (e *Executor) Schema(ctx context.Context) (*core.SchemaDescription, error) {
	return e.conn.Schema(ctx)
}

// Ping proxies a reachability check to the connector.
func (e *Executor) Ping(ctx context.Context) error {
	return e.conn.Ping(ctx)
}

// Close shuts the underlying connector down.
func (e *Executor) Close() error {
	return e.conn.Close()
}
