// Package pool implements the bounded connection pool shared by concurrent
// queries. The pool is the one shared mutable resource in the execution
// layer: acquire and release are mutually exclusive per slot, while a
// leased connection is exclusively owned by its current query.
package pool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("pool: closed")

// Conn is the subset of a live backend connection the pool needs. *sql.Conn
// satisfies it; tests use fakes.
type Conn interface {
	PingContext(ctx context.Context) error
	Close() error
}

// Dialer opens one new backend connection.
type Dialer func(ctx context.Context) (Conn, error)

// Lease is a connection checked out of the pool, owned exclusively by one
// in-flight query until released.
type Lease struct {
	conn     Conn
	pool     *Pool
	idleFrom time.Time
	done     sync.Once
}

// Conn returns the underlying connection.
func (l *Lease) Conn() Conn { return l.conn }

// Release returns the connection to the pool's idle set after a validation
// probe, or destroys it when broken is true or the probe fails. Release is
// idempotent: only the first call has an effect, so deferred releases on
// error paths cannot double-free a slot.
func (l *Lease) Release(broken bool) {
	l.done.Do(func() { l.pool.release(l, broken) })
}

// Pool is a bounded set of live backend connections. Connections are
// created on demand up to MaxSize, validated before reuse, and destroyed on
// validation failure or idle-timeout expiry.
type Pool struct {
	dial   Dialer
	opts   core.PoolOptions
	logger *slog.Logger

	// sem counts live connections (leased + idle); acquiring a permit is
	// the blocking point when the pool is saturated.
	sem *semaphore.Weighted

	mu     sync.Mutex
	idle   []*Lease
	closed bool
}

// New creates a pool. Zero options fall back to core defaults; a nil logger
// is replaced with a discard logger.
func New(opts core.PoolOptions, dial Dialer, logger *slog.Logger) *Pool {
	opts.ApplyDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pool{
		dial:   dial,
		opts:   opts,
		logger: logger,
		sem:    semaphore.NewWeighted(int64(opts.MaxSize)),
	}
}

// Acquire leases a connection, blocking while the pool is at MaxSize with
// nothing idle. The context bounds the wait; AcquireTimeout, when set, caps
// it further. Idle connections past IdleTimeout are discarded and replaced
// with a fresh dial.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if p.opts.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.AcquireTimeout)
		defer cancel()
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("pool: waiting for connection: %w", err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sem.Release(1)
		return nil, ErrClosed
	}
	for len(p.idle) > 0 {
		lease := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		p.mu.Unlock()

		if time.Since(lease.idleFrom) > p.opts.IdleTimeout {
			p.logger.Debug("discarding idle connection past timeout")
			_ = lease.conn.Close()
			p.mu.Lock()
			continue
		}
		// Validate before reuse; a dead connection is replaced, not handed
		// to the caller.
		probe, cancel := context.WithTimeout(ctx, time.Second)
		err := lease.conn.PingContext(probe)
		cancel()
		if err != nil {
			p.logger.Debug("idle connection failed validation", slog.Any("error", err))
			_ = lease.conn.Close()
			p.mu.Lock()
			continue
		}
		return p.reset(lease), nil
	}
	p.mu.Unlock()

	conn, err := p.dial(ctx)
	if err != nil {
		p.sem.Release(1)
		return nil, fmt.Errorf("pool: dialing backend: %w", err)
	}
	return &Lease{conn: conn, pool: p}, nil
}

// reset re-arms a recycled lease so its Release works again.
func (p *Pool) reset(l *Lease) *Lease {
	return &Lease{conn: l.conn, pool: p}
}

func (p *Pool) release(l *Lease, broken bool) {
	defer p.sem.Release(1)

	if broken {
		p.logger.Debug("destroying broken connection")
		_ = l.conn.Close()
		return
	}

	// Validation probe before the connection rejoins the idle set.
	probe, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.conn.PingContext(probe); err != nil {
		p.logger.Debug("validation probe failed, destroying connection", slog.Any("error", err))
		_ = l.conn.Close()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = l.conn.Close()
		return
	}
	l.idleFrom = time.Now()
	p.idle = append(p.idle, l)
}

// Close destroys all idle connections and fails subsequent acquires.
// Leased connections are destroyed as they are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	var firstErr error
	for _, l := range p.idle {
		if err := l.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.idle = nil
	return firstErr
}

// Stats reports the current idle count, mainly for diagnostics and tests.
func (p *Pool) Stats() (idle int, maxSize int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle), p.opts.MaxSize
}
