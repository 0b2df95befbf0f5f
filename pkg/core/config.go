package core

import (
	"fmt"
	"log/slog"
	"time"
)

// Secret holds a credential. It renders as a fixed mask through fmt and slog
// so connection strings and passwords never reach logs in clear text.
type Secret string

// Reveal returns the underlying value for building DSNs.
func (s Secret) Reveal() string { return string(s) }

// String implements fmt.Stringer with a masked value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "******"
}

// LogValue implements slog.LogValuer with a masked value.
func (s Secret) LogValue() slog.Value { return slog.StringValue(s.String()) }

// PoolOptions tunes the connection pool owned by a connector.
type PoolOptions struct {
	// MaxSize bounds the number of live backend connections. Zero means
	// DefaultMaxPoolSize.
	MaxSize int `koanf:"max_size"`

	// IdleTimeout discards idle connections older than this on next acquire.
	// Zero means DefaultIdleTimeout.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// AcquireTimeout bounds how long Acquire may block when the pool is
	// saturated. Zero means block until the caller's context expires.
	AcquireTimeout time.Duration `koanf:"acquire_timeout"`
}

// RetryOptions configures the transient-failure retry loop. The values are
// injected into the connector at construction time so tests can use tight
// bounds instead of process-wide globals.
type RetryOptions struct {
	// MaxAttempts is the total number of execution attempts, including the
	// first one. Zero means DefaultMaxRetryAttempts.
	MaxAttempts int `koanf:"max_attempts"`

	// Delay is the fixed backoff between attempts. Zero means
	// DefaultRetryDelay.
	Delay time.Duration `koanf:"delay"`
}

// Defaults applied when the corresponding option is zero.
const (
	DefaultMaxPoolSize      = 5
	DefaultIdleTimeout      = 5 * time.Minute
	DefaultMaxRetryAttempts = 3
	DefaultRetryDelay       = time.Second
)

// ApplyDefaults fills zero fields with the package defaults.
func (p *PoolOptions) ApplyDefaults() {
	if p.MaxSize <= 0 {
		p.MaxSize = DefaultMaxPoolSize
	}
	if p.IdleTimeout <= 0 {
		p.IdleTimeout = DefaultIdleTimeout
	}
}

// ApplyDefaults fills zero fields with the package defaults.
func (r *RetryOptions) ApplyDefaults() {
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = DefaultMaxRetryAttempts
	}
	if r.Delay <= 0 {
		r.Delay = DefaultRetryDelay
	}
}

// ConnectionConfig holds everything needed to reach one backend.
type ConnectionConfig struct {
	Name     string            `koanf:"name"`
	Type     DialectTag        `koanf:"type"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	Username string            `koanf:"username"`
	Password Secret            `koanf:"password"`
	Options  map[string]string `koanf:"options"`
	Pool     PoolOptions       `koanf:"pool"`
	Retry    RetryOptions      `koanf:"retry"`
}

// Validate checks that the config names a known dialect and a host.
func (c *ConnectionConfig) Validate() error {
	if !c.Type.Known() {
		return fmt.Errorf("unknown connection type %q", string(c.Type))
	}
	if c.Host == "" {
		return fmt.Errorf("connection %q: host is required", c.Name)
	}
	return nil
}

// ApplyDefaults fills zero pool/retry fields with the package defaults.
func (c *ConnectionConfig) ApplyDefaults() {
	c.Pool.ApplyDefaults()
	c.Retry.ApplyDefaults()
}
