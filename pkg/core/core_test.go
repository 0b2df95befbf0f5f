package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input    string
		expected DialectTag
	}{
		{"mssql", DialectMSSQL},
		{"SQLServer", DialectMSSQL},
		{"tsql", DialectMSSQL},
		{"hana", DialectHANA},
		{"hdb", DialectHANA},
		{" SapHana ", DialectHANA},
		{"postgres", DialectPostgres},
		{"pg", DialectPostgres},
		{"oracle", DialectUnknown},
		{"", DialectUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDialect(tt.input))
		})
	}
}

func TestSecretNeverPrintsValue(t *testing.T) {
	s := Secret("hunter2")

	assert.Equal(t, "hunter2", s.Reveal())
	assert.Equal(t, "******", s.String())
	assert.Equal(t, "******", fmt.Sprintf("%v", s))
	assert.Equal(t, "******", fmt.Sprintf("%s", s))
	assert.NotContains(t, fmt.Sprintf("%+v", struct{ P Secret }{s}), "hunter2")

	assert.Empty(t, Secret("").String())
}

func TestQueryError(t *testing.T) {
	cause := fmt.Errorf("backend said no")
	qe := NewQueryError(ErrTransient, "1205", "deadlock victim", cause)

	assert.Contains(t, qe.Error(), "transient")
	assert.Contains(t, qe.Error(), "1205")
	assert.ErrorIs(t, qe, cause)
	assert.True(t, qe.Retryable())

	assert.False(t, NewQueryError(ErrPermanent, "", "syntax error", nil).Retryable())
}

func TestExecutionRecordLifecycle(t *testing.T) {
	rec := NewExecutionRecord("id-1", "SELECT 1")

	assert.Equal(t, StatusRunning, rec.Status())
	assert.False(t, rec.Status().Terminal())
	assert.Equal(t, "SELECT 1", rec.EffectiveSQL(), "effective SQL starts as the submitted SQL")

	rec.SetEffectiveSQL("SELECT 1 FROM DUMMY")
	rec.AddRetry()
	rec.AddRetry()
	assert.Equal(t, 2, rec.Retries())

	require.True(t, rec.Finish(StatusCompleted))
	assert.Equal(t, StatusCompleted, rec.Status())
	assert.False(t, rec.FinishedAt().IsZero())

	// Terminal states are sticky: a late cancel cannot flip the outcome.
	assert.False(t, rec.Finish(StatusCancelled))
	assert.Equal(t, StatusCompleted, rec.Status())
}

func TestConnectionConfigValidate(t *testing.T) {
	cfg := ConnectionConfig{Name: "c", Type: DialectHANA, Host: "h"}
	assert.NoError(t, cfg.Validate())

	cfg.Host = ""
	assert.Error(t, cfg.Validate())

	cfg = ConnectionConfig{Name: "c", Type: "oracle", Host: "h"}
	assert.Error(t, cfg.Validate())
}

func TestApplyDefaults(t *testing.T) {
	var cfg ConnectionConfig
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultMaxPoolSize, cfg.Pool.MaxSize)
	assert.Equal(t, DefaultIdleTimeout, cfg.Pool.IdleTimeout)
	assert.Equal(t, DefaultMaxRetryAttempts, cfg.Retry.MaxAttempts)
	assert.Equal(t, DefaultRetryDelay, cfg.Retry.Delay)

	// Explicit values survive.
	cfg = ConnectionConfig{
		Pool:  PoolOptions{MaxSize: 2, IdleTimeout: time.Minute},
		Retry: RetryOptions{MaxAttempts: 1, Delay: time.Millisecond},
	}
	cfg.ApplyDefaults()
	assert.Equal(t, 2, cfg.Pool.MaxSize)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
}
