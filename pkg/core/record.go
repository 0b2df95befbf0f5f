package core

import (
	"sync"
	"time"
)

// ExecutionStatus is the lifecycle state of one submitted query.
type ExecutionStatus string

const (
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
	StatusCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status can no longer change.
func (s ExecutionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ExecutionRecord tracks one query through conversion, retries and
// completion. Records are mutated by the retry loop and read concurrently by
// CancelQuery, so all field access goes through the accessor methods.
type ExecutionRecord struct {
	mu           sync.Mutex
	id           string
	sql          string
	effectiveSQL string
	status       ExecutionStatus
	retries      int
	startedAt    time.Time
	finishedAt   time.Time
}

// NewExecutionRecord creates a record in the running state.
func NewExecutionRecord(id, sql string) *ExecutionRecord {
	return &ExecutionRecord{
		id:           id,
		sql:          sql,
		effectiveSQL: sql,
		status:       StatusRunning,
		startedAt:    time.Now(),
	}
}

// ID returns the execution id.
func (r *ExecutionRecord) ID() string { return r.id }

// SQL returns the SQL as submitted by the caller.
func (r *ExecutionRecord) SQL() string { return r.sql }

// EffectiveSQL returns the post-conversion SQL that was actually dispatched.
func (r *ExecutionRecord) EffectiveSQL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.effectiveSQL
}

// SetEffectiveSQL records the post-conversion SQL.
func (r *ExecutionRecord) SetEffectiveSQL(sql string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effectiveSQL = sql
}

// Status returns the current lifecycle state.
func (r *ExecutionRecord) Status() ExecutionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Retries returns how many times the retry loop re-dispatched the query.
func (r *ExecutionRecord) Retries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retries
}

// AddRetry increments the retry counter.
func (r *ExecutionRecord) AddRetry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

// Finish moves the record to a terminal state. Once terminal, later calls
// are ignored so a cancel racing a completion cannot flip the outcome back.
func (r *ExecutionRecord) Finish(status ExecutionStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Terminal() {
		return false
	}
	r.status = status
	r.finishedAt = time.Now()
	return true
}

// StartedAt returns when the query was accepted.
func (r *ExecutionRecord) StartedAt() time.Time { return r.startedAt }

// FinishedAt returns when the record reached a terminal state, or the zero
// time while still running.
func (r *ExecutionRecord) FinishedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishedAt
}
