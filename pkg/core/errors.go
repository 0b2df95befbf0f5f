package core

import "fmt"

// ErrorClass partitions execution failures into the four categories that
// drive retry and propagation decisions.
type ErrorClass string

const (
	// ErrTransient marks a backend fault expected to clear on retry:
	// deadlock, dropped connection, timeout while connecting.
	ErrTransient ErrorClass = "transient"

	// ErrPermanent marks faults retrying cannot fix: syntax errors, missing
	// objects, permission denials.
	ErrPermanent ErrorClass = "permanent"

	// ErrValidationRejected marks a refusal by the read-only safety gate.
	ErrValidationRejected ErrorClass = "validation_rejected"

	// ErrConversionFailed marks a dialect-translation failure. It is carried
	// as a warning, never as an execution failure: the original query still
	// runs.
	ErrConversionFailed ErrorClass = "conversion_failed"
)

// QueryError is the normalized error shape every connector returns, so
// callers never branch on backend-native error types.
type QueryError struct {
	Class   ErrorClass
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Class, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Unwrap exposes the backend-native error for errors.Is/As chains.
func (e *QueryError) Unwrap() error { return e.Err }

// Retryable reports whether retrying the same statement may help.
func (e *QueryError) Retryable() bool { return e.Class == ErrTransient }

// NewQueryError builds a normalized error wrapping the backend-native cause.
func NewQueryError(class ErrorClass, code, message string, cause error) *QueryError {
	return &QueryError{Class: class, Code: code, Message: message, Err: cause}
}
