package helper

import "fmt"

// ValidationError rejects a request because of its content: bad selector,
// sold out unit, closed sale window, quantity out of bounds. Handlers map it
// to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError means the work was already done: a replayed webhook event, a
// confirm on an already confirmed order. Callers treat it as success.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflictf(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// GatewayError wraps a payment gateway failure so handlers can map it to 502
// instead of a generic 500.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string { return "gateway " + e.Op + ": " + e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }
