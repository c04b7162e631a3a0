// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors. Both map to a NoTrade decision, never a crash.
	ErrDataUnavailable = &Error{Code: "DATA_UNAVAILABLE", Message: "market snapshot or chain unavailable"}
	ErrStaleData       = &Error{Code: "STALE_DATA", Message: "market data is stale"}

	// Analytics errors. A failed implied-vol solve marks the quote
	// unusable; it is never fatal.
	ErrConvergence = &Error{Code: "CONVERGENCE_FAILED", Message: "implied volatility solve did not converge"}

	// Selection and validation outcomes.
	ErrNoViableStrategy  = &Error{Code: "NO_VIABLE_STRATEGY", Message: "no acceptable spread found"}
	ErrRiskLimitExceeded = &Error{Code: "RISK_LIMIT_EXCEEDED", Message: "risk limit exceeded"}

	// Config errors are the only class allowed to abort a run.
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
