package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Transient external failures. These are isolated and recorded per expert or
// per memory; they escalate only when a step is left with zero usable data.
const (
	ErrEmbeddingFailed   ErrorCode = "EMBEDDING_FAILED"
	ErrStoreUnavailable  ErrorCode = "STORE_UNAVAILABLE"
	ErrExpertTimeout     ErrorCode = "EXPERT_TIMEOUT"
	ErrExpertUnavailable ErrorCode = "EXPERT_UNAVAILABLE"
	ErrValidationFailed  ErrorCode = "VALIDATION_FAILED"
)

// Terminal conditions.
const (
	// ErrNoCandidates: the expert fan-out produced zero candidates before the
	// parent deadline. The only fatal outcome of arbitration.
	ErrNoCandidates ErrorCode = "NO_CANDIDATES"

	// ErrDimensionMismatch: stored embedding length disagrees with the
	// configured dimensionality. Signals corrupted data, never retried.
	ErrDimensionMismatch ErrorCode = "DIMENSION_MISMATCH"

	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Error is a structured error with code, message, and retry semantics.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Expert    ExpertID  `json:"expert,omitempty"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewTransient creates a retryable external-failure error.
func NewTransient(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Retryable: true}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithExpert tags the error with the expert it originated from.
func (e *Error) WithExpert(expert ExpertID) *Error {
	e.Expert = expert
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNoCandidates reports whether err is the zero-candidate fatality.
func IsNoCandidates(err error) bool {
	return GetErrorCode(err) == ErrNoCandidates
}

// IsConfigurationFault reports whether err signals corrupted configuration or
// data, which must abort rather than degrade.
func IsConfigurationFault(err error) bool {
	return GetErrorCode(err) == ErrDimensionMismatch
}
