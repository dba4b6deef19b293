// Package errors defines the error taxonomy shared by repos, services
// and the HTTP layer. Services return these; the transport layer maps
// them to status codes without inspecting error strings.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinels for errors.Is checks across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrProviderDown    = errors.New("provider unavailable")
	ErrProviderOutput  = errors.New("provider returned invalid output")
	ErrInternal        = errors.New("internal error")
	ErrInvalidArgument = errors.New("invalid argument")
)

// FieldViolation is a single failed constraint on a named field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in the input, not just
// the first one.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidation(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// NotFoundError deliberately does not distinguish "does not exist"
// from "exists but owned by someone else".
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// QuotaExceededError tells the caller when the current window resets.
type QuotaExceededError struct {
	RetryAfter time.Duration
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("generation quota exceeded, retry in %ds", int(e.RetryAfter.Seconds()))
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

func NewQuotaExceeded(retryAfter time.Duration) *QuotaExceededError {
	return &QuotaExceededError{RetryAfter: retryAfter}
}

// ProviderUnavailableError covers timeouts and transport failures on
// the generation provider. Retryable by the caller.
type ProviderUnavailableError struct {
	Cause error
}

func (e *ProviderUnavailableError) Error() string {
	if e.Cause != nil {
		return "provider unavailable: " + e.Cause.Error()
	}
	return "provider unavailable"
}

func (e *ProviderUnavailableError) Unwrap() error { return ErrProviderDown }

func NewProviderUnavailable(cause error) *ProviderUnavailableError {
	return &ProviderUnavailableError{Cause: cause}
}

// ProviderContractError covers structurally invalid provider output:
// wrong candidate count, missing fields, unparseable JSON. Not
// retryable by the same request.
type ProviderContractError struct {
	Detail string
}

func (e *ProviderContractError) Error() string {
	if e.Detail == "" {
		return "provider returned invalid output"
	}
	return "provider returned invalid output: " + e.Detail
}

func (e *ProviderContractError) Unwrap() error { return ErrProviderOutput }

func NewProviderContract(detail string) *ProviderContractError {
	return &ProviderContractError{Detail: detail}
}

// Internal wraps an unexpected store or infrastructure failure. The
// cause is for server-side logs only.
func Internal(cause error) error {
	if cause == nil {
		return ErrInternal
	}
	return fmt.Errorf("%w: %v", ErrInternal, cause)
}
