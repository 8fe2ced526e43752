package shared

import (
	"errors"
	"fmt"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// NotFoundError indicates a referenced entity does not exist.
// The engine never auto-creates missing deals, messages or requisitions.
type NotFoundError struct {
	*DomainError
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s not found: %s", resource, id)},
		Resource:    resource,
		ID:          id,
	}
}

// ConflictError indicates an operation was attempted against a deal in
// the wrong status, or a round race was detected.
type ConflictError struct {
	*DomainError
	CurrentStatus string
}

func NewConflictError(message, currentStatus string) *ConflictError {
	return &ConflictError{
		DomainError:   &DomainError{Message: message},
		CurrentStatus: currentStatus,
	}
}

// ValidationError indicates invalid input that must be rejected before
// any mutation happens
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransientDependencyError wraps a retryable failure from the Store or
// the LLM. The pipeline retries these with bounded jittered backoff.
type TransientDependencyError struct {
	*DomainError
	Cause error
}

func NewTransientDependencyError(message string, cause error) *TransientDependencyError {
	return &TransientDependencyError{
		DomainError: &DomainError{Message: message},
		Cause:       cause,
	}
}

func (e *TransientDependencyError) Unwrap() error {
	return e.Cause
}

// PermanentDependencyError wraps a non-retryable dependency failure,
// e.g. a malformed persisted config. The caller falls back and flags
// the deal as degraded rather than failing the round.
type PermanentDependencyError struct {
	*DomainError
	Cause error
}

func NewPermanentDependencyError(message string, cause error) *PermanentDependencyError {
	return &PermanentDependencyError{
		DomainError: &DomainError{Message: message},
		Cause:       cause,
	}
}

func (e *PermanentDependencyError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is (or wraps) a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is (or wraps) a ConflictError
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransient reports whether err is (or wraps) a TransientDependencyError
func IsTransient(err error) bool {
	var t *TransientDependencyError
	return errors.As(err, &t)
}
