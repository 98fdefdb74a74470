// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for the expected outcome taxonomy. Callers branch on these
// with errors.Is; everything else is treated as an internal failure.
var (
	// ErrNotFound indicates a missing entity or audit entry.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a stale concurrency token or a manual edit
	// superseding an undo target.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates malformed input; the caller's fault, never retried.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientData indicates training preconditions were not met.
	ErrInsufficientData = errors.New("insufficient training data")
	// ErrModelUnavailable indicates inference was requested with no active model.
	ErrModelUnavailable = errors.New("no active model")
)

// NotFoundError builds a NotFound error describing the missing entity.
func NotFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// ConflictError builds a Conflict error. The message must say what
// conflicted, since the caller's remediation depends on it.
func ConflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// ValidationError builds a Validation error describing the bad input.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// InsufficientDataError builds an InsufficientData error with enough detail
// for the caller to act (counts, thresholds).
func InsufficientDataError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, fmt.Sprintf(format, args...))
}

// UserError represents an error whose message is safe to show to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsExpected reports whether an error belongs to the expected outcome
// taxonomy and can be surfaced to the caller as-is. Internal errors are
// logged with full context and surfaced generically instead.
func IsExpected(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrModelUnavailable)
}
