// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Statement errors.
	ErrEmptyStatement         = errors.New("statement has no transactions")
	ErrInvalidCapacity        = errors.New("page capacity must be at least 1")
	ErrColumnScheduleMismatch = errors.New("column schedule does not match variant")
	ErrMissingUnitPrice       = errors.New("final transaction has no unit price")

	// Database errors.
	ErrNotFound = errors.New("not found")

	// Plaid errors.
	ErrPlaidConnection = errors.New("plaid connection failed")
	ErrPlaidRateLimit  = fmt.Errorf("plaid: %w", ErrRateLimit)

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Profile selection errors. A caller naming a profile can trip these
	// as well as a bad config file.
	ErrUnknownProfile = fmt.Errorf("%w: unknown profile", ErrInvalidConfig)
	ErrProfileVariant = fmt.Errorf("%w: profile renders another variant", ErrColumnScheduleMismatch)
)

// IsConfigError reports whether err comes from a bad layout configuration
// rather than from the statement data.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrColumnScheduleMismatch) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// UserError represents an error that should be shown to the user.
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

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
