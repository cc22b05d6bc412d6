// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound          = errors.New("not found")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Source errors.
	ErrSourceUnavailable = errors.New("receipt source unavailable")
	ErrUnauthorized      = errors.New("receipt source rejected credentials")
	ErrMalformedPayload  = errors.New("malformed receipt payload")

	// Export errors.
	ErrExportFailed = errors.New("export failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

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

// IsRetryable reports whether an operation that failed with err is worth
// another attempt. Cancellation, errors marked Permanent, rejected
// credentials, malformed payloads and configuration errors are final.
// Anything else, unclassified errors included, is assumed transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrMalformedPayload),
		errors.Is(err, ErrMissingConfig),
		errors.Is(err, ErrInvalidConfig):
		return false
	}
	return true
}
