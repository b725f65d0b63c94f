package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these map to specific HTTP responses
var (
	// Token errors
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrTokenConsumed    = errors.New("token already consumed")
	ErrModeMismatch     = errors.New("token mode mismatch")
	ErrHostMismatch     = errors.New("token host mismatch")
	ErrMissingSessionID = errors.New("token missing session id")

	// Run errors
	ErrRunNotFound = errors.New("run plan not found")
	ErrEmptyRunID  = errors.New("run id empty after sanitizing")

	// Planning errors
	ErrNoTargets = errors.New("no target domains to synchronize")

	// Directory errors
	ErrDomainNotFound = errors.New("domain not found")

	// General errors
	ErrStorage    = errors.New("storage failure")
	ErrInternal   = errors.New("internal error")
	ErrValidation = errors.New("validation error")
)

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
