package errors

import (
	"errors"
	"fmt"
)

// Common error types for the authentication service
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user already exists")

	// Token errors
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenKindMismatch = errors.New("token kind mismatch")

	// Reset challenge errors
	ErrChallengeNotFound = errors.New("reset challenge not found")
	ErrChallengeExpired  = errors.New("reset challenge expired")
	ErrChallengeMismatch = errors.New("reset challenge mismatch")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// General errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternal         = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
