package errors

import (
	"errors"
	"fmt"
)

// Common error types for the CRM connector
var (
	// Session / authorization errors
	ErrUnauthenticated          = errors.New("unauthenticated: no refresh token for session")
	ErrMissingAuthorizationCode = errors.New("missing authorization code")
	ErrInvalidSession           = errors.New("invalid session")
	ErrAuthorizationDenied      = errors.New("authorization denied by provider")

	// Token errors
	ErrTokenExchange = errors.New("token exchange failed")

	// Upstream API errors
	ErrUpstreamAPI = errors.New("upstream api error")

	// General errors
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid configuration")
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

// New is errors.New, re-exported so callers only import this package.
func New(text string) error {
	return errors.New(text)
}
