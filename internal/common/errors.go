// Package common defines shared constants and sentinel errors used across
// the authkeeper layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// ErrInvalidCredentials is returned by login for both an unknown email and
	// a wrong password. It matches ErrorUnauthorized.
	ErrInvalidCredentials = WithMessage(ErrorUnauthorized, "Invalid email or password")

	// Token errors. ErrTokenExpired wraps ErrInvalidToken so callers that do
	// not care about the reason can match on ErrInvalidToken alone.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrSigning      = errors.New("token signing failed")
)

// MessageError pairs a sentinel with text that is safe to show the caller.
// errors.Is matches it against Kind.
type MessageError struct {
	Kind    error
	Message string
}

func (e *MessageError) Error() string {
	return e.Message
}

func (e *MessageError) Unwrap() error {
	return e.Kind
}

// WithMessage returns an error that matches kind and reads as msg.
func WithMessage(kind error, msg string) error {
	return &MessageError{Kind: kind, Message: msg}
}
