// Package common defines shared constants, sentinel error kinds and small
// helpers used across budgetkeeper components. Callers should use errors.Is
// to match the kinds below.
package common

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors.
	ErrorNotFound       = errors.New("not found")
	ErrorAlreadyDeleted = errors.New("already deleted")

	// Write errors.
	ErrorConflict   = errors.New("conflict")
	ErrorBadRequest = errors.New("bad request")

	// Access errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Service-level errors (generic/internal flow control).
	ErrorInternal    = errors.New("internal error")
	ErrorUnavailable = errors.New("service unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error is a domain error that carries a client-safe message next to its kind.
// errors.Is(err, common.ErrorNotFound) matches an *Error of that kind.
type Error struct {
	Kind    error
	Message string
}

// NewError builds an *Error of the given kind with a formatted message.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Message returns the client-safe message of err: the Message of the first
// *Error in its chain, or the error text itself.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
