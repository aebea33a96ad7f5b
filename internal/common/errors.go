// Package common defines constants and sentinel errors shared by the EasyDrink
// client and identity server. Callers match them with errors.Is.
package common

import "errors"

// User-facing error kinds. Every failure shown to a user belongs to one of them.
var (
	ErrValidation       = errors.New("validation error")
	ErrAuth             = errors.New("auth error")
	ErrNetwork          = errors.New("network error")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnknown          = errors.New("unknown error")
)

// Server-side flow control errors.
var (
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// UserError is a failure with a short localized message that is safe to show.
// Kind is one of the user-facing kinds above; Code is the provider error code
// that produced it, if any.
type UserError struct {
	Kind    error
	Code    string
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Kind
}

// NewUserError builds a UserError of the given kind.
func NewUserError(kind error, code, message string) *UserError {
	return &UserError{Kind: kind, Code: code, Message: message}
}

// ErrNotLoggedIn is returned by per-user operations called without a session.
var ErrNotLoggedIn = NewUserError(ErrNotAuthenticated, "", "Faça login para continuar")
