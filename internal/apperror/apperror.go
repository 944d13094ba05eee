// Package apperror defines the error taxonomy shared by the store, the
// services and the HTTP handlers.
//
// Every domain failure is an *AppError wrapping one of the sentinel errors
// below, so callers can branch with errors.Is and still show AppError.Message
// to the user.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrParse      = errors.New("parse error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

type AppError struct {
	Err     error  // sentinel this error belongs to
	Message string // human-readable, safe to render
	Field   string // optional: form field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// ParseFailed reports a value that was present but malformed, such as a date
// that is not in YYYY-MM-DD form.
func ParseFailed(field, value, expected string) *AppError {
	return &AppError{
		Err:     ErrParse,
		Message: fmt.Sprintf("%q is not a valid %s", value, expected),
		Field:   field,
	}
}

// DuplicateName reports a unique-name violation for the given resource.
// It wraps ErrConflict; HTTP handlers map it to 409.
func DuplicateName(resource, name string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("a %s named %q already exists", resource, name),
		Field:   "name",
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// IsUserFacing reports whether err is one the user can fix by editing the
// submitted form: a validation, parse or duplicate-name failure.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrParse) || errors.Is(err, ErrConflict)
}
