// Package apperr holds the error kinds surfaced to API callers. Services wrap one of the
// sentinels below; only the HTTP layer turns them into status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrReferentialConflict = errors.New("referential conflict")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	// ErrUnauthorized is reserved, nothing raises it yet.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a caller facing message next to its kind.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// ValidationWrap marks err (e.g. a combined set of field errors) as a validation failure.
func ValidationWrap(err error, message string) error {
	return &Error{
		Kind:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func ReferentialConflict(format string, args ...any) error {
	return newError(ErrReferentialConflict, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return newError(ErrUnauthenticated, format, args...)
}

func InvalidCredentials(format string, args ...any) error {
	return newError(ErrInvalidCredentials, format, args...)
}

// Message returns the caller facing text of err.
// Errors outside the taxonomy get a generic message, their details stay in the logs.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			return fmt.Sprintf("%s: %s", appErr.Message, appErr.Err)
		}
		return appErr.Message
	}
	return "internal server error"
}

// HTTPStatus maps the error kind to a transport status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrReferentialConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsSemantic is true for errors the caller caused, as opposed to infrastructure failures.
func IsSemantic(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
