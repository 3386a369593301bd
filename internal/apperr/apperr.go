package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds. Operations wrap one of these so callers can branch with
// errors.Is without parsing message text.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Unauthorized builds an error matching ErrUnauthorized.
func Unauthorized(format string, a ...interface{}) error {
	return &kindError{kind: ErrUnauthorized, msg: fmt.Sprintf(format, a...)}
}

// Forbidden builds an error matching ErrForbidden.
func Forbidden(format string, a ...interface{}) error {
	return &kindError{kind: ErrForbidden, msg: fmt.Sprintf(format, a...)}
}

// NotFound builds an error matching ErrNotFound.
func NotFound(format string, a ...interface{}) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, a...)}
}

// Invalid builds an error matching ErrInvalidArgument.
func Invalid(format string, a ...interface{}) error {
	return &kindError{kind: ErrInvalidArgument, msg: fmt.Sprintf(format, a...)}
}

// Conflict builds an error matching ErrConflict.
func Conflict(format string, a ...interface{}) error {
	return &kindError{kind: ErrConflict, msg: fmt.Sprintf(format, a...)}
}

// HTTPStatus maps an error to the HTTP status code handlers should respond
// with. Unclassified errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
