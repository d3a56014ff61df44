// Package apperr defines the error kinds shared across domain services and
// the HTTP surface so that handlers never need to know which storage
// adapter or service produced a failure, only how it should be reported.
package apperr

import "fmt"

// Code identifies one of the error kinds from the error handling design.
type Code string

const (
	CodeBadRequest      Code = "bad_request"
	CodeUnauthorized    Code = "unauthorized"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeConflict        Code = "conflict"
	CodeValidationError Code = "validation_error"
	CodeInternal        Code = "internal"
)

// Error is the typed error carried through domain services up to the HTTP
// layer. Err holds the underlying cause for logging; it is never rendered
// to the client.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *Error      { return New(CodeBadRequest, message) }
func Unauthorized(message string) *Error    { return New(CodeUnauthorized, message) }
func Forbidden(message string) *Error       { return New(CodeForbidden, message) }
func NotFound(message string) *Error        { return New(CodeNotFound, message) }
func Conflict(message string) *Error        { return New(CodeConflict, message) }
func Validation(message string) *Error      { return New(CodeValidationError, message) }
func Internal(message string, err error) *Error {
	return Wrap(CodeInternal, message, err)
}

// As extracts an *Error from err, returning a generic internal error if err
// is not already one of ours. Domain services return an *Error, wrapping
// the storage adapters' domain.ErrNotFound/ErrConflict and driver errors,
// so this is mostly a safety net for stdlib/driver errors that leak
// through.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return Internal("unexpected error", err)
}

// StatusCode maps a Code to the HTTP status the surface must return.
func (c Code) StatusCode() int {
	switch c {
	case CodeBadRequest:
		return 400
	case CodeUnauthorized:
		return 401
	case CodeForbidden:
		return 403
	case CodeNotFound:
		return 404
	case CodeConflict:
		return 409
	case CodeValidationError:
		return 422
	default:
		return 500
	}
}
