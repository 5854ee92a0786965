// Package errors holds the coded errors services return to handlers.
//
// A service refuses an operation with one of the constructors:
//
//	if !state.CanEdit() {
//	    return errors.Forbidden("This day is archived. Use footnotes to add notes.")
//	}
//
// and the HTTP layer turns it into a status and a message with StatusOf
// or by unwrapping *Error. Matching with Is compares codes only, so
// errors.Is(err, errors.ErrForbidden) holds for every forbidden error.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard library helpers, so callers need a single errors import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code classifies an error for the HTTP layer.
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidCSRF        Code = "INVALID_CSRF"
	CodeInternal           Code = "INTERNAL"
)

var statusByCode = map[Code]int{
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeValidation:         http.StatusBadRequest,
	CodeInvalidCSRF:        http.StatusBadRequest,
}

// HTTPStatus maps c to a response status. Unknown codes are 500.
func (c Code) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error carries a code, the message shown to the user, and optional details
// such as per-field validation failures.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPStatus is shorthand for e.Code.HTTPStatus().
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of e wrapping err. The message is unchanged.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is. Their messages are fallbacks only.
var (
	ErrNotFound           = coded(CodeNotFound)("not found")
	ErrAlreadyExists      = coded(CodeAlreadyExists)("already exists")
	ErrUnauthorized       = coded(CodeUnauthorized)("Please log in to continue.")
	ErrForbidden          = coded(CodeForbidden)("forbidden")
	ErrValidation         = coded(CodeValidation)("validation error")
	ErrInvalidCredentials = coded(CodeInvalidCredentials)("Invalid username or password.")
	ErrInvalidCSRF        = coded(CodeInvalidCSRF)("Invalid CSRF token.")
)

func coded(code Code) func(msg string) *Error {
	return func(msg string) *Error {
		return &Error{Code: code, Message: msg}
	}
}

// Constructors, one per code a service can refuse with.
var (
	NotFound           = coded(CodeNotFound)
	AlreadyExists      = coded(CodeAlreadyExists)
	Unauthorized       = coded(CodeUnauthorized)
	Forbidden          = coded(CodeForbidden)
	Validation         = coded(CodeValidation)
	InvalidCredentials = coded(CodeInvalidCredentials)
)

// Validationf formats a validation message.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// ValidationWithDetails is a validation error whose details name the failing fields.
func ValidationWithDetails(msg string, details any) *Error {
	return Validation(msg).WithDetails(details)
}

// StatusOf returns the status for err, or 500 when err carries no code.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
