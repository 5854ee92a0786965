package store

import (
	"net/http"
	"strings"
)

// Kind classifies a persistence failure.
type Kind uint8

const (
	KindNotFound Kind = iota + 1
	KindDuplicate
)

// Error is returned by Store implementations for rows that are missing or
// collide with an existing key. Other database failures are returned as-is.
type Error struct {
	Kind    Kind
	Message string // shown to the user
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// HTTPCode is the response status for e.
func (e *Error) HTTPCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// WithMessage returns a copy of e with a user-facing message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrAlreadyExists = &Error{Kind: KindDuplicate, Message: "resource already exists"}
)

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
// SQLite reports these as "UNIQUE constraint failed: <table>.<column>".
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
