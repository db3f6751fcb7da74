package models

import "errors"

// Failure kinds. Match them with errors.Is; the concrete value is always *Error.
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

// Error is a domain failure. Message is safe to show to API clients as is.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

// Conflict reports a uniqueness violation.
func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// NotFound reports that a referenced record does not exist.
func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Invalid reports input that breaks a field invariant.
func Invalid(msg string) *Error {
	return &Error{Kind: ErrInvalid, Message: msg}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Is matches the failure kind, so errors.Is(err, ErrConflict) holds for any conflict.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error { return e.Cause }

// WithCause returns a copy of e that wraps err. A nil err leaves e unchanged.
func (e *Error) WithCause(err error) *Error {
	if err == nil {
		return e
	}
	cp := *e
	cp.Cause = err
	return &cp
}
