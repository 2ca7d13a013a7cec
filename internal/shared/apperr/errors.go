// Package apperr holds the caller-visible error taxonomy of the ticket ledger.
// Every error carries a Kind and, where it applies, the offending field so the
// HTTP layer can map it to a status code and a message.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation            Kind = "validation"
	KindNotFound              Kind = "not_found"
	KindInsufficientInventory Kind = "insufficient_inventory"
	KindInvalidState          Kind = "invalid_state"
	KindConflict              Kind = "conflict"
)

// Sentinels for errors.Is matching on kind only.
var (
	ErrValidation            = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound              = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInsufficientInventory = &Error{Kind: KindInsufficientInventory, Message: "insufficient inventory"}
	ErrInvalidState          = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrConflict              = &Error{Kind: KindConflict, Message: "conflict"}
)

type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, field, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func Validation(field, format string, args ...interface{}) *Error {
	return newError(KindValidation, field, format, args...)
}

func NotFound(field, format string, args ...interface{}) *Error {
	return newError(KindNotFound, field, format, args...)
}

func InsufficientInventory(field, format string, args ...interface{}) *Error {
	return newError(KindInsufficientInventory, field, format, args...)
}

func InvalidState(field, format string, args ...interface{}) *Error {
	return newError(KindInvalidState, field, format, args...)
}

func Conflict(field, format string, args ...interface{}) *Error {
	return newError(KindConflict, field, format, args...)
}

// Wrap attaches a cause to an application error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// As extracts the application error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or an empty Kind for infrastructure errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return ""
}
