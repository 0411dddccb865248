// Package apperr defines the error taxonomy shared by the domain, the use
// cases and the adapters. Every error crossing the API boundary resolves to
// exactly one Kind, which the HTTP layer maps to a stable status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindForbidden    Kind = "forbidden"
	KindStorage      Kind = "storage_error"
	KindInternal     Kind = "internal_error"
)

// Error is the structured error returned by domain operations.
type Error struct {
	Kind    Kind              // category used for status mapping
	Message string            // human-readable, safe to show for client-correctable kinds
	Fields  map[string]string // failing field, current/requested state, ids
	Cause   error             // wrapped underlying error, never rendered to clients
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels usable with errors.Is.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrStorage      = &Error{Kind: KindStorage}
	ErrInternal     = &Error{Kind: KindInternal}
)

// Validation reports malformed or missing input on the named field.
func Validation(field, format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
		Fields:  map[string]string{"field": field},
	}
}

// NotFound reports that the referenced entity does not exist.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
		Fields:  map[string]string{"entity": entity, "id": id},
	}
}

// Conflict reports an invariant violation.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// InvalidState reports an illegal lifecycle transition.
func InvalidState(entity, current, requested string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("%s cannot move from %s to %s", entity, current, requested),
		Fields:  map[string]string{"current": current, "requested": requested},
	}
}

// InvalidAction reports a lifecycle action that is not allowed from the
// current state.
func InvalidAction(entity, action, current string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("%s in status %s cannot %s", entity, current, action),
		Fields:  map[string]string{"current": current, "action": action},
	}
}

// Forbidden reports that the caller's role does not allow the operation.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Storage wraps an infrastructure failure. It is retryable.
func Storage(op string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: op, Cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(op string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: op, Cause: cause}
}

// KindOf resolves the kind of any error. Errors outside the taxonomy are
// internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Retryable reports whether err is a storage failure.
func Retryable(err error) bool {
	return KindOf(err) == KindStorage
}
