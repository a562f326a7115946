// Package apperr defines the error taxonomy shared by the lifecycle engine,
// the gamification ledger and the prompt scheduler.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can decide whether to retry, drop or surface it.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotYetDue         Kind = "NOT_YET_DUE"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindInvalidState      Kind = "INVALID_STATE"
	KindStaleProgress     Kind = "STALE_PROGRESS"
	KindNotFound          Kind = "NOT_FOUND"
	KindStorageFailure    Kind = "STORAGE_FAILURE"
)

// Error is the concrete error type carried through the engine.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same Kind, so errors.Is(err, apperr.NotYetDue) works
// against the sentinel values below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	Validation        = &Error{Kind: KindValidation}
	NotYetDue         = &Error{Kind: KindNotYetDue}
	InvalidTransition = &Error{Kind: KindInvalidTransition}
	InvalidState      = &Error{Kind: KindInvalidState}
	StaleProgress     = &Error{Kind: KindStaleProgress}
	NotFound          = &Error{Kind: KindNotFound}
	StorageFailure    = &Error{Kind: KindStorageFailure}
)

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Storage wraps a collaborator I/O failure. Errors that already carry a kind pass through.
func Storage(cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) {
		return cause
	}
	return Wrap(KindStorageFailure, cause, format, args...)
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Internal reports whether err is one of the kinds that are logged and dropped
// rather than shown to a user.
func Internal(err error) bool {
	switch KindOf(err) {
	case KindNotYetDue, KindInvalidTransition, KindInvalidState, KindStaleProgress:
		return true
	}
	return false
}

// UserMessage maps err to the text the presentation layer may show.
func UserMessage(err error, action string) string {
	if err == nil {
		return ""
	}
	if Is(err, KindValidation) {
		var e *Error
		errors.As(err, &e)
		return e.Message
	}
	return fmt.Sprintf("couldn't %s, please try again", action)
}
