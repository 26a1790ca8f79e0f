// Package conveyancing implements the workflow engine for a property
// transaction: the ordered stage timeline, two-solicitor timeline approval,
// stage transitions, moderated buyer-seller messaging and the recipient
// access policy. Functions here mutate in-memory models and return typed
// errors; persistence and HTTP concerns live in the routes and storage
// packages.
package conveyancing

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_error"
	KindNotFound          ErrorKind = "not_found"
	KindForbidden         ErrorKind = "forbidden"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindTimelineLocked    ErrorKind = "timeline_locked"
	KindAlreadyLocked     ErrorKind = "already_locked"
	KindAlreadyApproved   ErrorKind = "already_approved"
	KindConflict          ErrorKind = "conflict"
)

// Error is a business-rule failure with a machine-readable kind and a human
// message, surfaced to clients as an HTTP problem response.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

func TimelineLocked(format string, args ...interface{}) *Error {
	return newError(KindTimelineLocked, format, args...)
}

func AlreadyLocked(format string, args ...interface{}) *Error {
	return newError(KindAlreadyLocked, format, args...)
}

func AlreadyApproved(format string, args ...interface{}) *Error {
	return newError(KindAlreadyApproved, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the engine error kind, or "" for non-engine errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
