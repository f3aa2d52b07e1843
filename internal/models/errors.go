package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of workspace operations
type ErrorKind string

const (
	KindParentNotFound     ErrorKind = "parent_not_found"
	KindDuplicateName      ErrorKind = "duplicate_name"
	KindInvalidName        ErrorKind = "invalid_name"
	KindNotFound           ErrorKind = "not_found"
	KindNotOpen            ErrorKind = "not_open"
	KindInvalidFormat      ErrorKind = "invalid_format"
	KindExternalCallFailed ErrorKind = "external_call_failed"
	KindNoActiveFile       ErrorKind = "no_active_file"
	KindMissingCredential  ErrorKind = "missing_credential"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrParentNotFound     = &Error{Kind: KindParentNotFound}
	ErrDuplicateName      = &Error{Kind: KindDuplicateName}
	ErrInvalidName        = &Error{Kind: KindInvalidName}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrNotOpen            = &Error{Kind: KindNotOpen}
	ErrInvalidFormat      = &Error{Kind: KindInvalidFormat}
	ErrExternalCallFailed = &Error{Kind: KindExternalCallFailed}
	ErrNoActiveFile       = &Error{Kind: KindNoActiveFile}
	ErrMissingCredential  = &Error{Kind: KindMissingCredential}
)

// Error is a workspace error carrying a kind, the path involved and an
// optional wrapped cause.
type Error struct {
	Kind    ErrorKind
	Path    string
	Message string
	Err     error
}

// NewError creates an error of the given kind
func NewError(kind ErrorKind, path, message string) *Error {
	return &Error{Kind: kind, Path: path, Message: message}
}

// WrapError creates an error of the given kind wrapping err
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or an empty kind when err is not a workspace error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
