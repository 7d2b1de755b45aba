package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures. The HTTP layer maps each kind to
// a status code and a client-safe message.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindAlreadyExists
	KindUnauthenticated
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindAlreadyExists:
		return "already_exists"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUpstream:
		return "upstream_failure"
	default:
		return "internal"
	}
}

// Error carries a kind, a message that is safe to show to users, and an
// optional cause that is only logged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err. Errors that are not *Error are internal.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
