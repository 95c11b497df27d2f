package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by where it originated. Callers use it to tell
// a local mistake apart from a transport fault or a server-side rejection.
type Kind string

const (
	// KindPrecondition covers failures detected before any network I/O:
	// missing local file, expired token, unknown template.
	KindPrecondition Kind = "precondition"
	// KindNetwork covers connection, timeout and DNS failures.
	KindNetwork Kind = "network"
	// KindRemote covers non-2xx responses from the remote API.
	KindRemote Kind = "remote"
	// KindIO covers local file I/O failures while writing downloaded results.
	KindIO Kind = "io"
)

var (
	ErrNotAuthenticated = errors.New("no valid authentication token, please authenticate first")
	ErrFileNotFound     = errors.New("file not found")
	ErrUnknownTemplate  = errors.New("unknown mapping template")
	ErrMissingMapping   = errors.New("custom_mapping must be provided when use_template is false")
)

// Error is the uniform failure type returned by every client operation.
// Detail carries the server's error payload (parsed JSON when possible,
// raw text otherwise) for remote rejections.
type Error struct {
	Kind    Kind
	Message string
	Detail  interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Precondition(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

func PreconditionWrap(err error, message string) *Error {
	return &Error{Kind: KindPrecondition, Message: message, Err: err}
}

func Network(err error, message string) *Error {
	return &Error{Kind: KindNetwork, Message: message, Err: err}
}

func Remote(message string, detail interface{}) *Error {
	return &Error{Kind: KindRemote, Message: message, Detail: detail}
}

func IO(err error, message string) *Error {
	return &Error{Kind: KindIO, Message: message, Err: err}
}

// As extracts an *Error from err, walking the wrap chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
