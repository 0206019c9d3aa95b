// Package apperr carries the failure kinds the services report to their
// callers. Only the API boundary turns them into responses.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	InvalidArgument Kind = iota + 1
	NotFound
	NotConfigured
	OperationFailed
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case NotFound:
		return "not found"
	case NotConfigured:
		return "not configured"
	case OperationFailed:
		return "operation failed"
	}
	return "unknown"
}

// Error is a classified failure. Msg is safe to show to callers, Err holds
// the internal cause and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Invalid(msg string) error {
	return &Error{Kind: InvalidArgument, Msg: msg}
}

func Missing(what string) error {
	return &Error{Kind: NotFound, Msg: what + " not found"}
}

func Unconfigured(msg string) error {
	return &Error{Kind: NotConfigured, Msg: msg}
}

func Failed(msg string, err error) error {
	return &Error{Kind: OperationFailed, Msg: msg, Err: err}
}

// As returns the classified error within err's chain, if any.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}
