// Package kerr categorizes the errors that cross component boundaries in the
// knowledge agent so the HTTP server can map them to status codes without
// string-sniffing error messages.
package kerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by where and why it occurred.
type Kind int

const (
	// KindUnknown is the zero value; treated as an internal error.
	KindUnknown Kind = iota
	// KindInvalidInput marks a caller-supplied request that failed validation.
	KindInvalidInput
	// KindUnauthenticated marks a missing or invalid credential.
	KindUnauthenticated
	// KindForbidden marks an authenticated caller lacking permission on a resource.
	KindForbidden
	// KindNotFound marks a reference to a resource that does not exist.
	KindNotFound
	// KindUpstream marks a failure reported by an external dependency
	// (document provider, vector store, LLM backend).
	KindUpstream
	// KindInternal marks a defect or unexpected condition within this service.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind, letting callers higher up the
// stack decide how to respond without inspecting message text.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given Kind and operation label. Returns nil if err is nil.
func New(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds a new error directly from a format string, without wrapping an
// existing error.
func Newf(op string, kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind carried by err, or KindInternal if err does not
// carry one (e.g. it originated outside this package).
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
