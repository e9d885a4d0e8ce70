// Package apperr defines the error kinds surfaced by the scene and coordinate
// components. The HTTP layer maps each kind to a status code and a generic
// client-facing message; the wrapped error is only ever logged.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindDirectoryNotFound
	KindMalformedInput
	KindPersistenceFailure
)

func (k Kind) String() string {
	switch k {
	case KindDirectoryNotFound:
		return "directory_not_found"
	case KindMalformedInput:
		return "malformed_input"
	case KindPersistenceFailure:
		return "persistence_failure"
	default:
		return "internal_error"
	}
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrInternal           = &Error{Kind: KindInternal}
	ErrDirectoryNotFound  = &Error{Kind: KindDirectoryNotFound}
	ErrMalformedInput     = &Error{Kind: KindMalformedInput}
	ErrPersistenceFailure = &Error{Kind: KindPersistenceFailure}
)

// Error carries a Kind, the operation that failed and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match when target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New wraps err with the given kind and operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
