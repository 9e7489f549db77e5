// Package apperr defines the discriminated error kinds used across the
// analytics pipeline. Callers branch on Kind instead of matching message
// strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	// KindNotFound: an enterprise or industry could not be resolved.
	// Terminal; surfaced verbatim to the caller.
	KindNotFound Kind = "NOT_FOUND"

	// KindInsufficientData: a validation gate failed, a peer set was empty,
	// or a matrix had fewer rows than the computation needs. Non-fatal; the
	// caller reports "cannot compute" alongside whatever partials succeeded.
	KindInsufficientData Kind = "INSUFFICIENT_DATA"

	// KindUpstreamUnavailable: the industry-intelligence collaborator failed
	// or timed out. Recovered locally with deterministic fallbacks; only
	// reaches a caller if the fallback path itself is impossible.
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"

	// KindComputation: an unanticipated fault inside a top-level operation.
	KindComputation Kind = "COMPUTATION_ERROR"
)

// Error carries the kind, the operation that failed, and enough identifiers
// to diagnose the failure without leaking internal state.
type Error struct {
	Kind Kind
	Op   string // e.g. "validation.Validate", "aggregate.Aggregate"
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with a formatted message.
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error wrapping a cause.
func Wrap(kind Kind, op string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// NotFound is shorthand for New(KindNotFound, ...).
func NotFound(op, format string, args ...interface{}) *Error {
	return New(KindNotFound, op, format, args...)
}

// InsufficientData is shorthand for New(KindInsufficientData, ...).
func InsufficientData(op, format string, args ...interface{}) *Error {
	return New(KindInsufficientData, op, format, args...)
}

// KindOf returns the kind of err, or KindComputation for errors that did not
// originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindComputation
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
