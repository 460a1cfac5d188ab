package domain

import (
	"errors"
	"fmt"
)

// StatusError is a failure carrying the identity provider's status code
// alongside its message, the shape the page layer null-checks against.
type StatusError struct {
	Message string
	Status  string
}

// Error implements [error].
func (e *StatusError) Error() string {
	if e.Status == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Status)
}

var (
	// ErrNotFound is returned by update-by-field when no document
	// matches. The capitalized message is part of the compatibility
	// surface; pages display it verbatim.
	ErrNotFound = errors.New("Document not found")

	// ErrNoDocument is returned by [Store.Update] when the target
	// document does not exist.
	ErrNoDocument = errors.New("no document to update")

	// ErrTooManyValues is returned by the native store when a membership
	// constraint exceeds [MaxOneOfValues] values.
	ErrTooManyValues = errors.New("membership constraint supports at most 10 values")

	// ErrNoSession is returned when an operation needs a signed-in
	// principal and there is none.
	ErrNoSession = &StatusError{Message: "no user is currently signed in", Status: "auth/no-user"}

	// ErrAlreadyVerified is returned when re-requesting verification for
	// an already verified email.
	ErrAlreadyVerified = &StatusError{Message: "email is already verified", Status: "auth/email-already-verified"}

	// ErrTargetNil is returned when a decode target is nil.
	ErrTargetNil = errors.New("target interface is nil")

	// ErrNonPointer is returned when a decode target is not a pointer.
	ErrNonPointer = errors.New("target must be a pointer")
)

// ErrBadOrClause reports a clause of an OR expression that does not parse
// as field.eq.value. Malformed clauses fail the whole query rather than
// silently dropping out of the disjunction.
type ErrBadOrClause struct {
	Clause string
}

// Error implements [error].
func (e ErrBadOrClause) Error() string {
	return fmt.Sprintf("malformed or-clause %q: want field.eq.value", e.Clause)
}

// ErrBadFilter reports a realtime filter string that does not parse as
// field=eq.value.
type ErrBadFilter struct {
	Filter string
}

// Error implements [error].
func (e ErrBadFilter) Error() string {
	return fmt.Sprintf("malformed realtime filter %q: want field=eq.value", e.Filter)
}

// ErrCannotCompare is returned when two values cannot be ordered.
type ErrCannotCompare struct {
	A any
	B any
}

// Error implements [error].
func (e ErrCannotCompare) Error() string {
	return fmt.Sprintf("cannot compare values of types %T and %T", e.A, e.B)
}
