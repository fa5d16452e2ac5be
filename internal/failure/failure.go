// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

// Package failure defines the typed error kinds surfaced by the pipeline.
//
// Every error that crosses a component boundary carries a Kind so that callers
// (for example the HTTP adapter) can pick a response without inspecting
// message text:
//
//	if failure.KindOf(err) == failure.KindTimeout {
//	    status = http.StatusGatewayTimeout
//	}
package failure

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindValidation marks malformed input. Never retried.
	KindValidation Kind = "validation"

	// KindDependencyUnavailable marks an external store or AI capability that
	// could not be reached or refused the call.
	KindDependencyUnavailable Kind = "dependency_unavailable"

	// KindTimeout marks an external call that exceeded its deadline.
	KindTimeout Kind = "timeout"

	// KindInternal is everything else.
	KindInternal Kind = "internal"
)

// Error is a failure with a kind and the operation that produced it.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with the given kind and operation name.
func New(kind Kind, op string, err error) *Error {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation creates a validation failure with a formatted message.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// Unavailable wraps err as a dependency-unavailable failure.
func Unavailable(op string, err error) *Error {
	return New(KindDependencyUnavailable, op, err)
}

// Timeout wraps err as a timeout failure.
func Timeout(op string, err error) *Error {
	return New(KindTimeout, op, err)
}

// FromContext converts an error returned by a call that was bound to a
// context into a typed failure. Deadline errors become KindTimeout and
// cancellation becomes KindDependencyUnavailable. Errors that already carry a
// kind are returned unchanged.
func FromContext(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(op, err)
	}
	if errors.Is(err, context.Canceled) {
		return Unavailable(op, err)
	}
	return Unavailable(op, err)
}

// KindOf reports the kind of err. Untyped deadline errors are reported as
// KindTimeout; any other untyped error is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
