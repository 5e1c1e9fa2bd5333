// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-cipherlab.
//
// go-cipherlab is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package types

import (
	"errors"
)

// Kind is a stable category for programmatic error handling. Callers branch
// on Kind, never on the Error() text.
type Kind string

const (
	// KindEmptyKey means a key normalized to nothing.
	KindEmptyKey Kind = "EmptyKey"

	// KindNonCoprimeParameter means an affine multiplier shares a factor with 26.
	KindNonCoprimeParameter Kind = "NonCoprimeParameter"

	// KindSingularMatrix means a Hill key matrix has no inverse modulo 26.
	KindSingularMatrix Kind = "SingularMatrix"

	// KindLengthMismatch means framed data does not fit the transposition grid
	// or its length prefix.
	KindLengthMismatch Kind = "LengthMismatch"

	// KindMalformedInput covers bad shapes, missing parameters and limit violations.
	KindMalformedInput Kind = "MalformedInput"

	// KindUnsupported means an unknown variant or operation.
	KindUnsupported Kind = "Unsupported"

	KindInternal Kind = "Internal"
)

// Kinds lists every error kind.
var Kinds = []Kind{
	KindEmptyKey,
	KindNonCoprimeParameter,
	KindSingularMatrix,
	KindLengthMismatch,
	KindMalformedInput,
	KindUnsupported,
	KindInternal,
}

func (k Kind) String() string {
	return string(k)
}

// Error is the engine's structured error type.
//
// Op names the cipher step that failed (for example "hill.decrypt").
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *Error of the same Kind. A target with a message
// additionally requires the messages to match, so the message-less
// sentinels below match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Sentinel values for errors.Is.
var (
	ErrEmptyKey            = &Error{Kind: KindEmptyKey}
	ErrNonCoprimeParameter = &Error{Kind: KindNonCoprimeParameter}
	ErrSingularMatrix      = &Error{Kind: KindSingularMatrix}
	ErrLengthMismatch      = &Error{Kind: KindLengthMismatch}
	ErrMalformedInput      = &Error{Kind: KindMalformedInput}
	ErrUnsupported         = &Error{Kind: KindUnsupported}
)

// NewError returns a *Error of the given kind.
func NewError(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

// WrapError returns a *Error of the given kind wrapping cause.
func WrapError(kind Kind, op, msg string, cause error) error {
	if cause == nil {
		return NewError(kind, op, msg)
	}
	return &Error{Kind: kind, Op: op, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of a structured error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
