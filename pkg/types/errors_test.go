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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	err := NewError(KindEmptyKey, "vigenere.encrypt", "key has no letters")
	assert.Equal(t, "vigenere.encrypt: key has no letters", err.Error())

	assert.Equal(t, "SingularMatrix", (&Error{Kind: KindSingularMatrix}).Error())

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
}

func TestError_IsSentinel(t *testing.T) {
	err := NewError(KindSingularMatrix, "hill.decrypt", "determinant 13 has no inverse mod 26")

	assert.True(t, errors.Is(err, ErrSingularMatrix))
	assert.False(t, errors.Is(err, ErrEmptyKey))

	wrapped := fmt.Errorf("job failed: %w", err)
	assert.True(t, errors.Is(wrapped, ErrSingularMatrix))
	assert.True(t, IsKind(wrapped, KindSingularMatrix))
	assert.Equal(t, KindSingularMatrix, KindOf(wrapped))
}

func TestError_IsMessageMismatch(t *testing.T) {
	a := NewError(KindMalformedInput, "", "one")
	b := NewError(KindMalformedInput, "", "two")
	assert.False(t, errors.Is(a, b))
	assert.True(t, errors.Is(a, ErrMalformedInput))
}

func TestWrapError(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(KindInternal, "engine", "handler failed", cause)

	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindInternal, e.Kind)

	noCause := WrapError(KindInternal, "engine", "handler failed", nil)
	assert.Nil(t, errors.Unwrap(noCause))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(errors.New("plain"), KindEmptyKey))
	assert.False(t, IsKind(nil, KindEmptyKey))
}
