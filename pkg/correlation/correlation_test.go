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

package correlation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc")
	assert.Equal(t, "abc", GetCorrelationID(ctx))
	assert.Equal(t, "abc", GetOrGenerate(ctx))
	assert.Equal(t, "", GetCorrelationID(context.Background()))

	//nolint:staticcheck // nil context is accepted
	assert.Equal(t, "", GetCorrelationID(nil))
}

func TestNewID(t *testing.T) {
	id := NewID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewID())
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("req-42"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("has space"))
	assert.False(t, Valid("new\nline"))
	assert.False(t, Valid(strings.Repeat("a", MaxIDLength+1)))
}

func TestFromRequest(t *testing.T) {
	t.Run("CorrelationHeaderWins", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(CorrelationIDHeader, "corr")
		r.Header.Set(RequestIDHeader, "req")
		assert.Equal(t, "corr", FromRequest(r))
	})

	t.Run("RequestHeaderFallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "req")
		assert.Equal(t, "req", FromRequest(r))
	})

	t.Run("InvalidIgnored", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "bad id")
		id := FromRequest(r)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/encrypt", nil)
	r.Header.Set(RequestIDHeader, "client-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "client-1", seen)
	assert.Equal(t, "client-1", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "client-1", w.Header().Get(CorrelationIDHeader))
}
