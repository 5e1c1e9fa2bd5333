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

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIdentityContext(t *testing.T) {
	assert.Nil(t, GetIdentity(context.Background()))

	id := &Identity{Subject: "alice", Claims: map[string]interface{}{"roles": []interface{}{"admin"}}}
	ctx := WithIdentity(context.Background(), id)
	assert.Same(t, id, GetIdentity(ctx))
	assert.True(t, id.HasRole("admin"))
	assert.False(t, id.HasRole("viewer"))

	var nilID *Identity
	assert.False(t, nilID.HasRole("admin"))
}

func TestNew(t *testing.T) {
	a, err := New("", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "noop", a.Name())

	a, err = New("apikey", &APIKeyConfig{Keys: map[string]string{"k": "svc"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "apikey", a.Name())

	a, err = New("jwt", nil, &JWTConfig{Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, "jwt", a.Name())

	_, err = New("kerberos", nil, nil)
	assert.Error(t, err)
}

func TestNoOp(t *testing.T) {
	id, err := NewNoOpAuthenticator().AuthenticateHTTP(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "anonymous", id.Subject)
	assert.Equal(t, "none", id.Attributes["auth_method"])
}

func TestHashKey(t *testing.T) {
	h := HashKey("secret-key")
	assert.True(t, strings.HasPrefix(h, HashPrefix))
	assert.Len(t, strings.TrimPrefix(h, HashPrefix), 64)
	assert.Equal(t, h, HashKey("secret-key"))
	assert.NotEqual(t, h, HashKey("other-key"))
}

func TestAPIKeyAuthenticator(t *testing.T) {
	a, err := NewAPIKeyAuthenticator(&APIKeyConfig{Keys: map[string]string{
		"plain-key":           "ci",
		HashKey("hashed-key"): "ops",
	}})
	require.NoError(t, err)

	t.Run("Header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-API-Key", "plain-key")
		id, err := a.AuthenticateHTTP(r)
		require.NoError(t, err)
		assert.Equal(t, "ci", id.Subject)
		assert.Equal(t, "apikey", id.Attributes["auth_method"])
	})

	t.Run("QueryHashed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/?api_key=hashed-key", nil)
		id, err := a.AuthenticateHTTP(r)
		require.NoError(t, err)
		assert.Equal(t, "ops", id.Subject)
	})

	t.Run("Bearer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer plain-key")
		_, err := a.AuthenticateHTTP(r)
		assert.NoError(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := a.AuthenticateHTTP(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("Unknown", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-API-Key", "nope")
		_, err := a.AuthenticateHTTP(r)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("AddRemove", func(t *testing.T) {
		a.AddKey("temp", "tmp")
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-API-Key", "temp")
		_, err := a.AuthenticateHTTP(r)
		require.NoError(t, err)

		a.RemoveKey("temp")
		_, err = a.AuthenticateHTTP(r)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("IdentityIsCopied", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-API-Key", "plain-key")
		id, err := a.AuthenticateHTTP(r)
		require.NoError(t, err)
		id.Attributes["mutated"] = "yes"

		again, err := a.AuthenticateHTTP(r)
		require.NoError(t, err)
		assert.NotContains(t, again.Attributes, "mutated")
	})
}

func TestAPIKeyMalformedHash(t *testing.T) {
	_, err := NewAPIKeyAuthenticator(&APIKeyConfig{Keys: map[string]string{HashPrefix + "zz": "x"}})
	assert.Error(t, err)
	_, err = NewAPIKeyAuthenticator(&APIKeyConfig{Keys: map[string]string{HashPrefix + "abcd": "x"}})
	assert.Error(t, err)
}

func TestJWTAuthenticator(t *testing.T) {
	a, err := NewJWTAuthenticator(&JWTConfig{Secret: testSecret, Issuer: "cipherlab", Audience: "api"})
	require.NoError(t, err)

	request := func(token string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		return r
	}

	t.Run("Valid", func(t *testing.T) {
		token, err := a.Sign("alice", time.Minute, map[string]interface{}{"role": "operator"})
		require.NoError(t, err)

		id, err := a.AuthenticateHTTP(request(token))
		require.NoError(t, err)
		assert.Equal(t, "alice", id.Subject)
		assert.True(t, id.HasRole("operator"))
		assert.Equal(t, "jwt", id.Attributes["auth_method"])
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := a.AuthenticateHTTP(request(""))
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := a.Sign("alice", -time.Minute, nil)
		require.NoError(t, err)
		_, err = a.AuthenticateHTTP(request(token))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, err := NewJWTAuthenticator(&JWTConfig{Secret: strings.Repeat("x", 32), Issuer: "cipherlab", Audience: "api"})
		require.NoError(t, err)
		token, err := other.Sign("mallory", time.Minute, nil)
		require.NoError(t, err)
		_, err = a.AuthenticateHTTP(request(token))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "alice", "iss": "someone-else", "aud": "api",
			"exp": time.Now().Add(time.Minute).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = a.AuthenticateHTTP(request(token))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("NoneAlgorithmRejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "alice", "iss": "cipherlab", "aud": "api",
			"exp": time.Now().Add(time.Minute).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = a.AuthenticateHTTP(request(token))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		token, err := a.Sign("", time.Minute, nil)
		require.NoError(t, err)
		_, err = a.AuthenticateHTTP(request(token))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestJWTConfigValidation(t *testing.T) {
	_, err := NewJWTAuthenticator(nil)
	assert.Error(t, err)
	_, err = NewJWTAuthenticator(&JWTConfig{Secret: "short"})
	assert.Error(t, err)
}
