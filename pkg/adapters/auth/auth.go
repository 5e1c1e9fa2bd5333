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

// Package auth provides pluggable request authentication for the HTTP API:
// a no-op authenticator, hashed API keys and HMAC-signed JWTs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoCredentials is returned when a request carries no credentials.
	ErrNoCredentials = errors.New("auth: no credentials provided")

	// ErrInvalidCredentials is returned when credentials are present but rejected.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// Identity is an authenticated caller.
type Identity struct {
	// Subject identifies the caller (user ID, service name, key label).
	Subject string

	// Claims carries authorization data such as roles.
	Claims map[string]interface{}

	// Attributes carries metadata about how the caller authenticated.
	Attributes map[string]string
}

// Authenticator authenticates HTTP requests.
type Authenticator interface {
	// AuthenticateHTTP returns the caller identity or an error wrapping
	// ErrNoCredentials or ErrInvalidCredentials.
	AuthenticateHTTP(r *http.Request) (*Identity, error)

	// Name is used in logs.
	Name() string
}

type contextKey string

const identityContextKey contextKey = "auth.identity"

// GetIdentity returns the identity stored in ctx, or nil.
func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(identityContextKey).(*Identity); ok {
		return identity
	}
	return nil
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// HasRole reports whether the identity carries role in its "roles" claim.
func (i *Identity) HasRole(role string) bool {
	if i == nil || i.Claims == nil {
		return false
	}
	switch roles := i.Claims["roles"].(type) {
	case []string:
		for _, r := range roles {
			if r == role {
				return true
			}
		}
	case []interface{}:
		for _, r := range roles {
			if s, ok := r.(string); ok && s == role {
				return true
			}
		}
	case string:
		return roles == role
	}
	return false
}

// clone deep-copies the identity maps so callers can annotate the result.
func (i *Identity) clone() *Identity {
	out := &Identity{
		Subject:    i.Subject,
		Claims:     make(map[string]interface{}, len(i.Claims)),
		Attributes: make(map[string]string, len(i.Attributes)+2),
	}
	for k, v := range i.Claims {
		out.Claims[k] = v
	}
	for k, v := range i.Attributes {
		out.Attributes[k] = v
	}
	return out
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// New builds the authenticator named by method. Supported methods are
// "none" (or empty), "apikey" and "jwt".
func New(method string, apiKeys *APIKeyConfig, jwtConfig *JWTConfig) (Authenticator, error) {
	switch strings.ToLower(method) {
	case "", "none", "noop":
		return NewNoOpAuthenticator(), nil
	case "apikey", "api_key":
		return NewAPIKeyAuthenticator(apiKeys)
	case "jwt":
		return NewJWTAuthenticator(jwtConfig)
	default:
		return nil, fmt.Errorf("auth: unsupported method %q", method)
	}
}
