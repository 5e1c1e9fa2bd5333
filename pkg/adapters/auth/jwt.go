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
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret accepted.
const MinSecretLength = 32

// JWTAuthenticator validates HMAC-signed bearer tokens.
type JWTAuthenticator struct {
	secret   []byte
	issuer   string
	audience string
	parser   *jwt.Parser
}

// JWTConfig configures the JWT authenticator.
type JWTConfig struct {
	// Secret is the shared HMAC key (required).
	Secret string

	// Issuer, when set, must match the "iss" claim.
	Issuer string

	// Audience, when set, must appear in the "aud" claim.
	Audience string

	// Leeway tolerates clock skew on exp/nbf/iat.
	Leeway time.Duration
}

// NewJWTAuthenticator creates a JWT authenticator. Tokens must be signed
// with HS256, HS384 or HS512 and carry an expiry.
func NewJWTAuthenticator(config *JWTConfig) (*JWTAuthenticator, error) {
	if config == nil {
		return nil, errors.New("auth: jwt config is required")
	}
	if len(config.Secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: jwt secret must be at least %d bytes", MinSecretLength)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}
	if config.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(config.Leeway))
	}

	return &JWTAuthenticator{
		secret:   []byte(config.Secret),
		issuer:   config.Issuer,
		audience: config.Audience,
		parser:   jwt.NewParser(opts...),
	}, nil
}

// AuthenticateHTTP validates the bearer token in the Authorization header.
func (a *JWTAuthenticator) AuthenticateHTTP(r *http.Request) (*Identity, error) {
	tokenString := bearerToken(r.Header.Get("Authorization"))
	if tokenString == "" {
		return nil, ErrNoCredentials
	}

	identity, err := a.validate(tokenString)
	if err != nil {
		return nil, err
	}
	identity.Attributes["auth_method"] = "jwt"
	identity.Attributes["remote_addr"] = r.RemoteAddr
	return identity, nil
}

func (a *JWTAuthenticator) validate(tokenString string) (*Identity, error) {
	claims := jwt.MapClaims{}
	_, err := a.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidCredentials)
	}

	identity := &Identity{
		Subject:    sub,
		Claims:     make(map[string]interface{}, len(claims)),
		Attributes: make(map[string]string),
	}
	for k, v := range claims {
		identity.Claims[k] = v
	}
	if role, ok := claims["role"].(string); ok {
		identity.Claims["roles"] = []string{role}
	}
	if name, ok := claims["name"].(string); ok {
		identity.Attributes["display_name"] = name
	}
	return identity, nil
}

// Sign issues a token for subject valid for ttl, carrying the configured
// issuer and audience. The CLI uses it to mint tokens for a secret.
func (a *JWTAuthenticator) Sign(subject string, ttl time.Duration, extra map[string]interface{}) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if a.issuer != "" {
		claims["iss"] = a.issuer
	}
	if a.audience != "" {
		claims["aud"] = a.audience
	}
	for k, v := range extra {
		claims[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *JWTAuthenticator) Name() string {
	return "jwt"
}
