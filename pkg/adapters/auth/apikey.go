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
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// HashPrefix marks a configured key that is already a BLAKE2b-256 digest.
const HashPrefix = "blake2b:"

// HashKey returns the configuration form of an API key: HashPrefix
// followed by the hex BLAKE2b-256 digest.
func HashKey(apiKey string) string {
	sum := blake2b.Sum256([]byte(apiKey))
	return HashPrefix + hex.EncodeToString(sum[:])
}

// APIKeyAuthenticator authenticates requests by API key. Only digests of
// the keys are held in memory.
type APIKeyAuthenticator struct {
	mu         sync.RWMutex
	keys       map[[blake2b.Size256]byte]*Identity
	headerName string
	queryParam string
}

// APIKeyConfig configures the API key authenticator.
type APIKeyConfig struct {
	// Keys maps a plaintext key, or HashPrefix+hex digest, to the subject
	// it authenticates as.
	Keys map[string]string

	// HeaderName defaults to "X-API-Key".
	HeaderName string

	// QueryParam defaults to "api_key".
	QueryParam string
}

// NewAPIKeyAuthenticator creates an authenticator from config. It fails
// when a hashed key is not valid hex of the right length.
func NewAPIKeyAuthenticator(config *APIKeyConfig) (*APIKeyAuthenticator, error) {
	if config == nil {
		config = &APIKeyConfig{}
	}
	a := &APIKeyAuthenticator{
		keys:       make(map[[blake2b.Size256]byte]*Identity, len(config.Keys)),
		headerName: config.HeaderName,
		queryParam: config.QueryParam,
	}
	if a.headerName == "" {
		a.headerName = "X-API-Key"
	}
	if a.queryParam == "" {
		a.queryParam = "api_key"
	}

	for key, subject := range config.Keys {
		digest, err := parseConfiguredKey(key)
		if err != nil {
			return nil, err
		}
		a.keys[digest] = &Identity{Subject: subject, Attributes: map[string]string{}}
	}
	return a, nil
}

func parseConfiguredKey(key string) ([blake2b.Size256]byte, error) {
	var digest [blake2b.Size256]byte
	if !strings.HasPrefix(key, HashPrefix) {
		return blake2b.Sum256([]byte(key)), nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(key, HashPrefix))
	if err != nil || len(raw) != blake2b.Size256 {
		return digest, fmt.Errorf("auth: malformed hashed API key")
	}
	copy(digest[:], raw)
	return digest, nil
}

// AddKey registers a plaintext key for subject.
func (a *APIKeyAuthenticator) AddKey(apiKey, subject string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys[blake2b.Sum256([]byte(apiKey))] = &Identity{Subject: subject, Attributes: map[string]string{}}
}

// RemoveKey unregisters a plaintext key.
func (a *APIKeyAuthenticator) RemoveKey(apiKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.keys, blake2b.Sum256([]byte(apiKey)))
}

// AuthenticateHTTP reads the key from the configured header, then the
// query parameter, then an Authorization Bearer token.
func (a *APIKeyAuthenticator) AuthenticateHTTP(r *http.Request) (*Identity, error) {
	apiKey := r.Header.Get(a.headerName)
	if apiKey == "" {
		apiKey = r.URL.Query().Get(a.queryParam)
	}
	if apiKey == "" {
		apiKey = bearerToken(r.Header.Get("Authorization"))
	}
	if apiKey == "" {
		return nil, ErrNoCredentials
	}

	presented := blake2b.Sum256([]byte(apiKey))

	a.mu.RLock()
	var match *Identity
	for digest, identity := range a.keys {
		if subtle.ConstantTimeCompare(digest[:], presented[:]) == 1 {
			match = identity
		}
	}
	a.mu.RUnlock()

	if match == nil {
		return nil, fmt.Errorf("%w: unknown API key", ErrInvalidCredentials)
	}

	identity := match.clone()
	identity.Attributes["auth_method"] = "apikey"
	identity.Attributes["remote_addr"] = r.RemoteAddr
	return identity, nil
}

func (a *APIKeyAuthenticator) Name() string {
	return "apikey"
}
