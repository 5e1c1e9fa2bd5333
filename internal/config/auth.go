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

package config

import (
	"fmt"
	"strings"

	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/auth"
)

func (cfg *AuthConfig) method() string {
	if !cfg.Enabled {
		return "none"
	}
	return strings.ToLower(cfg.Type)
}

func (cfg *AuthConfig) validate() error {
	switch cfg.method() {
	case "none", "noop", "":
		return nil
	case "apikey":
		if len(cfg.APIKeys) == 0 {
			return fmt.Errorf("auth: no API keys configured")
		}
		return nil
	case "jwt":
		if len(cfg.JWT.Secret) < auth.MinSecretLength {
			return fmt.Errorf("auth: jwt secret must be at least %d bytes", auth.MinSecretLength)
		}
		return nil
	default:
		return fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}

// CreateAuthenticator creates an authenticator from the configuration
func (cfg *AuthConfig) CreateAuthenticator() (auth.Authenticator, error) {
	return auth.New(cfg.method(),
		&auth.APIKeyConfig{Keys: cfg.APIKeys},
		&auth.JWTConfig{
			Secret:   cfg.JWT.Secret,
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
			Leeway:   cfg.JWT.Leeway,
		})
}
