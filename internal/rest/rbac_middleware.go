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

package rest

import (
	"errors"
	"net/http"

	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/auth"
	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/logger"
)

// ErrForbidden is returned when an identity lacks a required role.
var ErrForbidden = errors.New("forbidden")

// RequireRole returns middleware that requires the authenticated identity
// to carry roleName. An empty roleName lets every request through.
func (s *Server) RequireRole(roleName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if roleName == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity := auth.GetIdentity(ctx)
			if identity == nil {
				s.logger.WarnContext(ctx, "Role check failed: no identity in context",
					logger.String("method", r.Method),
					logger.String("path", SanitizeString(r.URL.Path)))
				writeErrorWithMessage(w, ErrUnauthorized, "Authentication required", http.StatusUnauthorized)
				return
			}

			if !identity.HasRole(roleName) {
				s.logger.WarnContext(ctx, "Access denied: missing role",
					logger.String("subject", identity.Subject),
					logger.String("required_role", roleName),
					logger.String("method", r.Method),
					logger.String("path", SanitizeString(r.URL.Path)))
				writeErrorWithMessage(w, ErrForbidden, "Access denied: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
