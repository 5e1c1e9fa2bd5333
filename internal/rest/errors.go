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
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jeremyhahn/go-cipherlab/internal/service"
	"github.com/jeremyhahn/go-cipherlab/pkg/storage"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// Common errors
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidBody     = errors.New("invalid request body")
	ErrPayloadTooLarge = errors.New("request body too large")
	ErrMissingID       = errors.New("missing result id")
	ErrInternalError   = errors.New("internal server error")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Error kinds reported in ErrorResponse.Kind for failures that do not come
// from the engine.
const (
	KindNotFound      = "NotFound"
	KindUnauthorized  = "Unauthorized"
	KindForbidden     = "Forbidden"
	KindTooLarge      = "PayloadTooLarge"
	KindInvalidBody   = "InvalidRequest"
	KindInternalError = "Internal"
)

// writeError writes an error response to the client.
func writeError(w http.ResponseWriter, err error, statusCode int) {
	writeErrorResponse(w, ErrorResponse{
		Error: err.Error(),
		Code:  statusCode,
		Kind:  errorKind(err, statusCode),
	})
}

// writeErrorWithMessage writes an error response with a custom message.
func writeErrorWithMessage(w http.ResponseWriter, err error, message string, statusCode int) {
	writeErrorResponse(w, ErrorResponse{
		Error:   err.Error(),
		Message: message,
		Code:    statusCode,
		Kind:    errorKind(err, statusCode),
	})
}

func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}

// mapErrorToStatusCode maps errors to HTTP status codes. Every engine
// error kind except Internal is a client error.
func mapErrorToStatusCode(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrPayloadTooLarge),
		errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, service.ErrStoreDisabled):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidID),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrMissingID):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	}

	switch types.KindOf(err) {
	case types.KindEmptyKey, types.KindNonCoprimeParameter, types.KindSingularMatrix,
		types.KindLengthMismatch, types.KindMalformedInput, types.KindUnsupported:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func errorKind(err error, statusCode int) string {
	if kind := types.KindOf(err); kind != "" {
		return kind.String()
	}
	switch statusCode {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusRequestEntityTooLarge:
		return KindTooLarge
	case http.StatusBadRequest:
		return KindInvalidBody
	default:
		return KindInternalError
	}
}

// handleError maps err to a status code and writes it. Server-side
// failures are reported without their cause.
func handleError(w http.ResponseWriter, err error) {
	statusCode := mapErrorToStatusCode(err)
	if statusCode == http.StatusInternalServerError {
		writeErrorWithMessage(w, ErrInternalError, "An unexpected error occurred", statusCode)
		return
	}
	writeError(w, err, statusCode)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}
