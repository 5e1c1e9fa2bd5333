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
	"time"

	"github.com/jeremyhahn/go-cipherlab/pkg/engine"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ListCiphersResponse represents the response for listing ciphers.
type ListCiphersResponse struct {
	Ciphers []engine.CipherInfo `json:"ciphers"`
}

// ProcessRequest is the JSON form of a cipher job. Field names follow the
// HTML form so the same client code can post either.
type ProcessRequest struct {
	CipherType string `json:"cipher_type"`
	Operation  string `json:"operation,omitempty"`
	Key        string `json:"key,omitempty"`
	Key2       string `json:"key2,omitempty"`
	AffineA    *int   `json:"affine_a,omitempty"`
	AffineB    *int   `json:"affine_b,omitempty"`

	// HillMatrix accepts either a JSON array or a string holding one,
	// as sent by the form.
	HillMatrix json.RawMessage `json:"hill_matrix,omitempty"`

	Text string `json:"text,omitempty"`

	// Filename and File carry an upload; File is standard base64.
	Filename string `json:"filename,omitempty"`
	File     []byte `json:"file,omitempty"`
}

// ProcessResponse is returned by the encrypt, decrypt and process routes.
type ProcessResponse struct {
	Success    bool   `json:"success"`
	Result     string `json:"result"`
	Filename   string `json:"filename"`
	IsFile     bool   `json:"is_file"`
	Size       int    `json:"size"`
	ResultText string `json:"result_text"`
	ResultID   string `json:"result_id,omitempty"`
	Cipher     string `json:"cipher"`
	Operation  string `json:"operation"`
}

// DownloadRequest is the JSON form of a download.
type DownloadRequest struct {
	Data     string `json:"data"`
	Filename string `json:"filename,omitempty"`
}

// ResultInfo describes a stored result.
type ResultInfo struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Cipher    string    `json:"cipher,omitempty"`
	Operation string    `json:"operation,omitempty"`
	IsFile    bool      `json:"is_file"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResultsResponse represents the response for listing stored results.
type ListResultsResponse struct {
	Results []ResultInfo `json:"results"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
}
