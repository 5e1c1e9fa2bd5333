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
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jeremyhahn/go-cipherlab/internal/service"
	"github.com/jeremyhahn/go-cipherlab/pkg/health"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// HandlerContext holds dependencies for REST handlers.
type HandlerContext struct {
	// Service processes cipher jobs
	Service *service.Service
	// Version is the API version
	Version string
	// HealthChecker manages health check probes
	HealthChecker HealthChecker
}

// HealthChecker defines the interface for health checking.
type HealthChecker interface {
	Live(ctx context.Context) health.CheckResult
	Ready(ctx context.Context) []health.CheckResult
	Startup(ctx context.Context) health.CheckResult
}

// NewHandlerContext creates a new handler context.
func NewHandlerContext(svc *service.Service, version string) *HandlerContext {
	return &HandlerContext{
		Service: svc,
		Version: version,
	}
}

// SetHealthChecker sets the health checker for the handler context.
func (h *HandlerContext) SetHealthChecker(checker HealthChecker) {
	h.HealthChecker = checker
}

// HealthHandler handles GET /health requests.
func (h *HandlerContext) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Version: h.Version,
	}
	writeJSON(w, resp, http.StatusOK)
}

// ListCiphersHandler handles GET /api/v1/ciphers requests.
func (h *HandlerContext) ListCiphersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ListCiphersResponse{Ciphers: h.Service.Ciphers()}, http.StatusOK)
}

// EncryptHandler handles POST /api/v1/encrypt requests.
func (h *HandlerContext) EncryptHandler(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, types.OperationEncrypt.String())
}

// DecryptHandler handles POST /api/v1/decrypt requests.
func (h *HandlerContext) DecryptHandler(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, types.OperationDecrypt.String())
}

// ProcessHandler handles POST /api/v1/process requests. The operation
// comes from the operation field and defaults to encrypt.
func (h *HandlerContext) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, "")
}

func (h *HandlerContext) process(w http.ResponseWriter, r *http.Request, operation string) {
	job, err := parseJob(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if operation != "" {
		job.Operation = operation
	}

	result, err := h.Service.Process(r.Context(), job)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, ProcessResponse{
		Success:    true,
		Result:     base64.StdEncoding.EncodeToString(result.Data),
		Filename:   result.Filename,
		IsFile:     result.IsFile,
		Size:       result.Size,
		ResultText: result.Text,
		ResultID:   result.ResultID,
		Cipher:     result.Variant.String(),
		Operation:  result.Operation.String(),
	}, http.StatusOK)
}

// DownloadHandler handles POST /api/v1/download requests: it decodes the
// base64 data field and returns it as an attachment.
func (h *HandlerContext) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, bodyError(err))
			return
		}
	} else {
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(multipartMemory)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			handleError(w, bodyError(err))
			return
		}
		req.Data = r.FormValue("data")
		req.Filename = r.FormValue("filename")
	}

	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(req.Data), ""))
	if err != nil {
		writeErrorWithMessage(w, ErrInvalidRequest, "data must be standard base64", http.StatusBadRequest)
		return
	}
	if req.Filename == "" {
		req.Filename = DefaultDownloadName
	}
	writeAttachment(w, req.Filename, data)
}

// ListResultsHandler handles GET /api/v1/results requests.
func (h *HandlerContext) ListResultsHandler(w http.ResponseWriter, r *http.Request) {
	metas, err := h.Service.Results(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	resp := ListResultsResponse{Results: make([]ResultInfo, 0, len(metas))}
	for _, m := range metas {
		resp.Results = append(resp.Results, ResultInfo{
			ID:        m.ID,
			Filename:  m.Filename,
			Cipher:    m.Variant,
			Operation: m.Operation,
			IsFile:    m.IsFile,
			Size:      m.Size,
			CreatedAt: m.CreatedAt,
		})
	}
	writeJSON(w, resp, http.StatusOK)
}

// GetResultHandler handles GET /api/v1/results/{id} requests.
func (h *HandlerContext) GetResultHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, ErrMissingID, http.StatusBadRequest)
		return
	}
	data, meta, err := h.Service.Result(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	w.Header().Set("ETag", fmt.Sprintf("%q", meta.ID))
	writeAttachment(w, meta.Filename, data)
}

// DeleteResultHandler handles DELETE /api/v1/results/{id} requests.
func (h *HandlerContext) DeleteResultHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, ErrMissingID, http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteResult(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeAttachment(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", attachmentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
