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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/jeremyhahn/go-cipherlab/internal/service"
)

// Form field names shared by the HTML form and the JSON body.
const (
	FieldCipherType = "cipher_type"
	FieldOperation  = "operation"
	FieldKey        = "key"
	FieldKey2       = "key2"
	FieldAffineA    = "affine_a"
	FieldAffineB    = "affine_b"
	FieldHillMatrix = "hill_matrix"
	FieldText       = "text"
	FieldFile       = "file"
)

// multipartMemory is held in memory before multipart parts spill to disk.
const multipartMemory = 32 << 20

// parseJob reads a job from a JSON, multipart or url-encoded body.
func parseJob(r *http.Request) (*service.Job, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		return parseJSONJob(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, bodyError(err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
	}
	return parseFormJob(r)
}

func parseFormJob(r *http.Request) (*service.Job, error) {
	job := &service.Job{
		Cipher:    r.FormValue(FieldCipherType),
		Operation: r.FormValue(FieldOperation),
		Key:       r.FormValue(FieldKey),
		Key2:      r.FormValue(FieldKey2),
		Text:      r.FormValue(FieldText),
	}

	var err error
	if job.AffineA, err = formInt(r, FieldAffineA); err != nil {
		return nil, err
	}
	if job.AffineB, err = formInt(r, FieldAffineB); err != nil {
		return nil, err
	}
	if job.HillMatrix, err = parseMatrix([]byte(r.FormValue(FieldHillMatrix))); err != nil {
		return nil, err
	}

	if r.MultipartForm != nil {
		file, header, ferr := r.FormFile(FieldFile)
		switch {
		case ferr == nil:
			defer file.Close()
			if header.Filename != "" {
				data, rerr := io.ReadAll(file)
				if rerr != nil {
					return nil, bodyError(rerr)
				}
				job.File = &service.Upload{Name: header.Filename, Data: data}
			}
		case !errors.Is(ferr, http.ErrMissingFile):
			return nil, bodyError(ferr)
		}
	}

	if err := ValidateCipherType(job.Cipher); err != nil {
		return nil, err
	}
	return job, nil
}

func parseJSONJob(r *http.Request) (*service.Job, error) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, bodyError(err)
	}
	matrix, err := parseMatrix(req.HillMatrix)
	if err != nil {
		return nil, err
	}
	job := &service.Job{
		Cipher:     req.CipherType,
		Operation:  req.Operation,
		Key:        req.Key,
		Key2:       req.Key2,
		AffineA:    req.AffineA,
		AffineB:    req.AffineB,
		HillMatrix: matrix,
		Text:       req.Text,
	}
	if req.Filename != "" {
		job.File = &service.Upload{Name: req.Filename, Data: req.File}
	}
	if err := ValidateCipherType(job.Cipher); err != nil {
		return nil, err
	}
	return job, nil
}

func formInt(r *http.Request, field string) (*int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidRequest, field)
	}
	return &n, nil
}

// parseMatrix decodes a hill matrix given as a JSON array, or as a JSON
// string holding one. Empty input means "use the default".
func parseMatrix(raw []byte) ([][]int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: %s is not valid JSON", ErrInvalidRequest, FieldHillMatrix)
		}
		return parseMatrix([]byte(inner))
	}
	var rows [][]int64
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s must be a JSON array of integer rows", ErrInvalidRequest, FieldHillMatrix)
	}
	return rows, nil
}

// bodyError keeps size violations distinguishable from malformed bodies.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, tooLarge.Limit)
	}
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	// ParseMultipartForm wraps size errors in plain strings
	if strings.Contains(err.Error(), "request body too large") {
		return ErrPayloadTooLarge
	}
	return fmt.Errorf("%w: %v", ErrInvalidBody, err)
}
