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

// Package rest provides the HTTP API of cipherlabd.
//
// # Server Setup
//
//	svc := service.New(service.Options{
//	    Engine: engine.New(engine.DefaultLimits()),
//	    Store:  storage.NewResultStore(memory.New(), "memory", 0),
//	})
//	server, _ := rest.NewServer(&rest.Config{
//	    Address: ":8080",
//	    Service: svc,
//	})
//	go server.Start()
//	defer server.Stop(context.Background())
//
// # API Endpoints
//
// Health (no authentication):
//   - GET /health - Server status and version
//   - GET /health/live - Liveness probe
//   - GET /health/ready - Readiness probe (engine self-test, result store)
//   - GET /health/startup - Startup probe
//
// Ciphers:
//   - GET /api/v1/ciphers - Supported variants with domain and parameters
//
// Jobs (multipart/form-data, url-encoded form or JSON):
//   - POST /api/v1/encrypt
//   - POST /api/v1/decrypt
//   - POST /api/v1/process - operation taken from the "operation" field
//
// Form fields are cipher_type, operation, key, key2, affine_a, affine_b,
// hill_matrix (JSON array), text and file. A job response looks like:
//
//	{
//	  "success": true,
//	  "result": "<base64 output>",
//	  "filename": "report_encrypted.dat",
//	  "is_file": true,
//	  "size": 1234,
//	  "result_text": "file processed",
//	  "result_id": "bafkrei..."
//	}
//
// Downloads and stored results:
//   - POST /api/v1/download - base64 "data" and "filename" returned as an attachment
//   - GET /api/v1/results - Stored result metadata
//   - GET /api/v1/results/{id} - Stored result as an attachment
//   - DELETE /api/v1/results/{id} - Remove a stored result
//
// # Errors
//
// Failures return ErrorResponse with the engine error kind:
//
//	{"success": false, "error": "hill.encrypt: ...", "code": 400, "kind": "SingularMatrix"}
//
// Engine kinds map to 400, missing results to 404, oversized bodies to 413,
// authentication failures to 401 and rate limiting to 429.
package rest
