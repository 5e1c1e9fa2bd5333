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

// Package engine is the single entry point of the cipher transform engine.
//
// An Engine dispatches a Request to the handler registered for its variant
// and returns either the full result or one typed *types.Error. It holds
// no mutable state, performs no I/O and is safe for concurrent use.
//
// Example:
//
//	eng := engine.New(engine.DefaultLimits())
//	out, err := eng.Run(&engine.Request{
//	    Variant:   types.VariantVigenere,
//	    Operation: types.OperationEncrypt,
//	    Payload:   []byte("HELLO"),
//	    Key:       "KEY",
//	})
//	// out == []byte("rijvs")
package engine

import (
	"fmt"

	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// CipherInfo describes a supported variant.
type CipherInfo struct {
	Variant     types.Variant `json:"variant"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Domain      types.Domain  `json:"domain"`
	BinarySafe  bool          `json:"binary_safe"`
	Parameters  []string      `json:"parameters"`
}

// Engine runs cipher requests.
type Engine struct {
	limits   Limits
	handlers map[types.Variant]handler
}

// New returns an Engine enforcing limits.
func New(limits Limits) *Engine {
	return &Engine{
		limits:   limits,
		handlers: defaultHandlers(),
	}
}

// Limits returns the limits the engine enforces.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Supports reports whether v has a registered handler.
func (e *Engine) Supports(v types.Variant) bool {
	_, ok := e.handlers[v]
	return ok
}

// Ciphers describes every supported variant in display order.
func (e *Engine) Ciphers() []CipherInfo {
	out := make([]CipherInfo, 0, len(e.handlers))
	for _, v := range types.Variants {
		if h, ok := e.handlers[v]; ok {
			info := h.info
			info.Parameters = append([]string(nil), h.info.Parameters...)
			out = append(out, info)
		}
	}
	return out
}

// Run executes req and returns the transformed payload. Letter-domain
// results are lower-case ASCII letters; byte-domain results are raw bytes.
func (e *Engine) Run(req *Request) ([]byte, error) {
	if req == nil {
		return nil, types.NewError(types.KindMalformedInput, "engine", "request is nil")
	}
	h, ok := e.handlers[req.Variant]
	if !ok {
		return nil, types.NewError(types.KindUnsupported, "engine",
			fmt.Sprintf("unsupported cipher variant %q", req.Variant))
	}
	if err := e.limits.Check(req); err != nil {
		return nil, err
	}

	switch req.Operation {
	case types.OperationEncrypt:
		return h.encrypt(req)
	case types.OperationDecrypt:
		return h.decrypt(req)
	default:
		return nil, types.NewError(types.KindUnsupported, "engine",
			fmt.Sprintf("unsupported operation %q", req.Operation))
	}
}
