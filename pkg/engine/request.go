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

package engine

import (
	"fmt"

	"github.com/jeremyhahn/go-cipherlab/pkg/modular"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// AffineParams are the multiplier and offset of the affine cipher.
type AffineParams struct {
	A int `json:"a" yaml:"a"`
	B int `json:"b" yaml:"b"`
}

// Request is one transform. Letter-domain variants read Payload as UTF-8
// text; byte-domain variants read it as raw bytes. The engine never
// modifies or retains Payload.
type Request struct {
	Variant   types.Variant
	Operation types.Operation
	Payload   []byte

	// Key is the primary key for every variant except affine and hill.
	Key string

	// Key2 is the transposition key of the super cipher.
	Key2 string

	// Matrix is the hill key matrix.
	Matrix modular.Matrix

	// Affine holds the affine parameters.
	Affine *AffineParams
}

// Limits bound the size of accepted requests. A zero field means no limit.
type Limits struct {
	MaxPayloadBytes int `yaml:"max_payload_bytes" json:"max_payload_bytes"`
	MaxKeyBytes     int `yaml:"max_key_bytes" json:"max_key_bytes"`
	MaxMatrixSide   int `yaml:"max_matrix_side" json:"max_matrix_side"`
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 64 << 20,
		MaxKeyBytes:     4096,
		MaxMatrixSide:   8,
	}
}

// Check validates req against the limits.
func (l Limits) Check(req *Request) error {
	if l.MaxPayloadBytes > 0 && len(req.Payload) > l.MaxPayloadBytes {
		return types.NewError(types.KindMalformedInput, "limits",
			fmt.Sprintf("payload of %d bytes exceeds limit of %d", len(req.Payload), l.MaxPayloadBytes))
	}
	if l.MaxKeyBytes > 0 {
		if len(req.Key) > l.MaxKeyBytes {
			return types.NewError(types.KindMalformedInput, "limits",
				fmt.Sprintf("key of %d bytes exceeds limit of %d", len(req.Key), l.MaxKeyBytes))
		}
		if len(req.Key2) > l.MaxKeyBytes {
			return types.NewError(types.KindMalformedInput, "limits",
				fmt.Sprintf("key2 of %d bytes exceeds limit of %d", len(req.Key2), l.MaxKeyBytes))
		}
	}
	if l.MaxMatrixSide > 0 && len(req.Matrix) > l.MaxMatrixSide {
		return types.NewError(types.KindMalformedInput, "limits",
			fmt.Sprintf("matrix side %d exceeds limit of %d", len(req.Matrix), l.MaxMatrixSide))
	}
	return nil
}
