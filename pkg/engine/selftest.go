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
	"bytes"
	"fmt"

	"github.com/jeremyhahn/go-cipherlab/pkg/modular"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// knownAnswer is a fixed encrypt vector checked in both directions.
type knownAnswer struct {
	req    Request
	cipher []byte
	plain  []byte
}

var knownAnswers = []knownAnswer{
	{
		req:    Request{Variant: types.VariantVigenere, Payload: []byte("HELLO"), Key: "KEY"},
		cipher: []byte("rijvs"),
		plain:  []byte("hello"),
	},
	{
		req:    Request{Variant: types.VariantAutokey, Payload: []byte("attack at dawn"), Key: "QUEENLY"},
		cipher: []byte("qnxepvytwtwp"),
		plain:  []byte("attackatdawn"),
	},
	{
		req:    Request{Variant: types.VariantPlayfair, Payload: []byte("hide the gold"), Key: "playfair example"},
		cipher: []byte("bmodzbxdnage"),
		plain:  []byte("hidethegold"),
	},
	{
		req:    Request{Variant: types.VariantAffine, Payload: []byte("HELLO"), Affine: &AffineParams{A: 5, B: 8}},
		cipher: []byte("rclla"),
		plain:  []byte("hello"),
	},
	{
		req: Request{
			Variant: types.VariantHill,
			Payload: []byte("ACT"),
			Matrix:  modular.Matrix{{6, 24, 1}, {13, 16, 10}, {20, 17, 15}},
		},
		cipher: []byte("poh"),
		plain:  []byte("act"),
	},
	{
		req:    Request{Variant: types.VariantExtendedVigenere, Payload: []byte{0x00, 0xFF, 0x41}, Key: "K"},
		cipher: []byte{0x4B, 0x4A, 0x8C},
		plain:  []byte{0x00, 0xFF, 0x41},
	},
	{
		req:    Request{Variant: types.VariantSuper, Payload: []byte{}, Key: "A", Key2: "BB"},
		cipher: make([]byte, 8),
		plain:  []byte{},
	},
}

// SelfTest runs fixed known-answer vectors for every variant through Run
// and reports the first mismatch.
func (e *Engine) SelfTest() error {
	for _, ka := range knownAnswers {
		enc := ka.req
		enc.Operation = types.OperationEncrypt
		got, err := e.Run(&enc)
		if err != nil {
			return fmt.Errorf("self-test %s encrypt: %w", enc.Variant, err)
		}
		if !bytes.Equal(got, ka.cipher) {
			return fmt.Errorf("self-test %s encrypt: got %x, want %x", enc.Variant, got, ka.cipher)
		}

		dec := ka.req
		dec.Operation = types.OperationDecrypt
		dec.Payload = ka.cipher
		got, err = e.Run(&dec)
		if err != nil {
			return fmt.Errorf("self-test %s decrypt: %w", dec.Variant, err)
		}
		if !bytes.Equal(got, ka.plain) {
			return fmt.Errorf("self-test %s decrypt: got %x, want %x", dec.Variant, got, ka.plain)
		}
	}
	return nil
}
