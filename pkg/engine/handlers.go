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
	"github.com/jeremyhahn/go-cipherlab/pkg/bytecipher"
	"github.com/jeremyhahn/go-cipherlab/pkg/classical"
	"github.com/jeremyhahn/go-cipherlab/pkg/transposition"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// transform runs one direction of a cipher.
type transform func(req *Request) ([]byte, error)

// handler pairs the two directions of one variant.
type handler struct {
	info    CipherInfo
	encrypt transform
	decrypt transform
}

// letterFunc is the shape of the keyed letter ciphers.
type letterFunc func(text, key string) (string, error)

func keyedLetters(fn letterFunc) transform {
	return func(req *Request) ([]byte, error) {
		return letterResult(fn(string(req.Payload), req.Key))
	}
}

func letterResult(s string, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func affine(fn func(text string, a, b int) (string, error)) transform {
	return func(req *Request) ([]byte, error) {
		if req.Affine == nil {
			return nil, types.NewError(types.KindMalformedInput, "affine", "affine parameters a and b are required")
		}
		return letterResult(fn(string(req.Payload), req.Affine.A, req.Affine.B))
	}
}

func hillEncrypt(req *Request) ([]byte, error) {
	if req.Matrix == nil {
		return nil, types.NewError(types.KindMalformedInput, "hill.encrypt", "key matrix is required")
	}
	return letterResult(classical.HillEncrypt(string(req.Payload), req.Matrix))
}

func hillDecrypt(req *Request) ([]byte, error) {
	if req.Matrix == nil {
		return nil, types.NewError(types.KindMalformedInput, "hill.decrypt", "key matrix is required")
	}
	return letterResult(classical.HillDecrypt(string(req.Payload), req.Matrix))
}

func extendedEncrypt(req *Request) ([]byte, error) {
	return bytecipher.Encrypt(req.Payload, req.Key)
}

func extendedDecrypt(req *Request) ([]byte, error) {
	return bytecipher.Decrypt(req.Payload, req.Key)
}

func superKeys(req *Request, op string) error {
	if req.Key == "" {
		return types.NewError(types.KindEmptyKey, op, "key must not be empty")
	}
	if req.Key2 == "" {
		return types.NewError(types.KindEmptyKey, op, "transposition key (key2) must not be empty")
	}
	return nil
}

func superEncrypt(req *Request) ([]byte, error) {
	if err := superKeys(req, "super.encrypt"); err != nil {
		return nil, err
	}
	stage1, err := bytecipher.Encrypt(req.Payload, req.Key)
	if err != nil {
		return nil, err
	}
	return transposition.FrameAndTranspose(stage1, req.Key2)
}

func superDecrypt(req *Request) ([]byte, error) {
	if err := superKeys(req, "super.decrypt"); err != nil {
		return nil, err
	}
	stage1, err := transposition.UntransposeAndUnframe(req.Payload, req.Key2)
	if err != nil {
		return nil, err
	}
	return bytecipher.Decrypt(stage1, req.Key)
}

// defaultHandlers builds the closed dispatch table.
func defaultHandlers() map[types.Variant]handler {
	table := []handler{
		{
			info: CipherInfo{
				Variant:     types.VariantVigenere,
				Name:        "Vigenère",
				Description: "Polyalphabetic shift by a repeating key",
				Parameters:  []string{"key"},
			},
			encrypt: keyedLetters(classical.VigenereEncrypt),
			decrypt: keyedLetters(classical.VigenereDecrypt),
		},
		{
			info: CipherInfo{
				Variant:     types.VariantAutokey,
				Name:        "Autokey Vigenère",
				Description: "Vigenère whose keystream continues with the plaintext",
				Parameters:  []string{"key"},
			},
			encrypt: keyedLetters(classical.AutokeyEncrypt),
			decrypt: keyedLetters(classical.AutokeyDecrypt),
		},
		{
			info: CipherInfo{
				Variant:     types.VariantPlayfair,
				Name:        "Playfair",
				Description: "Digraph substitution on a 5x5 key square (I/J merged)",
				Parameters:  []string{"key"},
			},
			encrypt: keyedLetters(classical.PlayfairEncrypt),
			decrypt: keyedLetters(classical.PlayfairDecrypt),
		},
		{
			info: CipherInfo{
				Variant:     types.VariantAffine,
				Name:        "Affine",
				Description: "Letter map x -> (a*x + b) mod 26, gcd(a, 26) = 1",
				Parameters:  []string{"affine_a", "affine_b"},
			},
			encrypt: affine(classical.AffineEncrypt),
			decrypt: affine(classical.AffineDecrypt),
		},
		{
			info: CipherInfo{
				Variant:     types.VariantHill,
				Name:        "Hill",
				Description: "Block cipher multiplying letter vectors by an invertible matrix mod 26",
				Parameters:  []string{"hill_matrix"},
			},
			encrypt: hillEncrypt,
			decrypt: hillDecrypt,
		},
		{
			info: CipherInfo{
				Variant:     types.VariantExtendedVigenere,
				Name:        "Extended Vigenère",
				Description: "Vigenère over raw bytes modulo 256",
				Parameters:  []string{"key"},
			},
			encrypt: extendedEncrypt,
			decrypt: extendedDecrypt,
		},
		{
			info: CipherInfo{
				Variant:     types.VariantSuper,
				Name:        "Super",
				Description: "Extended Vigenère followed by length-framed columnar transposition",
				Parameters:  []string{"key", "key2"},
			},
			encrypt: superEncrypt,
			decrypt: superDecrypt,
		},
	}

	handlers := make(map[types.Variant]handler, len(table))
	for _, h := range table {
		h.info.Domain = h.info.Variant.Domain()
		h.info.BinarySafe = h.info.Variant.BinarySafe()
		handlers[h.info.Variant] = h
	}
	return handlers
}
