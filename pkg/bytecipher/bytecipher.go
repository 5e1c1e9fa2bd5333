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

// Package bytecipher implements the extended Vigenère cipher over raw bytes
// modulo 256. The key is the UTF-8 encoding of the key string.
package bytecipher

import (
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// Encrypt returns out[i] = (data[i] + key[i mod |key|]) mod 256.
// data is never modified.
func Encrypt(data []byte, key string) ([]byte, error) {
	return apply(data, key, 1, "extended_vigenere.encrypt")
}

// Decrypt returns out[i] = (data[i] - key[i mod |key|]) mod 256.
func Decrypt(data []byte, key string) ([]byte, error) {
	return apply(data, key, -1, "extended_vigenere.decrypt")
}

func apply(data []byte, key string, dir int, op string) ([]byte, error) {
	if len(key) == 0 {
		return nil, types.NewError(types.KindEmptyKey, op, "key must not be empty")
	}
	k := []byte(key)
	out := make([]byte, len(data))
	if dir > 0 {
		for i, b := range data {
			out[i] = b + k[i%len(k)]
		}
	} else {
		for i, b := range data {
			out[i] = b - k[i%len(k)]
		}
	}
	return out, nil
}
