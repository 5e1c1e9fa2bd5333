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

// Package classical implements the letter-domain ciphers: Vigenère,
// Autokey, Playfair, Affine and Hill.
//
// Every function normalizes its text and key with alphabet.Normalize
// before use and returns lower-case letters A-Z only. Spacing, case and
// punctuation of the input are not preserved.
package classical

import (
	"github.com/jeremyhahn/go-cipherlab/pkg/alphabet"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// VigenereEncrypt shifts letter i of text forward by key[i mod |key|].
func VigenereEncrypt(text, key string) (string, error) {
	return vigenere(text, key, 1, "vigenere.encrypt")
}

// VigenereDecrypt shifts letter i of text back by key[i mod |key|].
func VigenereDecrypt(text, key string) (string, error) {
	return vigenere(text, key, -1, "vigenere.decrypt")
}

func vigenere(text, key string, dir int, op string) (string, error) {
	k, err := normalizeKey(key, op)
	if err != nil {
		return "", err
	}
	txt := alphabet.Normalize(text)
	out := make([]byte, len(txt))
	for i := 0; i < len(txt); i++ {
		shift := alphabet.Index(k[i%len(k)])
		out[i] = alphabet.Shift(txt[i], dir*shift)
	}
	return alphabet.Lower(string(out)), nil
}

// normalizeKey returns the normalized key or an EmptyKey error when no
// letters remain.
func normalizeKey(key, op string) (string, error) {
	k := alphabet.Normalize(key)
	if k == "" {
		return "", types.NewError(types.KindEmptyKey, op, "key must contain at least one letter A-Z")
	}
	return k, nil
}
