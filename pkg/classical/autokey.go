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

package classical

import (
	"github.com/jeremyhahn/go-cipherlab/pkg/alphabet"
)

// AutokeyEncrypt uses the key followed by the plaintext itself as the
// keystream.
func AutokeyEncrypt(text, key string) (string, error) {
	k, err := normalizeKey(key, "autokey.encrypt")
	if err != nil {
		return "", err
	}
	txt := alphabet.Normalize(text)
	keystream := k + txt
	out := make([]byte, len(txt))
	for i := 0; i < len(txt); i++ {
		out[i] = alphabet.Shift(txt[i], alphabet.Index(keystream[i]))
	}
	return alphabet.Lower(string(out)), nil
}

// AutokeyDecrypt recovers plaintext left to right. Each recovered letter
// is appended to the keystream before the next position is decoded.
func AutokeyDecrypt(text, key string) (string, error) {
	k, err := normalizeKey(key, "autokey.decrypt")
	if err != nil {
		return "", err
	}
	txt := alphabet.Normalize(text)

	keystream := make([]byte, len(k), len(k)+len(txt))
	copy(keystream, k)
	plain := make([]byte, 0, len(txt))
	for i := 0; i < len(txt); i++ {
		p := alphabet.Shift(txt[i], -alphabet.Index(keystream[i]))
		plain = append(plain, p)
		keystream = append(keystream, p)
	}
	return alphabet.Lower(string(plain)), nil
}
