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
	"github.com/jeremyhahn/go-cipherlab/pkg/modular"
)

const hillFiller = 'X'

// HillEncrypt multiplies each block of n letters by the n x n key matrix
// mod 26. The text is padded with X to a multiple of n.
func HillEncrypt(text string, key modular.Matrix) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	return hillApply(alphabet.Normalize(text), key), nil
}

// HillDecrypt multiplies each block by the inverse key matrix mod 26. It
// fails with a SingularMatrix error when the key has no inverse. A short
// final block is padded with X. Filler added during encryption is not
// removed.
func HillDecrypt(text string, key modular.Matrix) (string, error) {
	inv, err := key.InverseMod(alphabet.Size)
	if err != nil {
		return "", err
	}
	return hillApply(alphabet.Normalize(text), inv), nil
}

func hillApply(txt string, m modular.Matrix) string {
	n := m.Size()
	buf := []byte(txt)
	for len(buf)%n != 0 {
		buf = append(buf, hillFiller)
	}
	out := make([]byte, 0, len(buf))
	block := make([]int64, n)
	for i := 0; i < len(buf); i += n {
		for j := 0; j < n; j++ {
			block[j] = int64(alphabet.Index(buf[i+j]))
		}
		for _, v := range m.MulVecMod(block, alphabet.Size) {
			out = append(out, alphabet.Letter(int(v)))
		}
	}
	return alphabet.Lower(string(out))
}
