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
	"fmt"

	"github.com/jeremyhahn/go-cipherlab/pkg/alphabet"
	"github.com/jeremyhahn/go-cipherlab/pkg/modular"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// AffineEncrypt maps each letter x to (a*x + b) mod 26. The multiplier a
// must be coprime with 26.
func AffineEncrypt(text string, a, b int) (string, error) {
	am, bm, err := affineParams(a, b, "affine.encrypt")
	if err != nil {
		return "", err
	}
	txt := alphabet.Normalize(text)
	out := make([]byte, len(txt))
	for i := 0; i < len(txt); i++ {
		x := int64(alphabet.Index(txt[i]))
		out[i] = alphabet.Letter(int(modular.Mod(am*x+bm, alphabet.Size)))
	}
	return alphabet.Lower(string(out)), nil
}

// AffineDecrypt maps each letter y to a⁻¹ * (y - b) mod 26.
func AffineDecrypt(text string, a, b int) (string, error) {
	am, bm, err := affineParams(a, b, "affine.decrypt")
	if err != nil {
		return "", err
	}
	inv, _ := modular.Inverse(am, alphabet.Size)
	txt := alphabet.Normalize(text)
	out := make([]byte, len(txt))
	for i := 0; i < len(txt); i++ {
		y := int64(alphabet.Index(txt[i]))
		out[i] = alphabet.Letter(int(modular.Mod(inv*(y-bm), alphabet.Size)))
	}
	return alphabet.Lower(string(out)), nil
}

func affineParams(a, b int, op string) (int64, int64, error) {
	am := modular.Mod(int64(a), alphabet.Size)
	if !modular.Coprime(am, alphabet.Size) {
		return 0, 0, types.NewError(types.KindNonCoprimeParameter, op,
			fmt.Sprintf("parameter a=%d must be coprime with 26", a))
	}
	return am, modular.Mod(int64(b), alphabet.Size), nil
}
