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

package modular

import (
	"fmt"
	"math/big"

	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// MaxMatrixElements bounds the number of cells a key matrix may hold.
const MaxMatrixElements = 1 << 16

// Matrix is a square integer matrix stored row-major.
type Matrix [][]int64

// NewMatrix validates rows as a square matrix with side >= 2 and returns a
// deep copy of it.
func NewMatrix(rows [][]int64) (Matrix, error) {
	m := Matrix(rows)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m.Clone(), nil
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]int64, n)
		m[i][i] = 1
	}
	return m
}

// Size returns the side length of the matrix.
func (m Matrix) Size() int {
	return len(m)
}

// Validate checks the matrix is square with side >= 2.
func (m Matrix) Validate() error {
	n := len(m)
	if n < 2 {
		return types.NewError(types.KindMalformedInput, "matrix",
			fmt.Sprintf("matrix must be at least 2x2, got %d rows", n))
	}
	cells, err := SafeMultiply(n, n)
	if err != nil || cells > MaxMatrixElements {
		return types.NewError(types.KindMalformedInput, "matrix",
			fmt.Sprintf("matrix side %d is too large", n))
	}
	for i, row := range m {
		if len(row) != n {
			return types.NewError(types.KindMalformedInput, "matrix",
				fmt.Sprintf("matrix must be square: row %d has %d columns, want %d", i, len(row), n))
		}
	}
	return nil
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]int64(nil), row...)
	}
	return out
}

// Equal reports whether both matrices hold the same entries.
func (m Matrix) Equal(o Matrix) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(o[i]) {
			return false
		}
		for j := range m[i] {
			if m[i][j] != o[i][j] {
				return false
			}
		}
	}
	return true
}

// Reduce returns a copy with every entry reduced into [0, mod).
func (m Matrix) Reduce(mod int64) Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]int64, len(row))
		for j, v := range row {
			out[i][j] = Mod(v, mod)
		}
	}
	return out
}

// Determinant returns the exact determinant using fraction-free Bareiss
// elimination over arbitrary precision integers.
func (m Matrix) Determinant() *big.Int {
	n := len(m)
	if n == 0 {
		return big.NewInt(1)
	}

	a := make([][]*big.Int, n)
	for i := range m {
		a[i] = make([]*big.Int, n)
		for j := 0; j < n; j++ {
			a[i][j] = big.NewInt(m[i][j])
		}
	}

	sign := 1
	prev := big.NewInt(1)
	t1, t2 := new(big.Int), new(big.Int)

	for k := 0; k < n-1; k++ {
		if a[k][k].Sign() == 0 {
			pivot := -1
			for i := k + 1; i < n; i++ {
				if a[i][k].Sign() != 0 {
					pivot = i
					break
				}
			}
			if pivot < 0 {
				return big.NewInt(0)
			}
			a[k], a[pivot] = a[pivot], a[k]
			sign = -sign
		}
		for i := k + 1; i < n; i++ {
			for j := k + 1; j < n; j++ {
				// a[i][j] = (a[i][j]*a[k][k] - a[i][k]*a[k][j]) / prev, exact
				t1.Mul(a[i][j], a[k][k])
				t2.Mul(a[i][k], a[k][j])
				t1.Sub(t1, t2)
				a[i][j] = new(big.Int).Quo(t1, prev)
			}
		}
		prev = a[k][k]
	}

	det := new(big.Int).Set(a[n-1][n-1])
	if sign < 0 {
		det.Neg(det)
	}
	return det
}

// DeterminantMod returns the determinant reduced into [0, mod).
func (m Matrix) DeterminantMod(mod int64) int64 {
	d := m.Reduce(mod).Determinant()
	return d.Mod(d, big.NewInt(mod)).Int64()
}

// Minor returns the matrix with the given row and column removed.
func (m Matrix) Minor(row, col int) Matrix {
	n := len(m)
	out := make(Matrix, 0, n-1)
	for i := 0; i < n; i++ {
		if i == row {
			continue
		}
		r := make([]int64, 0, n-1)
		for j := 0; j < n; j++ {
			if j == col {
				continue
			}
			r = append(r, m[i][j])
		}
		out = append(out, r)
	}
	return out
}

// AdjugateMod returns the transpose of the cofactor matrix with every entry
// reduced into [0, mod). Minors are evaluated exactly before reduction.
func (m Matrix) AdjugateMod(mod int64) Matrix {
	n := len(m)
	r := m.Reduce(mod)
	bigMod := big.NewInt(mod)
	adj := make(Matrix, n)
	for i := range adj {
		adj[i] = make([]int64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := r.Minor(i, j).Determinant()
			if (i+j)%2 == 1 {
				c.Neg(c)
			}
			adj[j][i] = c.Mod(c, bigMod).Int64()
		}
	}
	return adj
}

// InverseMod returns M^-1 mod m, computed as det^-1 * adj(M) mod m. It
// fails with a KindSingularMatrix error when det(M) mod m has no inverse.
func (m Matrix) InverseMod(mod int64) (Matrix, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	det := m.DeterminantMod(mod)
	detInv, ok := Inverse(det, mod)
	if !ok {
		return nil, types.NewError(types.KindSingularMatrix, "matrix",
			fmt.Sprintf("determinant %d has no inverse mod %d", det, mod))
	}
	adj := m.AdjugateMod(mod)
	for i := range adj {
		for j := range adj[i] {
			adj[i][j] = Mod(detInv*adj[i][j], mod)
		}
	}
	return adj, nil
}

// Invertible reports whether the matrix has an inverse mod m.
func (m Matrix) Invertible(mod int64) bool {
	if m.Validate() != nil {
		return false
	}
	return Coprime(m.DeterminantMod(mod), mod)
}

// MulVecMod returns (M · v) mod m. The vector must have Size() entries.
func (m Matrix) MulVecMod(v []int64, mod int64) []int64 {
	out := make([]int64, len(m))
	for i, row := range m {
		var sum int64
		for j, x := range row {
			sum = Mod(sum+Mod(x, mod)*Mod(v[j], mod), mod)
		}
		out[i] = sum
	}
	return out
}

// MulMod returns (M · O) mod m.
func (m Matrix) MulMod(o Matrix, mod int64) Matrix {
	n := len(m)
	out := make(Matrix, n)
	for i := 0; i < n; i++ {
		out[i] = make([]int64, len(o[0]))
		for j := range out[i] {
			var sum int64
			for k := 0; k < len(o); k++ {
				sum = Mod(sum+Mod(m[i][k], mod)*Mod(o[k][j], mod), mod)
			}
			out[i][j] = sum
		}
	}
	return out
}
