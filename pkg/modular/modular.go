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

// Package modular provides the integer arithmetic modulo m that the affine
// and Hill ciphers are built on: gcd, modular inverses and exact square
// matrix inversion.
package modular

// Mod returns a mod m in the range [0, m) for m > 0.
func Mod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// GCD returns the greatest common divisor of |a| and |b|.
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Coprime reports whether gcd(a, m) == 1.
func Coprime(a, m int64) bool {
	return GCD(a, m) == 1
}

// Inverse returns x in [1, m) with (a*x) mod m == 1 using the extended
// Euclidean algorithm. The second result is false when no inverse exists
// (gcd(a, m) != 1) or m < 2.
func Inverse(a, m int64) (int64, bool) {
	if m < 2 {
		return 0, false
	}
	oldR, r := Mod(a, m), m
	oldS, s := int64(1), int64(0)
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}
	if oldR != 1 {
		return 0, false
	}
	return Mod(oldS, m), true
}

// InverseSearch finds the inverse of a mod m by trying every candidate in
// [1, m). It is the reference the extended Euclid result is checked
// against and returns the same answers.
func InverseSearch(a, m int64) (int64, bool) {
	if m < 2 {
		return 0, false
	}
	a = Mod(a, m)
	for x := int64(1); x < m; x++ {
		if (a*x)%m == 1 {
			return x, true
		}
	}
	return 0, false
}
