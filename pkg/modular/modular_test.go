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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMod(t *testing.T) {
	assert.Equal(t, int64(0), Mod(26, 26))
	assert.Equal(t, int64(25), Mod(-1, 26))
	assert.Equal(t, int64(1), Mod(-51, 26))
	assert.Equal(t, int64(17), Mod(43, 26))
}

func TestGCD(t *testing.T) {
	assert.Equal(t, int64(1), GCD(5, 26))
	assert.Equal(t, int64(2), GCD(2, 26))
	assert.Equal(t, int64(13), GCD(-13, 26))
	assert.Equal(t, int64(26), GCD(0, 26))
	assert.True(t, Coprime(7, 26))
	assert.False(t, Coprime(4, 26))
}

func TestInverse(t *testing.T) {
	tests := []struct {
		a, m   int64
		want   int64
		exists bool
	}{
		{5, 26, 21, true},
		{1, 26, 1, true},
		{25, 26, 25, true},
		{-5, 26, 5, true},
		{2, 26, 0, false},
		{13, 26, 0, false},
		{0, 26, 0, false},
		{3, 1, 0, false},
	}

	for _, tt := range tests {
		got, ok := Inverse(tt.a, tt.m)
		assert.Equal(t, tt.exists, ok, "a=%d m=%d", tt.a, tt.m)
		assert.Equal(t, tt.want, got, "a=%d m=%d", tt.a, tt.m)
	}
}

func TestInverse_AgreesWithSearch(t *testing.T) {
	for _, m := range []int64{26, 256, 7} {
		for a := int64(-60); a <= 60; a++ {
			x1, ok1 := Inverse(a, m)
			x2, ok2 := InverseSearch(a, m)
			assert.Equal(t, ok2, ok1, "a=%d m=%d", a, m)
			assert.Equal(t, x2, x1, "a=%d m=%d", a, m)
			if ok1 {
				assert.Equal(t, int64(1), Mod(a*x1, m))
				assert.GreaterOrEqual(t, x1, int64(1))
				assert.Less(t, x1, m)
			}
		}
	}
}

func TestSafeMultiply(t *testing.T) {
	v, err := SafeMultiply(3, 4)
	assert.NoError(t, err)
	assert.Equal(t, 12, v)

	_, err = SafeMultiply(math.MaxInt, 2)
	assert.True(t, errors.Is(err, ErrOverflow))

	_, err = SafeMultiply(-1, 2)
	assert.True(t, errors.Is(err, ErrInvalidLength))

	_, err = SafeAdd(math.MaxInt, 1)
	assert.True(t, errors.Is(err, ErrOverflow))
}
