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

package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"Upper", "HELLO", "HELLO"},
		{"Mixed", "Hello, World!", "HELLOWORLD"},
		{"DigitsOnly", "12345", ""},
		{"Whitespace", " a b\tc\n", "ABC"},
		{"NonASCII", "Ünïcödé straße", "NCDSTRAE"},
		{"Emoji", "k🙂e y", "KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "abc", "The Quick Brown Fox 42", "ÀÉÎ xyz"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestLower(t *testing.T) {
	assert.Equal(t, "rijvs", Lower("RIJVS"))
	assert.Equal(t, "", Lower(""))
}

func TestLetterAndShift(t *testing.T) {
	assert.Equal(t, byte('A'), Letter(0))
	assert.Equal(t, byte('Z'), Letter(-1))
	assert.Equal(t, byte('B'), Letter(27))
	assert.Equal(t, 7, Index('H'))
	assert.Equal(t, byte('C'), Shift('Z', 3))
	assert.Equal(t, byte('X'), Shift('A', -3))
}
