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

// Package alphabet maps text into the 26-letter working alphabet used by
// the classical ciphers.
package alphabet

// Size is the number of letters in the working alphabet.
const Size = 26

// Normalize keeps only the ASCII letters of text and upper-cases them.
// Digits, punctuation, whitespace and every non-ASCII character are
// dropped. An empty or letterless input yields "".
func Normalize(text string) string {
	// Multi-byte UTF-8 sequences only contain bytes >= 0x80, so a byte
	// scan never splits a letter.
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c)
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		}
	}
	return string(out)
}

// Lower renders normalized text in the lower-case display form used for
// cipher output.
func Lower(text string) string {
	out := []byte(text)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c - 'A' + 'a'
		}
	}
	return string(out)
}

// Index returns the 0-25 position of an upper-case letter.
func Index(c byte) int {
	return int(c - 'A')
}

// Letter returns the upper-case letter at position i, reducing i mod 26.
func Letter(i int) byte {
	i %= Size
	if i < 0 {
		i += Size
	}
	return byte('A' + i)
}

// Shift moves an upper-case letter by n positions around the alphabet.
func Shift(c byte, n int) byte {
	return Letter(Index(c) + n)
}
