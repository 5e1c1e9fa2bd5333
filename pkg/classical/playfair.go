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
	"strings"

	"github.com/jeremyhahn/go-cipherlab/pkg/alphabet"
)

const (
	// playfairAlphabet is A-Z without J.
	playfairAlphabet = "ABCDEFGHIKLMNOPQRSTUVWXYZ"
	playfairSide     = 5
	playfairFiller   = 'X'
)

// PlayfairSquare is the 5x5 key square. J is merged into I.
type PlayfairSquare struct {
	cells [playfairSide * playfairSide]byte
	pos   [alphabet.Size]int
}

// NewPlayfairSquare fills the square with the distinct letters of key in
// first-seen order, then the rest of the alphabet. An empty key yields the
// plain alphabet square.
func NewPlayfairSquare(key string) *PlayfairSquare {
	sq := &PlayfairSquare{}
	for i := range sq.pos {
		sq.pos[i] = -1
	}
	n := 0
	add := func(c byte) {
		if c == 'J' {
			c = 'I'
		}
		if sq.pos[alphabet.Index(c)] >= 0 {
			return
		}
		sq.cells[n] = c
		sq.pos[alphabet.Index(c)] = n
		n++
	}
	k := alphabet.Normalize(key)
	for i := 0; i < len(k); i++ {
		add(k[i])
	}
	for i := 0; i < len(playfairAlphabet); i++ {
		add(playfairAlphabet[i])
	}
	sq.pos[alphabet.Index('J')] = sq.pos[alphabet.Index('I')]
	return sq
}

// Rows returns the square as five strings.
func (sq *PlayfairSquare) Rows() []string {
	rows := make([]string, playfairSide)
	for r := 0; r < playfairSide; r++ {
		rows[r] = string(sq.cells[r*playfairSide : (r+1)*playfairSide])
	}
	return rows
}

func (sq *PlayfairSquare) locate(c byte) (row, col int) {
	p := sq.pos[alphabet.Index(c)]
	return p / playfairSide, p % playfairSide
}

func (sq *PlayfairSquare) at(row, col int) byte {
	row = (row + playfairSide) % playfairSide
	col = (col + playfairSide) % playfairSide
	return sq.cells[row*playfairSide+col]
}

// digraph applies the Playfair rules to one pair. dir is +1 to encrypt and
// -1 to decrypt.
func (sq *PlayfairSquare) digraph(a, b byte, dir int) (byte, byte) {
	ra, ca := sq.locate(a)
	rb, cb := sq.locate(b)
	switch {
	case ra == rb:
		return sq.at(ra, ca+dir), sq.at(rb, cb+dir)
	case ca == cb:
		return sq.at(ra+dir, ca), sq.at(rb+dir, cb)
	default:
		return sq.at(ra, cb), sq.at(rb, ca)
	}
}

// PlayfairDigraphs splits text into encryption pairs: J becomes I, a
// doubled letter is split with X, and an odd tail is padded with X.
func PlayfairDigraphs(text string) []string {
	s := strings.ReplaceAll(alphabet.Normalize(text), "J", "I")
	pairs := make([]string, 0, len(s)/2+1)
	for i := 0; i < len(s); {
		a := s[i]
		if i+1 >= len(s) || s[i+1] == a {
			pairs = append(pairs, string([]byte{a, playfairFiller}))
			i++
			continue
		}
		pairs = append(pairs, s[i:i+2])
		i += 2
	}
	return pairs
}

// PlayfairEncrypt encrypts text with the square built from key.
func PlayfairEncrypt(text, key string) (string, error) {
	sq := NewPlayfairSquare(key)
	pairs := PlayfairDigraphs(text)
	out := make([]byte, 0, len(pairs)*2)
	for _, p := range pairs {
		x, y := sq.digraph(p[0], p[1], 1)
		out = append(out, x, y)
	}
	return alphabet.Lower(string(out)), nil
}

// PlayfairDecrypt decrypts text with the square built from key, then
// removes likely filler letters with StripPlayfairFiller.
//
// The filler removal is best effort: a plaintext that genuinely contains
// "AXA" or ends in X loses those X letters.
func PlayfairDecrypt(text, key string) (string, error) {
	sq := NewPlayfairSquare(key)
	s := []byte(strings.ReplaceAll(alphabet.Normalize(text), "J", "I"))
	if len(s)%2 == 1 {
		s = append(s, playfairFiller)
	}
	plain := make([]byte, 0, len(s))
	for i := 0; i+1 < len(s); i += 2 {
		x, y := sq.digraph(s[i], s[i+1], -1)
		plain = append(plain, x, y)
	}
	return alphabet.Lower(string(StripPlayfairFiller(plain))), nil
}

// StripPlayfairFiller drops every X that sits strictly between two equal
// letters, then one trailing X.
func StripPlayfairFiller(plain []byte) []byte {
	cleaned := make([]byte, 0, len(plain))
	for i := 0; i < len(plain); {
		if i+2 < len(plain) && plain[i] == plain[i+2] && plain[i+1] == playfairFiller {
			cleaned = append(cleaned, plain[i])
			i += 2
			continue
		}
		cleaned = append(cleaned, plain[i])
		i++
	}
	if n := len(cleaned); n > 0 && cleaned[n-1] == playfairFiller {
		cleaned = cleaned[:n-1]
	}
	return cleaned
}
