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

// Package transposition implements the length-framed columnar transposition
// used by the super cipher.
//
// Wire format before transposition:
//
//	+----------------------+-----------+--------------+
//	| len(data) uint64 BE  |   data    | zero padding |
//	+----------------------+-----------+--------------+
//
// The framed buffer is padded to a multiple of the key length, laid out
// row-major in a grid with one column per key character, and emitted
// column by column in the key's sorted order.
package transposition

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/jeremyhahn/go-cipherlab/pkg/modular"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// LengthPrefixSize is the size of the big-endian length header.
const LengthPrefixSize = 8

// ColumnOrder returns the column indices of key sorted by (character,
// original index). Equal characters keep their left-to-right order.
func ColumnOrder(key string) []int {
	chars := []rune(key)
	order := make([]int, len(chars))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return chars[order[a]] < chars[order[b]]
	})
	return order
}

// FrameAndTranspose prefixes data with its length, pads it and reads the
// grid out column by column.
func FrameAndTranspose(data []byte, key string) ([]byte, error) {
	const op = "transposition.encrypt"
	order := ColumnOrder(key)
	cols := len(order)
	if cols == 0 {
		return nil, types.NewError(types.KindEmptyKey, op, "transposition key must not be empty")
	}

	total, err := modular.SafeAdd(len(data), LengthPrefixSize)
	if err != nil {
		return nil, types.WrapError(types.KindMalformedInput, op, "payload too large", err)
	}
	rows := (total + cols - 1) / cols
	size, err := modular.SafeMultiply(rows, cols)
	if err != nil {
		return nil, types.WrapError(types.KindMalformedInput, op, "payload too large", err)
	}

	grid := make([]byte, size)
	binary.BigEndian.PutUint64(grid[:LengthPrefixSize], uint64(len(data)))
	copy(grid[LengthPrefixSize:], data)

	out := make([]byte, 0, size)
	for _, col := range order {
		for r := 0; r < rows; r++ {
			out = append(out, grid[r*cols+col])
		}
	}
	return out, nil
}

// UntransposeAndUnframe reverses FrameAndTranspose. It fails with a
// LengthMismatch error when data does not fill the grid, when the grid is
// smaller than the length header, or when the header claims more bytes
// than the grid holds.
func UntransposeAndUnframe(data []byte, key string) ([]byte, error) {
	const op = "transposition.decrypt"
	order := ColumnOrder(key)
	cols := len(order)
	if cols == 0 {
		return nil, types.NewError(types.KindEmptyKey, op, "transposition key must not be empty")
	}
	if len(data)%cols != 0 {
		return nil, types.NewError(types.KindLengthMismatch, op,
			fmt.Sprintf("data length %d is not a multiple of key length %d", len(data), cols))
	}

	rows := len(data) / cols
	grid := make([]byte, len(data))
	idx := 0
	for _, col := range order {
		for r := 0; r < rows; r++ {
			grid[r*cols+col] = data[idx]
			idx++
		}
	}

	if len(grid) < LengthPrefixSize {
		return nil, types.NewError(types.KindLengthMismatch, op,
			fmt.Sprintf("framed data is %d bytes, shorter than the %d byte header", len(grid), LengthPrefixSize))
	}
	n := binary.BigEndian.Uint64(grid[:LengthPrefixSize])
	if n > uint64(len(grid)-LengthPrefixSize) {
		return nil, types.NewError(types.KindLengthMismatch, op,
			fmt.Sprintf("header claims %d bytes but only %d are present", n, len(grid)-LengthPrefixSize))
	}
	out := make([]byte, n)
	copy(out, grid[LengthPrefixSize:])
	return out, nil
}
