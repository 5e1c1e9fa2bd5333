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

package storage

import "errors"

var (
	ErrClosed   = errors.New("storage: closed")
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidID is returned for result IDs that are not CIDs.
	ErrInvalidID = errors.New("storage: invalid ID")

	// ErrCorrupt is returned when a stored blob no longer matches its ID.
	ErrCorrupt = errors.New("storage: content does not match ID")

	// ErrTooLarge is returned when a result exceeds the store limit.
	ErrTooLarge = errors.New("storage: result too large")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
