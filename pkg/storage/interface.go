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

// Package storage provides the key-value backend abstraction and the
// content-addressed result store built on it. Backends live in the memory
// and file subpackages.
package storage

import (
	"io/fs"
)

// Backend is a thread-safe key-value store.
type Backend interface {
	// Get returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Put creates or overwrites key.
	Put(key string, value []byte, opts *Options) error

	// Delete returns ErrNotFound if the key does not exist.
	Delete(key string) error

	// List returns the keys with prefix in sorted order.
	List(prefix string) ([]string, error)

	Exists(key string) (bool, error)

	Close() error
}

// Options contains optional parameters for Put.
type Options struct {
	// Permissions applies to file backends; zero uses the backend default.
	Permissions fs.FileMode
}

// DefaultOptions returns owner read/write permissions.
func DefaultOptions() *Options {
	return &Options{Permissions: 0600}
}
