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

package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-cipherlab/pkg/storage"
)

var _ storage.Backend = (*FileStorage)(nil)

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "root")
	s, err := New(dir)
	require.NoError(t, err)
	assert.DirExists(t, s.Root())

	keys, err := s.List("")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCRUD(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get("results/missing.bin")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Put("results/a.bin", []byte{0, 1, 2}, nil))
	require.NoError(t, s.Put("results/a.json", []byte(`{}`), nil))
	require.NoError(t, s.Put("top", []byte("x"), nil))

	got, err := s.Get("results/a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, got)

	require.NoError(t, s.Put("results/a.bin", []byte("overwritten"), nil))
	got, err = s.Get("results/a.bin")
	require.NoError(t, err)
	assert.Equal(t, "overwritten", string(got))

	keys, err := s.List("results/")
	require.NoError(t, err)
	assert.Equal(t, []string{"results/a.bin", "results/a.json"}, keys)

	ok, err := s.Exists("top")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Exists("nope")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete("top"))
	assert.ErrorIs(t, s.Delete("top"), storage.ErrNotFound)
}

func TestPermissions(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put("default", []byte("x"), nil))
	require.NoError(t, s.Put("shared", []byte("x"), &storage.Options{Permissions: 0644}))

	info, err := os.Stat(filepath.Join(s.Root(), "default"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(s.Root(), "shared"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestInvalidKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../escape", "results/../../escape", "nul\x00byte"} {
		assert.ErrorIs(t, s.Put(key, []byte("x"), nil), ErrInvalidKey, "key %q", key)
		_, err := s.Get(key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestListSkipsTempFiles(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Put("results/a.bin", []byte("x"), nil))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "results", ".tmp-123"), []byte("partial"), 0600))

	keys, err := s.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"results/a.bin"}, keys)
}

func TestClosed(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get("k")
	assert.ErrorIs(t, err, storage.ErrClosed)
	_, err = s.List("")
	assert.ErrorIs(t, err, storage.ErrClosed)
}
