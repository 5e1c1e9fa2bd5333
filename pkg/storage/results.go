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

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/jeremyhahn/go-cipherlab/pkg/metrics"
)

const (
	resultPrefix = "results/"
	blobSuffix   = ".bin"
	metaSuffix   = ".json"
	pingKey      = "results/.ping"
)

// ResultMeta describes a stored result.
type ResultMeta struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Variant   string    `json:"variant,omitempty"`
	Operation string    `json:"operation,omitempty"`
	IsFile    bool      `json:"is_file"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultStore is a content-addressed store for processed outputs. IDs are
// CIDv1 strings over the raw codec with a sha2-256 multihash, so writing
// the same bytes twice yields the same ID.
type ResultStore struct {
	backend  Backend
	name     string
	maxBytes int64
}

// NewResultStore wraps backend. name labels metrics; maxBytes <= 0 means
// no size limit.
func NewResultStore(backend Backend, name string, maxBytes int64) *ResultStore {
	return &ResultStore{backend: backend, name: name, maxBytes: maxBytes}
}

// ComputeID returns the CIDv1 (raw, sha2-256) string for data.
func ComputeID(data []byte) (string, error) {
	c, err := computeCID(data)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func computeCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("storage: hash result: %w", err)
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ParseID validates id as a CID produced by ComputeID and returns its
// canonical string form.
func ParseID(id string) (string, error) {
	c, err := cid.Decode(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	prefix := c.Prefix()
	if prefix.Version != 1 || prefix.Codec != cid.Raw || prefix.MhType != multihash.SHA2_256 {
		return "", fmt.Errorf("%w: unsupported cid prefix", ErrInvalidID)
	}
	return c.String(), nil
}

// Name returns the backend label used in metrics.
func (s *ResultStore) Name() string {
	return s.name
}

// Put stores data with its metadata and returns the completed metadata.
func (s *ResultStore) Put(ctx context.Context, data []byte, meta ResultMeta) (ResultMeta, error) {
	meta, err := s.put(ctx, data, meta)
	metrics.RecordResultStored(s.name, err)
	return meta, err
}

func (s *ResultStore) put(ctx context.Context, data []byte, meta ResultMeta) (ResultMeta, error) {
	if err := ctx.Err(); err != nil {
		return meta, err
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return meta, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), s.maxBytes)
	}

	id, err := ComputeID(data)
	if err != nil {
		return meta, err
	}
	meta.ID = id
	meta.Size = len(data)
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	encoded, err := json.Marshal(meta)
	if err != nil {
		return meta, fmt.Errorf("storage: encode result metadata: %w", err)
	}
	if err := s.backend.Put(resultPrefix+id+blobSuffix, data, nil); err != nil {
		return meta, fmt.Errorf("storage: write result %s: %w", id, err)
	}
	if err := s.backend.Put(resultPrefix+id+metaSuffix, encoded, nil); err != nil {
		return meta, fmt.Errorf("storage: write result metadata %s: %w", id, err)
	}
	return meta, nil
}

// Get returns the stored bytes and metadata for id. The bytes are
// re-hashed and ErrCorrupt is returned if they no longer match.
func (s *ResultStore) Get(ctx context.Context, id string) ([]byte, *ResultMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	canonical, err := ParseID(id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.backend.Get(resultPrefix + canonical + blobSuffix)
	if err != nil {
		return nil, nil, err
	}
	got, err := ComputeID(data)
	if err != nil {
		return nil, nil, err
	}
	if got != canonical {
		return nil, nil, ErrCorrupt
	}

	meta := &ResultMeta{ID: canonical, Filename: canonical + blobSuffix, Size: len(data)}
	raw, err := s.backend.Get(resultPrefix + canonical + metaSuffix)
	switch {
	case err == nil:
		if jerr := json.NewDecoder(bytes.NewReader(raw)).Decode(meta); jerr != nil {
			return nil, nil, fmt.Errorf("storage: decode result metadata %s: %w", canonical, jerr)
		}
	case !IsNotFound(err):
		return nil, nil, err
	}
	return data, meta, nil
}

// Delete removes a result and its metadata.
func (s *ResultStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	canonical, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(resultPrefix + canonical + blobSuffix); err != nil {
		return err
	}
	if err := s.backend.Delete(resultPrefix + canonical + metaSuffix); err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// List returns the metadata of every stored result.
func (s *ResultStore) List(ctx context.Context) ([]ResultMeta, error) {
	keys, err := s.backend.List(resultPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]ResultMeta, 0, len(keys)/2)
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !strings.HasSuffix(key, metaSuffix) {
			continue
		}
		raw, err := s.backend.Get(key)
		if err != nil {
			return nil, err
		}
		var meta ResultMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("storage: decode %s: %w", key, err)
		}
		out = append(out, meta)
	}
	return out, nil
}

// Ping checks that the backend is usable.
func (s *ResultStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.backend.Exists(pingKey)
	return err
}

// Close closes the backend.
func (s *ResultStore) Close() error {
	return s.backend.Close()
}
