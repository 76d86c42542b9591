// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store implements the chunk server's local blob store: chunk
// bytes held on disk under a configured root directory, one file per
// chunk named by its UUID. Per-chunk locking uses the same SafeMap
// primitive the master uses for its metadata stores, so concurrent
// appends to different chunks never serialise on each other.
package store

import (
	"os"
	"path/filepath"
	"sort"

	"gfs.io/gfserrors"
	"gfs.io/safemap"
)

// MaxChunkSize is the soft cap on a single chunk's size: a write or append
// that would push a chunk past this is rejected.
const MaxChunkSize = 256 << 20 // 256 MiB

// Store holds chunk bytes under root, one file per chunk.
type Store struct {
	root  string
	locks safemap.SafeMap[string, *struct{}]
}

// New returns a Store rooted at dir. The directory is created if absent.
func New(dir string) (*Store, error) {
	const op = "store.New"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	s := &Store{root: dir}
	s.locks.Init()
	return s, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, id)
}

// lockFor returns the per-chunk guard for id, creating it on first use.
func (s *Store) lockFor(id string) *safemap.Guarded[*struct{}] {
	if g, ok := s.locks.Get(id); ok {
		return g
	}
	s.locks.Insert(id, &struct{}{})
	g, _ := s.locks.Get(id)
	return g
}

// AddChunk creates a new chunk file with data, failing with AlreadyExists
// if id is already present.
func (s *Store) AddChunk(id string, data []byte) error {
	const op = "store.Store.AddChunk"
	if len(data) > MaxChunkSize {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, gfserrors.Str("chunk exceeds size cap"))
	}
	g := s.lockFor(id)
	g.Lock()
	defer g.Unlock()

	path := s.path(id)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return gfserrors.E(gfserrors.Op(op), gfserrors.AlreadyExists)
		}
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	return nil
}

// AppendChunk appends data to an existing chunk file, failing with
// NotFound if id is absent and Invalid if the result would exceed the
// size cap.
func (s *Store) AppendChunk(id string, data []byte) error {
	const op = "store.Store.AppendChunk"
	g := s.lockFor(id)
	g.Lock()
	defer g.Unlock()

	path := s.path(id)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return gfserrors.E(gfserrors.Op(op), gfserrors.NotFound)
		}
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	if info.Size()+int64(len(data)) > MaxChunkSize {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, gfserrors.Str("chunk exceeds size cap"))
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	return nil
}

// GetChunk reads the full contents of chunk id.
func (s *Store) GetChunk(id string) ([]byte, error) {
	const op = "store.Store.GetChunk"
	g := s.lockFor(id)
	g.RLock()
	defer g.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gfserrors.E(gfserrors.Op(op), gfserrors.NotFound)
		}
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	return data, nil
}

// DeleteChunk removes chunk id, failing with NotFound if absent.
func (s *Store) DeleteChunk(id string) error {
	const op = "store.Store.DeleteChunk"
	g := s.lockFor(id)
	g.Lock()
	defer g.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return gfserrors.E(gfserrors.Op(op), gfserrors.NotFound)
		}
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	s.locks.Remove(id)
	return nil
}

// ListChunks returns the identifiers of every chunk currently stored,
// sorted for deterministic output.
func (s *Store) ListChunks() ([]string, error) {
	const op = "store.Store.ListChunks"
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}
