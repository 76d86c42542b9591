// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package namespace implements the hierarchical file and directory
// namespace owned by the master: path resolution, per-node locking, and
// the file-to-chunk-group associations that clients read back to find
// their data.
package namespace

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"gfs.io/gfserrors"
	"gfs.io/log"
	"gfs.io/master/persist"
	"gfs.io/safemap"
)

// ChunkAllocator is the subset of ChunkManager the namespace needs: a way
// to obtain a fresh placement group for one logical write. It is injected
// rather than imported directly so namespace and chunkmgr have no
// compile-time dependency on each other.
type ChunkAllocator interface {
	WriteChunks() ([]ChunkPlacement, error)
}

// Manager owns the DirectoryMap and is the sole mutator of file and
// directory metadata. It is safe for concurrent use.
type Manager struct {
	dirs      safemap.SafeMap[string, *DirNode]
	allocator ChunkAllocator
	dataDir   string
}

// New returns a Manager that persists to dataDir/dir.json and allocates
// chunk placements through allocator.
func New(allocator ChunkAllocator, dataDir string) *Manager {
	return &Manager{allocator: allocator, dataDir: dataDir}
}

// Init loads dir.json if present and ensures the root directory exists,
// creating it (and persisting) on a fresh data directory.
func (m *Manager) Init() error {
	const op = "namespace.Manager.Init"
	m.dirs.Init()

	path := filepath.Join(m.dataDir, "dir.json")
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
		}
	} else {
		defer f.Close()
		dec := json.NewDecoder(f)
		for {
			var dto dirDTO
			if err := dec.Decode(&dto); err != nil {
				if err == io.EOF {
					break
				}
				return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
			}
			d := newDirNode(dto.Path, dto.Parent)
			d.Meta = dto.Meta
			for _, fc := range dto.Children {
				d.Children.Insert(fc.Name, &FileNode{Name: fc.Name, Parent: fc.Parent, Meta: fc.Meta, History: fc.History})
			}
			m.dirs.Insert(dto.Path, d)
		}
	}

	if _, ok := m.dirs.Get("/"); !ok {
		m.dirs.Insert("/", newDirNode("/", "/"))
		return m.persist()
	}
	return nil
}

// DirectoryCreate creates an empty directory at path. The parent directory
// must already exist.
func (m *Manager) DirectoryCreate(path string) error {
	const op = "namespace.Manager.DirectoryCreate"
	if _, ok := m.dirs.Get(path); ok {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.AlreadyExists)
	}
	parent, _ := split(path)
	if _, ok := m.dirs.Get(parent); !ok {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.NotFound)
	}
	m.dirs.Insert(path, newDirNode(path, parent))
	if err := m.persist(); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.IOFailure, err)
	}
	return nil
}

// DirectoryDelete removes path and every file directly inside it.
// Subdirectories of path are not recursively removed.
func (m *Manager) DirectoryDelete(path string) error {
	const op = "namespace.Manager.DirectoryDelete"
	g, ok := m.dirs.Get(path)
	if !ok {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.NotFound)
	}
	g.Lock()
	g.Value.Children = safemap.SafeMap[string, *FileNode]{}
	g.Value.Children.Init()
	g.Unlock()

	m.dirs.Remove(path)
	if err := m.persist(); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.IOFailure, err)
	}
	return nil
}

// ListDirectory returns a snapshot of path's metadata and file children.
func (m *Manager) ListDirectory(path string) (*DirectoryInfo, error) {
	const op = "namespace.Manager.ListDirectory"
	g, ok := m.dirs.Get(path)
	if !ok {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.NotFound)
	}
	g.RLock()
	defer g.RUnlock()
	d := g.Value
	info := &DirectoryInfo{Path: d.Path, Parent: d.Parent, Meta: d.Meta}
	for _, name := range d.Children.Keys() {
		fg, ok := d.Children.Get(name)
		if !ok {
			continue
		}
		fg.RLock()
		info.Children = append(info.Children, FileInfo{
			Name:    fg.Value.Name,
			Parent:  fg.Value.Parent,
			Meta:    fg.Value.Meta,
			History: fg.Value.History,
		})
		fg.RUnlock()
	}
	return info, nil
}

// FileCreate creates an empty file at path. The parent directory must
// already exist. The existence check and insertion happen under a single
// write-lock acquisition on the parent so no other caller can observe or
// create the same name in between.
func (m *Manager) FileCreate(path string) (*FileInfo, error) {
	const op = "namespace.Manager.FileCreate"
	parent, name := split(path)
	g, ok := m.dirs.Get(parent)
	if !ok {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.NotFound)
	}
	g.Lock()
	if _, exists := g.Value.Children.Get(name); exists {
		g.Unlock()
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.AlreadyExists)
	}
	f := &FileNode{Name: name, Parent: parent, Meta: newMetadata()}
	g.Value.Children.Insert(name, f)
	g.Unlock()

	if err := m.persist(); err != nil {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.IOFailure, err)
	}
	return &FileInfo{Name: f.Name, Parent: f.Parent, Meta: f.Meta}, nil
}

// FileDelete removes the file at path.
func (m *Manager) FileDelete(path string) error {
	const op = "namespace.Manager.FileDelete"
	parent, name := split(path)
	g, ok := m.dirs.Get(parent)
	if !ok {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.NotFound)
	}
	g.Lock()
	_, existed := g.Value.Children.Remove(name)
	g.Unlock()
	if !existed {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.NotFound)
	}
	if err := m.persist(); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.IOFailure, err)
	}
	return nil
}

// FileWrite allocates a fresh placement group, appends it to path's chunk
// history, records size as the file's size, and returns the group for the
// caller to push bytes to. size is not passed to the allocator and does not
// influence placement.
func (m *Manager) FileWrite(path string, size int64) ([]ChunkPlacement, error) {
	const op = "namespace.Manager.FileWrite"
	fg, err := m.lookupFile(op, path)
	if err != nil {
		return nil, err
	}

	placements, err := m.allocator.WriteChunks()
	if err != nil {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), err)
	}

	fg.Lock()
	fg.Value.History = append(fg.Value.History, ChunkGroup(placements))
	fg.Value.Meta.Size = size
	fg.Value.Meta.ModifiedAt = time.Now().UTC()
	fg.Unlock()

	if err := m.persist(); err != nil {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.IOFailure, err)
	}
	return placements, nil
}

// FileRead returns the placement group produced by path's first write.
func (m *Manager) FileRead(path string) ([]ChunkPlacement, error) {
	const op = "namespace.Manager.FileRead"
	f, err := m.snapshotFile(op, path)
	if err != nil {
		return nil, err
	}
	if len(f.History) == 0 {
		return nil, nil
	}
	return f.History[0], nil
}

// FileReadAll returns every placement group produced by path's writes, in
// order.
func (m *Manager) FileReadAll(path string) ([]ChunkPlacement, error) {
	const op = "namespace.Manager.FileReadAll"
	f, err := m.snapshotFile(op, path)
	if err != nil {
		return nil, err
	}
	var all []ChunkPlacement
	for _, group := range f.History {
		all = append(all, group...)
	}
	return all, nil
}

// lookupFile resolves path to its live, lockable *FileNode guard without
// holding the parent directory's lock past the lookup.
func (m *Manager) lookupFile(op, path string) (*safemap.Guarded[*FileNode], error) {
	parent, name := split(path)
	g, ok := m.dirs.Get(parent)
	if !ok {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.NotFound)
	}
	g.RLock()
	fg, ok := g.Value.Children.Get(name)
	g.RUnlock()
	if !ok {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Path(path), gfserrors.NotFound)
	}
	return fg, nil
}

// snapshotFile resolves path and returns a copy of its FileNode safe to
// read after the call returns.
func (m *Manager) snapshotFile(op, path string) (*FileNode, error) {
	fg, err := m.lookupFile(op, path)
	if err != nil {
		return nil, err
	}
	fg.RLock()
	defer fg.RUnlock()
	cp := *fg.Value
	cp.History = append([]ChunkGroup(nil), fg.Value.History...)
	return &cp, nil
}

type fileDTO struct {
	Name    string       `json:"name"`
	Parent  string       `json:"parent"`
	Meta    Metadata     `json:"meta"`
	History []ChunkGroup `json:"history"`
}

type dirDTO struct {
	Path     string    `json:"path"`
	Parent   string    `json:"parent"`
	Meta     Metadata  `json:"meta"`
	Children []fileDTO `json:"children"`
}

// persist rewrites dir.json in full from the current in-memory state.
func (m *Manager) persist() error {
	keys := m.dirs.Keys()
	dtos := make([]dirDTO, 0, len(keys))
	for _, k := range keys {
		g, ok := m.dirs.Get(k)
		if !ok {
			continue
		}
		g.RLock()
		d := g.Value
		dto := dirDTO{Path: d.Path, Parent: d.Parent, Meta: d.Meta}
		for _, name := range d.Children.Keys() {
			fg, ok := d.Children.Get(name)
			if !ok {
				continue
			}
			fg.RLock()
			dto.Children = append(dto.Children, fileDTO{
				Name:    fg.Value.Name,
				Parent:  fg.Value.Parent,
				Meta:    fg.Value.Meta,
				History: fg.Value.History,
			})
			fg.RUnlock()
		}
		g.RUnlock()
		dtos = append(dtos, dto)
	}

	path := filepath.Join(m.dataDir, "dir.json")
	err := persist.WriteAtomic(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		for _, dto := range dtos {
			if err := enc.Encode(dto); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error.Printf("namespace: persist %s: %v", path, err)
	}
	return err
}
