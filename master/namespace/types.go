// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package namespace

import (
	"time"

	"gfs.io/safemap"
)

// Metadata is attached to every file and directory.
type Metadata struct {
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Mode       uint32    `json:"mode"`
	Owner      string    `json:"owner"`
	Group      string    `json:"group"`
}

func newMetadata() Metadata {
	now := time.Now().UTC()
	return Metadata{CreatedAt: now, ModifiedAt: now, Mode: 0644}
}

// ChunkPlacement names one replica of a write: a chunk identifier and the
// address of the chunk server holding it.
type ChunkPlacement struct {
	ChunkID string `json:"chunkId"`
	Server  string `json:"server"`
}

// ChunkGroup is every replica placement produced by a single write call.
type ChunkGroup []ChunkPlacement

// FileNode is a file's metadata and chunk history. Children of a DirNode
// are stored as *FileNode values inside a safemap.SafeMap, which supplies
// the per-file lock referenced throughout the design as the "file node
// lock".
type FileNode struct {
	Name    string       `json:"name"`
	Parent  string       `json:"parent"`
	Meta    Metadata     `json:"meta"`
	History []ChunkGroup `json:"history"`
}

// DirNode is a directory's metadata plus its file children. Children does
// not hold subdirectories: the flat DirectoryMap owned by NamespaceManager
// is the only place subdirectories are recorded.
type DirNode struct {
	Path     string `json:"path"`
	Parent   string `json:"parent"`
	Meta     Metadata
	Children safemap.SafeMap[string, *FileNode]
}

func newDirNode(path, parent string) *DirNode {
	d := &DirNode{Path: path, Parent: parent, Meta: newMetadata()}
	d.Children.Init()
	return d
}

// FileInfo is a serialisable snapshot of a FileNode, returned to callers
// instead of the live, lock-guarded node.
type FileInfo struct {
	Name    string       `json:"name"`
	Parent  string       `json:"parent"`
	Meta    Metadata     `json:"meta"`
	History []ChunkGroup `json:"history"`
}

// DirectoryInfo is a serialisable snapshot of a DirNode and its children.
type DirectoryInfo struct {
	Path     string     `json:"path"`
	Parent   string     `json:"parent"`
	Meta     Metadata   `json:"meta"`
	Children []FileInfo `json:"children"`
}
