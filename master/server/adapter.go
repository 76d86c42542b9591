// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package server

import (
	"gfs.io/master/chunkmgr"
	"gfs.io/master/namespace"
)

// chunkAllocator adapts *chunkmgr.Manager to namespace.ChunkAllocator so
// the two packages stay decoupled from each other's types.
type chunkAllocator struct {
	cm *chunkmgr.Manager
}

func (a chunkAllocator) WriteChunks() ([]namespace.ChunkPlacement, error) {
	placements, err := a.cm.WriteChunks()
	if err != nil {
		return nil, err
	}
	out := make([]namespace.ChunkPlacement, len(placements))
	for i, p := range placements {
		out[i] = namespace.ChunkPlacement{ChunkID: p.ChunkID, Server: p.Server}
	}
	return out, nil
}

// NewChunkAllocator wraps cm for use as the namespace.Manager's
// ChunkAllocator dependency.
func NewChunkAllocator(cm *chunkmgr.Manager) namespace.ChunkAllocator {
	return chunkAllocator{cm: cm}
}
