// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chunkmgr

import "time"

// Placement names one replica of a write: a chunk identifier and the
// address of the chunk server holding it.
type Placement struct {
	ChunkID string `json:"chunkId"`
	Server  string `json:"server"`
}

// serverEntry is the ServerMap value: the chunks currently assigned to one
// chunk server, plus the time its last heartbeat was received.
type serverEntry struct {
	Chunks        []string
	LastHeartbeat time.Time
}

// DiskInfo mirrors one filesystem entry reported in a heartbeat payload.
type DiskInfo struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	FileSystem     string `json:"fileSystem"`
	MountPoint     string `json:"mountPoint"`
	TotalSpace     uint64 `json:"totalSpace"`
	AvailableSpace uint64 `json:"availableSpace"`
}

// Heartbeat is the payload a chunk server POSTs to the master on every
// tick.
type Heartbeat struct {
	OSName             string     `json:"osName"`
	OSVersion          string     `json:"osVersion"`
	HostName           string     `json:"hostName"`
	ChunkServerID      string     `json:"chunkserverId"`
	Address            string     `json:"address"`
	LastHeartbeatEpoch int64      `json:"lastHeartbeatEpochSeconds"`
	DiskInfo           []DiskInfo `json:"diskInfo"`
}
