// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkmgr implements the chunk placement and membership tracking
// owned by the master: the ChunkMap (chunk identifier to server) and the
// ServerMap (server to its assigned chunks and last heartbeat), and the
// background sweep that evicts chunk servers gone silent.
package chunkmgr

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gfs.io/gfserrors"
	"gfs.io/log"
	"gfs.io/master/persist"
	"gfs.io/safemap"
)

// Manager owns ChunkMap and ServerMap and picks placement targets for new
// writes. It is safe for concurrent use.
type Manager struct {
	chunks  safemap.SafeMap[string, string]      // chunk id -> server address
	servers safemap.SafeMap[string, *serverEntry] // server address -> assignment + heartbeat

	writeMu sync.Mutex // serialises WriteChunks; see design note on invariant maintenance
	rng     *rand.Rand

	dataDir            string
	replicaWidth       int
	heartbeatInterval  int
	evictionMultiplier int
}

// New returns a Manager that persists to dataDir/chunk.json and
// dataDir/server.json, places replicaWidth copies per write, and evicts a
// server after evictionMultiplier missed heartbeatInterval-second ticks.
func New(dataDir string, replicaWidth, heartbeatInterval, evictionMultiplier int) *Manager {
	return &Manager{
		dataDir:            dataDir,
		replicaWidth:       replicaWidth,
		heartbeatInterval:  heartbeatInterval,
		evictionMultiplier: evictionMultiplier,
		rng:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedForTest replaces the placement random source with a deterministic
// one, matching the design note that sampling must be reproducible under a
// fixed seed in tests.
func (m *Manager) SeedForTest(seed int64) {
	m.rng = rand.New(rand.NewSource(seed))
}

// Init loads chunk.json and server.json if present.
func (m *Manager) Init() error {
	const op = "chunkmgr.Manager.Init"
	m.chunks.Init()
	m.servers.Init()

	if err := m.loadChunks(); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	if err := m.loadServers(); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	return nil
}

func (m *Manager) loadChunks() error {
	path := filepath.Join(m.dataDir, "chunk.json")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			continue
		}
		m.chunks.Insert(parts[0], parts[1])
	}
	return sc.Err()
}

func (m *Manager) loadServers() error {
	path := filepath.Join(m.dataDir, "server.json")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		addr := parts[0]
		unixSecs, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		entry := &serverEntry{LastHeartbeat: time.Unix(unixSecs, 0).UTC()}
		entry.Chunks = append(entry.Chunks, parts[2:]...)
		m.servers.Insert(addr, entry)
	}
	return sc.Err()
}

// WriteChunks allocates a fresh placement group: it samples replicaWidth
// distinct live servers, generates a UUID per replica, and records the
// assignment in both maps.
func (m *Manager) WriteChunks() ([]Placement, error) {
	const op = "chunkmgr.Manager.WriteChunks"
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	live := m.servers.Keys()
	if len(live) < m.replicaWidth {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Unavailable,
			gfserrors.Errorf("%d live chunk servers, need %d", len(live), m.replicaWidth))
	}
	chosen := sample(m.rng, live, m.replicaWidth)

	placements := make([]Placement, 0, m.replicaWidth)
	for _, addr := range chosen {
		g, ok := m.servers.Get(addr)
		if !ok {
			// Evicted between the snapshot above and now.
			return nil, gfserrors.E(gfserrors.Op(op), gfserrors.Unavailable,
				gfserrors.Errorf("server %s evicted mid-placement", addr))
		}
		id := uuid.New().String()
		g.Lock()
		g.Value.Chunks = append(g.Value.Chunks, id)
		g.Unlock()
		m.chunks.Insert(id, addr)
		placements = append(placements, Placement{ChunkID: id, Server: addr})
	}

	if err := m.persist(); err != nil {
		return nil, gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	return placements, nil
}

// GetChunks resolves each chunk identifier to its server, preserving input
// order and silently skipping identifiers no longer present (evicted or
// unknown).
func (m *Manager) GetChunks(ids []string) []Placement {
	out := make([]Placement, 0, len(ids))
	for _, id := range ids {
		g, ok := m.chunks.Get(id)
		if !ok {
			continue
		}
		g.RLock()
		out = append(out, Placement{ChunkID: id, Server: g.Value})
		g.RUnlock()
	}
	return out
}

// Heartbeat records that addr is alive, creating its ServerMap entry if
// this is the first heartbeat seen from it.
func (m *Manager) Heartbeat(hb Heartbeat) error {
	const op = "chunkmgr.Manager.Heartbeat"
	if hb.Address == "" {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, gfserrors.Str("heartbeat missing address"))
	}
	now := time.Now().UTC()
	if g, ok := m.servers.Get(hb.Address); ok {
		g.Lock()
		g.Value.LastHeartbeat = now
		g.Unlock()
	} else {
		m.servers.Insert(hb.Address, &serverEntry{LastHeartbeat: now})
	}
	if err := m.persist(); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	return nil
}

// Run starts the background eviction sweep; it blocks until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := time.Duration(m.heartbeatInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evictStale()
		}
	}
}

func (m *Manager) evictStale() {
	threshold := time.Duration(m.evictionMultiplier*m.heartbeatInterval) * time.Second
	now := time.Now().UTC()

	var evicted int
	for _, addr := range m.servers.Keys() {
		g, ok := m.servers.Get(addr)
		if !ok {
			continue
		}
		g.RLock()
		stale := now.Sub(g.Value.LastHeartbeat) > threshold
		staleChunks := append([]string(nil), g.Value.Chunks...)
		g.RUnlock()
		if !stale {
			continue
		}
		m.servers.Remove(addr)
		for _, id := range staleChunks {
			m.chunks.Remove(id)
		}
		evicted++
		log.Info.Printf("chunkmgr: evicted stale server %s (%d chunks orphaned)", addr, len(staleChunks))
	}
	if evicted == 0 {
		return
	}
	if err := m.persist(); err != nil {
		log.Error.Printf("chunkmgr: persist after eviction: %v", err)
	}
}

func sample(rng *rand.Rand, pool []string, n int) []string {
	cp := append([]string(nil), pool...)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:n]
}

// persist rewrites chunk.json and server.json in full from current state.
func (m *Manager) persist() error {
	if err := m.persistChunks(); err != nil {
		return err
	}
	return m.persistServers()
}

func (m *Manager) persistChunks() error {
	path := filepath.Join(m.dataDir, "chunk.json")
	snap := m.chunks.Snapshot()
	return persist.WriteAtomic(path, func(f *os.File) error {
		w := bufio.NewWriter(f)
		for id, addr := range snap {
			if _, err := fmt.Fprintf(w, "%s,%s\n", id, addr); err != nil {
				return err
			}
		}
		return w.Flush()
	})
}

func (m *Manager) persistServers() error {
	path := filepath.Join(m.dataDir, "server.json")
	keys := m.servers.Keys()
	return persist.WriteAtomic(path, func(f *os.File) error {
		w := bufio.NewWriter(f)
		for _, addr := range keys {
			g, ok := m.servers.Get(addr)
			if !ok {
				continue
			}
			g.RLock()
			line := addr + "," + strconv.FormatInt(g.Value.LastHeartbeat.Unix(), 10)
			for _, id := range g.Value.Chunks {
				line += "," + id
			}
			g.RUnlock()
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return w.Flush()
	})
}
