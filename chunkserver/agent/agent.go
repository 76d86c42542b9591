// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package agent wires a chunkserver/store.Store to an HTTP surface and
// runs the heartbeat egress loop that tells the master this server is
// alive and how much disk it has free.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"gfs.io/chunkserver/store"
	"gfs.io/gfserrors"
	"gfs.io/log"
	"gfs.io/master/chunkmgr"
)

// Agent serves a Store's chunk operations over HTTP and reports this
// chunk server's liveness to the master on a fixed interval.
type Agent struct {
	store      *store.Store
	address    string // this chunk server's own dial address, as advertised to the master
	masterURL  string // base URL of the master's HTTP frontend
	id         string
	heartbeatN int // heartbeat interval in seconds
	mux        *http.ServeMux
	client     *http.Client
}

// New returns an Agent serving s, advertising address as its own dial
// address in heartbeats sent to masterURL every heartbeatIntervalSeconds.
func New(s *store.Store, address, masterURL string, heartbeatIntervalSeconds int) *Agent {
	a := &Agent{
		store:      s,
		address:    address,
		masterURL:  masterURL,
		id:         address,
		heartbeatN: heartbeatIntervalSeconds,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	a.mux = http.NewServeMux()
	a.routes()
	return a
}

func (a *Agent) routes() {
	a.mux.HandleFunc("/add_chunk", a.handleAddChunk)
	a.mux.HandleFunc("/append_chunk", a.handleAppendChunk)
	a.mux.HandleFunc("/get_chunk", a.handleGetChunk)
	a.mux.HandleFunc("/delete_chunk", a.handleDeleteChunk)
	a.mux.HandleFunc("/get_chunk_list", a.handleListChunks)
}

// ServeHTTP lets an Agent be used directly as an http.Handler, including
// from tests via httptest.
func (a *Agent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func chunkID(r *http.Request) (string, error) {
	id := r.URL.Query().Get("id")
	if id == "" {
		return "", gfserrors.E(gfserrors.Invalid, gfserrors.Str("missing id parameter"))
	}
	return id, nil
}

func writeAgentError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch gfserrors.KindOf(err) {
	case gfserrors.NotFound:
		status = http.StatusNotFound
	case gfserrors.AlreadyExists:
		status = http.StatusConflict
	case gfserrors.Invalid:
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func (a *Agent) handleAddChunk(w http.ResponseWriter, r *http.Request) {
	id, err := chunkID(r)
	if err != nil {
		writeAgentError(w, err)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeAgentError(w, gfserrors.E(gfserrors.Op("agent.handleAddChunk"), gfserrors.IOFailure, err))
		return
	}
	if err := a.store.AddChunk(id, data); err != nil {
		writeAgentError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *Agent) handleAppendChunk(w http.ResponseWriter, r *http.Request) {
	id, err := chunkID(r)
	if err != nil {
		writeAgentError(w, err)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeAgentError(w, gfserrors.E(gfserrors.Op("agent.handleAppendChunk"), gfserrors.IOFailure, err))
		return
	}
	if err := a.store.AppendChunk(id, data); err != nil {
		writeAgentError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *Agent) handleGetChunk(w http.ResponseWriter, r *http.Request) {
	id, err := chunkID(r)
	if err != nil {
		writeAgentError(w, err)
		return
	}
	data, err := a.store.GetChunk(id)
	if err != nil {
		writeAgentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func (a *Agent) handleDeleteChunk(w http.ResponseWriter, r *http.Request) {
	id, err := chunkID(r)
	if err != nil {
		writeAgentError(w, err)
		return
	}
	if err := a.store.DeleteChunk(id); err != nil {
		writeAgentError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *Agent) handleListChunks(w http.ResponseWriter, r *http.Request) {
	ids, err := a.store.ListChunks()
	if err != nil {
		writeAgentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ids)
}

// Run posts a heartbeat to the master immediately and then on every tick
// until ctx is done. A failed send is logged and retried on the next
// tick; it never stops the loop.
func (a *Agent) Run(ctx context.Context) {
	interval := time.Duration(a.heartbeatN) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.sendHeartbeat()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sendHeartbeat()
		}
	}
}

func (a *Agent) sendHeartbeat() {
	hb := chunkmgr.Heartbeat{
		HostName:           hostname(),
		ChunkServerID:      a.id,
		Address:            a.address,
		LastHeartbeatEpoch: time.Now().Unix(),
		DiskInfo:           diskInfo(),
	}
	body, err := json.Marshal(hb)
	if err != nil {
		log.Error.Printf("agent: marshal heartbeat: %v", err)
		return
	}
	req, err := http.NewRequest(http.MethodPost, a.masterURL+"/heartbeat", bytes.NewReader(body))
	if err != nil {
		log.Error.Printf("agent: build heartbeat request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		log.Error.Printf("agent: send heartbeat to %s: %v", a.masterURL, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Error.Printf("agent: heartbeat rejected: %s", resp.Status)
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
