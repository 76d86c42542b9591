// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gfs.io/master/chunkmgr"
	"gfs.io/master/namespace"
	"gfs.io/master/userstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dataDir := t.TempDir()

	cm := chunkmgr.New(dataDir, 1, 2, 4)
	cm.SeedForTest(1)
	if err := cm.Init(); err != nil {
		t.Fatalf("chunkmgr.Init: %v", err)
	}
	if err := cm.Heartbeat(chunkmgr.Heartbeat{Address: "10.0.0.1:9000"}); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	ns := namespace.New(NewChunkAllocator(cm), dataDir)
	if err := ns.Init(); err != nil {
		t.Fatalf("namespace.Init: %v", err)
	}

	us := userstore.New(dataDir)
	if err := us.Init(); err != nil {
		t.Fatalf("userstore.Init: %v", err)
	}

	return New(ns, cm, us)
}

func doJSON(t *testing.T, s *Server, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		r = httptest.NewRequest(method, target, bytes.NewReader(b))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, r)
	return w
}

func TestUserRegisterLoginFlow(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/user/register", credentials{Username: "jane", Password: "hunter2"})
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, want 200: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodPost, "/user/register", credentials{Username: "jane", Password: "again"})
	if w.Code != http.StatusConflict {
		t.Fatalf("register duplicate status = %d, want 409", w.Code)
	}

	w = doJSON(t, s, http.MethodPost, "/user/login", credentials{Username: "jane", Password: "hunter2"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodPost, "/user/login", credentials{Username: "jane", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login wrong password status = %d, want 401", w.Code)
	}
}

func TestFileLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/file/create?path=/f", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("file create status = %d, want 200: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodPost, "/file/update?path=/f&size=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("file update status = %d, want 200: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodGet, "/file/read?path=/f", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("file read status = %d, want 200: %s", w.Code, w.Body)
	}
	var group []namespace.ChunkPlacement
	if err := json.Unmarshal(w.Body.Bytes(), &group); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(group) != 1 {
		t.Fatalf("len(group) = %d, want 1 (replica width configured to 1)", len(group))
	}

	w = doJSON(t, s, http.MethodGet, "/file/delete?path=/f", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("file delete status = %d, want 200: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodGet, "/file/read?path=/f", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("file read after delete status = %d, want 404", w.Code)
	}
}

func TestDirLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/dir/create?path=/a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dir create status = %d, want 200: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodGet, "/dir/read?path=/a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dir read status = %d, want 200: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodPost, "/dir/delete?path=/a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dir delete status = %d, want 200: %s", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodGet, "/dir/read?path=/a", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("dir read after delete status = %d, want 404", w.Code)
	}
}

func TestHeartbeatOverHTTP(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/heartbeat", chunkmgr.Heartbeat{Address: "10.0.0.2:9000"})
	if w.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d, want 200: %s", w.Code, w.Body)
	}
}

func TestMissingPathParamIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/file/read", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
