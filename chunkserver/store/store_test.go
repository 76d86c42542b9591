// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"gfs.io/gfserrors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestAddGetDeleteChunk(t *testing.T) {
	s := newTestStore(t)
	const id = "11111111-1111-1111-1111-111111111111"

	if err := s.AddChunk(id, []byte("hello")); err != nil {
		t.Fatalf("AddChunk: %v", err)
	}

	data, err := s.GetChunk(id)
	if err != nil {
		t.Fatalf("GetChunk: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("GetChunk = %q, want %q", data, "hello")
	}

	if err := s.DeleteChunk(id); err != nil {
		t.Fatalf("DeleteChunk: %v", err)
	}
	if _, err := s.GetChunk(id); gfserrors.KindOf(err) != gfserrors.NotFound {
		t.Fatalf("GetChunk after delete: kind = %v, want NotFound", gfserrors.KindOf(err))
	}
}

func TestAddChunkDuplicateFails(t *testing.T) {
	s := newTestStore(t)
	const id = "22222222-2222-2222-2222-222222222222"

	if err := s.AddChunk(id, []byte("a")); err != nil {
		t.Fatalf("AddChunk: %v", err)
	}
	err := s.AddChunk(id, []byte("b"))
	if gfserrors.KindOf(err) != gfserrors.AlreadyExists {
		t.Fatalf("kind = %v, want AlreadyExists", gfserrors.KindOf(err))
	}
}

func TestAppendChunk(t *testing.T) {
	s := newTestStore(t)
	const id = "33333333-3333-3333-3333-333333333333"

	if err := s.AddChunk(id, []byte("foo")); err != nil {
		t.Fatalf("AddChunk: %v", err)
	}
	if err := s.AppendChunk(id, []byte("bar")); err != nil {
		t.Fatalf("AppendChunk: %v", err)
	}
	data, err := s.GetChunk(id)
	if err != nil {
		t.Fatalf("GetChunk: %v", err)
	}
	if string(data) != "foobar" {
		t.Fatalf("GetChunk = %q, want %q", data, "foobar")
	}
}

func TestAppendChunkMissingFails(t *testing.T) {
	s := newTestStore(t)
	err := s.AppendChunk("44444444-4444-4444-4444-444444444444", []byte("x"))
	if gfserrors.KindOf(err) != gfserrors.NotFound {
		t.Fatalf("kind = %v, want NotFound", gfserrors.KindOf(err))
	}
}

func TestAddChunkOverSizeCapFails(t *testing.T) {
	s := newTestStore(t)
	big := make([]byte, MaxChunkSize+1)
	err := s.AddChunk("55555555-5555-5555-5555-555555555555", big)
	if gfserrors.KindOf(err) != gfserrors.Invalid {
		t.Fatalf("kind = %v, want Invalid", gfserrors.KindOf(err))
	}
}

func TestDeleteChunkMissingFails(t *testing.T) {
	s := newTestStore(t)
	err := s.DeleteChunk("66666666-6666-6666-6666-666666666666")
	if gfserrors.KindOf(err) != gfserrors.NotFound {
		t.Fatalf("kind = %v, want NotFound", gfserrors.KindOf(err))
	}
}

func TestListChunks(t *testing.T) {
	s := newTestStore(t)
	ids := []string{
		"aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		"bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb",
	}
	for _, id := range ids {
		if err := s.AddChunk(id, []byte("x")); err != nil {
			t.Fatalf("AddChunk(%s): %v", id, err)
		}
	}

	got, err := s.ListChunks()
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(got) != len(ids) {
		t.Fatalf("ListChunks returned %d ids, want %d", len(got), len(ids))
	}
	for i, id := range ids {
		if got[i] != id {
			t.Fatalf("ListChunks[%d] = %q, want %q", i, got[i], id)
		}
	}
}
