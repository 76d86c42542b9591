// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gfserrors

import (
	"errors"
	"testing"
)

func TestKindOf(t *testing.T) {
	e1 := E(Op("NamespaceManager.fileCreate"), Path("/a/b"), NotFound)
	if k := KindOf(e1); k != NotFound {
		t.Errorf("KindOf(e1) = %v, want NotFound", k)
	}

	e2 := E(Op("Frontend.create"), e1)
	if k := KindOf(e2); k != NotFound {
		t.Errorf("KindOf(e2) = %v, want NotFound (pulled up from wrapped error)", k)
	}

	plain := errors.New("boom")
	if k := KindOf(plain); k != Other {
		t.Errorf("KindOf(plain) = %v, want Other", k)
	}
}

func TestSeparator(t *testing.T) {
	defer func(prev string) { Separator = prev }(Separator)
	Separator = ":: "

	e1 := E(Op("ChunkManager.writeChunks"), IOFailure, Str("disk full"))
	e2 := E(Op("NamespaceManager.fileWrite"), Path("/a/x"), e1)

	want := "/a/x: NamespaceManager.fileWrite:: ChunkManager.writeChunks: I/O failure: disk full"
	if got := e2.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDedup(t *testing.T) {
	inner := E(Op("inner"), Path("/a"), NotFound)
	outer := E(Op("outer"), Path("/a"), inner)

	e := outer.(*Error)
	in := e.Err.(*Error)
	if in.Path != "" {
		t.Errorf("expected inner Path to be suppressed as duplicate, got %q", in.Path)
	}
	if e.Kind != NotFound {
		t.Errorf("expected outer Kind to be pulled up to NotFound, got %v", e.Kind)
	}
}

func TestMatch(t *testing.T) {
	template := E(NotFound)
	got := E(Op("fileRead"), Path("/x"), NotFound)
	if !Match(template, got) {
		t.Errorf("expected template to match got")
	}
	wrongKind := E(Op("fileRead"), Path("/x"), AlreadyExists)
	if Match(template, wrongKind) {
		t.Errorf("expected template not to match wrongKind")
	}
}

func TestErrorfAndStr(t *testing.T) {
	err := Errorf("bad value %d", 7)
	if err.Error() != "bad value 7" {
		t.Errorf("Errorf: got %q", err.Error())
	}
	err2 := Str("literal")
	if err2.Error() != "literal" {
		t.Errorf("Str: got %q", err2.Error())
	}
}
