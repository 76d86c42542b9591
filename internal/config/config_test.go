// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"gfs.io/gfserrors"
	"gfs.io/internal/flags"
)

func TestLoadFileOverridesKnownKeys(t *testing.T) {
	origAddr, origReplica := flags.Addr, flags.ReplicaWidth
	defer func() {
		flags.Addr = origAddr
		flags.ReplicaWidth = origReplica
	}()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "addr: \":9000\"\nreplica_width: 5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if flags.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", flags.Addr)
	}
	if flags.ReplicaWidth != 5 {
		t.Errorf("ReplicaWidth = %d, want 5", flags.ReplicaWidth)
	}
}

func TestLoadFileEmptyNameIsNoop(t *testing.T) {
	if err := LoadFile(""); err != nil {
		t.Fatalf("LoadFile(\"\") = %v, want nil", err)
	}
}

func TestLoadFileRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("bogus: 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := LoadFile(path)
	if err == nil {
		t.Fatalf("LoadFile with unknown key = nil error, want error")
	}
	if !gfserrors.IsKind(err, gfserrors.Invalid) {
		t.Errorf("LoadFile error kind = %v, want Invalid", gfserrors.KindOf(err))
	}
}
