// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userstore

import (
	"testing"

	"gfs.io/gfserrors"
)

func TestRegisterAndLogin(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := s.Register("jane", "hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register("jane", "whatever"); !gfserrors.IsKind(err, gfserrors.AlreadyExists) {
		t.Fatalf("Register again: %v, want AlreadyExists", err)
	}

	if err := s.Login("jane", "hunter2"); err != nil {
		t.Fatalf("Login with correct password: %v", err)
	}
	if err := s.Login("jane", "wrong"); !gfserrors.IsKind(err, gfserrors.Unauthorised) {
		t.Fatalf("Login with wrong password: %v, want Unauthorised", err)
	}
	if err := s.Login("nobody", "x"); !gfserrors.IsKind(err, gfserrors.NotFound) {
		t.Fatalf("Login unknown user: %v, want NotFound", err)
	}
}

func TestPasswordHashNotStoredInPlaintext(t *testing.T) {
	hashed, err := hashPassword("hunter2")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if hashed == "hunter2" {
		t.Fatalf("hashPassword returned the plaintext password")
	}
	ok, err := verifyPassword("hunter2", hashed)
	if err != nil {
		t.Fatalf("verifyPassword: %v", err)
	}
	if !ok {
		t.Errorf("verifyPassword(correct) = false, want true")
	}
	ok, err = verifyPassword("wrong", hashed)
	if err != nil {
		t.Fatalf("verifyPassword: %v", err)
	}
	if ok {
		t.Errorf("verifyPassword(wrong) = true, want false")
	}
}

func TestRegisterPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := s.Register("jane", "hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	reloaded := New(dir)
	if err := reloaded.Init(); err != nil {
		t.Fatalf("Init (reload): %v", err)
	}
	if err := reloaded.Login("jane", "hunter2"); err != nil {
		t.Fatalf("Login after reload: %v", err)
	}
}
