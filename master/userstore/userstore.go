// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package userstore implements the master's credential store: an
// append-only, argon2id-hashed username/password file with an in-memory
// index for register and login.
package userstore

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"gfs.io/gfserrors"
	"gfs.io/master/persist"
)

type record struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// Store is a username-to-password-hash index backed by an append-only
// JSON-lines file.
type Store struct {
	mu   sync.RWMutex
	hash map[string]string
	path string
}

// New returns a Store persisting to dataDir/users.json.
func New(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, "users.json")}
}

// Init loads users.json if present.
func (s *Store) Init() error {
	const op = "userstore.Store.Init"
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hash = make(map[string]string)

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r record
		if err := json.Unmarshal(line, &r); err != nil {
			return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
		}
		s.hash[r.Username] = r.PasswordHash
	}
	return sc.Err()
}

// Register adds a new user with the given password, failing with
// AlreadyExists if the username is already present.
func (s *Store) Register(username, password string) error {
	const op = "userstore.Store.Register"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hash[username]; ok {
		return gfserrors.E(gfserrors.Op(op), gfserrors.AlreadyExists)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}

	line, err := json.Marshal(record{Username: username, PasswordHash: hashed})
	if err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	if err := persist.AppendLine(s.path, string(line)); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}

	s.hash[username] = hashed
	return nil
}

// Login verifies password against the stored hash for username.
func (s *Store) Login(username, password string) error {
	const op = "userstore.Store.Login"
	s.mu.RLock()
	hashed, ok := s.hash[username]
	s.mu.RUnlock()
	if !ok {
		return gfserrors.E(gfserrors.Op(op), gfserrors.NotFound)
	}

	ok, err := verifyPassword(password, hashed)
	if err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}
	if !ok {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Unauthorised)
	}
	return nil
}
