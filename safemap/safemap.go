// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package safemap implements a two-level concurrent map: a single mutex
// guards the structure of the map (insertion, removal, enumeration) while
// each stored value carries its own reader-writer lock, so callers holding
// a handle to one value never block callers working with another.
//
// The zero value is not ready to use; call Init before any other method.
package safemap

import "sync"

// Guarded wraps a value with a reader-writer lock. Callers obtained from
// SafeMap.Get must call RLock/RUnlock or Lock/Unlock around any access to
// Value, and must not retain the handle past the corresponding unlock if
// the entry may be removed concurrently.
type Guarded[V any] struct {
	mu    sync.RWMutex
	Value V
}

// RLock acquires the value's lock for reading.
func (g *Guarded[V]) RLock() { g.mu.RLock() }

// RUnlock releases the value's read lock.
func (g *Guarded[V]) RUnlock() { g.mu.RUnlock() }

// Lock acquires the value's lock for writing.
func (g *Guarded[V]) Lock() { g.mu.Lock() }

// Unlock releases the value's write lock.
func (g *Guarded[V]) Unlock() { g.mu.Unlock() }

// SafeMap is a concurrent key-to-value container with per-value locking.
// K must be comparable; V is stored by value inside a Guarded wrapper, so
// callers typically instantiate SafeMap with a pointer type for V when the
// stored value itself has internal state to mutate in place.
type SafeMap[K comparable, V any] struct {
	mu   sync.Mutex
	m    map[K]*Guarded[V]
	init bool
}

// Init installs an empty inner mapping. It is idempotent: calling it again
// on an already-initialised map is a no-op.
func (s *SafeMap[K, V]) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.init {
		return
	}
	s.m = make(map[K]*Guarded[V])
	s.init = true
}

// Insert replaces any existing value at k and returns the previous guarded
// value, if any. The caller is responsible for not holding a lock on the
// returned value elsewhere before discarding it.
func (s *SafeMap[K, V]) Insert(k K, v V) (prev *Guarded[V], hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, hadPrev = s.m[k]
	s.m[k] = &Guarded[V]{Value: v}
	return prev, hadPrev
}

// Get returns a shareable handle to the value's lock guard, or false if k
// is not present.
func (s *SafeMap[K, V]) Get(k K) (*Guarded[V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.m[k]
	return g, ok
}

// Remove deletes k from the map and returns the removed guarded value, if
// any was present.
func (s *SafeMap[K, V]) Remove(k K) (*Guarded[V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.m[k]
	if ok {
		delete(s.m, k)
	}
	return g, ok
}

// Keys returns a snapshot of the keys currently present.
func (s *SafeMap[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]K, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	return keys
}

// Len reports the number of entries currently present.
func (s *SafeMap[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Snapshot returns a deep-enough clone of all (key, value) pairs: each
// value is read under its own read lock so the copy is internally
// consistent even while other goroutines mutate disjoint entries.
func (s *SafeMap[K, V]) Snapshot() map[K]V {
	s.mu.Lock()
	entries := make(map[K]*Guarded[V], len(s.m))
	for k, g := range s.m {
		entries[k] = g
	}
	s.mu.Unlock()

	out := make(map[K]V, len(entries))
	for k, g := range entries {
		g.RLock()
		out[k] = g.Value
		g.RUnlock()
	}
	return out
}
