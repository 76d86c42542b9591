// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safemap

import (
	"sync"
	"testing"
)

func TestInsertGetRemove(t *testing.T) {
	var m SafeMap[string, int]
	m.Init()

	if _, ok := m.Get("a"); ok {
		t.Fatalf("Get on empty map returned ok")
	}

	m.Insert("a", 1)
	g, ok := m.Get("a")
	if !ok {
		t.Fatalf("Get(%q) = not found", "a")
	}
	g.RLock()
	if g.Value != 1 {
		t.Errorf("Value = %d, want 1", g.Value)
	}
	g.RUnlock()

	prev, hadPrev := m.Insert("a", 2)
	if !hadPrev {
		t.Fatalf("Insert over existing key reported hadPrev=false")
	}
	prev.RLock()
	if prev.Value != 1 {
		t.Errorf("previous Value = %d, want 1", prev.Value)
	}
	prev.RUnlock()

	removed, ok := m.Remove("a")
	if !ok {
		t.Fatalf("Remove(%q) = not found", "a")
	}
	removed.RLock()
	if removed.Value != 2 {
		t.Errorf("removed Value = %d, want 2", removed.Value)
	}
	removed.RUnlock()

	if _, ok := m.Get("a"); ok {
		t.Fatalf("Get after Remove still found the key")
	}
}

func TestInitIdempotent(t *testing.T) {
	var m SafeMap[string, int]
	m.Init()
	m.Insert("a", 1)
	m.Init() // must not reset the map
	if _, ok := m.Get("a"); !ok {
		t.Fatalf("second Init() cleared the map")
	}
}

func TestKeysAndLen(t *testing.T) {
	var m SafeMap[string, int]
	m.Init()
	m.Insert("a", 1)
	m.Insert("b", 2)
	m.Insert("c", 3)

	if n := m.Len(); n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
	keys := m.Keys()
	if len(keys) != 3 {
		t.Errorf("len(Keys()) = %d, want 3", len(keys))
	}
	seen := map[string]bool{}
	for _, k := range keys {
		seen[k] = true
	}
	for _, want := range []string{"a", "b", "c"} {
		if !seen[want] {
			t.Errorf("Keys() missing %q", want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	var m SafeMap[string, int]
	m.Init()
	m.Insert("a", 1)
	m.Insert("b", 2)

	snap := m.Snapshot()
	if len(snap) != 2 || snap["a"] != 1 || snap["b"] != 2 {
		t.Errorf("Snapshot() = %v, want map[a:1 b:2]", snap)
	}

	// Mutating the map after the snapshot must not affect it.
	if g, ok := m.Get("a"); ok {
		g.Lock()
		g.Value = 99
		g.Unlock()
	}
	if snap["a"] != 1 {
		t.Errorf("Snapshot entry changed after source mutation: got %d, want 1", snap["a"])
	}
}

func TestConcurrentDisjointAccess(t *testing.T) {
	var m SafeMap[int, int]
	m.Init()
	const n = 50
	for i := 0; i < n; i++ {
		m.Insert(i, 0)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(key int) {
			defer wg.Done()
			g, ok := m.Get(key)
			if !ok {
				t.Errorf("Get(%d) not found", key)
				return
			}
			g.Lock()
			g.Value = key * key
			g.Unlock()
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		g, _ := m.Get(i)
		g.RLock()
		if g.Value != i*i {
			t.Errorf("key %d: Value = %d, want %d", i, g.Value, i*i)
		}
		g.RUnlock()
	}
}
