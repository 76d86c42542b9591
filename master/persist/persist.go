// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package persist implements the write-through, crash-safe flat-file
// persistence shared by the namespace, chunk and user stores. Each full
// rewrite goes to a sibling temp file that is renamed over the original on
// success, so a crash mid-write never leaves a half-written file in place
// of a good one. No fsync of the containing directory is performed.
package persist

import (
	"fmt"
	"os"
	"sync"
)

// writeMu serialises WriteAtomic calls, so two rewrites never share the
// same temp file.
var writeMu sync.Mutex

// WriteAtomic calls write with a fresh temp file alongside path, then
// renames the temp file over path if write succeeds. If write returns an
// error, the temp file is removed and path is left untouched. Calls are
// serialised: only one rewrite runs at a time.
func WriteAtomic(path string, write func(*os.File) error) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	tmpName := fmt.Sprintf("%s.tmp-%d", path, os.Getpid())
	tmp, err := os.Create(tmpName)
	if err != nil {
		return err
	}
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// AppendLine appends line, plus a trailing newline, to path, creating the
// file if it does not exist. Used by the user store, which grows by
// append rather than full rewrite.
func AppendLine(path string, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, line)
	return err
}
