// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package namespace

import "strings"

// split divides an absolute path into its parent directory and the final
// path element. A path with no slash is treated as a child of the root:
// split("foo") == ("/", "foo").
func split(path string) (parent, name string) {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/", path[idx+1:]
	}
	return path[:idx], path[idx+1:]
}
