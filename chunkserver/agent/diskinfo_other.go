// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package agent

import "gfs.io/master/chunkmgr"

// diskInfo has no portable implementation on this platform; heartbeats go
// out without disk stats rather than failing to build.
func diskInfo() []chunkmgr.DiskInfo {
	return nil
}
