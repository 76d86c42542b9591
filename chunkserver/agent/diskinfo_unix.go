// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package agent

import (
	"golang.org/x/sys/unix"

	"gfs.io/master/chunkmgr"
)

// diskInfo reports free and total space on the filesystem backing ".",
// the process working directory. The chunk store's directory is not
// consulted, so the figures describe it only when it lives on that same
// filesystem.
func diskInfo() []chunkmgr.DiskInfo {
	var stat unix.Statfs_t
	if err := unix.Statfs(".", &stat); err != nil {
		return nil
	}
	blockSize := uint64(stat.Bsize)
	return []chunkmgr.DiskInfo{{
		Name:           ".",
		Kind:           "local",
		FileSystem:     "unix",
		MountPoint:     ".",
		TotalSpace:     stat.Blocks * blockSize,
		AvailableSpace: stat.Bavail * blockSize,
	}}
}
