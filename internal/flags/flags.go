// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flags defines command-line flags shared by the master and chunk
// server binaries, so the two programs expose a consistent set of names.
// Not all flags make sense for all binaries; each main selects the subset
// it needs when calling Parse.
package flags

import (
	"flag"
	"fmt"
	"reflect"

	"gfs.io/log"
)

// We define the flags in two steps so clients don't have to write *flags.Flag.
// It also makes the documentation easier to read.

var (
	// Addr is the network address to listen on.
	Addr = ":8000"

	// DataDir is the master's data directory, holding the namespace,
	// chunk map, server map and user store files.
	DataDir = "data"

	// ChunksDir is the chunk server's local blob directory.
	ChunksDir = "chunks"

	// HeartbeatInterval is the interval, in seconds, at which a chunk
	// server reports to the master and at which the master sweeps for
	// stale servers.
	HeartbeatInterval = 2

	// EvictionMultiplier is the number of missed heartbeat intervals
	// after which a silent chunk server is evicted from the live set.
	EvictionMultiplier = 4

	// ReplicaWidth is the number of chunk servers each new chunk is
	// placed on.
	ReplicaWidth = 3

	// ConfigFile is the path to an optional YAML file overriding any of
	// the above flags.
	ConfigFile = ""

	// Log sets the level of logging.
	Log logFlag

	// MasterAddr is the master's HTTP address, used by chunk server and
	// client binaries to locate it.
	MasterAddr = "localhost:8000"
)

type logFlag string

// String implements flag.Value.
func (l *logFlag) String() string {
	return string(*l)
}

// Set implements flag.Value.
func (l *logFlag) Set(level string) error {
	err := log.SetLevel(level)
	if err != nil {
		return err
	}
	*l = logFlag(log.GetLevel())
	return nil
}

// Get implements flag.Getter.
func (l *logFlag) Get() interface{} {
	return log.GetLevel()
}

// Parse sets up the command-line flags for the given flag variables and
// calls flag.Parse. Passing an unknown variable triggers a panic.
//
// For example:
//
//	flags.Parse(&flags.Addr, &flags.DataDir)
func Parse(vars ...interface{}) error {
	for i, v := range vars {
		unknown := false
		switch v := v.(type) {
		case *string:
			switch v {
			case &Addr:
				flag.StringVar(v, "addr", Addr, "address to listen on")
			case &DataDir:
				flag.StringVar(v, "data_dir", DataDir, "`directory` holding namespace and server metadata")
			case &ChunksDir:
				flag.StringVar(v, "chunks_dir", ChunksDir, "`directory` holding local chunk blobs")
			case &ConfigFile:
				flag.StringVar(v, "config_file", ConfigFile, "`file` with YAML config overrides, one key per line")
			case &MasterAddr:
				flag.StringVar(v, "master_addr", MasterAddr, "address of the master's HTTP API")
			default:
				unknown = true
			}
		case *int:
			switch v {
			case &HeartbeatInterval:
				flag.IntVar(v, "heartbeat_interval", HeartbeatInterval, "heartbeat interval, in seconds")
			case &EvictionMultiplier:
				flag.IntVar(v, "eviction_multiplier", EvictionMultiplier, "missed heartbeat intervals before eviction")
			case &ReplicaWidth:
				flag.IntVar(v, "replica_width", ReplicaWidth, "number of chunk servers each chunk is placed on")
			default:
				unknown = true
			}
		case *logFlag:
			switch v {
			case &Log:
				v.Set("info")
				flag.Var(v, "log", "`level` of logging: debug, info, error, disabled")
			default:
				unknown = true
			}
		default:
			unknown = true
		}
		if unknown {
			msg := fmt.Sprintf("flags: unknown flag (%#v, arg %d)", v, i)
			if reflect.TypeOf(v).Kind() != reflect.Ptr {
				msg += ", expected pointer type"
			}
			panic(msg)
		}
	}
	flag.Parse()
	return nil
}
