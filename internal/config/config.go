// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads a YAML file of flag overrides, applied on top of
// whatever the command line has already set, following the same "known
// keys only" discipline as the corpus's config package.
package config

import (
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v2"

	"gfs.io/gfserrors"
	"gfs.io/internal/flags"
	"gfs.io/log"
)

// Known keys. All others are rejected.
const (
	keyAddr               = "addr"
	keyDataDir            = "data_dir"
	keyChunksDir          = "chunks_dir"
	keyHeartbeatInterval  = "heartbeat_interval"
	keyEvictionMultiplier = "eviction_multiplier"
	keyReplicaWidth       = "replica_width"
	keyMasterAddr         = "master_addr"
	keyLog                = "log"
)

// LoadFile reads a YAML configuration file and applies any recognized keys
// to the package-level flag variables in internal/flags. It is a no-op if
// name is empty. Values already set explicitly on the command line are not
// distinguished from defaults: a key present in the file always wins, since
// the binaries call it after flags.Parse; tests may also call it standalone
// for a known starting configuration.
func LoadFile(name string) error {
	const op = "config.LoadFile"
	if name == "" {
		return nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.IOFailure, err)
	}

	vals := map[string]interface{}{}
	if err := yaml.Unmarshal(data, vals); err != nil {
		return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
	}

	for k, v := range vals {
		switch k {
		case keyAddr:
			s, err := asString(k, v)
			if err != nil {
				return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
			}
			flags.Addr = s
		case keyDataDir:
			s, err := asString(k, v)
			if err != nil {
				return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
			}
			flags.DataDir = s
		case keyChunksDir:
			s, err := asString(k, v)
			if err != nil {
				return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
			}
			flags.ChunksDir = s
		case keyMasterAddr:
			s, err := asString(k, v)
			if err != nil {
				return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
			}
			flags.MasterAddr = s
		case keyHeartbeatInterval:
			n, err := asInt(k, v)
			if err != nil {
				return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
			}
			flags.HeartbeatInterval = n
		case keyEvictionMultiplier:
			n, err := asInt(k, v)
			if err != nil {
				return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
			}
			flags.EvictionMultiplier = n
		case keyReplicaWidth:
			n, err := asInt(k, v)
			if err != nil {
				return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
			}
			flags.ReplicaWidth = n
		case keyLog:
			s, err := asString(k, v)
			if err != nil {
				return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
			}
			if err := log.SetLevel(s); err != nil {
				return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, err)
			}
		default:
			return gfserrors.E(gfserrors.Op(op), gfserrors.Invalid, gfserrors.Errorf("unrecognized config key %q", k))
		}
	}
	return nil
}

func asString(key string, v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int:
		return strconv.Itoa(s), nil
	}
	return "", gfserrors.Errorf("key %q: unrecognized value %v", key, v)
}

func asInt(key string, v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, gfserrors.Errorf("key %q: %v", key, err)
		}
		return i, nil
	}
	return 0, gfserrors.Errorf("key %q: unrecognized value %v", key, v)
}
