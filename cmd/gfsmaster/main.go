// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Gfsmaster runs the namespace and chunk-placement master: it holds the
// directory tree, the chunk map and server map, and the user store, and
// serves them over the master's HTTP API.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"gfs.io/internal/config"
	"gfs.io/internal/flags"
	"gfs.io/log"
	"gfs.io/master/chunkmgr"
	"gfs.io/master/namespace"
	"gfs.io/master/server"
	"gfs.io/master/userstore"
)

func main() {
	flags.Parse(&flags.Addr, &flags.DataDir, &flags.ConfigFile,
		&flags.HeartbeatInterval, &flags.EvictionMultiplier, &flags.ReplicaWidth, &flags.Log)

	if err := config.LoadFile(flags.ConfigFile); err != nil {
		log.Fatal(err)
	}

	cm := chunkmgr.New(flags.DataDir, flags.ReplicaWidth, flags.HeartbeatInterval, flags.EvictionMultiplier)
	if err := cm.Init(); err != nil {
		log.Fatalf("chunkmgr.Init: %v", err)
	}

	ns := namespace.New(server.NewChunkAllocator(cm), flags.DataDir)
	if err := ns.Init(); err != nil {
		log.Fatalf("namespace.Init: %v", err)
	}

	us := userstore.New(flags.DataDir)
	if err := us.Init(); err != nil {
		log.Fatalf("userstore.Init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cm.Run(ctx)

	srv := server.New(ns, cm, us)
	log.Info.Printf("gfsmaster: listening on %s", flags.Addr)
	if err := srv.ListenAndServe(ctx, flags.Addr); err != nil {
		log.Fatalf("ListenAndServe: %v", err)
	}
}
