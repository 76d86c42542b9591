// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Gfschunkserver runs a chunk server: it serves the chunk blob store over
// HTTP and reports its liveness and free space to the master on a fixed
// interval.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gfs.io/chunkserver/agent"
	"gfs.io/chunkserver/store"
	"gfs.io/internal/config"
	"gfs.io/internal/flags"
	"gfs.io/log"
)

func main() {
	flags.Parse(&flags.Addr, &flags.ChunksDir, &flags.ConfigFile,
		&flags.MasterAddr, &flags.HeartbeatInterval, &flags.Log)

	if err := config.LoadFile(flags.ConfigFile); err != nil {
		log.Fatal(err)
	}

	s, err := store.New(flags.ChunksDir)
	if err != nil {
		log.Fatalf("store.New: %v", err)
	}

	a := agent.New(s, flags.Addr, "http://"+flags.MasterAddr, flags.HeartbeatInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.Run(ctx)

	httpServer := &http.Server{
		Addr:              flags.Addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info.Printf("gfschunkserver: listening on %s", flags.Addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		log.Fatalf("ListenAndServe: %v", err)
	case <-ctx.Done():
		log.Info.Printf("gfschunkserver: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error.Printf("Shutdown: %v", err)
		}
	}
}
