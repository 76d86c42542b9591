// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package server implements the master's HTTP frontend: a thin net/http
// adapter that parses requests, calls the namespace, chunk and user
// stores, and formats the JSON response. It performs no business logic of
// its own.
package server

import (
	"context"
	"net/http"
	"time"

	"gfs.io/log"
	"gfs.io/master/chunkmgr"
	"gfs.io/master/namespace"
	"gfs.io/master/userstore"
)

// Server adapts the master's core components to HTTP.
type Server struct {
	ns  *namespace.Manager
	cm  *chunkmgr.Manager
	us  *userstore.Store
	mux *http.ServeMux
}

// New builds a Server wiring the given core components to the HTTP
// surface described in the external interfaces.
func New(ns *namespace.Manager, cm *chunkmgr.Manager, us *userstore.Store) *Server {
	s := &Server{ns: ns, cm: cm, us: us, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/user/register", s.handleUserRegister)
	s.mux.HandleFunc("/user/login", s.handleUserLogin)
	s.mux.HandleFunc("/file/create", s.handleFileCreate)
	s.mux.HandleFunc("/file/read", s.handleFileRead)
	s.mux.HandleFunc("/file/read/all", s.handleFileReadAll)
	s.mux.HandleFunc("/file/update", s.handleFileUpdate)
	s.mux.HandleFunc("/file/delete", s.handleFileDelete)
	s.mux.HandleFunc("/dir/create", s.handleDirCreate)
	s.mux.HandleFunc("/dir/read", s.handleDirRead)
	s.mux.HandleFunc("/dir/delete", s.handleDirDelete)
	s.mux.HandleFunc("/heartbeat", s.handleHeartbeat)
}

// ListenAndServe serves the frontend on addr until ctx is cancelled, then
// drains in-flight requests with a bounded shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           loggingMiddleware(s.mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info.Printf("master: listening on %s", addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info.Printf("master: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
