// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"net/url"
)

// chunkPlacement mirrors namespace.ChunkPlacement without importing the
// master packages into the client binary.
type chunkPlacement struct {
	ChunkID string `json:"chunkId"`
	Server  string `json:"server"`
}

type fileInfo struct {
	Name    string             `json:"name"`
	Parent  string             `json:"parent"`
	History [][]chunkPlacement `json:"history"`
}

type directoryInfo struct {
	Path     string     `json:"path"`
	Children []fileInfo `json:"children"`
}

func (s *State) mkdir(args ...string) {
	fs := flag.NewFlagSet("mkdir", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		s.exitf("usage: mkdir path")
	}
	path := fs.Arg(0)
	if err := s.postJSON("/dir/create?path="+url.QueryEscape(path), nil, nil); err != nil {
		s.exit(err)
	}
}

func (s *State) rmdir(args ...string) {
	fs := flag.NewFlagSet("rmdir", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		s.exitf("usage: rmdir path")
	}
	path := fs.Arg(0)
	if err := s.postJSON("/dir/delete?path="+url.QueryEscape(path), nil, nil); err != nil {
		s.exit(err)
	}
}

func (s *State) ls(args ...string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		s.exitf("usage: ls path")
	}
	path := fs.Arg(0)
	var info directoryInfo
	if err := s.getJSON("/dir/read?path="+url.QueryEscape(path), &info); err != nil {
		s.exit(err)
	}
	for _, child := range info.Children {
		fmt.Println(child.Name)
	}
}

func (s *State) create(args ...string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		s.exitf("usage: create path")
	}
	path := fs.Arg(0)
	if err := s.postJSON("/file/create?path="+url.QueryEscape(path), nil, nil); err != nil {
		s.exit(err)
	}
}

func (s *State) rm(args ...string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		s.exitf("usage: rm path")
	}
	path := fs.Arg(0)
	if err := s.postJSON("/file/delete?path="+url.QueryEscape(path), nil, nil); err != nil {
		s.exit(err)
	}
}
