// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "flag"

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *State) register(args ...string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		s.exitf("usage: register username password")
	}
	creds := credentials{Username: fs.Arg(0), Password: fs.Arg(1)}
	if err := s.postJSON("/user/register", creds, nil); err != nil {
		s.exit(err)
	}
}

func (s *State) login(args ...string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		s.exitf("usage: login username password")
	}
	creds := credentials{Username: fs.Arg(0), Password: fs.Arg(1)}
	if err := s.postJSON("/user/login", creds, nil); err != nil {
		s.exit(err)
	}
}
