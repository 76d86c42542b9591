// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// State carries the flags and exit status shared by every subcommand.
type State struct {
	op         string // name of the subcommand being run
	masterAddr string
	client     *http.Client
	exitCode   int
}

func newState(op, masterAddr string) *State {
	return &State{
		op:         op,
		masterAddr: masterAddr,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// exitf prints the error and exits the program.
func (s *State) exitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "gfsclient: %s: %s\n", s.op, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func (s *State) exit(err error) {
	s.exitf("%s", err)
}

// masterURL builds a full URL against the master's HTTP API.
func (s *State) masterURL(path string) string {
	return "http://" + s.masterAddr + path
}

// getJSON issues a GET against the master and decodes the JSON body into
// out, which may be nil if the caller only cares about the status.
func (s *State) getJSON(path string, out interface{}) error {
	resp, err := s.client.Get(s.masterURL(path))
	if err != nil {
		return err
	}
	return s.decodeResponse(resp, out)
}

// postJSON issues a POST against the master with body marshaled as JSON
// and decodes the response into out, which may be nil.
func (s *State) postJSON(path string, body, out interface{}) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	resp, err := s.client.Post(s.masterURL(path), "application/json", r)
	if err != nil {
		return err
	}
	return s.decodeResponse(resp, out)
}

func (s *State) decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, body)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
