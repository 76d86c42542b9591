// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

func (s *State) readAll(fileName string) []byte {
	var input *os.File
	var err error
	if fileName == "" {
		input = os.Stdin
	} else {
		input, err = os.Open(fileName)
		if err != nil {
			s.exit(err)
		}
		defer input.Close()
	}
	data, err := io.ReadAll(input)
	if err != nil {
		s.exit(err)
	}
	return data
}

// write pushes the given local input to path, asking the master for a
// fresh placement group and then POSTing the bytes to every replica the
// master names.
func (s *State) write(args ...string) {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	inFile := fs.String("in", "", "input file (default standard input)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		s.exitf("usage: write [-in=file] path")
	}
	path := fs.Arg(0)
	data := s.readAll(*inFile)

	var group []chunkPlacement
	target := fmt.Sprintf("/file/update?path=%s&size=%d", url.QueryEscape(path), len(data))
	if err := s.postJSON(target, nil, &group); err != nil {
		s.exit(err)
	}
	if len(group) == 0 {
		s.exitf("master returned an empty placement group")
	}
	for _, p := range group {
		if err := s.putChunk(p.Server, p.ChunkID, data); err != nil {
			s.exit(fmt.Errorf("writing chunk %s to %s: %w", p.ChunkID, p.Server, err))
		}
	}
}

// read fetches the chunk group of path's first write from the master and pulls
// the chunk bytes from the first replica that answers.
func (s *State) read(args ...string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	outFile := fs.String("out", "", "output file (default standard output)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		s.exitf("usage: read [-out=file] path")
	}
	path := fs.Arg(0)

	var group []chunkPlacement
	if err := s.getJSON("/file/read?path="+url.QueryEscape(path), &group); err != nil {
		s.exit(err)
	}
	if len(group) == 0 {
		s.exitf("file has no chunks")
	}

	var data []byte
	var lastErr error
	for _, p := range group {
		data, lastErr = s.getChunk(p.Server, p.ChunkID)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		s.exit(fmt.Errorf("reading chunk: %w", lastErr))
	}

	var output *os.File
	if *outFile == "" {
		output = os.Stdout
	} else {
		var err error
		output, err = os.Create(*outFile)
		if err != nil {
			s.exit(err)
		}
		defer output.Close()
	}
	if _, err := output.Write(data); err != nil {
		s.exitf("writing output: %v", err)
	}
}

func (s *State) putChunk(server, chunkID string, data []byte) error {
	req, err := http.NewRequest(http.MethodPost, chunkServerURL(server, "/add_chunk", chunkID), bytes.NewReader(data))
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, body)
	}
	return nil
}

func (s *State) getChunk(server, chunkID string) ([]byte, error) {
	resp, err := s.client.Get(chunkServerURL(server, "/get_chunk", chunkID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s: %s", resp.Status, body)
	}
	return io.ReadAll(resp.Body)
}

func chunkServerURL(server, path, chunkID string) string {
	return "http://" + server + path + "?id=" + url.QueryEscape(chunkID)
}
