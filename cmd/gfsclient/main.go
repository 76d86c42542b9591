// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Gfsclient is a command-line client for the master and chunk servers: it
// resolves paths against the master's namespace API and pushes or pulls
// chunk bytes directly to and from whichever chunk servers the master
// names.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
)

var commands = map[string]func(*State, ...string){
	"mkdir":    (*State).mkdir,
	"ls":       (*State).ls,
	"rmdir":    (*State).rmdir,
	"create":   (*State).create,
	"write":    (*State).write,
	"read":     (*State).read,
	"rm":       (*State).rm,
	"register": (*State).register,
	"login":    (*State).login,
}

func main() {
	masterAddr := flag.String("master_addr", "localhost:8000", "address of the master's HTTP API")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	s := newState(strings.ToLower(flag.Arg(0)), *masterAddr)
	args := flag.Args()[1:]

	fn := commands[s.op]
	if fn == nil {
		fmt.Fprintf(os.Stderr, "gfsclient: no such command %q\n", flag.Arg(0))
		usage()
	}
	fn(s, args...)
	os.Exit(s.exitCode)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage of gfsclient:\n")
	fmt.Fprintf(os.Stderr, "\tgfsclient [-master_addr=host:port] <command> [flags] <args>\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	var names []string
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "\t%s\n", name)
	}
	os.Exit(2)
}
