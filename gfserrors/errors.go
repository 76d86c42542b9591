// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gfserrors defines the error handling used across the master and
// chunk server: a single Error type carrying an operation name, a Kind, and
// the underlying cause, so callers can translate failures to HTTP status
// codes without string-matching error text.
package gfserrors

import (
	"bytes"
	"fmt"
)

// Error is the type that implements the error interface.
// It contains a number of fields, each of different type.
// An Error value may leave some values unset.
type Error struct {
	// Path is the namespace path of the item being accessed, if any.
	Path string
	// Op is the operation being performed, usually the name of the method
	// being invoked (Create, Write, ...). It should not contain an @.
	Op string
	// Kind is the class of error, such as NotFound, or Other if unknown.
	Kind Kind
	// The underlying error that triggered this one, if any.
	Err error
}

var zeroErr Error

// Separator is the string used to separate nested errors.
var Separator = ":\n\t"

// Kind defines the class of error this is, used by the HTTP frontend to
// choose a status code.
type Kind uint8

// Kinds of errors.
const (
	Other          Kind = iota // Unclassified error.
	Invalid                    // Malformed input.
	NotFound                   // Item does not exist.
	AlreadyExists              // Item already exists.
	Unauthorised               // Credentials did not check out.
	Conflict                   // Lock acquisition or concurrent-mutation failure.
	Unavailable                // Not enough resources to satisfy the request.
	IOFailure                  // Disk or transport error.
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other error"
	case Invalid:
		return "invalid input"
	case NotFound:
		return "not found"
	case AlreadyExists:
		return "already exists"
	case Unauthorised:
		return "unauthorised"
	case Conflict:
		return "conflict"
	case Unavailable:
		return "unavailable"
	case IOFailure:
		return "I/O failure"
	}
	return "unknown error kind"
}

// E builds an error value from its arguments. The type of each argument
// determines its meaning:
//
//	string
//		The Op; a path must be passed as Path(s).
//	gfserrors.Kind
//		The class of error.
//	error
//		The underlying error that triggered this one.
//
// The wrappers Op(s) and Path(s) say explicitly which field a string
// argument sets.
func E(args ...interface{}) error {
	if len(args) == 0 {
		return nil
	}
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case opTag:
			e.Op = string(a)
		case pathTag:
			e.Path = string(a)
		case string:
			e.Op = a
		case Kind:
			e.Kind = a
		case *Error:
			cp := *a
			e.Err = &cp
		case error:
			e.Err = a
		default:
			return Errorf("gfserrors.E: bad call: unknown type %T, value %v", arg, arg)
		}
	}
	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}
	// The previous error was also one of ours. Suppress duplication so the
	// message won't repeat the same kind or path twice.
	if prev.Path == e.Path {
		prev.Path = ""
	}
	if prev.Kind == e.Kind {
		prev.Kind = Other
	}
	if e.Kind == Other {
		e.Kind = prev.Kind
		prev.Kind = Other
	}
	return e
}

// opTag and pathTag let callers disambiguate which string argument to E
// means what, via the Op and Path helpers below.
type opTag string
type pathTag string

// Op wraps a string so E records it as the operation name.
func Op(s string) interface{} { return opTag(s) }

// Path wraps a string so E records it as the namespace path.
func Path(s string) interface{} { return pathTag(s) }

func pad(b *bytes.Buffer, str string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(str)
}

func (e *Error) Error() string {
	b := new(bytes.Buffer)
	if e.Path != "" {
		b.WriteString(e.Path)
	}
	if e.Op != "" {
		pad(b, ": ")
		b.WriteString(e.Op)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		if prevErr, ok := e.Err.(*Error); ok {
			if *prevErr != zeroErr {
				pad(b, Separator)
				b.WriteString(e.Err.Error())
			}
		} else {
			pad(b, ": ")
			b.WriteString(e.Err.Error())
		}
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

// KindOf reports the Kind of err, walking wrapped *Error values to find the
// first one with a non-Other kind. It returns Other for a nil or unknown err.
func KindOf(err error) Kind {
	e, ok := err.(*Error)
	if !ok {
		return Other
	}
	if e.Kind != Other {
		return e.Kind
	}
	return KindOf(e.Err)
}

// Match reports whether err2, after stripping the dynamic fields that E
// fills in automatically, is consistent with err1. It is used in tests to
// check that an error has (at least) the expected Kind without requiring an
// exact string match.
func Match(err1, err2 error) bool {
	e1, ok := err1.(*Error)
	if !ok {
		return err1.Error() == err2.Error()
	}
	e2, ok := err2.(*Error)
	if !ok {
		return false
	}
	if e1.Path != "" && e1.Path != e2.Path {
		return false
	}
	if e1.Op != "" && e1.Op != e2.Op {
		return false
	}
	if e1.Kind != Other && e1.Kind != e2.Kind {
		return false
	}
	if e1.Err != nil {
		if e2.Err == nil {
			return false
		}
		return Match(e1.Err, e2.Err)
	}
	return true
}

// Str returns an error that formats as the given text. It is intended to be
// used as the error-typed argument to the E function.
func Str(text string) error {
	return &errorString{text}
}

type errorString struct {
	s string
}

func (e *errorString) Error() string {
	return e.s
}

// Errorf is equivalent to fmt.Errorf, but returns an error usable as the
// error-typed argument to E.
func Errorf(format string, args ...interface{}) error {
	return &errorString{fmt.Sprintf(format, args...)}
}

// IsKind reports whether err's Kind (or a wrapped error's Kind) equals k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
