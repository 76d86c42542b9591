// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package server

import (
	"encoding/json"
	"net/http"

	"gfs.io/gfserrors"
	"gfs.io/log"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error.Printf("server: encoding response: %v", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForKind(gfserrors.KindOf(err))
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusForKind(k gfserrors.Kind) int {
	switch k {
	case gfserrors.NotFound:
		return http.StatusNotFound
	case gfserrors.AlreadyExists:
		return http.StatusConflict
	case gfserrors.Invalid:
		return http.StatusBadRequest
	case gfserrors.Unauthorised:
		return http.StatusUnauthorized
	case gfserrors.Conflict:
		return http.StatusConflict
	case gfserrors.Unavailable:
		return http.StatusServiceUnavailable
	case gfserrors.IOFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
