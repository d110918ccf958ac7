// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blinklabs-io/surety/ledger"
)

type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message"`
}

// errBadRequest marks request decoding failures
var errBadRequest = errors.New("bad request")

// statusForKind maps a ledger rejection to an HTTP status code
func statusForKind(kind ledger.ErrorKind) int {
	switch kind {
	case ledger.KindGuardViolation:
		return http.StatusForbidden
	case ledger.KindStateConflict:
		return http.StatusConflict
	case ledger.KindBoundsViolation:
		return http.StatusBadRequest
	case ledger.KindRequestMismatch:
		return http.StatusUnprocessableEntity
	case ledger.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind string, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Kind:       kind,
		Message:    message,
	})
}

// writeLedgerError reports err to the client. Ledger rejections keep their
// message; anything else is logged and hidden behind a 500.
func (a *Api) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadRequest) {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if kind, ok := ledger.KindOf(err); ok {
		writeError(w, statusForKind(kind), kind.String(), err.Error())
		return
	}
	a.logger.Error(
		"request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "", "internal error")
}
