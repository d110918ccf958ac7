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
	"context"
	"fmt"
	"net/http"

	"github.com/blinklabs-io/surety/ledger"
	"github.com/blinklabs-io/surety/ledger/common"
)

const (
	// HeaderCaller carries the caller address attested by the host
	HeaderCaller = "X-Caller"
	// HeaderValue carries the attached value in currency units, e.g. "1.5"
	HeaderValue = "X-Value"
)

type callerKey struct{}

// callerContext parses the caller headers into a ledger.Call
func callerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := ledger.Call{
			Caller: common.NewAddress(r.Header.Get(HeaderCaller)),
		}
		if raw := r.Header.Get(HeaderValue); raw != "" {
			value, err := common.ParseAmount(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "", fmt.Sprintf("invalid %s header: %s", HeaderValue, err))
				return
			}
			call.Value = value
		}
		ctx := context.WithValue(r.Context(), callerKey{}, call)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callFrom(ctx context.Context) ledger.Call {
	call, _ := ctx.Value(callerKey{}).(ledger.Call)
	return call
}

// requireCaller returns the call for a mutating request, rejecting requests
// that do not identify a caller
func requireCaller(w http.ResponseWriter, r *http.Request) (ledger.Call, bool) {
	call := callFrom(r.Context())
	if call.Caller.IsZero() {
		writeError(w, http.StatusUnauthorized, "", "missing "+HeaderCaller+" header")
		return call, false
	}
	return call, true
}
