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
	"net/http"
	"testing"

	"github.com/blinklabs-io/surety/ledger"
	"github.com/stretchr/testify/assert"
)

func TestStatusForKind(t *testing.T) {
	testDefs := []struct {
		kind     ledger.ErrorKind
		expected int
	}{
		{kind: ledger.KindGuardViolation, expected: http.StatusForbidden},
		{kind: ledger.KindStateConflict, expected: http.StatusConflict},
		{kind: ledger.KindBoundsViolation, expected: http.StatusBadRequest},
		{kind: ledger.KindRequestMismatch, expected: http.StatusUnprocessableEntity},
		{kind: ledger.KindNotFound, expected: http.StatusNotFound},
		{kind: ledger.ErrorKind(99), expected: http.StatusInternalServerError},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, statusForKind(testDef.kind), testDef.kind.String())
	}
}
