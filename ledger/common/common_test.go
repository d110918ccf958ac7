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

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountString(t *testing.T) {
	testDefs := []struct {
		amount   Amount
		expected string
	}{
		{amount: 0, expected: "0"},
		{amount: Units(10), expected: "10"},
		{amount: Unit + Unit/2, expected: "1.5"},
		{amount: 1, expected: "0.000000001"},
		{amount: Units(3) + 250_000_000, expected: "3.25"},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, testDef.amount.String())
	}
}

func TestParseAmount(t *testing.T) {
	testDefs := []struct {
		input    string
		expected Amount
		wantErr  bool
	}{
		{input: "10", expected: Units(10)},
		{input: "1.5", expected: Unit + Unit/2},
		{input: "0.000000001", expected: 1},
		{input: " 9.9 ", expected: Units(9) + 900_000_000},
		{input: "", wantErr: true},
		{input: "1.", wantErr: true},
		{input: "1.0000000001", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "abc", wantErr: true},
	}
	for _, testDef := range testDefs {
		amount, err := ParseAmount(testDef.input)
		if testDef.wantErr {
			assert.Error(t, err, "input %q", testDef.input)
			continue
		}
		require.NoError(t, err, "input %q", testDef.input)
		assert.Equal(t, testDef.expected, amount, "input %q", testDef.input)
	}
}

func TestStatusCodeReportable(t *testing.T) {
	assert.False(t, StatusUnknown.Reportable())
	assert.True(t, StatusOnTime.Reportable())
	assert.True(t, StatusLateAirline.Reportable())
	assert.True(t, StatusLateOther.Reportable())
	assert.False(t, StatusCode(15).Reportable())
	assert.Equal(t, "LateAirline", StatusLateAirline.String())
}

func TestNewAddress(t *testing.T) {
	assert.Equal(t, Address("0xabcdef"), NewAddress(" 0xABCdef "))
	assert.True(t, NewAddress("  ").IsZero())
}

func TestKeyStrings(t *testing.T) {
	fk := FlightKey{Airline: "0xaa", Name: "HR305", Departure: 1554157800}
	assert.Equal(t, "0xaa/HR305@1554157800", fk.String())
	ik := InsuranceKey{FlightKey: fk, Ticket: "102"}
	assert.Equal(t, "0xaa/HR305@1554157800#102", ik.String())
	rk := RequestKey{FlightKey: fk, Index: 7}
	assert.Equal(t, "7:0xaa/HR305@1554157800", rk.String())
}
