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

// Package common holds the identity, value and status types shared by the
// ledger engines, the database models and the API.
package common

import (
	"fmt"
	"strconv"
	"strings"
)

// Address identifies an account as attested by the host (airline, passenger,
// oracle, owner or logic-layer deployment)
type Address string

// NewAddress normalizes an address string. Hex-style addresses are compared
// case-insensitively.
func NewAddress(s string) Address {
	return Address(strings.ToLower(strings.TrimSpace(s)))
}

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == ""
}

// Amount is a quantity of native currency expressed in base units
type Amount uint64

// Unit is the number of base units in one native-currency unit
const Unit Amount = 1_000_000_000

// Units returns n whole currency units as an Amount
func Units(n uint64) Amount {
	return Amount(n) * Unit
}

// String renders the amount in currency units with trailing zeros trimmed
func (a Amount) String() string {
	whole := uint64(a / Unit)
	frac := uint64(a % Unit)
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return strconv.FormatUint(whole, 10) + "." + fracStr
}

// ParseAmount parses a decimal currency-unit string (e.g. "1.5") into base units
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	wholeStr, fracStr, hasFrac := strings.Cut(s, ".")
	whole, err := strconv.ParseUint(wholeStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	ret := Amount(whole) * Unit
	if ret/Unit != Amount(whole) {
		return 0, fmt.Errorf("amount %q overflows", s)
	}
	if hasFrac {
		if len(fracStr) == 0 || len(fracStr) > 9 {
			return 0, fmt.Errorf("invalid fractional part in amount %q", s)
		}
		fracStr += strings.Repeat("0", 9-len(fracStr))
		frac, err := strconv.ParseUint(fracStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		ret += Amount(frac)
	}
	return ret, nil
}

// StatusCode is the real-world status of a flight as reported by oracles
type StatusCode uint8

const (
	StatusUnknown       StatusCode = 0
	StatusOnTime        StatusCode = 10
	StatusLateAirline   StatusCode = 20
	StatusLateWeather   StatusCode = 30
	StatusLateTechnical StatusCode = 40
	StatusLateOther     StatusCode = 50
)

// Reportable returns true for the status codes an oracle may report
func (s StatusCode) Reportable() bool {
	switch s {
	case StatusOnTime,
		StatusLateAirline,
		StatusLateWeather,
		StatusLateTechnical,
		StatusLateOther:
		return true
	default:
		return false
	}
}

func (s StatusCode) String() string {
	switch s {
	case StatusUnknown:
		return "Unknown"
	case StatusOnTime:
		return "OnTime"
	case StatusLateAirline:
		return "LateAirline"
	case StatusLateWeather:
		return "LateWeather"
	case StatusLateTechnical:
		return "LateTechnical"
	case StatusLateOther:
		return "LateOther"
	default:
		return fmt.Sprintf("StatusCode(%d)", uint8(s))
	}
}

func (s StatusCode) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AirlineState is the membership state of an airline
type AirlineState uint8

const (
	AirlineWaitingForVotes AirlineState = 0
	AirlineRegistered      AirlineState = 1
	AirlineFunded          AirlineState = 2
)

func (s AirlineState) String() string {
	switch s {
	case AirlineWaitingForVotes:
		return "WaitingForVotes"
	case AirlineRegistered:
		return "Registered"
	case AirlineFunded:
		return "Funded"
	default:
		return fmt.Sprintf("AirlineState(%d)", uint8(s))
	}
}

func (s AirlineState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RegistrationMode selects how new airlines are admitted
type RegistrationMode uint8

const (
	RegistrationByMediation RegistrationMode = 0
	RegistrationByVotes     RegistrationMode = 1
)

func (m RegistrationMode) String() string {
	if m == RegistrationByVotes {
		return "ByVotes"
	}
	return "ByMediation"
}

func (m RegistrationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// InsuranceState is the lifecycle state of an insurance record
type InsuranceState uint8

const (
	InsuranceNotSold  InsuranceState = 0
	InsuranceBought   InsuranceState = 1
	InsuranceCredited InsuranceState = 2
	InsuranceExpired  InsuranceState = 3
)

func (s InsuranceState) String() string {
	switch s {
	case InsuranceNotSold:
		return "NotSold"
	case InsuranceBought:
		return "Bought"
	case InsuranceCredited:
		return "Credited"
	case InsuranceExpired:
		return "Expired"
	default:
		return fmt.Sprintf("InsuranceState(%d)", uint8(s))
	}
}

func (s InsuranceState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RequestState is the lifecycle state of an oracle status request
type RequestState uint8

const (
	RequestOpen      RequestState = 0
	RequestFinalized RequestState = 1
	RequestClosed    RequestState = 2
)

func (s RequestState) String() string {
	switch s {
	case RequestOpen:
		return "Open"
	case RequestFinalized:
		return "Finalized"
	case RequestClosed:
		return "Closed"
	default:
		return fmt.Sprintf("RequestState(%d)", uint8(s))
	}
}

func (s RequestState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FlightKey identifies a flight
type FlightKey struct {
	Airline   Address `json:"airline"`
	Name      string  `json:"name"`
	Departure uint64  `json:"departure"`
}

func (k FlightKey) String() string {
	return fmt.Sprintf("%s/%s@%d", k.Airline, k.Name, k.Departure)
}

// InsuranceKey identifies the insurance for one ticket on one flight
type InsuranceKey struct {
	FlightKey
	Ticket string `json:"ticket"`
}

func (k InsuranceKey) String() string {
	return k.FlightKey.String() + "#" + k.Ticket
}

// RequestKey identifies an oracle status request
type RequestKey struct {
	FlightKey
	Index uint8 `json:"index"`
}

func (k RequestKey) String() string {
	return fmt.Sprintf("%d:%s", k.Index, k.FlightKey.String())
}
