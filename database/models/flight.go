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

package models

import (
	"github.com/blinklabs-io/surety/database/types"
	lcommon "github.com/blinklabs-io/surety/ledger/common"
)

type Flight struct {
	Airline    string      `gorm:"size:128;uniqueIndex:idx_flight_key"`
	Name       string      `gorm:"size:64;uniqueIndex:idx_flight_key"`
	Insurances []Insurance `gorm:"foreignKey:FlightID"`
	ID         uint        `gorm:"primarykey"`
	Departure  uint64      `gorm:"uniqueIndex:idx_flight_key"`
	StatusCode uint8
	Registered bool
	Finalized  bool `gorm:"index"`
}

func (Flight) TableName() string {
	return "flight"
}

func (f *Flight) Key() lcommon.FlightKey {
	return lcommon.FlightKey{
		Airline:   lcommon.Address(f.Airline),
		Name:      f.Name,
		Departure: f.Departure,
	}
}

// Tickets returns the ticket numbers enrolled for the flight, in enrollment order
func (f *Flight) Tickets() []string {
	ret := make([]string, 0, len(f.Insurances))
	for _, ins := range f.Insurances {
		ret = append(ret, ins.Ticket)
	}
	return ret
}

// Insurance is the per-ticket insurance record. Every enrolled ticket has one,
// starting in the NotSold state.
type Insurance struct {
	Flight        *Flight `gorm:"foreignKey:FlightID"`
	Ticket        string  `gorm:"size:64;uniqueIndex:idx_insurance_key"`
	Buyer         string  `gorm:"size:128;index"`
	ID            uint    `gorm:"primarykey"`
	FlightID      uint    `gorm:"uniqueIndex:idx_insurance_key"`
	PaidValue     types.Uint64
	CreditedValue types.Uint64
	State         uint8
}

func (Insurance) TableName() string {
	return "insurance"
}

func (i *Insurance) InsuranceState() lcommon.InsuranceState {
	return lcommon.InsuranceState(i.State)
}
