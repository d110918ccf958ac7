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

type Airline struct {
	Address     string `gorm:"size:128;uniqueIndex"`
	Name        string `gorm:"size:255"`
	ID          uint   `gorm:"primarykey"`
	FundedValue types.Uint64
	Votes       uint32
	State       uint8 `gorm:"index"`
}

func (Airline) TableName() string {
	return "airline"
}

func (a *Airline) AirlineState() lcommon.AirlineState {
	return lcommon.AirlineState(a.State)
}

func (a *Airline) IsFunded() bool {
	return a.AirlineState() == lcommon.AirlineFunded
}

// AirlineVote records a Funded airline's vote for a pending candidate
type AirlineVote struct {
	Voter     string `gorm:"size:128;uniqueIndex:idx_airline_vote"`
	ID        uint   `gorm:"primarykey"`
	AirlineID uint   `gorm:"uniqueIndex:idx_airline_vote"`
}

func (AirlineVote) TableName() string {
	return "airline_vote"
}
