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

type OracleAccount struct {
	Address string `gorm:"size:128;uniqueIndex"`
	ID      uint   `gorm:"primarykey"`
	Fee     types.Uint64
	Index0  uint8
	Index1  uint8
	Index2  uint8
}

func (OracleAccount) TableName() string {
	return "oracle_account"
}

func (o *OracleAccount) Indexes() [3]uint8 {
	return [3]uint8{o.Index0, o.Index1, o.Index2}
}

func (o *OracleAccount) HasIndex(index uint8) bool {
	return o.Index0 == index || o.Index1 == index || o.Index2 == index
}

type OracleRequest struct {
	Airline    string           `gorm:"size:128;uniqueIndex:idx_oracle_request_key"`
	Flight     string           `gorm:"size:64;uniqueIndex:idx_oracle_request_key"`
	Requester  string           `gorm:"size:128"`
	Responses  []OracleResponse `gorm:"foreignKey:RequestID"`
	ID         uint             `gorm:"primarykey"`
	FlightID   uint             `gorm:"index"`
	Departure  uint64           `gorm:"uniqueIndex:idx_oracle_request_key"`
	ShardIndex uint8            `gorm:"uniqueIndex:idx_oracle_request_key"`
	State      uint8            `gorm:"index"`
}

func (OracleRequest) TableName() string {
	return "oracle_request"
}

func (r *OracleRequest) Key() lcommon.RequestKey {
	return lcommon.RequestKey{
		FlightKey: lcommon.FlightKey{
			Airline:   lcommon.Address(r.Airline),
			Name:      r.Flight,
			Departure: r.Departure,
		},
		Index: r.ShardIndex,
	}
}

func (r *OracleRequest) RequestState() lcommon.RequestState {
	return lcommon.RequestState(r.State)
}

// Tally returns the reporting oracles grouped by status code
func (r *OracleRequest) Tally() map[lcommon.StatusCode][]string {
	ret := make(map[lcommon.StatusCode][]string)
	for _, resp := range r.Responses {
		code := lcommon.StatusCode(resp.StatusCode)
		ret[code] = append(ret[code], resp.Oracle)
	}
	return ret
}

type OracleResponse struct {
	Oracle     string `gorm:"size:128;uniqueIndex:idx_oracle_response"`
	ID         uint   `gorm:"primarykey"`
	RequestID  uint   `gorm:"uniqueIndex:idx_oracle_response"`
	StatusCode uint8
}

func (OracleResponse) TableName() string {
	return "oracle_response"
}
