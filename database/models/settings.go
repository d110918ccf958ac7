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

import "github.com/blinklabs-io/surety/database/types"

// LedgerSettingsID is the primary key of the singleton settings row
const LedgerSettingsID = 1

// LedgerSettings holds the ledger-wide singleton values
type LedgerSettings struct {
	Owner       string `gorm:"size:128"`
	ID          uint   `gorm:"primarykey"`
	Pool        types.Uint64
	Nonce       uint64
	Operational bool
}

func (LedgerSettings) TableName() string {
	return "ledger_settings"
}

// AuthorizedCaller is a logic-layer identity permitted to mutate the ledger
type AuthorizedCaller struct {
	LogicID string `gorm:"size:128;uniqueIndex"`
	ID      uint   `gorm:"primarykey"`
}

func (AuthorizedCaller) TableName() string {
	return "authorized_caller"
}

// Payout records a native-value transfer made by the ledger
type Payout struct {
	Recipient string `gorm:"size:128;index"`
	Reason    string `gorm:"size:32"`
	Reference string `gorm:"size:255"`
	ID        uint   `gorm:"primarykey"`
	Amount    types.Uint64
}

func (Payout) TableName() string {
	return "payout"
}
