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

package ledger

import "github.com/blinklabs-io/surety/ledger/common"

const (
	// FundingMinimum is the value an airline pays to become Funded
	FundingMinimum = 10 * common.Unit
	// InsuranceCap is the largest premium accepted for one ticket
	InsuranceCap = common.Unit
	// OracleRegistrationFee is the minimum fee to register an oracle
	OracleRegistrationFee = common.Unit
)

const (
	// MediationThreshold is the Funded airline count at which admission
	// switches from mediation to votes
	MediationThreshold = 4
	// OracleQuorum is the number of matching reports that finalizes a
	// flight status
	OracleQuorum = 3
	// OracleIndexCount is the number of shard indexes held by each oracle
	OracleIndexCount = 3
	// OracleIndexRange bounds shard indexes to [0, OracleIndexRange)
	OracleIndexRange uint8 = 10

	payoutNumerator   = 3
	payoutDenominator = 2
)

// PayoutFor returns the credit owed for a premium when the airline is at
// fault
func PayoutFor(paid common.Amount) common.Amount {
	return paid * payoutNumerator / payoutDenominator
}

// RegistrationModeFor returns the admission mode for the given number of
// Funded airlines
func RegistrationModeFor(fundedCount int64) common.RegistrationMode {
	if fundedCount < MediationThreshold {
		return common.RegistrationByMediation
	}
	return common.RegistrationByVotes
}
