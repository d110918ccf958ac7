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

package ledger_test

import (
	"context"
	"testing"

	"github.com/blinklabs-io/surety/ledger"
	"github.com/blinklabs-io/surety/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAirlineAdmissionByMediationThenVotes(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)

	mode, err := tl.RegistrationMode()
	require.NoError(t, err)
	assert.Equal(t, common.RegistrationByMediation, mode)

	// Three airlines admitted by the genesis airline and funded
	tl.admitFunded(t, airline2, airline3, airline4)
	mode, err = tl.RegistrationMode()
	require.NoError(t, err)
	assert.Equal(t, common.RegistrationByVotes, mode)

	// A funded airline can no longer register another one
	err = tl.RegisterAirline(ctx, call(airline1, 0), airline5, "Airline Five")
	requireKind(t, err, ledger.KindGuardViolation)

	// The fifth airline registers itself and waits
	require.NoError(t, tl.RegisterAirline(ctx, call(airline5, 0), airline5, "Airline Five"))
	info, err := tl.Airline(airline5)
	require.NoError(t, err)
	assert.Equal(t, common.AirlineWaitingForVotes, info.State)
	assert.Equal(t, uint32(0), info.Votes)

	// One vote of four is not enough
	require.NoError(t, tl.VoteForAirline(ctx, call(airline1, 0), airline5))
	info, err = tl.Airline(airline5)
	require.NoError(t, err)
	assert.Equal(t, common.AirlineWaitingForVotes, info.State)

	// Two votes of four reach half
	require.NoError(t, tl.VoteForAirline(ctx, call(airline2, 0), airline5))
	info, err = tl.Airline(airline5)
	require.NoError(t, err)
	assert.Equal(t, common.AirlineRegistered, info.State)
	assert.Equal(t, uint32(2), info.Votes)
	assert.ElementsMatch(t, []common.Address{airline1, airline2}, info.Voters)

	// Further votes are rejected once registered
	err = tl.VoteForAirline(ctx, call(airline3, 0), airline5)
	requireKind(t, err, ledger.KindStateConflict)

	require.NoError(t, tl.FundMyAirline(ctx, call(airline5, ledger.FundingMinimum)))
	funded, err := tl.IsAirlineFunded(airline5)
	require.NoError(t, err)
	assert.True(t, funded)

	pool, err := tl.PoolBalance()
	require.NoError(t, err)
	assert.Equal(t, common.Units(40), pool)
}

func TestInsurancePayoutOnLateAirline(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	flightKey := common.FlightKey{Airline: airline1, Name: "HR305", Departure: 1554157800}
	insuranceKey := common.InsuranceKey{FlightKey: flightKey, Ticket: "102"}

	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101", "102", "103"}))
	require.NoError(t, tl.BuyInsurance(ctx, call(passenger, common.Units(1)), insuranceKey))

	tl.registerOracles(t, 7, oracle1, oracle2, oracle3)
	tl.random.queue(7)
	index, err := tl.FetchFlightStatus(ctx, call(passenger, 0), flightKey)
	require.NoError(t, err)
	require.Equal(t, uint8(7), index)

	requestKey := common.RequestKey{FlightKey: flightKey, Index: 7}
	for _, oracle := range []common.Address{oracle1, oracle2, oracle3} {
		require.NoError(t, tl.SubmitOracleResponse(ctx, call(oracle, 0), requestKey, common.StatusLateAirline))
	}

	flight, err := tl.Flight(flightKey)
	require.NoError(t, err)
	assert.True(t, flight.Finalized)
	assert.Equal(t, common.StatusLateAirline, flight.Status)

	insurance, err := tl.Insurance(insuranceKey)
	require.NoError(t, err)
	assert.Equal(t, common.InsuranceCredited, insurance.State)
	assert.Equal(t, common.Unit+common.Unit/2, insurance.Credited)

	// Unsold tickets expire
	unsold, err := tl.Insurance(common.InsuranceKey{FlightKey: flightKey, Ticket: "101"})
	require.NoError(t, err)
	assert.Equal(t, common.InsuranceExpired, unsold.State)

	poolBefore, err := tl.PoolBalance()
	require.NoError(t, err)
	require.NoError(t, tl.WithdrawCredit(ctx, call(passenger, 0), insuranceKey))
	payouts, err := tl.Payouts(passenger)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, common.Unit+common.Unit/2, payouts[0].Amount)
	assert.Equal(t, ledger.PayoutReasonWithdrawal, payouts[0].Reason)
	poolAfter, err := tl.PoolBalance()
	require.NoError(t, err)
	assert.Equal(t, poolBefore-(common.Unit+common.Unit/2), poolAfter)

	err = tl.WithdrawCredit(ctx, call(passenger, 0), insuranceKey)
	requireKind(t, err, ledger.KindStateConflict)
	payouts, err = tl.Payouts(passenger)
	require.NoError(t, err)
	assert.Len(t, payouts, 1)

	require.NoError(t, tl.db.VerifyJournal())
}
