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
	"errors"
	"testing"

	"github.com/blinklabs-io/surety/database"
	"github.com/blinklabs-io/surety/ledger"
	"github.com/blinklabs-io/surety/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFlight = common.FlightKey{Airline: airline1, Name: "HR305", Departure: 1554157800}

func ticket(number string) common.InsuranceKey {
	return common.InsuranceKey{FlightKey: testFlight, Ticket: number}
}

func TestRegisterFlight(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)

	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), " HR305 ", 1554157800, []string{"101", " 102", "101"}))
	flight, err := tl.Flight(testFlight)
	require.NoError(t, err)
	assert.True(t, flight.Registered)
	assert.False(t, flight.Finalized)
	assert.Equal(t, []string{"101", "102"}, flight.Tickets)

	keys, err := tl.InsuranceKeysOfFlight(testFlight)
	require.NoError(t, err)
	assert.Equal(t, []common.InsuranceKey{ticket("101"), ticket("102")}, keys)

	insurance, err := tl.Insurance(ticket("101"))
	require.NoError(t, err)
	assert.Equal(t, common.InsuranceNotSold, insurance.State)

	err = tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"103"})
	requireKind(t, err, ledger.KindStateConflict)

	flights, err := tl.FlightsByAirline(airline1)
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "HR305", flights[0].Name)
}

func TestRegisterFlightRejections(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	require.NoError(t, tl.RegisterAirline(ctx, call(airline1, 0), airline2, "Airline Two"))

	testDefs := []struct {
		name      string
		caller    common.Address
		flight    string
		departure uint64
		tickets   []string
		kind      ledger.ErrorKind
	}{
		{name: "unfunded airline", caller: airline2, flight: "X1", departure: 1, tickets: []string{"1"}, kind: ledger.KindGuardViolation},
		{name: "passenger", caller: passenger, flight: "X1", departure: 1, tickets: []string{"1"}, kind: ledger.KindGuardViolation},
		{name: "empty name", caller: airline1, flight: " ", departure: 1, tickets: []string{"1"}, kind: ledger.KindBoundsViolation},
		{name: "zero departure", caller: airline1, flight: "X1", departure: 0, tickets: []string{"1"}, kind: ledger.KindBoundsViolation},
		{name: "no tickets", caller: airline1, flight: "X1", departure: 1, kind: ledger.KindBoundsViolation},
		{name: "blank ticket", caller: airline1, flight: "X1", departure: 1, tickets: []string{"1", ""}, kind: ledger.KindBoundsViolation},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			err := tl.RegisterFlight(ctx, call(testDef.caller, 0), testDef.flight, testDef.departure, testDef.tickets)
			requireKind(t, err, testDef.kind)
		})
	}
	flights, err := tl.FlightsByAirline(airline1)
	require.NoError(t, err)
	assert.Empty(t, flights)
}

func TestAddFlightTickets(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))

	require.NoError(t, tl.AddFlightTickets(ctx, call(airline1, 0), "HR305", 1554157800, []string{"102", "103"}))
	flight, err := tl.Flight(testFlight)
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102", "103"}, flight.Tickets)

	// One duplicate rejects the whole batch
	err = tl.AddFlightTickets(ctx, call(airline1, 0), "HR305", 1554157800, []string{"104", "101"})
	requireKind(t, err, ledger.KindStateConflict)
	_, err = tl.Insurance(ticket("104"))
	requireKind(t, err, ledger.KindNotFound)

	err = tl.AddFlightTickets(ctx, call(airline1, 0), "HR999", 1554157800, []string{"1"})
	requireKind(t, err, ledger.KindNotFound)
}

func TestBuyInsurance(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101", "102"}))

	err := tl.BuyInsurance(ctx, call(passenger, ledger.InsuranceCap+1), ticket("101"))
	requireKind(t, err, ledger.KindBoundsViolation)
	err = tl.BuyInsurance(ctx, call(passenger, 0), ticket("101"))
	requireKind(t, err, ledger.KindBoundsViolation)
	err = tl.BuyInsurance(ctx, call(passenger, common.Unit), ticket("999"))
	requireKind(t, err, ledger.KindNotFound)

	require.NoError(t, tl.BuyInsurance(ctx, call(passenger, common.Unit/2), ticket("101")))
	insurance, err := tl.Insurance(ticket("101"))
	require.NoError(t, err)
	assert.Equal(t, common.InsuranceBought, insurance.State)
	assert.Equal(t, passenger, insurance.Buyer)
	assert.Equal(t, common.Unit/2, insurance.Paid)

	err = tl.BuyInsurance(ctx, call(oracle1, common.Unit), ticket("101"))
	requireKind(t, err, ledger.KindStateConflict)

	keys, err := tl.InsuranceKeysOfPassenger(passenger)
	require.NoError(t, err)
	assert.Equal(t, []common.InsuranceKey{ticket("101")}, keys)

	pool, err := tl.PoolBalance()
	require.NoError(t, err)
	assert.Equal(t, common.Unit/2, pool)
}

// finalize drives the oracle consensus for testFlight to status
func (tl *testLedger) finalize(t *testing.T, status common.StatusCode) {
	t.Helper()
	ctx := context.Background()
	tl.registerOracles(t, 4, oracle1, oracle2, oracle3)
	tl.random.queue(4)
	index, err := tl.FetchFlightStatus(ctx, call(passenger, 0), testFlight)
	require.NoError(t, err)
	key := common.RequestKey{FlightKey: testFlight, Index: index}
	for _, oracle := range []common.Address{oracle1, oracle2, oracle3} {
		require.NoError(t, tl.SubmitOracleResponse(ctx, call(oracle, 0), key, status))
	}
}

func TestFinalizeNotAirlineFault(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))
	require.NoError(t, tl.BuyInsurance(ctx, call(passenger, common.Unit), ticket("101")))
	tl.finalize(t, common.StatusLateWeather)

	insurance, err := tl.Insurance(ticket("101"))
	require.NoError(t, err)
	assert.Equal(t, common.InsuranceExpired, insurance.State)
	assert.Zero(t, insurance.Credited)

	err = tl.WithdrawCredit(ctx, call(passenger, 0), ticket("101"))
	requireKind(t, err, ledger.KindStateConflict)

	// Finalized flights accept no further sales or tickets
	err = tl.AddFlightTickets(ctx, call(airline1, 0), "HR305", 1554157800, []string{"102"})
	requireKind(t, err, ledger.KindStateConflict)
}

func TestPayoutRoundsDown(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))
	require.NoError(t, tl.BuyInsurance(ctx, call(passenger, 3), ticket("101")))
	tl.finalize(t, common.StatusLateAirline)
	insurance, err := tl.Insurance(ticket("101"))
	require.NoError(t, err)
	assert.Equal(t, common.Amount(4), insurance.Credited)
	assert.Equal(t, common.Amount(4), ledger.PayoutFor(3))
}

func TestWithdrawCreditGuards(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))
	require.NoError(t, tl.BuyInsurance(ctx, call(passenger, common.Unit), ticket("101")))

	// Nothing credited before finalization
	err := tl.WithdrawCredit(ctx, call(passenger, 0), ticket("101"))
	requireKind(t, err, ledger.KindStateConflict)

	tl.finalize(t, common.StatusLateAirline)
	err = tl.WithdrawCredit(ctx, call(oracle1, 0), ticket("101"))
	requireKind(t, err, ledger.KindGuardViolation)
	require.NoError(t, tl.WithdrawCredit(ctx, call(passenger, 0), ticket("101")))
}

type failingTransferer struct{}

var errTransferFailed = errors.New("transfer failed")

func (failingTransferer) Transfer(context.Context, ledger.Payout, *database.Txn) error {
	return errTransferFailed
}

func TestWithdrawCreditTransferFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t, func(cfg *ledger.LedgerStateConfig) {
		cfg.Transferer = failingTransferer{}
	})
	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))
	require.NoError(t, tl.BuyInsurance(ctx, call(passenger, common.Unit), ticket("101")))
	tl.finalize(t, common.StatusLateAirline)
	poolBefore, err := tl.PoolBalance()
	require.NoError(t, err)
	drain := collect(t, tl.bus)

	err = tl.WithdrawCredit(ctx, call(passenger, 0), ticket("101"))
	require.ErrorIs(t, err, errTransferFailed)
	_, isLedgerError := ledger.KindOf(err)
	assert.False(t, isLedgerError)

	insurance, err := tl.Insurance(ticket("101"))
	require.NoError(t, err)
	assert.Equal(t, common.Unit+common.Unit/2, insurance.Credited)
	poolAfter, err := tl.PoolBalance()
	require.NoError(t, err)
	assert.Equal(t, poolBefore, poolAfter)
	assert.Empty(t, drain())
	require.NoError(t, tl.db.VerifyJournal())
}
