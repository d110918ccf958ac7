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

func TestRegisterOracle(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)

	_, err := tl.RegisterOracle(ctx, call(oracle1, ledger.OracleRegistrationFee-1))
	requireKind(t, err, ledger.KindBoundsViolation)

	// Duplicate draws are skipped
	tl.random.queue(5, 5, 2, 5, 9)
	indexes, err := tl.RegisterOracle(ctx, call(oracle1, ledger.OracleRegistrationFee+1))
	require.NoError(t, err)
	assert.Equal(t, []uint8{5, 2, 9}, indexes)

	stored, err := tl.OracleIndexes(oracle1)
	require.NoError(t, err)
	assert.Equal(t, indexes, stored)

	// The whole fee is kept
	pool, err := tl.PoolBalance()
	require.NoError(t, err)
	assert.Equal(t, ledger.OracleRegistrationFee+1, pool)

	_, err = tl.RegisterOracle(ctx, call(oracle1, ledger.OracleRegistrationFee))
	requireKind(t, err, ledger.KindStateConflict)

	_, err = tl.OracleIndexes(oracle2)
	requireKind(t, err, ledger.KindNotFound)
}

func TestRegisterOracleDistinctIndexesWithChainRandom(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t, func(cfg *ledger.LedgerStateConfig) {
		cfg.Random = ledger.NewChainRandom()
	})
	for _, oracle := range []common.Address{oracle1, oracle2, oracle3, oracle4} {
		indexes, err := tl.RegisterOracle(ctx, call(oracle, ledger.OracleRegistrationFee))
		require.NoError(t, err)
		require.Len(t, indexes, ledger.OracleIndexCount)
		seen := map[uint8]bool{}
		for _, idx := range indexes {
			assert.Less(t, idx, ledger.OracleIndexRange)
			assert.False(t, seen[idx], "duplicate index %d", idx)
			seen[idx] = true
		}
	}
}

type constRandom uint8

func (c constRandom) Index(_ []byte, n uint8) uint8 {
	return uint8(c) % n
}

func TestRegisterOracleRandomExhausted(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t, func(cfg *ledger.LedgerStateConfig) {
		cfg.Random = constRandom(4)
	})
	poolBefore, err := tl.PoolBalance()
	require.NoError(t, err)

	_, err = tl.RegisterOracle(ctx, call(oracle1, ledger.OracleRegistrationFee))
	require.Error(t, err)
	_, isLedgerError := ledger.KindOf(err)
	assert.False(t, isLedgerError, "a broken random source is not a caller error")

	_, err = tl.OracleIndexes(oracle1)
	requireKind(t, err, ledger.KindNotFound)
	pool, err := tl.PoolBalance()
	require.NoError(t, err)
	assert.Equal(t, poolBefore, pool)
}

func TestFetchFlightStatus(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	drain := collect(t, tl.bus)

	_, err := tl.FetchFlightStatus(ctx, call(passenger, 0), testFlight)
	requireKind(t, err, ledger.KindNotFound)

	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))
	tl.random.queue(3)
	index, err := tl.FetchFlightStatus(ctx, call(passenger, 0), testFlight)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), index)

	request, err := tl.OracleRequest(common.RequestKey{FlightKey: testFlight, Index: 3})
	require.NoError(t, err)
	assert.Equal(t, common.RequestOpen, request.State)
	assert.Equal(t, passenger, request.Requester)
	assert.Empty(t, request.Tally)

	// Requesting the same index again re-announces the open request
	tl.random.queue(3)
	_, err = tl.FetchFlightStatus(ctx, call(airline1, 0), testFlight)
	require.NoError(t, err)
	request, err = tl.OracleRequest(common.RequestKey{FlightKey: testFlight, Index: 3})
	require.NoError(t, err)
	assert.Equal(t, passenger, request.Requester)

	var announced int
	for _, evt := range drain() {
		if evt.Type != ledger.OracleRequestEventType {
			continue
		}
		announced++
		data, ok := evt.Data.(*ledger.OracleRequestEvent)
		require.True(t, ok)
		assert.Equal(t, uint8(3), data.Request.Index)
		assert.NotZero(t, evt.Seq)
	}
	assert.Equal(t, 2, announced)
}

func TestSubmitOracleResponseRejections(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))
	tl.registerOracles(t, 6, oracle1, oracle2)
	tl.random.queue(6)
	_, err := tl.FetchFlightStatus(ctx, call(passenger, 0), testFlight)
	require.NoError(t, err)
	key := common.RequestKey{FlightKey: testFlight, Index: 6}

	// Unregistered oracle
	err = tl.SubmitOracleResponse(ctx, call(oracle4, 0), key, common.StatusOnTime)
	requireKind(t, err, ledger.KindGuardViolation)

	// Oracle that does not hold the index
	indexes, err := tl.OracleIndexes(oracle1)
	require.NoError(t, err)
	var missing uint8
	for missing = 0; missing < ledger.OracleIndexRange; missing++ {
		if !containsIndex(indexes, missing) {
			break
		}
	}
	err = tl.SubmitOracleResponse(ctx, call(oracle1, 0), common.RequestKey{FlightKey: testFlight, Index: missing}, common.StatusOnTime)
	requireKind(t, err, ledger.KindGuardViolation)

	err = tl.SubmitOracleResponse(ctx, call(oracle1, 0), key, common.StatusCode(15))
	requireKind(t, err, ledger.KindBoundsViolation)
	err = tl.SubmitOracleResponse(ctx, call(oracle1, 0), key, common.StatusUnknown)
	requireKind(t, err, ledger.KindBoundsViolation)

	// Held index but no request for this flight
	other := common.RequestKey{FlightKey: common.FlightKey{Airline: airline1, Name: "HR306", Departure: 1554157800}, Index: 6}
	err = tl.SubmitOracleResponse(ctx, call(oracle1, 0), other, common.StatusOnTime)
	requireKind(t, err, ledger.KindRequestMismatch)

	require.NoError(t, tl.SubmitOracleResponse(ctx, call(oracle1, 0), key, common.StatusOnTime))
	err = tl.SubmitOracleResponse(ctx, call(oracle1, 0), key, common.StatusLateAirline)
	requireKind(t, err, ledger.KindStateConflict)

	request, err := tl.OracleRequest(key)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{oracle1}, request.Tally[common.StatusOnTime])
	assert.Empty(t, request.Tally[common.StatusLateAirline])
}

func TestOracleConsensus(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))
	tl.registerOracles(t, 8, oracle1, oracle2, oracle3, oracle4)
	tl.random.queue(8)
	_, err := tl.FetchFlightStatus(ctx, call(passenger, 0), testFlight)
	require.NoError(t, err)
	// A second request at another index is closed on finalization
	tl.random.queue(0)
	_, err = tl.FetchFlightStatus(ctx, call(passenger, 0), testFlight)
	require.NoError(t, err)
	key := common.RequestKey{FlightKey: testFlight, Index: 8}
	drain := collect(t, tl.bus)

	// Disagreeing reports do not reach quorum
	require.NoError(t, tl.SubmitOracleResponse(ctx, call(oracle1, 0), key, common.StatusOnTime))
	require.NoError(t, tl.SubmitOracleResponse(ctx, call(oracle2, 0), key, common.StatusLateWeather))
	require.NoError(t, tl.SubmitOracleResponse(ctx, call(oracle3, 0), key, common.StatusOnTime))
	flight, err := tl.Flight(testFlight)
	require.NoError(t, err)
	assert.False(t, flight.Finalized)

	require.NoError(t, tl.SubmitOracleResponse(ctx, call(oracle4, 0), key, common.StatusOnTime))
	flight, err = tl.Flight(testFlight)
	require.NoError(t, err)
	assert.True(t, flight.Finalized)
	assert.Equal(t, common.StatusOnTime, flight.Status)

	request, err := tl.OracleRequest(key)
	require.NoError(t, err)
	assert.Equal(t, common.RequestFinalized, request.State)
	sibling, err := tl.OracleRequest(common.RequestKey{FlightKey: testFlight, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, common.RequestClosed, sibling.State)

	seen := eventTypes(drain())
	assert.Equal(t, 1, countType(seen, ledger.FlightFinalizedEventType))
	assert.Equal(t, 4, countType(seen, ledger.OracleReportEventType))

	// Finalized flights cannot be requested again
	_, err = tl.FetchFlightStatus(ctx, call(passenger, 0), testFlight)
	requireKind(t, err, ledger.KindStateConflict)
}

func TestLateReportAfterFinalization(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	require.NoError(t, tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))
	tl.registerOracles(t, 2, oracle1, oracle2, oracle3, oracle4)
	tl.random.queue(2)
	_, err := tl.FetchFlightStatus(ctx, call(passenger, 0), testFlight)
	require.NoError(t, err)
	key := common.RequestKey{FlightKey: testFlight, Index: 2}
	for _, oracle := range []common.Address{oracle1, oracle2, oracle3} {
		require.NoError(t, tl.SubmitOracleResponse(ctx, call(oracle, 0), key, common.StatusLateTechnical))
	}
	drain := collect(t, tl.bus)

	// The fourth matching report is tallied without finalizing again
	require.NoError(t, tl.SubmitOracleResponse(ctx, call(oracle4, 0), key, common.StatusLateTechnical))
	assert.Equal(t, []string{string(ledger.OracleReportEventType)}, typeStrings(eventTypes(drain())))
	request, err := tl.OracleRequest(key)
	require.NoError(t, err)
	assert.Len(t, request.Tally[common.StatusLateTechnical], 4)
	assert.Equal(t, common.RequestFinalized, request.State)
}

func containsIndex(indexes []uint8, index uint8) bool {
	for _, idx := range indexes {
		if idx == index {
			return true
		}
	}
	return false
}
