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
	"github.com/blinklabs-io/surety/event"
	"github.com/blinklabs-io/surety/internal/test/testutil"
	"github.com/blinklabs-io/surety/ledger"
	"github.com/blinklabs-io/surety/ledger/common"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerStateRequiresStoreAndLogicID(t *testing.T) {
	_, err := ledger.NewLedgerState(ledger.LedgerStateConfig{LogicID: testLogicID})
	require.Error(t, err)
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	_, err = ledger.NewLedgerState(ledger.LedgerStateConfig{Store: db})
	require.Error(t, err)
}

func TestOperationsWithoutGenesis(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{Store: db, LogicID: testLogicID})
	require.NoError(t, err)
	err = ls.RegisterAirline(context.Background(), call(airline1, 0), airline2, "Airline Two")
	requireKind(t, err, ledger.KindGuardViolation)
	_, err = ls.Settings()
	requireKind(t, err, ledger.KindNotFound)
}

func TestApplyGenesisIdempotent(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	g := &ledger.Genesis{
		Owner:        owner.String(),
		FirstAirline: ledger.GenesisAirline{Address: airline1.String(), Name: "Airline One"},
	}
	applied, err := tl.ApplyGenesis(ctx, g)
	require.NoError(t, err)
	assert.False(t, applied)

	g.Owner = "0xsomeoneelse"
	_, err = tl.ApplyGenesis(ctx, g)
	requireKind(t, err, ledger.KindStateConflict)

	_, err = tl.ApplyGenesis(ctx, &ledger.Genesis{Owner: owner.String()})
	require.Error(t, err)

	settings, err := tl.Settings()
	require.NoError(t, err)
	assert.Equal(t, owner, settings.Owner)
	assert.True(t, settings.Operational)
	assert.Equal(t, []string{testLogicID}, settings.AuthorizedCallers)
	assert.Zero(t, settings.Pool)
}

func TestParseGenesis(t *testing.T) {
	g, err := ledger.ParseGenesis([]byte(`
owner: "0xOwner"
logicId: logic-v2
firstAirline:
  address: "0xA1"
  name: First Air
`))
	require.NoError(t, err)
	assert.Equal(t, "0xOwner", g.Owner)
	assert.Equal(t, "logic-v2", g.LogicID)
	assert.Equal(t, "First Air", g.FirstAirline.Name)

	_, err = ledger.ParseGenesis([]byte("owner: 0xOwner\n"))
	require.Error(t, err)
	_, err = ledger.ParseGenesis([]byte("owner: [unterminated"))
	require.Error(t, err)
}

func TestToggleOperational(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)

	err := tl.ToggleOperational(ctx, call(airline1, 0))
	requireKind(t, err, ledger.KindGuardViolation)

	require.NoError(t, tl.ToggleOperational(ctx, call(owner, 0)))
	operational, err := tl.IsOperational()
	require.NoError(t, err)
	assert.False(t, operational)

	// Paused ledgers reject mutations and gate changes
	err = tl.RegisterAirline(ctx, call(airline1, 0), airline2, "Airline Two")
	requireKind(t, err, ledger.KindGuardViolation)
	err = tl.Authorize(ctx, call(owner, 0), "logic-v2")
	requireKind(t, err, ledger.KindGuardViolation)

	// Reads keep working while paused
	_, err = tl.Airline(airline1)
	require.NoError(t, err)

	require.NoError(t, tl.ToggleOperational(ctx, call(owner, 0)))
	require.NoError(t, tl.RegisterAirline(ctx, call(airline1, 0), airline2, "Airline Two"))
}

func TestAuthorizationGate(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)

	err := tl.Authorize(ctx, call(airline1, 0), "logic-v2")
	requireKind(t, err, ledger.KindGuardViolation)
	err = tl.Authorize(ctx, call(owner, 0), " ")
	requireKind(t, err, ledger.KindBoundsViolation)
	err = tl.Deauthorize(ctx, call(owner, 0), "logic-unknown")
	requireKind(t, err, ledger.KindNotFound)

	require.NoError(t, tl.Authorize(ctx, call(owner, 0), "logic-v2"))
	authorized, err := tl.IsAuthorized("logic-v2")
	require.NoError(t, err)
	assert.True(t, authorized)

	// Once this deployment is removed it can no longer mutate the ledger
	require.NoError(t, tl.Deauthorize(ctx, call(owner, 0), testLogicID))
	err = tl.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"})
	requireKind(t, err, ledger.KindGuardViolation)

	// A second deployment sharing the store is still authorized
	other, err := ledger.NewLedgerState(ledger.LedgerStateConfig{Store: tl.db, LogicID: "logic-v2"})
	require.NoError(t, err)
	require.NoError(t, other.RegisterFlight(ctx, call(airline1, 0), "HR305", 1554157800, []string{"101"}))

	// Gate changes are still available to the owner
	require.NoError(t, tl.Authorize(ctx, call(owner, 0), testLogicID))
	require.NoError(t, tl.AddFlightTickets(ctx, call(airline1, 0), "HR305", 1554157800, []string{"102"}))
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	tl := newTestLedger(t)
	results := make(chan common.AirlineState, 1)
	tl.bus.SubscribeFunc(ledger.AirlineFundedEventType, func(evt event.Event) {
		data, ok := evt.Data.(*ledger.AirlineFundedEvent)
		if !ok {
			return
		}
		// Committed state is visible to subscribers
		info, err := tl.Airline(data.Airline)
		if err != nil {
			return
		}
		results <- info.State
	})
	tl.admitFunded(t, airline2)
	state := testutil.RequireReceive(t, results, testutil.DefaultTimeout, "funded event")
	assert.Equal(t, common.AirlineFunded, state)
}

func TestRejectedOperationEmitsNothing(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	tipBefore, err := journalTip(tl.db)
	require.NoError(t, err)
	drain := collect(t, tl.bus)

	err = tl.FundMyAirline(ctx, call(airline1, ledger.FundingMinimum))
	requireKind(t, err, ledger.KindStateConflict)
	assert.Empty(t, drain())
	tipAfter, err := journalTip(tl.db)
	require.NoError(t, err)
	assert.Equal(t, tipBefore, tipAfter)
}

func journalTip(db *database.Database) (database.JournalTip, error) {
	txn := db.Transaction(false)
	defer txn.Release()
	return db.JournalTip(txn)
}

func TestJournalRecordsCommittedEvents(t *testing.T) {
	tl := newTestLedger(t)
	tl.admitFunded(t, airline2)

	iter := tl.db.JournalFrom(1)
	defer iter.Close()
	var journaled []string
	for {
		entry, err := iter.Next()
		require.NoError(t, err)
		if entry == nil {
			break
		}
		journaled = append(journaled, entry.Type)
	}
	assert.Equal(
		t,
		[]string{
			string(ledger.GenesisEventType),
			string(ledger.AirlineAdmittedEventType),
			string(ledger.AirlineFundedEventType),
		},
		journaled,
	)
	require.NoError(t, tl.db.VerifyJournal())
}

func TestLedgerMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	tl := newTestLedger(t, func(cfg *ledger.LedgerStateConfig) {
		cfg.PromRegistry = reg
	})
	tl.admitFunded(t, airline2)
	err := tl.FundMyAirline(ctx, call(airline2, ledger.FundingMinimum))
	requireKind(t, err, ledger.KindStateConflict)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.InDelta(t, float64(ledger.FundingMinimum), gaugeValue(families, "surety_ledger_pool_balance"), 0)
	assert.InDelta(t, 2, gaugeValue(families, "surety_ledger_funded_airlines"), 0)
	assert.InDelta(
		t,
		1,
		counterValue(families, "surety_ledger_rejections_total", map[string]string{
			"operation": "fundMyAirline",
			"kind":      "StateConflict",
		}),
		0,
	)
	assert.InDelta(
		t,
		1,
		counterValue(families, "surety_ledger_operations_total", map[string]string{
			"operation": "fundMyAirline",
		}),
		0,
	)
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func gaugeValue(families []*dto.MetricFamily, name string) float64 {
	family := findFamily(families, name)
	if family == nil || len(family.GetMetric()) == 0 {
		return -1
	}
	return family.GetMetric()[0].GetGauge().GetValue()
}

func counterValue(families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	family := findFamily(families, name)
	if family == nil {
		return -1
	}
	for _, metric := range family.GetMetric() {
		matched := 0
		for _, pair := range metric.GetLabel() {
			if labels[pair.GetName()] == pair.GetValue() {
				matched++
			}
		}
		if matched == len(labels) {
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestLedgerErrorMatching(t *testing.T) {
	tl := newTestLedger(t)
	err := tl.FundMyAirline(context.Background(), call(airline1, ledger.FundingMinimum))
	require.ErrorIs(t, err, ledger.ErrStateConflict)
	assert.NotErrorIs(t, err, ledger.ErrGuardViolation)
	var lerr *ledger.LedgerError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "fundMyAirline", lerr.Op)
	assert.Contains(t, err.Error(), "StateConflict")
	_, ok := ledger.KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestChainRandom(t *testing.T) {
	r := ledger.NewChainRandom()
	first := r.Index([]byte("entropy"), ledger.OracleIndexRange)
	assert.Equal(t, first, r.Index([]byte("entropy"), ledger.OracleIndexRange))
	assert.Less(t, first, ledger.OracleIndexRange)
	assert.Equal(t, uint8(0), r.Index([]byte("entropy"), 0))
	seen := map[uint8]bool{}
	for i := range 200 {
		seen[r.Index([]byte{byte(i)}, ledger.OracleIndexRange)] = true
	}
	assert.Len(t, seen, int(ledger.OracleIndexRange))
}
