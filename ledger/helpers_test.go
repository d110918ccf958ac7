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
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/surety/database"
	"github.com/blinklabs-io/surety/event"
	"github.com/blinklabs-io/surety/ledger"
	"github.com/blinklabs-io/surety/ledger/common"
	"github.com/stretchr/testify/require"
)

const testLogicID = "logic-v1"

var (
	owner     = common.NewAddress("0xOWNER")
	airline1  = common.NewAddress("0xa1")
	airline2  = common.NewAddress("0xa2")
	airline3  = common.NewAddress("0xa3")
	airline4  = common.NewAddress("0xa4")
	airline5  = common.NewAddress("0xa5")
	airline6  = common.NewAddress("0xa6")
	passenger = common.NewAddress("0xp1")
	oracle1   = common.NewAddress("0xo1")
	oracle2   = common.NewAddress("0xo2")
	oracle3   = common.NewAddress("0xo3")
	oracle4   = common.NewAddress("0xo4")
)

// seqRandom returns queued values first, then counts upward
type seqRandom struct {
	values []uint8
	mu     sync.Mutex
	next   uint8
}

func (s *seqRandom) Index(_ []byte, n uint8) uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) > 0 {
		ret := s.values[0]
		s.values = s.values[1:]
		return ret % n
	}
	ret := s.next % n
	s.next++
	return ret
}

func (s *seqRandom) queue(values ...uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, values...)
}

type testLedger struct {
	*ledger.LedgerState
	db     *database.Database
	bus    *event.EventBus
	random *seqRandom
}

func newTestLedger(t *testing.T, opts ...func(*ledger.LedgerStateConfig)) *testLedger {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(func() {
		bus.Stop()
		db.Close() //nolint:errcheck
	})
	random := &seqRandom{}
	cfg := ledger.LedgerStateConfig{
		Store:    db,
		EventBus: bus,
		Random:   random,
		LogicID:  testLogicID,
		Now: func() time.Time {
			return time.Unix(1554157800, 0)
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	ls, err := ledger.NewLedgerState(cfg)
	require.NoError(t, err)
	applied, err := ls.ApplyGenesis(context.Background(), &ledger.Genesis{
		Owner:   owner.String(),
		LogicID: testLogicID,
		FirstAirline: ledger.GenesisAirline{
			Address: airline1.String(),
			Name:    "Airline One",
		},
	})
	require.NoError(t, err)
	require.True(t, applied)
	return &testLedger{
		LedgerState: ls,
		db:          db,
		bus:         bus,
		random:      random,
	}
}

func call(caller common.Address, value common.Amount) ledger.Call {
	return ledger.Call{Caller: caller, Value: value}
}

// admitFunded registers the airlines through airline1 and funds them
func (tl *testLedger) admitFunded(t *testing.T, airlines ...common.Address) {
	t.Helper()
	ctx := context.Background()
	for _, airline := range airlines {
		require.NoError(t, tl.RegisterAirline(ctx, call(airline1, 0), airline, "Airline "+airline.String()))
		require.NoError(t, tl.FundMyAirline(ctx, call(airline, ledger.FundingMinimum)))
	}
}

// registerOracles registers oracles that all hold index, queueing the draws
// so that each also gets two other distinct indexes
func (tl *testLedger) registerOracles(t *testing.T, index uint8, oracles ...common.Address) {
	t.Helper()
	for i, oracle := range oracles {
		other := uint8(i*2+1) % ledger.OracleIndexRange
		if other == index {
			other = (other + 2) % ledger.OracleIndexRange
		}
		third := (other + 1) % ledger.OracleIndexRange
		if third == index {
			third = (third + 1) % ledger.OracleIndexRange
		}
		tl.random.queue(index, other, third)
		indexes, err := tl.RegisterOracle(context.Background(), call(oracle, ledger.OracleRegistrationFee))
		require.NoError(t, err)
		require.Contains(t, indexes, index)
	}
}

func requireKind(t *testing.T, err error, kind ledger.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	got, ok := ledger.KindOf(err)
	require.True(t, ok, "expected a ledger error, got %v", err)
	require.Equal(t, kind, got, "unexpected kind for %v", err)
}

// collect subscribes to every event and returns a function that drains
// what has been delivered so far
func collect(t *testing.T, bus *event.EventBus) func() []event.Event {
	t.Helper()
	_, ch := bus.Subscribe(event.AllEvents)
	return func() []event.Event {
		var ret []event.Event
		for {
			select {
			case evt := <-ch:
				ret = append(ret, evt)
			default:
				return ret
			}
		}
	}
}

func eventTypes(events []event.Event) []event.EventType {
	ret := make([]event.EventType, 0, len(events))
	for _, evt := range events {
		ret = append(ret, evt.Type)
	}
	return ret
}

func countType(types []event.EventType, eventType event.EventType) int {
	var ret int
	for _, t := range types {
		if t == eventType {
			ret++
		}
	}
	return ret
}

func typeStrings(types []event.EventType) []string {
	ret := make([]string, 0, len(types))
	for _, t := range types {
		ret = append(ret, string(t))
	}
	return ret
}
