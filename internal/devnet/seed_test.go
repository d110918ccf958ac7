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

package devnet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/surety/database"
	"github.com/blinklabs-io/surety/ledger"
	"github.com/blinklabs-io/surety/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevLedger(t *testing.T, plan *Plan) *ledger.LedgerState {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{Store: db, LogicID: "logic-dev"})
	require.NoError(t, err)
	_, err = ls.ApplyGenesis(context.Background(), plan.Genesis("logic-dev"))
	require.NoError(t, err)
	return ls
}

func TestSeedDefaultPlan(t *testing.T) {
	ctx := context.Background()
	plan := DefaultPlan()
	ls := newDevLedger(t, plan)
	require.NoError(t, Seed(ctx, ls, plan, nil))

	mode, err := ls.RegistrationMode()
	require.NoError(t, err)
	assert.Equal(t, common.RegistrationByVotes, mode)
	for _, planAirline := range plan.Airlines {
		address := common.NewAddress(planAirline.Address)
		funded, err := ls.IsAirlineFunded(address)
		require.NoError(t, err)
		assert.True(t, funded, planAirline.Name)
		flight, err := ls.Flight(common.FlightKey{
			Airline:   address,
			Name:      planAirline.Flight.Name,
			Departure: planAirline.Flight.Departure,
		})
		require.NoError(t, err)
		assert.Equal(t, planAirline.Flight.Tickets, flight.Tickets)
	}
	// The genesis airline joins without paying
	pool, err := ls.PoolBalance()
	require.NoError(t, err)
	assert.Equal(t, ledger.FundingMinimum*3, pool)

	// Seeding again changes nothing
	require.NoError(t, Seed(ctx, ls, plan, nil))
	again, err := ls.PoolBalance()
	require.NoError(t, err)
	assert.Equal(t, pool, again)
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
airlines:
  - address: "0xA1"
    name: First Air
    flight:
      name: FA100
      departure: 1700000000
      tickets: ["1", "2"]
  - address: "0xA2"
    name: Second Air
`), 0o600))
	plan, err := LoadPlan(path)
	require.NoError(t, err)
	require.Len(t, plan.Airlines, 2)
	assert.Equal(t, "FA100", plan.Airlines[0].Flight.Name)
	assert.Empty(t, plan.Airlines[1].Flight.Name)

	ls := newDevLedger(t, plan)
	require.NoError(t, Seed(context.Background(), ls, plan, nil))
	flights, err := ls.FlightsByAirline(common.NewAddress("0xa2"))
	require.NoError(t, err)
	assert.Empty(t, flights)
}

func TestPlanValidate(t *testing.T) {
	assert.Error(t, (&Plan{}).Validate())
	plan := DefaultPlan()
	plan.Airlines = append(plan.Airlines, PlanAirline{Address: "0xa9", Name: "Too Many"})
	assert.Error(t, plan.Validate())
	assert.Error(t, (&Plan{Airlines: []PlanAirline{{Name: "No Address"}}}).Validate())
}
