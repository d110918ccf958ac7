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

// Package devnet provisions a development ledger: a genesis owned by a dev
// account and a seed plan of funded airlines with flights and tickets.
package devnet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/surety/ledger"
	"github.com/blinklabs-io/surety/ledger/common"
	"gopkg.in/yaml.v3"
)

const (
	DevOwner = "0xdev-owner"
	// DevDeparture is 2019-04-01 22:30 UTC
	DevDeparture uint64 = 1554157800
)

type Plan struct {
	Airlines []PlanAirline `yaml:"airlines"`
}

type PlanAirline struct {
	Address string     `yaml:"address"`
	Name    string     `yaml:"name"`
	Flight  PlanFlight `yaml:"flight"`
}

type PlanFlight struct {
	Name      string   `yaml:"name"`
	Departure uint64   `yaml:"departure"`
	Tickets   []string `yaml:"tickets"`
}

// DefaultPlan returns four airlines, each with one flight and two tickets
func DefaultPlan() *Plan {
	flights := []string{"HR305", "JR430", "MH666", "NN199"}
	tickets := [][]string{{"321", "324"}, {"433", "567"}, {"132", "544"}, {"635", "343"}}
	ret := &Plan{}
	for i := range flights {
		ret.Airlines = append(ret.Airlines, PlanAirline{
			Address: fmt.Sprintf("0xdev-airline-%d", i),
			Name:    fmt.Sprintf("Airline%d", i),
			Flight: PlanFlight{
				Name:      flights[i],
				Departure: DevDeparture,
				Tickets:   tickets[i],
			},
		})
	}
	return ret
}

// LoadPlan reads a seed plan from a YAML file
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadPlan: reading %s: %w", path, err)
	}
	plan := &Plan{}
	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("LoadPlan: parsing %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Plan) Validate() error {
	if len(p.Airlines) == 0 {
		return errors.New("seed plan has no airlines")
	}
	if len(p.Airlines) > ledger.MediationThreshold {
		return fmt.Errorf(
			"seed plan has %d airlines, at most %d can be admitted by mediation",
			len(p.Airlines),
			ledger.MediationThreshold,
		)
	}
	for _, airline := range p.Airlines {
		if airline.Address == "" || airline.Name == "" {
			return errors.New("seed plan airline needs an address and a name")
		}
	}
	return nil
}

// Genesis returns a dev genesis whose first airline is the plan's first
// airline, so it can mediate the others
func (p *Plan) Genesis(logicID string) *ledger.Genesis {
	return &ledger.Genesis{
		Owner:   DevOwner,
		LogicID: logicID,
		FirstAirline: ledger.GenesisAirline{
			Address: p.Airlines[0].Address,
			Name:    p.Airlines[0].Name,
		},
	}
}

// Seed applies the plan. Steps already reflected in the ledger are skipped,
// so seeding a restarted dev ledger is a no-op.
func Seed(ctx context.Context, ls *ledger.LedgerState, plan *Plan, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With("component", "devnet")
	if err := plan.Validate(); err != nil {
		return err
	}
	mediator := common.NewAddress(plan.Airlines[0].Address)
	for _, planAirline := range plan.Airlines {
		address := common.NewAddress(planAirline.Address)
		if err := seedAirline(ctx, ls, mediator, address, planAirline.Name); err != nil {
			return err
		}
		if err := seedFlight(ctx, ls, address, planAirline.Flight); err != nil {
			return err
		}
		logger.Info(
			fmt.Sprintf(
				"airline %s funded with flight %s",
				planAirline.Name,
				planAirline.Flight.Name,
			),
			"address", address.String(),
			"tickets", fmt.Sprint(planAirline.Flight.Tickets),
		)
	}
	return nil
}

func seedAirline(
	ctx context.Context,
	ls *ledger.LedgerState,
	mediator common.Address,
	address common.Address,
	name string,
) error {
	_, err := ls.Airline(address)
	if errors.Is(err, ledger.ErrNotFound) {
		err = ls.RegisterAirline(ctx, ledger.Call{Caller: mediator}, address, name)
	}
	if err != nil {
		return fmt.Errorf("seed airline %s: %w", name, err)
	}
	funded, err := ls.IsAirlineFunded(address)
	if err != nil {
		return err
	}
	if funded {
		return nil
	}
	if err := ls.FundMyAirline(
		ctx,
		ledger.Call{Caller: address, Value: ledger.FundingMinimum},
	); err != nil {
		return fmt.Errorf("fund airline %s: %w", name, err)
	}
	return nil
}

func seedFlight(
	ctx context.Context,
	ls *ledger.LedgerState,
	airline common.Address,
	flight PlanFlight,
) error {
	if flight.Name == "" {
		return nil
	}
	_, err := ls.Flight(common.FlightKey{
		Airline:   airline,
		Name:      flight.Name,
		Departure: flight.Departure,
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, ledger.ErrNotFound) {
		return err
	}
	if err := ls.RegisterFlight(
		ctx,
		ledger.Call{Caller: airline},
		flight.Name,
		flight.Departure,
		flight.Tickets,
	); err != nil {
		return fmt.Errorf("seed flight %s: %w", flight.Name, err)
	}
	return nil
}
