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

import (
	"context"
	"strings"

	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/database/types"
	"github.com/blinklabs-io/surety/ledger/common"
)

// RegisterFlight registers a flight of the caller airline along with its
// ticket numbers. Each ticket starts with an unsold insurance.
func (ls *LedgerState) RegisterFlight(
	ctx context.Context,
	call Call,
	name string,
	departure uint64,
	tickets []string,
) error {
	return ls.execute(ctx, "registerFlight", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		if _, err := o.requireFundedCaller(); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return o.errorf(KindBoundsViolation, "empty flight name")
		}
		if departure == 0 {
			return o.errorf(KindBoundsViolation, "zero departure time")
		}
		tickets, err := o.normalizeTickets(tickets)
		if err != nil {
			return err
		}
		existing, err := ls.db.GetFlight(call.Caller.String(), name, departure, o.txn)
		if err != nil {
			return err
		}
		if existing != nil {
			return o.errorf(KindStateConflict, "flight %s already registered", existing.Key())
		}
		flight := &models.Flight{
			Airline:    call.Caller.String(),
			Name:       name,
			Departure:  departure,
			Registered: true,
		}
		if err := ls.db.SetFlight(flight, o.txn); err != nil {
			return err
		}
		if err := ls.db.AddInsurances(placeholders(flight.ID, tickets), o.txn); err != nil {
			return err
		}
		return o.emit(FlightRegisteredEventType, &FlightRegisteredEvent{
			Flight:  flight.Key(),
			Tickets: tickets,
		})
	})
}

// AddFlightTickets adds ticket numbers to a registered flight of the
// caller. Either every ticket is added or none is.
func (ls *LedgerState) AddFlightTickets(
	ctx context.Context,
	call Call,
	name string,
	departure uint64,
	tickets []string,
) error {
	return ls.execute(ctx, "addFlightTickets", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		tickets, err := o.normalizeTickets(tickets)
		if err != nil {
			return err
		}
		flight, err := ls.db.GetFlight(call.Caller.String(), strings.TrimSpace(name), departure, o.txn)
		if err != nil {
			return err
		}
		if flight == nil {
			return o.errorf(
				KindNotFound,
				"flight %s is not registered",
				common.FlightKey{Airline: call.Caller, Name: name, Departure: departure},
			)
		}
		if flight.Finalized {
			return o.errorf(KindStateConflict, "flight %s is finalized", flight.Key())
		}
		existing := make(map[string]struct{}, len(flight.Insurances))
		for _, ticket := range flight.Tickets() {
			existing[ticket] = struct{}{}
		}
		for _, ticket := range tickets {
			if _, ok := existing[ticket]; ok {
				return o.errorf(
					KindStateConflict,
					"ticket %s already exists on flight %s",
					ticket,
					flight.Key(),
				)
			}
		}
		if err := ls.db.AddInsurances(placeholders(flight.ID, tickets), o.txn); err != nil {
			return err
		}
		return o.emit(FlightTicketsEventType, &FlightRegisteredEvent{
			Flight:  flight.Key(),
			Tickets: tickets,
		})
	})
}

// normalizeTickets trims and deduplicates ticket numbers, keeping their order
func (o *opContext) normalizeTickets(tickets []string) ([]string, error) {
	seen := make(map[string]struct{}, len(tickets))
	ret := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		ticket = strings.TrimSpace(ticket)
		if ticket == "" {
			return nil, o.errorf(KindBoundsViolation, "empty ticket number")
		}
		if _, ok := seen[ticket]; ok {
			continue
		}
		seen[ticket] = struct{}{}
		ret = append(ret, ticket)
	}
	if len(ret) == 0 {
		return nil, o.errorf(KindBoundsViolation, "no ticket numbers")
	}
	return ret, nil
}

func placeholders(flightID uint, tickets []string) []models.Insurance {
	ret := make([]models.Insurance, 0, len(tickets))
	for _, ticket := range tickets {
		ret = append(ret, models.Insurance{
			FlightID: flightID,
			Ticket:   ticket,
			State:    uint8(common.InsuranceNotSold),
		})
	}
	return ret
}

// finalizeFlight records the consensus status and settles every insurance of
// the flight. It runs once per flight.
func (o *opContext) finalizeFlight(
	flight *models.Flight,
	status common.StatusCode,
) error {
	if flight.Finalized {
		return o.errorf(KindStateConflict, "flight %s is already finalized", flight.Key())
	}
	flight.StatusCode = uint8(status)
	flight.Finalized = true
	if err := o.ls.db.SetFlight(flight, o.txn); err != nil {
		return err
	}
	evt := &FlightFinalizedEvent{
		Flight: flight.Key(),
		Status: status,
	}
	for i := range flight.Insurances {
		insurance := &flight.Insurances[i]
		switch insurance.InsuranceState() {
		case common.InsuranceBought:
			if status == common.StatusLateAirline {
				credit := PayoutFor(common.Amount(insurance.PaidValue))
				insurance.State = uint8(common.InsuranceCredited)
				insurance.CreditedValue = types.Uint64(credit)
				evt.Credited++
				evt.TotalCredited += credit
			} else {
				insurance.State = uint8(common.InsuranceExpired)
				insurance.CreditedValue = 0
				evt.Expired++
			}
		case common.InsuranceNotSold:
			insurance.State = uint8(common.InsuranceExpired)
			evt.Expired++
		default:
			continue
		}
		if err := o.ls.db.SetInsurance(insurance, o.txn); err != nil {
			return err
		}
	}
	o.ls.metrics.finalizedFlights.Inc()
	return o.emit(FlightFinalizedEventType, evt)
}
