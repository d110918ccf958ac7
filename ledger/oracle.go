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
	"fmt"
	"strings"

	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/database/types"
	"github.com/blinklabs-io/surety/ledger/common"
)

// maxIndexDraws bounds the draws spent finding distinct oracle indexes
const maxIndexDraws = 64

// RegisterOracle registers the caller as an oracle and assigns it
// OracleIndexCount distinct shard indexes. The attached value is the
// registration fee and is kept in full.
func (ls *LedgerState) RegisterOracle(ctx context.Context, call Call) ([]uint8, error) {
	var indexes []uint8
	err := ls.execute(ctx, "registerOracle", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		if call.Value < OracleRegistrationFee {
			return o.errorf(
				KindBoundsViolation,
				"registration fee %s is below %s",
				call.Value,
				OracleRegistrationFee,
			)
		}
		existing, err := ls.db.GetOracleAccount(call.Caller.String(), o.txn)
		if err != nil {
			return err
		}
		if existing != nil {
			return o.errorf(KindStateConflict, "oracle %s is already registered", call.Caller)
		}
		drawn, err := o.drawDistinctIndexes(OracleIndexCount)
		if err != nil {
			return err
		}
		account := &models.OracleAccount{
			Address: call.Caller.String(),
			Fee:     types.Uint64(call.Value),
			Index0:  drawn[0],
			Index1:  drawn[1],
			Index2:  drawn[2],
		}
		if err := ls.db.SetOracleAccount(account, o.txn); err != nil {
			return err
		}
		if err := o.creditPool(call.Value); err != nil {
			return err
		}
		indexes = drawn
		evtIndexes := make([]int, 0, len(drawn))
		for _, idx := range drawn {
			evtIndexes = append(evtIndexes, int(idx))
		}
		return o.emit(OracleRegisteredEventType, &OracleRegisteredEvent{
			Oracle:  call.Caller,
			Indexes: evtIndexes,
			Fee:     call.Value,
		})
	})
	if err != nil {
		return nil, err
	}
	return indexes, nil
}

func (o *opContext) drawDistinctIndexes(count int) ([]uint8, error) {
	ret := make([]uint8, 0, count)
	for range maxIndexDraws {
		idx, err := o.drawIndex()
		if err != nil {
			return nil, err
		}
		duplicate := false
		for _, existing := range ret {
			if existing == idx {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		ret = append(ret, idx)
		if len(ret) == count {
			return ret, nil
		}
	}
	return nil, fmt.Errorf(
		"random source produced fewer than %d distinct indexes in %d draws",
		count,
		maxIndexDraws,
	)
}

// FetchFlightStatus opens a status request for the flight at a random shard
// index and announces it to the oracles holding that index. Requesting again
// re-announces an existing open request.
func (ls *LedgerState) FetchFlightStatus(
	ctx context.Context,
	call Call,
	key common.FlightKey,
) (uint8, error) {
	key.Name = strings.TrimSpace(key.Name)
	var index uint8
	err := ls.execute(ctx, "fetchFlightStatus", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		flight, err := ls.db.GetFlight(key.Airline.String(), key.Name, key.Departure, o.txn)
		if err != nil {
			return err
		}
		if flight == nil || !flight.Registered {
			return o.errorf(KindNotFound, "flight %s is not registered", key)
		}
		if flight.Finalized {
			return o.errorf(KindStateConflict, "flight %s is finalized", key)
		}
		idx, err := o.drawIndex()
		if err != nil {
			return err
		}
		request, err := ls.db.GetOracleRequest(idx, key.Airline.String(), key.Name, key.Departure, o.txn)
		if err != nil {
			return err
		}
		if request == nil {
			request = &models.OracleRequest{
				ShardIndex: idx,
				Airline:    key.Airline.String(),
				Flight:     key.Name,
				Departure:  key.Departure,
				FlightID:   flight.ID,
				Requester:  call.Caller.String(),
				State:      uint8(common.RequestOpen),
			}
			if err := ls.db.SetOracleRequest(request, o.txn); err != nil {
				return err
			}
		}
		index = idx
		return o.emit(OracleRequestEventType, &OracleRequestEvent{
			Request:   request.Key(),
			Requester: call.Caller,
		})
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// SubmitOracleResponse records an oracle's status report for an open
// request. When OracleQuorum oracles agree on a status, the flight is
// finalized with it and sibling requests for the flight are closed. Reports
// that arrive after that are tallied without further effect.
func (ls *LedgerState) SubmitOracleResponse(
	ctx context.Context,
	call Call,
	key common.RequestKey,
	status common.StatusCode,
) error {
	key.Name = strings.TrimSpace(key.Name)
	return ls.execute(ctx, "submitOracleResponse", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		account, err := ls.db.GetOracleAccount(call.Caller.String(), o.txn)
		if err != nil {
			return err
		}
		if account == nil || !account.HasIndex(key.Index) {
			return o.errorf(
				KindGuardViolation,
				"caller %s does not hold index %d",
				call.Caller,
				key.Index,
			)
		}
		if !status.Reportable() {
			return o.errorf(KindBoundsViolation, "status %d is not reportable", uint8(status))
		}
		request, err := ls.db.GetOracleRequest(
			key.Index,
			key.Airline.String(),
			key.Name,
			key.Departure,
			o.txn,
		)
		if err != nil {
			return err
		}
		if request == nil {
			return o.errorf(KindRequestMismatch, "no request for %s", key)
		}
		tally := request.Tally()
		for _, oracles := range tally {
			for _, oracle := range oracles {
				if common.NewAddress(oracle) == call.Caller {
					return o.errorf(KindStateConflict, "%s already reported on %s", call.Caller, key)
				}
			}
		}
		if err := ls.db.AddOracleResponse(
			&models.OracleResponse{
				RequestID:  request.ID,
				Oracle:     call.Caller.String(),
				StatusCode: uint8(status),
			},
			o.txn,
		); err != nil {
			return err
		}
		count := len(tally[status]) + 1
		if err := o.emit(OracleReportEventType, &OracleReportEvent{
			Request: key,
			Oracle:  call.Caller,
			Status:  status,
			Count:   count,
		}); err != nil {
			return err
		}
		if count < OracleQuorum || request.RequestState() != common.RequestOpen {
			return nil
		}
		return o.closeRequests(request, status)
	})
}

// closeRequests finalizes request with status, closes its siblings and
// finalizes the flight
func (o *opContext) closeRequests(request *models.OracleRequest, status common.StatusCode) error {
	siblings, err := o.ls.db.GetOracleRequestsByFlight(request.FlightID, o.txn)
	if err != nil {
		return err
	}
	for i := range siblings {
		sibling := &siblings[i]
		if sibling.ID == request.ID {
			sibling.State = uint8(common.RequestFinalized)
		} else if sibling.RequestState() == common.RequestOpen {
			sibling.State = uint8(common.RequestClosed)
		} else {
			continue
		}
		if err := o.ls.db.SetOracleRequest(sibling, o.txn); err != nil {
			return err
		}
	}
	flight, err := o.ls.db.GetFlight(request.Airline, request.Flight, request.Departure, o.txn)
	if err != nil {
		return err
	}
	if flight == nil {
		return o.errorf(KindNotFound, "flight %s is not registered", request.Key().FlightKey)
	}
	if flight.Finalized {
		return nil
	}
	return o.finalizeFlight(flight, status)
}
