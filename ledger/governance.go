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

// RegisterAirline admits a candidate airline. While fewer than
// MediationThreshold airlines are Funded, a Funded airline registers the
// candidate directly. After that the candidate registers itself and waits
// for votes.
func (ls *LedgerState) RegisterAirline(
	ctx context.Context,
	call Call,
	candidate common.Address,
	name string,
) error {
	return ls.execute(ctx, "registerAirline", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return o.errorf(KindBoundsViolation, "empty airline name")
		}
		if candidate.IsZero() {
			return o.errorf(KindBoundsViolation, "empty airline address")
		}
		existing, err := ls.db.GetAirline(candidate.String(), o.txn)
		if err != nil {
			return err
		}
		if existing != nil {
			return o.errorf(KindStateConflict, "airline %s already exists", candidate)
		}
		fundedCount, err := ls.db.CountAirlinesByState(uint8(common.AirlineFunded), o.txn)
		if err != nil {
			return err
		}
		mode := RegistrationModeFor(fundedCount)
		state := common.AirlineRegistered
		if mode == common.RegistrationByMediation {
			if _, err := o.requireFundedCaller(); err != nil {
				return err
			}
		} else {
			if call.Caller != candidate {
				return o.errorf(
					KindGuardViolation,
					"airlines must register themselves once %d airlines are funded",
					MediationThreshold,
				)
			}
			state = common.AirlineWaitingForVotes
		}
		if err := ls.db.SetAirline(
			&models.Airline{
				Address: candidate.String(),
				Name:    name,
				State:   uint8(state),
			},
			o.txn,
		); err != nil {
			return err
		}
		return o.emit(AirlineAdmittedEventType, &AirlineAdmittedEvent{
			Airline:      candidate,
			Name:         name,
			RegisteredBy: call.Caller,
			State:        state,
			Mode:         mode,
		})
	})
}

// VoteForAirline records a Funded airline's vote for a waiting candidate.
// The candidate becomes Registered once it holds votes from at least half of
// the Funded airlines.
func (ls *LedgerState) VoteForAirline(
	ctx context.Context,
	call Call,
	candidate common.Address,
) error {
	return ls.execute(ctx, "voteForAirline", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		airline, err := ls.db.GetAirline(candidate.String(), o.txn)
		if err != nil {
			return err
		}
		if airline == nil {
			return o.errorf(KindNotFound, "airline %s does not exist", candidate)
		}
		if airline.AirlineState() != common.AirlineWaitingForVotes {
			return o.errorf(
				KindStateConflict,
				"airline %s is %s, not waiting for votes",
				candidate,
				airline.AirlineState(),
			)
		}
		if _, err := o.requireFundedCaller(); err != nil {
			return err
		}
		voted, err := ls.db.HasAirlineVote(airline.ID, call.Caller.String(), o.txn)
		if err != nil {
			return err
		}
		if voted {
			return o.errorf(KindStateConflict, "%s already voted for %s", call.Caller, candidate)
		}
		if err := ls.db.AddAirlineVote(airline.ID, call.Caller.String(), o.txn); err != nil {
			return err
		}
		fundedCount, err := ls.db.CountAirlinesByState(uint8(common.AirlineFunded), o.txn)
		if err != nil {
			return err
		}
		airline.Votes++
		registered := int64(airline.Votes)*2 >= fundedCount
		if registered {
			airline.State = uint8(common.AirlineRegistered)
		}
		if err := ls.db.SetAirline(airline, o.txn); err != nil {
			return err
		}
		return o.emit(AirlineVotedEventType, &AirlineVotedEvent{
			Airline:    candidate,
			Voter:      call.Caller,
			Votes:      airline.Votes,
			Registered: registered,
		})
	})
}

// FundMyAirline moves a Registered caller airline to Funded. The attached
// value must cover FundingMinimum; any excess is refunded.
func (ls *LedgerState) FundMyAirline(ctx context.Context, call Call) error {
	return ls.execute(ctx, "fundMyAirline", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		airline, err := ls.db.GetAirline(call.Caller.String(), o.txn)
		if err != nil {
			return err
		}
		if airline == nil {
			return o.errorf(KindNotFound, "airline %s does not exist", call.Caller)
		}
		switch airline.AirlineState() {
		case common.AirlineWaitingForVotes:
			return o.errorf(KindGuardViolation, "airline %s is still waiting for votes", call.Caller)
		case common.AirlineFunded:
			return o.errorf(KindStateConflict, "airline %s is already funded", call.Caller)
		}
		if call.Value < FundingMinimum {
			return o.errorf(
				KindBoundsViolation,
				"funding of %s is below the minimum of %s",
				call.Value,
				FundingMinimum,
			)
		}
		airline.State = uint8(common.AirlineFunded)
		airline.FundedValue = types.Uint64(FundingMinimum)
		if err := ls.db.SetAirline(airline, o.txn); err != nil {
			return err
		}
		if err := o.creditPool(call.Value); err != nil {
			return err
		}
		refund := call.Value - FundingMinimum
		if err := o.emit(AirlineFundedEventType, &AirlineFundedEvent{
			Airline: call.Caller,
			Value:   FundingMinimum,
			Refund:  refund,
		}); err != nil {
			return err
		}
		return o.transfer(Payout{
			Recipient: call.Caller,
			Reason:    PayoutReasonFundingRefund,
			Reference: call.Caller.String(),
			Amount:    refund,
		})
	})
}
