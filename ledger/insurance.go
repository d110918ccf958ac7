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

// loadInsurance returns the flight and the insurance for one of its tickets
func (o *opContext) loadInsurance(key common.InsuranceKey) (*models.Flight, *models.Insurance, error) {
	flight, err := o.ls.db.GetFlight(key.Airline.String(), key.Name, key.Departure, o.txn)
	if err != nil {
		return nil, nil, err
	}
	if flight == nil {
		return nil, nil, o.errorf(KindNotFound, "flight %s is not registered", key.FlightKey)
	}
	insurance, err := o.ls.db.GetInsurance(flight.ID, key.Ticket, o.txn)
	if err != nil {
		return nil, nil, err
	}
	if insurance == nil {
		return nil, nil, o.errorf(KindNotFound, "ticket %s is not on flight %s", key.Ticket, key.FlightKey)
	}
	return flight, insurance, nil
}

// BuyInsurance sells the insurance for one ticket to the caller. The
// attached value is the premium.
func (ls *LedgerState) BuyInsurance(
	ctx context.Context,
	call Call,
	key common.InsuranceKey,
) error {
	key.Name = strings.TrimSpace(key.Name)
	key.Ticket = strings.TrimSpace(key.Ticket)
	return ls.execute(ctx, "buyInsurance", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		flight, insurance, err := o.loadInsurance(key)
		if err != nil {
			return err
		}
		if flight.Finalized {
			return o.errorf(KindStateConflict, "flight %s is finalized", key.FlightKey)
		}
		if insurance.InsuranceState() != common.InsuranceNotSold {
			return o.errorf(KindStateConflict, "insurance %s is %s", key, insurance.InsuranceState())
		}
		if call.Value == 0 || call.Value > InsuranceCap {
			return o.errorf(
				KindBoundsViolation,
				"premium %s must be above 0 and at most %s",
				call.Value,
				InsuranceCap,
			)
		}
		insurance.Buyer = call.Caller.String()
		insurance.PaidValue = types.Uint64(call.Value)
		insurance.State = uint8(common.InsuranceBought)
		if err := ls.db.SetInsurance(insurance, o.txn); err != nil {
			return err
		}
		if err := o.creditPool(call.Value); err != nil {
			return err
		}
		return o.emit(InsuranceBoughtEventType, &InsuranceBoughtEvent{
			Insurance: key,
			Buyer:     call.Caller,
			Value:     call.Value,
		})
	})
}

// WithdrawCredit pays the credit of an insurance to its buyer. The credit is
// zeroed before the transfer, and a failed transfer undoes the whole
// withdrawal.
func (ls *LedgerState) WithdrawCredit(
	ctx context.Context,
	call Call,
	key common.InsuranceKey,
) error {
	key.Name = strings.TrimSpace(key.Name)
	key.Ticket = strings.TrimSpace(key.Ticket)
	return ls.execute(ctx, "withdrawCredit", call, func(o *opContext) error {
		if err := o.requireGate(); err != nil {
			return err
		}
		_, insurance, err := o.loadInsurance(key)
		if err != nil {
			return err
		}
		if insurance.InsuranceState() != common.InsuranceCredited || insurance.CreditedValue == 0 {
			return o.errorf(KindStateConflict, "insurance %s has no credit to withdraw", key)
		}
		if common.NewAddress(insurance.Buyer) != call.Caller {
			return o.errorf(KindGuardViolation, "caller is not the buyer of %s", key)
		}
		amount := common.Amount(insurance.CreditedValue)
		insurance.CreditedValue = 0
		if err := ls.db.SetInsurance(insurance, o.txn); err != nil {
			return err
		}
		if err := o.emit(CreditWithdrawnEventType, &CreditWithdrawnEvent{
			Insurance: key,
			Buyer:     call.Caller,
			Amount:    amount,
		}); err != nil {
			return err
		}
		return o.transfer(Payout{
			Recipient: call.Caller,
			Reason:    PayoutReasonWithdrawal,
			Reference: key.String(),
			Amount:    amount,
		})
	})
}
