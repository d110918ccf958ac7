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

	"github.com/blinklabs-io/surety/database"
	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/database/types"
	"github.com/blinklabs-io/surety/ledger/common"
)

const (
	PayoutReasonWithdrawal    = "withdrawal"
	PayoutReasonFundingRefund = "funding-refund"
)

// Payout is a native-value transfer out of the ledger pool
type Payout struct {
	Recipient common.Address
	Reason    string
	Reference string
	Amount    common.Amount
}

// Transferer moves value from the pool to a recipient. It runs inside the
// operation transaction; an error rolls the whole operation back.
type Transferer interface {
	Transfer(ctx context.Context, payout Payout, txn *database.Txn) error
}

// OutboxTransferer records payouts in the store for the host to settle
type OutboxTransferer struct {
	store Store
}

func NewOutboxTransferer(store Store) *OutboxTransferer {
	return &OutboxTransferer{store: store}
}

func (o *OutboxTransferer) Transfer(
	_ context.Context,
	payout Payout,
	txn *database.Txn,
) error {
	return o.store.AddPayout(
		&models.Payout{
			Recipient: payout.Recipient.String(),
			Reason:    payout.Reason,
			Reference: payout.Reference,
			Amount:    types.Uint64(payout.Amount),
		},
		txn,
	)
}
