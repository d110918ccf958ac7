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

package database

import "github.com/blinklabs-io/surety/database/models"

// GetSettings returns the ledger settings row, or nil before genesis
func (d *Database) GetSettings(txn *Txn) (*models.LedgerSettings, error) {
	return d.metadata.GetSettings(metadataTxn(txn))
}

func (d *Database) SetSettings(settings *models.LedgerSettings, txn *Txn) error {
	return d.metadata.SetSettings(settings, metadataTxn(txn))
}

func (d *Database) AddAuthorizedCaller(logicID string, txn *Txn) error {
	return d.metadata.AddAuthorizedCaller(logicID, metadataTxn(txn))
}

func (d *Database) DeleteAuthorizedCaller(logicID string, txn *Txn) error {
	return d.metadata.DeleteAuthorizedCaller(logicID, metadataTxn(txn))
}

func (d *Database) IsAuthorizedCaller(logicID string, txn *Txn) (bool, error) {
	return d.metadata.IsAuthorizedCaller(logicID, metadataTxn(txn))
}

func (d *Database) GetAuthorizedCallers(txn *Txn) ([]string, error) {
	return d.metadata.GetAuthorizedCallers(metadataTxn(txn))
}

func (d *Database) AddPayout(payout *models.Payout, txn *Txn) error {
	return d.metadata.AddPayout(payout, metadataTxn(txn))
}

// GetPayouts returns the payouts made to recipient, or all payouts when
// recipient is empty
func (d *Database) GetPayouts(recipient string, txn *Txn) ([]models.Payout, error) {
	return d.metadata.GetPayouts(recipient, metadataTxn(txn))
}
