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

func (d *Database) GetOracleAccount(address string, txn *Txn) (*models.OracleAccount, error) {
	return d.metadata.GetOracleAccount(address, metadataTxn(txn))
}

func (d *Database) SetOracleAccount(account *models.OracleAccount, txn *Txn) error {
	return d.metadata.SetOracleAccount(account, metadataTxn(txn))
}

func (d *Database) CountOracleAccounts(txn *Txn) (int64, error) {
	return d.metadata.CountOracleAccounts(metadataTxn(txn))
}

// GetOracleRequest returns the request with its responses, or nil if no
// request exists for the exact key
func (d *Database) GetOracleRequest(
	index uint8,
	airline string,
	flight string,
	departure uint64,
	txn *Txn,
) (*models.OracleRequest, error) {
	return d.metadata.GetOracleRequest(
		index,
		airline,
		flight,
		departure,
		metadataTxn(txn),
	)
}

func (d *Database) GetOracleRequestsByFlight(
	flightID uint,
	txn *Txn,
) ([]models.OracleRequest, error) {
	return d.metadata.GetOracleRequestsByFlight(flightID, metadataTxn(txn))
}

func (d *Database) SetOracleRequest(request *models.OracleRequest, txn *Txn) error {
	return d.metadata.SetOracleRequest(request, metadataTxn(txn))
}

func (d *Database) AddOracleResponse(response *models.OracleResponse, txn *Txn) error {
	return d.metadata.AddOracleResponse(response, metadataTxn(txn))
}

func (d *Database) CountOracleRequestsByState(state uint8, txn *Txn) (int64, error) {
	return d.metadata.CountOracleRequestsByState(state, metadataTxn(txn))
}
