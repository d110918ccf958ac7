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

func (d *Database) GetAirline(address string, txn *Txn) (*models.Airline, error) {
	return d.metadata.GetAirline(address, metadataTxn(txn))
}

func (d *Database) GetAirlines(txn *Txn) ([]models.Airline, error) {
	return d.metadata.GetAirlines(metadataTxn(txn))
}

func (d *Database) SetAirline(airline *models.Airline, txn *Txn) error {
	return d.metadata.SetAirline(airline, metadataTxn(txn))
}

func (d *Database) CountAirlinesByState(state uint8, txn *Txn) (int64, error) {
	return d.metadata.CountAirlinesByState(state, metadataTxn(txn))
}

func (d *Database) AddAirlineVote(airlineID uint, voter string, txn *Txn) error {
	return d.metadata.AddAirlineVote(airlineID, voter, metadataTxn(txn))
}

func (d *Database) HasAirlineVote(airlineID uint, voter string, txn *Txn) (bool, error) {
	return d.metadata.HasAirlineVote(airlineID, voter, metadataTxn(txn))
}

func (d *Database) GetAirlineVoters(airlineID uint, txn *Txn) ([]string, error) {
	return d.metadata.GetAirlineVoters(airlineID, metadataTxn(txn))
}
