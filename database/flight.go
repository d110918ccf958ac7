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

// GetFlight returns the flight with its insurance records, or nil if the
// flight is not registered
func (d *Database) GetFlight(
	airline string,
	name string,
	departure uint64,
	txn *Txn,
) (*models.Flight, error) {
	return d.metadata.GetFlight(airline, name, departure, metadataTxn(txn))
}

func (d *Database) GetFlightsByAirline(airline string, txn *Txn) ([]models.Flight, error) {
	return d.metadata.GetFlightsByAirline(airline, metadataTxn(txn))
}

func (d *Database) SetFlight(flight *models.Flight, txn *Txn) error {
	return d.metadata.SetFlight(flight, metadataTxn(txn))
}

func (d *Database) GetInsurance(
	flightID uint,
	ticket string,
	txn *Txn,
) (*models.Insurance, error) {
	return d.metadata.GetInsurance(flightID, ticket, metadataTxn(txn))
}

func (d *Database) AddInsurances(insurances []models.Insurance, txn *Txn) error {
	return d.metadata.AddInsurances(insurances, metadataTxn(txn))
}

func (d *Database) SetInsurance(insurance *models.Insurance, txn *Txn) error {
	return d.metadata.SetInsurance(insurance, metadataTxn(txn))
}

func (d *Database) GetInsurancesByBuyer(buyer string, txn *Txn) ([]models.Insurance, error) {
	return d.metadata.GetInsurancesByBuyer(buyer, metadataTxn(txn))
}
