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

package records

import (
	"errors"

	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetFlight returns the flight with its insurance records, or nil if none exists
func (s *Store) GetFlight(
	airline string,
	name string,
	departure uint64,
	txn types.Txn,
) (*models.Flight, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Flight{}
	result := db.
		Preload("Insurances", func(db *gorm.DB) *gorm.DB {
			return db.Order("insurance.id")
		}).
		Where("airline = ? AND name = ? AND departure = ?", airline, name, departure).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetFlightsByAirline returns the flights registered by the airline, in registration order
func (s *Store) GetFlightsByAirline(airline string, txn types.Txn) ([]models.Flight, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Flight
	result := db.Where("airline = ?", airline).Order("id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetFlight creates or updates a flight record. Insurance records are written separately.
func (s *Store) SetFlight(flight *models.Flight, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Omit(clause.Associations).Save(flight).Error
}

// GetInsurance returns the insurance for a ticket on a flight, or nil if the ticket is not enrolled
func (s *Store) GetInsurance(flightID uint, ticket string, txn types.Txn) (*models.Insurance, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.Insurance](db, "flight_id = ? AND ticket = ?", flightID, ticket)
}

// AddInsurances creates insurance records in a single batch
func (s *Store) AddInsurances(insurances []models.Insurance, txn types.Txn) error {
	if len(insurances) == 0 {
		return nil
	}
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Omit(clause.Associations).Create(&insurances).Error
}

// SetInsurance updates an insurance record
func (s *Store) SetInsurance(insurance *models.Insurance, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Omit(clause.Associations).Save(insurance).Error
}

// GetInsurancesByBuyer returns the insurances bought by the given address, with their flights
func (s *Store) GetInsurancesByBuyer(buyer string, txn types.Txn) ([]models.Insurance, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Insurance
	result := db.Preload("Flight").
		Where("buyer = ?", buyer).
		Order("id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
