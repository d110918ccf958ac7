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
	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/database/types"
)

// GetAirline returns the airline with the given address, or nil if none exists
func (s *Store) GetAirline(address string, txn types.Txn) (*models.Airline, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.Airline](db, "address = ?", address)
}

// GetAirlines returns all airlines in admission order
func (s *Store) GetAirlines(txn types.Txn) ([]models.Airline, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Airline
	if result := db.Order("id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetAirline creates or updates an airline record
func (s *Store) SetAirline(airline *models.Airline, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(airline).Error
}

func (s *Store) CountAirlinesByState(state uint8, txn types.Txn) (int64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	result := db.Model(&models.Airline{}).
		Where("state = ?", state).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (s *Store) AddAirlineVote(airlineID uint, voter string, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(&models.AirlineVote{AirlineID: airlineID, Voter: voter}).Error
}

func (s *Store) HasAirlineVote(airlineID uint, voter string, txn types.Txn) (bool, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return false, err
	}
	var count int64
	result := db.Model(&models.AirlineVote{}).
		Where("airline_id = ? AND voter = ?", airlineID, voter).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// GetAirlineVoters returns the addresses that voted for the airline, in vote order
func (s *Store) GetAirlineVoters(airlineID uint, txn types.Txn) ([]string, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []string
	result := db.Model(&models.AirlineVote{}).
		Where("airline_id = ?", airlineID).
		Order("id").
		Pluck("voter", &ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
