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

// GetOracleAccount returns the oracle account for the address, or nil if not registered
func (s *Store) GetOracleAccount(address string, txn types.Txn) (*models.OracleAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.OracleAccount](db, "address = ?", address)
}

func (s *Store) SetOracleAccount(account *models.OracleAccount, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(account).Error
}

func (s *Store) CountOracleAccounts(txn types.Txn) (int64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.OracleAccount{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetOracleRequest returns the request with its responses, or nil if none exists for the key
func (s *Store) GetOracleRequest(
	index uint8,
	airline string,
	flight string,
	departure uint64,
	txn types.Txn,
) (*models.OracleRequest, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.OracleRequest{}
	result := db.
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("oracle_response.id")
		}).
		Where(
			"shard_index = ? AND airline = ? AND flight = ? AND departure = ?",
			index,
			airline,
			flight,
			departure,
		).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetOracleRequestsByFlight returns all requests raised for the flight
func (s *Store) GetOracleRequestsByFlight(flightID uint, txn types.Txn) ([]models.OracleRequest, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.OracleRequest
	result := db.Where("flight_id = ?", flightID).Order("id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetOracleRequest creates or updates a request. Responses are written separately.
func (s *Store) SetOracleRequest(request *models.OracleRequest, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Omit(clause.Associations).Save(request).Error
}

func (s *Store) AddOracleResponse(response *models.OracleResponse, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(response).Error
}

func (s *Store) CountOracleRequestsByState(state uint8, txn types.Txn) (int64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	result := db.Model(&models.OracleRequest{}).
		Where("state = ?", state).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
