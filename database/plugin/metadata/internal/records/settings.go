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
	"gorm.io/gorm/clause"
)

// GetSettings returns the ledger settings row, or nil if the ledger has no genesis yet
func (s *Store) GetSettings(txn types.Txn) (*models.LedgerSettings, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.LedgerSettings](db, "id = ?", models.LedgerSettingsID)
}

// SetSettings writes the ledger settings row
func (s *Store) SetSettings(settings *models.LedgerSettings, txn types.Txn) error {
	if settings == nil {
		return errors.New("nil settings")
	}
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	settings.ID = models.LedgerSettingsID
	return db.Save(settings).Error
}

// AddAuthorizedCaller adds a logic-layer identity to the authorized set.
// Adding an identity that is already present is a no-op.
func (s *Store) AddAuthorizedCaller(logicID string, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.AuthorizedCaller{LogicID: logicID})
	return result.Error
}

// DeleteAuthorizedCaller removes a logic-layer identity from the authorized set
func (s *Store) DeleteAuthorizedCaller(logicID string, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("logic_id = ?", logicID).
		Delete(&models.AuthorizedCaller{}).Error
}

func (s *Store) IsAuthorizedCaller(logicID string, txn types.Txn) (bool, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return false, err
	}
	var count int64
	result := db.Model(&models.AuthorizedCaller{}).
		Where("logic_id = ?", logicID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (s *Store) GetAuthorizedCallers(txn types.Txn) ([]string, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []string
	result := db.Model(&models.AuthorizedCaller{}).
		Order("id").
		Pluck("logic_id", &ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// AddPayout records a transfer made by the ledger
func (s *Store) AddPayout(payout *models.Payout, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(payout).Error
}

// GetPayouts returns the recorded transfers in order, optionally filtered by recipient
func (s *Store) GetPayouts(recipient string, txn types.Txn) ([]models.Payout, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Payout
	query := db.Order("id")
	if recipient != "" {
		query = query.Where("recipient = ?", recipient)
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
