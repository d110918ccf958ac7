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

// Package records implements the metadata record operations on top of gorm.
// The sqlite, postgres and mysql plugins embed Store and differ only in how
// they open the connection.
package records

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Txn wraps a gorm transaction and implements types.Txn
type Txn struct {
	store    *Store
	db       *gorm.DB
	beginErr error
	finished bool
}

func (t *Txn) Commit() error {
	if t.beginErr != nil {
		return t.beginErr
	}
	if t.finished {
		return nil
	}
	if result := t.db.Commit(); result.Error != nil {
		return result.Error
	}
	t.finished = true
	return nil
}

func (t *Txn) Rollback() error {
	if t.beginErr != nil {
		return t.beginErr
	}
	if t.finished {
		return nil
	}
	if result := t.db.Rollback(); result.Error != nil {
		return result.Error
	}
	t.finished = true
	return nil
}

// Store provides the gorm-backed record operations shared by the SQL plugins
type Store struct {
	db           *gorm.DB
	logger       *slog.Logger
	promRegistry prometheus.Registerer
}

// Init wires an opened gorm handle into the store, configures tracing,
// applies schema migrations and registers pool metrics when a registry is set
func (s *Store) Init(db *gorm.DB) error {
	s.db = db
	logger := s.Logger()
	if err := s.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	for _, model := range append([]any{&CommitTimestamp{}}, models.MigrateModels...) {
		logger.Debug(
			fmt.Sprintf("creating table: %#v", model),
			"component", "database",
		)
		if err := s.db.AutoMigrate(model); err != nil {
			return err
		}
	}
	if s.promRegistry != nil {
		return s.RegisterMetrics(s.promRegistry)
	}
	return nil
}

// DB returns the underlying GORM database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Logger returns the store logger
func (s *Store) Logger() *slog.Logger {
	if s.logger == nil {
		// Throw away logs so callers don't need guards around every log call
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return s.logger
}

// Transaction begins a new metadata transaction
func (s *Store) Transaction() types.Txn {
	if s.db == nil {
		return &Txn{store: s, beginErr: errors.New("metadata store not started")}
	}
	db := s.db.Begin()
	if db.Error != nil {
		return &Txn{store: s, beginErr: db.Error}
	}
	return &Txn{store: s, db: db}
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDb, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDb.Close()
}

// resolveDB returns the gorm handle for the given transaction, or the base
// handle when txn is nil
func (s *Store) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return s.db, nil
	}
	t, ok := txn.(*Txn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if t.store != s {
		return nil, errors.New("transaction from different store")
	}
	if t.beginErr != nil {
		return nil, t.beginErr
	}
	if t.finished {
		return nil, types.ErrTxnFinished
	}
	return t.db, nil
}

// first loads a single record, returning nil with no error when nothing matches
func first[T any](db *gorm.DB, query string, args ...any) (*T, error) {
	ret := new(T)
	result := db.Where(query, args...).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

const commitTimestampRowId = 1

// CommitTimestamp represents the table used to track the current commit timestamp
type CommitTimestamp struct {
	ID        uint `gorm:"primarykey"`
	Timestamp int64
}

func (CommitTimestamp) TableName() string {
	return "commit_timestamp"
}

func (s *Store) GetCommitTimestamp() (int64, error) {
	var tmpCommitTimestamp CommitTimestamp
	result := s.DB().First(&tmpCommitTimestamp)
	if result.Error != nil {
		// It's not an error if there's no records found
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return tmpCommitTimestamp.Timestamp, nil
}

func (s *Store) SetCommitTimestamp(timestamp int64, txn types.Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpCommitTimestamp := CommitTimestamp{
		ID:        commitTimestampRowId,
		Timestamp: timestamp,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp"}),
	}).Create(&tmpCommitTimestamp)
	return result.Error
}
