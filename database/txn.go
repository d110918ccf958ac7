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

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/surety/database/types"
)

// txnScope selects which stores a transaction spans
type txnScope uint8

const (
	scopeRecords txnScope = 1 << iota
	scopeJournal

	scopeAll = scopeRecords | scopeJournal
)

// Txn spans the metadata store, which holds ledger records, and the blob
// store, which holds the event journal. A read-write Txn commits the journal
// before the records so that records never exist without their journal entry.
type Txn struct {
	db        *Database
	journal   types.Txn
	records   types.Txn
	mu        sync.Mutex
	done      bool
	readWrite bool
}

func newTxn(db *Database, readWrite bool, scope txnScope) *Txn {
	t := &Txn{db: db, readWrite: readWrite}
	if bs := db.Blob(); bs != nil && scope&scopeJournal != 0 {
		t.journal = bs.NewTransaction(readWrite)
	}
	if ms := db.Metadata(); ms != nil && scope&scopeRecords != 0 {
		t.records = ms.Transaction()
	}
	return t
}

func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the record store handle, which is nil for journal-only
// transactions
func (t *Txn) Metadata() types.Txn {
	return t.records
}

// Blob returns the journal store handle
func (t *Txn) Blob() types.Txn {
	return t.journal
}

func (t *Txn) ReadWrite() bool {
	return t.readWrite
}

// Do runs fn inside the transaction. The transaction commits when fn returns
// nil and rolls back otherwise, including when fn panics.
func (t *Txn) Do(fn func(*Txn) error) error {
	defer func() {
		if r := recover(); r != nil {
			_ = t.Rollback()
			panic(r)
		}
	}()
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *Txn) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	if !t.readWrite {
		// Nothing to write, just free the handles
		return t.abort()
	}
	defer func() { t.done = true }()
	if t.journal == nil && t.records == nil {
		return types.ErrNoStoreAvailable
	}
	if t.journal != nil && t.records != nil {
		if err := t.db.updateCommitTimestamp(t, time.Now().UnixMilli()); err != nil {
			_ = t.abort()
			return fmt.Errorf("update commit timestamp: %w", err)
		}
	}
	if t.journal != nil {
		if err := t.journal.Commit(); err != nil {
			if t.records != nil {
				_ = t.records.Rollback()
			}
			return fmt.Errorf("commit journal: %w", err)
		}
	}
	if t.records == nil {
		return nil
	}
	if err := t.records.Commit(); err != nil {
		t.db.logger.Error(
			"journal committed but records did not",
			"component", "database",
			"error", err,
		)
		_ = t.records.Rollback()
		return fmt.Errorf("commit records after journal: %w", err)
	}
	return nil
}

func (t *Txn) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.abort()
}

// abort rolls back both stores. The caller holds t.mu.
func (t *Txn) abort() error {
	if t.done {
		return nil
	}
	t.done = true
	var errs []error
	if t.journal != nil {
		if err := t.journal.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("journal rollback: %w", err))
		}
	}
	if t.records != nil {
		if err := t.records.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("records rollback: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Release is Rollback for use in defer. Failures are logged at debug level.
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"component", "database",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}

// metadataTxn returns the record store handle for txn, or nil for a nil txn
func metadataTxn(txn *Txn) types.Txn {
	if txn == nil {
		return nil
	}
	return txn.Metadata()
}
