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

// Package types holds the storage-neutral pieces shared by the database
// layer and its plugins
package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrBlobKeyNotFound      = errors.New("blob key not found")
	ErrBlobStoreUnavailable = errors.New("blob store unavailable")
	ErrNoStoreAvailable     = errors.New("no store available")
	// ErrNilTxn is returned where a write needs an explicit transaction
	ErrNilTxn = errors.New("nil transaction")
	// ErrTxnWrongType is returned when a plugin is handed another plugin's
	// transaction
	ErrTxnWrongType = errors.New("invalid transaction type")
	ErrTxnFinished  = errors.New("transaction already finished")
)

// Uint64 is stored as a decimal string so that amounts and journal sequence
// numbers survive SQL backends without unsigned 64-bit columns
//
//nolint:recvcheck
type Uint64 uint64

func (u Uint64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(u), 10), nil
}

func (u *Uint64) Scan(val any) error {
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		// Some drivers hand back numeric-looking text as an integer
		if v < 0 {
			return fmt.Errorf("negative value %d for Uint64", v)
		}
		*u = Uint64(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Uint64", val)
	}
	parsed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("scan Uint64: %w", err)
	}
	*u = Uint64(parsed)
	return nil
}

// Txn is the commit/rollback handle each store plugin hands out. The database
// layer pairs a metadata Txn with a blob Txn.
type Txn interface {
	Commit() error
	Rollback() error
}

// BlobItem is a single key/value pair from a BlobIterator
type BlobItem interface {
	Key() []byte
	ValueCopy(dst []byte) ([]byte, error)
}

// BlobIterator walks blob store keys in order. Items are only valid while the
// transaction that created the iterator is open.
type BlobIterator interface {
	Rewind()
	Seek(prefix []byte)
	Valid() bool
	ValidForPrefix(prefix []byte) bool
	Next()
	Item() BlobItem
	Close()
	Err() error
}

// BlobIteratorOptions limits an iterator to keys under Prefix, optionally in
// reverse order
type BlobIteratorOptions struct {
	Prefix  []byte
	Reverse bool
}
