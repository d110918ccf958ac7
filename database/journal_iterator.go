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
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/surety/database/types"
)

// journalIteratorBatchSize controls how many entries are read per blob
// transaction
const journalIteratorBatchSize = 500

// JournalIterator yields journal entries in sequence order. Entries are read
// in batches, each in its own short read transaction.
type JournalIterator struct {
	db        *Database
	batch     []*JournalEntry
	mu        sync.Mutex
	nextSeq   uint64
	batchIdx  int
	exhausted bool
	closed    bool
}

// JournalFrom returns an iterator starting at startSeq. Sequence numbers
// start at 1.
func (d *Database) JournalFrom(startSeq uint64) *JournalIterator {
	if startSeq == 0 {
		startSeq = 1
	}
	return &JournalIterator{
		db:      d,
		nextSeq: startSeq,
	}
}

// Next returns the next entry. When iteration is complete, it returns
// (nil, nil).
func (it *JournalIterator) Next() (*JournalEntry, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.closed {
		return nil, nil
	}
	if it.batchIdx >= len(it.batch) {
		if it.exhausted {
			return nil, nil
		}
		if err := it.fetchBatch(); err != nil {
			return nil, err
		}
		if len(it.batch) == 0 {
			it.exhausted = true
			return nil, nil
		}
	}
	entry := it.batch[it.batchIdx]
	it.batchIdx++
	return entry, nil
}

// Close releases any resources held by the iterator. It is safe to call
// Close multiple times.
func (it *JournalIterator) Close() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.closed = true
	it.batch = nil
}

// fetchBatch must be called with it.mu held
func (it *JournalIterator) fetchBatch() error {
	blob := it.db.Blob()
	if blob == nil {
		return types.ErrBlobStoreUnavailable
	}
	txn := blob.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck

	prefix := []byte(JournalEntryKeyPrefix)
	blobIter := blob.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	if blobIter == nil {
		return errors.New("blob iterator is nil")
	}
	defer blobIter.Close()

	batch := make([]*JournalEntry, 0, journalIteratorBatchSize)
	for blobIter.Seek(JournalEntryKey(it.nextSeq)); blobIter.ValidForPrefix(prefix); blobIter.Next() {
		item := blobIter.Item()
		if item == nil {
			continue
		}
		key := item.Key()
		if len(key) != len(prefix)+8 {
			it.db.logger.Warn(
				"journal iterator: skipping unexpected key",
				"component", "database",
				"key", fmt.Sprintf("%x", key),
			)
			continue
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("reading journal entry: %w", err)
		}
		entry, err := decodeJournalEntry(val)
		if err != nil {
			return err
		}
		if keySeq := binary.BigEndian.Uint64(key[len(prefix):]); keySeq != entry.Seq {
			return JournalChainError{Seq: keySeq, Reason: "key does not match entry sequence"}
		}
		batch = append(batch, entry)
		if len(batch) >= journalIteratorBatchSize {
			break
		}
	}
	if err := blobIter.Err(); err != nil {
		return fmt.Errorf("scanning journal keys: %w", err)
	}
	it.batch = batch
	it.batchIdx = 0
	if len(batch) > 0 {
		it.nextSeq = batch[len(batch)-1].Seq + 1
	}
	if len(batch) < journalIteratorBatchSize {
		it.exhausted = true
	}
	return nil
}
