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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/surety/database/types"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	JournalEntryKeyPrefix = "je"
	journalTipKey         = "journal_tip"
)

var journalEncMode cbor.EncMode

func init() {
	var err error
	journalEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("journal CBOR encoder: %s", err))
	}
}

// JournalEntry is a committed ledger event. Each entry carries the hash of
// its predecessor, so the journal forms a chain from the first event.
type JournalEntry struct {
	_         struct{} `cbor:",toarray"`
	Seq       uint64
	Timestamp int64
	Type      string
	Payload   cbor.RawMessage
	PrevHash  []byte
	Hash      []byte
}

// computeHash returns the blake2b-256 hash of the entry without its Hash field
func (e *JournalEntry) computeHash() ([]byte, error) {
	tmp := *e
	tmp.Hash = nil
	data, err := journalEncMode.Marshal(&tmp)
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256(data)
	return sum[:], nil
}

// JournalTip identifies the latest journal entry. The zero value describes
// an empty journal.
type JournalTip struct {
	_    struct{} `cbor:",toarray"`
	Seq  uint64
	Hash []byte
}

// TipHash returns the hash of the latest entry, or 32 zero bytes for an empty
// journal
func (t JournalTip) TipHash() []byte {
	if len(t.Hash) == 0 {
		return make([]byte, blake2b.Size256)
	}
	return t.Hash
}

type JournalChainError struct {
	Seq    uint64
	Reason string
}

func (e JournalChainError) Error() string {
	return fmt.Sprintf("journal chain broken at entry %d: %s", e.Seq, e.Reason)
}

// JournalEntryKey returns the blob key for the given sequence number
func JournalEntryKey(seq uint64) []byte {
	key := make([]byte, 0, len(JournalEntryKeyPrefix)+8)
	key = append(key, JournalEntryKeyPrefix...)
	return binary.BigEndian.AppendUint64(key, seq)
}

// JournalTip returns the current journal tip
func (d *Database) JournalTip(txn *Txn) (JournalTip, error) {
	if txn == nil {
		txn = newTxn(d, false, scopeJournal)
		defer txn.Release()
	}
	var ret JournalTip
	if txn.Blob() == nil {
		return ret, types.ErrBlobStoreUnavailable
	}
	data, err := d.blob.Get(txn.Blob(), []byte(journalTipKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return ret, nil
		}
		return ret, err
	}
	if err := cbor.Unmarshal(data, &ret); err != nil {
		return ret, fmt.Errorf("decode journal tip: %w", err)
	}
	return ret, nil
}

// AppendJournal encodes payload and appends it to the journal as the next
// entry. The entry becomes visible when txn commits.
func (d *Database) AppendJournal(
	eventType string,
	payload any,
	timestamp int64,
	txn *Txn,
) (*JournalEntry, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	if txn.Blob() == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	payloadCbor, err := journalEncMode.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	tip, err := d.JournalTip(txn)
	if err != nil {
		return nil, err
	}
	entry := &JournalEntry{
		Seq:       tip.Seq + 1,
		Timestamp: timestamp,
		Type:      eventType,
		Payload:   payloadCbor,
		PrevHash:  tip.Hash,
	}
	if entry.Hash, err = entry.computeHash(); err != nil {
		return nil, err
	}
	entryCbor, err := journalEncMode.Marshal(entry)
	if err != nil {
		return nil, err
	}
	if err := d.blob.Set(txn.Blob(), JournalEntryKey(entry.Seq), entryCbor); err != nil {
		return nil, err
	}
	tipCbor, err := journalEncMode.Marshal(
		&JournalTip{Seq: entry.Seq, Hash: entry.Hash},
	)
	if err != nil {
		return nil, err
	}
	if err := d.blob.Set(txn.Blob(), []byte(journalTipKey), tipCbor); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetJournalEntry returns the entry with the given sequence number
func (d *Database) GetJournalEntry(seq uint64, txn *Txn) (*JournalEntry, error) {
	if txn == nil {
		txn = newTxn(d, false, scopeJournal)
		defer txn.Release()
	}
	if txn.Blob() == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	data, err := d.blob.Get(txn.Blob(), JournalEntryKey(seq))
	if err != nil {
		return nil, err
	}
	return decodeJournalEntry(data)
}

func decodeJournalEntry(data []byte) (*JournalEntry, error) {
	ret := &JournalEntry{}
	if err := cbor.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("decode journal entry: %w", err)
	}
	return ret, nil
}

// VerifyJournal walks the journal from the first entry and checks sequence
// numbers, entry hashes and back links against the recorded tip
func (d *Database) VerifyJournal() error {
	iter := d.JournalFrom(1)
	defer iter.Close()
	var prev *JournalEntry
	for {
		entry, err := iter.Next()
		if err != nil {
			return err
		}
		if entry == nil {
			break
		}
		var expectedSeq uint64 = 1
		var expectedPrev []byte
		if prev != nil {
			expectedSeq = prev.Seq + 1
			expectedPrev = prev.Hash
		}
		if entry.Seq != expectedSeq {
			return JournalChainError{Seq: entry.Seq, Reason: fmt.Sprintf("expected sequence %d", expectedSeq)}
		}
		if !bytes.Equal(entry.PrevHash, expectedPrev) {
			return JournalChainError{Seq: entry.Seq, Reason: "previous hash mismatch"}
		}
		hash, err := entry.computeHash()
		if err != nil {
			return err
		}
		if !bytes.Equal(hash, entry.Hash) {
			return JournalChainError{Seq: entry.Seq, Reason: "entry hash mismatch"}
		}
		prev = entry
	}
	tip, err := d.JournalTip(nil)
	if err != nil {
		return err
	}
	var lastSeq uint64
	var lastHash []byte
	if prev != nil {
		lastSeq = prev.Seq
		lastHash = prev.Hash
	}
	if tip.Seq != lastSeq || !bytes.Equal(tip.Hash, lastHash) {
		return JournalChainError{Seq: tip.Seq, Reason: "tip does not match last entry"}
	}
	return nil
}
