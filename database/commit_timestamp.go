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

	"github.com/blinklabs-io/surety/database/types"
)

// CommitTimestampError means the metadata and blob stores were last
// committed at different times, so one of them holds writes the other lacks
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: %d (metadata) != %d (blob)",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

// checkCommitTimestamp compares the paired commit markers. A fresh metadata
// store has nothing to compare.
func (d *Database) checkCommitTimestamp() error {
	metaTs, err := d.metadata.GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read metadata commit timestamp: %w", err)
	}
	if metaTs <= 0 {
		return nil
	}
	blobTs, err := d.blob.GetCommitTimestamp()
	if err != nil && !errors.Is(err, types.ErrBlobKeyNotFound) {
		return fmt.Errorf("read blob commit timestamp: %w", err)
	}
	if blobTs == metaTs {
		return nil
	}
	return CommitTimestampError{
		MetadataTimestamp: metaTs,
		BlobTimestamp:     blobTs,
	}
}

// updateCommitTimestamp writes the same marker into both halves of txn
func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	return errors.Join(
		d.metadata.SetCommitTimestamp(timestamp, txn.Metadata()),
		d.blob.SetCommitTimestamp(timestamp, txn.Blob()),
	)
}
