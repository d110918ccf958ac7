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

package badger

import (
	"fmt"

	"github.com/blinklabs-io/surety/database/types"
	"github.com/fxamacker/cbor/v2"
)

// commitTimestampKey holds the CBOR-encoded millisecond timestamp of the last
// paired commit. It is compared with the metadata store copy at startup.
var commitTimestampKey = []byte("metadata_commit_timestamp")

func (d *BlobStoreBadger) GetCommitTimestamp() (int64, error) {
	txn := d.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := d.Get(txn, commitTimestampKey)
	if err != nil {
		return 0, err
	}
	var ts int64
	if err := cbor.Unmarshal(val, &ts); err != nil {
		return 0, fmt.Errorf("decode commit timestamp: %w", err)
	}
	return ts, nil
}

func (d *BlobStoreBadger) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	val, err := cbor.Marshal(timestamp)
	if err != nil {
		return err
	}
	return d.Set(txn, commitTimestampKey, val)
}
