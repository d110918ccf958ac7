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

package ledger

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// RandomSource draws oracle shard indexes. Entropy is built by the ledger
// from the caller, a per-draw nonce and the journal tip hash.
type RandomSource interface {
	// Index returns a value in [0, n)
	Index(entropy []byte, n uint8) uint8
}

// ChainRandom derives indexes from the blake2b-256 hash of the entropy. The
// result is predictable to anyone who can read the journal, which matches
// the guarantees of on-chain block-hash randomness.
type ChainRandom struct{}

func NewChainRandom() *ChainRandom {
	return &ChainRandom{}
}

func (ChainRandom) Index(entropy []byte, n uint8) uint8 {
	if n == 0 {
		return 0
	}
	sum := blake2b.Sum256(entropy)
	return uint8(binary.BigEndian.Uint64(sum[:8]) % uint64(n)) //nolint:gosec // result is below n
}
