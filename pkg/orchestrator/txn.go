// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"fmt"
	"sync/atomic"
)

// TxnID is the orchestrator's monotonically increasing transaction
// counter (§4.6 point 1). Zero means "no transaction has committed yet".
type TxnID uint64

// String renders the id the way it's persisted in
// model.TransactionDelta.TxnId.
func (id TxnID) String() string { return fmt.Sprintf("txn:%d", uint64(id)) }

// txnCounter hands out strictly increasing TxnIDs, safe for concurrent
// commits.
type txnCounter struct {
	next atomic.Uint64
}

// nextID returns the next TxnID, starting at 1.
func (c *txnCounter) nextID() TxnID {
	return TxnID(c.next.Add(1))
}

// current returns the highest TxnID handed out so far.
func (c *txnCounter) current() TxnID {
	return TxnID(c.next.Load())
}
