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

package model

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/minio/highwayhash"
)

// idHashKey is a fixed 32-byte key for HighwayHash-256, the pack's closest
// real dependency to the spec's blake3 (see DESIGN.md). It is a constant,
// not a secret: IDs only need to be stable and collision-resistant, not
// tamper-proof.
var idHashKey = []byte("codegraph-stable-id-key-32bytes")

// stableHash256 returns the hex-encoded HighwayHash-256 digest of data.
func stableHash256(data []byte) string {
	sum, err := highwayhash.New(idHashKey)
	if err != nil {
		// The key is a fixed 32-byte constant; New only fails on bad key
		// length, which is a programmer error, not a runtime condition.
		panic(fmt.Sprintf("model: invalid highwayhash key: %v", err))
	}
	sum.Write(data)
	return hex.EncodeToString(sum.Sum(nil))
}

// IDGenerator produces deterministic, repo-scoped node IDs of the form
// blake3-style hash(repo_id ":" file_path ":" counter), per §4.1. A single
// generator is meant to be used for one repo/snapshot ingestion run; the
// counter guarantees uniqueness (N1) even for two nodes with identical
// file_path and kind.
type IDGenerator struct {
	repoID  string
	counter uint64
}

// NewIDGenerator creates a generator scoped to a single repository.
func NewIDGenerator(repoID string) *IDGenerator {
	return &IDGenerator{repoID: repoID}
}

// NextNodeID returns the next deterministic node ID for filePath.
func (g *IDGenerator) NextNodeID(filePath string) string {
	n := atomic.AddUint64(&g.counter, 1)
	return nodeID(g.repoID, filePath, n)
}

func nodeID(repoID, filePath string, counter uint64) string {
	normalized := NormalizePath(filePath)
	raw := repoID + ":" + normalized + ":" + strconv.FormatUint(counter, 10)
	return "node:" + stableHash256([]byte(raw))[:32]
}

// Reset rewinds the counter to zero. Used by tests that need reproducible
// IDs across runs.
func (g *IDGenerator) Reset() {
	atomic.StoreUint64(&g.counter, 0)
}

// NormalizePath normalizes a file path for consistent ID generation and
// equality checks: removes a leading "./", cleans redundant separators, and
// converts to forward slashes so IDs are stable across platforms.
func NormalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// ContentHash computes the stable content hash required by invariant N4/Ch1:
// a function of the node's lexical span content and kind. Re-parsing an
// unchanged span yields an identical hash.
func ContentHash(kind NodeKind, content []byte) string {
	raw := append([]byte(string(kind)+":"), content...)
	return stableHash256(raw)
}

// ChunkID derives a stable chunk identifier from its scoping tuple so that
// re-chunking an unchanged region reproduces the same ID (Ch3).
func ChunkID(repoID, snapshotID, filePath string, startLine, endLine int) string {
	raw := fmt.Sprintf("%s:%s:%s:%d:%d", repoID, snapshotID, NormalizePath(filePath), startLine, endLine)
	return "chunk:" + stableHash256([]byte(raw))[:32]
}
