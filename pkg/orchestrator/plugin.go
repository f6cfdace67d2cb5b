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
	"context"
	"time"

	"github.com/kraklabs/codegraph/pkg/model"
)

// IndexType is the closed set of index kinds a plugin may back.
type IndexType string

const (
	IndexVector  IndexType = "vector"
	IndexLexical IndexType = "lexical"
	IndexGraph   IndexType = "graph"
)

// PluginHealth is one plugin's self-reported health.
type PluginHealth struct {
	IsHealthy bool
	Message   string
}

// PluginStats is a plugin's self-reported operating statistics, kept
// deliberately open-ended since every index kind tracks different
// numbers (vector index size, lexical segment count, graph edge count).
type PluginStats struct {
	AppliedUpTo TxnID
	Extra       map[string]any
}

// RebuildProgress reports incremental progress during a long rebuild.
// A plugin that rebuilds synchronously may return nil.
type RebuildProgress struct {
	Processed int
	Total     int
}

// IndexPlugin is the contract every index (vector, lexical, graph, …)
// implements so the orchestrator can fan transaction deltas out to it
// and route queries to it (§4.6 "Plugin contract").
type IndexPlugin interface {
	// Name identifies the plugin for logging and diagnostics.
	Name() string

	// IndexType reports which index kind this plugin backs.
	IndexType() IndexType

	// SupportsQuery reports whether this plugin can serve the given
	// query type, used both for routing and for deciding which plugins
	// a Strict-consistency wait must include. Commit's fan-out does not
	// consult it: every registered plugin receives every delta.
	SupportsQuery(qt QueryType) bool

	// ApplyDelta incorporates one committed transaction. progress is
	// non-nil only for plugins that rebuild incrementally in the
	// background; cost_ms measures the synchronous portion of the call.
	ApplyDelta(ctx context.Context, delta model.TransactionDelta) (progress *RebuildProgress, costMs int64, err error)

	// Rebuild reindexes from scratch against the given snapshot.
	Rebuild(ctx context.Context, repoID, snapshotID string) (costMs int64, err error)

	// Health reports the plugin's current health.
	Health() PluginHealth

	// Stats reports the plugin's current operating statistics.
	Stats() PluginStats

	// AppliedUpTo reports the highest TxnID this plugin has fully
	// applied; the orchestrator's Strict consistency wait polls this.
	AppliedUpTo() TxnID
}

// now is a seam for deterministic tests; production code always uses
// time.Now.
var now = time.Now
