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

package config

import (
	"github.com/kraklabs/codegraph/pkg/pipeline"
	"github.com/kraklabs/codegraph/pkg/pipeline/propagation"
	"github.com/kraklabs/codegraph/pkg/pipeline/taint"
)

// PointsToSettings configures L6 (§4.3.4). ContextSensitivity is
// validated (0 < n <= 3) and carried for forward compatibility, but
// today's solvers (Steensgaard, Andersen) are unification/inclusion-based
// and context-insensitive, so it isn't yet consumed by PointsToStage —
// the same "reserved hook" shape as concurrency's ThreadLocal filter.
type PointsToSettings struct {
	Mode               pipeline.PTAMode
	FieldSensitive     bool
	ContextSensitivity int
}

// TaintSettings configures L14 (§4.3.6), mirroring taint.Config plus the
// operator-supplied source/sink/sanitizer tables TaintStage needs since
// this IR carries no source/sink annotations of its own.
type TaintSettings struct {
	Config     taint.Config
	Sources    map[string]map[string]bool
	Sinks      map[string]map[string]bool
	Sanitizers []string
}

// PropagationSettings configures L15 (§4.3.7).
type PropagationSettings struct {
	Mode          propagation.Mode
	MaxIterations int
}

// CloneSettings configures L20 (§4.3.9).
type CloneSettings struct {
	MinSimilarity float64
}

// ConcurrencySettings configures L21 (§4.3.10).
type ConcurrencySettings struct {
	Verbose bool
}

// RepoMapSettings configures L16 (§4.3.11).
type RepoMapSettings struct {
	SymbolBudget  int
	Damping       float64
	MaxIterations int
	Tolerance     float64
}

// Settings bundles the resolved, patch-applied tuning knobs for every
// stage that has one. Stages with no tunables (IR build, chunking,
// cross-file, occurrences, symbols, SSA, DFG, heap, PDG, slicing) have no
// entry here; they run the same way regardless of preset.
type Settings struct {
	PointsTo    PointsToSettings
	Taint       TaintSettings
	Propagation PropagationSettings
	Clone       CloneSettings
	Concurrency ConcurrencySettings
	RepoMap     RepoMapSettings
}
