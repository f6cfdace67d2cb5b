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
	"fmt"

	"github.com/kraklabs/codegraph/pkg/pipeline"
	"github.com/kraklabs/codegraph/pkg/pipeline/propagation"
	"github.com/kraklabs/codegraph/pkg/pipeline/taint"
)

// Preset is a named bundle of stage toggles and settings defaults
// (§4.7 "Preset ... supplying defaults via StageConfig::from_preset").
type Preset string

const (
	// Fast runs only the structural stages: IR, chunking, cross-file
	// linking, occurrences, and symbol resolution. No alias, taint, or
	// clone analysis.
	Fast Preset = "fast"
	// Balanced adds points-to, heap, SSA, DFG, and repo-map summarization
	// to the Fast set, but skips the most expensive whole-program passes.
	Balanced Preset = "balanced"
	// Thorough runs every stage the DAG knows about.
	Thorough Preset = "thorough"
)

func (p Preset) Valid() bool {
	switch p {
	case Fast, Balanced, Thorough:
		return true
	default:
		return false
	}
}

// allStages is every stage the config layer can toggle, in no particular
// order (ordering is the DAG's concern, not the config's).
var allStages = []pipeline.StageName{
	pipeline.L1IRBuild, pipeline.L2Chunking, pipeline.L3CrossFile,
	pipeline.L4Occurrences, pipeline.L5Symbols, pipeline.L6PointsTo,
	pipeline.L7Heap, pipeline.L8SSA, pipeline.L9DFG, pipeline.L14Taint,
	pipeline.L15Propagation, pipeline.L16RepoMap, pipeline.L17PDG,
	pipeline.L18Slicing, pipeline.L20Clone, pipeline.L21Concurrency,
}

// defaultStageSet returns which stages preset turns on by default.
func defaultStageSet(preset Preset) map[pipeline.StageName]bool {
	fastOn := map[pipeline.StageName]bool{
		pipeline.L1IRBuild:     true,
		pipeline.L2Chunking:    true,
		pipeline.L3CrossFile:   true,
		pipeline.L4Occurrences: true,
		pipeline.L5Symbols:     true,
	}
	if preset == Fast {
		return fastOn
	}

	balancedOn := map[pipeline.StageName]bool{
		pipeline.L6PointsTo: true,
		pipeline.L7Heap:     true,
		pipeline.L8SSA:      true,
		pipeline.L9DFG:      true,
		pipeline.L16RepoMap: true,
	}
	for name, on := range balancedOn {
		fastOn[name] = on
	}
	if preset == Balanced {
		return fastOn
	}

	thoroughOn := map[pipeline.StageName]bool{
		pipeline.L14Taint:       true,
		pipeline.L15Propagation: true,
		pipeline.L17PDG:         true,
		pipeline.L18Slicing:     true,
		pipeline.L20Clone:       true,
		pipeline.L21Concurrency: true,
	}
	for name, on := range thoroughOn {
		fastOn[name] = on
	}
	return fastOn
}

// defaultSettings returns preset's defaults for every stage that has
// tunables. Fast and Balanced still populate Settings for stages they
// don't enable by default, so a later WithStage(..., true) has sane
// values to start from.
func defaultSettings(preset Preset) Settings {
	s := Settings{
		PointsTo: PointsToSettings{
			Mode:               pipeline.PTAAndersen,
			FieldSensitive:     true,
			ContextSensitivity: 1,
		},
		Taint: TaintSettings{
			Config: taint.DefaultConfig(),
		},
		Propagation: PropagationSettings{
			Mode:          propagation.Sparse,
			MaxIterations: 0,
		},
		Clone: CloneSettings{
			MinSimilarity: 0.6,
		},
		RepoMap: RepoMapSettings{
			Damping:       0.85,
			MaxIterations: 100,
			Tolerance:     1e-6,
		},
	}

	switch preset {
	case Fast:
		s.PointsTo.Mode = pipeline.PTASteensgaard
		s.PointsTo.FieldSensitive = false
		s.Taint.Config.UsePointsTo = false
		s.Taint.Config.PTAMode = taint.Fast
		s.Taint.Config.FieldSensitive = false
		s.Taint.Config.MaxDepth = 15
		s.Taint.Config.MaxPaths = 100
		s.RepoMap.SymbolBudget = 200
	case Thorough:
		s.Taint.Config.MaxDepth = 50
		s.Taint.Config.MaxPaths = 1000
		s.RepoMap.SymbolBudget = 0 // unlimited
	default: // Balanced
		s.Taint.Config.MaxDepth = 30
		s.Taint.Config.MaxPaths = 500
		s.RepoMap.SymbolBudget = 500
	}
	return s
}

func (p Preset) String() string { return string(p) }

func parsePreset(s string) (Preset, error) {
	p := Preset(s)
	if !p.Valid() {
		return "", fmt.Errorf("config: unknown preset %q", s)
	}
	return p, nil
}
