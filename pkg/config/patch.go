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

import "github.com/kraklabs/codegraph/pkg/pipeline"

// PointsToPatch overrides a subset of PointsToSettings; nil fields leave
// the base value untouched (§4.7 "applying a patch overrides only
// supplied fields on top of preset-derived base").
type PointsToPatch struct {
	Mode               *pipeline.PTAMode
	FieldSensitive     *bool
	ContextSensitivity *int
}

type TaintPatch struct {
	UsePointsTo      *bool
	FieldSensitive   *bool
	UseSSA           *bool
	DetectSanitizers *bool
	MaxDepth         *int
	MaxPaths         *int
	Sources          map[string]map[string]bool
	Sinks            map[string]map[string]bool
	Sanitizers       []string
}

type PropagationPatch struct {
	MaxIterations *int
}

type ClonePatch struct {
	MinSimilarity *float64
}

type ConcurrencyPatch struct {
	Verbose *bool
}

type RepoMapPatch struct {
	SymbolBudget  *int
	Damping       *float64
	MaxIterations *int
	Tolerance     *float64
}

// Patch is an all-optional bundle of per-stage overrides plus optional
// stage enable/disable toggles. Any field left nil/empty is a no-op when
// applied.
type Patch struct {
	Stages map[pipeline.StageName]bool

	PointsTo    *PointsToPatch
	Taint       *TaintPatch
	Propagation *PropagationPatch
	Clone       *ClonePatch
	Concurrency *ConcurrencyPatch
	RepoMap     *RepoMapPatch
}

// apply merges patch into settings, recording every touched field's
// provenance as src, and returns the updated stage toggle map (nil if
// the patch didn't touch toggles).
func applyPatch(settings *Settings, patch Patch, pm ProvenanceMap, src Provenance) map[pipeline.StageName]bool {
	if patch.PointsTo != nil {
		p := patch.PointsTo
		if p.Mode != nil {
			settings.PointsTo.Mode = *p.Mode
			pm.record("points_to.mode", src)
		}
		if p.FieldSensitive != nil {
			settings.PointsTo.FieldSensitive = *p.FieldSensitive
			pm.record("points_to.field_sensitive", src)
		}
		if p.ContextSensitivity != nil {
			settings.PointsTo.ContextSensitivity = *p.ContextSensitivity
			pm.record("points_to.context_sensitivity", src)
		}
	}

	if patch.Taint != nil {
		p := patch.Taint
		if p.UsePointsTo != nil {
			settings.Taint.Config.UsePointsTo = *p.UsePointsTo
			pm.record("taint.use_points_to", src)
		}
		if p.FieldSensitive != nil {
			settings.Taint.Config.FieldSensitive = *p.FieldSensitive
			pm.record("taint.field_sensitive", src)
		}
		if p.UseSSA != nil {
			settings.Taint.Config.UseSSA = *p.UseSSA
			pm.record("taint.use_ssa", src)
		}
		if p.DetectSanitizers != nil {
			settings.Taint.Config.DetectSanitizers = *p.DetectSanitizers
			pm.record("taint.detect_sanitizers", src)
		}
		if p.MaxDepth != nil {
			settings.Taint.Config.MaxDepth = *p.MaxDepth
			pm.record("taint.max_depth", src)
		}
		if p.MaxPaths != nil {
			settings.Taint.Config.MaxPaths = *p.MaxPaths
			pm.record("taint.max_paths", src)
		}
		if p.Sources != nil {
			settings.Taint.Sources = p.Sources
			pm.record("taint.sources", src)
		}
		if p.Sinks != nil {
			settings.Taint.Sinks = p.Sinks
			pm.record("taint.sinks", src)
		}
		if p.Sanitizers != nil {
			settings.Taint.Sanitizers = p.Sanitizers
			pm.record("taint.sanitizers", src)
		}
	}

	if patch.Propagation != nil && patch.Propagation.MaxIterations != nil {
		settings.Propagation.MaxIterations = *patch.Propagation.MaxIterations
		pm.record("propagation.max_iterations", src)
	}

	if patch.Clone != nil && patch.Clone.MinSimilarity != nil {
		settings.Clone.MinSimilarity = *patch.Clone.MinSimilarity
		pm.record("clone.min_similarity", src)
	}

	if patch.Concurrency != nil && patch.Concurrency.Verbose != nil {
		settings.Concurrency.Verbose = *patch.Concurrency.Verbose
		pm.record("concurrency.verbose", src)
	}

	if patch.RepoMap != nil {
		p := patch.RepoMap
		if p.SymbolBudget != nil {
			settings.RepoMap.SymbolBudget = *p.SymbolBudget
			pm.record("repo_map.symbol_budget", src)
		}
		if p.Damping != nil {
			settings.RepoMap.Damping = *p.Damping
			pm.record("repo_map.damping", src)
		}
		if p.MaxIterations != nil {
			settings.RepoMap.MaxIterations = *p.MaxIterations
			pm.record("repo_map.max_iterations", src)
		}
		if p.Tolerance != nil {
			settings.RepoMap.Tolerance = *p.Tolerance
			pm.record("repo_map.tolerance", src)
		}
	}

	return patch.Stages
}
