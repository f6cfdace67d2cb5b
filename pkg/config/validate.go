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

// Validate checks c against §4.7's numeric-range and enumeration rules
// plus the stage dependency graph. It returns the first violation found.
func Validate(c *Config) error {
	if !c.Preset.Valid() {
		return fmt.Errorf("config: invalid preset %q", c.Preset)
	}

	if err := pipeline.ValidateStageSet(c.Stages); err != nil {
		return err
	}

	s := &c.Settings

	if s.PointsTo.ContextSensitivity < 1 || s.PointsTo.ContextSensitivity > 3 {
		return fmt.Errorf("config: points_to.context_sensitivity must be in (0, 3], got %d", s.PointsTo.ContextSensitivity)
	}
	switch s.PointsTo.Mode {
	case pipeline.PTASteensgaard, pipeline.PTAAndersen:
	default:
		return fmt.Errorf("config: points_to.mode %q is not a known PTA mode", s.PointsTo.Mode)
	}

	switch s.Taint.Config.PTAMode {
	case taint.Fast, taint.Precise:
	default:
		return fmt.Errorf("config: taint.pta_mode %d is not a known taint mode", s.Taint.Config.PTAMode)
	}
	if s.Taint.Config.MaxDepth <= 0 {
		return fmt.Errorf("config: taint.max_depth must be positive, got %d", s.Taint.Config.MaxDepth)
	}
	if s.Taint.Config.MaxPaths <= 0 {
		return fmt.Errorf("config: taint.max_paths must be positive, got %d", s.Taint.Config.MaxPaths)
	}
	if c.Enabled(pipeline.L14Taint) && len(s.Taint.Sources) == 0 {
		return fmt.Errorf("config: taint is enabled but no source functions are configured")
	}
	if c.Enabled(pipeline.L14Taint) && len(s.Taint.Sinks) == 0 {
		return fmt.Errorf("config: taint is enabled but no sink functions are configured")
	}

	switch s.Propagation.Mode {
	case propagation.Sparse, propagation.Dense:
	default:
		return fmt.Errorf("config: propagation.mode %d is not a known propagation mode", s.Propagation.Mode)
	}
	if s.Propagation.MaxIterations < 0 {
		return fmt.Errorf("config: propagation.max_iterations must be >= 0, got %d", s.Propagation.MaxIterations)
	}

	if s.Clone.MinSimilarity < 0 || s.Clone.MinSimilarity > 1 {
		return fmt.Errorf("config: clone.min_similarity must be in [0, 1], got %v", s.Clone.MinSimilarity)
	}

	if s.RepoMap.Damping <= 0 || s.RepoMap.Damping >= 1 {
		return fmt.Errorf("config: repo_map.damping must be in (0, 1), got %v", s.RepoMap.Damping)
	}
	if s.RepoMap.MaxIterations <= 0 {
		return fmt.Errorf("config: repo_map.max_iterations must be positive, got %d", s.RepoMap.MaxIterations)
	}
	if s.RepoMap.SymbolBudget < 0 {
		return fmt.Errorf("config: repo_map.symbol_budget must be >= 0, got %d", s.RepoMap.SymbolBudget)
	}

	return nil
}
