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
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/codegraph/pkg/pipeline"
)

// ConfigDir returns the .codegraph directory under root.
func ConfigDir(root string) string { return filepath.Join(root, ".codegraph") }

// ConfigPath returns the project.yaml path under root.
func ConfigPath(root string) string { return filepath.Join(ConfigDir(root), "project.yaml") }

// fileConfig is the on-disk shape of .codegraph/project.yaml: a preset
// name plus the same optional overrides a Patch carries, so loading a
// file and applying a Patch go through one merge path.
type fileConfig struct {
	Preset string          `yaml:"preset,omitempty"`
	Stages map[string]bool `yaml:"stages,omitempty"`

	PointsTo *struct {
		Mode               string `yaml:"mode,omitempty"`
		FieldSensitive     *bool  `yaml:"field_sensitive,omitempty"`
		ContextSensitivity *int   `yaml:"context_sensitivity,omitempty"`
	} `yaml:"points_to,omitempty"`

	Taint *struct {
		UsePointsTo      *bool                      `yaml:"use_points_to,omitempty"`
		FieldSensitive   *bool                      `yaml:"field_sensitive,omitempty"`
		UseSSA           *bool                      `yaml:"use_ssa,omitempty"`
		DetectSanitizers *bool                      `yaml:"detect_sanitizers,omitempty"`
		MaxDepth         *int                       `yaml:"max_depth,omitempty"`
		MaxPaths         *int                       `yaml:"max_paths,omitempty"`
		Sources          map[string]map[string]bool `yaml:"sources,omitempty"`
		Sinks            map[string]map[string]bool `yaml:"sinks,omitempty"`
		Sanitizers       []string                   `yaml:"sanitizers,omitempty"`
	} `yaml:"taint,omitempty"`

	Propagation *struct {
		MaxIterations *int `yaml:"max_iterations,omitempty"`
	} `yaml:"propagation,omitempty"`

	Clone *struct {
		MinSimilarity *float64 `yaml:"min_similarity,omitempty"`
	} `yaml:"clone,omitempty"`

	Concurrency *struct {
		Verbose *bool `yaml:"verbose,omitempty"`
	} `yaml:"concurrency,omitempty"`

	RepoMap *struct {
		SymbolBudget  *int     `yaml:"symbol_budget,omitempty"`
		Damping       *float64 `yaml:"damping,omitempty"`
		MaxIterations *int     `yaml:"max_iterations,omitempty"`
		Tolerance     *float64 `yaml:"tolerance,omitempty"`
	} `yaml:"repo_map,omitempty"`
}

// LoadFile reads path (typically ConfigPath(root)) and returns the
// preset it names (empty if unset) plus the Patch built from its
// overrides. A missing file is not an error: it returns a zero Patch and
// an empty preset, since project.yaml is optional.
func LoadFile(path string) (Preset, Patch, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", Patch{}, nil
	}
	if err != nil {
		return "", Patch{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return "", Patch{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	var preset Preset
	if fc.Preset != "" {
		preset, err = parsePreset(fc.Preset)
		if err != nil {
			return "", Patch{}, err
		}
	}

	patch := Patch{}
	if len(fc.Stages) > 0 {
		patch.Stages = make(map[pipeline.StageName]bool, len(fc.Stages))
		for name, on := range fc.Stages {
			patch.Stages[pipeline.StageName(name)] = on
		}
	}
	if fc.PointsTo != nil {
		p := &PointsToPatch{FieldSensitive: fc.PointsTo.FieldSensitive, ContextSensitivity: fc.PointsTo.ContextSensitivity}
		if fc.PointsTo.Mode != "" {
			mode := pipeline.PTAMode(fc.PointsTo.Mode)
			p.Mode = &mode
		}
		patch.PointsTo = p
	}
	if fc.Taint != nil {
		patch.Taint = &TaintPatch{
			UsePointsTo:      fc.Taint.UsePointsTo,
			FieldSensitive:   fc.Taint.FieldSensitive,
			UseSSA:           fc.Taint.UseSSA,
			DetectSanitizers: fc.Taint.DetectSanitizers,
			MaxDepth:         fc.Taint.MaxDepth,
			MaxPaths:         fc.Taint.MaxPaths,
			Sources:          fc.Taint.Sources,
			Sinks:            fc.Taint.Sinks,
			Sanitizers:       fc.Taint.Sanitizers,
		}
	}
	if fc.Propagation != nil {
		patch.Propagation = &PropagationPatch{MaxIterations: fc.Propagation.MaxIterations}
	}
	if fc.Clone != nil {
		patch.Clone = &ClonePatch{MinSimilarity: fc.Clone.MinSimilarity}
	}
	if fc.Concurrency != nil {
		patch.Concurrency = &ConcurrencyPatch{Verbose: fc.Concurrency.Verbose}
	}
	if fc.RepoMap != nil {
		patch.RepoMap = &RepoMapPatch{
			SymbolBudget:  fc.RepoMap.SymbolBudget,
			Damping:       fc.RepoMap.Damping,
			MaxIterations: fc.RepoMap.MaxIterations,
			Tolerance:     fc.RepoMap.Tolerance,
		}
	}

	return preset, patch, nil
}
