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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/pipeline"
)

func TestBuilder_FastPresetBuildsCleanly(t *testing.T) {
	cfg, err := NewBuilder(Fast).Build()

	require.NoError(t, err)
	assert.True(t, cfg.Enabled(pipeline.L1IRBuild))
	assert.False(t, cfg.Enabled(pipeline.L14Taint), "Fast shouldn't run taint")
}

func TestBuilder_ThoroughPresetRequiresSourcesAndSinks(t *testing.T) {
	_, err := NewBuilder(Thorough).Build()

	assert.Error(t, err, "Thorough enables taint by default but supplies no sources/sinks")
}

func TestBuilder_ThoroughPresetBuildsOnceSourcesSuppliedAnalysisSources(t *testing.T) {
	patch := Patch{
		Taint: &TaintPatch{
			Sources: map[string]map[string]bool{"handleRequest": {"body": true}},
			Sinks:   map[string]map[string]bool{"execQuery": {"sql": true}},
		},
	}

	cfg, err := NewBuilder(Thorough).ApplyPatch(patch, ProvenanceBuilder).Build()

	require.NoError(t, err)
	assert.True(t, cfg.Enabled(pipeline.L14Taint))
}

func TestBuilder_EnablingTaintWithoutPointsToIsRejected(t *testing.T) {
	b := NewBuilder(Fast).
		WithStage(pipeline.L14Taint, true)
	b.ApplyPatch(Patch{Taint: &TaintPatch{
		Sources: map[string]map[string]bool{"f": {"x": true}},
		Sinks:   map[string]map[string]bool{"g": {"y": true}},
	}}, ProvenanceBuilder)

	_, err := b.Build()

	assert.Error(t, err, "taint hard-depends on points-to")
}

func TestBuilder_EnablingSlicingWithoutPDGIsRejected(t *testing.T) {
	_, err := NewBuilder(Fast).WithStage(pipeline.L18Slicing, true).Build()

	assert.Error(t, err)
}

func TestBuilder_EnablingHeapWithoutPointsToIsRejected(t *testing.T) {
	_, err := NewBuilder(Fast).WithStage(pipeline.L7Heap, true).Build()

	assert.Error(t, err)
}

func TestBuilder_ContextSensitivityOutOfRangeIsRejected(t *testing.T) {
	bad := 4
	patch := Patch{PointsTo: &PointsToPatch{ContextSensitivity: &bad}}

	_, err := NewBuilder(Balanced).ApplyPatch(patch, ProvenanceBuilder).Build()

	assert.Error(t, err)
}

func TestBuilder_CloneThresholdOutOfRangeIsRejected(t *testing.T) {
	bad := 1.5
	patch := Patch{Clone: &ClonePatch{MinSimilarity: &bad}}

	_, err := NewBuilder(Balanced).ApplyPatch(patch, ProvenanceBuilder).Build()

	assert.Error(t, err)
}

func TestBuilder_ProvenanceTracksPatchSource(t *testing.T) {
	depth := 12
	patch := Patch{Taint: &TaintPatch{MaxDepth: &depth}}

	b := NewBuilder(Balanced)
	b.WithStage(pipeline.L14Taint, true)
	b.ApplyPatch(patch, ProvenanceFile)
	b.ApplyPatch(Patch{Taint: &TaintPatch{
		Sources: map[string]map[string]bool{"f": {"x": true}},
		Sinks:   map[string]map[string]bool{"g": {"y": true}},
	}}, ProvenanceFile)
	cfg, err := b.Build()

	require.NoError(t, err)
	assert.Equal(t, ProvenanceFile, cfg.Provenance.Of("taint.max_depth"))
	assert.Equal(t, ProvenanceBuilder, cfg.Provenance.Of("stage."+string(pipeline.L14Taint)))
	assert.Equal(t, ProvenancePreset, cfg.Provenance.Of("clone.min_similarity"), "untouched field stays attributed to the preset")
	assert.Equal(t, depth, cfg.Settings.Taint.Config.MaxDepth)
}

func TestBuilder_LaterPatchOverridesEarlierOne(t *testing.T) {
	first, second := 10, 20
	b := NewBuilder(Balanced)
	b.ApplyPatch(Patch{Propagation: &PropagationPatch{MaxIterations: &first}}, ProvenancePreset)
	b.ApplyPatch(Patch{Propagation: &PropagationPatch{MaxIterations: &second}}, ProvenanceBuilder)

	cfg, err := b.Build()

	require.NoError(t, err)
	assert.Equal(t, second, cfg.Settings.Propagation.MaxIterations)
	assert.Equal(t, ProvenanceBuilder, cfg.Provenance.Of("propagation.max_iterations"))
}

func TestLoadFile_MissingFileIsNotAnError(t *testing.T) {
	preset, patch, err := LoadFile(filepath.Join(t.TempDir(), "project.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Preset(""), preset)
	assert.Equal(t, Patch{}, patch)
}

func TestLoadFile_RoundTripsPresetAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0o750))
	contents := `
preset: thorough
stages:
  L20_CloneDetection: false
clone:
  min_similarity: 0.8
taint:
  max_depth: 40
  sources:
    handleRequest:
      body: true
  sinks:
    execQuery:
      sql: true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	preset, patch, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, Thorough, preset)
	require.NotNil(t, patch.Clone)
	assert.Equal(t, 0.8, *patch.Clone.MinSimilarity)
	require.NotNil(t, patch.Taint)
	assert.Equal(t, 40, *patch.Taint.MaxDepth)
	assert.False(t, patch.Stages[pipeline.L20Clone])

	cfg, err := NewBuilder(preset).ApplyPatch(patch, ProvenanceFile).Build()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled(pipeline.L20Clone))
	assert.Equal(t, 0.8, cfg.Settings.Clone.MinSimilarity)
}

func TestLoadEnv_PresetAndTaintOverrides(t *testing.T) {
	t.Setenv("CODEGRAPH_PRESET", "fast")
	t.Setenv("CODEGRAPH_TAINT_MAX_DEPTH", "7")

	preset, patch, err := LoadEnv()

	require.NoError(t, err)
	assert.Equal(t, Fast, preset)
	require.NotNil(t, patch.Taint)
	assert.Equal(t, 7, *patch.Taint.MaxDepth)
}

func TestLoadEnv_InvalidPresetErrors(t *testing.T) {
	t.Setenv("CODEGRAPH_PRESET", "blazing")

	_, _, err := LoadEnv()

	assert.Error(t, err)
}
