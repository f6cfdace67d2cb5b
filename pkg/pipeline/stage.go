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

package pipeline

import (
	"context"
	"time"

	"github.com/kraklabs/codegraph/pkg/model"
)

// StageName is the stable set of pipeline stage identifiers (§4.3, §4.9
// "Stage names form the stable set").
type StageName string

const (
	L1IRBuild      StageName = "L1_IR_Build"
	L2Chunking     StageName = "L2_Chunking"
	L3CrossFile    StageName = "L3_CrossFile"
	L4Occurrences  StageName = "L4_Occurrences"
	L5Symbols      StageName = "L5_Symbols"
	L6PointsTo     StageName = "L6_PointsTo"
	L7Heap         StageName = "L7_Heap"
	L8SSA          StageName = "L8_SSA"
	L9DFG          StageName = "L9_DFG"
	L14Taint       StageName = "L14_TaintAnalysis"
	L15Propagation StageName = "L15_Propagation"
	L16RepoMap     StageName = "L16_RepoMap"
	L17PDG         StageName = "L17_PDG"
	L18Slicing     StageName = "L18_Slicing"
	L20Clone       StageName = "L20_CloneDetection"
	L21Concurrency StageName = "L21_Concurrency"
)

// knownOrder lists the known stages in their stable order. No function in
// this package orders StageName values by it, so nothing places unknown
// names after the known ones.
var knownOrder = []StageName{
	L1IRBuild, L2Chunking, L3CrossFile, L4Occurrences, L5Symbols,
	L8SSA, L9DFG, L6PointsTo, L7Heap, L14Taint, L15Propagation,
	L16RepoMap, L17PDG, L18Slicing, L20Clone, L21Concurrency,
}

// stageDependencies encodes the hard dependency edges a config builder
// must respect (§4.7): enabling a stage whose dependency is disabled is a
// configuration error.
var stageDependencies = map[StageName][]StageName{
	L2Chunking:     {L1IRBuild},
	L3CrossFile:    {L1IRBuild},
	L4Occurrences:  {L3CrossFile},
	L5Symbols:      {L4Occurrences},
	L8SSA:          {L5Symbols},
	L9DFG:          {L5Symbols},
	L6PointsTo:     {L5Symbols},
	L7Heap:         {L6PointsTo},
	L14Taint:       {L6PointsTo},
	L17PDG:         {L9DFG},
	L18Slicing:     {L17PDG},
	L15Propagation: {L8SSA},
}

// DependenciesOf returns the stages name hard-depends on.
func DependenciesOf(name StageName) []StageName { return stageDependencies[name] }

// Diagnostic is a non-fatal note a stage attaches to the run instead of
// aborting it (e.g. a parse failure attached to a File node, §4.2
// "Error behavior").
type Diagnostic struct {
	Stage   StageName
	NodeID  string
	Message string
	Err     error
}

// Run is the mutable state threaded through a pipeline execution: the IR
// document every stage reads and extends, plus accumulated diagnostics.
type Run struct {
	Doc         *model.IRDocument
	Gen         *model.IDGenerator
	RepoID      string
	SnapshotID  string
	Chunks      []model.Chunk
	Occurrences map[string][]string // symbol FQN -> referencing node IDs, built by L4
	Diagnostics []Diagnostic

	// StageDurations records how long each stage took to execute, keyed by
	// its StageName (§6 "IndexingResult.stage_durations"). Populated by
	// DAG.Run; nil until a DAG has executed at least one stage.
	StageDurations map[StageName]time.Duration
}

// Duration returns how long stage took to run, or zero if it hasn't run
// (or StageDurations hasn't been populated yet).
func (r *Run) Duration(stage StageName) time.Duration {
	return r.StageDurations[stage]
}

// AddDiagnostic records a non-fatal stage failure and lets the pipeline
// continue, per the "parser failures yield partial results" contract.
func (r *Run) AddDiagnostic(stage StageName, nodeID, message string, err error) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Stage: stage, NodeID: nodeID, Message: message, Err: err})
}

// Stage is one node in the fixed analysis DAG. Execute is additive: it may
// append to r.Doc.Nodes/Edges or r.Diagnostics and never removes entries
// another stage already produced. The one in-place change is L3
// (CrossFileStage) rewriting the TargetID of "unresolved:" Calls edges.
type Stage interface {
	Name() StageName
	Execute(ctx context.Context, r *Run) error
}

// DAG runs a fixed ordered sequence of stages, stopping at the first stage
// that returns a hard error (config/storage-level failures, not per-node
// diagnostics, which stages record on Run instead).
type DAG struct {
	stages []Stage
}

// NewDAG builds a DAG from stages in the order they should run. Callers
// are responsible for ordering stages consistently with stageDependencies;
// NewDAG does not reorder them.
func NewDAG(stages ...Stage) *DAG {
	return &DAG{stages: stages}
}

// Run executes every stage in order against r, timing each one into
// r.StageDurations and recording it via the package's Prometheus
// histograms (stageMetrics, mirroring the teacher's per-phase ingestion
// histograms).
func (d *DAG) Run(ctx context.Context, r *Run) error {
	if r.StageDurations == nil {
		r.StageDurations = make(map[StageName]time.Duration, len(d.stages))
	}
	for _, s := range d.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := s.Execute(ctx, r)
		elapsed := time.Since(start)
		r.StageDurations[s.Name()] = elapsed
		stageMetrics.observe(s.Name(), elapsed)
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidateStageSet checks that every enabled stage's hard dependencies are
// also enabled, per §4.3's "enabling a stage whose dependency is disabled
// is a configuration error".
func ValidateStageSet(enabled map[StageName]bool) error {
	for name, on := range enabled {
		if !on {
			continue
		}
		for _, dep := range stageDependencies[name] {
			if !enabled[dep] {
				return &model.AnalysisError{
					Kind:    model.ErrConfig,
					Message: "stage " + string(name) + " requires " + string(dep) + " to be enabled",
				}
			}
		}
	}
	return nil
}
