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

	"github.com/kraklabs/codegraph/pkg/model"
	"github.com/kraklabs/codegraph/pkg/pipeline/taint"
)

// callGraphFromEdges is a taint.CallGraphProvider backed by a plain
// adjacency map built once from the document's Calls edges.
type callGraphFromEdges map[string][]string

func (g callGraphFromEdges) Callees(function string) []string { return g[function] }

// TaintStage implements L14 (§4.3.6): builds a function-level call graph
// from Calls edges and runs the SOTA taint.Analyzer over it. Sources and
// sinks are operator-supplied (this IR carries no "this function is a
// taint source" annotation of its own), keyed by function name.
type TaintStage struct {
	Config     taint.Config
	Sources    map[string]map[string]bool
	Sinks      map[string]map[string]bool
	Sanitizers []string

	// Paths is populated by Execute: every taint path that survived all
	// enabled filters.
	Paths []taint.Path
}

func (s *TaintStage) Name() StageName { return L14Taint }

func (s *TaintStage) Execute(ctx context.Context, r *Run) error {
	funcs := functionsOf(r.Doc)
	owner := blockOwnerIndex(r.Doc, funcs)
	byID := r.Doc.NodeIndex()

	graph := make(callGraphFromEdges)
	for _, e := range r.Doc.Edges {
		if e.Kind != model.EdgeCalls {
			continue
		}
		callerFn := owner[e.SourceID]
		if callerFn == "" {
			continue
		}
		callerName := varName(byID, callerFn)
		calleeName := varName(byID, e.TargetID)
		graph[callerName] = append(graph[callerName], calleeName)
	}

	cfg := s.Config
	if cfg == (taint.Config{}) {
		cfg = taint.DefaultConfig()
	}
	analyzer := taint.NewAnalyzer(graph, cfg)
	for _, name := range s.Sanitizers {
		analyzer.AddSanitizer(name)
	}

	sources := s.Sources
	if sources == nil {
		sources = map[string]map[string]bool{}
	}
	sinks := s.Sinks
	if sinks == nil {
		sinks = map[string]map[string]bool{}
	}

	s.Paths = analyzer.Analyze(sources, sinks)
	return nil
}
