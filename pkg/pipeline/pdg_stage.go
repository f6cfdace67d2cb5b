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
	"sort"

	"github.com/kraklabs/codegraph/pkg/model"
	"github.com/kraklabs/codegraph/pkg/pipeline/pdg"
)

// PDGStage implements L17 (§4.3.5): for each function, turns its
// expression-level nodes into PDG nodes and its DataFlow edges (from L9)
// into Data dependencies, its ControlFlow/CfgBranch edges into Control
// dependencies, then builds a Graph ready for a Slicer to query.
type PDGStage struct {
	// Graphs is populated by Execute, keyed by the owning function's node
	// id.
	Graphs map[string]*pdg.Graph
}

func (s *PDGStage) Name() StageName { return L17PDG }

func (s *PDGStage) Execute(ctx context.Context, r *Run) error {
	s.Graphs = make(map[string]*pdg.Graph)

	funcs := functionsOf(r.Doc)
	owner := blockOwnerIndex(r.Doc, funcs)
	byID := r.Doc.NodeIndex()

	type depEdge struct {
		from, to string
		kind     pdg.DependencyType
		label    string
	}
	var dataEdges, controlEdges []depEdge
	for _, e := range r.Doc.Edges {
		switch e.Kind {
		case model.EdgeDataFlow:
			dataEdges = append(dataEdges, depEdge{e.SourceID, e.TargetID, pdg.Data, e.Attrs})
		case model.EdgeControlFlow, model.EdgeCfgBranch:
			controlEdges = append(controlEdges, depEdge{e.SourceID, e.TargetID, pdg.Control, e.Attrs})
		}
	}

	writesOf := make(map[string][]string)
	readsOf := make(map[string][]string)
	for _, e := range r.Doc.Edges {
		switch e.Kind {
		case model.EdgeWrites:
			writesOf[e.SourceID] = append(writesOf[e.SourceID], varName(byID, e.TargetID))
		case model.EdgeReads:
			readsOf[e.SourceID] = append(readsOf[e.SourceID], varName(byID, e.TargetID))
		}
	}

	nodesByFunc := make(map[string][]string)
	seen := make(map[string]bool)
	addNode := func(fn, id string) {
		if fn == "" || seen[id] {
			return
		}
		seen[id] = true
		nodesByFunc[fn] = append(nodesByFunc[fn], id)
	}
	for id, fn := range owner {
		addNode(fn, id)
	}

	for _, fn := range funcs {
		ids := nodesByFunc[fn.ID]
		sort.Slice(ids, func(i, j int) bool {
			return model.Compare(byID[ids[i]].Span, byID[ids[j]].Span) < 0
		})

		g := pdg.New(fn.ID)
		for _, id := range ids {
			n, ok := byID[id]
			if !ok {
				continue
			}
			g.AddNode(pdg.Node{
				ID:         id,
				Statement:  n.Name,
				LineNumber: n.Span.StartLine,
				FilePath:   n.FilePath,
				Span:       n.Span,
			}.WithVars(writesOf[id], readsOf[id]))
		}
		for _, de := range dataEdges {
			if owner[de.from] != fn.ID || owner[de.to] != fn.ID {
				continue
			}
			g.AddEdge(pdg.Edge{From: de.from, To: de.to, Type: pdg.Data, Label: de.label})
		}
		for _, ce := range controlEdges {
			if owner[ce.from] != fn.ID || owner[ce.to] != fn.ID {
				continue
			}
			g.AddEdge(pdg.Edge{From: ce.from, To: ce.to, Type: pdg.Control, Label: ce.label})
		}
		s.Graphs[fn.ID] = g
	}
	return nil
}

// SlicingStage implements L18 (§4.3.5): wraps each function's Graph from
// L17 in a Slicer, ready for backward/forward/hybrid/thin/chop queries.
type SlicingStage struct {
	// Config, if non-nil, overrides the Slicer's default config for every
	// function's Slicer.
	Config *pdg.Config

	// Slicers is populated by Execute, keyed by the owning function's node
	// id. Each function gets its own Slicer so cache invalidation on one
	// function's graph never evicts another's.
	Slicers map[string]*pdg.Slicer
}

func (s *SlicingStage) Name() StageName { return L18Slicing }

func (s *SlicingStage) Execute(ctx context.Context, r *Run) error {
	s.Slicers = make(map[string]*pdg.Slicer)
	for _, fn := range functionsOf(r.Doc) {
		if s.Config != nil {
			s.Slicers[fn.ID] = pdg.NewSlicerWithConfig(*s.Config)
		} else {
			s.Slicers[fn.ID] = pdg.NewSlicer()
		}
	}
	return nil
}
