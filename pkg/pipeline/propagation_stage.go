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
	"strings"

	"github.com/kraklabs/codegraph/pkg/model"
	"github.com/kraklabs/codegraph/pkg/pipeline/propagation"
)

// PropagationStage implements L15 (§4.3.8): one sparse def-use flow graph
// per function, built from the DataFlow edges L9 already wrote onto
// r.Doc, driven to a fixpoint with the generic taint Domain. Sources
// names the variables seeded Tainted; anything no edge mentions starts
// at Bottom.
type PropagationStage struct {
	Config  propagation.Config
	Sources map[string]bool

	// Results is populated by Execute, keyed by the owning function's
	// node id.
	Results map[string]propagation.Result[propagation.TaintValue]
}

func (s *PropagationStage) Name() StageName { return L15Propagation }

func (s *PropagationStage) Execute(ctx context.Context, r *Run) error {
	s.Results = make(map[string]propagation.Result[propagation.TaintValue])

	funcs := functionsOf(r.Doc)
	owner := blockOwnerIndex(r.Doc, funcs)

	type flowEdge struct{ from, to, variable string }
	var edges []flowEdge
	nodeFn := make(map[string]string) // expr id -> owning function id
	nodeVar := make(map[string]string)

	for _, e := range r.Doc.Edges {
		if e.Kind != model.EdgeDataFlow {
			continue
		}
		variable := e.Attrs
		if idx := strings.IndexByte(e.Attrs, ':'); idx >= 0 {
			variable = e.Attrs[idx+1:]
		}
		edges = append(edges, flowEdge{from: e.SourceID, to: e.TargetID, variable: variable})
		if fn := owner[e.SourceID]; fn != "" {
			nodeFn[e.SourceID] = fn
		}
		if fn := owner[e.TargetID]; fn != "" {
			nodeFn[e.TargetID] = fn
		}
		nodeVar[e.SourceID] = variable
		nodeVar[e.TargetID] = variable
	}

	byFunc := make(map[string][]flowEdge)
	for _, fe := range edges {
		fn := nodeFn[fe.from]
		if fn == "" {
			fn = nodeFn[fe.to]
		}
		if fn == "" {
			continue
		}
		byFunc[fn] = append(byFunc[fn], fe)
	}

	engine := propagation.NewEngine[propagation.TaintValue](propagation.TaintDomain{}, s.Config)

	for _, fn := range funcs {
		fnEdges := byFunc[fn.ID]
		if len(fnEdges) == 0 {
			continue
		}

		nodes := make(map[string]propagation.Node)
		ensure := func(id string) {
			if _, ok := nodes[id]; !ok {
				nodes[id] = propagation.Node{ID: id}
			}
		}
		for _, fe := range fnEdges {
			ensure(fe.from)
			ensure(fe.to)
			from, to := nodes[fe.from], nodes[fe.to]
			to.Predecessors = append(to.Predecessors, fe.from)
			from.Successors = append(from.Successors, fe.to)
			nodes[fe.from] = from
			nodes[fe.to] = to
		}

		initial := func(id string) propagation.TaintValue {
			if s.Sources[nodeVar[id]] {
				return propagation.TaintTainted
			}
			return propagation.TaintBottom
		}
		transfer := func(id string, inputs []propagation.TaintValue) propagation.TaintValue {
			d := propagation.TaintDomain{}
			result := initial(id)
			for _, in := range inputs {
				result = d.Join(result, in)
			}
			return result
		}

		s.Results[fn.ID] = engine.Run(nodes, initial, transfer)
	}
	return nil
}
