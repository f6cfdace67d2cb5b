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
	"github.com/kraklabs/codegraph/pkg/pipeline/dfg"
)

// DFGStage implements L9 (§4.3.3): per function, orders its Reads/Writes/
// Calls-bearing expression nodes by span start, runs the last-def
// algorithm, and materializes the result as DataFlow edges on r.Doc.
type DFGStage struct{}

func (s *DFGStage) Name() StageName { return L9DFG }

func (s *DFGStage) Execute(ctx context.Context, r *Run) error {
	funcs := functionsOf(r.Doc)
	owner := blockOwnerIndex(r.Doc, funcs)
	byID := r.Doc.NodeIndex()

	readsOf := make(map[string][]string)
	writesOf := make(map[string][]string)
	isCallOf := make(map[string]bool)
	exprOwner := make(map[string]string)

	for _, e := range r.Doc.Edges {
		switch e.Kind {
		case model.EdgeReads:
			readsOf[e.SourceID] = append(readsOf[e.SourceID], varName(byID, e.TargetID))
			exprOwner[e.SourceID] = owner[e.SourceID]
		case model.EdgeWrites:
			writesOf[e.SourceID] = append(writesOf[e.SourceID], varName(byID, e.TargetID))
			exprOwner[e.SourceID] = owner[e.SourceID]
		case model.EdgeCalls:
			isCallOf[e.SourceID] = true
		}
	}

	byFunc := make(map[string][]string) // function id -> expr node ids
	for id, fn := range exprOwner {
		byFunc[fn] = append(byFunc[fn], id)
	}

	for _, fn := range funcs {
		exprIDs := byFunc[fn.ID]
		sort.Slice(exprIDs, func(i, j int) bool {
			return model.Compare(byID[exprIDs[i]].Span, byID[exprIDs[j]].Span) < 0
		})

		var exprs []dfg.Expr
		for _, id := range exprIDs {
			exprs = append(exprs, dfg.Expr{
				ID:      id,
				Reads:   readsOf[id],
				Defines: writesOf[id],
				IsCall:  isCallOf[id],
			})
		}

		for _, e := range dfg.Build(exprs) {
			r.Doc.Edges = append(r.Doc.Edges, model.Edge{
				SourceID: e.FromExprID,
				TargetID: e.ToExprID,
				Kind:     model.EdgeDataFlow,
				Attrs:    string(e.Tag) + ":" + e.Variable,
			})
		}
	}
	return nil
}

func varName(byID map[string]model.Node, id string) string {
	if n, ok := byID[id]; ok {
		return n.Name
	}
	return id
}
