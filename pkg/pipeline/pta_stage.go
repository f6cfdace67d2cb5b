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
	"github.com/kraklabs/codegraph/pkg/pipeline/pta"
)

// PTAMode selects which points-to solver a PointsToStage runs.
type PTAMode string

const (
	// PTASteensgaard is unification-based: near-linear, coarser precision.
	PTASteensgaard PTAMode = "steensgaard"
	// PTAAndersen is inclusion-based: cubic worst case, finer precision.
	PTAAndersen PTAMode = "andersen"
)

// PointsToStage implements L6 (§4.3.4): derives Constraints per function
// from its Writes/Reads/Calls edges and solves them with the configured
// mode. A function's formal-to-actual binding isn't modeled by the
// current IR, so call constraints alias a call site's assigned variable
// (if any) to a synthetic variable, "ret:" plus the callee id. No
// constraint gives that variable an object, so a call's result gains no
// points-to facts from the callee. No derived constraint carries a Field.
type PointsToStage struct {
	Mode           PTAMode
	FieldSensitive bool

	// Results is populated by Execute, keyed by the owning function's
	// node id.
	Results map[string]*pta.Result
}

func (s *PointsToStage) Name() StageName { return L6PointsTo }

func (s *PointsToStage) Execute(ctx context.Context, r *Run) error {
	if s.Mode == "" {
		s.Mode = PTAAndersen
	}
	s.Results = make(map[string]*pta.Result)

	funcs := functionsOf(r.Doc)
	owner := blockOwnerIndex(r.Doc, funcs)
	byID := r.Doc.NodeIndex()

	writesOf := make(map[string][]string) // expr id -> variable names it writes
	readsOf := make(map[string][]string)  // expr id -> variable names it reads
	isCallOf := make(map[string]string)   // expr id -> callee node id

	for _, e := range r.Doc.Edges {
		switch e.Kind {
		case model.EdgeWrites:
			writesOf[e.SourceID] = append(writesOf[e.SourceID], varName(byID, e.TargetID))
		case model.EdgeReads:
			readsOf[e.SourceID] = append(readsOf[e.SourceID], varName(byID, e.TargetID))
		case model.EdgeCalls:
			isCallOf[e.SourceID] = e.TargetID
		}
	}

	byFunc := make(map[string][]string)
	seen := make(map[string]bool)
	for id := range writesOf {
		if fn := owner[id]; fn != "" && !seen[id] {
			byFunc[fn] = append(byFunc[fn], id)
			seen[id] = true
		}
	}
	for id := range readsOf {
		if fn := owner[id]; fn != "" && !seen[id] {
			byFunc[fn] = append(byFunc[fn], id)
			seen[id] = true
		}
	}

	for _, fn := range funcs {
		var constraints []pta.Constraint
		for _, exprID := range byFunc[fn.ID] {
			writes := writesOf[exprID]
			reads := readsOf[exprID]
			callee, isCall := isCallOf[exprID]

			for _, w := range writes {
				switch {
				case isCall:
					constraints = append(constraints, pta.Constraint{
						Kind: pta.Call, LHS: w, RHS: "ret:" + callee,
					})
				case len(reads) > 0:
					for _, rd := range reads {
						constraints = append(constraints, pta.Constraint{
							Kind: pta.Copy, LHS: w, RHS: rd,
						})
					}
				default:
					constraints = append(constraints, pta.Constraint{
						Kind: pta.AddressOf, LHS: w, RHS: "site:" + exprID,
					})
				}
			}
		}

		var result *pta.Result
		switch s.Mode {
		case PTASteensgaard:
			result = pta.NewSteensgaardSolver().Solve(constraints)
		default:
			result = pta.NewAndersenSolver(s.FieldSensitive).Solve(constraints)
		}
		s.Results[fn.ID] = result
	}
	return nil
}
