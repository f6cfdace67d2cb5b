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
	"github.com/kraklabs/codegraph/pkg/pipeline/heap"
)

// allocatorNames and freeNames are the callee names this stage recognizes
// as heap-lifetime operations; anything else that writes a variable is
// treated as a plain stack binding.
var allocatorNames = map[string]bool{"malloc": true, "calloc": true, "new": true, "make": true}
var freeNames = map[string]bool{"free": true, "delete": true}

// HeapStage implements L7 (§4.3.7): replays each function's call/write
// sequence, in program order, against a heap.Memory, recording any
// double-free or invalid-pointer error its Free calls return as a
// Diagnostic. The replay performs no loads or stores through the memory,
// so null-deref, use-after-free and overflow are not checked. This stage requires PointsTo (§4.9 dependency table)
// because a precise implementation would resolve aliasing through the
// points-to result before deciding whether two variables name the same
// object; the heuristic replay here is conservative in the absence of
// that resolution and will under-report aliased violations.
type HeapStage struct {
	// Memories is populated by Execute, keyed by the owning function's
	// node id.
	Memories map[string]*heap.Memory
}

func (s *HeapStage) Name() StageName { return L7Heap }

func (s *HeapStage) Execute(ctx context.Context, r *Run) error {
	s.Memories = make(map[string]*heap.Memory)

	funcs := functionsOf(r.Doc)
	owner := blockOwnerIndex(r.Doc, funcs)
	byID := r.Doc.NodeIndex()

	writesOf := make(map[string][]string)
	calleeOf := make(map[string]string) // expr id -> callee name

	for _, e := range r.Doc.Edges {
		switch e.Kind {
		case model.EdgeWrites:
			writesOf[e.SourceID] = append(writesOf[e.SourceID], varName(byID, e.TargetID))
		case model.EdgeCalls:
			calleeOf[e.SourceID] = varName(byID, e.TargetID)
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

	for _, fn := range funcs {
		exprIDs := byFunc[fn.ID]
		sort.Slice(exprIDs, func(i, j int) bool {
			return model.Compare(byID[exprIDs[i]].Span, byID[exprIDs[j]].Span) < 0
		})

		mem := heap.New()
		for _, exprID := range exprIDs {
			callee, isCall := calleeOf[exprID]
			writes := writesOf[exprID]

			switch {
			case isCall && allocatorNames[callee]:
				for _, w := range writes {
					mem.SetVariable(w, mem.AllocHeap(heap.Concrete(0)))
				}
			case isCall && freeNames[callee]:
				for _, w := range writes {
					if addr, ok := mem.GetVariable(w); ok {
						if err := mem.Free(addr, exprID); err != nil {
							r.AddDiagnostic(L7Heap, exprID, "heap violation", err)
						}
					}
				}
			default:
				for _, w := range writes {
					if _, alreadyBound := mem.GetVariable(w); !alreadyBound {
						mem.SetVariable(w, mem.AllocStack(w, 8))
					}
				}
			}
		}
		s.Memories[fn.ID] = mem
	}
	return nil
}
