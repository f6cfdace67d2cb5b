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
	"github.com/kraklabs/codegraph/pkg/pipeline/ssa"
)

// SSAStage implements L8 (§4.3.2): one ssa.Builder per function, built
// from that function's CfgNext/CfgBranch edges (blocks) and Writes edges
// (variable definitions). A function with no NodeBlock children gets an
// empty Builder with no blocks.
type SSAStage struct {
	// Builders is populated by Execute, keyed by the owning function's
	// node id, for later stages (DFG, propagation) to query.
	Builders map[string]*ssa.Builder
}

func (s *SSAStage) Name() StageName { return L8SSA }

func (s *SSAStage) Execute(ctx context.Context, r *Run) error {
	s.Builders = make(map[string]*ssa.Builder)

	funcs := functionsOf(r.Doc)
	blockOwner := blockOwnerIndex(r.Doc, funcs)

	for _, fn := range funcs {
		b := ssa.NewBuilder()
		blocks := blocksOf(r.Doc, fn.ID, blockOwner)
		if len(blocks) == 0 {
			s.Builders[fn.ID] = b
			continue
		}
		preds := make(map[ssa.BlockID][]ssa.BlockID)
		for _, e := range r.Doc.Edges {
			if !e.Kind.IsCFG() {
				continue
			}
			if blockOwner[e.SourceID] != fn.ID || blockOwner[e.TargetID] != fn.ID {
				continue
			}
			preds[ssa.BlockID(e.TargetID)] = append(preds[ssa.BlockID(e.TargetID)], ssa.BlockID(e.SourceID))
		}
		for _, blockID := range blocks {
			b.AddBlock(ssa.BlockID(blockID), preds[ssa.BlockID(blockID)])
		}
		for _, e := range r.Doc.Edges {
			if e.Kind != model.EdgeWrites {
				continue
			}
			if blockOwner[e.SourceID] != fn.ID {
				continue
			}
			target, ok := r.Doc.NodeIndex()[e.TargetID]
			if !ok {
				continue
			}
			b.WriteVariable(target.Name, ssa.BlockID(e.SourceID), ssa.ValueID(e.SourceID))
		}
		for _, blockID := range blocks {
			b.SealBlock(ssa.BlockID(blockID))
		}
		s.Builders[fn.ID] = b
	}
	return nil
}

func functionsOf(doc *model.IRDocument) []model.Node {
	var out []model.Node
	for _, n := range doc.Nodes {
		if n.Kind == model.NodeFunction || n.Kind == model.NodeMethod {
			out = append(out, n)
		}
	}
	return out
}

// blockOwnerIndex maps every block-kind node id to the function node id
// that (transitively) contains it.
func blockOwnerIndex(doc *model.IRDocument, funcs []model.Node) map[string]string {
	byID := doc.NodeIndex()
	owner := make(map[string]string)
	var ownerOf func(id string) string
	ownerOf = func(id string) string {
		if o, ok := owner[id]; ok {
			return o
		}
		n, ok := byID[id]
		if !ok {
			return ""
		}
		if n.Kind == model.NodeFunction || n.Kind == model.NodeMethod {
			owner[id] = id
			return id
		}
		if n.ParentID == "" {
			return ""
		}
		o := ownerOf(n.ParentID)
		owner[id] = o
		return o
	}
	for _, n := range doc.Nodes {
		owner[n.ID] = ownerOf(n.ID)
	}
	return owner
}

func blocksOf(doc *model.IRDocument, fnID string, owner map[string]string) []string {
	var out []string
	for _, n := range doc.Nodes {
		if n.Kind == model.NodeBlock && owner[n.ID] == fnID {
			out = append(out, n.ID)
		}
	}
	// No NodeBlock children: nil, and Execute keeps an empty Builder for
	// the function.
	if len(out) == 0 {
		return nil
	}
	return out
}
