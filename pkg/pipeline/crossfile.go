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
	"github.com/kraklabs/codegraph/pkg/parallel"
)

// unresolvedPrefix marks a Calls edge's TargetID as a placeholder a
// language plugin emitted when it could only see the callee's simple name
// within its own file (see pkg/langplugin's extractCall).
const unresolvedPrefix = "unresolved:"

// CrossFileStage implements L3: resolving the "unresolved:<name>" Calls
// edge placeholders langplugin emits into real node IDs once the whole
// repository's IR is available, following the teacher's CallResolver
// two-phase design (build a global index, then resolve) generalized from
// Go-only to every language plugin emits for.
type CrossFileStage struct {
	// Optimizer picks the worker count for parallel resolution. With
	// fewer than 200 unresolved calls, or with no Optimizer, resolution
	// runs sequentially.
	Optimizer *parallel.Optimizer
}

func (s *CrossFileStage) Name() StageName { return L3CrossFile }

func (s *CrossFileStage) Execute(ctx context.Context, r *Run) error {
	byFQN := make(map[string]string, len(r.Doc.Nodes))
	byName := make(map[string][]string)
	for _, n := range r.Doc.Nodes {
		switch n.Kind {
		case model.NodeFunction, model.NodeMethod:
			if n.FQN != "" {
				byFQN[n.FQN] = n.ID
			}
			byName[n.Name] = append(byName[n.Name], n.ID)
		}
	}

	var unresolvedIdx []int
	for i, e := range r.Doc.Edges {
		if e.Kind == model.EdgeCalls && strings.HasPrefix(e.TargetID, unresolvedPrefix) {
			unresolvedIdx = append(unresolvedIdx, i)
		}
	}
	if len(unresolvedIdx) == 0 {
		return nil
	}

	resolve := func(calleeName string) string {
		if id, ok := byFQN[calleeName]; ok {
			return id
		}
		if ids, ok := byName[calleeName]; ok && len(ids) == 1 {
			return ids[0]
		}
		return ""
	}

	if len(unresolvedIdx) < 200 || s.Optimizer == nil {
		for _, i := range unresolvedIdx {
			s.resolveOne(r, i, resolve)
		}
		return nil
	}

	workers := s.Optimizer.OptimalWorkers(len(unresolvedIdx), 64, false)
	type resolved struct {
		idx int
		id  string
	}
	results, err := parallel.Map(ctx, workers, unresolvedIdx, func(ctx context.Context, i int) (resolved, error) {
		calleeName := strings.TrimPrefix(r.Doc.Edges[i].TargetID, unresolvedPrefix)
		return resolved{idx: i, id: resolve(calleeName)}, nil
	})
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.id != "" {
			r.Doc.Edges[res.idx].TargetID = res.id
		}
	}
	return nil
}

func (s *CrossFileStage) resolveOne(r *Run, idx int, resolve func(string) string) {
	calleeName := strings.TrimPrefix(r.Doc.Edges[idx].TargetID, unresolvedPrefix)
	if id := resolve(calleeName); id != "" {
		r.Doc.Edges[idx].TargetID = id
	}
}
