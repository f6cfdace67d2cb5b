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
)

// occurrenceEdgeKinds are the edge kinds that constitute a "reference" to
// their target symbol for L4's occurrence index.
var occurrenceEdgeKinds = map[model.EdgeKind]bool{
	model.EdgeCalls:   true,
	model.EdgeReads:   true,
	model.EdgeWrites:  true,
	model.EdgeImports: true,
	model.EdgeExtends: true,
	model.EdgeImplements: true,
}

// OccurrencesStage implements L4: for every node with a resolved FQN,
// collects the set of source-node IDs that reference it via a resolved
// Calls/Reads/Writes/Imports/Extends/Implements edge, so downstream stages
// and queries can answer "who references symbol X" in O(1).
type OccurrencesStage struct{}

func (s *OccurrencesStage) Name() StageName { return L4Occurrences }

func (s *OccurrencesStage) Execute(ctx context.Context, r *Run) error {
	fqnByID := make(map[string]string, len(r.Doc.Nodes))
	for _, n := range r.Doc.Nodes {
		if n.FQN != "" {
			fqnByID[n.ID] = n.FQN
		}
	}

	occ := make(map[string][]string)
	for _, e := range r.Doc.Edges {
		if !occurrenceEdgeKinds[e.Kind] {
			continue
		}
		fqn, ok := fqnByID[e.TargetID]
		if !ok {
			continue
		}
		occ[fqn] = append(occ[fqn], e.SourceID)
	}

	for fqn, ids := range occ {
		sort.Strings(ids)
		occ[fqn] = dedupeStrings(ids)
	}

	if r.Occurrences == nil {
		r.Occurrences = occ
	} else {
		for fqn, ids := range occ {
			r.Occurrences[fqn] = ids
		}
	}
	return nil
}

func dedupeStrings(sorted []string) []string {
	out := sorted[:0]
	var prev string
	first := true
	for _, s := range sorted {
		if !first && s == prev {
			continue
		}
		out = append(out, s)
		prev = s
		first = false
	}
	return out
}
