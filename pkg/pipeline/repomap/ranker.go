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

package repomap

import (
	"sort"

	"github.com/kraklabs/codegraph/pkg/model"
)

// edgeKinds feeding the rank graph: a symbol referenced by many call
// sites, or widely extended/implemented, is more central than one no one
// else touches.
var rankEdgeKinds = map[model.EdgeKind]bool{
	model.EdgeCalls:      true,
	model.EdgeExtends:    true,
	model.EdgeImplements: true,
}

// RankConfig tunes the PageRank iteration.
type RankConfig struct {
	// Damping is the probability mass that follows an outgoing edge
	// rather than teleporting uniformly; the classic default is 0.85.
	Damping float64
	// MaxIterations bounds the power-iteration loop.
	MaxIterations int
	// Tolerance stops iteration early once no rank moves by more than
	// this amount between rounds.
	Tolerance float64
}

// DefaultRankConfig mirrors the standard PageRank parameters.
func DefaultRankConfig() RankConfig {
	return RankConfig{Damping: 0.85, MaxIterations: 100, Tolerance: 1e-6}
}

// Ranker scores every rankable symbol in an IR document by its
// centrality in the call/extends/implements graph.
type Ranker struct {
	Config RankConfig
}

// NewRanker returns a Ranker with DefaultRankConfig.
func NewRanker() *Ranker { return &Ranker{Config: DefaultRankConfig()} }

// Rank runs PageRank over doc's rankable nodes and returns a node id ->
// score map. Nodes with no incoming or outgoing rank edges still get the
// floor every node gets each round — (1-d)/N plus an equal share of the
// dangling nodes' rank — so isolated symbols are never dropped, only
// ranked last.
func (r *Ranker) Rank(doc *model.IRDocument) map[string]float64 {
	ids, outEdges := buildRankGraph(doc)
	n := len(ids)
	if n == 0 {
		return map[string]float64{}
	}

	cfg := r.Config
	if cfg.Damping <= 0 {
		cfg = DefaultRankConfig()
	}

	rank := make(map[string]float64, n)
	base := 1.0 / float64(n)
	for _, id := range ids {
		rank[id] = base
	}

	teleport := (1 - cfg.Damping) / float64(n)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		next := make(map[string]float64, n)
		var danglingMass float64
		for _, id := range ids {
			if len(outEdges[id]) == 0 {
				danglingMass += rank[id]
			}
		}
		danglingShare := cfg.Damping * danglingMass / float64(n)

		for _, id := range ids {
			next[id] = teleport + danglingShare
		}
		for _, id := range ids {
			out := outEdges[id]
			if len(out) == 0 {
				continue
			}
			share := cfg.Damping * rank[id] / float64(len(out))
			for _, target := range out {
				next[target] += share
			}
		}

		var delta float64
		for _, id := range ids {
			d := next[id] - rank[id]
			if d < 0 {
				d = -d
			}
			if d > delta {
				delta = d
			}
		}
		rank = next
		if delta < cfg.Tolerance {
			break
		}
	}

	return rank
}

// buildRankGraph collects rankable node ids and their rank-contributing
// adjacency, restricted to edges whose endpoints are both rankable.
func buildRankGraph(doc *model.IRDocument) (ids []string, outEdges map[string][]string) {
	byID := doc.NodeIndex()
	outEdges = make(map[string][]string)

	for _, n := range doc.Nodes {
		if rankableKinds[n.Kind] {
			ids = append(ids, n.ID)
			if _, ok := outEdges[n.ID]; !ok {
				outEdges[n.ID] = nil
			}
		}
	}
	sort.Strings(ids)

	for _, e := range doc.Edges {
		if !rankEdgeKinds[e.Kind] {
			continue
		}
		src, ok := byID[e.SourceID]
		if !ok || !rankableKinds[src.Kind] {
			continue
		}
		dst, ok := byID[e.TargetID]
		if !ok || !rankableKinds[dst.Kind] {
			continue
		}
		outEdges[e.SourceID] = append(outEdges[e.SourceID], e.TargetID)
	}

	return ids, outEdges
}
