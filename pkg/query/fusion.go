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

package query

// FusionStrategy is the closed set of ways multiple ranked result sets
// (text, symbol, vector) are merged into one ranking (§4.5).
type FusionStrategy string

const (
	FusionRRF               FusionStrategy = "rrf"
	FusionLinearCombination FusionStrategy = "linear_combination"
	FusionMax               FusionStrategy = "max"
)

// FusionConfig configures how Fuse combines multiple SearchHitRow sets.
type FusionConfig struct {
	Strategy FusionStrategy

	// RRFK is the rank-offset constant for FusionRRF (typically 60).
	RRFK float64

	// Weights maps a SearchHitRow.Source to its weight for
	// FusionLinearCombination. Unweighted sources default to 1.0.
	Weights map[string]float64
}

// DefaultFusionConfig matches common RRF defaults used across hybrid
// search implementations (k=60).
var DefaultFusionConfig = FusionConfig{Strategy: FusionRRF, RRFK: 60}

// Fuse merges one or more ranked result sets into a single ranking sorted
// by descending fused score.
func Fuse(cfg FusionConfig, resultSets ...[]SearchHitRow) []SearchHitRow {
	switch cfg.Strategy {
	case FusionLinearCombination:
		return fuseLinear(cfg, resultSets)
	case FusionMax:
		return fuseMax(resultSets)
	default:
		return fuseRRF(cfg, resultSets)
	}
}

// fuseRRF implements Reciprocal Rank Fusion: each result set is sorted by
// score, then each row contributes 1/(k+rank) to its chunk's fused score.
// This makes RRF scale-invariant across searchers with incomparable raw
// score ranges (cosine similarity vs. BM25 vs. edit distance).
func fuseRRF(cfg FusionConfig, resultSets [][]SearchHitRow) []SearchHitRow {
	k := cfg.RRFK
	if k == 0 {
		k = 60
	}
	fused := make(map[string]float64)
	for _, set := range resultSets {
		ranked := append([]SearchHitRow(nil), set...)
		SortByScoreDesc(ranked)
		for rank, row := range ranked {
			fused[row.ChunkID] += 1.0 / (k + float64(rank+1))
		}
	}
	return toSortedRows(fused)
}

// fuseLinear computes a weighted sum of raw scores per chunk.
func fuseLinear(cfg FusionConfig, resultSets [][]SearchHitRow) []SearchHitRow {
	fused := make(map[string]float64)
	for _, set := range resultSets {
		for _, row := range set {
			w := 1.0
			if cfg.Weights != nil {
				if ww, ok := cfg.Weights[row.Source]; ok {
					w = ww
				}
			}
			fused[row.ChunkID] += w * row.Score
		}
	}
	return toSortedRows(fused)
}

// fuseMax takes, for each chunk, the best raw score across all sets.
func fuseMax(resultSets [][]SearchHitRow) []SearchHitRow {
	fused := make(map[string]float64)
	for _, set := range resultSets {
		for _, row := range set {
			if cur, ok := fused[row.ChunkID]; !ok || row.Score > cur {
				fused[row.ChunkID] = row.Score
			}
		}
	}
	return toSortedRows(fused)
}

func toSortedRows(fused map[string]float64) []SearchHitRow {
	out := make([]SearchHitRow, 0, len(fused))
	for chunkID, score := range fused {
		out = append(out, SearchHitRow{ChunkID: chunkID, Score: score})
	}
	SortByScoreDesc(out)
	return out
}
