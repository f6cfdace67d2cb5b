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

import "sort"

// SearchHitRow is one ranked result row from a search pass (text, symbol,
// or semantic/vector) before fusion (§4.5).
type SearchHitRow struct {
	ChunkID string
	Score   float64
	Source  string // "text", "symbol", "vector" — which searcher produced it
}

// SortByScoreDesc sorts rows by descending score, stabilizing ties by
// ChunkID so repeated runs over the same data return the same order.
func SortByScoreDesc(rows []SearchHitRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].ChunkID < rows[j].ChunkID
	})
}

// Top truncates rows to at most limit entries. limit <= 0 means unlimited.
func Top(rows []SearchHitRow, limit int) []SearchHitRow {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	return rows[:limit]
}
