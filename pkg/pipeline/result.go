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
	"time"

	"github.com/kraklabs/codegraph/pkg/model"
)

// PointsToSummary reports the shape of a solved points-to run without
// forcing a caller to depend on pkg/pipeline/pta directly (§6
// "IndexingResult.full_result.points_to_summary").
type PointsToSummary struct {
	ModeUsed         string `json:"mode_used"`
	VariablesCount   int    `json:"variables_count"`
	ConstraintsCount int    `json:"constraints_count"`
	AliasPairs       int    `json:"alias_pairs"`
}

// FullResult is the "full_result" member of an IndexingResult: the raw IR
// plus symbol names and an optional points-to summary, present only when
// full_analysis was requested (§6).
type FullResult struct {
	Nodes           []model.Node     `json:"nodes"`
	Edges           []model.Edge     `json:"edges"`
	Chunks          []model.Chunk    `json:"chunks"`
	Symbols         []string         `json:"symbols"`
	PointsToSummary *PointsToSummary `json:"points_to_summary,omitempty"`
}

// IndexingResult is the stable shape §6 "Ingestion surface" specifies for
// index(...)/scheduled_index(...)/manual_trigger_full(...) and for the
// `codegraph benchmark` CLI surface. Durations are kept as time.Duration
// so callers can format them either as a human waterfall or as
// machine-readable nanosecond counts.
type IndexingResult struct {
	FilesProcessed int `json:"files_processed"`
	FilesCached    int `json:"files_cached"`
	FilesFailed    int `json:"files_failed"`

	TotalLOC     int     `json:"total_loc"`
	LOCPerSecond float64 `json:"loc_per_second"`
	CacheHitRate float64 `json:"cache_hit_rate"`

	StageDurations map[StageName]time.Duration `json:"stage_durations"`
	Errors         []string                     `json:"errors"`

	FullResult *FullResult `json:"full_result,omitempty"`
}

// NewIndexingResult aggregates a finished Run (plus file-level counters
// the caller tracked while walking the repository) into the stable
// result shape. total is elapsed wall-clock time for the whole run, used
// for loc_per_second.
func NewIndexingResult(r *Run, filesProcessed, filesCached, filesFailed, totalLOC int, total time.Duration) *IndexingResult {
	res := &IndexingResult{
		FilesProcessed: filesProcessed,
		FilesCached:    filesCached,
		FilesFailed:    filesFailed,
		TotalLOC:       totalLOC,
		StageDurations: r.StageDurations,
	}
	if total > 0 {
		res.LOCPerSecond = float64(totalLOC) / total.Seconds()
	}
	if attempted := filesProcessed + filesCached; attempted > 0 {
		res.CacheHitRate = float64(filesCached) / float64(attempted)
	}
	for _, d := range r.Diagnostics {
		if d.Err != nil {
			res.Errors = append(res.Errors, d.Message+": "+d.Err.Error())
		} else {
			res.Errors = append(res.Errors, d.Message)
		}
	}
	return res
}
