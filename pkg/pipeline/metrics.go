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
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// stageDurationMetrics exposes a Prometheus histogram per stage name so a
// scrape target can build the same per-phase timing picture the teacher's
// ingestion metrics.go built for parse/embed/write/total (§9 "Benchmark &
// reporting adapter"). Histograms are created lazily on first observation
// since the stage set is only known once a DAG actually runs one.
type stageDurationMetrics struct {
	mu         sync.Mutex
	histograms map[StageName]prometheus.Histogram
}

var stageMetrics = &stageDurationMetrics{}

var stageBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

func (m *stageDurationMetrics) observe(stage StageName, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.histograms == nil {
		m.histograms = make(map[StageName]prometheus.Histogram)
	}
	h, ok := m.histograms[stage]
	if !ok {
		h = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "codegraph_stage_seconds",
			Help:    "Duration of a pipeline stage's Execute call",
			Buckets: stageBuckets,
			ConstLabels: prometheus.Labels{
				"stage": string(stage),
			},
		})
		// Registration failures (duplicate registerer in tests that build
		// multiple DAGs) are non-fatal: the histogram still works locally,
		// it just won't be scraped a second time under the same name.
		_ = prometheus.Register(h)
		m.histograms[stage] = h
	}
	h.Observe(d.Seconds())
}
