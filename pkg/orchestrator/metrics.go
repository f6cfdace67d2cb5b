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

package orchestrator

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsOrchestrator holds Prometheus metrics for session/commit
// throughput and plugin fan-out health.
type metricsOrchestrator struct {
	once sync.Once

	sessionsOpened     prometheus.Counter
	commitsSucceeded   prometheus.Counter
	commitsFailed      prometheus.Counter
	commitsConflicted  prometheus.Counter
	pluginFanoutErrors prometheus.Counter

	commitDuration prometheus.Histogram
}

var orchMetrics metricsOrchestrator

func (m *metricsOrchestrator) init() {
	m.once.Do(func() {
		m.sessionsOpened = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_orch_sessions_opened_total", Help: "Agent sessions opened"})
		m.commitsSucceeded = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_orch_commits_succeeded_total", Help: "Commits applied to the backend"})
		m.commitsFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_orch_commits_failed_total", Help: "Commits that failed applying to the backend"})
		m.commitsConflicted = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_orch_commits_conflicted_total", Help: "Commits rejected for touching a node a concurrent session already committed"})
		m.pluginFanoutErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_orch_plugin_fanout_errors_total", Help: "Plugin ApplyDelta calls that returned an error during commit fan-out"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
		m.commitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_orch_commit_seconds", Help: "Duration of the backend ApplyDelta call within a commit", Buckets: buckets})

		prometheus.MustRegister(
			m.sessionsOpened, m.commitsSucceeded, m.commitsFailed, m.commitsConflicted, m.pluginFanoutErrors,
			m.commitDuration,
		)
	})
}
