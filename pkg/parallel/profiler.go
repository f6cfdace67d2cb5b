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

package parallel

import "math"

// Profiler accumulates per-file size observations ahead of a parallel pass
// so an Optimizer can be handed real workload characteristics instead of
// guesses. Not safe for concurrent use; profile files sequentially before
// tuning and starting the parallel pass.
type Profiler struct {
	totalBytes int
	fileCount  int
	minSize    int
	maxSize    int
}

// NewProfiler returns an empty Profiler.
func NewProfiler() *Profiler {
	return &Profiler{minSize: math.MaxInt}
}

// AddFile records one file's size.
func (p *Profiler) AddFile(sizeBytes int) {
	p.totalBytes += sizeBytes
	p.fileCount++
	if sizeBytes < p.minSize {
		p.minSize = sizeBytes
	}
	if sizeBytes > p.maxSize {
		p.maxSize = sizeBytes
	}
}

// AvgFileSize returns the mean file size in bytes, or 0 if no files were
// added.
func (p *Profiler) AvgFileSize() int {
	if p.fileCount == 0 {
		return 0
	}
	return p.totalBytes / p.fileCount
}

// IsIOBound heuristically classifies the workload as I/O-bound when the
// average file size exceeds 100KB.
func (p *Profiler) IsIOBound() bool {
	return p.AvgFileSize() > 100_000
}

func (p *Profiler) FileCount() int  { return p.fileCount }
func (p *Profiler) TotalBytes() int { return p.totalBytes }

// SizeVariance returns the spread between the largest and smallest file
// seen so far.
func (p *Profiler) SizeVariance() int {
	if p.fileCount == 0 {
		return 0
	}
	v := p.maxSize - p.minSize
	if v < 0 {
		return 0
	}
	return v
}

// HasHighVariance reports whether the file-size spread exceeds 10x the
// average, a sign that uniform batch sizing will load-balance poorly.
func (p *Profiler) HasHighVariance() bool {
	if p.fileCount < 2 {
		return false
	}
	avg := p.AvgFileSize()
	if avg == 0 {
		return false
	}
	return p.SizeVariance() > avg*10
}

// RecommendConfig asks optimizer to tune for the profiled workload, then
// halves the batch size (floor 10) when the profile shows high size
// variance, favoring load balancing over batching overhead.
func (p *Profiler) RecommendConfig(optimizer *Optimizer) WorkloadConfig {
	avgSize := p.AvgFileSize()
	isIOBound := p.IsIOBound()

	cfg := optimizer.TuneForWorkload(p.fileCount, avgSize, isIOBound)

	if p.HasHighVariance() {
		cfg.BatchSize = cfg.BatchSize / 2
		if cfg.BatchSize < 10 {
			cfg.BatchSize = 10
		}
		cfg.EstimatedBatches = ceilDiv(p.fileCount, cfg.BatchSize)
	}

	return cfg
}
