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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizer_OptimalWorkers_SmallWorkloadUsesMin(t *testing.T) {
	o := NewOptimizer().WithWorkerBounds(1, 8)
	assert.Equal(t, 1, o.OptimalWorkers(0, 1000, false))
	assert.Equal(t, 1, o.OptimalWorkers(5, 1000, false))
}

func TestOptimizer_OptimalWorkers_IOBoundGetsBoost(t *testing.T) {
	o := NewOptimizer().WithWorkerBounds(1, 16)
	ioWorkers := o.OptimalWorkers(1000, 2_000_000, true)
	cpuWorkers := o.OptimalWorkers(1000, 2_000_000, false)
	assert.GreaterOrEqual(t, ioWorkers, cpuWorkers)
}

func TestOptimizer_OptimalWorkers_ClampedToBounds(t *testing.T) {
	o := NewOptimizer().WithWorkerBounds(2, 4)
	w := o.OptimalWorkers(10_000, 500_000, true)
	assert.GreaterOrEqual(t, w, 2)
	assert.LessOrEqual(t, w, 4)
}

func TestOptimizer_WithWorkerBounds_AutoCorrectsInverted(t *testing.T) {
	o := NewOptimizer().WithWorkerBounds(10, 2)
	assert.LessOrEqual(t, o.minWorkers, o.maxWorkers)
}

func TestOptimizer_OptimalBatchSize_RespectsBounds(t *testing.T) {
	o := NewOptimizer()
	b := o.OptimalBatchSize(10_000, 4)
	assert.GreaterOrEqual(t, b, minBatchSize)
	assert.LessOrEqual(t, b, maxBatchSize)
}

func TestOptimizer_OptimalBatchSize_DisabledAdaptiveReturnsDefault(t *testing.T) {
	o := NewOptimizer().WithAdaptiveBatching(false)
	assert.Equal(t, 100, o.OptimalBatchSize(10_000, 4))
}

func TestOptimizer_TuneForWorkload(t *testing.T) {
	o := NewOptimizer().WithWorkerBounds(1, 8)
	cfg := o.TuneForWorkload(1000, 50_000, false)
	require.Greater(t, cfg.Workers, 0)
	require.Greater(t, cfg.BatchSize, 0)
	assert.False(t, cfg.TooSmallForParallel())
}

func TestWorkloadConfig_TooSmallForParallel(t *testing.T) {
	cfg := WorkloadConfig{EstimatedBatches: 1}
	assert.True(t, cfg.TooSmallForParallel())
}

func TestGlobalOptimizer_ReturnsSameInstance(t *testing.T) {
	assert.Same(t, GlobalOptimizer(), GlobalOptimizer())
}

func TestProfiler_HasHighVariance(t *testing.T) {
	p := NewProfiler()
	for i := 0; i < 20; i++ {
		p.AddFile(100)
	}
	p.AddFile(50_000)
	assert.True(t, p.HasHighVariance())
}

func TestProfiler_IsIOBound(t *testing.T) {
	p := NewProfiler()
	p.AddFile(200_000)
	p.AddFile(300_000)
	assert.True(t, p.IsIOBound())
}

func TestProfiler_RecommendConfig_HalvesBatchOnHighVariance(t *testing.T) {
	o := NewOptimizer().WithWorkerBounds(1, 8)
	p := NewProfiler()
	for i := 0; i < 50; i++ {
		p.AddFile(100)
	}
	p.AddFile(1_000_000)

	cfg := p.RecommendConfig(o)
	require.Greater(t, cfg.BatchSize, 0)
	assert.GreaterOrEqual(t, cfg.BatchSize, 10)
	base := o.TuneForWorkload(p.FileCount(), p.AvgFileSize(), p.IsIOBound())
	assert.Equal(t, max(10, base.BatchSize/2), cfg.BatchSize)
}
