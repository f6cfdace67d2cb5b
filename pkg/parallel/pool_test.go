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
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ExecutesAllJobs(t *testing.T) {
	var count int64
	jobs := make([]int, 100)
	for i := range jobs {
		jobs[i] = i
	}

	err := Run(context.Background(), 4, jobs, func(ctx context.Context, job int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})

	require.NoError(t, err)
	assert.EqualValues(t, 100, count)
}

func TestRun_PropagatesFirstError(t *testing.T) {
	sentinel := errors.New("boom")
	jobs := []int{1, 2, 3, 4, 5}

	err := Run(context.Background(), 2, jobs, func(ctx context.Context, job int) error {
		if job == 3 {
			return sentinel
		}
		return nil
	})

	require.ErrorIs(t, err, sentinel)
}

func TestRun_EmptyJobsIsNoop(t *testing.T) {
	err := Run[int](context.Background(), 4, nil, func(ctx context.Context, job int) error {
		t.Fatal("should not be called")
		return nil
	})
	require.NoError(t, err)
}

func TestMap_PreservesOrder(t *testing.T) {
	jobs := []int{0, 1, 2, 3, 4, 5, 6, 7}

	results, err := Map(context.Background(), 3, jobs, func(ctx context.Context, job int) (int, error) {
		return job * job, nil
	})

	require.NoError(t, err)
	for i, job := range jobs {
		assert.Equal(t, job*job, results[i])
	}
}

func TestBatches_SplitsEvenly(t *testing.T) {
	items := make([]int, 25)
	batches := Batches(items, 10)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
	assert.Len(t, batches[2], 5)
}

func TestBatches_NonPositiveSizeIsSingleBatch(t *testing.T) {
	items := []int{1, 2, 3}
	batches := Batches(items, 0)
	require.Len(t, batches, 1)
	assert.Equal(t, items, batches[0])
}
