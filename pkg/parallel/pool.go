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
	"sync"

	"golang.org/x/sync/errgroup"
)

// Run fans jobs out across workers goroutines, calling fn once per index in
// [0, len(jobs)). It stops launching new jobs and returns the first error
// once one occurs, same as resolving unresolved calls in the ingestion
// stage did with a raw channel/WaitGroup pair — this is that pattern
// rebuilt on errgroup so callers get first-error cancellation for free.
func Run[T any](ctx context.Context, workers int, jobs []T, fn func(ctx context.Context, job T) error) error {
	if workers < 1 {
		workers = 1
	}
	if len(jobs) == 0 {
		return nil
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	g, ctx := errgroup.WithContext(ctx)
	indices := make(chan int, len(jobs))
	for i := range jobs {
		indices <- i
	}
	close(indices)

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range indices {
				if err := fn(ctx, jobs[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// Map fans jobs out across workers goroutines and collects one result per
// job, preserving input order. The first error cancels remaining work and
// is returned; results for jobs that never ran are the zero value.
func Map[T, R any](ctx context.Context, workers int, jobs []T, fn func(ctx context.Context, job T) (R, error)) ([]R, error) {
	results := make([]R, len(jobs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	indices := make(chan int, len(jobs))
	for i := range jobs {
		indices <- i
	}
	close(indices)

	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range indices {
				r, jobErr := fn(gctx, jobs[i])
				if jobErr != nil {
					return jobErr
				}
				mu.Lock()
				results[i] = r
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Batches splits items into chunks of at most size (size <= 0 means a
// single batch), the same chunking OptimalBatchSize's result feeds into
// before a stage hands each chunk to a worker.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) <= size {
		return [][]T{items}
	}
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}
