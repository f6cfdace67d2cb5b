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

// Package parallel tunes and runs the worker pools the pipeline stages use
// to fan a repository's files (or a stage's node/edge batches) out across
// goroutines.
//
// Optimizer calculates how many workers and how large a batch to use for a
// given workload, adapting to whether the workload looks I/O-bound (large
// files, network-backed storage) or CPU-bound (many small files, heavy
// per-file analysis), and to how uneven the file sizes are. Profiler
// accumulates the observations (file count, sizes) an Optimizer needs.
// Pool runs a slice of jobs across a bounded goroutine fan-out using
// golang.org/x/sync/errgroup, cancelling the remaining jobs on first error.
package parallel
