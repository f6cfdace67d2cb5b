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

// Package storage provides the content-addressed storage abstraction for
// the code graph (§3.3, §4.4). It defines the Backend interface that
// index orchestration and query code use without caring which engine is
// behind it.
//
// # Available Backends
//
//   - EmbeddedBackend: a single-writer embedded engine on go.etcd.io/bbolt,
//     for standalone/CLI use (§4.4 "embedded single-writer").
//   - ServerBackend: a multi-writer engine on gorm+Postgres with pooled
//     connections, for the server deployment (§4.4 "server multi-writer").
//
// # Quick Start
//
//	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
//	    DataDir: "/path/to/data",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	if err := backend.SaveChunks(ctx, chunks); err != nil {
//	    log.Fatal(err)
//	}
//	active, err := backend.ListChunks(ctx, repoID, snapshotID)
//
// # Soft deletes
//
// Chunks are never physically removed (invariant Ch2): ListChunks filters
// IsDeleted rows out, and a re-index that drops a chunk calls
// MarkChunksDeleted rather than an SQL/bbolt DELETE.
//
// # Thread Safety
//
// Both backends are safe for concurrent use. EmbeddedBackend serializes
// writers behind bbolt's single-writer transaction model; readers proceed
// concurrently against bbolt's MVCC snapshots. ServerBackend relies on
// gorm's connection pool and Postgres's own MVCC.
package storage
