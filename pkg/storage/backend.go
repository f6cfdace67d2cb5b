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

package storage

import (
	"context"

	"github.com/kraklabs/codegraph/pkg/model"
)

// Backend is the interface every storage engine implements (§4.4). All
// methods are safe for concurrent use; ApplyDelta is the only method that
// must be atomic with respect to concurrent ApplyDelta calls on the same
// snapshot.
type Backend interface {
	// SaveRepository upserts a Repository row.
	SaveRepository(ctx context.Context, repo model.Repository) error

	// SaveSnapshot upserts a Snapshot row.
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error

	// GetFileMetadata returns the stored checksum record for a file, used
	// by incremental indexing to skip unchanged files. ok is false when no
	// record exists yet.
	GetFileMetadata(ctx context.Context, repoID, snapshotID, filePath string) (meta model.FileMetadata, ok bool, err error)

	// SaveFileMetadata upserts FileMetadata rows, keyed by FileMetadata.Key().
	SaveFileMetadata(ctx context.Context, metas []model.FileMetadata) error

	// SaveNodes upserts Node rows, keyed by Node.ID.
	SaveNodes(ctx context.Context, nodes []model.Node) error

	// SaveEdges appends Edge rows. Edges are not deduplicated by the
	// backend; callers that re-derive the same edge twice are expected to
	// either accept the duplicate (idempotent readers) or dedupe upstream.
	SaveEdges(ctx context.Context, edges []model.Edge) error

	// GetNode returns a single node by ID. ok is false if absent.
	GetNode(ctx context.Context, nodeID string) (node model.Node, ok bool, err error)

	// ListNodes returns nodes in (repoID, snapshotID) whose Kind matches
	// any of kinds. An empty kinds list returns all nodes.
	ListNodes(ctx context.Context, repoID, snapshotID string, kinds ...model.NodeKind) ([]model.Node, error)

	// ListEdges returns edges in (repoID, snapshotID) whose Kind matches
	// any of kinds. An empty kinds list returns all edges.
	ListEdges(ctx context.Context, repoID, snapshotID string, kinds ...model.EdgeKind) ([]model.Edge, error)

	// SaveChunks upserts Chunk rows, keyed by ChunkID.
	SaveChunks(ctx context.Context, chunks []model.Chunk) error

	// ListChunks returns active (IsDeleted = false) chunks for a snapshot
	// (invariant Ch2: soft-deleted chunks are never returned here).
	ListChunks(ctx context.Context, repoID, snapshotID string) ([]model.Chunk, error)

	// GetChunk returns a single chunk by ChunkID regardless of IsDeleted, so
	// a caller that already holds an ID (e.g. from a prior ListChunks, or
	// recovering a soft-deleted row) can always retrieve it (§4.4
	// "get_chunk"). ok is false if no chunk with that ID has ever existed.
	GetChunk(ctx context.Context, chunkID string) (chunk model.Chunk, ok bool, err error)

	// GetChunksByFile returns active chunks in (repoID, snapshotID) whose
	// FilePath matches exactly (§4.4 "get_chunks_by_file").
	GetChunksByFile(ctx context.Context, repoID, snapshotID, filePath string) ([]model.Chunk, error)

	// GetChunksByFQN returns active chunks in (repoID, snapshotID) whose
	// FQN matches exactly (§4.4 "get_chunks_by_fqn").
	GetChunksByFQN(ctx context.Context, repoID, snapshotID, fqn string) ([]model.Chunk, error)

	// GetChunksByKind returns active chunks in (repoID, snapshotID) whose
	// Kind matches (§4.4 "get_chunks_by_kind").
	GetChunksByKind(ctx context.Context, repoID, snapshotID string, kind model.NodeKind) ([]model.Chunk, error)

	// MarkChunksDeleted soft-deletes the given chunk IDs.
	MarkChunksDeleted(ctx context.Context, chunkIDs []string) error

	// SoftDeleteFileChunks soft-deletes every active chunk in (repoID,
	// snapshotID, filePath) in one call, the file-scoped counterpart to
	// MarkChunksDeleted (§4.4 "soft_delete_file_chunks"; invariant Ch2 — the
	// rows are marked IsDeleted, never physically removed, and remain
	// retrievable via GetChunk).
	SoftDeleteFileChunks(ctx context.Context, repoID, snapshotID, filePath string) error

	// SearchContent returns up to limit active chunks in (repoID,
	// snapshotID) whose Content matches query (§4.4 "search_content").
	// Matching semantics are backend-specific: the server backend runs
	// native Postgres full-text search ranked by ts_rank; the embedded
	// backend falls back to an unranked case-insensitive substring scan,
	// returning matches in ChunkID key order.
	SearchContent(ctx context.Context, repoID, snapshotID, query string, limit int) ([]model.Chunk, error)

	// CountChunks returns the number of active chunks in (repoID,
	// snapshotID) (§4.4 "count_chunks").
	CountChunks(ctx context.Context, repoID, snapshotID string) (int, error)

	// GetStats returns aggregate counts for (repoID, snapshotID) (§4.4
	// "get_stats"), used by `codegraph status` and the benchmark report.
	GetStats(ctx context.Context, repoID, snapshotID string) (Stats, error)

	// SaveDependencies upserts Dependency rows, keyed by Dependency.UniqueKey().
	SaveDependencies(ctx context.Context, deps []model.Dependency) error

	// ListDependencies returns dependency edges out of any chunk in fromChunkIDs.
	ListDependencies(ctx context.Context, fromChunkIDs []string) ([]model.Dependency, error)

	// GetTransitiveDependencies walks the dependency graph breadth-first
	// from chunkID, following outgoing edges up to maxDepth hops, and
	// returns every Dependency edge traversed in BFS order (§4.4
	// "get_transitive_dependencies", bounded by max_depth). A maxDepth <= 0
	// returns no edges. Cycles terminate via a visited-chunk set; a chunk
	// reachable by more than one path is only expanded once.
	GetTransitiveDependencies(ctx context.Context, chunkID string, maxDepth int) ([]model.Dependency, error)

	// ApplyDelta commits every op in delta within a single backend
	// transaction (§5.2, §6); a mid-delta failure leaves the snapshot
	// unchanged.
	ApplyDelta(ctx context.Context, delta model.TransactionDelta) error

	// Close releases any resources held by the backend.
	Close() error
}

// Stats is the aggregate row/edge count summary returned by GetStats.
type Stats struct {
	NodeCount         int `json:"node_count"`
	EdgeCount         int `json:"edge_count"`
	ChunkCount        int `json:"chunk_count"`
	DeletedChunkCount int `json:"deleted_chunk_count"`
	DependencyCount   int `json:"dependency_count"`
}

// bfsTransitiveDependencies walks the dependency graph breadth-first from
// chunkID up to maxDepth hops, using list as the backend's own
// ListDependencies so both EmbeddedBackend and ServerBackend share one BFS
// implementation instead of duplicating the traversal.
func bfsTransitiveDependencies(ctx context.Context, chunkID string, maxDepth int, list func(ctx context.Context, fromChunkIDs []string) ([]model.Dependency, error)) ([]model.Dependency, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	visited := map[string]bool{chunkID: true}
	frontier := []string{chunkID}
	var out []model.Dependency

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		deps, err := list(ctx, frontier)
		if err != nil {
			return nil, err
		}

		var next []string
		for _, d := range deps {
			out = append(out, d)
			if !visited[d.ToChunkID] {
				visited[d.ToChunkID] = true
				next = append(next, d.ToChunkID)
			}
		}
		frontier = next
	}

	return out, nil
}
