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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/model"
)

func setupTestStorage(t *testing.T) *EmbeddedBackend {
	t.Helper()
	backend, err := NewEmbeddedBackend(EmbeddedConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func TestNewEmbeddedBackend_CreatesBuckets(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	nodes, err := backend.ListNodes(ctx, "repo1", "snap1")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestEmbeddedBackend_SaveAndListNodes(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	fn := model.Node{ID: "node:1", Kind: model.NodeFunction, FQN: "a.go#f", FilePath: "a.go"}
	cls := model.Node{ID: "node:2", Kind: model.NodeClass, FQN: "a.go#C", FilePath: "a.go"}
	require.NoError(t, backend.SaveNodes(ctx, []model.Node{fn, cls}))

	got, ok, err := backend.GetNode(ctx, "node:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.go#f", got.FQN)

	funcs, err := backend.ListNodes(ctx, "repo1", "snap1", model.NodeFunction)
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	assert.Equal(t, "node:1", funcs[0].ID)

	all, err := backend.ListNodes(ctx, "repo1", "snap1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEmbeddedBackend_MarkChunksDeletedByID(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	c := model.Chunk{ChunkID: "chunk:1", RepoID: "r1", SnapshotID: "s1", FilePath: "a.go"}
	require.NoError(t, backend.SaveChunks(ctx, []model.Chunk{c}))

	active, err := backend.ListChunks(ctx, "r1", "s1")
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, backend.MarkChunksDeleted(ctx, []string{"chunk:1"}))

	active, err = backend.ListChunks(ctx, "r1", "s1")
	require.NoError(t, err)
	assert.Empty(t, active, "soft-deleted chunks must never be returned by ListChunks")
}

// TestEmbeddedBackend_SoftDeleteThenReAdd exercises golden scenario §8.6:
// soft-delete every chunk under a file path, confirm ListChunks hides them,
// then re-add a chunk under the same path and confirm exactly one active
// chunk exists while every soft-deleted row remains individually
// retrievable via GetChunk with IsDeleted = true.
func TestEmbeddedBackend_SoftDeleteThenReAdd(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	const repoID, snapshotID, path = "r1", "s1", "src/test.rs"
	var original []model.Chunk
	for i := 0; i < 10; i++ {
		original = append(original, model.Chunk{
			ChunkID: "chunk:old:" + string(rune('a'+i)), RepoID: repoID, SnapshotID: snapshotID,
			FilePath: path, Content: "old content",
		})
	}
	require.NoError(t, backend.SaveChunks(ctx, original))

	require.NoError(t, backend.SoftDeleteFileChunks(ctx, repoID, snapshotID, path))

	active, err := backend.ListChunks(ctx, repoID, snapshotID)
	require.NoError(t, err)
	assert.Empty(t, active, "soft_delete_file_chunks must hide every chunk for the file")

	for _, c := range original {
		got, ok, err := backend.GetChunk(ctx, c.ChunkID)
		require.NoError(t, err)
		require.True(t, ok, "soft-deleted chunks remain retrievable by id")
		assert.True(t, got.IsDeleted)
	}

	replacement := model.Chunk{ChunkID: "chunk:new:1", RepoID: repoID, SnapshotID: snapshotID, FilePath: path, Content: "new content"}
	require.NoError(t, backend.SaveChunks(ctx, []model.Chunk{replacement}))

	active, err = backend.ListChunks(ctx, repoID, snapshotID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "chunk:new:1", active[0].ChunkID)
}

func TestEmbeddedBackend_GetChunksByFileFQNKind(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	a := model.Chunk{ChunkID: "c1", RepoID: "r1", SnapshotID: "s1", FilePath: "a.go", FQN: "pkg.A", Kind: model.NodeFunction}
	b := model.Chunk{ChunkID: "c2", RepoID: "r1", SnapshotID: "s1", FilePath: "b.go", FQN: "pkg.B", Kind: model.NodeClass}
	require.NoError(t, backend.SaveChunks(ctx, []model.Chunk{a, b}))

	byFile, err := backend.GetChunksByFile(ctx, "r1", "s1", "a.go")
	require.NoError(t, err)
	require.Len(t, byFile, 1)
	assert.Equal(t, "c1", byFile[0].ChunkID)

	byFQN, err := backend.GetChunksByFQN(ctx, "r1", "s1", "pkg.B")
	require.NoError(t, err)
	require.Len(t, byFQN, 1)
	assert.Equal(t, "c2", byFQN[0].ChunkID)

	byKind, err := backend.GetChunksByKind(ctx, "r1", "s1", model.NodeFunction)
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, "c1", byKind[0].ChunkID)
}

func TestEmbeddedBackend_SearchContent(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	a := model.Chunk{ChunkID: "c1", RepoID: "r1", SnapshotID: "s1", FilePath: "a.go", Content: "func ParseToken(s string) Token"}
	b := model.Chunk{ChunkID: "c2", RepoID: "r1", SnapshotID: "s1", FilePath: "b.go", Content: "func Render(w io.Writer)"}
	require.NoError(t, backend.SaveChunks(ctx, []model.Chunk{a, b}))

	hits, err := backend.SearchContent(ctx, "r1", "s1", "token", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].ChunkID)
}

func TestEmbeddedBackend_CountChunksAndGetStats(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	chunks := []model.Chunk{
		{ChunkID: "c1", RepoID: "r1", SnapshotID: "s1", FilePath: "a.go"},
		{ChunkID: "c2", RepoID: "r1", SnapshotID: "s1", FilePath: "b.go"},
	}
	require.NoError(t, backend.SaveChunks(ctx, chunks))
	require.NoError(t, backend.MarkChunksDeleted(ctx, []string{"c2"}))

	count, err := backend.CountChunks(ctx, "r1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stats, err := backend.GetStats(ctx, "r1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunkCount)
	assert.Equal(t, 1, stats.DeletedChunkCount)
}

func TestEmbeddedBackend_GetTransitiveDependencies(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	deps := []model.Dependency{
		{FromChunkID: "a", ToChunkID: "b", Relationship: model.DepCalls},
		{FromChunkID: "b", ToChunkID: "c", Relationship: model.DepCalls},
		{FromChunkID: "c", ToChunkID: "a", Relationship: model.DepCalls}, // cycle back to a
	}
	require.NoError(t, backend.SaveDependencies(ctx, deps))

	got, err := backend.GetTransitiveDependencies(ctx, "a", 2)
	require.NoError(t, err)
	require.Len(t, got, 2, "BFS bounded to 2 hops visits a->b and b->c, not c->a")
	assert.Equal(t, "b", got[0].ToChunkID)
	assert.Equal(t, "c", got[1].ToChunkID)

	none, err := backend.GetTransitiveDependencies(ctx, "a", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEmbeddedBackend_ApplyDelta(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	n := model.Node{ID: "node:1", Kind: model.NodeFunction, FilePath: "a.go"}
	delta := model.TransactionDelta{
		TxnId:  "txn:1",
		RepoID: "r1",
		Ops:    []model.ChangeOp{{Kind: model.OpAddNode, Node: &n}},
	}
	require.NoError(t, backend.ApplyDelta(ctx, delta))

	got, ok, err := backend.GetNode(ctx, "node:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.NodeFunction, got.Kind)

	del := model.TransactionDelta{
		TxnId: "txn:2",
		Ops:   []model.ChangeOp{{Kind: model.OpDeleteNode, NodeID: "node:1"}},
	}
	require.NoError(t, backend.ApplyDelta(ctx, del))

	_, ok, err = backend.GetNode(ctx, "node:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmbeddedBackend_ApplyDelta_Empty(t *testing.T) {
	backend := setupTestStorage(t)
	require.NoError(t, backend.ApplyDelta(context.Background(), model.TransactionDelta{}))
}
