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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/singleflight"

	"github.com/kraklabs/codegraph/pkg/model"
)

var (
	bucketRepositories  = []byte("repositories")
	bucketSnapshots     = []byte("snapshots")
	bucketFileMetadata  = []byte("file_metadata")
	bucketNodes         = []byte("nodes")
	bucketEdges         = []byte("edges")
	bucketChunks        = []byte("chunks")
	bucketDependencies  = []byte("dependencies")
)

var allBuckets = [][]byte{
	bucketRepositories, bucketSnapshots, bucketFileMetadata,
	bucketNodes, bucketEdges, bucketChunks, bucketDependencies,
}

// EmbeddedBackend implements Backend on a local go.etcd.io/bbolt file,
// the single-writer embedded engine named in §4.4. bbolt serializes all
// writers through one read-write transaction at a time and serves readers
// from a consistent MVCC snapshot, which is exactly the consistency model
// §4.4 calls for in the embedded deployment.
type EmbeddedBackend struct {
	db     *bolt.DB
	closed bool

	searchGroup singleflight.Group
}

// EmbeddedConfig configures the embedded backend.
type EmbeddedConfig struct {
	// DataDir is the directory holding the bbolt file. Defaults to
	// ~/.codegraph/data/<project_id>.
	DataDir string

	// ProjectID namespaces DataDir when DataDir is left empty.
	ProjectID string
}

// NewEmbeddedBackend opens (creating if absent) the bbolt file and ensures
// every collection bucket exists.
func NewEmbeddedBackend(config EmbeddedConfig) (*EmbeddedBackend, error) {
	if config.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		config.DataDir = filepath.Join(homeDir, ".codegraph", "data")
		if config.ProjectID != "" {
			config.DataDir = filepath.Join(config.DataDir, config.ProjectID)
		}
	}

	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(config.DataDir, "codegraph.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, model.NewStorageError("open bbolt database", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, model.NewStorageError("create buckets", err)
	}

	return &EmbeddedBackend{db: db}, nil
}

func (b *EmbeddedBackend) putJSON(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return model.NewStorageError("marshal value", err)
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
	if err != nil {
		return model.NewStorageError("bbolt put", err)
	}
	return nil
}

func (b *EmbeddedBackend) SaveRepository(ctx context.Context, repo model.Repository) error {
	return b.putJSON(bucketRepositories, repo.RepoID, repo)
}

func (b *EmbeddedBackend) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	return b.putJSON(bucketSnapshots, snap.SnapshotID, snap)
}

func (b *EmbeddedBackend) GetFileMetadata(ctx context.Context, repoID, snapshotID, filePath string) (model.FileMetadata, bool, error) {
	key := model.FileMetadata{RepoID: repoID, SnapshotID: snapshotID, FilePath: filePath}.Key()
	var meta model.FileMetadata
	found := false
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketFileMetadata).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &meta)
	})
	if err != nil {
		return model.FileMetadata{}, false, model.NewStorageError("get file metadata", err)
	}
	return meta, found, nil
}

func (b *EmbeddedBackend) SaveFileMetadata(ctx context.Context, metas []model.FileMetadata) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketFileMetadata)
		for _, m := range metas {
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			if err := bk.Put([]byte(m.Key()), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *EmbeddedBackend) SaveNodes(ctx context.Context, nodes []model.Node) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketNodes)
		for _, n := range nodes {
			data, err := json.Marshal(n)
			if err != nil {
				return err
			}
			if err := bk.Put([]byte(n.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *EmbeddedBackend) SaveEdges(ctx context.Context, edges []model.Edge) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketEdges)
		seq, err := bk.NextSequence()
		if err != nil {
			return err
		}
		for _, e := range edges {
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			key := fmt.Sprintf("%020d", seq)
			if err := bk.Put([]byte(key), data); err != nil {
				return err
			}
			seq++
		}
		return nil
	})
}

func (b *EmbeddedBackend) GetNode(ctx context.Context, nodeID string) (model.Node, bool, error) {
	var n model.Node
	found := false
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketNodes).Get([]byte(nodeID))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &n)
	})
	if err != nil {
		return model.Node{}, false, model.NewStorageError("get node", err)
	}
	return n, found, nil
}

func (b *EmbeddedBackend) ListNodes(ctx context.Context, repoID, snapshotID string, kinds ...model.NodeKind) ([]model.Node, error) {
	want := kindSet(kinds)
	var out []model.Node
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).ForEach(func(k, v []byte) error {
			var n model.Node
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			if len(want) == 0 || want[n.Kind] {
				out = append(out, n)
			}
			return nil
		})
	})
	if err != nil {
		return nil, model.NewStorageError("list nodes", err)
	}
	return out, nil
}

func (b *EmbeddedBackend) ListEdges(ctx context.Context, repoID, snapshotID string, kinds ...model.EdgeKind) ([]model.Edge, error) {
	want := make(map[model.EdgeKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []model.Edge
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEdges).ForEach(func(k, v []byte) error {
			var e model.Edge
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			if len(want) == 0 || want[e.Kind] {
				out = append(out, e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, model.NewStorageError("list edges", err)
	}
	return out, nil
}

func (b *EmbeddedBackend) SaveChunks(ctx context.Context, chunks []model.Chunk) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketChunks)
		for _, c := range chunks {
			data, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := bk.Put([]byte(c.ChunkID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *EmbeddedBackend) ListChunks(ctx context.Context, repoID, snapshotID string) ([]model.Chunk, error) {
	var out []model.Chunk
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
			var c model.Chunk
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			if c.IsDeleted {
				return nil
			}
			if (repoID == "" || c.RepoID == repoID) && (snapshotID == "" || c.SnapshotID == snapshotID) {
				out = append(out, c)
			}
			return nil
		})
	})
	if err != nil {
		return nil, model.NewStorageError("list chunks", err)
	}
	return out, nil
}

func (b *EmbeddedBackend) GetChunk(ctx context.Context, chunkID string) (model.Chunk, bool, error) {
	var c model.Chunk
	found := false
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(chunkID))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &c)
	})
	if err != nil {
		return model.Chunk{}, false, model.NewStorageError("get chunk", err)
	}
	return c, found, nil
}

func (b *EmbeddedBackend) GetChunksByFile(ctx context.Context, repoID, snapshotID, filePath string) ([]model.Chunk, error) {
	return b.filterChunks(repoID, snapshotID, func(c model.Chunk) bool {
		return c.FilePath == filePath
	})
}

func (b *EmbeddedBackend) GetChunksByFQN(ctx context.Context, repoID, snapshotID, fqn string) ([]model.Chunk, error) {
	return b.filterChunks(repoID, snapshotID, func(c model.Chunk) bool {
		return c.FQN == fqn
	})
}

func (b *EmbeddedBackend) GetChunksByKind(ctx context.Context, repoID, snapshotID string, kind model.NodeKind) ([]model.Chunk, error) {
	return b.filterChunks(repoID, snapshotID, func(c model.Chunk) bool {
		return c.Kind == kind
	})
}

// filterChunks scans active chunks in (repoID, snapshotID) matching keep,
// shared by the by-file/by-fqn/by-kind getters.
func (b *EmbeddedBackend) filterChunks(repoID, snapshotID string, keep func(model.Chunk) bool) ([]model.Chunk, error) {
	var out []model.Chunk
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
			var c model.Chunk
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			if c.IsDeleted || c.RepoID != repoID || c.SnapshotID != snapshotID {
				return nil
			}
			if keep(c) {
				out = append(out, c)
			}
			return nil
		})
	})
	if err != nil {
		return nil, model.NewStorageError("filter chunks", err)
	}
	return out, nil
}

func (b *EmbeddedBackend) MarkChunksDeleted(ctx context.Context, chunkIDs []string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketChunks)
		for _, id := range chunkIDs {
			data := bk.Get([]byte(id))
			if data == nil {
				continue
			}
			var c model.Chunk
			if err := json.Unmarshal(data, &c); err != nil {
				return err
			}
			c.IsDeleted = true
			c.UpdatedAt = time.Now()
			newData, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := bk.Put([]byte(id), newData); err != nil {
				return err
			}
		}
		return nil
	})
}

// SoftDeleteFileChunks marks every active chunk in (repoID, snapshotID,
// filePath) deleted, so a full file re-extraction can be expressed as
// soft-delete-then-re-add (invariant Ch2, golden scenario §8.6).
func (b *EmbeddedBackend) SoftDeleteFileChunks(ctx context.Context, repoID, snapshotID, filePath string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketChunks)
		return bk.ForEach(func(k, v []byte) error {
			var c model.Chunk
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			if c.IsDeleted || c.RepoID != repoID || c.SnapshotID != snapshotID || c.FilePath != filePath {
				return nil
			}
			c.IsDeleted = true
			c.UpdatedAt = time.Now()
			data, err := json.Marshal(c)
			if err != nil {
				return err
			}
			return bk.Put(k, data)
		})
	})
	if err != nil {
		return model.NewStorageError("soft delete file chunks", err)
	}
	return nil
}

// SearchContent matches query against chunk Content with a case-insensitive
// substring scan, the embedded backend's simpler equivalent of the server
// backend's native Postgres full-text search (§4.4). Concurrent callers
// racing the same (repoID, snapshotID, query, limit) share one scan via
// singleflight.
func (b *EmbeddedBackend) SearchContent(ctx context.Context, repoID, snapshotID, query string, limit int) ([]model.Chunk, error) {
	key := fmt.Sprintf("%s|%s|%s|%d", repoID, snapshotID, query, limit)
	v, err, _ := b.searchGroup.Do(key, func() (any, error) {
		needle := strings.ToLower(query)
		var out []model.Chunk
		err := b.db.View(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
				var c model.Chunk
				if err := json.Unmarshal(v, &c); err != nil {
					return err
				}
				if c.IsDeleted || c.RepoID != repoID || c.SnapshotID != snapshotID {
					return nil
				}
				if strings.Contains(strings.ToLower(c.Content), needle) {
					out = append(out, c)
				}
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return out, nil
	})
	if err != nil {
		return nil, model.NewStorageError("search content", err)
	}
	return v.([]model.Chunk), nil
}

// CountChunks returns the number of active chunks in (repoID, snapshotID).
func (b *EmbeddedBackend) CountChunks(ctx context.Context, repoID, snapshotID string) (int, error) {
	chunks, err := b.ListChunks(ctx, repoID, snapshotID)
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// GetStats returns aggregate node/edge/chunk/dependency counts for
// (repoID, snapshotID).
func (b *EmbeddedBackend) GetStats(ctx context.Context, repoID, snapshotID string) (Stats, error) {
	var stats Stats
	err := b.db.View(func(tx *bolt.Tx) error {
		// Node/Edge carry no RepoID/SnapshotID (§3.1/§3.2 scope them to the
		// caller's snapshot via the chunk/FileMetadata layer instead), so the
		// counts here match ListNodes/ListEdges's own all-buckets scan.
		nodeCount := 0
		if err := tx.Bucket(bucketNodes).ForEach(func(k, v []byte) error {
			nodeCount++
			return nil
		}); err != nil {
			return err
		}
		stats.NodeCount = nodeCount

		edgeCount := 0
		if err := tx.Bucket(bucketEdges).ForEach(func(k, v []byte) error {
			edgeCount++
			return nil
		}); err != nil {
			return err
		}
		stats.EdgeCount = edgeCount
		chunkIDs := map[string]bool{}
		if err := tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
			var c model.Chunk
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			if c.RepoID != repoID || c.SnapshotID != snapshotID {
				return nil
			}
			if c.IsDeleted {
				stats.DeletedChunkCount++
			} else {
				stats.ChunkCount++
				chunkIDs[c.ChunkID] = true
			}
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(bucketDependencies).ForEach(func(k, v []byte) error {
			var d model.Dependency
			if err := json.Unmarshal(v, &d); err != nil {
				return err
			}
			if chunkIDs[d.FromChunkID] {
				stats.DependencyCount++
			}
			return nil
		})
	})
	if err != nil {
		return Stats{}, model.NewStorageError("get stats", err)
	}
	return stats, nil
}

func (b *EmbeddedBackend) SaveDependencies(ctx context.Context, deps []model.Dependency) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketDependencies)
		for _, d := range deps {
			data, err := json.Marshal(d)
			if err != nil {
				return err
			}
			if err := bk.Put([]byte(d.UniqueKey()), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *EmbeddedBackend) ListDependencies(ctx context.Context, fromChunkIDs []string) ([]model.Dependency, error) {
	want := make(map[string]bool, len(fromChunkIDs))
	for _, id := range fromChunkIDs {
		want[id] = true
	}
	var out []model.Dependency
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDependencies).ForEach(func(k, v []byte) error {
			var d model.Dependency
			if err := json.Unmarshal(v, &d); err != nil {
				return err
			}
			if len(want) == 0 || want[d.FromChunkID] {
				out = append(out, d)
			}
			return nil
		})
	})
	if err != nil {
		return nil, model.NewStorageError("list dependencies", err)
	}
	return out, nil
}

// GetTransitiveDependencies walks the dependency graph breadth-first from
// chunkID, reusing ListDependencies for each BFS frontier.
func (b *EmbeddedBackend) GetTransitiveDependencies(ctx context.Context, chunkID string, maxDepth int) ([]model.Dependency, error) {
	return bfsTransitiveDependencies(ctx, chunkID, maxDepth, b.ListDependencies)
}

// ApplyDelta commits every op in a single bbolt read-write transaction:
// bbolt aborts the whole transaction if the update func returns an error,
// so a mid-delta failure leaves every bucket untouched.
func (b *EmbeddedBackend) ApplyDelta(ctx context.Context, delta model.TransactionDelta) error {
	if delta.IsEmpty() {
		return nil
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		nodes := tx.Bucket(bucketNodes)
		edges := tx.Bucket(bucketEdges)
		for _, op := range delta.Ops {
			switch op.Kind {
			case model.OpAddNode, model.OpUpdateNode:
				if op.Node == nil {
					return fmt.Errorf("delta op %s missing node", op.Kind)
				}
				data, err := json.Marshal(*op.Node)
				if err != nil {
					return err
				}
				if err := nodes.Put([]byte(op.Node.ID), data); err != nil {
					return err
				}
			case model.OpDeleteNode:
				if err := nodes.Delete([]byte(op.NodeID)); err != nil {
					return err
				}
			case model.OpAddEdge:
				if op.Edge == nil {
					return fmt.Errorf("delta op %s missing edge", op.Kind)
				}
				seq, err := edges.NextSequence()
				if err != nil {
					return err
				}
				data, err := json.Marshal(*op.Edge)
				if err != nil {
					return err
				}
				if err := edges.Put([]byte(fmt.Sprintf("%020d", seq)), data); err != nil {
					return err
				}
			case model.OpDeleteEdge:
				if err := deleteMatchingEdge(edges, op); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown change op kind: %s", op.Kind)
			}
		}
		return nil
	})
	if err != nil {
		return model.NewStorageError("apply delta", err)
	}
	return nil
}

func deleteMatchingEdge(bk *bolt.Bucket, op model.ChangeOp) error {
	c := bk.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var e model.Edge
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		if e.SourceID == op.EdgeSourceID && e.TargetID == op.EdgeTargetID && e.Kind == op.EdgeKind {
			return bk.Delete(k)
		}
	}
	return nil
}

// Close closes the underlying bbolt database.
func (b *EmbeddedBackend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

func kindSet(kinds []model.NodeKind) map[model.NodeKind]bool {
	if len(kinds) == 0 {
		return nil
	}
	m := make(map[model.NodeKind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

var _ Backend = (*EmbeddedBackend)(nil)
