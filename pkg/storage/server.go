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
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/kraklabs/codegraph/pkg/model"
)

// ServerConfig configures the server (multi-writer) backend's Postgres
// connection and pool (§4.4 "server multi-writer").
type ServerConfig struct {
	DSN string

	MaxIdleConns    int // defaults to 10
	MaxOpenConns    int // defaults to 100
	ConnMaxLifetime time.Duration // defaults to 1 hour
}

// gormRepository, gormSnapshot, ... mirror the model package's value types
// but add GORM tags; they stay private so callers only ever see
// model.Repository etc., keeping ServerBackend's schema an implementation
// detail the way EmbeddedBackend's bbolt buckets are.
type gormRepository struct {
	RepoID        string `gorm:"primaryKey"`
	Name          string
	RemoteURL     string
	LocalPath     string
	DefaultBranch string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type gormSnapshot struct {
	SnapshotID string `gorm:"primaryKey"`
	RepoID     string `gorm:"index"`
	CommitHash string
	Branch     string
	CreatedAt  time.Time
}

type gormFileMetadata struct {
	Key          string `gorm:"primaryKey"`
	RepoID       string `gorm:"index"`
	SnapshotID   string `gorm:"index"`
	FilePath     string
	ContentHash  string
	LastAnalyzed time.Time
}

type gormNode struct {
	ID         string `gorm:"primaryKey"`
	Kind       string `gorm:"index"`
	FQN        string
	FilePath   string `gorm:"index"`
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
	Language   string
	ParentID   string `gorm:"index"`
	Name       string
	StableID   string
	ContentHash string
	DescriptorJSON string
	RepoID     string `gorm:"index"`
	SnapshotID string `gorm:"index"`
}

type gormEdge struct {
	ID       uint `gorm:"primaryKey;autoIncrement"`
	SourceID string `gorm:"index"`
	TargetID string `gorm:"index"`
	Kind     string `gorm:"index"`
	RepoID   string `gorm:"index"`
	SnapshotID string `gorm:"index"`
}

type gormChunk struct {
	ChunkID     string `gorm:"primaryKey"`
	RepoID      string `gorm:"index"`
	SnapshotID  string `gorm:"index"`
	FilePath    string
	StartLine   int
	EndLine     int
	Kind        string
	FQN         string
	Language    string
	Visibility  string
	Content     string
	ContentHash string
	Summary     string
	Importance  float64
	IsDeleted   bool `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type gormDependency struct {
	Key          string `gorm:"primaryKey"`
	FromChunkID  string `gorm:"index"`
	ToChunkID    string `gorm:"index"`
	Relationship string
	Confidence   float64
}

// ServerBackend implements Backend on Postgres via gorm, the multi-writer
// engine named in §4.4. Multiple processes may hold a *ServerBackend
// against the same database concurrently; Postgres's own MVCC and row
// locking provide the isolation EmbeddedBackend gets from bbolt's
// single-writer transactions.
type ServerBackend struct {
	db *gorm.DB

	searchGroup singleflight.Group
}

// NewServerBackend opens a pooled Postgres connection and migrates the
// schema.
func NewServerBackend(config ServerConfig) (*ServerBackend, error) {
	db, err := gorm.Open(postgres.Open(config.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, model.NewStorageError("open postgres connection", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, model.NewStorageError("get underlying sql.DB", err)
	}
	maxIdle := config.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 10
	}
	maxOpen := config.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 100
	}
	lifetime := config.ConnMaxLifetime
	if lifetime == 0 {
		lifetime = time.Hour
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(lifetime)

	err = db.AutoMigrate(
		&gormRepository{}, &gormSnapshot{}, &gormFileMetadata{},
		&gormNode{}, &gormEdge{}, &gormChunk{}, &gormDependency{},
	)
	if err != nil {
		return nil, model.NewStorageError("auto-migrate schema", err)
	}

	return &ServerBackend{db: db}, nil
}

func (b *ServerBackend) withCtx(ctx context.Context) *gorm.DB { return b.db.WithContext(ctx) }

func (b *ServerBackend) SaveRepository(ctx context.Context, repo model.Repository) error {
	row := gormRepository{
		RepoID: repo.RepoID, Name: repo.Name, RemoteURL: repo.RemoteURL,
		LocalPath: repo.LocalPath, DefaultBranch: repo.DefaultBranch,
		CreatedAt: repo.CreatedAt, UpdatedAt: repo.UpdatedAt,
	}
	err := b.withCtx(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "repo_id"}}, UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return model.NewStorageError("save repository", err)
	}
	return nil
}

func (b *ServerBackend) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	row := gormSnapshot{
		SnapshotID: snap.SnapshotID, RepoID: snap.RepoID,
		CommitHash: snap.CommitHash, Branch: snap.Branch, CreatedAt: snap.CreatedAt,
	}
	err := b.withCtx(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "snapshot_id"}}, UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return model.NewStorageError("save snapshot", err)
	}
	return nil
}

func (b *ServerBackend) GetFileMetadata(ctx context.Context, repoID, snapshotID, filePath string) (model.FileMetadata, bool, error) {
	key := model.FileMetadata{RepoID: repoID, SnapshotID: snapshotID, FilePath: filePath}.Key()
	var row gormFileMetadata
	err := b.withCtx(ctx).First(&row, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return model.FileMetadata{}, false, nil
	}
	if err != nil {
		return model.FileMetadata{}, false, model.NewStorageError("get file metadata", err)
	}
	return model.FileMetadata{
		RepoID: row.RepoID, SnapshotID: row.SnapshotID, FilePath: row.FilePath,
		ContentHash: row.ContentHash, LastAnalyzed: row.LastAnalyzed,
	}, true, nil
}

func (b *ServerBackend) SaveFileMetadata(ctx context.Context, metas []model.FileMetadata) error {
	if len(metas) == 0 {
		return nil
	}
	rows := make([]gormFileMetadata, len(metas))
	for i, m := range metas {
		rows[i] = gormFileMetadata{
			Key: m.Key(), RepoID: m.RepoID, SnapshotID: m.SnapshotID,
			FilePath: m.FilePath, ContentHash: m.ContentHash, LastAnalyzed: m.LastAnalyzed,
		}
	}
	err := b.withCtx(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}}, UpdateAll: true,
	}).CreateInBatches(rows, batchSize).Error
	if err != nil {
		return model.NewStorageError("save file metadata", err)
	}
	return nil
}

func (b *ServerBackend) SaveNodes(ctx context.Context, nodes []model.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	rows := make([]gormNode, len(nodes))
	for i, n := range nodes {
		rows[i] = nodeToRow(n)
	}
	err := b.withCtx(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}}, UpdateAll: true,
	}).CreateInBatches(rows, batchSize).Error
	if err != nil {
		return model.NewStorageError("save nodes", err)
	}
	return nil
}

func (b *ServerBackend) SaveEdges(ctx context.Context, edges []model.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	rows := make([]gormEdge, len(edges))
	for i, e := range edges {
		rows[i] = gormEdge{SourceID: e.SourceID, TargetID: e.TargetID, Kind: string(e.Kind)}
	}
	if err := b.withCtx(ctx).CreateInBatches(rows, batchSize).Error; err != nil {
		return model.NewStorageError("save edges", err)
	}
	return nil
}

func (b *ServerBackend) GetNode(ctx context.Context, nodeID string) (model.Node, bool, error) {
	var row gormNode
	err := b.withCtx(ctx).First(&row, "id = ?", nodeID).Error
	if err == gorm.ErrRecordNotFound {
		return model.Node{}, false, nil
	}
	if err != nil {
		return model.Node{}, false, model.NewStorageError("get node", err)
	}
	return rowToNode(row), true, nil
}

func (b *ServerBackend) ListNodes(ctx context.Context, repoID, snapshotID string, kinds ...model.NodeKind) ([]model.Node, error) {
	q := b.withCtx(ctx).Model(&gormNode{})
	if repoID != "" {
		q = q.Where("repo_id = ?", repoID)
	}
	if snapshotID != "" {
		q = q.Where("snapshot_id = ?", snapshotID)
	}
	if len(kinds) > 0 {
		q = q.Where("kind IN ?", kindStrings(kinds))
	}
	var rows []gormNode
	if err := q.Find(&rows).Error; err != nil {
		return nil, model.NewStorageError("list nodes", err)
	}
	out := make([]model.Node, len(rows))
	for i, r := range rows {
		out[i] = rowToNode(r)
	}
	return out, nil
}

func (b *ServerBackend) ListEdges(ctx context.Context, repoID, snapshotID string, kinds ...model.EdgeKind) ([]model.Edge, error) {
	q := b.withCtx(ctx).Model(&gormEdge{})
	if repoID != "" {
		q = q.Where("repo_id = ?", repoID)
	}
	if snapshotID != "" {
		q = q.Where("snapshot_id = ?", snapshotID)
	}
	if len(kinds) > 0 {
		strs := make([]string, len(kinds))
		for i, k := range kinds {
			strs[i] = string(k)
		}
		q = q.Where("kind IN ?", strs)
	}
	var rows []gormEdge
	if err := q.Find(&rows).Error; err != nil {
		return nil, model.NewStorageError("list edges", err)
	}
	out := make([]model.Edge, len(rows))
	for i, r := range rows {
		out[i] = model.Edge{SourceID: r.SourceID, TargetID: r.TargetID, Kind: model.EdgeKind(r.Kind)}
	}
	return out, nil
}

func (b *ServerBackend) SaveChunks(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]gormChunk, len(chunks))
	for i, c := range chunks {
		rows[i] = chunkToRow(c)
	}
	err := b.withCtx(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chunk_id"}}, UpdateAll: true,
	}).CreateInBatches(rows, batchSize).Error
	if err != nil {
		return model.NewStorageError("save chunks", err)
	}
	return nil
}

func (b *ServerBackend) ListChunks(ctx context.Context, repoID, snapshotID string) ([]model.Chunk, error) {
	q := b.withCtx(ctx).Model(&gormChunk{}).Where("is_deleted = ?", false)
	if repoID != "" {
		q = q.Where("repo_id = ?", repoID)
	}
	if snapshotID != "" {
		q = q.Where("snapshot_id = ?", snapshotID)
	}
	var rows []gormChunk
	if err := q.Find(&rows).Error; err != nil {
		return nil, model.NewStorageError("list chunks", err)
	}
	out := make([]model.Chunk, len(rows))
	for i, r := range rows {
		out[i] = rowToChunk(r)
	}
	return out, nil
}

func (b *ServerBackend) GetChunk(ctx context.Context, chunkID string) (model.Chunk, bool, error) {
	var row gormChunk
	err := b.withCtx(ctx).First(&row, "chunk_id = ?", chunkID).Error
	if err == gorm.ErrRecordNotFound {
		return model.Chunk{}, false, nil
	}
	if err != nil {
		return model.Chunk{}, false, model.NewStorageError("get chunk", err)
	}
	return rowToChunk(row), true, nil
}

func (b *ServerBackend) GetChunksByFile(ctx context.Context, repoID, snapshotID, filePath string) ([]model.Chunk, error) {
	return b.queryChunks(ctx, "repo_id = ? AND snapshot_id = ? AND file_path = ? AND is_deleted = ?", repoID, snapshotID, filePath, false)
}

func (b *ServerBackend) GetChunksByFQN(ctx context.Context, repoID, snapshotID, fqn string) ([]model.Chunk, error) {
	return b.queryChunks(ctx, "repo_id = ? AND snapshot_id = ? AND fqn = ? AND is_deleted = ?", repoID, snapshotID, fqn, false)
}

func (b *ServerBackend) GetChunksByKind(ctx context.Context, repoID, snapshotID string, kind model.NodeKind) ([]model.Chunk, error) {
	return b.queryChunks(ctx, "repo_id = ? AND snapshot_id = ? AND kind = ? AND is_deleted = ?", repoID, snapshotID, string(kind), false)
}

// queryChunks runs a gorm Where clause against gormChunk and maps the
// result back to model.Chunk, shared by the by-file/by-fqn/by-kind getters.
func (b *ServerBackend) queryChunks(ctx context.Context, query string, args ...any) ([]model.Chunk, error) {
	var rows []gormChunk
	if err := b.withCtx(ctx).Where(query, args...).Find(&rows).Error; err != nil {
		return nil, model.NewStorageError("query chunks", err)
	}
	out := make([]model.Chunk, len(rows))
	for i, r := range rows {
		out[i] = rowToChunk(r)
	}
	return out, nil
}

func (b *ServerBackend) MarkChunksDeleted(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	err := b.withCtx(ctx).Model(&gormChunk{}).Where("chunk_id IN ?", chunkIDs).
		Updates(map[string]any{"is_deleted": true, "updated_at": time.Now()}).Error
	if err != nil {
		return model.NewStorageError("mark chunks deleted", err)
	}
	return nil
}

// SoftDeleteFileChunks soft-deletes every active chunk in (repoID,
// snapshotID, filePath), the file-scoped counterpart to MarkChunksDeleted
// (§4.4 "soft_delete_file_chunks"; invariant Ch2).
func (b *ServerBackend) SoftDeleteFileChunks(ctx context.Context, repoID, snapshotID, filePath string) error {
	err := b.withCtx(ctx).Model(&gormChunk{}).
		Where("repo_id = ? AND snapshot_id = ? AND file_path = ? AND is_deleted = ?", repoID, snapshotID, filePath, false).
		Updates(map[string]any{"is_deleted": true, "updated_at": time.Now()}).Error
	if err != nil {
		return model.NewStorageError("soft delete file chunks", err)
	}
	return nil
}

// SearchContent runs native Postgres full-text search over chunk content
// (§4.4 "search_content"; domain-stack claim for gorm.io/driver/postgres):
// to_tsvector('english', content) @@ plainto_tsquery('english', query),
// ranked by ts_rank. Concurrent callers racing the same (repoID,
// snapshotID, query, limit) share one query execution via singleflight.
func (b *ServerBackend) SearchContent(ctx context.Context, repoID, snapshotID, query string, limit int) ([]model.Chunk, error) {
	key := fmt.Sprintf("%s|%s|%s|%d", repoID, snapshotID, query, limit)
	v, err, _ := b.searchGroup.Do(key, func() (any, error) {
		q := b.withCtx(ctx).Model(&gormChunk{}).
			Where("repo_id = ? AND snapshot_id = ? AND is_deleted = ?", repoID, snapshotID, false).
			Where("to_tsvector('english', content) @@ plainto_tsquery('english', ?)", query).
			Order(clause.OrderBy{Expression: clause.Expr{
				SQL:                "ts_rank(to_tsvector('english', content), plainto_tsquery('english', ?)) DESC",
				Vars:               []any{query},
				WithoutParentheses: true,
			}})
		if limit > 0 {
			q = q.Limit(limit)
		}
		var rows []gormChunk
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]model.Chunk, len(rows))
		for i, r := range rows {
			out[i] = rowToChunk(r)
		}
		return out, nil
	})
	if err != nil {
		return nil, model.NewStorageError("search content", err)
	}
	return v.([]model.Chunk), nil
}

// CountChunks returns the number of active chunks in (repoID, snapshotID).
func (b *ServerBackend) CountChunks(ctx context.Context, repoID, snapshotID string) (int, error) {
	var count int64
	err := b.withCtx(ctx).Model(&gormChunk{}).
		Where("repo_id = ? AND snapshot_id = ? AND is_deleted = ?", repoID, snapshotID, false).
		Count(&count).Error
	if err != nil {
		return 0, model.NewStorageError("count chunks", err)
	}
	return int(count), nil
}

// GetStats returns aggregate node/edge/chunk/dependency counts for
// (repoID, snapshotID).
func (b *ServerBackend) GetStats(ctx context.Context, repoID, snapshotID string) (Stats, error) {
	var stats Stats

	var nodeCount int64
	if err := b.withCtx(ctx).Model(&gormNode{}).
		Where("repo_id = ? AND snapshot_id = ?", repoID, snapshotID).Count(&nodeCount).Error; err != nil {
		return Stats{}, model.NewStorageError("count nodes", err)
	}
	stats.NodeCount = int(nodeCount)

	var edgeCount int64
	if err := b.withCtx(ctx).Model(&gormEdge{}).
		Where("repo_id = ? AND snapshot_id = ?", repoID, snapshotID).Count(&edgeCount).Error; err != nil {
		return Stats{}, model.NewStorageError("count edges", err)
	}
	stats.EdgeCount = int(edgeCount)

	var chunkCount, deletedChunkCount int64
	if err := b.withCtx(ctx).Model(&gormChunk{}).
		Where("repo_id = ? AND snapshot_id = ? AND is_deleted = ?", repoID, snapshotID, false).Count(&chunkCount).Error; err != nil {
		return Stats{}, model.NewStorageError("count chunks", err)
	}
	if err := b.withCtx(ctx).Model(&gormChunk{}).
		Where("repo_id = ? AND snapshot_id = ? AND is_deleted = ?", repoID, snapshotID, true).Count(&deletedChunkCount).Error; err != nil {
		return Stats{}, model.NewStorageError("count deleted chunks", err)
	}
	stats.ChunkCount = int(chunkCount)
	stats.DeletedChunkCount = int(deletedChunkCount)

	var depCount int64
	err := b.withCtx(ctx).Model(&gormDependency{}).
		Where("from_chunk_id IN (?)", b.withCtx(ctx).Model(&gormChunk{}).
			Select("chunk_id").
			Where("repo_id = ? AND snapshot_id = ? AND is_deleted = ?", repoID, snapshotID, false),
		).Count(&depCount).Error
	if err != nil {
		return Stats{}, model.NewStorageError("count dependencies", err)
	}
	stats.DependencyCount = int(depCount)

	return stats, nil
}

func (b *ServerBackend) SaveDependencies(ctx context.Context, deps []model.Dependency) error {
	if len(deps) == 0 {
		return nil
	}
	rows := make([]gormDependency, len(deps))
	for i, d := range deps {
		rows[i] = gormDependency{
			Key: d.UniqueKey(), FromChunkID: d.FromChunkID, ToChunkID: d.ToChunkID,
			Relationship: string(d.Relationship), Confidence: d.Confidence,
		}
	}
	err := b.withCtx(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}}, UpdateAll: true,
	}).CreateInBatches(rows, batchSize).Error
	if err != nil {
		return model.NewStorageError("save dependencies", err)
	}
	return nil
}

func (b *ServerBackend) ListDependencies(ctx context.Context, fromChunkIDs []string) ([]model.Dependency, error) {
	q := b.withCtx(ctx).Model(&gormDependency{})
	if len(fromChunkIDs) > 0 {
		q = q.Where("from_chunk_id IN ?", fromChunkIDs)
	}
	var rows []gormDependency
	if err := q.Find(&rows).Error; err != nil {
		return nil, model.NewStorageError("list dependencies", err)
	}
	out := make([]model.Dependency, len(rows))
	for i, r := range rows {
		out[i] = model.Dependency{
			FromChunkID: r.FromChunkID, ToChunkID: r.ToChunkID,
			Relationship: model.DependencyRelationship(r.Relationship), Confidence: r.Confidence,
		}
	}
	return out, nil
}

// GetTransitiveDependencies walks the dependency graph breadth-first from
// chunkID, reusing ListDependencies for each BFS frontier.
func (b *ServerBackend) GetTransitiveDependencies(ctx context.Context, chunkID string, maxDepth int) ([]model.Dependency, error) {
	return bfsTransitiveDependencies(ctx, chunkID, maxDepth, b.ListDependencies)
}

// ApplyDelta commits every op within one Postgres transaction via gorm's
// Transaction helper, so a mid-delta failure rolls back cleanly.
func (b *ServerBackend) ApplyDelta(ctx context.Context, delta model.TransactionDelta) error {
	if delta.IsEmpty() {
		return nil
	}
	err := b.withCtx(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range delta.Ops {
			switch op.Kind {
			case model.OpAddNode, model.OpUpdateNode:
				if op.Node == nil {
					return fmt.Errorf("delta op %s missing node", op.Kind)
				}
				row := nodeToRow(*op.Node)
				if err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "id"}}, UpdateAll: true,
				}).Create(&row).Error; err != nil {
					return err
				}
			case model.OpDeleteNode:
				if err := tx.Delete(&gormNode{}, "id = ?", op.NodeID).Error; err != nil {
					return err
				}
			case model.OpAddEdge:
				if op.Edge == nil {
					return fmt.Errorf("delta op %s missing edge", op.Kind)
				}
				row := gormEdge{SourceID: op.Edge.SourceID, TargetID: op.Edge.TargetID, Kind: string(op.Edge.Kind)}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			case model.OpDeleteEdge:
				err := tx.Delete(&gormEdge{}, "source_id = ? AND target_id = ? AND kind = ?",
					op.EdgeSourceID, op.EdgeTargetID, string(op.EdgeKind)).Error
				if err != nil {
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

func (b *ServerBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return model.NewStorageError("get underlying sql.DB", err)
	}
	return sqlDB.Close()
}

const batchSize = 500

func kindStrings(kinds []model.NodeKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func nodeToRow(n model.Node) gormNode {
	return gormNode{
		ID: n.ID, Kind: string(n.Kind), FQN: n.FQN, FilePath: n.FilePath,
		StartLine: n.Span.StartLine, StartCol: n.Span.StartCol,
		EndLine: n.Span.EndLine, EndCol: n.Span.EndCol,
		Language: n.Language, ParentID: n.ParentID, Name: n.Name,
		StableID: n.StableID, ContentHash: n.ContentHash,
	}
}

func rowToNode(r gormNode) model.Node {
	return model.Node{
		ID: r.ID, Kind: model.NodeKind(r.Kind), FQN: r.FQN, FilePath: r.FilePath,
		Span: model.Span{StartLine: r.StartLine, StartCol: r.StartCol, EndLine: r.EndLine, EndCol: r.EndCol},
		Language: r.Language, ParentID: r.ParentID, Name: r.Name,
		StableID: r.StableID, ContentHash: r.ContentHash,
	}
}

func chunkToRow(c model.Chunk) gormChunk {
	return gormChunk{
		ChunkID: c.ChunkID, RepoID: c.RepoID, SnapshotID: c.SnapshotID, FilePath: c.FilePath,
		StartLine: c.StartLine, EndLine: c.EndLine, Kind: string(c.Kind), FQN: c.FQN,
		Language: c.Language, Visibility: c.Visibility, Content: c.Content,
		ContentHash: c.ContentHash, Summary: c.Summary, Importance: c.Importance,
		IsDeleted: c.IsDeleted, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func rowToChunk(r gormChunk) model.Chunk {
	return model.Chunk{
		ChunkID: r.ChunkID, RepoID: r.RepoID, SnapshotID: r.SnapshotID, FilePath: r.FilePath,
		StartLine: r.StartLine, EndLine: r.EndLine, Kind: model.NodeKind(r.Kind), FQN: r.FQN,
		Language: r.Language, Visibility: r.Visibility, Content: r.Content,
		ContentHash: r.ContentHash, Summary: r.Summary, Importance: r.Importance,
		IsDeleted: r.IsDeleted, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

var _ Backend = (*ServerBackend)(nil)
