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

package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kraklabs/codegraph/pkg/model"
)

// ChunkingConfig bounds L2 chunking (§4.3.1).
type ChunkingConfig struct {
	MaxChunkSize   int  // max lines per chunk
	MinChunkSize   int  // min lines before a chunk is merged with a sibling
	OverlapLines   int  // lines of overlap between adjacent chunks of an oversized unit
	EnableSemantic bool // prefer declaration-aligned boundaries over fixed windows
	RespectScope   bool // never split across a declaration boundary
}

// DefaultChunkingConfig is used when ChunkingStage.Config has no
// positive MaxChunkSize.
var DefaultChunkingConfig = ChunkingConfig{
	MaxChunkSize:   200,
	MinChunkSize:   5,
	OverlapLines:   10,
	EnableSemantic: true,
	RespectScope:   true,
}

// ChunkingStage implements L2: splitting the IR into Chunk rows (§3.3)
// respecting scope boundaries.
type ChunkingStage struct {
	Config   ChunkingConfig
	FileText map[string]string // file_path -> full source, needed to slice chunk content
}

func (s *ChunkingStage) Name() StageName { return L2Chunking }

func (s *ChunkingStage) Execute(ctx context.Context, r *Run) error {
	cfg := s.Config
	if cfg.MaxChunkSize <= 0 {
		cfg = DefaultChunkingConfig
	}

	var chunks []model.Chunk
	for _, n := range r.Doc.Nodes {
		if n.Kind != NodeKindChunkable(n.Kind) {
			continue
		}
		text := s.FileText[n.FilePath]
		chunks = append(chunks, s.chunkNode(cfg, r.RepoID, r.SnapshotID, n, text)...)
	}

	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].FilePath != chunks[j].FilePath {
			return chunks[i].FilePath < chunks[j].FilePath
		}
		return chunks[i].StartLine < chunks[j].StartLine
	})

	r.Chunks = append(r.Chunks, chunks...)
	return nil
}

// NodeKindChunkable reports the kind itself if it is a unit L2 chunks
// (file-level declarations), or "" otherwise — functions, methods,
// classes, and interfaces are the declaration boundaries RespectScope
// must not split across.
func NodeKindChunkable(k model.NodeKind) model.NodeKind {
	switch k {
	case model.NodeFunction, model.NodeMethod, model.NodeClass, model.NodeInterface:
		return k
	}
	return ""
}

func (s *ChunkingStage) chunkNode(cfg ChunkingConfig, repoID, snapshotID string, n model.Node, fileText string) []model.Chunk {
	startLine, endLine := n.Span.StartLine, n.Span.EndLine
	lineCount := endLine - startLine + 1
	if lineCount <= 0 {
		return nil
	}

	now := time.Now()
	if lineCount <= cfg.MaxChunkSize || cfg.RespectScope {
		// RespectScope forbids splitting a declaration even if it exceeds
		// MaxChunkSize; oversized declarations become one chunk.
		content := sliceLines(fileText, startLine-1, endLine-1)
		return []model.Chunk{s.buildChunk(repoID, snapshotID, n, startLine, endLine, content, now)}
	}

	// Fixed-window split with overlap, used only when scope respect is off.
	var out []model.Chunk
	cur := startLine
	for cur <= endLine {
		end := cur + cfg.MaxChunkSize - 1
		if end > endLine {
			end = endLine
		}
		content := sliceLines(fileText, cur-1, end-1)
		out = append(out, s.buildChunk(repoID, snapshotID, n, cur, end, content, now))
		if end == endLine {
			break
		}
		cur = end - cfg.OverlapLines + 1
		if cur <= out[len(out)-1].StartLine {
			cur = end + 1
		}
	}
	return out
}

func (s *ChunkingStage) buildChunk(repoID, snapshotID string, n model.Node, start, end int, content string, now time.Time) model.Chunk {
	normalized := model.NormalizedContent(content)
	hash := model.ComputeContentHash(content)
	return model.Chunk{
		ChunkID:     model.ChunkID(repoID, snapshotID, n.FilePath, start, end),
		RepoID:      repoID,
		SnapshotID:  snapshotID,
		FilePath:    n.FilePath,
		StartLine:   start,
		EndLine:     end,
		Kind:        n.Kind,
		FQN:         n.FQN,
		Language:    n.Language,
		Content:     normalized,
		ContentHash: hash,
		Importance:  0,
		IsDeleted:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// sliceLines extracts lines [startLine, endLine] (0-indexed, inclusive);
// chunkNode converts Span's 1-indexed lines before calling it.
func sliceLines(text string, startLine, endLine int) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}
	if startLine > endLine || startLine >= len(lines) {
		return ""
	}
	return strings.Join(lines[startLine:endLine+1], "\n")
}
