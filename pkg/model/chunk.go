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

package model

import (
	"strconv"
	"strings"
	"time"
)

// Chunk is a persistence unit carved out of IR (§3.3). Soft-deletes never
// remove rows (Ch2); readers filter by IsDeleted = false.
type Chunk struct {
	ChunkID     string         `json:"chunk_id"`
	RepoID      string         `json:"repo_id"`
	SnapshotID  string         `json:"snapshot_id"`
	FilePath    string         `json:"file_path"`
	StartLine   int            `json:"start_line"`
	EndLine     int            `json:"end_line"`
	Kind        NodeKind       `json:"kind"`
	FQN         string         `json:"fqn,omitempty"`
	Language    string         `json:"language"`
	Visibility  string         `json:"visibility,omitempty"`
	Content     string         `json:"content"`
	ContentHash string         `json:"content_hash"`
	Summary     string         `json:"summary,omitempty"`
	Importance  float64        `json:"importance"`
	IsDeleted   bool           `json:"is_deleted"`
	Attrs       map[string]any `json:"attrs,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NormalizedContent strips trailing whitespace per-line and collapses a
// trailing run of blank lines, matching invariant Ch1 ("stable hash of
// normalized content"): two chunks differing only in trailing whitespace
// hash identically.
func NormalizedContent(content string) string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// ComputeContentHash implements invariant Ch1.
func ComputeContentHash(content string) string {
	return ContentHash(NodeFile, []byte(NormalizedContent(content)))
}

// UniqueKey returns the tuple invariant Ch3 requires to be effectively
// unique among active (non-deleted) chunks.
func (c Chunk) UniqueKey() string {
	return c.RepoID + "|" + c.SnapshotID + "|" + c.FilePath + "|" +
		strconv.Itoa(c.StartLine) + "-" + strconv.Itoa(c.EndLine)
}
