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

import "time"

// Repository is the top-level scoping entity for all ingested IR (§3.4).
type Repository struct {
	RepoID        string    `json:"repo_id"`
	Name          string    `json:"name"`
	RemoteURL     string    `json:"remote_url,omitempty"`
	LocalPath     string    `json:"local_path,omitempty"`
	DefaultBranch string    `json:"default_branch"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot is a named immutable view of a repository at a point in time.
type Snapshot struct {
	SnapshotID string    `json:"snapshot_id"`
	RepoID     string    `json:"repo_id"`
	CommitHash string    `json:"commit_hash,omitempty"`
	Branch     string    `json:"branch,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FileMetadata drives incremental re-indexing: it records the last
// observed content hash for a file so the loader can skip files whose
// on-disk hash is unchanged (§3.4, §8 "Incremental indexing").
type FileMetadata struct {
	RepoID       string    `json:"repo_id"`
	SnapshotID   string    `json:"snapshot_id"`
	FilePath     string    `json:"file_path"`
	ContentHash  string    `json:"content_hash"`
	LastAnalyzed time.Time `json:"last_analyzed"`
}

// Key returns the (repo, snapshot, file) composite key used to look up
// FileMetadata rows.
func (f FileMetadata) Key() string {
	return f.RepoID + "|" + f.SnapshotID + "|" + f.FilePath
}
