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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Checkpoint tracks progress through a long-running indexing run so it can
// resume after a crash or an operator-initiated stop, without re-parsing
// files whose content hash hasn't changed since the last run.
type Checkpoint struct {
	RepoID            string            `json:"repo_id"`
	SnapshotID        string            `json:"snapshot_id"`
	LastProcessedFile string            `json:"last_processed_file,omitempty"`
	FilesProcessed    int               `json:"files_processed"`
	NodesExtracted    int               `json:"nodes_extracted"`
	StagesCompleted   []StageName       `json:"stages_completed,omitempty"`
	FileHashes        map[string]string `json:"file_hashes,omitempty"` // file_path -> content hash
	StartTime         time.Time         `json:"start_time"`
	LastUpdateTime    time.Time         `json:"last_update_time"`
}

// CheckpointManager persists and restores Checkpoints to a directory on
// disk, one JSON file per repo/snapshot pair.
type CheckpointManager struct {
	dir string
}

// NewCheckpointManager creates a manager rooted at dir.
func NewCheckpointManager(dir string) *CheckpointManager {
	return &CheckpointManager{dir: dir}
}

func (m *CheckpointManager) path(repoID, snapshotID string) string {
	name := repoID + "_" + snapshotID + ".checkpoint.json"
	return filepath.Join(m.dir, name)
}

// Load reads the checkpoint for (repoID, snapshotID); returns (nil, nil)
// if no checkpoint exists yet.
func (m *CheckpointManager) Load(repoID, snapshotID string) (*Checkpoint, error) {
	data, err := os.ReadFile(m.path(repoID, snapshotID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	if cp.FileHashes == nil {
		cp.FileHashes = make(map[string]string)
	}
	return &cp, nil
}

// Save atomically writes cp to disk (write-temp-then-rename, so a crash
// mid-write never leaves a corrupt checkpoint file behind).
func (m *CheckpointManager) Save(cp *Checkpoint) error {
	cp.LastUpdateTime = time.Now()
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	finalPath := m.path(cp.RepoID, cp.SnapshotID)
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return os.Rename(tmpPath, finalPath)
}

// NeedsReprocessing reports whether filePath's current content hash
// differs from what the checkpoint recorded last run — the skip-unchanged
// half of incremental indexing (§3.4, §8 "Incremental indexing").
func (cp *Checkpoint) NeedsReprocessing(filePath, currentHash string) bool {
	if cp == nil {
		return true
	}
	prev, ok := cp.FileHashes[filePath]
	return !ok || prev != currentHash
}

// MarkStageComplete records a stage as done, idempotently.
func (cp *Checkpoint) MarkStageComplete(name StageName) {
	for _, s := range cp.StagesCompleted {
		if s == name {
			return
		}
	}
	cp.StagesCompleted = append(cp.StagesCompleted, name)
}

// StageComplete reports whether name was already recorded as complete.
func (cp *Checkpoint) StageComplete(name StageName) bool {
	if cp == nil {
		return false
	}
	for _, s := range cp.StagesCompleted {
		if s == name {
			return true
		}
	}
	return false
}
