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

package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kraklabs/codegraph/pkg/config"
	"github.com/kraklabs/codegraph/pkg/storage"
)

// ProjectConfig holds what InitProject/OpenProject need to locate and
// prepare a project's on-disk state.
type ProjectConfig struct {
	// ProjectID is the logical project identifier.
	ProjectID string

	// DataDir is the directory the embedded storage backend keeps its
	// bbolt file in. Defaults to ~/.codegraph/data/<project_id>.
	DataDir string

	// Preset seeds .codegraph/project.yaml on first init. Defaults to
	// config.Balanced.
	Preset config.Preset
}

// ProjectInfo describes an initialized project.
type ProjectInfo struct {
	ProjectID string
	DataDir   string
	Preset    config.Preset
}

func (c *ProjectConfig) applyDefaults() error {
	if c.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if c.Preset == "" {
		c.Preset = config.Balanced
	}
	if c.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home dir: %w", err)
		}
		c.DataDir = filepath.Join(homeDir, ".codegraph", "data", c.ProjectID)
	}
	return nil
}

// InitProject creates a new project's data directory, opens the embedded
// storage backend (which creates its buckets on first open), and writes
// a .codegraph/project.yaml seeded from Preset. Idempotent: re-running it
// against an existing project reopens the same backend without data loss.
func InitProject(cfg ProjectConfig, logger *slog.Logger) (*ProjectInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	logger.Info("bootstrap.project.init.start",
		"project_id", cfg.ProjectID,
		"data_dir", cfg.DataDir,
		"preset", cfg.Preset,
	)

	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
		DataDir:   cfg.DataDir,
		ProjectID: cfg.ProjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}
	defer func() { _ = backend.Close() }()

	if err := writeProjectConfig(cfg); err != nil {
		return nil, fmt.Errorf("write project config: %w", err)
	}

	logger.Info("bootstrap.project.init.success",
		"project_id", cfg.ProjectID,
		"data_dir", cfg.DataDir,
	)

	return &ProjectInfo{ProjectID: cfg.ProjectID, DataDir: cfg.DataDir, Preset: cfg.Preset}, nil
}

// writeProjectConfig creates root/.codegraph/project.yaml naming preset,
// unless one already exists (InitProject never clobbers operator edits).
func writeProjectConfig(cfg ProjectConfig) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	path := config.ConfigPath(root)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(config.ConfigDir(root), 0o750); err != nil {
		return err
	}
	contents := fmt.Sprintf("preset: %s\n", cfg.Preset)
	return os.WriteFile(path, []byte(contents), 0o644)
}

// OpenProject opens an existing project's embedded storage backend.
func OpenProject(cfg ProjectConfig, logger *slog.Logger) (*storage.EmbeddedBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("project not found: %s (run 'codegraph init' first)", cfg.DataDir)
	}

	logger.Debug("bootstrap.project.open", "project_id", cfg.ProjectID, "data_dir", cfg.DataDir)

	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
		DataDir:   cfg.DataDir,
		ProjectID: cfg.ProjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	return backend, nil
}

// ListProjects returns the project ids found under the default data
// directory root (~/.codegraph/data).
func ListProjects() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".codegraph", "data")
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	return projects, nil
}
