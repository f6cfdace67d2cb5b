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

package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/config"
)

// projectMeta is the on-disk shape of .codegraph/project.yaml as far as
// the CLI itself cares. pkg/config.LoadFile reads the preset/stage
// overrides from the same file; project_id is a CLI-only addition that
// config.LoadFile silently ignores (unknown YAML keys are not an error).
type projectMeta struct {
	ProjectID string `yaml:"project_id"`
	Preset    string `yaml:"preset,omitempty"`
}

// resolveConfigPath returns the project.yaml path to use: configPath if
// set, otherwise .codegraph/project.yaml under the current directory.
func resolveConfigPath(configPath string) (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	root, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return config.ConfigPath(root), nil
}

// loadProjectMeta reads project.yaml and returns its project_id and
// preset. A missing file is reported as a *errors.UserError pointing the
// user at 'codegraph init', since every other command depends on it.
func loadProjectMeta(configPath string) (projectMeta, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return projectMeta{}, cgerrors.NewInternalError(
			"Cannot determine project.yaml location",
			err.Error(),
			"Pass --config explicitly.",
			err,
		)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return projectMeta{}, cgerrors.NewConfigError(
			"No codegraph project found",
			"Missing "+path,
			"Run 'codegraph init' to create one.",
			nil,
		)
	}
	if err != nil {
		return projectMeta{}, cgerrors.NewConfigError(
			"Cannot read project.yaml",
			err.Error(),
			"Check file permissions on "+path,
			err,
		)
	}

	var meta projectMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return projectMeta{}, cgerrors.NewConfigError(
			"Cannot parse project.yaml",
			err.Error(),
			"Fix the YAML syntax or re-run 'codegraph init --force'.",
			err,
		)
	}
	if meta.ProjectID == "" {
		return projectMeta{}, cgerrors.NewConfigError(
			"project.yaml is missing project_id",
			path+" has no project_id field",
			"Re-run 'codegraph init --force'.",
			nil,
		)
	}
	if meta.Preset == "" {
		meta.Preset = string(config.Balanced)
	}
	return meta, nil
}

// defaultProjectID derives a project id from the current directory name,
// matching how `codegraph init` seeds project.yaml when run without
// --project-id.
func defaultProjectID() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Base(cwd), nil
}

// dataDirFor returns the embedded backend's data directory for a project,
// mirroring internal/bootstrap.ProjectConfig.applyDefaults' default.
func dataDirFor(projectID string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".codegraph", "data", projectID), nil
}
