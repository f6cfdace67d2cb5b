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
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/codegraph/internal/bootstrap"
	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/config"
)

// initFlags holds parsed flags for the 'init' command.
type initFlags struct {
	force          bool
	nonInteractive bool
	noHook         bool
	withHook       bool
	projectID      string
	preset         string
}

// runInit executes the 'init' CLI command, creating .codegraph/project.yaml
// and opening (creating, if absent) the project's embedded storage backend.
//
// Flags:
//   - --force: overwrite an existing project.yaml
//   - -y: non-interactive, accept defaults
//   - --project-id: project identifier (default: directory name)
//   - --preset: fast, balanced, or thorough (default: balanced)
//   - --hook / --no-hook: install or skip the git post-commit hook
func runInit(args []string) {
	flags := parseInitFlags(args)

	projectID := flags.projectID
	if projectID == "" {
		var err error
		projectID, err = defaultProjectID()
		if err != nil {
			cgerrors.FatalError(cgerrors.NewInternalError(
				"Cannot determine project id", err.Error(), "Pass --project-id explicitly.", err), false)
		}
	}

	root, err := os.Getwd()
	if err != nil {
		cgerrors.FatalError(cgerrors.NewInternalError("Cannot get current directory", err.Error(), "", err), false)
	}

	path := config.ConfigPath(root)
	if _, err := os.Stat(path); err == nil && !flags.force {
		cgerrors.FatalError(cgerrors.NewConfigError(
			"project.yaml already exists",
			path,
			"Use --force to overwrite it.",
			nil,
		), false)
	}

	preset := config.Preset(flags.preset)
	if preset == "" {
		preset = config.Balanced
	}

	meta := projectMeta{ProjectID: projectID, Preset: string(preset)}

	if !flags.nonInteractive {
		reader := bufio.NewReader(os.Stdin)
		fmt.Println("codegraph project configuration")
		fmt.Println("================================")
		fmt.Println()
		meta.ProjectID = promptDefault(reader, "Project ID", meta.ProjectID)
		fmt.Println()
		fmt.Println("Presets: fast, balanced, thorough")
		meta.Preset = promptDefault(reader, "Analysis preset", meta.Preset)
		fmt.Println()
	}

	if !config.Preset(meta.Preset).Valid() {
		cgerrors.FatalError(cgerrors.NewInputError(
			"Invalid preset",
			fmt.Sprintf("%q is not one of fast, balanced, thorough", meta.Preset),
			"Pass --preset fast|balanced|thorough.",
		), false)
	}

	if err := os.MkdirAll(config.ConfigDir(root), 0o750); err != nil {
		cgerrors.FatalError(cgerrors.NewPermissionError("Cannot create .codegraph directory", err.Error(), "", err), false)
	}

	data, err := yaml.Marshal(meta)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewInternalError("Cannot encode project.yaml", err.Error(), "", err), false)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		cgerrors.FatalError(cgerrors.NewPermissionError("Cannot write project.yaml", err.Error(), "", err), false)
	}

	info, err := bootstrap.InitProject(bootstrap.ProjectConfig{
		ProjectID: meta.ProjectID,
		Preset:    config.Preset(meta.Preset),
	}, slog.Default())
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot initialize project storage", err.Error(), "", err), false)
	}

	fmt.Printf("\nInitialized project %q (preset: %s)\n", info.ProjectID, info.Preset)
	fmt.Printf("Data directory: %s\n", info.DataDir)
	fmt.Printf("Config written: %s\n", path)

	if shouldInstallHook(flags) {
		if err := installPostCommitHook(flags.force); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not install git hook: %v\n", err)
		} else {
			fmt.Println("Installed git post-commit hook for incremental re-indexing.")
		}
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  codegraph index    Index the repository")
	fmt.Println("  codegraph status   Check indexing progress")
}

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var f initFlags
	fs.BoolVar(&f.force, "force", false, "Overwrite existing project.yaml")
	fs.BoolVarP(&f.nonInteractive, "yes", "y", false, "Non-interactive mode (use defaults)")
	fs.StringVar(&f.projectID, "project-id", "", "Project identifier (default: directory name)")
	fs.StringVar(&f.preset, "preset", "balanced", "Analysis preset: fast, balanced, or thorough")
	fs.BoolVar(&f.noHook, "no-hook", false, "Skip git hook installation")
	fs.BoolVar(&f.withHook, "hook", false, "Install git hook without prompting")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph init [options]

Creates .codegraph/project.yaml and initializes local storage.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}

func shouldInstallHook(f initFlags) bool {
	if f.noHook {
		return false
	}
	if f.withHook {
		return true
	}
	if !f.nonInteractive {
		reader := bufio.NewReader(os.Stdin)
		answer := promptDefault(reader, "Install git post-commit hook for auto re-indexing? (y/n)", "y")
		return strings.EqualFold(strings.TrimSpace(answer), "y")
	}
	return false
}

// promptDefault reads a line from reader, returning def if the user enters
// nothing.
func promptDefault(reader *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}
