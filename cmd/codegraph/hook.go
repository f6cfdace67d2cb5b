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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
)

const postCommitHookContent = `#!/bin/sh
# codegraph auto-index hook - re-indexes the repository after each commit
# Installed by: codegraph install-hook
# Remove with: codegraph install-hook --remove

codegraph index --incremental 2>/dev/null &
`

const hookMarker = "# codegraph auto-index hook"

// runInstallHook executes the 'install-hook' CLI command, managing the git
// post-commit hook that triggers incremental re-indexing.
//
// Flags:
//   - --force: overwrite an existing (non-codegraph) hook
//   - --remove: remove a previously installed hook
func runInstallHook(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("install-hook", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing hook")
	remove := fs.Bool("remove", false, "Remove the hook instead of installing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph install-hook [options]

Installs a git post-commit hook that re-indexes the repository
incrementally in the background after each commit.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	gitDir, err := findGitDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	hookPath := filepath.Join(gitDir, "hooks", "post-commit")

	if *remove {
		if err := removeHook(hookPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Git hook removed.")
		return
	}

	if err := installPostCommitHook(*force); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Git hook installed: %s\n", hookPath)
}

// installPostCommitHook writes the post-commit hook to the current
// repository's .git/hooks directory, refusing to clobber a hook it didn't
// install unless force is set.
func installPostCommitHook(force bool) error {
	gitDir, err := findGitDir()
	if err != nil {
		return err
	}
	hookPath := filepath.Join(gitDir, "hooks", "post-commit")

	hookDir := filepath.Dir(hookPath)
	if err := os.MkdirAll(hookDir, 0o755); err != nil {
		return fmt.Errorf("cannot create hooks directory: %w", err)
	}

	if _, err := os.Stat(hookPath); err == nil {
		if !force {
			content, err := os.ReadFile(hookPath)
			if err == nil && containsHookMarker(string(content)) {
				return nil // already installed
			}
			return fmt.Errorf("hook already exists at %s (use --force to overwrite)", hookPath)
		}
	}

	return os.WriteFile(hookPath, []byte(postCommitHookContent), 0o755)
}

// findGitDir walks up from the working directory looking for .git,
// resolving the gitdir indirection file used by worktrees.
func findGitDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return gitPath, nil
			}
			content, err := os.ReadFile(gitPath)
			if err != nil {
				return "", fmt.Errorf("cannot read .git file: %w", err)
			}
			var gitdir string
			if _, err := fmt.Sscanf(string(content), "gitdir: %s", &gitdir); err == nil {
				if filepath.IsAbs(gitdir) {
					return gitdir, nil
				}
				return filepath.Join(dir, gitdir), nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("not a git repository (or any of the parent directories)")
}

// removeHook deletes the post-commit hook only if it carries the
// codegraph marker, protecting user-authored hooks from accidental removal.
func removeHook(hookPath string) error {
	content, err := os.ReadFile(hookPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no hook found at %s", hookPath)
		}
		return fmt.Errorf("cannot read hook: %w", err)
	}
	if !containsHookMarker(string(content)) {
		return fmt.Errorf("hook at %s was not installed by codegraph, remove it manually", hookPath)
	}
	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("cannot remove hook: %w", err)
	}
	return nil
}

func containsHookMarker(content string) bool {
	return strings.Contains(content, hookMarker)
}
