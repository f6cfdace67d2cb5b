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

	flag "github.com/spf13/pflag"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
)

// runReset deletes the project's local data directory, requiring --yes to
// guard against accidental destruction.
func runReset(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph reset --yes

Deletes all locally indexed data for the project so the next
'codegraph index' starts from a clean slate.

WARNING: this operation is destructive and cannot be undone.
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		cgerrors.FatalError(cgerrors.NewInputError(
			"Reset requires confirmation",
			"--yes was not passed",
			"Re-run with 'codegraph reset --yes' to confirm.",
		), globals.JSON)
	}

	meta, err := loadProjectMeta(globals.ConfigPath)
	if err != nil {
		cgerrors.FatalError(err, globals.JSON)
	}

	dataDir, err := dataDirFor(meta.ProjectID)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewInternalError("Cannot determine data directory", err.Error(), "", err), globals.JSON)
	}

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		fmt.Printf("No local data found for project %q\n", meta.ProjectID)
		return
	}

	fmt.Printf("Resetting project %q (deleting %s)...\n", meta.ProjectID, dataDir)
	if err := os.RemoveAll(dataDir); err != nil {
		cgerrors.FatalError(cgerrors.NewPermissionError("Failed to delete data", err.Error(), "", err), globals.JSON)
	}

	fmt.Println("Reset complete. All local indexed data has been deleted.")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  codegraph index --full    Reindex the project")
}
