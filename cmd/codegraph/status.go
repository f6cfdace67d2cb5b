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
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/bootstrap"
	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/output"
	"github.com/kraklabs/codegraph/pkg/model"
)

// StatusResult is the project status, either printed as text or emitted
// as JSON under --json.
type StatusResult struct {
	ProjectID     string    `json:"project_id"`
	DataDir       string    `json:"data_dir"`
	Indexed       bool      `json:"indexed"`
	Files         int       `json:"files"`
	Functions     int       `json:"functions"`
	Types         int       `json:"types"`
	CallEdges     int       `json:"call_edges"`
	Imports       int       `json:"imports"`
	Chunks        int       `json:"chunks"`
	DeletedChunks int       `json:"deleted_chunks"`
	Dependencies  int       `json:"dependencies"`
	Error         string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// runStatus displays entity counts for the current project's indexed graph.
func runStatus(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", globals.JSON, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph status [options]

Shows entity counts for the indexed project graph.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	meta, err := loadProjectMeta(globals.ConfigPath)
	if err != nil {
		cgerrors.FatalError(err, *jsonOutput)
	}

	result := &StatusResult{ProjectID: meta.ProjectID, Timestamp: time.Now()}

	dataDir, err := dataDirFor(meta.ProjectID)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewInternalError("Cannot determine data directory", err.Error(), "", err), *jsonOutput)
	}
	result.DataDir = dataDir

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		result.Error = "project not indexed yet, run 'codegraph index' first"
		emitStatus(result, *jsonOutput)
		return
	}

	backend, err := bootstrap.OpenProject(bootstrap.ProjectConfig{ProjectID: meta.ProjectID}, nil)
	if err != nil {
		result.Error = err.Error()
		emitStatus(result, *jsonOutput)
		os.Exit(cgerrors.ExitDatabase)
	}
	defer func() { _ = backend.Close() }()

	ctx := context.Background()
	result.Indexed = true

	files, err := backend.ListNodes(ctx, "", "", model.NodeFile)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot list files", err.Error(), "", err), *jsonOutput)
	}
	result.Files = len(files)

	functions, err := backend.ListNodes(ctx, "", "", model.NodeFunction, model.NodeMethod)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot list functions", err.Error(), "", err), *jsonOutput)
	}
	result.Functions = len(functions)

	types, err := backend.ListNodes(ctx, "", "", model.NodeClass, model.NodeInterface)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot list types", err.Error(), "", err), *jsonOutput)
	}
	result.Types = len(types)

	calls, err := backend.ListEdges(ctx, "", "", model.EdgeCalls)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot list call edges", err.Error(), "", err), *jsonOutput)
	}
	result.CallEdges = len(calls)

	imports, err := backend.ListEdges(ctx, "", "", model.EdgeImports)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot list import edges", err.Error(), "", err), *jsonOutput)
	}
	result.Imports = len(imports)

	stats, err := backend.GetStats(ctx, "", "")
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot get stats", err.Error(), "", err), *jsonOutput)
	}
	result.Chunks = stats.ChunkCount
	result.DeletedChunks = stats.DeletedChunkCount
	result.Dependencies = stats.DependencyCount

	emitStatus(result, *jsonOutput)
}

func emitStatus(result *StatusResult, jsonOutput bool) {
	if jsonOutput {
		if err := output.JSON(result); err != nil {
			cgerrors.FatalError(cgerrors.NewInternalError("Cannot encode status", err.Error(), "", err), true)
		}
		return
	}
	printStatus(result)
}

func printStatus(result *StatusResult) {
	fmt.Println("codegraph project status")
	fmt.Println("=========================")
	fmt.Printf("Project ID:  %s\n", result.ProjectID)
	fmt.Printf("Data Dir:    %s\n", result.DataDir)
	fmt.Println()

	if !result.Indexed {
		fmt.Printf("Not indexed yet.\n")
		if result.Error != "" {
			fmt.Printf("  %s\n", result.Error)
		}
		return
	}

	fmt.Println("Entities:")
	fmt.Printf("  Files:      %d\n", result.Files)
	fmt.Printf("  Functions:  %d\n", result.Functions)
	fmt.Printf("  Types:      %d\n", result.Types)
	fmt.Printf("  Call edges: %d\n", result.CallEdges)
	fmt.Printf("  Imports:    %d\n", result.Imports)
	fmt.Printf("  Chunks:     %d (%d soft-deleted)\n", result.Chunks, result.DeletedChunks)
	fmt.Printf("  Dependencies: %d\n", result.Dependencies)

	if result.Error != "" {
		fmt.Printf("\nWarning: %s\n", result.Error)
	}
}
