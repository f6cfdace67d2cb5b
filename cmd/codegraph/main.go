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

// Package main implements the codegraph CLI for indexing repositories and
// querying the resulting code graph.
//
// Usage:
//
//	codegraph init                      Create .codegraph/project.yaml
//	codegraph index                     Index the current repository
//	codegraph status [--json]           Show project status
//	codegraph query [options]           Query the indexed graph
//	codegraph reset --yes               Delete local project data
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds flags shared across every subcommand.
type GlobalFlags struct {
	ConfigPath string
	JSON       bool
	Quiet      bool
	NoColor    bool
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to .codegraph/project.yaml (default: ./.codegraph/project.yaml)")
		jsonOutput  = flag.Bool("json", false, "Output as JSON where supported")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `codegraph - code intelligence graph CLI

Usage:
  codegraph <command> [options]

Commands:
  init          Create .codegraph/project.yaml configuration
  index         Index the current repository
  status        Show project status
  query         Query the indexed graph
  reset         Reset local project data (destructive!)
  install-hook  Install a git post-commit hook for auto-indexing
  benchmark     Time the pipeline against a repo without touching storage

Global Options:
  --config      Path to .codegraph/project.yaml
  --json        Output as JSON where supported
  -q, --quiet   Suppress progress output
  --no-color    Disable colored output
  --version     Show version and exit

Examples:
  codegraph init                      Create configuration interactively
  codegraph index                     Index current repository
  codegraph index --full              Force full re-index
  codegraph status --json             Output status as JSON
  codegraph query --kind function --name 'Handle.*'
  codegraph reset --yes               Delete local project data

Data Storage:
  Data is stored locally in ~/.codegraph/data/<project_id>/

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("codegraph version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	globals := GlobalFlags{
		ConfigPath: *configPath,
		JSON:       *jsonOutput,
		Quiet:      *quiet || *jsonOutput,
		NoColor:    *noColor,
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "index":
		runIndex(cmdArgs, globals)
	case "status":
		runStatus(cmdArgs, globals)
	case "query":
		runQuery(cmdArgs, globals)
	case "reset":
		runReset(cmdArgs, globals)
	case "install-hook":
		runInstallHook(cmdArgs, globals)
	case "benchmark":
		runBenchmark(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
