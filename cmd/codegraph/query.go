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
	"regexp"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/bootstrap"
	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/output"
	"github.com/kraklabs/codegraph/pkg/model"
	"github.com/kraklabs/codegraph/pkg/query"
)

// nodeKindAliases maps the --kind flag's short names to model.NodeKind.
var nodeKindAliases = map[string]model.NodeKind{
	"file":      model.NodeFile,
	"class":     model.NodeClass,
	"interface": model.NodeInterface,
	"function":  model.NodeFunction,
	"method":    model.NodeMethod,
	"parameter": model.NodeParameter,
	"variable":  model.NodeVariable,
	"field":     model.NodeField,
	"call":      model.NodeCall,
	"import":    model.NodeImport,
}

// QueryResultRow is one matched node, flattened for --json output.
type QueryResultRow struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	FQN      string `json:"fqn,omitempty"`
	FilePath string `json:"file_path"`
	Language string `json:"language,omitempty"`
	Line     int    `json:"line"`
}

// runQuery filters the indexed node graph by kind, file path, name, and
// language, using pkg/query's selectors over the backend's in-memory
// ListNodes result.
func runQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	jsonOutput := fs.Bool("json", globals.JSON, "Output as JSON")
	kindFlag := fs.String("kind", "", "Node kind: file, class, interface, function, method, parameter, variable, field, call, import")
	fileFlag := fs.String("file", "", "Regexp to match against FilePath")
	nameFlag := fs.String("name", "", "Regexp to match against Name")
	langFlag := fs.String("language", "", "Exact language match (e.g. go, python)")
	limit := fs.Int("limit", 0, "Maximum rows to print (0 = no limit)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph query [options]

Filters the indexed node graph by kind, file, name, and language.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  codegraph query --kind function --name 'Handle.*'
  codegraph query --kind file --file '.*_test\.go$'
  codegraph query --kind class --language go --json
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	selector, err := buildNodeSelector(*kindFlag, *fileFlag, *nameFlag, *langFlag)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewInputError("Invalid query flags", err.Error(), "Check --kind, --file, and --name."), *jsonOutput)
	}

	meta, err := loadProjectMeta(globals.ConfigPath)
	if err != nil {
		cgerrors.FatalError(err, *jsonOutput)
	}

	backend, err := bootstrap.OpenProject(bootstrap.ProjectConfig{ProjectID: meta.ProjectID}, nil)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot open project storage", err.Error(), "Run 'codegraph index' first.", err), *jsonOutput)
	}
	defer func() { _ = backend.Close() }()

	nodes, err := backend.ListNodes(context.Background(), "", "")
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot list nodes", err.Error(), "", err), *jsonOutput)
	}

	matched := selector.FilterNodes(nodes)
	if *limit > 0 && len(matched) > *limit {
		matched = matched[:*limit]
	}

	rows := make([]QueryResultRow, 0, len(matched))
	for _, n := range matched {
		rows = append(rows, QueryResultRow{
			ID: n.ID, Kind: string(n.Kind), Name: n.Name, FQN: n.FQN,
			FilePath: n.FilePath, Language: n.Language, Line: n.Span.StartLine,
		})
	}

	if *jsonOutput {
		if err := output.JSON(rows); err != nil {
			cgerrors.FatalError(cgerrors.NewInternalError("Cannot encode query result", err.Error(), "", err), true)
		}
		return
	}
	printQueryRows(rows)
}

func buildNodeSelector(kind, filePattern, namePattern, language string) (query.NodeSelector, error) {
	var sel query.NodeSelector

	if kind != "" {
		nk, ok := nodeKindAliases[kind]
		if !ok {
			return sel, fmt.Errorf("unknown --kind %q", kind)
		}
		sel.Kinds = []model.NodeKind{nk}
	}
	if filePattern != "" {
		re, err := regexp.Compile(filePattern)
		if err != nil {
			return sel, fmt.Errorf("invalid --file pattern: %w", err)
		}
		sel.FilePattern = re
	}
	if namePattern != "" {
		re, err := regexp.Compile(namePattern)
		if err != nil {
			return sel, fmt.Errorf("invalid --name pattern: %w", err)
		}
		sel.NamePattern = re
	}
	sel.Language = language
	return sel, nil
}

func printQueryRows(rows []QueryResultRow) {
	if len(rows) == 0 {
		fmt.Println("No matches.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tFILE\tLINE")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s:%d\t\n", r.Kind, r.Name, r.FilePath, r.Line)
	}
	_ = w.Flush()
	fmt.Printf("\n%d match(es)\n", len(rows))
}
