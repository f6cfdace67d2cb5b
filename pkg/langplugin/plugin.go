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

package langplugin

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kraklabs/codegraph/pkg/model"
)

// FileInput is the unit of work handed to a Plugin: one source file's raw
// bytes plus the identifiers needed to mint stable node IDs.
type FileInput struct {
	RepoID     string
	SnapshotID string
	FilePath   string // repo-relative, already normalized
	Content    []byte
}

// Plugin extracts Node/Edge IR from one source file of a single language
// (§4.2). Implementations must be tolerant of syntax errors: Tree-sitter
// is an error-recovering parser, so a Plugin should extract whatever it
// can from a partially-malformed file rather than failing the whole file.
type Plugin interface {
	// Language returns the canonical language tag this plugin emits into
	// Node.Language (e.g. "go", "python", "typescript", "protobuf").
	Language() string

	// Extensions returns the file extensions (with leading dot) this
	// plugin claims, used by the Registry for dispatch.
	Extensions() []string

	// ParseFile extracts an IR fragment for one file. A non-nil
	// *model.AnalysisError of kind ErrParse may be returned alongside a
	// partial, non-nil document: callers attach the error to the File
	// node and keep the partial IR (Design Notes "parse errors are
	// data, not pipeline-halting failures").
	ParseFile(in FileInput, gen *model.IDGenerator) (*model.IRDocument, error)
}

// Registry dispatches a file to the Plugin registered for its extension.
type Registry struct {
	byExt map[string]Plugin
}

// NewRegistry builds a Registry from the given plugins, indexing each by
// every extension it declares.
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{byExt: make(map[string]Plugin)}
	for _, p := range plugins {
		for _, ext := range p.Extensions() {
			r.byExt[ext] = p
		}
	}
	return r
}

// Default builds the registry of all built-in plugins (§4.2: Go, Python,
// TypeScript, Protobuf).
func Default() *Registry {
	return NewRegistry(
		NewGoPlugin(),
		NewPythonPlugin(),
		NewTypeScriptPlugin(),
		NewProtobufPlugin(),
	)
}

// ForFile returns the plugin responsible for path's extension, or nil if
// no plugin claims it (the caller should skip the file rather than error,
// matching the loader's unsupported-language handling).
func (r *Registry) ForFile(path string) Plugin {
	return r.byExt[strings.ToLower(filepath.Ext(path))]
}

// ParseFile dispatches to the registered plugin and wraps an unsupported
// extension as a descriptive error rather than a nil-pointer panic.
func (r *Registry) ParseFile(in FileInput, gen *model.IDGenerator) (*model.IRDocument, error) {
	p := r.ForFile(in.FilePath)
	if p == nil {
		return nil, fmt.Errorf("langplugin: no plugin registered for %q", in.FilePath)
	}
	return p.ParseFile(in, gen)
}
