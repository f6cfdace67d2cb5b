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
	"context"

	"github.com/kraklabs/codegraph/pkg/langplugin"
	"github.com/kraklabs/codegraph/pkg/model"
)

// IRBuildStage implements L1: dispatching every input file to its language
// plugin and merging the resulting per-file IRDocuments into r.Doc. A
// plugin failure on one file is recorded as a Diagnostic and attached to
// that file's (absent) node id; the stage continues with the rest (§4.2
// "Error behavior").
type IRBuildStage struct {
	Registry *langplugin.Registry
	Files    []langplugin.FileInput
}

func (s *IRBuildStage) Name() StageName { return L1IRBuild }

func (s *IRBuildStage) Execute(ctx context.Context, r *Run) error {
	for _, f := range s.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := s.Registry.ParseFile(f, r.Gen)
		if err != nil {
			r.AddDiagnostic(L1IRBuild, f.FilePath, "parse failed", err)
			continue
		}
		if doc == nil {
			continue
		}
		r.Doc.Nodes = append(r.Doc.Nodes, doc.Nodes...)
		r.Doc.Edges = append(r.Doc.Edges, doc.Edges...)
	}
	return nil
}

// NewRun creates a fresh Run ready for L1.
func NewRun(repoID, snapshotID string) *Run {
	return &Run{
		Doc:        &model.IRDocument{},
		Gen:        model.NewIDGenerator(repoID),
		RepoID:     repoID,
		SnapshotID: snapshotID,
	}
}
