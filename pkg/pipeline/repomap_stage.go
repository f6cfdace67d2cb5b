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

	"github.com/kraklabs/codegraph/pkg/pipeline/repomap"
)

// RepoMapStage implements L16 (§4.3.11): ranks every class/interface/
// function/method in the document by call/extends/implements centrality
// and groups the top-ranked symbols by file.
type RepoMapStage struct {
	Builder *repomap.Builder

	// Files is populated by Execute: the ranked, budget-truncated
	// per-file summaries.
	Files []repomap.FileSummary
}

func (s *RepoMapStage) Name() StageName { return L16RepoMap }

func (s *RepoMapStage) Execute(ctx context.Context, r *Run) error {
	builder := s.Builder
	if builder == nil {
		builder = repomap.NewBuilder()
	}
	s.Files = builder.Build(r.Doc)
	return nil
}
