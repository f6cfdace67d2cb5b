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

package repomap

import "github.com/kraklabs/codegraph/pkg/model"

// Symbol is one rankable unit: a class, interface, function or method
// the PageRank pass scored.
type Symbol struct {
	ID       string
	FQN      string
	Name     string
	FilePath string
	Kind     model.NodeKind
	Line     int
	Rank     float64
}

// rankableKinds are the node kinds that get a PageRank score and a slot
// in the repo map. Everything else (parameters, blocks, imports, ...) is
// graph plumbing, not a symbol worth summarizing.
var rankableKinds = map[model.NodeKind]bool{
	model.NodeClass:     true,
	model.NodeInterface: true,
	model.NodeFunction:  true,
	model.NodeMethod:    true,
}

// FileSummary is the repo map's per-file entry: its symbols in
// descending rank order, and the aggregate rank of the file as a whole.
type FileSummary struct {
	FilePath  string
	Symbols   []Symbol
	TotalRank float64
}
