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

package query

import (
	"regexp"

	"github.com/kraklabs/codegraph/pkg/model"
)

// NodeSelector filters a node stream by kind, file, name, and language
// (§4.5). A zero-value field means "don't filter on this dimension".
type NodeSelector struct {
	Kinds        []model.NodeKind
	FilePattern  *regexp.Regexp
	NamePattern  *regexp.Regexp
	Language     string
}

// Match reports whether n satisfies every configured dimension of s.
func (s NodeSelector) Match(n model.Node) bool {
	if len(s.Kinds) > 0 && !kindIn(n.Kind, s.Kinds) {
		return false
	}
	if s.FilePattern != nil && !s.FilePattern.MatchString(n.FilePath) {
		return false
	}
	if s.NamePattern != nil && !s.NamePattern.MatchString(n.Name) {
		return false
	}
	if s.Language != "" && n.Language != s.Language {
		return false
	}
	return true
}

// FilterNodes returns the subset of nodes matching s, preserving order.
func (s NodeSelector) FilterNodes(nodes []model.Node) []model.Node {
	out := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		if s.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

func kindIn(k model.NodeKind, kinds []model.NodeKind) bool {
	for _, want := range kinds {
		if want == k || want == model.NodeAll {
			return true
		}
	}
	return false
}

// EdgeSelector filters an edge stream by kind and endpoint membership.
type EdgeSelector struct {
	Kinds       []model.EdgeKind
	SourceIDs   map[string]bool // nil means "any source"
	TargetIDs   map[string]bool // nil means "any target"
}

func (s EdgeSelector) Match(e model.Edge) bool {
	if len(s.Kinds) > 0 {
		found := false
		for _, k := range s.Kinds {
			if k == e.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if s.SourceIDs != nil && !s.SourceIDs[e.SourceID] {
		return false
	}
	if s.TargetIDs != nil && !s.TargetIDs[e.TargetID] {
		return false
	}
	return true
}

func (s EdgeSelector) FilterEdges(edges []model.Edge) []model.Edge {
	out := make([]model.Edge, 0, len(edges))
	for _, e := range edges {
		if s.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// PathLimits bounds a graph traversal (e.g. the slicer or repo-map's
// dependency walk) so a cyclic or very dense graph can't run unbounded
// (§4.5, §4.3.6 "thin slicing").
type PathLimits struct {
	MaxDepth int
	MaxNodes int
	MaxPaths int
}

// DefaultPathLimits are conservative bounds suitable for interactive
// queries; batch analyses (clone detection, PDG slicing) override these.
var DefaultPathLimits = PathLimits{MaxDepth: 20, MaxNodes: 5000, MaxPaths: 100}

// Exceeded reports whether a traversal that has visited visitedNodes nodes
// at the given depth and has already emitted emittedPaths complete paths
// has exceeded any configured limit. A zero-valued field is treated as
// "unbounded" on that dimension.
func (l PathLimits) Exceeded(depth, visitedNodes, emittedPaths int) bool {
	if l.MaxDepth > 0 && depth > l.MaxDepth {
		return true
	}
	if l.MaxNodes > 0 && visitedNodes > l.MaxNodes {
		return true
	}
	if l.MaxPaths > 0 && emittedPaths > l.MaxPaths {
		return true
	}
	return false
}
