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

package pdg

import "github.com/kraklabs/codegraph/pkg/model"

// DependencyType distinguishes a control dependency (this statement
// controls whether that one executes) from a data dependency (a value
// computed here is used there).
type DependencyType string

const (
	Control DependencyType = "control"
	Data    DependencyType = "data"
)

// Node is one statement in the PDG.
type Node struct {
	ID         string
	Statement  string
	LineNumber int
	FilePath   string
	Span       model.Span
	DefinedVars []string
	UsedVars    []string
}

// WithVars records the variables a node defines and uses, for data-
// dependency derivation.
func (n Node) WithVars(defined, used []string) Node {
	n.DefinedVars = defined
	n.UsedVars = used
	return n
}

// Edge is one dependency between two statements.
type Edge struct {
	From  string
	To    string
	Type  DependencyType
	Label string
}

// Graph is the Program Dependence Graph for one function or file.
type Graph struct {
	ID    string
	nodes map[string]Node
	order []string // insertion order, for deterministic iteration
	edges map[string][]Edge // by To (dependencies consumed by backward slicing)
	fwd   map[string][]Edge // by From (dependencies consumed by forward slicing)
}

// New creates an empty graph.
func New(id string) *Graph {
	return &Graph{
		ID:    id,
		nodes: make(map[string]Node),
		edges: make(map[string][]Edge),
		fwd:   make(map[string][]Edge),
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n Node) {
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

// AddEdge inserts a dependency edge.
func (g *Graph) AddEdge(e Edge) {
	g.edges[e.To] = append(g.edges[e.To], e)
	g.fwd[e.From] = append(g.fwd[e.From], e)
}

// ContainsNode reports whether id names a node in the graph.
func (g *Graph) ContainsNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// GetNode returns the node with the given id.
func (g *Graph) GetNode(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns every node id, in insertion order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies returns the edges consumed by id (id is the To side —
// these are the things id depends ON), matching the slicer's
// `get_dependencies` usage for confidence/control-context generation.
func (g *Graph) Dependencies(id string) []Edge {
	return g.edges[id]
}

// BackwardSliceFiltered returns every node that (transitively, up to
// maxDepth hops) target depends on, filtered by dependency kind.
func (g *Graph) BackwardSliceFiltered(target string, maxDepth int, includeControl, includeData bool) map[string]bool {
	return g.bfs(target, maxDepth, includeControl, includeData, g.edges, func(e Edge) string { return e.From })
}

// ForwardSliceFiltered returns every node that (transitively, up to
// maxDepth hops) depends on source.
func (g *Graph) ForwardSliceFiltered(source string, maxDepth int, includeControl, includeData bool) map[string]bool {
	return g.bfs(source, maxDepth, includeControl, includeData, g.fwd, func(e Edge) string { return e.To })
}

func (g *Graph) bfs(start string, maxDepth int, includeControl, includeData bool, adj map[string][]Edge, next func(Edge) string) map[string]bool {
	visited := map[string]bool{start: true}
	if maxDepth <= 0 {
		return visited
	}
	frontier := []string{start}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var nextFrontier []string
		for _, id := range frontier {
			for _, e := range adj[id] {
				if e.Type == Control && !includeControl {
					continue
				}
				if e.Type == Data && !includeData {
					continue
				}
				n := next(e)
				if !visited[n] {
					visited[n] = true
					nextFrontier = append(nextFrontier, n)
				}
			}
		}
		frontier = nextFrontier
	}
	return visited
}

// ThinSlice is the backward slice restricted to data dependencies only
// (Sridharan et al., "Thin Slicing", PLDI 2007).
func (g *Graph) ThinSlice(target string, maxDepth int) map[string]bool {
	return g.BackwardSliceFiltered(target, maxDepth, false, true)
}

// ChopFiltered returns Chop(source, target) = forward(source) ∩
// backward(target) (Jackson & Rollins, "Chopping", FSE 1994).
func (g *Graph) ChopFiltered(source, target string, maxDepth int, includeControl, includeData bool) map[string]bool {
	fwd := g.ForwardSliceFiltered(source, maxDepth, includeControl, includeData)
	bwd := g.BackwardSliceFiltered(target, maxDepth, includeControl, includeData)
	out := make(map[string]bool)
	for id := range fwd {
		if bwd[id] {
			out[id] = true
		}
	}
	return out
}
