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

package taint

// CallGraphProvider answers "what does this function call?" for the base
// reachability pass. The taint package does not build call graphs itself;
// a pipeline stage supplies one derived from Calls edges.
type CallGraphProvider interface {
	Callees(function string) []string
}

// Path is a discovered route from a source to a sink, as a sequence of
// the function names traversed (§3: "ordered sequence from a source to a
// sink with the traversed function labels").
type Path struct {
	Source string
	Sink   string
	Path   []string
}

// ReachabilityAnalyzer is the base interprocedural taint pass: a
// breadth-first search over the call graph from each source to the
// nearest reachable sink(s), bounded by depth and total path count.
type ReachabilityAnalyzer struct {
	graph    CallGraphProvider
	maxDepth int
	maxPaths int
}

// NewReachabilityAnalyzer creates a bounded BFS reachability analyzer.
func NewReachabilityAnalyzer(graph CallGraphProvider, maxDepth, maxPaths int) *ReachabilityAnalyzer {
	return &ReachabilityAnalyzer{graph: graph, maxDepth: maxDepth, maxPaths: maxPaths}
}

// Analyze finds every source-to-sink path. sources and sinks map a
// function name to the set of tainted/sensitive variable names relevant
// to it; no pass in this package reads those sets. A function is a
// source or sink purely by membership in the respective map.
func (a *ReachabilityAnalyzer) Analyze(sources, sinks map[string]map[string]bool) []Path {
	var paths []Path
	for source := range sources {
		if len(paths) >= a.maxPaths {
			break
		}
		paths = append(paths, a.bfsFrom(source, sinks, a.maxPaths-len(paths))...)
	}
	return paths
}

type frame struct {
	node string
	path []string
}

func (a *ReachabilityAnalyzer) bfsFrom(source string, sinks map[string]map[string]bool, budget int) []Path {
	var found []Path
	visited := map[string]bool{source: true}
	queue := []frame{{node: source, path: []string{source}}}

	for len(queue) > 0 && len(found) < budget {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.path) > a.maxDepth {
			continue
		}
		if _, isSink := sinks[cur.node]; isSink && cur.node != source {
			stepPath := make([]string, len(cur.path))
			copy(stepPath, cur.path)
			found = append(found, Path{Source: source, Sink: cur.node, Path: stepPath})
			continue
		}

		for _, callee := range a.graph.Callees(cur.node) {
			if visited[callee] {
				continue
			}
			visited[callee] = true
			nextPath := make([]string, len(cur.path)+1)
			copy(nextPath, cur.path)
			nextPath[len(cur.path)] = callee
			queue = append(queue, frame{node: callee, path: nextPath})
		}
	}
	return found
}
