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

package propagation

import (
	"fmt"
	"sort"
)

// Mode selects the PropagationEngine's fixpoint strategy.
type Mode int

const (
	// Sparse drives a worklist seeded from predecessor/successor edges —
	// only nodes whose inputs changed are revisited. Cheap when the flow
	// graph is large and taint/nullness changes are localized.
	Sparse Mode = iota
	// Dense recomputes every node each round until a full pass produces
	// no change. Simpler, more predictable, but does unnecessary work on
	// large sparse graphs.
	Dense
)

// Config controls a single PropagationEngine run.
type Config struct {
	Mode Mode
	// MaxIterations bounds the worklist/round count. Zero selects a
	// size-proportional default.
	MaxIterations int
}

// Node is one point in the flow graph the engine propagates values over.
type Node struct {
	ID           string
	Predecessors []string
	Successors   []string
}

// Stats summarizes one Run.
type Stats struct {
	TotalNodes    int
	AnalyzedNodes int
	Iterations    int
	Warnings      []string
	Errors        []string
}

// Result is the fixpoint value assigned to every node, plus Stats.
type Result[V comparable] struct {
	Values map[string]V
	Stats  Stats
}

// Engine drives an abstract Domain to a fixpoint over a flow graph.
type Engine[V comparable] struct {
	Domain Domain[V]
	Config Config
}

// NewEngine constructs an Engine for the given domain and config.
func NewEngine[V comparable](domain Domain[V], config Config) *Engine[V] {
	return &Engine[V]{Domain: domain, Config: config}
}

// Run propagates values over nodes to a fixpoint. initial supplies each
// node's seed value; transfer computes a node's new value given its
// current inputs (the current values of its predecessors).
func (e *Engine[V]) Run(nodes map[string]Node, initial func(id string) V, transfer func(id string, inputs []V) V) Result[V] {
	if e.Config.Mode == Dense {
		return e.runDense(nodes, initial, transfer)
	}
	return e.runSparse(nodes, initial, transfer)
}

func (e *Engine[V]) runSparse(nodes map[string]Node, initial func(id string) V, transfer func(id string, inputs []V) V) Result[V] {
	values := make(map[string]V, len(nodes))
	ids := sortedIDs(nodes)
	for _, id := range ids {
		values[id] = e.Domain.Join(e.Domain.Bottom(), initial(id))
	}

	maxIter := e.Config.MaxIterations
	if maxIter <= 0 {
		maxIter = len(nodes)*10 + 10
	}

	queue := append([]string(nil), ids...)
	queued := make(map[string]bool, len(ids))
	for _, id := range ids {
		queued[id] = true
	}

	stats := Stats{TotalNodes: len(nodes)}
	analyzed := make(map[string]bool, len(nodes))

	iterations := 0
	for len(queue) > 0 {
		if iterations >= maxIter {
			stats.Warnings = append(stats.Warnings, "max_iterations reached before fixpoint")
			break
		}
		iterations++

		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		node, ok := nodes[id]
		if !ok {
			stats.Errors = append(stats.Errors, fmt.Sprintf("unknown node %q referenced in worklist", id))
			continue
		}
		analyzed[id] = true

		inputs := make([]V, 0, len(node.Predecessors))
		for _, p := range node.Predecessors {
			inputs = append(inputs, values[p])
		}

		next := e.Domain.Join(values[id], transfer(id, inputs))
		if next == values[id] {
			continue
		}
		values[id] = next

		for _, succ := range node.Successors {
			if !queued[succ] {
				queue = append(queue, succ)
				queued[succ] = true
			}
		}
	}

	stats.Iterations = iterations
	stats.AnalyzedNodes = len(analyzed)
	return Result[V]{Values: values, Stats: stats}
}

func (e *Engine[V]) runDense(nodes map[string]Node, initial func(id string) V, transfer func(id string, inputs []V) V) Result[V] {
	values := make(map[string]V, len(nodes))
	ids := sortedIDs(nodes)
	for _, id := range ids {
		values[id] = e.Domain.Join(e.Domain.Bottom(), initial(id))
	}

	maxIter := e.Config.MaxIterations
	if maxIter <= 0 {
		maxIter = len(nodes) + 1
	}

	stats := Stats{TotalNodes: len(nodes), AnalyzedNodes: len(nodes)}

	round := 0
	for {
		if round >= maxIter {
			stats.Warnings = append(stats.Warnings, "max_iterations reached before fixpoint")
			break
		}
		round++

		changed := false
		for _, id := range ids {
			node := nodes[id]
			inputs := make([]V, 0, len(node.Predecessors))
			for _, p := range node.Predecessors {
				inputs = append(inputs, values[p])
			}
			next := e.Domain.Join(values[id], transfer(id, inputs))
			if next != values[id] {
				values[id] = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	stats.Iterations = round
	return Result[V]{Values: values, Stats: stats}
}

func sortedIDs(nodes map[string]Node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
