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

import (
	"fmt"
	"sort"
	"strings"
)

// SliceType is the closed set of slice kinds a Slicer produces.
type SliceType string

const (
	Backward SliceType = "backward"
	Forward  SliceType = "forward"
	Hybrid   SliceType = "hybrid"
)

// Config tunes slicing behavior.
type Config struct {
	MaxDepth         int
	MaxFunctionDepth int
	IncludeControl   bool
	IncludeData      bool
	Interprocedural  bool
	StrictMode       bool
}

// DefaultConfig matches the teacher's production defaults.
func DefaultConfig() Config {
	return Config{
		MaxDepth:         50,
		MaxFunctionDepth: 3,
		IncludeControl:   true,
		IncludeData:      true,
		Interprocedural:  true,
		StrictMode:       false,
	}
}

// Fragment is one statement pulled out of a slice for presentation.
type Fragment struct {
	FilePath   string
	StartLine  int
	EndLine    int
	Code       string
	NodeID     string
}

// Result is the outcome of a slicing operation.
type Result struct {
	Target         string
	SliceType      SliceType
	Nodes          map[string]bool
	Fragments      []Fragment
	ControlContext []string
	TotalTokens    int
	Confidence     float64
	Metadata       map[string]string
}

func emptyResult(target string, kind SliceType) Result {
	return Result{Target: target, SliceType: kind, Nodes: map[string]bool{}, Metadata: map[string]string{}}
}

func errorResult(target string, kind SliceType, reason string) Result {
	r := emptyResult(target, kind)
	r.Metadata["error"] = reason
	return r
}

type cacheKey struct {
	nodeID    string
	sliceType SliceType
	maxDepth  int
}

type cacheEntry struct {
	result      Result
	accessOrder uint64
}

// CacheStats reports Slicer memoization effectiveness.
type CacheStats struct {
	Size     int
	Capacity int
	Hits     uint64
	Misses   uint64
	HitRate  float64
}

// Slicer runs slicing queries against a Graph with LRU memoization
// (§4.3.5: "LRU memoization keyed by (node_id, slice_kind, max_depth)").
type Slicer struct {
	config        Config
	cache         map[cacheKey]*cacheEntry
	cacheCapacity int
	accessCounter uint64
	hits, misses  uint64
}

// NewSlicer creates a Slicer with default config and a 1000-entry cache.
func NewSlicer() *Slicer { return NewSlicerWithConfig(DefaultConfig()) }

// NewSlicerWithConfig creates a Slicer with the given config.
func NewSlicerWithConfig(cfg Config) *Slicer {
	return &Slicer{config: cfg, cache: make(map[cacheKey]*cacheEntry), cacheCapacity: 1000}
}

func (s *Slicer) depthOr(maxDepth *int) int {
	if maxDepth != nil {
		return *maxDepth
	}
	return s.config.MaxDepth
}

// BackwardSlice answers "why does this variable have this value?".
func (s *Slicer) BackwardSlice(g *Graph, target string, maxDepth *int) Result {
	depth := s.depthOr(maxDepth)
	key := cacheKey{target, Backward, depth}
	if cached, ok := s.lookup(key); ok {
		return cached
	}

	if !g.ContainsNode(target) {
		if s.config.StrictMode {
			return errorResult(target, Backward, "NODE_NOT_FOUND")
		}
		return emptyResult(target, Backward)
	}

	nodes := g.BackwardSliceFiltered(target, depth, s.config.IncludeControl, s.config.IncludeData)
	result := s.buildResult(g, target, Backward, nodes)
	s.store(key, result)
	return result
}

// ForwardSlice answers "what will change if I modify this?".
func (s *Slicer) ForwardSlice(g *Graph, source string, maxDepth *int) Result {
	depth := s.depthOr(maxDepth)
	key := cacheKey{source, Forward, depth}
	if cached, ok := s.lookup(key); ok {
		return cached
	}

	if !g.ContainsNode(source) {
		if s.config.StrictMode {
			return errorResult(source, Forward, "NODE_NOT_FOUND")
		}
		return emptyResult(source, Forward)
	}

	nodes := g.ForwardSliceFiltered(source, depth, s.config.IncludeControl, s.config.IncludeData)
	result := s.buildResult(g, source, Forward, nodes)
	s.store(key, result)
	return result
}

// HybridSlice is the union of the backward and forward slices of a
// focus node: "everything related to this node".
func (s *Slicer) HybridSlice(g *Graph, focus string, maxDepth *int) Result {
	backward := s.BackwardSlice(g, focus, maxDepth)
	forward := s.ForwardSlice(g, focus, maxDepth)

	nodes := make(map[string]bool, len(backward.Nodes)+len(forward.Nodes))
	overlap := 0
	for id := range backward.Nodes {
		nodes[id] = true
	}
	for id := range forward.Nodes {
		if backward.Nodes[id] {
			overlap++
		}
		nodes[id] = true
	}

	result := s.buildResult(g, focus, Hybrid, nodes)
	result.Confidence = minFloat(backward.Confidence, forward.Confidence)
	result.Metadata["backward_nodes"] = fmt.Sprint(len(backward.Nodes))
	result.Metadata["forward_nodes"] = fmt.Sprint(len(forward.Nodes))
	result.Metadata["overlap"] = fmt.Sprint(overlap)
	return result
}

// ThinSlice is a data-only backward slice (Sridharan et al., PLDI 2007)
// — typically 30-50% smaller than a full backward slice.
func (s *Slicer) ThinSlice(g *Graph, target string, maxDepth *int) Result {
	depth := s.depthOr(maxDepth)
	if !g.ContainsNode(target) {
		if s.config.StrictMode {
			return errorResult(target, Backward, "NODE_NOT_FOUND")
		}
		return emptyResult(target, Backward)
	}

	nodes := g.ThinSlice(target, depth)
	result := s.buildResult(g, target, Backward, nodes)
	result.ControlContext = nil
	result.Metadata["slice_type"] = "thin"
	return result
}

// Chop returns the statements on paths from source to target: Chop(s,t)
// = forward(s) ∩ backward(t) (Jackson & Rollins, FSE 1994).
func (s *Slicer) Chop(g *Graph, source, target string, maxDepth *int) Result {
	depth := s.depthOr(maxDepth)
	label := source + "→" + target
	if !g.ContainsNode(source) || !g.ContainsNode(target) {
		if s.config.StrictMode {
			return errorResult(label, Hybrid, "NODE_NOT_FOUND")
		}
		return emptyResult(label, Hybrid)
	}

	nodes := g.ChopFiltered(source, target, depth, s.config.IncludeControl, s.config.IncludeData)
	result := s.buildResult(g, label, Hybrid, nodes)
	result.Metadata["source"] = source
	result.Metadata["target"] = target
	result.Metadata["slice_type"] = "chop"
	return result
}

func (s *Slicer) buildResult(g *Graph, target string, kind SliceType, nodes map[string]bool) Result {
	fragments := s.extractFragments(g, nodes)
	return Result{
		Target:         target,
		SliceType:      kind,
		Nodes:          nodes,
		Fragments:      fragments,
		ControlContext: s.controlContext(g, nodes),
		TotalTokens:    countTokens(fragments),
		Confidence:     s.confidence(g, nodes),
		Metadata:       map[string]string{},
	}
}

func (s *Slicer) extractFragments(g *Graph, nodes map[string]bool) []Fragment {
	var out []Fragment
	for id := range nodes {
		n, ok := g.GetNode(id)
		if !ok {
			continue
		}
		path := n.FilePath
		if path == "" {
			path = "<unknown>"
		}
		out = append(out, Fragment{FilePath: path, StartLine: n.Span.StartLine, EndLine: n.Span.EndLine, Code: n.Statement, NodeID: id})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		return out[i].StartLine < out[j].StartLine
	})
	return out
}

func (s *Slicer) controlContext(g *Graph, nodes map[string]bool) []string {
	var explanations []string
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, dep := range g.Dependencies(id) {
			if dep.Type != Control {
				continue
			}
			from, okFrom := g.GetNode(dep.From)
			to, okTo := g.GetNode(dep.To)
			if !okFrom || !okTo {
				continue
			}
			label := dep.Label
			if label == "" {
				label = "condition"
			}
			explanations = append(explanations, fmt.Sprintf(
				"Line %d controls line %d (condition: %s)", from.LineNumber, to.LineNumber, label))
			if len(explanations) >= 10 {
				return explanations
			}
		}
	}
	return explanations
}

func countTokens(fragments []Fragment) int {
	total := 0
	for _, f := range fragments {
		total += len(strings.Fields(f.Code))
	}
	return total
}

// confidence combines PDG coverage and dependency completeness per
// §4.3.5's weighting: 0.6 * coverage + 0.4 * completeness.
func (s *Slicer) confidence(g *Graph, nodes map[string]bool) float64 {
	if len(nodes) == 0 {
		return 0
	}
	total := len(g.NodeIDs())
	if total == 0 {
		return 0
	}

	coverageRatio := float64(len(nodes)) / float64(total)
	coverageScore := minFloat(0.5+coverageRatio, 1.0)

	missing, totalDeps := 0, 0
	for id := range nodes {
		deps := g.Dependencies(id)
		totalDeps += len(deps)
		for _, dep := range deps {
			if !nodes[dep.From] {
				missing++
			}
		}
	}
	completenessScore := 1.0
	if totalDeps > 0 {
		completenessScore = 1.0 - float64(missing)/float64(totalDeps)
	}

	score := 0.6*coverageScore + 0.4*completenessScore
	return clamp01(score)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (s *Slicer) lookup(key cacheKey) (Result, bool) {
	entry, ok := s.cache[key]
	if !ok {
		s.misses++
		return Result{}, false
	}
	s.hits++
	s.accessCounter++
	entry.accessOrder = s.accessCounter
	return entry.result, true
}

func (s *Slicer) store(key cacheKey, result Result) {
	if len(s.cache) >= s.cacheCapacity {
		s.evictLRU()
	}
	s.accessCounter++
	s.cache[key] = &cacheEntry{result: result, accessOrder: s.accessCounter}
}

func (s *Slicer) evictLRU() {
	var lruKey cacheKey
	var lruOrder uint64
	first := true
	for k, e := range s.cache {
		if first || e.accessOrder < lruOrder {
			lruKey, lruOrder, first = k, e.accessOrder, false
		}
	}
	if !first {
		delete(s.cache, lruKey)
	}
}

// InvalidateCache clears the whole cache (affectedNodes == nil) or only
// entries whose slice touched one of affectedNodes, returning the count
// removed.
func (s *Slicer) InvalidateCache(affectedNodes []string) int {
	if affectedNodes == nil {
		count := len(s.cache)
		s.cache = make(map[cacheKey]*cacheEntry)
		return count
	}

	affected := make(map[string]bool, len(affectedNodes))
	for _, n := range affectedNodes {
		affected[n] = true
	}

	var toRemove []cacheKey
	for k, e := range s.cache {
		for id := range e.result.Nodes {
			if affected[id] {
				toRemove = append(toRemove, k)
				break
			}
		}
	}
	for _, k := range toRemove {
		delete(s.cache, k)
	}
	return len(toRemove)
}

// CacheStats reports current hit-rate and occupancy.
func (s *Slicer) CacheStats() CacheStats {
	total := s.hits + s.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(s.hits) / float64(total)
	}
	return CacheStats{Size: len(s.cache), Capacity: s.cacheCapacity, Hits: s.hits, Misses: s.misses, HitRate: hitRate}
}
