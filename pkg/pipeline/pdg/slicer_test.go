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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/model"
)

// n1: x = 1 -> n2: y = x + 1 -> n3: z = y * 2, linked by Data edges.
func testGraph() *Graph {
	g := New("test")
	g.AddNode(Node{ID: "n1", Statement: "x = 1", LineNumber: 1, Span: model.Span{StartLine: 0, EndLine: 0}}.WithVars([]string{"x"}, nil))
	g.AddNode(Node{ID: "n2", Statement: "y = x + 1", LineNumber: 2, Span: model.Span{StartLine: 1, EndLine: 1}}.WithVars([]string{"y"}, []string{"x"}))
	g.AddNode(Node{ID: "n3", Statement: "z = y * 2", LineNumber: 3, Span: model.Span{StartLine: 2, EndLine: 2}}.WithVars([]string{"z"}, []string{"y"}))
	g.AddEdge(Edge{From: "n1", To: "n2", Type: Data, Label: "x"})
	g.AddEdge(Edge{From: "n2", To: "n3", Type: Data, Label: "y"})
	return g
}

func intp(v int) *int { return &v }

func TestSlicer_BackwardSliceIncludesAllAncestors(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.BackwardSlice(g, "n3", nil)
	assert.Equal(t, Backward, result.SliceType)
	assert.Len(t, result.Nodes, 3)
	assert.True(t, result.Nodes["n1"] && result.Nodes["n2"] && result.Nodes["n3"])
}

func TestSlicer_ForwardSliceIncludesAllDescendants(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.ForwardSlice(g, "n1", nil)
	assert.Equal(t, Forward, result.SliceType)
	assert.Len(t, result.Nodes, 3)
}

func TestSlicer_HybridSliceUnionsBothDirections(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.HybridSlice(g, "n2", nil)
	assert.Equal(t, Hybrid, result.SliceType)
	assert.Len(t, result.Nodes, 3)
	assert.Contains(t, result.Metadata, "backward_nodes")
	assert.Contains(t, result.Metadata, "forward_nodes")
}

func TestSlicer_CacheHitOnRepeatedQuery(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	_ = s.BackwardSlice(g, "n3", nil)
	assert.Equal(t, uint64(1), s.misses)
	assert.Equal(t, uint64(0), s.hits)

	_ = s.BackwardSlice(g, "n3", nil)
	assert.Equal(t, uint64(1), s.misses)
	assert.Equal(t, uint64(1), s.hits)

	stats := s.CacheStats()
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestSlicer_InvalidateAll(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	_ = s.BackwardSlice(g, "n3", nil)
	require.Len(t, s.cache, 1)

	count := s.InvalidateCache(nil)
	assert.Equal(t, 1, count)
	assert.Empty(t, s.cache)
}

func TestSlicer_InvalidateSelective(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	_ = s.BackwardSlice(g, "n3", nil)
	_ = s.ForwardSlice(g, "n1", nil)

	count := s.InvalidateCache([]string{"n2"})
	assert.Equal(t, 2, count)
}

func TestSlicer_NonexistentNodeIsEmptyNotError(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.BackwardSlice(g, "nonexistent", nil)
	assert.Empty(t, result.Nodes)
	assert.Zero(t, result.Confidence)
}

func TestSlicer_StrictModeReportsError(t *testing.T) {
	g := testGraph()
	s := NewSlicerWithConfig(Config{StrictMode: true, MaxDepth: 50, IncludeControl: true, IncludeData: true})
	result := s.BackwardSlice(g, "nonexistent", nil)
	assert.Contains(t, result.Metadata, "error")
}

func TestSlicer_FragmentsSortedByLine(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.BackwardSlice(g, "n3", nil)
	for i := 1; i < len(result.Fragments); i++ {
		assert.LessOrEqual(t, result.Fragments[i-1].StartLine, result.Fragments[i].StartLine)
	}
}

func TestSlicer_MaxDepthLimitsAncestors(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.BackwardSlice(g, "n3", intp(1))
	assert.Len(t, result.Nodes, 2)
	assert.False(t, result.Nodes["n1"])
}

func TestSlicer_ConfidenceWithinBounds(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.BackwardSlice(g, "n3", nil)
	assert.Greater(t, result.Confidence, 0.5)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestSlicer_ThinSliceDataOnly(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.ThinSlice(g, "n3", nil)
	assert.Len(t, result.Nodes, 3)
	assert.Equal(t, "thin", result.Metadata["slice_type"])
}

func TestSlicer_Chop(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.Chop(g, "n1", "n3", nil)
	assert.Len(t, result.Nodes, 3)
	assert.Equal(t, "chop", result.Metadata["slice_type"])
	assert.Equal(t, "n1", result.Metadata["source"])
	assert.Equal(t, "n3", result.Metadata["target"])
}

func TestSlicer_ChopPartial(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.Chop(g, "n1", "n2", nil)
	assert.Len(t, result.Nodes, 2)
	assert.True(t, result.Nodes["n1"] && result.Nodes["n2"])
	assert.False(t, result.Nodes["n3"])
}

func TestSlicer_ChopNoPathIsEmpty(t *testing.T) {
	g := testGraph()
	s := NewSlicer()
	result := s.Chop(g, "n3", "n1", nil)
	assert.Empty(t, result.Nodes)
}

func TestSlicer_BothFlagsFalseOnlyTarget(t *testing.T) {
	g := testGraph()
	s := NewSlicerWithConfig(Config{MaxDepth: 50, IncludeControl: false, IncludeData: false})
	result := s.BackwardSlice(g, "n3", nil)
	assert.Len(t, result.Nodes, 1)
	assert.True(t, result.Nodes["n3"])
}

func TestSlicer_EmptyGraphSlicingIsEmpty(t *testing.T) {
	g := New("empty")
	s := NewSlicer()
	assert.Empty(t, s.BackwardSlice(g, "anything", nil).Nodes)
	assert.Empty(t, s.ThinSlice(g, "anything", nil).Nodes)
	assert.Empty(t, s.Chop(g, "a", "b", nil).Nodes)
}
