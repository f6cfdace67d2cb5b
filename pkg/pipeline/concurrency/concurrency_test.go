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

package concurrency

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/codegraph/pkg/model"
)

// makeAsyncIR builds a single async function "test_async_fn" with a
// shared field self.count read at line 8, an await at line 10, and a
// write at line 12 — the textbook read-await-write race.
func makeAsyncIR() *model.IRDocument {
	funcNode := model.Node{
		ID:         "test_async_fn",
		Kind:       model.NodeFunction,
		FilePath:   "test.py",
		Span:       model.Span{StartLine: 1, EndLine: 20},
		Name:       "test_async_fn",
		Descriptor: &model.Descriptor{IsAsync: true},
	}
	varNode := model.Node{
		ID:       "self.count",
		Kind:     model.NodeVariable,
		FilePath: "test.py",
		Span:     model.Span{StartLine: 5, EndLine: 5},
		ParentID: "test_async_fn",
		Name:     "self.count",
	}
	awaitNode := model.Node{
		ID:       "await_1",
		Kind:     model.NodeExpression,
		FilePath: "test.py",
		Span:     model.Span{StartLine: 10, EndLine: 10},
		ParentID: "test_async_fn",
		Name:     "await asyncio.sleep(0)",
	}

	readEdge := model.Edge{
		SourceID: "test_async_fn",
		TargetID: "self.count",
		Kind:     model.EdgeReads,
		Span:     &model.Span{StartLine: 8, EndLine: 8},
	}
	writeEdge := model.Edge{
		SourceID: "test_async_fn",
		TargetID: "self.count",
		Kind:     model.EdgeWrites,
		Span:     &model.Span{StartLine: 12, EndLine: 12},
	}

	return &model.IRDocument{
		Nodes: []model.Node{funcNode, varNode, awaitNode},
		Edges: []model.Edge{readEdge, writeEdge},
	}
}

func TestDetector_FindsAccessesViaEdges(t *testing.T) {
	doc := makeAsyncIR()
	d := NewDetector()
	byID := doc.NodeIndex()

	accesses := d.findAccesses(doc, byID, "test_async_fn")

	assert.Len(t, accesses, 2)

	var hasRead, hasWrite bool
	for _, a := range accesses {
		if a.Type == AccessRead {
			hasRead = true
		}
		if a.Type == AccessWrite {
			hasWrite = true
		}
	}
	assert.True(t, hasRead, "should have a read access")
	assert.True(t, hasWrite, "should have a write access")
}

func TestDetector_FindsAwaitPoints(t *testing.T) {
	doc := makeAsyncIR()
	d := NewDetector()

	points := d.findAwaitPoints(doc, "test_async_fn")

	assert.NotEmpty(t, points)
	assert.Contains(t, points, 10)
}

func TestDetector_DetectsRaceCondition(t *testing.T) {
	doc := makeAsyncIR()
	d := NewDetector()

	races := d.AnalyzeFunction(doc, "test_async_fn")

	assert.NotEmpty(t, races, "read at 8, await at 10, write at 12 should race")
	assert.Equal(t, "self.count", races[0].Variable)
}

func TestDetector_NoRaceWithoutAwait(t *testing.T) {
	doc := &model.IRDocument{
		Nodes: []model.Node{{
			ID:         "sync_fn",
			Kind:       model.NodeFunction,
			FilePath:   "test.py",
			Span:       model.Span{StartLine: 1, EndLine: 10},
			Name:       "sync_fn",
			Descriptor: &model.Descriptor{IsAsync: true},
		}},
		Edges: []model.Edge{
			{SourceID: "sync_fn", TargetID: "self.x", Kind: model.EdgeReads},
			{SourceID: "sync_fn", TargetID: "self.x", Kind: model.EdgeWrites},
		},
	}

	races := NewDetector().AnalyzeFunction(doc, "sync_fn")

	assert.Empty(t, races, "no await points means no race regardless of accesses")
}

func TestDetector_NoRaceForNonAsyncFunction(t *testing.T) {
	doc := &model.IRDocument{
		Nodes: []model.Node{{
			ID:       "regular_fn",
			Kind:     model.NodeFunction,
			FilePath: "test.py",
			Span:     model.Span{StartLine: 1, EndLine: 10},
			Name:     "regular_fn",
		}},
	}

	races := NewDetector().AnalyzeFunction(doc, "regular_fn")

	assert.Empty(t, races, "non-async functions are never analyzed")
}

func TestIsSharedVariable(t *testing.T) {
	d := NewDetector()

	assert.True(t, d.IsSharedVariable("self.count"))
	assert.True(t, d.IsSharedVariable("self._private"))
	assert.True(t, d.IsSharedVariable("CONFIG"))
	assert.True(t, d.IsSharedVariable("Global_Var"))
	assert.True(t, d.IsSharedVariable("module.var"))

	assert.False(t, d.IsSharedVariable("local_var"))
	assert.False(t, d.IsSharedVariable("x"))
}

func TestDetector_LockProtectedAccessesDoNotRace(t *testing.T) {
	doc := &model.IRDocument{
		Nodes: []model.Node{
			{
				ID:         "protected_fn",
				Kind:       model.NodeFunction,
				FilePath:   "test.py",
				Span:       model.Span{StartLine: 1, EndLine: 20},
				Name:       "protected_fn",
				Descriptor: &model.Descriptor{IsAsync: true},
			},
			{
				ID:       "lock_block",
				Kind:     model.NodeBlock,
				FilePath: "test.py",
				Span:     model.Span{StartLine: 5, EndLine: 15},
				ParentID: "protected_fn",
				Name:     "async with self.lock",
			},
			{
				ID:       "await_1",
				Kind:     model.NodeExpression,
				FilePath: "test.py",
				Span:     model.Span{StartLine: 10, EndLine: 10},
				ParentID: "protected_fn",
				Name:     "await something",
			},
		},
		Edges: []model.Edge{
			{SourceID: "protected_fn", TargetID: "self.count", Kind: model.EdgeReads, Span: &model.Span{StartLine: 7, EndLine: 7}},
			{SourceID: "protected_fn", TargetID: "self.count", Kind: model.EdgeWrites, Span: &model.Span{StartLine: 12, EndLine: 12}},
		},
	}

	races := NewDetector().AnalyzeFunction(doc, "protected_fn")

	assert.Empty(t, races, "accesses fully inside a lock region should not race")
}

func TestDetector_ThreadLocalFilterSuppressesRace(t *testing.T) {
	doc := makeAsyncIR()
	d := &Detector{ThreadLocal: func(variable string) bool { return variable == "self.count" }}

	races := d.AnalyzeFunction(doc, "test_async_fn")

	assert.Empty(t, races, "a variable reported thread-local should never race")
}
