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

package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/model"
)

func TestBuild_ResolvesParameterWithinFunction(t *testing.T) {
	doc := &model.IRDocument{
		Nodes: []model.Node{
			{ID: "file1", Kind: model.NodeFile, Name: "a.go"},
			{ID: "fn1", Kind: model.NodeFunction, Name: "Do", ParentID: "file1"},
			{ID: "p1", Kind: model.NodeParameter, Name: "x", ParentID: "fn1"},
			{ID: "call1", Kind: model.NodeCall, Name: "", ParentID: "fn1"},
		},
	}

	table := Build(doc)
	declID, ok := table.Resolve("call1", "x")
	require.True(t, ok)
	assert.Equal(t, "p1", declID)
}

func TestBuild_ResolvesThroughEnclosingScopes(t *testing.T) {
	doc := &model.IRDocument{
		Nodes: []model.Node{
			{ID: "file1", Kind: model.NodeFile, Name: "a.go"},
			{ID: "cls1", Kind: model.NodeClass, Name: "Widget", ParentID: "file1"},
			{ID: "field1", Kind: model.NodeField, Name: "count", ParentID: "cls1"},
			{ID: "fn1", Kind: model.NodeMethod, Name: "Inc", ParentID: "cls1"},
			{ID: "call1", Kind: model.NodeCall, ParentID: "fn1"},
		},
	}

	table := Build(doc)
	declID, ok := table.Resolve("call1", "count")
	require.True(t, ok)
	assert.Equal(t, "field1", declID)
}

func TestBuild_UnresolvedNameReturnsFalse(t *testing.T) {
	doc := &model.IRDocument{
		Nodes: []model.Node{
			{ID: "file1", Kind: model.NodeFile, Name: "a.go"},
			{ID: "fn1", Kind: model.NodeFunction, Name: "Do", ParentID: "file1"},
		},
	}
	table := Build(doc)
	_, ok := table.Resolve("fn1", "nonexistent")
	assert.False(t, ok)
}
