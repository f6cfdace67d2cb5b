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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/model"
)

func TestCrossFileStage_ResolvesByUniqueSimpleName(t *testing.T) {
	r := NewRun("repo1", "snap1")
	r.Doc.Nodes = []model.Node{
		{ID: "caller", Kind: model.NodeFunction, Name: "main", FQN: "pkg.main"},
		{ID: "callee", Kind: model.NodeFunction, Name: "helper", FQN: "pkg.helper"},
	}
	r.Doc.Edges = []model.Edge{
		{SourceID: "caller", TargetID: unresolvedPrefix + "helper", Kind: model.EdgeCalls},
	}

	stage := &CrossFileStage{}
	require.NoError(t, stage.Execute(context.Background(), r))
	assert.Equal(t, "callee", r.Doc.Edges[0].TargetID)
}

func TestCrossFileStage_LeavesAmbiguousUnresolved(t *testing.T) {
	r := NewRun("repo1", "snap1")
	r.Doc.Nodes = []model.Node{
		{ID: "a", Kind: model.NodeFunction, Name: "helper", FQN: "pkg.a.helper"},
		{ID: "b", Kind: model.NodeFunction, Name: "helper", FQN: "pkg.b.helper"},
	}
	r.Doc.Edges = []model.Edge{
		{SourceID: "a", TargetID: unresolvedPrefix + "helper", Kind: model.EdgeCalls},
	}

	stage := &CrossFileStage{}
	require.NoError(t, stage.Execute(context.Background(), r))
	assert.Equal(t, unresolvedPrefix+"helper", r.Doc.Edges[0].TargetID)
}
