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

func TestOccurrencesStage_IndexesReferences(t *testing.T) {
	r := NewRun("repo1", "snap1")
	r.Doc.Nodes = []model.Node{
		{ID: "caller1", FQN: "pkg.caller1"},
		{ID: "caller2", FQN: "pkg.caller2"},
		{ID: "callee", FQN: "pkg.helper"},
	}
	r.Doc.Edges = []model.Edge{
		{SourceID: "caller1", TargetID: "callee", Kind: model.EdgeCalls},
		{SourceID: "caller2", TargetID: "callee", Kind: model.EdgeCalls},
	}

	stage := &OccurrencesStage{}
	require.NoError(t, stage.Execute(context.Background(), r))
	assert.Equal(t, []string{"caller1", "caller2"}, r.Occurrences["pkg.helper"])
}
