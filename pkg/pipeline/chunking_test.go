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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/model"
)

func TestChunkingStage_RespectsScopeForOversizedFunction(t *testing.T) {
	lines := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		lines = append(lines, "line")
	}
	text := strings.Join(lines, "\n")

	r := NewRun("repo1", "snap1")
	r.Doc.Nodes = []model.Node{
		{ID: "n1", Kind: model.NodeFunction, FilePath: "a.go", Language: "go",
			Span: model.Span{StartLine: 0, EndLine: 299}},
	}

	stage := &ChunkingStage{
		Config:   ChunkingConfig{MaxChunkSize: 50, MinChunkSize: 5, OverlapLines: 5, RespectScope: true},
		FileText: map[string]string{"a.go": text},
	}
	require.NoError(t, stage.Execute(context.Background(), r))
	require.Len(t, r.Chunks, 1)
	assert.Equal(t, 0, r.Chunks[0].StartLine)
	assert.Equal(t, 299, r.Chunks[0].EndLine)
}

func TestChunkingStage_SplitsWhenScopeNotRespected(t *testing.T) {
	lines := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		lines = append(lines, "line")
	}
	text := strings.Join(lines, "\n")

	r := NewRun("repo1", "snap1")
	r.Doc.Nodes = []model.Node{
		{ID: "n1", Kind: model.NodeFunction, FilePath: "a.go", Language: "go",
			Span: model.Span{StartLine: 0, EndLine: 299}},
	}

	stage := &ChunkingStage{
		Config:   ChunkingConfig{MaxChunkSize: 50, MinChunkSize: 5, OverlapLines: 5, RespectScope: false},
		FileText: map[string]string{"a.go": text},
	}
	require.NoError(t, stage.Execute(context.Background(), r))
	assert.Greater(t, len(r.Chunks), 1)
}

func TestSliceLines_ZeroIndexedInclusive(t *testing.T) {
	text := "a\nb\nc\nd"
	assert.Equal(t, "b\nc", sliceLines(text, 1, 2))
	assert.Equal(t, "a", sliceLines(text, 0, 0))
}
