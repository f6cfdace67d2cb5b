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

package repomap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/codegraph/pkg/model"
)

// hubIR builds three functions in one file: hub is called by both leaf1
// and leaf2, so hub should rank highest.
func hubIR() *model.IRDocument {
	mk := func(id string, line int) model.Node {
		return model.Node{
			ID: id, Kind: model.NodeFunction, FQN: id, Name: id,
			FilePath: "pkg/a.go", Span: model.Span{StartLine: line, EndLine: line + 2},
		}
	}
	return &model.IRDocument{
		Nodes: []model.Node{mk("hub", 1), mk("leaf1", 10), mk("leaf2", 20)},
		Edges: []model.Edge{
			{SourceID: "leaf1", TargetID: "hub", Kind: model.EdgeCalls},
			{SourceID: "leaf2", TargetID: "hub", Kind: model.EdgeCalls},
		},
	}
}

func TestRanker_HubOutranksLeaves(t *testing.T) {
	ranks := NewRanker().Rank(hubIR())

	assert.Greater(t, ranks["hub"], ranks["leaf1"])
	assert.Greater(t, ranks["hub"], ranks["leaf2"])
}

func TestRanker_EmptyDocumentRanksNothing(t *testing.T) {
	ranks := NewRanker().Rank(&model.IRDocument{})
	assert.Empty(t, ranks)
}

func TestRanker_IsolatedSymbolStillRanked(t *testing.T) {
	doc := &model.IRDocument{
		Nodes: []model.Node{{ID: "lonely", Kind: model.NodeFunction, FQN: "lonely", FilePath: "x.go"}},
	}

	ranks := NewRanker().Rank(doc)

	assert.Contains(t, ranks, "lonely")
	assert.Greater(t, ranks["lonely"], 0.0)
}

func TestBuilder_GroupsByFileInRankOrder(t *testing.T) {
	summaries := NewBuilder().Build(hubIR())

	assert.Len(t, summaries, 1)
	assert.Equal(t, "pkg/a.go", summaries[0].FilePath)
	assert.Equal(t, "hub", summaries[0].Symbols[0].ID)
}

func TestBuilder_RespectsSymbolBudget(t *testing.T) {
	b := &Builder{Ranker: NewRanker(), SymbolBudget: 1}

	summaries := b.Build(hubIR())

	var total int
	for _, f := range summaries {
		total += len(f.Symbols)
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, "hub", summaries[0].Symbols[0].ID, "the single kept symbol should be the highest-ranked one")
}

func TestBuilder_NonRankableNodesAreExcluded(t *testing.T) {
	doc := hubIR()
	doc.Nodes = append(doc.Nodes, model.Node{ID: "p1", Kind: model.NodeParameter, FQN: "p1", FilePath: "pkg/a.go"})

	summaries := NewBuilder().Build(doc)

	for _, f := range summaries {
		for _, s := range f.Symbols {
			assert.NotEqual(t, "p1", s.ID)
		}
	}
}
