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

package dfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_TracksLastDefAcrossReads(t *testing.T) {
	exprs := []Expr{
		{ID: "e1", Defines: []string{"x"}, IsCall: true},
		{ID: "e2", Reads: []string{"x"}, Defines: []string{"y"}},
		{ID: "e3", Reads: []string{"x", "y"}},
	}

	edges := Build(exprs)
	require.Len(t, edges, 3)
	assert.Equal(t, Edge{FromExprID: "e1", ToExprID: "e2", Variable: "x", Tag: Assign}, edges[0])
	assert.Equal(t, Edge{FromExprID: "e1", ToExprID: "e3", Variable: "x", Tag: Assign}, edges[1])
	assert.Equal(t, Edge{FromExprID: "e2", ToExprID: "e3", Variable: "y", Tag: Alias}, edges[2])
}

func TestBuild_NoEdgeForUndefinedRead(t *testing.T) {
	exprs := []Expr{{ID: "e1", Reads: []string{"z"}}}
	assert.Empty(t, Build(exprs))
}

func TestBuild_RedefinitionOverwritesLastDef(t *testing.T) {
	exprs := []Expr{
		{ID: "e1", Defines: []string{"x"}},
		{ID: "e2", Defines: []string{"x"}, IsCall: true},
		{ID: "e3", Reads: []string{"x"}},
	}
	edges := Build(exprs)
	require.Len(t, edges, 1)
	assert.Equal(t, "e2", edges[0].FromExprID)
	assert.Equal(t, Assign, edges[0].Tag)
}
