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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStage struct {
	name StageName
	fn   func(*Run) error
}

func (f *fakeStage) Name() StageName { return f.name }
func (f *fakeStage) Execute(ctx context.Context, r *Run) error {
	if f.fn != nil {
		return f.fn(r)
	}
	return nil
}

func TestDAG_RunsStagesInOrder(t *testing.T) {
	var order []StageName
	dag := NewDAG(
		&fakeStage{name: L1IRBuild, fn: func(r *Run) error { order = append(order, L1IRBuild); return nil }},
		&fakeStage{name: L2Chunking, fn: func(r *Run) error { order = append(order, L2Chunking); return nil }},
	)
	r := NewRun("repo1", "snap1")
	require.NoError(t, dag.Run(context.Background(), r))
	assert.Equal(t, []StageName{L1IRBuild, L2Chunking}, order)
}

func TestDAG_StopsAtFirstError(t *testing.T) {
	sentinel := assert.AnError
	var ran []StageName
	dag := NewDAG(
		&fakeStage{name: L1IRBuild, fn: func(r *Run) error { ran = append(ran, L1IRBuild); return sentinel }},
		&fakeStage{name: L2Chunking, fn: func(r *Run) error { ran = append(ran, L2Chunking); return nil }},
	)
	r := NewRun("repo1", "snap1")
	err := dag.Run(context.Background(), r)
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, []StageName{L1IRBuild}, ran)
}

func TestValidateStageSet_RejectsMissingDependency(t *testing.T) {
	err := ValidateStageSet(map[StageName]bool{L2Chunking: true})
	require.Error(t, err)
}

func TestValidateStageSet_AcceptsSatisfiedDependency(t *testing.T) {
	err := ValidateStageSet(map[StageName]bool{L1IRBuild: true, L2Chunking: true})
	require.NoError(t, err)
}

func TestRun_AddDiagnostic(t *testing.T) {
	r := NewRun("repo1", "snap1")
	r.AddDiagnostic(L1IRBuild, "file.go", "parse failed", assert.AnError)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, L1IRBuild, r.Diagnostics[0].Stage)
}

func TestDAG_RunRecordsStageDurations(t *testing.T) {
	dag := NewDAG(
		&fakeStage{name: L1IRBuild, fn: func(r *Run) error { return nil }},
		&fakeStage{name: L2Chunking, fn: func(r *Run) error { return nil }},
	)
	r := NewRun("repo1", "snap1")
	require.NoError(t, dag.Run(context.Background(), r))
	require.Contains(t, r.StageDurations, L1IRBuild)
	require.Contains(t, r.StageDurations, L2Chunking)
	assert.GreaterOrEqual(t, r.Duration(L1IRBuild), time.Duration(0))
}
