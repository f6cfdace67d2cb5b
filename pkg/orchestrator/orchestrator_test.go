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

package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/model"
	"github.com/kraklabs/codegraph/pkg/storage"
)

// fakePlugin is a minimal IndexPlugin double: ApplyDelta advances
// appliedUpTo after an optional artificial delay, so tests can exercise
// Strict consistency waiting.
type fakePlugin struct {
	name        string
	indexType   IndexType
	queries     map[QueryType]bool
	appliedUpTo atomic.Uint64
	applyDelay  time.Duration
}

func newFakePlugin(name string, it IndexType, queries ...QueryType) *fakePlugin {
	qs := make(map[QueryType]bool, len(queries))
	for _, q := range queries {
		qs[q] = true
	}
	return &fakePlugin{name: name, indexType: it, queries: qs}
}

func (p *fakePlugin) Name() string             { return p.name }
func (p *fakePlugin) IndexType() IndexType      { return p.indexType }
func (p *fakePlugin) SupportsQuery(qt QueryType) bool { return p.queries[qt] }

func (p *fakePlugin) ApplyDelta(ctx context.Context, delta model.TransactionDelta) (*RebuildProgress, int64, error) {
	if p.applyDelay > 0 {
		time.Sleep(p.applyDelay)
	}
	txn, _ := parseTxnID(delta.TxnId)
	p.appliedUpTo.Store(uint64(txn))
	return nil, 0, nil
}

func (p *fakePlugin) Rebuild(ctx context.Context, repoID, snapshotID string) (int64, error) {
	return 0, nil
}

func (p *fakePlugin) Health() PluginHealth { return PluginHealth{IsHealthy: true} }
func (p *fakePlugin) Stats() PluginStats   { return PluginStats{AppliedUpTo: TxnID(p.appliedUpTo.Load())} }
func (p *fakePlugin) AppliedUpTo() TxnID   { return TxnID(p.appliedUpTo.Load()) }

// parseTxnID reverses TxnID.String's "txn:%d" format for test fakes that
// need to recover the numeric id from a delta.
func parseTxnID(s string) (TxnID, bool) {
	var n uint64
	if _, err := fmt.Sscanf(s, "txn:%d", &n); err != nil {
		return 0, false
	}
	return TxnID(n), true
}

func setupOrchestrator(t *testing.T, plugins ...IndexPlugin) *Orchestrator {
	t.Helper()
	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return New(backend, "repo:1", "snap:1", plugins...)
}

func addNodeOp(id string) model.ChangeOp {
	return model.ChangeOp{Kind: model.OpAddNode, Node: &model.Node{ID: id, Kind: model.NodeFunction, FQN: id, FilePath: "a.go"}}
}

func TestOrchestrator_CommitWithoutSessionFails(t *testing.T) {
	o := setupOrchestrator(t)

	_, err := o.Commit(context.Background(), "agent-1")

	assert.ErrorIs(t, err, ErrNoSession)
}

func TestOrchestrator_AddChangeWithoutSessionFails(t *testing.T) {
	o := setupOrchestrator(t)

	err := o.AddChange("agent-1", addNodeOp("n1"))

	assert.ErrorIs(t, err, ErrNoSession)
}

func TestOrchestrator_EmptyCommitSucceedsWithNoDelta(t *testing.T) {
	o := setupOrchestrator(t)
	o.BeginSession("agent-1")

	result, err := o.Commit(context.Background(), "agent-1")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Delta.IsEmpty())
}

func TestOrchestrator_DoubleCommitAfterSuccessFails(t *testing.T) {
	o := setupOrchestrator(t)
	o.BeginSession("agent-1")
	require.NoError(t, o.AddChange("agent-1", addNodeOp("n1")))

	first, err := o.Commit(context.Background(), "agent-1")
	require.NoError(t, err)
	assert.True(t, first.Success)

	_, err = o.Commit(context.Background(), "agent-1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestOrchestrator_ConcurrentSessionsTouchingSameNodeConflict(t *testing.T) {
	o := setupOrchestrator(t)
	ctx := context.Background()

	o.BeginSession("agent-a")
	o.BeginSession("agent-b")
	require.NoError(t, o.AddChange("agent-a", addNodeOp("shared")))
	require.NoError(t, o.AddChange("agent-b", addNodeOp("shared")))

	winner, err := o.Commit(ctx, "agent-a")
	require.NoError(t, err)
	assert.True(t, winner.Success)

	loser, err := o.Commit(ctx, "agent-b")
	require.NoError(t, err)
	assert.False(t, loser.Success)
	assert.Contains(t, loser.Conflicts, "shared")
}

func TestOrchestrator_DistinctNodesDoNotConflict(t *testing.T) {
	o := setupOrchestrator(t)
	ctx := context.Background()

	o.BeginSession("agent-a")
	o.BeginSession("agent-b")
	require.NoError(t, o.AddChange("agent-a", addNodeOp("n1")))
	require.NoError(t, o.AddChange("agent-b", addNodeOp("n2")))

	_, err := o.Commit(ctx, "agent-a")
	require.NoError(t, err)

	result, err := o.Commit(ctx, "agent-b")
	require.NoError(t, err)
	assert.True(t, result.Success, "sessions touching disjoint nodes should both succeed")
}

func TestOrchestrator_IdenticalUpdateNodeMergesInsteadOfConflicting(t *testing.T) {
	o := setupOrchestrator(t)
	ctx := context.Background()
	node := model.Node{ID: "shared", Kind: model.NodeFunction, FQN: "shared", FilePath: "a.go"}

	o.BeginSession("agent-a")
	require.NoError(t, o.AddChange("agent-a", model.ChangeOp{Kind: model.OpUpdateNode, Node: &node}))
	_, err := o.Commit(ctx, "agent-a")
	require.NoError(t, err)

	o.BeginSession("agent-b")
	require.NoError(t, o.AddChange("agent-b", model.ChangeOp{Kind: model.OpUpdateNode, Node: &node}))
	result, err := o.Commit(ctx, "agent-b")

	require.NoError(t, err)
	assert.True(t, result.Success, "an identical UpdateNode payload should merge, not conflict")
}

func TestOrchestrator_ManyDistinctSessionsMostlySucceed(t *testing.T) {
	o := setupOrchestrator(t)
	ctx := context.Background()

	succeeded := 0
	for i := 0; i < 100; i++ {
		agent := agentName(i)
		o.BeginSession(agent)
		require.NoError(t, o.AddChange(agent, addNodeOp(agentName(i))))
		result, err := o.Commit(ctx, agent)
		require.NoError(t, err)
		if result.Success {
			succeeded++
		}
	}

	assert.GreaterOrEqual(t, succeeded, 90)
}

func agentName(i int) string {
	return "agent-" + string(rune('A'+i%26)) + string(rune('0'+i/26))
}

func TestRoute_PrimaryIndexTable(t *testing.T) {
	vec, ok := Route(QuerySemanticSearch)
	assert.True(t, ok)
	assert.Equal(t, IndexVector, vec)

	lex, ok := Route(QueryTextSearch)
	assert.True(t, ok)
	assert.Equal(t, IndexLexical, lex)

	graph, ok := Route(QueryReachability)
	assert.True(t, ok)
	assert.Equal(t, IndexGraph, graph)

	_, ok = Route(QueryHybridSearch)
	assert.False(t, ok, "hybrid search has no single primary index")
}

func TestOrchestrator_EventualConsistencyDoesNotWait(t *testing.T) {
	plugin := newFakePlugin("vec", IndexVector, QuerySemanticSearch)
	o := setupOrchestrator(t, plugin)
	o.BeginSession("agent-a")
	require.NoError(t, o.AddChange("agent-a", addNodeOp("n1")))
	_, err := o.Commit(context.Background(), "agent-a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	plugins, err := o.Query(ctx, QuerySemanticSearch, Eventual)

	require.NoError(t, err)
	assert.Len(t, plugins, 1)
}

func TestOrchestrator_StrictConsistencyWaitsForWatermark(t *testing.T) {
	plugin := newFakePlugin("vec", IndexVector, QuerySemanticSearch)
	plugin.applyDelay = 20 * time.Millisecond
	o := setupOrchestrator(t, plugin)
	o.BeginSession("agent-a")
	require.NoError(t, o.AddChange("agent-a", addNodeOp("n1")))

	done := make(chan struct{})
	go func() {
		o.Commit(context.Background(), "agent-a")
		close(done)
	}()
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	plugins, err := o.Query(ctx, QuerySemanticSearch, Strict)

	require.NoError(t, err)
	assert.Len(t, plugins, 1)
	assert.GreaterOrEqual(t, plugin.AppliedUpTo(), TxnID(1))
}

func TestOrchestrator_HealthIsANDAcrossPlugins(t *testing.T) {
	healthy := newFakePlugin("vec", IndexVector, QuerySemanticSearch)
	o := setupOrchestrator(t, healthy)

	assert.True(t, o.Health().IsHealthy)
}
