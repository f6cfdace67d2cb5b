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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kraklabs/codegraph/pkg/model"
	"github.com/kraklabs/codegraph/pkg/storage"
)

// ErrNoSession is returned by AddChange when the agent has no open
// session (§4.6 "add_change ... fails if no session exists").
var ErrNoSession = errors.New("orchestrator: no open session for agent")

// CommitResult reports the outcome of a Commit call.
type CommitResult struct {
	Success   bool
	TxnID     TxnID
	Delta     model.TransactionDelta
	Conflicts []string
}

// Orchestrator is the multi-layer index coordinator (§4.6): it owns the
// transaction counter, per-agent sessions, the plugin registry, and the
// storage backend every committed delta lands in.
type Orchestrator struct {
	mu       sync.Mutex
	counter  txnCounter
	sessions map[string]*session
	plugins  []IndexPlugin
	watched  map[string]TxnID          // node id -> TxnID of the commit that last touched it
	lastOp   map[string]model.ChangeOp // node id -> the op that commit applied to it

	backend storage.Backend
	repoID  string
	snapID  string
}

// New creates an Orchestrator writing commits against (repoID, snapID)
// in backend, with plugins as its initial registry.
func New(backend storage.Backend, repoID, snapID string, plugins ...IndexPlugin) *Orchestrator {
	orchMetrics.init()
	return &Orchestrator{
		sessions: make(map[string]*session),
		watched:  make(map[string]TxnID),
		lastOp:   make(map[string]model.ChangeOp),
		plugins:  plugins,
		backend:  backend,
		repoID:   repoID,
		snapID:   snapID,
	}
}

// RegisterPlugin adds a plugin to the registry. Safe to call after
// commits have already happened; the new plugin starts at AppliedUpTo().
func (o *Orchestrator) RegisterPlugin(p IndexPlugin) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.plugins = append(o.plugins, p)
}

// BeginSession opens a fresh session for agentID, replacing any prior
// session from the same agent (§4.6 "Session protocol"). An empty
// agentID generates a fresh one for callers with no agent identity
// scheme of their own (e.g. a one-off CLI edit).
func (o *Orchestrator) BeginSession(agentID string) string {
	if agentID == "" {
		agentID = newAgentID()
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessions[agentID] = &session{
		AgentID:   agentID,
		StartedAt: o.counter.current(),
	}
	orchMetrics.sessionsOpened.Inc()
	return agentID
}

// AddChange appends op to agentID's pending session.
func (o *Orchestrator) AddChange(agentID string, op model.ChangeOp) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[agentID]
	if !ok {
		return ErrNoSession
	}
	s.Pending = append(s.Pending, op)
	return nil
}

// Commit attempts to serialize agentID's pending ops into a
// TransactionDelta and apply it. The session is always removed,
// regardless of outcome.
func (o *Orchestrator) Commit(ctx context.Context, agentID string) (CommitResult, error) {
	o.mu.Lock()
	s, ok := o.sessions[agentID]
	if !ok {
		o.mu.Unlock()
		return CommitResult{}, ErrNoSession
	}
	delete(o.sessions, agentID)

	if len(s.Pending) == 0 {
		o.mu.Unlock()
		return CommitResult{Success: true}, nil
	}

	conflicts := o.detectConflicts(s)
	if len(conflicts) > 0 {
		o.mu.Unlock()
		orchMetrics.commitsConflicted.Inc()
		return CommitResult{Success: false, Conflicts: conflicts}, nil
	}

	txnID := o.counter.nextID()
	delta := model.TransactionDelta{
		TxnId:      txnID.String(),
		RepoID:     o.repoID,
		SnapshotID: o.snapID,
		Ops:        s.Pending,
		CreatedAt:  now(),
	}
	nodeOps := lastOpByNode(s.Pending)
	for id, op := range nodeOps {
		o.watched[id] = txnID
		o.lastOp[id] = op
	}
	plugins := append([]IndexPlugin(nil), o.plugins...)
	o.mu.Unlock()

	start := now()
	if err := o.backend.ApplyDelta(ctx, delta); err != nil {
		orchMetrics.commitsFailed.Inc()
		return CommitResult{}, fmt.Errorf("orchestrator: apply delta: %w", err)
	}
	orchMetrics.commitDuration.Observe(time.Since(start).Seconds())

	for _, p := range plugins {
		if _, _, err := p.ApplyDelta(ctx, delta); err != nil {
			orchMetrics.pluginFanoutErrors.Inc()
		}
	}

	orchMetrics.commitsSucceeded.Inc()
	return CommitResult{Success: true, TxnID: txnID, Delta: delta}, nil
}

// detectConflicts reports every node id s touches that a commit made
// after s began (a TxnID above s.StartedAt) also touched (§4.6 "Conflict
// detection").
// An UpdateNode whose payload is identical to the op that already
// committed for that node is treated as a merge, not a conflict.
func (o *Orchestrator) detectConflicts(s *session) []string {
	nodeOps := lastOpByNode(s.Pending)
	var conflicts []string
	for id, op := range nodeOps {
		committedAt, ok := o.watched[id]
		if !ok || committedAt <= s.StartedAt {
			continue
		}
		if op.Kind == model.OpUpdateNode && opsEqual(op, o.lastOp[id]) {
			continue
		}
		conflicts = append(conflicts, id)
	}
	return conflicts
}

// lastOpByNode maps each node id an op set touches to the last op in
// that set affecting it, mirroring the last-write-wins rule a single
// session's own pending edits already obey.
func lastOpByNode(ops []model.ChangeOp) map[string]model.ChangeOp {
	out := make(map[string]model.ChangeOp)
	for _, op := range ops {
		for id := range touchedNodeIDs([]model.ChangeOp{op}) {
			out[id] = op
		}
	}
	return out
}

// Query waits, per consistency, for the plugins relevant to qt to catch
// up to the current commit watermark, then returns the set of plugins a
// caller should actually query.
func (o *Orchestrator) Query(ctx context.Context, qt QueryType, consistency ConsistencyLevel) ([]IndexPlugin, error) {
	relevant := o.pluginsFor(qt)

	if consistency == Eventual {
		return relevant, nil
	}

	watermark := o.counter.current()
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for {
		if allCaughtUp(relevant, watermark) {
			return relevant, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func allCaughtUp(plugins []IndexPlugin, watermark TxnID) bool {
	for _, p := range plugins {
		if p.AppliedUpTo() < watermark {
			return false
		}
	}
	return true
}

func (o *Orchestrator) pluginsFor(qt QueryType) []IndexPlugin {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []IndexPlugin
	for _, p := range o.plugins {
		if p.SupportsQuery(qt) {
			out = append(out, p)
		}
	}
	return out
}

// Health aggregates every plugin's health as an AND (§4.6 "Plugin
// contract"): the registry is healthy only if every plugin is.
func (o *Orchestrator) Health() PluginHealth {
	o.mu.Lock()
	plugins := append([]IndexPlugin(nil), o.plugins...)
	o.mu.Unlock()

	for _, p := range plugins {
		if h := p.Health(); !h.IsHealthy {
			return h
		}
	}
	return PluginHealth{IsHealthy: true}
}

// newAgentID generates a unique internal identifier for an ad hoc agent
// session, used by callers that don't maintain their own agent identity
// scheme.
func newAgentID() string { return uuid.NewString() }
