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

import "github.com/kraklabs/codegraph/pkg/model"

// session is one agent's pending, uncommitted edits (§4.6 "Session
// protocol"). StartedAt is the TxnID in effect when the session began —
// a node that a commit with a higher TxnID touched after that point is a
// conflict for this session, which then loses the race.
type session struct {
	AgentID   string
	StartedAt TxnID
	Pending   []model.ChangeOp
}

// touchedNodeIDs returns every node id a ChangeOp reads or writes,
// deduplicated. Edge ops are attributed to both endpoints: an edge
// mutation conflicts with a concurrent mutation of either node it
// connects.
func touchedNodeIDs(ops []model.ChangeOp) map[string]bool {
	touched := make(map[string]bool)
	for _, op := range ops {
		switch op.Kind {
		case model.OpAddNode, model.OpUpdateNode:
			if op.Node != nil {
				touched[op.Node.ID] = true
			}
		case model.OpDeleteNode:
			touched[op.NodeID] = true
		case model.OpAddEdge:
			if op.Edge != nil {
				touched[op.Edge.SourceID] = true
				touched[op.Edge.TargetID] = true
			}
		case model.OpDeleteEdge:
			touched[op.EdgeSourceID] = true
			touched[op.EdgeTargetID] = true
		}
	}
	return touched
}

// opsEqual reports whether two ChangeOps are the same mutation with the
// same payload, used to let idempotent duplicate UpdateNode ops merge
// instead of conflicting (§4.6 "Conflict detection").
func opsEqual(a, b model.ChangeOp) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case model.OpAddNode, model.OpUpdateNode:
		return a.Node != nil && b.Node != nil && nodesEqual(*a.Node, *b.Node)
	case model.OpDeleteNode:
		return a.NodeID == b.NodeID
	case model.OpAddEdge:
		return a.Edge != nil && b.Edge != nil && edgesEqual(*a.Edge, *b.Edge)
	case model.OpDeleteEdge:
		return a.EdgeSourceID == b.EdgeSourceID &&
			a.EdgeTargetID == b.EdgeTargetID &&
			a.EdgeKind == b.EdgeKind
	default:
		return false
	}
}

func nodesEqual(a, b model.Node) bool {
	return a.ID == b.ID && a.Kind == b.Kind && a.FQN == b.FQN &&
		a.FilePath == b.FilePath && a.Span == b.Span && a.Language == b.Language &&
		a.ParentID == b.ParentID && a.Name == b.Name && a.ContentHash == b.ContentHash &&
		a.Attrs == b.Attrs
}

// edgesEqual compares two edges by value, since Edge.Span is a pointer
// and a plain == would compare addresses rather than contents.
func edgesEqual(a, b model.Edge) bool {
	if a.SourceID != b.SourceID || a.TargetID != b.TargetID ||
		a.Kind != b.Kind || a.Attrs != b.Attrs {
		return false
	}
	if (a.Span == nil) != (b.Span == nil) {
		return false
	}
	if a.Span == nil {
		return true
	}
	return *a.Span == *b.Span
}
