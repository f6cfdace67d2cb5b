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
	"sort"

	"github.com/kraklabs/codegraph/pkg/model"
)

// scopeKinds are the node kinds that introduce a new lexical scope whose
// declarations shadow the enclosing scope's.
var scopeKinds = map[model.NodeKind]bool{
	model.NodeFile:      true,
	model.NodeClass:     true,
	model.NodeInterface: true,
	model.NodeFunction:  true,
	model.NodeMethod:    true,
	model.NodeLambda:    true,
	model.NodeBlock:     true,
}

// declKinds are the node kinds that introduce a named symbol visible in
// their enclosing scope.
var declKinds = map[model.NodeKind]bool{
	model.NodeFunction:  true,
	model.NodeMethod:    true,
	model.NodeClass:     true,
	model.NodeInterface: true,
	model.NodeParameter: true,
	model.NodeVariable:  true,
	model.NodeField:     true,
	model.NodeTypeDef:   true,
}

// Scope is one lexical scope: the node that opened it, and the symbols
// declared directly inside it.
type Scope struct {
	NodeID   string
	ParentID string // "" for the root (file) scope
	Symbols  map[string]string // name -> declaring node id
}

// Table is a per-file (or per-repository) symbol table: one Scope per
// scope-introducing node, plus a lookup index from every declaration node
// id to the scope it lives in.
type Table struct {
	Scopes      map[string]*Scope // scope node id -> Scope
	scopeOfNode map[string]string // any node id -> its enclosing scope id
}

// Build constructs a Table from doc's nodes. It requires only ParentID
// links, so it runs after L1 (or L3, if cross-file-resolved
// FQNs are needed by callers) without depending on any other L5+ stage.
func Build(doc *model.IRDocument) *Table {
	t := &Table{
		Scopes:      make(map[string]*Scope),
		scopeOfNode: make(map[string]string),
	}

	byID := doc.NodeIndex()

	// First pass: create a Scope for every scope-introducing node.
	for _, n := range doc.Nodes {
		if scopeKinds[n.Kind] {
			t.Scopes[n.ID] = &Scope{NodeID: n.ID, Symbols: make(map[string]string)}
		}
	}
	// Parent scopes: the nearest scope-introducing ancestor.
	for id, scope := range t.Scopes {
		scope.ParentID = nearestScopeAncestor(byID, id)
	}

	// Second pass: place every node (scope-introducing or not) into its
	// nearest enclosing scope, and register declarations as symbols there.
	for _, n := range doc.Nodes {
		enclosing := n.ID
		if !scopeKinds[n.Kind] {
			enclosing = n.ParentID
		}
		scopeID := nearestScopeAncestorOrSelf(byID, t.Scopes, enclosing)
		t.scopeOfNode[n.ID] = scopeID

		if declKinds[n.Kind] && n.Name != "" && scopeID != "" {
			declScope := scopeID
			if scopeKinds[n.Kind] {
				// A scope-introducing declaration (function, class, ...)
				// names itself in the scope enclosing it, not in its own.
				declScope = t.Scopes[scopeID].ParentID
			}
			if s, ok := t.Scopes[declScope]; ok {
				s.Symbols[n.Name] = n.ID
			}
		}
	}

	return t
}

func nearestScopeAncestor(byID map[string]model.Node, nodeID string) string {
	n, ok := byID[nodeID]
	if !ok || n.ParentID == "" {
		return ""
	}
	return nearestScopeAncestorOrSelfRaw(byID, n.ParentID)
}

func nearestScopeAncestorOrSelfRaw(byID map[string]model.Node, nodeID string) string {
	cur := nodeID
	for cur != "" {
		n, ok := byID[cur]
		if !ok {
			return ""
		}
		if scopeKinds[n.Kind] {
			return cur
		}
		cur = n.ParentID
	}
	return ""
}

func nearestScopeAncestorOrSelf(byID map[string]model.Node, scopes map[string]*Scope, nodeID string) string {
	if nodeID == "" {
		return ""
	}
	if _, ok := scopes[nodeID]; ok {
		return nodeID
	}
	return nearestScopeAncestorOrSelfRaw(byID, nodeID)
}

// Resolve looks up name starting from the scope enclosing fromNodeID,
// walking up through parent scopes until found or the root is reached.
func (t *Table) Resolve(fromNodeID, name string) (declID string, ok bool) {
	scopeID := t.scopeOfNode[fromNodeID]
	for scopeID != "" {
		scope, exists := t.Scopes[scopeID]
		if !exists {
			return "", false
		}
		if declID, ok := scope.Symbols[name]; ok {
			return declID, true
		}
		scopeID = scope.ParentID
	}
	return "", false
}

// ScopeOf returns the scope id enclosing nodeID, or "" if nodeID isn't
// known to the table.
func (t *Table) ScopeOf(nodeID string) string {
	return t.scopeOfNode[nodeID]
}

// Names returns every declared symbol name across every scope, sorted for
// deterministic output (used by callers reporting "symbols extracted",
// e.g. §6 IndexingResult.full_result.symbols).
func (t *Table) Names() []string {
	var names []string
	for _, scope := range t.Scopes {
		for name := range scope.Symbols {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
