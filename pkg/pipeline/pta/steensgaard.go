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

package pta

// steensgaardNode is one union-find node: a variable's representative and
// the single abstract object it's unified to point to (unification-based
// analysis merges all aliases into one equivalence class, so precision is
// coarser than Andersen's in exchange for near-linear time).
type steensgaardNode struct {
	parent   string
	pointsTo ObjectID // "" until this class is unified with an address-of
}

// SteensgaardSolver runs the unification-based points-to analysis.
type SteensgaardSolver struct {
	nodes map[string]*steensgaardNode
}

// NewSteensgaardSolver creates an empty solver.
func NewSteensgaardSolver() *SteensgaardSolver {
	return &SteensgaardSolver{nodes: make(map[string]*steensgaardNode)}
}

func (s *SteensgaardSolver) find(v string) string {
	n, ok := s.nodes[v]
	if !ok {
		s.nodes[v] = &steensgaardNode{parent: v}
		return v
	}
	if n.parent != v {
		n.parent = s.find(n.parent)
	}
	return n.parent
}

// unify merges a and b's equivalence classes, keeping whichever single
// points-to object either side already carried (they must agree, or the
// analysis is unsound for that pair — Steensgaard resolves this by
// unifying the pointed-to objects' classes too, so both sides converge).
func (s *SteensgaardSolver) unify(a, b string) {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return
	}
	na, nb := s.nodes[ra], s.nodes[rb]
	nb.parent = ra
	if na.pointsTo == "" {
		na.pointsTo = nb.pointsTo
	} else if nb.pointsTo != "" && na.pointsTo != nb.pointsTo {
		// Both sides point somewhere distinct: unify the pointed-to
		// objects' own classes too, the standard Steensgaard move that
		// keeps the analysis a single pass over constraints.
		s.unify(string(na.pointsTo), string(nb.pointsTo))
	}
}

// Solve processes constraints once (no fixpoint needed: unification is
// monotone and each constraint is handled in a single pass) and returns
// the resulting points-to mapping. Field sensitivity is never honored by
// Steensgaard (§4.3.4 groups it under the coarser mode); Result is always
// built with FieldSensitive = false.
func (s *SteensgaardSolver) Solve(constraints []Constraint) *Result {
	for _, c := range constraints {
		switch c.Kind {
		case AddressOf:
			root := s.find(c.LHS)
			s.nodes[root].pointsTo = ObjectID(c.RHS)
		case Copy:
			s.unify(c.LHS, c.RHS)
		case Load:
			// lhs = *rhs: lhs unifies with whatever rhs's target points to.
			rhsRoot := s.find(c.RHS)
			if target := s.nodes[rhsRoot].pointsTo; target != "" {
				s.unify(c.LHS, string(target))
			}
		case Store:
			// *lhs = rhs: whatever lhs points to unifies with rhs.
			lhsRoot := s.find(c.LHS)
			if target := s.nodes[lhsRoot].pointsTo; target != "" {
				s.unify(string(target), c.RHS)
			} else {
				s.nodes[lhsRoot].pointsTo = ObjectID(c.RHS)
			}
		case Call:
			s.unify(c.LHS, c.RHS)
		}
	}

	result := newResult(false)
	for v := range s.nodes {
		root := s.find(v)
		if obj := s.nodes[root].pointsTo; obj != "" {
			result.add(v, "", obj)
		}
	}
	return result
}
