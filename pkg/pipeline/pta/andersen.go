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

// AndersenSolver runs the inclusion-based points-to analysis: points-to
// sets only grow, never get unified, so precision is higher than
// Steensgaard's at the cost of a worklist fixpoint that is cubic in the
// worst case.
type AndersenSolver struct {
	FieldSensitive bool
}

// NewAndersenSolver creates a solver with the given field-sensitivity
// setting (§4.3.4: "field sensitivity toggled by config; when disabled
// all fields of an object are merged").
func NewAndersenSolver(fieldSensitive bool) *AndersenSolver {
	return &AndersenSolver{FieldSensitive: fieldSensitive}
}

// Solve iterates the constraint set to a fixpoint. AddressOf and Copy/Call
// constraints are handled directly; Load/Store constraints are re-checked
// every round because their effective targets depend on points-to sets
// that are themselves still growing.
func (s *AndersenSolver) Solve(constraints []Constraint) *Result {
	result := newResult(s.FieldSensitive)

	// AddressOf facts are immediate and never change once added.
	for _, c := range constraints {
		if c.Kind == AddressOf {
			result.add(c.LHS, c.Field, ObjectID(c.RHS))
		}
	}

	for {
		changed := false

		for _, c := range constraints {
			switch c.Kind {
			case Copy, Call:
				if result.union(c.LHS, c.Field, c.RHS, c.Field) {
					changed = true
				}
			case Load:
				// lhs = *rhs: for every object rhs may point to, lhs
				// inherits that object's own points-to set.
				for obj := range result.Set(c.RHS, c.Field) {
					if result.union(c.LHS, "", string(obj), c.Field) {
						changed = true
					}
				}
			case Store:
				// *lhs = rhs: every object lhs may point to gains rhs's
				// points-to set.
				for obj := range result.Set(c.LHS, c.Field) {
					if result.union(string(obj), c.Field, c.RHS, c.Field) {
						changed = true
					}
				}
			}
		}

		if !changed {
			break
		}
	}

	return result
}
