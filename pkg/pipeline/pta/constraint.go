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

// ConstraintKind is the closed set of points-to constraint shapes a
// front-end (walking the IR) can derive (§4.3.4): address-of, copy, load,
// store, and call (a function's formal parameters/return alias its
// actuals).
type ConstraintKind string

const (
	AddressOf ConstraintKind = "address_of" // a = &b
	Copy      ConstraintKind = "copy"       // a = b
	Load      ConstraintKind = "load"       // a = *b
	Store     ConstraintKind = "store"      // *a = b
	Call      ConstraintKind = "call"       // formal aliases actual across a call edge
)

// Constraint is one points-to fact extracted from the IR. Field is set
// only when field-sensitivity is enabled and the access names a struct
// field; empty means "the whole object".
type Constraint struct {
	Kind  ConstraintKind
	LHS   string
	RHS   string
	Field string
}

// ObjectID names an abstract allocation site (or a variable treated as its
// own object for address-of constraints).
type ObjectID string

// Result is a solved points-to mapping: variable -> the set of abstract
// objects it may point to, keyed by field when field sensitivity is on
// (an empty field key merges all fields, matching "field sensitivity
// toggled by config; when disabled all fields of an object are merged").
type Result struct {
	FieldSensitive bool
	PointsTo       map[string]map[ObjectID]bool // "var" or "var.field" -> objects
}

func newResult(fieldSensitive bool) *Result {
	return &Result{FieldSensitive: fieldSensitive, PointsTo: make(map[string]map[ObjectID]bool)}
}

func (r *Result) key(variable, field string) string {
	if !r.FieldSensitive || field == "" {
		return variable
	}
	return variable + "." + field
}

func (r *Result) add(variable, field string, obj ObjectID) bool {
	k := r.key(variable, field)
	set, ok := r.PointsTo[k]
	if !ok {
		set = make(map[ObjectID]bool)
		r.PointsTo[k] = set
	}
	if set[obj] {
		return false
	}
	set[obj] = true
	return true
}

// Set returns the points-to set for variable (and field, if field
// sensitivity is on).
func (r *Result) Set(variable, field string) map[ObjectID]bool {
	return r.PointsTo[r.key(variable, field)]
}

// union copies every object in src's set for (variable, field) into dst's;
// returns true if dst's set grew (used by Andersen's fixpoint loop).
func (r *Result) union(dstVar, dstField, srcVar, srcField string) bool {
	changed := false
	for obj := range r.PointsTo[r.key(srcVar, srcField)] {
		if r.add(dstVar, dstField, obj) {
			changed = true
		}
	}
	return changed
}
