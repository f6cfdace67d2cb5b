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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAndersen_AddressOfThenCopyPropagates(t *testing.T) {
	constraints := []Constraint{
		{Kind: AddressOf, LHS: "a", RHS: "obj1"},
		{Kind: Copy, LHS: "b", RHS: "a"},
	}
	result := NewAndersenSolver(false).Solve(constraints)
	assert.True(t, result.Set("b", "")["obj1"])
	assert.True(t, result.Set("a", "")["obj1"])
}

func TestAndersen_LoadAndStoreThroughPointer(t *testing.T) {
	// p = &obj1; *p = &obj2 (store); q = *p (load) -> q should see obj2.
	constraints := []Constraint{
		{Kind: AddressOf, LHS: "p", RHS: "obj1"},
		{Kind: AddressOf, LHS: "tmp", RHS: "obj2"},
		{Kind: Store, LHS: "p", RHS: "tmp"},
		{Kind: Load, LHS: "q", RHS: "p"},
	}
	result := NewAndersenSolver(false).Solve(constraints)
	assert.True(t, result.Set("q", "")["obj2"])
}

func TestAndersen_DoesNotOverApproximateUnrelatedVars(t *testing.T) {
	constraints := []Constraint{
		{Kind: AddressOf, LHS: "a", RHS: "obj1"},
		{Kind: AddressOf, LHS: "b", RHS: "obj2"},
	}
	result := NewAndersenSolver(false).Solve(constraints)
	assert.False(t, result.Set("a", "")["obj2"])
	assert.False(t, result.Set("b", "")["obj1"])
}

func TestAndersen_FieldSensitiveKeepsFieldsSeparate(t *testing.T) {
	constraints := []Constraint{
		{Kind: AddressOf, LHS: "s", Field: "x", RHS: "objX"},
		{Kind: AddressOf, LHS: "s", Field: "y", RHS: "objY"},
	}
	result := NewAndersenSolver(true).Solve(constraints)
	assert.True(t, result.Set("s", "x")["objX"])
	assert.False(t, result.Set("s", "x")["objY"])
	assert.True(t, result.Set("s", "y")["objY"])
}

func TestSteensgaard_UnifiesAliasesIntoOneSet(t *testing.T) {
	// a = &obj1; b = a; b = &obj2 -> Steensgaard unifies a and b, so a
	// must also be reported as possibly pointing to obj2 (unsound-safe
	// over-approximation is the expected coarser behavior).
	constraints := []Constraint{
		{Kind: AddressOf, LHS: "a", RHS: "obj1"},
		{Kind: Copy, LHS: "b", RHS: "a"},
		{Kind: AddressOf, LHS: "b", RHS: "obj2"},
	}
	result := NewSteensgaardSolver().Solve(constraints)
	assert.NotEmpty(t, result.Set("a", ""))
	assert.Equal(t, result.Set("a", ""), result.Set("b", ""))
}

func TestSteensgaard_CallAliasesFormalAndActual(t *testing.T) {
	constraints := []Constraint{
		{Kind: AddressOf, LHS: "arg", RHS: "obj1"},
		{Kind: Call, LHS: "param", RHS: "arg"},
	}
	result := NewSteensgaardSolver().Solve(constraints)
	assert.True(t, result.Set("param", "")["obj1"])
}
