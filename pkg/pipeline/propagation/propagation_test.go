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

package propagation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaintDomain_JoinIsContagious(t *testing.T) {
	d := TaintDomain{}
	assert.Equal(t, TaintTop, d.Join(TaintTainted, TaintUntainted))
	assert.Equal(t, TaintTainted, d.Join(TaintBottom, TaintTainted))
	assert.Equal(t, TaintUntainted, d.Join(TaintUntainted, TaintBottom))
}

func TestTaintDomain_MeetAndOrdering(t *testing.T) {
	d := TaintDomain{}
	assert.Equal(t, TaintTainted, d.Meet(TaintTop, TaintTainted))
	assert.True(t, d.LessOrEqual(TaintBottom, TaintTainted))
	assert.True(t, d.LessOrEqual(TaintTainted, TaintTop))
	assert.False(t, d.LessOrEqual(TaintTainted, TaintUntainted))
}

func TestTaintDomain_CallFoldsAllArgs(t *testing.T) {
	d := TaintDomain{}
	got := d.Call([]TaintValue{TaintUntainted, TaintUntainted, TaintTainted})
	assert.Equal(t, TaintTop, got)
}

func TestNullnessDomain_JoinDistinctToMaybeNull(t *testing.T) {
	d := NullnessDomain{}
	assert.Equal(t, NullnessMaybeNull, d.Join(NullnessNull, NullnessNotNull))
	assert.Equal(t, NullnessNull, d.Join(NullnessBottom, NullnessNull))
	assert.Equal(t, NullnessTop, d.Join(NullnessTop, NullnessNotNull))
}

func TestNullnessDomain_MeetContradictionIsBottom(t *testing.T) {
	d := NullnessDomain{}
	assert.Equal(t, NullnessBottom, d.Meet(NullnessNull, NullnessNotNull))
	assert.Equal(t, NullnessNotNull, d.Meet(NullnessMaybeNull, NullnessNotNull))
}

func TestNullnessDomain_StorePropagatesAssignedValue(t *testing.T) {
	d := NullnessDomain{}
	assert.Equal(t, NullnessNull, d.Store(NullnessMaybeNull, NullnessNull))
}

func TestSignDomain_JoinIsBitwiseUnion(t *testing.T) {
	d := SignDomain{}
	assert.Equal(t, SignNonNeg, d.Join(SignZero, SignPos))
	assert.Equal(t, SignTop, d.Join(SignNonNeg, SignNeg))
}

func TestSignDomain_LessOrEqualIsSubset(t *testing.T) {
	d := SignDomain{}
	assert.True(t, d.LessOrEqual(SignNeg, SignNonPos))
	assert.True(t, d.LessOrEqual(SignBottom, SignTop))
	assert.False(t, d.LessOrEqual(SignPos, SignNonPos))
}

func TestSignDomain_AddNegPosIsTop(t *testing.T) {
	d := SignDomain{}
	assert.Equal(t, SignTop, d.Add(SignNeg, SignPos))
	assert.Equal(t, SignNeg, d.Add(SignNeg, SignZero))
}

func TestSignDomain_MulSignRules(t *testing.T) {
	d := SignDomain{}
	assert.Equal(t, SignPos, d.Mul(SignNeg, SignNeg))
	assert.Equal(t, SignNeg, d.Mul(SignNeg, SignPos))
	assert.Equal(t, SignZero, d.Mul(SignZero, SignPos))
}

func TestSignDomain_SubNegatesRightOperand(t *testing.T) {
	d := SignDomain{}
	assert.Equal(t, SignNeg, d.Sub(SignNeg, SignPos))
	assert.Equal(t, SignPos, d.Sub(SignPos, SignNeg))
}

func TestSignDomain_DivByPossiblyZeroIsTop(t *testing.T) {
	d := SignDomain{}
	assert.Equal(t, SignTop, d.Div(SignPos, SignNonNeg))
	assert.Equal(t, SignNeg, d.Div(SignPos, SignNeg))
}

// straightLineGraph is three nodes n1 -> n2 -> n3 with no merge points, to
// exercise both Sparse and Dense convergence on the same topology.
func straightLineGraph() map[string]Node {
	return map[string]Node{
		"n1": {ID: "n1", Successors: []string{"n2"}},
		"n2": {ID: "n2", Predecessors: []string{"n1"}, Successors: []string{"n3"}},
		"n3": {ID: "n3", Predecessors: []string{"n2"}},
	}
}

func TestEngine_SparseConvergesOnStraightLineTaint(t *testing.T) {
	e := NewEngine[TaintValue](TaintDomain{}, Config{Mode: Sparse})
	nodes := straightLineGraph()

	initial := func(id string) TaintValue {
		if id == "n1" {
			return TaintTainted
		}
		return TaintBottom
	}
	transfer := func(id string, inputs []TaintValue) TaintValue {
		d := TaintDomain{}
		result := d.Bottom()
		for _, in := range inputs {
			result = d.Join(result, in)
		}
		if id == "n1" {
			return initial(id)
		}
		return result
	}

	result := e.Run(nodes, initial, transfer)
	assert.Equal(t, TaintTainted, result.Values["n1"])
	assert.Equal(t, TaintTainted, result.Values["n2"])
	assert.Equal(t, TaintTainted, result.Values["n3"])
	assert.Empty(t, result.Stats.Warnings)
}

func TestEngine_DenseConvergesOnStraightLineTaint(t *testing.T) {
	e := NewEngine[TaintValue](TaintDomain{}, Config{Mode: Dense})
	nodes := straightLineGraph()

	initial := func(id string) TaintValue {
		if id == "n1" {
			return TaintTainted
		}
		return TaintBottom
	}
	transfer := func(id string, inputs []TaintValue) TaintValue {
		d := TaintDomain{}
		result := d.Bottom()
		for _, in := range inputs {
			result = d.Join(result, in)
		}
		if id == "n1" {
			return initial(id)
		}
		return result
	}

	result := e.Run(nodes, initial, transfer)
	assert.Equal(t, TaintTainted, result.Values["n2"])
	assert.Equal(t, TaintTainted, result.Values["n3"])
	assert.Equal(t, result.Stats.TotalNodes, result.Stats.AnalyzedNodes)
}

func TestEngine_SparseAndDenseAgree(t *testing.T) {
	nodes := straightLineGraph()
	initial := func(id string) NullnessValue {
		if id == "n1" {
			return NullnessNull
		}
		return NullnessBottom
	}
	transfer := func(id string, inputs []NullnessValue) NullnessValue {
		d := NullnessDomain{}
		result := d.Bottom()
		for _, in := range inputs {
			result = d.Join(result, in)
		}
		if id == "n1" {
			return initial(id)
		}
		return result
	}

	sparse := NewEngine[NullnessValue](NullnessDomain{}, Config{Mode: Sparse}).Run(nodes, initial, transfer)
	dense := NewEngine[NullnessValue](NullnessDomain{}, Config{Mode: Dense}).Run(nodes, initial, transfer)

	assert.Equal(t, sparse.Values, dense.Values)
}

func TestEngine_MaxIterationsTruncatesWithWarning(t *testing.T) {
	// A cycle whose values are still growing when the bound is hit: after
	// two iterations b has just changed and re-queued a, so the engine
	// stops with work left and records a warning.
	nodes := map[string]Node{
		"a": {ID: "a", Predecessors: []string{"b"}, Successors: []string{"b"}},
		"b": {ID: "b", Predecessors: []string{"a"}, Successors: []string{"a"}},
	}
	calls := 0
	initial := func(id string) SignValue {
		if id == "a" {
			return SignNeg
		}
		return SignBottom
	}
	transfer := func(id string, inputs []SignValue) SignValue {
		calls++
		// Alternate which single bit is contributed each call so Join
		// grows the set on each of the first passes around the cycle —
		// exercises the MaxIterations cutoff deterministically.
		bits := []SignValue{SignNeg, SignZero, SignPos}
		return bits[calls%3]
	}

	e := NewEngine[SignValue](SignDomain{}, Config{Mode: Sparse, MaxIterations: 2})
	result := e.Run(nodes, initial, transfer)

	assert.LessOrEqual(t, result.Stats.Iterations, 2)
	assert.NotEmpty(t, result.Stats.Warnings)
}
