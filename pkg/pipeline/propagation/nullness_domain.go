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

// NullnessValue is the five-point nullness lattice (§4.3.8): Null and
// NotNull both sit below MaybeNull (their join), which sits below Top.
type NullnessValue int

const (
	NullnessBottom NullnessValue = iota
	NullnessNull
	NullnessNotNull
	NullnessMaybeNull
	NullnessTop
)

// NullnessDomain tracks whether a reference may be null at a program
// point.
type NullnessDomain struct{}

func (NullnessDomain) Bottom() NullnessValue { return NullnessBottom }
func (NullnessDomain) Top() NullnessValue    { return NullnessTop }

func (NullnessDomain) Join(a, b NullnessValue) NullnessValue {
	if a == b {
		return a
	}
	if a == NullnessBottom {
		return b
	}
	if b == NullnessBottom {
		return a
	}
	if a == NullnessTop || b == NullnessTop {
		return NullnessTop
	}
	// Null/NotNull/MaybeNull pairwise, any two distinct non-bottom,
	// non-top values join to MaybeNull.
	return NullnessMaybeNull
}

func (NullnessDomain) Meet(a, b NullnessValue) NullnessValue {
	if a == b {
		return a
	}
	if a == NullnessTop {
		return b
	}
	if b == NullnessTop {
		return a
	}
	if a == NullnessMaybeNull {
		return b
	}
	if b == NullnessMaybeNull {
		return a
	}
	// Null meet NotNull: contradictory evidence.
	return NullnessBottom
}

func (d NullnessDomain) LessOrEqual(a, b NullnessValue) bool {
	return d.Join(a, b) == b
}

// Arithmetic/logical/comparison operators have no natural nullness
// reading (nullness describes references, not arithmetic values), so
// they conservatively return Top rather than invent semantics a real
// nullness checker wouldn't rely on.
func (NullnessDomain) Add(_, _ NullnessValue) NullnessValue { return NullnessTop }
func (NullnessDomain) Sub(_, _ NullnessValue) NullnessValue { return NullnessTop }
func (NullnessDomain) Mul(_, _ NullnessValue) NullnessValue { return NullnessTop }
func (NullnessDomain) Div(_, _ NullnessValue) NullnessValue { return NullnessTop }
func (NullnessDomain) Lt(_, _ NullnessValue) NullnessValue  { return NullnessTop }
func (NullnessDomain) Eq(_, _ NullnessValue) NullnessValue  { return NullnessTop }
func (NullnessDomain) And(_, _ NullnessValue) NullnessValue { return NullnessTop }
func (NullnessDomain) Or(_, _ NullnessValue) NullnessValue  { return NullnessTop }
func (NullnessDomain) Not(a NullnessValue) NullnessValue    { return a }

// Load is conservative (the loaded content's nullness is unrelated to
// the pointer's own); Store propagates the stored value's nullness
// directly, since that becomes the field/variable's new nullness.
func (NullnessDomain) Load(_ NullnessValue) NullnessValue     { return NullnessTop }
func (NullnessDomain) Store(_, b NullnessValue) NullnessValue { return b }

func (NullnessDomain) Call(_ []NullnessValue) NullnessValue { return NullnessTop }
