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

package clone

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/codegraph/pkg/model"
)

func frag(file string, startLine, endLine int, content string) Fragment {
	return NewFragment(file, model.Span{StartLine: startLine, EndLine: endLine}, content)
}

func TestDetector_FindsIdenticalFragmentsAsType1(t *testing.T) {
	body := "func add(a int, b int) int { total := a + b; if total > 100 { total = total - 100 }; " +
		"for i := 0; i < b; i++ { total = total + i }; return total }"
	a := frag("x.go", 1, 6, body)
	b := frag("y.go", 10, 15, body)

	pairs := NewDetector().Detect([]Fragment{a, b})

	assert.Len(t, pairs, 1)
	assert.Equal(t, Type1, pairs[0].CloneType)
	assert.Equal(t, 1.0, pairs[0].Similarity)
}

func TestDetector_RenamedFragmentsClassifyAsType2OrBetter(t *testing.T) {
	a := frag("x.go", 1, 6, "func add(a int, b int) int { total := a + b; return total }")
	b := frag("y.go", 10, 15, "func sum(x int, y int) int { total := x + y; return total }")

	pairs := NewDetector().Detect([]Fragment{a, b})

	if assert.Len(t, pairs, 1) {
		assert.Contains(t, []CloneType{Type2, Type3, Type4}, pairs[0].CloneType)
	}
}

func TestDetector_UnrelatedFragmentsProduceNoPair(t *testing.T) {
	a := frag("x.go", 1, 6, "func add(a int, b int) int { return a + b }")
	b := frag("y.go", 10, 15, "func readFile(path string) ([]byte, error) { return os.ReadFile(path) }")

	pairs := NewDetector().Detect([]Fragment{a, b})
	assert.Empty(t, pairs)
}

func TestDetector_ContainedFragmentIsSkipped(t *testing.T) {
	outer := frag("x.go", 1, 20, "func add(a int, b int) int { total := a + b; return total }")
	inner := frag("x.go", 2, 3, "total := a + b")

	pairs := NewDetector().Detect([]Fragment{outer, inner})
	assert.Empty(t, pairs)
}

func TestSuppress_DropsSubsetsOfLargerPairs(t *testing.T) {
	outerA := frag("x.go", 1, 100, "outer body repeated many times over")
	outerB := frag("y.go", 1, 100, "outer body repeated many times over")
	innerA := frag("x.go", 20, 30, "inner")
	innerB := frag("y.go", 20, 30, "inner")

	outer := NewClonePair(Type1, outerA, outerB, 1.0)
	inner := NewClonePair(Type1, innerA, innerB, 1.0)

	kept := Suppress([]ClonePair{outer, inner})
	assert.Len(t, kept, 1)
	assert.Equal(t, outer.ID(), kept[0].ID())
}
