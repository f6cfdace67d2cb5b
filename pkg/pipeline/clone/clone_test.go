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

func testFragment(file string, startLine, endLine, tokens, loc int) Fragment {
	return Fragment{
		FilePath:   file,
		Span:       model.Span{StartLine: startLine, EndLine: endLine},
		Content:    "code",
		TokenCount: tokens,
		LOC:        loc,
	}
}

func TestClonePair_New(t *testing.T) {
	source := testFragment("test1.py", 1, 10, 50, 8)
	target := testFragment("test2.py", 20, 30, 50, 8)

	pair := NewClonePair(Type2, source, target, 0.95)

	assert.Equal(t, Type2, pair.CloneType)
	assert.Equal(t, 0.95, pair.Similarity)
	assert.Equal(t, 50, pair.Metrics.CloneLengthTokens)
	assert.Equal(t, 8, pair.Metrics.CloneLengthLOC)
}

func TestClonePair_WithMetrics(t *testing.T) {
	source := testFragment("test.py", 1, 10, 50, 8)
	target := testFragment("test.py", 20, 30, 50, 8)

	metrics := NewCloneMetrics(50, 8, 0.9).WithASTSimilarity(0.85).WithEditDistance(5, 100)
	pair := NewClonePair(Type2, source, target, 0.9).WithMetrics(metrics)

	assert.Equal(t, 0.85, *pair.Metrics.ASTSimilarity)
	assert.Equal(t, 5, *pair.Metrics.EditDistance)
}

func TestClonePair_AddNote(t *testing.T) {
	source := testFragment("test.py", 1, 10, 50, 8)
	target := testFragment("test.py", 20, 30, 50, 8)

	pair := NewClonePair(Type1, source, target, 1.0).
		AddNote("high confidence").
		AddNote("manually verified")

	assert.Len(t, pair.DetectionInfo.Notes, 2)
	assert.Equal(t, "high confidence", pair.DetectionInfo.Notes[0])
}

func TestClonePair_IsValid(t *testing.T) {
	source := testFragment("test.py", 1, 10, 50, 6)
	target := testFragment("test.py", 20, 30, 50, 6)

	assert.True(t, NewClonePair(Type1, source, target, 1.0).IsValid())
	assert.False(t, NewClonePair(Type1, source, target, 0.9).IsValid())

	smallSource := testFragment("test.py", 1, 5, 30, 4)
	smallTarget := testFragment("test.py", 10, 15, 30, 4)
	assert.True(t, NewClonePair(Type3, smallSource, smallTarget, 0.75).IsValid())
}

func TestClonePair_IsSameFile(t *testing.T) {
	source := testFragment("test.py", 1, 10, 50, 8)
	sameFile := testFragment("test.py", 20, 30, 50, 8)
	otherFile := testFragment("other.py", 20, 30, 50, 8)

	assert.True(t, NewClonePair(Type1, source, sameFile, 1.0).IsSameFile())
	assert.False(t, NewClonePair(Type1, source, otherFile, 1.0).IsSameFile())
}

func TestClonePair_HasOverlap(t *testing.T) {
	source := testFragment("test.py", 1, 15, 50, 10)
	overlapping := testFragment("test.py", 10, 20, 50, 10)
	disjoint := testFragment("test.py", 20, 30, 50, 10)

	assert.True(t, NewClonePair(Type2, source, overlapping, 0.95).HasOverlap())
	assert.False(t, NewClonePair(Type2, source, disjoint, 0.95).HasOverlap())
}

func TestClonePair_DistanceLines(t *testing.T) {
	source := testFragment("test.py", 1, 10, 50, 10)
	sameFile := testFragment("test.py", 20, 30, 50, 10)
	otherFile := testFragment("other.py", 1, 10, 50, 10)

	d1 := NewClonePair(Type1, source, sameFile, 1.0).DistanceLines()
	d2 := NewClonePair(Type1, source, otherFile, 1.0).DistanceLines()

	assert.Equal(t, 10, *d1)
	assert.Nil(t, d2)
}

func TestClonePair_DistanceLinesOverlapping(t *testing.T) {
	source := testFragment("test.py", 1, 15, 50, 10)
	target := testFragment("test.py", 10, 25, 50, 10)

	d := NewClonePair(Type2, source, target, 0.9).DistanceLines()
	assert.Equal(t, 0, *d)
}

func TestClonePair_IsSelfClone(t *testing.T) {
	source := testFragment("test.py", 1, 10, 50, 8)
	same := testFragment("test.py", 1, 10, 50, 8)
	different := testFragment("test.py", 20, 30, 50, 8)

	assert.True(t, NewClonePair(Type1, source, same, 1.0).IsSelfClone())
	assert.False(t, NewClonePair(Type1, source, different, 1.0).IsSelfClone())
}

func TestClonePair_NormalizedIDOrderIndependent(t *testing.T) {
	a := testFragment("a.py", 10, 20, 50, 8)
	b := testFragment("b.py", 30, 40, 50, 8)

	forward := NewClonePair(Type1, a, b, 1.0)
	backward := NewClonePair(Type1, b, a, 1.0)

	assert.Equal(t, forward.NormalizedID(), backward.NormalizedID())
}

func TestClonePair_QualityScoreWithinBounds(t *testing.T) {
	source := testFragment("test.py", 1, 10, 100, 10)
	target := testFragment("test.py", 20, 30, 100, 10)

	quality := NewClonePair(Type1, source, target, 0.95).WithConfidence(0.9).QualityScore()
	assert.Greater(t, quality, 0.0)
	assert.LessOrEqual(t, quality, 1.0)
}

func TestClonePair_QualityScoreLengthScaling(t *testing.T) {
	tinySource := testFragment("test.py", 1, 2, 10, 2)
	tinyTarget := testFragment("test.py", 5, 6, 10, 2)
	largeSource := testFragment("test.py", 1, 50, 500, 40)
	largeTarget := testFragment("test.py", 60, 110, 500, 40)

	tiny := NewClonePair(Type1, tinySource, tinyTarget, 1.0)
	large := NewClonePair(Type1, largeSource, largeTarget, 1.0)

	assert.Greater(t, large.QualityScore(), tiny.QualityScore())
}

func TestClonePair_IsSubsetOf(t *testing.T) {
	outerSource := testFragment("test.py", 1, 100, 500, 50)
	outerTarget := testFragment("test2.py", 1, 100, 500, 50)
	innerSource := testFragment("test.py", 20, 40, 100, 10)
	innerTarget := testFragment("test2.py", 20, 40, 100, 10)

	outer := NewClonePair(Type1, outerSource, outerTarget, 1.0)
	inner := NewClonePair(Type1, innerSource, innerTarget, 1.0)

	assert.True(t, inner.IsSubsetOf(outer))
	assert.False(t, outer.IsSubsetOf(inner))
}

func TestClonePair_ConfidenceClamping(t *testing.T) {
	source := testFragment("test.py", 1, 10, 50, 8)
	target := testFragment("test.py", 20, 30, 50, 8)

	over := NewClonePair(Type1, source, target, 1.0).WithConfidence(1.5)
	under := NewClonePair(Type1, source, target, 1.0).WithConfidence(-0.5)

	assert.Equal(t, 1.0, *over.DetectionInfo.Confidence)
	assert.Equal(t, 0.0, *under.DetectionInfo.Confidence)
}

func TestCloneMetrics_EditDistanceNormalizedZeroLength(t *testing.T) {
	metrics := NewCloneMetrics(0, 0, 0.0).WithEditDistance(5, 0)
	assert.Nil(t, metrics.NormalizedEditDistance)
}

func TestCloneMetrics_EditDistanceNormalized(t *testing.T) {
	metrics := NewCloneMetrics(100, 10, 0.9).WithEditDistance(20, 100)
	assert.Equal(t, 0.8, *metrics.NormalizedEditDistance)
}

func TestFragment_Tokenize(t *testing.T) {
	toks := Tokenize("def foo(x): return x + 1")
	assert.Contains(t, toks, "foo")
	assert.Contains(t, toks, "+")
}
