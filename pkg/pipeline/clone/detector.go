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

import "sort"

// Detector finds clone pairs among a set of fragments by token-multiset
// (Jaccard) similarity, then classifies each pair by CloneType using the
// similarity thresholds and assigns a Type-1 "identical" verdict only
// when the normalized content matches exactly.
type Detector struct {
	// MinSimilarity below which a candidate pair is discarded outright,
	// regardless of type thresholds (default: Type4's 0.6 if zero).
	MinSimilarity float64
}

// NewDetector returns a Detector with the default similarity floor.
func NewDetector() *Detector {
	return &Detector{MinSimilarity: Type4.SimilarityThreshold()}
}

// Detect compares every pair of fragments and returns the valid
// ClonePairs it finds, most-similar first.
func (d *Detector) Detect(fragments []Fragment) []ClonePair {
	floor := d.MinSimilarity
	if floor <= 0 {
		floor = Type4.SimilarityThreshold()
	}

	var pairs []ClonePair
	for i := 0; i < len(fragments); i++ {
		for j := i + 1; j < len(fragments); j++ {
			a, b := fragments[i], fragments[j]
			if a.IsContainedIn(b) || b.IsContainedIn(a) {
				continue
			}

			sim := jaccardSimilarity(a.Content, b.Content)
			if sim < floor {
				continue
			}

			cloneType := classify(a, b, sim)
			pair := NewClonePair(cloneType, a, b, sim).WithConfidence(sim)
			if pair.IsValid() {
				pairs = append(pairs, pair)
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Similarity > pairs[j].Similarity })
	return pairs
}

// classify picks the tightest CloneType whose similarity threshold the
// pair meets, preferring Type1 when the normalized token sequences are
// byte-for-byte identical.
func classify(a, b Fragment, similarity float64) CloneType {
	if normalizedEqual(a.Content, b.Content) {
		return Type1
	}
	switch {
	case similarity >= Type2.SimilarityThreshold():
		return Type2
	case similarity >= Type3.SimilarityThreshold():
		return Type3
	default:
		return Type4
	}
}

func normalizedEqual(a, b string) bool {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}

// jaccardSimilarity is |tokens(a) ∩ tokens(b)| / |tokens(a) ∪ tokens(b)|
// over token multisets collapsed to sets — a renaming-tolerant, order-
// insensitive similarity measure suitable for Type-2/3/4 candidates.
func jaccardSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(content string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokenize(content) {
		set[tok] = true
	}
	return set
}

// Suppress drops any pair that is a subset of another, already-reported
// pair, leaving only the maximal clones in a cluster (§4.3.9 "subset
// relation for cluster suppression"). pairs must already be sorted with
// the largest/most-significant pairs first.
func Suppress(pairs []ClonePair) []ClonePair {
	var kept []ClonePair
	for _, p := range pairs {
		subsumed := false
		for _, k := range kept {
			if p.IsSubsetOf(k) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, p)
		}
	}
	return kept
}
