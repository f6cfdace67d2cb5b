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

import "fmt"

// CloneType classifies a ClonePair by how closely the two fragments
// match (§4.3.9).
type CloneType int

const (
	// Type1 fragments are byte-for-byte identical modulo whitespace/comments.
	Type1 CloneType = iota + 1
	// Type2 fragments are identical modulo consistent identifier renaming.
	Type2
	// Type3 fragments match with inserted/deleted/modified gapped regions.
	Type3
	// Type4 fragments are semantically equivalent but syntactically distinct.
	Type4
)

func (t CloneType) String() string {
	switch t {
	case Type1:
		return "Type-1"
	case Type2:
		return "Type-2"
	case Type3:
		return "Type-3"
	case Type4:
		return "Type-4"
	default:
		return fmt.Sprintf("Type-%d", int(t))
	}
}

// Algorithm names the detection strategy associated with this type, used
// to populate DetectionInfo.Algorithm when the caller doesn't override it.
func (t CloneType) Algorithm() string {
	switch t {
	case Type1:
		return "exact-token-match"
	case Type2:
		return "normalized-token-match"
	case Type3:
		return "gapped-alignment"
	case Type4:
		return "semantic-similarity"
	default:
		return "unknown"
	}
}

// thresholds is one type's (min tokens, min LOC, min similarity) triple.
type thresholds struct {
	minTokens  int
	minLOC     int
	similarity float64
}

var typeThresholds = map[CloneType]thresholds{
	Type1: {minTokens: 50, minLOC: 6, similarity: 1.0},
	Type2: {minTokens: 50, minLOC: 6, similarity: 0.95},
	Type3: {minTokens: 30, minLOC: 4, similarity: 0.7},
	Type4: {minTokens: 20, minLOC: 3, similarity: 0.6},
}

// MinTokenThreshold is the minimum token count a fragment of this type
// must reach to be considered for clone detection at all.
func (t CloneType) MinTokenThreshold() int { return typeThresholds[t].minTokens }

// MinLOCThreshold is the minimum line count a fragment of this type must
// reach.
func (t CloneType) MinLOCThreshold() int { return typeThresholds[t].minLOC }

// SimilarityThreshold is the minimum similarity score a pair of this type
// must meet to be valid.
func (t CloneType) SimilarityThreshold() float64 { return typeThresholds[t].similarity }
