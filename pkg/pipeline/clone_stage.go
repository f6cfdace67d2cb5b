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

package pipeline

import (
	"context"

	"github.com/kraklabs/codegraph/pkg/model"
	"github.com/kraklabs/codegraph/pkg/pipeline/clone"
)

// CloneStage implements L20 (§4.3.9): builds one clone.Fragment per
// function/method/class chunk r.Chunks already carries, runs the
// pairwise detector across them, and keeps only the maximal pairs in
// each subset cluster.
type CloneStage struct {
	Detector *clone.Detector

	// Pairs is populated by Execute: the suppressed, similarity-sorted
	// clone pairs found across the run's chunks.
	Pairs []clone.ClonePair
}

func (s *CloneStage) Name() StageName { return L20Clone }

var cloneChunkKinds = map[model.NodeKind]bool{
	model.NodeFunction: true,
	model.NodeMethod:   true,
	model.NodeClass:    true,
}

func (s *CloneStage) Execute(ctx context.Context, r *Run) error {
	detector := s.Detector
	if detector == nil {
		detector = clone.NewDetector()
	}

	var fragments []clone.Fragment
	for _, c := range r.Chunks {
		if c.IsDeleted || !cloneChunkKinds[c.Kind] {
			continue
		}
		fragments = append(fragments, clone.FromChunk(c))
	}

	pairs := detector.Detect(fragments)
	s.Pairs = clone.Suppress(pairs)
	return nil
}
