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

	"github.com/kraklabs/codegraph/pkg/pipeline/concurrency"
)

// ConcurrencyStage implements L21 (§4.3.10): runs the async race
// detector over every async function node in the document.
type ConcurrencyStage struct {
	Detector *concurrency.Detector

	// Races is populated by Execute: every race condition found across
	// the run's async functions.
	Races []concurrency.RaceCondition
}

func (s *ConcurrencyStage) Name() StageName { return L21Concurrency }

func (s *ConcurrencyStage) Execute(ctx context.Context, r *Run) error {
	detector := s.Detector
	if detector == nil {
		detector = concurrency.NewDetector()
	}

	var races []concurrency.RaceCondition
	for _, fn := range functionsOf(r.Doc) {
		if fn.Descriptor == nil || !fn.Descriptor.IsAsync {
			continue
		}
		races = append(races, detector.AnalyzeFunction(r.Doc, fn.ID)...)
	}

	s.Races = races
	return nil
}
