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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndexingResult_ComputesRates(t *testing.T) {
	r := NewRun("repo1", "snap1")
	r.StageDurations = map[StageName]time.Duration{L1IRBuild: 10 * time.Millisecond}
	r.AddDiagnostic(L1IRBuild, "bad.go", "parse failed", assert.AnError)

	res := NewIndexingResult(r, 8, 2, 0, 1000, time.Second)

	assert.Equal(t, 8, res.FilesProcessed)
	assert.Equal(t, 2, res.FilesCached)
	assert.InDelta(t, 1000.0, res.LOCPerSecond, 0.001)
	assert.InDelta(t, 0.2, res.CacheHitRate, 0.001)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "parse failed")
	assert.Equal(t, r.StageDurations, res.StageDurations)
}

func TestNewIndexingResult_ZeroDurationNoDivideByZero(t *testing.T) {
	r := NewRun("repo1", "snap1")
	res := NewIndexingResult(r, 0, 0, 0, 0, 0)
	assert.Equal(t, 0.0, res.LOCPerSecond)
	assert.Equal(t, 0.0, res.CacheHitRate)
}
