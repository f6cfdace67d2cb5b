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

package taint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCallGraph map[string][]string

func (g fakeCallGraph) Callees(function string) []string { return g[function] }

func TestReachability_FindsDirectPath(t *testing.T) {
	graph := fakeCallGraph{"source": {"sink"}}
	a := NewReachabilityAnalyzer(graph, 50, 1000)
	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"sink": {}},
	)
	assert.Len(t, paths, 1)
	assert.Equal(t, []string{"source", "sink"}, paths[0].Path)
}

func TestReachability_MultiHopPath(t *testing.T) {
	graph := fakeCallGraph{
		"source": {"helper"},
		"helper": {"sink"},
	}
	a := NewReachabilityAnalyzer(graph, 50, 1000)
	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"sink": {}},
	)
	assert.Len(t, paths, 1)
	assert.Equal(t, []string{"source", "helper", "sink"}, paths[0].Path)
}

func TestReachability_WithSanitizerOnPath(t *testing.T) {
	graph := fakeCallGraph{
		"source":        {"sanitize_html"},
		"sanitize_html": {"sink"},
	}
	a := NewReachabilityAnalyzer(graph, 50, 1000)
	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"sink": {}},
	)
	assert.Len(t, paths, 1)
	assert.Contains(t, paths[0].Path, "sanitize_html")
}

func TestReachability_NoPathWhenUnreachable(t *testing.T) {
	graph := fakeCallGraph{"source": {"unrelated"}}
	a := NewReachabilityAnalyzer(graph, 50, 1000)
	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"sink": {}},
	)
	assert.Empty(t, paths)
}

func TestReachability_MaxDepthTruncates(t *testing.T) {
	graph := fakeCallGraph{
		"source": {"a"},
		"a":      {"b"},
		"b":      {"sink"},
	}
	a := NewReachabilityAnalyzer(graph, 2, 1000)
	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"sink": {}},
	)
	assert.Empty(t, paths)
}

func TestSanitizer_MatchesKeywordSubstring(t *testing.T) {
	d := NewSanitizerDetector()
	assert.True(t, d.IsSanitizer("sanitize_html"))
	assert.True(t, d.IsSanitizer("escapeHtml"))
	assert.True(t, d.IsSanitizer("mark_safe"))
	assert.False(t, d.IsSanitizer("render_template"))
}

func TestSanitizer_CustomExactMatch(t *testing.T) {
	d := NewSanitizerDetector()
	assert.False(t, d.IsSanitizer("my_custom_scrubber"))
	d.AddSanitizer("my_custom_scrubber")
	assert.True(t, d.IsSanitizer("my_custom_scrubber"))
	assert.Equal(t, 1, d.CustomCount())
}

func TestFieldTaint_TracksPerField(t *testing.T) {
	ft := NewFieldTaint()
	ft.TaintField("user", "name", "http_input")
	assert.True(t, ft.IsFieldTainted("user", "name"))
	assert.False(t, ft.IsFieldTainted("user", "age"))
	assert.Contains(t, ft.FieldSources("user", "name"), "http_input")
}

func TestFieldTaint_Merge(t *testing.T) {
	a := NewFieldTaint()
	a.TaintField("user", "name", "s1")
	b := NewFieldTaint()
	b.TaintField("user", "email", "s2")

	a.Merge(b)
	assert.True(t, a.IsFieldTainted("user", "name"))
	assert.True(t, a.IsFieldTainted("user", "email"))
}

func TestAnalyzer_TaintFlowWithSanitizerIsFiltered(t *testing.T) {
	graph := fakeCallGraph{
		"source":        {"sanitize_html"},
		"sanitize_html": {"sink"},
	}
	cfg := DefaultConfig()
	a := NewAnalyzer(graph, cfg)
	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"sink": {}},
	)
	assert.Empty(t, paths)
}

func TestAnalyzer_TaintFlowWithoutSanitizerDetectionKeepsPath(t *testing.T) {
	graph := fakeCallGraph{
		"source":        {"sanitize_html"},
		"sanitize_html": {"sink"},
	}
	cfg := DefaultConfig()
	cfg.DetectSanitizers = false
	a := NewAnalyzer(graph, cfg)
	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"sink": {}},
	)
	assert.Len(t, paths, 1)
}

func TestAnalyzer_DirectUnsanitizedFlowSurvives(t *testing.T) {
	graph := fakeCallGraph{"source": {"sink"}}
	a := NewAnalyzer(graph, DefaultConfig())
	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"sink": {}},
	)
	assert.Len(t, paths, 1)
}

func TestAnalyzer_FieldSensitiveDropsUntaintedFieldAccess(t *testing.T) {
	graph := fakeCallGraph{"source": {"user.age"}}
	a := NewAnalyzer(graph, DefaultConfig())
	a.FieldTaint().TaintField("user", "name", "source")

	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"user.age": {}},
	)
	assert.Empty(t, paths)
}

func TestAnalyzer_FieldSensitiveKeepsTaintedFieldAccess(t *testing.T) {
	graph := fakeCallGraph{"source": {"user.name"}}
	a := NewAnalyzer(graph, DefaultConfig())
	a.FieldTaint().TaintField("user", "name", "source")

	paths := a.Analyze(
		map[string]map[string]bool{"source": {}},
		map[string]map[string]bool{"user.name": {}},
	)
	assert.Len(t, paths, 1)
}

func TestAnalyzer_StatsReflectsConfig(t *testing.T) {
	graph := fakeCallGraph{}
	cfg := DefaultConfig()
	a := NewAnalyzer(graph, cfg)
	a.AddSanitizer("custom_clean")

	stats := a.Stats()
	assert.True(t, stats.PointsToEnabled)
	assert.True(t, stats.FieldSensitive)
	assert.True(t, stats.SSAEnabled)
	assert.True(t, stats.SanitizerEnabled)
	assert.Equal(t, 1, stats.SanitizerCount)
}
