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
	"strings"

	"github.com/kraklabs/codegraph/pkg/pipeline/heap"
	"github.com/kraklabs/codegraph/pkg/pipeline/pta"
)

// Mode selects which points-to solver backs an Analyzer's alias
// precision (§4.3.4: Fast = Steensgaard, Precise = Andersen).
type Mode int

const (
	Fast Mode = iota
	Precise
)

// Config tunes an Analyzer's precision/performance trade-off.
type Config struct {
	UsePointsTo      bool
	PTAMode          Mode
	FieldSensitive   bool
	UseSSA           bool
	DetectSanitizers bool
	MaxDepth         int
	MaxPaths         int
}

// DefaultConfig turns on every precision feature, Andersen alias
// precision, depth 50 and up to 1000 enumerated paths.
func DefaultConfig() Config {
	return Config{
		UsePointsTo:      true,
		PTAMode:          Precise,
		FieldSensitive:   true,
		UseSSA:           true,
		DetectSanitizers: true,
		MaxDepth:         50,
		MaxPaths:         1000,
	}
}

// Stats summarizes which precision features an Analyzer's config enables.
type Stats struct {
	PointsToEnabled   bool
	FieldSensitive    bool
	SSAEnabled        bool
	SanitizerEnabled  bool
	SanitizerCount    int
	FieldTaintObjects int
}

// Analyzer runs a base interprocedural reachability pass and then, as
// its config enables them, a flow-sensitive filter, a field-sensitive
// filter and a sanitizer filter, in that order. Each filter can only
// shrink the path set that reachability produced, never grow it. A
// points-to result or heap state attached with WithPointsTo or
// WithSymbolicMemory is held for callers; Analyze does not read either.
type Analyzer struct {
	base           *ReachabilityAnalyzer
	pointsTo       *pta.Result
	ssaAvailable   bool
	fieldTaint     *FieldTaint
	sanitizer      *SanitizerDetector
	symbolicMemory *heap.Memory
	config         Config
}

// NewAnalyzer creates a SOTA analyzer over the given call graph.
func NewAnalyzer(graph CallGraphProvider, config Config) *Analyzer {
	return &Analyzer{
		base:       NewReachabilityAnalyzer(graph, config.MaxDepth, config.MaxPaths),
		fieldTaint: NewFieldTaint(),
		sanitizer:  NewSanitizerDetector(),
		config:     config,
	}
}

// WithPointsTo attaches a solved points-to result. The field-sensitive
// filter does not consult it; it matches object.field names as written.
func (a *Analyzer) WithPointsTo(result *pta.Result) *Analyzer {
	a.pointsTo = result
	return a
}

// WithSSA records that a flow-sensitive SSA view is available for this
// run; §4.3.6's flow-sensitive filter only engages when this is true.
func (a *Analyzer) WithSSA(available bool) *Analyzer {
	a.ssaAvailable = available
	return a
}

// WithSymbolicMemory attaches heap-tracking state built by HeapStage, so
// callers can cross-reference a taint path against use-after-free/
// overflow diagnostics surfaced on the same objects.
func (a *Analyzer) WithSymbolicMemory(mem *heap.Memory) *Analyzer {
	a.symbolicMemory = mem
	return a
}

// AddSanitizer registers an operator-supplied exact-match sanitizer name
// beyond the built-in keyword list.
func (a *Analyzer) AddSanitizer(name string) { a.sanitizer.AddSanitizer(name) }

// FieldTaint exposes the field-sensitive taint map accumulated by
// TaintField calls (populated by a caller walking def/use edges before
// Analyze), for Analyze's field filter to consult.
func (a *Analyzer) FieldTaint() *FieldTaint { return a.fieldTaint }

// SymbolicMemory returns the heap state attached via WithSymbolicMemory,
// if any.
func (a *Analyzer) SymbolicMemory() *heap.Memory { return a.symbolicMemory }

// Analyze runs the full SOTA pipeline and returns every surviving path.
func (a *Analyzer) Analyze(sources, sinks map[string]map[string]bool) []Path {
	paths := a.base.Analyze(sources, sinks)

	if a.config.UseSSA {
		paths = a.filterFlowSensitive(paths)
	}
	if a.config.FieldSensitive {
		paths = a.filterFieldSensitive(paths)
	}
	if a.config.DetectSanitizers {
		paths = a.filterSanitized(paths)
	}
	return paths
}

// filterFlowSensitive returns paths unchanged, whether or not SSA is
// available: no def-use walk over SSA versions drops a path whose tainted
// variable is redefined with clean data before the sink. This keeps every
// vulnerability reachability found and removes no false positives.
func (a *Analyzer) filterFlowSensitive(paths []Path) []Path {
	if !a.ssaAvailable {
		return paths
	}
	return paths
}

// filterFieldSensitive keeps every path whose steps carry no dotted
// field access, and for a path that does, only drops it when the
// accessed object.field combination was never marked tainted in
// FieldTaint. A path with a field access, but no recorded field taint
// at all (because the caller never populated FieldTaint), is a
// conservative keep — matching §4.3.6's "ambiguous states are silently
// accepted (sound over-approximation)" outside strict mode.
func (a *Analyzer) filterFieldSensitive(paths []Path) []Path {
	if a.fieldTaint.ObjectCount() == 0 {
		return paths
	}

	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		keep := true
		for _, step := range p.Path {
			obj, field, ok := splitFieldAccess(step)
			if !ok {
				continue
			}
			if !a.fieldTaint.IsFieldTainted(obj, field) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, p)
		}
	}
	return out
}

func splitFieldAccess(step string) (obj, field string, ok bool) {
	i := strings.IndexByte(step, '.')
	if i < 0 {
		return "", "", false
	}
	return step[:i], step[i+1:], true
}

// filterSanitized drops any path with a sanitizer function on it.
func (a *Analyzer) filterSanitized(paths []Path) []Path {
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		sanitized := false
		for _, step := range p.Path {
			if a.sanitizer.IsSanitizer(step) {
				sanitized = true
				break
			}
		}
		if !sanitized {
			out = append(out, p)
		}
	}
	return out
}

// Stats reports which precision features this Analyzer's config enabled.
func (a *Analyzer) Stats() Stats {
	return Stats{
		PointsToEnabled:   a.config.UsePointsTo,
		FieldSensitive:    a.config.FieldSensitive,
		SSAEnabled:        a.config.UseSSA,
		SanitizerEnabled:  a.config.DetectSanitizers,
		SanitizerCount:    a.sanitizer.CustomCount(),
		FieldTaintObjects: a.fieldTaint.ObjectCount(),
	}
}
