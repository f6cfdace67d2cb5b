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

package concurrency

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kraklabs/codegraph/pkg/model"
)

const minAccessesForRace = 2

var awaitPatterns = []string{"await ", "await(", "Await"}

var lockPatterns = []string{"asyncio.Lock", "Lock()", "async with"}

// ThreadLocalFilter reports whether a variable is confined to a single
// task/goroutine (e.g. from Escape Analysis), letting the detector skip
// accesses that can't actually race. A nil filter keeps every shared
// variable in play.
type ThreadLocalFilter func(variable string) bool

// Detector finds async race conditions in a function's accesses to
// shared state.
type Detector struct {
	Verbose bool
	// ThreadLocal, when set, filters out accesses to variables it
	// reports as thread-local before race detection runs (§4.3.10
	// Escape Analysis integration).
	ThreadLocal ThreadLocalFilter
}

// NewDetector returns a Detector with no thread-local filtering.
func NewDetector() *Detector { return &Detector{} }

// IsSharedVariable reports whether var_name looks like it names shared
// state: a `self.`-prefixed field, a module-level name (leading
// uppercase), or any dotted/qualified name.
func (d *Detector) IsSharedVariable(varName string) bool {
	if strings.HasPrefix(varName, "self.") {
		return true
	}
	if varName != "" {
		first := []rune(varName)[0]
		if unicode.IsUpper(first) {
			return true
		}
	}
	return strings.Contains(varName, ".")
}

// AnalyzeFunction runs race detection over one async function node,
// identified by its node id. Non-async functions and functions with no
// await points are always race-free and return nil without error.
func (d *Detector) AnalyzeFunction(doc *model.IRDocument, funcID string) []RaceCondition {
	byID := doc.NodeIndex()
	funcNode, ok := byID[funcID]
	if !ok {
		return nil
	}
	if funcNode.Descriptor == nil || !funcNode.Descriptor.IsAsync {
		return nil
	}

	accesses := d.findAccesses(doc, byID, funcID)
	if d.ThreadLocal != nil {
		accesses = filterThreadLocal(accesses, d.ThreadLocal)
	}

	awaitPoints := d.findAwaitPoints(doc, funcID)
	if len(awaitPoints) == 0 {
		return nil
	}

	lockRegions := d.findLockRegions(doc, funcID)
	return d.detectRaces(funcNode, funcID, accesses, awaitPoints, lockRegions)
}

func filterThreadLocal(accesses []Access, isThreadLocal ThreadLocalFilter) []Access {
	var out []Access
	for _, a := range accesses {
		if !isThreadLocal(a.Variable) {
			out = append(out, a)
		}
	}
	return out
}

func inFunctionScope(doc *model.IRDocument, funcID string) map[string]bool {
	scope := map[string]bool{funcID: true}
	for _, n := range doc.Nodes {
		if n.ParentID == funcID {
			scope[n.ID] = true
		}
	}
	return scope
}

func (d *Detector) findAccesses(doc *model.IRDocument, byID map[string]model.Node, funcID string) []Access {
	scope := inFunctionScope(doc, funcID)

	var accesses []Access
	seen := make(map[string]bool)

	for _, e := range doc.Edges {
		if !scope[e.SourceID] {
			continue
		}
		var accessType AccessType
		switch e.Kind {
		case model.EdgeReads:
			accessType = AccessRead
		case model.EdgeWrites:
			accessType = AccessWrite
		case model.EdgeDefUse:
			accessType = AccessReadWrite
		default:
			continue
		}

		varName := e.TargetID
		if target, ok := byID[e.TargetID]; ok && target.Name != "" {
			varName = target.Name
		}
		if !d.IsSharedVariable(varName) {
			continue
		}

		line := 0
		if e.Span != nil {
			line = e.Span.StartLine
		} else if source, ok := byID[e.SourceID]; ok {
			line = source.Span.StartLine
		}

		accesses = append(accesses, Access{Variable: varName, Type: accessType, Line: line})
		seen[varName] = true
	}

	// Variable nodes in scope that no edge already captured.
	for _, n := range doc.Nodes {
		if n.Kind != model.NodeVariable || !scope[n.ParentID] {
			continue
		}
		varName := n.Name
		if varName == "" {
			varName = n.ID
		}
		if seen[varName] || !d.IsSharedVariable(varName) {
			continue
		}
		accesses = append(accesses, Access{Variable: varName, Type: inferAccessType(n), Line: n.Span.StartLine})
	}

	return accesses
}

// inferAccessType reads a conservative default (write) unless the node's
// metadata says otherwise — matching the source's own "default
// conservative" stance for race detection.
func inferAccessType(n model.Node) AccessType {
	if n.Metadata == nil {
		return AccessWrite
	}
	v, ok := n.Metadata["access_type"]
	if !ok {
		return AccessWrite
	}
	s, _ := v.(string)
	switch s {
	case "read":
		return AccessRead
	case "write":
		return AccessWrite
	case "read_write", "readwrite":
		return AccessReadWrite
	default:
		return AccessWrite
	}
}

func (d *Detector) findAwaitPoints(doc *model.IRDocument, funcID string) []int {
	scope := inFunctionScope(doc, funcID)

	var points []int
	for _, n := range doc.Nodes {
		if !scope[n.ID] || n.ID == funcID {
			continue
		}
		if d.isAwaitNode(n) {
			points = append(points, n.Span.StartLine)
		}
	}

	sort.Ints(points)
	return dedupInts(points)
}

func (d *Detector) isAwaitNode(n model.Node) bool {
	for _, pattern := range awaitPatterns {
		if strings.Contains(n.Name, pattern) {
			return true
		}
	}

	if n.Kind != model.NodeExpression && n.Kind != model.NodeCall {
		return false
	}

	if n.Metadata != nil {
		if v, ok := n.Metadata["is_await"]; ok {
			if b, ok := v.(bool); !ok || b {
				return true
			}
		}
		if v, ok := n.Metadata["await"]; ok {
			if b, ok := v.(bool); ok && b {
				return true
			}
		}
	}

	return strings.Contains(n.Name, "asyncio.") || strings.Contains(n.Name, "async_")
}

func (d *Detector) findLockRegions(doc *model.IRDocument, funcID string) []LockRegion {
	var regions []LockRegion

	for _, n := range doc.Nodes {
		if n.ParentID != funcID {
			continue
		}

		for _, pattern := range lockPatterns {
			if strings.Contains(n.Name, pattern) {
				regions = append(regions, LockRegion{
					LockVar:       n.Name,
					FilePath:      n.FilePath,
					StartLine:     n.Span.StartLine,
					EndLine:       n.Span.EndLine,
					ProtectedVars: map[string]bool{},
				})
			}
		}

		if n.Kind == model.NodeBlock && n.Metadata != nil {
			if blockType, _ := n.Metadata["block_type"].(string); blockType == "async_with" {
				regions = append(regions, LockRegion{
					LockVar:       "async_with",
					FilePath:      n.FilePath,
					StartLine:     n.Span.StartLine,
					EndLine:       n.Span.EndLine,
					ProtectedVars: map[string]bool{},
				})
			}
		}
	}

	return regions
}

func (d *Detector) detectRaces(funcNode model.Node, funcID string, accesses []Access, awaitPoints []int, lockRegions []LockRegion) []RaceCondition {
	byVar := make(map[string][]Access)
	var order []string
	for _, a := range accesses {
		if _, ok := byVar[a.Variable]; !ok {
			order = append(order, a.Variable)
		}
		byVar[a.Variable] = append(byVar[a.Variable], a)
	}

	var races []RaceCondition
	for _, varName := range order {
		varAccesses := byVar[varName]
		if len(varAccesses) < minAccessesForRace {
			continue
		}

		hasWrite := false
		for _, a := range varAccesses {
			if a.Type.IsWrite() {
				hasWrite = true
				break
			}
		}
		if !hasWrite {
			continue
		}

		if allProtectedByLock(varAccesses, lockRegions) {
			continue
		}

		if !hasAwaitBetweenAccesses(varAccesses, awaitPoints) {
			continue
		}

		races = append(races, buildRaceCondition(varName, varAccesses, funcNode, funcID, awaitPoints, lockRegions))
	}

	return races
}

func allProtectedByLock(accesses []Access, lockRegions []LockRegion) bool {
	if len(lockRegions) == 0 {
		return false
	}
	for _, a := range accesses {
		protected := false
		for _, r := range lockRegions {
			if r.ContainsLine(a.Line) {
				protected = true
				break
			}
		}
		if !protected {
			return false
		}
	}
	return true
}

func hasAwaitBetweenAccesses(accesses []Access, awaitPoints []int) bool {
	if len(accesses) < 2 || len(awaitPoints) == 0 {
		return false
	}

	minLine, maxLine := accesses[0].Line, accesses[0].Line
	for _, a := range accesses[1:] {
		if a.Line < minLine {
			minLine = a.Line
		}
		if a.Line > maxLine {
			maxLine = a.Line
		}
	}

	for _, line := range awaitPoints {
		if line >= minLine && line <= maxLine {
			return true
		}
	}
	for _, line := range awaitPoints {
		if line < minLine {
			return true
		}
	}
	return false
}

func buildRaceCondition(varName string, accesses []Access, funcNode model.Node, funcID string, awaitPoints []int, lockRegions []LockRegion) RaceCondition {
	a := AccessLocation{FilePath: funcNode.FilePath, Line: accesses[0].Line, AccessType: accesses[0].Type}
	b := AccessLocation{FilePath: funcNode.FilePath, Line: accesses[1].Line, AccessType: accesses[1].Type}

	pts := make([]AwaitPoint, 0, len(awaitPoints))
	for _, line := range awaitPoints {
		pts = append(pts, AwaitPoint{FilePath: funcNode.FilePath, Line: line, AwaitExpr: "await", FunctionName: funcID})
	}

	return NewRaceCondition(varName, a, b, pts, lockRegions, funcNode.FilePath, funcID)
}

func dedupInts(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
