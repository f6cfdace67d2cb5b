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

// AccessLocation pins one of a race's two conflicting accesses to a file
// and line.
type AccessLocation struct {
	FilePath   string
	Line       int
	AccessType AccessType
}

// AwaitPoint is a suspension point within the function being analyzed —
// any one of them lying between two accesses lets the scheduler
// interleave another task's access in between.
type AwaitPoint struct {
	FilePath     string
	Line         int
	AwaitExpr    string
	FunctionName string
}

// LockRegion is a source range believed to hold a lock (an `async with
// lock:`-shaped block, or any node matching a recognized lock pattern).
type LockRegion struct {
	LockVar       string
	FilePath      string
	StartLine     int
	EndLine       int
	ProtectedVars map[string]bool
}

// ContainsLine reports whether line falls within the region.
func (r LockRegion) ContainsLine(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// RaceCondition is one detected shared-variable race: two accesses to the
// same variable, not fully lock-protected, separated by an await point.
type RaceCondition struct {
	Variable     string
	AccessA      AccessLocation
	AccessB      AccessLocation
	AwaitPoints  []AwaitPoint
	LockRegions  []LockRegion
	FilePath     string
	FunctionFQN  string
}

// NewRaceCondition builds a RaceCondition from its detected parts.
func NewRaceCondition(variable string, a, b AccessLocation, awaitPoints []AwaitPoint, lockRegions []LockRegion, filePath, functionFQN string) RaceCondition {
	return RaceCondition{
		Variable:    variable,
		AccessA:     a,
		AccessB:     b,
		AwaitPoints: awaitPoints,
		LockRegions: lockRegions,
		FilePath:    filePath,
		FunctionFQN: functionFQN,
	}
}
