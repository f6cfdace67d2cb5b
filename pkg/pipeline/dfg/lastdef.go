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

package dfg

// Tag distinguishes how an expression defined a variable: by a call's
// return value (Assign) or by a plain copy (Alias).
type Tag string

const (
	Assign Tag = "ASSIGN"
	Alias  Tag = "ALIAS"
)

// Expr is one program-order expression the last-def pass consumes: the
// variables it reads, the variables it defines, and whether the
// definition (if any) came from a call.
type Expr struct {
	ID      string
	Reads   []string
	Defines []string
	IsCall  bool
}

// Edge is one last-def data-flow edge: from the expression that last
// defined a variable to the expression that next read it, tagged with how
// that definition arose.
type Edge struct {
	FromExprID string
	ToExprID   string
	Variable   string
	Tag        Tag
}

type lastDef struct {
	exprID string
	tag    Tag
}

// Build runs the last-def algorithm over exprs in program order (§4.3.3),
// returning one Edge per (read, its most recent definition) pair. Complexity
// is linear in the number of (expression, variable) occurrences.
func Build(exprs []Expr) []Edge {
	last := make(map[string]lastDef)
	var edges []Edge

	for _, e := range exprs {
		for _, v := range e.Reads {
			if ld, ok := last[v]; ok {
				edges = append(edges, Edge{FromExprID: ld.exprID, ToExprID: e.ID, Variable: v, Tag: ld.tag})
			}
		}
		tag := Alias
		if e.IsCall {
			tag = Assign
		}
		for _, v := range e.Defines {
			last[v] = lastDef{exprID: e.ID, tag: tag}
		}
	}

	return edges
}
