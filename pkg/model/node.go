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

package model

// NodeKind is the closed enumeration of IR entity kinds (§3.1, GLOSSARY).
type NodeKind string

const (
	NodeFile           NodeKind = "file"
	NodeClass          NodeKind = "class"
	NodeInterface      NodeKind = "interface"
	NodeFunction       NodeKind = "function"
	NodeMethod         NodeKind = "method"
	NodeParameter      NodeKind = "parameter"
	NodeVariable       NodeKind = "variable"
	NodeField          NodeKind = "field"
	NodeCall           NodeKind = "call"
	NodeImport         NodeKind = "import"
	NodeBlock          NodeKind = "block"
	NodeTry            NodeKind = "try"
	NodeCatch          NodeKind = "catch"
	NodeFinally        NodeKind = "finally"
	NodeThrow          NodeKind = "throw"
	NodeMatchArm       NodeKind = "match_arm"
	NodeLambda         NodeKind = "lambda"
	NodeChannel        NodeKind = "channel"
	NodeGoroutine      NodeKind = "goroutine"
	NodeLoop           NodeKind = "loop"
	NodeBranch         NodeKind = "branch"
	NodeExpression     NodeKind = "expression"
	NodeTypeDef        NodeKind = "typedef"
	NodeDecorator      NodeKind = "decorator"
	NodeAll            NodeKind = "all" // used only by NodeSelector.ByKind wildcards
)

// Parameter describes one function/method parameter, used by FunctionDescriptor.
type Parameter struct {
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
	Variadic     bool   `json:"variadic,omitempty"`
}

// Descriptor holds the rich, mostly-function/class-shaped optional
// attributes named in §3.1. Every field is optional; zero value means
// "not applicable/not extracted" rather than a parse failure.
type Descriptor struct {
	Parameters  []Parameter `json:"parameters,omitempty"`
	ReturnType  string      `json:"return_type,omitempty"`
	Decorators  []string    `json:"decorators,omitempty"`
	Modifiers   []string    `json:"modifiers,omitempty"`
	Docstring   string      `json:"docstring,omitempty"`
	IsAsync     bool        `json:"is_async,omitempty"`
	IsGenerator bool        `json:"is_generator,omitempty"`
	IsStatic    bool        `json:"is_static,omitempty"`
	IsAbstract  bool        `json:"is_abstract,omitempty"`
}

// Node represents any IR entity: file, class, function, parameter,
// variable, call site, import, control-flow block, try/catch/throw,
// lambda, channel, etc. (§3.1).
type Node struct {
	ID         string         `json:"id"`
	Kind       NodeKind       `json:"kind"`
	FQN        string         `json:"fqn"`
	FilePath   string         `json:"file_path"`
	Span       Span           `json:"span"`
	Language   string         `json:"language"`
	ParentID   string         `json:"parent_id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Descriptor *Descriptor    `json:"descriptor,omitempty"`
	StableID   string         `json:"stable_id,omitempty"`
	ContentHash string        `json:"content_hash,omitempty"`
	Attrs      string         `json:"attrs,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Validate checks invariants N2-N4 against the owning node collection.
// byID is a lookup of every node in the same (repo, snapshot) pair.
func (n Node) Validate(byID map[string]Node) error {
	if !n.Span.Valid() {
		return &AnalysisError{
			Kind:    ErrInvalidInput,
			Message: "node span has start after end: " + n.ID,
		}
	}
	if n.ParentID != "" {
		parent, ok := byID[n.ParentID]
		if !ok {
			return &AnalysisError{
				Kind:    ErrInvalidInput,
				Message: "node parent does not exist: " + n.ID + " -> " + n.ParentID,
			}
		}
		if parent.FilePath != n.FilePath {
			return &AnalysisError{
				Kind:    ErrInvalidInput,
				Message: "node parent is in a different file: " + n.ID,
			}
		}
		if !Contains(parent.Span, n.Span) {
			return &AnalysisError{
				Kind:    ErrInvalidInput,
				Message: "node parent does not contain child span: " + n.ID,
			}
		}
	}
	return nil
}

// IsControlFlow reports whether the node kind is a first-class control-flow
// construct that must be represented as a node rather than encoded only in
// attrs (§4.2 point 4, Design Notes "Expression side tables").
func (k NodeKind) IsControlFlow() bool {
	switch k {
	case NodeTry, NodeCatch, NodeFinally, NodeThrow, NodeMatchArm, NodeLoop, NodeBranch, NodeBlock:
		return true
	}
	return false
}
