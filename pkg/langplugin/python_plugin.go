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

package langplugin

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/codegraph/pkg/model"
)

// PythonPlugin extracts IR from Python source. Decorators, async defs, and
// class bodies are handled explicitly since Python's decorator and async
// syntax have no direct Go equivalent for the Descriptor fields they feed
// (§3.1's IsAsync/Decorators).
type PythonPlugin struct {
	parser *sitter.Parser
}

func NewPythonPlugin() *PythonPlugin {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonPlugin{parser: p}
}

func (p *PythonPlugin) Language() string     { return "python" }
func (p *PythonPlugin) Extensions() []string { return []string{".py"} }

func (p *PythonPlugin) ParseFile(in FileInput, gen *model.IDGenerator) (*model.IRDocument, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, in.Content)
	if err != nil {
		return nil, model.NewParseError(in.FilePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	doc := &model.IRDocument{}
	fileID := gen.NextNodeID()
	doc.Nodes = append(doc.Nodes, model.Node{
		ID:       fileID,
		Kind:     model.NodeFile,
		FQN:      in.FilePath,
		FilePath: in.FilePath,
		Span:     spanOf(root),
		Language: "python",
		Name:     in.FilePath,
	})

	ctx := &goWalkCtx{in: in, gen: gen, content: in.Content, doc: doc, funcByName: make(map[string]string)}
	p.walk(root, ctx, fileID)

	var parseErr error
	if root.HasError() {
		parseErr = model.NewParseError(in.FilePath, fmt.Errorf("python source has syntax errors"))
	}
	return doc, parseErr
}

func (p *PythonPlugin) walk(n *sitter.Node, ctx *goWalkCtx, parentID string) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "class_definition":
		p.extractClass(n, ctx, parentID)
		return
	case "function_definition":
		p.extractFunction(n, ctx, parentID, false)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		p.walk(n.Child(i), ctx, parentID)
	}
}

func (p *PythonPlugin) extractClass(n *sitter.Node, ctx *goWalkCtx, fileID string) {
	nameNode := n.ChildByFieldName("name")
	name := nodeText(ctx.content, nameNode)
	id := ctx.gen.NextNodeID()
	ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
		ID:       id,
		Kind:     model.NodeClass,
		FQN:      ctx.in.FilePath + "#" + name,
		FilePath: ctx.in.FilePath,
		Span:     spanOf(n),
		Language: "python",
		ParentID: fileID,
		Name:     name,
	})
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: fileID, TargetID: id, Kind: model.EdgeContains})

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		if member.Type() == "function_definition" {
			p.extractFunction(member, ctx, id, true)
		}
	}
}

func (p *PythonPlugin) extractFunction(n *sitter.Node, ctx *goWalkCtx, parentID string, isMethod bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(ctx.content, nameNode)
	kind := model.NodeFunction
	if isMethod {
		kind = model.NodeMethod
	}

	isAsync := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "async" {
			isAsync = true
		}
	}

	decorators := extractPyDecorators(n, ctx)

	desc := &model.Descriptor{
		Parameters: extractPyParams(n, ctx.content),
		IsAsync:    isAsync,
		Decorators: decorators,
		IsStatic:   containsString(decorators, "staticmethod"),
	}

	id := ctx.gen.NextNodeID()
	ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
		ID:         id,
		Kind:       kind,
		FQN:        ctx.in.FilePath + "#" + name,
		FilePath:   ctx.in.FilePath,
		Span:       spanOf(n),
		Language:   "python",
		ParentID:   parentID,
		Name:       name,
		Descriptor: desc,
	})
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: parentID, TargetID: id, Kind: model.EdgeDefines})
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: parentID, TargetID: id, Kind: model.EdgeContains})
	ctx.funcByName[name] = id

	for _, dec := range decorators {
		did := ctx.gen.NextNodeID()
		ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
			ID: did, Kind: model.NodeDecorator, FQN: ctx.in.FilePath + "#" + dec,
			FilePath: ctx.in.FilePath, Span: spanOf(n), Language: "python", Name: dec,
		})
		ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: id, TargetID: did, Kind: model.EdgeAnnotatedWith})
	}

	if body := n.ChildByFieldName("body"); body != nil {
		p.extractCalls(body, ctx, id)
	}
}

func (p *PythonPlugin) extractCalls(body *sitter.Node, ctx *goWalkCtx, callerID string) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call" {
			if fnNode := n.ChildByFieldName("function"); fnNode != nil {
				calleeName := nodeText(ctx.content, fnNode)
				if idx := strings.LastIndex(calleeName, "."); idx >= 0 {
					calleeName = calleeName[idx+1:]
				}
				targetID, known := ctx.funcByName[calleeName]
				if !known {
					targetID = "unresolved:" + calleeName
				}
				ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{
					SourceID: callerID, TargetID: targetID, Kind: model.EdgeCalls, Span: spanPtr(n),
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(body)
}

func extractPyDecorators(fnNode *sitter.Node, ctx *goWalkCtx) []string {
	parent := fnNode.Parent()
	if parent == nil || parent.Type() != "decorated_definition" {
		return nil
	}
	var out []string
	for i := 0; i < int(parent.ChildCount()); i++ {
		c := parent.Child(i)
		if c.Type() == "decorator" {
			name := strings.TrimPrefix(nodeText(ctx.content, c), "@")
			if idx := strings.Index(name, "("); idx >= 0 {
				name = name[:idx]
			}
			out = append(out, strings.TrimSpace(name))
		}
	}
	return out
}

func extractPyParams(fnNode *sitter.Node, content []byte) []model.Parameter {
	paramsNode := fnNode.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var out []model.Parameter
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		decl := paramsNode.Child(i)
		switch decl.Type() {
		case "identifier":
			out = append(out, model.Parameter{Name: nodeText(content, decl)})
		case "typed_parameter":
			nameNode := decl.Child(0)
			typeNode := decl.ChildByFieldName("type")
			prm := model.Parameter{}
			if nameNode != nil {
				prm.Name = nodeText(content, nameNode)
			}
			if typeNode != nil {
				prm.Type = nodeText(content, typeNode)
			}
			out = append(out, prm)
		case "default_parameter":
			nameNode := decl.ChildByFieldName("name")
			valueNode := decl.ChildByFieldName("value")
			prm := model.Parameter{}
			if nameNode != nil {
				prm.Name = nodeText(content, nameNode)
			}
			if valueNode != nil {
				prm.DefaultValue = nodeText(content, valueNode)
			}
			out = append(out, prm)
		}
	}
	return out
}

func containsString(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
