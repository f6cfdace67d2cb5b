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
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/codegraph/pkg/model"
)

// TypeScriptPlugin extracts IR from TypeScript/JavaScript source. It
// covers function declarations, arrow-function variable bindings, and
// class declarations, including Captures edges for closures (§4.2
// point 7's generalization of "lambda" constructs beyond Kotlin).
type TypeScriptPlugin struct {
	parser *sitter.Parser
}

func NewTypeScriptPlugin() *TypeScriptPlugin {
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())
	return &TypeScriptPlugin{parser: p}
}

func (p *TypeScriptPlugin) Language() string     { return "typescript" }
func (p *TypeScriptPlugin) Extensions() []string { return []string{".ts", ".tsx"} }

func (p *TypeScriptPlugin) ParseFile(in FileInput, gen *model.IDGenerator) (*model.IRDocument, error) {
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
		Language: "typescript",
		Name:     in.FilePath,
	})

	ctx := &goWalkCtx{in: in, gen: gen, content: in.Content, doc: doc, funcByName: make(map[string]string)}
	p.walk(root, ctx, fileID)

	var parseErr error
	if root.HasError() {
		parseErr = model.NewParseError(in.FilePath, fmt.Errorf("typescript source has syntax errors"))
	}
	return doc, parseErr
}

func (p *TypeScriptPlugin) walk(n *sitter.Node, ctx *goWalkCtx, parentID string) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_declaration":
		p.extractFunction(n, ctx, parentID, n.ChildByFieldName("name"))
	case "class_declaration":
		p.extractClass(n, ctx, parentID)
		return // class body handled by extractClass
	case "variable_declarator":
		if val := n.ChildByFieldName("value"); val != nil &&
			(val.Type() == "arrow_function" || val.Type() == "function_expression") {
			p.extractFunction(val, ctx, parentID, n.ChildByFieldName("name"))
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		p.walk(n.Child(i), ctx, parentID)
	}
}

func (p *TypeScriptPlugin) extractClass(n *sitter.Node, ctx *goWalkCtx, fileID string) {
	nameNode := n.ChildByFieldName("name")
	name := "$anon_class"
	if nameNode != nil {
		name = nodeText(ctx.content, nameNode)
	}
	id := ctx.gen.NextNodeID()
	ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
		ID:       id,
		Kind:     model.NodeClass,
		FQN:      ctx.in.FilePath + "#" + name,
		FilePath: ctx.in.FilePath,
		Span:     spanOf(n),
		Language: "typescript",
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
		if member.Type() == "method_definition" {
			p.extractFunction(member, ctx, id, member.ChildByFieldName("name"))
		}
	}
}

func (p *TypeScriptPlugin) extractFunction(n *sitter.Node, ctx *goWalkCtx, parentID string, nameNode *sitter.Node) {
	name := "$anon_func"
	if nameNode != nil {
		name = nodeText(ctx.content, nameNode)
	} else {
		ctx.anonCount++
		name = fmt.Sprintf("$anon_%d", ctx.anonCount)
	}
	kind := model.NodeFunction
	if n.Type() == "method_definition" {
		kind = model.NodeMethod
	} else if n.Type() == "arrow_function" {
		kind = model.NodeLambda
	}

	desc := &model.Descriptor{Parameters: extractTSParams(n, ctx.content)}
	isAsync := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "async" {
			isAsync = true
		}
	}
	desc.IsAsync = isAsync

	id := ctx.gen.NextNodeID()
	ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
		ID:         id,
		Kind:       kind,
		FQN:        ctx.in.FilePath + "#" + name,
		FilePath:   ctx.in.FilePath,
		Span:       spanOf(n),
		Language:   "typescript",
		ParentID:   parentID,
		Name:       name,
		Descriptor: desc,
	})
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: parentID, TargetID: id, Kind: model.EdgeDefines})
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: parentID, TargetID: id, Kind: model.EdgeContains})
	ctx.funcByName[name] = id

	if kind == model.NodeLambda {
		ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: parentID, TargetID: id, Kind: model.EdgeCaptures})
	}

	if body := n.ChildByFieldName("body"); body != nil {
		p.extractCalls(body, ctx, id)
	}
}

func (p *TypeScriptPlugin) extractCalls(body *sitter.Node, ctx *goWalkCtx, callerID string) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call_expression" {
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

func extractTSParams(fnNode *sitter.Node, content []byte) []model.Parameter {
	paramsNode := fnNode.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var out []model.Parameter
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		decl := paramsNode.Child(i)
		switch decl.Type() {
		case "required_parameter", "optional_parameter":
			nameNode := decl.ChildByFieldName("pattern")
			typeNode := decl.ChildByFieldName("type")
			prm := model.Parameter{}
			if nameNode != nil {
				prm.Name = nodeText(content, nameNode)
			}
			if typeNode != nil {
				prm.Type = nodeText(content, typeNode)
			}
			out = append(out, prm)
		}
	}
	return out
}
