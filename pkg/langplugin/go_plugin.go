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
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/codegraph/pkg/model"
)

// GoPlugin extracts IR from Go source via Tree-sitter. It is the primary,
// most complete plugin: besides functions/methods/types/calls/imports it
// also emits SpawnsGoroutine, ChannelSend, and ChannelReceive edges for
// `go` statements and channel operations (§4.2 point 7).
type GoPlugin struct {
	parser *sitter.Parser
}

// NewGoPlugin constructs a ready-to-use Go plugin.
func NewGoPlugin() *GoPlugin {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoPlugin{parser: p}
}

func (p *GoPlugin) Language() string     { return "go" }
func (p *GoPlugin) Extensions() []string { return []string{".go"} }

// goWalkCtx holds per-call mutable state while walking one file's AST.
type goWalkCtx struct {
	in      FileInput
	gen     *model.IDGenerator
	content []byte
	doc     *model.IRDocument
	// simple func/method name -> node ID, for intra-file call resolution;
	// cross-file resolution happens later in pkg/pipeline's L3 stage.
	funcByName map[string]string
	anonCount  int
}

func (p *GoPlugin) ParseFile(in FileInput, gen *model.IDGenerator) (*model.IRDocument, error) {
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
		Language: "go",
		Name:     in.FilePath,
	})

	ctx := &goWalkCtx{
		in:         in,
		gen:        gen,
		content:    in.Content,
		doc:        doc,
		funcByName: make(map[string]string),
	}

	p.extractImports(root, ctx, fileID)
	p.walk(root, ctx, fileID)

	var parseErr error
	if root.HasError() {
		parseErr = model.NewParseError(in.FilePath, fmt.Errorf("go source has syntax errors"))
	}
	return doc, parseErr
}

func (p *GoPlugin) extractImports(root *sitter.Node, ctx *goWalkCtx, fileID string) {
	walkType(root, "import_spec", func(n *sitter.Node) {
		pathNode := n.ChildByFieldName("path")
		if pathNode == nil {
			return
		}
		importPath := strings.Trim(nodeText(ctx.content, pathNode), `"`)
		id := ctx.gen.NextNodeID()
		ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
			ID:       id,
			Kind:     model.NodeImport,
			FQN:      importPath,
			FilePath: ctx.in.FilePath,
			Span:     spanOf(n),
			Language: "go",
			ParentID: fileID,
			Name:     importPath,
		})
		ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: fileID, TargetID: id, Kind: model.EdgeImports})
		ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: fileID, TargetID: id, Kind: model.EdgeContains})
	})
}

// walk recursively visits the AST, emitting function/method/type nodes and
// their Contains edge from the enclosing file or type.
func (p *GoPlugin) walk(n *sitter.Node, ctx *goWalkCtx, parentID string) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "function_declaration":
		p.extractFunction(n, ctx, parentID, false)
	case "method_declaration":
		p.extractFunction(n, ctx, parentID, true)
	case "type_declaration":
		p.extractTypeDecl(n, ctx, parentID)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		p.walk(n.Child(i), ctx, parentID)
	}
}

func (p *GoPlugin) extractTypeDecl(n *sitter.Node, ctx *goWalkCtx, fileID string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		spec := n.Child(i)
		if spec.Type() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nodeText(ctx.content, nameNode)
		typeNode := spec.ChildByFieldName("type")
		kind := model.NodeTypeDef
		if typeNode != nil && typeNode.Type() == "struct_type" {
			kind = model.NodeClass
		} else if typeNode != nil && typeNode.Type() == "interface_type" {
			kind = model.NodeInterface
		}
		id := ctx.gen.NextNodeID()
		ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
			ID:       id,
			Kind:     kind,
			FQN:      ctx.in.FilePath + "#" + name,
			FilePath: ctx.in.FilePath,
			Span:     spanOf(spec),
			Language: "go",
			ParentID: fileID,
			Name:     name,
		})
		ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: fileID, TargetID: id, Kind: model.EdgeContains})

		if kind == model.NodeClass {
			p.extractFields(typeNode, ctx, id)
		}
	}
}

func (p *GoPlugin) extractFields(structType *sitter.Node, ctx *goWalkCtx, parentID string) {
	fieldList := structType.ChildByFieldName("body")
	if fieldList == nil {
		return
	}
	for i := 0; i < int(fieldList.ChildCount()); i++ {
		decl := fieldList.Child(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nodeText(ctx.content, nameNode)
		id := ctx.gen.NextNodeID()
		ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
			ID:       id,
			Kind:     model.NodeField,
			FQN:      ctx.in.FilePath + "#" + name,
			FilePath: ctx.in.FilePath,
			Span:     spanOf(decl),
			Language: "go",
			ParentID: parentID,
			Name:     name,
		})
		ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: parentID, TargetID: id, Kind: model.EdgeContains})
	}
}

func (p *GoPlugin) extractFunction(n *sitter.Node, ctx *goWalkCtx, fileID string, isMethod bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(ctx.content, nameNode)
	kind := model.NodeFunction
	fqn := ctx.in.FilePath + "#" + name

	if isMethod {
		kind = model.NodeMethod
		if recv := n.ChildByFieldName("receiver"); recv != nil {
			if recvType := receiverTypeName(recv, ctx.content); recvType != "" {
				name = recvType + "." + name
				fqn = ctx.in.FilePath + "#" + name
			}
		}
	}

	desc := &model.Descriptor{Parameters: extractParams(n, ctx.content)}
	if result := n.ChildByFieldName("result"); result != nil {
		desc.ReturnType = nodeText(ctx.content, result)
	}

	id := ctx.gen.NextNodeID()
	fnNode := model.Node{
		ID:         id,
		Kind:       kind,
		FQN:        fqn,
		FilePath:   ctx.in.FilePath,
		Span:       spanOf(n),
		Language:   "go",
		ParentID:   fileID,
		Name:       name,
		Descriptor: desc,
	}
	ctx.doc.Nodes = append(ctx.doc.Nodes, fnNode)
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: fileID, TargetID: id, Kind: model.EdgeDefines})
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: fileID, TargetID: id, Kind: model.EdgeContains})

	simpleName := name
	if idx := strings.LastIndex(simpleName, "."); idx >= 0 {
		simpleName = simpleName[idx+1:]
	}
	ctx.funcByName[simpleName] = id

	for _, prm := range desc.Parameters {
		pid := ctx.gen.NextNodeID()
		ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
			ID:       pid,
			Kind:     model.NodeParameter,
			FQN:      fqn + "." + prm.Name,
			FilePath: ctx.in.FilePath,
			Span:     spanOf(n),
			Language: "go",
			ParentID: id,
			Name:     prm.Name,
		})
		ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: id, TargetID: pid, Kind: model.EdgeContains})
	}

	if body := n.ChildByFieldName("body"); body != nil {
		p.extractCallsAndConcurrency(body, ctx, id)
	}
}

// extractCallsAndConcurrency walks a function body emitting Calls edges,
// and the Go-specific goroutine/channel edges named in §4.2 point 7.
func (p *GoPlugin) extractCallsAndConcurrency(body *sitter.Node, ctx *goWalkCtx, callerID string) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "call_expression":
			p.extractCall(n, ctx, callerID)
		case "go_statement":
			p.extractGoroutine(n, ctx, callerID)
		case "send_statement":
			p.extractChannelSend(n, ctx, callerID)
		case "unary_expression":
			if op := n.ChildByFieldName("operator"); op != nil && op.Type() == "<-" {
				if chanNode := n.ChildByFieldName("operand"); chanNode != nil {
					chanName := nodeText(ctx.content, chanNode)
					id := ctx.gen.NextNodeID()
					ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
						ID: id, Kind: model.NodeChannel, FQN: ctx.in.FilePath + "#" + chanName,
						FilePath: ctx.in.FilePath, Span: spanOf(n), Language: "go", Name: chanName,
					})
					ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: callerID, TargetID: id, Kind: model.EdgeChannelReceive})
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(body)
}

func (p *GoPlugin) extractCall(n *sitter.Node, ctx *goWalkCtx, callerID string) {
	fnNode := n.ChildByFieldName("function")
	if fnNode == nil {
		return
	}
	calleeName := nodeText(ctx.content, fnNode)
	if idx := strings.LastIndex(calleeName, "."); idx >= 0 {
		calleeName = calleeName[idx+1:]
	}
	targetID, known := ctx.funcByName[calleeName]
	if !known {
		// Unresolved at file scope; pkg/pipeline's L3 cross-file
		// resolution stage reconciles these against the symbol table.
		targetID = "unresolved:" + calleeName
	}
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{
		SourceID: callerID,
		TargetID: targetID,
		Kind:     model.EdgeCalls,
		Span:     spanPtr(n),
	})
}

func (p *GoPlugin) extractGoroutine(n *sitter.Node, ctx *goWalkCtx, callerID string) {
	id := ctx.gen.NextNodeID()
	ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
		ID:       id,
		Kind:     model.NodeGoroutine,
		FQN:      ctx.in.FilePath + "#goroutine",
		FilePath: ctx.in.FilePath,
		Span:     spanOf(n),
		Language: "go",
		ParentID: callerID,
	})
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: callerID, TargetID: id, Kind: model.EdgeContains})
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: callerID, TargetID: id, Kind: model.EdgeSpawnsGoroutine})
}

func (p *GoPlugin) extractChannelSend(n *sitter.Node, ctx *goWalkCtx, callerID string) {
	chanNode := n.ChildByFieldName("channel")
	if chanNode == nil {
		return
	}
	chanName := nodeText(ctx.content, chanNode)
	id := ctx.gen.NextNodeID()
	ctx.doc.Nodes = append(ctx.doc.Nodes, model.Node{
		ID:       id,
		Kind:     model.NodeChannel,
		FQN:      ctx.in.FilePath + "#" + chanName,
		FilePath: ctx.in.FilePath,
		Span:     spanOf(n),
		Language: "go",
		Name:     chanName,
	})
	ctx.doc.Edges = append(ctx.doc.Edges, model.Edge{SourceID: callerID, TargetID: id, Kind: model.EdgeChannelSend})
}

func extractParams(fnNode *sitter.Node, content []byte) []model.Parameter {
	paramsNode := fnNode.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var out []model.Parameter
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		decl := paramsNode.Child(i)
		if decl.Type() != "parameter_declaration" && decl.Type() != "variadic_parameter_declaration" {
			continue
		}
		typeNode := decl.ChildByFieldName("type")
		typ := ""
		if typeNode != nil {
			typ = nodeText(content, typeNode)
		}
		variadic := decl.Type() == "variadic_parameter_declaration"
		foundName := false
		for j := 0; j < int(decl.ChildCount()); j++ {
			child := decl.Child(j)
			if child.Type() == "identifier" {
				out = append(out, model.Parameter{Name: nodeText(content, child), Type: typ, Variadic: variadic})
				foundName = true
			}
		}
		if !foundName && typ != "" {
			out = append(out, model.Parameter{Type: typ, Variadic: variadic})
		}
	}
	return out
}

func receiverTypeName(recv *sitter.Node, content []byte) string {
	for i := 0; i < int(recv.ChildCount()); i++ {
		child := recv.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		typeNode := child.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		name := nodeText(content, typeNode)
		name = strings.TrimPrefix(name, "*")
		if idx := strings.Index(name, "["); idx > 0 {
			name = name[:idx]
		}
		return name
	}
	return ""
}

// walkType visits every descendant of n whose grammar type equals typ.
func walkType(n *sitter.Node, typ string, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	if n.Type() == typ {
		fn(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkType(n.Child(i), typ, fn)
	}
}

func nodeText(content []byte, n *sitter.Node) string {
	return string(content[n.StartByte():n.EndByte()])
}

func spanOf(n *sitter.Node) model.Span {
	return model.Span{
		StartLine: int(n.StartPoint().Row) + 1,
		StartCol:  int(n.StartPoint().Column) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		EndCol:    int(n.EndPoint().Column) + 1,
	}
}

func spanPtr(n *sitter.Node) *model.Span {
	s := spanOf(n)
	return &s
}
