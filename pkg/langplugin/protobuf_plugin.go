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
	"strings"

	"github.com/kraklabs/codegraph/pkg/model"
)

// ProtobufPlugin extracts services, RPCs, messages, and enums from .proto
// files using simple line-oriented matching rather than Tree-sitter: no
// tree-sitter-proto grammar is bundled in this module, matching the
// teacher's approach to this one language.
type ProtobufPlugin struct{}

func NewProtobufPlugin() *ProtobufPlugin  { return &ProtobufPlugin{} }
func (p *ProtobufPlugin) Language() string { return "protobuf" }
func (p *ProtobufPlugin) Extensions() []string { return []string{".proto"} }

func (p *ProtobufPlugin) ParseFile(in FileInput, gen *model.IDGenerator) (*model.IRDocument, error) {
	content := string(in.Content)
	lines := strings.Split(content, "\n")

	doc := &model.IRDocument{}
	fileID := gen.NextNodeID()
	doc.Nodes = append(doc.Nodes, model.Node{
		ID:       fileID,
		Kind:     model.NodeFile,
		FQN:      in.FilePath,
		FilePath: in.FilePath,
		Span:     model.Span{StartLine: 1, EndLine: len(lines), StartCol: 1, EndCol: 1},
		Language: "protobuf",
		Name:     in.FilePath,
	})

	var currentServiceID string
	var currentServiceName string
	braceDepth := 0

	for i, line := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") {
			continue
		}

		switch {
		case currentServiceID != "" && strings.HasPrefix(trimmed, "rpc "):
			name, _ := extractRPCName(trimmed)
			if name != "" {
				id := gen.NextNodeID()
				doc.Nodes = append(doc.Nodes, model.Node{
					ID: id, Kind: model.NodeFunction,
					FQN: in.FilePath + "#" + currentServiceName + "." + name,
					FilePath: in.FilePath,
					Span:     model.Span{StartLine: lineNum, EndLine: lineNum, StartCol: 1, EndCol: len(line) + 1},
					Language: "protobuf", ParentID: currentServiceID, Name: name,
				})
				doc.Edges = append(doc.Edges, model.Edge{SourceID: currentServiceID, TargetID: id, Kind: model.EdgeContains})
			}

		case strings.HasPrefix(trimmed, "service ") && strings.Contains(trimmed, "{"):
			fields := strings.Fields(trimmed)
			if len(fields) >= 2 {
				currentServiceName = strings.TrimSuffix(fields[1], "{")
				currentServiceID = gen.NextNodeID()
				doc.Nodes = append(doc.Nodes, model.Node{
					ID: currentServiceID, Kind: model.NodeInterface,
					FQN: in.FilePath + "#" + currentServiceName, FilePath: in.FilePath,
					Span:     model.Span{StartLine: lineNum, EndLine: lineNum, StartCol: 1, EndCol: 1},
					Language: "protobuf", ParentID: fileID, Name: currentServiceName,
				})
				doc.Edges = append(doc.Edges, model.Edge{SourceID: fileID, TargetID: currentServiceID, Kind: model.EdgeContains})
			}
			braceDepth = strings.Count(trimmed, "{") - strings.Count(trimmed, "}")

		case strings.HasPrefix(trimmed, "message ") && strings.Contains(trimmed, "{"):
			fields := strings.Fields(trimmed)
			if len(fields) >= 2 {
				name := strings.TrimSuffix(fields[1], "{")
				id := gen.NextNodeID()
				doc.Nodes = append(doc.Nodes, model.Node{
					ID: id, Kind: model.NodeClass, FQN: in.FilePath + "#" + name,
					FilePath: in.FilePath, Span: model.Span{StartLine: lineNum, EndLine: lineNum, StartCol: 1, EndCol: 1},
					Language: "protobuf", ParentID: fileID, Name: name,
				})
				doc.Edges = append(doc.Edges, model.Edge{SourceID: fileID, TargetID: id, Kind: model.EdgeContains})
			}

		case strings.HasPrefix(trimmed, "enum ") && strings.Contains(trimmed, "{"):
			fields := strings.Fields(trimmed)
			if len(fields) >= 2 {
				name := strings.TrimSuffix(fields[1], "{")
				id := gen.NextNodeID()
				doc.Nodes = append(doc.Nodes, model.Node{
					ID: id, Kind: model.NodeTypeDef, FQN: in.FilePath + "#" + name,
					FilePath: in.FilePath, Span: model.Span{StartLine: lineNum, EndLine: lineNum, StartCol: 1, EndCol: 1},
					Language: "protobuf", ParentID: fileID, Name: name,
				})
				doc.Edges = append(doc.Edges, model.Edge{SourceID: fileID, TargetID: id, Kind: model.EdgeContains})
			}
		}

		if currentServiceID != "" {
			braceDepth += strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
			if braceDepth <= 0 && !strings.HasPrefix(trimmed, "service ") {
				currentServiceID = ""
				currentServiceName = ""
			}
		}
	}

	return doc, nil
}

func extractRPCName(line string) (name, signature string) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(line), "rpc ")
	parenIdx := strings.Index(trimmed, "(")
	if parenIdx == -1 {
		return "", ""
	}
	name = strings.TrimSpace(trimmed[:parenIdx])
	return name, "rpc " + trimmed
}
