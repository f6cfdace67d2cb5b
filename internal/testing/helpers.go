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

package testing

import (
	"context"
	"testing"

	"github.com/kraklabs/codegraph/pkg/model"
	"github.com/kraklabs/codegraph/pkg/storage"
)

// SetupTestBackend creates an embedded bbolt backend rooted at a fresh
// t.TempDir() for testing. The backend is automatically closed when the
// test finishes.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    backend := testing.SetupTestBackend(t)
//
//	    testing.InsertTestFunction(t, backend, "func1", "TestFunc", "test.go", 10, 20)
//	}
func SetupTestBackend(t *testing.T) *storage.EmbeddedBackend {
	t.Helper()

	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
		DataDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("failed to create test backend: %v", err)
	}

	t.Cleanup(func() {
		_ = backend.Close()
	})

	return backend
}

// InsertTestFunction adds a function node to the database.
// This is a convenience helper for seeding test data.
//
// Example:
//
//	backend := testing.SetupTestBackend(t)
//	testing.InsertTestFunction(t, backend, "func_123", "HandleAuth", "auth.go", 10, 25)
func InsertTestFunction(t *testing.T, backend *storage.EmbeddedBackend, id, name, filePath string, startLine, endLine int) {
	t.Helper()

	node := model.Node{
		ID:       id,
		Kind:     model.NodeFunction,
		Name:     name,
		FQN:      name,
		FilePath: filePath,
		Language: "go",
		Span:     model.Span{StartLine: startLine, StartCol: 0, EndLine: endLine, EndCol: 0},
	}
	if err := backend.SaveNodes(context.Background(), []model.Node{node}); err != nil {
		t.Fatalf("failed to insert test function: %v", err)
	}
}

// InsertTestFunctionWithSignature adds a function node with a descriptor
// carrying a return type, like InsertTestFunction but recording the
// function's declared signature.
//
// Example:
//
//	testing.InsertTestFunctionWithSignature(t, backend,
//	    "func_123", "HandleAuth", "func(r *http.Request) error", "auth.go", 10, 25)
func InsertTestFunctionWithSignature(t *testing.T, backend *storage.EmbeddedBackend, id, name, signature, filePath string, startLine, endLine int) {
	t.Helper()

	node := model.Node{
		ID:       id,
		Kind:     model.NodeFunction,
		Name:     name,
		FQN:      name,
		FilePath: filePath,
		Language: "go",
		Span:     model.Span{StartLine: startLine, StartCol: 0, EndLine: endLine, EndCol: 0},
		Descriptor: &model.Descriptor{
			ReturnType: signature,
		},
	}
	if err := backend.SaveNodes(context.Background(), []model.Node{node}); err != nil {
		t.Fatalf("failed to insert test function with signature: %v", err)
	}
}

// InsertTestFile adds a file node to the database.
// This is a convenience helper for seeding test data.
//
// Example:
//
//	backend := testing.SetupTestBackend(t)
//	testing.InsertTestFile(t, backend, "file_123", "auth.go", "abc123", "go", 1234)
func InsertTestFile(t *testing.T, backend *storage.EmbeddedBackend, id, path, hash, language string, size int64) {
	t.Helper()

	node := model.Node{
		ID:          id,
		Kind:        model.NodeFile,
		Name:        path,
		FQN:         path,
		FilePath:    path,
		Language:    language,
		ContentHash: hash,
	}
	if err := backend.SaveNodes(context.Background(), []model.Node{node}); err != nil {
		t.Fatalf("failed to insert test file: %v", err)
	}
}

// InsertTestType adds a type (struct/interface/class) node to the database.
// This is a convenience helper for seeding test data.
//
// Example:
//
//	backend := testing.SetupTestBackend(t)
//	testing.InsertTestType(t, backend, "type_123", "UserService", "struct", "user.go", 10, 50)
func InsertTestType(t *testing.T, backend *storage.EmbeddedBackend, id, name, kind, filePath string, startLine, endLine int) {
	t.Helper()

	nodeKind := model.NodeClass
	if kind == "interface" {
		nodeKind = model.NodeInterface
	}
	node := model.Node{
		ID:       id,
		Kind:     nodeKind,
		Name:     name,
		FQN:      name,
		FilePath: filePath,
		Language: "go",
		Span:     model.Span{StartLine: startLine, StartCol: 0, EndLine: endLine, EndCol: 0},
	}
	if err := backend.SaveNodes(context.Background(), []model.Node{node}); err != nil {
		t.Fatalf("failed to insert test type: %v", err)
	}
}

// InsertTestDefines adds a Defines edge (file -> function) to the database.
// This links a file to a function it defines.
//
// Example:
//
//	testing.InsertTestDefines(t, backend, "file_123", "func_123")
func InsertTestDefines(t *testing.T, backend *storage.EmbeddedBackend, fileID, functionID string) {
	t.Helper()

	edge := model.Edge{SourceID: fileID, TargetID: functionID, Kind: model.EdgeDefines}
	if err := backend.SaveEdges(context.Background(), []model.Edge{edge}); err != nil {
		t.Fatalf("failed to insert defines edge: %v", err)
	}
}

// InsertTestCalls adds a Calls edge (caller -> callee) to the database.
// This links a caller function to a callee function.
//
// Example:
//
//	testing.InsertTestCalls(t, backend, "caller_func_id", "callee_func_id")
func InsertTestCalls(t *testing.T, backend *storage.EmbeddedBackend, callerID, calleeID string) {
	t.Helper()

	edge := model.Edge{SourceID: callerID, TargetID: calleeID, Kind: model.EdgeCalls}
	if err := backend.SaveEdges(context.Background(), []model.Edge{edge}); err != nil {
		t.Fatalf("failed to insert calls edge: %v", err)
	}
}

// InsertTestImport adds an import node plus the Imports edge linking it
// to its owning file.
//
// Example:
//
//	testing.InsertTestImport(t, backend, "import_123", "file_123", "fmt", 1)
func InsertTestImport(t *testing.T, backend *storage.EmbeddedBackend, id, fileID, importPath string, startLine int) {
	t.Helper()

	ctx := context.Background()
	node := model.Node{
		ID:       id,
		Kind:     model.NodeImport,
		Name:     importPath,
		FQN:      importPath,
		Language: "go",
		Span:     model.Span{StartLine: startLine, StartCol: 0, EndLine: startLine, EndCol: 0},
	}
	if err := backend.SaveNodes(ctx, []model.Node{node}); err != nil {
		t.Fatalf("failed to insert import node: %v", err)
	}
	edge := model.Edge{SourceID: fileID, TargetID: id, Kind: model.EdgeImports}
	if err := backend.SaveEdges(ctx, []model.Edge{edge}); err != nil {
		t.Fatalf("failed to insert import edge: %v", err)
	}
}

// QueryFunctions is a helper to list every function node in the backend.
//
// Example:
//
//	functions := testing.QueryFunctions(t, backend)
//	require.Len(t, functions, 2)
func QueryFunctions(t *testing.T, backend *storage.EmbeddedBackend) []model.Node {
	t.Helper()

	nodes, err := backend.ListNodes(context.Background(), "", "", model.NodeFunction)
	if err != nil {
		t.Fatalf("failed to query functions: %v", err)
	}
	return nodes
}

// QueryFiles is a helper to list every file node in the backend.
//
// Example:
//
//	files := testing.QueryFiles(t, backend)
//	require.Len(t, files, 1)
func QueryFiles(t *testing.T, backend *storage.EmbeddedBackend) []model.Node {
	t.Helper()

	nodes, err := backend.ListNodes(context.Background(), "", "", model.NodeFile)
	if err != nil {
		t.Fatalf("failed to query files: %v", err)
	}
	return nodes
}

// QueryTypes is a helper to list every class/interface node in the backend.
//
// Example:
//
//	types := testing.QueryTypes(t, backend)
//	require.Len(t, types, 1)
func QueryTypes(t *testing.T, backend *storage.EmbeddedBackend) []model.Node {
	t.Helper()

	nodes, err := backend.ListNodes(context.Background(), "", "", model.NodeClass, model.NodeInterface)
	if err != nil {
		t.Fatalf("failed to query types: %v", err)
	}
	return nodes
}
