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

// Package testing provides test helpers for codegraph integration tests.
//
// It wraps pkg/storage's embedded bbolt backend with seeding and query
// utilities so tests can build a small graph without hand-writing
// model.Node/model.Edge literals.
//
// # Quick Start
//
// Use SetupTestBackend to create a temp-dir-backed embedded backend:
//
//	func TestMyFeature(t *testing.T) {
//	    backend := testing.SetupTestBackend(t)
//
//	    testing.InsertTestFunction(t, backend, "func1", "TestFunc", "test.go", 10, 20)
//
//	    funcs := testing.QueryFunctions(t, backend)
//	    require.Len(t, funcs, 1)
//	}
//
// # Seeding Test Data
//
// The package provides helpers for inserting common test entities:
//   - InsertTestFunction: Add a function node
//   - InsertTestFile: Add a file node
//   - InsertTestType: Add a type (struct/interface) node
//   - InsertTestDefines: Link a file to a function
//   - InsertTestCalls: Link caller to callee
//   - InsertTestImport: Record an import statement
//
// # Querying Test Data
//
// Helper functions for common queries:
//   - QueryFunctions: Get all function nodes
//   - QueryFiles: Get all file nodes
//   - QueryTypes: Get all class/interface nodes
package testing
