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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestBackend(t *testing.T) {
	backend := SetupTestBackend(t)

	require.NotNil(t, backend)

	functions := QueryFunctions(t, backend)
	assert.Empty(t, functions, "should start with no functions")
}

func TestInsertTestFunction(t *testing.T) {
	backend := SetupTestBackend(t)

	InsertTestFunction(t, backend, "func_123", "HandleAuth", "auth.go", 10, 25)

	functions := QueryFunctions(t, backend)
	require.Len(t, functions, 1)
	assert.Equal(t, "func_123", functions[0].ID)
	assert.Equal(t, "HandleAuth", functions[0].Name)
}

func TestInsertTestFile(t *testing.T) {
	backend := SetupTestBackend(t)

	InsertTestFile(t, backend, "file_123", "auth.go", "abc123", "go", 1234)

	files := QueryFiles(t, backend)
	require.Len(t, files, 1)
	assert.Equal(t, "file_123", files[0].ID)
	assert.Equal(t, "auth.go", files[0].Name)
}

func TestInsertTestType(t *testing.T) {
	backend := SetupTestBackend(t)

	InsertTestType(t, backend, "type_123", "UserService", "struct", "user.go", 10, 50)

	types := QueryTypes(t, backend)
	require.Len(t, types, 1)
	assert.Equal(t, "type_123", types[0].ID)
	assert.Equal(t, "UserService", types[0].Name)
}

func TestMultipleInserts(t *testing.T) {
	backend := SetupTestBackend(t)

	InsertTestFunction(t, backend, "func1", "Main", "main.go", 5, 10)
	InsertTestFunction(t, backend, "func2", "Helper", "util.go", 15, 20)
	InsertTestFunction(t, backend, "func3", "Process", "processor.go", 25, 35)

	functions := QueryFunctions(t, backend)
	require.Len(t, functions, 3)
}

func TestEdgeInsertion(t *testing.T) {
	backend := SetupTestBackend(t)

	InsertTestFile(t, backend, "file1", "main.go", "hash1", "go", 100)
	InsertTestFunction(t, backend, "func1", "main", "main.go", 1, 10)
	InsertTestFunction(t, backend, "func2", "helper", "main.go", 12, 15)

	InsertTestDefines(t, backend, "file1", "func1")
	InsertTestCalls(t, backend, "func1", "func2")
}

func TestBackendIsolation(t *testing.T) {
	backend1 := SetupTestBackend(t)
	InsertTestFunction(t, backend1, "func1", "Test1", "file1.go", 1, 10)

	backend2 := SetupTestBackend(t)
	functions2 := QueryFunctions(t, backend2)
	assert.Empty(t, functions2, "second backend should be isolated from first")

	functions1 := QueryFunctions(t, backend1)
	assert.Len(t, functions1, 1)
}
