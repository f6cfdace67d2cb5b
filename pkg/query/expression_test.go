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

package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/model"
)

func TestNewNumber_RejectsNaN(t *testing.T) {
	_, err := NewNumber(math.NaN())
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrNaNInLiteral))
}

func TestExpression_CanonicalizeIsOrderIndependent(t *testing.T) {
	a := NewObject(map[string]Expression{"b": NewString("x"), "a": NewString("y")})
	b := NewObject(map[string]Expression{"a": NewString("y"), "b": NewString("x")})
	assert.Equal(t, a.Canonicalize(), b.Canonicalize())
	assert.True(t, a.Equal(b))
}

func TestExpression_StableHashDeterministic(t *testing.T) {
	e := NewList(NewString("a"), NewBool(true))
	h1 := e.StableHash()
	h2 := e.StableHash()
	assert.Equal(t, h1, h2)

	other := NewList(NewString("a"), NewBool(false))
	assert.NotEqual(t, h1, other.StableHash())
}
