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

package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/model"
)

func memErr(t *testing.T, err error) *model.AnalysisError {
	t.Helper()
	var ae *model.AnalysisError
	require.ErrorAs(t, err, &ae)
	return ae
}

func TestMemory_StackAllocationBindsVariable(t *testing.T) {
	m := New()
	addr := m.AllocStack("x", 8)
	assert.Equal(t, AddrConcrete, addr.Kind)
	bound, ok := m.GetVariable("x")
	require.True(t, ok)
	assert.Equal(t, addr, bound)
}

func TestMemory_WriteThenRead(t *testing.T) {
	m := New()
	addr := m.AllocStack("arr", 32)
	require.NoError(t, m.Write(addr, IntValue(42), "t:1"))
	v, err := m.Read(addr, "t:2")
	require.NoError(t, err)
	assert.Equal(t, ValConcreteInt, v.Kind)
	assert.Equal(t, int64(42), v.Int)
}

func TestMemory_NullDereference(t *testing.T) {
	m := New()
	_, err := m.Read(NullAddress(), "t:1")
	require.Error(t, err)
	assert.Equal(t, model.MemNullDeref, memErr(t, err).MemKind)
}

func TestMemory_UseAfterFree(t *testing.T) {
	m := New()
	addr := m.AllocHeap(Concrete(64))
	require.NoError(t, m.Free(addr, "t:1"))
	_, err := m.Read(addr, "t:2")
	require.Error(t, err)
	assert.Equal(t, model.MemUseAfterFree, memErr(t, err).MemKind)
}

func TestMemory_DoubleFree(t *testing.T) {
	m := New()
	addr := m.AllocHeap(Concrete(64))
	require.NoError(t, m.Free(addr, "t:1"))
	err := m.Free(addr, "t:2")
	require.Error(t, err)
	assert.Equal(t, model.MemDoubleFree, memErr(t, err).MemKind)
}

func TestMemory_BufferOverflow(t *testing.T) {
	m := New()
	addr := m.AllocStack("arr", 8)
	bad := ConcreteAddress(addr.Concrete + 100)
	_, err := m.Read(bad, "t:1")
	require.Error(t, err)
	assert.Equal(t, model.MemBufferOverflow, memErr(t, err).MemKind)
}

func TestMemory_FreeNullIsNoop(t *testing.T) {
	m := New()
	assert.NoError(t, m.Free(NullAddress(), "t:1"))
}

func TestMemory_ForkDoesNotMutateParentConstraints(t *testing.T) {
	m := New()
	m.AllocStack("x", 8)
	forked := m.ForkWith(Compare(Symbol("x"), CmpLt, Concrete(10)))
	assert.Empty(t, m.Constraints())
	assert.Len(t, forked.Constraints(), 1)
}

func TestMemory_MergeCombinesPathConditionsWithOr(t *testing.T) {
	a := New()
	addrA := a.AllocStack("y", 8)
	require.NoError(t, a.Write(addrA, IntValue(1), "a:1"))
	a.AddConstraint(Compare(Symbol("x"), CmpGt, Concrete(0)))

	b := New()
	addrB := b.AllocStack("y", 8)
	require.NoError(t, b.Write(addrB, IntValue(2), "b:1"))
	b.AddConstraint(Compare(Symbol("x"), CmpLe, Concrete(0)))

	merged := a.MergeWith(b)
	assert.NotEmpty(t, merged.Constraints())
}

func TestMemory_PointerAliasingSeesSameWrite(t *testing.T) {
	m := New()
	addr := m.AllocHeap(Concrete(64))
	m.SetVariable("ptr1", addr)
	m.SetVariable("ptr2", addr)

	require.NoError(t, m.Write(addr, IntValue(42), "t:1"))
	v, err := m.Read(addr, "t:2")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int)

	p1, _ := m.GetVariable("ptr1")
	p2, _ := m.GetVariable("ptr2")
	assert.Equal(t, p1, p2)
}

func TestMemory_WriteToFreedMemoryFails(t *testing.T) {
	m := New()
	addr := m.AllocHeap(Concrete(64))
	require.NoError(t, m.Free(addr, "t:1"))
	err := m.Write(addr, IntValue(42), "t:2")
	require.Error(t, err)
	assert.Equal(t, model.MemUseAfterFree, memErr(t, err).MemKind)
}
