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
	"fmt"
	"sort"

	"github.com/kraklabs/codegraph/pkg/model"
)

const firstHeapAddress = 0x1000

// defaultSymbolicAllocSize is used when a heap allocation's requested
// size isn't concretely known: allocate worst-case so bounds checks
// still have something to compare against.
const defaultSymbolicAllocSize = 1024

// Memory is a KLEE-style symbolic memory state: an object store plus an
// address space mapping base addresses to objects, with accumulated path
// conditions describing which symbolic inputs reach this state.
type Memory struct {
	objects       map[ObjectID]*MemoryObject
	addrToObject  map[uint64]ObjectID
	sortedAddrs   []uint64 // kept sorted ascending for floor lookups
	variables     map[string]Address
	pathConds     []PathCondition
	nextObjectID  ObjectID
	nextAddress   uint64
}

// New creates an empty memory state with heap allocations starting at a
// fixed base address (0x1000), mirroring the convention of reserving the
// low addresses as invalid/null territory.
func New() *Memory {
	return &Memory{
		objects:      make(map[ObjectID]*MemoryObject),
		addrToObject: make(map[uint64]ObjectID),
		variables:    make(map[string]Address),
		nextObjectID: 1,
		nextAddress:  firstHeapAddress,
	}
}

func (m *Memory) insertObject(addr uint64, obj *MemoryObject) {
	m.objects[obj.ID] = obj
	if _, exists := m.addrToObject[addr]; !exists {
		i := sort.SearchInts(m.intAddrs(), int(addr))
		m.sortedAddrs = append(m.sortedAddrs, 0)
		copy(m.sortedAddrs[i+1:], m.sortedAddrs[i:])
		m.sortedAddrs[i] = addr
	}
	m.addrToObject[addr] = obj.ID
}

// intAddrs is a throwaway conversion helper so sort.SearchInts can be
// reused instead of hand-rolling a uint64 binary search.
func (m *Memory) intAddrs() []int {
	out := make([]int, len(m.sortedAddrs))
	for i, a := range m.sortedAddrs {
		out[i] = int(a)
	}
	return out
}

// floorObject finds the object whose base address is the greatest one
// <= addr (the object that would contain addr if it's an interior
// offset rather than exactly the base).
func (m *Memory) floorObject(addr uint64) (ObjectID, bool) {
	if id, ok := m.addrToObject[addr]; ok {
		return id, true
	}
	i := sort.Search(len(m.sortedAddrs), func(i int) bool { return m.sortedAddrs[i] > addr })
	if i == 0 {
		return 0, false
	}
	return m.addrToObject[m.sortedAddrs[i-1]], true
}

// AllocStack allocates a named local variable of the given size.
func (m *Memory) AllocStack(name string, size int64) Address {
	id := m.nextObjectID
	m.nextObjectID++
	address := m.nextAddress
	m.nextAddress += uint64(size)

	obj := newStackObject(id, name, size, address)
	m.insertObject(address, obj)

	addr := ConcreteAddress(address)
	m.variables[name] = addr
	return addr
}

// AllocHeap allocates an anonymous heap object of the given (possibly
// symbolic) size.
func (m *Memory) AllocHeap(size SymbolicExpr) Address {
	id := m.nextObjectID
	m.nextObjectID++
	address := m.nextAddress

	allocSize, ok := size.AsConcrete()
	if !ok {
		allocSize = defaultSymbolicAllocSize
	}
	m.nextAddress += uint64(allocSize)

	obj := newHeapObject(id, fmt.Sprintf("heap_%d", id), size, address)
	obj.AllocSite = "alloc"
	m.insertObject(address, obj)

	return ConcreteAddress(address)
}

// MakeSymbolic creates a purely symbolic object (e.g. a function
// argument) with no concrete address.
func (m *Memory) MakeSymbolic(name string, size SymbolicExpr) Address {
	id := m.nextObjectID
	m.nextObjectID++

	obj := newSymbolicObject(id, name, size)
	m.objects[id] = obj

	addr := SymbolicAddress(id, Concrete(0))
	m.variables[name] = addr
	return addr
}

// Free marks a heap object as freed. free(NULL) is a permitted no-op.
func (m *Memory) Free(addr Address, location string) error {
	switch addr.Kind {
	case AddrNull:
		return nil
	case AddrConcrete:
		id, ok := m.floorObject(addr.Concrete)
		if !ok {
			return model.NewMemoryError(model.MemInvalidPointer, location)
		}
		obj, ok := m.objects[id]
		if !ok {
			return model.NewMemoryError(model.MemInvalidPointer, location)
		}
		if obj.IsFreed {
			return model.NewMemoryError(model.MemDoubleFree, location)
		}
		if !obj.IsHeap {
			return model.NewMemoryError(model.MemInvalidPointer, location)
		}
		freed := obj.clone()
		freed.IsFreed = true
		m.objects[id] = freed
		return nil
	case AddrSymbolic:
		obj, ok := m.objects[addr.BaseObject]
		if !ok {
			return model.NewMemoryError(model.MemInvalidPointer, location)
		}
		if obj.IsFreed {
			return model.NewMemoryError(model.MemDoubleFree, location)
		}
		freed := obj.clone()
		freed.IsFreed = true
		m.objects[addr.BaseObject] = freed
		return nil
	default:
		return model.NewMemoryError(model.MemInvalidPointer, location)
	}
}

// Read loads a value from addr.
func (m *Memory) Read(addr Address, location string) (Value, error) {
	switch addr.Kind {
	case AddrNull:
		return Value{}, model.NewMemoryError(model.MemNullDeref, location)
	case AddrConcrete:
		id, ok := m.floorObject(addr.Concrete)
		if !ok {
			return Value{}, model.NewMemoryError(model.MemInvalidPointer, location)
		}
		obj := m.objects[id]
		if obj.IsFreed {
			return Value{}, model.NewMemoryError(model.MemUseAfterFree, location)
		}
		offset := int64(addr.Concrete - obj.Address)
		if inBounds := obj.IsInBounds(offset); inBounds != nil && !*inBounds {
			return Value{}, model.NewMemoryError(model.MemBufferOverflow, location)
		}
		return obj.Read(offset), nil
	case AddrSymbolic:
		obj, ok := m.objects[addr.BaseObject]
		if !ok {
			return Value{}, model.NewMemoryError(model.MemInvalidPointer, location)
		}
		if obj.IsFreed {
			return Value{}, model.NewMemoryError(model.MemUseAfterFree, location)
		}
		if off, ok := addr.Offset.AsConcrete(); ok {
			return obj.Read(off), nil
		}
		return SymbolicValue(Symbol(fmt.Sprintf("read_%s_%v", obj.Name, addr.Offset))), nil
	default:
		return Value{}, model.NewMemoryError(model.MemInvalidPointer, location)
	}
}

// Write stores a value at addr.
func (m *Memory) Write(addr Address, value Value, location string) error {
	switch addr.Kind {
	case AddrNull:
		return model.NewMemoryError(model.MemNullDeref, location)
	case AddrConcrete:
		id, ok := m.floorObject(addr.Concrete)
		if !ok {
			return model.NewMemoryError(model.MemInvalidPointer, location)
		}
		obj := m.objects[id]
		if obj.IsFreed {
			return model.NewMemoryError(model.MemUseAfterFree, location)
		}
		offset := int64(addr.Concrete - obj.Address)
		if inBounds := obj.IsInBounds(offset); inBounds != nil && !*inBounds {
			return model.NewMemoryError(model.MemBufferOverflow, location)
		}
		updated := obj.clone()
		updated.write(offset, value)
		m.objects[id] = updated
		return nil
	case AddrSymbolic:
		obj, ok := m.objects[addr.BaseObject]
		if !ok {
			return model.NewMemoryError(model.MemInvalidPointer, location)
		}
		if obj.IsFreed {
			return model.NewMemoryError(model.MemUseAfterFree, location)
		}
		if off, ok := addr.Offset.AsConcrete(); ok {
			updated := obj.clone()
			updated.write(off, value)
			m.objects[addr.BaseObject] = updated
		}
		// Symbolic offset: writing to every possibly-aliased location
		// needs a constraint solver this package doesn't carry.
		return nil
	default:
		return model.NewMemoryError(model.MemInvalidPointer, location)
	}
}

// AddConstraint records a path condition, skipping the trivially true
// one.
func (m *Memory) AddConstraint(cond PathCondition) {
	if cond.Op != CondTrue {
		m.pathConds = append(m.pathConds, cond)
	}
}

// Constraints returns every accumulated path condition.
func (m *Memory) Constraints() []PathCondition { return m.pathConds }

// ForkWith clones the state and adds an extra constraint, modeling a
// branch in symbolic execution.
func (m *Memory) ForkWith(cond PathCondition) *Memory {
	forked := m.shallowCopy()
	forked.AddConstraint(cond)
	return forked
}

func (m *Memory) shallowCopy() *Memory {
	cp := &Memory{
		objects:      make(map[ObjectID]*MemoryObject, len(m.objects)),
		addrToObject: make(map[uint64]ObjectID, len(m.addrToObject)),
		sortedAddrs:  append([]uint64(nil), m.sortedAddrs...),
		variables:    make(map[string]Address, len(m.variables)),
		pathConds:    append([]PathCondition(nil), m.pathConds...),
		nextObjectID: m.nextObjectID,
		nextAddress:  m.nextAddress,
	}
	for id, obj := range m.objects {
		cp.objects[id] = obj // objects are copy-on-write; sharing the pointer until next mutation is safe
	}
	for addr, id := range m.addrToObject {
		cp.addrToObject[addr] = id
	}
	for name, addr := range m.variables {
		cp.variables[name] = addr
	}
	return cp
}

// MergeWith combines two states along their path conditions: values that
// differ between the two become If-Then-Else expressions guarded by each
// side's accumulated condition, and the merged path condition is the OR
// of the two.
func (m *Memory) MergeWith(other *Memory) *Memory {
	merged := New()
	if other.nextObjectID > m.nextObjectID {
		merged.nextObjectID = other.nextObjectID
	} else {
		merged.nextObjectID = m.nextObjectID
	}
	if other.nextAddress > m.nextAddress {
		merged.nextAddress = other.nextAddress
	} else {
		merged.nextAddress = m.nextAddress
	}

	for id, obj := range m.objects {
		merged.objects[id] = obj
	}
	for id, otherObj := range other.objects {
		selfObj, inBoth := merged.objects[id]
		if !inBoth {
			merged.objects[id] = otherObj
			continue
		}
		mergedObj := selfObj.clone()
		for offset, otherVal := range otherObj.Contents {
			selfVal := selfObj.Read(offset)
			if !valuesEqual(selfVal, otherVal) {
				mergedObj.write(offset, iteValue(m.pathConds, selfVal, otherVal))
			}
		}
		mergedObj.IsFreed = selfObj.IsFreed && otherObj.IsFreed
		merged.objects[id] = mergedObj
	}

	for addr, id := range m.addrToObject {
		merged.insertAddrIndex(addr, id)
	}
	for addr, id := range other.addrToObject {
		if _, exists := merged.addrToObject[addr]; !exists {
			merged.insertAddrIndex(addr, id)
		}
	}

	for name, addr := range m.variables {
		merged.variables[name] = addr
	}
	for name, addr := range other.variables {
		merged.variables[name] = addr
	}

	selfCond := And(m.pathConds...)
	otherCond := And(other.pathConds...)
	merged.pathConds = []PathCondition{Or(selfCond, otherCond)}

	return merged
}

func (m *Memory) insertAddrIndex(addr uint64, id ObjectID) {
	if _, exists := m.addrToObject[addr]; !exists {
		i := sort.SearchInts(m.intAddrs(), int(addr))
		m.sortedAddrs = append(m.sortedAddrs, 0)
		copy(m.sortedAddrs[i+1:], m.sortedAddrs[i:])
		m.sortedAddrs[i] = addr
	}
	m.addrToObject[addr] = id
}

func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValConcreteByte:
		return a.Byte == b.Byte
	case ValConcreteInt:
		return a.Int == b.Int
	case ValSymbolic:
		return a.Expr == b.Expr
	case ValPointer:
		return a.Pointer == b.Pointer
	default:
		return true
	}
}

// iteValue folds two divergent values into a single symbolic
// If-Then-Else expression guarded by the first state's path condition;
// non-numeric values (pointers, bytes) can't be expressed as an ITE and
// are conservatively kept as the first side's value.
func iteValue(selfConds []PathCondition, selfVal, otherVal Value) Value {
	selfExpr, ok1 := asExpr(selfVal)
	otherExpr, ok2 := asExpr(otherVal)
	if !ok1 || !ok2 {
		return selfVal
	}
	cond := And(selfConds...)
	return SymbolicValue(SymbolicExpr{Op: ExprIte, Cond: &cond, LHS: &selfExpr, RHS: &otherExpr})
}

func asExpr(v Value) (SymbolicExpr, bool) {
	switch v.Kind {
	case ValConcreteInt:
		return Concrete(v.Int), true
	case ValSymbolic:
		return v.Expr, true
	default:
		return SymbolicExpr{}, false
	}
}

// GetVariable returns the address bound to a named variable.
func (m *Memory) GetVariable(name string) (Address, bool) {
	addr, ok := m.variables[name]
	return addr, ok
}

// SetVariable (re)binds a named variable to an address.
func (m *Memory) SetVariable(name string, addr Address) { m.variables[name] = addr }

// MayBeNull conservatively reports whether a variable could be null:
// symbolic and unbound addresses are treated as possibly-null since
// nothing proves otherwise.
func (m *Memory) MayBeNull(name string) bool {
	addr, ok := m.variables[name]
	if !ok {
		return true
	}
	switch addr.Kind {
	case AddrNull:
		return true
	case AddrConcrete:
		return false
	default:
		return true
	}
}

// Objects returns every allocated object (unordered).
func (m *Memory) Objects() []*MemoryObject {
	out := make([]*MemoryObject, 0, len(m.objects))
	for _, obj := range m.objects {
		out = append(out, obj)
	}
	return out
}
