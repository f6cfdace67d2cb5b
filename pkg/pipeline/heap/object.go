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

// ObjectID names one allocated MemoryObject.
type ObjectID uint64

// AddressKind is the closed set of address shapes (§4.3.7).
type AddressKind string

const (
	AddrConcrete AddressKind = "concrete"
	AddrSymbolic AddressKind = "symbolic"
	AddrNull     AddressKind = "null"
	AddrInvalid  AddressKind = "invalid"
)

// Address is a memory address: concrete, symbolic (base object + offset
// expression), null, or invalid/uninitialized.
type Address struct {
	Kind       AddressKind
	Concrete   uint64
	BaseObject ObjectID
	Offset     SymbolicExpr
}

func ConcreteAddress(addr uint64) Address { return Address{Kind: AddrConcrete, Concrete: addr} }
func NullAddress() Address                { return Address{Kind: AddrNull} }
func InvalidAddress() Address             { return Address{Kind: AddrInvalid} }
func SymbolicAddress(base ObjectID, offset SymbolicExpr) Address {
	return Address{Kind: AddrSymbolic, BaseObject: base, Offset: offset}
}

// ValueKind is the closed set of shapes a value stored in memory may
// take.
type ValueKind string

const (
	ValConcreteByte ValueKind = "byte"
	ValConcreteInt  ValueKind = "int"
	ValSymbolic     ValueKind = "symbolic"
	ValPointer      ValueKind = "pointer"
	ValUninit       ValueKind = "uninitialized"
)

// Value is a value stored at some offset within a MemoryObject.
type Value struct {
	Kind    ValueKind
	Byte    byte
	Int     int64
	Expr    SymbolicExpr
	Pointer Address
}

func ByteValue(b byte) Value       { return Value{Kind: ValConcreteByte, Byte: b} }
func IntValue(v int64) Value       { return Value{Kind: ValConcreteInt, Int: v} }
func SymbolicValue(e SymbolicExpr) Value { return Value{Kind: ValSymbolic, Expr: e} }
func PointerValue(a Address) Value { return Value{Kind: ValPointer, Pointer: a} }
func Uninitialized() Value         { return Value{Kind: ValUninit} }

// MemoryObject is a contiguous memory region: a stack local, a heap
// allocation, or a purely symbolic object with no concrete address.
type MemoryObject struct {
	ID         ObjectID
	Name       string
	Size       SymbolicExpr
	Address    uint64
	IsHeap     bool
	IsSymbolic bool
	Contents   map[int64]Value
	IsFreed    bool
	AllocSite  string
}

func newStackObject(id ObjectID, name string, size int64, address uint64) *MemoryObject {
	return &MemoryObject{ID: id, Name: name, Size: Concrete(size), Address: address, Contents: make(map[int64]Value)}
}

func newHeapObject(id ObjectID, name string, size SymbolicExpr, address uint64) *MemoryObject {
	return &MemoryObject{ID: id, Name: name, Size: size, Address: address, IsHeap: true, Contents: make(map[int64]Value)}
}

func newSymbolicObject(id ObjectID, name string, size SymbolicExpr) *MemoryObject {
	return &MemoryObject{ID: id, Name: name, Size: size, IsSymbolic: true, Contents: make(map[int64]Value)}
}

// clone returns a deep-enough copy for copy-on-write mutation (contents
// map is copied; stored Values are themselves immutable once written).
func (o *MemoryObject) clone() *MemoryObject {
	cp := *o
	cp.Contents = make(map[int64]Value, len(o.Contents))
	for k, v := range o.Contents {
		cp.Contents[k] = v
	}
	return &cp
}

// Read returns the value at offset, or Uninitialized if never written.
func (o *MemoryObject) Read(offset int64) Value {
	if v, ok := o.Contents[offset]; ok {
		return v
	}
	return Uninitialized()
}

// write sets the value at offset (mutates in place; callers are expected
// to have already cloned via clone() for copy-on-write semantics).
func (o *MemoryObject) write(offset int64, v Value) {
	o.Contents[offset] = v
}

// IsInBounds reports whether offset falls within a concretely-sized
// object; nil (unknown) is returned for symbolic sizes, since bounds
// checking there needs a constraint solver this package doesn't carry.
func (o *MemoryObject) IsInBounds(offset int64) *bool {
	size, ok := o.Size.AsConcrete()
	if !ok {
		return nil
	}
	inBounds := offset >= 0 && offset < size
	return &inBounds
}
