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

package ssa

import "fmt"

// BlockID identifies a basic block within one function's CFG.
type BlockID string

// ValueID identifies an SSA value: either a real definition (the node id
// that wrote it) or a synthetic phi.
type ValueID string

// Phi is a phi node: a join of one value per predecessor block, in
// predecessor order.
type Phi struct {
	ID       ValueID
	Block    BlockID
	Variable string
	Operands []ValueID // parallel to the block's predecessor list; "" until filled
	users    []ValueID // phis that read this phi directly (for trivial-phi removal)
}

// Block is one node of the function's control-flow graph and its
// predecessors (already-built CFG edges from CfgNext/CfgBranch). Whether
// all of its predecessors are known yet ("sealed", per Braun et al.) is
// tracked by the Builder; an unsealed block defers phi-operand resolution
// until SealBlock.
type Block struct {
	ID    BlockID
	Preds []BlockID
}

// Builder constructs SSA values for one function using the Braun/Buchwald
// lazy-phi algorithm: no dominance-frontier precomputation, phis are
// created only when a variable read in a block with multiple predecessors
// can't be resolved to a single value.
type Builder struct {
	blocks map[BlockID]*Block
	// currentDef[variable][block] = the value reaching the end of block
	currentDef map[string]map[BlockID]ValueID
	sealed     map[BlockID]bool
	phis       map[ValueID]*Phi
	incomplete map[BlockID]map[string]ValueID // unsealed block -> var -> placeholder phi
	counter    int
}

// NewBuilder creates an empty Builder. Blocks are added unsealed (via
// AddBlock) and sealed later once all predecessors are known,
// matching how a single forward pass over source order can't always know a
// loop header's back-edge predecessor until the loop body is visited.
func NewBuilder() *Builder {
	return &Builder{
		blocks:     make(map[BlockID]*Block),
		currentDef: make(map[string]map[BlockID]ValueID),
		sealed:     make(map[BlockID]bool),
		phis:       make(map[ValueID]*Phi),
		incomplete: make(map[BlockID]map[string]ValueID),
	}
}

// AddBlock registers a block and its (possibly partial) predecessor list.
func (b *Builder) AddBlock(id BlockID, preds []BlockID) {
	b.blocks[id] = &Block{ID: id, Preds: preds}
}

// WriteVariable records that block defines variable with value (a real
// definition's node id, wrapped as a ValueID).
func (b *Builder) WriteVariable(variable string, block BlockID, value ValueID) {
	m, ok := b.currentDef[variable]
	if !ok {
		m = make(map[BlockID]ValueID)
		b.currentDef[variable] = m
	}
	m[block] = value
}

// ReadVariable resolves the value of variable visible at the end of block,
// inserting a phi lazily if block has multiple predecessors and no single
// value dominates all of them.
func (b *Builder) ReadVariable(variable string, block BlockID) ValueID {
	if v, ok := b.currentDef[variable][block]; ok {
		return v
	}
	return b.readVariableRecursive(variable, block)
}

func (b *Builder) readVariableRecursive(variable string, block BlockID) ValueID {
	var value ValueID

	if !b.sealed[block] {
		// Predecessors aren't all known yet: emit an incomplete phi,
		// to be filled in once SealBlock runs.
		phi := b.newPhi(variable, block)
		if b.incomplete[block] == nil {
			b.incomplete[block] = make(map[string]ValueID)
		}
		b.incomplete[block][variable] = phi.ID
		value = phi.ID
	} else if preds := b.blocks[block].Preds; len(preds) == 1 {
		// Single predecessor: no phi needed, just forward its value.
		value = b.ReadVariable(variable, preds[0])
	} else if len(b.blocks[block].Preds) == 0 {
		// Unreachable/entry block with no recorded definition: undefined.
		value = ""
	} else {
		// Multiple predecessors: tentatively create the phi first (breaks
		// cycles for variables read within a loop), then fill operands.
		phi := b.newPhi(variable, block)
		b.WriteVariable(variable, block, phi.ID)
		value = b.addPhiOperands(variable, phi)
	}

	b.WriteVariable(variable, block, value)
	return value
}

func (b *Builder) newPhi(variable string, block BlockID) *Phi {
	b.counter++
	id := ValueID(fmt.Sprintf("phi:%s:%s:%d", block, variable, b.counter))
	phi := &Phi{ID: id, Block: block, Variable: variable, Operands: make([]ValueID, len(b.blocks[block].Preds))}
	b.phis[id] = phi
	return phi
}

func (b *Builder) addPhiOperands(variable string, phi *Phi) ValueID {
	preds := b.blocks[phi.Block].Preds
	for i, pred := range preds {
		op := b.ReadVariable(variable, pred)
		phi.Operands[i] = op
		if other, ok := b.phis[op]; ok {
			other.users = append(other.users, phi.ID)
		}
	}
	return b.tryRemoveTrivialPhi(phi)
}

// tryRemoveTrivialPhi collapses a phi whose operands are all identical (or
// self-references) to that single value, and propagates the removal to any
// phi that used it — the standard trivial-phi cleanup that keeps lazy
// construction from leaving redundant phis behind.
func (b *Builder) tryRemoveTrivialPhi(phi *Phi) ValueID {
	var same ValueID
	for _, op := range phi.Operands {
		if op == same || op == phi.ID {
			continue // unique value or self-reference
		}
		if same != "" {
			return phi.ID // more than one distinct operand: not trivial
		}
		same = op
	}
	if same == "" {
		same = phi.ID // unreachable or undefined predecessor only
	}

	users := phi.users
	delete(b.phis, phi.ID)

	for _, userID := range users {
		user, ok := b.phis[userID]
		if !ok {
			continue
		}
		for i, op := range user.Operands {
			if op == phi.ID {
				user.Operands[i] = same
			}
		}
		b.tryRemoveTrivialPhi(user)
	}

	return same
}

// SealBlock marks block's predecessor list as final and resolves any
// phis that were left incomplete while the predecessor set was unknown.
func (b *Builder) SealBlock(block BlockID) {
	for variable, phiID := range b.incomplete[block] {
		phi, ok := b.phis[phiID]
		if ok {
			b.addPhiOperands(variable, phi)
		}
	}
	delete(b.incomplete, block)
	b.sealed[block] = true
}

// Phis returns every surviving (non-trivial) phi, keyed by id.
func (b *Builder) Phis() map[ValueID]*Phi {
	out := make(map[ValueID]*Phi, len(b.phis))
	for id, p := range b.phis {
		out[id] = p
	}
	return out
}
