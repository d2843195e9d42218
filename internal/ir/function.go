// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import "github.com/dj707chen/claudes-c-compiler/internal/srcpos"

// Signature is a function's return type, parameter types, and calling
// conventions.
type Signature struct {
	ReturnType Type
	ParamTypes []Type
	Variadic   bool
	SRet       bool // hidden first pointer parameter receives the return value
}

// Attrs are the per-function attributes carried through lowering.
type Attrs struct {
	AlwaysInline bool
	NoInline     bool
	Used         bool
	Static       bool
}

// Param is one formal parameter. ArgValue is the raw incoming value (the
// way a call site's argument arrives, with no defining instruction of
// its own); Slot is the entry-block alloca lowering stores it into so
// that every local, parameter included, is addressed uniformly until
// mem2reg promotes it.
type Param struct {
	Name     string
	Type     Type
	ArgValue ValueID // reserved via Function.AllocValue before any instruction is emitted
	Slot     ValueID // the alloca holding this parameter, NoValue before lowering assigns it
}

// Function owns an ordered list of basic blocks with a distinguished
// entry block, and the per-function id allocators.
type Function struct {
	Name      string
	Sig       Signature
	Params    []Param
	Attrs     Attrs
	Pos       srcpos.Pos

	Blocks []*BasicBlock // Blocks[0] is the entry block; nil/empty for an external declaration.

	nextValueID ValueID
	nextBlockID BlockID

	// defs maps a ValueID to the instruction or phi that defines it, so
	// that passes can look up a value's type without threading it
	// through every operand (Design Notes: per-function analyses are
	// explicit and rebuilt by their consumer, but the def-map itself is
	// basic bookkeeping the IR maintains, not a cached analysis).
	instrDefs map[ValueID]*Instr
	phiDefs   map[ValueID]*Phi
	defBlock  map[ValueID]BlockID
}

// IsDeclaration reports whether fn is an external declaration (no
// blocks) rather than an internal definition.
func (fn *Function) IsDeclaration() bool { return len(fn.Blocks) == 0 }

// NewFunction returns an empty internal definition with no blocks yet.
func NewFunction(name string, sig Signature) *Function {
	return &Function{
		Name:      name,
		Sig:       sig,
		instrDefs: map[ValueID]*Instr{},
		phiDefs:   map[ValueID]*Phi{},
		defBlock:  map[ValueID]BlockID{},
	}
}

// NewBlock allocates and appends a fresh basic block.
func (fn *Function) NewBlock(label string) *BasicBlock {
	b := &BasicBlock{ID: fn.nextBlockID, Label: label}
	fn.nextBlockID++
	fn.Blocks = append(fn.Blocks, b)
	return b
}

// Entry returns the function's entry block, or nil if it has none.
func (fn *Function) Entry() *BasicBlock {
	if len(fn.Blocks) == 0 {
		return nil
	}
	return fn.Blocks[0]
}

// Block returns the block with the given id, or nil.
func (fn *Function) Block(id BlockID) *BasicBlock {
	for _, b := range fn.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// AllocValue reserves a fresh ValueID. Ids are monotonically increasing
// within a function and are never reused within a single pass execution
//, even across deletions.
func (fn *Function) AllocValue() ValueID {
	id := fn.nextValueID
	fn.nextValueID++
	return id
}

// EmitInstr appends in to b, assigning it a fresh ValueID unless its
// result type is Void (a Void-typed instruction, e.g. store or memcpy,
// defines nothing), and records its definition site.
func (fn *Function) EmitInstr(b *BasicBlock, in *Instr) Value {
	if in.ID == NoValue && in.ResultType.Kind != TVoid {
		in.ID = fn.AllocValue()
	}
	b.Append(in)
	if in.ID != NoValue {
		fn.instrDefs[in.ID] = in
		fn.defBlock[in.ID] = b.ID
		return RegValue(in.ID)
	}
	return Value{}
}

// EmitPhi appends a fresh phi to b's head and reserves its ValueID.
func (fn *Function) EmitPhi(b *BasicBlock, resultType Type, pos srcpos.Pos) *Phi {
	p := &Phi{ID: fn.AllocValue(), ResultType: resultType, Pos: pos}
	b.AddPhi(p)
	fn.phiDefs[p.ID] = p
	fn.defBlock[p.ID] = b.ID
	return p
}

// DefInstr returns the instruction defining id, or nil if id is not
// defined by a plain instruction (e.g. it is a phi, or unknown).
func (fn *Function) DefInstr(id ValueID) *Instr { return fn.instrDefs[id] }

// DefPhi returns the phi defining id, or nil.
func (fn *Function) DefPhi(id ValueID) *Phi { return fn.phiDefs[id] }

// DefBlock returns the block that defines id.
func (fn *Function) DefBlock(id ValueID) (BlockID, bool) {
	b, ok := fn.defBlock[id]
	return b, ok
}

// ForgetDef removes id's bookkeeping entries, used when a pass deletes
// the instruction or phi that defined it.
func (fn *Function) ForgetDef(id ValueID) {
	delete(fn.instrDefs, id)
	delete(fn.phiDefs, id)
	delete(fn.defBlock, id)
}

// ValueType returns the type id was defined with, looking through
// instruction and phi definitions and through parameters.
func (fn *Function) ValueType(id ValueID) (Type, bool) {
	if in, ok := fn.instrDefs[id]; ok {
		return in.ResultType, true
	}
	if p, ok := fn.phiDefs[id]; ok {
		return p.ResultType, true
	}
	for _, p := range fn.Params {
		if p.ArgValue == id {
			return p.Type, true
		}
	}
	return Type{}, false
}

// ConnectEdges recomputes every block's Preds/Succs from its terminator.
// Passes that mutate terminators (cfg_simplify, if_convert, inlining)
// must call this before handing the function to a consumer that relies
// on Preds/Succs: this cache is rebuilt by its producer, never assumed
// to survive a mutation that invalidates it.
func (fn *Function) ConnectEdges() {
	for _, b := range fn.Blocks {
		b.Preds = nil
		b.Succs = nil
	}
	for _, b := range fn.Blocks {
		if b.Term == nil {
			continue
		}
		for _, s := range b.Term.Successors() {
			b.Succs = append(b.Succs, s)
			if sb := fn.Block(s); sb != nil {
				sb.Preds = append(sb.Preds, b.ID)
			}
		}
	}
}

// RemoveBlock deletes the block with the given id from fn.Blocks. It
// does not fix up Preds/Succs of other blocks; call ConnectEdges after a
// batch of removals.
func (fn *Function) RemoveBlock(id BlockID) {
	for i, b := range fn.Blocks {
		if b.ID == id {
			fn.Blocks = append(fn.Blocks[:i], fn.Blocks[i+1:]...)
			return
		}
	}
}
