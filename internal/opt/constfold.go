// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// constantFold evaluates arithmetic, bitwise, comparison, and cast
// instructions whose operands are all constants, replacing the
// instruction's result with the folded constant everywhere it's used
// (spec.md §4.3). The instruction itself is left for dce.
func constantFold(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if !in.HasResult() {
				continue
			}
			folded, ok := foldInstr(in)
			if !ok {
				continue
			}
			replaceAllUses(fn, in.ID, folded)
			changed = true
		}
	}
	return changed
}

func foldInstr(in *ir.Instr) (ir.Value, bool) {
	for i := 0; i < in.NumOperands(); i++ {
		if !in.Operand(i).IsConst() {
			return ir.Value{}, false
		}
	}
	switch in.Op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpUDiv, ir.OpSDiv, ir.OpURem, ir.OpSRem,
		ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl, ir.OpLShr, ir.OpAShr:
		if in.NumOperands() != 2 {
			return ir.Value{}, false
		}
		return foldIntBinOp(in)
	case ir.OpICmpEQ, ir.OpICmpNE, ir.OpICmpULT, ir.OpICmpULE, ir.OpICmpUGT, ir.OpICmpUGE,
		ir.OpICmpSLT, ir.OpICmpSLE, ir.OpICmpSGT, ir.OpICmpSGE:
		if in.NumOperands() != 2 {
			return ir.Value{}, false
		}
		return foldICmp(in)
	case ir.OpSExt, ir.OpZExt, ir.OpTrunc:
		if in.NumOperands() != 1 {
			return ir.Value{}, false
		}
		return foldIntCast(in)
	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv:
		if in.NumOperands() != 2 {
			return ir.Value{}, false
		}
		return foldFloatBinOp(in)
	}
	return ir.Value{}, false
}

func foldIntBinOp(in *ir.Instr) (ir.Value, bool) {
	x, y := in.Operand(0).Const, in.Operand(1).Const
	if x.Kind != ir.ConstInt || y.Kind != ir.ConstInt {
		return ir.Value{}, false
	}
	ty := in.ResultType
	mask := maskWidth(ty.Width)
	xi, yi := x.IntBits&mask, y.IntBits&mask
	var r uint64
	switch in.Op {
	case ir.OpAdd:
		r = xi + yi
	case ir.OpSub:
		r = xi - yi
	case ir.OpMul:
		r = xi * yi
	case ir.OpUDiv:
		if yi == 0 {
			return ir.Value{}, false
		}
		r = xi / yi
	case ir.OpSDiv:
		xs, ys := x.SignedValue(), y.SignedValue()
		if ys == 0 {
			return ir.Value{}, false
		}
		r = uint64(xs / ys)
	case ir.OpURem:
		if yi == 0 {
			return ir.Value{}, false
		}
		r = xi % yi
	case ir.OpSRem:
		xs, ys := x.SignedValue(), y.SignedValue()
		if ys == 0 {
			return ir.Value{}, false
		}
		r = uint64(xs % ys)
	case ir.OpAnd:
		r = xi & yi
	case ir.OpOr:
		r = xi | yi
	case ir.OpXor:
		r = xi ^ yi
	case ir.OpShl:
		r = xi << (yi % uint64(ty.Width))
	case ir.OpLShr:
		r = xi >> (yi % uint64(ty.Width))
	case ir.OpAShr:
		xs := x.SignedValue()
		r = uint64(xs >> (yi % uint64(ty.Width)))
	default:
		return ir.Value{}, false
	}
	return ir.ConstValue(ty, r), true
}

func foldICmp(in *ir.Instr) (ir.Value, bool) {
	x, y := in.Operand(0).Const, in.Operand(1).Const
	if x.Kind != ir.ConstInt || y.Kind != ir.ConstInt {
		return ir.Value{}, false
	}
	mask := maskWidth(x.Type.Width)
	xu, yu := x.IntBits&mask, y.IntBits&mask
	xs, ys := x.SignedValue(), y.SignedValue()
	var v bool
	switch in.Op {
	case ir.OpICmpEQ:
		v = xu == yu
	case ir.OpICmpNE:
		v = xu != yu
	case ir.OpICmpULT:
		v = xu < yu
	case ir.OpICmpULE:
		v = xu <= yu
	case ir.OpICmpUGT:
		v = xu > yu
	case ir.OpICmpUGE:
		v = xu >= yu
	case ir.OpICmpSLT:
		v = xs < ys
	case ir.OpICmpSLE:
		v = xs <= ys
	case ir.OpICmpSGT:
		v = xs > ys
	case ir.OpICmpSGE:
		v = xs >= ys
	default:
		return ir.Value{}, false
	}
	r := uint64(0)
	if v {
		r = 1
	}
	return ir.ConstValue(in.ResultType, r), true
}

func foldIntCast(in *ir.Instr) (ir.Value, bool) {
	c := in.Operand(0).Const
	if c.Kind != ir.ConstInt {
		return ir.Value{}, false
	}
	switch in.Op {
	case ir.OpTrunc, ir.OpZExt:
		return ir.Value{Kind: ir.VConst, Const: c.Narrow(in.ResultType)}, true
	case ir.OpSExt:
		return ir.ConstValue(in.ResultType, uint64(c.SignedValue())), true
	}
	return ir.Value{}, false
}

func foldFloatBinOp(in *ir.Instr) (ir.Value, bool) {
	x, y := in.Operand(0).Const, in.Operand(1).Const
	if x.Kind != ir.ConstFloat || y.Kind != ir.ConstFloat {
		return ir.Value{}, false
	}
	var r float64
	switch in.Op {
	case ir.OpFAdd:
		r = x.Float + y.Float
	case ir.OpFSub:
		r = x.Float - y.Float
	case ir.OpFMul:
		r = x.Float * y.Float
	case ir.OpFDiv:
		if y.Float == 0 {
			return ir.Value{}, false
		}
		r = x.Float / y.Float
	default:
		return ir.Value{}, false
	}
	return ir.ConstFloatValue(in.ResultType, r), true
}
