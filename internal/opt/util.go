// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"fmt"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
)

// countUses returns how many operand slots across fn reference id,
// across instructions, phis, and terminators.
func countUses(fn *ir.Function, id ir.ValueID) int {
	n := 0
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			for i := 0; i < in.NumOperands(); i++ {
				if op := in.Operand(i); op.Kind == ir.VReg && op.Reg == id {
					n++
				}
			}
		}
		for _, p := range b.Phis {
			for _, e := range p.Incoming {
				if e.Val.Kind == ir.VReg && e.Val.Reg == id {
					n++
				}
			}
		}
		if t := b.Term; t != nil {
			for _, v := range termOperands(t) {
				if v.Kind == ir.VReg && v.Reg == id {
					n++
				}
			}
		}
	}
	return n
}

// termOperands returns the value operands embedded in a terminator
// (branch targets don't count as value operands).
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
	}
	return nil
}

// replaceAllUses rewrites every operand referencing old with repl,
// across instructions, phis, and terminators of fn.
func replaceAllUses(fn *ir.Function, old ir.ValueID, repl ir.Value) {
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			for i := 0; i < in.NumOperands(); i++ {
				if op := in.Operand(i); op.Kind == ir.VReg && op.Reg == old {
					in.SetOperand(i, repl)
				}
			}
		}
		for _, p := range b.Phis {
			for i, e := range p.Incoming {
				if e.Val.Kind == ir.VReg && e.Val.Reg == old {
					p.Incoming[i].Val = repl
				}
			}
		}
		if t := b.Term; t != nil {
			rewriteTermOperand(t, old, repl)
		}
	}
}

func rewriteTermOperand(t *ir.Term, old ir.ValueID, repl ir.Value) {
	switch t.Kind {
	case ir.TermCondBr:
		if t.Cond.Kind == ir.VReg && t.Cond.Reg == old {
			t.Cond = repl
		}
	case ir.TermReturn:
		for i, v := range t.ReturnVals {
			if v.Kind == ir.VReg && v.Reg == old {
				t.ReturnVals[i] = repl
			}
		}
	case ir.TermIndirectBr:
		if t.IndirectAddr.Kind == ir.VReg && t.IndirectAddr.Reg == old {
			t.IndirectAddr = repl
		}
	case ir.TermSwitch:
		if t.SwitchVal.Kind == ir.VReg && t.SwitchVal.Reg == old {
			t.SwitchVal = repl
		}
	}
}

// operandKey renders v as a string that two operands compare equal
// under only when they are truly interchangeable -- in particular two
// integer constants of different widths never collide, unlike
// Value.String, which drops width information.
func operandKey(v ir.Value) string {
	switch v.Kind {
	case ir.VReg:
		return fmt.Sprintf("r%d", v.Reg)
	case ir.VConst:
		return fmt.Sprintf("c:%d:%s:%d:%g", v.Const.Kind, v.Const.Type, v.Const.IntBits, v.Const.Float)
	case ir.VGlobal:
		return "g:" + v.Global
	case ir.VFunc:
		return "f:" + v.Func
	case ir.VBlockAddr:
		return fmt.Sprintf("b:%s:%d", v.BlockFunc, v.BlockLabel)
	}
	return "?"
}

func sameConst(a, b ir.Value) bool {
	if a.Const.Kind != b.Const.Kind || a.Const.Type != b.Const.Type {
		return false
	}
	switch a.Const.Kind {
	case ir.ConstInt:
		return a.Const.IntBits == b.Const.IntBits
	case ir.ConstFloat:
		return a.Const.Float == b.Const.Float
	case ir.ConstNullPtr:
		return true
	}
	return false
}

func sameValue(a, b ir.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ir.VReg:
		return a.Reg == b.Reg
	case ir.VGlobal:
		return a.Global == b.Global
	case ir.VFunc:
		return a.Func == b.Func
	case ir.VConst:
		return sameConst(a, b)
	}
	return false
}

func isIntConstVal(v ir.Value, want uint64) bool {
	return v.Kind == ir.VConst && v.Const.Kind == ir.ConstInt && v.Const.IntBits == want
}

func maskWidth(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(w)) - 1
}
