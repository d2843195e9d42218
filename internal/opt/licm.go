// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/mem2reg"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// natLoop is a natural loop discovered from a single back edge (spec.md
// §4.3, GLOSSARY's definition of dominator).
type natLoop struct {
	header ir.BlockID
	body   map[ir.BlockID]bool // includes header and latch
}

// licm hoists loop-invariant, side-effect-free instructions to the
// loop's preheader: the header's sole outside predecessor when it
// branches only to the header, otherwise a synthesized block (spec.md
// §4.3). Load hoisting is disabled
// pending field-sensitive alias analysis: a store to GEP(alloca,
// offset) does not alias a load of alloca by pointer identity alone,
// but the two may refer to overlapping bytes, so no OpLoad is ever a
// LICM candidate in this core.
func licm(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	fn.ConnectEdges()
	dt := mem2reg.BuildDomTree(fn)
	loops := findNaturalLoops(fn, dt)
	if len(loops) == 0 {
		return false
	}

	changed := false
	for _, lp := range loops {
		if hoistLoop(fn, lp) {
			changed = true
		}
	}
	return changed
}

// findNaturalLoops collects one natural loop per back edge (b -> h
// where h dominates b).
func findNaturalLoops(fn *ir.Function, dt *mem2reg.DomTree) []*natLoop {
	var loops []*natLoop
	for _, b := range fn.Blocks {
		for _, s := range b.Succs {
			if dt.Dominates(s, b.ID) {
				loops = append(loops, buildNatLoop(fn, s, b.ID))
			}
		}
	}
	return loops
}

func buildNatLoop(fn *ir.Function, header, latch ir.BlockID) *natLoop {
	body := map[ir.BlockID]bool{header: true, latch: true}
	var worklist []ir.BlockID
	if latch != header {
		worklist = append(worklist, latch)
	}
	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		blk := fn.Block(b)
		for _, p := range blk.Preds {
			if !body[p] {
				body[p] = true
				worklist = append(worklist, p)
			}
		}
	}
	return &natLoop{header: header, body: body}
}

// hoistLoop hoists every instruction in lp's body whose operands are
// all defined outside the loop (or already hoisted this call), and
// whose opcode has no side effects and is not OpLoad, to a preheader.
func hoistLoop(fn *ir.Function, lp *natLoop) bool {
	preheader := findOrMakePreheader(fn, lp)
	if preheader == nil {
		return false
	}

	hoisted := map[ir.ValueID]bool{}
	changed := false
	for {
		roundChanged := false
		for bid := range lp.body {
			b := fn.Block(bid)
			for i := 0; i < len(b.Instr); i++ {
				in := b.Instr[i]
				if !canHoist(fn, in, lp, hoisted) {
					continue
				}
				b.RemoveInstrAt(i)
				i--
				preheader.Instr = append(preheader.Instr, in)
				if in.HasResult() {
					hoisted[in.ID] = true
				}
				changed = true
				roundChanged = true
			}
		}
		if !roundChanged {
			break
		}
	}
	return changed
}

func canHoist(fn *ir.Function, in *ir.Instr, lp *natLoop, hoisted map[ir.ValueID]bool) bool {
	if in.Op == ir.OpLoad || in.Op == ir.OpAlloca || in.Op.HasSideEffects() {
		return false
	}
	for i := 0; i < in.NumOperands(); i++ {
		op := in.Operand(i)
		if op.Kind != ir.VReg || hoisted[op.Reg] {
			continue
		}
		defBlock, ok := fn.DefBlock(op.Reg)
		if !ok || lp.body[defBlock] {
			return false // defined inside the loop (or unknown): not invariant
		}
	}
	return true
}

// findOrMakePreheader returns lp's preheader, reusing the header's sole
// outside-the-loop predecessor if it unconditionally branches only to
// the header, or synthesizing a fresh block and retargeting every
// outside predecessor to it otherwise.
func findOrMakePreheader(fn *ir.Function, lp *natLoop) *ir.BasicBlock {
	header := fn.Block(lp.header)
	var outside []ir.BlockID
	for _, p := range header.Preds {
		if !lp.body[p] {
			outside = append(outside, p)
		}
	}
	if len(outside) == 1 {
		cand := fn.Block(outside[0])
		if cand.Term != nil && cand.Term.Kind == ir.TermBr && cand.Term.Target == lp.header && len(cand.Succs) == 1 {
			return cand
		}
	}

	ph := fn.NewBlock("licm.preheader")
	ph.SetTerm(&ir.Term{Kind: ir.TermBr, Target: lp.header})
	for _, p := range outside {
		retargetBranch(fn.Block(p).Term, lp.header, ph.ID)
	}
	fn.ConnectEdges()
	return ph
}

func retargetBranch(t *ir.Term, from, to ir.BlockID) {
	switch t.Kind {
	case ir.TermBr:
		if t.Target == from {
			t.Target = to
		}
	case ir.TermCondBr:
		if t.TrueBlock == from {
			t.TrueBlock = to
		}
		if t.FalseBlock == from {
			t.FalseBlock = to
		}
	case ir.TermSwitch:
		if t.SwitchDefault == from {
			t.SwitchDefault = to
		}
		for i := range t.SwitchCases {
			if t.SwitchCases[i].Target == from {
				t.SwitchCases[i].Target = to
			}
		}
	}
}
