// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mem2reg

import "github.com/dj707chen/claudes-c-compiler/internal/ir"

// deletion records a load or store instruction killed by renaming, kept
// until apply so that the dominator-tree walk itself never mutates
// b.Instr out from under its own range loop.
type deletion struct {
	block *ir.BasicBlock
	instr *ir.Instr
}

// renameState is the per-function working state of the rename walk: a
// stack of "current definition" per promotable alloca (Cytron et al.'s
// classic renaming algorithm), plus a substitution map resolving a
// load's result to the value it reads, since deleting the load leaves
// later operand references to it dangling until rewritten.
type renameState struct {
	fn       *ir.Function
	dt       *DomTree
	byID     map[ir.ValueID]*promAlloca
	phiOwner map[ir.ValueID]*promAlloca

	stacks map[ir.ValueID][]ir.Value
	subst  map[ir.ValueID]ir.Value

	deletions []deletion
}

// current returns the value a promotable alloca currently holds along
// this path through the dominator tree, falling back to its implicit
// zero value when no dominating store or phi has defined it yet.
func (r *renameState) current(id ir.ValueID) ir.Value {
	s := r.stacks[id]
	if len(s) == 0 {
		return zeroValue(r.byID[id].elemType)
	}
	return s[len(s)-1]
}

// rename walks the dominator (sub)tree rooted at bid, replacing loads
// of promotable allocas with the dominating stored value (or a freshly
// placed phi), filling phi operands along CFG edges to successors, and
// recursing into dominator-tree children with the per-alloca stacks
// left exactly as this block's own pushes leave them (the standard
// Cytron/Cooper-Harvey-Kennedy renaming discipline: each block pushes a
// save point and pops it on exit).
func (r *renameState) rename(bid ir.BlockID) {
	b := r.fn.Block(bid)

	var pushed []ir.ValueID
	for _, phi := range b.Phis {
		if pa, ok := r.phiOwner[phi.ID]; ok {
			r.stacks[pa.id] = append(r.stacks[pa.id], ir.RegValue(phi.ID))
			pushed = append(pushed, pa.id)
		}
	}

	for _, in := range b.Instr {
		for i := 0; i < in.NumOperands(); i++ {
			op := in.Operand(i)
			if op.Kind != ir.VReg {
				continue
			}
			if rep, ok := r.subst[op.Reg]; ok {
				in.SetOperand(i, rep)
			}
		}

		switch in.Op {
		case ir.OpLoad:
			if pa := addrAlloca(in, r.byID); pa != nil {
				r.subst[in.ID] = r.current(pa.id)
				r.deletions = append(r.deletions, deletion{block: b, instr: in})
			}
		case ir.OpStore:
			if pa := addrAlloca(in, r.byID); pa != nil {
				val := in.Operand(1)
				val = narrowStoredConst(val, pa.elemType)
				r.stacks[pa.id] = append(r.stacks[pa.id], val)
				pushed = append(pushed, pa.id)
				r.deletions = append(r.deletions, deletion{block: b, instr: in})
			}
		}
	}

	if t := b.Term; t != nil {
		vals := []*ir.Value{&t.Cond, &t.IndirectAddr, &t.SwitchVal}
		for i := range t.ReturnVals {
			vals = append(vals, &t.ReturnVals[i])
		}
		for _, v := range vals {
			if rep, ok := r.subst[v.Reg]; ok && v.Kind == ir.VReg {
				*v = rep
			}
		}
	}

	for _, s := range b.Succs {
		sb := r.fn.Block(s)
		for _, phi := range sb.Phis {
			pa, ok := r.phiOwner[phi.ID]
			if !ok {
				continue
			}
			phi.Incoming = append(phi.Incoming, ir.PhiEdge{Pred: bid, Val: r.current(pa.id)})
		}
	}

	for _, child := range r.dt.Children(bid) {
		r.rename(child)
	}

	counts := map[ir.ValueID]int{}
	for _, id := range pushed {
		counts[id]++
	}
	for id, c := range counts {
		s := r.stacks[id]
		r.stacks[id] = s[:len(s)-c]
	}
}

// narrowStoredConst implements the constant-narrowing rule: when the
// stored value is an integer constant wider than the alloca's promoted
// element type, narrow it before it is pushed as the current SSA
// definition. Correctness: an earlier bug allowed a 64-bit constant to
// flow into a 32-bit promoted SSA name, leaving upper bits undefined on
// 32-bit targets (spec.md §4.2).
func narrowStoredConst(val ir.Value, elemType ir.Type) ir.Value {
	if val.Kind != ir.VConst || val.Const.Kind != ir.ConstInt || !elemType.IsInt() {
		return val
	}
	if val.Const.Type.Width <= elemType.Width {
		return val
	}
	return ir.Value{Kind: ir.VConst, Const: val.Const.Narrow(elemType)}
}

// addrAlloca returns the promAlloca referred to by in's address
// operand (operand 0), or nil if in has no operands or its address
// does not name a promotable alloca.
func addrAlloca(in *ir.Instr, byID map[ir.ValueID]*promAlloca) *promAlloca {
	if in.NumOperands() == 0 {
		return nil
	}
	addr := in.Operand(0)
	if addr.Kind != ir.VReg {
		return nil
	}
	return byID[addr.Reg]
}

// apply deletes every load/store consumed by renaming and the
// promoted allocas themselves, per spec.md §4.2: "Promotable allocas
// are deleted along with their load/store users; other allocas
// remain."
func (r *renameState) apply(fn *ir.Function, allocas []*promAlloca) {
	for _, d := range r.deletions {
		removeInstr(d.block, d.instr)
		if d.instr.Op == ir.OpLoad {
			fn.ForgetDef(d.instr.ID)
		}
	}
	for _, pa := range allocas {
		if b := blockOf(fn, pa.instr); b != nil {
			removeInstr(b, pa.instr)
		}
	}
}

func removeInstr(b *ir.BasicBlock, target *ir.Instr) {
	for i, in := range b.Instr {
		if in == target {
			b.RemoveInstrAt(i)
			return
		}
	}
}

func blockOf(fn *ir.Function, target *ir.Instr) *ir.BasicBlock {
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if in == target {
				return b
			}
		}
	}
	return nil
}
