// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"fmt"

	"github.com/dj707chen/claudes-c-compiler/internal/ast"
	"github.com/dj707chen/claudes-c-compiler/internal/diag"
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/sema"
)

// localVar is a scope entry: the entry-block alloca backing one local or
// parameter, plus its C and IR types (the lexical scope stack named in
// the function-body lowering contract).
type localVar struct {
	Slot  ir.ValueID
	CType *sema.CType
	IRTy  ir.Type

	// VLAStride is non-nil only for a variable-length array local: the
	// per-element byte size computed once at the declaration (spec.md
	// §4.1), reused by every later index/pointer-arithmetic use instead
	// of being recomputed.
	VLAStride *ir.Value
}

type labelInfo struct {
	block   *ir.BasicBlock
	defined bool
}

type gotoFixup struct {
	block *ir.BasicBlock
	label string
}

// switchCtx is the state threaded through one switch statement's
// lowering: its break target, its tag value and type, and the
// case/default dispatch table built while walking the flattened body.
type switchCtx struct {
	breakBlock ir.BlockID
	tagVal     ir.Value
	tagTy      ir.Type
	cases      []ir.SwitchCase
	defaultBlk ir.BlockID
	hasDefault bool
}

// fnLowerer carries all per-function lowering state: the scope stack,
// break/continue target stacks, the switch context stack, the goto label
// table, and the current insertion block.
type fnLowerer struct {
	*Lowerer

	fn  *ir.Function
	cur *ir.BasicBlock

	scopes []map[string]*localVar

	breakTargets    []ir.BlockID
	continueTargets []ir.BlockID
	switches        []*switchCtx

	labels     map[string]*labelInfo
	gotoFixups []gotoFixup
}

func (l *Lowerer) lowerFuncBody(f *ast.FuncDecl) {
	fn := l.Mod.Function(f.Name)
	if fn == nil {
		return
	}
	fnl := &fnLowerer{Lowerer: l, fn: fn, labels: map[string]*labelInfo{}}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*diag.AbortFunction); ok {
				l.Mod.RemoveFunction(f.Name)
				return
			}
			panic(r)
		}
	}()

	sig := l.Sema.Functions[f.Name]

	entry := fn.NewBlock("entry")
	fnl.cur = entry
	fnl.pushScope()

	// Argument values are reserved before any instruction is emitted, the
	// way LLVM's own Arguments are Values with no defining instruction:
	// the first len(Params) value ids belong to the incoming arguments.
	for i := range fn.Params {
		fn.Params[i].ArgValue = fn.AllocValue()
	}
	for i, p := range f.Params {
		ctype := &sema.CType{Kind: sema.TInt}
		if sig != nil && i < len(sig.Params) {
			ctype = sig.Params[i]
		}
		ty := fn.Params[i].Type
		slot := fnl.emitAlloca(ty, l.alignOf(ctype))
		fn.Params[i].Slot = slot
		fnl.declare(p.Name, slot, ctype, ty)
		fnl.emitStore(ir.RegValue(slot), ir.RegValue(fn.Params[i].ArgValue), ty)
	}

	fnl.lowerStmt(f.Body)

	if !fnl.cur.HasTerm() {
		fnl.emitDefaultReturn(fn.Sig.ReturnType)
	}

	fnl.resolveGotos()
	fn.ConnectEdges()
}

func (fnl *fnLowerer) pushScope() { fnl.scopes = append(fnl.scopes, map[string]*localVar{}) }
func (fnl *fnLowerer) popScope()  { fnl.scopes = fnl.scopes[:len(fnl.scopes)-1] }

func (fnl *fnLowerer) declare(name string, slot ir.ValueID, ct *sema.CType, ty ir.Type) {
	fnl.scopes[len(fnl.scopes)-1][name] = &localVar{Slot: slot, CType: ct, IRTy: ty}
}

// declareVLA records a variable-length array local together with the
// per-element stride computed at its declaration.
func (fnl *fnLowerer) declareVLA(name string, slot ir.ValueID, ct *sema.CType, ty ir.Type, stride ir.Value) {
	fnl.scopes[len(fnl.scopes)-1][name] = &localVar{Slot: slot, CType: ct, IRTy: ty, VLAStride: &stride}
}

func (fnl *fnLowerer) lookup(name string) *localVar {
	for i := len(fnl.scopes) - 1; i >= 0; i-- {
		if v, ok := fnl.scopes[i][name]; ok {
			return v
		}
	}
	return nil
}

// emitAlloca appends an alloca to the function's entry block, whichever
// block is current.
func (fnl *fnLowerer) emitAlloca(elemTy ir.Type, align int64) ir.ValueID {
	in := ir.NewInstr(ir.OpAlloca, ir.PtrTy)
	in.Aux = &ir.AllocaAux{ElemType: elemTy, ElemSize: elemTy.Bytes(fnl.Target.PointerBits), Count: 1, Align: align}
	entry := fnl.fn.Entry()
	fnl.fn.EmitInstr(entry, in)
	return in.ID
}

// emitAllocaDyn emits a variable-length-array alloca inline at the
// current block rather than the entry block: its extent depends on a
// runtime value (count) that the entry block cannot see ahead of the
// point where it was computed.
func (fnl *fnLowerer) emitAllocaDyn(elemTy ir.Type, align int64, count ir.Value) ir.ValueID {
	in := ir.NewInstr(ir.OpAlloca, ir.PtrTy, count)
	in.Aux = &ir.AllocaAux{ElemType: elemTy, ElemSize: elemTy.Bytes(fnl.Target.PointerBits), Count: -1, Align: align, DynCount: true}
	return fnl.fn.EmitInstr(fnl.cur, in).Reg
}

func (fnl *fnLowerer) emitLoad(addr ir.Value, ty ir.Type) ir.Value {
	in := ir.NewInstr(ir.OpLoad, ty, addr)
	in.Aux = &ir.LoadStoreAux{Align: fnl.alignOfIR(ty)}
	return fnl.fn.EmitInstr(fnl.cur, in)
}

func (fnl *fnLowerer) emitStore(addr, val ir.Value, ty ir.Type) {
	in := ir.NewInstr(ir.OpStore, ir.Void, addr, val)
	in.Aux = &ir.LoadStoreAux{Align: fnl.alignOfIR(ty)}
	fnl.fn.EmitInstr(fnl.cur, in)
}

func (fnl *fnLowerer) emitBinOp(op ir.Op, ty ir.Type, x, y ir.Value) ir.Value {
	return fnl.fn.EmitInstr(fnl.cur, ir.NewInstr(op, ty, x, y))
}

func (fnl *fnLowerer) emitCast(op ir.Op, to, from ir.Type, x ir.Value) ir.Value {
	if from == to {
		return x
	}
	in := ir.NewInstr(op, to, x)
	in.Aux = &ir.CastAux{FromType: from}
	return fnl.fn.EmitInstr(fnl.cur, in)
}

func (fnl *fnLowerer) emitGEP(base ir.Value, elemSize, offset int64, index *ir.Value) ir.Value {
	var in *ir.Instr
	if index != nil {
		in = ir.NewInstr(ir.OpGEP, ir.PtrTy, base, *index)
	} else {
		in = ir.NewInstr(ir.OpGEP, ir.PtrTy, base)
	}
	in.Aux = &ir.GEPAux{ElemSize: elemSize, Offset: offset}
	return fnl.fn.EmitInstr(fnl.cur, in)
}

func (fnl *fnLowerer) alignOfIR(t ir.Type) int64 {
	b := t.Bytes(fnl.Target.PointerBits)
	if b == 0 {
		return 1
	}
	return b
}

func (fnl *fnLowerer) emitDefaultReturn(ret ir.Type) {
	t := &ir.Term{Kind: ir.TermReturn}
	if ret.Kind != ir.TVoid {
		t.ReturnVals = []ir.Value{ir.ConstValue(ret, 0)}
	}
	fnl.cur.SetTerm(t)
}

func (fnl *fnLowerer) abort(format string, args ...interface{}) {
	d := fnl.Sink.Errorf(diag.Ctx{Func: fnl.fn.Name, Block: fnl.cur.Label}, format, args...)
	panic(&diag.AbortFunction{Func: fnl.fn.Name, Diag: d})
}

// resolveGotos checks every goto recorded in gotoFixups once every
// label in the function has been seen, reporting an undefined label.
// The goto's branch itself is installed when the goto is lowered, to
// the label's block created on first mention.
func (fnl *fnLowerer) resolveGotos() {
	for _, gf := range fnl.gotoFixups {
		li, ok := fnl.labels[gf.label]
		if !ok || !li.defined {
			fnl.Sink.Errorf(diag.Ctx{Func: fnl.fn.Name}, "undefined label %q", gf.label)
			continue
		}
		if !gf.block.HasTerm() {
			gf.block.SetTerm(&ir.Term{Kind: ir.TermBr, Target: li.block.ID})
		}
	}
}

func (fnl *fnLowerer) labelBlock(name string) *ir.BasicBlock {
	if li, ok := fnl.labels[name]; ok {
		return li.block
	}
	b := fnl.fn.NewBlock(fmt.Sprintf("label.%s", name))
	fnl.labels[name] = &labelInfo{block: b}
	return b
}

// branchTo terminates the current block with an unconditional branch to
// target, unless the current block is already terminated (e.g. by a
// preceding return/break/continue/goto, which makes the branch
// unreachable code that never executes).
func (fnl *fnLowerer) branchTo(target *ir.BasicBlock) {
	if fnl.cur.HasTerm() {
		return
	}
	fnl.cur.SetTerm(&ir.Term{Kind: ir.TermBr, Target: target.ID})
}
