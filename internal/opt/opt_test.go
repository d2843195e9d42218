// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"testing"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/srcpos"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// buildGVNFn builds `int k(int a, int b){ int x = a*b + 1; int y = a*b
// + 2; return x + y; }` directly as straight-line IR (spec.md §8,
// scenario 4).
func buildGVNFn() *ir.Function {
	fn := ir.NewFunction("k", ir.Signature{ReturnType: ir.I32, ParamTypes: []ir.Type{ir.I32, ir.I32}})
	argA := fn.AllocValue()
	argB := fn.AllocValue()
	fn.Params = []ir.Param{
		{Name: "a", Type: ir.I32, ArgValue: argA, Slot: ir.NoValue},
		{Name: "b", Type: ir.I32, ArgValue: argB, Slot: ir.NoValue},
	}

	entry := fn.NewBlock("entry")
	mul1 := fn.EmitInstr(entry, ir.NewInstr(ir.OpMul, ir.I32, ir.RegValue(argA), ir.RegValue(argB)))
	x := fn.EmitInstr(entry, ir.NewInstr(ir.OpAdd, ir.I32, mul1, ir.ConstValue(ir.I32, 1)))
	mul2 := fn.EmitInstr(entry, ir.NewInstr(ir.OpMul, ir.I32, ir.RegValue(argA), ir.RegValue(argB)))
	y := fn.EmitInstr(entry, ir.NewInstr(ir.OpAdd, ir.I32, mul2, ir.ConstValue(ir.I32, 2)))
	sum := fn.EmitInstr(entry, ir.NewInstr(ir.OpAdd, ir.I32, x, y))
	entry.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{sum}})
	fn.ConnectEdges()
	return fn
}

func TestGVNDeduplicatesMultiplication(t *testing.T) {
	fn := buildGVNFn()
	if !gvn(fn, nil) {
		t.Fatal("expected gvn to report a change")
	}
	dce(fn, nil)

	numMul := 0
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if in.Op == ir.OpMul {
				numMul++
			}
		}
	}
	if numMul != 1 {
		t.Fatalf("expected exactly one multiplication after GVN, got %d", numMul)
	}
}

// buildLoopFn builds `int h(int *p, int n){ int s=0; for(int i=0;i<n;i++)
// s += *p + 3; return s; }` directly as IR, with entry as the loop's
// natural preheader (spec.md §8, scenario 3).
func buildLoopFn() (fn *ir.Function, entry, body *ir.BasicBlock) {
	fn = ir.NewFunction("h", ir.Signature{ReturnType: ir.I32, ParamTypes: []ir.Type{ir.PtrTy, ir.I32}})
	argP := fn.AllocValue()
	argN := fn.AllocValue()
	fn.Params = []ir.Param{
		{Name: "p", Type: ir.PtrTy, ArgValue: argP, Slot: ir.NoValue},
		{Name: "n", Type: ir.I32, ArgValue: argN, Slot: ir.NoValue},
	}

	entry = fn.NewBlock("entry")
	header := fn.NewBlock("header")
	body = fn.NewBlock("body")
	latch := fn.NewBlock("latch")
	exit := fn.NewBlock("exit")

	entry.SetTerm(&ir.Term{Kind: ir.TermBr, Target: header.ID})

	iPhi := fn.EmitPhi(header, ir.I32, srcpos.Pos{})
	sPhi := fn.EmitPhi(header, ir.I32, srcpos.Pos{})
	iPhi.Incoming = append(iPhi.Incoming, ir.PhiEdge{Pred: entry.ID, Val: ir.ConstValue(ir.I32, 0)})
	sPhi.Incoming = append(sPhi.Incoming, ir.PhiEdge{Pred: entry.ID, Val: ir.ConstValue(ir.I32, 0)})

	cmpVal := fn.EmitInstr(header, ir.NewInstr(ir.OpICmpSLT, ir.I32, ir.RegValue(iPhi.ID), ir.RegValue(argN)))
	header.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: cmpVal, TrueBlock: body.ID, FalseBlock: exit.ID})

	loadIn := ir.NewInstr(ir.OpLoad, ir.I32, ir.RegValue(argP))
	loadIn.Aux = &ir.LoadStoreAux{Align: 4}
	loadVal := fn.EmitInstr(body, loadIn)
	addConst := fn.EmitInstr(body, ir.NewInstr(ir.OpAdd, ir.I32, loadVal, ir.ConstValue(ir.I32, 3)))
	sNext := fn.EmitInstr(body, ir.NewInstr(ir.OpAdd, ir.I32, ir.RegValue(sPhi.ID), addConst))
	body.SetTerm(&ir.Term{Kind: ir.TermBr, Target: latch.ID})

	iNext := fn.EmitInstr(latch, ir.NewInstr(ir.OpAdd, ir.I32, ir.RegValue(iPhi.ID), ir.ConstValue(ir.I32, 1)))
	latch.SetTerm(&ir.Term{Kind: ir.TermBr, Target: header.ID})

	iPhi.Incoming = append(iPhi.Incoming, ir.PhiEdge{Pred: latch.ID, Val: iNext})
	sPhi.Incoming = append(sPhi.Incoming, ir.PhiEdge{Pred: latch.ID, Val: sNext})

	exit.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{ir.RegValue(sPhi.ID)}})

	fn.ConnectEdges()
	return fn, entry, body
}

func TestLICMNeverHoistsLoads(t *testing.T) {
	fn, entry, body := buildLoopFn()
	blocksBefore := len(fn.Blocks)

	licm(fn, nil)

	if len(fn.Blocks) != blocksBefore {
		t.Fatalf("expected entry to double as the preheader with no new block, got %d blocks, want %d", len(fn.Blocks), blocksBefore)
	}
	for _, in := range entry.Instr {
		if in.Op == ir.OpLoad {
			t.Fatal("a load was hoisted above the loop header")
		}
	}
	sawLoad := false
	for _, in := range body.Instr {
		if in.Op == ir.OpLoad {
			sawLoad = true
		}
	}
	if !sawLoad {
		t.Fatal("expected the load to remain in the loop body")
	}
}

func TestDeadStaticsRemovesUnreferencedFunction(t *testing.T) {
	tgt, ok := target.ByName("x86_64")
	if !ok {
		t.Fatal("x86_64 target descriptor not found")
	}
	mod := ir.NewModule(tgt)

	unused := ir.NewFunction("unused", ir.Signature{ReturnType: ir.I32})
	unused.Attrs.Static = true
	ub := unused.NewBlock("entry")
	ub.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{ir.ConstValue(ir.I32, 42)}})
	unused.ConnectEdges()
	mod.AddFunction(unused)

	main := ir.NewFunction("main", ir.Signature{ReturnType: ir.I32})
	mb := main.NewBlock("entry")
	mb.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{ir.ConstValue(ir.I32, 0)}})
	main.ConnectEdges()
	mod.AddFunction(main)

	if !deadStatics(mod, Options{}) {
		t.Fatal("expected deadStatics to report a change")
	}
	if mod.Function("unused") != nil {
		t.Fatal("expected the unreferenced static function to be removed")
	}
	if mod.Function("main") == nil {
		t.Fatal("main must survive as an externally visible root")
	}
}

// TestConstantFoldAndSimplifyConverge builds `int f(int x){ return
// (x*1) + (2+3); }` and checks the main batch folds the arithmetic to a
// single add of x and the constant 5.
func TestConstantFoldAndSimplifyConverge(t *testing.T) {
	fn := ir.NewFunction("f", ir.Signature{ReturnType: ir.I32, ParamTypes: []ir.Type{ir.I32}})
	argX := fn.AllocValue()
	fn.Params = []ir.Param{{Name: "x", Type: ir.I32, ArgValue: argX, Slot: ir.NoValue}}

	entry := fn.NewBlock("entry")
	mulOne := fn.EmitInstr(entry, ir.NewInstr(ir.OpMul, ir.I32, ir.RegValue(argX), ir.ConstValue(ir.I32, 1)))
	sumConst := fn.EmitInstr(entry, ir.NewInstr(ir.OpAdd, ir.I32, ir.ConstValue(ir.I32, 2), ir.ConstValue(ir.I32, 3)))
	total := fn.EmitInstr(entry, ir.NewInstr(ir.OpAdd, ir.I32, mulOne, sumConst))
	entry.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{total}})
	fn.ConnectEdges()

	tgt, _ := target.ByName("x86_64")
	if !runMainBatch(fn, tgt, Options{}) {
		t.Fatal("expected the main batch to report a change")
	}

	if len(entry.Term.ReturnVals) != 1 {
		t.Fatalf("expected exactly one return value, got %d", len(entry.Term.ReturnVals))
	}
	ret := entry.Term.ReturnVals[0]
	in := fn.DefInstr(retRegOrFatal(t, ret))
	if in == nil || in.Op != ir.OpAdd {
		t.Fatalf("expected the return value to be defined by a single add, got %+v", in)
	}
	a, b := in.Operand(0), in.Operand(1)
	if !(a.Kind == ir.VReg && a.Reg == argX && b.Kind == ir.VConst && b.Const.IntBits == 5) &&
		!(b.Kind == ir.VReg && b.Reg == argX && a.Kind == ir.VConst && a.Const.IntBits == 5) {
		t.Fatalf("expected add(x, 5), got add(%v, %v)", a, b)
	}
}

func retRegOrFatal(t *testing.T, v ir.Value) ir.ValueID {
	t.Helper()
	if v.Kind != ir.VReg {
		t.Fatalf("expected a register return value, got %v", v)
	}
	return v.Reg
}
