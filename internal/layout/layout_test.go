// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"testing"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

func x86() *target.Descriptor {
	tgt, _ := target.ByName("x86_64")
	return tgt
}

// buildEscapingAllocaFn builds a function with one escaping alloca (its
// address is passed to a call) alongside an ordinary single-block i32
// temporary, so Tier 1 and Tier 3 both have a candidate.
func buildEscapingAllocaFn() (fn *ir.Function, allocaID, tempID ir.ValueID) {
	fn = ir.NewFunction("f", ir.Signature{ReturnType: ir.I32})
	entry := fn.NewBlock("entry")

	allocaIn := ir.NewInstr(ir.OpAlloca, ir.PtrTy)
	allocaIn.Aux = &ir.AllocaAux{ElemType: ir.I32, ElemSize: 4, Count: 1, Align: 4, AddressTaken: true}
	allocaVal := fn.EmitInstr(entry, allocaIn)

	callIn := ir.NewInstr(ir.OpCall, ir.Void, allocaVal)
	callIn.Aux = &ir.CallAux{Callee: "use_ptr", ParamTypes: []ir.Type{ir.PtrTy}}
	fn.EmitInstr(entry, callIn)

	addVal := fn.EmitInstr(entry, ir.NewInstr(ir.OpAdd, ir.I32, ir.ConstValue(ir.I32, 1), ir.ConstValue(ir.I32, 2)))

	entry.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{addVal}})
	fn.ConnectEdges()
	return fn, allocaIn.ID, addVal.Reg
}

func TestTier1GetsADedicatedSlot(t *testing.T) {
	fn, allocaID, tempID := buildEscapingAllocaFn()
	plan := Compute(fn, x86())

	allocaOff, ok := plan.Offsets[allocaID]
	if !ok {
		t.Fatal("expected the escaping alloca to receive a slot")
	}
	tempOff, ok := plan.Offsets[tempID]
	if !ok {
		t.Fatal("expected the single-block temporary to receive a slot")
	}
	if allocaOff == tempOff {
		t.Fatal("the Tier 1 alloca and a Tier 3 temporary must not overlap")
	}
	if plan.FrameSize < 4 {
		t.Fatalf("expected a frame of at least 4 bytes, got %d", plan.FrameSize)
	}
}

// buildMultiBlockFn builds an entry -> then -> join shape (entry also
// branches straight to join) where a value defined in the then arm is
// used by the join block's add, so it is live across the branch, and a
// purely local computation lives only inside the then arm.
func buildMultiBlockFn() (fn *ir.Function, crossBlockID, localID ir.ValueID) {
	fn = ir.NewFunction("m", ir.Signature{ReturnType: ir.I32, ParamTypes: []ir.Type{ir.I32}})
	argN := fn.AllocValue()
	fn.Params = []ir.Param{{Name: "n", Type: ir.I32, ArgValue: argN, Slot: ir.NoValue}}

	entry := fn.NewBlock("entry")
	thenBlk := fn.NewBlock("then")
	join := fn.NewBlock("join")

	cond := fn.EmitInstr(entry, ir.NewInstr(ir.OpICmpNE, ir.I32, ir.RegValue(argN), ir.ConstValue(ir.I32, 0)))
	entry.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: cond, TrueBlock: thenBlk.ID, FalseBlock: join.ID})

	// A purely block-local value: dead outside thenBlk.
	local := fn.EmitInstr(thenBlk, ir.NewInstr(ir.OpAdd, ir.I32, ir.ConstValue(ir.I32, 1), ir.ConstValue(ir.I32, 1)))
	crossVal := fn.EmitInstr(thenBlk, ir.NewInstr(ir.OpAdd, ir.I32, local, ir.ConstValue(ir.I32, 1)))
	thenBlk.SetTerm(&ir.Term{Kind: ir.TermBr, Target: join.ID})

	result := fn.EmitInstr(join, ir.NewInstr(ir.OpAdd, ir.I32, crossVal, ir.RegValue(argN)))
	join.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{result}})

	fn.ConnectEdges()
	return fn, crossVal.Reg, local.Reg
}

func TestCrossBlockValueGetsATier2Slot(t *testing.T) {
	fn, crossBlockID, localID := buildMultiBlockFn()
	plan := Compute(fn, x86())

	if _, ok := plan.Offsets[crossBlockID]; !ok {
		t.Fatal("expected the cross-block value to receive a slot")
	}
	if _, ok := plan.Offsets[localID]; !ok {
		t.Fatal("expected the block-local value to receive a slot")
	}
}

func TestTier3SharesPhysicalOffsetsAcrossBlocks(t *testing.T) {
	fn := ir.NewFunction("two_arms", ir.Signature{ReturnType: ir.I32, ParamTypes: []ir.Type{ir.I32}})
	argN := fn.AllocValue()
	fn.Params = []ir.Param{{Name: "n", Type: ir.I32, ArgValue: argN, Slot: ir.NoValue}}

	entry := fn.NewBlock("entry")
	armA := fn.NewBlock("a")
	armB := fn.NewBlock("b")
	join := fn.NewBlock("join")

	cond := fn.EmitInstr(entry, ir.NewInstr(ir.OpICmpNE, ir.I32, ir.RegValue(argN), ir.ConstValue(ir.I32, 0)))
	entry.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: cond, TrueBlock: armA.ID, FalseBlock: armB.ID})

	localA := fn.EmitInstr(armA, ir.NewInstr(ir.OpAdd, ir.I32, ir.ConstValue(ir.I32, 1), ir.ConstValue(ir.I32, 1)))
	armA.SetTerm(&ir.Term{Kind: ir.TermBr, Target: join.ID})

	localB := fn.EmitInstr(armB, ir.NewInstr(ir.OpAdd, ir.I32, ir.ConstValue(ir.I32, 2), ir.ConstValue(ir.I32, 2)))
	armB.SetTerm(&ir.Term{Kind: ir.TermBr, Target: join.ID})

	join.SetTerm(&ir.Term{Kind: ir.TermReturn, ReturnVals: []ir.Value{ir.ConstValue(ir.I32, 0)}})
	fn.ConnectEdges()
	_, _ = localA, localB

	plan := Compute(fn, x86())
	offA, okA := plan.Offsets[localA.Reg]
	offB, okB := plan.Offsets[localB.Reg]
	if !okA || !okB {
		t.Fatal("expected both arms' block-local values to receive slots")
	}
	if offA != offB {
		t.Fatalf("expected both single-block arms to share the same Tier 3 physical offset, got %d and %d", offA, offB)
	}
}
