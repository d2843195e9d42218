// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver wires the middle end's stages together for cmd/cc.
// With internal/ast and internal/sema deliberately stubbed as
// boundary types rather than a real frontend, there is no C source
// for the CLI to parse; instead it ships a small set of bundled demo
// programs, built directly as *ast.TranslationUnit values the same
// way internal/lower's own tests build their fixtures (lower_test.go's
// mkIdent/mkIntLit/mkBinary helpers). Sample returns one program from
// the catalog by name, letting -program select one the way a real
// driver would select a source file.
package driver

import (
	"fmt"
	"sort"

	"github.com/dj707chen/claudes-c-compiler/internal/ast"
	"github.com/dj707chen/claudes-c-compiler/internal/sema"
)

// Program bundles a translation unit with the sema facts lowering
// needs alongside it: the frontend/middle-end boundary always hands
// these two over together.
type Program struct {
	Name string
	Unit *ast.TranslationUnit
	Sema *sema.Result
}

// idGen assigns the ExprIDs sema.Result's tables are keyed by, exactly
// as lower_test.go's fixtures do.
type idGen struct{ next ast.ExprID }

func (g *idGen) id() ast.ExprID {
	g.next++
	return g.next
}

func intCType() *sema.CType { return &sema.CType{Kind: sema.TInt} }
func ptrCType(elem *sema.CType) *sema.CType {
	return &sema.CType{Kind: sema.TPointer, Elem: elem}
}

func ident(g *idGen, res *sema.Result, name string, ct *sema.CType) *ast.Ident {
	n := &ast.Ident{Name: name}
	n.Eid = g.id()
	res.ExprTypes[n.Eid] = ct
	return n
}

func intLit(g *idGen, res *sema.Result, v uint64) *ast.IntLit {
	ct := intCType()
	n := &ast.IntLit{Value: v}
	n.Eid = g.id()
	res.ExprTypes[n.Eid] = ct
	res.ConstValues[n.Eid] = sema.ConstValue{Type: ct, Int: int64(v), IsInt: true}
	return n
}

func binary(g *idGen, res *sema.Result, op ast.BinOp, x, y ast.Expr) *ast.BinaryExpr {
	n := &ast.BinaryExpr{Op: op, X: x, Y: y}
	n.Eid = g.id()
	res.ExprTypes[n.Eid] = intCType()
	return n
}

func assign(g *idGen, res *sema.Result, lhs, rhs ast.Expr) *ast.AssignExpr {
	n := &ast.AssignExpr{Lhs: lhs, Rhs: rhs}
	n.Eid = g.id()
	res.ExprTypes[n.Eid] = intCType()
	return n
}

func call(g *idGen, res *sema.Result, callee ast.Expr, args ...ast.Expr) *ast.CallExpr {
	n := &ast.CallExpr{Callee: callee, Args: args}
	n.Eid = g.id()
	res.ExprTypes[n.Eid] = intCType()
	return n
}

func unary(g *idGen, res *sema.Result, op ast.UnOp, x ast.Expr, ct *sema.CType) *ast.UnaryExpr {
	n := &ast.UnaryExpr{Op: op, X: x}
	n.Eid = g.id()
	res.ExprTypes[n.Eid] = ct
	return n
}

func index(g *idGen, res *sema.Result, x, idx ast.Expr, elemCt *sema.CType) *ast.IndexExpr {
	n := &ast.IndexExpr{X: x, Index: idx}
	n.Eid = g.id()
	res.ExprTypes[n.Eid] = elemCt
	return n
}

// gcdProgram builds:
//
//	int gcd(int a, int b) {
//	    while (b) {
//	        int t = b;
//	        b = a % b;
//	        a = t;
//	    }
//	    return a;
//	}
//
// exercising while-loop lowering, the mem2reg promotion of a,b,t's
// allocas into a loop-carried phi, and the optimizer's GVN/LICM passes
// over genuinely loop-shaped control flow.
func gcdProgram() Program {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	res.Functions["gcd"] = &sema.FuncSig{Params: []*sema.CType{intCt, intCt}, Return: intCt}

	aRef := func() ast.Expr { return ident(g, res, "a", intCt) }
	bRef := func() ast.Expr { return ident(g, res, "b", intCt) }

	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.WhileStmt{
			Cond: bRef(),
			Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.DeclStmt{Names: []string{"t"}, Inits: []ast.Expr{bRef()}},
				&ast.ExprStmt{X: assign(g, res, bRef(), binary(g, res, ast.BMod, aRef(), bRef()))},
				&ast.ExprStmt{X: assign(g, res, aRef(), ident(g, res, "t", intCt))},
			}},
		},
		&ast.ReturnStmt{X: aRef()},
	}}

	fn := &ast.FuncDecl{
		Name:   "gcd",
		Params: []ast.Param{{Name: "a"}, {Name: "b"}},
		Body:   body,
	}
	return Program{Name: "gcd", Unit: &ast.TranslationUnit{Funcs: []*ast.FuncDecl{fn}}, Sema: res}
}

// sumSquaresProgram builds:
//
//	int sum_squares(int n) {
//	    int s = 0;
//	    int i = 0;
//	    for (i = 0; i < n; i = i + 1) {
//	        s = s + i * i;
//	    }
//	    return s;
//	}
//
// exercising for-loop lowering and the optimizer's GVN on the repeated
// i*i recomputation plus induction-variable strength reduction.
func sumSquaresProgram() Program {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	res.Functions["sum_squares"] = &sema.FuncSig{Params: []*sema.CType{intCt}, Return: intCt}

	sRef := func() ast.Expr { return ident(g, res, "s", intCt) }
	iRef := func() ast.Expr { return ident(g, res, "i", intCt) }
	nRef := func() ast.Expr { return ident(g, res, "n", intCt) }

	forStmt := &ast.ForStmt{
		Init: &ast.ExprStmt{X: assign(g, res, iRef(), intLit(g, res, 0))},
		Cond: binary(g, res, ast.BLt, iRef(), nRef()),
		Post: assign(g, res, iRef(), binary(g, res, ast.BAdd, iRef(), intLit(g, res, 1))),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: assign(g, res, sRef(), binary(g, res, ast.BAdd, sRef(), binary(g, res, ast.BMul, iRef(), iRef())))},
		}},
	}

	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.DeclStmt{Names: []string{"s"}, Inits: []ast.Expr{intLit(g, res, 0)}},
		&ast.DeclStmt{Names: []string{"i"}, Inits: []ast.Expr{intLit(g, res, 0)}},
		forStmt,
		&ast.ReturnStmt{X: sRef()},
	}}

	fn := &ast.FuncDecl{
		Name:   "sum_squares",
		Params: []ast.Param{{Name: "n"}},
		Body:   body,
	}
	return Program{Name: "sum_squares", Unit: &ast.TranslationUnit{Funcs: []*ast.FuncDecl{fn}}, Sema: res}
}

// swapProgram builds:
//
//	void swap(int *x, int *y) {
//	    int t = *x;
//	    *x = *y;
//	    *y = t;
//	}
//
// exercising pointer dereference lowering: the pointee traffic through
// *x and *y stays as plain load/store on the pointer values, since
// mem2reg only promotes the parameters' own allocas, not the memory
// they point at.
func swapProgram() Program {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	ptrCt := ptrCType(intCt)
	res.Functions["swap"] = &sema.FuncSig{Params: []*sema.CType{ptrCt, ptrCt}, Return: &sema.CType{Kind: sema.TVoid}}

	xRef := func() ast.Expr { return ident(g, res, "x", ptrCt) }
	yRef := func() ast.Expr { return ident(g, res, "y", ptrCt) }
	derefX := func() ast.Expr { return unary(g, res, ast.UDeref, xRef(), intCt) }
	derefY := func() ast.Expr { return unary(g, res, ast.UDeref, yRef(), intCt) }

	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.DeclStmt{Names: []string{"t"}, Inits: []ast.Expr{derefX()}},
		&ast.ExprStmt{X: assign(g, res, derefX(), derefY())},
		&ast.ExprStmt{X: assign(g, res, derefY(), ident(g, res, "t", intCt))},
		&ast.ReturnStmt{},
	}}

	fn := &ast.FuncDecl{
		Name:   "swap",
		Params: []ast.Param{{Name: "x"}, {Name: "y"}},
		Body:   body,
	}
	return Program{Name: "swap", Unit: &ast.TranslationUnit{Funcs: []*ast.FuncDecl{fn}}, Sema: res}
}

// branchyMaxProgram builds:
//
//	int branchy_max(int a, int b, int c) {
//	    int m;
//	    if (a > b) { m = a; } else { m = b; }
//	    if (c > m) { m = c; }
//	    return m;
//	}
//
// exercising two sequential if/else diamonds joining on the same local,
// which drives mem2reg to insert chained phis and phielim to lower
// them to predecessor-edge copies across more than one join point.
func branchyMaxProgram() Program {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	res.Functions["branchy_max"] = &sema.FuncSig{Params: []*sema.CType{intCt, intCt, intCt}, Return: intCt}

	aRef := func() ast.Expr { return ident(g, res, "a", intCt) }
	bRef := func() ast.Expr { return ident(g, res, "b", intCt) }
	cRef := func() ast.Expr { return ident(g, res, "c", intCt) }
	mRef := func() ast.Expr { return ident(g, res, "m", intCt) }

	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.DeclStmt{Names: []string{"m"}, Inits: []ast.Expr{nil}},
		&ast.IfStmt{
			Cond: binary(g, res, ast.BGt, aRef(), bRef()),
			Then: &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{X: assign(g, res, mRef(), aRef())}}},
			Else: &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{X: assign(g, res, mRef(), bRef())}}},
		},
		&ast.IfStmt{
			Cond: binary(g, res, ast.BGt, cRef(), mRef()),
			Then: &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{X: assign(g, res, mRef(), cRef())}}},
		},
		&ast.ReturnStmt{X: mRef()},
	}}

	fn := &ast.FuncDecl{
		Name:   "branchy_max",
		Params: []ast.Param{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Body:   body,
	}
	return Program{Name: "branchy_max", Unit: &ast.TranslationUnit{Funcs: []*ast.FuncDecl{fn}}, Sema: res}
}

// callerProgram builds a two-function translation unit:
//
//	__attribute__((always_inline)) int triple(int x) { return x * 3; }
//	int apply_triple(int n) { return triple(n) + triple(n); }
//
// exercising cross-function call lowering plus the optimizer's inliner
// (an always_inline, single-block, non-recursive callee) and the GVN pass's
// deduplication of the resulting repeated triple(n) call.
func callerProgram() Program {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	res.Functions["triple"] = &sema.FuncSig{Params: []*sema.CType{intCt}, Return: intCt}
	res.Functions["apply_triple"] = &sema.FuncSig{Params: []*sema.CType{intCt}, Return: intCt}

	xRef := ident(g, res, "x", intCt)
	tripleBody := &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{X: binary(g, res, ast.BMul, xRef, intLit(g, res, 3))},
	}}
	tripleFn := &ast.FuncDecl{Name: "triple", Params: []ast.Param{{Name: "x"}}, Body: tripleBody, Inline: true}

	nRef := func() ast.Expr { return ident(g, res, "n", intCt) }
	tripleCallee := func() ast.Expr { return ident(g, res, "triple", intCt) }
	applyBody := &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{X: binary(g, res, ast.BAdd,
			call(g, res, tripleCallee(), nRef()),
			call(g, res, tripleCallee(), nRef()),
		)},
	}}
	applyFn := &ast.FuncDecl{Name: "apply_triple", Params: []ast.Param{{Name: "n"}}, Body: applyBody}

	return Program{
		Name: "caller",
		Unit: &ast.TranslationUnit{Funcs: []*ast.FuncDecl{tripleFn, applyFn}},
		Sema: res,
	}
}

// vlaSumProgram builds:
//
//	int vla_sum(int n) {
//	    int buf[n];
//	    int i;
//	    int s = 0;
//	    for (i = 0; i < n; i = i + 1) buf[i] = i;
//	    for (i = 0; i < n; i = i + 1) s = s + buf[i];
//	    return s;
//	}
//
// exercising variable-length array lowering: the alloca's element count
// is a runtime value (n), and both loops index buf through the stride
// recorded at its declaration rather than a static element size.
func vlaSumProgram() Program {
	g := &idGen{}
	res := sema.NewResult()
	intCt := intCType()
	res.Functions["vla_sum"] = &sema.FuncSig{Params: []*sema.CType{intCt}, Return: intCt}

	arrCt := &sema.CType{Kind: sema.TArray, ArrayLen: -1, Elem: intCt}

	nRef := func() ast.Expr { return ident(g, res, "n", intCt) }
	bufRef := func() ast.Expr { return ident(g, res, "buf", arrCt) }
	iRef := func() ast.Expr { return ident(g, res, "i", intCt) }
	sRef := func() ast.Expr { return ident(g, res, "s", intCt) }

	vlaID := g.id()
	res.ExprTypes[vlaID] = arrCt
	vlaDecl := &ast.VLADeclStmt{ID: vlaID, Name: "buf", Len: nRef()}

	storeLoop := &ast.ForStmt{
		Init: &ast.ExprStmt{X: assign(g, res, iRef(), intLit(g, res, 0))},
		Cond: binary(g, res, ast.BLt, iRef(), nRef()),
		Post: assign(g, res, iRef(), binary(g, res, ast.BAdd, iRef(), intLit(g, res, 1))),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: assign(g, res, index(g, res, bufRef(), iRef(), intCt), iRef())},
		}},
	}
	sumLoop := &ast.ForStmt{
		Init: &ast.ExprStmt{X: assign(g, res, iRef(), intLit(g, res, 0))},
		Cond: binary(g, res, ast.BLt, iRef(), nRef()),
		Post: assign(g, res, iRef(), binary(g, res, ast.BAdd, iRef(), intLit(g, res, 1))),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: assign(g, res, sRef(), binary(g, res, ast.BAdd, sRef(), index(g, res, bufRef(), iRef(), intCt)))},
		}},
	}

	body := &ast.Block{Stmts: []ast.Stmt{
		vlaDecl,
		&ast.DeclStmt{Names: []string{"i"}, Inits: []ast.Expr{nil}},
		&ast.DeclStmt{Names: []string{"s"}, Inits: []ast.Expr{intLit(g, res, 0)}},
		storeLoop,
		sumLoop,
		&ast.ReturnStmt{X: sRef()},
	}}

	fn := &ast.FuncDecl{Name: "vla_sum", Params: []ast.Param{{Name: "n"}}, Body: body}
	return Program{Name: "vla_sum", Unit: &ast.TranslationUnit{Funcs: []*ast.FuncDecl{fn}}, Sema: res}
}

// catalog lists every bundled demo program, keyed by its -program name.
func catalog() map[string]func() Program {
	return map[string]func() Program{
		"gcd":         gcdProgram,
		"sum_squares": sumSquaresProgram,
		"swap":        swapProgram,
		"branchy_max": branchyMaxProgram,
		"caller":      callerProgram,
		"vla_sum":     vlaSumProgram,
	}
}

// Sample returns the named bundled demo program.
func Sample(name string) (Program, error) {
	build, ok := catalog()[name]
	if !ok {
		return Program{}, fmt.Errorf("unknown demo program %q (see -list)", name)
	}
	return build(), nil
}

// Names returns every bundled demo program's name, sorted.
func Names() []string {
	c := catalog()
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
