// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ast implements the typed AST that internal/lower consumes at
// the frontend/middle-end boundary. It is deliberately
// thin: the preprocessor, lexer, parser, and semantic analyzer that
// would populate it are out of scope; test fixtures build
// *TranslationUnit values directly instead of parsing source, the way
// golang.org/x/tools' ssa package tests build *ssa.Function literals
// rather than invoking go/parser.
package ast

import "github.com/dj707chen/claudes-c-compiler/internal/srcpos"

// ExprID is the key shared with sema.Result's ExprTypes/ConstValues
// tables.
type ExprID int32

// TranslationUnit is the root of one compiled C source file.
type TranslationUnit struct {
	Funcs   []*FuncDecl
	Globals []*GlobalDecl
}

// Param is one formal parameter declarator.
type Param struct {
	Name string
	Pos  srcpos.Pos
}

// FuncDecl is a function prototype or definition. Body is nil for a
// prototype.
type FuncDecl struct {
	Name     string
	Params   []Param
	Variadic bool
	Static   bool
	Inline   bool // requests always_inline when marked __attribute__((always_inline)) or C `inline` at -O
	Body     *Block
	Pos      srcpos.Pos
}

// GlobalDecl is a file-scope variable declaration. ID keys into the
// SemaResult's ExprTypes table for the declared type, the same way an
// ordinary expression's id does, so internal/lower can compute the
// global's real size and alignment instead of inferring them from the
// initializer's Go-level representation.
type GlobalDecl struct {
	ID     ExprID
	Name   string
	Static bool
	Init   Expr // nil for tentative/extern definitions
	Pos    srcpos.Pos
}

// Stmt is any C statement.
type Stmt interface{ stmtNode() }

// Block is a compound statement: `{ ... }`. It also serves as a function
// body and introduces a lexical scope.
type Block struct {
	Stmts []Stmt
	Pos   srcpos.Pos
}

func (*Block) stmtNode() {}

// DeclStmt declares one or more local variables.
type DeclStmt struct {
	Names []string
	Inits []Expr // Inits[i] is nil if Names[i] has no initializer
	Pos   srcpos.Pos
}

func (*DeclStmt) stmtNode() {}

// VLADeclStmt declares one variable-length array local, `T name[Len];`,
// where Len is evaluated once at the declaration. ID keys into the
// SemaResult's ExprTypes table the same way an ordinary expression's id
// does, giving the VLA's element CType to internal/lower without
// internal/ast depending on internal/sema.
type VLADeclStmt struct {
	ID   ExprID
	Name string
	Len  Expr
	Pos  srcpos.Pos
}

func (*VLADeclStmt) stmtNode() {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	X   Expr
	Pos srcpos.Pos
}

func (*ExprStmt) stmtNode() {}

// IfStmt is `if (Cond) Then [else Else]`.
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else clause
	Pos  srcpos.Pos
}

func (*IfStmt) stmtNode() {}

// WhileStmt is `while (Cond) Body`.
type WhileStmt struct {
	Cond Expr
	Body Stmt
	Pos  srcpos.Pos
}

func (*WhileStmt) stmtNode() {}

// ForStmt is `for (Init; Cond; Post) Body`. Any of Init/Cond/Post may be
// nil.
type ForStmt struct {
	Init Stmt
	Cond Expr
	Post Expr
	Body Stmt
	Pos  srcpos.Pos
}

func (*ForStmt) stmtNode() {}

// ReturnStmt is `return [X];`.
type ReturnStmt struct {
	X   Expr // nil for a void return
	Pos srcpos.Pos
}

func (*ReturnStmt) stmtNode() {}

// BreakStmt targets the innermost loop or switch.
type BreakStmt struct{ Pos srcpos.Pos }

func (*BreakStmt) stmtNode() {}

// ContinueStmt targets the innermost loop.
type ContinueStmt struct{ Pos srcpos.Pos }

func (*ContinueStmt) stmtNode() {}

// GotoStmt jumps to a label, possibly forward.
type GotoStmt struct {
	Label string
	Pos   srcpos.Pos
}

func (*GotoStmt) stmtNode() {}

// LabelStmt declares a goto target.
type LabelStmt struct {
	Name string
	Stmt Stmt
	Pos  srcpos.Pos
}

func (*LabelStmt) stmtNode() {}

// SwitchStmt is `switch (Tag) Body`, where Body contains CaseStmt/
// DefaultStmt markers at arbitrary nesting (Duff's-device-style C
// switch semantics).
type SwitchStmt struct {
	Tag  Expr
	Body Stmt
	Pos  srcpos.Pos
}

func (*SwitchStmt) stmtNode() {}

// CaseStmt marks `case Val:` within an enclosing switch.
type CaseStmt struct {
	Val Expr
	Pos srcpos.Pos
}

func (*CaseStmt) stmtNode() {}

// DefaultStmt marks `default:` within an enclosing switch.
type DefaultStmt struct{ Pos srcpos.Pos }

func (*DefaultStmt) stmtNode() {}

// Expr is any C expression. Every expression node carries the ExprID
// used to key sema.Result.ExprTypes/ConstValues.
type Expr interface {
	exprNode()
	ID() ExprID
}

type exprBase struct {
	Eid ExprID
	Pos srcpos.Pos
}

func (e exprBase) ID() ExprID { return e.Eid }
func (exprBase) exprNode()    {}

// Ident is a reference to a local, parameter, global, or function.
type Ident struct {
	exprBase
	Name string
}

// IntLit is an integer literal; its C type (and signedness/width after
// integer promotion) is recorded in sema.Result.ExprTypes.
type IntLit struct {
	exprBase
	Value uint64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	exprBase
	Value float64
}

// StringLit is a string literal; lowering interns its bytes in the
// module's content-addressed string pool.
type StringLit struct {
	exprBase
	Value string
}

// BinOp enumerates binary operators, including the two short-circuit
// operators which lower to diamond control flow rather than boolean ops
//.
type BinOp uint8

const (
	BAdd BinOp = iota
	BSub
	BMul
	BDiv
	BMod
	BAnd
	BOr
	BXor
	BShl
	BShr
	BEq
	BNe
	BLt
	BLe
	BGt
	BGe
	BLAnd // &&
	BLOr  // ||
)

// BinaryExpr is `X Op Y`.
type BinaryExpr struct {
	exprBase
	Op   BinOp
	X, Y Expr
}

// UnOp enumerates unary operators.
type UnOp uint8

const (
	UNeg UnOp = iota
	UNot
	ULNot // logical not
	UAddr // &x
	UDeref
	UPreInc
	UPreDec
	UPostInc
	UPostDec
)

// UnaryExpr is `Op X`.
type UnaryExpr struct {
	exprBase
	Op UnOp
	X  Expr
}

// AssignExpr is `Lhs = Rhs` or a compound assignment (`Lhs += Rhs`,
// etc.), named by CompoundOp; CompoundOp is nil for plain `=`.
type AssignExpr struct {
	exprBase
	Lhs, Rhs    Expr
	CompoundOp  *BinOp
}

// CondExpr is the ternary `Cond ? Then : Else`. Lowering picks `select`
// only when both arms are side-effect-free, diamond control flow
// otherwise.
type CondExpr struct {
	exprBase
	Cond, Then, Else Expr
}

// CallExpr is a function call, including calls to __builtin_* names
//, which lowering recognizes by Callee's identifier name
// before falling back to a normal call.
type CallExpr struct {
	exprBase
	Callee Expr
	Args   []Expr
}

// MemberExpr is `X.Field` (Arrow == false) or `X->Field` (Arrow ==
// true).
type MemberExpr struct {
	exprBase
	X     Expr
	Field string
	Arrow bool
}

// IndexExpr is `X[Index]`, sugar for `*(X + Index)`.
type IndexExpr struct {
	exprBase
	X, Index Expr
}

// CastExpr is an explicit `(T)X` cast; implicit conversions required by
// C's usual arithmetic conversions are materialized by lowering itself
// without a CastExpr node.
type CastExpr struct {
	exprBase
	X Expr
}

// SizeofExpr is `sizeof(expr-or-type)`; its value is always resolved to
// a constant by sema and found in sema.Result.ConstValues, so lowering
// never evaluates it directly.
type SizeofExpr struct {
	exprBase
	X Expr
}
