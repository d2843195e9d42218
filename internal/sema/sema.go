// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sema implements the SemaResult boundary struct: the
// function-signature table, struct/union/typedef/enum
// type context, and the per-expression type and constant tables that
// internal/lower consumes instead of re-deriving C semantics itself.
//
// Like internal/ast, this package is a boundary stub, not a type
// checker: source-level type checking stays out of this
// core's scope. Test fixtures populate a Result directly.
package sema

import "github.com/dj707chen/claudes-c-compiler/internal/ast"

// TypeKind is a C-level type kind, richer than ir.Type: it survives
// until lowering flattens it to the IR's machine types.
type TypeKind uint8

const (
	TVoid TypeKind = iota
	TBool
	TChar
	TSChar
	TUChar
	TShort
	TUShort
	TInt
	TUInt
	TLong
	TULong
	TLongLong
	TULongLong
	TFloat
	TDouble
	TLongDouble
	TPointer
	TArray
	TStruct
	TUnion
	TFunction
)

// CType is a C-level type. Atomic is tracked but, treated as a no-op below the sema boundary: lowering strips
// it when building the IR type, and atomic IR operations are only ever
// generated from explicit __atomic_* builtin calls.
type CType struct {
	Kind     TypeKind
	Const    bool
	Volatile bool
	Atomic   bool

	Elem     *CType // TPointer, TArray
	ArrayLen int64  // TArray; -1 if a VLA (length is a runtime value, recorded separately)

	StructName string // TStruct, TUnion: key into TypeContext.Structs

	// TFunction
	Params   []*CType
	Variadic bool
	Return   *CType
}

// IsInteger reports whether t is a C integer type (including _Bool and
// char variants).
func (t *CType) IsInteger() bool {
	switch t.Kind {
	case TBool, TChar, TSChar, TUChar, TShort, TUShort, TInt, TUInt,
		TLong, TULong, TLongLong, TULongLong:
		return true
	}
	return false
}

// IsSigned reports whether an integer CType is signed. Plain `char` is
// treated as signed, matching the target ABI's default.
func (t *CType) IsSigned() bool {
	switch t.Kind {
	case TChar, TSChar, TShort, TInt, TLong, TLongLong:
		return true
	}
	return false
}

// IsFloat reports whether t is a C floating type.
func (t *CType) IsFloat() bool {
	switch t.Kind {
	case TFloat, TDouble, TLongDouble:
		return true
	}
	return false
}

// IsPointer reports whether t is a pointer type, including a
// pointer-to-pointer or pointer-to-function-pointer — a derived-chain
// distinction that collapsing to a flat kind would erase — is
// preserved because Elem is itself a full CType, not a flattened kind.
func (t *CType) IsPointer() bool { return t.Kind == TPointer }

// FieldLayout is one member of a struct/union layout: its offset,
// alignment contribution, and — for bitfields — its container width and
// bit position.
type FieldLayout struct {
	Name   string
	Type   *CType
	Offset int64 // byte offset of the containing storage unit

	// Bitfield-only; BitWidth == 0 means this field is not a bitfield.
	BitWidth     int
	BitOffset    int // offset within the container, LSB = 0
	ContainerTy  *CType // the integer type lowering loads/stores through
}

// StructLayout is a fully computed struct or union layout (Pass 1:
// "compute every struct/union layout (field offsets, alignment,
// padding, bitfield containers)").
type StructLayout struct {
	Name   string
	Fields []FieldLayout
	Size   int64
	Align  int64
	Union  bool
}

// Field returns the layout of the named member, or nil.
func (s *StructLayout) Field(name string) *FieldLayout {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// FuncSig is one function's signature as registered by sema Pass 1
//.
type FuncSig struct {
	Params   []*CType
	Return   *CType
	Variadic bool
	SRet     bool // true when Return is a large-enough aggregate to require a hidden pointer return
}

// TypeContext holds the type-level facts computed in sema Pass 1:
// struct/union layouts, typedef aliases, and enum constants.
type TypeContext struct {
	Structs  map[string]*StructLayout
	Typedefs map[string]*CType
	Enums    map[string]int64
}

// NewTypeContext returns an empty TypeContext.
func NewTypeContext() *TypeContext {
	return &TypeContext{
		Structs:  map[string]*StructLayout{},
		Typedefs: map[string]*CType{},
		Enums:    map[string]int64{},
	}
}

// ConstValue is a compile-time constant recorded for some expression,
// provided as a fast path bypassing lowering's own evaluator.
type ConstValue struct {
	Type  *CType
	Int   int64
	Float float64
	IsInt bool
}

// Result is the boundary struct named SemaResult: what
// internal/lower consumes alongside the *ast.TranslationUnit.
type Result struct {
	Functions   map[string]*FuncSig
	TypeContext *TypeContext
	ExprTypes   map[ast.ExprID]*CType
	ConstValues map[ast.ExprID]ConstValue
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{
		Functions:   map[string]*FuncSig{},
		TypeContext: NewTypeContext(),
		ExprTypes:   map[ast.ExprID]*CType{},
		ConstValues: map[ast.ExprID]ConstValue{},
	}
}

// TypeOf returns the CType recorded for expression id, or nil.
func (r *Result) TypeOf(id ast.ExprID) *CType { return r.ExprTypes[id] }

// ConstOf returns the constant recorded for expression id, and whether
// one exists.
func (r *Result) ConstOf(id ast.ExprID) (ConstValue, bool) {
	c, ok := r.ConstValues[id]
	return c, ok
}
