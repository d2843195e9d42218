// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package builtin implements the __builtin_*/__atomic_* registry: a
// predefined table of names, signatures, and lowering rules that
// internal/lower consults before emitting a normal call.
package builtin

import "github.com/dj707chen/claudes-c-compiler/internal/ir"

// Kind distinguishes how a builtin lowers.
type Kind uint8

const (
	// KindIntrinsic lowers to a single OpCallIntrinsic instruction; the
	// backend (out of scope) owns the final machine-code expansion.
	KindIntrinsic Kind = iota
	// KindInline marks builtins with a short open-coded form (bswap,
	// expect, unreachable). internal/lower does not expand them: apart
	// from __builtin_unreachable, which becomes an unreachable
	// terminator, they lower to a single OpCallIntrinsic like
	// KindIntrinsic.
	KindInline
	// KindVarargs marks __builtin_va_*. internal/lower emits them as a
	// single OpCallIntrinsic with the call's arguments; no variadic
	// state is tracked.
	KindVarargs
)

// Builtin describes one __builtin_* entry.
type Builtin struct {
	Name     string
	Kind     Kind
	ParamTys []ir.Type
	RetTy    ir.Type
	Variadic bool
}

// table is the registry consulted by internal/lower.
var table = map[string]*Builtin{
	"__builtin_memcpy": {Name: "__builtin_memcpy", Kind: KindIntrinsic,
		ParamTys: []ir.Type{ir.PtrTy, ir.PtrTy, ir.U64}, RetTy: ir.PtrTy},

	"__builtin_bswap16": {Name: "__builtin_bswap16", Kind: KindInline, ParamTys: []ir.Type{ir.U16}, RetTy: ir.U16},
	"__builtin_bswap32": {Name: "__builtin_bswap32", Kind: KindInline, ParamTys: []ir.Type{ir.U32}, RetTy: ir.U32},
	"__builtin_bswap64": {Name: "__builtin_bswap64", Kind: KindInline, ParamTys: []ir.Type{ir.U64}, RetTy: ir.U64},

	"__builtin_clz":     {Name: "__builtin_clz", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.U32}, RetTy: ir.I32},
	"__builtin_clzl":    {Name: "__builtin_clzl", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.U64}, RetTy: ir.I32},
	"__builtin_ctz":     {Name: "__builtin_ctz", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.U32}, RetTy: ir.I32},
	"__builtin_ctzl":    {Name: "__builtin_ctzl", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.U64}, RetTy: ir.I32},
	"__builtin_popcount":  {Name: "__builtin_popcount", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.U32}, RetTy: ir.I32},
	"__builtin_popcountl": {Name: "__builtin_popcountl", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.U64}, RetTy: ir.I32},
	"__builtin_parity":  {Name: "__builtin_parity", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.U32}, RetTy: ir.I32},
	"__builtin_parityl": {Name: "__builtin_parityl", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.U64}, RetTy: ir.I32},

	"__builtin_va_start": {Name: "__builtin_va_start", Kind: KindVarargs, ParamTys: []ir.Type{ir.PtrTy}, RetTy: ir.Void},
	"__builtin_va_arg":   {Name: "__builtin_va_arg", Kind: KindVarargs, ParamTys: []ir.Type{ir.PtrTy}, RetTy: ir.Void},
	"__builtin_va_copy":  {Name: "__builtin_va_copy", Kind: KindVarargs, ParamTys: []ir.Type{ir.PtrTy, ir.PtrTy}, RetTy: ir.Void},
	"__builtin_va_end":   {Name: "__builtin_va_end", Kind: KindVarargs, ParamTys: []ir.Type{ir.PtrTy}, RetTy: ir.Void},

	"__atomic_load_n":  {Name: "__atomic_load_n", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.PtrTy, ir.I32}, RetTy: ir.I64},
	"__atomic_store_n": {Name: "__atomic_store_n", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.PtrTy, ir.I64, ir.I32}, RetTy: ir.Void},
	"__atomic_fetch_add": {Name: "__atomic_fetch_add", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.PtrTy, ir.I64, ir.I32}, RetTy: ir.I64},
	"__atomic_compare_exchange_n": {Name: "__atomic_compare_exchange_n", Kind: KindIntrinsic,
		ParamTys: []ir.Type{ir.PtrTy, ir.PtrTy, ir.I64, ir.I32, ir.I32, ir.I32}, RetTy: ir.I32},

	"__builtin_expect":    {Name: "__builtin_expect", Kind: KindInline, ParamTys: []ir.Type{ir.I64, ir.I64}, RetTy: ir.I64},
	"__builtin_prefetch":  {Name: "__builtin_prefetch", Kind: KindIntrinsic, ParamTys: []ir.Type{ir.PtrTy}, RetTy: ir.Void, Variadic: true},
	"__builtin_unreachable": {Name: "__builtin_unreachable", Kind: KindInline, RetTy: ir.Void},
}

// Lookup returns the Builtin registered under name, or nil if name names
// no known builtin.
func Lookup(name string) *Builtin { return table[name] }

// IsBuiltin reports whether name is a registered __builtin_*/__atomic_*
// name.
func IsBuiltin(name string) bool {
	_, ok := table[name]
	return ok
}
