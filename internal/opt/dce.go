// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// dce removes instructions and phis with no users and no side effects
// (spec.md §4.3: "stores, calls, volatile loads, inline asm are always
// considered effectful"). It iterates to a local fixed point, since
// removing one dead instruction's last use can make its own operand
// dead in turn.
func dce(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	changed := false
	for {
		roundChanged := false
		for _, b := range fn.Blocks {
			for i := 0; i < len(b.Instr); i++ {
				in := b.Instr[i]
				if !in.HasResult() || hasSideEffect(in) || countUses(fn, in.ID) > 0 {
					continue
				}
				b.RemoveInstrAt(i)
				fn.ForgetDef(in.ID)
				i--
				roundChanged = true
			}
			for i := 0; i < len(b.Phis); i++ {
				p := b.Phis[i]
				if countUses(fn, p.ID) > 0 {
					continue
				}
				b.RemovePhi(p.ID)
				fn.ForgetDef(p.ID)
				i--
				roundChanged = true
			}
		}
		if !roundChanged {
			break
		}
		changed = true
	}
	return changed
}

func hasSideEffect(in *ir.Instr) bool {
	if in.Op.HasSideEffects() {
		return true
	}
	if in.Op == ir.OpLoad {
		if aux, ok := in.Aux.(*ir.LoadStoreAux); ok && aux.Volatile {
			return true
		}
	}
	return false
}
