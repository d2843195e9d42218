// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"fmt"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/mem2reg"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// gvn performs hash-based global value numbering: instructions with a
// pure opcode (spec.md §4.3: "no loads through memory") are partitioned
// by (opcode, result type, ordered operand representatives); within a
// partition, every member that doesn't dominate the others is replaced
// by the one that does.
func gvn(fn *ir.Function, _ *target.Descriptor) bool {
	if fn.IsDeclaration() {
		return false
	}
	fn.ConnectEdges()
	dt := mem2reg.BuildDomTree(fn)

	classes := map[string][]*ir.Instr{}
	blockOfInstr := map[*ir.Instr]ir.BlockID{}
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			blockOfInstr[in] = b.ID
			if !in.HasResult() || !in.Op.IsPure() {
				continue
			}
			classes[congruenceKey(in)] = append(classes[congruenceKey(in)], in)
		}
	}

	changed := false
	for _, members := range classes {
		if len(members) < 2 {
			continue
		}
		leader := members[0]
		for _, m := range members[1:] {
			switch {
			case dt.Dominates(blockOfInstr[leader], blockOfInstr[m]):
				replaceAllUses(fn, m.ID, ir.RegValue(leader.ID))
				changed = true
			case dt.Dominates(blockOfInstr[m], blockOfInstr[leader]):
				replaceAllUses(fn, leader.ID, ir.RegValue(m.ID))
				leader = m
				changed = true
			}
			// Neither dominates the other (siblings in the CFG): GVN
			// only merges along a dominance relationship, so both stay.
		}
	}
	return changed
}

func congruenceKey(in *ir.Instr) string {
	s := fmt.Sprintf("%d|%s", in.Op, in.ResultType)
	for i := 0; i < in.NumOperands(); i++ {
		s += "|" + operandKey(in.Operand(i))
	}
	return s
}
