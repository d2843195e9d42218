// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import (
	"fmt"
	"strings"
)

// Dump renders fn as human-readable text, used by tests that assert on
// IR shape and by -dumpir in cmd/cc.
func (fn *Function) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s %s", p.Name, p.Type)
	}
	fmt.Fprintf(&sb, ") %s {\n", fn.Sig.ReturnType)
	if fn.IsDeclaration() {
		sb.WriteString("  <declaration>\n}\n")
		return sb.String()
	}
	for _, b := range fn.Blocks {
		fmt.Fprintf(&sb, "bb%d: %s\n", b.ID, b.Label)
		for _, p := range b.Phis {
			fmt.Fprintf(&sb, "  v%d = phi %s", p.ID, p.ResultType)
			for _, e := range p.Incoming {
				fmt.Fprintf(&sb, " [bb%d: %s]", e.Pred, e.Val)
			}
			sb.WriteString("\n")
		}
		for _, in := range b.Instr {
			dumpInstr(&sb, in)
		}
		dumpTerm(&sb, b.Term)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func dumpInstr(sb *strings.Builder, in *Instr) {
	if in.HasResult() {
		fmt.Fprintf(sb, "  v%d = %s %s", in.ID, in.Op, in.ResultType)
	} else {
		fmt.Fprintf(sb, "  %s", in.Op)
	}
	for i := 0; i < in.NumOperands(); i++ {
		fmt.Fprintf(sb, " %s", in.Operand(i))
	}
	sb.WriteString("\n")
}

func dumpTerm(sb *strings.Builder, t *Term) {
	if t == nil {
		sb.WriteString("  <no terminator>\n")
		return
	}
	switch t.Kind {
	case TermBr:
		fmt.Fprintf(sb, "  br bb%d\n", t.Target)
	case TermCondBr:
		fmt.Fprintf(sb, "  br %s, bb%d, bb%d\n", t.Cond, t.TrueBlock, t.FalseBlock)
	case TermReturn:
		if len(t.ReturnVals) == 0 {
			sb.WriteString("  ret\n")
		} else {
			fmt.Fprintf(sb, "  ret %s\n", t.ReturnVals[0])
		}
	case TermUnreachable:
		sb.WriteString("  unreachable\n")
	case TermIndirectBr:
		fmt.Fprintf(sb, "  indirectbr %s\n", t.IndirectAddr)
	case TermSwitch:
		fmt.Fprintf(sb, "  switch %s, bb%d", t.SwitchVal, t.SwitchDefault)
		for _, c := range t.SwitchCases {
			fmt.Fprintf(sb, " [%s: bb%d]", c.Val, c.Target)
		}
		sb.WriteString("\n")
	default:
		sb.WriteString("  <invalid terminator>\n")
	}
}

// Dump renders every function in m.
func (m *Module) Dump() string {
	var sb strings.Builder
	for _, fn := range m.Functions {
		sb.WriteString(fn.Dump())
	}
	return sb.String()
}
