// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import "github.com/dj707chen/claudes-c-compiler/internal/srcpos"

// BlockID is a small dense id for a BasicBlock, unique within a
// Function.
type BlockID int32

// PhiEdge is one incoming (predecessor, value) pair of a Phi.
type PhiEdge struct {
	Pred BlockID
	Val  Value
}

// Phi selects a value per incoming predecessor. Phis
// are only valid in SSA form and only appear at block heads; phielim
// removes them all.
type Phi struct {
	ID         ValueID
	ResultType Type
	Incoming   []PhiEdge
	Pos        srcpos.Pos
}

// IncomingFrom returns the value phi selects when control arrives from
// pred, and reports whether pred is one of phi's incoming edges.
func (p *Phi) IncomingFrom(pred BlockID) (Value, bool) {
	for _, e := range p.Incoming {
		if e.Pred == pred {
			return e.Val, true
		}
	}
	return Value{}, false
}

// TermKind discriminates a basic block's single terminator instruction.
type TermKind uint8

const (
	TermInvalid TermKind = iota
	TermBr               // unconditional branch
	TermCondBr           // conditional branch
	TermReturn
	TermUnreachable
	TermIndirectBr
	TermSwitch
)

// SwitchCase is one labeled arm of a switch terminator.
type SwitchCase struct {
	Val    Const
	Target BlockID
}

// Term is a basic block's terminator: exactly one of conditional branch,
// unconditional branch, return, unreachable, indirect branch, or switch
//.
type Term struct {
	Kind TermKind

	Target BlockID // TermBr

	Cond       Value // TermCondBr
	TrueBlock  BlockID
	FalseBlock BlockID

	ReturnVals []Value // TermReturn: 0 or 1 values (sret returns via hidden pointer param, not here)

	IndirectAddr     Value // TermIndirectBr
	IndirectPossible []BlockID

	SwitchVal     Value // TermSwitch
	SwitchCases   []SwitchCase
	SwitchDefault BlockID

	Pos srcpos.Pos
}

// Successors returns the blocks this terminator may transfer control to,
// in a stable order. Every block it names must exist in the function
//.
func (t *Term) Successors() []BlockID {
	switch t.Kind {
	case TermBr:
		return []BlockID{t.Target}
	case TermCondBr:
		return []BlockID{t.TrueBlock, t.FalseBlock}
	case TermSwitch:
		out := make([]BlockID, 0, len(t.SwitchCases)+1)
		for _, c := range t.SwitchCases {
			out = append(out, c.Target)
		}
		return append(out, t.SwitchDefault)
	case TermIndirectBr:
		return append([]BlockID(nil), t.IndirectPossible...)
	default: // TermReturn, TermUnreachable
		return nil
	}
}

// BasicBlock is a maximal straight-line instruction sequence entered
// only at the top and exited only at the terminator (GLOSSARY). It holds
// phi instructions (SSA form only), followed by non-terminator
// instructions, followed by exactly one terminator.
type BasicBlock struct {
	ID    BlockID
	Label string

	Phis  []*Phi
	Instr []*Instr
	Term  *Term

	Preds []BlockID
	Succs []BlockID // denormalized cache of Term.Successors(), rebuilt by ConnectEdges
}

// AddPhi appends a phi to the block head.
func (b *BasicBlock) AddPhi(p *Phi) { b.Phis = append(b.Phis, p) }

// Append adds a non-terminator instruction to the block.
func (b *BasicBlock) Append(in *Instr) { b.Instr = append(b.Instr, in) }

// SetTerm installs b's terminator, replacing any previous one.
func (b *BasicBlock) SetTerm(t *Term) { b.Term = t }

// HasTerm reports whether b's terminator has been set.
func (b *BasicBlock) HasTerm() bool { return b.Term != nil && b.Term.Kind != TermInvalid }

// RemovePhi deletes the phi with the given id, if present.
func (b *BasicBlock) RemovePhi(id ValueID) {
	for i, p := range b.Phis {
		if p.ID == id {
			b.Phis = append(b.Phis[:i], b.Phis[i+1:]...)
			return
		}
	}
}

// RemoveInstrAt deletes the instruction at position i, preserving order.
func (b *BasicBlock) RemoveInstrAt(i int) {
	b.Instr = append(b.Instr[:i], b.Instr[i+1:]...)
}
