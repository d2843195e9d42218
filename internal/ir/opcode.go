// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// Op is the compact opcode discriminant for an Instruction.
type Op uint8

const (
	OpInvalid Op = iota

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpUDiv
	OpSDiv
	OpURem
	OpSRem

	// Float arithmetic.
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv

	// Bitwise.
	OpAnd
	OpOr
	OpXor
	OpShl
	OpLShr
	OpAShr

	// Integer compare.
	OpICmpEQ
	OpICmpNE
	OpICmpULT
	OpICmpULE
	OpICmpUGT
	OpICmpUGE
	OpICmpSLT
	OpICmpSLE
	OpICmpSGT
	OpICmpSGE

	// Float compare (ordered/unordered).
	OpFCmpOEQ
	OpFCmpONE
	OpFCmpOLT
	OpFCmpOLE
	OpFCmpOGT
	OpFCmpOGE
	OpFCmpUEQ
	OpFCmpUNE

	// Casts.
	OpSExt
	OpZExt
	OpTrunc
	OpIToF
	OpFToI
	OpBitcast
	OpPtrCast

	// Memory.
	OpAlloca
	OpLoad
	OpStore
	OpGEP
	OpMemcpy

	// Calls.
	OpCall
	OpCallIndirect
	OpCallIntrinsic

	// Control / misc.
	OpPhi
	OpSelect
	OpUnreachable
	OpInlineAsm
	OpCopy // introduced by phi elimination; not valid before it.
)

// IsTerminator reports whether op ends a basic block. Terminators are
// modeled on Term (see block.go), not Instruction, but this helper keeps
// callers that walk a mixed stream honest: no branch-like instruction
// ever appears among non-terminators.
func (op Op) IsTerminator() bool { return false }

// HasSideEffects reports whether an instruction with this opcode must be
// kept by DCE even with zero users.
func (op Op) HasSideEffects() bool {
	switch op {
	case OpStore, OpCall, OpCallIndirect, OpCallIntrinsic, OpInlineAsm, OpMemcpy, OpUnreachable:
		return true
	}
	return false
}

// IsPure reports whether op is eligible for GVN congruence: hash-based
// congruence only holds for pure opcodes, never for loads through memory.
func (op Op) IsPure() bool {
	switch op {
	case OpLoad, OpStore, OpAlloca, OpCall, OpCallIndirect, OpCallIntrinsic,
		OpInlineAsm, OpMemcpy, OpPhi, OpUnreachable:
		return false
	default:
		return true
	}
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "op?"
}

var opNames = [...]string{
	OpInvalid:        "invalid",
	OpAdd:            "add",
	OpSub:            "sub",
	OpMul:            "mul",
	OpUDiv:           "udiv",
	OpSDiv:           "sdiv",
	OpURem:           "urem",
	OpSRem:           "srem",
	OpFAdd:           "fadd",
	OpFSub:           "fsub",
	OpFMul:           "fmul",
	OpFDiv:           "fdiv",
	OpAnd:            "and",
	OpOr:             "or",
	OpXor:            "xor",
	OpShl:            "shl",
	OpLShr:           "lshr",
	OpAShr:           "ashr",
	OpICmpEQ:         "icmp.eq",
	OpICmpNE:         "icmp.ne",
	OpICmpULT:        "icmp.ult",
	OpICmpULE:        "icmp.ule",
	OpICmpUGT:        "icmp.ugt",
	OpICmpUGE:        "icmp.uge",
	OpICmpSLT:        "icmp.slt",
	OpICmpSLE:        "icmp.sle",
	OpICmpSGT:        "icmp.sgt",
	OpICmpSGE:        "icmp.sge",
	OpFCmpOEQ:        "fcmp.oeq",
	OpFCmpONE:        "fcmp.one",
	OpFCmpOLT:        "fcmp.olt",
	OpFCmpOLE:        "fcmp.ole",
	OpFCmpOGT:        "fcmp.ogt",
	OpFCmpOGE:        "fcmp.oge",
	OpFCmpUEQ:        "fcmp.ueq",
	OpFCmpUNE:        "fcmp.une",
	OpSExt:           "sext",
	OpZExt:           "zext",
	OpTrunc:          "trunc",
	OpIToF:           "itof",
	OpFToI:           "ftoi",
	OpBitcast:        "bitcast",
	OpPtrCast:        "ptrcast",
	OpAlloca:         "alloca",
	OpLoad:           "load",
	OpStore:          "store",
	OpGEP:            "gep",
	OpMemcpy:         "memcpy",
	OpCall:           "call",
	OpCallIndirect:   "call.indirect",
	OpCallIntrinsic:  "call.intrinsic",
	OpPhi:            "phi",
	OpSelect:         "select",
	OpUnreachable:    "unreachable",
	OpInlineAsm:      "asm",
	OpCopy:           "copy",
}
