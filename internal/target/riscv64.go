// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

// RISCV64 is the LP64D RISC-V 64 ABI target.
var RISCV64 = &Descriptor{
	Name:          "riscv64",
	PointerBits:   64,
	Endian:        LittleEndian,
	ABITag:        "lp64d",
	StackAlign:    16,
	HasHWDivide64: true,
}
