// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

// I686 is the ILP32 i386 System V ABI target. Its 32-bit pointer
// width is the reason internal/opt's narrow pass is documented as
// one-directional (spec.md's Design Notes "open question" on 64-bit
// operations on 32-bit targets): a 64-bit IR value stays nominally
// 64-bit here, with the register-pair split left to the backend.
var I686 = &Descriptor{
	Name:          "i686",
	PointerBits:   32,
	Endian:        LittleEndian,
	ABITag:        "sysv-i386",
	StackAlign:    16,
	HasHWDivide64: false,
}
