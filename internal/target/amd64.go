// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

// X86_64 is the LP64 System V AMD64 ABI target.
var X86_64 = &Descriptor{
	Name:          "x86_64",
	PointerBits:   64,
	Endian:        LittleEndian,
	ABITag:        "sysv-amd64",
	StackAlign:    16,
	HasHWDivide64: true,
}
