// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

// ARM64 is the LP64 AAPCS64 (AArch64) target.
var ARM64 = &Descriptor{
	Name:          "arm64",
	PointerBits:   64,
	Endian:        LittleEndian,
	ABITag:        "aapcs64",
	StackAlign:    16,
	HasHWDivide64: true,
}
