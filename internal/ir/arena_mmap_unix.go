// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix && (amd64 || arm64)

package ir

import "golang.org/x/sys/unix"

// mmapByteArena allocates pointer-free byte chunks via an anonymous
// mmap instead of the Go heap. A single compilation unit can intern
// thousands of string literals and flatten large global initializers to
// bytes; keeping that traffic off the Go heap
// avoids inflating GC scan work with content the collector never needs
// to trace.
type mmapByteArena struct {
	chunks [][]byte
	cur    []byte // remaining capacity of the active chunk
}

func newByteArena() byteArena {
	return &mmapByteArena{}
}

func (a *mmapByteArena) alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	if len(a.cur) < n {
		size := byteArenaChunkSize
		if n > size {
			size = n
		}
		chunk, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			// Fall back to heap memory for this chunk rather than
			// aborting the compilation over an mmap failure (e.g. a
			// sandboxed environment that denies MAP_ANON).
			chunk = make([]byte, size)
		}
		a.chunks = append(a.chunks, chunk)
		a.cur = chunk
	}
	out := a.cur[:n:n]
	a.cur = a.cur[n:]
	return out
}
