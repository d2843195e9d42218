// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// byteArena is a bump allocator for flat, pointer-free byte content:
// the string-literal pool and global initializer bytes. This storage
// never needs to be scanned by the garbage collector for pointers,
// making it safe to back with raw mmap'd memory. Values, Instrs and
// Blocks are NOT arena-allocated here: they
// hold Go strings and slices, and memory the GC cannot see into must
// never store live pointers, so only pointer-free byte runs use the
// mmap-backed implementation.
//
// newByteArena is provided per-platform: arena_mmap_unix.go on
// unix/{amd64,arm64} (golang.org/x/sys/unix-backed), arena_generic.go
// everywhere else, mirroring internal_local/cpu's per-arch file split.
type byteArena interface {
	// alloc returns a freshly zeroed slice of length n. Slices returned
	// by successive calls do not alias.
	alloc(n int) []byte
}

const byteArenaChunkSize = 1 << 20 // 1 MiB
