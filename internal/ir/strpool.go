// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import "golang.org/x/crypto/blake2b"

// StringKey is a content hash identifying an interned string literal.
// Two literals with identical bytes always share a StringKey, which is
// what makes the pool content-addressed.
type StringKey [blake2b.Size256]byte

// StringPool interns string-literal byte content. It is content
// addressed: Intern(b) returns the same key for equal b regardless of
// how many times or where in the translation unit it is lowered from,
// so internal/lower's per-function string-literal intern table
// can simply ask the module pool rather than deduplicating
// per function.
type StringPool struct {
	arena   byteArena
	index   map[StringKey]int // key -> index into entries
	entries []StringLiteral
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{arena: newByteArena(), index: map[StringKey]int{}}
}

// Intern adds b to the pool if not already present and returns its
// content key. The returned key is stable for the lifetime of the pool.
func (p *StringPool) Intern(b []byte) StringKey {
	key := blake2b.Sum256(b)
	if _, ok := p.index[key]; ok {
		return key
	}
	stored := p.arena.alloc(len(b))
	copy(stored, b)
	p.index[key] = len(p.entries)
	p.entries = append(p.entries, StringLiteral{Key: key, Bytes: stored})
	return key
}

// Lookup returns the bytes interned under key, and whether key is known.
func (p *StringPool) Lookup(key StringKey) ([]byte, bool) {
	i, ok := p.index[key]
	if !ok {
		return nil, false
	}
	return p.entries[i].Bytes, true
}

// Len returns the number of distinct strings interned.
func (p *StringPool) Len() int { return len(p.entries) }

// All returns every interned literal, in insertion order.
func (p *StringPool) All() []StringLiteral {
	out := make([]StringLiteral, len(p.entries))
	copy(out, p.entries)
	return out
}
