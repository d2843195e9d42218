// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import "sort"

// packTier1 assigns a dedicated slot to every escaping alloca, largest
// first. The decreasing-size ordering is the one surviving piece of
// cmpstackvarlt's stack-variable sort this package can reuse: the
// teacher's pointer-first/needs-zeroing tie-breaks don't apply here,
// since this IR carries no GC pointer-map or zeroing-requirement bit on
// a type, only raw size and alignment.
func packTier1(plan *Plan, fl *funcLiveness, cursor int64) (int64, int64) {
	var perm []*valueInfo
	for _, vi := range fl.values {
		if vi.tier == tierPermanent {
			perm = append(perm, vi)
		}
	}
	sort.Slice(perm, func(i, j int) bool {
		if perm[i].size != perm[j].size {
			return perm[i].size > perm[j].size
		}
		return perm[i].id < perm[j].id
	})

	var maxAlign int64 = 1
	for _, vi := range perm {
		cursor = alignUp(cursor, vi.align)
		plan.Offsets[vi.id] = cursor
		cursor += vi.size
		if vi.align > maxAlign {
			maxAlign = vi.align
		}
	}
	return cursor, maxAlign
}
