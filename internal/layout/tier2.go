// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"container/heap"
	"sort"
)

// slotClass buckets Tier 2's free-slot pools by (size, align): reusing
// a slot across differently sized values either wastes space or
// under-aligns, so each class packs into its own sub-region with its
// own min-heap of free slots.
type slotClass struct {
	size  int64
	align int64
}

// freeSlot is a Tier 2 slot available for reuse once the value
// previously occupying it is past its last use (end).
type freeSlot struct {
	offset int64
	end    int
}

type freeHeap []freeSlot

func (h freeHeap) Len() int            { return len(h) }
func (h freeHeap) Less(i, j int) bool  { return h[i].end < h[j].end }
func (h freeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *freeHeap) Push(x interface{}) { *h = append(*h, x.(freeSlot)) }
func (h *freeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// packTier2 assigns shared slots to multi-block values by greedy
// interval coloring (spec.md §4.5): sorted by interval start, a value
// reuses the class's oldest-expiring free slot once that slot's
// previous occupant's interval has ended, or else extends the class's
// region by one slot.
func packTier2(plan *Plan, values []*valueInfo, cursor int64) (int64, int64) {
	sort.Slice(values, func(i, j int) bool {
		if values[i].start != values[j].start {
			return values[i].start < values[j].start
		}
		return values[i].id < values[j].id
	})

	pools := map[slotClass]*freeHeap{}
	var maxAlign int64 = 1
	for _, vi := range values {
		cls := slotClass{size: vi.size, align: vi.align}
		pool, ok := pools[cls]
		if !ok {
			pool = &freeHeap{}
			heap.Init(pool)
			pools[cls] = pool
		}

		var offset int64
		if pool.Len() > 0 && (*pool)[0].end <= vi.start {
			free := heap.Pop(pool).(freeSlot)
			offset = free.offset
		} else {
			cursor = alignUp(cursor, vi.align)
			offset = cursor
			cursor += vi.size
			if vi.align > maxAlign {
				maxAlign = vi.align
			}
		}
		plan.Offsets[vi.id] = offset
		heap.Push(pool, freeSlot{offset: offset, end: vi.end})
	}
	return cursor, maxAlign
}
