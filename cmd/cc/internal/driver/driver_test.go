// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dj707chen/claudes-c-compiler/internal/ir"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

func TestSampleNamesMatchCatalog(t *testing.T) {
	for _, name := range Names() {
		if _, err := Sample(name); err != nil {
			t.Errorf("Sample(%q): %v", name, err)
		}
	}
}

func TestSampleRejectsUnknownName(t *testing.T) {
	if _, err := Sample("not_a_real_program"); err == nil {
		t.Fatal("expected an error for an unknown program name")
	}
}

// TestCompileGCDProducesAPlannedFunction runs the gcd demo program
// through the full pipeline and checks it comes out phi-free with a
// stack-slot plan assigned.
func TestCompileGCDProducesAPlannedFunction(t *testing.T) {
	prog, err := Sample("gcd")
	if err != nil {
		t.Fatal(err)
	}
	res := Compile(prog, Options{Target: target.X86_64})

	fn := res.Module.Function("gcd")
	if fn == nil {
		t.Fatal("expected gcd to be lowered into the module")
	}
	for _, b := range fn.Blocks {
		if len(b.Phis) != 0 {
			t.Fatalf("expected phielim to remove every phi, found %d in block %d", len(b.Phis), b.ID)
		}
	}

	plan, ok := res.Plans["gcd"]
	if !ok {
		t.Fatal("expected a stack-slot plan for gcd")
	}
	if plan.FrameSize <= 0 {
		t.Fatalf("expected a non-empty frame, got size %d", plan.FrameSize)
	}
	if res.ExitStatus != 0 {
		t.Fatalf("expected a clean compile, got exit status %d with diagnostics %v", res.ExitStatus, res.Diagnostics)
	}
}

// TestCompileCallerInlinesOrDeduplicatesTripleCalls checks that the
// two-function caller demo, after the full pipeline, has folded its
// pair of identical triple(n) calls down via inlining and/or GVN: at
// minimum the apply_triple body must not still contain two separate
// OpCall instructions to triple.
func TestCompileCallerInlinesOrDeduplicatesTripleCalls(t *testing.T) {
	prog, err := Sample("caller")
	if err != nil {
		t.Fatal(err)
	}
	res := Compile(prog, Options{Target: target.X86_64})

	fn := res.Module.Function("apply_triple")
	if fn == nil {
		t.Fatal("expected apply_triple to be lowered into the module")
	}
	calls := 0
	for _, b := range fn.Blocks {
		for _, in := range b.Instr {
			if in.Op == ir.OpCall {
				calls++
			}
		}
	}
	if calls > 1 {
		t.Fatalf("expected inlining/GVN to leave at most one call to triple, found %d", calls)
	}
}

func TestWriteIRIncludesEveryFunction(t *testing.T) {
	prog, err := Sample("caller")
	if err != nil {
		t.Fatal(err)
	}
	res := Compile(prog, Options{Target: target.X86_64})

	var buf bytes.Buffer
	if err := WriteIR(&buf, res.Module); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "func triple(") || !strings.Contains(out, "func apply_triple(") {
		t.Fatalf("expected the IR dump to mention both functions, got:\n%s", out)
	}
}

func TestCompileRecordsPassesWhenRequested(t *testing.T) {
	prog, err := Sample("sum_squares")
	if err != nil {
		t.Fatal(err)
	}
	res := Compile(prog, Options{Target: target.X86_64, RecordPasses: true})
	if len(res.Passes) == 0 {
		t.Fatal("expected at least one recorded pass invocation")
	}

	var buf bytes.Buffer
	if err := WritePassProfile(&buf, res.Passes); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a non-empty pprof profile")
	}
}
