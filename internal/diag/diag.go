// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag implements the middle end's diagnostic sink and the
// three error classes described in §7:
//
//  1. frontend-surfaced semantic errors, which abort lowering of a single
//     function but leave the rest of the module intact;
//  2. internal invariant violations, which are fatal and never silently
//     recovered;
//  3. progress-limiting conditions (iteration caps, inliner budgets),
//     which are warnings that let the pipeline proceed.
package diag

import (
	"fmt"
	"log"
	"sync"

	"github.com/dj707chen/claudes-c-compiler/internal/srcpos"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// Warning is a progress-limiting condition; the pipeline proceeds.
	Warning Severity = iota
	// Error is a frontend-surfaced semantic error that aborts lowering
	// of the current function only.
	Error
	// Fatal is an internal invariant violation. It is never recovered.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "diag"
	}
}

// Ctx identifies where a diagnostic originated: the function and,
// where applicable, the basic block it refers to.
type Ctx struct {
	Func  string
	Block string
	Pos   srcpos.Pos
}

func (c Ctx) String() string {
	switch {
	case c.Func == "":
		return "<module>"
	case c.Block == "":
		return c.Func
	default:
		return fmt.Sprintf("%s.%s", c.Func, c.Block)
	}
}

// A Diagnostic is a single reported condition.
type Diagnostic struct {
	Severity Severity
	Ctx      Ctx
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Ctx, d.Severity, d.Message)
}

// AbortFunction is the panic value lowering uses to signal that the
// current function could not be lowered and should be skipped, while the
// rest of the module continues. Lowering recovers it at the function
// boundary and never propagates it further.
type AbortFunction struct {
	Func string
	Diag Diagnostic
}

func (a *AbortFunction) Error() string { return a.Diag.String() }

// InvariantViolation panics with this type when a Sink reports a Fatal
// diagnostic. Recovering it at a pass boundary is a programming error:
// an internal invariant violation always aborts with a diagnostic
// referencing the function and block, never silently recovered.
type InvariantViolation struct {
	Diag Diagnostic
}

func (v *InvariantViolation) Error() string { return v.Diag.String() }

// Sink collects diagnostics for one compilation run. It is the single
// place errors, warnings and fatal invariant violations are reported
// from, mirroring cmd_local/go/internal/base's Errorf/Fatalf/SetExitStatus
// pattern.
type Sink struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
	exitStatus  int
	aborted     map[string]bool // functions whose lowering was aborted
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{aborted: map[string]bool{}}
}

// Errorf reports a frontend-surfaced semantic error (class 1). It does
// not panic; callers in internal/lower use it together with AbortFunction
// to unwind out of the current function only.
func (s *Sink) Errorf(ctx Ctx, format string, args ...interface{}) Diagnostic {
	d := Diagnostic{Severity: Error, Ctx: ctx, Message: fmt.Sprintf(format, args...)}
	s.record(d)
	if ctx.Func != "" {
		s.mu.Lock()
		s.aborted[ctx.Func] = true
		s.mu.Unlock()
	}
	return d
}

// Warnf reports a progress-limiting condition (class 3). The pipeline
// always proceeds after a warning.
func (s *Sink) Warnf(ctx Ctx, format string, args ...interface{}) {
	s.record(Diagnostic{Severity: Warning, Ctx: ctx, Message: fmt.Sprintf(format, args...)})
}

// Fatalf reports an internal invariant violation (class 2) and panics
// with *InvariantViolation. Callers must not recover this except at the
// top level of the driver, and only to print a clean message before
// exiting non-zero: §7 treats these as bugs by construction.
func (s *Sink) Fatalf(ctx Ctx, format string, args ...interface{}) {
	d := Diagnostic{Severity: Fatal, Ctx: ctx, Message: fmt.Sprintf(format, args...)}
	s.record(d)
	panic(&InvariantViolation{Diag: d})
}

func (s *Sink) record(d Diagnostic) {
	s.mu.Lock()
	s.diagnostics = append(s.diagnostics, d)
	if d.Severity >= Error {
		s.exitStatus = 1
	}
	log.Print(d.String())
	s.mu.Unlock()
}

// Aborted reports whether fn's lowering was aborted by an Errorf call.
func (s *Sink) Aborted(fn string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted[fn]
}

// Diagnostics returns every diagnostic recorded so far, oldest first.
func (s *Sink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.diagnostics))
	copy(out, s.diagnostics)
	return out
}

// ExitStatus returns 1 if any Error or Fatal diagnostic was recorded, 0
// otherwise, mirroring base.GetExitStatus.
func (s *Sink) ExitStatus() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitStatus
}
