// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"io"

	"github.com/google/pprof/profile"
)

// WritePassProfile renders the recorded pass events as a pprof
// profile: one sample per pass invocation, located at a synthetic
// "pass/function" call frame and weighted by whether the pass changed
// anything, so `pprof -top` on the result ranks passes by how often
// they did real work. This is the -passprofile output named in
// internal/opt's Options.Profile doc comment.
func WritePassProfile(w io.Writer, events []PassEvent) error {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "invocations", Unit: "count"},
			{Type: "changed", Unit: "count"},
		},
		PeriodType: &profile.ValueType{Type: "pass", Unit: "count"},
		Period:     1,
	}

	funcs := map[string]*profile.Function{}
	locs := map[string]*profile.Location{}
	var nextID uint64

	funcFor := func(name string) *profile.Function {
		if f, ok := funcs[name]; ok {
			return f
		}
		nextID++
		f := &profile.Function{ID: nextID, Name: name, SystemName: name}
		funcs[name] = f
		p.Function = append(p.Function, f)
		return f
	}
	locFor := func(pass, fn string) *profile.Location {
		key := pass + "/" + fn
		if l, ok := locs[key]; ok {
			return l
		}
		nextID++
		l := &profile.Location{
			ID: nextID,
			Line: []profile.Line{{
				Function: funcFor(pass + " @ " + fn),
			}},
		}
		locs[key] = l
		p.Location = append(p.Location, l)
		return l
	}

	for _, ev := range events {
		changed := int64(0)
		if ev.Changed {
			changed = 1
		}
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{locFor(ev.Pass, ev.Func)},
			Value:    []int64{1, changed},
			Label:    map[string][]string{"pass": {ev.Pass}, "func": {ev.Func}},
		})
	}

	return p.Write(w)
}
