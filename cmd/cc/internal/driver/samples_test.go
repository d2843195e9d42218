// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import "testing"

func TestEveryBundledProgramDeclaresItsFunctionSignatures(t *testing.T) {
	for _, name := range Names() {
		prog, err := Sample(name)
		if err != nil {
			t.Fatal(err)
		}
		if len(prog.Unit.Funcs) == 0 {
			t.Fatalf("%s: expected at least one function", name)
		}
		for _, fn := range prog.Unit.Funcs {
			if _, ok := prog.Sema.Functions[fn.Name]; !ok {
				t.Errorf("%s: function %q has no registered sema.FuncSig", name, fn.Name)
			}
			if fn.Body == nil {
				t.Errorf("%s: function %q has no body", name, fn.Name)
			}
		}
	}
}
