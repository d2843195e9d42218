// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import "github.com/dj707chen/claudes-c-compiler/internal/target"

// Linkage controls a global's visibility to the linker.
type Linkage uint8

const (
	LinkExternal Linkage = iota
	LinkInternal         // C `static`
	LinkWeak
)

// RelocKind names what a global initializer's relocation references.
type RelocKind uint8

const (
	RelocNone RelocKind = iota
	RelocGlobal
	RelocFunc
)

// Reloc is a relocation reference embedded at a byte offset within a
// global's initializer.
type Reloc struct {
	Offset int64
	Kind   RelocKind
	Symbol string
	Addend int64
}

// Global is a module-level variable: linkage, alignment, initializer
// bytes, and a type.
type Global struct {
	Name    string
	Type    Type
	Linkage Linkage
	Align   int64
	Size    int64 // may exceed Type.Bytes for array/aggregate globals flattened to bytes

	Init    []byte  // initializer bytes, zero-length for BSS-style zero init
	Relocs  []Reloc // relocations within Init
	AddressTaken bool
}

// ExternFunc is an external function declaration: name + signature
//.
type ExternFunc struct {
	Name string
	Sig  Signature
}

// StringLiteral is one entry of the content-addressed string pool.
type StringLiteral struct {
	Key   StringKey
	Bytes []byte
}

// Module is a unit of compilation. It owns an ordered list
// of functions, a set of global variables, a content-addressed
// string-literal pool, a set of external function declarations, and a
// target descriptor.
type Module struct {
	Target *target.Descriptor

	Functions []*Function
	Globals   []*Global
	Externs   []*ExternFunc

	Strings *StringPool

	funcIndex   map[string]int
	globalIndex map[string]int
	externIndex map[string]int
}

// NewModule returns an empty Module for the given target.
func NewModule(t *target.Descriptor) *Module {
	return &Module{
		Target:      t,
		Strings:     NewStringPool(),
		funcIndex:   map[string]int{},
		globalIndex: map[string]int{},
		externIndex: map[string]int{},
	}
}

// AddFunction appends fn to the module.
func (m *Module) AddFunction(fn *Function) {
	m.funcIndex[fn.Name] = len(m.Functions)
	m.Functions = append(m.Functions, fn)
}

// Function returns the function named name, or nil.
func (m *Module) Function(name string) *Function {
	if i, ok := m.funcIndex[name]; ok {
		return m.Functions[i]
	}
	return nil
}

// AddGlobal appends g to the module.
func (m *Module) AddGlobal(g *Global) {
	m.globalIndex[g.Name] = len(m.Globals)
	m.Globals = append(m.Globals, g)
}

// Global returns the global named name, or nil.
func (m *Module) Global(name string) *Global {
	if i, ok := m.globalIndex[name]; ok {
		return m.Globals[i]
	}
	return nil
}

// AddExtern appends e to the module, unless an identically named extern
// already exists.
func (m *Module) AddExtern(e *ExternFunc) {
	if _, ok := m.externIndex[e.Name]; ok {
		return
	}
	m.externIndex[e.Name] = len(m.Externs)
	m.Externs = append(m.Externs, e)
}

// Extern returns the external declaration named name, or nil.
func (m *Module) Extern(name string) *ExternFunc {
	if i, ok := m.externIndex[name]; ok {
		return m.Externs[i]
	}
	return nil
}

// RemoveFunction deletes the function named name, used by the
// dead_statics pass.
func (m *Module) RemoveFunction(name string) {
	i, ok := m.funcIndex[name]
	if !ok {
		return
	}
	m.Functions = append(m.Functions[:i], m.Functions[i+1:]...)
	delete(m.funcIndex, name)
	for n, j := range m.funcIndex {
		if j > i {
			m.funcIndex[n] = j - 1
		}
	}
}

// RemoveGlobal deletes the global named name.
func (m *Module) RemoveGlobal(name string) {
	i, ok := m.globalIndex[name]
	if !ok {
		return
	}
	m.Globals = append(m.Globals[:i], m.Globals[i+1:]...)
	delete(m.globalIndex, name)
	for n, j := range m.globalIndex {
		if j > i {
			m.globalIndex[n] = j - 1
		}
	}
}
