// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package srcpos implements compact source positions shared by every
// stage of the middle end, from lowering diagnostics through to the
// stack-slot layout plan.
package srcpos

import "fmt"

// FileID is a small dense identifier for an interned file path.
type FileID int32

// NoFile is the FileID of an unknown or synthesized position.
const NoFile FileID = 0

// Pos is a compact source position: a file id plus 1-based line and
// column. The zero value is NoPos.
type Pos struct {
	File FileID
	Line int32
	Col  int32
}

// NoPos is the position used for synthesized IR (e.g. instructions
// inserted by the optimizer that have no direct source origin).
var NoPos = Pos{}

// IsKnown reports whether p carries real file/line information.
func (p Pos) IsKnown() bool {
	return p.File != NoFile
}

func (p Pos) String() string {
	if !p.IsKnown() {
		return "<unknown position>"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Table interns file paths to FileIDs so that Pos values stay small and
// comparable. A Table is not safe for concurrent use; the middle end is
// single-threaded within a compilation unit.
type Table struct {
	files []string
	index map[string]FileID
}

// NewTable returns an empty position table. FileID 0 is reserved for
// NoFile and is never returned by Intern.
func NewTable() *Table {
	return &Table{files: []string{""}, index: map[string]FileID{}}
}

// Intern returns the FileID for path, allocating a new one if path has
// not been seen before.
func (t *Table) Intern(path string) FileID {
	if id, ok := t.index[path]; ok {
		return id
	}
	id := FileID(len(t.files))
	t.files = append(t.files, path)
	t.index[path] = id
	return id
}

// File returns the path interned under id, or "" if id is unknown.
func (t *Table) File(id FileID) string {
	if int(id) < 0 || int(id) >= len(t.files) {
		return ""
	}
	return t.files[id]
}

// Format renders a position as "file:line:col" using the table to
// resolve the file name.
func (t *Table) Format(p Pos) string {
	if !p.IsKnown() {
		return "<unknown position>"
	}
	return fmt.Sprintf("%s:%d:%d", t.File(p.File), p.Line, p.Col)
}
