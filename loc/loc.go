// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package loc has routines for tracking file locations.
package loc

import "fmt"

// A Range is a start and end byte offset.
type Range [2]int

// GetRange returns itself.
// This is useful so than Range can be embedded in a struct
// and that struct can implement interface{GetRange() Range}.
func (r Range) GetRange() Range { return r }

// A Loc describes a file location.
// Line and Col are 1-based; the zero Loc is an unknown location.
type Loc struct {
	Path string
	Line int
	Col  int
}

// GetLoc returns itself.
// Tree nodes embed a Loc so that they implement interface{GetLoc() Loc}.
func (l Loc) GetLoc() Loc { return l }

func (l Loc) String() string {
	path := l.Path
	if path == "" {
		path = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", path, l.Line, l.Col)
}

// Less orders locations by path, then line, then column.
func (l Loc) Less(o Loc) bool {
	switch {
	case l.Path != o.Path:
		return l.Path < o.Path
	case l.Line != o.Line:
		return l.Line < o.Line
	default:
		return l.Col < o.Col
	}
}

// Files tracks locations within a set of files.
type Files []File

// A File is a single file in a Files.
type File struct {
	Path  string
	Offs  int
	Len   int
	Lines []int
}

// Len returns the total length of all files.
func (fs Files) Len() int {
	if len(fs) == 0 {
		return 0
	}
	last := fs[len(fs)-1]
	return last.Offs + last.Len
}

// Add adds a new file to the set given its path and text.
func (fs *Files) Add(path, text string) {
	var lines []int
	offs := fs.Len()
	for i, r := range text {
		if r == '\n' {
			lines = append(lines, offs+i)
		}
	}
	*fs = append(*fs, File{
		Path:  path,
		Offs:  offs,
		Len:   len(text),
		Lines: lines,
	})
}

// Loc returns the Loc of the start of a range.
// It returns the zero Loc if the range is not within the files.
func (fs Files) Loc(r Range) Loc {
	if len(fs) == 0 || r[0] < 0 || r[1] > fs.Len() {
		return Loc{}
	}
	var l Loc
	l.Path, l.Line, l.Col = fs.loc1(r[0])
	return l
}

func (fs Files) loc1(p int) (string, int, int) {
	file := fs[0]
	for _, f := range fs {
		if f.Offs > p {
			break
		}
		file = f
	}
	line, col1 := 1, file.Offs-1
	for _, nl := range file.Lines {
		if nl >= p {
			break
		}
		col1 = nl
		line++
	}
	return file.Path, line, p - col1
}
