// Copyright © 2020 The Pea Authors under an MIT-style license.

package loc

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestFilesLoc(t *testing.T) {
	var fs Files
	fs.Add("a.el", "def x: i32 = 1;\ndef y: i32 = 2;\n")
	fs.Add("b.el", "\n\n  z")

	tests := []struct {
		name string
		r    Range
		want string
	}{
		{name: "first byte", r: Range{0, 1}, want: "a.el:1:1"},
		{name: "second line", r: Range{20, 21}, want: "a.el:2:5"},
		{name: "second file", r: Range{36, 37}, want: "b.el:3:3"},
		{name: "out of range", r: Range{-1, 1}, want: "<unknown>:0:0"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			be.Equal(t, fs.Loc(test.r).String(), test.want)
		})
	}
}

func TestLess(t *testing.T) {
	a := Loc{Path: "a.el", Line: 2, Col: 9}
	b := Loc{Path: "a.el", Line: 3, Col: 1}
	c := Loc{Path: "b.el", Line: 1, Col: 1}
	be.True(t, a.Less(b))
	be.True(t, b.Less(c))
	be.True(t, !c.Less(a))
	be.True(t, !a.Less(a))
}
