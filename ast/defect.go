// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import "github.com/eaburns/el/loc"

// A Defect is an internal compiler error:
// a tree shape that a stage does not handle.
// It is not a user diagnostic, but it still has a location.
type Defect struct {
	Loc loc.Loc
	Msg string
}

// NewDefect returns a Defect at the location of a node.
func NewDefect(n Node, msg string) *Defect {
	return &Defect{Loc: n.GetLoc(), Msg: msg}
}

func (d *Defect) Error() string {
	return d.Loc.String() + ": internal defect: " + d.Msg
}
