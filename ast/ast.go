// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package ast is the typed syntax tree of el.
//
// Trees are built by the parser, a separate program,
// and handed to the compiler with Write and Read.
// The checker fills the type slots of expressions
// and the resolution fields of identifiers;
// the generator only reads the tree.
package ast

import (
	"github.com/eaburns/el/loc"
	"github.com/eaburns/el/types"
)

// A Node is a node of the tree with location information.
type Node interface {
	GetLoc() loc.Loc
}

// Pos is the source tag of a node.
type Pos struct {
	Loc loc.Loc
}

// At returns a Pos for a location.
func At(l loc.Loc) Pos { return Pos{Loc: l} }

func (p Pos) GetLoc() loc.Loc { return p.Loc }

// Top is a whole program.
type Top struct {
	Units []*Unit
}

// A Unit is one source file.
// Its statements should all be declarations.
type Unit struct {
	Path  string
	Stmts []Stmt
}

// A Stmt is a statement.
type Stmt interface {
	Node
	isStmt()
}

// Flags are declaration flags.
type Flags int

const (
	// Mut is set on mutable declarations.
	Mut Flags = 1 << iota
	// Auto is set on declarations whose type may be omitted.
	Auto
	// Global is set on unit-level declarations.
	Global
	// Extern is set on declarations defined outside of the program.
	Extern
)

// Vis is declaration visibility.
type Vis int

const (
	// Private declarations are visible only in their unit.
	Private Vis = iota
	// Public declarations are visible in all units.
	Public
	// Exported declarations are public and visible to the linker.
	Exported
)

// A Decl is a variable or function declaration.
type Decl struct {
	Pos
	Name  string
	Flags Flags
	Vis   Vis
	T     *types.Type
	// Expr is the initializer, or nil.
	// The initializer of a defined function is a *Body.
	Expr Expr

	// Captured is set by the checker if the declaration is local
	// and referenced from a nested function body.
	Captured bool
}

// Mutable returns whether the declaration is mutable.
func (d *Decl) Mutable() bool { return d.Flags&Mut != 0 }

// A TypeDecl declares a named struct, union, enum, or alias.
type TypeDecl struct {
	Pos
	Name string
	Vis  Vis
	T    *types.Type
}

// An ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	Pos
	Expr Expr
}

// A Block is a braced statement list.
type Block struct {
	Pos
	Stmts []Stmt
}

// OnErr registers a handler block on its enclosing frame.
// The handler runs on every error exit from the frame.
type OnErr struct {
	Pos
	Block *Block
}

// A Return returns from a function.
type Return struct {
	Pos
	// Expr is nil for a bare return.
	Expr Expr
}

// An ErrReturn returns an error.
// The parser gives it an error-record initializer.
type ErrReturn struct {
	Pos
	Expr Expr
}

// An If is a conditional.
type If struct {
	Pos
	Cond Expr
	Then *Block
	// Else is nil if there is no else branch.
	Else *Block
}

// A Loop is a while, do-while, or for loop.
// Init, Cond, and Inc may be nil.
type Loop struct {
	Pos
	// Post is set for loops that test the condition after the body.
	Post bool
	Init Expr
	Cond Expr
	Inc  Expr
	Body *Block
}

// A Break jumps out of an enclosing loop or switch.
type Break struct {
	Pos
	// Level is the number of breakable frames to skip.
	Level int
}

// A Continue jumps to the increment of an enclosing loop.
type Continue struct {
	Pos
	// Level is the number of continuable frames to skip.
	Level int
}

// A Switch jumps to the label of the case matching Eval.
type Switch struct {
	Pos
	Eval  Expr
	Cases []*Case
	Block *Block
}

// A Case is a switch case.
type Case struct {
	Pos
	// Expr is nil for the default case.
	Expr  Expr
	Label *Label
}

// A Label is a jump target.
// Switch cases share their Label with a LabelStmt in the switch block.
type Label struct {
	Pos
	Name string
}

// A LabelStmt places a label.
type LabelStmt struct {
	Pos
	Label *Label
}

func (*Decl) isStmt()      {}
func (*TypeDecl) isStmt()  {}
func (*ExprStmt) isStmt()  {}
func (*Block) isStmt()     {}
func (*OnErr) isStmt()     {}
func (*Return) isStmt()    {}
func (*ErrReturn) isStmt() {}
func (*If) isStmt()        {}
func (*Loop) isStmt()      {}
func (*Break) isStmt()     {}
func (*Continue) isStmt()  {}
func (*Switch) isStmt()    {}
func (*LabelStmt) isStmt() {}
