// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package asttest has constructors for building trees in tests.
//
// All nodes are located at test.el:1:1
// unless the location is changed with At.
package asttest

import (
	"math/big"

	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/loc"
	"github.com/eaburns/el/types"
)

// Path is the path of the locations of the built nodes.
const Path = "test.el"

// Pos is the location given to nodes built without At.
var Pos = ast.At(loc.Loc{Path: Path, Line: 1, Col: 1})

// L returns a Pos on the given line of Path.
func L(line int) ast.Pos { return ast.At(loc.Loc{Path: Path, Line: line, Col: 1}) }

// At sets the location of a node to the given line and returns the node.
func At[N ast.Node](line int, n N) N {
	p := L(line)
	switch n := any(n).(type) {
	case *ast.Decl:
		n.Pos = p
	case *ast.TypeDecl:
		n.Pos = p
	case *ast.ExprStmt:
		n.Pos = p
	case *ast.Return:
		n.Pos = p
	case *ast.ErrReturn:
		n.Pos = p
	case *ast.Const:
		n.Pos = p
	case *ast.Ident:
		n.Pos = p
	case *ast.Call:
		n.Pos = p
	case *ast.Unary:
		n.Pos = p
	case *ast.Binary:
		n.Pos = p
	case *ast.Block:
		n.Pos = p
	case *ast.If:
		n.Pos = p
	case *ast.Loop:
		n.Pos = p
	case *ast.Break:
		n.Pos = p
	case *ast.Continue:
		n.Pos = p
	case *ast.InitExpr:
		n.Pos = p
	case *ast.Elem:
		n.Pos = p
	case *ast.Index:
		n.Pos = p
	default:
		panic("asttest.At: unsupported node")
	}
	return n
}

// Num returns an untyped numeral.
func Num(n int64) *ast.Const {
	return &ast.Const{Pos: Pos, Kind: ast.NumConst, Num: big.NewInt(n)}
}

// BigNum returns an untyped numeral from its decimal string.
func BigNum(s string) *ast.Const {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("asttest.BigNum: bad numeral " + s)
	}
	return &ast.Const{Pos: Pos, Kind: ast.NumConst, Num: n}
}

// Int returns an integer constant of kind k.
func Int(k types.Kind, n int64) *ast.Const {
	return &ast.Const{Pos: Pos, Kind: ast.IntConst, Int: k, Num: big.NewInt(n)}
}

// Bool returns a boolean constant.
func Bool(b bool) *ast.Const { return &ast.Const{Pos: Pos, Kind: ast.BoolConst, Bool: b} }

// Str returns a string literal.
func Str(s string) *ast.Const { return &ast.Const{Pos: Pos, Kind: ast.StrConst, Str: s} }

// Id returns an unresolved identifier.
func Id(name string) *ast.Ident { return &ast.Ident{Pos: Pos, Name: name} }

// Call returns a call.
func Call(fun ast.Expr, args ...ast.Expr) *ast.Call {
	return &ast.Call{Pos: Pos, Func: fun, Args: args}
}

// Un returns a unary operation.
func Un(op ast.UnOp, x ast.Expr) *ast.Unary { return &ast.Unary{Pos: Pos, Op: op, X: x} }

// Bin returns a binary operation.
func Bin(op ast.BinOp, l, r ast.Expr) *ast.Binary {
	return &ast.Binary{Pos: Pos, Op: op, L: l, R: r}
}

// Elem returns a member access.
func Elem(base ast.Expr, name string) *ast.Elem {
	return &ast.Elem{Pos: Pos, Base: base, Name: name}
}

// PElem returns a member access through a pointer.
func PElem(base ast.Expr, name string) *ast.Elem {
	return &ast.Elem{Pos: Pos, Deref: true, Base: base, Name: name}
}

// Index returns an element access.
func Index(base, off ast.Expr) *ast.Index { return &ast.Index{Pos: Pos, Base: base, Off: off} }

// Cast returns a conversion of x to t.
func Cast(t *types.Type, x ast.Expr) *ast.Cast {
	return &ast.Cast{Pos: Pos, Typed: ast.Typed{T: t}, X: x}
}

// Init returns an initializer of type t.
func Init(t *types.Type, entries ...*ast.Init) *ast.InitExpr {
	return &ast.InitExpr{Pos: Pos, Typed: ast.Typed{T: t}, Entries: entries}
}

// Entry returns a positional initializer entry.
func Entry(x ast.Expr) *ast.Init { return &ast.Init{Expr: x} }

// Named returns a named initializer entry.
func Named(name string, x ast.Expr) *ast.Init { return &ast.Init{Name: name, Expr: x} }

// Nest returns a nested initializer entry.
func Nest(entries ...*ast.Init) *ast.Init { return &ast.Init{Nest: entries} }

// Fn returns a function body of signature sig.
func Fn(sig *types.Type, stmts ...ast.Stmt) *ast.Body {
	return &ast.Body{Pos: Pos, Sig: sig, Block: Block(stmts...)}
}

// Let returns an immutable declaration.
func Let(name string, t *types.Type, x ast.Expr) *ast.Decl {
	return &ast.Decl{Pos: Pos, Name: name, T: t, Expr: x}
}

// Var returns a mutable declaration.
func Var(name string, t *types.Type, x ast.Expr) *ast.Decl {
	return &ast.Decl{Pos: Pos, Name: name, Flags: ast.Mut, T: t, Expr: x}
}

// Auto returns an immutable declaration with an inferred type.
func Auto(name string, x ast.Expr) *ast.Decl {
	return &ast.Decl{Pos: Pos, Name: name, Flags: ast.Auto, Expr: x}
}

// Func returns a function declaration.
func Func(name string, sig *types.Type, stmts ...ast.Stmt) *ast.Decl {
	return &ast.Decl{Pos: Pos, Name: name, T: sig, Expr: Fn(sig, stmts...)}
}

// Extern returns an extern declaration.
func Extern(name string, t *types.Type) *ast.Decl {
	return &ast.Decl{Pos: Pos, Name: name, Flags: ast.Extern, T: t}
}

// Pub makes a declaration public and returns it.
func Pub[D *ast.Decl | *ast.TypeDecl](d D) D {
	switch d := any(d).(type) {
	case *ast.Decl:
		d.Vis = ast.Public
	case *ast.TypeDecl:
		d.Vis = ast.Public
	}
	return d
}

// Type returns a type declaration.
func Type(name string, t *types.Type) *ast.TypeDecl {
	return &ast.TypeDecl{Pos: Pos, Name: name, T: t}
}

// Block returns a block.
func Block(stmts ...ast.Stmt) *ast.Block { return &ast.Block{Pos: Pos, Stmts: stmts} }

// Expr returns an expression statement.
func Expr(x ast.Expr) *ast.ExprStmt { return &ast.ExprStmt{Pos: Pos, Expr: x} }

// Ret returns a return statement; x may be nil.
func Ret(x ast.Expr) *ast.Return { return &ast.Return{Pos: Pos, Expr: x} }

// ErrRet returns an error return of x.
func ErrRet(x ast.Expr) *ast.ErrReturn { return &ast.ErrReturn{Pos: Pos, Expr: x} }

// OnErr returns a handler.
func OnErr(stmts ...ast.Stmt) *ast.OnErr { return &ast.OnErr{Pos: Pos, Block: Block(stmts...)} }

// If returns a conditional; els may be nil.
func If(cond ast.Expr, then, els *ast.Block) *ast.If {
	return &ast.If{Pos: Pos, Cond: cond, Then: then, Else: els}
}

// While returns a pre-test loop.
func While(cond ast.Expr, stmts ...ast.Stmt) *ast.Loop {
	return &ast.Loop{Pos: Pos, Cond: cond, Body: Block(stmts...)}
}

// Break returns a break of the given level.
func Break(level int) *ast.Break { return &ast.Break{Pos: Pos, Level: level} }

// Continue returns a continue of the given level.
func Continue(level int) *ast.Continue { return &ast.Continue{Pos: Pos, Level: level} }

// Unit returns a unit of Path.
func Unit(stmts ...ast.Stmt) *ast.Unit { return &ast.Unit{Path: Path, Stmts: stmts} }

// Top returns a program of the units.
func Top(units ...*ast.Unit) *ast.Top { return &ast.Top{Units: units} }

// I32 returns a new i32 type.
func I32() *types.Type { return types.New(types.I32Type) }

// T returns a new type of scalar kind k.
func T(k types.Kind) *types.Type { return types.New(k) }
