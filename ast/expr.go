// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import (
	"math/big"

	"github.com/eaburns/el/types"
)

// An Expr is an expression.
type Expr interface {
	Node
	// Type returns the type of the expression,
	// which is nil or types.UnresolvedType if not yet known.
	Type() *types.Type
	SetType(*types.Type)
	isExpr()
}

// Typed is the type slot of an expression.
type Typed struct {
	T *types.Type
}

func (t *Typed) Type() *types.Type     { return t.T }
func (t *Typed) SetType(u *types.Type) { t.T = u }

// ConstKind is the kind of a constant.
type ConstKind int

const (
	// NumConst is an untyped numeral, including null.
	NumConst ConstKind = iota
	// IntConst is an integer of the scalar kind Const.Int.
	IntConst
	BoolConst
	// PtrConst is a pointer with the integer value Const.Num.
	PtrConst
	// StrConst is a string literal.
	StrConst
)

// A Const is a literal.
type Const struct {
	Pos
	Typed
	Kind ConstKind
	// Int is the scalar kind of an IntConst.
	Int types.Kind
	// Num is the value of NumConst, IntConst, and PtrConst.
	Num  *big.Int
	Bool bool
	Str  string
}

// Ref is the resolution of an identifier.
type Ref int

const (
	// UnknownRef is unresolved, or an extern declaration referenced by name.
	UnknownRef Ref = iota
	LocalRef
	GlobalRef
	ParamRef
	BuiltinRef
)

// An Ident is a use of a name.
type Ident struct {
	Pos
	Typed
	Name string
	Ref  Ref
	// Decl is the declaration of a local or global.
	Decl *Decl
	// Param is the index of a parameter.
	Param int
}

// A Call is a function call.
type Call struct {
	Pos
	Typed
	// Deref is set if Func is a pointer to a function.
	Deref bool
	Func  Expr
	Args  []Expr
}

// UnOp is a unary operator.
type UnOp int

const (
	Addr UnOp = iota
	Deref
	Plus
	Neg
	Not
	LNot
	PreInc
	PreDec
	PostInc
	PostDec
	// ArrLen is the length of an array.
	ArrLen
	// GetRef is the address of a temporary copy of a value.
	GetRef
	// Get yields the val of an error value or returns the error.
	Get
	// Require yields the val of an error value or calls fatal.
	Require
)

// A Unary is a unary operation.
type Unary struct {
	Pos
	Typed
	Op UnOp
	X  Expr
}

// BinOp is a binary operator.
type BinOp int

const (
	Mul BinOp = iota
	Div
	Rem
	Add
	Sub
	Shl
	Shr
	And
	Xor
	Or
	LAnd
	LOr
	Eq
	Ne
	Gt
	Gte
	Lt
	Lte
	Assign
	AddEq
	SubEq
	MulEq
	DivEq
	RemEq
	ShlEq
	ShrEq
	AndEq
	XorEq
	OrEq
)

// Arith returns the operator applied by a compound assignment,
// and whether op is a compound assignment.
func (op BinOp) Arith() (BinOp, bool) {
	switch op {
	case AddEq:
		return Add, true
	case SubEq:
		return Sub, true
	case MulEq:
		return Mul, true
	case DivEq:
		return Div, true
	case RemEq:
		return Rem, true
	case ShlEq:
		return Shl, true
	case ShrEq:
		return Shr, true
	case AndEq:
		return And, true
	case XorEq:
		return Xor, true
	case OrEq:
		return Or, true
	default:
		return op, false
	}
}

// IsCompare returns whether op is a comparison.
func (op BinOp) IsCompare() bool { return op >= Eq && op <= Lte }

// A Binary is a binary operation.
type Binary struct {
	Pos
	Typed
	Op BinOp
	L  Expr
	R  Expr
}

// A Cast converts X to the preset type of the Cast.
type Cast struct {
	Pos
	Typed
	X Expr
}

// An InitExpr is a struct, union, or array initializer
// of the preset type of the InitExpr.
type InitExpr struct {
	Pos
	Typed
	Entries []*Init

	// Cast is set by the checker when the type is an integer or pointer.
	// The initializer is then a conversion of its only entry.
	Cast Expr
}

// An Init is one initializer entry.
type Init struct {
	// Name is the field name of a named entry, or empty.
	Name string
	// Idx is the field or element index, set by the checker.
	Idx int
	// Expr is nil if the entry is Nest.
	Expr Expr
	Nest []*Init
}

// A Sizeof is the size in bytes of a type or an expression.
type Sizeof struct {
	Pos
	Typed
	// Of is the operand type if X is nil.
	Of *types.Type
	X  Expr
}

// An Offsetof is the byte offset of a field of a struct.
type Offsetof struct {
	Pos
	Typed
	Of    *types.Type
	Field string
}

// A GetParent converts a pointer to a field
// into a pointer to the struct containing it.
type GetParent struct {
	Pos
	Typed
	X     Expr
	Of    *types.Type
	Field string
	// Off is the byte offset of the field, set by the checker.
	Off int
}

// An Elem is a member access.
type Elem struct {
	Pos
	Typed
	// Deref is set if Base is a pointer to the record.
	Deref bool
	Base  Expr
	Name  string
	// Idx is the field index, set by the checker.
	Idx int
}

// An Index is an array or pointer element.
type Index struct {
	Pos
	Typed
	Base Expr
	Off  Expr
}

// A Body is a function body.
type Body struct {
	Pos
	Typed
	Sig   *types.Type
	Block *Block
}

// An InitArgs makes a variadic argument cursor.
type InitArgs struct {
	Pos
	Typed
}

// A GetArg takes the next variadic argument.
type GetArg struct {
	Pos
	Typed
	// Args is a pointer to the argument cursor.
	Args Expr
	Of   *types.Type
}

// An EnumVal is a value of an enumeration.
type EnumVal struct {
	Pos
	Typed
	TypeName string
	Name     string
	// Val is set by the checker.
	Val int64
}

// A Tern is a conditional expression.
type Tern struct {
	Pos
	Typed
	Cond  Expr
	True  Expr
	False Expr
}

func (*Const) isExpr()     {}
func (*Ident) isExpr()     {}
func (*Call) isExpr()      {}
func (*Unary) isExpr()     {}
func (*Binary) isExpr()    {}
func (*Cast) isExpr()      {}
func (*InitExpr) isExpr()  {}
func (*Sizeof) isExpr()    {}
func (*Offsetof) isExpr()  {}
func (*GetParent) isExpr() {}
func (*Elem) isExpr()      {}
func (*Index) isExpr()     {}
func (*Body) isExpr()      {}
func (*InitArgs) isExpr()  {}
func (*GetArg) isExpr()    {}
func (*EnumVal) isExpr()   {}
func (*Tern) isExpr()      {}
