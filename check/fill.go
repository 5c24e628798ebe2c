// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"math/big"

	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

// untyped returns whether t is the type of an expression
// that still waits for a type from its context.
func untyped(t *types.Type) bool {
	return t == nil || t.Kind == types.UnresolvedType || t.Kind == types.NumType
}

// fill gives an untyped expression the type t.
// Numerals are converted to constants of the root kind of t.
// Fill descends through untyped operators to their untyped operands.
// It does nothing if the expression already has a type,
// or if t is itself void or untyped.
func fill(e ast.Expr, t *types.Type) {
	if t == nil || types.IsVoid(t) || untyped(t) || !untyped(e.Type()) {
		return
	}
	switch e := e.(type) {
	case *ast.Const:
		if e.Kind != ast.NumConst {
			return
		}
		fillNum(e, t)

	case *ast.Unary:
		switch e.Op {
		case ast.Plus, ast.Neg, ast.Not:
			fill(e.X, t)
			e.SetType(t)
		case ast.ArrLen:
			e.SetType(t)
		}

	case *ast.Binary:
		switch e.Op {
		case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Rem,
			ast.And, ast.Xor, ast.Or, ast.Shl, ast.Shr:
			fill(e.L, t)
			fill(e.R, t)
			e.SetType(t)
		}

	case *ast.Sizeof, *ast.Offsetof:
		e.SetType(t)

	case *ast.Tern:
		fill(e.True, t)
		fill(e.False, t)
		e.SetType(t)
	}
}

func fillNum(c *ast.Const, t *types.Type) {
	r := types.Root(t)
	if r == nil {
		return
	}
	switch r.Kind {
	case types.EnumType:
		t = types.New(types.I32Type)
		c.Kind = ast.IntConst
		c.Int = types.I32Type
		c.Num = truncate(c.Num, types.I32Type)
	case types.BoolType:
		c.Kind = ast.BoolConst
		c.Bool = truncate(c.Num, types.U64Type).Sign() != 0
		c.Num = nil
	case types.U8Type, types.I8Type, types.U16Type, types.I16Type,
		types.U32Type, types.I32Type, types.U64Type, types.I64Type:
		c.Kind = ast.IntConst
		c.Int = r.Kind
		c.Num = truncate(c.Num, r.Kind)
	case types.PtrType:
		c.Kind = ast.PtrConst
	default:
		return
	}
	c.SetType(t)
}

var bits = map[types.Kind]uint{
	types.U8Type:  8,
	types.I8Type:  8,
	types.U16Type: 16,
	types.I16Type: 16,
	types.U32Type: 32,
	types.I32Type: 32,
	types.U64Type: 64,
	types.I64Type: 64,
}

// truncate returns n converted to the integer kind k.
// Unsigned kinds take the magnitude of n modulo 2^bits.
// Signed kinds take n modulo 2^bits in two's complement.
func truncate(n *big.Int, k types.Kind) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	b := bits[k]
	mod := new(big.Int).Lsh(big.NewInt(1), b)
	switch k {
	case types.I8Type, types.I16Type, types.I32Type, types.I64Type:
		v := new(big.Int).Mod(n, mod)
		if v.Cmp(new(big.Int).Rsh(mod, 1)) >= 0 {
			v.Sub(v, mod)
		}
		return v
	default:
		v := new(big.Int).Abs(n)
		return v.Mod(v, mod)
	}
}

// assignable returns whether a value of type src
// can be stored in a location of type dst.
//
// Pointers to const may not be stored in pointers to non-const,
// and once a const pointer is accepted,
// every deeper pointer of src must be const too.
// A pointer to void matches any pointee.
// Function parameters are compared in the opposite direction
// of the return type.
func assignable(dst, src *types.Type) bool {
	strict := false
	for {
		dst, src = types.Root(dst), types.Root(src)
		if dst == nil || src == nil || dst.Kind != src.Kind {
			return false
		}
		switch dst.Kind {
		case types.PtrType:
			if !dst.Const && src.Const || strict && !src.Const {
				return false
			}
			strict = strict || src.Const
			dst, src = dst.Sub, src.Sub
			if types.IsVoid(dst) || types.IsVoid(src) {
				return true
			}
		case types.ArrType:
			if dst.Len != 0 && src.Len != 0 && dst.Len != src.Len {
				return false
			}
			dst, src = dst.Sub, src.Sub
		case types.FuncType:
			d, s := dst.Func, src.Func
			if !assignable(d.Ret, s.Ret) ||
				len(d.Params) != len(s.Params) ||
				d.Variadic != s.Variadic {
				return false
			}
			for i := range d.Params {
				if !assignable(s.Params[i].Type, d.Params[i].Type) {
					return false
				}
			}
			return true
		case types.StructType, types.UnionType:
			return dst.Rec.Name == src.Rec.Name
		case types.EnumType:
			return dst.Enum.Name == src.Enum.Name
		default:
			return true
		}
	}
}

// match returns whether the operands of a binary operator
// have the same type.
// Pointer constness is ignored.
func match(l, r *types.Type) bool {
	for {
		l, r = types.Root(l), types.Root(r)
		if l == nil || r == nil || l.Kind != r.Kind {
			return false
		}
		switch l.Kind {
		case types.PtrType:
			l, r = l.Sub, r.Sub
			if types.IsVoid(l) || types.IsVoid(r) {
				return true
			}
		case types.ArrType:
			if l.Len != r.Len {
				return false
			}
			l, r = l.Sub, r.Sub
		case types.FuncType:
			return assignable(l, r)
		case types.StructType, types.UnionType:
			return l.Rec.Name == r.Rec.Name
		case types.EnumType:
			return l.Enum.Name == r.Enum.Name
		default:
			return true
		}
	}
}

// unify fills each of two operands from the other,
// the untyped one taking the type of the typed one.
func unify(l, r ast.Expr) {
	fill(l, r.Type())
	fill(r, l.Type())
}
