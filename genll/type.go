// Copyright © 2020 The Pea Authors under an MIT-style license.

package genll

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

// typ returns the LLVM type of t.
// Pointers are untyped i8*.
// Structs are packed.
// Unions are integers of their size.
func (g *gen) typ(t *types.Type) string {
	var s strings.Builder
	g.buildType(t, &s)
	return s.String()
}

func (g *gen) buildType(t *types.Type, s *strings.Builder) {
	if t == nil {
		g.fail(nil, "Cannot emit an untyped numeral.")
	}
	switch t.Kind {
	case types.VoidType:
		s.WriteString("void")
	case types.BoolType:
		s.WriteString("i1")
	case types.U8Type, types.I8Type, types.U16Type, types.I16Type,
		types.U32Type, types.I32Type, types.U64Type, types.I64Type, types.EnumType:
		s.WriteRune('i')
		s.WriteString(strconv.Itoa(types.Size(t)))
	case types.PtrType, types.ArgsType:
		s.WriteString("i8*")
	case types.ArrType:
		s.WriteRune('[')
		s.WriteString(strconv.Itoa(t.Len))
		s.WriteString(" x ")
		g.buildType(t.Sub, s)
		s.WriteRune(']')
	case types.FuncType:
		g.buildType(t.Func.Ret, s)
		s.WriteRune('(')
		for i, p := range t.Func.Params {
			if i > 0 {
				s.WriteString(", ")
			}
			g.buildType(p.Type, s)
		}
		if t.Func.Variadic {
			if len(t.Func.Params) > 0 {
				s.WriteString(", ")
			}
			s.WriteString("...")
		}
		s.WriteRune(')')
	case types.StructType:
		s.WriteString("<{")
		for i, f := range t.Rec.Fields {
			if i > 0 {
				s.WriteRune(',')
			}
			g.buildType(f.Type, s)
		}
		s.WriteString("}>")
	case types.UnionType:
		s.WriteRune('i')
		s.WriteString(strconv.Itoa(types.Size(t)))
	case types.AliasType:
		r := types.Root(t)
		if r == nil {
			g.defect(nil, "unresolved alias %s", t.Name)
		}
		g.buildType(r, s)
	case types.NumType, types.UnresolvedType:
		g.fail(nil, "Cannot emit an untyped numeral.")
	default:
		g.defect(nil, "impossible type kind %d", t.Kind)
	}
}

// elemType returns the pointee of a pointer,
// with void pointees stepping over bytes.
func (g *gen) elemType(ptr *types.Type) string {
	sub := types.Root(types.Root(ptr).Sub)
	if sub == nil || sub.Kind == types.VoidType {
		return "i8"
	}
	return g.typ(sub)
}

// width returns the LLVM bit width of a scalar type.
func width(t *types.Type) int {
	if types.IsBool(t) {
		return 1
	}
	return types.Size(types.Root(t))
}

// signed returns the value of an integer of kind k
// in the signed range of its width.
func signed(n *big.Int, k types.Kind) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	bits := types.Size(types.New(k))
	if bits <= 0 || n.Sign() < 0 {
		return n
	}
	half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	if n.Cmp(half) < 0 {
		return n
	}
	return new(big.Int).Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
}

// opName returns the instruction of a binary operator on type t.
func opName(op ast.BinOp, t *types.Type) string {
	s := types.IsSigned(t)
	pick := func(sgn, uns string) string {
		if s {
			return sgn
		}
		return uns
	}
	switch op {
	case ast.Mul:
		return "mul"
	case ast.Div:
		return pick("sdiv", "udiv")
	case ast.Rem:
		return pick("srem", "urem")
	case ast.Add:
		return "add"
	case ast.Sub:
		return "sub"
	case ast.Shl:
		return "shl"
	case ast.Shr:
		return pick("ashr", "lshr")
	case ast.And:
		return "and"
	case ast.Xor:
		return "xor"
	case ast.Or:
		return "or"
	case ast.Eq:
		return "icmp eq"
	case ast.Ne:
		return "icmp ne"
	case ast.Gt:
		return pick("icmp sgt", "icmp ugt")
	case ast.Gte:
		return pick("icmp sge", "icmp uge")
	case ast.Lt:
		return pick("icmp slt", "icmp ult")
	case ast.Lte:
		return pick("icmp sle", "icmp ule")
	}
	panic("impossible operator: " + op.String())
}
