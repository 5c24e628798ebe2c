// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import (
	"fmt"
	"strconv"
)

var unOpNames = [...]string{
	Addr:    "&",
	Deref:   "*",
	Plus:    "+",
	Neg:     "-",
	Not:     "~",
	LNot:    "!",
	PreInc:  "++x",
	PreDec:  "--x",
	PostInc: "x++",
	PostDec: "x--",
	ArrLen:  "arrlen",
	GetRef:  "getref",
	Get:     "e:get",
	Require: "e:req",
}

func (op UnOp) String() string {
	if int(op) < len(unOpNames) {
		return unOpNames[op]
	}
	return "UnOp(" + strconv.Itoa(int(op)) + ")"
}

var binOpNames = [...]string{
	Mul:    "*",
	Div:    "/",
	Rem:    "%",
	Add:    "+",
	Sub:    "-",
	Shl:    "<<",
	Shr:    ">>",
	And:    "&",
	Xor:    "^",
	Or:     "|",
	LAnd:   "&&",
	LOr:    "||",
	Eq:     "==",
	Ne:     "!=",
	Gt:     ">",
	Gte:    ">=",
	Lt:     "<",
	Lte:    "<=",
	Assign: "=",
	AddEq:  "+=",
	SubEq:  "-=",
	MulEq:  "*=",
	DivEq:  "/=",
	RemEq:  "%=",
	ShlEq:  "<<=",
	ShrEq:  ">>=",
	AndEq:  "&=",
	XorEq:  "^=",
	OrEq:   "|=",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "BinOp(" + strconv.Itoa(int(op)) + ")"
}

// Name returns a short description of a node for traces.
func Name(n Node) string {
	switch n := n.(type) {
	case nil:
		return "nil"
	case *Const:
		switch n.Kind {
		case StrConst:
			return strconv.Quote(n.Str)
		case BoolConst:
			return strconv.FormatBool(n.Bool)
		default:
			if n.Num == nil {
				return "0"
			}
			return n.Num.String()
		}
	case *Ident:
		return n.Name
	case *Unary:
		return "Unary(" + n.Op.String() + ")"
	case *Binary:
		return "Binary(" + n.Op.String() + ")"
	case *Elem:
		return "Elem(." + n.Name + ")"
	case *Decl:
		return "Decl(" + n.Name + ")"
	case *TypeDecl:
		return "TypeDecl(" + n.Name + ")"
	default:
		s := fmt.Sprintf("%T", n)
		return s[len("*ast."):]
	}
}
