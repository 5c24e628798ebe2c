// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import (
	"math/big"
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{nil, "nil"},
		{&Const{Kind: StrConst, Str: "a\nb"}, `"a\nb"`},
		{&Const{Kind: BoolConst, Bool: true}, "true"},
		{&Const{Kind: NumConst, Num: big.NewInt(-12)}, "-12"},
		{&Const{Kind: NumConst}, "0"},
		{&Ident{Name: "x"}, "x"},
		{&Unary{Op: Require}, "Unary(e:req)"},
		{&Unary{Op: PostInc}, "Unary(x++)"},
		{&Binary{Op: ShlEq}, "Binary(<<=)"},
		{&Binary{Op: LAnd}, "Binary(&&)"},
		{&Elem{Name: "f"}, "Elem(.f)"},
		{&Decl{Name: "main"}, "Decl(main)"},
		{&TypeDecl{Name: "point"}, "TypeDecl(point)"},
		{&Cast{}, "Cast"},
		{&Block{}, "Block"},
	}
	for _, test := range tests {
		if got := Name(test.node); got != test.want {
			t.Errorf("got:\n	%s\nexpected:\n	%s", got, test.want)
		}
	}
}

func TestOpString(t *testing.T) {
	if s := UnOp(1000).String(); s != "UnOp(1000)" {
		t.Errorf("UnOp(1000).String()=%q", s)
	}
	if s := BinOp(1000).String(); s != "BinOp(1000)" {
		t.Errorf("BinOp(1000).String()=%q", s)
	}
	if s := Get.String(); s != "e:get" {
		t.Errorf("Get.String()=%q", s)
	}
}
