// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/eaburns/el/loc"
	"github.com/eaburns/el/types"
	"github.com/eaburns/pretty"
	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"
)

func at(line, col int) Pos { return At(loc.Loc{Path: "t.el", Line: line, Col: col}) }

// testUnit is
// 	struct point { i32 x; i32 y; }
// 	def n: i32 = 5;
// 	def f: e:i32[i32](i32 a) = {
// 		switch(a) { case 1: return n; default: e:get(g()); }
// 	}
func testUnit() *Unit {
	i32 := types.New(types.I32Type)
	n := &Decl{
		Pos:   at(2, 1),
		Name:  "n",
		Flags: Global,
		T:     i32,
		Expr:  &Const{Pos: at(2, 14), Kind: NumConst, Num: big.NewInt(5)},
	}
	one, def := &Label{Pos: at(4, 16), Name: "c1"}, &Label{Pos: at(4, 35), Name: "def"}
	sig := types.NewFunc(types.NewError(i32, types.New(types.I32Type)), types.Param{Name: "a", Type: i32})
	f := &Decl{
		Pos:  at(3, 1),
		Name: "f",
		Vis:  Public,
		T:    sig,
		Expr: &Body{
			Pos: at(3, 30),
			Sig: sig,
			Block: &Block{Pos: at(3, 30), Stmts: []Stmt{
				&Switch{
					Pos:  at(4, 2),
					Eval: &Ident{Pos: at(4, 9), Name: "a"},
					Cases: []*Case{
						{Pos: at(4, 16), Expr: &Const{Pos: at(4, 21), Kind: NumConst, Num: big.NewInt(1)}, Label: one},
						{Pos: at(4, 35), Label: def},
					},
					Block: &Block{Pos: at(4, 12), Stmts: []Stmt{
						&LabelStmt{Pos: at(4, 16), Label: one},
						&Return{Pos: at(4, 24), Expr: &Ident{Pos: at(4, 31), Name: "n", Ref: GlobalRef, Decl: n}},
						&LabelStmt{Pos: at(4, 35), Label: def},
						&ExprStmt{Pos: at(4, 44), Expr: &Unary{
							Pos: at(4, 44),
							Op:  Get,
							X:   &Call{Pos: at(4, 50), Func: &Ident{Pos: at(4, 50), Name: "g"}},
						}},
					}},
				},
			}},
		},
	}
	return &Unit{Path: "t.el", Stmts: []Stmt{
		&TypeDecl{
			Pos:  at(1, 1),
			Name: "point",
			T: types.NewStruct("point",
				types.Field{Name: "x", Type: i32},
				types.Field{Name: "y", Type: i32}),
		},
		n,
		f,
	}}
}

var bigComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

func TestWriteRead(t *testing.T) {
	want := testUnit()
	var buf bytes.Buffer
	if err := Write(&buf, want); err != nil {
		t.Fatalf("Write failed: %s", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %s", err)
	}
	if diff := cmp.Diff(want, got, bigComparer); diff != "" {
		t.Errorf("Read(Write(u)) differs: %s\ngot:\n%s", diff, pretty.String(got))
	}
}

func TestReadPreservesSharing(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testUnit()); err != nil {
		t.Fatalf("Write failed: %s", err)
	}
	u, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %s", err)
	}
	n := u.Stmts[1].(*Decl)
	f := u.Stmts[2].(*Decl)
	body := f.Expr.(*Body)
	be.True(t, f.T == body.Sig)

	sw := body.Block.Stmts[0].(*Switch)
	be.True(t, sw.Cases[0].Label == sw.Block.Stmts[0].(*LabelStmt).Label)
	be.True(t, sw.Cases[1].Label == sw.Block.Stmts[2].(*LabelStmt).Label)

	ret := sw.Block.Stmts[1].(*Return)
	be.True(t, ret.Expr.(*Ident).Decl == n)
}

func TestReadSelfReferentialType(t *testing.T) {
	// struct node { pt:st:node next; }
	node := types.NewStruct("node")
	node.Rec.Fields = []types.Field{{Name: "next", Type: types.NewPtr(node, false)}}
	u := &Unit{Path: "t.el", Stmts: []Stmt{&TypeDecl{Pos: at(1, 1), Name: "node", T: node}}}

	var buf bytes.Buffer
	if err := Write(&buf, u); err != nil {
		t.Fatalf("Write failed: %s", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %s", err)
	}
	typ := got.Stmts[0].(*TypeDecl).T
	be.True(t, typ.Rec.Fields[0].Type.Sub == typ)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "bad header", data: []byte{3, 0, 0, 0, 'f', 'o', 'o'}},
		{name: "truncated", data: func() []byte {
			var buf bytes.Buffer
			if err := Write(&buf, testUnit()); err != nil {
				panic(err)
			}
			return buf.Bytes()[:buf.Len()/2]
		}()},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(bytes.NewReader(test.data))
			be.True(t, err != nil)
		})
	}
}

func TestDefect(t *testing.T) {
	d := NewDefect(&Break{Pos: at(7, 3)}, "stub statement")
	be.Equal(t, d.Error(), "t.el:7:3: internal defect: stub statement")
}
