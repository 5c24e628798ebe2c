// Copyright © 2020 The Pea Authors under an MIT-style license.

package genll

import (
	"regexp"
	"strings"
	"testing"

	"github.com/eaburns/el/ast"
	. "github.com/eaburns/el/ast/asttest"
	"github.com/eaburns/el/check"
	"github.com/eaburns/el/types"
	"github.com/nalgeon/be"
)

func void() *types.Type { return types.New(types.VoidType) }

func ptr(t *types.Type) *types.Type { return types.NewPtr(t, false) }

func param(name string, t *types.Type) types.Param { return types.Param{Name: name, Type: t} }

func TestFunctions(t *testing.T) {
	t.Parallel()
	tests := []irTest{
		{
			name: "return constant",
			top:  Top(Unit(Func("f", types.NewFunc(I32()), Ret(Num(3))))),
			want: []string{
				`define hidden i32 @"$g0"() !dbg !3 { ; test.el:1
entry:
  %r0 = bitcast i32 3 to i32
  ret i32 %r0
l0:
  unreachable
}`,
				`!3 = distinct !DISubprogram(name: "f", scope: !1, file: !1, unit: !2, type: !DISubroutineType(types: !{null}))`,
			},
		},
		{
			name: "parameters are spilled",
			top:  Top(Unit(Func("id", types.NewFunc(I32(), param("a", I32())), Ret(Id("a"))))),
			want: []string{
				`define hidden i32 @"$g0"(i32 %p0) !dbg !3 { ; test.el:1
entry:
  %r0 = alloca i32
  store i32 %p0, i32* %r0
  %r1 = load i32, i32* %r0
  ret i32 %r1
l0:
  unreachable
}`,
			},
		},
		{
			name: "void function",
			top:  Top(Unit(Func("f", types.NewFunc(void())))),
			want: []string{
				`define hidden void @"$g0"() !dbg !3 { ; test.el:1
entry:
  ret void
}`,
			},
		},
		{
			name: "fatal is noreturn",
			top: Top(Unit(
				Func("fatal", types.NewVariadic(void(), param("e", ptr(void())))),
			)),
			want: []string{`define hidden void @"$g0"(i8* %p0, ...) noreturn !dbg !3 {`},
		},
		{
			name: "return of a value in an error function",
			top: Top(Unit(
				Func("f", types.NewFunc(types.NewError(I32(), I32())), Ret(Num(5))),
			)),
			want: []string{
				`define hidden <{i32,i32}> @"$g0"() !dbg !3 { ; test.el:1
entry:
  %r0 = insertvalue <{i32,i32}> undef, i32 undef, 0
  %r1 = bitcast i32 5 to i32
  %r2 = insertvalue <{i32,i32}> %r0, i32 %r1, 0
  %r3 = bitcast i32 0 to i32
  %r4 = insertvalue <{i32,i32}> %r2, i32 %r3, 1
  ret <{i32,i32}> %r4
l0:
  unreachable
}`,
			},
		},
		{
			name: "error function without value falls off the end",
			top: Top(Unit(
				Func("f", types.NewFunc(types.NewError(void(), I32()))),
			)),
			want: []string{"  ret <{i32}> zeroinitializer\n}"},
		},
		{
			name: "extern function call",
			top: Top(Unit(
				Extern("puts", types.NewFunc(I32(), param("s", types.NewPtr(T(types.U8Type), true)))),
				Func("f", types.NewFunc(void()), Expr(At(2, Call(Id("puts"), Str("hi"))))),
			)),
			want: []string{
				`declare i32 @"puts"(i8* %p0)`,
				`define hidden void @"$g1"() !dbg !3 {`,
				`  %r0 = bitcast i32(i8*)* @"puts" to i32(i8*)*
  %r1 = getelementptr inbounds [3 x i8], [3 x i8]* @s0, i64 0, i64 0
  %r2 = call i32 %r0(i8* %r1), !dbg !4
`,
				`@s0 = hidden local_unnamed_addr constant [3 x i8] c"hi\00", align 1`,
				`!4 = distinct !DILocation(line: 2, column: 1, scope: !3)`,
			},
		},
		{
			name: "variadic call uses the function type",
			top: Top(Unit(
				Extern("printf", types.NewVariadic(I32(), param("f", types.NewPtr(T(types.U8Type), true)))),
				Func("f", types.NewFunc(void()), Expr(Call(Id("printf"), Str("%d"), Num(1)))),
			)),
			want: []string{
				`call i32(i8*, ...) %r0(i8* %r1, i32 %r2), !dbg !4`,
			},
		},
		{
			name: "untyped numeral",
			top:  Top(Unit(Func("f", types.NewFunc(void()), Expr(At(2, Num(1)))))),
			err:  "test.el:2:1: Cannot emit an untyped numeral.",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestGlobals(t *testing.T) {
	t.Parallel()
	exported := Let("e", I32(), Num(2))
	exported.Vis = ast.Exported
	s := types.NewStruct("S", types.Field{Name: "a", Type: I32()}, types.Field{Name: "b", Type: T(types.BoolType)})
	tests := []irTest{
		{
			name: "public global",
			top:  Top(Unit(Pub(Let("x", I32(), Num(7))))),
			want: []string{
				`@"$g0" = global i32 7`,
				`@"x" = hidden alias i32, i32* @"$g0"`,
			},
		},
		{
			name: "exported global",
			top:  Top(Unit(exported)),
			want: []string{`@"e" = dso_local alias i32, i32* @"$g0"`},
		},
		{
			name: "uninitialized global",
			top:  Top(Unit(Var("x", T(types.U16Type), nil))),
			want: []string{`@"$g0" = global i16 zeroinitializer`},
		},
		{
			name: "address of global",
			top: Top(Unit(
				Let("x", I32(), Num(1)),
				Let("p", ptr(I32()), Un(ast.Addr, Id("x"))),
			)),
			want: []string{`@"$g1" = global i8* bitcast (i32* @"$g0" to i8*)`},
		},
		{
			name: "struct global with missing field",
			top:  Top(Unit(Let("s", s, Init(s, Named("b", Bool(true)))))),
			want: []string{`@"$g0" = global <{i32,i1}> <{i32 zeroinitializer, i1 true}>`},
		},
		{
			name: "unsigned constants are written signed",
			top:  Top(Unit(Let("x", T(types.U8Type), Num(255)))),
			want: []string{`@"$g0" = global i8 -1`},
		},
		{
			name: "string global",
			top:  Top(Unit(Let("s", types.NewPtr(T(types.U8Type), true), Str(`a"b`)))),
			want: []string{
				`@"$g0" = global i8* getelementptr inbounds ([4 x i8], [4 x i8]* @s0, i64 0, i64 0)`,
				`@s0 = hidden local_unnamed_addr constant [4 x i8] c"a\22b\00", align 1`,
			},
		},
		{
			name: "global initialized from a mutable",
			top: Top(Unit(
				Var("x", I32(), Num(1)),
				Let("y", I32(), At(2, Id("x"))),
			)),
			err: "test.el:2:1: Cannot use mutable value in a global initializer.",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestStatements(t *testing.T) {
	t.Parallel()
	one := &ast.Label{Name: "one"}
	def := &ast.Label{Name: "def"}
	sw := &ast.Switch{
		Pos:   Pos,
		Eval:  Id("a"),
		Cases: []*ast.Case{{Expr: Num(1), Label: one}, {Label: def}},
		Block: Block(
			&ast.LabelStmt{Label: one},
			Break(0),
			&ast.LabelStmt{Label: def},
		),
	}
	mutCase := &ast.Label{Name: "m"}
	badSwitch := &ast.Switch{
		Pos:   Pos,
		Eval:  Id("a"),
		Cases: []*ast.Case{{Pos: L(3), Expr: At(3, Id("v")), Label: mutCase}},
		Block: Block(&ast.LabelStmt{Label: mutCase}),
	}
	post := &ast.Loop{Pos: Pos, Post: true, Cond: Bool(false), Body: Block(Continue(0))}

	tests := []irTest{
		{
			name: "break out of a plain block",
			top: Top(Unit(Func("f", types.NewFunc(void()),
				While(Bool(true), Block(Break(0))),
			))),
			want: []string{
				`  br label %l1
l1:
  %r0 = bitcast i1 true to i1
  br i1 %r0, label %l3, label %l2
l3:
  br label %l2
l4:
  br label %l0
l0:
  br label %l1
l2:
  ret void`,
			},
		},
		{
			name: "break level 1",
			top: Top(Unit(Func("f", types.NewFunc(void()),
				While(Bool(true), While(Bool(true), Break(1))),
			))),
			want: []string{"l7:\n  br label %l2\n"},
		},
		{
			name: "invalid break level",
			top: Top(Unit(Func("f", types.NewFunc(void()),
				While(Bool(true), At(2, Break(1))),
			))),
			err: "test.el:2:1: Invalid break level.",
		},
		{
			name: "continue outside of a loop",
			top:  Top(Unit(Func("f", types.NewFunc(void()), At(2, Continue(0))))),
			err:  "test.el:2:1: Invalid continue level.",
		},
		{
			name: "continue in a post-test loop",
			top:  Top(Unit(Func("f", types.NewFunc(void()), post))),
			want: []string{
				`  br label %l1
l1:
  br label %l0
l3:
  br label %l0
l0:
  %r0 = bitcast i1 false to i1
  br i1 %r0, label %l1, label %l2
l2:
  ret void`,
			},
		},
		{
			name: "if else",
			top: Top(Unit(Func("f", types.NewFunc(I32(), param("c", T(types.BoolType))),
				If(Id("c"), Block(Ret(Num(1))), Block(Ret(Num(2)))),
				Ret(Num(3)),
			))),
			want: []string{"  br i1 %r1, label %l1, label %l2\nl1:\n"},
		},
		{
			name: "switch",
			top:  Top(Unit(Func("f", types.NewFunc(void(), param("a", I32())), sw))),
			want: []string{
				`  %r1 = load i32, i32* %r0
  switch i32 %r1, label %l1 [ i32 1, label %l2 ]
  br label %l2
l2:
  br label %l0
l3:
  br label %l1
l1:
  br label %l0
l0:
`,
			},
		},
		{
			name: "switch on a mutable",
			top: Top(Unit(Func("f", types.NewFunc(void(), param("a", I32())),
				Var("v", I32(), Num(1)),
				badSwitch,
			))),
			err: "test.el:3:1: Case values must be constant.",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestExpressions(t *testing.T) {
	t.Parallel()
	u := types.NewUnion("U", types.Field{Name: "a", Type: I32()}, types.Field{Name: "b", Type: T(types.U8Type)})
	sptr := ptr(types.StructRef("s"))
	wptr := ptr(types.AliasRef("wide"))
	tests := []irTest{
		{
			name: "union member",
			top: Top(Unit(Func("f", types.NewFunc(T(types.U8Type), param("u", u)),
				Ret(Elem(Id("u"), "b")),
			))),
			want: []string{
				`  %r2 = alloca i32
  store i32 %p0, i32* %r0
  %r1 = load i32, i32* %r0
  %r3 = bitcast i32* %r2 to i32*
  %r4 = bitcast i32* %r2 to i8*
  store i32 %r1, i32* %r3
  %r5 = load i8, i8* %r4
  ret i8 %r5
`,
			},
		},
		{
			name: "union initializer must be named",
			top: Top(Unit(Func("f", types.NewFunc(void()),
				Let("x", u, At(2, Init(u, Entry(Num(1))))),
			))),
			err: "test.el:2:1: Can only initialize unions by name.",
		},
		{
			name: "sign extension",
			top: Top(Unit(Func("f", types.NewFunc(T(types.I64Type), param("a", I32())),
				Ret(Cast(T(types.I64Type), Id("a"))),
			))),
			want: []string{"%r2 = sext i32 %r1 to i64"},
		},
		{
			name: "zero extension",
			top: Top(Unit(Func("f", types.NewFunc(I32(), param("a", T(types.U8Type))),
				Ret(Cast(I32(), Id("a"))),
			))),
			want: []string{"%r2 = zext i8 %r1 to i32"},
		},
		{
			name: "truncation",
			top: Top(Unit(Func("f", types.NewFunc(T(types.U8Type), param("a", I32())),
				Ret(Cast(T(types.U8Type), Id("a"))),
			))),
			want: []string{"%r2 = trunc i32 %r1 to i8"},
		},
		{
			name: "pointer to integer",
			top: Top(Unit(Func("f", types.NewFunc(T(types.U64Type), param("p", ptr(I32()))),
				Ret(Cast(T(types.U64Type), Id("p"))),
			))),
			want: []string{"%r2 = ptrtoint i8* %r1 to i64"},
		},
		{
			name: "pointer addition",
			top: Top(Unit(Func("f", types.NewFunc(ptr(I32()), param("p", ptr(I32()))),
				Ret(Bin(ast.Add, Id("p"), Num(2))),
			))),
			want: []string{
				`  %r1 = load i8*, i8** %r0
  %r2 = bitcast i32 2 to i32
  %r3 = bitcast i8* %r1 to i32*
  %r4 = getelementptr i32, i32* %r3, i32 %r2
  %r5 = bitcast i32* %r4 to i8*
  ret i8* %r5
`,
			},
		},
		{
			name: "pointer arithmetic on a struct pointee",
			top: Top(Unit(
				Type("s", types.NewStruct("s",
					types.Field{Name: "a", Type: T(types.I64Type)},
					types.Field{Name: "b", Type: T(types.I64Type)})),
				Func("f", types.NewFunc(sptr, param("p", sptr)),
					Expr(Un(ast.PreInc, Id("p"))),
					Ret(Bin(ast.Add, Id("p"), Num(1))),
				),
			)),
			want: []string{
				`  %r1 = load i8*, i8** %r0
  %r2 = bitcast i8* %r1 to <{i64,i64}>*
  %r3 = getelementptr <{i64,i64}>, <{i64,i64}>* %r2, i32 1
  %r4 = bitcast <{i64,i64}>* %r3 to i8*
  store i8* %r4, i8** %r0
`,
				`getelementptr <{i64,i64}>, <{i64,i64}>* %r`,
			},
		},
		{
			name: "pointer arithmetic on an alias pointee",
			top: Top(Unit(
				Type("wide", types.NewAlias("wide", T(types.I64Type))),
				Func("f", types.NewFunc(wptr, param("p", wptr)),
					Ret(Bin(ast.Sub, Id("p"), Num(1))),
				),
			)),
			want: []string{"to i64*", "getelementptr i64, i64* %r"},
		},
		{
			name: "pointer post-decrement",
			top: Top(Unit(Func("f", types.NewFunc(ptr(I32()), param("p", ptr(I32()))),
				Ret(Un(ast.PostDec, Id("p"))),
			))),
			want: []string{
				`  %r2 = bitcast i8* %r1 to i32*
  %r3 = getelementptr i32, i32* %r2, i32 -1
  %r4 = bitcast i32* %r3 to i8*
  store i8* %r4, i8** %r0
  ret i8* %r1
`,
			},
		},
		{
			name: "numeral statement",
			top: Top(Unit(Func("f", types.NewFunc(void()),
				Expr(Bin(ast.Add, Num(1), Num(2))),
			))),
			want: []string{"add i32 %r"},
		},
		{
			name: "signed division",
			top: Top(Unit(Func("f", types.NewFunc(I32(), param("a", I32()), param("b", I32())),
				Ret(Bin(ast.Div, Id("a"), Id("b"))),
			))),
			want: []string{"%r4 = sdiv i32 %r2, %r3"},
		},
		{
			name: "unsigned comparison",
			top: Top(Unit(Func("f", types.NewFunc(T(types.BoolType), param("a", T(types.U32Type)), param("b", T(types.U32Type))),
				Ret(Bin(ast.Lt, Id("a"), Id("b"))),
			))),
			want: []string{"%r4 = icmp ult i32 %r2, %r3"},
		},
		{
			name: "logical and",
			top: Top(Unit(Func("f", types.NewFunc(T(types.BoolType), param("a", T(types.BoolType)), param("b", T(types.BoolType))),
				Ret(Bin(ast.LAnd, Id("a"), Id("b"))),
			))),
			want: []string{
				`  %r2 = load i1, i1* %r0
  br label %l0
l0:
  %r3 = bitcast i1 %r2 to i1
  br i1 %r3, label %l1, label %l3
l1:
  %r4 = load i1, i1* %r1
  br label %l2
l2:
  %r5 = bitcast i1 %r4 to i1
  br label %l3
l3:
  %r6 = phi i1 [ false, %l0 ], [ %r5, %l2 ]
  ret i1 %r6
`,
			},
		},
		{
			name: "compound assignment",
			top: Top(Unit(Func("f", types.NewFunc(void()),
				Var("x", I32(), Num(1)),
				Expr(Bin(ast.AddEq, Id("x"), Num(2))),
			))),
			want: []string{
				`  %r0 = alloca i32
  %r1 = bitcast i32 1 to i32
  store i32 %r1, i32* %r0
  %r2 = bitcast i32* %r0 to i32*
  %r3 = bitcast i32 2 to i32
  %r4 = load i32, i32* %r2
  %r5 = add i32 %r4, %r3
  store i32 %r5, i32* %r2
`,
			},
		},
		{
			name: "array index",
			top: Top(Unit(Func("f", types.NewFunc(I32(), param("i", I32())),
				Var("a", types.NewArr(I32(), 2), Init(types.NewArr(I32(), 2), Entry(Num(1)), Entry(Num(2)))),
				Ret(Index(Id("a"), Id("i"))),
			))),
			want: []string{"getelementptr [2 x i32], [2 x i32]* %r7, i64 0, i32 %r8"},
		},
		{
			name: "builtin syscall",
			top: Top(Unit(Func("f", types.NewFunc(T(types.I64Type)),
				Ret(Call(Id("bi:syscall"), Num(60), Num(0), Num(0), Num(0), Num(0), Num(0), Num(0))),
			))),
			want: []string{`%r0 = bitcast i64(i64, i64, i64, i64, i64, i64, i64)* @"$syscall" to i64(i64, i64, i64, i64, i64, i64, i64)*`},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()
	errType := func() *types.Type { return types.NewError(I32(), ptr(T(types.U8Type))) }
	tests := []irTest{
		{
			name: "e:req calls fatal",
			top: Top(Unit(
				Extern("open", types.NewFunc(errType())),
				Func("f", types.NewFunc(I32()), Ret(At(2, Un(ast.Require, Call(Id("open")))))),
			)),
			want: []string{
				`  %r2 = extractvalue <{i32,i8*}> %r1, 1
  %r3 = icmp eq i8* %r2, null
  br i1 %r3, label %l1, label %l0
l0:
  call void(i8*, ...) @"fatal"(i8* %r2), !dbg !5
  unreachable
l1:
  %r4 = extractvalue <{i32,i8*}> %r1, 0
  ret i32 %r4
`,
				`!5 = distinct !DILocation(line: 2, column: 1, scope: !3)`,
			},
		},
		{
			name: "e:get returns the error",
			top: Top(Unit(
				Extern("open", types.NewFunc(errType())),
				Func("f", types.NewFunc(errType()), Ret(Un(ast.Get, Call(Id("open"))))),
			)),
			want: []string{
				`l0:
  %r5 = insertvalue <{i32,i8*}> undef, i8* %r3, 1
  ret <{i32,i8*}> %r5
l1:
  %r6 = extractvalue <{i32,i8*}> %r2, 0
`,
			},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestHandlersRunLatestFirst(t *testing.T) {
	t.Parallel()
	call := func(name string) ast.Stmt { return Expr(Call(Id(name))) }
	top := Top(Unit(
		Extern("a", types.NewFunc(void())),
		Extern("b", types.NewFunc(void())),
		Extern("c", types.NewFunc(void())),
		Func("f", types.NewFunc(types.NewError(void(), I32())),
			OnErr(call("a")),
			OnErr(call("b")),
			Block(
				OnErr(call("c")),
				ErrRet(Num(1)),
			),
		),
	))
	out := generate(t, top)
	a := strings.Index(out, `void()* @"a" to`)
	b := strings.Index(out, `void()* @"b" to`)
	c := strings.Index(out, `void()* @"c" to`)
	ret := strings.Index(out, "ret <{i32}> %r")
	be.True(t, c >= 0 && b > c && a > b && ret > a)
}

func TestHandlerLabelsPerErrorSite(t *testing.T) {
	t.Parallel()
	errType := types.NewError(I32(), ptr(T(types.U8Type)))
	top := Top(Unit(
		Extern("open", types.NewFunc(errType)),
		Func("f", types.NewFunc(errType),
			OnErr(&ast.LabelStmt{Pos: Pos, Label: &ast.Label{Pos: Pos, Name: "out"}}),
			Expr(Un(ast.Get, Call(Id("open")))),
			Ret(Un(ast.Get, Call(Id("open")))),
		),
	))
	out := generate(t, top)
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		if !labelLine.MatchString(line) {
			continue
		}
		if seen[line] {
			t.Errorf("label %s placed twice in\n%s", line, out)
		}
		seen[line] = true
	}
}

var labelLine = regexp.MustCompile(`^l[0-9]+:$`)

func TestHoistedOnce(t *testing.T) {
	t.Parallel()
	sig := types.NewFunc(I32())
	top := Top(Unit(
		Func("f", types.NewFunc(I32()),
			Let("k", I32(), Num(4)),
			Func("g", sig, Ret(Id("k"))),
			Ret(Call(Id("g"))),
		),
	))
	out := generate(t, top)
	be.Equal(t, strings.Count(out, `@"$g1" = global i32 zeroinitializer`), 1)
	be.Equal(t, strings.Count(out, `define hidden i32 @"$g2"()`), 1)
	for _, want := range []string{
		`  %r0 = bitcast i32* @"$g1" to i32*
  %r1 = bitcast i32 4 to i32
  store i32 %r1, i32* %r0
  %r2 = bitcast i32()* @"$g2" to i32()*
`,
		`%r0 = load i32, i32* @"$g1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing\n%s\nin\n%s", want, out)
		}
	}
}

func TestNothingWrittenOnError(t *testing.T) {
	t.Parallel()
	top := Top(Unit(Func("f", types.NewFunc(void()), Break(0))))
	if errs := check.Check(top, check.Config{}); len(errs) > 0 {
		t.Fatalf("check failed: %v", errs)
	}
	var b strings.Builder
	err := WriteTop(&b, top, Config{})
	be.Err(t, err, "Invalid break level.")
	be.Equal(t, b.Len(), 0)
}

func TestHeaderAndTrailer(t *testing.T) {
	t.Parallel()
	out := generate(t, Top(Unit()))
	for _, want := range []string{
		`target triple = "x86_64-pc-linux-gnu"`,
		`declare void @_getarg(i8*, i32, i8*)`,
		`define hidden i64 @$syscall(i64, i64, i64, i64, i64, i64, i64)`,
		`!1 = !DIFile(filename: "test.el", directory: ".")`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestEscape(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{in: "", want: ""},
		{in: "abc", want: "abc"},
		{in: `"`, want: `\22`},
		{in: `\`, want: `\5C`},
		{in: "a\nb", want: `a\0Ab`},
		{in: "\x00\xFF", want: `\00\FF`},
	}
	for _, test := range tests {
		be.Equal(t, escape(test.in, new(strings.Builder)), test.want)
	}
}

type irTest struct {
	name string
	top  *ast.Top
	want []string // substrings of the output
	err  string   // substring, "" means no error
}

func (test irTest) run(t *testing.T) {
	t.Parallel()
	if errs := check.Check(test.top, check.Config{}); len(errs) > 0 {
		t.Fatalf("check failed: %v", errs)
	}
	var b strings.Builder
	err := WriteTop(&b, test.top, Config{})
	if test.err != "" {
		be.Err(t, err, test.err)
		return
	}
	be.Err(t, err, nil)
	out := b.String()
	for _, want := range test.want {
		if !strings.Contains(out, want) {
			t.Errorf("missing\n%s\nin\n%s", want, out)
		}
	}
}

func generate(t *testing.T, top *ast.Top) string {
	t.Helper()
	if errs := check.Check(top, check.Config{}); len(errs) > 0 {
		t.Fatalf("check failed: %v", errs)
	}
	var b strings.Builder
	if err := WriteTop(&b, top, Config{}); err != nil {
		t.Fatalf("WriteTop failed: %v", err)
	}
	return b.String()
}
