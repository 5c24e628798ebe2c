// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package genll generates textual LLVM IR from a checked tree.
package genll

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/loc"
	"github.com/eaburns/el/types"
)

// Config are configuration parameters for the generator.
type Config struct {
	// Triple is the target triple.
	// The default is x86_64-pc-linux-gnu.
	Triple string
	// Fatal is the name of the function called
	// when a required error value is an error.
	// The default is fatal.
	Fatal string
}

// An Error is a generation error.
type Error struct {
	Loc loc.Loc
	Msg string
}

func (err *Error) Error() string { return err.Loc.String() + ": " + err.Msg }

type gen struct {
	cfg Config
	// at is the node being generated, for error locations.
	at ast.Node

	// global numbers the declarations emitted as globals.
	global map[*ast.Decl]int
	// queue holds hoisted declarations not yet emitted.
	queue []*ast.Decl
	// dynamic holds hoisted declarations
	// that are initialized where they are declared.
	dynamic map[*ast.Decl]bool

	out bytes.Buffer
	// ext is written after everything else:
	// string constants, aliases, and debug metadata.
	ext strings.Builder
	dbg int
	str int
}

// WriteTop writes the LLVM IR of a checked program.
// Nothing is written if there is an error.
// The error is an *Error or an *ast.Defect.
func WriteTop(w io.Writer, top *ast.Top, cfg Config) (err error) {
	setConfigDefaults(&cfg)
	g := &gen{
		cfg:     cfg,
		global:  make(map[*ast.Decl]int),
		dynamic: make(map[*ast.Decl]bool),
		dbg:     3,
	}
	defer func() {
		switch r := recover().(type) {
		case nil:
		case *Error:
			err = r
		case *ast.Defect:
			err = r
		default:
			panic(r)
		}
	}()
	g.writeTop(top)
	_, err = w.Write(g.out.Bytes())
	return err
}

func setConfigDefaults(cfg *Config) {
	if cfg.Triple == "" {
		cfg.Triple = "x86_64-pc-linux-gnu"
	}
	if cfg.Fatal == "" {
		cfg.Fatal = "fatal"
	}
}

func (g *gen) fail(n ast.Node, f string, vs ...interface{}) {
	if n == nil {
		n = g.at
	}
	var l loc.Loc
	if n != nil {
		l = n.GetLoc()
	}
	panic(&Error{Loc: l, Msg: fmt.Sprintf(f, vs...)})
}

func (g *gen) defect(n ast.Node, f string, vs ...interface{}) {
	if n == nil {
		n = g.at
	}
	panic(ast.NewDefect(n, fmt.Sprintf(f, vs...)))
}

func (g *gen) writeTop(top *ast.Top) {
	for _, u := range top.Units {
		for _, s := range u.Stmts {
			switch s := s.(type) {
			case *ast.Decl:
				g.global[s] = len(g.global)
			case *ast.TypeDecl:
			default:
				g.fail(s, "You can only have declarations at the top level.")
			}
		}
	}

	fmt.Fprintf(&g.out, "target triple = %q\n", g.cfg.Triple)
	g.out.WriteString("%struct.__va_list_tag = type { i32, i32, ptr, ptr }\n")
	g.out.WriteString("declare void @_getarg(i8*, i32, i8*)\n")

	for _, u := range top.Units {
		for _, s := range u.Stmts {
			if d, ok := s.(*ast.Decl); ok {
				g.writeDecl(d)
			}
		}
	}
	for len(g.queue) > 0 {
		d := g.queue[0]
		g.queue = g.queue[1:]
		g.writeDecl(d)
	}

	g.out.WriteString(trailer)
	file := "el"
	if len(top.Units) > 0 {
		file = top.Units[0].Path
	}
	g.out.WriteString("!llvm.module.flags = !{!0}\n")
	g.out.WriteString("!llvm.dbg.cu = !{!2}\n")
	g.out.WriteString("!0 = !{i32 2, !\"Debug Info Version\", i32 3}\n")
	fmt.Fprintf(&g.out, "!1 = !DIFile(filename: %q, directory: \".\")\n", file)
	g.out.WriteString("!2 = distinct !DICompileUnit(language: DW_LANG_C99, file: !1, emissionKind: FullDebug)\n")
	g.out.WriteString(g.ext.String())
}

const trailer = `declare void @llvm.va_start(i8*)
declare dso_local void @abort()
define hidden i64 @$syscall(i64, i64, i64, i64, i64, i64, i64) local_unnamed_addr #0 {
  %8 = tail call i64 asm sideeffect "syscall", "={ax},{ax},{di},{si},{dx},{r10},{r8},{r9},~{rcx},~{r11},~{memory},~{dirflag},~{fpsr},~{flags}"(i64 %0, i64 %1, i64 %2, i64 %3, i64 %4, i64 %5, i64 %6) #1
  ret i64 %8
}
`

// hoist returns the global number of a declaration,
// queueing it for emission the first time it is seen.
func (g *gen) hoist(d *ast.Decl) int {
	if n, ok := g.global[d]; ok {
		return n
	}
	n := len(g.global)
	g.global[d] = n
	g.queue = append(g.queue, d)
	return n
}

func (g *gen) writeDecl(d *ast.Decl) {
	g.at = d
	if types.Root(d.T).Kind == types.FuncType {
		g.writeFunc(d)
		return
	}
	if d.Flags&ast.Extern != 0 {
		fmt.Fprintf(&g.out, "@\"%s\" = external global %s\n", d.Name, g.typ(d.T))
		return
	}
	n := g.global[d]
	t := g.typ(d.T)
	if d.Expr != nil && !g.dynamic[d] {
		fmt.Fprintf(&g.out, "@\"$g%d\" = global %s %s\n", n, t, g.constExpr(d.Expr))
	} else {
		fmt.Fprintf(&g.out, "@\"$g%d\" = global %s zeroinitializer\n", n, t)
	}
	g.alias(d, n)
}

func (g *gen) alias(d *ast.Decl, n int) {
	t := g.typ(d.T)
	switch d.Vis {
	case ast.Exported:
		fmt.Fprintf(&g.ext, "@\"%s\" = dso_local alias %s, %s* @\"$g%d\"\n", d.Name, t, t, n)
	case ast.Public:
		fmt.Fprintf(&g.ext, "@\"%s\" = hidden alias %s, %s* @\"$g%d\"\n", d.Name, t, t, n)
	}
}

// pool adds a string constant and returns its name and length.
func (g *gen) pool(s string) (string, int) {
	name := fmt.Sprintf("@s%d", g.str)
	g.str++
	n := len(s) + 1
	fmt.Fprintf(&g.ext, "%s = hidden local_unnamed_addr constant [%d x i8] c\"%s\\00\", align 1\n",
		name, n, escape(s, new(strings.Builder)))
	return name, n
}

// constExpr returns the constant expression of a global initializer.
func (g *gen) constExpr(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Const:
		if e.Kind == ast.StrConst {
			name, n := g.pool(e.Str)
			return fmt.Sprintf("getelementptr inbounds ([%d x i8], [%d x i8]* %s, i64 0, i64 0)", n, n, name)
		}
		return g.constant(e)

	case *ast.InitExpr:
		if e.Cast != nil {
			return g.constExpr(e.Cast)
		}
		return g.constInit(e, e.Entries, e.Type())

	case *ast.Unary:
		switch e.Op {
		case ast.Addr:
			id, ok := e.X.(*ast.Ident)
			if !ok {
				break
			}
			switch id.Ref {
			case ast.GlobalRef:
				return fmt.Sprintf("bitcast (%s* @\"$g%d\" to i8*)", g.typ(id.Type()), g.global[id.Decl])
			case ast.UnknownRef:
				return fmt.Sprintf("bitcast (%s* @\"%s\" to i8*)", g.typ(id.Type()), id.Name)
			}
		case ast.Neg:
			t := g.typ(e.Type())
			return fmt.Sprintf("sub (%s 0, %s %s)", t, t, g.constExpr(e.X))
		case ast.Plus:
			return g.constExpr(e.X)
		case ast.ArrLen:
			return fmt.Sprint(types.Root(e.X.Type()).Len)
		}

	case *ast.Cast:
		src, dst := types.Root(e.X.Type()), types.Root(e.Type())
		switch {
		case types.IsPtr(src) && types.IsPtr(dst):
			return fmt.Sprintf("bitcast (%s %s to %s)", g.typ(src), g.constExpr(e.X), g.typ(dst))
		case types.IsPtr(dst) && types.IsInt(src):
			return fmt.Sprintf("inttoptr (%s %s to %s)", g.typ(src), g.constExpr(e.X), g.typ(dst))
		case width(src) == width(dst):
			return g.constExpr(e.X)
		}

	case *ast.Ident:
		if e.Ref != ast.GlobalRef {
			g.fail(e, "Cannot use non-global in a global initializer.")
		}
		switch {
		case e.Decl.Mutable():
			g.fail(e, "Cannot use mutable value in a global initializer.")
		case e.Decl.Expr == nil:
			g.fail(e, "Cannot use uninitialized definition in a global initializer.")
		}
		return g.constExpr(e.Decl.Expr)

	case *ast.EnumVal:
		return fmt.Sprint(e.Val)

	case *ast.Sizeof:
		g.typ(e.Type())
		return fmt.Sprint(types.Bytes(e.Of))

	case *ast.Offsetof:
		g.typ(e.Type())
		r := types.Root(e.Of)
		return fmt.Sprint((types.Offset(r, r.Rec.Find(e.Field)) + 7) / 8)
	}
	g.fail(e, "Unsupported global initializer.")
	panic("impossible")
}

func (g *gen) constInit(n ast.Node, entries []*ast.Init, t *types.Type) string {
	r := types.Root(t)
	entry := func(i int) *ast.Init {
		for _, e := range entries {
			if e.Idx == i {
				return e
			}
		}
		return nil
	}
	value := func(e *ast.Init, t *types.Type) string {
		if e == nil {
			return g.typ(t) + " zeroinitializer"
		}
		if e.Expr == nil {
			return g.typ(t) + " " + g.constInit(n, e.Nest, t)
		}
		return g.typ(t) + " " + g.constExpr(e.Expr)
	}

	var s strings.Builder
	switch r.Kind {
	case types.StructType:
		s.WriteString("<{")
		for i, f := range r.Rec.Fields {
			if i > 0 {
				s.WriteString(", ")
			}
			s.WriteString(value(entry(i), f.Type))
		}
		s.WriteString("}>")
	case types.ArrType:
		s.WriteRune('[')
		for i := 0; i < r.Len; i++ {
			if i > 0 {
				s.WriteString(", ")
			}
			s.WriteString(value(entry(i), r.Sub))
		}
		s.WriteRune(']')
	default:
		g.fail(n, "Unsupported global initializer.")
	}
	return s.String()
}

// constant returns the value of a scalar constant.
func (g *gen) constant(c *ast.Const) string {
	switch c.Kind {
	case ast.NumConst:
		g.fail(c, "Cannot emit an untyped numeral.")
	case ast.IntConst:
		return signed(c.Num, c.Int).String()
	case ast.BoolConst:
		if c.Bool {
			return "true"
		}
		return "false"
	case ast.PtrConst:
		if c.Num == nil || c.Num.Sign() == 0 {
			return "null"
		}
		return fmt.Sprintf("inttoptr (i64 %s to i8*)", c.Num)
	}
	g.defect(c, "constant of kind %d", c.Kind)
	panic("impossible")
}
