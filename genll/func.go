// Copyright © 2020 The Pea Authors under an MIT-style license.

package genll

import (
	"fmt"
	"strings"

	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

// fun is the state of the function being generated.
type fun struct {
	*gen
	sig  *types.Func
	prog int

	// vars holds the allocas, written at the top of the entry block.
	vars strings.Builder
	code strings.Builder

	// local maps local declarations to the register of their address.
	local  map[*ast.Decl]int
	labels map[*ast.Label]int
	reg    int
	lbl    int
}

// A frame is a block being generated.
type frame struct {
	up *frame
	// brk and cont are the labels jumped to by break and continue,
	// or -1 if the frame is not a break or continue target.
	brk, cont int
	handlers  []*ast.Block
}

func (g *gen) writeFunc(d *ast.Decl) {
	sig := types.Root(d.T).Func
	if d.Flags&ast.Extern != 0 {
		fmt.Fprintf(&g.out, "declare %s @\"%s\"(%s)\n", g.typ(sig.Ret), d.Name, g.params(sig))
		return
	}
	body, ok := d.Expr.(*ast.Body)
	if !ok {
		g.fail(d, "Functions must have a body.")
	}
	n := g.global[d]
	f := &fun{
		gen:    g,
		sig:    sig,
		prog:   g.dbg,
		local:  make(map[*ast.Decl]int),
		labels: make(map[*ast.Label]int),
		reg:    len(sig.Params),
	}
	g.dbg++
	fmt.Fprintf(&g.ext, "!%d = distinct !DISubprogram(name: %q, scope: !1, file: !1, unit: !2, type: !DISubroutineType(types: !{null}))\n", f.prog, d.Name)
	g.alias(d, n)

	attr := ""
	if d.Name == g.cfg.Fatal {
		attr = " noreturn"
	}
	l := d.GetLoc()
	fmt.Fprintf(&g.out, "define hidden %s @\"$g%d\"(%s)%s !dbg !%d { ; %s:%d\n", g.typ(sig.Ret), n, g.params(sig), attr, f.prog, l.Path, l.Line)
	g.out.WriteString("entry:\n")

	for i, p := range sig.Params {
		t := g.typ(p.Type)
		fmt.Fprintf(&f.vars, "  %%r%d = alloca %s\n", i, t)
		f.emit("store %s %%p%d, %s* %%r%d", t, i, t, i)
	}
	f.block(body.Block, nil, -1, -1)

	ret := types.Root(sig.Ret)
	switch {
	case types.IsVoid(ret):
		f.emit("ret void")
	case types.IsError(ret) && ret.Rec.Find("val") < 0:
		f.emit("ret %s zeroinitializer", g.typ(ret))
	default:
		f.emit("unreachable")
	}

	g.out.WriteString(f.vars.String())
	g.out.WriteString(f.code.String())
	g.out.WriteString("}\n")
}

func (g *gen) params(sig *types.Func) string {
	var s strings.Builder
	for i, p := range sig.Params {
		if i > 0 {
			s.WriteString(", ")
		}
		fmt.Fprintf(&s, "%s %%p%d", g.typ(p.Type), i)
	}
	if sig.Variadic {
		if len(sig.Params) > 0 {
			s.WriteString(", ")
		}
		s.WriteString("...")
	}
	return s.String()
}

// emit writes an instruction.
func (f *fun) emit(format string, vs ...interface{}) {
	f.code.WriteString("  ")
	fmt.Fprintf(&f.code, format, vs...)
	f.code.WriteRune('\n')
}

// alloca adds a stack slot of type t and returns its register.
func (f *fun) alloca(t string) int {
	r := f.newReg()
	fmt.Fprintf(&f.vars, "  %%r%d = alloca %s\n", r, t)
	return r
}

func (f *fun) newReg() int {
	r := f.reg
	f.reg++
	return r
}

func (f *fun) newLabel() int {
	l := f.lbl
	f.lbl++
	return l
}

// place starts the block of a label.
func (f *fun) place(l int) { fmt.Fprintf(&f.code, "l%d:\n", l) }

// jump ends the current block with a branch to l
// and starts a new, unreachable block.
func (f *fun) jump(l int) {
	f.emit("br label %%l%d", l)
	f.place(f.newLabel())
}

// label returns the number of a source label.
func (f *fun) label(l *ast.Label) int {
	n, ok := f.labels[l]
	if !ok {
		n = f.newLabel()
		f.labels[l] = n
	}
	return n
}

// loc returns a new debug location for n.
func (f *fun) loc(n ast.Node) int {
	d := f.dbg
	f.dbg++
	l := n.GetLoc()
	fmt.Fprintf(&f.ext, "!%d = distinct !DILocation(line: %d, column: %d, scope: !%d)\n", d, l.Line, l.Col, f.prog)
	return d
}

func (f *fun) block(b *ast.Block, up *frame, brk, cont int) {
	fr := &frame{up: up, brk: brk, cont: cont}
	for _, s := range b.Stmts {
		f.stmt(s, fr)
	}
}

// unwind runs the error handlers of fr and its enclosing frames,
// innermost frame first and, within a frame, latest registration first.
// A handler is emitted once per error site,
// so each copy places its own labels.
func (f *fun) unwind(fr *frame) {
	labels := f.labels
	defer func() { f.labels = labels }()
	for ; fr != nil; fr = fr.up {
		for i := len(fr.handlers) - 1; i >= 0; i-- {
			f.labels = make(map[*ast.Label]int)
			f.block(fr.handlers[i], nil, -1, -1)
		}
	}
}

func (f *fun) stmt(stmt ast.Stmt, fr *frame) {
	f.at = stmt
	switch s := stmt.(type) {
	case *ast.Decl:
		f.decl(s, fr)

	case *ast.TypeDecl:

	case *ast.ExprStmt:
		f.expr(s.Expr, fr)

	case *ast.Block:
		f.block(s, fr, -1, -1)

	case *ast.OnErr:
		fr.handlers = append(fr.handlers, s.Block)

	case *ast.Return:
		f.ret(s, fr)

	case *ast.ErrReturn:
		r := f.expr(s.Expr, fr)
		f.unwind(fr)
		f.emit("ret %s %%r%d", f.typ(f.sig.Ret), r)
		f.place(f.newLabel())

	case *ast.If:
		cond := f.expr(s.Cond, fr)
		after := f.newLabel()
		then := f.newLabel()
		els := after
		if s.Else != nil {
			els = f.newLabel()
		}
		f.emit("br i1 %%r%d, label %%l%d, label %%l%d", cond, then, els)
		f.place(then)
		f.block(s.Then, fr, -1, -1)
		f.emit("br label %%l%d", after)
		if s.Else != nil {
			f.place(els)
			f.block(s.Else, fr, -1, -1)
			f.emit("br label %%l%d", after)
		}
		f.place(after)

	case *ast.Loop:
		f.loop(s, fr)

	case *ast.Break:
		t := target(fr, s.Level, func(fr *frame) int { return fr.brk })
		if t < 0 {
			f.fail(s, "Invalid break level.")
		}
		f.jump(t)

	case *ast.Continue:
		t := target(fr, s.Level, func(fr *frame) int { return fr.cont })
		if t < 0 {
			f.fail(s, "Invalid continue level.")
		}
		f.jump(t)

	case *ast.Switch:
		f.sw(s, fr)

	case *ast.LabelStmt:
		n := f.label(s.Label)
		f.emit("br label %%l%d", n)
		f.place(n)

	default:
		panic(fmt.Sprintf("impossible statement type %T", stmt))
	}
}

// target returns the label of the frame
// level frames out from fr with a label, or -1.
func target(fr *frame, level int, lbl func(*frame) int) int {
	for ; fr != nil; fr = fr.up {
		if lbl(fr) < 0 {
			continue
		}
		if level == 0 {
			return lbl(fr)
		}
		level--
	}
	return -1
}

// decl generates a local declaration.
// Functions and captured declarations are hoisted to globals
// so that nested function bodies can reach them.
func (f *fun) decl(d *ast.Decl, fr *frame) {
	t := f.typ(d.T)
	if types.Root(d.T).Kind == types.FuncType || d.Captured {
		n := f.hoist(d)
		r := f.newReg()
		f.emit("%%r%d = bitcast %s* @\"$g%d\" to %s*", r, t, n, t)
		f.local[d] = r
		if _, ok := d.Expr.(*ast.Body); ok || d.Expr == nil {
			return
		}
		f.dynamic[d] = true
		v := f.expr(d.Expr, fr)
		f.emit("store %s %%r%d, %s* %%r%d", t, v, t, r)
		return
	}
	r := f.alloca(t)
	f.local[d] = r
	if d.Expr != nil {
		v := f.expr(d.Expr, fr)
		f.emit("store %s %%r%d, %s* %%r%d", t, v, t, r)
	}
}

func (f *fun) ret(s *ast.Return, fr *frame) {
	ret := types.Root(f.sig.Ret)
	switch {
	case s.Expr != nil:
		r := f.expr(s.Expr, fr)
		if types.IsVoid(ret) {
			f.emit("ret void")
		} else {
			f.emit("ret %s %%r%d", f.typ(ret), r)
		}
	case types.IsVoid(ret):
		f.emit("ret void")
	case types.IsError(ret) && ret.Rec.Find("val") < 0:
		f.emit("ret %s zeroinitializer", f.typ(ret))
	default:
		f.fail(s, "Missing return value.")
	}
	f.place(f.newLabel())
}

func (f *fun) loop(s *ast.Loop, fr *frame) {
	if s.Init != nil {
		f.expr(s.Init, fr)
	}
	inc := f.newLabel()
	begin := f.newLabel()
	end := f.newLabel()

	f.emit("br label %%l%d", begin)
	f.place(begin)
	if s.Post {
		f.block(s.Body, fr, end, inc)
		f.emit("br label %%l%d", inc)
		f.place(inc)
		if s.Inc != nil {
			f.expr(s.Inc, fr)
		}
		if s.Cond != nil {
			cond := f.expr(s.Cond, fr)
			f.emit("br i1 %%r%d, label %%l%d, label %%l%d", cond, begin, end)
		} else {
			f.emit("br label %%l%d", begin)
		}
		f.place(end)
		return
	}
	if s.Cond != nil {
		body := f.newLabel()
		cond := f.expr(s.Cond, fr)
		f.emit("br i1 %%r%d, label %%l%d, label %%l%d", cond, body, end)
		f.place(body)
	}
	f.block(s.Body, fr, end, inc)
	f.emit("br label %%l%d", inc)
	f.place(inc)
	if s.Inc != nil {
		f.expr(s.Inc, fr)
	}
	f.emit("br label %%l%d", begin)
	f.place(end)
}

func (f *fun) sw(s *ast.Switch, fr *frame) {
	eval := f.expr(s.Eval, fr)
	t := f.typ(s.Eval.Type())
	after := f.newLabel()
	def := after
	for _, c := range s.Cases {
		if c.Expr == nil {
			def = f.label(c.Label)
			break
		}
	}
	var arms strings.Builder
	for _, c := range s.Cases {
		if c.Expr == nil {
			continue
		}
		fmt.Fprintf(&arms, "%s %s, label %%l%d ", t, f.caseValue(c.Expr), f.label(c.Label))
	}
	f.emit("switch %s %%r%d, label %%l%d [ %s]", t, eval, def, arms.String())
	f.block(s.Block, fr, after, -1)
	f.emit("br label %%l%d", after)
	f.place(after)
}

// caseValue returns the constant value of a case expression,
// following identifiers to the initializers of immutable declarations.
func (f *fun) caseValue(e ast.Expr) string {
	for {
		id, ok := e.(*ast.Ident)
		if !ok {
			break
		}
		if id.Ref != ast.LocalRef && id.Ref != ast.GlobalRef || id.Decl.Mutable() || id.Decl.Expr == nil {
			f.fail(id, "Case values must be constant.")
		}
		e = id.Decl.Expr
	}
	switch e := e.(type) {
	case *ast.Const:
		if e.Kind == ast.IntConst || e.Kind == ast.BoolConst {
			return f.constant(e)
		}
	case *ast.EnumVal:
		return fmt.Sprint(e.Val)
	}
	f.fail(e, "Case values must be constant.")
	panic("impossible")
}
