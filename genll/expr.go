// Copyright © 2020 The Pea Authors under an MIT-style license.

package genll

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

// op emits an instruction with a result
// and returns the result register.
func (f *fun) op(format string, vs ...interface{}) int {
	r := f.newReg()
	f.code.WriteString("  ")
	fmt.Fprintf(&f.code, "%%r%d = ", r)
	fmt.Fprintf(&f.code, format, vs...)
	f.code.WriteRune('\n')
	return r
}

// expr generates an expression and returns the register of its value,
// or -1 if the expression has no value.
func (f *fun) expr(expr ast.Expr, fr *frame) int {
	f.at = expr
	switch e := expr.(type) {
	case *ast.Const:
		if e.Kind == ast.StrConst {
			name, n := f.pool(e.Str)
			return f.op("getelementptr inbounds [%d x i8], [%d x i8]* %s, i64 0, i64 0", n, n, name)
		}
		t := f.typ(e.Type())
		return f.op("bitcast %s %s to %s", t, f.constant(e), t)

	case *ast.Ident:
		switch {
		case e.Ref == ast.BuiltinRef:
			f.fail(e, "Cannot use builtin '%s' as a value.", e.Name)
		case types.Root(e.Type()).Kind == types.FuncType:
			f.fail(e, "Cannot use function '%s' as a value.", e.Name)
		}
		t := f.typ(e.Type())
		return f.op("load %s, %s* %s", t, t, f.identAddr(e))

	case *ast.Call:
		return f.call(e, fr)

	case *ast.Unary:
		return f.unary(e, fr)

	case *ast.Binary:
		return f.binary(e, fr)

	case *ast.Cast:
		return f.convert(f.expr(e.X, fr), e.X.Type(), e.Type())

	case *ast.InitExpr:
		if e.Cast != nil {
			return f.expr(e.Cast, fr)
		}
		return f.aggregate(e, e.Entries, e.Type(), fr)

	case *ast.Sizeof:
		of := e.Of
		if e.X != nil {
			of = e.X.Type()
		}
		return f.op("add %s %d, 0", f.typ(e.Type()), types.Bytes(of))

	case *ast.Offsetof:
		r := types.Root(e.Of)
		off := (types.Offset(r, r.Rec.Find(e.Field)) + 7) / 8
		return f.op("add %s %d, 0", f.typ(e.Type()), off)

	case *ast.GetParent:
		back, err := safecast.Convert[int32](-e.Off)
		if err != nil {
			f.fail(e, "Offset of '%s' is too large.", e.Field)
		}
		in := f.expr(e.X, fr)
		p := f.op("bitcast %s %%r%d to i8*", f.typ(e.X.Type()), in)
		off := f.op("getelementptr i8, i8* %%r%d, i32 %d", p, back)
		return f.op("bitcast i8* %%r%d to %s", off, f.typ(e.Type()))

	case *ast.Elem:
		return f.elem(e, fr)

	case *ast.Index:
		et := f.typ(e.Type())
		p := f.index(e, fr)
		return f.op("load %s, %s* %%r%d", et, et, p)

	case *ast.InitArgs:
		va := f.alloca("%struct.__va_list_tag")
		r := f.op("bitcast %%struct.__va_list_tag* %%r%d to i8*", va)
		f.emit("call void @llvm.va_start(i8* %%r%d)", r)
		return r

	case *ast.GetArg:
		args := f.expr(e.Args, fr)
		cast := f.op("bitcast i8* %%r%d to i8**", args)
		ptr := f.op("load i8*, i8** %%r%d", cast)
		sz := types.Size(types.Root(e.Of))
		v := f.alloca(fmt.Sprintf("i%d", sz))
		tmp := f.newReg()
		fmt.Fprintf(&f.vars, "  %%r%d = bitcast i%d* %%r%d to i8*\n", tmp, sz, v)
		f.emit("call void @_getarg(i8* %%r%d, i32 %d, i8* %%r%d)", ptr, sz, tmp)
		t := f.typ(e.Of)
		p := f.op("bitcast i%d* %%r%d to %s*", sz, v, t)
		return f.op("load %s, %s* %%r%d", t, t, p)

	case *ast.EnumVal:
		return f.op("add %s %d, 0", f.typ(e.Type()), e.Val)

	case *ast.Tern:
		return f.tern(e, fr)

	case *ast.Body:
		f.defect(e, "function body used as a value")
	}
	panic(fmt.Sprintf("impossible expression type %T", expr))
}

// identAddr returns the operand of the address of an identifier.
func (f *fun) identAddr(e *ast.Ident) string {
	switch e.Ref {
	case ast.ParamRef:
		return fmt.Sprintf("%%r%d", e.Param)
	case ast.LocalRef:
		if r, ok := f.local[e.Decl]; ok {
			return fmt.Sprintf("%%r%d", r)
		}
		// Captured from an enclosing function.
		if n, ok := f.global[e.Decl]; ok {
			return fmt.Sprintf("@\"$g%d\"", n)
		}
		f.defect(e, "local %s is not declared", e.Name)
	case ast.GlobalRef:
		return fmt.Sprintf("@\"$g%d\"", f.global[e.Decl])
	case ast.UnknownRef:
		return fmt.Sprintf("@\"%s\"", e.Name)
	case ast.BuiltinRef:
		if b := types.FindBuiltin(e.Name); b != nil {
			return fmt.Sprintf("@\"%s\"", b.Symbol)
		}
	}
	f.defect(e, "unresolved identifier %s", e.Name)
	panic("impossible")
}

// left generates the address of an expression
// and returns the register of a pointer to its type.
// Expressions that are not addressable are spilled to the stack.
func (f *fun) left(expr ast.Expr, fr *frame) int {
	f.at = expr
	switch e := expr.(type) {
	case *ast.Ident:
		if e.Ref == ast.ParamRef {
			return e.Param
		}
		t := f.typ(e.Type())
		return f.op("bitcast %s* %s to %s*", t, f.identAddr(e), t)

	case *ast.Unary:
		if e.Op != ast.Deref {
			break
		}
		if !types.IsPtr(types.Root(e.X.Type())) {
			f.defect(e, "address of dereferenced array")
		}
		v := f.expr(e.X, fr)
		return f.op("bitcast i8* %%r%d to %s*", v, f.typ(e.Type()))

	case *ast.Elem:
		rec := types.Root(e.Base.Type())
		var base int
		if e.Deref {
			rec = types.Root(rec.Sub)
			v := f.expr(e.Base, fr)
			base = f.op("bitcast i8* %%r%d to %s*", v, f.typ(rec))
		} else {
			base = f.left(e.Base, fr)
		}
		rt, et := f.typ(rec), f.typ(e.Type())
		if rec.Kind == types.UnionType {
			return f.op("bitcast %s* %%r%d to %s*", rt, base, et)
		}
		return f.op("getelementptr %s, %s* %%r%d, i32 0, i32 %d", rt, rt, base, e.Idx)

	case *ast.Index:
		return f.index(e, fr)
	}
	t := f.typ(expr.Type())
	v := f.expr(expr, fr)
	tmp := f.alloca(t)
	f.emit("store %s %%r%d, %s* %%r%d", t, v, t, tmp)
	return tmp
}

// index returns a pointer to an element of an array or pointer.
func (f *fun) index(e *ast.Index, fr *frame) int {
	base := types.Root(e.Base.Type())
	et := f.typ(e.Type())
	ot := f.typ(e.Off.Type())
	if types.IsPtr(base) {
		v := f.expr(e.Base, fr)
		off := f.expr(e.Off, fr)
		p := f.op("bitcast i8* %%r%d to %s*", v, et)
		return f.op("getelementptr %s, %s* %%r%d, %s %%r%d", et, et, p, ot, off)
	}
	at := f.typ(base)
	arr := f.left(e.Base, fr)
	off := f.expr(e.Off, fr)
	return f.op("getelementptr %s, %s* %%r%d, i64 0, %s %%r%d", at, at, arr, ot, off)
}

func (f *fun) elem(e *ast.Elem, fr *frame) int {
	rec := types.Root(e.Base.Type())
	base := f.expr(e.Base, fr)
	if e.Deref {
		rec = types.Root(rec.Sub)
		rt := f.typ(rec)
		p := f.op("bitcast i8* %%r%d to %s*", base, rt)
		base = f.op("load %s, %s* %%r%d", rt, rt, p)
	}
	rt, et := f.typ(rec), f.typ(e.Type())
	if rec.Kind != types.UnionType {
		return f.op("extractvalue %s %%r%d, %d", rt, base, e.Idx)
	}
	mem := f.alloca(rt)
	whole := f.op("bitcast %s* %%r%d to %s*", rt, mem, rt)
	part := f.op("bitcast %s* %%r%d to %s*", rt, mem, et)
	f.emit("store %s %%r%d, %s* %%r%d", rt, base, rt, whole)
	return f.op("load %s, %s* %%r%d", et, et, part)
}

func (f *fun) call(e *ast.Call, fr *frame) int {
	var ft *types.Type
	var fp int
	if e.Deref {
		ft = types.Root(types.Root(e.Func.Type()).Sub)
		v := f.expr(e.Func, fr)
		fp = f.op("bitcast i8* %%r%d to %s*", v, f.typ(ft))
	} else {
		ft = types.Root(e.Func.Type())
		fp = f.left(e.Func, fr)
	}
	sig := ft.Func
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		t := a.Type()
		if i < len(sig.Params) {
			t = sig.Params[i].Type
		}
		args[i] = fmt.Sprintf("%s %%r%d", f.typ(t), f.expr(a, fr))
	}
	callee := f.typ(sig.Ret)
	if sig.Variadic {
		callee = f.typ(ft)
	}
	dbg := f.loc(e)
	if types.IsVoid(types.Root(sig.Ret)) {
		f.emit("call %s %%r%d(%s), !dbg !%d", callee, fp, strings.Join(args, ", "), dbg)
		return -1
	}
	return f.op("call %s %%r%d(%s), !dbg !%d", callee, fp, strings.Join(args, ", "), dbg)
}

// convert converts a value from type src to type dst.
func (f *fun) convert(r int, src, dst *types.Type) int {
	s, d := types.Root(src), types.Root(dst)
	st, dt := f.typ(s), f.typ(d)
	switch {
	case types.IsPtr(s) && types.IsPtr(d):
		return f.op("bitcast %s %%r%d to %s", st, r, dt)
	case types.IsPtr(s):
		return f.op("ptrtoint %s %%r%d to %s", st, r, dt)
	case types.IsPtr(d):
		return f.op("inttoptr %s %%r%d to %s", st, r, dt)
	}
	sw, dw := width(s), width(d)
	switch {
	case st == dt:
		return r
	case sw == dw:
		return f.op("bitcast %s %%r%d to %s", st, r, dt)
	case sw < dw && types.IsSigned(s):
		return f.op("sext %s %%r%d to %s", st, r, dt)
	case sw < dw:
		return f.op("zext %s %%r%d to %s", st, r, dt)
	default:
		return f.op("trunc %s %%r%d to %s", st, r, dt)
	}
}

func (f *fun) unary(e *ast.Unary, fr *frame) int {
	t := f.typ(e.Type())
	switch e.Op {
	case ast.Addr:
		l := f.left(e.X, fr)
		return f.op("bitcast %s* %%r%d to i8*", f.typ(e.X.Type()), l)

	case ast.Deref:
		if types.IsPtr(types.Root(e.X.Type())) {
			v := f.expr(e.X, fr)
			p := f.op("bitcast i8* %%r%d to %s*", v, t)
			return f.op("load %s, %s* %%r%d", t, t, p)
		}
		at := f.typ(e.X.Type())
		arr := f.left(e.X, fr)
		p := f.op("getelementptr %s, %s* %%r%d, i32 0, i32 0", at, at, arr)
		return f.op("bitcast %s* %%r%d to i8*", f.typ(types.Root(e.X.Type()).Sub), p)

	case ast.Plus:
		return f.expr(e.X, fr)

	case ast.Neg:
		v := f.expr(e.X, fr)
		return f.op("sub %s 0, %%r%d", t, v)

	case ast.Not:
		v := f.expr(e.X, fr)
		return f.op("xor %s %%r%d, -1", t, v)

	case ast.LNot:
		v := f.expr(e.X, fr)
		return f.op("xor i1 %%r%d, true", v)

	case ast.PreInc, ast.PreDec, ast.PostInc, ast.PostDec:
		l := f.left(e.X, fr)
		old := f.op("load %s, %s* %%r%d", t, t, l)
		delta := 1
		if e.Op == ast.PreDec || e.Op == ast.PostDec {
			delta = -1
		}
		var next int
		if types.IsPtr(types.Root(e.Type())) {
			next = f.step(old, e.Type(), fmt.Sprintf("i32 %d", delta))
		} else {
			next = f.op("add %s %%r%d, %d", t, old, delta)
		}
		f.emit("store %s %%r%d, %s* %%r%d", t, next, t, l)
		if e.Op == ast.PreInc || e.Op == ast.PreDec {
			return next
		}
		return old

	case ast.ArrLen:
		return f.op("add %s %d, 0", t, types.Root(e.X.Type()).Len)

	case ast.GetRef:
		xt := f.typ(e.X.Type())
		v := f.expr(e.X, fr)
		tmp := f.alloca(xt)
		f.emit("store %s %%r%d, %s* %%r%d", xt, v, xt, tmp)
		return f.op("bitcast %s* %%r%d to i8*", xt, tmp)

	case ast.Get, ast.Require:
		return f.errValue(e, fr)
	}
	panic("impossible unary operator: " + e.Op.String())
}

// step advances pointer p of type ptr by off elements.
func (f *fun) step(p int, ptr *types.Type, off string) int {
	st := f.elemType(ptr)
	cast := f.op("bitcast i8* %%r%d to %s*", p, st)
	gep := f.op("getelementptr %s, %s* %%r%d, %s", st, st, cast, off)
	return f.op("bitcast %s* %%r%d to i8*", st, gep)
}

// errValue generates e:get and e:req.
// On success the value is the val field of the operand.
// On error, e:get runs the handlers and returns the error;
// e:req calls the fatal function.
func (f *fun) errValue(e *ast.Unary, fr *frame) int {
	et := types.Root(e.X.Type())
	rt := f.typ(et)
	idx := et.Rec.Find("err")
	errT := types.ErrErr(et)
	zero := "0"
	if types.IsPtr(types.Root(errT)) {
		zero = "null"
	}

	v := f.expr(e.X, fr)
	errV := f.op("extractvalue %s %%r%d, %d", rt, v, idx)
	ok := f.op("icmp eq %s %%r%d, %s", f.typ(errT), errV, zero)
	onErr := f.newLabel()
	onOK := f.newLabel()
	f.emit("br i1 %%r%d, label %%l%d, label %%l%d", ok, onOK, onErr)
	f.place(onErr)

	if e.Op == ast.Get {
		f.unwind(fr)
		ret := types.Root(f.sig.Ret)
		i := ret.Rec.Find("err")
		pack := f.op("insertvalue %s undef, %s %%r%d, %d", f.typ(ret), f.typ(ret.Rec.Fields[i].Type), errV, i)
		f.emit("ret %s %%r%d", f.typ(ret), pack)
	} else {
		dbg := f.loc(e)
		f.emit("call void(i8*, ...) @\"%s\"(%s %%r%d), !dbg !%d", f.cfg.Fatal, f.typ(errT), errV, dbg)
		f.emit("unreachable")
	}
	f.place(onOK)

	i := et.Rec.Find("val")
	if i < 0 {
		return -1
	}
	return f.op("extractvalue %s %%r%d, %d", rt, v, i)
}

func (f *fun) binary(e *ast.Binary, fr *frame) int {
	lt := types.Root(e.L.Type())
	switch e.Op {
	case ast.LAnd, ast.LOr:
		return f.logical(e, fr)

	case ast.Assign:
		t := f.typ(e.L.Type())
		l := f.left(e.L, fr)
		r := f.expr(e.R, fr)
		f.emit("store %s %%r%d, %s* %%r%d", t, r, t, l)
		return r

	case ast.Add, ast.Sub:
		if types.IsPtr(lt) && !types.IsPtr(types.Root(e.R.Type())) {
			l := f.expr(e.L, fr)
			r := f.expr(e.R, fr)
			return f.pointerArith(e.Op, l, lt, r, e.R.Type())
		}
	}

	if op, ok := e.Op.Arith(); ok {
		t := f.typ(e.L.Type())
		l := f.left(e.L, fr)
		r := f.expr(e.R, fr)
		old := f.op("load %s, %s* %%r%d", t, t, l)
		var next int
		if types.IsPtr(lt) && (op == ast.Add || op == ast.Sub) {
			next = f.pointerArith(op, old, lt, r, e.R.Type())
		} else {
			next = f.arith(op, old, e.L.Type(), r, e.R.Type())
		}
		f.emit("store %s %%r%d, %s* %%r%d", t, next, t, l)
		return next
	}

	l := f.expr(e.L, fr)
	r := f.expr(e.R, fr)
	return f.arith(e.Op, l, e.L.Type(), r, e.R.Type())
}

// arith applies an arithmetic, bitwise, shift, or comparison operator.
func (f *fun) arith(op ast.BinOp, l int, lt *types.Type, r int, rt *types.Type) int {
	lr, rr := types.Root(lt), types.Root(rt)
	switch {
	case op.IsCompare():
		return f.op("%s %s %%r%d, %%r%d", opName(op, lr), f.typ(lr), l, r)
	case types.IsPtr(lr):
		li := f.op("ptrtoint i8* %%r%d to i64", l)
		ri := r
		if types.IsPtr(rr) {
			ri = f.op("ptrtoint i8* %%r%d to i64", r)
		} else {
			ri = f.convert(r, rr, types.New(types.U64Type))
		}
		v := f.op("%s i64 %%r%d, %%r%d", opName(op, types.New(types.U64Type)), li, ri)
		return f.op("inttoptr i64 %%r%d to i8*", v)
	}
	if f.typ(lr) != f.typ(rr) {
		r = f.convert(r, rr, lr)
	}
	return f.op("%s %s %%r%d, %%r%d", opName(op, lr), f.typ(lr), l, r)
}

// pointerArith adds or subtracts an integer offset from a pointer
// in units of the pointee size.
func (f *fun) pointerArith(op ast.BinOp, p int, pt *types.Type, off int, ot *types.Type) int {
	t := f.typ(ot)
	if op == ast.Sub {
		off = f.op("sub %s 0, %%r%d", t, off)
	}
	return f.step(p, pt, fmt.Sprintf("%s %%r%d", t, off))
}

func (f *fun) logical(e *ast.Binary, fr *frame) int {
	enter := f.newLabel()
	before := f.newLabel()
	mid := f.newLabel()
	after := f.newLabel()

	tmp := f.expr(e.L, fr)
	f.emit("br label %%l%d", enter)
	f.place(enter)
	l := f.op("bitcast i1 %%r%d to i1", tmp)
	short := "false"
	if e.Op == ast.LAnd {
		f.emit("br i1 %%r%d, label %%l%d, label %%l%d", l, before, after)
	} else {
		short = "true"
		f.emit("br i1 %%r%d, label %%l%d, label %%l%d", l, after, before)
	}
	f.place(before)
	tmp = f.expr(e.R, fr)
	f.emit("br label %%l%d", mid)
	f.place(mid)
	r := f.op("bitcast i1 %%r%d to i1", tmp)
	f.emit("br label %%l%d", after)
	f.place(after)
	return f.op("phi i1 [ %s, %%l%d ], [ %%r%d, %%l%d ]", short, enter, r, mid)
}

func (f *fun) tern(e *ast.Tern, fr *frame) int {
	cond := f.expr(e.Cond, fr)
	after := f.newLabel()
	onTrue := f.newLabel()
	onFalse := f.newLabel()
	left := f.newLabel()
	right := f.newLabel()
	f.emit("br i1 %%r%d, label %%l%d, label %%l%d", cond, onTrue, onFalse)

	f.place(onTrue)
	l := f.expr(e.True, fr)
	f.emit("br label %%l%d", left)
	f.place(left)
	f.emit("br label %%l%d", after)

	f.place(onFalse)
	r := f.expr(e.False, fr)
	f.emit("br label %%l%d", right)
	f.place(right)
	f.emit("br label %%l%d", after)

	f.place(after)
	return f.op("phi %s [ %%r%d, %%l%d ], [ %%r%d, %%l%d ]", f.typ(e.Type()), l, left, r, right)
}

// aggregate generates a struct, union, or array initializer.
func (f *fun) aggregate(n ast.Node, entries []*ast.Init, t *types.Type, fr *frame) int {
	r := types.Root(t)
	rt := f.typ(r)
	value := func(e *ast.Init, t *types.Type) int {
		if e.Expr == nil {
			return f.aggregate(n, e.Nest, t, fr)
		}
		return f.expr(e.Expr, fr)
	}
	switch r.Kind {
	case types.StructType:
		if len(r.Rec.Fields) == 0 {
			f.fail(n, "Cannot initialize an empty structure.")
		}
		agg := f.op("insertvalue %s undef, %s undef, 0", rt, f.typ(r.Rec.Fields[0].Type))
		for _, e := range entries {
			ft := r.Rec.Fields[e.Idx].Type
			v := value(e, ft)
			agg = f.op("insertvalue %s %%r%d, %s %%r%d, %d", rt, agg, f.typ(ft), v, e.Idx)
		}
		return agg

	case types.ArrType:
		if r.Len == 0 {
			f.fail(n, "Cannot initialize an empty array.")
		}
		et := f.typ(r.Sub)
		agg := f.op("insertvalue %s undef, %s undef, 0", rt, et)
		for _, e := range entries {
			v := value(e, r.Sub)
			agg = f.op("insertvalue %s %%r%d, %s %%r%d, %d", rt, agg, et, v, e.Idx)
		}
		return agg

	case types.UnionType:
		mem := f.alloca(rt)
		for _, e := range entries {
			if e.Name == "" {
				f.fail(n, "Can only initialize unions by name.")
			}
			ft := r.Rec.Fields[e.Idx].Type
			v := value(e, ft)
			p := f.op("bitcast %s* %%r%d to %s*", rt, mem, f.typ(ft))
			f.emit("store %s %%r%d, %s* %%r%d", f.typ(ft), v, f.typ(ft), p)
		}
		return f.op("load %s, %s* %%r%d", rt, rt, mem)
	}
	f.fail(n, "Invalid initializer.")
	panic("impossible")
}
