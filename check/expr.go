// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

func checkExpr(x *Scope, expr ast.Expr) (errs []checkError) {
	defer x.tr("checkExpr(%s)", ast.Name(expr))(&errs)

	switch expr := expr.(type) {
	case *ast.Const:
		return checkConst(x, expr)
	case *ast.Ident:
		return checkIdent(x, expr)
	case *ast.Call:
		return checkCall(x, expr)
	case *ast.Unary:
		return checkUnary(x, expr)
	case *ast.Binary:
		return checkBinary(x, expr)
	case *ast.Cast:
		return checkCast(x, expr)
	case *ast.InitExpr:
		return checkInitExpr(x, expr)
	case *ast.Sizeof:
		return checkSizeof(x, expr)
	case *ast.Offsetof:
		return checkOffsetof(x, expr)
	case *ast.GetParent:
		return checkGetParent(x, expr)
	case *ast.Elem:
		return checkElem(x, expr)
	case *ast.Index:
		return checkIndex(x, expr)
	case *ast.Body:
		return checkBody(x, expr)
	case *ast.InitArgs:
		expr.SetType(types.New(types.ArgsType))
		return nil
	case *ast.GetArg:
		return checkGetArg(x, expr)
	case *ast.EnumVal:
		return checkEnumVal(x, expr)
	case *ast.Tern:
		return checkTern(x, expr)
	default:
		panic("impossible expression type: " + ast.Name(expr))
	}
}

func checkConst(x *Scope, c *ast.Const) []checkError {
	switch c.Kind {
	case ast.NumConst:
		c.SetType(types.New(types.NumType))
	case ast.IntConst:
		c.SetType(types.New(c.Int))
	case ast.BoolConst:
		c.SetType(types.New(types.BoolType))
	case ast.PtrConst:
		if c.Type() == nil {
			c.SetType(types.NewPtr(types.New(types.VoidType), false))
		}
	case ast.StrConst:
		c.SetType(types.NewPtr(types.New(types.U8Type), true))
	}
	return nil
}

func checkIdent(x *Scope, id *ast.Ident) (errs []checkError) {
	if b := types.FindBuiltin(id.Name); b != nil {
		id.Ref = ast.BuiltinRef
		id.SetType(b.Type())
		return nil
	}
	d, param, s := x.lookup(id.Name)
	switch {
	case d != nil:
		id.SetType(d.T)
		switch {
		case d.Flags&ast.Extern != 0:
			id.Ref = ast.UnknownRef
		case d.Flags&ast.Global != 0:
			id.Ref = ast.GlobalRef
			id.Decl = d
		default:
			id.Ref = ast.LocalRef
			id.Decl = d
			if s.captured && !d.Captured {
				x.log("capture %s", d.Name)
				d.Captured = true
			}
		}
	case param >= 0:
		id.Ref = ast.ParamRef
		id.Param = param
		id.SetType(s.fun.Params[param].Type)
	default:
		errs = append(errs, *x.err(id, "Unknown identifier '%s'.", id.Name))
	}
	return errs
}

func checkCall(x *Scope, call *ast.Call) (errs []checkError) {
	if errs = checkExpr(x, call.Func); len(errs) > 0 {
		return errs
	}
	t := call.Func.Type()
	if call.Deref {
		if !types.IsPtr(types.Root(t)) {
			return append(errs, *x.err(call, "Cannot dereference non-pointer type."))
		}
		t = types.Root(t).Sub
		if errs = resolveType(x, call, t); len(errs) > 0 {
			return errs
		}
	}
	t = types.Root(t)
	if t == nil || t.Kind != types.FuncType {
		return append(errs, *x.err(call.Func, "Can only call function types."))
	}
	fun := t.Func

	var argTypes []*types.Type
	for i, arg := range call.Args {
		if errs = append(errs, checkExpr(x, arg)...); len(errs) > 0 {
			return errs
		}
		if i < len(fun.Params) {
			p := fun.Params[i].Type
			fill(arg, p)
			if !assignable(p, arg.Type()) {
				errs = append(errs, *x.mismatch(arg, p, arg.Type()))
			}
		} else {
			fill(arg, types.New(types.I32Type))
		}
		argTypes = append(argTypes, arg.Type())
	}
	if len(errs) > 0 {
		return errs
	}
	switch {
	case len(call.Args) < len(fun.Params):
		return append(errs, *x.err(call, "Not enough parameters."))
	case len(call.Args) > len(fun.Params) && !fun.Variadic:
		return append(errs, *x.err(call, "Too many parameters."))
	}
	if fun.Check != nil {
		if err := fun.Check(argTypes); err != nil {
			return append(errs, *x.err(call, "%s", err))
		}
	}
	call.SetType(fun.Ret)
	return nil
}

func checkUnary(x *Scope, u *ast.Unary) (errs []checkError) {
	if errs = checkExpr(x, u.X); len(errs) > 0 {
		return errs
	}
	t := u.X.Type()
	switch u.Op {
	case ast.Addr:
		if r := types.Root(t); types.IsArr(r) {
			u.SetType(types.NewPtr(r.Sub, false))
		} else {
			u.SetType(types.NewPtr(t, false))
		}

	case ast.Deref:
		switch r := types.Root(t); {
		case types.IsPtr(r):
			if errs = resolveType(x, u, r.Sub); len(errs) > 0 {
				return errs
			}
			u.SetType(r.Sub)
		case types.IsArr(r):
			u.SetType(types.NewPtr(r.Sub, false))
		default:
			return append(errs, *x.err(u, "Cannot dereference non-pointer type."))
		}

	case ast.PreInc, ast.PreDec, ast.PostInc, ast.PostDec:
		// Pointer steps scale by the pointee size.
		if r := types.Root(t); types.IsPtr(r) {
			if errs = resolveType(x, u, r.Sub); len(errs) > 0 {
				return errs
			}
		}
		u.SetType(t)

	case ast.Plus, ast.Neg, ast.Not:
		u.SetType(t)

	case ast.LNot:
		if !types.IsBool(t) {
			return append(errs, *x.err(u, "Cannot apply logical not to a non-boolean type."))
		}
		u.SetType(t)

	case ast.ArrLen:
		if !types.IsArr(types.Root(t)) {
			return append(errs, *x.err(u, "Must have array type."))
		}
		u.SetType(types.New(types.NumType))

	case ast.GetRef:
		u.SetType(types.NewPtr(t, false))

	case ast.Get, ast.Require:
		r := types.Root(t)
		if !types.IsError(r) {
			return append(errs, *x.err(u, "e:get only applies to error type."))
		}
		if u.Op == ast.Get {
			if f := x.function(); f == nil || !types.IsError(types.Root(f.Ret)) {
				return append(errs, *x.err(u, "e:get requires an error return type."))
			}
		}
		u.SetType(types.ErrVal(r))

	default:
		panic("impossible unary operator: " + u.Op.String())
	}
	return nil
}

func checkBinary(x *Scope, b *ast.Binary) (errs []checkError) {
	if errs = checkExpr(x, b.L); len(errs) > 0 {
		return errs
	}
	if errs = checkExpr(x, b.R); len(errs) > 0 {
		return errs
	}
	l, r := b.L.Type(), b.R.Type()

	op, _ := b.Op.Arith()
	switch {
	case op == ast.Assign:
		fill(b.R, l)
		if !assignable(l, b.R.Type()) {
			return append(errs, *x.mismatch(b, l, b.R.Type()))
		}
		b.SetType(l)

	case op == ast.Add || op == ast.Sub || op == ast.Mul || op == ast.Div || op == ast.Rem:
		if p := types.Root(l); types.IsPtr(p) && (types.IsInt(r) || untyped(r)) {
			if errs = resolveType(x, b, p.Sub); len(errs) > 0 {
				return errs
			}
			fill(b.R, types.New(types.I32Type))
			b.SetType(l)
			return nil
		}
		if types.IsPtr(types.Root(l)) {
			return append(errs, *x.err(b, "Type mismatch."))
		}
		unify(b.L, b.R)
		if !match(b.L.Type(), b.R.Type()) {
			return append(errs, *x.mismatch(b, b.L.Type(), b.R.Type()))
		}
		b.SetType(b.L.Type())

	case op == ast.And || op == ast.Xor || op == ast.Or:
		unify(b.L, b.R)
		if !match(b.L.Type(), b.R.Type()) {
			return append(errs, *x.err(b, "Type mismatch."))
		}
		b.SetType(b.L.Type())

	case op == ast.Shl || op == ast.Shr:
		fill(b.R, l)
		if untyped(b.R.Type()) {
			fill(b.R, types.New(types.I32Type))
		}
		b.SetType(l)

	case op == ast.LAnd || op == ast.LOr:
		if !types.IsBool(l) {
			errs = append(errs, *x.err(b.L, "Expected boolean."))
		}
		if !types.IsBool(r) {
			errs = append(errs, *x.err(b.R, "Expected boolean."))
		}
		if len(errs) > 0 {
			return errs
		}
		b.SetType(types.New(types.BoolType))

	case op.IsCompare():
		unify(b.L, b.R)
		if untyped(b.L.Type()) && untyped(b.R.Type()) {
			fill(b.L, types.New(types.I32Type))
			fill(b.R, types.New(types.I32Type))
		}
		if !match(b.L.Type(), b.R.Type()) {
			return append(errs, *x.err(b, "Type mismatch."))
		}
		b.SetType(types.New(types.BoolType))

	default:
		panic("impossible binary operator: " + b.Op.String())
	}
	return nil
}

func checkCast(x *Scope, c *ast.Cast) (errs []checkError) {
	if errs = resolveType(x, c, c.Type()); len(errs) > 0 {
		return errs
	}
	if errs = checkExpr(x, c.X); len(errs) > 0 {
		return errs
	}
	fill(c.X, c.Type())
	return nil
}

func checkInitExpr(x *Scope, e *ast.InitExpr) (errs []checkError) {
	t := e.Type()
	if t == nil {
		return append(errs, *x.err(e, "Invalid initializer."))
	}
	if errs = resolveType(x, e, t); len(errs) > 0 {
		return errs
	}
	// An inferred length belongs to this initializer alone;
	// the array type may be shared through an alias.
	if r := types.Root(t); types.IsArr(r) && r.Len == 0 {
		arr := *r
		t = &arr
		e.SetType(t)
	}
	if r := types.Root(t); types.IsInt(r) || types.IsPtr(r) {
		if len(e.Entries) != 1 || e.Entries[0].Expr == nil {
			return append(errs, *x.err(e, "Invalid cast."))
		}
		cast := &ast.Cast{Pos: e.Pos, Typed: ast.Typed{T: t}, X: e.Entries[0].Expr}
		if errs = checkCast(x, cast); len(errs) > 0 {
			return errs
		}
		e.Cast = cast
		return nil
	}
	return checkInit(x, e, e.Entries, t)
}

func checkSizeof(x *Scope, s *ast.Sizeof) (errs []checkError) {
	if s.X != nil {
		if errs = checkExpr(x, s.X); len(errs) > 0 {
			return errs
		}
		if untyped(s.X.Type()) {
			fill(s.X, types.New(types.I32Type))
		}
		s.Of = s.X.Type()
	} else if errs = resolveType(x, s, s.Of); len(errs) > 0 {
		return errs
	}
	s.SetType(types.New(types.NumType))
	return nil
}

func checkOffsetof(x *Scope, o *ast.Offsetof) (errs []checkError) {
	if errs = resolveType(x, o, o.Of); len(errs) > 0 {
		return errs
	}
	r := types.Root(o.Of)
	if !types.IsRecord(r) {
		return append(errs, *x.err(o, "Can only take an offset of a structure."))
	}
	if r.Rec.Find(o.Field) < 0 {
		return append(errs, *x.err(o, "Unknown member '%s'.", o.Field))
	}
	o.SetType(types.New(types.NumType))
	return nil
}

func checkGetParent(x *Scope, g *ast.GetParent) (errs []checkError) {
	if errs = checkExpr(x, g.X); len(errs) > 0 {
		return errs
	}
	if errs = resolveType(x, g, g.Of); len(errs) > 0 {
		return errs
	}
	if !types.IsStruct(g.Of) {
		return append(errs, *x.err(g, "Can only take an offset of a structure."))
	}
	r := types.Root(g.Of)
	i := r.Rec.Find(g.Field)
	if i < 0 {
		return append(errs, *x.err(g, "Unknown member '%s'.", g.Field))
	}
	f := r.Rec.Fields[i].Type
	if !assignable(g.X.Type(), types.NewPtr(f, false)) {
		return append(errs, *x.mismatch(g, g.X.Type(), f))
	}
	g.SetType(types.NewPtr(g.Of, false))
	g.Off = (types.Offset(r, i) + 7) / 8
	return nil
}

func checkElem(x *Scope, e *ast.Elem) (errs []checkError) {
	if errs = checkExpr(x, e.Base); len(errs) > 0 {
		return errs
	}
	t := types.Root(e.Base.Type())
	if e.Deref {
		if !types.IsPtr(t) {
			return append(errs, *x.err(e.Base, "Cannot dereference non-pointer type."))
		}
		if errs = resolveType(x, e.Base, t.Sub); len(errs) > 0 {
			return errs
		}
		t = types.Root(t.Sub)
	}
	if !types.IsRecord(t) {
		return append(errs, *x.err(e.Base, "Cannot access member '%s' of non-compound type.", e.Name))
	}
	if e.Idx = t.Rec.Find(e.Name); e.Idx < 0 {
		return append(errs, *x.err(e.Base, "Member '%s' not found in type.", e.Name))
	}
	e.SetType(t.Rec.Fields[e.Idx].Type)
	return nil
}

func checkIndex(x *Scope, ix *ast.Index) (errs []checkError) {
	if errs = checkExpr(x, ix.Base); len(errs) > 0 {
		return errs
	}
	if errs = checkExpr(x, ix.Off); len(errs) > 0 {
		return errs
	}
	fill(ix.Off, types.New(types.I32Type))

	switch t := types.Root(ix.Base.Type()); {
	case types.IsPtr(t):
		if errs = resolveType(x, ix, t.Sub); len(errs) > 0 {
			return errs
		}
		ix.SetType(t.Sub)
	case types.IsArr(t):
		ix.SetType(t.Sub)
	default:
		return append(errs, *x.err(ix.Base, "Expected pointer or array."))
	}
	if !types.IsInt(ix.Off.Type()) {
		return append(errs, *x.err(ix.Base, "Expected integer type."))
	}
	return nil
}

func checkGetArg(x *Scope, g *ast.GetArg) (errs []checkError) {
	if errs = resolveType(x, g, g.Of); len(errs) > 0 {
		return errs
	}
	if errs = checkExpr(x, g.Args); len(errs) > 0 {
		return errs
	}
	t := types.Root(g.Args.Type())
	if !types.IsPtr(t) || t.Sub == nil || t.Sub.Kind != types.ArgsType {
		return append(errs, *x.err(g, "Expected type `pt:ty:args`."))
	}
	g.SetType(g.Of)
	return nil
}

func checkEnumVal(x *Scope, e *ast.EnumVal) (errs []checkError) {
	d := x.FindType(e.TypeName)
	if d == nil || d.T.Kind != types.EnumType {
		return append(errs, *x.err(e, "Cannot find enumerator type '%s'.", e.TypeName))
	}
	v := d.T.Enum.Find(e.Name)
	if v == nil {
		return append(errs, *x.err(e, "No such value '%s' for enumerator '%s'.", e.Name, e.TypeName))
	}
	e.Val = v.Val
	e.SetType(d.T)
	return nil
}

func checkTern(x *Scope, t *ast.Tern) (errs []checkError) {
	if errs = checkExpr(x, t.Cond); len(errs) > 0 {
		return errs
	}
	if !types.IsBool(t.Cond.Type()) {
		errs = append(errs, *x.err(t.Cond, "Expected boolean."))
	}
	if errs = append(errs, checkExpr(x, t.True)...); len(errs) > 0 {
		return errs
	}
	if errs = checkExpr(x, t.False); len(errs) > 0 {
		return errs
	}
	unify(t.True, t.False)
	if !match(t.True.Type(), t.False.Type()) {
		return append(errs, *x.mismatch(t, t.True.Type(), t.False.Type()))
	}
	t.SetType(t.True.Type())
	return nil
}
