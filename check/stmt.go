// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"math/big"

	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

func checkStmts(x *Scope, stmts []ast.Stmt) (errs []checkError) {
	for _, s := range stmts {
		errs = append(errs, checkStmt(x, s)...)
		if x.halted() {
			break
		}
	}
	return errs
}

func checkBlock(x *Scope, b *ast.Block) []checkError {
	return checkStmts(x.new(), b.Stmts)
}

func checkStmt(x *Scope, stmt ast.Stmt) (errs []checkError) {
	defer x.tr("checkStmt(%s)", ast.Name(stmt))(&errs)

	switch s := stmt.(type) {
	case *ast.Decl:
		if err := x.AddVar(s); err != nil {
			return append(errs, *x.err(s, "%s", err))
		}
		return checkDecl(x, s)

	case *ast.TypeDecl:
		if err := x.AddType(s); err != nil {
			return append(errs, *x.err(s, "%s", err))
		}
		return resolveType(x, s, s.T)

	case *ast.ExprStmt:
		if errs = checkExpr(x, s.Expr); len(errs) > 0 {
			return errs
		}
		if untyped(s.Expr.Type()) {
			fill(s.Expr, types.New(types.I32Type))
		}
		return nil

	case *ast.Block:
		return checkBlock(x, s)

	case *ast.OnErr:
		return checkBlock(x, s.Block)

	case *ast.Return:
		return checkReturn(x, s)

	case *ast.ErrReturn:
		return checkErrReturn(x, s)

	case *ast.If:
		if errs = checkCond(x, s.Cond); len(errs) > 0 {
			return errs
		}
		errs = checkBlock(x, s.Then)
		if s.Else != nil {
			errs = append(errs, checkBlock(x, s.Else)...)
		}
		return errs

	case *ast.Loop:
		if s.Init != nil {
			if errs = checkExpr(x, s.Init); len(errs) > 0 {
				return errs
			}
		}
		if s.Cond != nil {
			if errs = checkCond(x, s.Cond); len(errs) > 0 {
				return errs
			}
		}
		if s.Inc != nil {
			if errs = checkExpr(x, s.Inc); len(errs) > 0 {
				return errs
			}
		}
		return checkBlock(x, s.Body)

	case *ast.Switch:
		return checkSwitch(x, s)

	case *ast.Break, *ast.Continue, *ast.LabelStmt:
		return nil

	default:
		panic("impossible statement type: " + ast.Name(stmt))
	}
}

func checkCond(x *Scope, cond ast.Expr) (errs []checkError) {
	if errs = checkExpr(x, cond); len(errs) > 0 {
		return errs
	}
	if !types.IsBool(cond.Type()) {
		errs = append(errs, *x.err(cond, "Expected boolean."))
	}
	return errs
}

func checkSwitch(x *Scope, s *ast.Switch) (errs []checkError) {
	if errs = checkExpr(x, s.Eval); len(errs) > 0 {
		return errs
	}
	if untyped(s.Eval.Type()) {
		fill(s.Eval, types.New(types.I32Type))
	}
	if errs = checkBlock(x, s.Block); len(errs) > 0 {
		return errs
	}
	t := s.Eval.Type()
	for _, c := range s.Cases {
		if c.Expr == nil {
			continue
		}
		if errs = append(errs, checkExpr(x, c.Expr)...); len(errs) > 0 {
			return errs
		}
		fill(c.Expr, t)
		if !match(t, c.Expr.Type()) {
			errs = append(errs, *x.mismatch(c, t, c.Expr.Type()))
		}
	}
	return errs
}

// checkReturn checks a return statement.
// If the function returns an error type and the returned value is not one,
// the returned value is rewritten into an error initializer
// with the value in the val field and the success sentinel in the err field.
func checkReturn(x *Scope, s *ast.Return) (errs []checkError) {
	if s.Expr == nil {
		return nil
	}
	if errs = checkExpr(x, s.Expr); len(errs) > 0 {
		return errs
	}
	fun := x.function()
	if fun == nil {
		return append(errs, *x.err(s, "Return outside of a function."))
	}
	ret := fun.Ret
	if r := types.Root(ret); types.IsError(r) && !types.IsError(types.Root(s.Expr.Type())) && r.Rec.Find("val") >= 0 {
		val := types.ErrVal(r)
		fill(s.Expr, val)
		if !assignable(val, s.Expr.Type()) {
			return append(errs, *x.mismatch(s, val, s.Expr.Type()))
		}
		ok := &ast.Const{Pos: s.Pos, Kind: ast.NumConst, Num: big.NewInt(0)}
		checkConst(x, ok)
		fill(ok, types.ErrErr(r))
		x.log("desugar return to %s", ret)
		s.Expr = &ast.InitExpr{
			Pos:   s.Pos,
			Typed: ast.Typed{T: ret},
			Entries: []*ast.Init{
				{Name: "val", Idx: r.Rec.Find("val"), Expr: s.Expr},
				{Name: "err", Idx: r.Rec.Find("err"), Expr: ok},
			},
		}
		return nil
	}
	fill(s.Expr, ret)
	if !assignable(ret, s.Expr.Type()) {
		errs = append(errs, *x.mismatch(s, ret, s.Expr.Type()))
	}
	return errs
}

// checkErrReturn checks an error return.
// The returned expression is an initializer of the error type
// setting the err field.
func checkErrReturn(x *Scope, s *ast.ErrReturn) (errs []checkError) {
	fun := x.function()
	if fun == nil || !types.IsError(types.Root(fun.Ret)) {
		return append(errs, *x.err(s, "Error returns require an error return type."))
	}
	init, ok := s.Expr.(*ast.InitExpr)
	if !ok {
		init = &ast.InitExpr{
			Pos:     s.Pos,
			Entries: []*ast.Init{{Name: "err", Expr: s.Expr}},
		}
		s.Expr = init
	}
	if init.Type() == nil {
		init.SetType(fun.Ret)
	}
	if errs = checkExpr(x, init); len(errs) > 0 {
		return errs
	}
	if !assignable(fun.Ret, init.Type()) {
		errs = append(errs, *x.mismatch(s, fun.Ret, init.Type()))
	}
	return errs
}
