// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package check is the type checker of el.
//
// Checking resolves identifiers, fills the types of expressions,
// and populates record and alias references, all in place.
// It also rewrites value returns from functions returning an error type
// into error-record initializers.
package check

import (
	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

// Check type-checks a program and returns the errors, if any.
//
// Checking runs in three passes.
// The first collects the public declarations of all units into a global scope.
// The second collects the private declarations of each unit
// into a unit scope chained to the global scope,
// and resolves the declared types of the unit.
// The third checks each declaration of the unit.
// Public declarations can thus be referenced across units,
// private declarations only within their unit.
func Check(top *ast.Top, cfg Config) []error {
	x := newState(cfg)
	if errs := check(x, top); len(errs) > 0 {
		return convertErrors(errs, x.cfg.MaxErrors)
	}
	return nil
}

func check(x *state, top *ast.Top) (errs []checkError) {
	defer x.tr("check(%d units)", len(top.Units))(&errs)

	global := NewScope(nil, nil)
	global.state = x
	for _, u := range top.Units {
		errs = append(errs, collect(global, u, true)...)
	}
	if x.halted() {
		return errs
	}

	var units []*Scope
	for _, u := range top.Units {
		unit := NewScope(global, nil)
		units = append(units, unit)
		errs = append(errs, collect(unit, u, false)...)
		if x.halted() {
			return errs
		}
		errs = append(errs, resolveUnit(unit, u)...)
		if x.halted() {
			return errs
		}
	}

	for i, u := range top.Units {
		for _, s := range u.Stmts {
			if d, ok := s.(*ast.Decl); ok {
				errs = append(errs, checkDecl(units[i], d)...)
			}
			if x.halted() {
				return errs
			}
		}
	}
	return errs
}

// collect adds the unit-level declarations of a unit to a scope:
// the public and exported ones if pub is true, otherwise the private ones.
func collect(x *Scope, u *ast.Unit, pub bool) (errs []checkError) {
	defer x.tr("collect(%s, pub=%v)", u.Path, pub)(&errs)
	for _, s := range u.Stmts {
		switch s := s.(type) {
		case *ast.Decl:
			if (s.Vis != ast.Private) != pub {
				continue
			}
			s.Flags |= ast.Global
			if err := x.AddVar(s); err != nil {
				errs = append(errs, *x.err(s, "%s", err))
			}
		case *ast.TypeDecl:
			if (s.Vis != ast.Private) != pub {
				continue
			}
			if err := x.AddType(s); err != nil {
				errs = append(errs, *x.err(s, "%s", err))
			}
		default:
			if pub {
				errs = append(errs, *x.err(s, "Non-declaration at top-level."))
			}
		}
		if x.halted() {
			break
		}
	}
	return errs
}

// resolveUnit resolves the types declared by a unit.
func resolveUnit(x *Scope, u *ast.Unit) (errs []checkError) {
	defer x.tr("resolveUnit(%s)", u.Path)(&errs)
	for _, s := range u.Stmts {
		switch s := s.(type) {
		case *ast.Decl:
			errs = append(errs, resolveType(x, s, s.T)...)
		case *ast.TypeDecl:
			errs = append(errs, resolveType(x, s, s.T)...)
		}
		if x.halted() {
			break
		}
	}
	return errs
}

func checkDecl(x *Scope, d *ast.Decl) (errs []checkError) {
	defer x.tr("checkDecl(%s)", d.Name)(&errs)

	if d.T == nil && d.Flags&ast.Auto == 0 {
		return append(errs, *x.err(d, "Missing type of '%s'.", d.Name))
	}
	if errs = resolveType(x, d, d.T); len(errs) > 0 {
		return errs
	}

	if d.T != nil && d.T.Kind == types.FuncType {
		if d.Expr == nil {
			if d.Flags&ast.Extern == 0 {
				errs = append(errs, *x.err(d, "Empty functions must be extern."))
			}
			return errs
		}
		body, ok := d.Expr.(*ast.Body)
		if !ok {
			return append(errs, *x.err(d, "Functions must have a function body."))
		}
		if body.Sig == nil {
			body.Sig = d.T
		}
		return checkBody(x, body)
	}

	if d.Expr == nil {
		if d.T == nil {
			errs = append(errs, *x.err(d, "Missing type of '%s'.", d.Name))
		}
		return errs
	}
	if errs = checkExpr(x, d.Expr); len(errs) > 0 {
		return errs
	}
	if d.T == nil {
		if untyped(d.Expr.Type()) {
			fill(d.Expr, types.New(types.I32Type))
		}
		d.T = d.Expr.Type()
		return nil
	}
	fill(d.Expr, d.T)
	if r, t := types.Root(d.T), types.Root(d.Expr.Type()); types.IsArr(r) && r.Len == 0 && types.IsArr(t) {
		arr := *r
		arr.Len = t.Len
		d.T = &arr
	}
	if !assignable(d.T, d.Expr.Type()) {
		errs = append(errs, *x.mismatch(d, d.T, d.Expr.Type()))
	}
	return errs
}

// checkBody checks a function body.
// The body is checked in a new scope holding its parameters
// and the immutable variables of x, chained to the unit scope.
func checkBody(x *Scope, b *ast.Body) (errs []checkError) {
	defer x.tr("checkBody(%s)", b.Sig)(&errs)
	if b.Sig == nil || b.Sig.Kind != types.FuncType {
		return append(errs, *x.err(b, "Function body without a function type."))
	}
	if errs = resolveType(x, b, b.Sig); len(errs) > 0 {
		return errs
	}
	b.SetType(b.Sig)
	y := x.body()
	y.fun = b.Sig.Func
	return checkStmts(y, b.Block.Stmts)
}

// resolveType populates the record and alias references of a type.
// Pointers to records are not followed,
// so self-referential records resolve.
func resolveType(x *Scope, n ast.Node, t *types.Type) (errs []checkError) {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.StructType, types.UnionType:
		return resolveRecord(x, n, t)
	case types.ArrType:
		return resolveType(x, n, t.Sub)
	case types.FuncType:
		if errs = resolveType(x, n, t.Func.Ret); len(errs) > 0 {
			return errs
		}
		for _, p := range t.Func.Params {
			errs = append(errs, resolveType(x, n, p.Type)...)
		}
		return errs
	case types.AliasType:
		return resolveAlias(x, n, t)
	case types.PtrType:
		if types.IsRecord(t.Sub) {
			return nil
		}
		return resolveType(x, n, t.Sub)
	default:
		return nil
	}
}

func resolveRecord(x *Scope, n ast.Node, t *types.Type) (errs []checkError) {
	rec := t.Rec
	if !rec.Populated {
		d := x.FindType(rec.Name)
		if d == nil {
			return append(errs, *x.err(n, "Unknown structure '%s'.", rec.Name))
		}
		if d.T.Kind != t.Kind {
			return append(errs, *x.err(n, "'%s' is not a %s.", rec.Name, t.Kind))
		}
		x.log("populate %s", rec.Name)
		rec.Fields = types.Fields(d.T.Rec.Fields)
		rec.Populated = true
	}
	for _, r := range x.recStack {
		if r.Name == rec.Name {
			err := x.err(n, "Structure '%s' contains itself.", rec.Name)
			for _, r := range x.recStack {
				note(err, "%s", r.Name)
			}
			return append(errs, *err)
		}
	}
	x.recStack = append(x.recStack, rec)
	defer func() { x.recStack = x.recStack[:len(x.recStack)-1] }()
	for _, f := range rec.Fields {
		if errs = append(errs, resolveType(x, n, f.Type)...); len(errs) > 0 {
			return errs
		}
	}
	return nil
}

func resolveAlias(x *Scope, n ast.Node, t *types.Type) (errs []checkError) {
	if t.Sub == nil {
		if err := aliasCycle(x, n, t.Name); err != nil {
			return append(errs, *err)
		}
		d := x.FindType(t.Name)
		if d == nil {
			return append(errs, *x.err(n, "Unknown alias '%s'.", t.Name))
		}
		if d.T.Kind != types.AliasType {
			return append(errs, *x.err(n, "'%s' is not an alias.", t.Name))
		}
		x.aliasStack = append(x.aliasStack, t.Name)
		errs = resolveType(x, n, d.T)
		x.aliasStack = x.aliasStack[:len(x.aliasStack)-1]
		if len(errs) > 0 {
			return errs
		}
		t.Sub = d.T.Sub
	}
	return resolveType(x, n, t.Sub)
}

func aliasCycle(x *Scope, n ast.Node, name string) *checkError {
	for i, a := range x.aliasStack {
		if a != name {
			continue
		}
		err := x.err(n, "type alias cycle")
		for ; i < len(x.aliasStack); i++ {
			note(err, "%s", x.aliasStack[i])
		}
		note(err, "%s", name)
		return err
	}
	return nil
}
