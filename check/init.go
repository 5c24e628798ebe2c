// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

// checkInit checks the entries of an initializer of type t.
// Named entries set record fields by name.
// Positional entries set the next field or element.
// An array of unknown length gets the length of its entries.
func checkInit(x *Scope, n ast.Node, entries []*ast.Init, t *types.Type) (errs []checkError) {
	defer x.tr("checkInit(%s, %d entries)", t, len(entries))(&errs)

	r := types.Root(t)
	var rec *types.Record
	var elem *types.Type
	switch {
	case types.IsRecord(r):
		rec = r.Rec
	case types.IsArr(r):
		elem = r.Sub
	}

	next := 0
	for _, e := range entries {
		var et *types.Type
		switch {
		case e.Name != "":
			if rec == nil {
				return append(errs, *x.err(n, "Invalid initializer."))
			}
			if e.Idx = rec.Find(e.Name); e.Idx < 0 {
				return append(errs, *x.err(n, "Unknown member '%s'.", e.Name))
			}
			et = rec.Fields[e.Idx].Type
		case rec != nil:
			e.Idx = next
			next++
			if e.Idx >= len(rec.Fields) {
				return append(errs, *x.err(n, "Too many initializers."))
			}
			et = rec.Fields[e.Idx].Type
		case elem != nil:
			e.Idx = next
			next++
			if r.Len > 0 && e.Idx >= r.Len {
				return append(errs, *x.err(n, "Too many initializers."))
			}
			et = elem
		default:
			return append(errs, *x.err(n, "Invalid initializer."))
		}

		if e.Expr == nil {
			if errs = checkInit(x, n, e.Nest, et); len(errs) > 0 {
				return errs
			}
			continue
		}
		if errs = checkExpr(x, e.Expr); len(errs) > 0 {
			return errs
		}
		fill(e.Expr, et)
		if !assignable(et, e.Expr.Type()) {
			return append(errs, *x.mismatch(n, et, e.Expr.Type()))
		}
	}
	if elem != nil && r.Len == 0 {
		r.Len = next
	}
	return nil
}
