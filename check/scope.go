// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"fmt"

	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

// A Scope is a pair of symbol tables, one for variables and one for types,
// chained to a parent scope.
type Scope struct {
	*state
	up *Scope
	// unit is the scope of the declaring unit.
	// Function bodies are checked in scopes chained to it.
	unit *Scope

	vars     map[string]*ast.Decl
	varOrder []*ast.Decl
	types    map[string]*ast.TypeDecl

	// captured is set on the scope holding the bindings
	// copied into a function body from its enclosing scope.
	captured bool
	// fun is the signature of the function whose body this scope is.
	fun *types.Func
}

// NewScope returns a new, empty scope chained to up.
// If unit is nil, the new scope is its own unit scope.
func NewScope(up, unit *Scope) *Scope {
	x := &Scope{
		up:    up,
		unit:  unit,
		vars:  make(map[string]*ast.Decl),
		types: make(map[string]*ast.TypeDecl),
	}
	if unit == nil {
		x.unit = x
	}
	if up != nil {
		x.state = up.state
	}
	return x
}

// Unit returns the unit scope of x.
func (x *Scope) Unit() *Scope { return x.unit }

// AddVar adds a variable to x.
// It is an error if x already has a variable with the same name;
// shadowing a variable of a parent scope is fine.
func (x *Scope) AddVar(d *ast.Decl) error {
	if _, ok := x.vars[d.Name]; ok {
		return fmt.Errorf("Duplicated declaration of '%s'.", d.Name)
	}
	x.vars[d.Name] = d
	x.varOrder = append(x.varOrder, d)
	return nil
}

// AddType adds a type to x.
// It is an error if x already has a type with the same name.
func (x *Scope) AddType(d *ast.TypeDecl) error {
	if _, ok := x.types[d.Name]; ok {
		return fmt.Errorf("Duplicated declaration of '%s'.", d.Name)
	}
	x.types[d.Name] = d
	return nil
}

// FindVar returns the innermost variable with the given name, or nil.
func (x *Scope) FindVar(name string) *ast.Decl {
	d, _ := x.findVar(name)
	return d
}

func (x *Scope) findVar(name string) (*ast.Decl, *Scope) {
	for ; x != nil; x = x.up {
		if d, ok := x.vars[name]; ok {
			return d, x
		}
	}
	return nil, nil
}

// FindType returns the innermost type with the given name, or nil.
func (x *Scope) FindType(name string) *ast.TypeDecl {
	for ; x != nil; x = x.up {
		if d, ok := x.types[name]; ok {
			return d
		}
	}
	return nil
}

// immutables returns the immutable variables visible in x
// below its unit scope, innermost first.
// A variable shadowed by an inner declaration is not returned,
// even if the inner declaration is mutable.
func (x *Scope) immutables() []*ast.Decl {
	var ds []*ast.Decl
	seen := make(map[string]bool)
	for ; x != nil && x != x.unit; x = x.up {
		for _, d := range x.varOrder {
			if seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			if !d.Mutable() {
				ds = append(ds, d)
			}
		}
	}
	return ds
}

// lookup returns the variable or parameter with the given name.
// Parameters are found in the scope of their function body,
// after the variables declared directly in the body.
// If the name is a parameter, the returned Decl is nil,
// and the returned int is the parameter index.
// The returned Scope is the scope in which the name was found.
func (x *Scope) lookup(name string) (*ast.Decl, int, *Scope) {
	for ; x != nil; x = x.up {
		if d, ok := x.vars[name]; ok {
			return d, -1, x
		}
		if x.fun != nil {
			if i := x.fun.Find(name); i >= 0 {
				return nil, i, x
			}
		}
	}
	return nil, -1, nil
}

// function returns the signature of the function being checked,
// or nil at unit level.
func (x *Scope) function() *types.Func {
	for ; x != nil; x = x.up {
		if x.fun != nil {
			return x.fun
		}
	}
	return nil
}

// body returns the scope for checking a function body
// that appears in x.
// The body sees the unit scope and its parents,
// and the immutable variables of x, but not the mutable ones.
func (x *Scope) body() *Scope {
	captured := NewScope(x.unit, x.unit)
	captured.captured = true
	for _, d := range x.immutables() {
		captured.vars[d.Name] = d
		captured.varOrder = append(captured.varOrder, d)
	}
	return NewScope(captured, x.unit)
}

// new returns a block scope chained to x.
func (x *Scope) new() *Scope { return NewScope(x, x.unit) }
