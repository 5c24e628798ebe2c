// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"fmt"
	"reflect"

	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/types"
)

// Config are configuration parameters for the type checker.
type Config struct {
	// MaxErrors is the number of errors after which checking stops.
	// Zero means the default, 1: stop on the first error.
	// A negative value means check everything and report all errors.
	MaxErrors int
	// Trace is whether to enable debug tracing.
	Trace bool
}

type state struct {
	cfg    Config
	indent string
	nerrs  int

	// aliasStack holds the names of aliases being resolved.
	aliasStack []string
	// recStack holds the records whose fields are being resolved.
	recStack []*types.Record
}

func newState(cfg Config) *state {
	x := &state{cfg: cfg}
	setConfigDefaults(x)
	return x
}

func setConfigDefaults(x *state) {
	if x.cfg.MaxErrors == 0 {
		x.cfg.MaxErrors = 1
	}
}

// halted returns whether enough errors have been reported to stop checking.
func (x *state) halted() bool {
	return x.cfg.MaxErrors > 0 && x.nerrs >= x.cfg.MaxErrors
}

func (x *state) err(n ast.Node, f string, vs ...interface{}) *checkError {
	x.nerrs++
	return &checkError{loc: n.GetLoc(), msg: fmt.Sprintf(f, vs...)}
}

// mismatch returns a type mismatch error naming both types.
func (x *state) mismatch(n ast.Node, want, got *types.Type) *checkError {
	return x.err(n, "Type mismatch between '%s' and '%s'.", want, got)
}

// The argument to the returned function,
// if non-empty, only the first element of vs is used.
// It must be a either pointer to a slice of types convertable to error,
// or a pointer to a type convertable to error.
func (x *state) tr(f string, vs ...interface{}) func(...interface{}) {
	if !x.cfg.Trace {
		return func(...interface{}) {}
	}
	x.log(f, vs...)
	olddent := x.indent
	x.indent += "---"
	return func(errs ...interface{}) {
		defer func() { x.indent = olddent }()
		if len(errs) == 0 {
			return
		}
		v := reflect.ValueOf(errs[0])
		if v.IsNil() || v.Elem().Kind() == reflect.Slice && v.Elem().Len() == 0 {
			return
		}
		x.log("%v", v.Elem().Interface())
	}
}

func (x *state) log(f string, vs ...interface{}) {
	if !x.cfg.Trace {
		return
	}
	fmt.Print(x.indent)
	fmt.Printf(f, vs...)
	fmt.Println("")
}
