// Copyright © 2020 The Pea Authors under an MIT-style license.

package types

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestFindBuiltin(t *testing.T) {
	b := FindBuiltin("bi:syscall")
	be.True(t, b != nil)
	be.Equal(t, b.Symbol, "$syscall")
	be.True(t, FindBuiltin("bi:nothing") == nil)
	be.True(t, FindBuiltin("syscall") == nil)

	t0, t1 := b.Type(), b.Type()
	be.True(t, t0 != t1)
	be.Equal(t, len(t0.Func.Params), SyscallArgs)
	be.Equal(t, t0.Func.Ret.Kind, I64Type)
}

func TestSyscallCheck(t *testing.T) {
	check := FindBuiltin("bi:syscall").Type().Func.Check
	tests := []struct {
		name string
		args []*Type
		err  string
	}{
		{name: "ints", args: []*Type{New(I64Type), New(U8Type), New(BoolType)}},
		{name: "pointer", args: []*Type{New(I64Type), NewPtr(New(VoidType), true)}},
		{name: "alias", args: []*Type{NewAlias("fd", New(I32Type))}},
		{name: "struct", args: []*Type{New(I64Type), NewStruct("s")}, err: "argument 2 must be an integer or pointer, got st:s{}"},
		{name: "array", args: []*Type{NewArr(New(I8Type), 2)}, err: "argument 1"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := check(test.args)
			if test.err == "" {
				be.Err(t, err, nil)
			} else {
				be.Err(t, err, test.err)
			}
		})
	}
}
