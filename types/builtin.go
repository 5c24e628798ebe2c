// Copyright © 2020 The Pea Authors under an MIT-style license.

package types

import (
	"fmt"
	"strings"
)

// A Builtin is a function provided by the compiler.
type Builtin struct {
	// Name is the identifier that refers to the builtin.
	Name string
	// Symbol is the name of the emitted definition.
	Symbol string
	// Type returns a fresh type of the builtin.
	Type func() *Type
}

// Builtins are the builtin functions.
var Builtins = []Builtin{
	{Name: "bi:syscall", Symbol: "$syscall", Type: syscallType},
}

// FindBuiltin returns the named builtin or nil.
func FindBuiltin(name string) *Builtin {
	if !strings.HasPrefix(name, "bi:") {
		return nil
	}
	for i := range Builtins {
		if Builtins[i].Name == name {
			return &Builtins[i]
		}
	}
	return nil
}

// SyscallArgs is the number of arguments of bi:syscall:
// the system call number followed by six arguments.
const SyscallArgs = 7

func syscallType() *Type {
	var params []Param
	for i := 0; i < SyscallArgs; i++ {
		params = append(params, Param{Type: New(I64Type)})
	}
	t := NewFunc(New(I64Type), params...)
	t.Func.Check = checkSyscall
	return t
}

// checkSyscall requires every argument to be a register-sized integer or pointer.
func checkSyscall(args []*Type) error {
	for i, a := range args {
		if !IsInt(a) && !IsPtr(a) || Size(a) > 64 {
			return fmt.Errorf("bi:syscall argument %d must be an integer or pointer, got %s", i+1, a)
		}
	}
	return nil
}
