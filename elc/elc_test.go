// Copyright © 2020 The Pea Authors under an MIT-style license.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eaburns/el/ast"
	. "github.com/eaburns/el/ast/asttest"
	"github.com/eaburns/el/types"
	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"
)

func TestSplitOutput(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{args: nil, want: nil},
		{args: []string{"a.elt"}, want: []string{"a.elt"}},
		{args: []string{"-o", "x.ll", "a.elt"}, want: []string{"-o", "x.ll", "a.elt"}},
		{args: []string{"-ox.ll", "a.elt"}, want: []string{"-o", "x.ll", "a.elt"}},
		{args: []string{"-o=x.ll", "a.elt"}, want: []string{"-o=x.ll", "a.elt"}},
		{args: []string{"-v", "-o/tmp/y.ll"}, want: []string{"-v", "-o", "/tmp/y.ll"}},
		{args: []string{"--", "-ofile.elt"}, want: []string{"--", "-ofile.elt"}},
	}
	for _, test := range tests {
		got := splitOutput(test.args)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("splitOutput(%q): (-want,+got)\n%s", test.args, diff)
		}
	}
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	o, err := parseFlags([]string{"-max-errors", "-1", "-fatal=die", "-triple", "t", "-oa.ll", "x.elt", "y"}, &stderr)
	be.Err(t, err, nil)
	be.Equal(t, o.maxErrors, -1)
	be.Equal(t, o.fatal, "die")
	be.Equal(t, o.triple, "t")
	be.Equal(t, o.output, "a.ll")
	be.True(t, o.force)
	if diff := cmp.Diff([]string{"x.elt", "y"}, o.inputs); diff != "" {
		t.Errorf("inputs: (-want,+got)\n%s", diff)
	}

	o, err = parseFlags([]string{"x.elt"}, &stderr)
	be.Err(t, err, nil)
	be.Equal(t, o.output, "out.ll")
	be.Equal(t, o.maxErrors, 1)
}

func TestExitStatus(t *testing.T) {
	dir := t.TempDir()
	good := writeTree(t, dir, "good.elt", Unit(Func("f", types.NewFunc(I32()), Ret(Num(1)))))
	bad := writeTree(t, dir, "bad.elt", Unit(Func("f", types.NewFunc(I32()), Ret(Id("nope")))))
	tests := []struct {
		name   string
		args   []string
		status int
		stderr string
	}{
		{name: "no input", args: nil, status: 2, stderr: "Usage of elc"},
		{name: "unknown flag", args: []string{"-nope", good}, status: 2, stderr: "-nope"},
		{name: "help", args: []string{"-h"}, status: 0},
		{name: "missing file", args: []string{filepath.Join(dir, "missing.elt")}, status: 1, stderr: "failed to load trees"},
		{name: "check error", args: []string{"-o", "-", bad}, status: 1, stderr: "test.el:1:1: Unknown identifier 'nope'."},
		{name: "ok", args: []string{"-o", "-", good}, status: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			be.Equal(t, run(test.args, &stdout, &stderr), test.status)
			if !strings.Contains(stderr.String(), test.stderr) {
				t.Errorf("stderr %q does not contain %q", stderr.String(), test.stderr)
			}
		})
	}
}

func TestMaxErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeTree(t, dir, "a.elt", Unit(
		Func("f", types.NewFunc(I32()), Ret(Id("nope"))),
		At(2, Func("g", types.NewFunc(I32()), At(2, Ret(At(2, Id("nada")))))),
	))
	tests := []struct {
		max   string
		lines int
	}{
		{max: "1", lines: 1},
		{max: "-1", lines: 2},
	}
	for _, test := range tests {
		var stdout, stderr bytes.Buffer
		be.Equal(t, run([]string{"-max-errors", test.max, "-o", "-", file}, &stdout, &stderr), 1)
		lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
		if len(lines) != test.lines {
			t.Errorf("-max-errors %s: got %d lines, want %d:\n%s", test.max, len(lines), test.lines, stderr.String())
		}
		be.Equal(t, stdout.Len(), 0)
	}
}

func TestOutputToStdout(t *testing.T) {
	dir := t.TempDir()
	errType := types.NewError(I32(), types.NewPtr(T(types.U8Type), false))
	file := writeTree(t, dir, "a.elt", Unit(
		Extern("open", types.NewFunc(errType)),
		Func("f", types.NewFunc(I32()), Ret(Un(ast.Require, Call(Id("open"))))),
	))
	var stdout, stderr bytes.Buffer
	be.Equal(t, run([]string{"-fatal", "abort_now", "-o", "-", file}, &stdout, &stderr), 0)
	be.Equal(t, stderr.String(), "")
	out := stdout.String()
	for _, want := range []string{`target triple = "x86_64-pc-linux-gnu"`, `@"abort_now"(`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in\n%s", want, out)
		}
	}
}

func TestOutputFile(t *testing.T) {
	dir := t.TempDir()
	good := writeTree(t, dir, "good.elt", Unit(Func("f", types.NewFunc(I32()), Ret(Num(1)))))
	bad := writeTree(t, dir, "bad.elt", Unit(Func("f", types.NewFunc(I32()), Ret(Id("nope")))))

	out := filepath.Join(dir, "bad.ll")
	var stdout, stderr bytes.Buffer
	be.Equal(t, run([]string{"-o" + out, bad}, &stdout, &stderr), 1)
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("%s was created on a failed run", out)
	}

	out = filepath.Join(dir, "good.ll")
	be.Equal(t, run([]string{"-o" + out, good}, &stdout, &stderr), 0)
	data, err := os.ReadFile(out)
	be.Err(t, err, nil)
	be.True(t, bytes.Contains(data, []byte(`define hidden i32 @"$g0"()`)))
	be.Equal(t, stdout.Len(), 0)
}

// writeTree writes a unit to a tree file in dir and returns its path.
func writeTree(t *testing.T, dir, name string, u *ast.Unit) string {
	t.Helper()
	var b bytes.Buffer
	if err := ast.Write(&b, u); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(), 0666); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}
