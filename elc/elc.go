// Copyright © 2020 The Pea Authors under an MIT-style license.

// elc checks el syntax trees and writes them as LLVM IR.
//
// Usage:
//	elc [flags] <tree file or directory>...
//
// The trees are read from the files written by the parser.
// A directory names all of its .elt files.
// The output path - writes the IR to standard output.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eaburns/el/ast"
	"github.com/eaburns/el/check"
	"github.com/eaburns/el/genll"
	"github.com/eaburns/el/mod"
	"github.com/eaburns/pretty"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	output    string
	trace     bool
	maxErrors int
	dump      bool
	force     bool
	triple    string
	fatal     string
	verbose   bool
	inputs    []string
}

type driver struct {
	options
	stdout, stderr io.Writer
}

// exit unwinds a failed run with its exit status.
type exit int

// run runs the compiler and returns the exit status.
func run(args []string, stdout, stderr io.Writer) (status int) {
	d := &driver{stdout: stdout, stderr: stderr}
	defer func() {
		if x := recover(); x != nil {
			e, ok := x.(exit)
			if !ok {
				panic(x)
			}
			status = int(e)
		}
	}()
	opts, err := parseFlags(args, stderr)
	switch {
	case err == flag.ErrHelp:
		return 0
	case err != nil:
		return 2
	}
	d.options = *opts
	d.compile()
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("elc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.output, "o", "out.ll", "name of the output file, or - for standard output")
	fs.BoolVar(&o.trace, "trace", false, "enable type checker tracing")
	fs.IntVar(&o.maxErrors, "max-errors", 1, "number of errors to report before stopping; negative reports all")
	fs.BoolVar(&o.dump, "dump", false, "print the checked tree")
	fs.BoolVar(&o.force, "force", true, "write the output even if it is newer than its inputs")
	fs.StringVar(&o.triple, "triple", "", "target triple (default x86_64-pc-linux-gnu)")
	fs.StringVar(&o.fatal, "fatal", "", "function called when a required value is an error (default fatal)")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose output")
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage of elc:\n")
		fmt.Fprintf(out, "elc [flags] <tree file or directory>...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(splitOutput(args)); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return nil, fmt.Errorf("no input files")
	}
	o.inputs = fs.Args()
	return &o, nil
}

// splitOutput rewrites -o<path> as -o <path>.
func splitOutput(args []string) []string {
	var out []string
	for i, a := range args {
		if a == "--" {
			return append(out, args[i:]...)
		}
		if strings.HasPrefix(a, "-o") && len(a) > 2 && a[2] != '=' {
			out = append(out, "-o", a[2:])
			continue
		}
		out = append(out, a)
	}
	return out
}

func (d *driver) compile() {
	m, err := mod.Load(d.inputs...)
	if err != nil {
		d.die("failed to load trees", err)
	}
	if !d.force && d.output != "-" && d.upToDate(m) {
		d.vprintf("ok %s\n", d.output)
		return
	}
	top := d.read(m)
	d.check(top)
	if d.dump {
		d.dumpTop(top)
	}
	d.write(top)
}

func (d *driver) upToDate(m *mod.Mod) bool {
	in, err := m.LastModTime()
	if err != nil {
		d.die("failed to get mod time", err)
	}
	t, err := mod.ModTime(d.output)
	if err != nil {
		d.die("failed to get mod time", err)
	}
	return !t.IsZero() && in.Before(t)
}

func (d *driver) read(m *mod.Mod) *ast.Top {
	for _, file := range m.Files {
		d.vprintf("reading %s\n", file)
	}
	top, err := m.Read()
	if err != nil {
		d.die("", err)
	}
	return top
}

func (d *driver) check(top *ast.Top) {
	d.vprintf("checking\n")
	errs := check.Check(top, check.Config{
		MaxErrors: d.maxErrors,
		Trace:     d.trace,
	})
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(d.stderr, err)
		}
		panic(exit(1))
	}
}

func (d *driver) dumpTop(top *ast.Top) {
	pretty.Indent = "    "
	for _, u := range top.Units {
		for _, s := range u.Stmts {
			fmt.Fprintln(d.stderr, s.GetLoc())
			fmt.Fprintln(d.stderr, pretty.String(s))
			fmt.Fprintln(d.stderr, "")
		}
	}
}

// write generates into memory first,
// so that nothing is created if generation fails.
func (d *driver) write(top *ast.Top) {
	var b bytes.Buffer
	err := genll.WriteTop(&b, top, genll.Config{
		Triple: d.triple,
		Fatal:  d.fatal,
	})
	if err != nil {
		d.die("", err)
	}
	if d.output == "-" {
		if _, err := b.WriteTo(d.stdout); err != nil {
			d.die("failed to write output", err)
		}
		return
	}
	d.vprintf("writing %s\n", d.output)
	f, err := os.Create(d.output)
	if err != nil {
		d.die("failed to create output file", err)
	}
	w := bufio.NewWriter(f)
	if _, err := b.WriteTo(w); err != nil {
		d.die("failed to write output file", err)
	}
	if err := w.Flush(); err != nil {
		d.die("failed to flush output file buffer", err)
	}
	if err := f.Close(); err != nil {
		d.die("failed to close output file", err)
	}
}

func (d *driver) vprintf(f string, vs ...interface{}) {
	if d.verbose {
		fmt.Fprintf(d.stderr, f, vs...)
	}
}

func (d *driver) die(s string, err error) {
	if s == "" {
		fmt.Fprintln(d.stderr, err)
	} else {
		fmt.Fprintf(d.stderr, "%s: %s\n", s, err)
	}
	panic(exit(1))
}
