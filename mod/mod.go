// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package mod loads the list of tree files of a compilation
// and reads them into a single top-level tree.
package mod

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/eaburns/el/ast"
)

// Ext is the file extension of tree files written by the parser.
const Ext = ".elt"

// A Mod is the set of tree files compiled together.
type Mod struct {
	// Files contains the tree file paths.
	// Files named on the command line keep their order;
	// the files of a directory are in alphabetical order.
	Files []string
}

// Load returns a *Mod for the given paths.
// Each path may be either a tree file or a directory of tree files.
// A file named more than once is only loaded once.
func Load(paths ...string) (*Mod, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	m := &Mod{}
	seen := make(map[string]bool)
	for _, p := range paths {
		files, err := treeFiles(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if seen[f] {
				continue
			}
			seen[f] = true
			m.Files = append(m.Files, f)
		}
	}
	return m, nil
}

func treeFiles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return []string{filepath.Clean(path)}, nil
	}
	finfos, err := f.Readdir(-1)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, finfo := range finfos {
		if finfo.IsDir() || !strings.HasSuffix(finfo.Name(), Ext) {
			continue
		}
		paths = append(paths, filepath.Join(path, finfo.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Read reads the tree files into a Top, one Unit per file.
// A unit with no recorded source path takes the path of its tree file.
func (m *Mod) Read() (*ast.Top, error) {
	top := &ast.Top{}
	for _, file := range m.Files {
		u, err := readUnit(file)
		if err != nil {
			return nil, err
		}
		top.Units = append(top.Units, u)
	}
	return top, nil
}

func readUnit(file string) (*ast.Unit, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	u, err := ast.Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if u.Path == "" {
		u.Path = file
	}
	return u, nil
}

// LastModTime returns the latest modification time of the tree files.
func (m *Mod) LastModTime() (time.Time, error) {
	var t time.Time
	for _, file := range m.Files {
		mt, err := ModTime(file)
		if err != nil {
			return time.Time{}, err
		}
		if mt.After(t) {
			t = mt
		}
	}
	return t, nil
}

// ModTime returns the modification time of a file,
// or the zero time if the file does not exist.
func ModTime(file string) (time.Time, error) {
	finfo, err := os.Stat(file)
	switch {
	case os.IsNotExist(err):
		return time.Time{}, nil
	case err != nil:
		return time.Time{}, err
	}
	return finfo.ModTime(), nil
}
