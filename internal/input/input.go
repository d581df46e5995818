// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package input resolves command-line input names to open streams.
package input

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// An Input is one named input.
type Input struct {
	// Path is the file name, or "-" for stdin.
	Path string

	// Label identifies the input in reports. It is the path, a
	// user-supplied label, or the path with "#N" appended when the
	// same path is given more than once.
	Label string

	IsStdin bool
}

// Parse resolves a list of command-line input names.
//
// If allowStdin is set, "-" names stdin and an empty list means stdin
// alone. If allowLabels is set, a name may be of the form label=path.
func Parse(paths []string, allowStdin, allowLabels bool) []Input {
	var inputs []Input
	if allowStdin && len(paths) == 0 {
		inputs = append(inputs, Input{"-", "-", true})
	}
	pathCount := make(map[string]int)
	labeled := make(map[int]bool)
	for _, path := range paths {
		label := path
		if i := strings.Index(path, "="); allowLabels && i >= 0 {
			label, path = path[:i], path[i+1:]
			labeled[len(inputs)] = true
		} else {
			pathCount[path]++
		}
		inputs = append(inputs, Input{path, label, allowStdin && path == "-"})
	}

	// Give repeated paths distinct labels so their rows are not
	// merged into one group. Explicit labels are used as given.
	pathI := make(map[string]int)
	for i := range inputs {
		inp := &inputs[i]
		if labeled[i] || pathCount[inp.Path] <= 1 {
			continue
		}
		inp.Label = fmt.Sprintf("%s#%d", inp.Path, pathI[inp.Path])
		pathI[inp.Path]++
	}
	return inputs
}

// A MissingInputError reports an input that does not exist.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: no such input", e.Path)
}

// Open opens in for reading. The caller must close the result; closing
// stdin is a no-op.
func Open(in Input) (io.ReadCloser, error) {
	if in.IsStdin {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(in.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &MissingInputError{in.Path}
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// OpenPath opens a single path, treating "-" as stdin.
func OpenPath(path string) (io.ReadCloser, error) {
	return Open(Input{Path: path, Label: path, IsStdin: path == "-"})
}
