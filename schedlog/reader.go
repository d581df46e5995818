// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// A Reader reads events from a log stream.
//
// Its API is modeled on bufio.Scanner. Lines are classified strictly
// in input order against a single Clock, so a Reader must not be used
// from more than one goroutine.
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	// Classifier is the classifier applied to each line. It may be
	// changed between calls to Scan.
	Classifier Classifier

	s   *bufio.Scanner
	err error // current I/O error

	fileName string
	line     int
	clock    Clock
	rec      Record
	seen     bool
}

// NewReader constructs a Reader for the log in r. fileName is used in
// positions and error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// maxLine bounds the length of a single log line.
const maxLine = 1 << 20

// Reset resets the reader to begin reading from a new input with a
// zero Clock. It keeps the Classifier.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLine)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.err = nil
	r.line = 0
	r.clock = Clock{}
	r.rec = nil
	r.seen = false
}

// Scan advances the reader to the next record and reports whether a
// record was read. Lines that match no rule are skipped. If Scan
// reaches EOF or an I/O error occurs, it returns false, in which case
// the caller should use the Err method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	r.seen = true
	for r.s.Scan() {
		r.line++
		line := strings.TrimSpace(r.s.Text())
		if line == "" {
			continue
		}
		h := Header{File: r.fileName, Line: r.line}
		ev, next, err := r.Classifier.classify(line, h, r.clock)
		r.clock = next
		if rec, ok := err.(Record); ok {
			r.rec = rec
			return true
		}
		if ev != nil {
			r.rec = ev
			return true
		}
	}
	r.rec = nil
	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.line, err)
	}
	return false
}

// Record returns the record that was just read by Scan. This is
// either an Event or a *ClockRegressionError. Clock regressions are
// not fatal; the caller can continue to call Scan.
func (r *Reader) Record() Record {
	if !r.seen || r.rec == nil {
		return nil
	}
	return r.rec
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// Clock returns the simulation clock as of the last line read.
func (r *Reader) Clock() Clock {
	return r.clock
}

// Line returns the number of lines read so far.
func (r *Reader) Line() int {
	return r.line
}
