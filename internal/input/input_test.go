// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package input

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	for _, test := range []struct {
		paths       []string
		stdin, lbls bool
		want        []Input
	}{
		{nil, true, true, []Input{{"-", "-", true}}},
		{nil, false, false, nil},
		{[]string{"a.csv", "-"}, true, false, []Input{{"a.csv", "a.csv", false}, {"-", "-", true}}},
		{[]string{"-"}, false, false, []Input{{"-", "-", false}}},
		{[]string{"a", "a", "b"}, false, false, []Input{{"a", "a#0", false}, {"a", "a#1", false}, {"b", "b", false}}},
		{[]string{"old=a", "new=a"}, false, true, []Input{{"a", "old", false}, {"a", "new", false}}},
		{[]string{"x=a"}, false, false, []Input{{"x=a", "x=a", false}}},
	} {
		got := Parse(test.paths, test.stdin, test.lbls)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Parse(%q, %v, %v): (-want +got)\n%s", test.paths, test.stdin, test.lbls, diff)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")
	if err := os.WriteFile(path, []byte("hello\n"), 0666); err != nil {
		t.Fatal(err)
	}
	rc, err := OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || string(data) != "hello\n" {
		t.Errorf("read %q, %v", data, err)
	}

	missing := filepath.Join(dir, "nope.log")
	_, err = OpenPath(missing)
	var mie *MissingInputError
	if !errors.As(err, &mie) || mie.Path != missing {
		t.Errorf("OpenPath(%q) error = %v, want *MissingInputError", missing, err)
	}
}
