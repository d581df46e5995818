// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestParseGCS(t *testing.T) {
	for _, test := range []struct {
		dest           string
		bucket, object string
		ok, err        bool
	}{
		{"out/run.json", "", "", false, false},
		{"gs://results/2024/run.json", "results", "2024/run.json", true, false},
		{"gs://results", "", "", true, true},
		{"gs:///run.json", "", "", true, true},
		{"gs://results/dir/", "", "", true, true},
	} {
		b, o, ok, err := ParseGCS(test.dest)
		if b != test.bucket || o != test.object || ok != test.ok || (err != nil) != test.err {
			t.Errorf("ParseGCS(%q) = %q, %q, %v, %v", test.dest, b, o, ok, err)
		}
	}
}

func TestWriteToLocal(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "run.json")
	err := WriteTo(context.Background(), dest, Options{}, func(w io.Writer) error {
		_, err := io.WriteString(w, "{}\n")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}\n" {
		t.Errorf("wrote %q", data)
	}
}

func TestWriteToStdout(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTo(context.Background(), "-", Options{Stdout: &buf}, func(w io.Writer) error {
		_, err := io.WriteString(w, "report")
		return err
	})
	if err != nil || buf.String() != "report" {
		t.Errorf("WriteTo(-) = %v, wrote %q", err, buf.String())
	}

	boom := errors.New("boom")
	err = WriteTo(context.Background(), "-", Options{Stdout: &buf}, func(io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("WriteTo with failing writer = %v, want %v", err, boom)
	}
}

func TestCreateBadGCS(t *testing.T) {
	if _, err := Create(context.Background(), "gs://bucket-only", Options{}); err == nil {
		t.Errorf("Create(gs://bucket-only): want error")
	}
}
