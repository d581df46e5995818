// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export writes reports and interchange documents to a
// destination: a local path, standard output ("-"), or a Cloud Storage
// object ("gs://bucket/object").
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Options configure access to remote destinations.
type Options struct {
	// CredentialsFile is a service account key file. If empty,
	// TokenSource is used.
	CredentialsFile string

	// TokenSource authorizes uploads. If nil, the application
	// default credentials are used.
	TokenSource oauth2.TokenSource

	// ContentType is recorded on uploaded objects.
	ContentType string

	// Stdout is where "-" writes. It defaults to os.Stdout.
	Stdout io.Writer
}

// ParseGCS splits a gs://bucket/object destination. It reports false
// if dest is not a Cloud Storage URL.
func ParseGCS(dest string) (bucket, object string, ok bool, err error) {
	rest, ok := strings.CutPrefix(dest, "gs://")
	if !ok {
		return "", "", false, nil
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return "", "", true, fmt.Errorf("%s: want gs://bucket/object", dest)
	}
	return bucket, object, true, nil
}

// Create opens dest for writing. The caller must Close the result,
// which for a Cloud Storage object commits the upload.
func Create(ctx context.Context, dest string, opts Options) (io.WriteCloser, error) {
	if dest == "-" {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		return nopCloser{w}, nil
	}
	bucket, object, ok, err := ParseGCS(dest)
	if err != nil {
		return nil, err
	}
	if ok {
		return createGCS(ctx, bucket, object, opts)
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return nil, err
		}
	}
	return os.Create(dest)
}

// WriteTo creates dest, calls write with it, and closes it. If write
// fails, a Cloud Storage upload is abandoned rather than committed.
func WriteTo(ctx context.Context, dest string, opts Options, write func(io.Writer) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w, err := Create(ctx, dest, opts)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		// Cancelling the context aborts an in-progress upload.
		cancel()
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %w", dest, err)
	}
	return nil
}

func clientOptions(ctx context.Context, opts Options) ([]option.ClientOption, error) {
	switch {
	case opts.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(opts.CredentialsFile)}, nil
	case opts.TokenSource != nil:
		return []option.ClientOption{option.WithTokenSource(opts.TokenSource)}, nil
	}
	ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
	if err != nil {
		return nil, fmt.Errorf("no credentials for upload: %w", err)
	}
	return []option.ClientOption{option.WithTokenSource(ts)}, nil
}

func createGCS(ctx context.Context, bucket, object string, opts Options) (io.WriteCloser, error) {
	copts, err := clientOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, copts...)
	if err != nil {
		return nil, err
	}
	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = opts.ContentType
	return &gcsWriter{w, client}, nil
}

type gcsWriter struct {
	*storage.Writer
	client *storage.Client
}

func (w *gcsWriter) Close() error {
	return errors.Join(w.Writer.Close(), w.client.Close())
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
