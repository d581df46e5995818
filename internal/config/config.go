// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the schedstat configuration file.
//
// The file is TOML, by default at $XDG_CONFIG_HOME/schedstat/config.toml:
//
//	[classifier]
//	regression = "new-session"   # accept, new-session or reject
//
//	[report]
//	by = "scheduler,workload"
//	metric = "miss_rate"
//	direction = "asc"
//	partition = "workload"
//	format = "text"              # text, csv, json or html
//	layout = "summary"
//
//	[store]
//	driver = "sqlite3"
//	dsn = "/home/me/.local/share/schedstat/schedstat.db"
//
//	[export]
//	credentials = "/path/to/service-account.json"
//
// Every setting is optional. Unset settings are nil so callers can
// tell them from explicit zero values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// File is the configuration file.
type File struct {
	Classifier Classifier `toml:"classifier"`
	Report     Report     `toml:"report"`
	Store      Store      `toml:"store"`
	Export     Export     `toml:"export"`
}

type Classifier struct {
	Regression *string `toml:"regression"`
}

type Report struct {
	By        *string  `toml:"by"`
	Metric    *string  `toml:"metric"`
	Direction *string  `toml:"direction"`
	Partition *string  `toml:"partition"`
	Format    *string  `toml:"format"`
	Layout    *string  `toml:"layout"`
	Columns   []string `toml:"columns"`
}

type Store struct {
	Driver *string `toml:"driver"`
	DSN    *string `toml:"dsn"`
}

type Export struct {
	Credentials *string `toml:"credentials"`
}

// Load reads the configuration at path. A missing file is not an
// error and yields an empty File.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return File{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return File{}, fmt.Errorf("%s: unknown setting %s", path, undec[0])
	}
	return f, nil
}

// String returns *p, or def if p is nil.
func String(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(XDGConfigHome(), "schedstat", "config.toml")
}

// DefaultDBPath returns the default path of the sqlite3 results store.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "schedstat", "schedstat.db")
}
