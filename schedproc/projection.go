// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schedproc groups result rows and log events by their
// attributes and aggregates their metrics per group.
//
// A Projection selects an ordered list of attributes, such as
// "scheduler,workload,threads". Projecting a record gives a Key, the
// tuple of the record's values for those attributes. Keys from one
// Projection are == exactly when their values are equal, so they can
// be used as map keys, and they sort in a canonical order that does
// not depend on the order records were seen in.
package schedproc

import (
	"fmt"
	"hash/maphash"
	"strings"
)

// A Record is anything that can be grouped and aggregated.
type Record interface {
	// Attr returns the value of a grouping attribute, and false if
	// the record does not carry it.
	Attr(name string) (string, bool)

	// Metric returns the value of a numeric field, and false if
	// the record does not carry it.
	Metric(name string) (float64, bool)
}

// A Projection extracts Keys from Records.
//
// A Projection is not safe for concurrent use: Project interns keys.
type Projection struct {
	fields []*Field
	byName map[string]*Field

	row  []string
	keys map[uint64][]*keyNode
}

// A Field is a single attribute of a Projection.
type Field struct {
	Name string

	// Order names the comparison used to sort values of this
	// field: "alpha", "num", "severity" or "toggle".
	Order string

	proj *Projection
	idx  int
	cmp  func(a, b string) int
}

func (f *Field) String() string {
	return f.Name
}

// defaultOrders gives the canonical order of well-known attributes.
// Other attributes sort alphabetically.
var defaultOrders = map[string]string{
	"scheduler":         "alpha",
	"workload":          "severity",
	"threads":           "num",
	"thread_count":      "num",
	"task_id":           "num",
	"task":              "alpha",
	"dw":                "toggle",
	"dynamic_weighting": "toggle",
	"session":           "num",
}

// ParseProjection parses a comma-separated list of attribute names.
// Each name may carry an explicit order as name@order, for example
// "scheduler,workload,threads@num".
func ParseProjection(spec string) (*Projection, error) {
	var names []string
	for _, f := range strings.Split(spec, ",") {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("empty projection %q", spec)
	}
	return NewProjection(names...)
}

// NewProjection returns a Projection over the named attributes.
func NewProjection(names ...string) (*Projection, error) {
	p := &Projection{
		byName: make(map[string]*Field),
		keys:   make(map[uint64][]*keyNode),
	}
	for _, name := range names {
		order := ""
		if i := strings.Index(name, "@"); i >= 0 {
			name, order = name[:i], name[i+1:]
		}
		if name == "" {
			return nil, fmt.Errorf("missing field name in projection")
		}
		if _, dup := p.byName[name]; dup {
			return nil, fmt.Errorf("duplicate field %q in projection", name)
		}
		if order == "" {
			order = defaultOrders[name]
			if order == "" {
				order = "alpha"
			}
		}
		cmp, ok := builtinOrders[order]
		if !ok {
			return nil, fmt.Errorf("unknown order %q for field %s", order, name)
		}
		f := &Field{Name: name, Order: order, proj: p, idx: len(p.fields), cmp: cmp}
		p.fields = append(p.fields, f)
		p.byName[name] = f
	}
	p.row = make([]string, len(p.fields))
	return p, nil
}

// Fields returns the fields of p in order.
//
// The caller must not modify the returned slice.
func (p *Projection) Fields() []*Field {
	return p.fields
}

// Field returns the named field, or nil.
func (p *Projection) Field(name string) *Field {
	return p.byName[name]
}

var keySeed = maphash.MakeSeed()

// Project returns the Key of r. It reports false if r does not carry
// every attribute of the projection.
func (p *Projection) Project(r Record) (Key, bool) {
	for i, f := range p.fields {
		v, ok := r.Attr(f.Name)
		if !ok {
			return Key{}, false
		}
		p.row[i] = v
	}
	return p.intern(p.row), true
}

// KeyOf returns the Key with the given values, in field order.
func (p *Projection) KeyOf(vals ...string) Key {
	if len(vals) != len(p.fields) {
		panic(fmt.Sprintf("KeyOf: %d values for %d fields", len(vals), len(p.fields)))
	}
	return p.intern(vals)
}

func (p *Projection) intern(row []string) Key {
	var h maphash.Hash
	h.SetSeed(keySeed)
	for _, val := range row {
		h.WriteString(val)
		h.WriteByte(0)
	}
	hash := h.Sum64()

	for _, key := range p.keys[hash] {
		if key.equalRow(row) {
			return Key{key}
		}
	}
	key := &keyNode{p, append([]string(nil), row...)}
	p.keys[hash] = append(p.keys[hash], key)
	return Key{key}
}
