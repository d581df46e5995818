// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedproc

import "strings"

// A Key is an immutable tuple of attribute values whose structure is
// given by a Projection. Two Keys are == if they come from the same
// Projection and have identical values.
type Key struct {
	k *keyNode
}

// IsZero reports whether k is a zeroed Key with no projection.
func (k Key) IsZero() bool {
	return k.k == nil
}

// Get returns the value of Field f in k.
//
// It panics if f does not come from k's Projection.
func (k Key) Get(f *Field) string {
	if k.IsZero() {
		panic("zero Key has no fields")
	}
	if k.k.proj != f.proj {
		panic("Key and Field have different Projections")
	}
	return k.k.vals[f.idx]
}

// Value returns the value of the named field, or "" if the projection
// has no such field.
func (k Key) Value(name string) string {
	if k.IsZero() {
		return ""
	}
	f := k.k.proj.Field(name)
	if f == nil {
		return ""
	}
	return k.k.vals[f.idx]
}

// Values returns a copy of k's values in field order.
func (k Key) Values() []string {
	if k.IsZero() {
		return nil
	}
	return append([]string(nil), k.k.vals...)
}

// Projection returns the Projection describing k.
func (k Key) Projection() *Projection {
	if k.IsZero() {
		return nil
	}
	return k.k.proj
}

// String returns k as a space-separated sequence of name:value pairs
// in field order.
func (k Key) String() string {
	return k.string(true, nil)
}

// StringValues returns k as a space-separated sequence of values in
// field order.
func (k Key) StringValues() string {
	return k.string(false, nil)
}

// StringWithout is like StringValues, but omits Field f.
func (k Key) StringWithout(f *Field) string {
	return k.string(false, f)
}

func (k Key) string(names bool, skip *Field) string {
	if k.IsZero() {
		return "<zero>"
	}
	buf := new(strings.Builder)
	for _, field := range k.k.proj.fields {
		if field == skip {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		if names {
			buf.WriteString(field.Name)
			buf.WriteByte(':')
		}
		buf.WriteString(k.k.vals[field.idx])
	}
	return buf.String()
}

// keyNode is the heap-allocated object backing a Key, so that Key
// equality is pointer equality.
type keyNode struct {
	proj *Projection
	vals []string
}

func (n *keyNode) equalRow(row []string) bool {
	if len(n.vals) != len(row) {
		return false
	}
	for i, v := range n.vals {
		if row[i] != v {
			return false
		}
	}
	return true
}
