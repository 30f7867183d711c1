// SPDX-License-Identifier: GPL-2.0-or-later

// Package dtype describes binary record layouts at run time and reads and
// writes their fields in raw byte buffers. A layout is a tree of Simple
// leaves, fixed size Arrays and Structs (or unions). Composed types flatten
// their leaves into a table when built, so field access is a map lookup.
package dtype

import (
	"fmt"

	"godark/qerr"
)

// Size is the byte size of a type. Only strings may be Dynamic: a 32 bit
// length followed by the characters.
type Size struct {
	n       int
	dynamic bool
}

// Fixed returns a size of n bytes.
func Fixed(n int) Size {
	return Size{n: n}
}

// Dynamic marks a length prefixed string.
var Dynamic = Size{dynamic: true}

func (s Size) IsDynamic() bool { return s.dynamic }

// Bytes returns the fixed byte count, 0 for Dynamic.
func (s Size) Bytes() int {
	if s.dynamic {
		return 0
	}
	return s.n
}

func (s Size) String() string {
	if s.dynamic {
		return "dynamic"
	}
	return fmt.Sprint(s.n)
}

// Field is a leaf of a composed type at a byte offset.
type Field struct {
	Path   Path
	Offset int
	Type   *Simple
}

// Type is one of *Simple, *Array or *Struct.
type Type interface {
	Size() Size
	// Fields returns the flattened leaves in layout order. A Simple type
	// has no fields, it is accessed with an empty path.
	Fields() []Field
	Get(buf []byte, p Path) (Variant, error)
	Set(buf []byte, p Path, v Variant) error
}

// table is the flattened field lookup shared by Array and Struct.
type table struct {
	fields []Field
	index  map[string]int
}

func (t *table) add(f Field) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[f.Path.key()] = len(t.fields)
	t.fields = append(t.fields, f)
}

// addType adds the leaves of typ under prefix at offset.
func (t *table) addType(prefix Segment, offset int, typ Type) {
	if s, ok := typ.(*Simple); ok {
		t.add(Field{Path: Path{prefix}, Offset: offset, Type: s})
		return
	}
	for _, f := range typ.Fields() {
		t.add(Field{
			Path:   f.Path.prefixed(prefix),
			Offset: offset + f.Offset,
			Type:   f.Type,
		})
	}
}

func (t *table) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

// Field looks up the leaf at p.
func (t *table) Field(p Path) (Field, error) {
	i, ok := t.index[p.key()]
	if !ok {
		return Field{}, qerr.FieldNotFound(p.String())
	}
	return t.fields[i], nil
}

func (t *table) Get(buf []byte, p Path) (Variant, error) {
	f, err := t.Field(p)
	if err != nil {
		return Variant{}, err
	}
	if f.Offset > len(buf) {
		return Variant{}, short(len(buf), f.Offset, f.Type.size.n)
	}
	return f.Type.Get(buf[f.Offset:], nil)
}

func (t *table) Set(buf []byte, p Path, v Variant) error {
	f, err := t.Field(p)
	if err != nil {
		return err
	}
	if f.Offset > len(buf) {
		return short(len(buf), f.Offset, f.Type.size.n)
	}
	return f.Type.Set(buf[f.Offset:], nil, v)
}

func short(have, offset, size int) error {
	return qerr.Format("buffer of %d bytes too short for %d bytes at %d", have, size, offset)
}

// Array repeats an element type Count times.
type Array struct {
	table
	elem  Type
	count int
}

func NewArray(elem Type, count int) (*Array, error) {
	if elem.Size().IsDynamic() {
		return nil, qerr.UnsupportedLayout("array of dynamically sized elements")
	}
	if count < 0 {
		return nil, qerr.UnsupportedLayout("array of %d elements", count)
	}
	a := &Array{elem: elem, count: count}
	step := elem.Size().Bytes()
	for i := 0; i < count; i++ {
		a.addType(Index(i), i*step, elem)
	}
	return a, nil
}

func (a *Array) Size() Size {
	return Fixed(a.elem.Size().Bytes() * a.count)
}

func (a *Array) Elem() Type { return a.elem }
func (a *Array) Len() int   { return a.count }

// StructMember is a named member of a Struct.
type StructMember struct {
	Name string
	Type Type
}

// Struct lays out its members one after another, or all at offset 0 for
// a union.
type Struct struct {
	table
	members []StructMember
	union   bool
	size    int
}

func NewStruct(members []StructMember, union bool) (*Struct, error) {
	s := &Struct{members: append([]StructMember(nil), members...), union: union}
	seen := make(map[string]bool, len(members))
	offset := 0
	for _, m := range members {
		if seen[m.Name] {
			return nil, qerr.AlreadyExists("struct member %q", m.Name)
		}
		seen[m.Name] = true
		sz := m.Type.Size()
		if sz.IsDynamic() {
			return nil, qerr.UnsupportedLayout("struct member %q has dynamic size", m.Name)
		}
		s.addType(Member(m.Name), offset, m.Type)
		if union {
			s.size = max(s.size, sz.Bytes())
		} else {
			offset += sz.Bytes()
			s.size = offset
		}
	}
	return s, nil
}

func (s *Struct) Size() Size {
	return Fixed(s.size)
}

func (s *Struct) IsUnion() bool { return s.union }

func (s *Struct) Members() []StructMember {
	return append([]StructMember(nil), s.members...)
}
