// SPDX-License-Identifier: GPL-2.0-or-later

package dtype

import (
	"fmt"

	"godark/math/vec"
	"godark/qerr"
)

// Kind is the value class of a leaf field.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindUint
	KindFloat
	KindString
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindVector:
		return "vector"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Variant holds one value of any Kind.
type Variant struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float32
	s    string
	v    vec.Vec3
}

func Bool(b bool) Variant       { return Variant{kind: KindBool, b: b} }
func Int(i int64) Variant       { return Variant{kind: KindInt, i: i} }
func Uint(u uint64) Variant     { return Variant{kind: KindUint, u: u} }
func Float(f float32) Variant   { return Variant{kind: KindFloat, f: f} }
func String(s string) Variant   { return Variant{kind: KindString, s: s} }
func Vector(v vec.Vec3) Variant { return Variant{kind: KindVector, v: v} }

func (v Variant) Kind() Kind {
	return v.kind
}

func (v Variant) numeric() bool {
	return v.kind == KindBool || v.kind == KindInt || v.kind == KindUint || v.kind == KindFloat
}

// Bool converts numeric values by a nonzero test.
func (v Variant) Bool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindInt:
		return v.i != 0, nil
	case KindUint:
		return v.u != 0, nil
	case KindFloat:
		return v.f != 0, nil
	}
	return false, v.mismatch(KindBool)
}

func (v Variant) Int() (int64, error) {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindInt:
		return v.i, nil
	case KindUint:
		return int64(v.u), nil
	case KindFloat:
		return int64(v.f), nil
	}
	return 0, v.mismatch(KindInt)
}

func (v Variant) Uint() (uint64, error) {
	switch v.kind {
	case KindBool, KindFloat:
		i, _ := v.Int()
		return uint64(i), nil
	case KindInt:
		return uint64(v.i), nil
	case KindUint:
		return v.u, nil
	}
	return 0, v.mismatch(KindUint)
}

func (v Variant) Float() (float32, error) {
	switch v.kind {
	case KindBool, KindInt:
		i, _ := v.Int()
		return float32(i), nil
	case KindUint:
		return float32(v.u), nil
	case KindFloat:
		return v.f, nil
	}
	return 0, v.mismatch(KindFloat)
}

func (v Variant) Str() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}
	return v.s, nil
}

func (v Variant) Vec() (vec.Vec3, error) {
	if v.kind != KindVector {
		return vec.Vec3{}, v.mismatch(KindVector)
	}
	return v.v, nil
}

// As converts v to kind k.
func (v Variant) As(k Kind) (Variant, error) {
	if v.kind == k {
		return v, nil
	}
	switch k {
	case KindBool:
		b, err := v.Bool()
		return Bool(b), err
	case KindInt:
		i, err := v.Int()
		return Int(i), err
	case KindUint:
		u, err := v.Uint()
		return Uint(u), err
	case KindFloat:
		f, err := v.Float()
		return Float(f), err
	}
	return Variant{}, v.mismatch(k)
}

// Equal compares two variants after converting other to the kind of v.
func (v Variant) Equal(other Variant) bool {
	if v.numeric() != other.numeric() && v.kind != other.kind {
		return false
	}
	o, err := other.As(v.kind)
	if err != nil {
		return false
	}
	return v == o
}

func (v Variant) mismatch(want Kind) error {
	return qerr.UnsupportedLayout("cannot use %s value as %s", v.kind, want)
}

func (v Variant) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprint(v.b)
	case KindInt:
		return fmt.Sprint(v.i)
	case KindUint:
		return fmt.Sprint(v.u)
	case KindFloat:
		return fmt.Sprint(v.f)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindVector:
		return fmt.Sprintf("(%v, %v, %v)", v.v.X, v.v.Y, v.v.Z)
	}
	return "<invalid>"
}
