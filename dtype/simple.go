// SPDX-License-Identifier: GPL-2.0-or-later

package dtype

import (
	"encoding/binary"
	"math"

	"golang.org/x/exp/constraints"

	"godark/filesystem"
	"godark/math/vec"
	"godark/qerr"
)

// Simple is a leaf value.
type Simple struct {
	kind Kind
	size Size
	enum *Enum
}

// NewSimple validates the kind and size combination. Floats are 4 bytes,
// or 8 for values stored as double. Vectors are three floats. Only strings
// may be Dynamic and only unsigned values carry an enumeration.
func NewSimple(kind Kind, size Size, enum *Enum) (*Simple, error) {
	switch {
	case size.IsDynamic() && kind != KindString:
		return nil, qerr.UnsupportedLayout("dynamic size for %s", kind)
	case !size.IsDynamic() && size.n <= 0:
		return nil, qerr.UnsupportedLayout("%s of size %d", kind, size.n)
	case kind == KindFloat && size.n != 4 && size.n != 8:
		return nil, qerr.UnsupportedLayout("float of size %d", size.n)
	case kind == KindVector && size.n != 12:
		return nil, qerr.UnsupportedLayout("vector of size %d", size.n)
	case enum != nil && kind != KindUint:
		return nil, qerr.UnsupportedLayout("enumeration %q on %s", enum.Name(), kind)
	case enum != nil && enum.Kind() != kind:
		return nil, qerr.UnsupportedLayout("enumeration %q holds %s values", enum.Name(), enum.Kind())
	}
	return &Simple{kind: kind, size: size, enum: enum}, nil
}

// MustSimple is NewSimple for static layouts.
func MustSimple(kind Kind, size Size, enum *Enum) *Simple {
	s, err := NewSimple(kind, size, enum)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Simple) Size() Size      { return s.size }
func (s *Simple) Kind() Kind      { return s.kind }
func (s *Simple) Enum() *Enum     { return s.enum }
func (s *Simple) Fields() []Field { return nil }

func (s *Simple) Get(buf []byte, p Path) (Variant, error) {
	if len(p) != 0 {
		return Variant{}, qerr.FieldNotFound(p.String())
	}
	if err := s.check(buf); err != nil {
		return Variant{}, err
	}
	n := s.size.n
	switch s.kind {
	case KindBool:
		switch n {
		case 1, 2, 4:
			return Bool(getUint[uint32](buf, n) != 0), nil
		}
	case KindInt:
		switch n {
		case 1:
			return Int(int64(int8(buf[0]))), nil
		case 2:
			return Int(int64(int16(getUint[uint16](buf, n)))), nil
		case 4:
			return Int(int64(int32(getUint[uint32](buf, n)))), nil
		}
	case KindUint:
		switch n {
		case 1, 2, 4:
			return Uint(getUint[uint64](buf, n)), nil
		}
	case KindFloat:
		switch n {
		case 4:
			return Float(math.Float32frombits(binary.LittleEndian.Uint32(buf))), nil
		case 8:
			return Float(float32(math.Float64frombits(binary.LittleEndian.Uint64(buf)))), nil
		}
	case KindVector:
		return Vector(vec.Vec3{
			X: math.Float32frombits(binary.LittleEndian.Uint32(buf)),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])),
		}), nil
	case KindString:
		if s.size.IsDynamic() {
			l := int(binary.LittleEndian.Uint32(buf))
			if l > len(buf)-4 {
				return Variant{}, short(len(buf), 4, l)
			}
			return String(filesystem.DecodeString(buf[4 : 4+l])), nil
		}
		return String(filesystem.FixedString(buf[:n])), nil
	}
	return Variant{}, s.unsupported()
}

func (s *Simple) Set(buf []byte, p Path, v Variant) error {
	if len(p) != 0 {
		return qerr.FieldNotFound(p.String())
	}
	if err := s.check(buf); err != nil {
		return err
	}
	n := s.size.n
	switch s.kind {
	case KindBool:
		b, err := v.Bool()
		if err != nil {
			return err
		}
		switch n {
		case 1, 2, 4:
			var u uint32
			if b {
				u = 1
			}
			putUint(buf, n, u)
			return nil
		}
	case KindInt:
		i, err := v.Int()
		if err != nil {
			return err
		}
		switch n {
		case 1, 2, 4:
			putUint(buf, n, uint32(i))
			return nil
		}
	case KindUint:
		u, err := v.Uint()
		if err != nil {
			return err
		}
		switch n {
		case 1, 2, 4:
			putUint(buf, n, u)
			return nil
		}
	case KindFloat:
		f, err := v.Float()
		if err != nil {
			return err
		}
		switch n {
		case 4:
			binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
			return nil
		case 8:
			binary.LittleEndian.PutUint64(buf, math.Float64bits(float64(f)))
			return nil
		}
	case KindVector:
		x, err := v.Vec()
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(buf, math.Float32bits(x.X))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(x.Y))
		binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(x.Z))
		return nil
	case KindString:
		str, err := v.Str()
		if err != nil {
			return err
		}
		b, err := filesystem.EncodeString(str)
		if err != nil {
			return err
		}
		if s.size.IsDynamic() {
			if len(b) > len(buf)-4 {
				return short(len(buf), 4, len(b))
			}
			binary.LittleEndian.PutUint32(buf, uint32(len(b)))
			copy(buf[4:], b)
			return nil
		}
		// the last byte stays NUL
		field := buf[:n]
		for i := range field {
			field[i] = 0
		}
		copy(field[:n-1], b)
		return nil
	}
	return s.unsupported()
}

// DynamicSize returns the bytes a dynamic string field needs for v.
func (s *Simple) DynamicSize(v Variant) (int, error) {
	str, err := v.Str()
	if err != nil {
		return 0, err
	}
	b, err := filesystem.EncodeString(str)
	if err != nil {
		return 0, err
	}
	return 4 + len(b), nil
}

// Symbol returns the enumeration symbol for the value in buf.
func (s *Simple) Symbol(buf []byte) (string, error) {
	if s.enum == nil {
		return "", qerr.NotFound("%s field has no enumeration", s.kind)
	}
	v, err := s.Get(buf, nil)
	if err != nil {
		return "", err
	}
	return s.enum.Symbol(v)
}

func (s *Simple) check(buf []byte) error {
	need := s.size.n
	if s.size.IsDynamic() {
		need = 4
	}
	if len(buf) < need {
		return short(len(buf), 0, need)
	}
	return nil
}

func (s *Simple) unsupported() error {
	return qerr.UnsupportedLayout("%s of size %v", s.kind, s.size)
}

// getUint reads an n byte little endian unsigned value, zero extended.
func getUint[T constraints.Unsigned](buf []byte, n int) T {
	var v T
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | T(buf[i])
	}
	return v
}

// putUint stores the low n bytes of v little endian.
func putUint[T constraints.Unsigned](buf []byte, n int, v T) {
	for i := 0; i < n; i++ {
		buf[i] = byte(v)
		v >>= 8
	}
}
