// SPDX-License-Identifier: GPL-2.0-or-later

package dtype

import (
	"godark/qerr"
)

// Enum maps symbolic names to values of one kind. A bitfield enum maps
// names to flag bits and only works on unsigned values.
type Enum struct {
	name     string
	kind     Kind
	bitfield bool
	symbols  []string
	values   map[string]Variant
}

func NewEnum(name string, kind Kind, bitfield bool) (*Enum, error) {
	if bitfield && kind != KindUint {
		return nil, qerr.UnsupportedLayout("bitfield %q over %s values", name, kind)
	}
	return &Enum{
		name:     name,
		kind:     kind,
		bitfield: bitfield,
		values:   make(map[string]Variant),
	}, nil
}

func (e *Enum) Name() string     { return e.name }
func (e *Enum) Kind() Kind       { return e.kind }
func (e *Enum) IsBitfield() bool { return e.bitfield }

// Insert adds symbol with value v, converted to the enum kind.
func (e *Enum) Insert(symbol string, v Variant) error {
	if _, ok := e.values[symbol]; ok {
		return qerr.AlreadyExists("symbol %q in enum %q", symbol, e.name)
	}
	cv, err := v.As(e.kind)
	if err != nil {
		return err
	}
	e.symbols = append(e.symbols, symbol)
	e.values[symbol] = cv
	return nil
}

// Symbols returns the symbols in insertion order.
func (e *Enum) Symbols() []string {
	return append([]string(nil), e.symbols...)
}

// Symbol returns the first symbol whose value equals v. Bitfields compare
// the whole value too, not single bits.
func (e *Enum) Symbol(v Variant) (string, error) {
	for _, s := range e.symbols {
		if e.values[s].Equal(v) {
			return s, nil
		}
	}
	return "", qerr.NotFound("value %v in enum %q", v, e.name)
}

// Value returns the value of symbol.
func (e *Enum) Value(symbol string) (Variant, error) {
	v, ok := e.values[symbol]
	if !ok {
		return Variant{}, qerr.NotFound("symbol %q in enum %q", symbol, e.name)
	}
	return v, nil
}

// EnumField is one entry of FieldList.
type EnumField struct {
	Symbol  string
	Value   Variant
	Checked bool
}

// FieldList lists all symbols with the ones matching v checked. For
// bitfields a symbol is checked if it shares a bit with v.
func (e *Enum) FieldList(v Variant) ([]EnumField, error) {
	var bits uint64
	if e.bitfield {
		var err error
		if bits, err = v.Uint(); err != nil {
			return nil, err
		}
	}
	fl := make([]EnumField, 0, len(e.symbols))
	for _, s := range e.symbols {
		sv := e.values[s]
		f := EnumField{Symbol: s, Value: sv}
		if e.bitfield {
			f.Checked = sv.u&bits != 0
		} else {
			f.Checked = sv.Equal(v)
		}
		fl = append(fl, f)
	}
	return fl, nil
}
