// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"

	"godark/qerr"
)

// Text inside the database files is Windows-1252.

// DecodeString converts on disk bytes to a Go string.
func DecodeString(b []byte) string {
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// EncodeString converts s to its on disk form. Invalid UTF-8 and runes
// without a Windows-1252 representation are format errors.
func EncodeString(s string) ([]byte, error) {
	b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, qerr.Format("string %q has no Windows-1252 form", s)
	}
	return b, nil
}

// FixedString reads a NUL padded name field. The field does not need to
// be NUL terminated if the name fills it completely.
func FixedString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	return DecodeString(b)
}

// PutFixedString NUL pads s into dst.
func PutFixedString(dst []byte, s string) error {
	b, err := EncodeString(s)
	if err != nil {
		return err
	}
	if len(b) > len(dst) {
		return qerr.Format("%q longer than %d bytes", s, len(dst))
	}
	clear(dst)
	copy(dst, b)
	return nil
}
