// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"godark/qerr"
)

// Everything on disk is little endian. encoding/binary swaps on big endian
// hosts, so call sites never do.

func readErr(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(qerr.ErrFormat, "truncated %s", what)
	}
	if errors.Is(err, qerr.ErrFormat) {
		return err
	}
	return qerr.IO("read "+what, err)
}

func ReadUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, readErr(err, "uint32")
	}
	return v, nil
}

func ReadUint16(r io.Reader) (uint16, error) {
	var v uint16
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, readErr(err, "uint16")
	}
	return v, nil
}

func WriteUint32(w io.Writer, v uint32) error {
	return qerr.IO("write uint32", binary.Write(w, binary.LittleEndian, v))
}

// ReadStruct fills v, a pointer to a fixed size value, from r.
func ReadStruct(r io.Reader, v any) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return readErr(err, structName(v))
	}
	return nil
}

func WriteStruct(w io.Writer, v any) error {
	return qerr.IO("write "+structName(v), binary.Write(w, binary.LittleEndian, v))
}

func structName(v any) string {
	return fmt.Sprintf("%T", v)
}
