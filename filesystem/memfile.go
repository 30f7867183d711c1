// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"io"

	"godark/qerr"
)

// MemFile is a File backed by a growable byte slice. Writes past the end
// extend it, filling any gap with zeros.
type MemFile struct {
	data []byte
	pos  int64
}

func NewMemFile(data []byte) *MemFile {
	return &MemFile{data: data}
}

func (m *MemFile) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, qerr.IO("read", io.ErrUnexpectedEOF)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemFile) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		if end > int64(cap(m.data)) {
			nd := make([]byte, end, 2*end)
			copy(nd, m.data)
			m.data = nd
		} else {
			m.data = m.data[:end]
		}
	}
	copy(m.data[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *MemFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return m.pos, qerr.IO("seek", io.ErrNoProgress)
	}
	if abs < 0 {
		return m.pos, qerr.IO("seek", io.ErrUnexpectedEOF)
	}
	m.pos = abs
	return abs, nil
}

func (m *MemFile) Size() int64 {
	return int64(len(m.data))
}

// Bytes returns the backing slice. It is only valid until the next write.
func (m *MemFile) Bytes() []byte {
	return m.data
}

// Close releases the buffer.
func (m *MemFile) Close() error {
	m.data = nil
	m.pos = 0
	return nil
}
