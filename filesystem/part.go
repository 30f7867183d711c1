// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"io"

	"godark/qerr"
)

// Cursor owns the position of a file shared by several parts. Every access
// through Do runs at an explicit offset and puts the position back to where
// it was, so interleaved use of sibling parts stays consistent. It does not
// make concurrent use safe.
type Cursor struct {
	f File
}

func NewCursor(f File) *Cursor {
	return &Cursor{f: f}
}

// File returns the shared file.
func (c *Cursor) File() File {
	return c.f
}

// Do seeks to offset, runs fn and restores the previous position on every
// exit path.
func (c *Cursor) Do(offset int64, fn func(f File) (int, error)) (n int, err error) {
	saved, err := c.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, qerr.IO("tell", err)
	}
	defer func() {
		if _, serr := c.f.Seek(saved, io.SeekStart); serr != nil && err == nil {
			err = qerr.IO("restore", serr)
		}
	}()
	if _, err := c.f.Seek(offset, io.SeekStart); err != nil {
		return 0, qerr.IO("seek", err)
	}
	return fn(c.f)
}

// Part is a fixed size window [offset, offset+size) of a shared file.
type Part struct {
	cur    *Cursor
	offset int64
	size   int64
	pos    int64
}

func NewPart(c *Cursor, offset, size int64) *Part {
	return &Part{cur: c, offset: offset, size: size}
}

func (p *Part) Read(b []byte) (int, error) {
	n, err := p.ReadAt(b, p.pos)
	p.pos += int64(n)
	return n, err
}

func (p *Part) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 {
		return 0, qerr.IO("read", io.ErrUnexpectedEOF)
	}
	if off >= p.size {
		return 0, io.EOF
	}
	short := false
	if rest := p.size - off; int64(len(b)) > rest {
		b = b[:rest]
		short = true
	}
	n, err := p.cur.Do(p.offset+off, func(f File) (int, error) {
		return io.ReadFull(f, b)
	})
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return n, qerr.Format("part [%d,%d) extends past end of file", p.offset, p.offset+p.size)
		}
		return n, err
	}
	if short {
		return n, io.EOF
	}
	return n, nil
}

// Write overwrites bytes inside the window. A part never grows.
func (p *Part) Write(b []byte) (int, error) {
	if p.pos+int64(len(b)) > p.size {
		return 0, qerr.IO("write", io.ErrShortWrite)
	}
	n, err := p.cur.Do(p.offset+p.pos, func(f File) (int, error) {
		return f.Write(b)
	})
	p.pos += int64(n)
	return n, err
}

func (p *Part) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = p.pos + offset
	case io.SeekEnd:
		abs = p.size + offset
	default:
		return p.pos, qerr.IO("seek", io.ErrNoProgress)
	}
	if abs < 0 {
		return p.pos, qerr.IO("seek", io.ErrUnexpectedEOF)
	}
	p.pos = abs
	return abs, nil
}

func (p *Part) Size() int64 {
	return p.size
}

// Offset returns the position of the window inside the shared file.
func (p *Part) Offset() int64 {
	return p.offset
}

// Close does nothing, the shared file belongs to the cursor owner.
func (p *Part) Close() error {
	return nil
}
