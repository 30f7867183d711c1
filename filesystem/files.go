// SPDX-License-Identifier: GPL-2.0-or-later

// Package filesystem provides the random access files the database layer
// works on: files on disk, growable memory buffers and windows (parts) into
// a larger file.
package filesystem

import (
	"io"
	"os"

	"godark/qerr"
)

// File is a seekable, readable and writable byte store of known size.
type File interface {
	io.ReadWriteSeeker
	io.ReaderAt
	Size() int64
	Close() error
}

// OSFile is a File on disk.
type OSFile struct {
	f    *os.File
	name string
}

// Open opens name read-only.
func Open(name string) (*OSFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, qerr.IO("open", err)
	}
	return &OSFile{f: f, name: name}, nil
}

// Create creates or truncates name for writing.
func Create(name string) (*OSFile, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, qerr.IO("create", err)
	}
	return &OSFile{f: f, name: name}, nil
}

func (o *OSFile) Read(p []byte) (int, error) {
	n, err := o.f.Read(p)
	if err == io.EOF {
		return n, err
	}
	return n, qerr.IO("read", err)
}

func (o *OSFile) ReadAt(p []byte, off int64) (int, error) {
	n, err := o.f.ReadAt(p, off)
	if err == io.EOF {
		return n, err
	}
	return n, qerr.IO("read", err)
}

func (o *OSFile) Write(p []byte) (int, error) {
	n, err := o.f.Write(p)
	return n, qerr.IO("write", err)
}

func (o *OSFile) Seek(offset int64, whence int) (int64, error) {
	n, err := o.f.Seek(offset, whence)
	return n, qerr.IO("seek", err)
}

func (o *OSFile) Size() int64 {
	fi, err := o.f.Stat()
	if err != nil {
		return 0
	}
	return fi.Size()
}

func (o *OSFile) Close() error {
	return qerr.IO("close", o.f.Close())
}

func (o *OSFile) String() string {
	return o.name
}

// Eof reports whether the position of f is at or past its end.
func Eof(f File) (bool, error) {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, err
	}
	return pos >= f.Size(), nil
}

// ReadAll returns the whole content of f independent of its position.
func ReadAll(f File) ([]byte, error) {
	b := make([]byte, f.Size())
	n, err := f.ReadAt(b, 0)
	if err != nil && !(err == io.EOF && n == len(b)) {
		return nil, err
	}
	return b, nil
}

// Copy writes the whole content of src to dst. The position of src is
// left alone. A size mismatch is reported as a format error since it means
// src lied about its length.
func Copy(dst io.Writer, src File) (int64, error) {
	n, err := io.Copy(dst, io.NewSectionReader(src, 0, src.Size()))
	if err != nil {
		return n, qerr.IO("copy", err)
	}
	if n != src.Size() {
		return n, qerr.Format("copied %d bytes, want %d", n, src.Size())
	}
	return n, nil
}
