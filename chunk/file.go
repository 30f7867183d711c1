// SPDX-License-Identifier: GPL-2.0-or-later

package chunk

import (
	"os"
	"sync/atomic"

	"godark/filesystem"
	"godark/qerr"
)

// File is a reference counted chunk payload. Close releases one reference;
// the backing storage is released with the last one.
type File struct {
	filesystem.File
	name string
	refs atomic.Int32
}

func newFile(name string, f filesystem.File) *File {
	cf := &File{File: f, name: name}
	cf.refs.Store(1)
	return cf
}

func (f *File) acquire() {
	f.refs.Add(1)
}

// Name returns the chunk name.
func (f *File) Name() string {
	return f.name
}

// Close fails with os.ErrClosed once all references are gone.
func (f *File) Close() error {
	for {
		n := f.refs.Load()
		if n <= 0 {
			return qerr.IO("close chunk "+f.name, os.ErrClosed)
		}
		if !f.refs.CompareAndSwap(n, n-1) {
			continue
		}
		if n == 1 {
			return f.File.Close()
		}
		return nil
	}
}

// Refs returns the number of live references.
func (f *File) Refs() int {
	return int(f.refs.Load())
}
