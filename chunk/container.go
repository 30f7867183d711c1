// SPDX-License-Identifier: GPL-2.0-or-later

// Package chunk reads and writes the tagged chunk database used by mission,
// game and save files. A container is a 272 byte header, the chunks (each a
// 24 byte header followed by its payload) and an inventory at the end.
package chunk

import (
	"io"
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"godark/filesystem"
	"godark/qerr"
)

const (
	// Magic is the header trailer, DE AD BE EF on disk.
	Magic = 0xEFBEADDE

	nameLength        = 12
	headerSize        = 272
	inventoryItemSize = 20
	chunkHeaderSize   = 24
)

type header struct {
	InventoryOffset uint32
	Zero            uint32
	One             uint32
	Pad             [256]byte
	DeadBeef        uint32
}

type inventoryItem struct {
	Name   [nameLength]byte
	Offset uint32
	Length uint32
}

type chunkHeader struct {
	Name     [nameLength]byte
	VerMajor uint32
	VerMinor uint32
	Zero     uint32
}

// Header describes a chunk.
type Header struct {
	Name  string
	Major uint32
	Minor uint32
}

type entry struct {
	header Header
	file   *File
}

// Container maps chunk names to their files. Files opened from a source
// read lazily from it, so the source has to stay open while the container
// is used.
type Container struct {
	src    *filesystem.Cursor
	chunks map[string]*entry
}

// New returns an empty container.
func New() *Container {
	return &Container{chunks: make(map[string]*entry)}
}

// Open parses the container stored in f. No payload is read.
func Open(f filesystem.File) (*Container, error) {
	c := New()
	c.src = filesystem.NewCursor(f)
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) init() error {
	f := c.src.File()
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	var h header
	if err := filesystem.ReadStruct(f, &h); err != nil {
		return err
	}
	if h.DeadBeef != Magic {
		return qerr.Format("bad container magic %#08x", h.DeadBeef)
	}
	if _, err := f.Seek(int64(h.InventoryOffset), io.SeekStart); err != nil {
		return err
	}
	count, err := filesystem.ReadUint32(f)
	if err != nil {
		return err
	}
	if int64(count)*inventoryItemSize > f.Size() {
		return qerr.Format("inventory of %d chunks does not fit the file", count)
	}
	items := make([]inventoryItem, count)
	if err := filesystem.ReadStruct(f, items); err != nil {
		return err
	}
	size := f.Size()
	for _, it := range items {
		name := filesystem.FixedString(it.Name[:])
		if _, ok := c.chunks[name]; ok {
			return qerr.Format("chunk %q listed twice", name)
		}
		if _, err := f.Seek(int64(it.Offset), io.SeekStart); err != nil {
			return err
		}
		var ch chunkHeader
		if err := filesystem.ReadStruct(f, &ch); err != nil {
			return err
		}
		if ch.Name != it.Name {
			return qerr.Format("inventory/chunk name mismatch: %q vs %q",
				name, filesystem.FixedString(ch.Name[:]))
		}
		start := int64(it.Offset) + chunkHeaderSize
		if start+int64(it.Length) > size {
			return qerr.Format("chunk %q [%d,%d) exceeds file size %d",
				name, start, start+int64(it.Length), size)
		}
		c.chunks[name] = &entry{
			header: Header{Name: name, Major: ch.VerMajor, Minor: ch.VerMinor},
			file:   newFile(name, filesystem.NewPart(c.src, start, int64(it.Length))),
		}
		slog.Debug("chunk", slog.String("name", name), slog.Int64("offset", start),
			slog.Uint64("length", uint64(it.Length)),
			slog.Uint64("major", uint64(ch.VerMajor)), slog.Uint64("minor", uint64(ch.VerMinor)))
	}
	return nil
}

// HasFile reports whether a chunk called name exists.
func (c *Container) HasFile(name string) bool {
	_, ok := c.chunks[name]
	return ok
}

// GetFile returns a new reference to the chunk's file. The caller has to
// Close it.
func (c *Container) GetFile(name string) (*File, error) {
	e, ok := c.chunks[name]
	if !ok {
		return nil, qerr.NotFound("chunk %q", name)
	}
	e.file.acquire()
	return e.file, nil
}

// FileHeader returns the header of the chunk called name.
func (c *Container) FileHeader(name string) (Header, error) {
	e, ok := c.chunks[name]
	if !ok {
		return Header{}, qerr.NotFound("chunk %q", name)
	}
	return e.header, nil
}

// CheckVersion compares the stored version of a chunk with the expected one.
// A mismatch is not fatal but it is logged.
func (c *Container) CheckVersion(name string, major, minor uint32) (bool, error) {
	h, err := c.FileHeader(name)
	if err != nil {
		return false, err
	}
	if h.Major != major || h.Minor != minor {
		slog.Warn("chunk version mismatch", slog.String("chunk", name),
			slog.Any("want", [2]uint32{major, minor}), slog.Any("got", [2]uint32{h.Major, h.Minor}))
		return false, nil
	}
	return true, nil
}

// CreateFile adds an empty in memory chunk and returns a reference to it.
func (c *Container) CreateFile(name string, major, minor uint32) (*File, error) {
	if _, ok := c.chunks[name]; ok {
		return nil, qerr.AlreadyExists("chunk %q", name)
	}
	var n [nameLength]byte
	if err := filesystem.PutFixedString(n[:], name); err != nil {
		return nil, errors.Wrap(err, "chunk name")
	}
	f := newFile(name, filesystem.NewMemFile(nil))
	c.chunks[name] = &entry{
		header: Header{Name: name, Major: major, Minor: minor},
		file:   f,
	}
	f.acquire()
	return f, nil
}

// DeleteFile removes a chunk. Its storage goes away with the last reference.
func (c *Container) DeleteFile(name string) error {
	e, ok := c.chunks[name]
	if !ok {
		return qerr.NotFound("chunk %q", name)
	}
	delete(c.chunks, name)
	return e.file.Close()
}

// Names returns the chunk names in sorted order.
func (c *Container) Names() []string {
	names := make([]string, 0, len(c.chunks))
	for n := range c.chunks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of chunks.
func (c *Container) Len() int {
	return len(c.chunks)
}

// Write serializes the container to w. Payloads of opened chunks are read
// from the source while writing, so w must not be the source file.
func (c *Container) Write(w io.Writer) error {
	names := c.Names()
	offset := uint32(headerSize)
	for _, n := range names {
		offset += chunkHeaderSize + uint32(c.chunks[n].file.Size())
	}
	h := header{
		InventoryOffset: offset,
		One:             1,
		DeadBeef:        Magic,
	}
	if err := filesystem.WriteStruct(w, &h); err != nil {
		return err
	}
	items := make([]inventoryItem, 0, len(names))
	pos := uint32(headerSize)
	for _, n := range names {
		e := c.chunks[n]
		it := inventoryItem{
			Offset: pos,
			Length: uint32(e.file.Size()),
		}
		if err := filesystem.PutFixedString(it.Name[:], n); err != nil {
			return err
		}
		ch := chunkHeader{
			Name:     it.Name,
			VerMajor: e.header.Major,
			VerMinor: e.header.Minor,
		}
		if err := filesystem.WriteStruct(w, &ch); err != nil {
			return err
		}
		if _, err := filesystem.Copy(w, e.file); err != nil {
			return err
		}
		items = append(items, it)
		pos += chunkHeaderSize + it.Length
	}
	if err := filesystem.WriteUint32(w, uint32(len(items))); err != nil {
		return err
	}
	return filesystem.WriteStruct(w, items)
}

// Close drops the container's references to its chunks. The source file is
// not closed.
func (c *Container) Close() error {
	var first error
	for n, e := range c.chunks {
		if err := e.file.Close(); err != nil && first == nil {
			first = err
		}
		delete(c.chunks, n)
	}
	return first
}
