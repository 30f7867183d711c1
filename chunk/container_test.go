// SPDX-License-Identifier: GPL-2.0-or-later

package chunk

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godark/filesystem"
	"godark/qerr"
)

func build(t *testing.T, chunks map[string][]byte, versions map[string][2]uint32) []byte {
	t.Helper()
	c := New()
	for name, data := range chunks {
		v := versions[name]
		f, err := c.CreateFile(name, v[0], v[1])
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	out := filesystem.NewMemFile(nil)
	require.NoError(t, c.Write(out))
	return out.Bytes()
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	chunks := map[string][]byte{}
	versions := map[string][2]uint32{}
	for _, n := range []string{"TXLIST", "BRLIST", "WREXT", "P$ModelName", "L$Contains", "EMPTY", "FAMILY"} {
		b := make([]byte, rnd.Intn(300))
		rnd.Read(b)
		chunks[n] = b
		versions[n] = [2]uint32{uint32(rnd.Intn(5)), uint32(rnd.Intn(30))}
	}
	raw := build(t, chunks, versions)

	c, err := Open(filesystem.NewMemFile(raw))
	require.NoError(t, err)
	assert.Equal(t, len(chunks), c.Len())
	for name, data := range chunks {
		h, err := c.FileHeader(name)
		require.NoError(t, err)
		assert.Equal(t, versions[name][0], h.Major, name)
		assert.Equal(t, versions[name][1], h.Minor, name)

		f, err := c.GetFile(name)
		require.NoError(t, err)
		got, err := filesystem.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, data, got, name)
		require.NoError(t, f.Close())
	}

	// rewriting an opened container gives the same chunks again
	out := filesystem.NewMemFile(nil)
	require.NoError(t, c.Write(out))
	assert.Equal(t, raw, out.Bytes())
}

func TestEndToEnd(t *testing.T) {
	payload := []byte{0, 1, 2, 3, 4, 5, 6, 7, 0xf8, 0xf9, 0xfa, 0xfb, 0xfc, 0xfd, 0xfe, 0xff}
	raw := build(t, map[string][]byte{"TESTCHNK": payload}, map[string][2]uint32{"TESTCHNK": {1, 0}})

	require.Len(t, raw, headerSize+chunkHeaderSize+16+4+inventoryItemSize)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, raw[headerSize-4:headerSize])
	assert.EqualValues(t, headerSize+chunkHeaderSize+16, binary.LittleEndian.Uint32(raw))

	c, err := Open(filesystem.NewMemFile(raw))
	require.NoError(t, err)
	assert.True(t, c.HasFile("TESTCHNK"))
	h, err := c.FileHeader("TESTCHNK")
	require.NoError(t, err)
	assert.Equal(t, Header{Name: "TESTCHNK", Major: 1, Minor: 0}, h)
	ok, err := c.CheckVersion("TESTCHNK", 1, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.CheckVersion("TESTCHNK", 2, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	f, err := c.GetFile("TESTCHNK")
	require.NoError(t, err)
	defer f.Close()
	assert.EqualValues(t, 16, f.Size())
	got, err := filesystem.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestBadMagic(t *testing.T) {
	raw := build(t, map[string][]byte{"TESTCHNK": {1, 2, 3}}, nil)
	for i := 0; i < 4; i++ {
		broken := bytes.Clone(raw)
		broken[headerSize-4+i] ^= 0x10
		_, err := Open(filesystem.NewMemFile(broken))
		assert.ErrorIs(t, err, qerr.ErrFormat)
	}
}

func TestNameMismatch(t *testing.T) {
	raw := build(t, map[string][]byte{"TESTCHNK": {1, 2, 3}}, nil)
	raw[headerSize+3] = 'X' // first chunk header name
	_, err := Open(filesystem.NewMemFile(raw))
	assert.ErrorIs(t, err, qerr.ErrFormat)
}

func TestTwelveCharacterName(t *testing.T) {
	raw := build(t, map[string][]byte{"ABCDEFGHIJKL": {7}}, nil)
	c, err := Open(filesystem.NewMemFile(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"ABCDEFGHIJKL"}, c.Names())

	_, err = New().CreateFile("ABCDEFGHIJKLM", 0, 0)
	assert.ErrorIs(t, err, qerr.ErrFormat)
}

func TestUnencodableName(t *testing.T) {
	c := New()
	for _, name := range []string{"日本", "a\xffb"} {
		_, err := c.CreateFile(name, 0, 0)
		assert.ErrorIs(t, err, qerr.ErrFormat, name)
		assert.False(t, c.HasFile(name))
	}
	assert.Zero(t, c.Len())
}

type closeCounter struct {
	filesystem.File
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return c.File.Close()
}

func TestCloseOnce(t *testing.T) {
	backing := &closeCounter{File: filesystem.NewMemFile([]byte("x"))}
	f := newFile("TEST", backing)
	f.acquire()
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
	assert.ErrorIs(t, f.Close(), qerr.ErrIO)
	assert.Equal(t, 1, backing.closed)
	assert.Equal(t, 0, f.Refs())
}

func TestWriteKeepsHandlePosition(t *testing.T) {
	raw := build(t, map[string][]byte{"TESTCHNK": []byte("0123456789")}, nil)
	c, err := Open(filesystem.NewMemFile(raw))
	require.NoError(t, err)
	f, err := c.GetFile("TESTCHNK")
	require.NoError(t, err)
	defer f.Close()

	b := make([]byte, 3)
	_, err = io.ReadFull(f, b)
	require.NoError(t, err)
	out := filesystem.NewMemFile(nil)
	require.NoError(t, c.Write(out))
	assert.Equal(t, raw, out.Bytes())

	_, err = io.ReadFull(f, b)
	require.NoError(t, err)
	assert.Equal(t, "345", string(b))
}

func TestTruncated(t *testing.T) {
	raw := build(t, map[string][]byte{"TESTCHNK": make([]byte, 64)}, nil)
	_, err := Open(filesystem.NewMemFile(raw[:headerSize-10]))
	assert.ErrorIs(t, err, qerr.ErrFormat)
}

func TestCreateDelete(t *testing.T) {
	c := New()
	f, err := c.CreateFile("GAMESYS", 0, 1)
	require.NoError(t, err)
	_, err = c.CreateFile("GAMESYS", 0, 1)
	assert.ErrorIs(t, err, qerr.ErrAlreadyExists)

	_, err = f.Write([]byte("dark"))
	require.NoError(t, err)

	g, err := c.GetFile("GAMESYS")
	require.NoError(t, err)
	assert.Equal(t, 3, g.Refs())

	require.NoError(t, f.Close())
	require.NoError(t, c.DeleteFile("GAMESYS"))
	assert.False(t, c.HasFile("GAMESYS"))
	assert.Equal(t, 1, g.Refs())
	got, err := filesystem.ReadAll(g)
	require.NoError(t, err)
	assert.Equal(t, "dark", string(got))
	require.NoError(t, g.Close())
	assert.EqualValues(t, 0, g.Size())
	assert.ErrorIs(t, g.Close(), os.ErrClosed)
	assert.Equal(t, 0, g.Refs())

	assert.ErrorIs(t, c.DeleteFile("GAMESYS"), qerr.ErrNotFound)
	_, err = c.GetFile("GAMESYS")
	assert.ErrorIs(t, err, qerr.ErrNotFound)
	_, err = c.FileHeader("GAMESYS")
	assert.ErrorIs(t, err, qerr.ErrNotFound)
}
