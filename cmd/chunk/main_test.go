// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"godark/chunk"
	"godark/qerr"
)

var payload = []byte("0123456789abcdef")

func container(t *testing.T) *chunk.Container {
	c := chunk.New()
	f, err := c.CreateFile("TESTCHNK", 1, 0)
	require.NoError(t, err)
	_, err = f.Write(payload)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	f, err = c.CreateFile("WR", 0, 23)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return c
}

func TestList(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, list(&b, container(t)))
	want := "TESTCHNK             16  1.0\n" +
		"WR                    0  0.23\n"
	assert.Equal(t, want, b.String())
}

func TestListJSON(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, listJSON(&b, container(t)))
	var s structpb.Struct
	require.NoError(t, protojson.Unmarshal(b.Bytes(), &s))
	chunks := s.AsMap()["chunks"].([]interface{})
	require.Len(t, chunks, 2)
	first := chunks[0].(map[string]interface{})
	assert.Equal(t, "TESTCHNK", first["name"])
	assert.Equal(t, float64(16), first["size"])
	assert.Equal(t, float64(1), first["major"])
}

func TestExtract(t *testing.T) {
	c := container(t)
	out := filepath.Join(t.TempDir(), "chunk.bin")
	require.NoError(t, extract(c, "TESTCHNK", out))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	assert.ErrorIs(t, extract(c, "MISSING", out), qerr.ErrNotFound)
}
