// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godark/qerr"
)

func TestRegister(t *testing.T) {
	cv := MustRegister("test_register", "1.5", ARCHIVE)
	assert.Equal(t, float32(1.5), cv.Value())
	assert.True(t, cv.Bool())
	_, err := Register("test_register", "2", NONE)
	assert.ErrorIs(t, err, qerr.ErrAlreadyExists)

	cv.SetValue(3)
	assert.Equal(t, "3", cv.String())
	cv.Reset()
	assert.Equal(t, "1.5", cv.String())

	rom := MustRegister("test_rom", "7", ROM)
	rom.SetByString("8")
	assert.Equal(t, "7", rom.String())

	assert.ErrorIs(t, Set("test_missing", "1"), qerr.ErrNotFound)
}

func TestCallback(t *testing.T) {
	cv := MustRegister("test_callback", "0", NONE)
	var got []string
	cv.SetCallback(func(c *Cvar) { got = append(got, c.String()) })
	require.NoError(t, Set("test_callback", "4"))
	assert.Equal(t, []string{"4"}, got)
}

func TestLoadTOML(t *testing.T) {
	flat := MustRegister("toml_flat", "0", NONE)
	nested := MustRegister("toml_section_size", "0", NONE)
	flag := MustRegister("toml_section_enabled", "1", NONE)
	doc := `
toml_flat = 0.25
unknown_key = "x"

[toml_section]
size = 512
enabled = false
`
	require.NoError(t, LoadTOML(strings.NewReader(doc)))
	assert.Equal(t, float32(0.25), flat.Value())
	assert.Equal(t, "512", nested.String())
	assert.False(t, flag.Bool())

	err := LoadTOML(strings.NewReader("= broken"))
	assert.ErrorIs(t, err, qerr.ErrFormat)
}

func TestList(t *testing.T) {
	MustRegister("test_list", "abc", ARCHIVE)
	var b bytes.Buffer
	require.NoError(t, List(&b))
	assert.Contains(t, b.String(), "* test_list \"abc\"\n")
}
