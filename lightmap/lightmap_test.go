// SPDX-License-Identifier: GPL-2.0-or-later

package lightmap

import (
	"image/color"
	"testing"

	"godark/qerr"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		f    Format
		data []byte
		want Pixel
	}{
		{Gray8, []byte{0x42}, Pixel{0x42, 0x42, 0x42}},
		{BGR16, []byte{0xff, 0x7f}, Pixel{255, 255, 255}},
		{BGR16, []byte{0x1f, 0x00}, Pixel{255, 0, 0}},
		{BGR16, []byte{0xe0, 0x03}, Pixel{0, 255, 0}},
		{BGR16, []byte{0x00, 0x04}, Pixel{0, 0, 8}},
		{BGR16, []byte{0x10, 0x00}, Pixel{132, 0, 0}},
	}
	for _, tc := range tests {
		px, err := Decode(tc.f, 1, 1, tc.data)
		require.NoError(t, err)
		if px[0] != tc.want {
			t.Errorf("Decode(%v, %x) = %v, want %v", tc.f, tc.data, px[0], tc.want)
		}
	}
	_, err := Decode(BGR16, 2, 2, make([]byte, 4))
	assert.ErrorIs(t, err, qerr.ErrFormat)
}

func TestComposite(t *testing.T) {
	lm, err := NewFromPixels(1, 1, 0, []Pixel{{10, 20, 30}})
	require.NoError(t, err)
	require.NoError(t, lm.AddLightPixels(7, []Pixel{{300, 300, 300}}))
	assert.ErrorIs(t, lm.AddLightPixels(7, []Pixel{{1, 1, 1}}), qerr.ErrAlreadyExists)

	tests := []struct {
		intensity float32
		want      Pixel
	}{
		{0, Pixel{10, 20, 30}},
		{0.5, Pixel{160, 170, 180}},
		{1, Pixel{255, 255, 255}},
		{-1, Pixel{10, 20, 30}},
		{3, Pixel{255, 255, 255}},
	}
	for _, tc := range tests {
		require.True(t, lm.SetIntensity(7, tc.intensity))
		if got := lm.At(0, 0); got != tc.want {
			t.Errorf("intensity %v = %v, want %v", tc.intensity, got, tc.want)
		}
	}
	assert.False(t, lm.SetIntensity(8, 1))
}

func TestNewValidates(t *testing.T) {
	_, err := New(2, 2, 0, Gray8, []byte{1, 2, 3})
	assert.ErrorIs(t, err, qerr.ErrFormat)
	_, err = NewFromPixels(0, 1, 0, nil)
	assert.ErrorIs(t, err, qerr.ErrFormat)

	lm, err := New(2, 1, 0, Gray8, []byte{1, 2})
	require.NoError(t, err)
	assert.ErrorIs(t, lm.AddLight(1, Gray8, []byte{1}), qerr.ErrFormat)
	assert.Equal(t, []Pixel{{1, 1, 1}, {2, 2, 2}}, lm.Pixels())
}

func gray(t *testing.T, w, h, tag int, v byte) *Lightmap {
	t.Helper()
	data := make([]byte, w*h)
	for i := range data {
		data[i] = v
	}
	lm, err := New(w, h, tag, Gray8, data)
	require.NoError(t, err)
	return lm
}

func TestAtlasSharedTag(t *testing.T) {
	l := NewAtlasList(8, 8)
	a := gray(t, 4, 4, 1, 10)
	b := gray(t, 4, 4, 1, 20)
	c := gray(t, 4, 4, 2, 30)
	for _, lm := range []*Lightmap{a, b, c} {
		require.NoError(t, l.Add(lm))
	}
	require.NoError(t, l.Build())
	require.Len(t, l.Atlases(), 1)
	at := l.Atlases()[0]
	assert.True(t, at.HasTag(1))
	assert.True(t, at.HasTag(2))
	assert.Same(t, at, a.Atlas())
	assert.Same(t, at, c.Atlas())
	assert.Equal(t, 0, l.Pending())
}

func TestAtlasTagPreference(t *testing.T) {
	l := NewAtlasList(8, 8)
	q := gray(t, 8, 6, 2, 1)
	p := gray(t, 8, 5, 1, 2)
	r := gray(t, 8, 2, 1, 3)
	s := gray(t, 8, 2, 3, 4)
	for _, lm := range []*Lightmap{r, s, p, q} {
		require.NoError(t, l.Add(lm))
	}
	require.NoError(t, l.Build())
	require.Len(t, l.Atlases(), 2)
	assert.Same(t, p.Atlas(), r.Atlas())
	assert.Same(t, q.Atlas(), s.Atlas())
	assert.NotSame(t, q.Atlas(), p.Atlas())
}

func TestAtlasTooLarge(t *testing.T) {
	l := NewAtlasList(4, 8)
	err := l.Add(gray(t, 16, 1, 0, 0))
	assert.ErrorIs(t, err, qerr.ErrFormat)
}

func TestAtlasGrow(t *testing.T) {
	l := NewAtlasList(4, 16)
	var lms []*Lightmap
	for i := 0; i < 8; i++ {
		lm := gray(t, 4, 4, i, byte(i))
		lms = append(lms, lm)
		require.NoError(t, l.Add(lm))
	}
	require.NoError(t, l.Build())
	require.Len(t, l.Atlases(), 1)
	at := l.Atlases()[0]
	used, total := at.Usage()
	assert.Equal(t, 8*16, used)
	assert.GreaterOrEqual(t, total, used)
	for i, lm := range lms {
		for j := i + 1; j < len(lms); j++ {
			assert.False(t, lm.Rect().Overlaps(lms[j].Rect()))
		}
	}
}

func TestAtlasOnlyNewestGrows(t *testing.T) {
	l := NewAtlasList(4, 8)
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Add(gray(t, 4, 4, 0, 1)))
	}
	require.NoError(t, l.Build())
	require.Len(t, l.Atlases(), 1)
	first := l.Atlases()[0]

	// A 2x8 strip does not fit the full first atlas, so a second one is
	// opened. Later small lightmaps go there instead of growing the first.
	strip := gray(t, 2, 8, 1, 2)
	small := gray(t, 2, 2, 2, 3)
	require.NoError(t, l.Add(strip))
	require.NoError(t, l.Add(small))
	require.NoError(t, l.Build())
	require.Len(t, l.Atlases(), 2)
	second := l.Atlases()[1]
	assert.Same(t, second, strip.Atlas())
	assert.Same(t, second, small.Atlas())
	assert.Equal(t, 8, first.Width())
	assert.Equal(t, 8, first.Height())
	assert.Len(t, first.Lightmaps(), 4)
}

func TestRenderAndReblit(t *testing.T) {
	l := NewAtlasList(8, 8)
	lit := gray(t, 2, 2, 0, 10)
	require.NoError(t, lit.AddLight(3, Gray8, []byte{100, 100, 100, 100}))
	other := gray(t, 2, 2, 0, 50)
	require.NoError(t, l.Add(lit))
	require.NoError(t, l.Add(other))
	require.NoError(t, l.Build())

	at := lit.Atlas()
	img := at.Image()
	require.NotNil(t, img)
	assert.Equal(t, 8, img.Bounds().Dx())
	r := lit.Rect()
	assert.Equal(t, color.NRGBA{110, 110, 110, 255}, img.NRGBAAt(r.X, r.Y))
	o := other.Rect()
	assert.Equal(t, color.NRGBA{50, 50, 50, 255}, img.NRGBAAt(o.X+1, o.Y+1))

	touched := l.SetIntensity(3, 0)
	assert.Equal(t, []*Atlas{at}, touched)
	assert.Equal(t, color.NRGBA{10, 10, 10, 255}, img.NRGBAAt(r.X+1, r.Y+1))
	assert.Equal(t, color.NRGBA{50, 50, 50, 255}, img.NRGBAAt(o.X, o.Y))
	assert.Empty(t, l.SetIntensity(4, 1))
}

func TestSetIntensityLateLight(t *testing.T) {
	l := NewAtlasList(4, 4)
	lm := gray(t, 2, 2, 0, 10)
	require.NoError(t, l.Add(lm))
	require.NoError(t, lm.AddLight(7, Gray8, []byte{40, 40, 40, 40}))
	require.NoError(t, l.Build())

	img := lm.Atlas().Image()
	r := lm.Rect()
	assert.Equal(t, color.NRGBA{50, 50, 50, 255}, img.NRGBAAt(r.X, r.Y))
	assert.Equal(t, []*Atlas{lm.Atlas()}, l.SetIntensity(7, 0))
	assert.Equal(t, color.NRGBA{10, 10, 10, 255}, img.NRGBAAt(r.X, r.Y))
}

func TestEmptyAtlasRender(t *testing.T) {
	a := newAtlas(4, 4)
	a.Render()
	assert.Nil(t, a.Image())
}

func TestMapUV(t *testing.T) {
	l := NewAtlasList(8, 8)
	q := gray(t, 8, 6, 0, 1)
	r := gray(t, 8, 2, 0, 1)
	require.NoError(t, l.Add(q))
	require.NoError(t, l.Add(r))
	require.NoError(t, l.Build())
	require.Equal(t, 6, r.Rect().Y)

	got := r.MapUV(mgl32.Vec2{0.5, 0.5})
	assert.InDelta(t, 0.5, got.X(), 1e-6)
	assert.InDelta(t, 0.875, got.Y(), 1e-6)

	got = q.MapUV(mgl32.Vec2{1, 1})
	assert.InDelta(t, 1, got.X(), 1e-6)
	assert.InDelta(t, 0.75, got.Y(), 1e-6)

	unplaced := gray(t, 1, 1, 0, 0)
	assert.Equal(t, mgl32.Vec2{0.25, 0.5}, unplaced.MapUV(mgl32.Vec2{0.25, 0.5}))
}
