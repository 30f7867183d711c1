// SPDX-License-Identifier: GPL-2.0-or-later

// Package lightmap composites static and animated light bitmaps and packs
// them into atlas images.
package lightmap

import (
	"godark/math"
	"godark/qerr"
	"godark/rectpack"

	"github.com/go-gl/mathgl/mgl32"
)

type variant struct {
	light  int
	pixels []Pixel
	weight uint32 // 8.8 fraction
}

// Lightmap is the light of one surface: a static bitmap plus one variant
// bitmap per animated light touching the surface.
type Lightmap struct {
	width, height int
	tag           int
	static        []Pixel
	variants      []variant
	pixels        []Pixel

	atlas *Atlas
	rect  rectpack.Rect
}

// New creates a lightmap from w*h raw samples. tag groups lightmaps that
// should end up in the same atlas, usually the surface texture.
func New(w, h, tag int, f Format, data []byte) (*Lightmap, error) {
	px, err := Decode(f, w, h, data)
	if err != nil {
		return nil, err
	}
	return NewFromPixels(w, h, tag, px)
}

func NewFromPixels(w, h, tag int, static []Pixel) (*Lightmap, error) {
	if w <= 0 || h <= 0 {
		return nil, qerr.Format("lightmap size %dx%d", w, h)
	}
	if len(static) != w*h {
		return nil, qerr.Format("lightmap %dx%d with %d pixels", w, h, len(static))
	}
	lm := &Lightmap{
		width:  w,
		height: h,
		tag:    tag,
		static: append([]Pixel(nil), static...),
	}
	lm.composite()
	return lm, nil
}

// AddLight adds the raw variant bitmap of an animated light. New variants
// start at full intensity.
func (lm *Lightmap) AddLight(light int, f Format, data []byte) error {
	px, err := Decode(f, lm.width, lm.height, data)
	if err != nil {
		return err
	}
	return lm.AddLightPixels(light, px)
}

func (lm *Lightmap) AddLightPixels(light int, px []Pixel) error {
	if len(px) != len(lm.static) {
		return qerr.Format("light %d variant with %d pixels, want %d", light, len(px), len(lm.static))
	}
	for _, v := range lm.variants {
		if v.light == light {
			return qerr.AlreadyExists("light %d in lightmap", light)
		}
	}
	lm.variants = append(lm.variants, variant{
		light:  light,
		pixels: append([]Pixel(nil), px...),
		weight: 256,
	})
	lm.composite()
	return nil
}

func (lm *Lightmap) Width() int  { return lm.width }
func (lm *Lightmap) Height() int { return lm.height }
func (lm *Lightmap) Tag() int    { return lm.tag }
func (lm *Lightmap) Area() int   { return lm.width * lm.height }

// Lights returns the ids of the animated lights in insertion order.
func (lm *Lightmap) Lights() []int {
	ids := make([]int, len(lm.variants))
	for i, v := range lm.variants {
		ids[i] = v.light
	}
	return ids
}

// Pixels returns the composited bitmap. It must not be modified.
func (lm *Lightmap) Pixels() []Pixel {
	return lm.pixels
}

// At returns the composited pixel at x, y.
func (lm *Lightmap) At(x, y int) Pixel {
	return lm.pixels[y*lm.width+x]
}

// Weight converts an intensity into the 8.8 fixed point weight used for
// compositing.
func Weight(intensity float32) uint32 {
	return uint32(math.Clamp(0, int(intensity*256), 256))
}

// SetIntensity changes the weight of light and recomposites. It reports
// false if the light does not touch this lightmap.
func (lm *Lightmap) SetIntensity(light int, intensity float32) bool {
	for i := range lm.variants {
		v := &lm.variants[i]
		if v.light != light {
			continue
		}
		v.weight = Weight(intensity)
		lm.composite()
		return true
	}
	return false
}

func (lm *Lightmap) composite() {
	if lm.pixels == nil {
		lm.pixels = make([]Pixel, len(lm.static))
	}
	for i, s := range lm.static {
		r, g, b := uint32(s.R), uint32(s.G), uint32(s.B)
		for _, v := range lm.variants {
			p := v.pixels[i]
			r += (uint32(p.R) * v.weight) >> 8
			g += (uint32(p.G) * v.weight) >> 8
			b += (uint32(p.B) * v.weight) >> 8
		}
		lm.pixels[i] = Pixel{clampChannel(r), clampChannel(g), clampChannel(b)}
	}
}

// Atlas returns the atlas holding the lightmap, nil before placement.
func (lm *Lightmap) Atlas() *Atlas {
	return lm.atlas
}

// Rect returns the placement inside the atlas.
func (lm *Lightmap) Rect() rectpack.Rect {
	return lm.rect
}

// MapUV converts uv from the 0-1 space of the lightmap into atlas space.
// Unplaced lightmaps return uv unchanged.
func (lm *Lightmap) MapUV(uv mgl32.Vec2) mgl32.Vec2 {
	if lm.atlas == nil {
		return uv
	}
	aw := float32(lm.atlas.Width())
	ah := float32(lm.atlas.Height())
	return mgl32.Vec2{
		uv.X()*float32(lm.rect.W)/aw + float32(lm.rect.X)/aw,
		uv.Y()*float32(lm.rect.H)/ah + float32(lm.rect.Y)/ah,
	}
}
