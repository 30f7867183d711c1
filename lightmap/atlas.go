// SPDX-License-Identifier: GPL-2.0-or-later

package lightmap

import (
	"image"
	"image/color"
	"log/slog"
	"slices"

	"godark/math"
	"godark/qerr"
	"godark/rectpack"

	"github.com/google/uuid"
)

// Atlas is one image holding many lightmaps.
type Atlas struct {
	ID        uuid.UUID
	packer    *rectpack.Packer
	maxEdge   int
	tags      map[int]bool
	lightmaps []*Lightmap
	img       *image.NRGBA
}

func newAtlas(edge, maxEdge int) *Atlas {
	return &Atlas{
		ID:      uuid.Must(uuid.NewV7()),
		packer:  rectpack.New(edge, edge),
		maxEdge: maxEdge,
		tags:    make(map[int]bool),
	}
}

func (a *Atlas) Width() int  { return a.packer.Width() }
func (a *Atlas) Height() int { return a.packer.Height() }

// HasTag reports whether a lightmap with tag was placed in a.
func (a *Atlas) HasTag(tag int) bool {
	return a.tags[tag]
}

func (a *Atlas) Lightmaps() []*Lightmap {
	return a.lightmaps
}

// Image returns the atlas surface, nil before the first Render.
func (a *Atlas) Image() *image.NRGBA {
	return a.img
}

// Usage returns the allocated and total area of the atlas.
func (a *Atlas) Usage() (used, total int) {
	return a.packer.LeafArea(), a.packer.Area()
}

// insert places lm. With grow set the packer doubles up to maxEdge until
// lm fits.
func (a *Atlas) insert(lm *Lightmap, grow bool) bool {
	for {
		if r, ok := a.packer.Allocate(lm.width, lm.height); ok {
			lm.atlas = a
			lm.rect = r
			a.lightmaps = append(a.lightmaps, lm)
			a.tags[lm.tag] = true
			return true
		}
		if !grow || 2*min(a.packer.Width(), a.packer.Height()) > a.maxEdge {
			return false
		}
		a.packer.Grow()
	}
}

// Render allocates the surface at the current packer size and blits all
// lightmaps. An empty atlas keeps no surface.
func (a *Atlas) Render() {
	if len(a.lightmaps) == 0 {
		a.img = nil
		return
	}
	r := image.Rect(0, 0, a.packer.Width(), a.packer.Height())
	if a.img == nil || a.img.Rect != r {
		a.img = image.NewNRGBA(r)
	} else {
		clear(a.img.Pix)
	}
	for _, lm := range a.lightmaps {
		a.blit(lm)
	}
}

func (a *Atlas) blit(lm *Lightmap) {
	if a.img == nil {
		return
	}
	for y := 0; y < lm.height; y++ {
		for x := 0; x < lm.width; x++ {
			p := lm.At(x, y)
			a.img.SetNRGBA(lm.rect.X+x, lm.rect.Y+y, color.NRGBA{
				R: uint8(p.R),
				G: uint8(p.G),
				B: uint8(p.B),
				A: 255,
			})
		}
	}
}

// AtlasList collects lightmaps and distributes them over as few atlases
// as possible.
type AtlasList struct {
	initialEdge int
	maxEdge     int
	pending     []*Lightmap
	atlases     []*Atlas
}

// NewAtlasList creates a builder whose atlases start at initialEdge and
// never grow beyond maxEdge.
func NewAtlasList(initialEdge, maxEdge int) *AtlasList {
	return &AtlasList{
		initialEdge: max(1, initialEdge),
		maxEdge:     maxEdge,
	}
}

// Add queues lm for the next Build. Lightmaps larger than the maximal
// atlas can never be placed and are rejected.
func (l *AtlasList) Add(lm *Lightmap) error {
	if lm.width > l.maxEdge || lm.height > l.maxEdge {
		return qerr.Format("lightmap %dx%d exceeds atlas limit %d", lm.width, lm.height, l.maxEdge)
	}
	l.pending = append(l.pending, lm)
	return nil
}

func (l *AtlasList) Atlases() []*Atlas {
	return l.atlases
}

// Pending returns the number of lightmaps waiting for Build.
func (l *AtlasList) Pending() int {
	return len(l.pending)
}

// Build places all pending lightmaps and renders every atlas.
func (l *AtlasList) Build() error {
	slices.SortStableFunc(l.pending, func(a, b *Lightmap) int {
		return b.Area() - a.Area()
	})
	largest := 0
	for _, lm := range l.pending {
		largest = max(largest, lm.width, lm.height)
	}
	for i, lm := range l.pending {
		if !l.place(lm, largest) {
			l.pending = l.pending[i:]
			return qerr.Format("no atlas space for %dx%d lightmap", lm.width, lm.height)
		}
	}
	l.pending = nil
	for _, a := range l.atlases {
		a.Render()
		used, total := a.Usage()
		slog.Debug("Lightmap atlas", slog.String("atlas", a.ID.String()),
			slog.Int("width", a.Width()), slog.Int("height", a.Height()),
			slog.Int("lightmaps", len(a.lightmaps)), slog.Int("used", used), slog.Int("area", total))
	}
	return nil
}

// place tries the atlases already holding the tag, then any atlas, then a
// new one. Only the newest atlas grows; the older ones were closed when it
// was created.
func (l *AtlasList) place(lm *Lightmap, largest int) bool {
	for i, a := range l.atlases {
		if a.HasTag(lm.tag) && a.insert(lm, i == len(l.atlases)-1) {
			return true
		}
	}
	for i, a := range l.atlases {
		if !a.HasTag(lm.tag) && a.insert(lm, i == len(l.atlases)-1) {
			return true
		}
	}
	edge := math.Clamp(1, math.NextPow2(max(l.initialEdge, largest)), l.maxEdge)
	a := newAtlas(edge, l.maxEdge)
	if !a.insert(lm, true) {
		return false
	}
	l.atlases = append(l.atlases, a)
	return true
}

// SetIntensity changes an animated light on every queued and placed
// lightmap and reblits the placed ones. It returns the atlases whose
// surface changed.
func (l *AtlasList) SetIntensity(light int, intensity float32) []*Atlas {
	for _, lm := range l.pending {
		lm.SetIntensity(light, intensity)
	}
	var touched []*Atlas
	for _, a := range l.atlases {
		changed := false
		for _, lm := range a.lightmaps {
			if lm.SetIntensity(light, intensity) {
				a.blit(lm)
				changed = true
			}
		}
		if changed {
			touched = append(touched, a)
		}
	}
	return touched
}
