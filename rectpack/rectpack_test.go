// SPDX-License-Identifier: GPL-2.0-or-later

package rectpack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkPlacements(t *testing.T, p *Packer, rects []Rect) {
	t.Helper()
	area := Rect{W: p.Width(), H: p.Height()}
	sum := 0
	for i, r := range rects {
		assert.Truef(t, area.Contains(r), "rect %d %v outside %v", i, r, area)
		for j := i + 1; j < len(rects); j++ {
			assert.Falsef(t, r.Overlaps(rects[j]), "rect %d %v overlaps %d %v", i, r, j, rects[j])
		}
		sum += r.Area()
	}
	assert.Equal(t, sum, p.LeafArea())
}

func TestAllocateExactFit(t *testing.T) {
	p := New(16, 16)
	r, ok := p.Allocate(16, 16)
	require.True(t, ok)
	assert.Equal(t, Rect{0, 0, 16, 16}, r)
	_, ok = p.Allocate(1, 1)
	assert.False(t, ok)
}

func TestAllocateSplitDirection(t *testing.T) {
	// dw 12 > dh 0 splits vertically
	p := New(16, 4)
	r, ok := p.Allocate(4, 4)
	require.True(t, ok)
	assert.Equal(t, Rect{0, 0, 4, 4}, r)
	a, b := p.Root().Children()
	assert.Equal(t, Rect{0, 0, 4, 4}, a.Rect)
	assert.Equal(t, Rect{4, 0, 12, 4}, b.Rect)

	// dw == dh splits horizontally
	p = New(8, 8)
	_, ok = p.Allocate(4, 4)
	require.True(t, ok)
	a, b = p.Root().Children()
	assert.Equal(t, Rect{0, 0, 8, 4}, a.Rect)
	assert.Equal(t, Rect{0, 4, 8, 4}, b.Rect)
}

func TestAllocateRejects(t *testing.T) {
	p := New(8, 8)
	tests := []struct{ w, h int }{{0, 1}, {1, 0}, {-1, 2}, {9, 1}, {1, 9}}
	for _, tc := range tests {
		if _, ok := p.Allocate(tc.w, tc.h); ok {
			t.Errorf("Allocate(%d, %d) succeeded, want failure", tc.w, tc.h)
		}
	}
	assert.Equal(t, 0, p.LeafArea())
}

func TestFill(t *testing.T) {
	p := New(8, 8)
	var rects []Rect
	for i := 0; i < 16; i++ {
		r, ok := p.Allocate(2, 2)
		require.Truef(t, ok, "allocation %d", i)
		rects = append(rects, r)
	}
	_, ok := p.Allocate(1, 1)
	assert.False(t, ok)
	checkPlacements(t, p, rects)
	assert.Equal(t, p.Area(), p.LeafArea())
}

func TestGrow(t *testing.T) {
	p := New(4, 4)
	first, ok := p.Allocate(4, 4)
	require.True(t, ok)

	p.Grow()
	assert.Equal(t, 8, p.Width())
	assert.Equal(t, 4, p.Height())
	p.Grow()
	assert.Equal(t, 8, p.Width())
	assert.Equal(t, 8, p.Height())

	rects := []Rect{first}
	for {
		r, ok := p.Allocate(4, 4)
		if !ok {
			break
		}
		rects = append(rects, r)
	}
	assert.Len(t, rects, 4)
	assert.Equal(t, Rect{0, 0, 4, 4}, rects[0])
	checkPlacements(t, p, rects)
}

func TestRandomPacking(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	p := New(64, 64)
	var rects []Rect
	for i := 0; i < 200; i++ {
		w, h := 1+rnd.Intn(16), 1+rnd.Intn(16)
		r, ok := p.Allocate(w, h)
		for !ok && p.Width() < 1024 {
			p.Grow()
			r, ok = p.Allocate(w, h)
		}
		require.True(t, ok)
		assert.Equal(t, w, r.W)
		assert.Equal(t, h, r.H)
		rects = append(rects, r)
	}
	checkPlacements(t, p, rects)

	n := 0
	p.Root().Leafs(func(*Node) { n++ })
	assert.Equal(t, len(rects), n)
}
