// SPDX-License-Identifier: GPL-2.0-or-later

package lightmap

import (
	"fmt"

	"godark/qerr"
)

// MaxChannel is the saturation value of a composited channel.
const MaxChannel = 255

// Pixel is one RGB sample. Channels are wider than a byte so variant
// bitmaps can carry values above MaxChannel.
type Pixel struct {
	R, G, B uint16
}

// Format is the on-disk encoding of lightmap samples.
type Format int

const (
	// Gray8 is one intensity byte per sample.
	Gray8 Format = iota
	// BGR16 is xBBBBBGGGGGRRRRR, little endian.
	BGR16
)

// Depth returns the bytes per sample.
func (f Format) Depth() int {
	if f == BGR16 {
		return 2
	}
	return 1
}

func (f Format) String() string {
	switch f {
	case Gray8:
		return "gray8"
	case BGR16:
		return "bgr16"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func expand5(c uint16) uint16 {
	c &= 0x1f
	return c<<3 | c>>2
}

// Decode converts w*h raw samples.
func Decode(f Format, w, h int, data []byte) ([]Pixel, error) {
	n := w * h
	if len(data) != n*f.Depth() {
		return nil, qerr.Format("%s lightmap %dx%d needs %d bytes, got %d", f, w, h, n*f.Depth(), len(data))
	}
	px := make([]Pixel, n)
	switch f {
	case Gray8:
		for i, v := range data {
			c := uint16(v)
			px[i] = Pixel{c, c, c}
		}
	case BGR16:
		for i := range px {
			v := uint16(data[2*i]) | uint16(data[2*i+1])<<8
			px[i] = Pixel{
				R: expand5(v),
				G: expand5(v >> 5),
				B: expand5(v >> 10),
			}
		}
	default:
		return nil, qerr.UnsupportedLayout("lightmap format %s", f)
	}
	return px, nil
}

func clampChannel(c uint32) uint16 {
	if c > MaxChannel {
		return MaxChannel
	}
	return uint16(c)
}
