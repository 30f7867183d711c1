// SPDX-License-Identifier: GPL-2.0-or-later

// Package worldrep loads the world representation of a mission: cells,
// the portals connecting them, their lightmaps and the BSP over the cells.
package worldrep

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"godark/chunk"
	"godark/cvars"
	"godark/filesystem"
	"godark/lightmap"
	"godark/math/vec"
	"godark/qerr"
)

const (
	// ChunkGray holds 8 bit grayscale lightmaps.
	ChunkGray = "WR"
	// ChunkRGB holds 16 bit colored lightmaps.
	ChunkRGB = "WRRGB"
)

// Portal is a directed connection between two cells.
type Portal struct {
	From    int
	To      int
	Polygon int // index into the polygons of From
	Plane   int // index into the planes of From
	Center  vec.Vec3
}

// Node is either *Split or *Leaf.
type Node interface {
	node()
}

type Split struct {
	Plane *Plane
	Front Node
	Back  Node
}

type Leaf struct {
	Cell int
}

func (*Split) node() {}
func (*Leaf) node()  {}

type World struct {
	Cells   []*Cell
	Portals []Portal
	// Planes are the BSP planes.
	Planes []Plane
	Root   Node
	Format lightmap.Format
}

type Options struct {
	// Atlases receives all lightmaps if set.
	Atlases *lightmap.AtlasList
	// Strict fails on bytes after the BSP instead of logging them.
	Strict bool
}

// DefaultOptions builds the options from the registered cvars.
func DefaultOptions() Options {
	return Options{
		Atlases: lightmap.NewAtlasList(
			int(cvars.LightmapAtlasInitial.Value()),
			int(cvars.LightmapAtlasMax.Value())),
		Strict: cvars.WorldStrict.Bool(),
	}
}

// Load reads the world representation from c. The colored chunk wins if
// both are present.
func Load(c *chunk.Container, opts Options) (*World, error) {
	name, format := ChunkRGB, lightmap.BGR16
	if !c.HasFile(name) {
		name, format = ChunkGray, lightmap.Gray8
	}
	f, err := c.GetFile(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	w, err := Decode(bufio.NewReader(io.NewSectionReader(f, 0, f.Size())), f.Size(), format, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "chunk %s", name)
	}
	return w, nil
}

// Decode reads a world representation stream of size bytes.
func Decode(r io.Reader, size int64, format lightmap.Format, opts Options) (*World, error) {
	lr := &io.LimitedReader{R: r, N: size}
	var h streamHeader
	if err := filesystem.ReadStruct(lr, &h); err != nil {
		return nil, err
	}
	if err := fits(lr, h.CellCount, minCellSize, "cells"); err != nil {
		return nil, err
	}
	w := &World{
		Cells:  make([]*Cell, 0, h.CellCount),
		Format: format,
	}
	for i := 0; i < int(h.CellCount); i++ {
		c, err := readCell(lr, i, format)
		if err != nil {
			return nil, errors.Wrapf(err, "cell %d", i)
		}
		w.Cells = append(w.Cells, c)
	}
	if err := w.linkPortals(); err != nil {
		return nil, err
	}
	if err := w.readBSP(lr); err != nil {
		return nil, errors.Wrap(err, "bsp")
	}
	if err := trailing(lr, opts.Strict); err != nil {
		return nil, err
	}
	if opts.Atlases != nil {
		for _, c := range w.Cells {
			for _, lm := range c.Lightmaps {
				if err := opts.Atlases.Add(lm); err != nil {
					return nil, errors.Wrapf(err, "cell %d", c.Index)
				}
			}
		}
		if err := opts.Atlases.Build(); err != nil {
			return nil, err
		}
	}
	slog.Debug("World loaded", slog.Int("cells", len(w.Cells)), slog.Int("portals", len(w.Portals)))
	return w, nil
}

// fits rejects count records of size bytes when fewer bytes are left.
func fits(r *io.LimitedReader, count uint32, size int64, what string) error {
	if int64(count)*size > r.N {
		return qerr.Format("%d %s of %d bytes exceed the %d bytes left", count, what, size, r.N)
	}
	return nil
}

func trailing(r io.Reader, strict bool) error {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return qerr.IO("read trailer", err)
	}
	if n == 0 {
		return nil
	}
	if strict {
		return qerr.Format("%d bytes after world representation", n)
	}
	slog.Warn("Trailing bytes after world representation", slog.Int64("want", 0), slog.Int64("got", n))
	return nil
}

func (w *World) linkPortals() error {
	for _, c := range w.Cells {
		first := c.FirstPortal()
		for i, p := range c.Portals() {
			if p.Target >= len(w.Cells) {
				return qerr.Format("cell %d portal %d leads to cell %d of %d", c.Index, i, p.Target, len(w.Cells))
			}
			w.Portals = append(w.Portals, Portal{
				From:    c.Index,
				To:      p.Target,
				Polygon: first + i,
				Plane:   p.Plane,
				Center:  c.PolygonCenter(first + i),
			})
		}
	}
	return nil
}

func (w *World) readBSP(r *io.LimitedReader) error {
	n, err := filesystem.ReadUint32(r)
	if err != nil {
		return err
	}
	if err := fits(r, n, planeSize, "planes"); err != nil {
		return err
	}
	planes := make([]planeRecord, n)
	if err := filesystem.ReadStruct(r, planes); err != nil {
		return err
	}
	w.Planes = make([]Plane, len(planes))
	for i, p := range planes {
		if w.Planes[i], err = planeFrom(p); err != nil {
			return errors.Wrapf(err, "plane %d", i)
		}
	}
	if n, err = filesystem.ReadUint32(r); err != nil {
		return err
	}
	if err := fits(r, n, nodeSize, "nodes"); err != nil {
		return err
	}
	recs := make([]nodeRecord, n)
	if err := filesystem.ReadStruct(r, recs); err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}
	nodes := make([]Node, len(recs))
	for i, rec := range recs {
		if rec.ParentAndFlags&nodeLeaf != 0 {
			if rec.CellOrPlane < 0 || int(rec.CellOrPlane) >= len(w.Cells) {
				return qerr.Format("leaf %d points to cell %d of %d", i, rec.CellOrPlane, len(w.Cells))
			}
			nodes[i] = &Leaf{Cell: int(rec.CellOrPlane)}
			continue
		}
		if rec.CellOrPlane < 0 || int(rec.CellOrPlane) >= len(w.Planes) {
			return qerr.Format("node %d uses plane %d of %d", i, rec.CellOrPlane, len(w.Planes))
		}
		if int(rec.Front) >= len(recs) || int(rec.Back) >= len(recs) {
			return qerr.Format("node %d children %d/%d of %d", i, rec.Front, rec.Back, len(recs))
		}
		nodes[i] = &Split{Plane: &w.Planes[rec.CellOrPlane]}
	}
	for i, rec := range recs {
		if s, ok := nodes[i].(*Split); ok {
			s.Front = nodes[rec.Front]
			s.Back = nodes[rec.Back]
		}
	}
	w.Root = nodes[0]
	return checkTree(w.Root, len(nodes))
}

// checkTree makes sure every node is reached once so descending always
// ends in a leaf.
func checkTree(root Node, n int) error {
	seen := make(map[Node]bool, n)
	stack := []Node{root}
	for len(stack) > 0 {
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[nd] {
			return qerr.Format("bsp node reached twice")
		}
		seen[nd] = true
		if s, ok := nd.(*Split); ok {
			stack = append(stack, s.Front, s.Back)
		}
	}
	return nil
}

// CellAt returns the cell containing p.
func (w *World) CellAt(p vec.Vec3) (*Cell, bool) {
	if w.Root == nil {
		return nil, false
	}
	n := w.Root
	for {
		switch t := n.(type) {
		case *Leaf:
			return w.Cells[t.Cell], true
		case *Split:
			if t.Plane.Distance(p) >= 0 {
				n = t.Front
			} else {
				n = t.Back
			}
		}
	}
}

// Bounds returns the box around all cells.
func (w *World) Bounds() (mins, maxs vec.Vec3) {
	corners := make([]vec.Vec3, 0, 2*len(w.Cells))
	for _, c := range w.Cells {
		corners = append(corners, c.Mins, c.Maxs)
	}
	return vec.Bounds(corners)
}

// Neighbours returns the portals leaving cell.
func (w *World) Neighbours(cell int) []Portal {
	var ps []Portal
	for _, p := range w.Portals {
		if p.From == cell {
			ps = append(ps, p)
		}
	}
	return ps
}
