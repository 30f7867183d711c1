// SPDX-License-Identifier: GPL-2.0-or-later

package worldrep

import (
	"io"
	"math/bits"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"godark/filesystem"
	"godark/lightmap"
	"godark/math/vec"
	"godark/qerr"
)

type Plane struct {
	Normal vec.Vec3
	Dist   float32
}

// Distance returns the signed distance of p, positive in front.
func (p *Plane) Distance(pt vec.Vec3) float32 {
	return vec.Dot(pt, p.Normal) - p.Dist
}

// planeFrom rescales the stored plane to a unit normal.
func planeFrom(r planeRecord) (Plane, error) {
	n := vec.VFromA(r.Normal)
	l := n.Length()
	if l == 0 {
		return Plane{}, qerr.Format("plane with zero normal")
	}
	return Plane{Normal: n.Normalize(), Dist: r.Dist / l}, nil
}

type Polygon struct {
	Flags  uint8
	Plane  int
	ClutID uint8
	// Target is the cell a portal leads to, -1 for solid polygons.
	Target  int
	Indices []int
}

func (p *Polygon) IsPortal() bool {
	return p.Target >= 0
}

// Texturing maps a textured polygon to its texture and lightmap.
type Texturing struct {
	AxisU        vec.Vec3
	AxisV        vec.Vec3
	U, V         int16
	Texture      int
	OriginVertex int
	CacheID      uint16
	Scale        float32
	Center       vec.Vec3
}

type LightInfo struct {
	U, V          int16
	Stride        int
	Width, Height int
	AnimFlags     uint32
}

// Variants returns the number of bitmaps stored for the face.
func (l *LightInfo) Variants() int {
	return 1 + bits.OnesCount32(l.AnimFlags)
}

// Cell is one convex region of the world.
type Cell struct {
	Index     int
	Medium    uint8
	Flags     uint8
	NXN       int32
	FlowGroup uint8
	Center    vec.Vec3
	Radius    float32

	// Mins and Maxs bound the vertices.
	Mins, Maxs vec.Vec3

	Vertices []vec.Vec3
	// Polygons holds the textured polygons first and the portals last.
	Polygons  []Polygon
	Texturing []Texturing
	Planes    []Plane
	// AnimLights are the light ids of the animated light slots.
	AnimLights   []uint16
	LightInfo    []LightInfo
	Lightmaps    []*lightmap.Lightmap
	LightIndices []uint16

	numPortals int
}

// Portals returns the connecting polygons.
func (c *Cell) Portals() []Polygon {
	return c.Polygons[len(c.Polygons)-c.numPortals:]
}

// FirstPortal returns the polygon index of the first portal.
func (c *Cell) FirstPortal() int {
	return len(c.Polygons) - c.numPortals
}

func readCell(r *io.LimitedReader, index int, format lightmap.Format) (*Cell, error) {
	var h cellHeader
	err := filesystem.ReadStruct(r, &h)
	if err != nil {
		return nil, err
	}
	if h.NumTextured > h.NumPolygons || h.NumPortals > h.NumPolygons {
		return nil, qerr.Format("%d textured and %d portal polygons of %d", h.NumTextured, h.NumPortals, h.NumPolygons)
	}
	c := &Cell{
		Index:      index,
		Medium:     h.Medium,
		Flags:      h.Flags,
		NXN:        h.NXN,
		FlowGroup:  h.FlowGroup,
		Center:     vec.VFromA(h.Center),
		Radius:     h.Radius,
		numPortals: int(h.NumPortals),
	}

	verts := make([][3]float32, h.NumVertices)
	if err := filesystem.ReadStruct(r, verts); err != nil {
		return nil, err
	}
	c.Vertices = make([]vec.Vec3, len(verts))
	for i, v := range verts {
		c.Vertices[i] = vec.VFromA(v)
	}
	c.Mins, c.Maxs = vec.Bounds(c.Vertices)

	polys := make([]polygonRecord, h.NumPolygons)
	if err := filesystem.ReadStruct(r, polys); err != nil {
		return nil, err
	}
	firstPortal := int(h.NumPolygons - h.NumPortals)
	c.Polygons = make([]Polygon, len(polys))
	for i, p := range polys {
		c.Polygons[i] = Polygon{
			Flags:  p.Flags,
			Plane:  int(p.Plane),
			ClutID: p.ClutID,
			Target: -1,
		}
		if i >= firstPortal {
			c.Polygons[i].Target = int(p.TargetCell)
		}
	}

	tex := make([]texturingRecord, h.NumTextured)
	if err := filesystem.ReadStruct(r, tex); err != nil {
		return nil, err
	}
	c.Texturing = make([]Texturing, len(tex))
	for i, t := range tex {
		c.Texturing[i] = Texturing{
			AxisU:        vec.VFromA(t.AxisU),
			AxisV:        vec.VFromA(t.AxisV),
			U:            t.U,
			V:            t.V,
			Texture:      int(t.Texture),
			OriginVertex: int(t.OriginVertex),
			CacheID:      t.CacheID,
			Scale:        t.Scale,
			Center:       vec.VFromA(t.Center),
		}
	}

	if err := c.readIndices(r, polys, int(h.PolyMapSize)); err != nil {
		return nil, err
	}

	planes := make([]planeRecord, h.NumPlanes)
	if err := filesystem.ReadStruct(r, planes); err != nil {
		return nil, err
	}
	c.Planes = make([]Plane, len(planes))
	for i, p := range planes {
		if c.Planes[i], err = planeFrom(p); err != nil {
			return nil, errors.Wrapf(err, "plane %d", i)
		}
	}
	for i, p := range c.Polygons {
		if p.Plane >= len(c.Planes) {
			return nil, qerr.Format("polygon %d uses plane %d of %d", i, p.Plane, len(c.Planes))
		}
	}

	c.AnimLights = make([]uint16, h.NumAnimLights)
	if err := filesystem.ReadStruct(r, c.AnimLights); err != nil {
		return nil, err
	}

	infos := make([]lightInfoRecord, h.NumTextured)
	if err := filesystem.ReadStruct(r, infos); err != nil {
		return nil, err
	}
	c.LightInfo = make([]LightInfo, len(infos))
	for i, l := range infos {
		c.LightInfo[i] = LightInfo{
			U:         l.U,
			V:         l.V,
			Stride:    int(l.Stride),
			Width:     int(l.Width),
			Height:    int(l.Height),
			AnimFlags: l.AnimFlags,
		}
	}
	if err := c.readLightmaps(r, format); err != nil {
		return nil, err
	}

	n, err := filesystem.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if err := fits(r, n, 2, "light indices"); err != nil {
		return nil, err
	}
	c.LightIndices = make([]uint16, n)
	if err := filesystem.ReadStruct(r, c.LightIndices); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cell) readIndices(r io.Reader, polys []polygonRecord, mapSize int) error {
	total := 0
	for i, p := range polys {
		var n uint8
		if err := filesystem.ReadStruct(r, &n); err != nil {
			return err
		}
		if n != p.Count {
			return qerr.Format("polygon %d has %d indices, header says %d", i, n, p.Count)
		}
		idx := make([]uint8, n)
		if err := filesystem.ReadStruct(r, idx); err != nil {
			return err
		}
		c.Polygons[i].Indices = make([]int, n)
		for j, v := range idx {
			if int(v) >= len(c.Vertices) {
				return qerr.Format("polygon %d uses vertex %d of %d", i, v, len(c.Vertices))
			}
			c.Polygons[i].Indices[j] = int(v)
		}
		total += 1 + int(n)
	}
	if total != mapSize {
		return qerr.Format("polygon index map of %d bytes, header says %d", total, mapSize)
	}
	return nil
}

func (c *Cell) readLightmaps(r io.Reader, format lightmap.Format) error {
	c.Lightmaps = make([]*lightmap.Lightmap, len(c.LightInfo))
	for i, li := range c.LightInfo {
		size := li.Width * li.Height * format.Depth()
		buf := make([]byte, size)
		if err := filesystem.ReadStruct(r, buf); err != nil {
			return errors.Wrapf(err, "face %d lightmap", i)
		}
		lm, err := lightmap.New(li.Width, li.Height, c.Texturing[i].Texture, format, buf)
		if err != nil {
			return errors.Wrapf(err, "face %d", i)
		}
		flags := li.AnimFlags
		for flags != 0 {
			slot := bits.TrailingZeros32(flags)
			flags &^= 1 << slot
			if slot >= len(c.AnimLights) {
				return qerr.Format("face %d uses anim light slot %d of %d", i, slot, len(c.AnimLights))
			}
			if err := filesystem.ReadStruct(r, buf); err != nil {
				return errors.Wrapf(err, "face %d light %d", i, slot)
			}
			if err := lm.AddLight(int(c.AnimLights[slot]), format, buf); err != nil {
				return errors.Wrapf(err, "face %d", i)
			}
		}
		c.Lightmaps[i] = lm
	}
	return nil
}

// PolygonCenter returns the average of the vertices of polygon i.
func (c *Cell) PolygonCenter(i int) vec.Vec3 {
	var sum vec.Vec3
	idx := c.Polygons[i].Indices
	if len(idx) == 0 {
		return sum
	}
	for _, v := range idx {
		sum = vec.Add(sum, c.Vertices[v])
	}
	return sum.Scale(1 / float32(len(idx)))
}

// LightmapUV returns the atlas coordinate of vertex v of the textured
// polygon face.
func (c *Cell) LightmapUV(face, v int) (mgl32.Vec2, error) {
	if face < 0 || face >= len(c.Texturing) {
		return mgl32.Vec2{}, qerr.NotFound("textured polygon %d in cell %d", face, c.Index)
	}
	p := &c.Polygons[face]
	if v < 0 || v >= len(p.Indices) {
		return mgl32.Vec2{}, qerr.NotFound("vertex %d of polygon %d in cell %d", v, face, c.Index)
	}
	t := &c.Texturing[face]
	li := &c.LightInfo[face]
	if t.OriginVertex >= len(p.Indices) {
		return mgl32.Vec2{}, qerr.Format("polygon %d origin vertex %d of %d", face, t.OriginVertex, len(p.Indices))
	}
	origin := c.Vertices[p.Indices[t.OriginVertex]]
	d := vec.Sub(c.Vertices[p.Indices[v]], origin)
	s := vec.Dot(d, t.AxisU) / t.AxisU.LengthSquared()
	tt := vec.Dot(d, t.AxisV) / t.AxisV.LengthSquared()
	uv := mgl32.Vec2{
		(s*4 - float32(t.U)/16 + 0.5) / float32(li.Width),
		(tt*4 - float32(t.V)/16 + 0.5) / float32(li.Height),
	}
	return c.Lightmaps[face].MapUV(uv), nil
}
