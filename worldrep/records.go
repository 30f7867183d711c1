// SPDX-License-Identifier: GPL-2.0-or-later

package worldrep

// On-disk records. All of them are packed, binary.Read does not align.

type streamHeader struct {
	Reserved  uint32
	CellCount uint32
}

type cellHeader struct {
	NumVertices   uint8
	NumPolygons   uint8
	NumTextured   uint8
	NumPortals    uint8
	NumPlanes     uint8
	Medium        uint8
	Flags         uint8
	NXN           int32
	PolyMapSize   uint16
	NumAnimLights uint8
	FlowGroup     uint8
	Center        [3]float32
	Radius        float32
}

type polygonRecord struct {
	Flags      uint8
	Count      uint8 // number of vertex indices
	Plane      uint8
	ClutID     uint8
	TargetCell uint16 // only valid for portals
	Reserved   uint16
}

type texturingRecord struct {
	AxisU        [3]float32
	AxisV        [3]float32
	U            int16 // lightmap origin in 1/16 texels
	V            int16
	Texture      uint8
	OriginVertex uint8 // index into the polygon index list
	CacheID      uint16
	Scale        float32
	Center       [3]float32
}

type planeRecord struct {
	Normal [3]float32
	Dist   float32
}

type lightInfoRecord struct {
	U          int16
	V          int16
	Stride     uint16
	Height     uint8
	Width      uint8
	DataPtr    uint32 // runtime pointers, meaningless on disk
	DynamicPtr uint32
	AnimFlags  uint32 // bit i selects anim light slot i of the cell
}

// Record sizes on disk. A cell is at least its header and the light index
// count.
const (
	minCellSize = 31 + 4
	planeSize   = 16
	nodeSize    = 16
)

const nodeLeaf = 0x01000000

type nodeRecord struct {
	ParentAndFlags uint32
	CellOrPlane    int32
	Front          uint32
	Back           uint32
}
