// SPDX-License-Identifier: GPL-2.0-or-later

// Package rectpack places rectangles inside a growable area using a binary
// split tree. Free space is never merged back: every allocation splits a
// leaf into the requested part and the rest, so the packing depends on the
// insertion order. Insert large rectangles first.
package rectpack

// Rect is an axis aligned rectangle.
type Rect struct {
	X, Y int
	W, H int
}

func (r Rect) Area() int {
	return r.W * r.H
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Contains reports whether o lies completely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

// Node is a leaf (free or used) or an inner node whose two children tile
// its rectangle.
type Node struct {
	Rect
	used     bool
	children [2]*Node
}

func newLeaf(x, y, w, h int) *Node {
	return &Node{Rect: Rect{X: x, Y: y, W: w, H: h}}
}

func (n *Node) IsLeaf() bool {
	return n.children[0] == nil
}

func (n *Node) Used() bool {
	return n.used
}

// Children returns both children, nil for leafs.
func (n *Node) Children() (*Node, *Node) {
	return n.children[0], n.children[1]
}

// Allocate returns a used leaf of exactly w x h or nil if there is no room.
func (n *Node) Allocate(w, h int) *Node {
	if w <= 0 || h <= 0 {
		return nil
	}
	if !n.IsLeaf() {
		if r := n.children[0].Allocate(w, h); r != nil {
			return r
		}
		return n.children[1].Allocate(w, h)
	}
	if n.used || w > n.W || h > n.H {
		return nil
	}
	if w == n.W && h == n.H {
		n.used = true
		return n
	}
	dw := n.W - w
	dh := n.H - h
	if dw > dh {
		// vertical cut
		n.children[0] = newLeaf(n.X, n.Y, w, n.H)
		n.children[1] = newLeaf(n.X+w, n.Y, n.W-w, n.H)
	} else {
		// horizontal cut
		n.children[0] = newLeaf(n.X, n.Y, n.W, h)
		n.children[1] = newLeaf(n.X, n.Y+h, n.W, n.H-h)
	}
	return n.children[0].Allocate(w, h)
}

// LeafArea returns the area of all used leafs.
func (n *Node) LeafArea() int {
	if n.IsLeaf() {
		if n.used {
			return n.Area()
		}
		return 0
	}
	return n.children[0].LeafArea() + n.children[1].LeafArea()
}

// Leafs calls fn for every used leaf.
func (n *Node) Leafs(fn func(*Node)) {
	if n.IsLeaf() {
		if n.used {
			fn(n)
		}
		return
	}
	n.children[0].Leafs(fn)
	n.children[1].Leafs(fn)
}

// Packer owns the split tree of one area.
type Packer struct {
	root *Node
}

func New(w, h int) *Packer {
	return &Packer{root: newLeaf(0, 0, w, h)}
}

func (p *Packer) Width() int  { return p.root.W }
func (p *Packer) Height() int { return p.root.H }

// Area returns the size of the whole area.
func (p *Packer) Area() int {
	return p.root.Area()
}

// LeafArea returns the allocated area.
func (p *Packer) LeafArea() int {
	return p.root.LeafArea()
}

func (p *Packer) Root() *Node {
	return p.root
}

// Allocate places a w x h rectangle. ok is false if it does not fit.
func (p *Packer) Allocate(w, h int) (Rect, bool) {
	n := p.root.Allocate(w, h)
	if n == nil {
		return Rect{}, false
	}
	return n.Rect, true
}

// Grow doubles the smaller side (the width on a square). The old tree keeps
// its placements and becomes the first child of the new root.
func (p *Packer) Grow() {
	old := p.root
	var root *Node
	if old.W <= old.H {
		root = newLeaf(0, 0, 2*old.W, old.H)
		root.children[1] = newLeaf(old.W, 0, old.W, old.H)
	} else {
		root = newLeaf(0, 0, old.W, 2*old.H)
		root.children[1] = newLeaf(0, old.H, old.W, old.H)
	}
	root.children[0] = old
	p.root = root
}
