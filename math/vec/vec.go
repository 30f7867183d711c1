// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"github.com/chewxy/math32"
)

type Vec3 struct {
	X, Y, Z float32
}

func VFromA(a [3]float32) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// Length returns the length of the vector
func (v Vec3) Length() float32 {
	return math32.Sqrt(Dot(v, v))
}

// LengthSquared returns the squared length of the vector
func (v Vec3) LengthSquared() float32 {
	return Dot(v, v)
}

// Add returns a + b
func Add(a, b Vec3) Vec3 {
	return Vec3{
		X: a.X + b.X,
		Y: a.Y + b.Y,
		Z: a.Z + b.Z,
	}
}

// Sub returns a - b
func Sub(a, b Vec3) Vec3 {
	return Vec3{
		X: a.X - b.X,
		Y: a.Y - b.Y,
		Z: a.Z - b.Z,
	}
}

// Scale returns the vector multiplied by the skalar s
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{
		X: v.X * s,
		Y: v.Y * s,
		Z: v.Z * s,
	}
}

// Normalize returns the normalized vector
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Dot returns a dot b
func Dot(a Vec3, b Vec3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Bounds returns the axis aligned box around pts.
func Bounds(pts []Vec3) (mins, maxs Vec3) {
	if len(pts) == 0 {
		return
	}
	mins, maxs = pts[0], pts[0]
	for _, p := range pts[1:] {
		mins.X, maxs.X = math32.Min(mins.X, p.X), math32.Max(maxs.X, p.X)
		mins.Y, maxs.Y = math32.Min(mins.Y, p.Y), math32.Max(maxs.Y, p.Y)
		mins.Z, maxs.Z = math32.Min(mins.Z, p.Z), math32.Max(maxs.Z, p.Z)
	}
	return
}
