// Package geom holds the small amount of 3D math the dungeon builder needs:
// axis-aligned boxes for module footprints and rigid transforms for module
// and door placement.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box. Min is inclusive, Max exclusive for
// overlap purposes: two boxes that only share a face do not intersect.
type AABB struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// Box builds an AABB from two corners in any order.
func Box(a, b mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		Max: mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
	}
}

// Empty reports whether the box has no volume on some axis.
func (b AABB) Empty() bool {
	return b.Max[0] <= b.Min[0] || b.Max[1] <= b.Min[1] || b.Max[2] <= b.Min[2]
}

// Center returns the middle point of the box.
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box on each axis.
func (b AABB) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Intersects reports whether b and other share interior volume.
func (b AABB) Intersects(other AABB) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] >= other.Max[i] || b.Max[i] <= other.Min[i] {
			return false
		}
	}
	return true
}

// Contains reports whether other lies completely inside b.
func (b AABB) Contains(other AABB) bool {
	for i := 0; i < 3; i++ {
		if other.Min[i] < b.Min[i] || other.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside b (Max exclusive).
func (b AABB) ContainsPoint(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] >= b.Max[i] {
			return false
		}
	}
	return true
}

// Contract shrinks the box by d on every side. An axis that would invert
// collapses onto its center.
func (b AABB) Contract(d float64) AABB {
	if d == 0 {
		return b
	}
	out := b
	for i := 0; i < 3; i++ {
		out.Min[i] += d
		out.Max[i] -= d
		if out.Min[i] > out.Max[i] {
			c := (b.Min[i] + b.Max[i]) / 2
			out.Min[i], out.Max[i] = c, c
		}
	}
	return out
}

// Union returns the smallest box containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(b.Min[0], other.Min[0]), math.Min(b.Min[1], other.Min[1]), math.Min(b.Min[2], other.Min[2])},
		Max: mgl64.Vec3{math.Max(b.Max[0], other.Max[0]), math.Max(b.Max[1], other.Max[1]), math.Max(b.Max[2], other.Max[2])},
	}
}

// Transform returns the world-space box enclosing b after applying t.
func (b AABB) Transform(t Transform) AABB {
	out := AABB{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for i := 0; i < 8; i++ {
		corner := mgl64.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		p := t.Point(corner)
		for k := 0; k < 3; k++ {
			out.Min[k] = math.Min(out.Min[k], p[k])
			out.Max[k] = math.Max(out.Max[k], p[k])
		}
	}
	return out.snapped()
}

func (b AABB) snapped() AABB {
	return AABB{Min: snapVec(b.Min), Max: snapVec(b.Max)}
}
