package physics

import "math"

// AABB is an axis-aligned box. Min <= Max holds componentwise.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB builds a box from its centre and full size. Negative sizes are
// treated as their absolute value.
func NewAABB(center, size Vec3) AABB {
	half := Vec3{math.Abs(size[0]) / 2, math.Abs(size[1]) / 2, math.Abs(size[2]) / 2}
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// FromCorners builds a box from two arbitrary corners.
func FromCorners(a, b Vec3) AABB {
	return AABB{
		Min: Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		Max: Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
	}
}

func (b AABB) Center() Vec3 { return b.Min.Add(b.Max).Mul(0.5) }
func (b AABB) Size() Vec3   { return b.Max.Sub(b.Min) }

// ContainsXZ reports whether (x, z) lies in the box footprint grown by pad.
func (b AABB) ContainsXZ(x, z, pad float64) bool {
	return x >= b.Min[0]-pad && x <= b.Max[0]+pad &&
		z >= b.Min[2]-pad && z <= b.Max[2]+pad
}

// Contains reports whether p lies inside the box (inclusive).
func (b AABB) Contains(p Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// ClosestPointXZ returns the point of the footprint nearest to (x, z).
func (b AABB) ClosestPointXZ(x, z float64) (cx, cz float64) {
	return Clamp(x, b.Min[0], b.Max[0]), Clamp(z, b.Min[2], b.Max[2])
}

// CircleOverlapsXZ reports whether a circle on the ground plane touches the
// footprint.
func (b AABB) CircleOverlapsXZ(x, z, r float64) bool {
	cx, cz := b.ClosestPointXZ(x, z)
	dx, dz := x-cx, z-cz
	return dx*dx+dz*dz <= r*r
}

// Overlaps reports whether two boxes intersect (touching counts).
func (b AABB) Overlaps(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}
