package physics

import "math"

// resolveVertical snaps the body onto the highest surface under it when its
// feet reach or pass that surface.
func (w *World) resolveVertical(b *Body) {
	surface := w.surface(b.Position[0], b.Position[2], b.Feet())
	if b.Position[1] <= surface+b.Height {
		b.Position[1] = surface + b.Height
		b.Velocity[1] = 0
		b.OnGround = true
		return
	}
	b.OnGround = false
}

// resolveHorizontal pushes the body's cylinder out of every enabled collider
// whose vertical span it overlaps, one collider at a time. Tops at the feet
// are left to resolveVertical.
func (w *World) resolveHorizontal(b *Body) {
	s := &w.settings
	w.scratch = w.grid.Query(b.Position, b.Radius+s.ContactMargin, w.scratch[:0])

	for _, id := range w.scratch {
		c := w.registry.at(id)
		if !c.Enabled {
			continue
		}
		// A top within eps of the feet is the surface being stood on.
		feet := b.Feet()
		if !(feet < c.Box.Max[1]-s.SeparationEpsilon && b.Position[1] > c.Box.Min[1]) {
			continue
		}
		pushOut(b, c.Box, s.SeparationEpsilon)
	}
}

// pushOut moves the body centre so its circle clears the box footprint by
// eps. A centre on or inside the footprint leaves through the nearest face.
func pushOut(b *Body, box AABB, eps float64) {
	x, z := b.Position[0], b.Position[2]
	cx, cz := box.ClosestPointXZ(x, z)
	dx, dz := x-cx, z-cz
	d2 := dx*dx + dz*dz

	if d2 >= b.Radius*b.Radius {
		return
	}

	if d2 == 0 {
		left := x - box.Min[0]
		right := box.Max[0] - x
		back := z - box.Min[2]
		front := box.Max[2] - z
		switch math.Min(math.Min(left, right), math.Min(back, front)) {
		case left:
			b.Position[0] = box.Min[0] - b.Radius - eps
		case right:
			b.Position[0] = box.Max[0] + b.Radius + eps
		case back:
			b.Position[2] = box.Min[2] - b.Radius - eps
		default:
			b.Position[2] = box.Max[2] + b.Radius + eps
		}
		return
	}

	d := math.Sqrt(d2)
	push := b.Radius - d + eps
	b.Position[0] += dx / d * push
	b.Position[2] += dz / d * push
}
