package physics

import "math"

// SegmentAABB intersects the segment start→end with box using the slab
// method. t is the entry parameter in [0, 1]; a segment starting inside the
// box hits at t = 0.
func SegmentAABB(start, end Vec3, box AABB) (t float64, hit bool) {
	d := end.Sub(start)
	tMin, tMax := 0.0, 1.0

	for a := 0; a < 3; a++ {
		if math.Abs(d[a]) < 1e-12 {
			if start[a] < box.Min[a] || start[a] > box.Max[a] {
				return 0, false
			}
			continue
		}
		inv := 1 / d[a]
		t0 := (box.Min[a] - start[a]) * inv
		t1 := (box.Max[a] - start[a]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// Sweep returns the enabled collider the segment start→end enters first, with
// the entry parameter along the segment.
func (w *World) Sweep(start, end Vec3) (Collider, float64, bool) {
	w.sync()
	mid := start.Add(end).Mul(0.5)
	reach := HorizontalDistance(start, end)/2 + 1e-6

	var (
		best  Collider
		bestT = math.Inf(1)
		found bool
	)
	w.scratch = w.grid.Query(mid, reach, w.scratch[:0])
	for _, id := range w.scratch {
		c := w.registry.at(id)
		if !c.Enabled {
			continue
		}
		if t, ok := SegmentAABB(start, end, c.Box); ok && t < bestT {
			best, bestT, found = *c, t, true
		}
	}
	if !found {
		return Collider{}, 0, false
	}
	return best, bestT, true
}
