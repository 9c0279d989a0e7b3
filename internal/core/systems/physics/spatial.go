package physics

import "math"

// DefaultCellSize is the spatial hash bucket edge in world units.
const DefaultCellSize = 16.0

type cellKey struct {
	X, Z int32
}

// SpatialHash buckets collider footprints by (x, z) cell. It is rebuilt only
// when the registry grows; queries between rebuilds reuse the buckets.
type SpatialHash struct {
	cellSize    float64
	invCellSize float64
	buckets     map[cellKey][]ColliderID

	builtCount int
	builds     int
	entries    int

	// stamp de-duplicates colliders spanning several cells within one query.
	stamp   []uint32
	queryID uint32
}

func NewSpatialHash(cellSize float64) *SpatialHash {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &SpatialHash{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		buckets:     make(map[cellKey][]ColliderID),
	}
}

func (g *SpatialHash) cellOf(v float64) int32 {
	return int32(math.Floor(v * g.invCellSize))
}

// Build discards previous buckets and assigns every collider to every cell
// its footprint overlaps.
func (g *SpatialHash) Build(colliders []Collider) {
	for k, ids := range g.buckets {
		g.buckets[k] = ids[:0]
	}
	g.entries = 0

	for _, c := range colliders {
		minX, maxX := g.cellOf(c.Box.Min[0]), g.cellOf(c.Box.Max[0])
		minZ, maxZ := g.cellOf(c.Box.Min[2]), g.cellOf(c.Box.Max[2])
		for cz := minZ; cz <= maxZ; cz++ {
			for cx := minX; cx <= maxX; cx++ {
				k := cellKey{cx, cz}
				g.buckets[k] = append(g.buckets[k], c.ID)
				g.entries++
			}
		}
	}

	if cap(g.stamp) < len(colliders) {
		g.stamp = make([]uint32, len(colliders))
	} else {
		g.stamp = g.stamp[:len(colliders)]
		clear(g.stamp)
	}
	g.queryID = 0
	g.builtCount = len(colliders)
	g.builds++
}

// Sync rebuilds when the registry size differs from the last build and
// reports whether it did.
func (g *SpatialHash) Sync(r *Registry) bool {
	if r.Len() == g.builtCount && g.builds > 0 {
		return false
	}
	g.Build(r.colliders)
	return true
}

// Query appends to dst the ids of colliders in every bucket covering the
// square [p-radius, p+radius] on the ground plane, each at most once. The
// result is a superset of the colliders whose footprint meets the circle.
func (g *SpatialHash) Query(p Vec3, radius float64, dst []ColliderID) []ColliderID {
	if g.builtCount == 0 {
		return dst
	}

	g.queryID++
	if g.queryID == 0 {
		clear(g.stamp)
		g.queryID = 1
	}

	minX, maxX := g.cellOf(p[0]-radius), g.cellOf(p[0]+radius)
	minZ, maxZ := g.cellOf(p[2]-radius), g.cellOf(p[2]+radius)
	for cz := minZ; cz <= maxZ; cz++ {
		for cx := minX; cx <= maxX; cx++ {
			for _, id := range g.buckets[cellKey{cx, cz}] {
				if g.stamp[id] == g.queryID {
					continue
				}
				g.stamp[id] = g.queryID
				dst = append(dst, id)
			}
		}
	}
	return dst
}

// SpatialStats describes the current build.
type SpatialStats struct {
	Cells     int
	Entries   int
	Colliders int
	Builds    int
}

func (g *SpatialHash) Stats() SpatialStats {
	cells := 0
	for _, ids := range g.buckets {
		if len(ids) > 0 {
			cells++
		}
	}
	return SpatialStats{Cells: cells, Entries: g.entries, Colliders: g.builtCount, Builds: g.builds}
}
