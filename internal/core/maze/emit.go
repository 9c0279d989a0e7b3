package maze

import (
	"math"

	"github.com/zeusync/mazearena/internal/core/systems/physics"
)

// emit registers one collider per closed wall edge plus the gate. Shared
// edges are emitted once, by the lower-indexed cell.
func (l *Layout) emit(reg *physics.Registry) {
	g := l.Grid
	for i := range g.cells {
		if !g.cells[i].Inside {
			continue
		}
		p := g.PosOf(i)
		for _, d := range dirs {
			if !g.cells[i].Walls[d] || l.isDoorway(p, d) {
				continue
			}
			if n, ok := g.Neighbor(p, d); ok && g.Index(n) < i {
				continue
			}
			box := l.edgeBox(p, d)
			l.WallColliders = append(l.WallColliders, reg.AddBox(box, physics.WithKind(physics.KindWall)))
		}
	}

	l.Doorway = l.edgeBox(l.Entrance, l.GateDir)
	l.GateCollider = reg.AddBox(l.Doorway,
		physics.WithKind(physics.KindGate),
		physics.WithWalkable(false),
	)
}

func (l *Layout) isDoorway(p Pos, d Dir) bool {
	if p == l.Entrance && d == l.GateDir {
		return true
	}
	return l.hasCoreDoor && p == l.coreDoor && d == l.coreDoorDir
}

// edgeBox is the wall slab on the edge of p toward d. It spans from the lower
// of the two floors to WallHeight above the higher one and overhangs each end
// by half a thickness so corners close.
func (l *Layout) edgeBox(p Pos, d Dir) physics.AABB {
	cfg := l.Config
	c := l.CellCenter(p)
	lo, hi := c.Y(), c.Y()
	if n, ok := l.Grid.Neighbor(p, d); ok {
		f := l.CellCenter(n).Y()
		lo, hi = math.Min(lo, f), math.Max(hi, f)
	}

	dx, dz := d.Delta()
	half := cfg.CellSize / 2
	center := physics.V3(c.X()+float64(dx)*half, (lo+hi+cfg.WallHeight)/2, c.Z()+float64(dz)*half)
	size := physics.V3(cfg.CellSize+cfg.WallThickness, hi-lo+cfg.WallHeight, cfg.WallThickness)
	if dx != 0 {
		size[0], size[2] = size[2], size[0]
	}
	return physics.NewAABB(center, size)
}
