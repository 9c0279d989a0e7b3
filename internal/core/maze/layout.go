package maze

import (
	"math"

	"github.com/zeusync/mazearena/internal/core/systems/physics"
)

// Stats summarises one generation run.
type Stats struct {
	InsideCells int
	Pruned      int
	Repairs     int
	Braided     int
	Cuts        int
	Widened     int
	DeadEnds    int
	Walls       int
}

// Layout is the result of Generate: the final wall configuration and the
// world-space features derived from it.
type Layout struct {
	Config Config
	Grid   *Grid

	Entrance Pos
	// GateDir is the side of the entrance cell that holds the gate.
	GateDir Dir
	Doorway physics.AABB
	Spine   []Pos

	GateCollider  physics.ColliderID
	WallColliders []physics.ColliderID

	SpawnPads []physics.Vec3
	LavaCells []Pos

	Stats Stats

	ground      physics.Ground
	lava        map[Pos]bool
	coreDoor    Pos
	coreDoorDir Dir
	hasCoreDoor bool
}

// CellAt maps a world position to the cell under it. Positions off the grid
// are clamped to the nearest edge cell and reported with ok false.
func (l *Layout) CellAt(x, z float64) (p Pos, ok bool) {
	cfg := l.Config
	i := int(math.Floor((x + cfg.extentX()/2) / cfg.CellSize))
	j := int(math.Floor((z + cfg.extentZ()/2) / cfg.CellSize))
	p = Pos{clampInt(i, 0, cfg.Width-1), clampInt(j, 0, cfg.Height-1)}
	return p, p.X == i && p.Z == j
}

// CellCenter returns the world centre of p on its floor.
func (l *Layout) CellCenter(p Pos) physics.Vec3 {
	cfg := l.Config
	x := -cfg.extentX()/2 + (float64(p.X)+0.5)*cfg.CellSize
	z := -cfg.extentZ()/2 + (float64(p.Z)+0.5)*cfg.CellSize
	return physics.V3(x, l.ground.HeightAt(x, z), z)
}

// CellBounds returns the footprint of p at floor height with zero thickness.
func (l *Layout) CellBounds(p Pos) physics.AABB {
	c := l.CellCenter(p)
	half := l.Config.CellSize / 2
	return physics.AABB{
		Min: physics.V3(c.X()-half, c.Y(), c.Z()-half),
		Max: physics.V3(c.X()+half, c.Y(), c.Z()+half),
	}
}

// InteriorPoints returns the floor centre of every inside cell that is not
// lava, in row-major order.
func (l *Layout) InteriorPoints() []physics.Vec3 {
	var out []physics.Vec3
	for _, p := range l.insideCells() {
		if !l.lava[p] {
			out = append(out, l.CellCenter(p))
		}
	}
	return out
}

// ExitPosition is the floor point one cell beyond the gate, outside the maze.
func (l *Layout) ExitPosition() physics.Vec3 {
	c := l.CellCenter(l.Entrance)
	dx, dz := l.GateDir.Delta()
	x := c.X() + float64(dx)*l.Config.CellSize
	z := c.Z() + float64(dz)*l.Config.CellSize
	return physics.V3(x, l.ground.HeightAt(x, z), z)
}

// Contains reports whether (x, z) lies over an inside cell or the clear zone.
func (l *Layout) Contains(x, z float64) bool {
	p, ok := l.CellAt(x, z)
	return ok && (l.Grid.Inside(p) || l.Grid.Clear(p))
}

// IsLava reports whether p was turned into a lava cell.
func (l *Layout) IsLava(p Pos) bool { return l.lava[p] }

// CoreDoor returns the cell and side opened into the clear zone, if any.
func (l *Layout) CoreDoor() (Pos, Dir, bool) {
	return l.coreDoor, l.coreDoorDir, l.hasCoreDoor
}

// Render draws the grid with E for the entrance and ~ for lava.
func (l *Layout) Render() string {
	marks := map[Pos]byte{l.Entrance: 'E'}
	for _, p := range l.LavaCells {
		marks[p] = '~'
	}
	return l.Grid.RenderWith(marks)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
