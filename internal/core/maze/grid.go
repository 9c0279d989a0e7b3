package maze

import (
	"math"
	"strings"
)

// Dir is a compass direction on the grid. North is -z, East is +x.
type Dir uint8

const (
	North Dir = iota
	East
	South
	West
)

var dirs = [4]Dir{North, East, South, West}

func (d Dir) Opposite() Dir { return (d + 2) % 4 }

// Delta returns the grid step for d.
func (d Dir) Delta() (dx, dz int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	default:
		return -1, 0
	}
}

func (d Dir) String() string {
	return [4]string{"north", "east", "south", "west"}[d%4]
}

// Pos is a cell coordinate: X is the column, Z the row.
type Pos struct {
	X, Z int
}

func (p Pos) Step(d Dir) Pos {
	dx, dz := d.Delta()
	return Pos{p.X + dx, p.Z + dz}
}

// Cell is one maze cell. Walls[d] is true while the wall toward d is closed.
// An open wall always leads to an Inside neighbour.
type Cell struct {
	Visited bool
	Inside  bool
	Walls   [4]bool
}

// Grid is a W×H cell lattice with every wall initially closed.
type Grid struct {
	W, H  int
	cells []Cell
	// clear marks the central zone that is kept free of maze cells.
	clear []bool
}

func NewGrid(w, h int) *Grid {
	g := &Grid{W: w, H: h, cells: make([]Cell, w*h), clear: make([]bool, w*h)}
	for i := range g.cells {
		g.cells[i].Walls = [4]bool{true, true, true, true}
	}
	return g
}

func (g *Grid) In(p Pos) bool {
	return p.X >= 0 && p.X < g.W && p.Z >= 0 && p.Z < g.H
}

// Index maps p to its position in row-major order.
func (g *Grid) Index(p Pos) int { return p.Z*g.W + p.X }

func (g *Grid) PosOf(i int) Pos { return Pos{i % g.W, i / g.W} }

// At returns a copy of the cell. Out-of-grid positions yield a zero Cell.
func (g *Grid) At(p Pos) Cell {
	if !g.In(p) {
		return Cell{}
	}
	return g.cells[g.Index(p)]
}

func (g *Grid) cell(p Pos) *Cell { return &g.cells[g.Index(p)] }

func (g *Grid) Inside(p Pos) bool { return g.In(p) && g.cells[g.Index(p)].Inside }

// Clear reports whether p belongs to the central clear zone.
func (g *Grid) Clear(p Pos) bool { return g.In(p) && g.clear[g.Index(p)] }

// Neighbor returns the cell next to p toward d if it is inside bounds.
func (g *Grid) Neighbor(p Pos, d Dir) (Pos, bool) {
	n := p.Step(d)
	return n, g.Inside(n)
}

// Open reports whether the wall of p toward d is open.
func (g *Grid) Open(p Pos, d Dir) bool {
	return g.Inside(p) && !g.cells[g.Index(p)].Walls[d]
}

// OpenCount returns how many walls of p are open.
func (g *Grid) OpenCount(p Pos) int {
	n := 0
	for _, d := range dirs {
		if g.Open(p, d) {
			n++
		}
	}
	return n
}

// open removes the wall between p and its neighbour toward d. It reports
// false, changing nothing, when either side is outside bounds or the wall is
// already open.
func (g *Grid) open(p Pos, d Dir) bool {
	n, ok := g.Neighbor(p, d)
	if !ok || !g.Inside(p) || g.Open(p, d) {
		return false
	}
	g.cell(p).Walls[d] = false
	g.cell(n).Walls[d.Opposite()] = false
	return true
}

// InsideCount returns the number of cells inside bounds.
func (g *Grid) InsideCount() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Inside {
			n++
		}
	}
	return n
}

// Distances runs a breadth-first search over open walls from from. Entries
// are indexed by Index; unreachable cells hold -1.
func (g *Grid) Distances(from Pos) []int {
	dist := make([]int, len(g.cells))
	for i := range dist {
		dist[i] = -1
	}
	if !g.Inside(from) {
		return dist
	}

	queue := []Pos{from}
	dist[g.Index(from)] = 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range dirs {
			if !g.Open(cur, d) {
				continue
			}
			n := cur.Step(d)
			if dist[g.Index(n)] >= 0 {
				continue
			}
			dist[g.Index(n)] = dist[g.Index(cur)] + 1
			queue = append(queue, n)
		}
	}
	return dist
}

// Reachable returns every cell connected to from through open walls,
// including from itself.
func (g *Grid) Reachable(from Pos) []Pos {
	var out []Pos
	for i, d := range g.Distances(from) {
		if d >= 0 {
			out = append(out, g.PosOf(i))
		}
	}
	return out
}

// Components partitions the inside cells into connected groups.
func (g *Grid) Components() [][]Pos {
	seen := make([]bool, len(g.cells))
	var out [][]Pos
	for i := range g.cells {
		if !g.cells[i].Inside || seen[i] {
			continue
		}
		group := g.Reachable(g.PosOf(i))
		for _, p := range group {
			seen[g.Index(p)] = true
		}
		out = append(out, group)
	}
	return out
}

// DeadEnds returns inside cells with exactly one open wall.
func (g *Grid) DeadEnds() []Pos {
	var out []Pos
	for i := range g.cells {
		p := g.PosOf(i)
		if g.cells[i].Inside && g.OpenCount(p) == 1 {
			out = append(out, p)
		}
	}
	return out
}

// distanceFromCentre is measured in cells.
func (g *Grid) distanceFromCentre(p Pos) float64 {
	cx, cz := float64(g.W-1)/2, float64(g.H-1)/2
	return math.Hypot(float64(p.X)-cx, float64(p.Z)-cz)
}

// Render draws the grid as ASCII: '#' for walls, ' ' for inside cells, '.'
// for the clear zone and ':' for cells outside bounds.
func (g *Grid) Render() string {
	return g.RenderWith(nil)
}

// RenderWith is Render with marks drawn over the given cells.
func (g *Grid) RenderWith(marks map[Pos]byte) string {
	cols, rows := 2*g.W+1, 2*g.H+1
	canvas := make([][]byte, rows)
	for r := range canvas {
		canvas[r] = []byte(strings.Repeat(" ", cols))
	}

	for i := range g.cells {
		p := g.PosOf(i)
		cx, cz := 2*p.X+1, 2*p.Z+1
		switch {
		case g.cells[i].Inside:
			for _, d := range dirs {
				if g.cells[i].Walls[d] {
					dx, dz := d.Delta()
					canvas[cz+dz][cx+dx] = '#'
				}
			}
		case g.clear[i]:
			canvas[cz][cx] = '.'
		default:
			canvas[cz][cx] = ':'
		}
		if m, ok := marks[p]; ok {
			canvas[cz][cx] = m
		}
	}

	for r := 0; r < rows; r += 2 {
		for c := 0; c < cols; c += 2 {
			if wallAt(canvas, r-1, c) || wallAt(canvas, r+1, c) ||
				wallAt(canvas, r, c-1) || wallAt(canvas, r, c+1) {
				canvas[r][c] = '#'
			}
		}
	}

	var sb strings.Builder
	sb.Grow(rows * (cols + 1))
	for _, line := range canvas {
		sb.Write(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func wallAt(canvas [][]byte, r, c int) bool {
	return r >= 0 && r < len(canvas) && c >= 0 && c < len(canvas[r]) && canvas[r][c] == '#'
}
