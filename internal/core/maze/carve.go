package maze

import "math/rand/v2"

type frame struct {
	pos  Pos
	from Dir
	// straight is false for the entrance and repair roots, which have no
	// incoming direction to continue.
	straight bool
}

// carver grows a spanning tree over inside cells with a stack-based
// depth-first search that prefers to keep going straight.
type carver struct {
	g    *Grid
	rng  *rand.Rand
	bias float64
	cap  int

	repairs int
}

func (c *carver) canOpenFrom(p Pos) bool {
	return c.cap == 0 || c.g.OpenCount(p) < c.cap
}

func (c *carver) carve(root Pos) {
	g := c.g
	g.cell(root).Visited = true
	stack := []frame{{pos: root}}

	var candidates [4]Dir
	for len(stack) > 0 {
		top := stack[len(stack)-1]

		n := 0
		if c.canOpenFrom(top.pos) {
			for _, d := range dirs {
				if next, ok := g.Neighbor(top.pos, d); ok && !g.cell(next).Visited {
					candidates[n] = d
					n++
				}
			}
		}
		if n == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[c.rng.IntN(n)]
		if top.straight && c.rng.Float64() < c.bias {
			for _, cand := range candidates[:n] {
				if cand == top.from {
					d = cand
					break
				}
			}
		}

		g.open(top.pos, d)
		next := top.pos.Step(d)
		g.cell(next).Visited = true
		stack = append(stack, frame{pos: next, from: d, straight: true})
	}
}

// repair attaches cells the capped carve could not reach. Each pass joins one
// unvisited inside cell to a visited neighbour, ignoring the cap for that
// one edge, and carves onward from it. It stops when no unvisited cell
// touches the tree.
func (c *carver) repair() {
	g := c.g
	for {
		joined := false
		for i := range g.cells {
			if !g.cells[i].Inside || g.cells[i].Visited {
				continue
			}
			p := g.PosOf(i)
			for _, d := range dirs {
				if n, ok := g.Neighbor(p, d); ok && g.cell(n).Visited {
					g.open(p, d)
					c.repairs++
					c.carve(p)
					joined = true
					break
				}
			}
		}
		if !joined {
			return
		}
	}
}

// prune drops inside cells that are still unvisited; they have no inside
// neighbour path to the entrance.
func (c *carver) prune() int {
	g := c.g
	pruned := 0
	for i := range g.cells {
		if g.cells[i].Inside && !g.cells[i].Visited {
			g.cells[i].Inside = false
			pruned++
		}
	}
	return pruned
}
