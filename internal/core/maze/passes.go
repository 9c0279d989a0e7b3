package maze

import "math/rand/v2"

// Every pass here only opens walls, so the spanning tree from the carve
// survives and connectivity is kept.

type passes struct {
	g   *Grid
	rng *rand.Rand
	cfg Config

	braided, cuts, widened int
}

// spine opens a straight corridor from the entrance heading inward. It
// returns the corridor cells and, when the corridor runs into the clear zone,
// the last cell with the direction of the doorway into it.
func (ps *passes) spine(entrance Pos, inward Dir) (cells []Pos, door Pos, doorDir Dir, hasDoor bool) {
	g := ps.g
	cur := entrance
	cells = append(cells, cur)
	for steps := 0; ps.cfg.SpineLength == 0 || steps < ps.cfg.SpineLength; steps++ {
		next := cur.Step(inward)
		if !g.In(next) {
			break
		}
		if !g.Inside(next) {
			if g.Clear(next) {
				return cells, cur, inward, true
			}
			break
		}
		g.open(cur, inward)
		cur = next
		cells = append(cells, cur)
	}
	return cells, Pos{}, 0, false
}

// branches opens short straight corridors perpendicular to the spine.
func (ps *passes) branches(spine []Pos, inward Dir) {
	if len(spine) < 2 {
		return
	}
	sides := [2]Dir{(inward + 1) % 4, (inward + 3) % 4}
	for b := 0; b < ps.cfg.SideBranches; b++ {
		cur := spine[1+ps.rng.IntN(len(spine)-1)]
		d := sides[ps.rng.IntN(2)]
		for step := 0; step < ps.cfg.BranchLength; step++ {
			next, ok := ps.g.Neighbor(cur, d)
			if !ok {
				break
			}
			ps.g.open(cur, d)
			cur = next
		}
	}
}

// braid gives dead ends a chance to open one more wall, turning them into
// loops.
func (ps *passes) braid() {
	g := ps.g
	if ps.cfg.BraidProbability <= 0 {
		return
	}
	var closed [4]Dir
	for _, p := range g.DeadEnds() {
		if g.OpenCount(p) != 1 || ps.rng.Float64() >= ps.cfg.BraidProbability {
			continue
		}
		n := 0
		for _, d := range dirs {
			if _, ok := g.Neighbor(p, d); ok && !g.Open(p, d) {
				closed[n] = d
				n++
			}
		}
		if n > 0 && g.open(p, closed[ps.rng.IntN(n)]) {
			ps.braided++
		}
	}
}

// extraCuts removes random interior walls for variety.
func (ps *passes) extraCuts(inside []Pos) {
	if len(inside) == 0 {
		return
	}
	for i := 0; i < ps.cfg.ExtraCuts; i++ {
		for attempt := 0; attempt < 8; attempt++ {
			p := inside[ps.rng.IntN(len(inside))]
			if ps.g.open(p, dirs[ps.rng.IntN(4)]) {
				ps.cuts++
				break
			}
		}
	}
}

// widen clears random 2×2 blocks of inside cells into small rooms.
func (ps *passes) widen(inside []Pos) {
	if len(inside) == 0 {
		return
	}
	g := ps.g
	for i := 0; i < ps.cfg.WidenCount; i++ {
		for attempt := 0; attempt < 16; attempt++ {
			p := inside[ps.rng.IntN(len(inside))]
			e, s := p.Step(East), p.Step(South)
			se := e.Step(South)
			if !g.Inside(e) || !g.Inside(s) || !g.Inside(se) {
				continue
			}
			g.open(p, East)
			g.open(p, South)
			g.open(e, South)
			g.open(s, East)
			ps.widened++
			break
		}
	}
}
