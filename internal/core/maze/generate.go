package maze

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/core/systems/physics"
)

// pcgStream keeps maze draws independent from other users of the same seed.
const pcgStream = 0x6d617a65

type flatGround struct{}

func (flatGround) HeightAt(float64, float64) float64 { return 0 }

// Generate carves a maze, registers its walls and gate in reg and returns the
// resulting layout. Floors follow ground at each cell centre; a nil ground is
// flat at zero. Generation is a pure function of cfg and ground.
func Generate(cfg Config, ground physics.Ground, reg *physics.Registry, logger log.Log) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: nil collider registry", ErrInvalidConfig)
	}
	if ground == nil {
		ground = flatGround{}
	}
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.With(log.String("component", "maze"), log.Int64("seed", cfg.Seed))

	l := &Layout{
		Config: cfg,
		Grid:   NewGrid(cfg.Width, cfg.Height),
		ground: ground,
	}
	l.markBounds()
	if l.Grid.InsideCount() == 0 {
		return nil, fmt.Errorf("%w: %dx%d %s grid, inner radius %.1f", ErrNoInteriorCells,
			cfg.Width, cfg.Height, cfg.Shape, cfg.InnerRadius)
	}

	entrance, gateDir, err := l.findEntrance()
	if err != nil {
		return nil, err
	}
	l.Entrance, l.GateDir = entrance, gateDir

	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), pcgStream))

	c := &carver{g: l.Grid, rng: rng, bias: cfg.StraightBias, cap: cfg.MaxCarveOpenings}
	c.carve(entrance)
	c.repair()
	if pruned := c.prune(); pruned > 0 {
		logger.Warn("Pruned cells unreachable from the entrance", log.Int("cells", pruned))
		l.Stats.Pruned = pruned
	}
	l.Stats.Repairs = c.repairs

	inside := l.insideCells()
	ps := &passes{g: l.Grid, rng: rng, cfg: cfg}
	inward := gateDir.Opposite()
	l.Spine, l.coreDoor, l.coreDoorDir, l.hasCoreDoor = ps.spine(entrance, inward)
	ps.branches(l.Spine, inward)
	ps.braid()
	ps.extraCuts(inside)
	ps.widen(inside)
	l.Stats.Braided, l.Stats.Cuts, l.Stats.Widened = ps.braided, ps.cuts, ps.widened

	l.placeLava(rng)
	l.placeSpawnPads()
	l.emit(reg)

	l.Stats.InsideCells = len(inside)
	l.Stats.DeadEnds = len(l.Grid.DeadEnds())
	l.Stats.Walls = len(l.WallColliders)

	logger.Info("Maze generated",
		log.Int("inside", l.Stats.InsideCells),
		log.Int("walls", l.Stats.Walls),
		log.Int("dead_ends", l.Stats.DeadEnds),
		log.Int("repairs", l.Stats.Repairs),
		log.Int("braided", l.Stats.Braided),
		log.Int("spine", len(l.Spine)),
		log.String("gate", gateDir.String()),
	)
	return l, nil
}

func (l *Layout) markBounds() {
	g, cfg := l.Grid, l.Config
	for i := range g.cells {
		r := g.distanceFromCentre(g.PosOf(i))
		if r < cfg.InnerRadius {
			g.clear[i] = true
			continue
		}
		if cfg.Shape == ShapeAnnulus && r > cfg.OuterRadius {
			continue
		}
		g.cells[i].Inside = true
	}
}

// findEntrance picks the cell holding the gate, walking toward the centre
// along the gate-facing axis when that cell is outside bounds.
func (l *Layout) findEntrance() (Pos, Dir, error) {
	gx, gz := l.Config.gate()
	var gateDir Dir
	switch {
	case math.Abs(gz) >= math.Abs(gx) && gz > 0:
		gateDir = South
	case math.Abs(gz) >= math.Abs(gx):
		gateDir = North
	case gx > 0:
		gateDir = East
	default:
		gateDir = West
	}

	start, _ := l.CellAt(gx, gz)
	inward := gateDir.Opposite()
	for p := start; l.Grid.In(p); p = p.Step(inward) {
		if l.Grid.Inside(p) {
			return p, gateDir, nil
		}
	}
	return Pos{}, 0, fmt.Errorf("%w: gate at (%.1f, %.1f) facing %s", ErrEntranceNotFound, gx, gz, gateDir)
}

func (l *Layout) insideCells() []Pos {
	var out []Pos
	for i := range l.Grid.cells {
		if l.Grid.cells[i].Inside {
			out = append(out, l.Grid.PosOf(i))
		}
	}
	return out
}

// placeLava picks dead ends away from the entrance and the spine.
func (l *Layout) placeLava(rng *rand.Rand) {
	if l.Config.LavaCells == 0 {
		return
	}
	candidates := slices.DeleteFunc(l.Grid.DeadEnds(), func(p Pos) bool {
		return p == l.Entrance || slices.Contains(l.Spine, p)
	})
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	n := min(l.Config.LavaCells, len(candidates))
	l.LavaCells = slices.Clone(candidates[:n])
	l.lava = make(map[Pos]bool, n)
	for _, p := range l.LavaCells {
		l.lava[p] = true
	}
}

// placeSpawnPads rings the clear zone, or falls back to the cells farthest
// from the entrance.
func (l *Layout) placeSpawnPads() {
	n := l.Config.SpawnPads
	if n == 0 {
		return
	}

	if slices.Contains(l.Grid.clear, true) {
		r := 0.5 * l.Config.InnerRadius * l.Config.CellSize
		for k := 0; k < n; k++ {
			a := 2 * math.Pi * float64(k) / float64(n)
			x, z := r*math.Cos(a), r*math.Sin(a)
			l.SpawnPads = append(l.SpawnPads, physics.V3(x, l.ground.HeightAt(x, z), z))
		}
		return
	}

	dist := l.Grid.Distances(l.Entrance)
	cells := slices.DeleteFunc(l.insideCells(), func(p Pos) bool { return l.lava[p] })
	slices.SortStableFunc(cells, func(a, b Pos) int {
		return dist[l.Grid.Index(b)] - dist[l.Grid.Index(a)]
	})
	for _, p := range cells[:min(n, len(cells))] {
		l.SpawnPads = append(l.SpawnPads, l.CellCenter(p))
	}
}
