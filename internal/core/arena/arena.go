package arena

import (
	"fmt"

	"github.com/zeusync/mazearena/internal/core/events/bus"
	"github.com/zeusync/mazearena/internal/core/maze"
	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/core/systems"
	"github.com/zeusync/mazearena/internal/core/systems/physics"
	"github.com/zeusync/mazearena/internal/core/terrain"
)

const source = "arena"

// Arena ties the generated terrain and maze to a physics world and exposes
// the surface that entity owners and gate logic use. Like the world, it is
// mutated from a single goroutine.
type Arena struct {
	cfg  Config
	seed int64

	field    *terrain.HeightField
	registry *physics.Registry
	layout   *maze.Layout
	world    *physics.World
	timer    *GateTimer

	events bus.EventBus
	logger log.Log

	gateOpen bool
}

type Option func(*Arena)

func WithLogger(l log.Log) Option {
	return func(a *Arena) { a.logger = l }
}

func WithEventBus(b bus.EventBus) Option {
	return func(a *Arena) { a.events = b }
}

// New builds terrain, carves the maze over it and wires a physics world.
func New(cfg Config, opts ...Option) (*Arena, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Terrain.ResolveMode(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	a := &Arena{cfg: cfg, seed: cfg.ResolveSeed()}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.Nop()
	}
	if a.events == nil {
		a.events = bus.New()
	}
	a.logger = a.logger.With(log.String("component", source), log.Int64("seed", a.seed))

	w, h := cfg.Maze.Width, cfg.Maze.Height
	field, err := terrain.GenerateRect(cfg.Terrain,
		float64(w)*cfg.Maze.CellSize, float64(h)*cfg.Maze.CellSize, w, h,
		SubsystemSeed(a.seed, "terrain"))
	if err != nil {
		return nil, fmt.Errorf("arena: terrain: %w", err)
	}
	a.field = field

	mcfg := cfg.Maze
	mcfg.Seed = SubsystemSeed(a.seed, "maze")
	a.registry = physics.NewRegistry()
	layout, err := maze.Generate(mcfg, field, a.registry, a.logger)
	if err != nil {
		return nil, fmt.Errorf("arena: maze: %w", err)
	}
	a.layout = layout

	a.world = physics.NewWorld(a.registry, field,
		physics.WithHazards(a),
		physics.WithEventBus(a.events),
		physics.WithLogger(a.logger),
		physics.WithSettings(cfg.Physics),
	)

	if cfg.Gate.StartOpen {
		if err := a.SetGateOpen(true); err != nil {
			return nil, err
		}
	}
	a.timer = NewGateTimer(a, cfg.Gate)

	lo, hi := field.Range()
	exit := layout.ExitPosition()
	a.logger.Info("Arena ready",
		log.Point("exit", exit.X(), exit.Y(), exit.Z()),
		log.Int("colliders", a.registry.Len()),
		log.Int("spawn_pads", len(layout.SpawnPads)),
		log.Int("lava_cells", len(layout.LavaCells)),
		log.Float64("floor_min", lo),
		log.Float64("floor_max", hi),
	)
	return a, nil
}

func (a *Arena) Config() Config              { return a.cfg }
func (a *Arena) Seed() int64                 { return a.seed }
func (a *Arena) World() *physics.World       { return a.world }
func (a *Arena) Layout() *maze.Layout        { return a.layout }
func (a *Arena) Registry() *physics.Registry { return a.registry }
func (a *Arena) Field() *terrain.HeightField { return a.field }
func (a *Arena) Events() bus.EventBus        { return a.events }
func (a *Arena) GateTimer() *GateTimer       { return a.timer }

// Systems returns the tick stages of the arena, gate first.
func (a *Arena) Systems() []systems.System {
	return []systems.System{a.timer, a.world}
}

func (a *Arena) AddEntity(e physics.Entity) { a.world.AddEntity(e) }

func (a *Arena) RemoveEntity(e physics.Entity) bool { return a.world.RemoveEntity(e) }

// Update advances the physics world by dt.
func (a *Arena) Update(dt float64) error { return a.world.Update(dt) }

func (a *Arena) NearbyColliders(pos physics.Vec3, radius float64) []physics.Collider {
	return a.world.NearbyColliders(pos, radius)
}

// HeightAt is the terrain floor under (x, z).
func (a *Arena) HeightAt(x, z float64) float64 { return a.field.HeightAt(x, z) }

// Colliders returns a copy of every registered collider. Use SetGateOpen to
// change the gate.
func (a *Arena) Colliders() []physics.Collider { return a.registry.All() }

// SetGateOpen enables or disables the gate collider and announces the change.
func (a *Arena) SetGateOpen(open bool) error {
	if open == a.gateOpen {
		return nil
	}
	if err := a.registry.SetEnabled(a.layout.GateCollider, !open); err != nil {
		return fmt.Errorf("arena: gate: %w", err)
	}
	a.gateOpen = open
	a.logger.Info("Gate changed", log.Bool("open", open))
	if err := a.events.Publish(bus.NewEvent(bus.TypeGateChanged, source, bus.GatePayload{Open: open})); err != nil {
		a.logger.Warn("Gate handler failed", log.Error(err))
	}
	return nil
}

func (a *Arena) GateOpen() bool { return a.gateOpen }

// IsInsideRegion reports whether pos is over the maze or its clear centre.
func (a *Arena) IsInsideRegion(pos physics.Vec3) bool {
	return a.layout.Contains(pos.X(), pos.Z())
}

// ExitPosition is a floor point just outside the gate.
func (a *Arena) ExitPosition() physics.Vec3 { return a.layout.ExitPosition() }

func (a *Arena) InteriorPoints() []physics.Vec3 { return a.layout.InteriorPoints() }

// SpawnPads returns a copy of the spawn pad positions.
func (a *Arena) SpawnPads() []physics.Vec3 {
	return append([]physics.Vec3(nil), a.layout.SpawnPads...)
}

// IsHazardAt reports whether feet at height y over (x, z) stand in lava.
// Lava fills a cell footprint inset by half a wall and reaches LavaDepth
// above the cell floor.
func (a *Arena) IsHazardAt(x, z, y float64) bool {
	p, ok := a.layout.CellAt(x, z)
	if !ok || !a.layout.IsLava(p) {
		return false
	}
	b := a.layout.CellBounds(p)
	inset := a.cfg.Maze.WallThickness / 2
	if !b.ContainsXZ(x, z, -inset) {
		return false
	}
	return y <= b.Max.Y()+a.cfg.LavaDepth
}
