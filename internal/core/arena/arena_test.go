package arena

import (
	"context"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/mazearena/internal/core/events/bus"
	"github.com/zeusync/mazearena/internal/core/maze"
	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/core/systems/physics"
	"github.com/zeusync/mazearena/internal/core/terrain"
)

func newArena(t *testing.T, mutate func(*Config), opts ...Option) *Arena {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := New(cfg, opts...)
	require.NoError(t, err)
	return a
}

func TestGateToggleIsIdempotentAndAnnounced(t *testing.T) {
	events := bus.New()
	var seen []bool
	_, err := events.Subscribe(bus.TypeGateChanged, func(e bus.Event) error {
		seen = append(seen, e.Data().(bus.GatePayload).Open)
		return nil
	})
	require.NoError(t, err)

	a := newArena(t, nil, WithEventBus(events))
	gate, _ := a.Registry().Get(a.Layout().GateCollider)
	assert.True(t, gate.Enabled)
	assert.False(t, a.GateOpen())

	require.NoError(t, a.SetGateOpen(true))
	require.NoError(t, a.SetGateOpen(true))
	gate, _ = a.Registry().Get(a.Layout().GateCollider)
	assert.False(t, gate.Enabled)
	assert.True(t, a.GateOpen())

	require.NoError(t, a.SetGateOpen(false))
	assert.Equal(t, []bool{true, false}, seen)
}

func TestGateBlocksUntilOpened(t *testing.T) {
	a := newArena(t, nil)
	entrance := a.Layout().CellCenter(a.Layout().Entrance)
	doorway := a.Layout().Doorway

	walk := func() *physics.Body {
		b := physics.NewBody(physics.V3(entrance.X(), entrance.Y()+2, entrance.Z()), 0.5, 2)
		b.OnGround, b.WasOnGround = true, true
		a.AddEntity(b)
		for i := 0; i < 120; i++ {
			b.Velocity[2] = 4
			require.NoError(t, a.Update(1.0/60))
		}
		a.RemoveEntity(b)
		return b
	}

	blocked := walk()
	assert.LessOrEqual(t, blocked.Position.Z(), doorway.Min.Z()-0.5+1e-6)
	assert.True(t, a.IsInsideRegion(blocked.Position))

	require.NoError(t, a.SetGateOpen(true))
	passed := walk()
	assert.Greater(t, passed.Position.Z(), doorway.Max.Z()+0.5)
	assert.False(t, a.IsInsideRegion(passed.Position))
}

func TestRegionExitAndSpawnPads(t *testing.T) {
	a := newArena(t, nil)

	assert.False(t, a.IsInsideRegion(a.ExitPosition()))
	pads := a.SpawnPads()
	require.NotEmpty(t, pads)
	for _, p := range pads {
		assert.True(t, a.IsInsideRegion(p))
	}
	pads[0] = physics.V3(999, 0, 999)
	assert.NotEqual(t, pads[0], a.SpawnPads()[0])

	for _, p := range a.InteriorPoints() {
		assert.False(t, a.IsHazardAt(p.X(), p.Z(), p.Y()))
	}
}

func TestLavaHazard(t *testing.T) {
	a := newArena(t, nil)
	lava := a.Layout().LavaCells
	require.NotEmpty(t, lava)

	c := a.Layout().CellCenter(lava[0])
	assert.True(t, a.IsHazardAt(c.X(), c.Z(), c.Y()))
	assert.True(t, a.IsHazardAt(c.X()+1, c.Z()-1, c.Y()+0.2))
	assert.False(t, a.IsHazardAt(c.X(), c.Z(), c.Y()+1))
	assert.False(t, a.IsHazardAt(c.X()+1.9, c.Z(), c.Y()))

	events := a.Events()
	var burns int
	_, err := events.Subscribe(bus.TypeHazardDamage, func(bus.Event) error {
		burns++
		return nil
	})
	require.NoError(t, err)
	b := physics.NewBody(physics.V3(c.X(), c.Y()+2, c.Z()), 0.4, 2)
	a.AddEntity(b)
	for i := 0; i < 10; i++ {
		require.NoError(t, a.Update(0.05))
	}
	assert.Equal(t, 10, burns)
}

func TestGateTimerCycles(t *testing.T) {
	a := newArena(t, func(c *Config) {
		c.Gate = GateConfig{OpenSeconds: 1, ClosedSeconds: 2}
	})
	timer := a.GateTimer()
	require.True(t, timer.Enabled())

	require.NoError(t, timer.Update(1.5))
	assert.False(t, a.GateOpen())
	assert.InDelta(t, 0.5, timer.Remaining(), 1e-9)

	require.NoError(t, timer.Update(0.5))
	assert.True(t, a.GateOpen())
	require.NoError(t, timer.Update(1))
	assert.False(t, a.GateOpen())

	// A long stall flips through several phases.
	require.NoError(t, timer.Update(3))
	assert.False(t, a.GateOpen())

	names := []string{}
	for _, s := range a.Systems() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"gate_timer", "physics"}, names)
}

func TestStartOpenAndDisabledTimer(t *testing.T) {
	a := newArena(t, func(c *Config) {
		c.Gate = GateConfig{StartOpen: true}
	})
	assert.True(t, a.GateOpen())
	assert.False(t, a.GateTimer().Enabled())
	require.NoError(t, a.GateTimer().Update(100))
	assert.True(t, a.GateOpen())
}

func TestSeedsAreStableAndIndependent(t *testing.T) {
	assert.Equal(t, SeedFromPhrase("lava lamp"), SeedFromPhrase("lava lamp"))
	assert.NotEqual(t, SeedFromPhrase("lava lamp"), SeedFromPhrase("lava lamps"))
	assert.NotEqual(t, SubsystemSeed(7, "maze"), SubsystemSeed(7, "terrain"))
	assert.NotEqual(t, SubsystemSeed(7, "maze"), SubsystemSeed(8, "maze"))

	phrase := func(c *Config) { c.SeedPhrase = "lava lamp" }
	x := newArena(t, phrase)
	y := newArena(t, phrase)
	assert.Equal(t, SeedFromPhrase("lava lamp"), x.Seed())
	assert.Equal(t, x.Colliders(), y.Colliders())
	assert.Equal(t, x.Layout().Render(), y.Layout().Render())
}

func TestTerrainShapesFloorsAndWalls(t *testing.T) {
	a := newArena(t, func(c *Config) {
		c.Terrain.Amplitude = 2
		c.Terrain.Terrace = 0.5
	})
	lo, hi := a.Field().Range()
	require.Less(t, lo, hi)

	l := a.Layout()
	for _, id := range l.WallColliders[:20] {
		c, _ := a.Registry().Get(id)
		assert.GreaterOrEqual(t, c.Box.Max.Y()-c.Box.Min.Y(), a.Config().Maze.WallHeight-1e-9)
	}
	p := l.CellCenter(l.Entrance)
	assert.Equal(t, a.HeightAt(p.X(), p.Z()), p.Y())
}

func TestBlockFloorsFillWholeCellsOnNonSquareGrids(t *testing.T) {
	for _, dims := range [][2]int{{15, 8}, {20, 13}, {41, 41}} {
		a := newArena(t, func(c *Config) {
			c.Maze.Shape = maze.ShapeRect
			c.Maze.InnerRadius = 0
			c.Maze.Width, c.Maze.Height = dims[0], dims[1]
			c.Terrain.Amplitude = 3
			c.Terrain.Terrace = 0.5
		})
		l := a.Layout()
		nx, nz := a.Field().Dims()
		require.Equal(t, dims[0], nx)
		require.Equal(t, dims[1], nz)

		const inset = 0.1
		for j := 0; j < dims[1]; j++ {
			for i := 0; i < dims[0]; i++ {
				b := l.CellBounds(maze.Pos{X: i, Z: j})
				floor := b.Min.Y()
				for _, corner := range [][2]float64{
					{b.Min.X() + inset, b.Min.Z() + inset},
					{b.Max.X() - inset, b.Min.Z() + inset},
					{b.Min.X() + inset, b.Max.Z() - inset},
					{b.Max.X() - inset, b.Max.Z() - inset},
				} {
					assert.Equal(t, floor, a.HeightAt(corner[0], corner[1]), "%dx%d cell %d,%d", dims[0], dims[1], i, j)
				}
			}
		}
	}
}

func TestCollidersReturnsACopy(t *testing.T) {
	a := newArena(t, nil)
	gate := a.Layout().GateCollider

	all := a.Colliders()
	for i := range all {
		all[i].Enabled = !all[i].Enabled
	}

	c, ok := a.Registry().Get(gate)
	require.True(t, ok)
	assert.Equal(t, !a.GateOpen(), c.Enabled)
}

// messages records every message logged through it and its children.
type messages struct {
	inner log.Log
	seen  *[]string
}

func (m messages) Log(_ log.Level, msg string, _ ...log.Field) { *m.seen = append(*m.seen, msg) }
func (m messages) Debug(msg string, f ...log.Field)            { m.Log(log.LevelDebug, msg, f...) }
func (m messages) Info(msg string, f ...log.Field)             { m.Log(log.LevelInfo, msg, f...) }
func (m messages) Warn(msg string, f ...log.Field)             { m.Log(log.LevelWarn, msg, f...) }
func (m messages) Error(msg string, f ...log.Field)            { m.Log(log.LevelError, msg, f...) }
func (m messages) With(...log.Field) log.Log                   { return m }
func (m messages) SetLevel(l log.Level)                        { m.inner.SetLevel(l) }
func (m messages) GetLevel() log.Level                         { return m.inner.GetLevel() }

func TestLogMessagesAreSentenceCase(t *testing.T) {
	var seen []string
	a := newArena(t, nil, WithLogger(messages{inner: log.Nop(), seen: &seen}))
	require.NoError(t, a.SetGateOpen(!a.GateOpen()))
	require.NoError(t, a.Update(1.0/60))

	assert.Contains(t, seen, "Maze generated")
	assert.Contains(t, seen, "Arena ready")
	assert.Contains(t, seen, "Gate changed")
	for _, msg := range seen {
		require.NotEmpty(t, msg)
		assert.True(t, unicode.IsUpper([]rune(msg)[0]), msg)
	}
}

func TestLoadYAML(t *testing.T) {
	cfg, err := LoadYAML(strings.NewReader(`
seed_phrase: torch
maze:
  width: 21
  height: 21
  outer_radius: 10
  inner_radius: 3
terrain:
  mode: bilinear
  amplitude: 1.5
physics:
  gravity: -20
gate:
  open_seconds: 5
  closed_seconds: 5
`))
	require.NoError(t, err)
	assert.Equal(t, 21, cfg.Maze.Width)
	assert.Equal(t, terrain.Bilinear, cfg.Terrain.Mode)
	assert.Equal(t, -20.0, cfg.Physics.Gravity)
	assert.Equal(t, 0.8, cfg.Physics.Friction)
	assert.Equal(t, maze.ShapeAnnulus, cfg.Maze.Shape)

	a, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 22, a.Field().N())

	cfg, err = LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Maze, cfg.Maze)

	_, err = LoadYAML(strings.NewReader("mazes: {}\n"))
	assert.Error(t, err)

	_, err = LoadYAML(strings.NewReader("physics:\n  gravity: 5\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadYAML(strings.NewReader("terrain:\n  mode: voxel\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadFile("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestSweepSurveysSeedsInOrder(t *testing.T) {
	base := DefaultConfig()
	base.Maze.Width, base.Maze.Height = 21, 21
	base.Maze.OuterRadius, base.Maze.InnerRadius = 10, 3

	seeds := []int64{1, 2, 3, 4, 5, 6}
	surveys, err := Sweep(context.Background(), base, seeds, 3)
	require.NoError(t, err)
	require.Len(t, surveys, len(seeds))
	for i, s := range surveys {
		assert.Equal(t, seeds[i], s.Seed)
		assert.NoError(t, s.Err)
		assert.Positive(t, s.Stats.Walls)
		assert.Equal(t, s.Stats.Walls+1, s.Colliders)
	}

	base.Maze.InnerRadius = 30
	surveys, err = Sweep(context.Background(), base, seeds[:2], 2)
	require.NoError(t, err)
	for _, s := range surveys {
		assert.ErrorIs(t, s.Err, maze.ErrNoInteriorCells)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Sweep(ctx, base, seeds, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
