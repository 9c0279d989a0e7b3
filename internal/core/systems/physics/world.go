package physics

import (
	"math"

	"github.com/zeusync/mazearena/internal/core/events/bus"
	"github.com/zeusync/mazearena/internal/core/observability/log"
)

const systemName = "physics"

// World integrates bodies against the ground and the static colliders of a
// Registry. It is not safe for concurrent use; the owner ticks it from a
// single goroutine.
type World struct {
	registry *Registry
	grid     *SpatialHash
	ground   Ground
	hazards  HazardField
	settings Settings

	entities []Entity
	events   bus.EventBus
	logger   log.Log

	scratch []ColliderID
	ticks   uint64
}

type WorldOption func(*World)

func WithHazards(h HazardField) WorldOption {
	return func(w *World) { w.hazards = h }
}

func WithEventBus(b bus.EventBus) WorldOption {
	return func(w *World) { w.events = b }
}

func WithLogger(l log.Log) WorldOption {
	return func(w *World) { w.logger = l }
}

func WithSettings(s Settings) WorldOption {
	return func(w *World) { w.settings = s }
}

// NewWorld returns a world over reg and ground. A nil ground is treated as a
// flat floor at zero.
func NewWorld(reg *Registry, ground Ground, opts ...WorldOption) *World {
	w := &World{
		registry: reg,
		ground:   ground,
		settings: DefaultSettings(),
		logger:   log.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		w.registry = NewRegistry()
	}
	if w.ground == nil {
		w.ground = flatGround{}
	}
	w.grid = NewSpatialHash(w.settings.CellSize)
	w.logger = w.logger.With(log.String("system", systemName))
	return w
}

type flatGround struct{}

func (flatGround) HeightAt(float64, float64) float64 { return 0 }

func (w *World) Name() string        { return systemName }
func (w *World) Registry() *Registry { return w.registry }
func (w *World) Settings() Settings  { return w.settings }
func (w *World) Ticks() uint64       { return w.ticks }
func (w *World) Grid() SpatialStats  { return w.grid.Stats() }
func (w *World) Entities() []Entity  { return w.entities }

// SetHazards replaces the hazard field, nil disables hazard damage.
func (w *World) SetHazards(h HazardField) {
	w.hazards = h
}

// AddEntity appends e to the update order.
func (w *World) AddEntity(e Entity) {
	w.entities = append(w.entities, e)
}

// RemoveEntity drops e, keeping the order of the rest. It reports whether e
// was registered.
func (w *World) RemoveEntity(e Entity) bool {
	for i, other := range w.entities {
		if other == e {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			return true
		}
	}
	return false
}

// Update advances every registered body by dt seconds, in registration
// order. Non-positive dt is a no-op.
func (w *World) Update(dt float64) error {
	if dt <= 0 {
		return nil
	}
	w.sync()
	for _, e := range w.entities {
		b := e.PhysicsBody()
		if b == nil {
			continue
		}
		w.step(e, b, dt)
	}
	w.ticks++
	return nil
}

func (w *World) sync() {
	if w.grid.Sync(w.registry) {
		st := w.grid.Stats()
		w.logger.Debug("Spatial hash rebuilt",
			log.Int("colliders", st.Colliders),
			log.Int("cells", st.Cells),
			log.Int("entries", st.Entries),
		)
	}
}

func (w *World) step(e Entity, b *Body, dt float64) {
	s := &w.settings

	switch {
	case b.Frozen:
		b.Velocity = Vec3{}
	case b.OnGround:
		b.Velocity[1] = 0
	default:
		b.Velocity[1] += s.Gravity * dt
	}

	if !b.Frozen {
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
	}

	w.resolveVertical(b)
	w.resolveHorizontal(b)

	if b.OnGround != b.WasOnGround {
		if b.OnGround {
			if drop := b.FallStartY - b.Position[1]; drop > s.FallThreshold {
				amount := (drop - s.FallThreshold) * s.FallDamagePerUnit
				w.damage(e, b, amount, drop, CauseFall)
			}
		}
		b.FallStartY = b.Position[1]
	}
	b.WasOnGround = b.OnGround

	if w.hazards != nil && s.HazardDPS > 0 && w.hazards.IsHazardAt(b.Position[0], b.Position[2], b.Feet()) {
		w.damage(e, b, s.HazardDPS*dt, 0, CauseHazard)
	}

	if b.OnGround {
		b.Velocity[0] *= s.Friction
		b.Velocity[2] *= s.Friction
	}
}

func (w *World) damage(e Entity, b *Body, amount, distance float64, cause DamageCause) {
	if amount <= 0 {
		return
	}
	if sink, ok := e.(DamageSink); ok {
		sink.TakeDamage(amount, cause)
	}
	if w.events == nil {
		return
	}
	typ := bus.TypeHazardDamage
	if cause == CauseFall {
		typ = bus.TypeFallDamage
	}
	payload := bus.DamagePayload{BodyID: b.ID, Amount: amount, Distance: distance}
	if err := w.events.Publish(bus.NewEvent(typ, systemName, payload)); err != nil {
		w.logger.Warn("Damage handler failed", log.String("body", b.ID), log.Error(err))
	}
}

// NearbyColliders returns enabled colliders from the buckets around pos. The
// result may include colliders outside radius; callers narrow it themselves.
func (w *World) NearbyColliders(pos Vec3, radius float64) []Collider {
	w.sync()
	w.scratch = w.grid.Query(pos, radius, w.scratch[:0])
	out := make([]Collider, 0, len(w.scratch))
	for _, id := range w.scratch {
		if c := w.registry.at(id); c.Enabled {
			out = append(out, *c)
		}
	}
	return out
}

// SurfaceAt returns the highest standing surface under (x, z) for feet at
// the given height.
func (w *World) SurfaceAt(x, z, feet float64) float64 {
	w.sync()
	return w.surface(x, z, feet)
}

func (w *World) surface(x, z, feet float64) float64 {
	s := &w.settings
	top := w.ground.HeightAt(x, z)
	if math.IsNaN(top) {
		top = math.Inf(-1)
	}

	w.scratch = w.grid.Query(Vec3{x, 0, z}, s.SurfaceProbe, w.scratch[:0])
	for _, id := range w.scratch {
		c := w.registry.at(id)
		if !c.Enabled || !c.Walkable {
			continue
		}
		if !c.Box.ContainsXZ(x, z, s.SurfaceProbe) {
			continue
		}
		if h := c.Box.Max[1]; h <= feet+s.StepTolerance && h > top {
			top = h
		}
	}
	return top
}
