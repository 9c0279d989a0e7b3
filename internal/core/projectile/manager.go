package projectile

import (
	"github.com/zeusync/mazearena/internal/core/events/bus"
	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/core/systems"
	"github.com/zeusync/mazearena/internal/core/systems/physics"
)

const systemName = "projectile"

// Sweeper finds the collider a motion segment enters. physics.World
// satisfies it.
type Sweeper interface {
	Sweep(start, end physics.Vec3) (physics.Collider, float64, bool)
}

// Manager advances live projectiles and resolves what they strike.
type Manager struct {
	sweeper Sweeper
	ground  physics.Ground
	margin  float64
	targets func() []physics.Entity

	live   []*Projectile
	events bus.EventBus
	logger log.Log
}

type Option func(*Manager)

func WithEventBus(b bus.EventBus) Option {
	return func(m *Manager) { m.events = b }
}

func WithLogger(l log.Log) Option {
	return func(m *Manager) { m.logger = l }
}

// WithHitMargin widens every entity's radius for hit tests.
func WithHitMargin(margin float64) Option {
	return func(m *Manager) { m.margin = margin }
}

// WithTargets sets where Update finds the entities projectiles can hit.
func WithTargets(fn func() []physics.Entity) Option {
	return func(m *Manager) { m.targets = fn }
}

func NewManager(sweeper Sweeper, ground physics.Ground, opts ...Option) *Manager {
	m := &Manager{
		sweeper: sweeper,
		ground:  ground,
		margin:  DefaultHitMargin,
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(log.String("system", systemName))
	return m
}

func (m *Manager) Name() string               { return systemName }
func (m *Manager) Priority() systems.Priority { return systems.PriorityLow }

// Spawn launches a projectile and returns its id.
func (m *Manager) Spawn(s Launch) string {
	p := newProjectile(s)
	m.live = append(m.live, p)
	return p.ID
}

// Live returns the projectiles still in flight. The slice is reused by the
// next Step.
func (m *Manager) Live() []*Projectile { return m.live }

// Update steps against the configured targets.
func (m *Manager) Update(dt float64) error {
	var targets []physics.Entity
	if m.targets != nil {
		targets = m.targets()
	}
	m.Step(dt, targets)
	return nil
}

// Step moves every projectile by dt. Per projectile, entity hits are tested
// first, then the wall sweep, the floor and finally the lifetime; the first
// that applies consumes it.
func (m *Manager) Step(dt float64, targets []physics.Entity) []Result {
	if dt <= 0 {
		return nil
	}

	var results []Result
	kept := m.live[:0]
	for _, p := range m.live {
		if r, done := m.advance(p, dt, targets); done {
			results = append(results, r)
			m.publish(r)
			continue
		}
		kept = append(kept, p)
	}
	clear(m.live[len(kept):])
	m.live = kept
	return results
}

func (m *Manager) advance(p *Projectile, dt float64, targets []physics.Entity) (Result, bool) {
	start := p.Position
	end := start.Add(p.Velocity.Mul(dt))
	p.Position = end
	p.Age += dt

	r := Result{ProjectileID: p.ID, OwnerID: p.OwnerID}

	for _, e := range targets {
		b := e.PhysicsBody()
		if b == nil || b.ID == p.OwnerID {
			continue
		}
		if hits(b, end, m.margin) {
			if sink, ok := e.(physics.DamageSink); ok {
				sink.TakeDamage(p.Damage, physics.CauseProjectile)
			}
			r.Outcome, r.TargetID, r.Point = OutcomeHit, b.ID, end
			return r, true
		}
	}

	if m.sweeper != nil {
		if c, t, ok := m.sweeper.Sweep(start, end); ok {
			r.Outcome, r.Collider = OutcomeWall, c.ID
			r.Point = start.Add(end.Sub(start).Mul(t))
			return r, true
		}
	}

	if m.ground != nil {
		if floor := m.ground.HeightAt(end.X(), end.Z()); end.Y() <= floor {
			r.Outcome, r.Point = OutcomeGround, physics.V3(end.X(), floor, end.Z())
			return r, true
		}
	}

	if p.Age >= p.Lifetime {
		r.Outcome, r.Point = OutcomeExpired, end
		return r, true
	}
	return Result{}, false
}

// hits tests the point against the body's vertical axis, from feet to
// origin, widened by the body radius plus margin.
func hits(b *physics.Body, pt physics.Vec3, margin float64) bool {
	y := physics.Clamp(pt.Y(), b.Feet(), b.Position.Y())
	axis := physics.V3(b.Position.X(), y, b.Position.Z())
	d := pt.Sub(axis)
	reach := b.Radius + margin
	return d.Dot(d) < reach*reach
}

func (m *Manager) publish(r Result) {
	if m.events == nil || r.Outcome == OutcomeExpired {
		return
	}
	typ := bus.TypeProjectileImpact
	if r.Outcome == OutcomeHit {
		typ = bus.TypeProjectileHit
	}
	payload := bus.ProjectilePayload{
		ProjectileID: r.ProjectileID,
		OwnerID:      r.OwnerID,
		TargetID:     r.TargetID,
		X:            r.Point.X(),
		Y:            r.Point.Y(),
		Z:            r.Point.Z(),
	}
	if err := m.events.Publish(bus.NewEvent(typ, systemName, payload)); err != nil {
		m.logger.Warn("Projectile handler failed", log.String("projectile", r.ProjectileID), log.Error(err))
	}
}
