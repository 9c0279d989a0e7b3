package server

import (
	"math/rand/v2"

	"github.com/zeusync/mazearena/internal/core/arena"
	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/core/projectile"
	"github.com/zeusync/mazearena/internal/core/systems"
	"github.com/zeusync/mazearena/internal/core/systems/physics"
)

const (
	demoSystemName = "demo"
	// arriveDistance is how close a walker gets to its waypoint before
	// picking another.
	arriveDistance = 1.0
	spawnDrop      = 0.5
)

// walker is an AI body that wanders between interior points and shoots at
// whoever is in range.
type walker struct {
	body     *physics.Body
	health   float64
	waypoint physics.Vec3
	fireCD   float64
	deaths   int
	spawn    int
}

func (w *walker) PhysicsBody() *physics.Body { return w.body }

func (w *walker) TakeDamage(amount float64, _ physics.DamageCause) {
	w.health -= amount
}

func (w *walker) alive() bool { return w.health > 0 }

// population drives the demo walkers. It runs before physics so velocities
// set here integrate on the same tick.
type population struct {
	arena   *arena.Arena
	shots   *projectile.Manager
	cfg     DemoConfig
	walkers []*walker
	rng     *rand.Rand
	logger  log.Log
}

func newPopulation(a *arena.Arena, shots *projectile.Manager, cfg DemoConfig, count int, logger log.Log) *population {
	seed := uint64(arena.SubsystemSeed(a.Seed(), demoSystemName))
	p := &population{
		arena:  a,
		shots:  shots,
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(seed, seed>>1|1)),
		logger: logger.With(log.String("system", demoSystemName)),
	}
	for i := 0; i < count; i++ {
		w := &walker{spawn: i}
		w.body = physics.NewBody(physics.Vec3{}, cfg.Radius, cfg.Height)
		p.respawn(w)
		p.walkers = append(p.walkers, w)
		a.AddEntity(w)
	}
	return p
}

func (p *population) Name() string               { return demoSystemName }
func (p *population) Priority() systems.Priority { return systems.PriorityHighest }

func (p *population) Update(dt float64) error {
	for _, w := range p.walkers {
		if !w.alive() {
			w.deaths++
			pos := w.body.Position
			p.logger.Debug("Walker down",
				log.String("walker", w.body.ID),
				log.Int("deaths", w.deaths),
				log.Point("at", pos.X(), pos.Y(), pos.Z()))
			p.respawn(w)
			continue
		}
		p.steer(w)
		w.fireCD -= dt
		if w.fireCD <= 0 {
			if target := p.nearestVisible(w); target != nil {
				p.fire(w, target)
				w.fireCD = p.cfg.FireInterval
			}
		}
	}
	return nil
}

// respawn drops the walker just above its spawn pad with full health.
func (p *population) respawn(w *walker) {
	pads := p.arena.SpawnPads()
	var at physics.Vec3
	if len(pads) > 0 {
		at = pads[w.spawn%len(pads)]
	}
	b := w.body
	b.Position = at.Add(physics.V3(0, b.Height+spawnDrop, 0))
	b.Velocity = physics.Vec3{}
	b.OnGround, b.WasOnGround = false, false
	b.FallStartY = b.Position.Y()
	w.health = p.cfg.Health
	w.fireCD = p.cfg.FireInterval
	w.waypoint = p.pickWaypoint(at)
}

func (p *population) pickWaypoint(fallback physics.Vec3) physics.Vec3 {
	points := p.arena.InteriorPoints()
	if len(points) == 0 {
		return fallback
	}
	return points[p.rng.IntN(len(points))]
}

// steer heads for the waypoint and re-rolls it when the way ahead is
// blocked by something too tall to step onto.
func (p *population) steer(w *walker) {
	b := w.body
	if physics.HorizontalDistance(b.Position, w.waypoint) < arriveDistance {
		w.waypoint = p.pickWaypoint(b.Position)
	}

	dir := physics.V3(w.waypoint.X()-b.Position.X(), 0, w.waypoint.Z()-b.Position.Z())
	if dir.Len() < 1e-9 {
		b.Velocity = physics.V3(0, b.Velocity.Y(), 0)
		return
	}
	dir = dir.Normalize()

	if p.blocked(b, dir) {
		w.waypoint = p.pickWaypoint(b.Position)
		b.Velocity = physics.V3(0, b.Velocity.Y(), 0)
		return
	}
	b.Velocity = physics.V3(dir.X()*p.cfg.Speed, b.Velocity.Y(), dir.Z()*p.cfg.Speed)
}

func (p *population) blocked(b *physics.Body, dir physics.Vec3) bool {
	probe := b.Position.Add(dir.Mul(b.Radius + p.cfg.Lookahead))
	stepTop := b.Feet() + p.arena.World().Settings().StepTolerance
	for _, c := range p.arena.NearbyColliders(probe, b.Radius) {
		if c.Box.Max.Y() > stepTop && c.Box.CircleOverlapsXZ(probe.X(), probe.Z(), b.Radius) {
			return true
		}
	}
	return false
}

// nearestVisible returns the closest other live walker within range that no
// enabled collider hides.
func (p *population) nearestVisible(w *walker) *walker {
	var best *walker
	bestD := p.cfg.FireRange * p.cfg.FireRange
	for _, o := range p.walkers {
		if o == w || !o.alive() {
			continue
		}
		d := o.body.Position.Sub(w.body.Position)
		if d2 := d.Dot(d); d2 < bestD {
			if _, _, hit := p.arena.World().Sweep(w.body.Position, o.body.Position); hit {
				continue
			}
			best, bestD = o, d2
		}
	}
	return best
}

func (p *population) fire(w, target *walker) {
	d := target.body.Position.Sub(w.body.Position)
	if d.Len() < 1e-9 {
		return
	}
	p.shots.Spawn(projectile.Launch{
		OwnerID:  w.body.ID,
		Origin:   w.body.Position,
		Velocity: d.Normalize().Mul(p.cfg.ProjectileSpeed),
	})
}
