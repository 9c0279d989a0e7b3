package projectile

import (
	"github.com/google/uuid"

	"github.com/zeusync/mazearena/internal/core/systems/physics"
)

const (
	DefaultLifetime  = 3.0
	DefaultDamage    = 10.0
	DefaultHitMargin = 0.3
)

// Projectile is a fast point moving in a straight line.
type Projectile struct {
	ID       string
	OwnerID  string
	Position physics.Vec3
	Velocity physics.Vec3
	Damage   float64
	Lifetime float64
	Age      float64
}

// Launch describes a projectile to spawn. Zero Damage and Lifetime take the
// defaults.
type Launch struct {
	OwnerID  string
	Origin   physics.Vec3
	Velocity physics.Vec3
	Damage   float64
	Lifetime float64
}

func newProjectile(s Launch) *Projectile {
	p := &Projectile{
		ID:       uuid.NewString(),
		OwnerID:  s.OwnerID,
		Position: s.Origin,
		Velocity: s.Velocity,
		Damage:   s.Damage,
		Lifetime: s.Lifetime,
	}
	if p.Damage <= 0 {
		p.Damage = DefaultDamage
	}
	if p.Lifetime <= 0 {
		p.Lifetime = DefaultLifetime
	}
	return p
}

// Outcome says how a projectile ended.
type Outcome uint8

const (
	// OutcomeHit means an entity was struck.
	OutcomeHit Outcome = iota + 1
	// OutcomeWall means the motion segment entered a collider.
	OutcomeWall
	// OutcomeGround means the projectile went below the floor.
	OutcomeGround
	// OutcomeExpired means the lifetime ran out in flight.
	OutcomeExpired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeWall:
		return "wall"
	case OutcomeGround:
		return "ground"
	case OutcomeExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Result reports a projectile that was consumed during a step.
type Result struct {
	ProjectileID string
	OwnerID      string
	Outcome      Outcome
	// TargetID is the struck body for OutcomeHit.
	TargetID string
	// Collider is the struck collider for OutcomeWall.
	Collider physics.ColliderID
	Point    physics.Vec3
}
