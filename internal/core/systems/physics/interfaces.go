package physics

// Ground provides the floor elevation under a horizontal position.
// terrain.HeightField satisfies it.
type Ground interface {
	HeightAt(x, z float64) float64
}

// HazardField reports whether a point lies inside a damaging volume such as
// lava. y is the height of the body's feet.
type HazardField interface {
	IsHazardAt(x, z, y float64) bool
}

// Entity is anything the world simulates. A nil body means the entity has no
// physics state this tick and is skipped.
type Entity interface {
	PhysicsBody() *Body
}

// DamageSink receives damage computed by the world. Entities opt in by
// implementing it alongside Entity.
type DamageSink interface {
	TakeDamage(amount float64, cause DamageCause)
}

// DamageCause identifies why damage was applied.
type DamageCause uint8

const (
	CauseFall DamageCause = iota
	CauseHazard
	CauseProjectile
)

func (c DamageCause) String() string {
	switch c {
	case CauseFall:
		return "fall"
	case CauseHazard:
		return "hazard"
	case CauseProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}
