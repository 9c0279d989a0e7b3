package bus

// Event types published by the simulation.
const (
	TypeFallDamage       = "physics.fall_damage"
	TypeHazardDamage     = "physics.hazard_damage"
	TypeGateChanged      = "arena.gate_changed"
	TypeProjectileHit    = "projectile.hit"
	TypeProjectileImpact = "projectile.impact"
)

// DamagePayload accompanies TypeFallDamage and TypeHazardDamage.
type DamagePayload struct {
	BodyID string
	Amount float64
	// Distance is the fall height for fall damage and zero otherwise.
	Distance float64
}

// GatePayload accompanies TypeGateChanged.
type GatePayload struct {
	Open bool
}

// ProjectilePayload accompanies projectile events. TargetID is empty for wall
// and ground impacts.
type ProjectilePayload struct {
	ProjectileID string
	OwnerID      string
	TargetID     string
	X, Y, Z      float64
}
