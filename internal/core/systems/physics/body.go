package physics

import "github.com/google/uuid"

// Body is the physical state of an entity. Position.Y is the body origin; the
// feet sit Height below it.
type Body struct {
	ID       string
	Position Vec3
	Velocity Vec3
	Radius   float64
	Height   float64

	OnGround    bool
	WasOnGround bool
	// FallStartY is the origin height at the last ground contact change.
	FallStartY float64
	// Frozen bodies keep their position and have their velocity zeroed.
	Frozen bool
}

// NewBody returns an airborne body at pos.
func NewBody(pos Vec3, radius, height float64) *Body {
	return &Body{
		ID:         uuid.NewString(),
		Position:   pos,
		Radius:     radius,
		Height:     height,
		FallStartY: pos.Y(),
	}
}

// Feet returns the height of the bottom of the body.
func (b *Body) Feet() float64 {
	return b.Position[1] - b.Height
}

// Jump leaves the ground with the given upward speed. Grounded bodies have
// their vertical velocity cleared each tick, so lifting off must go through
// here.
func (b *Body) Jump(speed float64) {
	if !b.OnGround || b.Frozen {
		return
	}
	b.OnGround = false
	b.Velocity[1] = speed
}

// PhysicsBody lets a bare Body be registered as an Entity.
func (b *Body) PhysicsBody() *Body { return b }
