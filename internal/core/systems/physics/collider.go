package physics

import (
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownCollider = errors.New("physics: unknown collider")

// ColliderID is the handle callers keep for a registered collider.
type ColliderID int

// ColliderKind classifies static geometry.
type ColliderKind uint8

const (
	KindWall ColliderKind = iota
	KindGate
	KindPlatform
	KindFloor
)

func (k ColliderKind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindGate:
		return "gate"
	case KindPlatform:
		return "platform"
	case KindFloor:
		return "floor"
	default:
		return "unknown"
	}
}

// Collider is a static box in the world. Walkable colliders can be stood on;
// disabled colliders take part in no collision step.
type Collider struct {
	ID       ColliderID
	Box      AABB
	Kind     ColliderKind
	Walkable bool
	Enabled  bool
}

type ColliderOption func(*Collider)

func WithWalkable(walkable bool) ColliderOption {
	return func(c *Collider) { c.Walkable = walkable }
}

func WithEnabled(enabled bool) ColliderOption {
	return func(c *Collider) { c.Enabled = enabled }
}

func WithKind(kind ColliderKind) ColliderOption {
	return func(c *Collider) { c.Kind = kind }
}

// Registry is the append-only owner of every collider. Colliders are never
// removed; Enabled is the only field that changes after Add.
type Registry struct {
	colliders []Collider
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a box with the given centre and full size.
func (r *Registry) Add(center, size Vec3, opts ...ColliderOption) ColliderID {
	c := Collider{
		ID:       ColliderID(len(r.colliders)),
		Box:      NewAABB(center, size),
		Kind:     KindWall,
		Walkable: true,
		Enabled:  true,
	}
	for _, opt := range opts {
		opt(&c)
	}
	r.colliders = append(r.colliders, c)
	return c.ID
}

// AddBox registers a box given directly by its corners.
func (r *Registry) AddBox(box AABB, opts ...ColliderOption) ColliderID {
	return r.Add(box.Center(), box.Size(), opts...)
}

// All returns a copy of every collider. Enabled changes go through
// SetEnabled only.
func (r *Registry) All() []Collider {
	return slices.Clone(r.colliders)
}

func (r *Registry) Len() int {
	return len(r.colliders)
}

// Get returns a copy of the collider.
func (r *Registry) Get(id ColliderID) (Collider, bool) {
	if id < 0 || int(id) >= len(r.colliders) {
		return Collider{}, false
	}
	return r.colliders[id], true
}

// SetEnabled toggles whether the collider blocks movement.
func (r *Registry) SetEnabled(id ColliderID, enabled bool) error {
	if id < 0 || int(id) >= len(r.colliders) {
		return fmt.Errorf("%w: %d", ErrUnknownCollider, id)
	}
	r.colliders[id].Enabled = enabled
	return nil
}

func (r *Registry) at(id ColliderID) *Collider {
	return &r.colliders[id]
}
