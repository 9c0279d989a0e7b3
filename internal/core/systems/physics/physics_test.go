package physics

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/mazearena/internal/core/events/bus"
)

type flat float64

func (f flat) HeightAt(float64, float64) float64 { return float64(f) }

type damaged struct {
	*Body
	taken map[DamageCause]float64
}

func newDamaged(pos Vec3) *damaged {
	return &damaged{Body: NewBody(pos, 0.5, 2), taken: map[DamageCause]float64{}}
}

func (d *damaged) TakeDamage(amount float64, cause DamageCause) {
	d.taken[cause] += amount
}

type nilEntity struct{}

func (nilEntity) PhysicsBody() *Body { return nil }

type hazardStrip struct{ minX, maxX, surface float64 }

func (h hazardStrip) IsHazardAt(x, _, y float64) bool {
	return x >= h.minX && x <= h.maxX && y <= h.surface+0.1
}

func run(w *World, seconds, dt float64) {
	steps := int(math.Round(seconds / dt))
	for i := 0; i < steps; i++ {
		_ = w.Update(dt)
	}
}

func TestRegistryDefaultsAndSetEnabled(t *testing.T) {
	r := NewRegistry()
	wall := r.Add(V3(0, 1, 0), V3(2, 2, 2))
	gate := r.Add(V3(5, 1, 0), V3(1, 2, 4), WithKind(KindGate), WithWalkable(false))

	c, ok := r.Get(wall)
	require.True(t, ok)
	assert.True(t, c.Walkable)
	assert.True(t, c.Enabled)
	assert.Equal(t, KindWall, c.Kind)
	assert.Equal(t, V3(-1, 0, -1), c.Box.Min)
	assert.Equal(t, V3(1, 2, 1), c.Box.Max)

	c, _ = r.Get(gate)
	assert.Equal(t, "gate", c.Kind.String())
	assert.False(t, c.Walkable)

	require.NoError(t, r.SetEnabled(gate, false))
	c, _ = r.Get(gate)
	assert.False(t, c.Enabled)

	assert.ErrorIs(t, r.SetEnabled(ColliderID(99), true), ErrUnknownCollider)
	_, ok = r.Get(ColliderID(-1))
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())
}

func TestAABBNormalisesCorners(t *testing.T) {
	b := FromCorners(V3(3, 4, -1), V3(-2, 0, 5))
	assert.Equal(t, V3(-2, 0, -1), b.Min)
	assert.Equal(t, V3(3, 4, 5), b.Max)

	b = NewAABB(V3(0, 0, 0), V3(-2, 2, -4))
	assert.Equal(t, V3(-1, -1, -2), b.Min)
	assert.True(t, b.CircleOverlapsXZ(1.5, 0, 0.5))
	assert.False(t, b.CircleOverlapsXZ(1.6, 0, 0.5))
}

func TestSpatialHashEmptyBeforeBuild(t *testing.T) {
	g := NewSpatialHash(0)
	assert.Empty(t, g.Query(V3(0, 0, 0), 100, nil))

	r := NewRegistry()
	assert.True(t, g.Sync(r))
	assert.False(t, g.Sync(r))
	assert.Empty(t, g.Query(V3(0, 0, 0), 100, nil))
}

func TestSpatialHashQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	r := NewRegistry()
	for i := 0; i < 300; i++ {
		center := V3(rng.Float64()*200-100, 1, rng.Float64()*200-100)
		size := V3(0.5+rng.Float64()*20, 2, 0.5+rng.Float64()*20)
		r.Add(center, size)
	}

	g := NewSpatialHash(16)
	require.True(t, g.Sync(r))

	var buf []ColliderID
	for q := 0; q < 200; q++ {
		p := V3(rng.Float64()*240-120, 0, rng.Float64()*240-120)
		radius := rng.Float64() * 12

		buf = g.Query(p, radius, buf[:0])
		got := slices.Clone(buf)
		slices.Sort(got)
		assert.Equal(t, len(got), len(slices.Compact(slices.Clone(got))), "duplicate ids")

		for _, c := range r.All() {
			if c.Box.CircleOverlapsXZ(p[0], p[2], radius) {
				_, found := slices.BinarySearch(got, c.ID)
				assert.True(t, found, "collider %d missing for query %v r=%.2f", c.ID, p, radius)
			}
		}
	}
}

func TestSpatialHashRebuildsOnlyOnGrowth(t *testing.T) {
	r := NewRegistry()
	r.Add(V3(0, 1, 0), V3(1, 2, 1))
	g := NewSpatialHash(8)
	assert.True(t, g.Sync(r))
	assert.False(t, g.Sync(r))

	require.NoError(t, r.SetEnabled(0, false))
	assert.False(t, g.Sync(r))

	r.Add(V3(40, 1, 40), V3(1, 2, 1))
	assert.True(t, g.Sync(r))
	assert.Equal(t, 2, g.Stats().Builds)
	assert.Equal(t, 2, g.Stats().Colliders)
}

func TestBodySettlesOnGround(t *testing.T) {
	w := NewWorld(NewRegistry(), flat(1))
	b := NewBody(V3(0, 10, 0), 0.5, 2)
	w.AddEntity(b)

	run(w, 2, 1.0/60)

	assert.True(t, b.OnGround)
	assert.InDelta(t, 3, b.Position.Y(), 1e-9)
	assert.Zero(t, b.Velocity.Y())
}

func TestStandsOnWalkableTop(t *testing.T) {
	r := NewRegistry()
	r.Add(V3(0, 1, 0), V3(4, 2, 4))
	w := NewWorld(r, flat(0))
	b := NewBody(V3(0, 5, 0), 0.5, 2)
	w.AddEntity(b)

	run(w, 1, 1.0/60)

	assert.True(t, b.OnGround)
	assert.InDelta(t, 2, b.Feet(), 1e-9)
	assert.InDelta(t, 2, w.SurfaceAt(0, 0, 2), 1e-9)
}

func TestRestingOnTopKeepsFootprintPosition(t *testing.T) {
	cases := []struct{ top, height float64 }{
		{0.1, 0.3},
		{0.5, 1.8},
		{1.0, 1.8},
		{0.3, 0.7},
		{2.7, 1.1},
		{5.9, 2.9},
	}
	for _, tc := range cases {
		r := NewRegistry()
		r.Add(V3(0, tc.top/2, 0), V3(4, tc.top, 4))
		w := NewWorld(r, flat(0))
		b := NewBody(V3(0, tc.top+tc.height+0.5, 0), 0.4, tc.height)
		w.AddEntity(b)

		for i := 0; i < 60; i++ {
			require.NoError(t, w.Update(1.0/60))
			require.Equal(t, 0.0, b.Position.X(), "top=%v h=%v tick=%d", tc.top, tc.height, i)
			require.Equal(t, 0.0, b.Position.Z(), "top=%v h=%v tick=%d", tc.top, tc.height, i)
		}
		assert.True(t, b.OnGround, "top=%v h=%v", tc.top, tc.height)
		assert.InDelta(t, tc.top, b.Feet(), 1e-9, "top=%v h=%v", tc.top, tc.height)
	}
}

func TestRegistryAllIsACopy(t *testing.T) {
	r := NewRegistry()
	id := r.Add(V3(0, 1, 0), V3(2, 2, 2))

	all := r.All()
	all[0].Enabled = false

	c, ok := r.Get(id)
	require.True(t, ok)
	assert.True(t, c.Enabled)
}

func TestNonWalkableTopIsNotASurface(t *testing.T) {
	r := NewRegistry()
	r.Add(V3(0, 1, 0), V3(4, 2, 4), WithWalkable(false))
	w := NewWorld(r, flat(0))
	assert.InDelta(t, 0, w.SurfaceAt(0, 0, 2), 1e-9)
}

func TestNoResidualPenetration(t *testing.T) {
	r := NewRegistry()
	wall := r.Add(V3(0, 1.5, 0), V3(2, 3, 2))
	w := NewWorld(r, flat(0))

	starts := []Vec3{
		V3(-1.3, 2, 0.2),
		V3(0.9, 2, 1.2),
		V3(0.3, 2, -0.2),
		V3(0, 2, 0),
	}
	for _, p := range starts {
		b := NewBody(p, 0.5, 2)
		b.OnGround, b.WasOnGround = true, true
		w.AddEntity(b)
	}
	require.NoError(t, w.Update(1.0/60))

	c, _ := r.Get(wall)
	for _, e := range w.Entities() {
		b := e.PhysicsBody()
		cx, cz := c.Box.ClosestPointXZ(b.Position[0], b.Position[2])
		d := math.Hypot(b.Position[0]-cx, b.Position[2]-cz)
		assert.GreaterOrEqual(t, d, b.Radius-1e-3, "body started at %v", b.ID)
	}
}

func TestDisabledColliderDoesNotBlock(t *testing.T) {
	r := NewRegistry()
	gate := r.Add(V3(2, 1.5, 0), V3(0.5, 3, 4), WithKind(KindGate), WithWalkable(false))
	w := NewWorld(r, flat(0))

	walker := func() *Body {
		b := NewBody(V3(0, 2, 0), 0.5, 2)
		b.OnGround, b.WasOnGround = true, true
		w.AddEntity(b)
		return b
	}

	blocked := walker()
	for i := 0; i < 120; i++ {
		blocked.Velocity[0] = 4
		require.NoError(t, w.Update(1.0/60))
	}
	assert.Less(t, blocked.Position.X(), 1.75-0.5+1e-6)

	require.NoError(t, r.SetEnabled(gate, false))
	w.RemoveEntity(blocked)
	passer := walker()
	for i := 0; i < 120; i++ {
		passer.Velocity[0] = 4
		require.NoError(t, w.Update(1.0/60))
	}
	assert.Greater(t, passer.Position.X(), 3.0)
	assert.Len(t, w.NearbyColliders(V3(2, 0, 0), 2), 0)
}

func TestFallDamage(t *testing.T) {
	cases := []struct {
		name string
		drop float64
		want float64
	}{
		{"at threshold", 6, 0},
		{"ten units", 10, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := bus.New()
			var published []bus.DamagePayload
			_, err := events.Subscribe(bus.TypeFallDamage, func(e bus.Event) error {
				published = append(published, e.Data().(bus.DamagePayload))
				return nil
			})
			require.NoError(t, err)

			w := NewWorld(NewRegistry(), flat(0), WithEventBus(events))
			d := newDamaged(V3(0, 2+tc.drop, 0))
			w.AddEntity(d)

			run(w, 3, 1.0/120)

			assert.True(t, d.OnGround)
			assert.InDelta(t, tc.want, d.taken[CauseFall], 1e-6)
			if tc.want == 0 {
				assert.Empty(t, published)
				return
			}
			require.Len(t, published, 1)
			assert.InDelta(t, tc.drop, published[0].Distance, 1e-6)
			assert.Equal(t, d.ID, published[0].BodyID)
		})
	}
}

func TestHazardDamagePerSecond(t *testing.T) {
	w := NewWorld(NewRegistry(), flat(0), WithHazards(hazardStrip{minX: -1, maxX: 1}))
	d := newDamaged(V3(0, 2, 0))
	d.OnGround, d.WasOnGround = true, true
	w.AddEntity(d)

	run(w, 1, 0.1)
	assert.InDelta(t, 25, d.taken[CauseHazard], 1e-9)

	safe := newDamaged(V3(5, 2, 0))
	w.AddEntity(safe)
	run(w, 1, 0.1)
	assert.Zero(t, safe.taken[CauseHazard])
}

func TestFrozenBodyDoesNotMove(t *testing.T) {
	w := NewWorld(NewRegistry(), flat(0))
	b := NewBody(V3(1, 10, 1), 0.5, 2)
	b.Frozen = true
	b.Velocity = V3(5, 5, 5)
	w.AddEntity(b)

	run(w, 0.5, 1.0/60)
	assert.Equal(t, V3(1, 10, 1), b.Position)
	assert.Equal(t, Vec3{}, b.Velocity)
}

func TestFrictionDecaysGroundVelocity(t *testing.T) {
	w := NewWorld(NewRegistry(), flat(0))
	b := NewBody(V3(0, 2, 0), 0.5, 2)
	b.OnGround, b.WasOnGround = true, true
	b.Velocity = V3(10, 0, 0)
	w.AddEntity(b)

	require.NoError(t, w.Update(0.01))
	assert.InDelta(t, 8, b.Velocity.X(), 1e-9)
}

func TestJumpLeavesGround(t *testing.T) {
	w := NewWorld(NewRegistry(), flat(0))
	b := NewBody(V3(0, 2, 0), 0.5, 2)
	b.OnGround, b.WasOnGround = true, true
	w.AddEntity(b)

	b.Jump(8)
	require.NoError(t, w.Update(1.0/60))
	assert.False(t, b.OnGround)
	assert.Greater(t, b.Position.Y(), 2.0)
}

func TestNilBodiesAreSkippedAndZeroDtIsNoop(t *testing.T) {
	w := NewWorld(nil, nil)
	w.AddEntity(nilEntity{})
	b := NewBody(V3(0, 5, 0), 0.5, 2)
	w.AddEntity(b)

	require.NoError(t, w.Update(0))
	assert.Equal(t, uint64(0), w.Ticks())
	assert.NotPanics(t, func() { require.NoError(t, w.Update(1.0/60)) })
	assert.Equal(t, uint64(1), w.Ticks())
	assert.Less(t, b.Position.Y(), 5.0)

	assert.True(t, w.RemoveEntity(b))
	assert.False(t, w.RemoveEntity(b))
}

func TestSegmentAABB(t *testing.T) {
	box := NewAABB(V3(0, 1, 0), V3(0.5, 2, 4))

	tHit, hit := SegmentAABB(V3(-10, 1, 0), V3(10, 1, 0), box)
	require.True(t, hit)
	assert.InDelta(t, (10-0.25)/20, tHit, 1e-9)

	_, hit = SegmentAABB(V3(-10, 3, 0), V3(10, 3, 0), box)
	assert.False(t, hit)

	_, hit = SegmentAABB(V3(-10, 1, 0), V3(-5, 1, 0), box)
	assert.False(t, hit)

	tHit, hit = SegmentAABB(V3(0, 1, 0), V3(5, 1, 0), box)
	require.True(t, hit)
	assert.Zero(t, tHit)
}

func TestSweepCatchesThinWallAtHighSpeed(t *testing.T) {
	r := NewRegistry()
	r.Add(V3(0, 1.5, 0), V3(0.5, 3, 4))
	far := r.Add(V3(3, 1.5, 0), V3(0.5, 3, 4))
	w := NewWorld(r, flat(0))

	// One tick at 1200 u/s with dt 1/60 covers 20 units.
	c, tHit, ok := w.Sweep(V3(-10, 1, 0), V3(10, 1, 0))
	require.True(t, ok)
	assert.NotEqual(t, far, c.ID)
	assert.InDelta(t, 0.4875, tHit, 1e-9)

	require.NoError(t, r.SetEnabled(c.ID, false))
	c, _, ok = w.Sweep(V3(-10, 1, 0), V3(10, 1, 0))
	require.True(t, ok)
	assert.Equal(t, far, c.ID)

	_, _, ok = w.Sweep(V3(-10, 5, 0), V3(10, 5, 0))
	assert.False(t, ok)
}

func BenchmarkWorldUpdate(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	r := NewRegistry()
	for i := 0; i < 1000; i++ {
		r.Add(V3(rng.Float64()*160-80, 1.5, rng.Float64()*160-80), V3(4, 3, 0.5))
	}
	w := NewWorld(r, flat(0))
	for i := 0; i < 200; i++ {
		body := NewBody(V3(rng.Float64()*160-80, 2, rng.Float64()*160-80), 0.5, 2)
		body.Velocity = V3(rng.Float64()*4-2, 0, rng.Float64()*4-2)
		w.AddEntity(body)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.Update(1.0 / 60)
	}
}

func BenchmarkSpatialQuery(b *testing.B) {
	rng := rand.New(rand.NewPCG(5, 6))
	r := NewRegistry()
	for i := 0; i < 2000; i++ {
		r.Add(V3(rng.Float64()*200-100, 1.5, rng.Float64()*200-100), V3(4, 3, 0.5))
	}
	g := NewSpatialHash(16)
	g.Sync(r)

	var buf []ColliderID
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = g.Query(V3(float64(i%200-100), 0, 0), 2, buf[:0])
	}
}
