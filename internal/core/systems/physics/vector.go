package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is the vector type used across the simulation. Y is up.
type Vec3 = mgl64.Vec3

// V3 builds a Vec3.
func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// HorizontalDistance returns the distance between a and b on the (x, z) plane.
func HorizontalDistance(a, b Vec3) float64 {
	return math.Hypot(b.X()-a.X(), b.Z()-a.Z())
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
