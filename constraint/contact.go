package constraint

import "github.com/go-gl/mathgl/mgl64"

// ContactPoint is a single narrow-phase contact: a world-space position and
// how far the two shapes interpenetrate along the pair normal
type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64
}

// ContactPair is the narrow-phase output for one shape pair in one frame.
// Points are grouped contiguously per pair, in the same order the iteration
// cache enumerated the shapes. Normal points from shape A towards shape B.
type ContactPair struct {
	BodyA  int
	BodyB  int
	ShapeA int
	ShapeB int

	Normal mgl64.Vec3
	Points []ContactPoint
}
