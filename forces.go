package talon

import "github.com/go-gl/mathgl/mgl64"

// ForceType selects how a radial effect scales with mass and frame time
type ForceType int

const (
	// AddForce uses mass and delta time
	AddForce ForceType = iota
	// AddAcceleration uses delta time and ignores mass
	AddAcceleration
	// AddImpulse uses mass and ignores delta time
	AddImpulse
	// AddVelocity ignores both: a direct velocity delta
	AddVelocity
)

// Falloff selects how a radial effect attenuates within its radius
type Falloff int

const (
	// FalloffNone applies full strength anywhere inside the radius
	FalloffNone Falloff = iota
	// FalloffLinear scales strength down linearly with distance from the
	// origin, reaching zero at the radius
	FalloffLinear
)

// AddRadialForce applies a radial effect to one active simulated body if its
// position lies within radius of origin, pushing it away from the origin.
// Indices outside the active simulated range are a no-op, as are bodies
// sitting exactly on the origin (no direction to push).
//
// Force and acceleration kinds accumulate and enter the next Simulate call
// scaled by its delta time; impulse and velocity kinds change the body's
// velocity immediately.
func (s *Simulation) AddRadialForce(actorIndex int, origin mgl64.Vec3, strength, radius float64, falloff Falloff, forceType ForceType) {
	if actorIndex < 0 || actorIndex >= s.numActiveSimulated {
		return
	}
	if radius <= 0 {
		return
	}

	delta := s.poses[actorIndex].Position.Sub(origin)
	dist := delta.Len()
	if dist > radius || dist < 1e-9 {
		return
	}

	magnitude := strength
	if falloff == FalloffLinear {
		magnitude *= 1 - dist/radius
	}

	effect := delta.Mul(magnitude / dist)
	body := &s.bodies[actorIndex]

	switch forceType {
	case AddForce:
		s.pendingAccel[actorIndex] = s.pendingAccel[actorIndex].Add(effect.Mul(body.InverseMass))
	case AddAcceleration:
		s.pendingAccel[actorIndex] = s.pendingAccel[actorIndex].Add(effect)
	case AddImpulse:
		body.LinearVelocity = body.LinearVelocity.Add(effect.Mul(body.InverseMass))
	case AddVelocity:
		body.LinearVelocity = body.LinearVelocity.Add(effect)
	}
}
