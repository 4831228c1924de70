package actor

import "github.com/go-gl/mathgl/mgl64"

// Releaser frees an externally-owned low-level resource wrapped by a body or
// joint. The simulation calls Release exactly once on every removal path; it
// never releases implicitly at any other time.
type Releaser interface {
	Release()
}

// ReleaseFunc adapts a plain function to the Releaser interface
type ReleaseFunc func()

func (f ReleaseFunc) Release() { f() }

// Shape attaches a geometry to a body at a local offset
type Shape struct {
	LocalTransform Transform
	Geometry       Geometry
}

// RigidBody is the raw body state handed to the simulation at creation. It is
// a descriptor: the simulation copies it into its own storage and the caller
// keeps ownership of whatever Resource points at.
//
// Static and kinematic bodies ignore the mass fields; the simulation forces
// them to infinite-mass solver state.
type RigidBody struct {
	InverseMass    float64
	InverseInertia mgl64.Vec3 // diagonal of the local inverse inertia tensor

	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	LinearDamping  float64
	AngularDamping float64

	// Restitution in [0,1]; friction coefficients are combined pairwise
	// by the kernel at contact time
	Restitution float64
	Friction    float64

	Shapes []Shape

	// Resource is the externally-owned kernel object backing this body,
	// released when the actor is removed. May be nil.
	Resource Releaser
}

// NewDynamicBody builds a dynamic body descriptor from a single geometry and
// a material density, deriving mass and inertia from the geometry.
func NewDynamicBody(geometry Geometry, localTM Transform, density float64) RigidBody {
	mass := geometry.Volume() * density

	body := RigidBody{
		Shapes: []Shape{{LocalTransform: localTM, Geometry: geometry}},
	}

	if mass > 0 {
		body.InverseMass = 1.0 / mass

		inertia := geometry.Inertia(mass)
		for axis := 0; axis < 3; axis++ {
			if inertia[axis] > 0 {
				body.InverseInertia[axis] = 1.0 / inertia[axis]
			}
		}
	}

	return body
}

// NewStaticBody builds a body descriptor with no dynamics from a single geometry
func NewStaticBody(geometry Geometry, localTM Transform) RigidBody {
	return RigidBody{
		Shapes: []Shape{{LocalTransform: localTM, Geometry: geometry}},
	}
}
