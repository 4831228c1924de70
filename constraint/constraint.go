// Package constraint holds the data exchanged between the simulation pipeline
// and the numerical kernel: solver bodies, contact pairs, constraint rows and
// batch descriptors.
package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SolverBody is the reduced per-body state consumed by the constraint solver.
// Kinematic, static and inactive bodies carry zero inverse mass and a zero
// inverse inertia tensor so the solver never moves them.
type SolverBody struct {
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	InverseMass         float64
	InverseInertiaWorld mgl64.Mat3

	// material coefficients carried along so row derivation needs no
	// access to the original body descriptors
	Restitution float64
	Friction    float64
}

// Kind distinguishes the constraint sources the solver consumes
type Kind uint8

const (
	KindContact Kind = iota
	KindJoint
)

// Desc identifies one constraint for batching: the two body indices it
// couples and where its solver rows start once prepared. Index points into
// the frame's contact-pair list or the joint store depending on Kind.
type Desc struct {
	Kind  Kind
	Index int

	BodyA int
	BodyB int

	FirstRow int
	RowCount int
}

// Batch is a contiguous run of descriptors that share no body, so the solver
// may process the run without cross-constraint interference.
type Batch struct {
	Start int
	Count int
}

// Row is one solver constraint row: a velocity constraint along a single
// direction with accumulated-impulse clamping.
//
// Applying impulse λ adds λ·invMass·Linear to body B's linear velocity and
// λ·Iinv·AngularB to its angular velocity; body A receives the negation
// through its own Jacobian parts.
type Row struct {
	BodyA int
	BodyB int

	Linear   mgl64.Vec3 // impulse direction, acting positively on body B
	AngularA mgl64.Vec3 // rA × Linear
	AngularB mgl64.Vec3 // rB × Linear

	EffectiveMass float64 // 1/k; zero marks a degenerate row the solver skips
	TargetVel     float64 // desired relative velocity along Linear
	Impulse       float64 // accumulated

	MinImpulse float64
	MaxImpulse float64

	// FrictionOf indexes the normal row whose accumulated impulse bounds
	// this friction row, or -1 for non-friction rows. Friction holds the
	// combined coefficient.
	FrictionOf int
	Friction   float64
}

// NewRow returns a row with unbounded impulse limits and no friction coupling
func NewRow(bodyA, bodyB int) Row {
	return Row{
		BodyA:      bodyA,
		BodyB:      bodyB,
		MinImpulse: math.Inf(-1),
		MaxImpulse: math.Inf(1),
		FrictionOf: -1,
	}
}
