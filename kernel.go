package talon

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
	"github.com/akmonengine/talon/constraint"
)

// Kernel is the capability set the pipeline requires from a numerical
// backend. Any conforming kernel is substitutable via WithKernel; the kernel
// package provides the default.
//
// ConstructSolverBody may be called concurrently for distinct bodies; the
// remaining methods are invoked sequentially within one step.
type Kernel interface {
	// ConstructSolverBody derives solver-ready state from raw body state.
	// velocityDelta is this step's acceleration contribution already
	// multiplied by dt. Non-simulated bodies must come back with zero
	// inverse mass.
	ConstructSolverBody(body *actor.RigidBody, pose actor.Transform, velocityDelta mgl64.Vec3, dt float64, simulated bool) constraint.SolverBody

	// GenerateContacts performs the narrow-phase test for one shape pair,
	// writing at most len(buf) points. The returned normal points from A
	// towards B; a zero count means no contact.
	GenerateContacts(a, b actor.Posed, buf []constraint.ContactPoint) (mgl64.Vec3, int)

	// MaxContactRows bounds the rows DeriveContactRows may emit for a
	// pair with the given point count; MaxJointRows bounds DeriveJointRows.
	MaxContactRows(points int) int
	MaxJointRows() int

	// DeriveContactRows and DeriveJointRows convert one constraint into
	// solver rows written at out[0:], returning the count. base is the
	// global row index of out[0], for cross-row references. Degenerate
	// input must yield neutral rows, never a failure.
	DeriveContactRows(pair *constraint.ContactPair, bodies []constraint.SolverBody, poses []actor.Transform, dt float64, base int, out []constraint.Row) int
	DeriveJointRows(cfg *constraint.JointConfig, bodyA, bodyB int, bodies []constraint.SolverBody, poses []actor.Transform, dt float64, out []constraint.Row) int

	// BatchConstraints reorders descs in place into contiguous
	// body-disjoint runs and returns the batch headers appended to out
	BatchConstraints(descs []constraint.Desc, numBodies int, out []constraint.Batch) []constraint.Batch

	// SolveAndIntegrate runs the velocity iterations batch by batch,
	// integrates poses in place, then runs the position iterations over
	// the frame's contact pairs
	SolveAndIntegrate(bodies []constraint.SolverBody, poses []actor.Transform, rows []constraint.Row, descs []constraint.Desc, batches []constraint.Batch, pairs []constraint.ContactPair, dt float64, velocityIterations, positionIterations int)
}
