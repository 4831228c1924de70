// Package kernel provides the default numerical kernel for the simulation:
// analytic narrow-phase collision tests, constraint-row derivation, greedy
// body-disjoint batching and a sequential-impulse solver with positional
// correction. Any other kernel implementing the same capability set can be
// substituted at world construction.
package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
	"github.com/akmonengine/talon/constraint"
)

// Tuning holds the solver parameters of the kernel
type Tuning struct {
	// ContactSlop is the penetration depth tolerated before positional
	// correction pushes bodies apart
	ContactSlop float64

	// Baumgarte in (0,1] is the fraction of remaining penetration removed
	// per position iteration
	Baumgarte float64

	// RestitutionThreshold is the approach speed below which contacts do
	// not bounce
	RestitutionThreshold float64
}

// DefaultTuning returns the tuning used when none is supplied
func DefaultTuning() Tuning {
	return Tuning{
		ContactSlop:          0.005,
		Baumgarte:            0.2,
		RestitutionThreshold: 1.0,
	}
}

// Immediate is an immediate-mode kernel: it holds no per-frame state of its
// own beyond reusable batching scratch, and operates directly on the caller's
// body, row and pose arrays.
type Immediate struct {
	tuning Tuning

	// batching scratch, reused across frames
	usedStamp []int
	stamp     int
	assigned  []bool
	ordered   []constraint.Desc
}

// New creates a kernel with the given tuning
func New(tuning Tuning) *Immediate {
	if tuning.Baumgarte <= 0 {
		tuning.Baumgarte = DefaultTuning().Baumgarte
	}

	return &Immediate{tuning: tuning}
}

// ConstructSolverBody derives solver-ready state from raw body state.
// velocityDelta is the acceleration contribution for this step (gravity plus
// pending forces) already multiplied by dt. Bodies that are not simulated
// keep their velocities but get zero inverse mass, so the solver treats them
// as immovable.
func (k *Immediate) ConstructSolverBody(body *actor.RigidBody, pose actor.Transform, velocityDelta mgl64.Vec3, dt float64, simulated bool) constraint.SolverBody {
	sb := constraint.SolverBody{
		Restitution: body.Restitution,
		Friction:    body.Friction,
	}

	if !simulated || body.InverseMass == 0 {
		sb.LinearVelocity = body.LinearVelocity
		sb.AngularVelocity = body.AngularVelocity
		return sb
	}

	v := body.LinearVelocity.Add(velocityDelta)
	w := body.AngularVelocity
	if body.LinearDamping > 0 {
		v = v.Mul(math.Exp(-body.LinearDamping * dt))
	}
	if body.AngularDamping > 0 {
		w = w.Mul(math.Exp(-body.AngularDamping * dt))
	}

	sb.LinearVelocity = v
	sb.AngularVelocity = w
	sb.InverseMass = body.InverseMass
	sb.InverseInertiaWorld = inverseInertiaWorld(body.InverseInertia, pose.Rotation)

	return sb
}

// inverseInertiaWorld rotates a local diagonal inverse inertia tensor into
// world space: I⁻¹_world = R · diag · Rᵀ
func inverseInertiaWorld(diagonal mgl64.Vec3, rotation mgl64.Quat) mgl64.Mat3 {
	local := mgl64.Mat3{
		diagonal.X(), 0, 0,
		0, diagonal.Y(), 0,
		0, 0, diagonal.Z(),
	}

	r := rotation.Mat4().Mat3()

	return r.Mul3(local).Mul3(r.Transpose())
}

// BatchConstraints reorders descs in place so that each returned batch is a
// contiguous run of constraints sharing no body, then returns the batch
// headers appended to out. Greedy multi-pass: every pass opens a new batch
// and collects every remaining constraint whose bodies are still free.
func (k *Immediate) BatchConstraints(descs []constraint.Desc, numBodies int, out []constraint.Batch) []constraint.Batch {
	if len(descs) == 0 {
		return out
	}

	if len(k.usedStamp) < numBodies {
		k.usedStamp = make([]int, numBodies)
		k.stamp = 0
	}
	if cap(k.assigned) < len(descs) {
		k.assigned = make([]bool, len(descs))
	}
	assigned := k.assigned[:len(descs)]
	clear(assigned)

	if cap(k.ordered) < len(descs) {
		k.ordered = make([]constraint.Desc, 0, len(descs))
	}
	ordered := k.ordered[:0]

	remaining := len(descs)
	for remaining > 0 {
		k.stamp++
		start := len(ordered)

		for i := range descs {
			if assigned[i] {
				continue
			}
			d := descs[i]
			if k.usedStamp[d.BodyA] == k.stamp || k.usedStamp[d.BodyB] == k.stamp {
				continue
			}

			k.usedStamp[d.BodyA] = k.stamp
			k.usedStamp[d.BodyB] = k.stamp
			ordered = append(ordered, d)
			assigned[i] = true
			remaining--
		}

		out = append(out, constraint.Batch{Start: start, Count: len(ordered) - start})
	}

	copy(descs, ordered)
	k.ordered = ordered

	return out
}

// SolveAndIntegrate runs the velocity iterations batch by batch, integrates
// the solved velocities into new poses, then runs the position iterations
// over the frame's contact pairs. Poses and bodies are mutated in place;
// the caller owns the write-back into its registry.
func (k *Immediate) SolveAndIntegrate(bodies []constraint.SolverBody, poses []actor.Transform, rows []constraint.Row, descs []constraint.Desc, batches []constraint.Batch, pairs []constraint.ContactPair, dt float64, velocityIterations, positionIterations int) {
	for _it := 0; _it < velocityIterations; _it++ {
		for _, batch := range batches {
			for _, d := range descs[batch.Start : batch.Start+batch.Count] {
				for ri := d.FirstRow; ri < d.FirstRow+d.RowCount; ri++ {
					solveRow(bodies, rows, ri)
				}
			}
		}
	}

	for i := range bodies {
		if bodies[i].InverseMass == 0 {
			continue
		}
		integrate(&poses[i], &bodies[i], dt)
	}

	for _it := 0; _it < positionIterations; _it++ {
		for pi := range pairs {
			k.correctPositions(bodies, poses, &pairs[pi])
		}
	}
}

// solveRow applies one sequential-impulse update for a single row. Rows with
// zero effective mass are degenerate and contribute nothing.
func solveRow(bodies []constraint.SolverBody, rows []constraint.Row, ri int) {
	row := &rows[ri]
	if row.EffectiveMass == 0 {
		return
	}

	a := &bodies[row.BodyA]
	b := &bodies[row.BodyB]

	vn := row.Linear.Dot(b.LinearVelocity) + row.AngularB.Dot(b.AngularVelocity) -
		row.Linear.Dot(a.LinearVelocity) - row.AngularA.Dot(a.AngularVelocity)

	lambda := (row.TargetVel - vn) * row.EffectiveMass

	lo, hi := row.MinImpulse, row.MaxImpulse
	if row.FrictionOf >= 0 {
		// Coulomb: |λ_t| ≤ μ·λ_n, against the normal row's accumulated impulse
		limit := row.Friction * rows[row.FrictionOf].Impulse
		lo, hi = -limit, limit
	}

	old := row.Impulse
	row.Impulse = math.Min(math.Max(old+lambda, lo), hi)
	lambda = row.Impulse - old
	if lambda == 0 {
		return
	}

	impulse := row.Linear.Mul(lambda)
	a.LinearVelocity = a.LinearVelocity.Sub(impulse.Mul(a.InverseMass))
	a.AngularVelocity = a.AngularVelocity.Sub(a.InverseInertiaWorld.Mul3x1(row.AngularA.Mul(lambda)))
	b.LinearVelocity = b.LinearVelocity.Add(impulse.Mul(b.InverseMass))
	b.AngularVelocity = b.AngularVelocity.Add(b.InverseInertiaWorld.Mul3x1(row.AngularB.Mul(lambda)))
}

// integrate advances one pose by the solved velocities
func integrate(pose *actor.Transform, body *constraint.SolverBody, dt float64) {
	pose.Position = pose.Position.Add(body.LinearVelocity.Mul(dt))

	omega := mgl64.Quat{V: body.AngularVelocity, W: 0}
	qDot := omega.Mul(pose.Rotation).Scale(0.5)
	pose.Rotation = pose.Rotation.Add(qDot.Scale(dt)).Normalize()
}

// correctPositions removes a fraction of the remaining penetration of one
// contact pair by displacing the poses directly, leaving velocities alone
func (k *Immediate) correctPositions(bodies []constraint.SolverBody, poses []actor.Transform, pair *constraint.ContactPair) {
	a := &bodies[pair.BodyA]
	b := &bodies[pair.BodyB]

	if a.InverseMass+b.InverseMass == 0 {
		return
	}

	n := pair.Normal

	for pi := range pair.Points {
		point := &pair.Points[pi]

		pen := point.Penetration - k.tuning.ContactSlop
		if pen <= 0 {
			continue
		}

		rA := point.Position.Sub(poses[pair.BodyA].Position)
		rB := point.Position.Sub(poses[pair.BodyB].Position)

		rAxN := rA.Cross(n)
		rBxN := rB.Cross(n)
		w := a.InverseMass + b.InverseMass +
			a.InverseInertiaWorld.Mul3x1(rAxN).Dot(rAxN) +
			b.InverseInertiaWorld.Mul3x1(rBxN).Dot(rBxN)
		if w < 1e-12 {
			continue
		}

		c := k.tuning.Baumgarte * pen / w
		impulse := n.Mul(c)

		if a.InverseMass > 0 {
			poses[pair.BodyA].Position = poses[pair.BodyA].Position.Sub(impulse.Mul(a.InverseMass))
			nudgeRotation(&poses[pair.BodyA], a.InverseInertiaWorld.Mul3x1(rA.Cross(impulse.Mul(-1))))
		}
		if b.InverseMass > 0 {
			poses[pair.BodyB].Position = poses[pair.BodyB].Position.Add(impulse.Mul(b.InverseMass))
			nudgeRotation(&poses[pair.BodyB], b.InverseInertiaWorld.Mul3x1(rB.Cross(impulse)))
		}

		point.Penetration -= c * w
	}
}

// nudgeRotation applies a small-angle rotation delta to a pose.
// For a small angle δθ the rotation quaternion is ≈ [1, δθ/2].
func nudgeRotation(pose *actor.Transform, deltaRot mgl64.Vec3) {
	if deltaRot.Len() < 1e-10 {
		return
	}

	qDelta := mgl64.Quat{W: 1.0, V: deltaRot.Mul(0.5)}.Normalize()
	pose.Rotation = qDelta.Mul(pose.Rotation).Normalize()
}
