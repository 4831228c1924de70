package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
	"github.com/akmonengine/talon/constraint"
)

// ContactRowBound is the maximum number of rows one contact point produces:
// one normal row and two friction rows
const ContactRowBound = 3

// JointRowCount is the number of rows one joint produces, one per linear axis
const JointRowCount = 3

// MaxContactRows bounds the rows DeriveContactRows emits for a pair with the
// given point count
func (k *Immediate) MaxContactRows(points int) int { return points * ContactRowBound }

// MaxJointRows bounds the rows DeriveJointRows emits for one joint
func (k *Immediate) MaxJointRows() int { return JointRowCount }

// combineRestitution averages the two materials
func combineRestitution(a, b *constraint.SolverBody) float64 {
	return (a.Restitution + b.Restitution) / 2.0
}

// combineFriction takes the geometric mean, the usual physical convention
func combineFriction(a, b *constraint.SolverBody) float64 {
	return math.Sqrt(a.Friction * b.Friction)
}

// effectiveMass returns 1/k for a row, or zero when the row is degenerate
func effectiveMass(a, b *constraint.SolverBody, row *constraint.Row) float64 {
	k := a.InverseMass + b.InverseMass +
		a.InverseInertiaWorld.Mul3x1(row.AngularA).Dot(row.AngularA) +
		b.InverseInertiaWorld.Mul3x1(row.AngularB).Dot(row.AngularB)
	if k < 1e-12 {
		return 0
	}

	return 1.0 / k
}

func relativeVelocity(a, b *constraint.SolverBody, row *constraint.Row) float64 {
	return row.Linear.Dot(b.LinearVelocity) + row.AngularB.Dot(b.AngularVelocity) -
		row.Linear.Dot(a.LinearVelocity) - row.AngularA.Dot(a.AngularVelocity)
}

// tangentBasis returns two unit vectors orthogonal to n and to each other
func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if math.Abs(n.X()) > 0.707 {
		t1 = mgl64.Vec3{n.Y(), -n.X(), 0}.Normalize()
	} else {
		t1 = mgl64.Vec3{0, n.Z(), -n.Y()}.Normalize()
	}

	return t1, n.Cross(t1)
}

// DeriveContactRows converts one contact pair into solver rows written at
// out[0:], with FrictionOf indices made global against base (the position of
// out[0] in the frame's row array). Returns the number of rows written.
//
// Every point yields a non-negative normal impulse row targeting the
// restitution velocity, plus two Coulomb friction rows bounded by the normal
// row's accumulated impulse.
func (k *Immediate) DeriveContactRows(pair *constraint.ContactPair, bodies []constraint.SolverBody, poses []actor.Transform, dt float64, base int, out []constraint.Row) int {
	a := &bodies[pair.BodyA]
	b := &bodies[pair.BodyB]

	restitution := combineRestitution(a, b)
	friction := combineFriction(a, b)

	posA := poses[pair.BodyA].Position
	posB := poses[pair.BodyB].Position
	n := pair.Normal

	count := 0
	for _, point := range pair.Points {
		rA := point.Position.Sub(posA)
		rB := point.Position.Sub(posB)

		normalRow := constraint.NewRow(pair.BodyA, pair.BodyB)
		normalRow.Linear = n
		normalRow.AngularA = rA.Cross(n)
		normalRow.AngularB = rB.Cross(n)
		normalRow.EffectiveMass = effectiveMass(a, b, &normalRow)
		normalRow.MinImpulse = 0

		if vn := relativeVelocity(a, b, &normalRow); vn < -k.tuning.RestitutionThreshold {
			normalRow.TargetVel = -restitution * vn
		}

		normalIndex := base + count
		out[count] = normalRow
		count++

		if friction <= 0 {
			continue
		}

		t1, t2 := tangentBasis(n)
		for _, tangent := range [2]mgl64.Vec3{t1, t2} {
			row := constraint.NewRow(pair.BodyA, pair.BodyB)
			row.Linear = tangent
			row.AngularA = rA.Cross(tangent)
			row.AngularB = rB.Cross(tangent)
			row.EffectiveMass = effectiveMass(a, b, &row)
			row.FrictionOf = normalIndex
			row.Friction = friction

			out[count] = row
			count++
		}
	}

	return count
}

// DeriveJointRows converts one joint into three axis rows written at out[0:].
// Each row drives the relative anchor velocity towards the configured drive,
// with a stiffness bias removing anchor separation beyond the linear limit.
// Returns the number of rows written.
func (k *Immediate) DeriveJointRows(cfg *constraint.JointConfig, bodyA, bodyB int, bodies []constraint.SolverBody, poses []actor.Transform, dt float64, out []constraint.Row) int {
	a := &bodies[bodyA]
	b := &bodies[bodyB]

	anchorA := poses[bodyA].TransformPoint(cfg.LocalAnchorA)
	anchorB := poses[bodyB].TransformPoint(cfg.LocalAnchorB)

	rA := anchorA.Sub(poses[bodyA].Position)
	rB := anchorB.Sub(poses[bodyB].Position)

	// separation beyond the allowed play
	err := anchorB.Sub(anchorA)
	var overshoot mgl64.Vec3
	if length := err.Len(); length > cfg.LinearLimit && length > 1e-12 {
		overshoot = err.Mul((length - cfg.LinearLimit) / length)
	}

	for axis := 0; axis < JointRowCount; axis++ {
		var dir mgl64.Vec3
		dir[axis] = 1

		row := constraint.NewRow(bodyA, bodyB)
		row.Linear = dir
		row.AngularA = rA.Cross(dir)
		row.AngularB = rB.Cross(dir)
		row.EffectiveMass = effectiveMass(a, b, &row)
		row.TargetVel = cfg.DriveVelocity[axis] - cfg.Stiffness/dt*overshoot[axis]

		out[axis] = row
	}

	return JointRowCount
}
