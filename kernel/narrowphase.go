package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
	"github.com/akmonengine/talon/constraint"
)

// GenerateContacts runs the narrow phase for one shape pair, writing at most
// len(buf) contact points into buf. It returns the contact normal, pointing
// from shape A towards shape B, and the number of points written; zero means
// no contact.
//
// The analytic dispatch covers sphere/sphere, sphere/box, sphere/plane and
// box/plane. Box/box and plane/plane report no contact; worlds that need
// box/box resolution plug in a kernel with a GJK-based narrow phase.
func (k *Immediate) GenerateContacts(a, b actor.Posed, buf []constraint.ContactPoint) (mgl64.Vec3, int) {
	if len(buf) == 0 {
		return mgl64.Vec3{}, 0
	}

	switch ga := a.Geometry.(type) {
	case *actor.Sphere:
		switch gb := b.Geometry.(type) {
		case *actor.Sphere:
			return collideSpheres(ga, a.Pose, gb, b.Pose, buf)
		case *actor.Box:
			return collideSphereBox(ga, a.Pose, gb, b.Pose, buf)
		case *actor.Plane:
			n, count := collidePlaneSphere(gb, b.Pose, ga, a.Pose, buf)
			return n.Mul(-1), count
		}
	case *actor.Box:
		switch gb := b.Geometry.(type) {
		case *actor.Sphere:
			n, count := collideSphereBox(gb, b.Pose, ga, a.Pose, buf)
			return n.Mul(-1), count
		case *actor.Plane:
			n, count := collidePlaneBox(gb, b.Pose, ga, a.Pose, buf)
			return n.Mul(-1), count
		}
	case *actor.Plane:
		switch gb := b.Geometry.(type) {
		case *actor.Sphere:
			return collidePlaneSphere(ga, a.Pose, gb, b.Pose, buf)
		case *actor.Box:
			return collidePlaneBox(ga, a.Pose, gb, b.Pose, buf)
		}
	}

	return mgl64.Vec3{}, 0
}

// worldPlane maps a local plane (Normal·p = Distance) through a pose.
// Rotation preserves dot products, so the world offset is the local distance
// plus the projection of the pose translation onto the rotated normal.
func worldPlane(p *actor.Plane, pose actor.Transform) (mgl64.Vec3, float64) {
	n := pose.TransformDirection(p.Normal)
	return n, p.Distance + n.Dot(pose.Position)
}

func collideSpheres(a *actor.Sphere, poseA actor.Transform, b *actor.Sphere, poseB actor.Transform, buf []constraint.ContactPoint) (mgl64.Vec3, int) {
	delta := poseB.Position.Sub(poseA.Position)
	dist := delta.Len()
	sum := a.Radius + b.Radius

	if dist >= sum {
		return mgl64.Vec3{}, 0
	}

	var normal mgl64.Vec3
	if dist > 1e-9 {
		normal = delta.Mul(1.0 / dist)
	} else {
		// coincident centers: any separation axis works
		normal = mgl64.Vec3{0, 0, 1}
	}

	pen := sum - dist
	buf[0] = constraint.ContactPoint{
		Position:    poseA.Position.Add(normal.Mul(a.Radius - pen/2)),
		Penetration: pen,
	}

	return normal, 1
}

// collidePlaneSphere returns the normal pointing from the plane into the sphere
func collidePlaneSphere(p *actor.Plane, poseP actor.Transform, s *actor.Sphere, poseS actor.Transform, buf []constraint.ContactPoint) (mgl64.Vec3, int) {
	n, d := worldPlane(p, poseP)

	signed := n.Dot(poseS.Position) - d
	pen := s.Radius - signed
	if pen <= 0 {
		return mgl64.Vec3{}, 0
	}

	buf[0] = constraint.ContactPoint{
		Position:    poseS.Position.Sub(n.Mul(signed)),
		Penetration: pen,
	}

	return n, 1
}

// collidePlaneBox returns the normal pointing from the plane into the box,
// with one contact point per penetrating corner up to len(buf), keeping the
// deepest corners when there are more
func collidePlaneBox(p *actor.Plane, poseP actor.Transform, b *actor.Box, poseB actor.Transform, buf []constraint.ContactPoint) (mgl64.Vec3, int) {
	n, d := worldPlane(p, poseP)

	count := 0
	for _, corner := range b.Corners() {
		world := poseB.TransformPoint(corner)
		signed := n.Dot(world) - d
		if signed >= 0 {
			continue
		}

		point := constraint.ContactPoint{Position: world, Penetration: -signed}

		if count < len(buf) {
			buf[count] = point
			count++
			continue
		}

		// full: replace the shallowest point if this one is deeper
		shallowest := 0
		for i := 1; i < count; i++ {
			if buf[i].Penetration < buf[shallowest].Penetration {
				shallowest = i
			}
		}
		if point.Penetration > buf[shallowest].Penetration {
			buf[shallowest] = point
		}
	}

	return n, count
}

// collideSphereBox returns the normal pointing from the sphere towards the box
func collideSphereBox(s *actor.Sphere, poseS actor.Transform, b *actor.Box, poseB actor.Transform, buf []constraint.ContactPoint) (mgl64.Vec3, int) {
	// work in box local space
	center := poseB.InverseTransformPoint(poseS.Position)

	closest := center
	for axis := 0; axis < 3; axis++ {
		h := b.HalfExtents[axis]
		closest[axis] = math.Min(math.Max(closest[axis], -h), h)
	}

	delta := center.Sub(closest)
	dist2 := delta.Dot(delta)

	if dist2 > 1e-18 {
		// center outside the box
		dist := math.Sqrt(dist2)
		if dist >= s.Radius {
			return mgl64.Vec3{}, 0
		}

		outward := delta.Mul(1.0 / dist) // box surface → sphere center, local
		buf[0] = constraint.ContactPoint{
			Position:    poseB.TransformPoint(closest),
			Penetration: s.Radius - dist,
		}

		// A→B is sphere→box, the opposite of outward
		return poseB.TransformDirection(outward.Mul(-1)), 1
	}

	// center inside the box: exit through the face with least depth
	bestAxis := 0
	bestDepth := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		depth := b.HalfExtents[axis] - math.Abs(center[axis])
		if depth < bestDepth {
			bestDepth = depth
			bestAxis = axis
		}
	}

	var outward mgl64.Vec3
	if center[bestAxis] >= 0 {
		outward[bestAxis] = 1
	} else {
		outward[bestAxis] = -1
	}

	surface := center
	surface[bestAxis] = b.HalfExtents[bestAxis] * outward[bestAxis]

	buf[0] = constraint.ContactPoint{
		Position:    poseB.TransformPoint(surface),
		Penetration: s.Radius + bestDepth,
	}

	return poseB.TransformDirection(outward.Mul(-1)), 1
}
