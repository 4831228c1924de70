package talon

import (
	"go.uber.org/zap"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
)

// CreateDynamicActor adds a simulated body and returns its handle. The
// descriptor is copied; the caller keeps ownership of body.Resource until
// the actor is removed.
func (s *Simulation) CreateDynamicActor(body actor.RigidBody, tm actor.Transform) *ActorHandle {
	idx := s.appendActor(body, tm)

	// bubble the new actor from the static tail into the dynamic partition
	firstStatic := s.numSimulated + s.numKinematic
	s.swapActorData(idx, firstStatic)
	s.swapActorData(firstStatic, s.numSimulated)
	s.numSimulated++

	// per contract, the active-body limit resets on every new simulated body
	s.numActiveSimulated = s.numSimulated

	s.invalidateCache()
	if debugChecks {
		s.validateArrays()
	}

	return s.handles[s.numSimulated-1]
}

// CreateKinematicActor adds a body that moves only by SetWorldTransform and
// explicit velocities, never by dynamics
func (s *Simulation) CreateKinematicActor(body actor.RigidBody, tm actor.Transform) *ActorHandle {
	body.InverseMass = 0
	body.InverseInertia = mgl64.Vec3{}

	idx := s.appendActor(body, tm)

	firstStatic := s.numSimulated + s.numKinematic
	s.swapActorData(idx, firstStatic)
	s.numKinematic++

	s.invalidateCache()
	if debugChecks {
		s.validateArrays()
	}

	return s.handles[firstStatic]
}

// CreateStaticActor adds an immovable body
func (s *Simulation) CreateStaticActor(body actor.RigidBody, tm actor.Transform) *ActorHandle {
	body.InverseMass = 0
	body.InverseInertia = mgl64.Vec3{}
	body.LinearVelocity = mgl64.Vec3{}
	body.AngularVelocity = mgl64.Vec3{}

	idx := s.appendActor(body, tm)

	s.invalidateCache()
	if debugChecks {
		s.validateArrays()
	}

	return s.handles[idx]
}

// RemoveActor removes an actor, releases its externally-owned resource and
// invalidates the handle. Joints referencing the actor must be removed
// first. Passing a stale handle is a programming error.
func (s *Simulation) RemoveActor(handle *ActorHandle) {
	assertf(handle != nil && handle.sim == s, "actor handle does not belong to this simulation")
	idx := handle.actorIndex
	assertf(idx >= 0 && idx < len(s.bodies), "removal of unknown or already-removed actor")
	if debugChecks {
		for j := range s.jointConfigs {
			assertf(s.jointActorA[j] != handle && s.jointActorB[j] != handle,
				"actor removed while joint %d still references it", j)
		}
	}

	resource := s.bodies[idx].Resource

	// bubble the doomed actor to the global end, crossing each category
	// boundary with one swap so the ordered partition survives
	if idx < s.numSimulated {
		last := s.numSimulated - 1
		s.swapActorData(idx, last)
		idx = last
		s.numSimulated--
		s.numKinematic++ // the doomed slot now sits in the kinematic range
	}
	if idx < s.numSimulated+s.numKinematic {
		last := s.numSimulated + s.numKinematic - 1
		s.swapActorData(idx, last)
		idx = last
		s.numKinematic--
	}
	s.swapActorData(idx, len(s.bodies)-1)
	s.popLastActor()

	if s.numActiveSimulated > s.numSimulated {
		s.numActiveSimulated = s.numSimulated
	}

	handle.actorIndex = -1
	handle.sim = nil
	s.dropIgnoreEntries(handle)

	if resource != nil {
		resource.Release()
	}

	s.invalidateCache()
	if debugChecks {
		s.validateArrays()
	}
	s.log.Debug("actor removed", zap.Int("actors", len(s.bodies)))
}

// appendActor grows every per-actor array in lock-step, placing the new
// actor at the global end (the static tail), and appends its shapes to the
// shape SOA
func (s *Simulation) appendActor(body actor.RigidBody, tm actor.Transform) int {
	idx := len(s.bodies)

	handle := &ActorHandle{sim: s, actorIndex: idx}
	s.handles = append(s.handles, handle)
	s.bodies = append(s.bodies, body)
	s.poses = append(s.poses, tm)
	s.pendingAccel = append(s.pendingAccel, mgl64.Vec3{})
	s.shapeCounts = append(s.shapeCounts, len(body.Shapes))

	for _, shape := range body.Shapes {
		s.shapes.localTMs = append(s.shapes.localTMs, shape.LocalTransform)
		s.shapes.geometries = append(s.shapes.geometries, shape.Geometry)
		s.shapes.boundsRadii = append(s.shapes.boundsRadii, shape.Geometry.BoundingRadius())
		s.shapes.boundsOffsets = append(s.shapes.boundsOffsets, shape.Geometry.BoundsOffset())
		s.shapes.owners = append(s.shapes.owners, idx)
	}

	return idx
}

// popLastActor removes the global last actor and its trailing shape block
func (s *Simulation) popLastActor() {
	last := len(s.bodies) - 1
	shapeEnd := s.shapes.len() - s.shapeCounts[last]

	s.handles = s.handles[:last]
	s.bodies = s.bodies[:last]
	s.poses = s.poses[:last]
	s.pendingAccel = s.pendingAccel[:last]
	s.shapeCounts = s.shapeCounts[:last]

	s.shapes.localTMs = s.shapes.localTMs[:shapeEnd]
	s.shapes.geometries = s.shapes.geometries[:shapeEnd]
	s.shapes.boundsRadii = s.shapes.boundsRadii[:shapeEnd]
	s.shapes.boundsOffsets = s.shapes.boundsOffsets[:shapeEnd]
	s.shapes.owners = s.shapes.owners[:shapeEnd]
}

// shapeStart returns the index of the first shape owned by the actor
func (s *Simulation) shapeStart(actorIdx int) int {
	start := 0
	for i := 0; i < actorIdx; i++ {
		start += s.shapeCounts[i]
	}

	return start
}

// swapActorData moves all data associated with the two actors across the
// parallel arrays, including their shape blocks, and fixes up both handles'
// recorded indices
func (s *Simulation) swapActorData(i, j int) {
	if i == j {
		return
	}
	if i > j {
		i, j = j, i
	}

	s.handles[i], s.handles[j] = s.handles[j], s.handles[i]
	s.bodies[i], s.bodies[j] = s.bodies[j], s.bodies[i]
	s.poses[i], s.poses[j] = s.poses[j], s.poses[i]
	s.pendingAccel[i], s.pendingAccel[j] = s.pendingAccel[j], s.pendingAccel[i]

	s.handles[i].actorIndex = i
	s.handles[j].actorIndex = j

	// shape blocks trade places; everything between them shifts by the
	// difference in block size
	startI := s.shapeStart(i)
	countI := s.shapeCounts[i]
	startJ := s.shapeStart(j)
	countJ := s.shapeCounts[j]

	s.shapeCounts[i], s.shapeCounts[j] = s.shapeCounts[j], s.shapeCounts[i]

	swapBlocks(s.shapes.localTMs, startI, countI, startJ, countJ)
	swapBlocks(s.shapes.geometries, startI, countI, startJ, countJ)
	swapBlocks(s.shapes.boundsRadii, startI, countI, startJ, countJ)
	swapBlocks(s.shapes.boundsOffsets, startI, countI, startJ, countJ)
	swapBlocks(s.shapes.owners, startI, countI, startJ, countJ)

	// re-parent: the two actors traded indices. Only their own shapes carry
	// the traded owner values, and all of those sit in the rotated range.
	for k := startI; k < startJ+countJ; k++ {
		switch s.shapes.owners[k] {
		case i:
			s.shapes.owners[k] = j
		case j:
			s.shapes.owners[k] = i
		}
	}
}

// swapBlocks exchanges data[i:i+ci] with data[j:j+cj] (i+ci <= j), shifting
// everything between them, in place: a rotation done as one reversal of the
// whole affected range followed by a reversal of each piece back into order.
func swapBlocks[T any](data []T, i, ci, j, cj int) {
	reverse(data[i : j+cj])
	reverse(data[i : i+cj])
	reverse(data[i+cj : j+cj-ci])
	reverse(data[j+cj-ci : j+cj])
}

func reverse[T any](data []T) {
	for a, b := 0, len(data)-1; a < b; a, b = a+1, b-1 {
		data[a], data[b] = data[b], data[a]
	}
}

// validateArrays checks the structural invariants: equal lengths of every
// per-actor array, the ordered category partition, handle/index agreement
// and shape adjacency. Debug builds run it after every structural mutation.
func (s *Simulation) validateArrays() {
	n := len(s.bodies)
	assertAlways(len(s.handles) == n && len(s.poses) == n &&
		len(s.pendingAccel) == n && len(s.shapeCounts) == n,
		"per-actor arrays out of lock-step")
	assertAlways(s.numSimulated >= 0 && s.numKinematic >= 0 &&
		s.numSimulated+s.numKinematic <= n, "category partition out of range")
	assertAlways(s.numActiveSimulated <= s.numSimulated, "active count exceeds simulated count")

	for i, h := range s.handles {
		assertAlways(h.actorIndex == i, "handle index mismatch at %d", i)
	}

	totalShapes := 0
	for _, c := range s.shapeCounts {
		totalShapes += c
	}
	assertAlways(s.shapes.len() == totalShapes, "shape SOA length mismatch")
	assertAlways(len(s.shapes.localTMs) == totalShapes &&
		len(s.shapes.geometries) == totalShapes &&
		len(s.shapes.boundsRadii) == totalShapes &&
		len(s.shapes.boundsOffsets) == totalShapes,
		"shape SOA arrays out of lock-step")

	// adjacency: owners must be non-decreasing and match the counts
	pos := 0
	for i, c := range s.shapeCounts {
		for k := 0; k < c; k++ {
			assertAlways(s.shapes.owners[pos] == i, "shape %d owned by %d, want %d", pos, s.shapes.owners[pos], i)
			pos++
		}
	}
}
