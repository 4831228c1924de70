package talon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
	"github.com/akmonengine/talon/constraint"
)

// Simulate advances the world by deltaTime under the given gravity. The five
// stages run in fixed order, each consuming the previous stage's output:
// construct solver bodies, generate contacts, batch constraints, prepare
// constraints, solve and integrate. A step is never retried; whatever state
// it produced stands and the caller proceeds to the next frame.
//
// A non-positive deltaTime is a no-op: nothing moves, no stats are recorded
// and the tick counter does not advance. Calling Simulate on a closed
// simulation is likewise a no-op.
func (s *Simulation) Simulate(deltaTime float64, gravity mgl64.Vec3) {
	if s.closed || deltaTime <= 0 {
		return
	}

	s.simCount++

	// reclaim all of last frame's scratch in one go
	s.pointArena.Reset()
	s.rowArena.Reset()
	s.descArena.Reset()
	s.batchArena.Reset()
	s.pairs = s.pairs[:0]

	stats := StepStats{Tick: s.simCount}

	s.constructSolverBodies(deltaTime, gravity)
	s.generateContacts(&stats)
	descs, batches := s.batchConstraints(&stats)
	rows := s.prepareConstraints(deltaTime, descs)
	s.solveAndIntegrate(deltaTime, rows, descs, batches)

	stats.Rows = len(rows)
	s.sink.RecordStep(stats)
}

// constructSolverBodies derives solver-ready state for every actor. Gravity
// and the pending accumulated forces enter here as a velocity delta; bodies
// beyond the active-simulated range come out with infinite-mass state.
func (s *Simulation) constructSolverBodies(dt float64, gravity mgl64.Vec3) {
	n := len(s.bodies)
	if cap(s.solverBodies) < n {
		s.solverBodies = make([]constraint.SolverBody, n)
	}
	s.solverBodies = s.solverBodies[:n]

	task(s.settings.Workers, s.solverBodies, func(i int, sb *constraint.SolverBody) {
		simulated := i < s.numActiveSimulated
		delta := gravity.Add(s.pendingAccel[i]).Mul(dt)
		*sb = s.kernel.ConstructSolverBody(&s.bodies[i], s.poses[i], delta, dt, simulated)
	})

	// pending forces are consumed by the step that applies them
	for i := range s.pendingAccel {
		s.pendingAccel[i] = mgl64.Vec3{}
	}
}

// generateContacts walks the cached shape-pair enumeration, fast-forwarding
// over skip-listed positions, and invokes the kernel's narrow phase for each
// live pair. Contact points land in the frame arena, grouped contiguously
// per pair.
func (s *Simulation) generateContacts(stats *StepStats) {
	stats.CacheRebuilt = s.prepareIterationCache()

	c := &s.cache
	skip := c.skip
	cursor := 0
	pos := 0
	maxPoints := s.settings.MaxContactPointsPerPair

	for i := 0; i < c.numDynamicShapes; i++ {
		ownerA := s.shapes.owners[i]
		poseA := s.poses[ownerA].Compose(s.shapes.localTMs[i])

		for j := i + 1; j < c.numShapes; j++ {
			ownerB := s.shapes.owners[j]
			if ownerB == ownerA {
				continue
			}

			p := pos
			pos++
			if cursor < len(skip) && skip[cursor] == p {
				cursor++
				continue
			}

			stats.PairsTested++

			poseB := s.poses[ownerB].Compose(s.shapes.localTMs[j])

			// cheap sphere-distance cull before the kernel call
			ra, rb := s.shapes.boundsRadii[i], s.shapes.boundsRadii[j]
			if !math.IsInf(ra, 1) && !math.IsInf(rb, 1) {
				ca := poseA.TransformPoint(s.shapes.boundsOffsets[i])
				cb := poseB.TransformPoint(s.shapes.boundsOffsets[j])
				if d := cb.Sub(ca); d.Dot(d) > (ra+rb)*(ra+rb) {
					continue
				}
			}

			buf := s.pointArena.Alloc(maxPoints)
			normal, count := s.kernel.GenerateContacts(
				actor.Posed{Geometry: s.shapes.geometries[i], Pose: poseA},
				actor.Posed{Geometry: s.shapes.geometries[j], Pose: poseB},
				buf,
			)
			if count == 0 {
				continue
			}

			s.pairs = append(s.pairs, constraint.ContactPair{
				BodyA:  ownerA,
				BodyB:  ownerB,
				ShapeA: i,
				ShapeB: j,
				Normal: normal,
				Points: buf[:count],
			})
			stats.ContactPoints += count
		}
	}

	stats.ContactPairs = len(s.pairs)
}

// batchConstraints collects this frame's contact and joint constraints into
// descriptors and partitions them into body-disjoint batches. The joint
// dirty flag forces nothing extra here — the contact set changes every tick,
// so the ordering is recomputed each frame — but consuming it keeps the
// registry contract visible.
func (s *Simulation) batchConstraints(stats *StepStats) ([]constraint.Desc, []constraint.Batch) {
	if s.jointsDirty {
		s.log.Debug("joint membership changed, constraint order recomputed")
		s.jointsDirty = false
	}

	n := len(s.pairs) + len(s.jointConfigs)
	if n == 0 {
		return nil, nil
	}

	descs := s.descArena.Alloc(n)
	for i := range s.pairs {
		descs[i] = constraint.Desc{
			Kind:  constraint.KindContact,
			Index: i,
			BodyA: s.pairs[i].BodyA,
			BodyB: s.pairs[i].BodyB,
		}
	}
	for j := range s.jointConfigs {
		descs[len(s.pairs)+j] = constraint.Desc{
			Kind:  constraint.KindJoint,
			Index: j,
			BodyA: s.jointActorA[j].actorIndex,
			BodyB: s.jointActorB[j].actorIndex,
		}
	}

	batches := s.kernel.BatchConstraints(descs, len(s.bodies), s.batchArena.Alloc(n)[:0])

	stats.Constraints = n
	stats.Batches = len(batches)

	return descs, batches
}

// prepareConstraints converts the batched constraints into solver rows
// parameterized by deltaTime, recording each descriptor's row range
func (s *Simulation) prepareConstraints(dt float64, descs []constraint.Desc) []constraint.Row {
	bound := 0
	for di := range descs {
		switch descs[di].Kind {
		case constraint.KindContact:
			bound += s.kernel.MaxContactRows(len(s.pairs[descs[di].Index].Points))
		case constraint.KindJoint:
			bound += s.kernel.MaxJointRows()
		}
	}
	if bound == 0 {
		return nil
	}

	rows := s.rowArena.Alloc(bound)
	used := 0
	for di := range descs {
		d := &descs[di]
		d.FirstRow = used

		switch d.Kind {
		case constraint.KindContact:
			d.RowCount = s.kernel.DeriveContactRows(&s.pairs[d.Index], s.solverBodies, s.poses, dt, used, rows[used:])
		case constraint.KindJoint:
			d.RowCount = s.kernel.DeriveJointRows(&s.jointConfigs[d.Index], d.BodyA, d.BodyB, s.solverBodies, s.poses, dt, rows[used:])
		}

		used += d.RowCount
	}

	return rows[:used]
}

// solveAndIntegrate hands the frame to the kernel's iterative solver, then
// writes the solved velocities back into actor storage. Poses are shared
// with the kernel and already updated in place.
func (s *Simulation) solveAndIntegrate(dt float64, rows []constraint.Row, descs []constraint.Desc, batches []constraint.Batch) {
	s.kernel.SolveAndIntegrate(s.solverBodies, s.poses, rows, descs, batches, s.pairs,
		dt, s.settings.VelocityIterations, s.settings.PositionIterations)

	for i := 0; i < s.numActiveSimulated; i++ {
		s.bodies[i].LinearVelocity = s.solverBodies[i].LinearVelocity
		s.bodies[i].AngularVelocity = s.solverBodies[i].AngularVelocity
	}
}
