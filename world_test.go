package talon

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
)

// captureSink records the last step's stats for assertions
type captureSink struct {
	last StepStats
}

func (c *captureSink) RecordStep(stats StepStats) { c.last = stats }

func newWorld(t *testing.T) (*Simulation, *captureSink) {
	t.Helper()

	sink := &captureSink{}
	s := NewSimulation(DefaultSettings(), WithStatsSink(sink))
	t.Cleanup(s.Close)

	return s, sink
}

func dynamicSphere(position mgl64.Vec3, radius, invMass float64) (actor.RigidBody, actor.Transform) {
	body := actor.RigidBody{
		InverseMass:    invMass,
		InverseInertia: mgl64.Vec3{invMass, invMass, invMass},
		Shapes: []actor.Shape{{
			LocalTransform: actor.NewTransform(),
			Geometry:       &actor.Sphere{Radius: radius},
		}},
	}

	tm := actor.NewTransform()
	tm.Position = position

	return body, tm
}

// =============================================================================
// Scenarios
// =============================================================================

func TestSimulate_FreeFall(t *testing.T) {
	s, sink := newWorld(t)

	body, tm := dynamicSphere(mgl64.Vec3{}, 1, 1)
	h := s.CreateDynamicActor(body, tm)

	s.Simulate(1.0, mgl64.Vec3{0, 0, -10})

	if vz := h.LinearVelocity().Z(); math.Abs(vz-(-10)) > 1e-9 {
		t.Errorf("vertical velocity = %v, want -10", vz)
	}
	if z := h.WorldTransform().Position.Z(); math.Abs(z-(-10)) > 1e-9 {
		t.Errorf("vertical position = %v, want -10", z)
	}
	if sink.last.ContactPairs != 0 {
		t.Errorf("ContactPairs = %d, want 0 (no other actors)", sink.last.ContactPairs)
	}
}

func TestSimulate_NonPositiveDeltaTimeIsNoOp(t *testing.T) {
	s, sink := newWorld(t)

	body, tm := dynamicSphere(mgl64.Vec3{}, 1, 1)
	h := s.CreateDynamicActor(body, tm)

	s.Simulate(0, mgl64.Vec3{0, 0, -10})
	s.Simulate(-1.0/60, mgl64.Vec3{0, 0, -10})

	if got := s.TickCount(); got != 0 {
		t.Errorf("TickCount = %d, want 0", got)
	}
	if got := h.LinearVelocity(); got != (mgl64.Vec3{}) {
		t.Errorf("velocity = %v, want zero", got)
	}
	if sink.last.Tick != 0 {
		t.Errorf("stats recorded for tick %d, want none", sink.last.Tick)
	}
}

func TestSimulate_OverlapGeneratesContacts(t *testing.T) {
	s, sink := newWorld(t)

	bodyA, tmA := dynamicSphere(mgl64.Vec3{}, 1, 1)
	bodyB, tmB := dynamicSphere(mgl64.Vec3{1, 0, 0}, 1, 1)
	s.CreateDynamicActor(bodyA, tmA)
	s.CreateDynamicActor(bodyB, tmB)

	s.Simulate(1.0/60, mgl64.Vec3{})

	if sink.last.ContactPairs != 1 {
		t.Errorf("ContactPairs = %d, want 1 for overlapping spheres", sink.last.ContactPairs)
	}
}

func TestSimulate_IgnorePairSuppressesContacts(t *testing.T) {
	s, sink := newWorld(t)

	bodyA, tmA := dynamicSphere(mgl64.Vec3{}, 1, 1)
	bodyB, tmB := dynamicSphere(mgl64.Vec3{1, 0, 0}, 1, 1)
	hA := s.CreateDynamicActor(bodyA, tmA)
	hB := s.CreateDynamicActor(bodyB, tmB)

	s.SetIgnoreCollisionPairTable([]IgnorePair{{A: hB, B: hA}})

	s.Simulate(1.0/60, mgl64.Vec3{})

	if sink.last.ContactPairs != 0 {
		t.Errorf("ContactPairs = %d, want 0 despite geometric overlap", sink.last.ContactPairs)
	}
	if sink.last.PairsTested != 0 {
		t.Errorf("PairsTested = %d, want 0 (skip list bypasses the pair)", sink.last.PairsTested)
	}
}

func TestSimulate_IgnoreActorSuppressesContacts(t *testing.T) {
	s, sink := newWorld(t)

	bodyA, tmA := dynamicSphere(mgl64.Vec3{}, 1, 1)
	bodyB, tmB := dynamicSphere(mgl64.Vec3{1, 0, 0}, 1, 1)
	hA := s.CreateDynamicActor(bodyA, tmA)
	s.CreateDynamicActor(bodyB, tmB)

	s.SetIgnoreCollisionActors([]*ActorHandle{hA})

	s.Simulate(1.0/60, mgl64.Vec3{})

	if sink.last.ContactPairs != 0 {
		t.Errorf("ContactPairs = %d, want 0 for an ignored actor", sink.last.ContactPairs)
	}
}

func TestRemoveMiddleThenCreateReusesFreedIndex(t *testing.T) {
	s, _ := newWorld(t)

	bodyA, tmA := dynamicSphere(mgl64.Vec3{0, 0, 0}, 0.5, 1)
	bodyB, tmB := dynamicSphere(mgl64.Vec3{10, 0, 0}, 0.5, 1)
	bodyC, tmC := dynamicSphere(mgl64.Vec3{20, 0, 0}, 0.5, 1)
	hA := s.CreateDynamicActor(bodyA, tmA)
	hB := s.CreateDynamicActor(bodyB, tmB)
	hC := s.CreateDynamicActor(bodyC, tmC)

	s.RemoveActor(hB)

	// swap-remove moved the last dynamic actor into the removed slot
	if hC.ActorIndex() != 1 {
		t.Errorf("surviving actor index = %d, want 1", hC.ActorIndex())
	}

	bodyD, tmD := dynamicSphere(mgl64.Vec3{30, 0, 0}, 0.5, 1)
	hD := s.CreateDynamicActor(bodyD, tmD)

	if hD.ActorIndex() != 2 {
		t.Errorf("new actor index = %d, want 2 (the freed slot)", hD.ActorIndex())
	}
	if hA.ActorIndex() != 0 {
		t.Errorf("first actor index = %d, want 0", hA.ActorIndex())
	}
	if got := hA.WorldTransform().Position; got != (mgl64.Vec3{0, 0, 0}) {
		t.Errorf("first actor position = %v, want origin", got)
	}
	if got := hC.WorldTransform().Position; got != (mgl64.Vec3{20, 0, 0}) {
		t.Errorf("surviving actor position = %v, want {20 0 0}", got)
	}

	s.validateArrays()
}

// =============================================================================
// Registry invariants
// =============================================================================

func TestCreateKeepsOrderedPartition(t *testing.T) {
	s, _ := newWorld(t)

	staticBody := actor.NewStaticBody(&actor.Plane{Normal: mgl64.Vec3{0, 0, 1}}, actor.NewTransform())
	s.CreateStaticActor(staticBody, actor.NewTransform())

	dynBody, dynTM := dynamicSphere(mgl64.Vec3{0, 0, 5}, 1, 1)
	hDyn := s.CreateDynamicActor(dynBody, dynTM)

	kinBody, kinTM := dynamicSphere(mgl64.Vec3{5, 0, 0}, 1, 1)
	hKin := s.CreateKinematicActor(kinBody, kinTM)

	// creation order static, dynamic, kinematic must still land in
	// partition order dynamic, kinematic, static
	if hDyn.ActorIndex() != 0 {
		t.Errorf("dynamic actor index = %d, want 0", hDyn.ActorIndex())
	}
	if hKin.ActorIndex() != 1 {
		t.Errorf("kinematic actor index = %d, want 1", hKin.ActorIndex())
	}
	if s.NumSimulatedBodies() != 1 || s.NumKinematicBodies() != 1 || s.NumStaticBodies() != 1 {
		t.Errorf("partition = %d/%d/%d, want 1/1/1",
			s.NumSimulatedBodies(), s.NumKinematicBodies(), s.NumStaticBodies())
	}
	if !hDyn.IsSimulated() || hKin.IsSimulated() {
		t.Error("IsSimulated disagrees with partition")
	}

	s.validateArrays()
}

func TestSwapRemovePreservesSurvivorState(t *testing.T) {
	s, _ := newWorld(t)

	handles := make([]*ActorHandle, 0, 5)
	for i := 0; i < 5; i++ {
		body, tm := dynamicSphere(mgl64.Vec3{float64(i) * 10, 0, 0}, 0.5, 1)
		body.LinearVelocity = mgl64.Vec3{0, float64(i), 0}
		handles = append(handles, s.CreateDynamicActor(body, tm))
	}

	s.RemoveActor(handles[1])
	s.RemoveActor(handles[3])

	for _, i := range []int{0, 2, 4} {
		h := handles[i]
		wantPos := mgl64.Vec3{float64(i) * 10, 0, 0}
		wantVel := mgl64.Vec3{0, float64(i), 0}

		if got := h.WorldTransform().Position; got != wantPos {
			t.Errorf("actor %d position = %v, want %v", i, got, wantPos)
		}
		if got := h.LinearVelocity(); got != wantVel {
			t.Errorf("actor %d velocity = %v, want %v", i, got, wantVel)
		}
	}

	s.validateArrays()
}

func TestRandomCreateRemoveKeepsArraysAligned(t *testing.T) {
	s, _ := newWorld(t)
	rng := rand.New(rand.NewSource(42))

	type live struct {
		handle    *ActorHandle
		simulated bool
	}
	var actors []live

	for _i := 0; _i < 200; _i++ {
		if len(actors) == 0 || rng.Float64() < 0.6 {
			body, tm := dynamicSphere(mgl64.Vec3{rng.Float64() * 100, 0, 0}, 0.5, 1)
			switch rng.Intn(3) {
			case 0:
				actors = append(actors, live{s.CreateDynamicActor(body, tm), true})
			case 1:
				actors = append(actors, live{s.CreateKinematicActor(body, tm), false})
			default:
				actors = append(actors, live{s.CreateStaticActor(body, tm), false})
			}
		} else {
			k := rng.Intn(len(actors))
			s.RemoveActor(actors[k].handle)
			actors = append(actors[:k], actors[k+1:]...)
		}

		s.validateArrays()

		for _, a := range actors {
			if a.handle.IsSimulated() != a.simulated {
				t.Fatalf("handle category changed: IsSimulated = %v, created simulated = %v",
					a.handle.IsSimulated(), a.simulated)
			}
		}
	}
}

func TestRemoveActorReleasesResource(t *testing.T) {
	s, _ := newWorld(t)

	released := 0
	body, tm := dynamicSphere(mgl64.Vec3{}, 1, 1)
	body.Resource = actor.ReleaseFunc(func() { released++ })

	h := s.CreateDynamicActor(body, tm)
	s.RemoveActor(h)

	if released != 1 {
		t.Errorf("resource released %d times, want 1", released)
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	sink := &captureSink{}
	s := NewSimulation(DefaultSettings(), WithStatsSink(sink))

	released := 0
	body, tm := dynamicSphere(mgl64.Vec3{}, 1, 1)
	body.Resource = actor.ReleaseFunc(func() { released++ })
	s.CreateDynamicActor(body, tm)

	other, otherTM := dynamicSphere(mgl64.Vec3{5, 0, 0}, 1, 1)
	other.Resource = actor.ReleaseFunc(func() { released++ })
	s.CreateDynamicActor(other, otherTM)

	s.Close()
	s.Close() // idempotent

	if released != 2 {
		t.Errorf("resources released %d times, want 2", released)
	}
}

// =============================================================================
// Active-body limit
// =============================================================================

func TestSetNumActiveBodiesHoldsInactiveInPlace(t *testing.T) {
	s, _ := newWorld(t)

	bodyA, tmA := dynamicSphere(mgl64.Vec3{}, 1, 1)
	bodyB, tmB := dynamicSphere(mgl64.Vec3{10, 0, 0}, 1, 1)
	hA := s.CreateDynamicActor(bodyA, tmA)
	hB := s.CreateDynamicActor(bodyB, tmB)

	s.SetNumActiveBodies(1)
	s.Simulate(1.0, mgl64.Vec3{0, 0, -10})

	if vz := hA.LinearVelocity().Z(); math.Abs(vz-(-10)) > 1e-9 {
		t.Errorf("active body vz = %v, want -10", vz)
	}
	if vz := hB.LinearVelocity().Z(); vz != 0 {
		t.Errorf("inactive body vz = %v, want 0", vz)
	}
	if z := hB.WorldTransform().Position.Z(); z != 0 {
		t.Errorf("inactive body moved to z = %v", z)
	}
}

func TestSetNumActiveBodiesClampsAndResets(t *testing.T) {
	s, _ := newWorld(t)

	bodyA, tmA := dynamicSphere(mgl64.Vec3{}, 1, 1)
	s.CreateDynamicActor(bodyA, tmA)

	s.SetNumActiveBodies(100)
	if s.numActiveSimulated != 1 {
		t.Errorf("active count = %d, want clamped to 1", s.numActiveSimulated)
	}

	s.SetNumActiveBodies(0)
	bodyB, tmB := dynamicSphere(mgl64.Vec3{10, 0, 0}, 1, 1)
	s.CreateDynamicActor(bodyB, tmB)

	// creating a simulated body resets the limit
	if s.numActiveSimulated != 2 {
		t.Errorf("active count = %d after create, want 2", s.numActiveSimulated)
	}
}
