package talon

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
)

// ActorHandle is the stable identity of one actor. The backing storage index
// moves around as other actors are created and removed, but the handle stays
// valid until RemoveActor. Using a handle after removal is a programming
// error: debug builds panic, release builds misbehave.
type ActorHandle struct {
	sim        *Simulation
	actorIndex int
}

// ActorIndex returns the current storage index of the actor. The index is
// only stable until the next structural change; prefer keeping the handle.
func (h *ActorHandle) ActorIndex() int {
	assertf(h.actorIndex >= 0, "use of removed actor handle")
	return h.actorIndex
}

// IsSimulated reports whether the actor is a dynamic, simulated body
func (h *ActorHandle) IsSimulated() bool {
	assertf(h.actorIndex >= 0, "use of removed actor handle")
	return h.actorIndex < h.sim.numSimulated
}

// WorldTransform returns the actor's world transform
func (h *ActorHandle) WorldTransform() actor.Transform {
	assertf(h.actorIndex >= 0, "use of removed actor handle")
	return h.sim.poses[h.actorIndex]
}

// SetWorldTransform teleports the actor. Intended for kinematic targets and
// initial placement; moving a body does not invalidate the iteration cache.
func (h *ActorHandle) SetWorldTransform(tm actor.Transform) {
	assertf(h.actorIndex >= 0, "use of removed actor handle")
	h.sim.poses[h.actorIndex] = tm
}

// LinearVelocity returns the actor's linear velocity
func (h *ActorHandle) LinearVelocity() mgl64.Vec3 {
	assertf(h.actorIndex >= 0, "use of removed actor handle")
	return h.sim.bodies[h.actorIndex].LinearVelocity
}

// SetLinearVelocity overwrites the actor's linear velocity
func (h *ActorHandle) SetLinearVelocity(v mgl64.Vec3) {
	assertf(h.actorIndex >= 0, "use of removed actor handle")
	h.sim.bodies[h.actorIndex].LinearVelocity = v
}

// AngularVelocity returns the actor's angular velocity
func (h *ActorHandle) AngularVelocity() mgl64.Vec3 {
	assertf(h.actorIndex >= 0, "use of removed actor handle")
	return h.sim.bodies[h.actorIndex].AngularVelocity
}

// SetAngularVelocity overwrites the actor's angular velocity
func (h *ActorHandle) SetAngularVelocity(w mgl64.Vec3) {
	assertf(h.actorIndex >= 0, "use of removed actor handle")
	h.sim.bodies[h.actorIndex].AngularVelocity = w
}

// JointHandle is the stable identity of one joint, with the same lifetime
// contract as ActorHandle
type JointHandle struct {
	sim        *Simulation
	jointIndex int
}

// Actors returns the two actors the joint links
func (h *JointHandle) Actors() (*ActorHandle, *ActorHandle) {
	assertf(h.jointIndex >= 0, "use of removed joint handle")
	return h.sim.jointActorA[h.jointIndex], h.sim.jointActorB[h.jointIndex]
}
