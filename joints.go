package talon

import (
	"go.uber.org/zap"

	"github.com/akmonengine/talon/constraint"
)

// CreateJoint links two actors with the given configuration and returns the
// joint's handle. The configuration is copied; the caller keeps ownership of
// cfg.Resource until the joint is removed.
func (s *Simulation) CreateJoint(cfg constraint.JointConfig, a, b *ActorHandle) *JointHandle {
	assertf(a != nil && b != nil && a != b, "joint must link two distinct actors")
	assertf(a.sim == s && b.sim == s, "joint actors do not belong to this simulation")
	assertf(a.actorIndex >= 0 && b.actorIndex >= 0, "joint references a removed actor")

	idx := len(s.jointConfigs)
	handle := &JointHandle{sim: s, jointIndex: idx}

	s.jointHandles = append(s.jointHandles, handle)
	s.jointConfigs = append(s.jointConfigs, cfg)
	s.jointActorA = append(s.jointActorA, a)
	s.jointActorB = append(s.jointActorB, b)

	s.jointsDirty = true
	s.invalidateCache()

	s.log.Debug("joint created", zap.Int("joints", len(s.jointConfigs)))

	return handle
}

// RemoveJoint removes a joint, releases its externally-owned resource and
// invalidates the handle. Passing a stale handle is a programming error.
func (s *Simulation) RemoveJoint(handle *JointHandle) {
	assertf(handle != nil && handle.sim == s, "joint handle does not belong to this simulation")
	idx := handle.jointIndex
	assertf(idx >= 0 && idx < len(s.jointConfigs), "removal of unknown or already-removed joint")

	resource := s.jointConfigs[idx].Resource

	s.swapJointData(idx, len(s.jointConfigs)-1)

	last := len(s.jointConfigs) - 1
	s.jointHandles = s.jointHandles[:last]
	s.jointConfigs = s.jointConfigs[:last]
	s.jointActorA = s.jointActorA[:last]
	s.jointActorB = s.jointActorB[:last]

	handle.jointIndex = -1
	handle.sim = nil

	if resource != nil {
		resource.Release()
	}

	s.jointsDirty = true
	s.invalidateCache()

	s.log.Debug("joint removed", zap.Int("joints", len(s.jointConfigs)))
}

// swapJointData moves all data associated with the two joints in the
// parallel joint arrays and fixes up both handles' recorded indices
func (s *Simulation) swapJointData(i, j int) {
	if i == j {
		return
	}

	s.jointHandles[i], s.jointHandles[j] = s.jointHandles[j], s.jointHandles[i]
	s.jointConfigs[i], s.jointConfigs[j] = s.jointConfigs[j], s.jointConfigs[i]
	s.jointActorA[i], s.jointActorA[j] = s.jointActorA[j], s.jointActorA[i]
	s.jointActorB[i], s.jointActorB[j] = s.jointActorB[j], s.jointActorB[i]

	s.jointHandles[i].jointIndex = i
	s.jointHandles[j].jointIndex = j
}
