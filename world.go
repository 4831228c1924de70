// Package talon implements a frame-stepped rigid-body simulation world: it
// owns actors (static, kinematic, dynamic) and joints, filters which pairs
// may collide, and runs a fixed per-frame pipeline that builds solver bodies,
// generates contacts, batches and prepares constraints, then solves and
// integrates. The numerical kernel behind the pipeline is pluggable; the
// default lives in the kernel package.
//
// A Simulation is single-threaded from the caller's perspective: creation,
// removal, filter updates and Simulate must not be invoked concurrently on
// the same instance.
package talon

import (
	"go.uber.org/zap"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
	"github.com/akmonengine/talon/arena"
	"github.com/akmonengine/talon/constraint"
	"github.com/akmonengine/talon/kernel"
)

// shapeSOA holds every shape in the world in parallel arrays. Shapes of one
// actor are contiguous, and blocks follow actor storage order; every
// structural mutation must preserve that adjacency.
type shapeSOA struct {
	localTMs      []actor.Transform
	geometries    []actor.Geometry
	boundsRadii   []float64
	boundsOffsets []mgl64.Vec3
	owners        []int
}

func (soa *shapeSOA) len() int { return len(soa.owners) }

// Simulation owns all the data associated with one world
type Simulation struct {
	settings Settings
	kernel   Kernel
	log      *zap.Logger
	sink     StatsSink

	// per-actor parallel arrays, always index-aligned, partitioned
	// [0,numSimulated) dynamic, then kinematic, then static
	handles      []*ActorHandle
	bodies       []actor.RigidBody
	poses        []actor.Transform
	pendingAccel []mgl64.Vec3
	shapeCounts  []int

	shapes shapeSOA

	numSimulated       int
	numKinematic       int
	numActiveSimulated int

	jointHandles []*JointHandle
	jointConfigs []constraint.JointConfig
	jointActorA  []*ActorHandle
	jointActorB  []*ActorHandle
	jointsDirty  bool

	ignorePairs  map[*ActorHandle]map[*ActorHandle]struct{}
	ignoreActors map[*ActorHandle]struct{}

	cache iterationCache

	// count of completed ticks, used for cache invalidation bookkeeping
	simCount uint64

	// per-frame scratch: arenas rewound at the start of every step
	pointArena *arena.Arena[constraint.ContactPoint]
	rowArena   *arena.Arena[constraint.Row]
	descArena  *arena.Arena[constraint.Desc]
	batchArena *arena.Arena[constraint.Batch]

	pairs        []constraint.ContactPair
	solverBodies []constraint.SolverBody

	closed bool
}

// Option configures a Simulation at construction
type Option func(*Simulation)

// WithLogger injects a structured logger; the default discards everything
func WithLogger(log *zap.Logger) Option {
	return func(s *Simulation) { s.log = log }
}

// WithKernel substitutes the numerical kernel the pipeline invokes
func WithKernel(k Kernel) Option {
	return func(s *Simulation) { s.kernel = k }
}

// WithStatsSink injects a per-step metrics sink; the default discards stats
func WithStatsSink(sink StatsSink) Option {
	return func(s *Simulation) { s.sink = sink }
}

// NewSimulation creates an empty world. Zero-valued settings fields fall back
// to DefaultSettings.
func NewSimulation(settings Settings, opts ...Option) *Simulation {
	settings = settings.normalized()

	s := &Simulation{
		settings:     settings,
		ignorePairs:  map[*ActorHandle]map[*ActorHandle]struct{}{},
		ignoreActors: map[*ActorHandle]struct{}{},
		pointArena:   arena.New[constraint.ContactPoint](256),
		rowArena:     arena.New[constraint.Row](512),
		descArena:    arena.New[constraint.Desc](128),
		batchArena:   arena.New[constraint.Batch](64),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.sink == nil {
		s.sink = nopStats{}
	}
	if s.kernel == nil {
		s.kernel = kernel.New(kernel.Tuning{
			ContactSlop:          settings.ContactSlop,
			Baumgarte:            settings.Baumgarte,
			RestitutionThreshold: settings.RestitutionThreshold,
		})
	}

	s.log.Info("simulation created",
		zap.Int("velocity_iterations", settings.VelocityIterations),
		zap.Int("position_iterations", settings.PositionIterations),
		zap.Int("workers", settings.Workers),
	)

	return s
}

// Close releases every remaining externally-owned actor and joint resource.
// Idempotent. The simulation must not be used afterwards.
func (s *Simulation) Close() {
	if s.closed {
		return
	}
	s.closed = true

	for i := range s.jointConfigs {
		if r := s.jointConfigs[i].Resource; r != nil {
			r.Release()
		}
		s.jointHandles[i].jointIndex = -1
		s.jointHandles[i].sim = nil
	}
	for i := range s.bodies {
		if r := s.bodies[i].Resource; r != nil {
			r.Release()
		}
		s.handles[i].actorIndex = -1
		s.handles[i].sim = nil
	}

	s.log.Info("simulation closed",
		zap.Int("actors", len(s.bodies)),
		zap.Int("joints", len(s.jointConfigs)),
		zap.Uint64("ticks", s.simCount),
	)
}

// NumActors reports the total number of live actors
func (s *Simulation) NumActors() int { return len(s.bodies) }

// NumSimulatedBodies reports the number of dynamic actors
func (s *Simulation) NumSimulatedBodies() int { return s.numSimulated }

// NumKinematicBodies reports the number of kinematic actors
func (s *Simulation) NumKinematicBodies() int { return s.numKinematic }

// NumStaticBodies reports the number of static actors
func (s *Simulation) NumStaticBodies() int {
	return len(s.bodies) - s.numSimulated - s.numKinematic
}

// NumJoints reports the number of live joints
func (s *Simulation) NumJoints() int { return len(s.jointConfigs) }

// TickCount reports how many times Simulate has run
func (s *Simulation) TickCount() uint64 { return s.simCount }

// IsSimulated reports whether the actor at the given storage index is a
// dynamic, simulated body
func (s *Simulation) IsSimulated(actorIndex int) bool {
	return actorIndex >= 0 && actorIndex < s.numSimulated
}

// SetNumActiveBodies limits how many of the simulated bodies actually move;
// bodies beyond the limit keep their state but are held in place by the
// solver. The limit resets to the full simulated count whenever a new
// dynamic actor is created. Values beyond the simulated count are clamped.
func (s *Simulation) SetNumActiveBodies(n int) {
	if n < 0 {
		n = 0
	}
	if n > s.numSimulated {
		n = s.numSimulated
	}
	s.numActiveSimulated = n
}
