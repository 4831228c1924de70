package main

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/akmonengine/talon"
	"github.com/akmonengine/talon/actor"
	"github.com/akmonengine/talon/constraint"
)

// stepLogger prints a one-line summary of each frame
type stepLogger struct{}

func (stepLogger) RecordStep(stats talon.StepStats) {
	if stats.Tick%30 != 0 {
		return
	}
	fmt.Printf("tick %3d: %d pairs tested, %d contacts, %d rows in %d batches\n",
		stats.Tick, stats.PairsTested, stats.ContactPairs, stats.Rows, stats.Batches)
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	settings := talon.DefaultSettings()
	if len(os.Args) > 1 {
		settings, err = talon.LoadSettings(os.Args[1])
		if err != nil {
			logger.Fatal("loading settings", zap.Error(err))
		}
	}

	sim := talon.NewSimulation(settings,
		talon.WithLogger(logger),
		talon.WithStatsSink(stepLogger{}),
	)
	defer sim.Close()

	// ground plane at z = 0
	ground := actor.NewStaticBody(&actor.Plane{Normal: mgl64.Vec3{0, 0, 1}}, actor.NewTransform())
	sim.CreateStaticActor(ground, actor.NewTransform())

	// a small stack of spheres dropped from above
	var handles []*talon.ActorHandle
	for i := 0; i < 3; i++ {
		tm := actor.NewTransform()
		tm.Position = mgl64.Vec3{0, 0, 2 + 3*float64(i)}

		body := actor.NewDynamicBody(&actor.Sphere{Radius: 0.5}, actor.NewTransform(), 1000)
		body.Restitution = 0.3
		body.Friction = 0.6

		handles = append(handles, sim.CreateDynamicActor(body, tm))
	}

	// a falling box pair held together by a ball-socket joint
	boxTM := actor.NewTransform()
	boxTM.Position = mgl64.Vec3{5, 0, 4}
	boxA := sim.CreateDynamicActor(actor.NewDynamicBody(&actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, actor.NewTransform(), 500), boxTM)

	boxTM.Position = mgl64.Vec3{6.5, 0, 4}
	boxB := sim.CreateDynamicActor(actor.NewDynamicBody(&actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, actor.NewTransform(), 500), boxTM)

	joint := constraint.DefaultJointConfig()
	joint.LinearLimit = 1.5
	sim.CreateJoint(joint, boxA, boxB)

	gravity := mgl64.Vec3{0, 0, -9.81}
	const dt = 1.0 / 60

	for tick := 0; tick < 300; tick++ {
		// blast the stack outward after a second of settling
		if tick == 60 {
			for _, h := range handles {
				sim.AddRadialForce(h.ActorIndex(), mgl64.Vec3{}, 5, 20, talon.FalloffLinear, talon.AddImpulse)
			}
		}

		sim.Simulate(dt, gravity)
	}

	for i, h := range handles {
		fmt.Printf("sphere %d rests at %v\n", i, h.WorldTransform().Position)
	}
	fmt.Printf("jointed boxes at %v and %v\n",
		boxA.WorldTransform().Position, boxB.WorldTransform().Position)
}
