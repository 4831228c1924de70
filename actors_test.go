package talon

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
)

// multiSphereBody builds a dynamic descriptor with one sphere shape per
// radius, so each actor occupies a block of that many slots in the shape SOA
func multiSphereBody(invMass float64, radii ...float64) actor.RigidBody {
	shapes := make([]actor.Shape, 0, len(radii))
	for _, r := range radii {
		shapes = append(shapes, actor.Shape{
			LocalTransform: actor.NewTransform(),
			Geometry:       &actor.Sphere{Radius: r},
		})
	}

	return actor.RigidBody{
		InverseMass:    invMass,
		InverseInertia: mgl64.Vec3{invMass, invMass, invMass},
		Shapes:         shapes,
	}
}

// shapeRadii reads back the actor's shape block from the SOA in storage order
func shapeRadii(s *Simulation, h *ActorHandle) []float64 {
	idx := h.ActorIndex()
	start := s.shapeStart(idx)

	out := make([]float64, 0, s.shapeCounts[idx])
	for k := start; k < start+s.shapeCounts[idx]; k++ {
		out = append(out, s.shapes.geometries[k].(*actor.Sphere).Radius)
	}

	return out
}

func radiiEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSwapRemoveKeepsMultiShapeBlocksIntact(t *testing.T) {
	s, _ := newWorld(t)

	hA := s.CreateDynamicActor(multiSphereBody(1, 1, 2), actor.NewTransform())
	hB := s.CreateDynamicActor(multiSphereBody(1, 3), actor.NewTransform())
	hC := s.CreateDynamicActor(multiSphereBody(1, 4, 5, 6), actor.NewTransform())

	// removing the middle actor swaps C's three-shape block into B's
	// single-shape slot, shifting everything between
	s.RemoveActor(hB)
	s.validateArrays()

	if got := shapeRadii(s, hA); !radiiEqual(got, []float64{1, 2}) {
		t.Errorf("first actor radii = %v, want [1 2]", got)
	}
	if got := shapeRadii(s, hC); !radiiEqual(got, []float64{4, 5, 6}) {
		t.Errorf("surviving actor radii = %v, want [4 5 6]", got)
	}

	hD := s.CreateDynamicActor(multiSphereBody(1, 7, 8), actor.NewTransform())
	s.validateArrays()

	if got := shapeRadii(s, hD); !radiiEqual(got, []float64{7, 8}) {
		t.Errorf("new actor radii = %v, want [7 8]", got)
	}
	if got := shapeRadii(s, hC); !radiiEqual(got, []float64{4, 5, 6}) {
		t.Errorf("surviving actor radii after create = %v, want [4 5 6]", got)
	}
}

func TestCategoryBoundaryCrossingsKeepMultiShapeBlocksIntact(t *testing.T) {
	s, _ := newWorld(t)

	// a populated static tail forces every later creation to bubble its
	// shape block across one or two category boundaries
	staticBody := multiSphereBody(0, 10, 11)
	hStatic := s.CreateStaticActor(staticBody, actor.NewTransform())

	hKin := s.CreateKinematicActor(multiSphereBody(1, 20, 21, 22), actor.NewTransform())
	hDyn := s.CreateDynamicActor(multiSphereBody(1, 30), actor.NewTransform())
	s.validateArrays()

	if got := shapeRadii(s, hStatic); !radiiEqual(got, []float64{10, 11}) {
		t.Errorf("static radii = %v, want [10 11]", got)
	}
	if got := shapeRadii(s, hKin); !radiiEqual(got, []float64{20, 21, 22}) {
		t.Errorf("kinematic radii = %v, want [20 21 22]", got)
	}
	if got := shapeRadii(s, hDyn); !radiiEqual(got, []float64{30}) {
		t.Errorf("dynamic radii = %v, want [30]", got)
	}

	// dynamic removal cascades the doomed block through both boundaries
	s.RemoveActor(hDyn)
	s.validateArrays()

	if got := shapeRadii(s, hStatic); !radiiEqual(got, []float64{10, 11}) {
		t.Errorf("static radii after cascade = %v, want [10 11]", got)
	}
	if got := shapeRadii(s, hKin); !radiiEqual(got, []float64{20, 21, 22}) {
		t.Errorf("kinematic radii after cascade = %v, want [20 21 22]", got)
	}
}

func TestRandomMultiShapeCreateRemove(t *testing.T) {
	s, _ := newWorld(t)
	rng := rand.New(rand.NewSource(7))

	type live struct {
		handle *ActorHandle
		radii  []float64
	}
	var actors []live
	nextRadius := 1.0

	for _i := 0; _i < 300; _i++ {
		if len(actors) == 0 || rng.Float64() < 0.6 {
			radii := make([]float64, 1+rng.Intn(3))
			for k := range radii {
				radii[k] = nextRadius
				nextRadius++
			}
			body := multiSphereBody(1, radii...)

			var h *ActorHandle
			switch rng.Intn(3) {
			case 0:
				h = s.CreateDynamicActor(body, actor.NewTransform())
			case 1:
				h = s.CreateKinematicActor(body, actor.NewTransform())
			default:
				h = s.CreateStaticActor(body, actor.NewTransform())
			}
			actors = append(actors, live{handle: h, radii: radii})
		} else {
			k := rng.Intn(len(actors))
			s.RemoveActor(actors[k].handle)
			actors = append(actors[:k], actors[k+1:]...)
		}

		s.validateArrays()

		for _, a := range actors {
			if got := shapeRadii(s, a.handle); !radiiEqual(got, a.radii) {
				t.Fatalf("actor %d shape block = %v, want %v",
					a.handle.ActorIndex(), got, a.radii)
			}
		}
	}
}
