package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestTransformPoint(t *testing.T) {
	tm := Transform{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}),
	}

	// 90° around Z maps +X to +Y
	got := tm.TransformPoint(mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{1, 3, 3}
	if !vecNear(got, want, epsilon) {
		t.Errorf("TransformPoint() = %v, want %v", got, want)
	}
}

func TestInverseTransformPointRoundTrip(t *testing.T) {
	tm := Transform{
		Position: mgl64.Vec3{-4, 0.5, 2},
		Rotation: mgl64.QuatRotate(0.7, mgl64.Vec3{1, 1, 0}.Normalize()),
	}

	p := mgl64.Vec3{3, -1, 5}
	got := tm.InverseTransformPoint(tm.TransformPoint(p))
	if !vecNear(got, p, 1e-9) {
		t.Errorf("round trip = %v, want %v", got, p)
	}
}

func TestCompose(t *testing.T) {
	parent := Transform{
		Position: mgl64.Vec3{10, 0, 0},
		Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}),
	}
	child := Transform{
		Position: mgl64.Vec3{1, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}

	world := parent.Compose(child)

	// The child offset rotates into +Y before translating.
	want := mgl64.Vec3{10, 1, 0}
	if !vecNear(world.Position, want, epsilon) {
		t.Errorf("Compose().Position = %v, want %v", world.Position, want)
	}

	// Composing with a local point must equal chaining the transforms.
	p := mgl64.Vec3{0, 2, 1}
	direct := world.TransformPoint(p)
	chained := parent.TransformPoint(child.TransformPoint(p))
	if !vecNear(direct, chained, 1e-9) {
		t.Errorf("Compose().TransformPoint = %v, want %v", direct, chained)
	}
}

func TestNewTransformIsIdentity(t *testing.T) {
	tm := NewTransform()

	p := mgl64.Vec3{1, 2, 3}
	if got := tm.TransformPoint(p); !vecNear(got, p, epsilon) {
		t.Errorf("identity TransformPoint(%v) = %v", p, got)
	}
}
