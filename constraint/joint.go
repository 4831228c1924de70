package constraint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/talon/actor"
)

// JointConfig is the authoring-layer description of a joint linking two
// actors: a ball-socket anchor on each body, an optional linear play before
// the anchors are pulled back together, and an optional velocity drive.
type JointConfig struct {
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3

	// LinearLimit is the anchor separation tolerated before positional
	// correction kicks in. Zero locks the anchors together.
	LinearLimit float64

	// Stiffness in [0,1] scales the per-step bias that removes anchor
	// error beyond the limit. Zero disables positional correction.
	Stiffness float64

	// DriveVelocity is the target relative velocity of anchor B with
	// respect to anchor A
	DriveVelocity mgl64.Vec3

	// Resource is the externally-owned kernel object backing this joint,
	// released when the joint is removed. May be nil.
	Resource actor.Releaser
}

// DefaultJointConfig returns a locked ball-socket joint with firm correction
func DefaultJointConfig() JointConfig {
	return JointConfig{Stiffness: 0.2}
}
