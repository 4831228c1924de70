package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GeometryType represents the type of collision geometry
type GeometryType int

const (
	GeometryTypeSphere GeometryType = iota
	GeometryTypeBox
	GeometryTypePlane
)

// Geometry is the interface that all collision geometries must implement.
// Geometries are immutable and shared; per-shape placement lives in the
// owning shape's local transform.
type Geometry interface {
	Type() GeometryType

	// BoundingRadius returns the radius of a sphere centered at
	// BoundsOffset that fully contains the geometry. Infinite for
	// unbounded geometries such as planes.
	BoundingRadius() float64
	BoundsOffset() mgl64.Vec3

	// Support returns the local-space point of the geometry furthest
	// along the given direction
	Support(direction mgl64.Vec3) mgl64.Vec3

	// Volume in m³, zero for unbounded or flat geometries
	Volume() float64

	// Inertia returns the diagonal of the local inertia tensor for the
	// given mass. Geometries are symmetric around their local axes so the
	// full tensor is diagonal.
	Inertia(mass float64) mgl64.Vec3
}

// Sphere is a spherical collision geometry
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() GeometryType { return GeometryTypeSphere }

func (s *Sphere) BoundingRadius() float64 {
	return s.Radius
}

func (s *Sphere) BoundsOffset() mgl64.Vec3 {
	return mgl64.Vec3{}
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	length := direction.Len()
	if length < 1e-12 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}

	return direction.Mul(s.Radius / length)
}

func (s *Sphere) Volume() float64 {
	return (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)
}

func (s *Sphere) Inertia(mass float64) mgl64.Vec3 {
	// I = (2/5) * m * r², identical on all axes
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Vec3{i, i, i}
}

// Box is an oriented box collision geometry defined by its half-extents
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() GeometryType { return GeometryTypeBox }

func (b *Box) BoundingRadius() float64 {
	return b.HalfExtents.Len()
}

func (b *Box) BoundsOffset() mgl64.Vec3 {
	return mgl64.Vec3{}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

func (b *Box) Volume() float64 {
	return 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()
}

func (b *Box) Inertia(mass float64) mgl64.Vec3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (dimension1² + dimension2²) per axis
	factor := mass / 12.0

	return mgl64.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	}
}

// Corners returns the 8 local-space corners of the box
func (b *Box) Corners() [8]mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	return [8]mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}
}

// Plane is an infinite plane defined in local space by Normal·p = Distance.
// Planes are only meaningful on static actors.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

func (p *Plane) Type() GeometryType { return GeometryTypePlane }

func (p *Plane) BoundingRadius() float64 {
	return math.Inf(1)
}

func (p *Plane) BoundsOffset() mgl64.Vec3 {
	return mgl64.Vec3{}
}

func (p *Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	// Unbounded; planes are handled analytically by the narrow phase
	return p.Normal.Mul(p.Distance)
}

func (p *Plane) Volume() float64 {
	return 0
}

func (p *Plane) Inertia(mass float64) mgl64.Vec3 {
	return mgl64.Vec3{}
}

// Posed pairs a geometry with its world transform for narrow-phase testing
type Posed struct {
	Geometry Geometry
	Pose     Transform
}
