// Package shape models collision volumes as a closed set of shape kinds.
//
// A [Volume] is an immutable value; its [Kind] selects which fields are
// meaningful. Per-kind queries are plain functions of the value so the
// narrow-phase can dispatch on a pair of kinds without type assertions.
package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind tags the variant held by a Volume.
type Kind uint8

const (
	Sphere Kind = iota
	AABB
	OBB
	Capsule
)

// NumKinds is the number of shape kinds; dispatch tables are sized by it.
const NumKinds = 4

var kindNames = [NumKinds]string{"sphere", "aabb", "obb", "capsule"}

func (k Kind) String() string {
	if int(k) < NumKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a lowercase kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape kind: %s", name)
}

// Volume is a collision shape centred on its owning entity's position.
// Capsules are aligned with the local Y axis; HalfHeight covers the caps.
type Volume struct {
	kind        Kind
	halfExtents mgl64.Vec3
	radius      float64
	halfHeight  float64
}

func NewSphere(radius float64) Volume {
	return Volume{kind: Sphere, radius: math.Abs(radius)}
}

func NewAABB(halfExtents mgl64.Vec3) Volume {
	return Volume{kind: AABB, halfExtents: absVec(halfExtents)}
}

func NewOBB(halfExtents mgl64.Vec3) Volume {
	return Volume{kind: OBB, halfExtents: absVec(halfExtents)}
}

func NewCapsule(halfHeight, radius float64) Volume {
	return Volume{kind: Capsule, halfHeight: math.Abs(halfHeight), radius: math.Abs(radius)}
}

func (v Volume) Kind() Kind              { return v.kind }
func (v Volume) Radius() float64         { return v.radius }
func (v Volume) HalfHeight() float64     { return v.halfHeight }
func (v Volume) HalfExtents() mgl64.Vec3 { return v.halfExtents }

// SegmentHalfLength is the half length of a capsule's core segment, the
// part of the axis not covered by the hemispherical caps.
func (v Volume) SegmentHalfLength() float64 {
	if v.kind != Capsule {
		return 0
	}
	return math.Max(v.halfHeight-v.radius, 0)
}

// BroadphaseExtents returns world-axis half extents enclosing the volume at
// the given orientation. Only OBB depends on orientation.
func (v Volume) BroadphaseExtents(orientation mgl64.Quat) mgl64.Vec3 {
	switch v.kind {
	case Sphere:
		return mgl64.Vec3{v.radius, v.radius, v.radius}
	case AABB:
		return v.halfExtents
	case OBB:
		return AbsMat3(orientation.Mat4().Mat3()).Mul3x1(v.halfExtents)
	case Capsule:
		r := v.radius + v.halfHeight
		return mgl64.Vec3{r, r, r}
	}
	return mgl64.Vec3{}
}

// InertiaExtents returns the half extents used to approximate the volume as
// a solid cuboid when deriving an inertia tensor.
func (v Volume) InertiaExtents() mgl64.Vec3 {
	switch v.kind {
	case Sphere:
		return mgl64.Vec3{v.radius, v.radius, v.radius}
	case Capsule:
		return mgl64.Vec3{v.radius, v.halfHeight, v.radius}
	}
	return v.halfExtents
}

func (v Volume) String() string {
	switch v.kind {
	case Sphere:
		return fmt.Sprintf("sphere(r=%.3g)", v.radius)
	case Capsule:
		return fmt.Sprintf("capsule(h=%.3g, r=%.3g)", v.halfHeight, v.radius)
	}
	h := v.halfExtents
	return fmt.Sprintf("%s(%.3g, %.3g, %.3g)", v.kind, h[0], h[1], h[2])
}

// AbsMat3 returns the matrix with every element replaced by its magnitude.
func AbsMat3(m mgl64.Mat3) mgl64.Mat3 {
	for i := range m {
		m[i] = math.Abs(m[i])
	}
	return m
}

func absVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])}
}
