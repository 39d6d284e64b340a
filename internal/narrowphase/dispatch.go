package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/shape"
)

// collider is a volume placed in the world.
type collider struct {
	vol shape.Volume
	pos mgl64.Vec3
	rot mgl64.Quat
}

func place(v shape.Volume, t *dynamo.Transform) collider {
	c := collider{vol: v, pos: t.Position(), rot: t.Orientation()}
	if v.Kind() == shape.AABB {
		c.rot = mgl64.QuatIdent()
	}
	return c
}

type testFunc func(a, b collider) (ContactPoint, bool)

var table [shape.NumKinds][shape.NumKinds]testFunc

func register(a, b shape.Kind, fn testFunc) {
	table[a][b] = fn
}

func init() {
	register(shape.Sphere, shape.Sphere, sphereSphere)
	register(shape.AABB, shape.Sphere, aabbSphere)
	register(shape.AABB, shape.AABB, aabbAABB)
	register(shape.OBB, shape.Sphere, obbSphere)
	register(shape.OBB, shape.AABB, obbAABB)
	register(shape.OBB, shape.OBB, obbOBB)
	register(shape.Capsule, shape.Sphere, capsuleSphere)
	register(shape.Capsule, shape.AABB, capsuleBox)
	register(shape.Capsule, shape.OBB, capsuleBox)
	register(shape.Capsule, shape.Capsule, capsuleCapsule)
}

// HasTest reports whether either ordering of the kinds has a test.
func HasTest(a, b shape.Kind) bool {
	return table[a][b] != nil || table[b][a] != nil
}

// Intersect tests two placed volumes. Kind pairs without a registered test
// never intersect.
func Intersect(va shape.Volume, ta *dynamo.Transform, vb shape.Volume, tb *dynamo.Transform) (ContactPoint, bool) {
	a := place(va, ta)
	b := place(vb, tb)

	var (
		p  ContactPoint
		ok bool
	)
	if fn := table[va.Kind()][vb.Kind()]; fn != nil {
		p, ok = fn(a, b)
	} else if fn := table[vb.Kind()][va.Kind()]; fn != nil {
		p, ok = fn(b, a)
		p = p.Flip()
	}
	if !ok {
		return ContactPoint{}, false
	}

	p.Position = a.pos.Add(p.LocalA)

	// axis-aligned volumes never rotate, so they take no angular impulse
	if va.Kind() == shape.AABB {
		p.LocalA = mgl64.Vec3{}
	}
	if vb.Kind() == shape.AABB {
		p.LocalB = mgl64.Vec3{}
	}
	return p, true
}

// ObjectIntersection tests two entities. It reports false when either one
// lacks a volume.
func ObjectIntersection(a, b *dynamo.Entity) (CollisionInfo, bool) {
	va, okA := a.Volume()
	vb, okB := b.Volume()
	if !okA || !okB {
		return CollisionInfo{}, false
	}
	p, ok := Intersect(va, a.Transform(), vb, b.Transform())
	if !ok {
		return CollisionInfo{}, false
	}
	return CollisionInfo{A: a, B: b, Point: p}, true
}
