package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// golden ratio conjugate
	invPhi       = 0.6180339887498949
	segmentTolSq = 1e-18
)

func capsuleSphere(a, b collider) (ContactPoint, bool) {
	p, q := segment(a)
	core := closestOnSegment(p, q, b.pos)
	cp, ok := spheres(core, a.vol.Radius(), b.pos, b.vol.Radius())
	if !ok {
		return ContactPoint{}, false
	}
	cp.LocalA = cp.LocalA.Add(core.Sub(a.pos))
	return cp, true
}

func capsuleCapsule(a, b collider) (ContactPoint, bool) {
	pa, qa := segment(a)
	pb, qb := segment(b)
	ca, cb := closestBetweenSegments(pa, qa, pb, qb)
	cp, ok := spheres(ca, a.vol.Radius(), cb, b.vol.Radius())
	if !ok {
		return ContactPoint{}, false
	}
	cp.LocalA = cp.LocalA.Add(ca.Sub(a.pos))
	cp.LocalB = cp.LocalB.Add(cb.Sub(b.pos))
	return cp, true
}

// capsuleBox finds the segment point deepest in (or nearest to) the box,
// then treats the capsule as a sphere centred there.
func capsuleBox(a, b collider) (ContactPoint, bool) {
	p, q := segment(a)
	core := deepestOnSegment(b, p, q)

	cp, ok := boxSphere(b, core, a.vol.Radius())
	if !ok {
		return ContactPoint{}, false
	}
	cp = cp.Flip()
	// LocalA is relative to the sphere centre on the core segment
	cp.LocalA = cp.LocalA.Add(core.Sub(a.pos))
	return cp, true
}

// boxDistance is the signed distance from x to an oriented box: negative
// inside, measured to the nearest face.
func boxDistance(box collider, x mgl64.Vec3) float64 {
	h := box.vol.HalfExtents()
	local := box.rot.Conjugate().Rotate(x.Sub(box.pos))
	var outside mgl64.Vec3
	inside := math.Inf(-1)
	for i := 0; i < 3; i++ {
		d := math.Abs(local[i]) - h[i]
		outside[i] = math.Max(d, 0)
		inside = math.Max(inside, d)
	}
	return outside.Len() + math.Min(inside, 0)
}

// deepestOnSegment minimises boxDistance over [p, q] by golden-section
// search. The signed distance to a convex set is convex along a line.
func deepestOnSegment(box collider, p, q mgl64.Vec3) mgl64.Vec3 {
	d := q.Sub(p)
	if d.Dot(d) == 0 {
		return p
	}
	at := func(t float64) float64 { return boxDistance(box, p.Add(d.Mul(t))) }

	lo, hi := 0.0, 1.0
	x1, x2 := hi-invPhi*(hi-lo), lo+invPhi*(hi-lo)
	f1, f2 := at(x1), at(x2)
	for (hi-lo)*(hi-lo)*d.Dot(d) > segmentTolSq {
		if f1 <= f2 {
			hi, x2, f2 = x2, x1, f1
			x1 = hi - invPhi*(hi-lo)
			f1 = at(x1)
		} else {
			lo, x1, f1 = x1, x2, f2
			x2 = lo + invPhi*(hi-lo)
			f2 = at(x2)
		}
	}

	best, fbest := (lo+hi)/2, at((lo+hi)/2)
	if f := at(0); f < fbest {
		best, fbest = 0, f
	}
	if f := at(1); f < fbest {
		best = 1
	}
	return p.Add(d.Mul(best))
}
