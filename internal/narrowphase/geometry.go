package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var up = mgl64.Vec3{0, 1, 0}

func clampVec(v, lo, hi mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(v[0], lo[0], hi[0]),
		mgl64.Clamp(v[1], lo[1], hi[1]),
		mgl64.Clamp(v[2], lo[2], hi[2]),
	}
}

// segment returns the world-space endpoints of a capsule's core segment.
func segment(c collider) (mgl64.Vec3, mgl64.Vec3) {
	axis := c.rot.Rotate(up).Mul(c.vol.SegmentHalfLength())
	return c.pos.Sub(axis), c.pos.Add(axis)
}

// closestOnSegment returns the point of segment [p, q] nearest to x.
func closestOnSegment(p, q, x mgl64.Vec3) mgl64.Vec3 {
	d := q.Sub(p)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return p
	}
	t := mgl64.Clamp(x.Sub(p).Dot(d)/lenSq, 0, 1)
	return p.Add(d.Mul(t))
}

// closestBetweenSegments returns the closest points of segments [p1, q1] and
// [p2, q2].
func closestBetweenSegments(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	const eps = 1e-12
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = mgl64.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = mgl64.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > eps {
				s = mgl64.Clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = mgl64.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = mgl64.Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// closestOnBox returns the point of an oriented box nearest to x, in world
// space.
func closestOnBox(box collider, x mgl64.Vec3) mgl64.Vec3 {
	h := box.vol.HalfExtents()
	local := box.rot.Conjugate().Rotate(x.Sub(box.pos))
	return box.pos.Add(box.rot.Rotate(clampVec(local, h.Mul(-1), h)))
}

// boxAxes returns the box's local axes in world space.
func boxAxes(box collider) [3]mgl64.Vec3 {
	m := box.rot.Mat4().Mat3()
	return [3]mgl64.Vec3{m.Col(0), m.Col(1), m.Col(2)}
}

// supportFeature averages the box vertices furthest along dir, giving the
// centre of the supporting face, edge or vertex.
func supportFeature(box collider, dir mgl64.Vec3) mgl64.Vec3 {
	h := box.vol.HalfExtents()
	axes := boxAxes(box)
	tol := 1e-6 * math.Max(1, h[0]+h[1]+h[2])

	var verts [8]mgl64.Vec3
	best := math.Inf(-1)
	for i := range verts {
		v := box.pos
		for k := 0; k < 3; k++ {
			sign := -1.0
			if i&(1<<k) != 0 {
				sign = 1
			}
			v = v.Add(axes[k].Mul(sign * h[k]))
		}
		verts[i] = v
		best = math.Max(best, v.Dot(dir))
	}

	var sum mgl64.Vec3
	n := 0
	for _, v := range verts {
		if v.Dot(dir) >= best-tol {
			sum = sum.Add(v)
			n++
		}
	}
	return sum.Mul(1 / float64(n))
}
