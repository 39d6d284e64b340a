package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func aabbSphere(a, b collider) (ContactPoint, bool) {
	return boxSphere(a, b.pos, b.vol.Radius())
}

func obbSphere(a, b collider) (ContactPoint, bool) {
	return boxSphere(a, b.pos, b.vol.Radius())
}

// boxSphere intersects an oriented box (A) with a sphere (B). A centre
// inside the box is pushed out through the nearest face.
func boxSphere(box collider, center mgl64.Vec3, radius float64) (ContactPoint, bool) {
	h := box.vol.HalfExtents()
	inv := box.rot.Conjugate()
	local := inv.Rotate(center.Sub(box.pos))
	closest := clampVec(local, h.Mul(-1), h)
	offset := local.Sub(closest)
	dist := offset.Len()

	if dist > 0 {
		if dist >= radius {
			return ContactPoint{}, false
		}
		normal := box.rot.Rotate(offset.Mul(1 / dist))
		return ContactPoint{
			LocalA:      box.rot.Rotate(closest),
			LocalB:      normal.Mul(-radius),
			Normal:      normal,
			Penetration: radius - dist,
		}, true
	}

	// centre inside: leave through the face with the least depth
	axis, depth := 0, math.Inf(1)
	for i := 0; i < 3; i++ {
		if d := h[i] - math.Abs(local[i]); d < depth {
			axis, depth = i, d
		}
	}
	var nLocal mgl64.Vec3
	nLocal[axis] = 1
	if local[axis] < 0 {
		nLocal[axis] = -1
	}
	face := local
	face[axis] = nLocal[axis] * h[axis]
	normal := box.rot.Rotate(nLocal)
	return ContactPoint{
		LocalA:      box.rot.Rotate(face),
		LocalB:      normal.Mul(-radius),
		Normal:      normal,
		Penetration: radius + depth,
	}, true
}

func aabbAABB(a, b collider) (ContactPoint, bool) {
	ha := a.vol.HalfExtents()
	hb := b.vol.HalfExtents()
	delta := b.pos.Sub(a.pos)

	axis, pen := -1, math.Inf(1)
	for i := 0; i < 3; i++ {
		overlap := ha[i] + hb[i] - math.Abs(delta[i])
		if overlap <= 0 {
			return ContactPoint{}, false
		}
		if overlap < pen {
			axis, pen = i, overlap
		}
	}
	var normal mgl64.Vec3
	normal[axis] = 1
	if delta[axis] < 0 {
		normal[axis] = -1
	}

	// centre of the overlap region
	lo := maxVec(a.pos.Sub(ha), b.pos.Sub(hb))
	hi := minVec(a.pos.Add(ha), b.pos.Add(hb))
	mid := lo.Add(hi).Mul(0.5)
	return ContactPoint{
		LocalA:      mid.Sub(a.pos),
		LocalB:      mid.Sub(b.pos),
		Normal:      normal,
		Penetration: pen,
	}, true
}

func obbAABB(a, b collider) (ContactPoint, bool) {
	b.rot = mgl64.QuatIdent()
	return obbOBB(a, b)
}

// obbOBB runs the separating axis test over the 15 candidate axes and takes
// the axis of least overlap as the contact normal. Edge axes must beat the
// best face axis by a margin, which keeps resting contacts on faces.
func obbOBB(a, b collider) (ContactPoint, bool) {
	const (
		parallelEps = 1e-9
		edgeBias    = 0.95
	)
	axesA := boxAxes(a)
	axesB := boxAxes(b)
	ha := a.vol.HalfExtents()
	hb := b.vol.HalfExtents()
	delta := b.pos.Sub(a.pos)

	face := satBest{pen: math.Inf(1)}
	edge := satBest{pen: math.Inf(1)}

	test := func(axis mgl64.Vec3, best *satBest) bool {
		l := axis.Len()
		if l < parallelEps {
			return true
		}
		axis = axis.Mul(1 / l)
		ra := ha[0]*math.Abs(axesA[0].Dot(axis)) + ha[1]*math.Abs(axesA[1].Dot(axis)) + ha[2]*math.Abs(axesA[2].Dot(axis))
		rb := hb[0]*math.Abs(axesB[0].Dot(axis)) + hb[1]*math.Abs(axesB[1].Dot(axis)) + hb[2]*math.Abs(axesB[2].Dot(axis))
		dist := delta.Dot(axis)
		overlap := ra + rb - math.Abs(dist)
		if overlap <= 0 {
			return false
		}
		if overlap < best.pen {
			if dist < 0 {
				axis = axis.Mul(-1)
			}
			best.pen, best.axis = overlap, axis
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(axesA[i], &face) || !test(axesB[i], &face) {
			return ContactPoint{}, false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !test(axesA[i].Cross(axesB[j]), &edge) {
				return ContactPoint{}, false
			}
		}
	}

	best := face
	if edge.pen < face.pen*edgeBias {
		best = edge
	}
	point := boxContactPoint(a, b, best.axis)
	return ContactPoint{
		LocalA:      point.Sub(a.pos),
		LocalB:      point.Sub(b.pos),
		Normal:      best.axis,
		Penetration: best.pen,
	}, true
}

type satBest struct {
	pen  float64
	axis mgl64.Vec3
}

// boxContactPoint picks the supporting feature of whichever box reaches
// deeper into the other one.
func boxContactPoint(a, b collider, normal mgl64.Vec3) mgl64.Vec3 {
	fromA := supportFeature(a, normal)
	fromB := supportFeature(b, normal.Mul(-1))
	gapA := fromA.Sub(closestOnBox(b, fromA)).Len()
	gapB := fromB.Sub(closestOnBox(a, fromB)).Len()
	if gapA <= gapB {
		return fromA
	}
	return fromB
}

func minVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func maxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}
