package narrowphase

import "github.com/go-gl/mathgl/mgl64"

func sphereSphere(a, b collider) (ContactPoint, bool) {
	return spheres(a.pos, a.vol.Radius(), b.pos, b.vol.Radius())
}

// spheres intersects two spheres given by centre and radius. Concentric
// spheres separate along +Y.
func spheres(pa mgl64.Vec3, ra float64, pb mgl64.Vec3, rb float64) (ContactPoint, bool) {
	delta := pb.Sub(pa)
	dist := delta.Len()
	radii := ra + rb
	if dist >= radii {
		return ContactPoint{}, false
	}
	normal := up
	if dist > 0 {
		normal = delta.Mul(1 / dist)
	}
	return ContactPoint{
		LocalA:      normal.Mul(ra),
		LocalB:      normal.Mul(-rb),
		Normal:      normal,
		Penetration: radii - dist,
	}, true
}
