package narrowphase

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/shape"
)

const eps = 1e-6

var (
	ident  = mgl64.QuatIdent()
	rotZ45 = mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})
	rotY45 = mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})
	rotY90 = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	rotZ90 = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	rotX90 = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})
)

func placed(pos mgl64.Vec3, rot mgl64.Quat) *dynamo.Transform {
	t := dynamo.NewTransform()
	t.SetPosition(pos)
	t.SetOrientation(rot)
	return &t
}

type side struct {
	vol shape.Volume
	pos mgl64.Vec3
	rot mgl64.Quat
}

func TestIntersect_Pairs(t *testing.T) {
	sphere := shape.NewSphere(0.5)
	cube := shape.NewAABB(mgl64.Vec3{1, 1, 1})
	obb := shape.NewOBB(mgl64.Vec3{1, 1, 1})
	slab := shape.NewAABB(mgl64.Vec3{2, 1, 2})
	obbSlab := shape.NewOBB(mgl64.Vec3{2, 1, 2})
	capsule := shape.NewCapsule(1, 0.25)
	small := shape.NewAABB(mgl64.Vec3{0.5, 0.5, 0.5})

	tests := []struct {
		name   string
		a, b   side
		hit    bool
		normal mgl64.Vec3
		pen    float64
	}{
		{"sphere-sphere", side{sphere, mgl64.Vec3{}, ident}, side{sphere, mgl64.Vec3{0.9, 0, 0}, ident}, true, mgl64.Vec3{1, 0, 0}, 0.1},
		{"sphere-sphere apart", side{sphere, mgl64.Vec3{}, ident}, side{sphere, mgl64.Vec3{1.1, 0, 0}, ident}, false, mgl64.Vec3{}, 0},
		{"aabb-sphere", side{cube, mgl64.Vec3{}, ident}, side{sphere, mgl64.Vec3{0, 1.4, 0}, ident}, true, mgl64.Vec3{0, 1, 0}, 0.1},
		{"aabb-sphere apart", side{cube, mgl64.Vec3{}, ident}, side{sphere, mgl64.Vec3{0, 1.6, 0}, ident}, false, mgl64.Vec3{}, 0},
		{"aabb-aabb", side{cube, mgl64.Vec3{}, ident}, side{cube, mgl64.Vec3{1.8, 0.5, 0}, ident}, true, mgl64.Vec3{1, 0, 0}, 0.2},
		{"aabb-aabb apart", side{cube, mgl64.Vec3{}, ident}, side{cube, mgl64.Vec3{2.1, 0, 0}, ident}, false, mgl64.Vec3{}, 0},
		{"obb-sphere", side{obb, mgl64.Vec3{}, rotZ45}, side{sphere, mgl64.Vec3{0, 1.6, 0}, ident}, true, mgl64.Vec3{0, 1, 0}, 0.5 - (1.6 - math.Sqrt2)},
		{"obb-sphere apart", side{obb, mgl64.Vec3{}, rotZ45}, side{sphere, mgl64.Vec3{0, 2.0, 0}, ident}, false, mgl64.Vec3{}, 0},
		{"obb-aabb", side{obb, mgl64.Vec3{}, rotZ45}, side{small, mgl64.Vec3{0, 1.8, 0}, ident}, true, mgl64.Vec3{0, 1, 0}, math.Sqrt2 + 0.5 - 1.8},
		{"obb-aabb apart", side{obb, mgl64.Vec3{}, rotZ45}, side{small, mgl64.Vec3{0, 2.0, 0}, ident}, false, mgl64.Vec3{}, 0},
		// bounding boxes overlap but a face axis of the OBB separates them
		{"obb-aabb face separated", side{obb, mgl64.Vec3{}, rotZ45}, side{small, mgl64.Vec3{1.5, 1.5, 0}, ident}, false, mgl64.Vec3{}, 0},
		{"obb-obb", side{obb, mgl64.Vec3{}, ident}, side{obb, mgl64.Vec3{2.3, 0, 0}, rotY45}, true, mgl64.Vec3{1, 0, 0}, 1 + math.Sqrt2 - 2.3},
		{"obb-obb apart", side{obb, mgl64.Vec3{}, ident}, side{obb, mgl64.Vec3{2.5, 0, 0}, rotY45}, false, mgl64.Vec3{}, 0},
		{"capsule-sphere", side{capsule, mgl64.Vec3{}, ident}, side{sphere, mgl64.Vec3{0.7, 0.5, 0}, ident}, true, mgl64.Vec3{1, 0, 0}, 0.05},
		{"capsule-sphere apart", side{capsule, mgl64.Vec3{}, ident}, side{sphere, mgl64.Vec3{0.8, 0.5, 0}, ident}, false, mgl64.Vec3{}, 0},
		{"capsule-sphere beyond cap", side{capsule, mgl64.Vec3{}, ident}, side{sphere, mgl64.Vec3{0, 1.45, 0}, ident}, true, mgl64.Vec3{0, 1, 0}, 0.05},
		{"capsule-aabb", side{capsule, mgl64.Vec3{0, 1.2, 0}, rotZ90}, side{slab, mgl64.Vec3{}, ident}, true, mgl64.Vec3{0, -1, 0}, 0.05},
		{"capsule-aabb apart", side{capsule, mgl64.Vec3{0, 1.3, 0}, rotZ90}, side{slab, mgl64.Vec3{}, ident}, false, mgl64.Vec3{}, 0},
		{"capsule-obb", side{capsule, mgl64.Vec3{0, 1.2, 0}, rotZ90}, side{obbSlab, mgl64.Vec3{}, rotY90}, true, mgl64.Vec3{0, -1, 0}, 0.05},
		{"capsule-obb apart", side{capsule, mgl64.Vec3{0, 1.3, 0}, rotZ90}, side{obbSlab, mgl64.Vec3{}, rotY90}, false, mgl64.Vec3{}, 0},
		{"capsule-capsule", side{capsule, mgl64.Vec3{}, ident}, side{capsule, mgl64.Vec3{0.4, 0, 0}, rotX90}, true, mgl64.Vec3{1, 0, 0}, 0.1},
		{"capsule-capsule apart", side{capsule, mgl64.Vec3{}, ident}, side{capsule, mgl64.Vec3{0.6, 0, 0}, rotX90}, false, mgl64.Vec3{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := placed(tt.a.pos, tt.a.rot)
			tb := placed(tt.b.pos, tt.b.rot)

			p, ok := Intersect(tt.a.vol, ta, tt.b.vol, tb)
			if ok != tt.hit {
				t.Fatalf("Intersect() hit = %v, want %v", ok, tt.hit)
			}
			q, okSwapped := Intersect(tt.b.vol, tb, tt.a.vol, ta)
			if okSwapped != ok {
				t.Fatalf("swapped order hit = %v, want %v", okSwapped, ok)
			}
			if !ok {
				return
			}

			if !p.Normal.ApproxEqualThreshold(tt.normal, eps) {
				t.Errorf("normal = %v, want %v", p.Normal, tt.normal)
			}
			if math.Abs(p.Penetration-tt.pen) > eps {
				t.Errorf("penetration = %v, want %v", p.Penetration, tt.pen)
			}
			if math.Abs(p.Normal.Len()-1) > eps {
				t.Errorf("normal not unit length: %v", p.Normal)
			}

			if !q.Normal.ApproxEqualThreshold(tt.normal.Mul(-1), eps) {
				t.Errorf("swapped normal = %v, want %v", q.Normal, tt.normal.Mul(-1))
			}
			if math.Abs(q.Penetration-p.Penetration) > eps {
				t.Errorf("swapped penetration = %v, want %v", q.Penetration, p.Penetration)
			}
		})
	}
}

func TestIntersect_SphereLeverArms(t *testing.T) {
	a := placed(mgl64.Vec3{}, ident)
	b := placed(mgl64.Vec3{0.9, 0, 0}, ident)
	p, ok := Intersect(shape.NewSphere(0.5), a, shape.NewSphere(0.5), b)
	if !ok {
		t.Fatal("expected contact")
	}
	if !p.LocalA.ApproxEqualThreshold(mgl64.Vec3{0.5, 0, 0}, eps) {
		t.Errorf("LocalA = %v", p.LocalA)
	}
	if !p.LocalB.ApproxEqualThreshold(mgl64.Vec3{-0.5, 0, 0}, eps) {
		t.Errorf("LocalB = %v", p.LocalB)
	}
	if !p.Position.ApproxEqualThreshold(mgl64.Vec3{0.5, 0, 0}, eps) {
		t.Errorf("Position = %v", p.Position)
	}
}

func TestIntersect_AABBHasNoLeverArm(t *testing.T) {
	box := placed(mgl64.Vec3{}, ident)
	ball := placed(mgl64.Vec3{0.3, 1.4, 0}, ident)

	p, ok := Intersect(shape.NewAABB(mgl64.Vec3{1, 1, 1}), box, shape.NewSphere(0.5), ball)
	if !ok {
		t.Fatal("expected contact")
	}
	if p.LocalA != (mgl64.Vec3{}) {
		t.Errorf("AABB lever arm = %v, want zero", p.LocalA)
	}
	if !p.LocalB.ApproxEqualThreshold(mgl64.Vec3{0, -0.5, 0}, eps) {
		t.Errorf("sphere lever arm = %v", p.LocalB)
	}
	// the contact location survives even though the arm is dropped
	if !p.Position.ApproxEqualThreshold(mgl64.Vec3{0.3, 1, 0}, eps) {
		t.Errorf("Position = %v, want (0.3, 1, 0)", p.Position)
	}

	q, _ := Intersect(shape.NewSphere(0.5), ball, shape.NewAABB(mgl64.Vec3{1, 1, 1}), box)
	if q.LocalB != (mgl64.Vec3{}) {
		t.Errorf("swapped AABB lever arm = %v, want zero", q.LocalB)
	}
}

func TestIntersect_AABBIgnoresOrientation(t *testing.T) {
	box := placed(mgl64.Vec3{}, rotZ45)
	ball := placed(mgl64.Vec3{0, 1.6, 0}, ident)
	// a rotated OBB would reach the sphere; an AABB must not
	if _, ok := Intersect(shape.NewAABB(mgl64.Vec3{1, 1, 1}), box, shape.NewSphere(0.5), ball); ok {
		t.Error("AABB should ignore the transform's orientation")
	}
}

func TestIntersect_SphereInsideBox(t *testing.T) {
	box := placed(mgl64.Vec3{}, ident)
	ball := placed(mgl64.Vec3{0.1, 0.8, 0}, ident)
	p, ok := Intersect(shape.NewOBB(mgl64.Vec3{1, 1, 1}), box, shape.NewSphere(0.5), ball)
	if !ok {
		t.Fatal("expected contact")
	}
	if !p.Normal.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, eps) {
		t.Errorf("normal = %v, want +Y", p.Normal)
	}
	if math.Abs(p.Penetration-0.7) > eps {
		t.Errorf("penetration = %v, want 0.7", p.Penetration)
	}
}

func TestIntersect_CoincidentSpheres(t *testing.T) {
	a := placed(mgl64.Vec3{1, 2, 3}, ident)
	b := placed(mgl64.Vec3{1, 2, 3}, ident)
	p, ok := Intersect(shape.NewSphere(1), a, shape.NewSphere(0.5), b)
	if !ok {
		t.Fatal("expected contact")
	}
	if p.Normal != (mgl64.Vec3{0, 1, 0}) || p.Penetration != 1.5 {
		t.Errorf("got normal %v pen %v, want +Y and 1.5", p.Normal, p.Penetration)
	}
}

func TestIntersect_TouchingIsNotContact(t *testing.T) {
	a := placed(mgl64.Vec3{}, ident)
	b := placed(mgl64.Vec3{1, 0, 0}, ident)
	if _, ok := Intersect(shape.NewSphere(0.5), a, shape.NewSphere(0.5), b); ok {
		t.Error("spheres that only touch should not report a contact")
	}
}

func TestHasTest_CompleteMatrix(t *testing.T) {
	kinds := []shape.Kind{shape.Sphere, shape.AABB, shape.OBB, shape.Capsule}
	for _, a := range kinds {
		for _, b := range kinds {
			if !HasTest(a, b) {
				t.Errorf("no test for %v/%v", a, b)
			}
		}
	}
}

func body(name string, v shape.Volume, pos mgl64.Vec3, invMass float64) *dynamo.Entity {
	e := dynamo.NewEntity(name)
	e.SetVolume(v)
	e.Transform().SetPosition(pos)
	e.AttachBody(invMass)
	e.UpdateBroadphaseAABB()
	return e
}

func TestObjectIntersection_NeedsVolumes(t *testing.T) {
	a := body("a", shape.NewSphere(1), mgl64.Vec3{}, 1)
	b := body("b", shape.NewSphere(1), mgl64.Vec3{0.5, 0, 0}, 1)
	if _, ok := ObjectIntersection(a, b); !ok {
		t.Fatal("expected contact")
	}
	b.ClearVolume()
	if _, ok := ObjectIntersection(a, b); ok {
		t.Error("entity without a volume should never collide")
	}
}

func TestEligible(t *testing.T) {
	floor := body("floor", shape.NewAABB(mgl64.Vec3{10, 1, 10}), mgl64.Vec3{}, 0)
	wall := body("wall", shape.NewAABB(mgl64.Vec3{1, 5, 10}), mgl64.Vec3{9, 0, 0}, 0)
	ball := body("ball", shape.NewSphere(1), mgl64.Vec3{0, 1.5, 0}, 1)
	ghost := dynamo.NewEntity("ghost")
	ghost.SetVolume(shape.NewSphere(1))

	tests := []struct {
		name string
		a, b *dynamo.Entity
		want bool
	}{
		{"movable vs immovable", ball, floor, true},
		{"immovable pair", floor, wall, false},
		{"no body", ghost, ball, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eligible(tt.a, tt.b); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBruteForce_CanonicalOrder(t *testing.T) {
	floor := body("floor", shape.NewAABB(mgl64.Vec3{10, 1, 10}), mgl64.Vec3{}, 0)
	wall := body("wall", shape.NewAABB(mgl64.Vec3{1, 5, 10}), mgl64.Vec3{9, 0, 0}, 0)
	ball := body("ball", shape.NewSphere(1), mgl64.Vec3{0, 1.5, 0}, 1)
	far := body("far", shape.NewSphere(1), mgl64.Vec3{0, 50, 0}, 1)

	var hits []CollisionInfo
	BruteForce([]*dynamo.Entity{ball, far, wall, floor}, func(c CollisionInfo) {
		hits = append(hits, c)
	})

	if len(hits) != 1 {
		t.Fatalf("got %d contacts, want 1", len(hits))
	}
	c := hits[0]
	if c.A != floor || c.B != ball {
		t.Errorf("pair = (%s, %s), want (floor, ball)", c.A.Name, c.B.Name)
	}
	if !c.Point.Normal.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, eps) {
		t.Errorf("normal = %v, want +Y from floor to ball", c.Point.Normal)
	}
}

func TestIntersect_TiltedCapsuleOnBox(t *testing.T) {
	capsule := shape.NewCapsule(2.5, 0.5)
	boxes := []struct {
		name string
		vol  shape.Volume
		rot  mgl64.Quat
	}{
		{"aabb", shape.NewAABB(mgl64.Vec3{4, 1, 4}), ident},
		{"obb", shape.NewOBB(mgl64.Vec3{4, 1, 4}), mgl64.QuatRotate(math.Pi/6, mgl64.Vec3{0, 1, 0})},
	}
	for _, box := range boxes {
		for deg := 1; deg <= 20; deg++ {
			tilt := mgl64.DegToRad(float64(deg))
			// the lower cap dips 0.05 below the box top at y = 1
			pos := mgl64.Vec3{0, 1.45 + 2*math.Sin(tilt), 0}
			ta := placed(pos, mgl64.QuatRotate(math.Pi/2-tilt, mgl64.Vec3{0, 0, 1}))
			tb := placed(mgl64.Vec3{}, box.rot)

			p, ok := Intersect(capsule, ta, box.vol, tb)
			if !ok {
				t.Errorf("%s, %d°: no contact", box.name, deg)
				continue
			}
			if math.Abs(p.Penetration-0.05) > eps {
				t.Errorf("%s, %d°: penetration = %v, want 0.05", box.name, deg, p.Penetration)
			}
			if !p.Normal.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, eps) {
				t.Errorf("%s, %d°: normal = %v", box.name, deg, p.Normal)
			}
			if _, ok := Intersect(box.vol, tb, capsule, ta); !ok {
				t.Errorf("%s, %d°: swapped order missed the contact", box.name, deg)
			}
		}
	}
}

func TestDeepestOnSegment(t *testing.T) {
	box := collider{vol: shape.NewOBB(mgl64.Vec3{1, 1, 1}), pos: mgl64.Vec3{}, rot: ident}
	tests := []struct {
		name string
		p, q mgl64.Vec3
		want mgl64.Vec3
	}{
		{"end nearest", mgl64.Vec3{3, 2, 0}, mgl64.Vec3{5, 4, 0}, mgl64.Vec3{3, 2, 0}},
		{"crosses centre", mgl64.Vec3{-4, 0, 0}, mgl64.Vec3{4, 0, 0}, mgl64.Vec3{0, 0, 0}},
		{"degenerate", mgl64.Vec3{2, 2, 2}, mgl64.Vec3{2, 2, 2}, mgl64.Vec3{2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deepestOnSegment(box, tt.p, tt.q); !got.ApproxEqualThreshold(tt.want, 1e-6) {
				t.Errorf("deepestOnSegment = %v, want %v", got, tt.want)
			}
		})
	}
}
