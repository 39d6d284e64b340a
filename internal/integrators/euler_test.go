package integrators

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/shape"
)

var gravity = mgl64.Vec3{0, -9.8, 0}

func sphere(invMass float64) *dynamo.Entity {
	e := dynamo.NewEntity("sphere")
	e.SetVolume(shape.NewSphere(0.5))
	e.AttachBody(invMass)
	return e
}

func TestIntegrateVelocity_ZeroSpinKeepsOrientation(t *testing.T) {
	e := sphere(1)
	q := mgl64.QuatRotate(0.7, mgl64.Vec3{1, 2, 3}.Normalize())
	e.Transform().SetOrientation(q)

	integ := NewSemiImplicitEuler()
	for i := 0; i < 100; i++ {
		integ.IntegrateVelocity([]*dynamo.Entity{e}, 1.0/120)
	}
	if !e.Transform().Orientation().ApproxEqualThreshold(q, 1e-12) {
		t.Errorf("orientation drifted: %v -> %v", q, e.Transform().Orientation())
	}
}

func TestIntegrateVelocity_Spin(t *testing.T) {
	e := sphere(1)
	e.Body().SetAngularVelocity(mgl64.Vec3{0, 1, 0})

	integ := &SemiImplicitEuler{}
	dt := 0.001
	for i := 0; i < 1000; i++ {
		integ.IntegrateVelocity([]*dynamo.Entity{e}, dt)
	}

	q := e.Transform().Orientation()
	if math.Abs(q.Len()-1) > 1e-12 {
		t.Errorf("orientation not unit length: %v", q.Len())
	}
	got := q.Rotate(mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{math.Cos(1), 0, -math.Sin(1)}
	if !got.ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("x axis after one radian = %v, want %v", got, want)
	}
}

func TestIntegrateVelocity_Damping(t *testing.T) {
	tests := []struct {
		name    string
		damping float64
		dt      float64
		want    float64
	}{
		{"default", DefaultDamping, 0.1, 0.96},
		{"none", 0, 0.1, 1},
		{"overdamped clamps to zero", 20, 0.1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := sphere(1)
			e.Body().SetLinearVelocity(mgl64.Vec3{1, 0, 0})
			e.Body().SetAngularVelocity(mgl64.Vec3{0, 1, 0})

			integ := &SemiImplicitEuler{LinearDamping: tt.damping, AngularDamping: tt.damping}
			integ.IntegrateVelocity([]*dynamo.Entity{e}, tt.dt)

			if got := e.Transform().Position().X(); math.Abs(got-tt.dt) > 1e-12 {
				t.Errorf("position = %v, want %v (moved with the undamped velocity)", got, tt.dt)
			}
			if got := e.Body().LinearVelocity().X(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("linear velocity = %v, want %v", got, tt.want)
			}
			if got := e.Body().AngularVelocity().Y(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("angular velocity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntegrateAccel_Gravity(t *testing.T) {
	tests := []struct {
		name       string
		invMass    float64
		useGravity bool
		want       mgl64.Vec3
	}{
		{"movable", 1, true, mgl64.Vec3{0, -0.98, 0}},
		{"heavy falls the same", 0.01, true, mgl64.Vec3{0, -0.98, 0}},
		{"immovable", 0, true, mgl64.Vec3{}},
		{"gravity off", 1, false, mgl64.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := sphere(tt.invMass)
			NewSemiImplicitEuler().IntegrateAccel([]*dynamo.Entity{e}, gravity, tt.useGravity, 0.1)
			if got := e.Body().LinearVelocity(); !got.ApproxEqualThreshold(tt.want, 1e-12) {
				t.Errorf("velocity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntegrateAccel_ForceAndTorque(t *testing.T) {
	e := sphere(0.5)
	e.Body().AddForce(mgl64.Vec3{2, 0, 0})
	e.Body().AddTorque(mgl64.Vec3{0, 0, 1})

	NewSemiImplicitEuler().IntegrateAccel([]*dynamo.Entity{e}, gravity, false, 0.1)

	if got := e.Body().LinearVelocity(); !got.ApproxEqualThreshold(mgl64.Vec3{0.1, 0, 0}, 1e-12) {
		t.Errorf("linear velocity = %v, want (0.1, 0, 0)", got)
	}
	// solid sphere: 2.5 * invMass / r^2 = 5
	if got := e.Body().AngularVelocity(); !got.ApproxEqualThreshold(mgl64.Vec3{0, 0, 0.5}, 1e-12) {
		t.Errorf("angular velocity = %v, want (0, 0, 0.5)", got)
	}
	if e.Body().Force() != (mgl64.Vec3{2, 0, 0}) {
		t.Error("integration must not clear forces")
	}
}

func TestIntegrate_SkipsStaticAndBodiless(t *testing.T) {
	static := sphere(0)
	static.Body().SetLinearVelocity(mgl64.Vec3{1, 0, 0})
	ghost := dynamo.NewEntity("ghost")

	integ := NewSemiImplicitEuler()
	es := []*dynamo.Entity{static, ghost}
	integ.IntegrateAccel(es, gravity, true, 0.1)
	integ.IntegrateVelocity(es, 0.1)

	if static.Transform().Position() != (mgl64.Vec3{}) {
		t.Error("immovable body moved")
	}
	if ghost.Transform().Position() != (mgl64.Vec3{}) {
		t.Error("entity without a body moved")
	}
}
