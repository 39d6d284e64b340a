// Package integrators advances rigid bodies through time.
package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// DefaultDamping is the fraction of velocity lost per second.
const DefaultDamping = 0.4

// SemiImplicitEuler updates velocities from forces first and then moves
// bodies with the new velocities. The two halves run separately so that
// collision and constraint impulses can be applied in between.
type SemiImplicitEuler struct {
	LinearDamping  float64
	AngularDamping float64
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{
		LinearDamping:  DefaultDamping,
		AngularDamping: DefaultDamping,
	}
}

// IntegrateAccel turns accumulated force and torque into velocity. Gravity
// is only applied to movable bodies.
func (e *SemiImplicitEuler) IntegrateAccel(entities []*dynamo.Entity, gravity mgl64.Vec3, useGravity bool, dt float64) {
	for _, ent := range entities {
		b := ent.Body()
		if b == nil || !b.IsMovable() {
			continue
		}
		accel := b.Force().Mul(b.InverseMass())
		if useGravity {
			accel = accel.Add(gravity)
		}
		b.SetLinearVelocity(b.LinearVelocity().Add(accel.Mul(dt)))

		b.UpdateInertiaTensor()
		angAccel := b.InverseInertiaTensor().Mul3x1(b.Torque())
		b.SetAngularVelocity(b.AngularVelocity().Add(angAccel.Mul(dt)))
	}
}

// IntegrateVelocity moves and rotates bodies, then damps their velocities.
func (e *SemiImplicitEuler) IntegrateVelocity(entities []*dynamo.Entity, dt float64) {
	linearDamp := dampFactor(e.LinearDamping, dt)
	angularDamp := dampFactor(e.AngularDamping, dt)

	for _, ent := range entities {
		b := ent.Body()
		if b == nil || !b.IsMovable() {
			continue
		}
		t := ent.Transform()

		v := b.LinearVelocity()
		t.SetPosition(t.Position().Add(v.Mul(dt)))
		b.SetLinearVelocity(v.Mul(linearDamp))

		w := b.AngularVelocity()
		q := t.Orientation()
		spin := mgl64.Quat{W: 0, V: w.Mul(dt * 0.5)}.Mul(q)
		t.SetOrientation(q.Add(spin))
		b.SetAngularVelocity(w.Mul(angularDamp))
	}
}

func dampFactor(damping, dt float64) float64 {
	f := 1 - damping*dt
	if f < 0 {
		return 0
	}
	return f
}
