package constraints

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// SpringConstraint is a damped spring between two anchor points given in
// each entity's local frame.
type SpringConstraint struct {
	A, B             *dynamo.Entity
	AnchorA, AnchorB mgl64.Vec3
	RestLength       float64
	Stiffness        float64
	Damping          float64
}

func NewSpringConstraint(a, b *dynamo.Entity, restLength, stiffness, damping float64) *SpringConstraint {
	return &SpringConstraint{
		A:          a,
		B:          b,
		RestLength: restLength,
		Stiffness:  stiffness,
		Damping:    damping,
	}
}

func (s *SpringConstraint) UpdateConstraint(dt float64) {
	ba, bb, ok := bodies(s.A, s.B)
	if !ok || dt <= 0 {
		return
	}
	ta, tb := s.A.Transform(), s.B.Transform()
	rA := ta.Orientation().Rotate(s.AnchorA)
	rB := tb.Orientation().Rotate(s.AnchorB)

	delta := tb.Position().Add(rB).Sub(ta.Position().Add(rA))
	dist := delta.Len()
	if dist == 0 {
		return
	}
	n := delta.Mul(1 / dist)

	k := effectiveMass(ba, bb, rA, rB, n)
	if k == 0 {
		return
	}

	force := (s.RestLength - dist) * s.Stiffness
	applyImpulses(ba, bb, rA, rB, n.Mul(force*dt))

	// velocity damping along the spring axis
	vrn := relativeVelocity(ba, bb, rA, rB).Dot(n)
	vCoef := 1 - math.Exp(-s.Damping*dt*k)
	applyImpulses(ba, bb, rA, rB, n.Mul(-vrn*vCoef/k))
}

// Stretch is the signed extension beyond the rest length.
func (s *SpringConstraint) Stretch() float64 {
	pa := s.A.Transform().ToWorld(s.AnchorA)
	pb := s.B.Transform().ToWorld(s.AnchorB)
	return pb.Sub(pa).Len() - s.RestLength
}

func effectiveMass(ba, bb *dynamo.RigidBody, rA, rB, n mgl64.Vec3) float64 {
	k := ba.InverseMass() + bb.InverseMass()
	k += ba.InverseInertiaTensor().Mul3x1(rA.Cross(n)).Cross(rA).Dot(n)
	k += bb.InverseInertiaTensor().Mul3x1(rB.Cross(n)).Cross(rB).Dot(n)
	return k
}

func relativeVelocity(ba, bb *dynamo.RigidBody, rA, rB mgl64.Vec3) mgl64.Vec3 {
	va := ba.LinearVelocity().Add(ba.AngularVelocity().Cross(rA))
	vb := bb.LinearVelocity().Add(bb.AngularVelocity().Cross(rB))
	return vb.Sub(va)
}

// applyImpulses applies -j to A at rA and +j to B at rB.
func applyImpulses(ba, bb *dynamo.RigidBody, rA, rB, j mgl64.Vec3) {
	ba.ApplyLinearImpulse(j.Mul(-1))
	ba.ApplyAngularImpulse(rA.Cross(j.Mul(-1)))
	bb.ApplyLinearImpulse(j)
	bb.ApplyAngularImpulse(rB.Cross(j))
}
