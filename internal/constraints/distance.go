// Package constraints provides the pairwise constraints the solver relaxes
// each sub-step.
package constraints

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// DefaultBias is the fraction of the positional error fed back as velocity
// per unit time step.
const DefaultBias = 0.01

// DistanceConstraint keeps the centres of two entities a fixed distance
// apart.
type DistanceConstraint struct {
	A, B     *dynamo.Entity
	Distance float64
	Bias     float64
}

func NewDistanceConstraint(a, b *dynamo.Entity, distance float64) *DistanceConstraint {
	return &DistanceConstraint{A: a, B: b, Distance: distance, Bias: DefaultBias}
}

func (c *DistanceConstraint) UpdateConstraint(dt float64) {
	ba, bb, ok := bodies(c.A, c.B)
	if !ok || dt <= 0 {
		return
	}
	dir, current, ok := separation(c.A, c.B)
	if !ok {
		return
	}
	if offset := c.Distance - current; offset != 0 {
		correct(ba, bb, dir, offset, c.Bias, dt)
	}
}

// Length is the current centre distance.
func (c *DistanceConstraint) Length() float64 {
	return c.A.Transform().Position().Sub(c.B.Transform().Position()).Len()
}

// RopeConstraint only acts when the entities are further apart than
// MaxLength; slack ropes exert nothing.
type RopeConstraint struct {
	A, B      *dynamo.Entity
	MaxLength float64
	Bias      float64
}

func NewRopeConstraint(a, b *dynamo.Entity, maxLength float64) *RopeConstraint {
	return &RopeConstraint{A: a, B: b, MaxLength: maxLength, Bias: DefaultBias}
}

func (c *RopeConstraint) UpdateConstraint(dt float64) {
	ba, bb, ok := bodies(c.A, c.B)
	if !ok || dt <= 0 {
		return
	}
	dir, current, ok := separation(c.A, c.B)
	if !ok {
		return
	}
	if offset := c.MaxLength - current; offset < 0 {
		correct(ba, bb, dir, offset, c.Bias, dt)
	}
}

func (c *RopeConstraint) Taut() bool {
	_, current, ok := separation(c.A, c.B)
	return ok && current >= c.MaxLength
}

func bodies(a, b *dynamo.Entity) (*dynamo.RigidBody, *dynamo.RigidBody, bool) {
	ba, bb := a.Body(), b.Body()
	return ba, bb, ba != nil && bb != nil
}

// separation returns the unit direction from B to A and the distance.
func separation(a, b *dynamo.Entity) (mgl64.Vec3, float64, bool) {
	rel := a.Transform().Position().Sub(b.Transform().Position())
	d := rel.Len()
	if d == 0 {
		return mgl64.Vec3{}, 0, false
	}
	return rel.Mul(1 / d), d, true
}

// correct applies a velocity-level correction along dir (pointing from B to
// A) that drives the relative velocity towards a bias proportional to the
// positional error.
func correct(ba, bb *dynamo.RigidBody, dir mgl64.Vec3, offset, biasFactor, dt float64) {
	mass := ba.InverseMass() + bb.InverseMass()
	if mass == 0 {
		return
	}
	velocityDot := ba.LinearVelocity().Sub(bb.LinearVelocity()).Dot(dir)
	bias := -(biasFactor / dt) * offset
	lambda := -(velocityDot + bias) / mass

	ba.ApplyLinearImpulse(dir.Mul(lambda))
	bb.ApplyLinearImpulse(dir.Mul(-lambda))
}
