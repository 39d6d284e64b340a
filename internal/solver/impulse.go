// Package solver resolves contacts with instantaneous impulses and relaxes
// constraints iteratively.
package solver

import (
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/narrowphase"
)

// ResolveImpulse separates two intersecting entities along the contact
// normal and applies equal and opposite impulses so that their relative
// velocity at the contact reflects with the combined restitution.
//
// Pairs with no movable body are left untouched. A pair already moving
// apart at the contact is only separated, not pushed.
func ResolveImpulse(a, b *dynamo.Entity, p narrowphase.ContactPoint) {
	ba, bb := a.Body(), b.Body()
	if ba == nil || bb == nil {
		return
	}
	totalMass := ba.InverseMass() + bb.InverseMass()
	if totalMass == 0 {
		return
	}

	ta, tb := a.Transform(), b.Transform()
	ta.SetPosition(ta.Position().Sub(p.Normal.Mul(p.Penetration * ba.InverseMass() / totalMass)))
	tb.SetPosition(tb.Position().Add(p.Normal.Mul(p.Penetration * bb.InverseMass() / totalMass)))

	rA, rB := p.LocalA, p.LocalB
	velA := ba.LinearVelocity().Add(ba.AngularVelocity().Cross(rA))
	velB := bb.LinearVelocity().Add(bb.AngularVelocity().Cross(rB))
	approach := velB.Sub(velA).Dot(p.Normal)
	if approach > 0 {
		return
	}

	inertiaA := ba.InverseInertiaTensor().Mul3x1(rA.Cross(p.Normal)).Cross(rA)
	inertiaB := bb.InverseInertiaTensor().Mul3x1(rB.Cross(p.Normal)).Cross(rB)
	angularEffect := inertiaA.Add(inertiaB).Dot(p.Normal)

	restitution := ba.Elasticity() * bb.Elasticity()
	j := -(1 + restitution) * approach / (totalMass + angularEffect)
	impulse := p.Normal.Mul(j)

	ba.ApplyLinearImpulse(impulse.Mul(-1))
	bb.ApplyLinearImpulse(impulse)
	ba.ApplyAngularImpulse(rA.Cross(impulse.Mul(-1)))
	bb.ApplyAngularImpulse(rB.Cross(impulse))
}
