// Package narrowphase runs exact intersection tests between collision
// volumes and reports a single contact per intersecting pair.
//
// Tests are selected from a dispatch table keyed by the ordered pair of
// shape kinds. Only one ordering of each mixed pair is registered; the
// other ordering is answered by swapping the roles and negating the normal,
// so results do not depend on which entity is passed first.
package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/broadphase"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// ContactPoint describes one contact. LocalA and LocalB are world-space
// lever arms from each centre of mass to the contact. Normal points from A
// to B and Penetration is positive while the volumes overlap. Position is
// the contact in world space.
type ContactPoint struct {
	LocalA      mgl64.Vec3
	LocalB      mgl64.Vec3
	Normal      mgl64.Vec3
	Penetration float64
	Position    mgl64.Vec3
}

// Flip swaps the roles of the two bodies.
func (c ContactPoint) Flip() ContactPoint {
	return ContactPoint{
		LocalA:      c.LocalB,
		LocalB:      c.LocalA,
		Normal:      c.Normal.Mul(-1),
		Penetration: c.Penetration,
		Position:    c.Position,
	}
}

// CollisionInfo is a detected contact between two entities.
type CollisionInfo struct {
	A, B  *dynamo.Entity
	Point ContactPoint
}

func (c CollisionInfo) Key() broadphase.PairKey { return broadphase.KeyOf(c.A, c.B) }
