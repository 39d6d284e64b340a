package narrowphase

import (
	"github.com/san-kum/rigidsim/internal/broadphase"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Eligible reports whether a pair is worth testing: both entities need a
// body and a volume, and at least one body must be movable.
func Eligible(a, b *dynamo.Entity) bool {
	ba, bb := a.Body(), b.Body()
	if ba == nil || bb == nil {
		return false
	}
	if ba.InverseMass() == 0 && bb.InverseMass() == 0 {
		return false
	}
	_, okA := a.Volume()
	_, okB := b.Volume()
	return okA && okB
}

// BruteForce tests every eligible pair once, in insertion order, and calls
// hit for each intersection. Pairs are reported in canonical order.
func BruteForce(entities []*dynamo.Entity, hit func(CollisionInfo)) {
	for i, a := range entities {
		if a.Body() == nil {
			continue
		}
		for _, b := range entities[i+1:] {
			testPair(broadphase.MakePair(a, b), hit)
		}
	}
}

// Candidates tests broad-phase candidate pairs and calls hit for each
// intersection.
func Candidates(pairs []broadphase.Pair, hit func(CollisionInfo)) {
	for _, p := range pairs {
		testPair(p, hit)
	}
}

func testPair(p broadphase.Pair, hit func(CollisionInfo)) {
	if !Eligible(p.A, p.B) {
		return
	}
	if info, ok := ObjectIntersection(p.A, p.B); ok {
		hit(info)
	}
}
