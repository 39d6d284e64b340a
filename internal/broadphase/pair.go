// Package broadphase prunes collision candidates with a depth-bounded
// quad-partition over the X/Z plane.
//
// The index is conservative: every truly intersecting pair appears in the
// output, along with some pairs that only share a region. Candidates are
// deduplicated by a canonical, order-independent [PairKey].
package broadphase

import "github.com/san-kum/rigidsim/internal/dynamo"

// PairKey identifies an unordered entity pair; Lo < Hi always holds.
type PairKey struct {
	Lo, Hi uint64
}

// KeyOf canonicalizes a pair so that {a,b} and {b,a} share a key.
func KeyOf(a, b *dynamo.Entity) PairKey {
	if a.ID() < b.ID() {
		return PairKey{Lo: a.ID(), Hi: b.ID()}
	}
	return PairKey{Lo: b.ID(), Hi: a.ID()}
}

// Less orders keys lexicographically.
func (k PairKey) Less(o PairKey) bool {
	if k.Lo != o.Lo {
		return k.Lo < o.Lo
	}
	return k.Hi < o.Hi
}

// Pair is an unordered pair stored in canonical order: A has the lower ID.
type Pair struct {
	A, B *dynamo.Entity
}

// MakePair orders a and b canonically.
func MakePair(a, b *dynamo.Entity) Pair {
	if b.ID() < a.ID() {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

func (p Pair) Key() PairKey { return PairKey{Lo: p.A.ID(), Hi: p.B.ID()} }

// CandidateSet collects pairs once each, remembering first-insertion order
// so downstream passes stay deterministic within a run.
type CandidateSet struct {
	seen  map[PairKey]struct{}
	pairs []Pair
}

func NewCandidateSet() *CandidateSet {
	return &CandidateSet{seen: make(map[PairKey]struct{})}
}

// Add inserts the pair unless already present and reports whether it was new.
func (s *CandidateSet) Add(a, b *dynamo.Entity) bool {
	if a == b {
		return false
	}
	p := MakePair(a, b)
	k := p.Key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.pairs = append(s.pairs, p)
	return true
}

func (s *CandidateSet) Contains(k PairKey) bool {
	_, ok := s.seen[k]
	return ok
}

func (s *CandidateSet) Len() int { return len(s.pairs) }

// Pairs returns the pairs in first-insertion order.
func (s *CandidateSet) Pairs() []Pair { return s.pairs }

func (s *CandidateSet) Reset() {
	clear(s.seen)
	s.pairs = s.pairs[:0]
}
