package broadphase

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/shape"
)

func boxAt(name string, pos, half mgl64.Vec3) *dynamo.Entity {
	e := dynamo.NewEntity(name)
	e.SetVolume(shape.NewAABB(half))
	e.Transform().SetPosition(pos)
	e.UpdateBroadphaseAABB()
	return e
}

func TestKeyOf_Canonical(t *testing.T) {
	a := dynamo.NewEntity("a")
	b := dynamo.NewEntity("b")
	if KeyOf(a, b) != KeyOf(b, a) {
		t.Error("KeyOf should not depend on argument order")
	}
	k := KeyOf(b, a)
	if k.Lo >= k.Hi {
		t.Errorf("key not canonical: %+v", k)
	}
	if p := MakePair(b, a); p.A != a || p.B != b {
		t.Error("MakePair should put the lower ID first")
	}
}

func TestCandidateSet_Dedup(t *testing.T) {
	a := dynamo.NewEntity("a")
	b := dynamo.NewEntity("b")
	c := dynamo.NewEntity("c")

	s := NewCandidateSet()
	if !s.Add(a, b) {
		t.Error("first add should be new")
	}
	if s.Add(b, a) {
		t.Error("mirrored add should be a duplicate")
	}
	if s.Add(c, c) {
		t.Error("self pair should be rejected")
	}
	s.Add(c, a)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Pairs()[0].Key() != KeyOf(a, b) {
		t.Error("insertion order not preserved")
	}

	s.Reset()
	if s.Len() != 0 || s.Contains(KeyOf(a, b)) {
		t.Error("Reset should empty the set")
	}
}

func TestQuadTree_SplitsAndSeparates(t *testing.T) {
	cfg := Config{HalfSize: mgl64.Vec2{64, 64}, MaxDepth: 4, MaxPerLeaf: 2}

	var ents []*dynamo.Entity
	// two tight clusters in opposite corners
	for i := 0; i < 3; i++ {
		ents = append(ents, boxAt("west", mgl64.Vec3{-50 + float64(i), 0, -50}, mgl64.Vec3{0.4, 0.4, 0.4}))
		ents = append(ents, boxAt("east", mgl64.Vec3{50 + float64(i), 0, 50}, mgl64.Vec3{0.4, 0.4, 0.4}))
	}

	out := NewCandidateSet()
	tree := Collect(cfg, ents, out)

	if tree.Leaves() <= 1 {
		t.Fatalf("tree did not split: %d leaves", tree.Leaves())
	}
	for _, p := range out.Pairs() {
		if p.A.Name != p.B.Name {
			t.Errorf("cross-cluster candidate %s/%s", p.A.Name, p.B.Name)
		}
	}
	if out.Len() != 6 {
		t.Errorf("candidates = %d, want 6 (3 per cluster)", out.Len())
	}
}

func TestQuadTree_StraddlingEntityDeduplicated(t *testing.T) {
	cfg := Config{HalfSize: mgl64.Vec2{16, 16}, MaxDepth: 3, MaxPerLeaf: 1}

	big := boxAt("big", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{4, 1, 4})
	small := boxAt("small", mgl64.Vec3{1, 0, 1}, mgl64.Vec3{0.5, 0.5, 0.5})
	other := boxAt("other", mgl64.Vec3{-1, 0, -1}, mgl64.Vec3{0.5, 0.5, 0.5})

	out := NewCandidateSet()
	Collect(cfg, []*dynamo.Entity{big, small, other}, out)

	if !out.Contains(KeyOf(big, small)) || !out.Contains(KeyOf(big, other)) {
		t.Error("straddling entity missed a neighbour")
	}
	seen := map[PairKey]int{}
	for _, p := range out.Pairs() {
		seen[p.Key()]++
	}
	for k, n := range seen {
		if n != 1 {
			t.Errorf("pair %+v emitted %d times", k, n)
		}
	}
}

func TestQuadTree_OutsideWorldStillPaired(t *testing.T) {
	cfg := Config{HalfSize: mgl64.Vec2{8, 8}, MaxDepth: 2, MaxPerLeaf: 1}

	a := boxAt("a", mgl64.Vec3{100, 0, 100}, mgl64.Vec3{1, 1, 1})
	b := boxAt("b", mgl64.Vec3{101, 0, 100}, mgl64.Vec3{1, 1, 1})
	edge := boxAt("edge", mgl64.Vec3{8.5, 0, 0}, mgl64.Vec3{1, 1, 1})
	inside := boxAt("inside", mgl64.Vec3{9.5, 0, 0}, mgl64.Vec3{1, 1, 1})

	out := NewCandidateSet()
	Collect(cfg, []*dynamo.Entity{a, b, edge, inside}, out)

	if !out.Contains(KeyOf(a, b)) {
		t.Error("entities outside the root were not paired")
	}
	if !out.Contains(KeyOf(edge, inside)) {
		t.Error("entity straddling the root boundary was not paired")
	}
}

func TestCollect_SkipsEntitiesWithoutVolume(t *testing.T) {
	ghost := dynamo.NewEntity("ghost")
	solid := boxAt("solid", mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})

	out := NewCandidateSet()
	tree := Collect(DefaultConfig(), []*dynamo.Entity{ghost, solid}, out)
	if tree.Len() != 1 {
		t.Errorf("inserted %d entries, want 1", tree.Len())
	}
	if out.Len() != 0 {
		t.Errorf("candidates = %d, want 0", out.Len())
	}
}

func BenchmarkCollect_500(b *testing.B) {
	rng := rand.New(rand.NewSource(7))
	ents := make([]*dynamo.Entity, 500)
	for i := range ents {
		pos := mgl64.Vec3{rng.Float64()*400 - 200, rng.Float64() * 5, rng.Float64()*400 - 200}
		ents[i] = boxAt("b", pos, mgl64.Vec3{1, 1, 1})
	}
	out := NewCandidateSet()
	cfg := DefaultConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Collect(cfg, ents, out)
	}
}
