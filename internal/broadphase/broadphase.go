package broadphase

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Config fixes the construction parameters of the per-step tree.
type Config struct {
	HalfSize   mgl64.Vec2
	MaxDepth   int
	MaxPerLeaf int
}

func DefaultConfig() Config {
	return Config{
		HalfSize:   mgl64.Vec2{DefaultHalfSize, DefaultHalfSize},
		MaxDepth:   DefaultMaxDepth,
		MaxPerLeaf: DefaultMaxPerLeaf,
	}
}

// Collect rebuilds a tree from the entities' cached broad-phase extents and
// writes the deduplicated candidate pairs into out. Entities without a
// volume are skipped.
func Collect(cfg Config, entities []*dynamo.Entity, out *CandidateSet) *QuadTree {
	tree := NewQuadTree(cfg.HalfSize, cfg.MaxDepth, cfg.MaxPerLeaf)
	for _, e := range entities {
		halfSizes, ok := e.BroadphaseAABB()
		if !ok {
			continue
		}
		tree.Insert(e, e.Transform().Position(), halfSizes)
	}
	out.Reset()
	tree.Pairs(out)
	return tree
}
