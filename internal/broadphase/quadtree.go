package broadphase

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

const (
	DefaultHalfSize   = 1024.0
	DefaultMaxDepth   = 7
	DefaultMaxPerLeaf = 5
)

// Entry is one inserted entity with its X/Z footprint.
type Entry struct {
	Entity      *dynamo.Entity
	Position    mgl64.Vec3
	HalfExtents mgl64.Vec3
}

type node struct {
	center   mgl64.Vec2 // X/Z
	halfSize mgl64.Vec2
	children *[4]node
	contents []Entry
}

// QuadTree partitions the X/Z plane; height is ignored. Entries are stored
// in every leaf their footprint overlaps. Footprints outside the root go to
// an overflow list that is paired against everything.
type QuadTree struct {
	root       node
	maxDepth   int
	maxPerLeaf int
	overflow   []Entry
	all        []Entry
}

// NewQuadTree covers [-halfSize.X, halfSize.X] x [-halfSize.Y, halfSize.Y]
// on the X/Z plane.
func NewQuadTree(halfSize mgl64.Vec2, maxDepth, maxPerLeaf int) *QuadTree {
	if maxDepth < 0 {
		maxDepth = 0
	}
	if maxPerLeaf < 1 {
		maxPerLeaf = 1
	}
	return &QuadTree{
		root:       node{halfSize: halfSize},
		maxDepth:   maxDepth,
		maxPerLeaf: maxPerLeaf,
	}
}

// Insert adds an entity with its world position and half extents.
func (q *QuadTree) Insert(e *dynamo.Entity, pos, halfExtents mgl64.Vec3) {
	entry := Entry{Entity: e, Position: pos, HalfExtents: halfExtents}
	q.all = append(q.all, entry)
	if !q.root.contains(entry) {
		q.overflow = append(q.overflow, entry)
	}
	q.root.insert(entry, q.maxDepth, q.maxPerLeaf)
}

// Len is the number of inserted entries.
func (q *QuadTree) Len() int { return len(q.all) }

// OperateOnContents visits every non-empty leaf.
func (q *QuadTree) OperateOnContents(fn func(contents []Entry)) {
	q.root.walk(fn)
}

// Leaves counts leaf regions, including empty ones.
func (q *QuadTree) Leaves() int {
	n := 0
	q.root.visitLeaves(func(*node) { n++ })
	return n
}

// Pairs emits every pair that shares a leaf, plus every pairing of an
// overflow entry with any other entry, deduplicated.
func (q *QuadTree) Pairs(out *CandidateSet) {
	q.OperateOnContents(func(contents []Entry) {
		for i := range contents {
			for j := i + 1; j < len(contents); j++ {
				out.Add(contents[i].Entity, contents[j].Entity)
			}
		}
	})
	for _, o := range q.overflow {
		for _, e := range q.all {
			out.Add(o.Entity, e.Entity)
		}
	}
}

func (n *node) overlaps(e Entry) bool {
	return abs(e.Position[0]-n.center[0]) <= e.HalfExtents[0]+n.halfSize[0] &&
		abs(e.Position[2]-n.center[1]) <= e.HalfExtents[2]+n.halfSize[1]
}

func (n *node) contains(e Entry) bool {
	return abs(e.Position[0]-n.center[0])+e.HalfExtents[0] <= n.halfSize[0] &&
		abs(e.Position[2]-n.center[1])+e.HalfExtents[2] <= n.halfSize[1]
}

func (n *node) insert(e Entry, depthLeft, maxPerLeaf int) {
	if !n.overlaps(e) {
		return
	}
	if n.children != nil {
		for i := range n.children {
			n.children[i].insert(e, depthLeft-1, maxPerLeaf)
		}
		return
	}
	n.contents = append(n.contents, e)
	if len(n.contents) > maxPerLeaf && depthLeft > 0 {
		n.split()
		for _, c := range n.contents {
			for i := range n.children {
				n.children[i].insert(c, depthLeft-1, maxPerLeaf)
			}
		}
		n.contents = nil
	}
}

func (n *node) split() {
	h := n.halfSize.Mul(0.5)
	n.children = &[4]node{
		{center: mgl64.Vec2{n.center[0] - h[0], n.center[1] + h[1]}, halfSize: h},
		{center: mgl64.Vec2{n.center[0] + h[0], n.center[1] + h[1]}, halfSize: h},
		{center: mgl64.Vec2{n.center[0] - h[0], n.center[1] - h[1]}, halfSize: h},
		{center: mgl64.Vec2{n.center[0] + h[0], n.center[1] - h[1]}, halfSize: h},
	}
}

func (n *node) walk(fn func([]Entry)) {
	if n.children != nil {
		for i := range n.children {
			n.children[i].walk(fn)
		}
		return
	}
	if len(n.contents) > 0 {
		fn(n.contents)
	}
}

func (n *node) visitLeaves(fn func(*node)) {
	if n.children != nil {
		for i := range n.children {
			n.children[i].visitLeaves(fn)
		}
		return
	}
	fn(n)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
