// Package scene builds ready-made worlds for the CLI and the live viewer.
package scene

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/constraints"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/shape"
	"github.com/san-kum/rigidsim/internal/world"
)

// Params are the knobs shared by every scene. Count means "how many of the
// scene's main object", whatever that is.
type Params struct {
	Count int
	Seed  int64
}

// Scene is a populated world plus the gameplay rules watching it.
type Scene struct {
	Name  string
	World *world.World
	Rules *Rules
	// Focus is the entity a viewer should follow, if any.
	Focus *dynamo.Entity
}

type Builder func(s *Scene, p Params)

type entry struct {
	description string
	build       Builder
}

var registry = map[string]entry{
	"drop":   {"mixed shapes raining onto a floor", buildDrop},
	"stack":  {"a tower of boxes resting on each other", buildStack},
	"bridge": {"a chain of heavy links between two fixed anchors", buildBridge},
	"pool":   {"a cue ball breaking a rack inside four walls", buildPool},
	"random": {"shapes scattered at random over a large floor", buildRandom},
	"course": {"the obstacle course with coins, slime, springs and a goal", buildCourse},
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Describe(name string) string {
	return registry[name].description
}

// Build clears w and fills it with the named scene.
func Build(name string, w *world.World, p Params) (*Scene, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownScene, name)
	}
	w.Clear()
	s := &Scene{Name: name, World: w, Rules: NewRules()}
	e.build(s, p)
	return s, nil
}

func (s *Scene) add(e *dynamo.Entity) *dynamo.Entity {
	s.World.AddEntity(e)
	return e
}

func count(p Params, fallback int) int {
	if p.Count > 0 {
		return p.Count
	}
	return fallback
}

func buildDrop(s *Scene, p Params) {
	b := newBuilder()
	rng := rand.New(rand.NewSource(p.Seed))
	s.add(b.cube(TagFloor, mgl64.Vec3{}, mgl64.Vec3{20, 1, 20}, mgl64.QuatIdent(), 0))

	n := count(p, 20)
	side := int(math.Ceil(math.Sqrt(float64(n))))
	for i := 0; i < n; i++ {
		x := float64(i%side-side/2) * 2.5
		z := float64(i/side-side/2) * 2.5
		pos := mgl64.Vec3{x + rng.Float64()*0.5, 4 + float64(i%3)*2, z + rng.Float64()*0.5}
		rot := mgl64.QuatRotate(rng.Float64()*math.Pi, mgl64.Vec3{rng.Float64(), 1, rng.Float64()}.Normalize())
		switch i % 3 {
		case 0:
			s.add(b.sphere("", pos, 0.5, 1))
		case 1:
			s.add(b.entity("box", "", shape.NewOBB(mgl64.Vec3{0.5, 0.5, 0.5}), pos, rot, 1))
		default:
			s.add(b.capsule("", pos, 0.6, 0.3, rot, 1))
		}
	}
	if n > 0 {
		s.Focus = s.World.Entities()[1]
	}
}

func buildStack(s *Scene, p Params) {
	b := newBuilder()
	s.add(b.cube(TagFloor, mgl64.Vec3{}, mgl64.Vec3{10, 1, 10}, mgl64.QuatIdent(), 0))
	n := count(p, 8)
	for i := 0; i < n; i++ {
		s.Focus = s.add(b.cube("", mgl64.Vec3{0, 1.5 + float64(i)*1.01, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.QuatIdent(), 1))
	}
}

// Bridge geometry: heavy links held at a fixed spacing, a pendulum tied to
// the first anchor with a rope, and a weight hung from the middle link on a
// spring.
const (
	bridgeCubeSize    = 8.0
	bridgeLinkMass    = 5.0
	bridgeMaxDistance = 30.0
	bridgeSpacing     = 20.0
)

func buildBridge(s *Scene, p Params) {
	b := newBuilder()
	links := count(p, 10)
	half := mgl64.Vec3{bridgeCubeSize, bridgeCubeSize, bridgeCubeSize}
	start := mgl64.Vec3{-float64(links+1) * bridgeSpacing / 2, 40, 0}

	first := s.add(b.cube(TagFloor, start, half, mgl64.QuatIdent(), 0))
	last := s.add(b.cube(TagFloor, start.Add(mgl64.Vec3{float64(links+1) * bridgeSpacing, 0, 0}), half, mgl64.QuatIdent(), 0))

	previous := first
	var middle *dynamo.Entity
	for i := 0; i < links; i++ {
		link := s.add(b.cube("", start.Add(mgl64.Vec3{float64(i+1) * bridgeSpacing, 0, 0}), half, mgl64.QuatIdent(), 1/bridgeLinkMass))
		s.World.AddConstraint(constraints.NewDistanceConstraint(previous, link, bridgeMaxDistance))
		previous = link
		if i == links/2 {
			middle = link
		}
	}
	s.World.AddConstraint(constraints.NewDistanceConstraint(previous, last, bridgeMaxDistance))

	bob := s.add(b.sphere("", start.Add(mgl64.Vec3{0, -10, 25}), 2, 1))
	s.World.AddConstraint(constraints.NewRopeConstraint(first, bob, 25))

	if middle != nil {
		weight := s.add(b.sphere("", middle.Transform().Position().Add(mgl64.Vec3{0, -20, 0}), 3, 0.5))
		s.World.AddConstraint(constraints.NewSpringConstraint(middle, weight, 15, 4, 2))
		s.Focus = middle
	}
}

func buildPool(s *Scene, p Params) {
	b := newBuilder()
	s.add(b.cube(TagFloor, mgl64.Vec3{}, mgl64.Vec3{20, 1, 10}, mgl64.QuatIdent(), 0))
	s.add(b.cube(TagWall, mgl64.Vec3{0, 2, 11}, mgl64.Vec3{21, 2, 1}, mgl64.QuatIdent(), 0))
	s.add(b.cube(TagWall, mgl64.Vec3{0, 2, -11}, mgl64.Vec3{21, 2, 1}, mgl64.QuatIdent(), 0))
	s.add(b.cube(TagWall, mgl64.Vec3{21, 2, 0}, mgl64.Vec3{1, 2, 10}, mgl64.QuatIdent(), 0))
	s.add(b.cube(TagWall, mgl64.Vec3{-21, 2, 0}, mgl64.Vec3{1, 2, 10}, mgl64.QuatIdent(), 0))

	cue := s.add(b.sphere(TagPlayer, mgl64.Vec3{-12, 1.5, 0}, 0.5, 1))
	cue.Body().SetLinearVelocity(mgl64.Vec3{25, 0, 0.3})
	s.Focus = cue

	n := count(p, 15)
	placed := 0
	for row := 0; placed < n; row++ {
		for k := 0; k <= row && placed < n; k++ {
			x := 5 + float64(row)*0.9
			z := (float64(k) - float64(row)/2) * 1.02
			s.add(b.sphere("", mgl64.Vec3{x, 1.5, z}, 0.5, 1))
			placed++
		}
	}
}

func buildRandom(s *Scene, p Params) {
	b := newBuilder()
	rng := rand.New(rand.NewSource(p.Seed))
	s.add(b.cube(TagFloor, mgl64.Vec3{}, mgl64.Vec3{40, 1, 40}, mgl64.QuatIdent(), 0))

	n := count(p, 50)
	for i := 0; i < n; i++ {
		pos := mgl64.Vec3{rng.Float64()*70 - 35, 3 + rng.Float64()*10, rng.Float64()*70 - 35}
		rot := mgl64.QuatRotate(rng.Float64()*2*math.Pi, mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64() + 1e-3}.Normalize())
		size := 0.3 + rng.Float64()*0.7
		var e *dynamo.Entity
		switch rng.Intn(4) {
		case 0:
			e = b.sphere("", pos, size, 1)
		case 1:
			e = b.cube("", pos, mgl64.Vec3{size, size, size}, mgl64.QuatIdent(), 1)
		case 2:
			e = b.entity("box", "", shape.NewOBB(mgl64.Vec3{size, size * 0.5, size}), pos, rot, 1)
		default:
			e = b.capsule("", pos, size, size*0.4, rot, 1)
		}
		s.add(e)
	}
	if n > 0 {
		s.Focus = s.World.Entities()[1]
	}
}
