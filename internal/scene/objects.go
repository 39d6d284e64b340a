package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/shape"
)

// Gameplay tags. The physics core never reads them; Rules does.
const (
	TagPlayer       = "player"
	TagFloor        = "floor"
	TagWall         = "wall"
	TagWallNoBounce = "wall_no_bounce"
	TagRamp         = "ramp"
	TagSlime        = "slime"
	TagSpring       = "spring"
	TagButton       = "button_spring"
	TagGoal         = "goal"
	TagCoin         = "coin"
	TagLog          = "log"
	TagReset        = "reset"
)

var elasticities = map[string]float64{
	TagFloor:        0.5,
	TagWall:         0.5,
	TagWallNoBounce: 0.1,
	TagRamp:         0.5,
	TagSlime:        1.7,
	TagSpring:       0.8,
	TagButton:       0.5,
	TagGoal:         0.1,
	TagCoin:         0,
	TagLog:          0.5,
	TagReset:        0,
}

// Elasticity returns the restitution a tag gives its body, and false for
// tags that keep the body default.
func Elasticity(tag string) (float64, bool) {
	e, ok := elasticities[tag]
	return e, ok
}

type builder struct {
	count map[string]int
}

func newBuilder() *builder {
	return &builder{count: make(map[string]int)}
}

func (b *builder) name(kind string) string {
	b.count[kind]++
	return fmt.Sprintf("%s-%d", kind, b.count[kind])
}

func (b *builder) entity(kind, tag string, v shape.Volume, pos mgl64.Vec3, rot mgl64.Quat, invMass float64) *dynamo.Entity {
	e := dynamo.NewEntity(b.name(kind))
	e.Tag = tag
	e.SetVolume(v)
	e.Transform().SetPosition(pos)
	e.Transform().SetOrientation(rot)
	body := e.AttachBody(invMass)
	if el, ok := Elasticity(tag); ok {
		body.SetElasticity(el)
	}
	return e
}

func (b *builder) sphere(tag string, pos mgl64.Vec3, radius, invMass float64) *dynamo.Entity {
	return b.entity("sphere", tag, shape.NewSphere(radius), pos, mgl64.QuatIdent(), invMass)
}

func (b *builder) capsule(tag string, pos mgl64.Vec3, halfHeight, radius float64, rot mgl64.Quat, invMass float64) *dynamo.Entity {
	return b.entity("capsule", tag, shape.NewCapsule(halfHeight, radius), pos, rot, invMass)
}

// cube is axis aligned when rot is the identity and oriented otherwise.
func (b *builder) cube(tag string, pos, halfExtents mgl64.Vec3, rot mgl64.Quat, invMass float64) *dynamo.Entity {
	if rot.ApproxEqualThreshold(mgl64.QuatIdent(), 1e-12) {
		return b.entity("cube", tag, shape.NewAABB(halfExtents), pos, rot, invMass)
	}
	return b.entity("cube", tag, shape.NewOBB(halfExtents), pos, rot, invMass)
}

func tilt(x, y, z float64) mgl64.Quat {
	return mgl64.Quat{W: 1, V: mgl64.Vec3{x, y, z}}.Normalize()
}

func euler(y, z float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(y), mgl64.Vec3{0, 1, 0}).
		Mul(mgl64.QuatRotate(mgl64.DegToRad(z), mgl64.Vec3{0, 0, 1}))
}
