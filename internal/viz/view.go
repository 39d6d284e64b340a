package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/constraints"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/shape"
)

const (
	minScale = 0.05
	maxScale = 40.0
)

// Camera looks straight down the Y axis. World X runs right and world Z runs
// down the screen; Scale is dots per world unit.
type Camera struct {
	Center mgl64.Vec2
	Scale  float64
}

// Fit centres the camera on the X/Z bounds of entities and picks the largest
// scale that keeps them on a canvas of w by h dots.
func Fit(entities []*dynamo.Entity, w, h int) Camera {
	if len(entities) == 0 || w <= 0 || h <= 0 {
		return Camera{Scale: 1}
	}
	lo := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, e := range entities {
		p := e.Transform().Position()
		ext := mgl64.Vec3{}
		if v, ok := e.Volume(); ok {
			ext = v.BroadphaseExtents(e.Transform().Orientation())
		}
		lo[0] = math.Min(lo[0], p.X()-ext.X())
		lo[1] = math.Min(lo[1], p.Z()-ext.Z())
		hi[0] = math.Max(hi[0], p.X()+ext.X())
		hi[1] = math.Max(hi[1], p.Z()+ext.Z())
	}
	size := hi.Sub(lo)
	scale := maxScale
	if size.X() > 0 {
		scale = math.Min(scale, float64(w-2)/size.X())
	}
	if size.Y() > 0 {
		scale = math.Min(scale, float64(h-2)/size.Y())
	}
	return Camera{Center: lo.Add(hi).Mul(0.5), Scale: clampScale(scale)}
}

func clampScale(s float64) float64 {
	return math.Max(minScale, math.Min(maxScale, s))
}

func (c *Camera) Zoom(factor float64) { c.Scale = clampScale(c.Scale * factor) }

// Project maps a world point onto canvas dots.
func (c Camera) Project(p mgl64.Vec3, w, h int) (int, int) {
	x := float64(w)/2 + (p.X()-c.Center.X())*c.Scale
	y := float64(h)/2 + (p.Z()-c.Center.Y())*c.Scale
	return int(math.Round(x)), int(math.Round(y))
}

// Draw renders the footprint of every entity and a line for every
// constraint.
func (c Camera) Draw(cv *Canvas, entities []*dynamo.Entity, cons []dynamo.Constraint) {
	w, h := cv.Pixels()
	for _, e := range entities {
		c.drawEntity(cv, e, w, h)
	}
	for _, con := range cons {
		a, b := ends(con)
		if a == nil || b == nil {
			continue
		}
		x0, y0 := c.Project(a.Transform().Position(), w, h)
		x1, y1 := c.Project(b.Transform().Position(), w, h)
		cv.DrawLine(x0, y0, x1, y1)
	}
}

func (c Camera) drawEntity(cv *Canvas, e *dynamo.Entity, w, h int) {
	t := e.Transform()
	cx, cy := c.Project(t.Position(), w, h)
	v, ok := e.Volume()
	if !ok {
		cv.Set(cx, cy)
		return
	}
	switch v.Kind() {
	case shape.Sphere:
		cv.DrawCircle(cx, cy, c.dots(v.Radius()))
	case shape.AABB:
		he := v.HalfExtents()
		x0, y0 := c.Project(t.Position().Sub(he), w, h)
		x1, y1 := c.Project(t.Position().Add(he), w, h)
		cv.DrawRect(x0, y0, x1, y1)
	case shape.OBB:
		he := v.HalfExtents()
		corners := [4]mgl64.Vec3{
			{-he.X(), 0, -he.Z()},
			{he.X(), 0, -he.Z()},
			{he.X(), 0, he.Z()},
			{-he.X(), 0, he.Z()},
		}
		xs, ys := make([]int, 4), make([]int, 4)
		for i, corner := range corners {
			xs[i], ys[i] = c.Project(t.ToWorld(corner), w, h)
		}
		cv.DrawPolygon(xs, ys)
	case shape.Capsule:
		half := v.SegmentHalfLength()
		x0, y0 := c.Project(t.ToWorld(mgl64.Vec3{0, half, 0}), w, h)
		x1, y1 := c.Project(t.ToWorld(mgl64.Vec3{0, -half, 0}), w, h)
		cv.DrawStadium(x0, y0, x1, y1, c.dots(v.Radius()))
	}
}

func (c Camera) dots(length float64) int {
	return int(math.Round(length * c.Scale))
}

func ends(con dynamo.Constraint) (*dynamo.Entity, *dynamo.Entity) {
	switch con := con.(type) {
	case *constraints.DistanceConstraint:
		return con.A, con.B
	case *constraints.RopeConstraint:
		return con.A, con.B
	case *constraints.SpringConstraint:
		return con.A, con.B
	}
	return nil, nil
}
