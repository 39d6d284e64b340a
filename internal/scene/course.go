package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

type block struct {
	tag  string
	pos  mgl64.Vec3
	half mgl64.Vec3
	rot  mgl64.Quat
}

func courseLayout() []block {
	id := mgl64.QuatIdent()
	return []block{
		{TagReset, mgl64.Vec3{0, -5, 0}, mgl64.Vec3{20, 0.5, 20}, id},

		{TagFloor, mgl64.Vec3{16, 0, 16}, mgl64.Vec3{5, 1, 2}, id},
		{TagFloor, mgl64.Vec3{-15, 2, 13}, mgl64.Vec3{5, 1, 5}, id},
		{TagFloor, mgl64.Vec3{0, 2, 9}, mgl64.Vec3{11, 1, 1}, id},
		{TagFloor, mgl64.Vec3{14, 2, 9}, mgl64.Vec3{4, 1, 3}, id},

		{TagGoal, mgl64.Vec3{13.5, 3, -16}, mgl64.Vec3{4.5, 1, 2}, id},

		{TagWall, mgl64.Vec3{0, 2, 19}, mgl64.Vec3{20, 4, 1}, id},
		{TagWall, mgl64.Vec3{3, 2, 13}, mgl64.Vec3{17, 4, 1}, id},
		{TagWall, mgl64.Vec3{-18, 4, 17.36}, mgl64.Vec3{2, 2, 1}, tilt(0, -0.414, 0)},
		{TagWall, mgl64.Vec3{19, 2, -3}, mgl64.Vec3{1, 8, 15}, id},
		{TagWall, mgl64.Vec3{6.5, 2, -5}, mgl64.Vec3{2.5, 8, 13}, id},
		{TagWall, mgl64.Vec3{12, 2, -19}, mgl64.Vec3{8, 8, 1}, id},
		{TagWall, mgl64.Vec3{-11.3334, 4, 11.9}, mgl64.Vec3{2, 2, 1}, tilt(0, 0.268, 0)},
		{TagWall, mgl64.Vec3{-7, 2, 11}, mgl64.Vec3{3, 4, 1}, id},
		{TagWall, mgl64.Vec3{8, 2, 11}, mgl64.Vec3{4, 4, 1}, id},
		{TagWall, mgl64.Vec3{-19, 2, 15}, mgl64.Vec3{1, 4, 3}, id},
		{TagWall, mgl64.Vec3{10.5, 2, 6}, mgl64.Vec3{1.5, 4, 2}, id},
		{TagWall, mgl64.Vec3{-12, 2, 7}, mgl64.Vec3{8, 6, 1}, id},

		{TagRamp, mgl64.Vec3{0, 1, 16}, mgl64.Vec3{11, 1, 2}, euler(0, -5.8)},
		{TagRamp, mgl64.Vec3{0, 7, 2}, mgl64.Vec3{4, 1, 6.5}, tilt(0.315, 0, 0)},
		{TagRamp, mgl64.Vec3{13.5, 3.5, 0}, mgl64.Vec3{4.5, 1, 6.5}, tilt(0.12, 0, 0)},

		{TagSlime, mgl64.Vec3{9.54, 2, 2}, mgl64.Vec3{1, 3.5, 3}, euler(45, 0)},
		{TagSlime, mgl64.Vec3{16.66, 2, 0}, mgl64.Vec3{1, 3.5, 3}, euler(45, 0)},
		{TagSlime, mgl64.Vec3{16.66, 2, -2.8}, mgl64.Vec3{1, 3.5, 3}, euler(-45, 0)},

		{TagButton, mgl64.Vec3{-16, 2, -16}, mgl64.Vec3{2, 1, 2}, id},
	}
}

type springPad struct {
	pos   mgl64.Vec3
	half  mgl64.Vec3
	force mgl64.Vec3
}

var coursePads = []springPad{
	{mgl64.Vec3{19, 2, 16}, mgl64.Vec3{1, 1, 2}, mgl64.Vec3{-250, 0, 0}},
	{mgl64.Vec3{-19, 4, 10}, mgl64.Vec3{1, 1, 2}, mgl64.Vec3{300, 0, 0}},
	{mgl64.Vec3{15, 4, 11}, mgl64.Vec3{3, 1, 1}, mgl64.Vec3{0, 0, -300}},
}

var courseCoins = []mgl64.Vec3{
	{-12, 4, 16},
	{10, 4, 9},
	{-14, 4, 9},
}

// buildCourse lays out the obstacle course. Count is ignored.
func buildCourse(s *Scene, _ Params) {
	b := newBuilder()
	for _, blk := range courseLayout() {
		s.add(b.cube(blk.tag, blk.pos, blk.half, blk.rot, 0))
	}

	for _, pad := range coursePads {
		e := s.add(b.cube(TagSpring, pad.pos, pad.half, mgl64.QuatIdent(), 1))
		s.Rules.Spring(e, pad.force)
		s.Rules.Spawn(e)
	}

	for _, pos := range courseCoins {
		coin := b.sphere(TagCoin, pos, 1, 0)
		coin.SetTrigger(true)
		s.Rules.Watch(s.add(coin))
	}

	log := s.add(b.capsule(TagLog, mgl64.Vec3{0, 20, 0}, 2, 0.4, euler(0, 90), 0.001))
	s.Rules.Spawn(log)

	ball := s.add(b.sphere(TagPlayer, mgl64.Vec3{16, 2, 16}, 0.5, 1))
	s.Rules.Spawn(ball)
	s.Focus = ball
}
