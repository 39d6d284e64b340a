package dynamo

import "github.com/go-gl/mathgl/mgl64"

// Transform places an entity in world space. The orientation is kept at
// unit length by every setter.
type Transform struct {
	position    mgl64.Vec3
	orientation mgl64.Quat
	scale       mgl64.Vec3
}

func NewTransform() Transform {
	return Transform{
		orientation: mgl64.QuatIdent(),
		scale:       mgl64.Vec3{1, 1, 1},
	}
}

func (t *Transform) Position() mgl64.Vec3    { return t.position }
func (t *Transform) Orientation() mgl64.Quat { return t.orientation }
func (t *Transform) Scale() mgl64.Vec3       { return t.scale }

func (t *Transform) SetPosition(p mgl64.Vec3) { t.position = p }
func (t *Transform) SetScale(s mgl64.Vec3)    { t.scale = s }

// SetOrientation stores q normalized; a zero quaternion resets to identity.
func (t *Transform) SetOrientation(q mgl64.Quat) {
	if q.Len() == 0 {
		t.orientation = mgl64.QuatIdent()
		return
	}
	t.orientation = q.Normalize()
}

// Rotation returns the orientation as a rotation matrix.
func (t *Transform) Rotation() mgl64.Mat3 {
	return t.orientation.Mat4().Mat3()
}

// ToWorld maps a point from local space into world space, ignoring scale.
func (t *Transform) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return t.position.Add(t.orientation.Rotate(local))
}

// ToLocal maps a world-space point into local space, ignoring scale.
func (t *Transform) ToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return t.orientation.Conjugate().Rotate(world.Sub(t.position))
}
