package dynamo

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/shape"
)

// DefaultElasticity is the restitution coefficient of a freshly attached body.
const DefaultElasticity = 0.8

// RigidBody holds the dynamic state of an entity. An inverse mass of zero
// marks the body immovable.
type RigidBody struct {
	transform *Transform

	inverseMass float64
	elasticity  float64

	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3

	force  mgl64.Vec3
	torque mgl64.Vec3

	// local-space diagonal of the inverse inertia tensor
	inverseInertia       mgl64.Vec3
	inverseInertiaTensor mgl64.Mat3
}

// NewRigidBody binds a body to the transform it moves.
func NewRigidBody(t *Transform, inverseMass float64) *RigidBody {
	if inverseMass < 0 {
		inverseMass = 0
	}
	return &RigidBody{
		transform:   t,
		inverseMass: inverseMass,
		elasticity:  DefaultElasticity,
	}
}

func (b *RigidBody) InverseMass() float64 { return b.inverseMass }

func (b *RigidBody) SetInverseMass(m float64) {
	if m < 0 {
		m = 0
	}
	b.inverseMass = m
}

// IsMovable reports whether forces and impulses can move the body.
func (b *RigidBody) IsMovable() bool { return b.inverseMass > 0 }

func (b *RigidBody) Elasticity() float64     { return b.elasticity }
func (b *RigidBody) SetElasticity(e float64) { b.elasticity = e }

func (b *RigidBody) LinearVelocity() mgl64.Vec3     { return b.linearVelocity }
func (b *RigidBody) AngularVelocity() mgl64.Vec3    { return b.angularVelocity }
func (b *RigidBody) SetLinearVelocity(v mgl64.Vec3)  { b.linearVelocity = v }
func (b *RigidBody) SetAngularVelocity(v mgl64.Vec3) { b.angularVelocity = v }

func (b *RigidBody) Force() mgl64.Vec3  { return b.force }
func (b *RigidBody) Torque() mgl64.Vec3 { return b.torque }

func (b *RigidBody) AddForce(f mgl64.Vec3)  { b.force = b.force.Add(f) }
func (b *RigidBody) AddTorque(t mgl64.Vec3) { b.torque = b.torque.Add(t) }

// AddForceAtPosition applies a world-space force at a world-space point,
// producing torque about the centre of mass.
func (b *RigidBody) AddForceAtPosition(f, position mgl64.Vec3) {
	lever := position.Sub(b.transform.Position())
	b.force = b.force.Add(f)
	b.torque = b.torque.Add(lever.Cross(f))
}

func (b *RigidBody) ClearForces() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

func (b *RigidBody) ApplyLinearImpulse(j mgl64.Vec3) {
	b.linearVelocity = b.linearVelocity.Add(j.Mul(b.inverseMass))
}

func (b *RigidBody) ApplyAngularImpulse(j mgl64.Vec3) {
	b.angularVelocity = b.angularVelocity.Add(b.inverseInertiaTensor.Mul3x1(j))
}

// InverseInertiaTensor is the world-space tensor from the last
// UpdateInertiaTensor call.
func (b *RigidBody) InverseInertiaTensor() mgl64.Mat3 { return b.inverseInertiaTensor }

// UpdateInertiaTensor rotates the local inverse inertia into world space
// using the current orientation.
func (b *RigidBody) UpdateInertiaTensor() {
	r := b.transform.Rotation()
	b.inverseInertiaTensor = r.Mul3(mgl64.Diag3(b.inverseInertia)).Mul3(r.Transpose())
}

// InitSphereInertia sets the inertia of a solid sphere.
func (b *RigidBody) InitSphereInertia(radius float64) {
	if radius == 0 {
		b.inverseInertia = mgl64.Vec3{}
	} else {
		i := 2.5 * b.inverseMass / (radius * radius)
		b.inverseInertia = mgl64.Vec3{i, i, i}
	}
	b.UpdateInertiaTensor()
}

// InitCubeInertia sets the inertia of a solid cuboid with the given half extents.
func (b *RigidBody) InitCubeInertia(halfExtents mgl64.Vec3) {
	d := halfExtents.Mul(2)
	dsq := mgl64.Vec3{d[0] * d[0], d[1] * d[1], d[2] * d[2]}
	b.inverseInertia = mgl64.Vec3{
		cubeTerm(b.inverseMass, dsq[1]+dsq[2]),
		cubeTerm(b.inverseMass, dsq[0]+dsq[2]),
		cubeTerm(b.inverseMass, dsq[0]+dsq[1]),
	}
	b.UpdateInertiaTensor()
}

// InitInertia picks the sphere or cuboid model matching the volume.
func (b *RigidBody) InitInertia(v shape.Volume) {
	if v.Kind() == shape.Sphere {
		b.InitSphereInertia(v.Radius())
		return
	}
	b.InitCubeInertia(v.InertiaExtents())
}

func cubeTerm(inverseMass, dsq float64) float64 {
	if dsq == 0 {
		return 0
	}
	return 12 * inverseMass / dsq
}
