package dynamo

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/shape"
)

var nextEntityID atomic.Uint64

// Entity is anything placed in the world. Entities without a body or a
// volume are valid and are skipped by the passes that need them.
type Entity struct {
	id   uint64
	Name string
	// Tag is free-form gameplay data; the physics core never reads it.
	Tag string

	transform Transform
	body      *RigidBody
	volume    shape.Volume
	hasVolume bool
	trigger   bool

	broadphaseAABB mgl64.Vec3
	listener       CollisionListener
}

// NewEntity creates an entity with a process-unique, increasing ID.
func NewEntity(name string) *Entity {
	return &Entity{
		id:        nextEntityID.Add(1),
		Name:      name,
		transform: NewTransform(),
	}
}

// ID gives entities a total order used to canonicalize collision pairs.
func (e *Entity) ID() uint64 { return e.id }

func (e *Entity) Transform() *Transform { return &e.transform }

// Body is nil for non-physical entities.
func (e *Entity) Body() *RigidBody { return e.body }

// AttachBody gives the entity a rigid body. When a volume is already set the
// inertia is initialised from it.
func (e *Entity) AttachBody(inverseMass float64) *RigidBody {
	e.body = NewRigidBody(&e.transform, inverseMass)
	if e.hasVolume {
		e.body.InitInertia(e.volume)
	}
	return e.body
}

func (e *Entity) DetachBody() { e.body = nil }

func (e *Entity) Volume() (shape.Volume, bool) { return e.volume, e.hasVolume }

// SetVolume replaces the volume and, when a body is attached, its inertia.
func (e *Entity) SetVolume(v shape.Volume) {
	e.volume = v
	e.hasVolume = true
	if e.body != nil {
		e.body.InitInertia(v)
	}
}

// SetTrigger marks the entity as a trigger. Trigger contacts are reported to
// listeners but never resolved, so nothing is pushed by them.
func (e *Entity) SetTrigger(on bool) { e.trigger = on }
func (e *Entity) Trigger() bool      { return e.trigger }

func (e *Entity) ClearVolume() {
	e.volume = shape.Volume{}
	e.hasVolume = false
}

// UpdateBroadphaseAABB caches the world-axis half extents of the volume at
// the current orientation.
func (e *Entity) UpdateBroadphaseAABB() {
	if !e.hasVolume {
		return
	}
	e.broadphaseAABB = e.volume.BroadphaseExtents(e.transform.Orientation())
}

// BroadphaseAABB reports false when the entity has no volume.
func (e *Entity) BroadphaseAABB() (mgl64.Vec3, bool) {
	if !e.hasVolume {
		return mgl64.Vec3{}, false
	}
	return e.broadphaseAABB, true
}

func (e *Entity) SetListener(l CollisionListener) { e.listener = l }
func (e *Entity) Listener() CollisionListener     { return e.listener }

// OnCollisionBegin notifies the entity's listener that other started touching it.
func (e *Entity) OnCollisionBegin(other *Entity) {
	if e.listener != nil {
		e.listener.OnCollisionBegin(e, other)
	}
}

// OnCollisionEnd notifies the entity's listener that other stopped touching it.
func (e *Entity) OnCollisionEnd(other *Entity) {
	if e.listener != nil {
		e.listener.OnCollisionEnd(e, other)
	}
}

// IsValid reports whether the kinematic state is finite.
func (e *Entity) IsValid() bool {
	if !finite(e.transform.position[:]...) || !finite(e.transform.orientation.V[:]...) ||
		!finite(e.transform.orientation.W) {
		return false
	}
	if e.body == nil {
		return true
	}
	return finite(e.body.linearVelocity[:]...) && finite(e.body.angularVelocity[:]...)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
