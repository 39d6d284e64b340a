package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/sim"
)

// KineticEnergy averages the total translational and rotational kinetic
// energy of the movable bodies over the observed frames.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(f sim.Frame) {
	k.total += Kinetic(f.Entities)
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *KineticEnergy) Reset() {
	k.total = 0
	k.samples = 0
}

// EnergyDrift records the largest rise of mechanical energy above its
// first observed value, relative to that value. Damping and inelastic
// contacts only remove energy, so anything above zero is solver error.
type EnergyDrift struct {
	name     string
	gravity  mgl64.Vec3
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(gravity mgl64.Vec3) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f sim.Frame) {
	energy := Kinetic(f.Entities) + Potential(f.Entities, e.gravity)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := (energy - e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// Kinetic sums ½mv² + ½ω·Iω over movable bodies.
func Kinetic(entities []*dynamo.Entity) float64 {
	total := 0.0
	for _, e := range entities {
		b := e.Body()
		if b == nil || !b.IsMovable() {
			continue
		}
		v := b.LinearVelocity()
		total += 0.5 * v.Dot(v) / b.InverseMass()

		w := b.AngularVelocity()
		if w == (mgl64.Vec3{}) {
			continue
		}
		inertia := b.InverseInertiaTensor().Inv()
		total += 0.5 * w.Dot(inertia.Mul3x1(w))
	}
	return total
}

// Potential is the gravitational energy of the movable bodies relative to
// the origin.
func Potential(entities []*dynamo.Entity, gravity mgl64.Vec3) float64 {
	total := 0.0
	for _, e := range entities {
		b := e.Body()
		if b == nil || !b.IsMovable() {
			continue
		}
		total -= gravity.Dot(e.Transform().Position()) / b.InverseMass()
	}
	return total
}

// Momentum is the total linear momentum of the movable bodies.
func Momentum(entities []*dynamo.Entity) mgl64.Vec3 {
	var p mgl64.Vec3
	for _, e := range entities {
		b := e.Body()
		if b == nil || !b.IsMovable() {
			continue
		}
		p = p.Add(b.LinearVelocity().Mul(1 / b.InverseMass()))
	}
	return p
}
