package metrics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/sim"
)

// Stability is the fraction of frames in which every body held a finite
// state and stayed under the speed threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f sim.Frame) {
	s.samples++
	for _, e := range f.Entities {
		if !e.IsValid() {
			s.violations++
			return
		}
		if b := e.Body(); b != nil && b.LinearVelocity().Len() > s.threshold {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Standard returns the metric set attached to headless runs.
func Standard(gravity mgl64.Vec3) []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyDrift(gravity),
		NewContacts(),
		NewStepRate(),
		NewStability(100),
	}
}
