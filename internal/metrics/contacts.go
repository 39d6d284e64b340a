package metrics

import "github.com/san-kum/rigidsim/internal/sim"

// Contacts averages the number of persistent contacts per frame.
type Contacts struct {
	name    string
	sum     int
	samples int
}

func NewContacts() *Contacts {
	return &Contacts{name: "contacts"}
}

func (c *Contacts) Name() string { return c.name }

func (c *Contacts) Observe(f sim.Frame) {
	c.sum += f.Contacts
	c.samples++
}

func (c *Contacts) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *Contacts) Reset() {
	c.sum = 0
	c.samples = 0
}

// StepRate tracks the lowest sub-step rate the scheduler fell to.
type StepRate struct {
	name   string
	lowest int
}

func NewStepRate() *StepRate {
	return &StepRate{name: "min_step_rate"}
}

func (s *StepRate) Name() string { return s.name }

func (s *StepRate) Observe(f sim.Frame) {
	if s.lowest == 0 || f.Hz < s.lowest {
		s.lowest = f.Hz
	}
}

func (s *StepRate) Value() float64 { return float64(s.lowest) }

func (s *StepRate) Reset() { s.lowest = 0 }
