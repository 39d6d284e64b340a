package sim

import (
	"fmt"
	"log"
	"time"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

const (
	DefaultIdealHz = 120
	DefaultMinHz   = 1
)

// Scheduler turns variable frame times into fixed physics sub-steps and
// adapts the step rate to the measured cost. The rate only ever moves by
// halving or doubling between MinHz and IdealHz, so the step size stays
// positive and bounded.
type Scheduler struct {
	idealHz     int
	minHz       int
	hz          int
	accumulator float64
}

func NewScheduler(idealHz, minHz int) (*Scheduler, error) {
	if idealHz < 1 {
		return nil, fmt.Errorf("%w: ideal rate %d Hz must be at least 1", dynamo.ErrParameterBounds, idealHz)
	}
	if minHz < 1 || minHz > idealHz {
		return nil, fmt.Errorf("%w: minimum rate %d Hz must be within [1, %d]", dynamo.ErrParameterBounds, minHz, idealHz)
	}
	return &Scheduler{idealHz: idealHz, minHz: minHz, hz: idealHz}, nil
}

func (s *Scheduler) Hz() int          { return s.hz }
func (s *Scheduler) IdealHz() int     { return s.idealHz }
func (s *Scheduler) MinHz() int       { return s.minHz }
func (s *Scheduler) StepDt() float64  { return 1 / float64(s.hz) }
func (s *Scheduler) Pending() float64 { return s.accumulator }

// Accumulate adds elapsed frame time. Non-positive values are ignored.
func (s *Scheduler) Accumulate(frameDt float64) {
	if frameDt > 0 {
		s.accumulator += frameDt
	}
}

// Drain calls step once per whole step held in the accumulator and keeps the
// remainder for the next frame.
func (s *Scheduler) Drain(step func(dt float64)) int {
	dt := s.StepDt()
	n := 0
	for s.accumulator >= dt {
		step(dt)
		s.accumulator -= dt
		n++
	}
	return n
}

// Adjust halves the rate when the last frame's physics cost more than one
// step, and doubles it back towards IdealHz when frames arrive faster than
// half a step.
func (s *Scheduler) Adjust(frameDt float64, cost time.Duration) int {
	prev := s.hz
	switch {
	case cost.Seconds() > s.StepDt():
		s.hz = max(s.hz/2, s.minHz)
		if s.hz != prev {
			log.Printf("dropping step rate due to long physics time (now %d Hz)", s.hz)
		}
	case frameDt*2 < s.StepDt():
		s.hz = min(s.hz*2, s.idealHz)
		if s.hz != prev {
			log.Printf("raising step rate due to short physics time (now %d Hz)", s.hz)
		}
	}
	return s.hz
}

// Reset drops accumulated time. The current rate is kept.
func (s *Scheduler) Reset() {
	s.accumulator = 0
}
