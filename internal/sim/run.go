package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

func (c Config) validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrParameterBounds, c.Duration)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive, got %f", dynamo.ErrParameterBounds, c.FrameRate)
	}
	return nil
}

// Run drives Update at a fixed frame rate for the configured duration and
// samples every movable body after each frame. When ValidateState is set the
// run stops at the first non-finite entity and records a SimulationError.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	frames := int(math.Round(cfg.Duration * cfg.FrameRate))
	frameDt := 1 / cfg.FrameRate

	var tracked []*dynamo.Entity
	for _, e := range s.world.Entities() {
		if b := e.Body(); b != nil && b.IsMovable() {
			tracked = append(tracked, e)
		}
	}

	result := &Result{
		Bodies:     make([]string, len(tracked)),
		Times:      make([]float64, 0, frames),
		Hz:         make([]int, 0, frames),
		SubSteps:   make([]int, 0, frames),
		Contacts:   make([]int, 0, frames),
		Detections: make([]int, 0, frames),
		Positions:  make([][]mgl64.Vec3, 0, frames),
		Metrics:    make(map[string]float64),
	}
	for i, e := range tracked {
		result.Bodies[i] = e.Name
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	// the last frame is captured through an observer so Run sees exactly
	// what metrics see
	var last Frame
	capture := ObserverFunc(func(f Frame) { last = f })
	s.observers = append(s.observers, capture)
	defer func() { s.observers = s.observers[:len(s.observers)-1] }()

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		s.Update(frameDt)

		result.Times = append(result.Times, last.Time)
		result.Hz = append(result.Hz, last.Hz)
		result.SubSteps = append(result.SubSteps, last.SubSteps)
		result.Contacts = append(result.Contacts, last.Contacts)
		result.Detections = append(result.Detections, last.Detections)
		positions := make([]mgl64.Vec3, len(tracked))
		for j, e := range tracked {
			positions[j] = e.Transform().Position()
		}
		result.Positions = append(result.Positions, positions)
		result.Frames++

		if cfg.ValidateState {
			if bad := firstInvalid(s.world.Entities()); bad != nil {
				result.Errors = append(result.Errors, &dynamo.SimulationError{
					Frame:   last.Index,
					Time:    last.Time,
					Entity:  bad.Name,
					Wrapped: dynamo.ErrInvalidState,
				})
				break
			}
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func firstInvalid(entities []*dynamo.Entity) *dynamo.Entity {
	for _, e := range entities {
		if !e.IsValid() {
			return e
		}
	}
	return nil
}
