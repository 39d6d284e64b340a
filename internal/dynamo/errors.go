package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a body whose position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrUnknownScene indicates a scene name with no registered builder.
	ErrUnknownScene = errors.New("dynamo: unknown scene")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Frame   int
	Time    float64
	Entity  string
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
	}
	return fmt.Sprintf("frame %d (t=%.4f) entity %q: %v", e.Frame, e.Time, e.Entity, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
