package solver

import (
	"log"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

const DefaultIterations = 10

// ConstraintSolver relaxes every constraint several times per sub-step, each
// pass using an equal share of the step.
type ConstraintSolver struct {
	iterations int
}

func NewConstraintSolver(iterations int) *ConstraintSolver {
	return &ConstraintSolver{iterations: clampIterations(iterations)}
}

func (s *ConstraintSolver) Iterations() int { return s.iterations }

// SetIterations changes the pass count. Values below one are raised to one.
func (s *ConstraintSolver) SetIterations(n int) int {
	n = clampIterations(n)
	if n != s.iterations {
		log.Printf("constraint iteration count is %d", n)
	}
	s.iterations = n
	return n
}

// Solve runs the configured number of passes over constraints.
func (s *ConstraintSolver) Solve(constraints []dynamo.Constraint, dt float64) {
	if len(constraints) == 0 {
		return
	}
	iterDt := dt / float64(s.iterations)
	for i := 0; i < s.iterations; i++ {
		for _, c := range constraints {
			c.UpdateConstraint(iterDt)
		}
	}
}

func clampIterations(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
