package sim

import (
	"context"
	"fmt"
	"sync"
)

// Factory builds an independent simulator, with its own world, for one
// ensemble member.
type Factory func(seed int64) (*Simulator, error)

// Ensemble runs several independent worlds concurrently, one goroutine per
// world. Nothing is shared between members.
type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			s, err := e.build(seed)
			if err != nil {
				errs[idx] = fmt.Errorf("build world %d: %w", seed, err)
				return
			}
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
