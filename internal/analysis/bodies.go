package analysis

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/sim"
)

// DefaultSettleTolerance is the height band, in world units, a body must
// stay inside to count as settled.
const DefaultSettleTolerance = 0.01

// BodyReport summarises one tracked body's height over a run.
type BodyReport struct {
	Name     string
	Settle   float64
	Dominant Bin
}

// Bodies reports on every tracked body of res, sampled at frameRate.
func Bodies(res *sim.Result, frameRate, tol float64) ([]BodyReport, error) {
	if res.Frames < 2 {
		return nil, fmt.Errorf("need at least 2 frames, got %d", res.Frames)
	}
	times := res.Times
	if len(times) != res.Frames {
		times = make([]float64, res.Frames)
		for i := range times {
			times[i] = float64(i+1) / frameRate
		}
	}

	reports := make([]BodyReport, len(res.Bodies))
	for b, name := range res.Bodies {
		heights := make([]float64, 0, res.Frames)
		for _, frame := range res.Positions {
			if b < len(frame) {
				heights = append(heights, frame[b].Y())
			}
		}
		reports[b] = BodyReport{
			Name:     name,
			Settle:   SettleTime(times[:len(heights)], heights, tol),
			Dominant: DominantFrequency(heights, frameRate),
		}
	}
	return reports, nil
}
