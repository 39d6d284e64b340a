package viz

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/sim"
)

const (
	plotWidth  = 80
	plotHeight = 10
	// MaxBodyPlots caps how many per-body height plots PlotRun draws.
	MaxBodyPlots = 4
)

// Plot renders one series with a caption. Series shorter than two samples
// render as an empty string.
func Plot(data []float64, caption string) string {
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

func ints(vs []int) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

// Heights extracts the Y coordinate of body i from every sampled frame.
func Heights(res *sim.Result, i int) []float64 {
	out := make([]float64, 0, len(res.Positions))
	for _, frame := range res.Positions {
		if i < len(frame) {
			out = append(out, frame[i].Y())
		}
	}
	return out
}

// PlotRun writes the step rate, contact count and the height of the first
// few tracked bodies.
func PlotRun(w io.Writer, res *sim.Result) error {
	if res.Frames < 2 {
		return fmt.Errorf("no data to plot: %d frames", res.Frames)
	}
	graphs := []string{
		Plot(ints(res.Hz), "step rate (Hz)"),
		Plot(ints(res.Contacts), "persistent contacts"),
	}
	for i, name := range res.Bodies {
		if i == MaxBodyPlots {
			break
		}
		graphs = append(graphs, Plot(Heights(res, i), name+" height"))
	}
	for _, g := range graphs {
		if _, err := fmt.Fprintf(w, "%s\n\n", g); err != nil {
			return err
		}
	}
	return nil
}
