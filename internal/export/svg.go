// Package export renders runs and viewer snapshots as SVG.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/viz"
)

var strokes = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff88", "#ff8800", "#8888ff"}

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	w, h := canvas.Pixels()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	r := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct{ minX, maxX, minZ, maxZ float64 }

func pathBounds(res *sim.Result) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, frame := range res.Positions {
		for _, p := range frame {
			b.minX = math.Min(b.minX, p.X())
			b.maxX = math.Max(b.maxX, p.X())
			b.minZ = math.Min(b.minZ, p.Z())
			b.maxZ = math.Max(b.maxZ, p.Z())
		}
	}
	// pad by a tenth so paths do not touch the edge
	rx, rz := b.maxX-b.minX, b.maxZ-b.minZ
	if rx == 0 {
		rx = 1
	}
	if rz == 0 {
		rz = 1
	}
	b.minX -= rx * 0.1
	b.maxX += rx * 0.1
	b.minZ -= rz * 0.1
	b.maxZ += rz * 0.1
	return b
}

// WriteTrajectories draws the X/Z path of every tracked body as seen from
// above, one polyline per body.
func WriteTrajectories(w io.Writer, res *sim.Result, width, height int) error {
	if res.Frames < 2 || len(res.Bodies) == 0 {
		return fmt.Errorf("no trajectories: %d frames, %d bodies", res.Frames, len(res.Bodies))
	}
	b := pathBounds(res)
	rx, rz := b.maxX-b.minX, b.maxZ-b.minZ

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, name := range res.Bodies {
		fmt.Fprintf(&sb, `<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="`, name, strokes[i%len(strokes)])
		for f, frame := range res.Positions {
			if i >= len(frame) {
				break
			}
			x := (frame[i].X() - b.minX) / rx * float64(width)
			y := (frame[i].Z() - b.minZ) / rz * float64(height)
			if f == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</svg>")

	_, err := io.WriteString(w, sb.String())
	return err
}
