package analysis

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/sim"
)

func sine(freq, rate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 2 + math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"5 Hz", sine(5, 60, 120), 5},
		{"12 Hz", sine(12, 60, 60), 12},
		{"flat", []float64{3, 3, 3, 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DominantFrequency(tt.samples, 60)
			if math.Abs(got.Freq-tt.want) > 1e-9 {
				t.Errorf("Freq = %v, want %v", got.Freq, tt.want)
			}
		})
	}

	if Spectrum([]float64{1}, 60) != nil {
		t.Error("single sample produced a spectrum")
	}
	if bins := Spectrum(sine(5, 60, 120), 60); len(bins) != 61 || bins[0].Power > 1e-20 {
		t.Errorf("%d bins, DC power %v", len(bins), bins[0].Power)
	}
}

func TestSettleTime(t *testing.T) {
	times := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"settles", []float64{5, 3, 1, 1.005, 1}, 3},
		{"still", []float64{1, 1, 1, 1, 1}, 1},
		{"moving", []float64{1, 2, 3, 4, 5}, -1},
		{"leaves band", []float64{1, 1, 4, 1, 1}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SettleTime(times, tt.samples, 0.01); got != tt.want {
				t.Errorf("SettleTime = %v, want %v", got, tt.want)
			}
		})
	}
	if SettleTime(times, []float64{1}, 0.01) != -1 {
		t.Error("mismatched lengths accepted")
	}
}

func TestBodies(t *testing.T) {
	res := &sim.Result{
		Bodies: []string{"ball"},
		Positions: [][]mgl64.Vec3{
			{{0, 3, 0}}, {{0, 1, 0}}, {{0, 0.5, 0}}, {{0, 0.5, 0}},
		},
		Frames: 4,
	}
	reports, err := Bodies(res, 2, DefaultSettleTolerance)
	if err != nil {
		t.Fatalf("Bodies: %v", err)
	}
	if len(reports) != 1 || reports[0].Name != "ball" {
		t.Fatalf("reports = %+v", reports)
	}
	// no recorded times: frame i sits at (i+1)/rate
	if reports[0].Settle != 1.5 {
		t.Errorf("Settle = %v, want 1.5", reports[0].Settle)
	}

	if _, err := Bodies(&sim.Result{Frames: 1}, 60, 0.01); err == nil {
		t.Error("single frame accepted")
	}
}
