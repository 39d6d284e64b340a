package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Bin is one frequency of a power spectrum.
type Bin struct {
	Freq  float64
	Power float64
}

// Spectrum returns the one-sided power spectrum of samples taken at
// sampleRate. The mean is removed first, so bin 0 only holds leftover
// drift.
func Spectrum(samples []float64, sampleRate float64) []Bin {
	n := len(samples)
	if n < 2 || sampleRate <= 0 {
		return nil
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)
	centred := make([]float64, n)
	for i, v := range samples {
		centred[i] = v - mean
	}

	spectrum := fft.FFTReal(centred)
	bins := make([]Bin, n/2+1)
	for i := range bins {
		mag := cmplx.Abs(spectrum[i]) / float64(n)
		bins[i] = Bin{Freq: float64(i) * sampleRate / float64(n), Power: mag * mag}
	}
	return bins
}

// DominantFrequency returns the strongest bin above zero hertz. A flat
// signal reports zero power.
func DominantFrequency(samples []float64, sampleRate float64) Bin {
	var best Bin
	for _, b := range Spectrum(samples, sampleRate) {
		if b.Freq > 0 && b.Power > best.Power {
			best = b
		}
	}
	return best
}

// SettleTime is the time of the first sample after which the signal stays
// within tol of its last value, or -1 if it is still moving at the end.
func SettleTime(times, samples []float64, tol float64) float64 {
	n := len(samples)
	if n == 0 || len(times) != n {
		return -1
	}
	final := samples[n-1]
	i := n - 1
	for i > 0 && math.Abs(samples[i-1]-final) <= tol {
		i--
	}
	if i == n-1 && n > 1 {
		return -1
	}
	return times[i]
}
