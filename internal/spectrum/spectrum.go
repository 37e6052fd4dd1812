package spectrum

import "math"

// Spectrum holds the magnitudes of the lower bins of one windowed transform.
type Spectrum []float64

// Max returns the largest magnitude, or 0 for an empty spectrum.
func (s Spectrum) Max() float64 {
	m := 0.0
	for _, v := range s {
		if v > m {
			m = v
		}
	}
	return m
}

// Len returns min(windowSize/2, maxBars) for cfg.
func Len(cfg Config) int {
	return min(cfg.WindowSize/2, cfg.MaxBars)
}

// Compute windows samples[start:start+cfg.WindowSize] with a Hann window,
// zero-padding past the end of samples, and returns the magnitudes of the
// first Len(cfg) bins.
func Compute(samples []float64, start int, cfg Config) Spectrum {
	n := cfg.WindowSize
	buf := make([]complex128, n)
	for i := 0; i < n; i++ {
		idx := start + i
		if idx >= 0 && idx < len(samples) {
			buf[i] = complex(samples[idx]*Hann(i, n), 0)
		}
	}

	FFT(buf)

	out := make(Spectrum, Len(cfg))
	for i := range out {
		re, im := real(buf[i]), imag(buf[i])
		out[i] = math.Sqrt(re*re + im*im)
	}
	return out
}

// BinFrequency returns the center frequency in Hz of bin i.
func BinFrequency(i, windowSize, sampleRate int) float64 {
	if windowSize <= 0 {
		return 0
	}
	return float64(i) * float64(sampleRate) / float64(windowSize)
}
