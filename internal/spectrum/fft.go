package spectrum

import (
	"math"
	"math/cmplx"
)

// FFT performs a recursive radix-2 Cooley-Tukey transform of x in place.
// len(x) must be a power of two; callers validate sizes before getting here.
func FFT(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}

	half := n / 2
	even := make([]complex128, half)
	odd := make([]complex128, half)
	for i := 0; i < half; i++ {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}

	FFT(even)
	FFT(odd)

	for k := 0; k < half; k++ {
		t := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(n)) * odd[k]
		x[k] = even[k] + t
		x[k+half] = even[k] - t
	}
}

// Hann returns the Hann window weight for index i of an n-point window.
func Hann(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n-1)))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
