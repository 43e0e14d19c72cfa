package analysis

import (
	"math"
	"math/cmplx"
)

// FFT is a radix-2 transform. len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		out := make([]complex128, n)
		for i := range data {
			out[i] = complex(data[i], 0)
		}
		return out
	}
	if n&(n-1) != 0 {
		panic("analysis: fft length must be a power of two")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}
	fe, fo := FFT(even), FFT(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n))) * fo[k]
		out[k] = fe[k] + w
		out[k+n/2] = fe[k] - w
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the transform of
// series after removing its mean and zero-padding it to a power of two.
func PowerSpectrum(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	n := 1
	for n < len(series) {
		n <<= 1
	}
	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	padded := make([]float64, n)
	for i, v := range series {
		padded[i] = v - mean
	}

	f := FFT(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-zero frequency in Hz of a
// series sampled every interval seconds, or 0 when there is none.
func DominantFrequency(series []float64, interval float64) float64 {
	ps := PowerSpectrum(series)
	if len(ps) < 2 || interval <= 0 {
		return 0
	}
	best, idx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > best {
			best, idx = ps[i], i
		}
	}
	if idx == 0 {
		return 0
	}
	return float64(idx) / (float64(2*len(ps)) * interval)
}
