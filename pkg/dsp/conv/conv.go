// Package conv implements linear convolution of complex sample sequences.
//
// Same is the mode used by the band filters: the full convolution is centred
// and truncated to the signal's length, so the first and last len(kernel)/2
// outputs see a partially overlapping kernel.
package conv

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fftThreshold is the N·K product above which Same and Full switch from the
// direct sum to fast convolution.
const fftThreshold = 1 << 16

// Full returns the full linear convolution, len(signal)+len(kernel)-1 long.
func Full(signal, kernel []complex128) []complex128 {
	if len(signal) == 0 || len(kernel) == 0 {
		return []complex128{}
	}
	if len(signal)*len(kernel) > fftThreshold {
		return FFT(signal, kernel)
	}
	return Direct(signal, kernel)
}

// Same returns len(signal) samples of the full convolution starting at offset
// (len(kernel)-1)/2. The kernel may be longer than the signal.
func Same(signal, kernel []complex128) []complex128 {
	if len(signal) == 0 || len(kernel) == 0 {
		return []complex128{}
	}

	offset := (len(kernel) - 1) / 2
	if len(signal)*len(kernel) > fftThreshold {
		full := FFT(signal, kernel)
		ret := make([]complex128, len(signal))
		copy(ret, full[offset:offset+len(signal)])
		return ret
	}

	ret := make([]complex128, len(signal))
	for i := range ret {
		n := i + offset
		// kernel index k pairs with signal index n-k
		kmin := n - (len(signal) - 1)
		if kmin < 0 {
			kmin = 0
		}
		kmax := n
		if kmax > len(kernel)-1 {
			kmax = len(kernel) - 1
		}
		var acc complex128
		for k := kmin; k <= kmax; k++ {
			acc += kernel[k] * signal[n-k]
		}
		ret[i] = acc
	}
	return ret
}

// SameReal is Same with real taps.
func SameReal(signal []complex128, kernel []float64) []complex128 {
	ckernel := make([]complex128, len(kernel))
	for i, tap := range kernel {
		ckernel[i] = complex(tap, 0)
	}
	return Same(signal, ckernel)
}

// Direct is the O(N·K) time-domain full convolution.
func Direct(signal, kernel []complex128) []complex128 {
	if len(signal) == 0 || len(kernel) == 0 {
		return []complex128{}
	}

	ret := make([]complex128, len(signal)+len(kernel)-1)
	for i, s := range signal {
		for k, tap := range kernel {
			ret[i+k] += s * tap
		}
	}
	return ret
}

// FFT computes the full convolution by zero-padding both inputs to a power
// of two and multiplying their spectra.
func FFT(signal, kernel []complex128) []complex128 {
	if len(signal) == 0 || len(kernel) == 0 {
		return []complex128{}
	}

	outLen := len(signal) + len(kernel) - 1
	size := nextPow2(outLen)

	f := fourier.NewCmplxFFT(size)

	a := make([]complex128, size)
	copy(a, signal)
	b := make([]complex128, size)
	copy(b, kernel)

	ca := f.Coefficients(nil, a)
	cb := f.Coefficients(nil, b)
	for i := range ca {
		ca[i] *= cb[i]
	}

	// the inverse transform is unnormalised
	seq := f.Sequence(nil, ca)
	scale := complex(1/float64(size), 0)

	ret := make([]complex128, outLen)
	for i := range ret {
		ret[i] = seq[i] * scale
	}
	return ret
}

func nextPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}
