// Package resample changes the sample rate of finite sequences.
package resample

import (
	"fmt"
	"math"

	"github.com/norasector/dsped/pkg/dsp"
	"github.com/norasector/dsped/pkg/dsp/conv"
	"github.com/norasector/dsped/pkg/dsp/filters/fir"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// DecimateCutoff is the anti-alias cutoff as a fraction of the output Nyquist.
const DecimateCutoff = 0.8

// Decimate lowpasses samples below the new Nyquist and keeps every factor-th
// sample. The output rate is sampleRateHz/factor.
func Decimate(samples []complex128, sampleRateHz float64, factor, taps int, win fir.WindowType) ([]complex128, error) {
	if factor < 1 {
		return nil, fmt.Errorf("decimation factor must be >= 1, got %d: %w", factor, dsp.ErrInvalidParameter)
	}
	if factor == 1 {
		return append([]complex128{}, samples...), nil
	}

	cutoff := DecimateCutoff * sampleRateHz / (2 * float64(factor))
	lp, err := fir.LowPass(taps, cutoff, sampleRateHz, win)
	if err != nil {
		return nil, fmt.Errorf("decimation filter: %w", err)
	}

	filtered := conv.SameReal(samples, lp)
	ret := make([]complex128, 0, (len(filtered)+factor-1)/factor)
	for i := 0; i < len(filtered); i += factor {
		ret = append(ret, filtered[i])
	}
	return ret, nil
}

// FFT resamples a real sequence to num samples by truncating or zero-padding
// its spectrum. The signal is treated as periodic.
func FFT(x []float64, num int) ([]float64, error) {
	if len(x) == 0 || num < 1 {
		return nil, fmt.Errorf("resample %d samples to %d: %w", len(x), num, dsp.ErrInvalidParameter)
	}

	n := len(x)
	in := fourier.NewFFT(n)
	coeffs := in.Coefficients(nil, x)

	out := fourier.NewFFT(num)
	newCoeffs := make([]complex128, num/2+1)
	keep := len(coeffs)
	if len(newCoeffs) < keep {
		keep = len(newCoeffs)
	}
	copy(newCoeffs, coeffs[:keep])

	// when shortening, the +num/2 and -num/2 input components both fold
	// onto the new Nyquist bin; when lengthening, the old Nyquist bin is
	// split between them
	if num%2 == 0 && num < n {
		newCoeffs[num/2] = complex(2*real(newCoeffs[num/2]), 0)
	}
	if n%2 == 0 && num > n {
		newCoeffs[n/2] /= 2
	}

	// the inverse transform is unnormalised
	seq := out.Sequence(nil, newCoeffs)
	floats.Scale(1/float64(n), seq)
	return seq, nil
}

// ScalePeak scales x so its largest magnitude equals peak.
func ScalePeak(x []float64, peak float64) []float64 {
	ret := append([]float64{}, x...)
	if len(ret) == 0 {
		return ret
	}

	max := math.Max(floats.Max(ret), -floats.Min(ret))
	if max == 0 {
		return ret
	}
	floats.Scale(peak/max, ret)
	return ret
}

// OutputLength is the sample count at outRate for n samples at inRate,
// rounded up.
func OutputLength(n int, inRate, outRate float64) int {
	return int(math.Ceil(float64(n) * outRate / inRate))
}
