// Package spectrum turns sample sequences into power spectra for inspection
// and plotting.
package spectrum

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/norasector/dsped/pkg/dsp"
	"gonum.org/v1/gonum/floats"
)

// floorDB keeps log10 finite for empty bins.
const floorDB = -300.0

// Freqs is the centred frequency axis for n bins at sampleRateHz:
// -Fs/2 … Fs/2 - Fs/n for even n.
func Freqs(n int, sampleRateHz float64) []float64 {
	ret := make([]float64, n)
	half := n / 2
	for j := range ret {
		ret[j] = float64(j-half) * sampleRateHz / float64(n)
	}
	return ret
}

// Shift moves the zero-frequency bin to the middle, like fftshift.
func Shift(x []float64) []float64 {
	n := len(x)
	ret := make([]float64, n)
	half := n / 2
	for j := range ret {
		ret[j] = x[(j-half+n)%n]
	}
	return ret
}

// Power returns the centred frequency axis and linear per-bin power
// |X[k]|²/N². The bins sum to the mean squared magnitude of samples.
func Power(samples []complex128, sampleRateHz float64) (freqs, power []float64, err error) {
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("spectrum of no samples: %w", dsp.ErrInvalidParameter)
	}
	if !(sampleRateHz > 0) {
		return nil, nil, fmt.Errorf("sample rate must be > 0, got %v: %w", sampleRateHz, dsp.ErrInvalidParameter)
	}

	coeffs := fft.FFT(samples)
	n := float64(len(samples))
	raw := make([]float64, len(coeffs))
	for k, c := range coeffs {
		raw[k] = (real(c)*real(c) + imag(c)*imag(c)) / (n * n)
	}

	return Freqs(len(samples), sampleRateHz), Shift(raw), nil
}

// PSD is the power spectral density |X[k]|²/(N·Fs) in dB on the centred
// frequency axis.
func PSD(samples []complex128, sampleRateHz float64) (freqs, psdDB []float64, err error) {
	freqs, power, err := Power(samples, sampleRateHz)
	if err != nil {
		return nil, nil, err
	}

	// |X|²/(N·Fs) = power·N/Fs
	scale := float64(len(samples)) / sampleRateHz
	psdDB = make([]float64, len(power))
	for i, p := range power {
		psdDB[i] = DB(p * scale)
	}
	return freqs, psdDB, nil
}

// DB converts a linear power ratio to decibels.
func DB(p float64) float64 {
	if p <= 0 {
		return floorDB
	}
	return math.Max(10*math.Log10(p), floorDB)
}

// Peak returns the frequency of the strongest bin.
func Peak(freqs, power []float64) (freq, value float64) {
	if len(power) == 0 {
		return math.NaN(), math.NaN()
	}
	idx := floats.MaxIdx(power)
	return freqs[idx], power[idx]
}

// BandPower sums linear power over bins inside [low, high], or outside it
// when inside is false.
func BandPower(freqs, power []float64, low, high float64, inside bool) float64 {
	var sum float64
	for i, f := range freqs {
		if (f >= low && f <= high) == inside {
			sum += power[i]
		}
	}
	return sum
}

// MeanPower is the average squared magnitude.
func MeanPower(samples []complex128) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += real(s)*real(s) + imag(s)*imag(s)
	}
	return sum / float64(len(samples))
}
