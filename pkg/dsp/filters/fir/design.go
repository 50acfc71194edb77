package fir

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/norasector/dsped/pkg/dsp"
)

// Design returns numTaps windowed-sinc coefficients for the bands delimited
// by cutoff (Hz, strictly increasing, inside (0, sampleRateHz/2)).
//
// With passZero the first band starts at 0 Hz: one cutoff gives a lowpass,
// two give a bandstop. Without it the first band starts at the first cutoff:
// one cutoff gives a highpass, two give a bandpass. A response that passes
// Nyquist needs an odd tap count.
//
// The result is scaled to unit gain at the centre of the first passband
// (0 Hz, Nyquist, or the middle of the band).
func Design(numTaps int, cutoff []float64, sampleRateHz float64, passZero bool, win WindowType) ([]float64, error) {
	if !(sampleRateHz > 0) || math.IsInf(sampleRateHz, 1) {
		return nil, fmt.Errorf("fir sample rate must be > 0, got %v: %w", sampleRateHz, dsp.ErrInvalidParameter)
	}
	if numTaps < 1 {
		return nil, fmt.Errorf("need at least one tap, got %d: %w", numTaps, ErrInvalidTaps)
	}
	if len(cutoff) == 0 {
		return nil, fmt.Errorf("no cutoff frequency: %w", ErrNumericDegenerate)
	}

	nyq := sampleRateHz / 2
	edges := make([]float64, 0, len(cutoff)+2)
	if passZero {
		edges = append(edges, 0)
	}
	prev := 0.0
	for _, c := range cutoff {
		if !(c > 0) || !(c < nyq) {
			return nil, fmt.Errorf("cutoff %v Hz outside (0, %v): %w", c, nyq, ErrNumericDegenerate)
		}
		if c <= prev {
			return nil, fmt.Errorf("cutoffs must be strictly increasing: %w", ErrNumericDegenerate)
		}
		prev = c
		edges = append(edges, c/nyq)
	}

	passNyquist := (len(cutoff)%2 == 1) != passZero
	if passNyquist {
		if numTaps%2 == 0 {
			return nil, fmt.Errorf("%d taps cannot pass Nyquist, use an odd count: %w", numTaps, ErrInvalidTaps)
		}
		edges = append(edges, 1)
	}

	alpha := 0.5 * float64(numTaps-1)
	h := make([]float64, numTaps)
	for b := 0; b+1 < len(edges); b += 2 {
		left, right := edges[b], edges[b+1]
		for i := range h {
			m := float64(i) - alpha
			h[i] += right*sinc(right*m) - left*sinc(left*m)
		}
	}

	w := win.Func()(numTaps)
	for i := range h {
		h[i] *= w[i]
	}

	var scaleFreq float64
	switch left, right := edges[0], edges[1]; {
	case left == 0:
		scaleFreq = 0
	case right == 1:
		scaleFreq = 1
	default:
		scaleFreq = 0.5 * (left + right)
	}

	var s float64
	for i := range h {
		s += h[i] * math.Cos(math.Pi*(float64(i)-alpha)*scaleFreq)
	}
	if s == 0 {
		return nil, fmt.Errorf("zero gain at scaling frequency: %w", ErrNumericDegenerate)
	}
	for i := range h {
		h[i] /= s
	}

	return h, nil
}

func LowPass(numTaps int, cutoffHz, sampleRateHz float64, win WindowType) ([]float64, error) {
	return Design(numTaps, []float64{cutoffHz}, sampleRateHz, true, win)
}

func HighPass(numTaps int, cutoffHz, sampleRateHz float64, win WindowType) ([]float64, error) {
	return Design(numTaps, []float64{cutoffHz}, sampleRateHz, false, win)
}

func BandPass(numTaps int, lowHz, highHz, sampleRateHz float64, win WindowType) ([]float64, error) {
	return Design(numTaps, []float64{lowHz, highHz}, sampleRateHz, false, win)
}

// Rotate modulates a real prototype onto freqHz: tap k is multiplied by
// exp(i·2π·freqHz·k/sampleRateHz).
func Rotate(taps []float64, freqHz, sampleRateHz float64) []complex128 {
	ret := make([]complex128, len(taps))
	phaseInc := 2 * math.Pi * freqHz / sampleRateHz
	for k, tap := range taps {
		sin, cos := math.Sincos(phaseInc * float64(k))
		ret[k] = complex(tap*cos, tap*sin)
	}
	return ret
}

// ToComplex widens real taps.
func ToComplex(taps []float64) []complex128 {
	ret := make([]complex128, len(taps))
	for i, tap := range taps {
		ret[i] = complex(tap, 0)
	}
	return ret
}

// Response evaluates the filter's frequency response at freqHz.
func Response(taps []complex128, freqHz, sampleRateHz float64) complex128 {
	var acc complex128
	w := 2 * math.Pi * freqHz / sampleRateHz
	for k, tap := range taps {
		acc += tap * cmplx.Exp(complex(0, -w*float64(k)))
	}
	return acc
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
