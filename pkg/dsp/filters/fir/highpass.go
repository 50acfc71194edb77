package fir

import (
	"fmt"
	"math"

	"github.com/norasector/dsped/pkg/dsp"
)

// MakeHighPass is the highpass counterpart of MakeLowPass, normalised to gain
// at Nyquist.
func MakeHighPass(gain, sampleRate, cutFrequency, transitionWidth float64, winType WindowType) ([]float64, error) {
	if !(sampleRate > 0) || !(transitionWidth > 0) {
		return nil, fmt.Errorf("highpass sample rate %v transition %v: %w", sampleRate, transitionWidth, dsp.ErrInvalidParameter)
	}
	if !(cutFrequency > 0) || cutFrequency >= sampleRate/2 {
		return nil, fmt.Errorf("highpass cutoff %v Hz at %v Hz: %w", cutFrequency, sampleRate, ErrNumericDegenerate)
	}

	nTaps := NumTaps(sampleRate, transitionWidth, winType)
	taps := make([]float64, nTaps)
	w := winType.Func()(nTaps)

	M := (nTaps - 1) / 2
	fwT0 := 2 * math.Pi * cutFrequency / sampleRate

	for i := -M; i <= M; i++ {
		if i == 0 {
			taps[i+M] = (1 - fwT0/math.Pi) * w[i+M]
		} else {
			fi := float64(i)
			taps[i+M] = -math.Sin(fi*fwT0) / (fi * math.Pi) * w[i+M]
		}
	}

	// response at Nyquist, where each tap pair alternates sign
	fmax := taps[M]
	for i := 1; i <= M; i++ {
		fmax += 2 * taps[i+M] * math.Cos(float64(i)*math.Pi)
	}

	gain /= fmax
	for i := range taps {
		taps[i] *= gain
	}

	return taps, nil
}
