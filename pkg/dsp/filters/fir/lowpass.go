package fir

import (
	"fmt"
	"math"

	"github.com/norasector/dsped/pkg/dsp"
)

// MakeLowPass designs a lowpass whose length follows from transitionWidth,
// normalised to gain at DC.
func MakeLowPass(gain, sampleRate, cutFrequency, transitionWidth float64, winType WindowType) ([]float64, error) {
	if !(sampleRate > 0) || !(transitionWidth > 0) {
		return nil, fmt.Errorf("lowpass sample rate %v transition %v: %w", sampleRate, transitionWidth, dsp.ErrInvalidParameter)
	}
	if !(cutFrequency > 0) || cutFrequency >= sampleRate/2 {
		return nil, fmt.Errorf("lowpass cutoff %v Hz at %v Hz: %w", cutFrequency, sampleRate, ErrNumericDegenerate)
	}

	nTaps := NumTaps(sampleRate, transitionWidth, winType)
	var taps = make([]float64, nTaps)
	var w = winType.Func()(nTaps)

	var M = (nTaps - 1) / 2
	var fwT0 = 2 * math.Pi * cutFrequency / sampleRate

	for i := -M; i <= M; i++ {
		if i == 0 {
			taps[i+M] = fwT0 / math.Pi * w[i+M]
		} else {
			fi := float64(i)
			taps[i+M] = math.Sin(fi*fwT0) / (fi * math.Pi) * w[i+M]
		}
	}

	var fmax = taps[0+M]
	for i := 1; i <= M; i++ {
		fmax += 2 * taps[i+M]
	}

	gain /= fmax

	for i := 0; i < nTaps; i++ {
		taps[i] *= gain
	}

	return taps, nil
}
