package fir

import (
	"fmt"
	"math"

	"github.com/norasector/dsped/pkg/dsp"
)

// MakeBandPass designs a real bandpass over [lowCut, highCut] Hz, normalised
// to gain at the band centre.
func MakeBandPass(gain, sampleRate, lowCut, highCut, transitionWidth float64, winType WindowType) ([]float64, error) {
	if !(sampleRate > 0) || !(transitionWidth > 0) {
		return nil, fmt.Errorf("bandpass sample rate %v transition %v: %w", sampleRate, transitionWidth, dsp.ErrInvalidParameter)
	}
	if !(lowCut > 0) || !(highCut > lowCut) || highCut >= sampleRate/2 {
		return nil, fmt.Errorf("bandpass [%v, %v] Hz at %v Hz: %w", lowCut, highCut, sampleRate, ErrNumericDegenerate)
	}

	nTaps := NumTaps(sampleRate, transitionWidth, winType)
	taps := make([]float64, nTaps)
	w := winType.Func()(nTaps)

	M := (nTaps - 1) / 2
	fwT0 := 2 * math.Pi * lowCut / sampleRate
	fwT1 := 2 * math.Pi * highCut / sampleRate

	for i := -M; i <= M; i++ {
		if i == 0 {
			taps[i+M] = (fwT1 - fwT0) / math.Pi * w[i+M]
		} else {
			fi := float64(i)
			taps[i+M] = (math.Sin(fi*fwT1) - math.Sin(fi*fwT0)) / (fi * math.Pi) * w[i+M]
		}
	}

	fmax := taps[M]
	for i := 1; i <= M; i++ {
		fmax += 2 * taps[i+M] * math.Cos(float64(i)*(fwT0+fwT1)*0.5)
	}

	gain /= fmax
	for i := range taps {
		taps[i] *= gain
	}

	return taps, nil
}

// MakeComplexBandPass rotates a MakeLowPass prototype of half the band width
// onto the centre of [lowCut, highCut]. Both edges may be negative. The
// middle tap has zero phase, so the passband centre sees gain with no phase
// shift.
func MakeComplexBandPass(gain, sampleRate, lowCut, highCut, transitionWidth float64, winType WindowType) ([]complex128, error) {
	if !(highCut > lowCut) || lowCut < -sampleRate/2 || highCut > sampleRate/2 {
		return nil, fmt.Errorf("complex bandpass [%v, %v] Hz at %v Hz: %w", lowCut, highCut, sampleRate, ErrNumericDegenerate)
	}

	lptaps, err := MakeLowPass(gain, sampleRate, (highCut-lowCut)/2, transitionWidth, winType)
	if err != nil {
		return nil, err
	}

	freq := 2 * math.Pi * (highCut + lowCut) / 2 / sampleRate
	phase := -freq * float64(len(lptaps)>>1)

	ret := make([]complex128, len(lptaps))
	for i, tap := range lptaps {
		sin, cos := math.Sincos(phase)
		ret[i] = complex(tap*cos, tap*sin)
		phase += freq
	}

	return ret, nil
}
