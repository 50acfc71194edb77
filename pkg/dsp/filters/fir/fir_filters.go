// Package fir designs finite impulse response filters with the windowed-sinc
// method.
package fir

import (
	"errors"
)

var (
	// ErrNumericDegenerate means a cutoff lies outside (0, Fs/2) or the
	// cutoffs do not describe a valid set of bands.
	ErrNumericDegenerate = errors.New("fir: degenerate filter design")
	// ErrInvalidTaps means the tap count cannot realise the requested response.
	ErrInvalidTaps = errors.New("fir: invalid number of taps")
)

func computeNTapsAtt(sampleRate float64, transitionWidth float64, attenuationDB float64) int {
	ntaps := int(attenuationDB * sampleRate / (22.0 * transitionWidth))
	ntaps |= 1 // make odd

	return ntaps
}

// NumTaps estimates the odd tap count needed for the given transition width
// with the window's stopband attenuation.
func NumTaps(sampleRate float64, transitionWidth float64, winType WindowType) int {
	return computeNTapsAtt(sampleRate, transitionWidth, float64(winType.Attenuation()))
}
