// Package mixer shifts the spectrum of IQ samples by multiplying them with a
// complex exponential.
package mixer

import (
	"fmt"

	"github.com/norasector/dsped/pkg/dsp"
	"github.com/norasector/dsped/pkg/dsp/siggen"
	"gonum.org/v1/gonum/cmplxs"
)

// Tune returns samples shifted by offsetHz: content at f moves to f+offsetHz.
func Tune(samples []complex128, offsetHz, sampleRateHz float64) ([]complex128, error) {
	tone, err := siggen.Tone(offsetHz, sampleRateHz, len(samples))
	if err != nil {
		return nil, err
	}

	return Multiply(samples, tone)
}

// Multiply is the element-wise product of two equal-length sequences.
func Multiply(a, b []complex128) ([]complex128, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("mixer length mismatch %d != %d: %w", len(a), len(b), dsp.ErrInvalidParameter)
	}

	return cmplxs.MulTo(make([]complex128, len(a)), a, b), nil
}
