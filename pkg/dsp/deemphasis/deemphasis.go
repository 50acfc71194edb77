// Package deemphasis undoes broadcast FM pre-emphasis.
package deemphasis

import (
	"fmt"
	"math"
	"time"

	"github.com/norasector/dsped/pkg/dsp"
)

const (
	// TauUS is the 75 µs time constant used in the Americas.
	TauUS = 75 * time.Microsecond
	// TauEU is the 50 µs time constant used in Europe.
	TauEU = 50 * time.Microsecond
)

// Filter runs the single-pole lowpass y[n] = (1-a)·x[n] + a·y[n-1] with
// a = exp(-1/(Fs·tau)), the -3 dB point landing at 1/(2π·tau).
func Filter(x []float64, sampleRateHz float64, tau time.Duration) ([]float64, error) {
	if !(sampleRateHz > 0) {
		return nil, fmt.Errorf("deemphasis sample rate must be > 0, got %v: %w", sampleRateHz, dsp.ErrInvalidParameter)
	}
	if tau <= 0 {
		return nil, fmt.Errorf("deemphasis tau must be > 0, got %v: %w", tau, dsp.ErrInvalidParameter)
	}

	d := sampleRateHz * tau.Seconds()
	a := math.Exp(-1 / d)
	b := 1 - a

	ret := make([]float64, len(x))
	var y float64
	for i, v := range x {
		y = b*v + a*y
		ret[i] = y
	}
	return ret, nil
}
