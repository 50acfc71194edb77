// Package siggen produces synthetic IQ sample sequences: pure complex tones
// and circularly-symmetric complex Gaussian noise.
package siggen

import (
	"fmt"
	"math"
	"time"

	"github.com/norasector/dsped/pkg/dsp"
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	tau float64 = math.Pi * 2
)

// ErrInvalidParameter is the shared dsp sentinel, re-exported for callers
// that only import siggen.
var ErrInvalidParameter = dsp.ErrInvalidParameter

// NormalSource produces independent standard-normal deviates.
// *math/rand.Rand satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

type distSource struct {
	dist distuv.Normal
}

func (d distSource) NormFloat64() float64 {
	return d.dist.Rand()
}

// NewNormalSource returns a source seeded from the wall clock. It is not safe
// for concurrent use.
func NewNormalSource() NormalSource {
	return NewSeededSource(uint64(time.Now().UnixNano()))
}

// NewSeededSource returns a deterministic source.
func NewSeededSource(seed uint64) NormalSource {
	return distSource{
		dist: distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   exprand.NewSource(seed),
		},
	}
}

// Tone returns n samples of exp(i·2π·freqHz·k/sampleRateHz). Frequencies
// beyond Nyquist alias; that is left to the caller.
func Tone(freqHz, sampleRateHz float64, n int) ([]complex128, error) {
	if !(sampleRateHz > 0) || math.IsInf(sampleRateHz, 1) {
		return nil, fmt.Errorf("tone sample rate must be > 0, got %v: %w", sampleRateHz, ErrInvalidParameter)
	}
	if math.IsNaN(freqHz) || math.IsInf(freqHz, 0) {
		return nil, fmt.Errorf("tone frequency must be finite, got %v: %w", freqHz, ErrInvalidParameter)
	}
	if n < 0 {
		return nil, fmt.Errorf("tone length must be >= 0, got %d: %w", n, ErrInvalidParameter)
	}

	ret := make([]complex128, n)
	step := tau * freqHz / sampleRateHz
	for k := range ret {
		sin, cos := math.Sincos(step * float64(k))
		ret[k] = complex(cos, sin)
	}

	return ret, nil
}

// Noise returns n samples of complex white Gaussian noise whose average power
// is power. A nil src falls back to NewNormalSource.
func Noise(src NormalSource, power float64, n int) ([]complex128, error) {
	if !(power >= 0) || math.IsInf(power, 1) {
		return nil, fmt.Errorf("noise power must be >= 0, got %v: %w", power, ErrInvalidParameter)
	}
	if n < 0 {
		return nil, fmt.Errorf("noise length must be >= 0, got %d: %w", n, ErrInvalidParameter)
	}

	ret := make([]complex128, n)
	if power == 0 {
		return ret, nil
	}
	if src == nil {
		src = NewNormalSource()
	}

	// each component carries half the power
	scale := math.Sqrt(power / 2)
	for k := range ret {
		re := src.NormFloat64()
		im := src.NormFloat64()
		ret[k] = complex(re*scale, im*scale)
	}

	return ret, nil
}

// Sum adds equal-length sequences element-wise into a new sequence.
func Sum(seqs ...[]complex128) ([]complex128, error) {
	if len(seqs) == 0 {
		return []complex128{}, nil
	}

	n := len(seqs[0])
	ret := make([]complex128, n)
	for i, seq := range seqs {
		if len(seq) != n {
			return nil, fmt.Errorf("sequence %d has length %d, expected %d: %w", i, len(seq), n, ErrInvalidParameter)
		}
		cmplxs.Add(ret, seq)
	}

	return ret, nil
}
