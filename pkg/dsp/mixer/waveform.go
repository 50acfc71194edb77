package mixer

import (
	"fmt"
	"math"

	"github.com/norasector/dsped/pkg/dsp"
)

// WaveformMixer tunes consecutive blocks of one long capture. The oscillator
// phase carries over from block to block, so chunked output lines up with
// tuning the whole capture at once.
type WaveformMixer struct {
	offsetHz float64
	step     float64
	phase    float64
}

func NewWaveformMixer(sampleRateHz, offsetHz float64) (*WaveformMixer, error) {
	if !(sampleRateHz > 0) || math.IsInf(sampleRateHz, 1) || math.IsNaN(offsetHz) || math.IsInf(offsetHz, 0) {
		return nil, fmt.Errorf("mixer offset %v Hz at %v Hz: %w", offsetHz, sampleRateHz, dsp.ErrInvalidParameter)
	}

	return &WaveformMixer{
		offsetHz: offsetHz,
		step:     2 * math.Pi * offsetHz / sampleRateHz,
	}, nil
}

func (w *WaveformMixer) OffsetHz() float64 { return w.offsetHz }

// Phase is the oscillator phase applied to the next sample, in [-π, π].
func (w *WaveformMixer) Phase() float64 { return w.phase }

func (w *WaveformMixer) Reset() { w.phase = 0 }

// WorkBuffer tunes input into output, which must be at least as long.
func (w *WaveformMixer) WorkBuffer(input, output []complex128) int {
	for i, s := range input {
		sin, cos := math.Sincos(w.phase)
		output[i] = complex(cos, sin) * s
		w.phase = math.Remainder(w.phase+w.step, 2*math.Pi)
	}
	return len(input)
}

func (w *WaveformMixer) Work(input []complex128) []complex128 {
	ret := make([]complex128, len(input))
	w.WorkBuffer(input, ret)
	return ret
}

// TuneBlocks shifts samples by offsetHz, blockSize samples at a time, through
// one WaveformMixer. A blockSize below 1 tunes everything in one block.
func TuneBlocks(samples []complex128, offsetHz, sampleRateHz float64, blockSize int) ([]complex128, error) {
	m, err := NewWaveformMixer(sampleRateHz, offsetHz)
	if err != nil {
		return nil, err
	}
	if blockSize < 1 {
		blockSize = len(samples)
	}

	ret := make([]complex128, len(samples))
	for start := 0; start < len(samples); start += blockSize {
		end := start + blockSize
		if end > len(samples) {
			end = len(samples)
		}
		m.WorkBuffer(samples[start:end], ret[start:end])
	}
	return ret, nil
}
