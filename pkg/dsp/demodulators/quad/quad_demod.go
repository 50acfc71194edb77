// Package quad is a quadrature FM discriminator.
package quad

import (
	"math"

	"github.com/racerxdl/segdsp/dsp"
)

// QuadDemod keeps the last sample of the previous block so a long capture
// can be demodulated in pieces.
type QuadDemod struct {
	gain    float32
	history []complex64
}

func MakeQuadDemod(gain float32) *QuadDemod {
	return &QuadDemod{
		gain:    gain,
		history: make([]complex64, 1),
	}
}

func (f *QuadDemod) Work(data []complex64) []float32 {
	out := make([]float32, f.PredictOutputSize(len(data)))

	f.WorkBuffer(data, out)

	return out
}

func (f *QuadDemod) WorkBuffer(input []complex64, output []float32) int {
	var samples = append(f.history, input...)
	var tmp = dsp.MultiplyConjugate(samples[1:], samples, len(input))

	for i := 0; i < len(input); i++ {
		output[i] = f.gain * float32(math.Atan2(float64(imag(tmp[i])), float64(real(tmp[i]))))
	}

	f.history = append(f.history[:0], samples[len(samples)-1])
	return len(input)
}

func (f *QuadDemod) PredictOutputSize(inputLength int) int {
	return inputLength
}

// Demod returns angle(x[n]·conj(x[n-1])) for n = 1..len-1, scaled by gain.
// The output is one sample shorter than the input.
func Demod(samples []complex128, gain float64) []float64 {
	return DemodBlocks(samples, float32(gain), len(samples))
}

// Complex64 narrows samples for the block demodulator.
func Complex64(samples []complex128) []complex64 {
	ret := make([]complex64, len(samples))
	for i, s := range samples {
		ret[i] = complex64(s)
	}
	return ret
}

// DemodBlocks runs the block demodulator over samples blockSize at a time.
func DemodBlocks(samples []complex128, gain float32, blockSize int) []float64 {
	if len(samples) < 2 {
		return []float64{}
	}
	if blockSize < 1 {
		blockSize = len(samples)
	}

	d := MakeQuadDemod(gain)
	in := Complex64(samples)
	d.Work(in[:1])

	ret := make([]float64, 0, len(samples)-1)
	for start := 1; start < len(in); start += blockSize {
		end := start + blockSize
		if end > len(in) {
			end = len(in)
		}
		for _, v := range d.Work(in[start:end]) {
			ret = append(ret, float64(v))
		}
	}
	return ret
}
