package bandfilter

import (
	"math/rand"
	"testing"

	"github.com/norasector/dsped/pkg/dsp/siggen"
	"github.com/norasector/dsped/pkg/dsp/spectrum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Noise at power 2 plus unit tones at 900, -1250 and 150 Hz, sampled at
// 3 kHz, filtered to [860, 940] Hz.
func TestFilterAndShiftScenario(t *testing.T) {
	const (
		fs = 3000.0
		n  = 8192
	)
	band := NewBand(860, 940)
	exclLow, exclHigh := band.Low-50, band.High+50

	g := siggen.NewGenerator(fs, siggen.WithSource(rand.New(rand.NewSource(2023))))
	input, err := g.Composite(2, []float64{900, -1250, 150}, n)
	require.NoError(t, err)

	freqs, inPower, err := spectrum.Power(input, fs)
	require.NoError(t, err)
	inOutside := spectrum.BandPower(freqs, inPower, exclLow, exclHigh, false)

	tests := []struct {
		strategy Strategy
		minDB    float64
	}{
		{NewLowpassTuned(), 20},
		{NewFilterShift(), 20},
	}
	for _, tt := range tests {
		t.Run(tt.strategy.Name(), func(t *testing.T) {
			out, err := tt.strategy.Apply(input, band, fs)
			require.NoError(t, err)
			require.Len(t, out, n)

			freqs, outPower, err := spectrum.Power(out, fs)
			require.NoError(t, err)

			peak, _ := spectrum.Peak(freqs, outPower)
			assert.InDelta(t, 900, peak, 3)

			outOutside := spectrum.BandPower(freqs, outPower, exclLow, exclHigh, false)
			rejection := spectrum.DB(inOutside / outOutside)
			assert.GreaterOrEqual(t, rejection, tt.minDB)
		})
	}
}

func TestBandstopScenario(t *testing.T) {
	const (
		fs = 3000.0
		n  = 8192
	)
	band := NewBand(860, 940)

	g := siggen.NewGenerator(fs, siggen.WithSeed(99))
	input, err := g.Composite(0, []float64{900, -1250, 150}, n)
	require.NoError(t, err)

	out, err := BandstopViaHighpass(input, band, fs)
	require.NoError(t, err)

	freqs, power, err := spectrum.Power(out, fs)
	require.NoError(t, err)

	// the two tones outside the band survive, the one inside does not
	assert.Less(t, spectrum.BandPower(freqs, power, 895, 905, true), 0.01)
	assert.InDelta(t, 1.0, spectrum.BandPower(freqs, power, -1255, -1245, true), 0.2)
	assert.InDelta(t, 1.0, spectrum.BandPower(freqs, power, 145, 155, true), 0.2)
}
