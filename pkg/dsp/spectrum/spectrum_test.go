package spectrum

import (
	"math"
	"reflect"
	"testing"

	"github.com/norasector/dsped/pkg/dsp"
	"github.com/norasector/dsped/pkg/dsp/siggen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShift(t *testing.T) {
	type args struct {
		freqs []float64
	}
	tests := []struct {
		name string
		args args
		want []float64
	}{{
		"10",
		args{[]float64{0., 1., 2., 3., 4., -5., -4., -3., -2., -1.}},
		[]float64{-5., -4., -3., -2., -1., 0., 1., 2., 3., 4.},
	}, {
		"11",
		args{[]float64{0., 0.90909091, 1.81818182, 2.72727273, 3.63636364,
			4.54545455, -4.54545455, -3.63636364, -2.72727273, -1.81818182,
			-0.90909091}},
		[]float64{-4.54545455, -3.63636364, -2.72727273, -1.81818182, -0.90909091,
			0., 0.90909091, 1.81818182, 2.72727273, 3.63636364,
			4.54545455},
	},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shift(tt.args.freqs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Shift() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFreqs(t *testing.T) {
	assert.Equal(t, []float64{-2, -1, 0, 1}, Freqs(4, 4))
	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, Freqs(5, 5))
}

func TestPowerOfTone(t *testing.T) {
	// 375 Hz falls exactly on bin 1024 of 8192 at 3000 Hz
	tone, err := siggen.Tone(375, 3000, 8192)
	require.NoError(t, err)

	freqs, power, err := Power(tone, 3000)
	require.NoError(t, err)
	require.Len(t, freqs, 8192)

	peak, value := Peak(freqs, power)
	assert.InDelta(t, 375, peak, 1e-9)
	assert.InDelta(t, 1.0, value, 1e-9)

	var total float64
	for _, p := range power {
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.InDelta(t, 1.0, BandPower(freqs, power, 370, 380, true), 1e-9)
	assert.InDelta(t, 0.0, BandPower(freqs, power, 370, 380, false), 1e-9)
}

func TestPowerNegativeFrequency(t *testing.T) {
	tone, err := siggen.Tone(-750, 3000, 1024)
	require.NoError(t, err)

	freqs, power, err := Power(tone, 3000)
	require.NoError(t, err)

	peak, _ := Peak(freqs, power)
	assert.InDelta(t, -750, peak, 1e-9)
}

func TestPSDScaling(t *testing.T) {
	tone, err := siggen.Tone(375, 3000, 8192)
	require.NoError(t, err)

	freqs, psd, err := PSD(tone, 3000)
	require.NoError(t, err)

	peak, value := Peak(freqs, psd)
	assert.InDelta(t, 375, peak, 1e-9)
	// |X|² = N² at the tone bin, so the density is N/Fs
	assert.InDelta(t, 10*math.Log10(8192.0/3000.0), value, 1e-6)
}

func TestPowerErrors(t *testing.T) {
	_, _, err := Power(nil, 3000)
	assert.ErrorIs(t, err, dsp.ErrInvalidParameter)

	_, _, err = Power([]complex128{1}, 0)
	assert.ErrorIs(t, err, dsp.ErrInvalidParameter)
}

func TestDBFloor(t *testing.T) {
	assert.Equal(t, floorDB, DB(0))
	assert.InDelta(t, -20, DB(0.01), 1e-12)
}

func TestMeanPower(t *testing.T) {
	assert.InDelta(t, 2.5, MeanPower([]complex128{1, 2i}), 1e-12)
	assert.Equal(t, 0.0, MeanPower(nil))
}
