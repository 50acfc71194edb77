package fir

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/norasector/dsped/pkg/dsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDesignKnownTaps(t *testing.T) {
	// half-band lowpass, three Hamming taps
	taps, err := Design(3, []float64{0.5}, 2, true, Hamming)
	require.NoError(t, err)

	want := []float64{0.0462215, 0.907557, 0.0462215}
	assert.InDeltaSlice(t, want, taps, 1e-6)
}

func TestLowPassProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ntaps := rapid.IntRange(1, 401).Draw(t, "ntaps")
		fs := rapid.Float64Range(100, 1e6).Draw(t, "fs")
		cutoff := rapid.Float64Range(0.001, 0.499).Draw(t, "cutoff") * fs

		taps, err := LowPass(ntaps, cutoff, fs, Hamming)
		require.NoError(t, err)
		require.Len(t, taps, ntaps)

		var dc float64
		for i := range taps {
			dc += taps[i]
			assert.InDelta(t, taps[i], taps[ntaps-1-i], 1e-12, "symmetry at %d", i)
		}
		assert.InDelta(t, 1.0, dc, 1e-9)
	})
}

func TestHighPassGain(t *testing.T) {
	taps, err := HighPass(1191, 8, 3000, Hamming)
	require.NoError(t, err)
	require.Len(t, taps, 1191)

	ctaps := ToComplex(taps)
	assert.InDelta(t, 1.0, cmplx.Abs(Response(ctaps, 1500, 3000)), 1e-9)
	assert.Less(t, cmplx.Abs(Response(ctaps, 0, 3000)), 0.01)
	assert.InDelta(t, 1.0, cmplx.Abs(Response(ctaps, 400, 3000)), 0.01)
}

func TestBandPassCentreGain(t *testing.T) {
	taps, err := BandPass(101, 400, 600, 3000, Hamming)
	require.NoError(t, err)

	ctaps := ToComplex(taps)
	assert.InDelta(t, 1.0, cmplx.Abs(Response(ctaps, 500, 3000)), 1e-9)
	assert.Less(t, cmplx.Abs(Response(ctaps, 0, 3000)), 0.01)
	assert.Less(t, cmplx.Abs(Response(ctaps, 1200, 3000)), 0.01)
}

func TestDesignErrors(t *testing.T) {
	tests := []struct {
		name     string
		ntaps    int
		cutoff   []float64
		fs       float64
		passZero bool
		want     error
	}{
		{"no taps", 0, []float64{100}, 3000, true, ErrInvalidTaps},
		{"even highpass", 90, []float64{100}, 3000, false, ErrInvalidTaps},
		{"cutoff at nyquist", 91, []float64{1500}, 3000, true, ErrNumericDegenerate},
		{"zero cutoff", 91, []float64{0}, 3000, true, ErrNumericDegenerate},
		{"negative cutoff", 91, []float64{-10}, 3000, true, ErrNumericDegenerate},
		{"unordered", 91, []float64{600, 400}, 3000, false, ErrNumericDegenerate},
		{"no cutoff", 91, nil, 3000, true, ErrNumericDegenerate},
		{"bad rate", 91, []float64{100}, 0, true, dsp.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Design(tt.ntaps, tt.cutoff, tt.fs, tt.passZero, Hamming)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEvenLowPassAllowed(t *testing.T) {
	taps, err := LowPass(90, 100, 3000, Hann)
	require.NoError(t, err)
	assert.Len(t, taps, 90)
}

func TestRotateCentresPassband(t *testing.T) {
	proto, err := LowPass(39, 44, 3000, Hamming)
	require.NoError(t, err)

	rotated := Rotate(proto, 900, 3000)
	require.Len(t, rotated, len(proto))

	assert.InDelta(t, 1.0, cmplx.Abs(Response(rotated, 900, 3000)), 1e-9)
	assert.Less(t, cmplx.Abs(Response(rotated, -900, 3000)), 0.01)

	for k := range proto {
		assert.InDelta(t, math.Abs(proto[k]), cmplx.Abs(rotated[k]), 1e-12)
	}
}

func TestWindowStopband(t *testing.T) {
	for _, win := range []WindowType{Hamming, Blackman, BlackmanHarris} {
		t.Run(win.String(), func(t *testing.T) {
			taps, err := LowPass(201, 100, 3000, win)
			require.NoError(t, err)

			ctaps := ToComplex(taps)
			atten := -20 * math.Log10(cmplx.Abs(Response(ctaps, 900, 3000)))
			assert.Greater(t, atten, float64(win.Attenuation())-10)
		})
	}
}

func TestMakeLowPass(t *testing.T) {
	taps, err := MakeLowPass(1, 1.2e6, 50e3, 20e3, Hamming)
	require.NoError(t, err)

	assert.Equal(t, NumTaps(1.2e6, 20e3, Hamming), len(taps))
	assert.Equal(t, 1, len(taps)%2)

	var dc float64
	for _, tap := range taps {
		dc += tap
	}
	assert.InDelta(t, 1.0, dc, 1e-9)

	_, err = MakeLowPass(1, 1.2e6, 700e3, 20e3, Hamming)
	assert.ErrorIs(t, err, ErrNumericDegenerate)
}

func TestMakeHighPass(t *testing.T) {
	taps, err := MakeHighPass(1, 48e3, 6e3, 2e3, Hamming)
	require.NoError(t, err)
	assert.Equal(t, NumTaps(48e3, 2e3, Hamming), len(taps))

	ctaps := ToComplex(taps)
	assert.InDelta(t, 1.0, cmplx.Abs(Response(ctaps, 24e3, 48e3)), 1e-9)
	assert.Less(t, cmplx.Abs(Response(ctaps, 0, 48e3)), 0.01)

	_, err = MakeHighPass(1, 48e3, 6e3, 0, Hamming)
	assert.ErrorIs(t, err, dsp.ErrInvalidParameter)
	_, err = MakeHighPass(1, 48e3, 30e3, 2e3, Hamming)
	assert.ErrorIs(t, err, ErrNumericDegenerate)
}

func TestMakeBandPass(t *testing.T) {
	taps, err := MakeBandPass(2, 48e3, 5e3, 9e3, 1e3, Blackman)
	require.NoError(t, err)
	assert.Equal(t, NumTaps(48e3, 1e3, Blackman), len(taps))

	ctaps := ToComplex(taps)
	assert.InDelta(t, 2.0, cmplx.Abs(Response(ctaps, 7e3, 48e3)), 1e-9)
	assert.Less(t, cmplx.Abs(Response(ctaps, 0, 48e3)), 0.01)
	assert.Less(t, cmplx.Abs(Response(ctaps, 15e3, 48e3)), 0.01)

	_, err = MakeBandPass(1, 48e3, 9e3, 5e3, 1e3, Hamming)
	assert.ErrorIs(t, err, ErrNumericDegenerate)
}

func TestMakeComplexBandPass(t *testing.T) {
	taps, err := MakeComplexBandPass(1, 48e3, -9e3, -5e3, 1e3, Hamming)
	require.NoError(t, err)
	require.Equal(t, NumTaps(48e3, 1e3, Hamming), len(taps))

	assert.InDelta(t, 1.0, cmplx.Abs(Response(taps, -7e3, 48e3)), 1e-9)
	assert.Less(t, cmplx.Abs(Response(taps, 7e3, 48e3)), 0.01)
	assert.Less(t, cmplx.Abs(Response(taps, 0, 48e3)), 0.01)

	// same magnitudes as the prototype, zero phase at the middle tap
	proto, err := MakeLowPass(1, 48e3, 2e3, 1e3, Hamming)
	require.NoError(t, err)
	for k := range proto {
		assert.InDelta(t, math.Abs(proto[k]), cmplx.Abs(taps[k]), 1e-12)
	}
	mid := len(taps) / 2
	assert.InDelta(t, proto[mid], real(taps[mid]), 1e-9)
	assert.InDelta(t, 0.0, imag(taps[mid]), 1e-9)

	_, err = MakeComplexBandPass(1, 48e3, 5e3, 5e3, 1e3, Hamming)
	assert.ErrorIs(t, err, ErrNumericDegenerate)
	_, err = MakeComplexBandPass(1, 48e3, 20e3, 30e3, 1e3, Hamming)
	assert.ErrorIs(t, err, ErrNumericDegenerate)
}
