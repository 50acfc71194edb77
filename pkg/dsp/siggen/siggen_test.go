package siggen

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestToneUnitMagnitude(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		freq := rapid.Float64Range(-1e6, 1e6).Draw(t, "freq")
		fs := rapid.Float64Range(1, 1e7).Draw(t, "fs")
		n := rapid.IntRange(0, 2048).Draw(t, "n")

		tone, err := Tone(freq, fs, n)
		require.NoError(t, err)
		require.Len(t, tone, n)

		for k, s := range tone {
			assert.InDeltaf(t, 1.0, cmplx.Abs(s), 1e-9, "sample %d", k)
		}
	})
}

func TestToneZeroFrequency(t *testing.T) {
	tone, err := Tone(0, 3000, 64)
	require.NoError(t, err)

	for _, s := range tone {
		assert.Equal(t, complex(1, 0), s)
	}
}

func TestToneEmpty(t *testing.T) {
	tone, err := Tone(900, 3000, 0)
	require.NoError(t, err)
	assert.NotNil(t, tone)
	assert.Empty(t, tone)
}

func TestToneQuarterRate(t *testing.T) {
	// Fs/4 walks the unit circle one quadrant per sample
	tone, err := Tone(750, 3000, 4)
	require.NoError(t, err)

	want := []complex128{1, 1i, -1, -1i}
	for k := range want {
		assert.InDelta(t, real(want[k]), real(tone[k]), 1e-12)
		assert.InDelta(t, imag(want[k]), imag(tone[k]), 1e-12)
	}
}

func TestToneInvalid(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		fs   float64
		n    int
	}{
		{"zero rate", 100, 0, 10},
		{"negative rate", 100, -3000, 10},
		{"nan rate", 100, math.NaN(), 10},
		{"nan freq", math.NaN(), 3000, 10},
		{"negative length", 100, 3000, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tone(tt.freq, tt.fs, tt.n)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestNoiseZeroPower(t *testing.T) {
	noise, err := Noise(rand.New(rand.NewSource(1)), 0, 100)
	require.NoError(t, err)
	require.Len(t, noise, 100)

	for _, s := range noise {
		assert.Equal(t, complex(0, 0), s)
	}
}

func TestNoiseNegativePower(t *testing.T) {
	_, err := Noise(nil, -1, 100)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNoisePower(t *testing.T) {
	for _, power := range []float64{0.5, 1, 2, 10} {
		noise, err := Noise(rand.New(rand.NewSource(42)), power, 1<<17)
		require.NoError(t, err)

		var sum float64
		for _, s := range noise {
			sum += real(s)*real(s) + imag(s)*imag(s)
		}
		mean := sum / float64(len(noise))

		assert.InEpsilon(t, power, mean, 0.02, "power %v", power)
	}
}

func TestNoiseSeededRepeatable(t *testing.T) {
	a, err := Noise(NewSeededSource(7), 2, 256)
	require.NoError(t, err)
	b, err := Noise(NewSeededSource(7), 2, 256)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestNoiseCircular(t *testing.T) {
	noise, err := Noise(NewSeededSource(3), 4, 1<<16)
	require.NoError(t, err)

	var re, im, cross float64
	for _, s := range noise {
		re += real(s) * real(s)
		im += imag(s) * imag(s)
		cross += real(s) * imag(s)
	}
	n := float64(len(noise))

	assert.InEpsilon(t, 2.0, re/n, 0.05)
	assert.InEpsilon(t, 2.0, im/n, 0.05)
	assert.InDelta(t, 0.0, cross/n, 0.05)
}

func TestSum(t *testing.T) {
	got, err := Sum([]complex128{1, 2}, []complex128{1i, 2i})
	require.NoError(t, err)
	assert.Equal(t, []complex128{1 + 1i, 2 + 2i}, got)

	_, err = Sum([]complex128{1, 2}, []complex128{1})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestGeneratorComposite(t *testing.T) {
	g := NewGenerator(3000, WithSource(rand.New(rand.NewSource(1))))

	got, err := g.Composite(0, []float64{0, 0}, 8)
	require.NoError(t, err)

	for _, s := range got {
		assert.Equal(t, complex(2, 0), s)
	}
}
