package bandfilter

import (
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/norasector/dsped/pkg/dsp/filters/fir"
	"github.com/norasector/dsped/pkg/dsp/siggen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	testRate = 3000.0
	testLen  = 4096
)

var testBand = NewBand(860, 940)

func mustTone(t *testing.T, freq float64, n int) []complex128 {
	tone, err := siggen.Tone(freq, testRate, n)
	require.NoError(t, err)
	return tone
}

// interior drops the samples touched by the same-length convolution edges.
func interior(x []complex128, taps int) []complex128 {
	return x[taps/2 : len(x)-taps/2]
}

func maxAbs(x []complex128) float64 {
	var m float64
	for _, v := range x {
		m = math.Max(m, cmplx.Abs(v))
	}
	return m
}

func maxDiff(a, b []complex128) float64 {
	var m float64
	for i := range a {
		m = math.Max(m, cmplx.Abs(a[i]-b[i]))
	}
	return m
}

func TestBand(t *testing.T) {
	b := NewBand(-1290, -1210)
	assert.Equal(t, -1250.0, b.Center())
	assert.Equal(t, 80.0, b.Width())
	assert.NoError(t, b.Validate())

	assert.ErrorIs(t, NewBand(10, 10).Validate(), ErrInvalidParameter)
	assert.ErrorIs(t, NewBand(20, 10).Validate(), ErrInvalidParameter)
	assert.ErrorIs(t, NewBand(math.NaN(), 10).Validate(), ErrInvalidParameter)
}

func TestLowpassTunedPassesInBandTone(t *testing.T) {
	in := mustTone(t, 900, testLen)

	out, err := BandpassViaLowpass(in, testBand, testRate)
	require.NoError(t, err)
	require.Len(t, out, testLen)

	assert.Less(t, maxDiff(interior(in, 91), interior(out, 91)), 1e-9)
}

func TestLowpassTunedRejectsOutOfBandTone(t *testing.T) {
	for _, freq := range []float64{-1250, 150, 1300} {
		in := mustTone(t, freq, testLen)

		out, err := BandpassViaLowpass(in, testBand, testRate)
		require.NoError(t, err)

		assert.Less(t, maxAbs(interior(out, 91)), 0.01, "tone at %v Hz", freq)
	}
}

func TestLowpassTunedNegativeBand(t *testing.T) {
	in := mustTone(t, -1250, testLen)

	out, err := BandpassViaLowpass(in, NewBand(-1290, -1210), testRate)
	require.NoError(t, err)

	assert.Less(t, maxDiff(interior(in, 91), interior(out, 91)), 1e-9)
}

func TestHighpassTunedRemovesBand(t *testing.T) {
	centre := mustTone(t, 900, testLen)
	far := mustTone(t, -1250, testLen)

	out, err := BandstopViaHighpass(centre, testBand, testRate)
	require.NoError(t, err)
	require.Len(t, out, testLen)
	assert.Less(t, maxAbs(interior(out, 1191)), 0.01)

	out, err = BandstopViaHighpass(far, testBand, testRate)
	require.NoError(t, err)
	assert.Less(t, maxDiff(interior(far, 1191), interior(out, 1191)), 0.01)
}

func TestBandpassAndBandstopComplement(t *testing.T) {
	in, err := siggen.Sum(mustTone(t, 900, testLen), mustTone(t, -1250, testLen))
	require.NoError(t, err)

	passed, err := BandpassViaLowpass(in, testBand, testRate)
	require.NoError(t, err)
	stopped, err := BandstopViaHighpass(in, testBand, testRate)
	require.NoError(t, err)

	sum, err := siggen.Sum(passed, stopped)
	require.NoError(t, err)

	assert.Less(t, maxDiff(interior(in, 1191), interior(sum, 1191)), 0.01)
}

func TestFilterShiftCentreTone(t *testing.T) {
	in := mustTone(t, testBand.Center(), testLen)

	out, err := BandpassViaFilterShift(in, testBand, testRate)
	require.NoError(t, err)
	require.Len(t, out, testLen)

	for _, v := range interior(out, 39) {
		assert.InDelta(t, 1.0, cmplx.Abs(v), 1e-9)
	}
}

func TestFilterShiftRejectsFarTones(t *testing.T) {
	for _, freq := range []float64{-1250, 150, 1200} {
		in := mustTone(t, freq, testLen)

		out, err := BandpassViaFilterShift(in, testBand, testRate)
		require.NoError(t, err)

		assert.Less(t, maxAbs(interior(out, 39)), 0.01, "tone at %v Hz", freq)
	}
}

func TestFilterShiftKernel(t *testing.T) {
	kernel, err := NewFilterShift().Kernel(testBand, testRate)
	require.NoError(t, err)
	require.Len(t, kernel, 39)

	assert.InDelta(t, 1.0, cmplx.Abs(fir.Response(kernel, 900, testRate)), 1e-9)
}

func TestStrategiesPreserveLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 400).Draw(t, "n")
		low := rapid.Float64Range(-1400, 1200).Draw(t, "low")
		width := rapid.Float64Range(1, 200).Draw(t, "width")
		band := NewBand(low, low+width)

		in, err := siggen.Noise(siggen.NewSeededSource(uint64(n)), 1, n)
		require.NoError(t, err)

		for _, s := range Strategies() {
			out, err := s.Apply(in, band, testRate)
			require.NoError(t, err, s.Name())
			require.Len(t, out, n, s.Name())
		}
	})
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in, err := siggen.Noise(siggen.NewSeededSource(9), 1, 512)
	require.NoError(t, err)
	orig := append([]complex128(nil), in...)

	for _, s := range Strategies() {
		_, err := s.Apply(in, testBand, testRate)
		require.NoError(t, err)
		assert.Equal(t, orig, in, s.Name())
	}
}

func TestApplyInvalid(t *testing.T) {
	tone := mustTone(t, 900, 64)
	tests := []struct {
		name    string
		samples []complex128
		band    Band
		rate    float64
	}{
		{"empty", nil, testBand, testRate},
		{"inverted band", tone, NewBand(940, 860), testRate},
		{"empty band", tone, NewBand(900, 900), testRate},
		{"zero rate", tone, testBand, 0},
		{"negative rate", tone, testBand, -3000},
	}
	for _, tt := range tests {
		for _, s := range Strategies() {
			t.Run(tt.name+"/"+s.Name(), func(t *testing.T) {
				out, err := s.Apply(tt.samples, tt.band, tt.rate)
				assert.ErrorIs(t, err, ErrInvalidParameter)
				assert.Nil(t, out)
			})
		}
	}
}

func TestApplyDegenerateCutoff(t *testing.T) {
	tone := mustTone(t, 0, 64)

	// 0.55 × 2800 Hz lands above Nyquist
	_, err := BandpassViaFilterShift(tone, NewBand(-1400, 1400), testRate)
	assert.ErrorIs(t, err, fir.ErrNumericDegenerate)

	_, err = BandpassViaLowpass(tone, NewBand(-1400, 1400), testRate)
	assert.NoError(t, err)
}

func TestOptions(t *testing.T) {
	s := NewLowpassTuned(WithTaps(31), WithCutoffFraction(0.25), WithWindow(fir.Blackman))
	assert.Equal(t, Config{Taps: 31, CutoffFraction: 0.25, Window: fir.Blackman}, s.Config())
	assert.Equal(t, 20.0, s.Config().Cutoff(testBand))

	// defaults stay untouched
	assert.Equal(t, 91, NewLowpassTuned().Config().Taps)
	assert.Equal(t, 1191, NewHighpassTuned().Config().Taps)
	assert.Equal(t, 39, NewFilterShift().Config().Taps)
	assert.Equal(t, 0.55, NewFilterShift().Config().CutoffFraction)

	merged := NewHighpassTuned(WithConfig(Config{CutoffFraction: 0.2, Window: fir.Hann}))
	assert.Equal(t, Config{Taps: 1191, CutoffFraction: 0.2, Window: fir.Hann}, merged.Config())

	_, err := NewFilterShift(WithTaps(0)).Apply(mustTone(t, 0, 8), testBand, testRate)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{FilterShiftName, HighpassTunedName, LowpassTunedName}, Names())

	for _, s := range Strategies() {
		got, err := Lookup(s.Name())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	s, err := Lookup(FilterShiftName, WithTaps(51))
	require.NoError(t, err)
	assert.Equal(t, 51, s.(*FilterShift).Config().Taps)

	_, err = Lookup("remez")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestConcurrentApply(t *testing.T) {
	in, err := siggen.Noise(siggen.NewSeededSource(21), 2, 2048)
	require.NoError(t, err)

	strategies := Strategies()
	want := make([][]complex128, len(strategies))
	for i, s := range strategies {
		want[i], err = s.Apply(in, testBand, testRate)
		require.NoError(t, err)
	}

	got := make([][]complex128, len(strategies))
	errs := make([]error, len(strategies))
	var wg sync.WaitGroup
	for i, s := range strategies {
		wg.Add(1)
		go func(i int, s Strategy) {
			defer wg.Done()
			got[i], errs[i] = s.Apply(in, testBand, testRate)
		}(i, s)
	}
	wg.Wait()

	for i := range strategies {
		require.NoError(t, errs[i])
		assert.Equal(t, want[i], got[i])
	}
}
