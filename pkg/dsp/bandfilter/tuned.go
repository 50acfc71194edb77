package bandfilter

import (
	"fmt"

	"github.com/norasector/dsped/pkg/dsp/conv"
	"github.com/norasector/dsped/pkg/dsp/filters/fir"
	"github.com/norasector/dsped/pkg/dsp/mixer"
)

const (
	LowpassTunedName  = "lowpass-tuned"
	HighpassTunedName = "highpass-tuned"
)

// DefaultLowpassTuned: 91 taps at a tenth of the bandwidth.
var DefaultLowpassTuned = Config{
	Taps:           91,
	CutoffFraction: 0.1,
	Window:         fir.Hamming,
}

// DefaultHighpassTuned needs many more taps: rejecting a narrow notch while
// passing the rest of the spectrum takes a much sharper transition.
var DefaultHighpassTuned = Config{
	Taps:           1191,
	CutoffFraction: 0.1,
	Window:         fir.Hamming,
}

// LowpassTuned is a bandpass: the band centre is mixed down to 0 Hz, a real
// lowpass prototype is applied, and the result is mixed back up.
type LowpassTuned struct {
	cfg Config
}

func NewLowpassTuned(opts ...Option) *LowpassTuned {
	return &LowpassTuned{cfg: applyOptions(DefaultLowpassTuned, opts)}
}

func (s *LowpassTuned) Name() string   { return LowpassTunedName }
func (s *LowpassTuned) Config() Config { return s.cfg }

func (s *LowpassTuned) Apply(samples []complex128, band Band, sampleRateHz float64) ([]complex128, error) {
	return tunedFilter(samples, band, sampleRateHz, s.cfg, true)
}

// HighpassTuned is a bandstop built the same way as LowpassTuned around a
// highpass prototype.
type HighpassTuned struct {
	cfg Config
}

func NewHighpassTuned(opts ...Option) *HighpassTuned {
	return &HighpassTuned{cfg: applyOptions(DefaultHighpassTuned, opts)}
}

func (s *HighpassTuned) Name() string   { return HighpassTunedName }
func (s *HighpassTuned) Config() Config { return s.cfg }

func (s *HighpassTuned) Apply(samples []complex128, band Band, sampleRateHz float64) ([]complex128, error) {
	return tunedFilter(samples, band, sampleRateHz, s.cfg, false)
}

func tunedFilter(samples []complex128, band Band, sampleRateHz float64, cfg Config, passZero bool) ([]complex128, error) {
	if err := validateInput(samples, band, sampleRateHz); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	center := band.Center()
	taps, err := fir.Design(cfg.Taps, []float64{cfg.Cutoff(band)}, sampleRateHz, passZero, cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("designing prototype for %s: %w", band, err)
	}

	baseband, err := mixer.Tune(samples, -center, sampleRateHz)
	if err != nil {
		return nil, err
	}

	filtered := conv.SameReal(baseband, taps)

	return mixer.Tune(filtered, center, sampleRateHz)
}
