package bandfilter

import (
	"fmt"

	"github.com/norasector/dsped/pkg/dsp/conv"
	"github.com/norasector/dsped/pkg/dsp/filters/fir"
)

const FilterShiftName = "filter-shift"

// DefaultFilterShift cuts at half the bandwidth plus 10%.
var DefaultFilterShift = Config{
	Taps:           39,
	CutoffFraction: 0.55,
	Window:         fir.Hamming,
}

// FilterShift is a bandpass that moves the filter instead of the signal: the
// lowpass prototype is rotated onto the band centre and the resulting complex
// kernel is convolved with the untouched input. One complex convolution
// replaces two mixes and a real convolution, and the same prototype can be
// rotated to any number of bands.
type FilterShift struct {
	cfg Config
}

func NewFilterShift(opts ...Option) *FilterShift {
	return &FilterShift{cfg: applyOptions(DefaultFilterShift, opts)}
}

func (s *FilterShift) Name() string   { return FilterShiftName }
func (s *FilterShift) Config() Config { return s.cfg }

// Kernel returns the rotated complex taps used for band.
func (s *FilterShift) Kernel(band Band, sampleRateHz float64) ([]complex128, error) {
	if err := band.Validate(); err != nil {
		return nil, err
	}
	if err := s.cfg.validate(); err != nil {
		return nil, err
	}

	proto, err := fir.LowPass(s.cfg.Taps, s.cfg.Cutoff(band), sampleRateHz, s.cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("designing prototype for %s: %w", band, err)
	}

	return fir.Rotate(proto, band.Center(), sampleRateHz), nil
}

func (s *FilterShift) Apply(samples []complex128, band Band, sampleRateHz float64) ([]complex128, error) {
	if err := validateInput(samples, band, sampleRateHz); err != nil {
		return nil, err
	}

	kernel, err := s.Kernel(band, sampleRateHz)
	if err != nil {
		return nil, err
	}

	return conv.Same(samples, kernel), nil
}
