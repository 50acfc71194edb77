// Package bandfilter isolates or removes a band of an IQ sample sequence.
//
// Every strategy has the same contract: a non-empty sequence, a band with
// Low < High and a positive sample rate go in, a new sequence of the same
// length comes out. Convolution runs in same-length mode, so the first and
// last taps/2 output samples carry edge distortion.
package bandfilter

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/norasector/dsped/pkg/dsp"
	"github.com/norasector/dsped/pkg/dsp/filters/fir"
)

var (
	ErrInvalidParameter = dsp.ErrInvalidParameter
	ErrUnknownStrategy  = errors.New("unknown filter strategy")
)

// Band is a frequency range in Hz relative to the tuning centre. Negative
// frequencies are distinct from positive ones.
type Band struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

func NewBand(low, high float64) Band {
	return Band{Low: low, High: high}
}

func (b Band) Center() float64 {
	return (b.Low + b.High) / 2
}

func (b Band) Width() float64 {
	return b.High - b.Low
}

func (b Band) Validate() error {
	if math.IsNaN(b.Low) || math.IsNaN(b.High) || math.IsInf(b.Low, 0) || math.IsInf(b.High, 0) {
		return fmt.Errorf("band %v must be finite: %w", b, ErrInvalidParameter)
	}
	if b.Low >= b.High {
		return fmt.Errorf("band low %v must be below high %v: %w", b.Low, b.High, ErrInvalidParameter)
	}
	return nil
}

func (b Band) String() string {
	return fmt.Sprintf("[%g, %g] Hz", b.Low, b.High)
}

// Strategy is a band-selective transform over a sample sequence.
type Strategy interface {
	Name() string
	Apply(samples []complex128, band Band, sampleRateHz float64) ([]complex128, error)
}

// Config holds the empirically chosen design parameters of a strategy.
type Config struct {
	Taps           int            `yaml:"taps"`
	CutoffFraction float64        `yaml:"cutoff_fraction"`
	Window         fir.WindowType `yaml:"window"`
}

// Cutoff is the prototype cutoff for band.
func (c Config) Cutoff(band Band) float64 {
	return c.CutoffFraction * band.Width()
}

func (c Config) validate() error {
	if c.Taps < 1 {
		return fmt.Errorf("taps must be >= 1, got %d: %w", c.Taps, ErrInvalidParameter)
	}
	if !(c.CutoffFraction > 0) {
		return fmt.Errorf("cutoff fraction must be > 0, got %v: %w", c.CutoffFraction, ErrInvalidParameter)
	}
	return nil
}

type Option func(c *Config)

func WithTaps(taps int) Option {
	return func(c *Config) {
		c.Taps = taps
	}
}

func WithCutoffFraction(fraction float64) Option {
	return func(c *Config) {
		c.CutoffFraction = fraction
	}
}

func WithWindow(win fir.WindowType) Option {
	return func(c *Config) {
		c.Window = win
	}
}

// WithConfig replaces every parameter; zero fields keep the strategy default.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		if cfg.Taps != 0 {
			c.Taps = cfg.Taps
		}
		if cfg.CutoffFraction != 0 {
			c.CutoffFraction = cfg.CutoffFraction
		}
		c.Window = cfg.Window
	}
}

func applyOptions(cfg Config, opts []Option) Config {
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func validateInput(samples []complex128, band Band, sampleRateHz float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples: %w", ErrInvalidParameter)
	}
	if !(sampleRateHz > 0) || math.IsInf(sampleRateHz, 1) {
		return fmt.Errorf("sample rate must be > 0, got %v: %w", sampleRateHz, ErrInvalidParameter)
	}
	return band.Validate()
}

// Strategies returns the three strategies with their default parameters.
func Strategies() []Strategy {
	return []Strategy{
		NewLowpassTuned(),
		NewHighpassTuned(),
		NewFilterShift(),
	}
}

// Names lists the registered strategy names in sorted order.
func Names() []string {
	ret := make([]string, 0, len(constructors))
	for name := range constructors {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

var constructors = map[string]func(opts ...Option) Strategy{
	LowpassTunedName:  func(opts ...Option) Strategy { return NewLowpassTuned(opts...) },
	HighpassTunedName: func(opts ...Option) Strategy { return NewHighpassTuned(opts...) },
	FilterShiftName:   func(opts ...Option) Strategy { return NewFilterShift(opts...) },
}

// Lookup builds the named strategy.
func Lookup(name string, opts ...Option) (Strategy, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
	}
	return ctor(opts...), nil
}

// BandpassViaLowpass runs LowpassTuned with its defaults.
func BandpassViaLowpass(samples []complex128, band Band, sampleRateHz float64) ([]complex128, error) {
	return NewLowpassTuned().Apply(samples, band, sampleRateHz)
}

// BandstopViaHighpass runs HighpassTuned with its defaults.
func BandstopViaHighpass(samples []complex128, band Band, sampleRateHz float64) ([]complex128, error) {
	return NewHighpassTuned().Apply(samples, band, sampleRateHz)
}

// BandpassViaFilterShift runs FilterShift with its defaults.
func BandpassViaFilterShift(samples []complex128, band Band, sampleRateHz float64) ([]complex128, error) {
	return NewFilterShift().Apply(samples, band, sampleRateHz)
}
