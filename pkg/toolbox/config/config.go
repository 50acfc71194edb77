// Package config holds the YAML configuration of the dsped demos.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/norasector/dsped/pkg/dsp/bandfilter"
	"github.com/norasector/dsped/pkg/dsp/deemphasis"
	"github.com/norasector/dsped/pkg/dsp/filters/fir"
	"github.com/norasector/dsped/pkg/iqfile"
	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	SampleRate     float64        `yaml:"sample_rate"`
	NumSamples     int            `yaml:"num_samples"`
	NoisePower     float64        `yaml:"noise_power"`
	Tones          []float64      `yaml:"tones,flow"`
	Band           []float64      `yaml:"band,flow"`
	Seed           uint64         `yaml:"seed"`
	Strategies     Strategies     `yaml:"strategies"`
	Plot           Plot           `yaml:"plot"`
	OutputDir      string         `yaml:"output_dir"`
	ExtractChannel ExtractChannel `yaml:"extract_channel"`
	ExtractAudio   ExtractAudio   `yaml:"extract_audio"`
	VizServer      VizServer      `yaml:"viz_server"`
	InfluxDB       InfluxDB       `yaml:"influxdb"`
	LogLevel       string         `yaml:"log_level"`
}

type Strategies struct {
	LowpassTuned  bandfilter.Config `yaml:"lowpass_tuned"`
	HighpassTuned bandfilter.Config `yaml:"highpass_tuned"`
	FilterShift   bandfilter.Config `yaml:"filter_shift"`
}

// ByName maps strategy names to their configured parameters.
func (s Strategies) ByName() map[string]bandfilter.Config {
	return map[string]bandfilter.Config{
		bandfilter.LowpassTunedName:  s.LowpassTuned,
		bandfilter.HighpassTunedName: s.HighpassTuned,
		bandfilter.FilterShiftName:   s.FilterShift,
	}
}

type Plot struct {
	Cols     int     `yaml:"cols"`
	NFFT     int     `yaml:"nfft"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
}

type ExtractChannel struct {
	Input        string        `yaml:"input"`
	Format       iqfile.Format `yaml:"format"`
	SampleRate   float64       `yaml:"sample_rate"`
	TuneHz       float64       `yaml:"tune_hz"`
	ChannelBW    float64       `yaml:"channel_bw"`
	TransitionHz float64       `yaml:"transition_hz"`
	Output       string        `yaml:"output"`
}

type ExtractAudio struct {
	Input      string        `yaml:"input"`
	Format     iqfile.Format `yaml:"format"`
	SampleRate float64       `yaml:"sample_rate"`
	Tau        time.Duration `yaml:"tau"`
	AudioRate  float64       `yaml:"audio_rate"`
	AudioPeak  float64       `yaml:"audio_peak"`
	Output     string        `yaml:"output"`
}

type VizServer struct {
	Port           int           `yaml:"port"`
	UpdateInterval time.Duration `yaml:"update_interval_ms"`
}

type InfluxDB struct {
	Host         string `yaml:"host"`
	Organization string `yaml:"organization"`
	Bucket       string `yaml:"bucket"`
}

// Default returns the demo configuration: 8192 samples at 3 kHz of noise
// plus tones at 900, -1250 and 150 Hz, isolating 860-940 Hz.
func Default() Config {
	return Config{
		SampleRate: 3000,
		NumSamples: 8192,
		NoisePower: 2,
		Tones:      []float64{900, -1250, 150},
		Band:       []float64{860, 940},
		Strategies: Strategies{
			LowpassTuned:  bandfilter.DefaultLowpassTuned,
			HighpassTuned: bandfilter.DefaultHighpassTuned,
			FilterShift:   bandfilter.DefaultFilterShift,
		},
		Plot: Plot{
			Cols:     4,
			NFFT:     2048,
			WidthIn:  16,
			HeightIn: 9,
		},
		OutputDir: "out",
		ExtractChannel: ExtractChannel{
			Input:        "fm_radio.cs8",
			Format:       iqfile.CS8,
			SampleRate:   1200000,
			TuneHz:       250000,
			ChannelBW:    100000,
			TransitionHz: 20000,
			Output:       "fm_channel.cf64",
		},
		ExtractAudio: ExtractAudio{
			Input:      "out/fm_channel.cf64",
			Format:     iqfile.CF64,
			SampleRate: 100000,
			Tau:        deemphasis.TauUS,
			AudioRate:  48000,
			AudioPeak:  10000,
			Output:     "fm_audio.s16",
		},
		VizServer: VizServer{
			UpdateInterval: time.Second,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	contents, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshaling %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// FilterBand returns the configured band.
func (c Config) FilterBand() (bandfilter.Band, error) {
	if len(c.Band) != 2 {
		return bandfilter.Band{}, fmt.Errorf("band needs [low, high], got %v: %w", c.Band, ErrInvalidConfig)
	}
	b := bandfilter.NewBand(c.Band[0], c.Band[1])
	if err := b.Validate(); err != nil {
		return b, fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	return b, nil
}

func (c Config) Validate() error {
	if !(c.SampleRate > 0) {
		return fmt.Errorf("sample_rate must be > 0: %w", ErrInvalidConfig)
	}
	if c.NumSamples < 1 {
		return fmt.Errorf("num_samples must be >= 1: %w", ErrInvalidConfig)
	}
	if c.NoisePower < 0 {
		return fmt.Errorf("noise_power must be >= 0: %w", ErrInvalidConfig)
	}
	if _, err := c.FilterBand(); err != nil {
		return err
	}
	for name, s := range c.Strategies.ByName() {
		if s.Taps < 1 || !(s.CutoffFraction > 0) {
			return fmt.Errorf("strategy %s needs taps >= 1 and cutoff_fraction > 0: %w", name, ErrInvalidConfig)
		}
	}
	if c.Plot.Cols < 1 || c.Plot.NFFT < 2 {
		return fmt.Errorf("plot needs cols >= 1 and nfft >= 2: %w", ErrInvalidConfig)
	}
	if !(c.Plot.WidthIn > 0) || !(c.Plot.HeightIn > 0) {
		return fmt.Errorf("plot width_in and height_in must be > 0: %w", ErrInvalidConfig)
	}
	if c.VizServer.Port < 0 {
		return fmt.Errorf("viz_server port must be >= 0: %w", ErrInvalidConfig)
	}
	return nil
}

// WindowNames lists the accepted window spellings.
func WindowNames() []string {
	return []string{
		fir.Hamming.String(),
		fir.Hann.String(),
		fir.Blackman.String(),
		fir.BlackmanHarris.String(),
		fir.Rectangular.String(),
	}
}
