package toolbox

import (
	"context"

	"github.com/norasector/dsped/pkg/dsp/siggen"
	"github.com/norasector/dsped/pkg/dsp/spectrum"
	"github.com/norasector/dsped/pkg/dsp/viz"
)

const ToneName = "tone"

// Tone plots the configured tones in noise and reports the strongest bin.
type Tone struct {
	t *Toolbox

	samples []complex128
	peakHz  float64
}

func (d *Tone) Name() string { return ToneName }

// PeakHz is the frequency of the strongest PSD bin of the last run.
func (d *Tone) PeakHz() float64 { return d.peakHz }

func (d *Tone) Samples() []complex128 { return d.samples }

func (d *Tone) Run(ctx context.Context) error {
	cfg := d.t.cfg
	gen := siggen.NewGenerator(cfg.SampleRate, siggen.WithSource(d.t.source))

	err := d.t.stage(ctx, ToneName, "generate", func() (int, error) {
		var err error
		d.samples, err = gen.Composite(cfg.NoisePower, cfg.Tones, cfg.NumSamples)
		return len(d.samples), err
	})
	if err != nil {
		return err
	}

	err = d.t.stage(ctx, ToneName, "psd", func() (int, error) {
		freqs, power, err := spectrum.Power(d.samples, cfg.SampleRate)
		if err != nil {
			return 0, err
		}
		d.peakHz, _ = spectrum.Peak(freqs, power)
		return len(freqs), nil
	})
	if err != nil {
		return err
	}

	d.t.logger.Info().
		Float64("sample_rate", cfg.SampleRate).
		Int("samples", len(d.samples)).
		Float64("noise_power", cfg.NoisePower).
		Float64("peak_hz", d.peakHz).
		Msg("generated tones")

	sheet := d.t.newSheet()
	sheet.Add(d.t.plotRequest(viz.PlotTypePSD, "tones + noise", d.samples, cfg.SampleRate))
	sheet.Add(d.t.plotRequest(viz.PlotTypeSpectrogram, "spectrogram", d.samples, cfg.SampleRate))
	return d.t.emit(ctx, ToneName, sheet)
}
