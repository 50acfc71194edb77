package toolbox

import (
	"context"
	"fmt"

	"github.com/norasector/dsped/pkg/dsp/bandfilter"
	"github.com/norasector/dsped/pkg/dsp/siggen"
	"github.com/norasector/dsped/pkg/dsp/spectrum"
	"github.com/norasector/dsped/pkg/dsp/viz"
	"golang.org/x/sync/errgroup"
)

const FilterAndShiftName = "filter-and-shift"

// RejectionGuard widens the band on each side, as a fraction of its width,
// before measuring out-of-band power. It keeps the transition band out of
// the rejection figure.
const RejectionGuard = 0.625

// StrategyResult is the outcome of one strategy over the demo signal.
type StrategyResult struct {
	Strategy string
	Output   []complex128
	// PeakHz is the strongest PSD bin of Output.
	PeakHz float64
	// RejectionDB is how far the strategy lowered the power it should remove:
	// out-of-band power for bandpass strategies, in-band power for bandstop.
	RejectionDB float64
}

// FilterAndShift runs every band filter strategy over noise plus tones and
// compares them.
type FilterAndShift struct {
	t *Toolbox

	input   []complex128
	results []StrategyResult
}

func (d *FilterAndShift) Name() string { return FilterAndShiftName }

func (d *FilterAndShift) Input() []complex128 { return d.input }

// Results are ordered as bandfilter.Names.
func (d *FilterAndShift) Results() []StrategyResult { return d.results }

func (d *FilterAndShift) Run(ctx context.Context) error {
	cfg := d.t.cfg
	band, err := cfg.FilterBand()
	if err != nil {
		return err
	}
	gen := siggen.NewGenerator(cfg.SampleRate, siggen.WithSource(d.t.source))

	var noise []complex128
	err = d.t.stage(ctx, FilterAndShiftName, "generate", func() (int, error) {
		var err error
		noise, err = gen.Noise(cfg.NoisePower, cfg.NumSamples)
		if err != nil {
			return 0, err
		}
		seqs := [][]complex128{noise}
		for _, freq := range cfg.Tones {
			tone, err := gen.Tone(freq, cfg.NumSamples)
			if err != nil {
				return 0, err
			}
			seqs = append(seqs, tone)
		}
		d.input, err = siggen.Sum(seqs...)
		return len(d.input), err
	})
	if err != nil {
		return err
	}

	strategyConfigs := cfg.Strategies.ByName()
	names := bandfilter.Names()
	d.results = make([]StrategyResult, len(names))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		strategy, err := bandfilter.Lookup(name, bandfilter.WithConfig(strategyConfigs[name]))
		if err != nil {
			return err
		}

		eg.Go(func() error {
			return d.t.stage(egCtx, FilterAndShiftName, name, func() (int, error) {
				out, err := strategy.Apply(d.input, band, cfg.SampleRate)
				if err != nil {
					return 0, err
				}
				res, err := d.evaluate(name, out, band)
				if err != nil {
					return 0, err
				}
				d.results[i] = res
				return len(out), nil
			})
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, res := range d.results {
		d.t.logger.Info().
			Str("strategy", res.Strategy).
			Str("band", band.String()).
			Float64("peak_hz", res.PeakHz).
			Float64("rejection_db", res.RejectionDB).
			Msg("strategy result")
	}

	sheet := d.t.newSheet()
	sheet.Add(d.t.plotRequest(viz.PlotTypePSD, "noise", noise, cfg.SampleRate))
	sheet.Add(d.t.plotRequest(viz.PlotTypePSD, "+ tones", d.input, cfg.SampleRate))
	for _, res := range d.results {
		sheet.Add(d.t.plotRequest(viz.PlotTypePSD, fmt.Sprintf("%s %s", res.Strategy, band), res.Output, cfg.SampleRate))
	}
	if shifted, ok := d.Result(bandfilter.FilterShiftName); ok {
		sheet.Add(d.t.plotRequest(viz.PlotTypeSpectrogram, "filter-shift spectrogram", shifted.Output, cfg.SampleRate))
	}
	return d.t.emit(ctx, FilterAndShiftName, sheet)
}

// Result returns the result of the named strategy from the last run.
func (d *FilterAndShift) Result(name string) (StrategyResult, bool) {
	for _, res := range d.results {
		if res.Strategy == name {
			return res, true
		}
	}
	return StrategyResult{}, false
}

func (d *FilterAndShift) evaluate(name string, out []complex128, band bandfilter.Band) (StrategyResult, error) {
	sampleRate := d.t.cfg.SampleRate

	freqs, before, err := spectrum.Power(d.input, sampleRate)
	if err != nil {
		return StrategyResult{}, err
	}
	_, after, err := spectrum.Power(out, sampleRate)
	if err != nil {
		return StrategyResult{}, err
	}

	res := StrategyResult{Strategy: name, Output: out}
	res.PeakHz, _ = spectrum.Peak(freqs, after)

	if name == bandfilter.HighpassTunedName {
		res.RejectionDB = spectrum.DB(spectrum.BandPower(freqs, before, band.Low, band.High, true)) -
			spectrum.DB(spectrum.BandPower(freqs, after, band.Low, band.High, true))
		return res, nil
	}

	guard := RejectionGuard * band.Width()
	low, high := band.Low-guard, band.High+guard
	res.RejectionDB = spectrum.DB(spectrum.BandPower(freqs, before, low, high, false)) -
		spectrum.DB(spectrum.BandPower(freqs, after, low, high, false))
	return res, nil
}
