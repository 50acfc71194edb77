package toolbox

import (
	"context"
	"fmt"
	"math"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/norasector/dsped/pkg/dsp/conv"
	"github.com/norasector/dsped/pkg/dsp/deemphasis"
	"github.com/norasector/dsped/pkg/dsp/demodulators/quad"
	"github.com/norasector/dsped/pkg/dsp/filters/fir"
	"github.com/norasector/dsped/pkg/dsp/mixer"
	"github.com/norasector/dsped/pkg/dsp/processor"
	"github.com/norasector/dsped/pkg/dsp/resample"
	"github.com/norasector/dsped/pkg/dsp/viz"
	"github.com/norasector/dsped/pkg/iqfile"
)

const (
	ExtractChannelName = "extract-channel"
	ExtractAudioName   = "extract-audio"

	pipelineMeasurement = "toolbox.pipeline"

	// decimation filters get this many taps per unit of decimation factor
	decimationTapsPerFactor = 10
	// the stateful tuner and discriminator consume captures in blocks of this size
	blockSize = 1 << 14
)

// ExtractChannel bandpasses one channel out of a wideband capture, then
// tunes it to baseband and decimates it.
type ExtractChannel struct {
	t *Toolbox

	channel    []complex128
	sampleRate float64
}

func (d *ExtractChannel) Name() string { return ExtractChannelName }

// Channel returns the decimated channel and its sample rate.
func (d *ExtractChannel) Channel() ([]complex128, float64) { return d.channel, d.sampleRate }

func (d *ExtractChannel) pipeline() (*processor.Processor, error) {
	cfg := d.t.cfg.ExtractChannel
	if !(cfg.SampleRate > 0) || !(cfg.ChannelBW > 0) || cfg.ChannelBW > cfg.SampleRate {
		return nil, fmt.Errorf("%s: channel_bw %v must be within (0, sample_rate %v]", ExtractChannelName, cfg.ChannelBW, cfg.SampleRate)
	}
	factor := int(math.Floor(cfg.SampleRate / cfg.ChannelBW))
	d.sampleRate = cfg.SampleRate / float64(factor)

	low, high := cfg.TuneHz-cfg.ChannelBW/2, cfg.TuneHz+cfg.ChannelBW/2
	taps, err := fir.MakeComplexBandPass(1, cfg.SampleRate, low, high, cfg.TransitionHz, fir.Hamming)
	if err != nil {
		return nil, fmt.Errorf("%s: channel filter: %w", ExtractChannelName, err)
	}
	d.t.logger.Debug().Int("taps", len(taps)).Float64("low_hz", low).Float64("high_hz", high).Int("factor", factor).Msg("channel filter")

	plots := processor.WithPlots(viz.PlotTypeSpectrogram, viz.PlotTypePSD)
	p := processor.NewProcessor(ExtractChannelName, "input file", viz.PlotTypeSpectrogram, viz.PlotTypePSD)
	p.AddBlock(processor.NewDSPWorkerCC("filter", "filtered", cfg.SampleRate, cfg.SampleRate,
		processor.CCFunc(func(in []complex128) ([]complex128, error) {
			return conv.Same(in, taps), nil
		}), plots))
	p.AddBlock(processor.NewDSPWorkerCC("tune", "tuned", cfg.SampleRate, cfg.SampleRate,
		processor.CCFunc(func(in []complex128) ([]complex128, error) {
			return mixer.TuneBlocks(in, -cfg.TuneHz, cfg.SampleRate, blockSize)
		}), plots))
	p.AddBlock(processor.NewDSPWorkerCC("decimate", "decimated", cfg.SampleRate, d.sampleRate,
		processor.CCFunc(func(in []complex128) ([]complex128, error) {
			return resample.Decimate(in, cfg.SampleRate, factor, decimationTapsPerFactor*factor+1, fir.Hamming)
		}), plots))

	return p, p.Initialize()
}

func (d *ExtractChannel) Run(ctx context.Context) error {
	cfg := d.t.cfg.ExtractChannel

	p, err := d.pipeline()
	if err != nil {
		return err
	}

	var raw []complex128
	err = d.t.stage(ctx, ExtractChannelName, "read", func() (int, error) {
		var err error
		raw, err = iqfile.ReadFile(cfg.Input, cfg.Format)
		return len(raw), err
	})
	if err != nil {
		return err
	}
	d.t.logger.Info().Str("input", cfg.Input).Str("format", cfg.Format.String()).Int("samples", len(raw)).Msg("read capture")

	err = d.t.stage(ctx, ExtractChannelName, "process", func() (int, error) {
		metrics := map[string]interface{}{}
		var err error
		d.channel, err = p.ProcessComplexToComplex(raw, metrics)
		d.t.writePipelineMetrics(ExtractChannelName, metrics)
		return len(d.channel), err
	})
	if err != nil {
		return err
	}

	var out string
	err = d.t.stage(ctx, ExtractChannelName, "write", func() (int, error) {
		var err error
		if out, err = d.t.outputPath(cfg.Output); err != nil {
			return 0, err
		}
		return len(d.channel), iqfile.WriteFile(out, d.channel, iqfile.CF64)
	})
	if err != nil {
		return err
	}
	d.t.logger.Info().
		Str("output", out).
		Float64("channel_rate", d.sampleRate).
		Int("samples", len(d.channel)).
		Msg("wrote channel")

	sheet := d.t.newSheet()
	for _, req := range p.PlotRequests(d.t.cfg.Plot.NFFT) {
		sheet.Add(req)
	}
	return d.t.emit(ctx, ExtractChannelName, sheet)
}

// ExtractAudio demodulates a baseband FM channel to mono int16 audio.
type ExtractAudio struct {
	t *Toolbox

	audio []float64
}

func (d *ExtractAudio) Name() string { return ExtractAudioName }

// Audio returns the scaled audio of the last run before int16 conversion.
func (d *ExtractAudio) Audio() []float64 { return d.audio }

// pipeline builds demod, deemphasis, resample and scaling blocks. The output
// length follows the channel length, numChannel, rather than the demodulated
// length.
func (d *ExtractAudio) pipeline(numChannel int) (*processor.Processor, error) {
	cfg := d.t.cfg.ExtractAudio
	if !(cfg.SampleRate > 0) || !(cfg.AudioRate > 0) {
		return nil, fmt.Errorf("%s: sample_rate %v and audio_rate %v must be > 0", ExtractAudioName, cfg.SampleRate, cfg.AudioRate)
	}

	p := processor.NewProcessor(ExtractAudioName, "input file", viz.PlotTypeSpectrogram, viz.PlotTypePSD)
	p.AddBlock(processor.NewDSPWorkerCF("demod", "FM demod", cfg.SampleRate, cfg.SampleRate,
		processor.CFFunc(func(in []complex128) ([]float64, error) {
			if len(in) < 2 {
				return nil, fmt.Errorf("%d samples is too short to demodulate", len(in))
			}
			return quad.DemodBlocks(in, 1, blockSize), nil
		}), processor.WithPlots(viz.PlotTypePSD)))
	p.AddBlock(processor.NewDSPWorkerFF("deemphasis", "FM deemphasis", cfg.SampleRate, cfg.SampleRate,
		processor.FFFunc(func(in []float64) ([]float64, error) {
			return deemphasis.Filter(in, cfg.SampleRate, cfg.Tau)
		})))
	p.AddBlock(processor.NewDSPWorkerFF("resample", "resampled", cfg.SampleRate, cfg.AudioRate,
		processor.FFFunc(func(in []float64) ([]float64, error) {
			return resample.FFT(in, resample.OutputLength(numChannel, cfg.SampleRate, cfg.AudioRate))
		})))
	p.AddBlock(processor.NewDSPWorkerFF("scale", "audio", cfg.AudioRate, cfg.AudioRate,
		processor.FFFunc(func(in []float64) ([]float64, error) {
			return resample.ScalePeak(in, cfg.AudioPeak), nil
		}), processor.WithPlots(viz.PlotTypePSD)))

	return p, p.Initialize()
}

func (d *ExtractAudio) Run(ctx context.Context) error {
	cfg := d.t.cfg.ExtractAudio

	var channel []complex128
	err := d.t.stage(ctx, ExtractAudioName, "read", func() (int, error) {
		var err error
		channel, err = iqfile.ReadFile(cfg.Input, cfg.Format)
		return len(channel), err
	})
	if err != nil {
		return err
	}

	p, err := d.pipeline(len(channel))
	if err != nil {
		return err
	}

	err = d.t.stage(ctx, ExtractAudioName, "process", func() (int, error) {
		metrics := map[string]interface{}{}
		var err error
		d.audio, err = p.ProcessComplexToFloat(channel, metrics)
		d.t.writePipelineMetrics(ExtractAudioName, metrics)
		return len(d.audio), err
	})
	if err != nil {
		return err
	}

	var out string
	err = d.t.stage(ctx, ExtractAudioName, "write", func() (int, error) {
		var err error
		if out, err = d.t.outputPath(cfg.Output); err != nil {
			return 0, err
		}
		return len(d.audio), iqfile.WriteInt16File(out, d.audio)
	})
	if err != nil {
		return err
	}
	d.t.logger.Info().
		Str("output", out).
		Float64("audio_rate", cfg.AudioRate).
		Int("samples", len(d.audio)).
		Msg("wrote audio")

	sheet := d.t.newSheet()
	for _, req := range p.PlotRequests(d.t.cfg.Plot.NFFT) {
		sheet.Add(req)
	}
	return d.t.emit(ctx, ExtractAudioName, sheet)
}

func (t *Toolbox) writePipelineMetrics(demo string, metrics map[string]interface{}) {
	if len(metrics) == 0 {
		return
	}
	t.writeAPI.WritePoint(influxdb2.NewPoint(pipelineMeasurement,
		map[string]string{
			"demo": demo,
		},
		metrics, time.Now()))
}
