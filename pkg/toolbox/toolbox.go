// Package toolbox runs the dsped demos: synthetic band filtering and FM
// channel and audio extraction from captures.
package toolbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/influxdata/influxdb-client-go/api"
	"github.com/norasector/dsped/pkg/dsp/siggen"
	"github.com/norasector/dsped/pkg/dsp/viz"
	"github.com/norasector/dsped/pkg/toolbox/config"
	"github.com/norasector/dsped/pkg/util"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot/vg"
)

var ErrUnknownDemo = errors.New("unknown demo")

const stageMeasurement = "toolbox.stage"

// Demo is one runnable toolbox program.
type Demo interface {
	Name() string
	Run(ctx context.Context) error
}

type Toolbox struct {
	cfg       config.Config
	writeAPI  api.WriteAPI
	vizServer *viz.Server
	logger    zerolog.Logger
	outputDir string
	source    siggen.NormalSource
}

type ToolboxOption func(t *Toolbox) error

func WithInfluxDB(influxClient api.WriteAPI) ToolboxOption {
	return func(t *Toolbox) error {
		t.writeAPI = influxClient
		return nil
	}
}

func WithImageServer(vizServer *viz.Server) ToolboxOption {
	return func(t *Toolbox) error {
		t.vizServer = vizServer
		return nil
	}
}

func WithLogger(logger zerolog.Logger) ToolboxOption {
	return func(t *Toolbox) error {
		t.logger = logger
		return nil
	}
}

// WithOutputDir overrides output_dir from the config. Plots and written
// files land there.
func WithOutputDir(dir string) ToolboxOption {
	return func(t *Toolbox) error {
		t.outputDir = dir
		return nil
	}
}

// WithSource replaces the noise source. Without it the configured seed
// decides between a seeded and a clock-seeded source.
func WithSource(src siggen.NormalSource) ToolboxOption {
	return func(t *Toolbox) error {
		if src == nil {
			return fmt.Errorf("nil noise source")
		}
		t.source = src
		return nil
	}
}

func NewToolbox(cfg config.Config, opts ...ToolboxOption) (*Toolbox, error) {
	t := &Toolbox{
		cfg:       cfg,
		writeAPI:  &util.MockWriteAPI{}, // overwritten with option
		logger:    log.Logger,
		outputDir: cfg.OutputDir,
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if t.source == nil {
		if cfg.Seed != 0 {
			t.source = siggen.NewSeededSource(cfg.Seed)
		} else {
			t.source = siggen.NewNormalSource()
		}
	}

	return t, nil
}

var demos = map[string]func(t *Toolbox) Demo{
	ToneName:           func(t *Toolbox) Demo { return &Tone{t: t} },
	FilterAndShiftName: func(t *Toolbox) Demo { return &FilterAndShift{t: t} },
	ExtractChannelName: func(t *Toolbox) Demo { return &ExtractChannel{t: t} },
	ExtractAudioName:   func(t *Toolbox) Demo { return &ExtractAudio{t: t} },
}

// DemoNames lists the registered demos in sorted order.
func DemoNames() []string {
	ret := make([]string, 0, len(demos))
	for name := range demos {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

func (t *Toolbox) Demo(name string) (Demo, error) {
	ctor, ok := demos[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownDemo)
	}
	return ctor(t), nil
}

// New builds the named demo on a fresh Toolbox.
func New(cfg config.Config, name string, opts ...ToolboxOption) (Demo, error) {
	t, err := NewToolbox(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return t.Demo(name)
}

// stage times op as one step of demo and records it.
func (t *Toolbox) stage(ctx context.Context, demo, stage string, op func() (int, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := util.TimeStage(t.writeAPI, stageMeasurement, map[string]string{
		"demo":  demo,
		"stage": stage,
	}, op)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", demo, stage, err)
	}

	t.logger.Debug().Str("demo", demo).Str("stage", stage).Msg("stage complete")
	return nil
}

// outputPath resolves name against the output directory and creates its
// parent directory.
func (t *Toolbox) outputPath(name string) (string, error) {
	path := name
	if !filepath.IsAbs(name) && t.outputDir != "" {
		path = filepath.Join(t.outputDir, name)
	}
	return path, os.MkdirAll(filepath.Dir(path), 0o755)
}

func (t *Toolbox) newSheet() *viz.Sheet {
	return viz.NewSheet(t.cfg.Plot.Cols)
}

// emit renders sheet, writes it to <output dir>/<demo>.png and publishes it to
// the image server when one is attached.
func (t *Toolbox) emit(ctx context.Context, demo string, sheet *viz.Sheet) error {
	return t.stage(ctx, demo, "plot", func() (int, error) {
		width := vg.Length(t.cfg.Plot.WidthIn) * vg.Inch
		height := vg.Length(t.cfg.Plot.HeightIn) * vg.Inch

		png, err := sheet.PNG(width, height)
		if err != nil {
			return 0, err
		}

		if t.outputDir != "" {
			path, err := t.outputPath(demo + ".png")
			if err != nil {
				return 0, err
			}
			if err := os.WriteFile(path, png, 0o644); err != nil {
				return 0, err
			}
			t.logger.Info().Str("demo", demo).Str("path", path).Int("plots", sheet.Len()).Msg("wrote plots")
		}

		if t.vizServer != nil {
			t.vizServer.Publish(demo, "sheet", png)
		}
		return sheet.Len(), nil
	})
}

func (t *Toolbox) plotRequest(typ viz.PlotType, title string, samples []complex128, sampleRate float64) viz.Request {
	return viz.Request{
		Type:       typ,
		Title:      title,
		Samples:    samples,
		SampleRate: sampleRate,
		NFFT:       t.cfg.Plot.NFFT,
	}
}
