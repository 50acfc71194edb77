package viz

import (
	"fmt"

	"github.com/norasector/dsped/pkg/dsp/spectrum"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
)

// spectrogramGrid adapts a Spectrogram to plotter.GridXYZ: columns are
// frequency bins, rows are time frames.
type spectrogramGrid struct {
	s *spectrum.Spectrogram
}

func (g spectrogramGrid) Dims() (c, r int)   { return len(g.s.Freqs), len(g.s.Times) }
func (g spectrogramGrid) Z(c, r int) float64 { return g.s.PowerDB[r][c] }
func (g spectrogramGrid) X(c int) float64    { return g.s.Freqs[c] }
func (g spectrogramGrid) Y(r int) float64    { return g.s.Times[r] }

func spectrogramPlot(req Request) (*plot.Plot, error) {
	if req.Real != nil {
		return nil, fmt.Errorf("real spectrogram: %w", ErrUnsupportedPlot)
	}

	nfft := req.nfft()
	// at least two frames so the heat map has a time extent
	for nfft > 2 && len(req.Samples)/nfft < 2 {
		nfft /= 2
	}

	s, err := spectrum.NewSpectrogram(req.Samples, req.SampleRate, nfft)
	if err != nil {
		return nil, err
	}

	p := plotWithDefaults()
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "Time (s)"

	heat := plotter.NewHeatMap(spectrogramGrid{s: s}, palette.Heat(64, 1))
	p.Add(heat)
	return p, nil
}
