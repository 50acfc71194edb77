// Package viz renders PSD, spectrogram and time-domain plots of sample
// sequences and serves them over HTTP.
package viz

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

var ErrUnsupportedPlot = errors.New("unsupported plot type")

const DefaultNFFT = 2048

type PlotType int

const (
	PlotTypePSD PlotType = iota
	PlotTypeSpectrogram
	PlotTypeTime
)

func (t PlotType) String() string {
	switch t {
	case PlotTypePSD:
		return "psd"
	case PlotTypeSpectrogram:
		return "spectrogram"
	case PlotTypeTime:
		return "time"
	default:
		return fmt.Sprintf("plottype(%d)", int(t))
	}
}

// Request describes a single plot. Real is used instead of Samples when set.
type Request struct {
	Type       PlotType
	Title      string
	Samples    []complex128
	Real       []float64
	SampleRate float64
	NFFT       int
}

func (r Request) nfft() int {
	if r.NFFT > 0 {
		return r.NFFT
	}
	return DefaultNFFT
}

func (r Request) length() int {
	if r.Real != nil {
		return len(r.Real)
	}
	return len(r.Samples)
}

type PlotOptions func(p *plot.Plot)

func plotWithDefaults() *plot.Plot {

	p := plot.New()
	p.BackgroundColor = color.Black
	p.Title.TextStyle.Color = color.White
	p.Y.Label.TextStyle.Color = color.White
	p.Y.Color = color.White
	p.X.Label.TextStyle.Color = color.White
	p.X.Color = color.White
	p.Legend.TextStyle.Color = color.White
	p.X.Tick.Color = color.White
	p.Y.Tick.Color = color.White
	p.X.Tick.Label.Color = color.White
	p.Y.Tick.Label.Color = color.White

	return p
}

// NewPlot builds the plot for req without rendering it.
func NewPlot(req Request, opts ...PlotOptions) (*plot.Plot, error) {
	if req.length() == 0 {
		return nil, fmt.Errorf("%s plot %q has no samples", req.Type, req.Title)
	}
	if !(req.SampleRate > 0) {
		return nil, fmt.Errorf("%s plot %q needs a positive sample rate", req.Type, req.Title)
	}

	var (
		p   *plot.Plot
		err error
	)
	switch req.Type {
	case PlotTypePSD:
		p, err = psdPlot(req)
	case PlotTypeSpectrogram:
		p, err = spectrogramPlot(req)
	case PlotTypeTime:
		p, err = timePlot(req)
	default:
		return nil, fmt.Errorf("%v: %w", req.Type, ErrUnsupportedPlot)
	}
	if err != nil {
		return nil, err
	}

	p.Title.Text = req.Title
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Image renders req alone as a PNG.
func Image(req Request, width, height vg.Length, opts ...PlotOptions) ([]byte, error) {
	p, err := NewPlot(req, opts...)
	if err != nil {
		return nil, err
	}

	var imageData bytes.Buffer
	w, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, err
	}
	if _, err := w.WriteTo(&imageData); err != nil {
		return nil, err
	}
	return imageData.Bytes(), nil
}
