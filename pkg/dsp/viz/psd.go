package viz

import (
	"github.com/norasector/dsped/pkg/dsp/spectrum"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

func psdPlot(req Request) (*plot.Plot, error) {
	var (
		freqs, psd []float64
		err        error
	)
	if req.Real != nil {
		nfft := req.nfft()
		if nfft > len(req.Real) {
			nfft = len(req.Real)
		}
		freqs, psd, err = spectrum.Welch(req.Real, req.SampleRate, nfft)
	} else {
		freqs, psd, err = spectrum.PSD(req.Samples, req.SampleRate)
	}
	if err != nil {
		return nil, err
	}

	p := plotWithDefaults()
	p.Y.Label.Text = "Power (dB/Hz)"
	p.X.Label.Text = "Frequency (Hz)"
	p.Add(plotter.NewGrid())

	if err := plotutil.AddLines(p, "psd", xys(freqs, psd)); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

func xys(x, y []float64) plotter.XYs {
	ret := make(plotter.XYs, len(x))
	for i := range x {
		ret[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return ret
}
