package viz

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

func timePlot(req Request) (*plot.Plot, error) {
	p := plotWithDefaults()
	p.Y.Label.Text = "Amplitude"
	p.X.Label.Text = "t (s)"
	p.Add(plotter.NewGrid())

	n := req.length()
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / req.SampleRate
	}

	if req.Real != nil {
		return p, plotutil.AddLines(p, "f(t)", xys(t, req.Real))
	}

	re := make([]float64, n)
	im := make([]float64, n)
	for i, s := range req.Samples {
		re[i] = real(s)
		im[i] = imag(s)
	}
	return p, plotutil.AddLines(p, "I", xys(t, re), "Q", xys(t, im))
}
