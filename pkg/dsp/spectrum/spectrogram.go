package spectrum

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"
	"github.com/norasector/dsped/pkg/dsp"
)

// Spectrogram is a sequence of short-time power spectra.
type Spectrogram struct {
	// Freqs is the centred frequency axis shared by every row.
	Freqs []float64
	// Times holds the start time in seconds of each row.
	Times []float64
	// PowerDB[row][bin] in dB.
	PowerDB [][]float64
}

// NewSpectrogram slices samples into non-overlapping Hann-windowed frames of
// nfft samples; a trailing partial frame is dropped.
func NewSpectrogram(samples []complex128, sampleRateHz float64, nfft int) (*Spectrogram, error) {
	if nfft < 2 {
		return nil, fmt.Errorf("spectrogram nfft must be >= 2, got %d: %w", nfft, dsp.ErrInvalidParameter)
	}
	if !(sampleRateHz > 0) {
		return nil, fmt.Errorf("sample rate must be > 0, got %v: %w", sampleRateHz, dsp.ErrInvalidParameter)
	}
	rows := len(samples) / nfft
	if rows == 0 {
		return nil, fmt.Errorf("%d samples shorter than nfft %d: %w", len(samples), nfft, dsp.ErrInvalidParameter)
	}

	win := window.Hann(nfft)
	var winPower float64
	for _, w := range win {
		winPower += w * w
	}

	ret := &Spectrogram{
		Freqs:   Freqs(nfft, sampleRateHz),
		Times:   make([]float64, rows),
		PowerDB: make([][]float64, rows),
	}

	frame := make([]complex128, nfft)
	for r := 0; r < rows; r++ {
		start := r * nfft
		for i := 0; i < nfft; i++ {
			frame[i] = samples[start+i] * complex(win[i], 0)
		}

		coeffs := fft.FFT(frame)
		raw := make([]float64, nfft)
		for k, c := range coeffs {
			raw[k] = DB((real(c)*real(c) + imag(c)*imag(c)) / (winPower * sampleRateHz))
		}

		ret.Times[r] = float64(start) / sampleRateHz
		ret.PowerDB[r] = Shift(raw)
	}

	return ret, nil
}

// Welch estimates the one-sided PSD of a real signal with half-overlapping
// Hann segments, returned in dB.
func Welch(x []float64, sampleRateHz float64, nfft int) (freqs, psdDB []float64, err error) {
	if len(x) < nfft || nfft < 2 {
		return nil, nil, fmt.Errorf("welch needs at least nfft=%d samples, got %d: %w", nfft, len(x), dsp.ErrInvalidParameter)
	}

	pxx, freqs := spectral.Pwelch(x, sampleRateHz, &spectral.PwelchOptions{
		NFFT:     nfft,
		Noverlap: nfft / 2,
		Window:   window.Hann,
	})

	psdDB = make([]float64, len(pxx))
	for i, p := range pxx {
		psdDB[i] = DB(p)
	}
	return freqs, psdDB, nil
}
