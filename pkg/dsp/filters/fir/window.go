package fir

import (
	"fmt"
	"math"
	"strings"
)

type WindowFunc func(int) []float64

type WindowType int

const (
	Hamming        WindowType = 0
	Hann           WindowType = 1
	BlackmanHarris WindowType = 2
	Blackman       WindowType = 3
	Rectangular    WindowType = 4
)

var (
	windowMaxAttenuation = map[WindowType]int{
		Hamming:        53,
		Hann:           44,
		BlackmanHarris: 92,
		Blackman:       74,
		Rectangular:    21,
	}
	windowFuncs = map[WindowType]WindowFunc{
		Hamming:        HammingWindow,
		Hann:           HannWindow,
		Blackman:       BlackmanWindow,
		BlackmanHarris: BlackmanHarrisWindow,
		Rectangular:    RectangularWindow,
	}
	windowNames = map[WindowType]string{
		Hamming:        "hamming",
		Hann:           "hann",
		BlackmanHarris: "blackmanharris",
		Blackman:       "blackman",
		Rectangular:    "rectangular",
	}
)

func (w WindowType) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("window(%d)", int(w))
}

// Attenuation is the approximate stopband attenuation in dB a windowed-sinc
// design reaches with this window.
func (w WindowType) Attenuation() int {
	return windowMaxAttenuation[w]
}

// Func returns the window generator, falling back to Hamming for unknown types.
func (w WindowType) Func() WindowFunc {
	if f, ok := windowFuncs[w]; ok {
		return f
	}
	return HammingWindow
}

func ParseWindowType(s string) (WindowType, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "")
	name = strings.ReplaceAll(name, "_", "")
	for w, n := range windowNames {
		if n == name {
			return w, nil
		}
	}
	return Hamming, fmt.Errorf("unknown window type %q", s)
}

func (w *WindowType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseWindowType(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func (w WindowType) MarshalYAML() (interface{}, error) {
	return w.String(), nil
}

// cosWindow evaluates the symmetric generalised cosine window
// c0 - c1·cos(2πi/M) + c2·cos(4πi/M) - c3·cos(6πi/M) ...
func cosWindow(ntaps int, coeffs ...float64) []float64 {
	ret := make([]float64, ntaps)
	if ntaps == 1 {
		ret[0] = 1
		return ret
	}
	M := float64(ntaps - 1)

	for i := 0; i < ntaps; i++ {
		fi := float64(i)
		var v float64
		sign := 1.0
		for k, c := range coeffs {
			v += sign * c * math.Cos(2*math.Pi*float64(k)*fi/M)
			sign = -sign
		}
		ret[i] = v
	}
	return ret
}

func BlackmanHarrisWindow(ntaps int) []float64 {
	return cosWindow(ntaps, 0.35875, 0.48829, 0.14128, 0.01168)
}

func BlackmanWindow(ntaps int) []float64 {
	return cosWindow(ntaps, 0.42, 0.5, 0.08)
}

func HammingWindow(ntaps int) []float64 {
	return cosWindow(ntaps, 0.54, 0.46)
}

func HannWindow(ntaps int) []float64 {
	return cosWindow(ntaps, 0.5, 0.5)
}

func RectangularWindow(ntaps int) []float64 {
	ret := make([]float64, ntaps)
	for i := range ret {
		ret[i] = 1
	}
	return ret
}
