// Package iqfile reads and writes raw interleaved IQ capture files.
package iqfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

var (
	ErrUnknownFormat = errors.New("iqfile: unknown sample format")
	ErrShortSample   = errors.New("iqfile: trailing partial sample")
)

// Format is the on-disk encoding of one IQ sample.
type Format int

const (
	// CS8 is interleaved signed 8-bit I and Q, kept in raw integer units.
	CS8 Format = iota
	// CF32 is interleaved little-endian float32.
	CF32
	// CF64 is interleaved little-endian float64, i.e. complex128.
	CF64
)

var formatNames = map[Format]string{
	CS8:  "cs8",
	CF32: "cf32",
	CF64: "cf64",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// SampleSize is the number of bytes per IQ pair.
func (f Format) SampleSize() int {
	switch f {
	case CS8:
		return 2
	case CF32:
		return 8
	case CF64:
		return 16
	default:
		return 0
	}
}

func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "i8", "int8":
		return CS8, nil
	case "complex64":
		return CF32, nil
	case "complex128", "f64":
		return CF64, nil
	}
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return CS8, fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

func (f *Format) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Read decodes every sample in r.
func Read(r io.Reader, f Format) ([]complex128, error) {
	size := f.SampleSize()
	if size == 0 {
		return nil, fmt.Errorf("%v: %w", f, ErrUnknownFormat)
	}

	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%d bytes is not a multiple of %d: %w", len(data), size, ErrShortSample)
	}

	ret := make([]complex128, len(data)/size)
	for i := range ret {
		b := data[i*size : (i+1)*size]
		switch f {
		case CS8:
			ret[i] = complex(float64(int8(b[0])), float64(int8(b[1])))
		case CF32:
			re := math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))
			ret[i] = complex(float64(re), float64(im))
		case CF64:
			re := math.Float64frombits(binary.LittleEndian.Uint64(b[0:8]))
			im := math.Float64frombits(binary.LittleEndian.Uint64(b[8:16]))
			ret[i] = complex(re, im)
		}
	}
	return ret, nil
}

func ReadFile(path string, f Format) ([]complex128, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file, f)
}

// Write encodes samples. CS8 rounds to the nearest integer and saturates.
func Write(w io.Writer, samples []complex128, f Format) error {
	size := f.SampleSize()
	if size == 0 {
		return fmt.Errorf("%v: %w", f, ErrUnknownFormat)
	}

	bw := bufio.NewWriter(w)
	buf := make([]byte, size)
	for _, s := range samples {
		switch f {
		case CS8:
			buf[0] = byte(clampInt8(real(s)))
			buf[1] = byte(clampInt8(imag(s)))
		case CF32:
			binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(real(s))))
			binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(imag(s))))
		case CF64:
			binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(real(s)))
			binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(imag(s)))
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func WriteFile(path string, samples []complex128, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(file, samples, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteInt16 writes mono audio as little-endian int16, truncating toward zero
// and saturating at the int16 range.
func WriteInt16(w io.Writer, samples []float64) error {
	out := make([]int16, len(samples))
	for i, s := range samples {
		switch {
		case s >= math.MaxInt16:
			out[i] = math.MaxInt16
		case s <= math.MinInt16:
			out[i] = math.MinInt16
		default:
			out[i] = int16(s)
		}
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, out); err != nil {
		return err
	}
	return bw.Flush()
}

func WriteInt16File(path string, samples []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteInt16(file, samples); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func clampInt8(v float64) int8 {
	r := math.Round(v)
	switch {
	case r > math.MaxInt8:
		return math.MaxInt8
	case r < math.MinInt8:
		return math.MinInt8
	case math.IsNaN(r):
		return 0
	default:
		return int8(r)
	}
}
