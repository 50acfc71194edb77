package processor

import "github.com/norasector/dsped/pkg/dsp/viz"

type DataType int

const (
	DataTypeComplex DataType = iota
	DataTypeFloat
)

func (d DataType) String() string {
	switch d {
	case DataTypeComplex:
		return "complex"
	case DataTypeFloat:
		return "float"
	default:
		return "unknown"
	}
}

type DSPWorker struct {
	Name        string
	DisplayName string
	InputRate   float64
	OutputRate  float64

	inputDataType  DataType
	outputDataType DataType

	ccWorker CCWorker
	cfWorker CFWorker
	ffWorker FFWorker

	plotTypes []viz.PlotType

	cOutput []complex128
	fOutput []float64
}

type DSPWorkerOption func(r *DSPWorker)

// WithPlots adds the block's output to the processor's sheet, once per plot
// type.
func WithPlots(plotTypes ...viz.PlotType) DSPWorkerOption {
	return func(r *DSPWorker) {
		r.plotTypes = append(r.plotTypes, plotTypes...)
	}
}

func baseWorker(name, displayName string, inputRate, outputRate float64) *DSPWorker {
	return &DSPWorker{
		Name:        name,
		DisplayName: displayName,
		InputRate:   inputRate,
		OutputRate:  outputRate,
	}
}

func NewDSPWorkerCC(name, displayName string, inputRate, outputRate float64, worker CCWorker, opts ...DSPWorkerOption) *DSPWorker {
	ret := baseWorker(name, displayName, inputRate, outputRate)
	ret.inputDataType = DataTypeComplex
	ret.outputDataType = DataTypeComplex
	ret.ccWorker = worker

	for _, opt := range opts {
		opt(ret)
	}

	return ret
}

func NewDSPWorkerCF(name, displayName string, inputRate, outputRate float64, worker CFWorker, opts ...DSPWorkerOption) *DSPWorker {
	ret := baseWorker(name, displayName, inputRate, outputRate)
	ret.inputDataType = DataTypeComplex
	ret.outputDataType = DataTypeFloat
	ret.cfWorker = worker

	for _, opt := range opts {
		opt(ret)
	}

	return ret
}

func NewDSPWorkerFF(name, displayName string, inputRate, outputRate float64, worker FFWorker, opts ...DSPWorkerOption) *DSPWorker {
	ret := baseWorker(name, displayName, inputRate, outputRate)
	ret.inputDataType = DataTypeFloat
	ret.outputDataType = DataTypeFloat
	ret.ffWorker = worker

	for _, opt := range opts {
		opt(ret)
	}

	return ret
}

// Complex in, complex out
type CCWorker interface {
	Work([]complex128) ([]complex128, error)
}

// Complex in, float out
type CFWorker interface {
	Work([]complex128) ([]float64, error)
}

type FFWorker interface {
	Work([]float64) ([]float64, error)
}

type CCFunc func([]complex128) ([]complex128, error)

func (f CCFunc) Work(in []complex128) ([]complex128, error) { return f(in) }

type CFFunc func([]complex128) ([]float64, error)

func (f CFFunc) Work(in []complex128) ([]float64, error) { return f(in) }

type FFFunc func([]float64) ([]float64, error)

func (f FFFunc) Work(in []float64) ([]float64, error) { return f(in) }
