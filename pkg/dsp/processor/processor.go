// Package processor chains sample-rate-aware DSP blocks over finite buffers.
package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/norasector/dsped/pkg/dsp/viz"
)

var ErrChainMismatch = errors.New("block chain mismatch")

type Processor struct {
	Name        string
	InputName   string
	blocks      []*DSPWorker
	initialized bool
	inputPlots  []viz.PlotType

	cInput []complex128
}

func NewProcessor(name, inputName string, inputPlots ...viz.PlotType) *Processor {
	ret := &Processor{
		Name:       name,
		InputName:  inputName,
		inputPlots: inputPlots,
	}

	return ret
}

func (p *Processor) AddBlock(worker *DSPWorker) {
	p.blocks = append(p.blocks, worker)
	p.initialized = false
}

// Initialize checks that each block consumes the data type and rate the
// previous one produces.
func (p *Processor) Initialize() error {
	if p.initialized {
		return nil
	}
	if len(p.blocks) < 1 {
		return fmt.Errorf("%s: must specify at least 1 block: %w", p.Name, ErrChainMismatch)
	}

	cur := p.blocks[0]
	for i := 1; i < len(p.blocks); i++ {
		next := p.blocks[i]

		if cur.outputDataType != next.inputDataType {
			return fmt.Errorf("cur: %s next %s data type mismatch (%s %s): %w", cur.Name, next.Name, cur.outputDataType, next.inputDataType, ErrChainMismatch)
		}
		if cur.OutputRate != next.InputRate {
			return fmt.Errorf("cur: %s next %s rate mismatch (%g %g): %w", cur.Name, next.Name, cur.OutputRate, next.InputRate, ErrChainMismatch)
		}

		cur = next
	}

	p.initialized = true

	return nil
}

func (p *Processor) InputRate() float64 {
	if len(p.blocks) == 0 {
		return 0
	}
	return p.blocks[0].InputRate
}

func (p *Processor) OutputRate() float64 {
	if len(p.blocks) == 0 {
		return 0
	}
	return p.blocks[len(p.blocks)-1].OutputRate
}

// processData runs every block in order, recording <block>_duration in
// microseconds into metrics.
func (p *Processor) processData(cmplxInput []complex128, expectedOutputType DataType, metrics map[string]interface{}) ([]complex128, []float64, error) {
	if err := p.Initialize(); err != nil {
		return nil, nil, err
	}
	if len(cmplxInput) == 0 {
		return nil, nil, errors.New("must specify input")
	}
	if p.blocks[0].inputDataType != DataTypeComplex {
		return nil, nil, fmt.Errorf("invalid input type: got %s expected %s: %w", p.blocks[0].inputDataType, DataTypeComplex, ErrChainMismatch)
	}
	if last := p.blocks[len(p.blocks)-1]; last.outputDataType != expectedOutputType {
		return nil, nil, fmt.Errorf("invalid output type: got %s expected %s: %w", last.outputDataType, expectedOutputType, ErrChainMismatch)
	}

	p.cInput = cmplxInput

	var floatInput []float64
	var cmplxOutput []complex128
	var floatOutput []float64

	for _, block := range p.blocks {
		var err error
		start := time.Now()

		switch {
		case block.ccWorker != nil:
			cmplxOutput, err = block.ccWorker.Work(cmplxInput)
		case block.cfWorker != nil:
			floatOutput, err = block.cfWorker.Work(cmplxInput)
		case block.ffWorker != nil:
			floatOutput, err = block.ffWorker.Work(floatInput)
		default:
			return nil, nil, fmt.Errorf("%s has no worker", block.Name)
		}
		if metrics != nil {
			metrics[fmt.Sprintf("%s_duration", block.Name)] = time.Since(start).Microseconds()
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", block.Name, err)
		}

		block.cOutput = cmplxOutput
		block.fOutput = floatOutput

		cmplxInput = cmplxOutput
		floatInput = floatOutput
		cmplxOutput = nil
		floatOutput = nil
	}

	return cmplxInput, floatInput, nil
}

func (p *Processor) ProcessComplexToComplex(input []complex128, metrics map[string]interface{}) ([]complex128, error) {
	out, _, err := p.processData(input, DataTypeComplex, metrics)
	return out, err
}

func (p *Processor) ProcessComplexToFloat(input []complex128, metrics map[string]interface{}) ([]float64, error) {
	_, out, err := p.processData(input, DataTypeFloat, metrics)
	return out, err
}

// PlotRequests describes the plots asked for by the processor and its blocks,
// using the buffers of the last run.
func (p *Processor) PlotRequests(nfft int) []viz.Request {
	var ret []viz.Request
	if len(p.cInput) > 0 {
		for _, tp := range p.inputPlots {
			ret = append(ret, viz.Request{
				Type:       tp,
				Title:      p.InputName,
				Samples:    p.cInput,
				SampleRate: p.InputRate(),
				NFFT:       nfft,
			})
		}
	}

	for _, block := range p.blocks {
		if block.cOutput == nil && block.fOutput == nil {
			continue
		}
		for _, tp := range block.plotTypes {
			req := viz.Request{
				Type:       tp,
				Title:      block.DisplayName,
				SampleRate: block.OutputRate,
				NFFT:       nfft,
			}
			if block.outputDataType == DataTypeFloat {
				req.Real = block.fOutput
			} else {
				req.Samples = block.cOutput
			}
			ret = append(ret, req)
		}
	}
	return ret
}
