package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// LogOp represents output = ln(x).
//
// Backward: grad_x = outputGrad / x.
type LogOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewLogOp creates a new LogOp.
func NewLogOp(x, output *tensor.RawTensor) *LogOp {
	return &LogOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward computes the input gradient for the logarithm.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.inputs[0])}
}

// Inputs returns the input tensor.
func (op *LogOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the output tensor ln(x).
func (op *LogOp) Output() *tensor.RawTensor { return op.output }
