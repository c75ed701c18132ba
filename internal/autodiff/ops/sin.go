package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// SinOp represents output = sin(x).
//
// Backward: grad_x = outputGrad * cos(x).
type SinOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSinOp creates a new SinOp.
func NewSinOp(x, output *tensor.RawTensor) *SinOp {
	return &SinOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward computes the input gradient for the sine.
func (op *SinOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Cos(op.inputs[0]))}
}

// Inputs returns the input tensor.
func (op *SinOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the output tensor sin(x).
func (op *SinOp) Output() *tensor.RawTensor { return op.output }
