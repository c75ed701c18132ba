package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// ExpOp represents output = e^x.
//
// Backward: grad_x = outputGrad * e^x, reusing the forward output.
type ExpOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewExpOp creates a new ExpOp.
func NewExpOp(x, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward computes the input gradient for the exponential.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// Inputs returns the input tensor.
func (op *ExpOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the output tensor e^x.
func (op *ExpOp) Output() *tensor.RawTensor { return op.output }
