package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// SumOp represents a full reduction to a scalar: output = sum(x).
//
// Backward: the scalar gradient is broadcast to every element.
type SumOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward broadcasts the gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	grad := backend.Mul(onesLike(x, backend), outputGrad)
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *SumOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the scalar sum.
func (op *SumOp) Output() *tensor.RawTensor { return op.output }
