package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// MeanOp represents a full reduction to the scalar mean: output = mean(x).
//
// Backward: the scalar gradient is broadcast to every element and divided by
// the element count.
type MeanOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(x, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward broadcasts the gradient scaled by 1/N.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	n := float64(x.Shape().NumElements())
	grad := backend.Mul(onesLike(x, backend), backend.DivScalar(outputGrad, n))
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *MeanOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the scalar mean.
func (op *MeanOp) Output() *tensor.RawTensor { return op.output }
