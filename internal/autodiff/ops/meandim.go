package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// MeanDimOp represents an average along a single dimension.
//
// Backward: the gradient is broadcast back along the reduced dimension and
// divided by its size.
type MeanDimOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int // normalized
}

// NewMeanDimOp creates a new MeanDimOp. dim must already be normalized.
func NewMeanDimOp(x, output *tensor.RawTensor, dim int) *MeanDimOp {
	return &MeanDimOp{inputs: []*tensor.RawTensor{x}, output: output, dim: dim}
}

// Backward broadcasts the gradient scaled by 1/size(dim).
func (op *MeanDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inputShape := op.inputs[0].Shape()
	scaled := backend.DivScalar(outputGrad, float64(inputShape[op.dim]))
	return []*tensor.RawTensor{broadcastAlongDim(scaled, inputShape, op.dim, backend)}
}

// Inputs returns the input tensor.
func (op *MeanDimOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the reduced tensor.
func (op *MeanDimOp) Output() *tensor.RawTensor { return op.output }
