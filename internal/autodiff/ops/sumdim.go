package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// SumDimOp represents a reduction along a single dimension.
//
// Backward: the gradient is broadcast back along the reduced dimension.
type SumDimOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int // normalized
}

// NewSumDimOp creates a new SumDimOp. dim must already be normalized.
func NewSumDimOp(x, output *tensor.RawTensor, dim int) *SumDimOp {
	return &SumDimOp{inputs: []*tensor.RawTensor{x}, output: output, dim: dim}
}

// Backward broadcasts the gradient along the reduced dimension.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{broadcastAlongDim(outputGrad, op.inputs[0].Shape(), op.dim, backend)}
}

// Inputs returns the input tensor.
func (op *SumDimOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the reduced tensor.
func (op *SumDimOp) Output() *tensor.RawTensor { return op.output }

// broadcastAlongDim expands a reduced gradient back to the input shape,
// regardless of whether the forward pass kept the reduced dimension.
func broadcastAlongDim(grad *tensor.RawTensor, inputShape tensor.Shape, dim int, backend tensor.Backend) *tensor.RawTensor {
	keptShape := inputShape.Clone()
	keptShape[dim] = 1
	withDim := backend.Reshape(grad, keptShape)
	return backend.Expand(withDim, inputShape)
}
