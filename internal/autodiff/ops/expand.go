package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// ExpandOp represents a broadcast to a larger shape.
//
// Backward: the gradient is summed over the broadcast dimensions.
type ExpandOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewExpandOp creates a new ExpandOp.
func NewExpandOp(input, output *tensor.RawTensor) *ExpandOp {
	return &ExpandOp{inputs: []*tensor.RawTensor{input}, output: output}
}

// Backward reduces the gradient back to the input's shape.
func (op *ExpandOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{reduceBroadcast(outputGrad, op.inputs[0].Shape(), backend)}
}

// Inputs returns the input tensor.
func (op *ExpandOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the expanded tensor.
func (op *ExpandOp) Output() *tensor.RawTensor { return op.output }
