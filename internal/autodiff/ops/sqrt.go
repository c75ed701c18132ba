package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// SqrtOp represents output = sqrt(x).
//
// Backward: grad_x = outputGrad / (2 * sqrt(x)), reusing the forward output.
type SqrtOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(x, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward computes the input gradient for the square root.
func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	denom := backend.MulScalar(op.output, 2.0)
	return []*tensor.RawTensor{backend.Div(outputGrad, denom)}
}

// Inputs returns the input tensor.
func (op *SqrtOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the output tensor sqrt(x).
func (op *SqrtOp) Output() *tensor.RawTensor { return op.output }
