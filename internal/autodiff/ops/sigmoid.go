package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// SigmoidOp represents output = 1 / (1 + e^-x).
//
// Backward: grad_x = outputGrad * y * (1 - y), reusing the forward output.
type SigmoidOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(x, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward computes the input gradient for the logistic function.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	oneMinusY := backend.SubScalar(backend.MulScalar(y, -1.0), -1.0) // 1 - y
	grad := backend.Mul(outputGrad, backend.Mul(y, oneMinusY))
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *SigmoidOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the activated tensor.
func (op *SigmoidOp) Output() *tensor.RawTensor { return op.output }
