package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// CosOp represents output = cos(x).
//
// Backward: grad_x = -outputGrad * sin(x).
type CosOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewCosOp creates a new CosOp.
func NewCosOp(x, output *tensor.RawTensor) *CosOp {
	return &CosOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward computes the input gradient for the cosine.
func (op *CosOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := backend.Mul(outputGrad, backend.Sin(op.inputs[0]))
	return []*tensor.RawTensor{backend.MulScalar(grad, -1.0)}
}

// Inputs returns the input tensor.
func (op *CosOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the output tensor cos(x).
func (op *CosOp) Output() *tensor.RawTensor { return op.output }
