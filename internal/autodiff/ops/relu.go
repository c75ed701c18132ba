package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// ReLUOp represents output = max(0, x).
//
// Backward: the gradient flows only where x > 0, which is exactly where the
// output is positive.
type ReLUOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward masks the gradient to positive activations.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	mask, err := tensor.NewRaw(op.output.Shape().Clone(), op.output.DType(), backend.Device())
	if err != nil {
		panic("relu backward: failed to allocate mask: " + err.Error())
	}

	switch op.output.DType() {
	case tensor.Float32:
		out, m := op.output.AsFloat32(), mask.AsFloat32()
		for i := range m {
			if out[i] > 0 {
				m[i] = 1
			}
		}
	case tensor.Float64:
		out, m := op.output.AsFloat64(), mask.AsFloat64()
		for i := range m {
			if out[i] > 0 {
				m[i] = 1
			}
		}
	default:
		panic("relu backward: unsupported dtype " + op.output.DType().String())
	}

	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

// Inputs returns the input tensor.
func (op *ReLUOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the activated tensor.
func (op *ReLUOp) Output() *tensor.RawTensor { return op.output }
