package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// AddScalarOp represents output = x + s (or x - s); the gradient passes
// through unchanged.
type AddScalarOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(x, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward passes the gradient through unchanged.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad.Clone()}
}

// Inputs returns the input tensor.
func (op *AddScalarOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the shifted tensor.
func (op *AddScalarOp) Output() *tensor.RawTensor { return op.output }

// MulScalarOp represents output = x * s.
//
// Backward: grad_x = outputGrad * s.
type MulScalarOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	scalar any
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(x, output *tensor.RawTensor, scalar any) *MulScalarOp {
	return &MulScalarOp{inputs: []*tensor.RawTensor{x}, output: output, scalar: scalar}
}

// Backward scales the gradient by the same constant.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// Inputs returns the input tensor.
func (op *MulScalarOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the scaled tensor.
func (op *MulScalarOp) Output() *tensor.RawTensor { return op.output }

// DivScalarOp represents output = x / s.
//
// Backward: grad_x = outputGrad / s.
type DivScalarOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	scalar any
}

// NewDivScalarOp creates a new DivScalarOp.
func NewDivScalarOp(x, output *tensor.RawTensor, scalar any) *DivScalarOp {
	return &DivScalarOp{inputs: []*tensor.RawTensor{x}, output: output, scalar: scalar}
}

// Backward divides the gradient by the same constant.
func (op *DivScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.DivScalar(outputGrad, op.scalar)}
}

// Inputs returns the input tensor.
func (op *DivScalarOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the scaled tensor.
func (op *DivScalarOp) Output() *tensor.RawTensor { return op.output }

// MaximumScalarOp represents output = max(x, s).
//
// Backward: the gradient flows only where x was not clamped, which is exactly
// where output == x.
type MaximumScalarOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewMaximumScalarOp creates a new MaximumScalarOp.
func NewMaximumScalarOp(x, output *tensor.RawTensor) *MaximumScalarOp {
	return &MaximumScalarOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward masks the gradient to the unclamped elements.
func (op *MaximumScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	mask, err := tensor.NewRaw(x.Shape().Clone(), x.DType(), backend.Device())
	if err != nil {
		panic("maximumscalar backward: failed to allocate mask: " + err.Error())
	}

	switch x.DType() {
	case tensor.Float32:
		in, out, m := x.AsFloat32(), op.output.AsFloat32(), mask.AsFloat32()
		for i := range m {
			if in[i] == out[i] {
				m[i] = 1
			}
		}
	case tensor.Float64:
		in, out, m := x.AsFloat64(), op.output.AsFloat64(), mask.AsFloat64()
		for i := range m {
			if in[i] == out[i] {
				m[i] = 1
			}
		}
	default:
		panic("maximumscalar backward: unsupported dtype " + x.DType().String())
	}

	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

// Inputs returns the input tensor.
func (op *MaximumScalarOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the clamped tensor.
func (op *MaximumScalarOp) Output() *tensor.RawTensor { return op.output }
