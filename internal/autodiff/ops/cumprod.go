package ops

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// CumprodExclusiveOp represents the exclusive cumulative product along the
// last dimension: y[i] = prod(x[:i]), y[0] = 1.
//
// Backward: dL/dx[j] = sum over i > j of grad[i] * y[i] / x[j], computed per
// row with a reverse suffix sum. The division is safe for the compositing
// use case because the forward input is 1 - alpha + 1e-10, bounded away
// from zero.
type CumprodExclusiveOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewCumprodExclusiveOp creates a new CumprodExclusiveOp.
func NewCumprodExclusiveOp(x, output *tensor.RawTensor) *CumprodExclusiveOp {
	return &CumprodExclusiveOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward computes the input gradient with a per-row suffix sum.
func (op *CumprodExclusiveOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	shape := x.Shape()
	n := shape[len(shape)-1]
	rows := shape.NumElements() / n

	grad, err := tensor.NewRaw(shape.Clone(), x.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("cumprodexclusive backward: failed to allocate gradient: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		cumprodBackwardKernel(grad.AsFloat32(), outputGrad.AsFloat32(), x.AsFloat32(), op.output.AsFloat32(), rows, n)
	case tensor.Float64:
		cumprodBackwardKernel(grad.AsFloat64(), outputGrad.AsFloat64(), x.AsFloat64(), op.output.AsFloat64(), rows, n)
	default:
		panic("cumprodexclusive backward: unsupported dtype " + x.DType().String())
	}
	return []*tensor.RawTensor{grad}
}

func cumprodBackwardKernel[T float32 | float64](grad, outGrad, x, y []T, rows, n int) {
	for r := 0; r < rows; r++ {
		base := r * n
		// suffix accumulates sum_{i>j} outGrad[i]*y[i] walking j downward.
		var suffix float64
		for j := n - 1; j >= 0; j-- {
			grad[base+j] = T(suffix / float64(x[base+j]))
			suffix += float64(outGrad[base+j]) * float64(y[base+j])
		}
	}
}

// Inputs returns the input tensor.
func (op *CumprodExclusiveOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the scanned tensor.
func (op *CumprodExclusiveOp) Output() *tensor.RawTensor { return op.output }
