package ops

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// CatOp represents concatenation along an existing dimension.
//
// Backward: the gradient is split back into the per-input slices.
type CatOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int // normalized
}

// NewCatOp creates a new CatOp. dim must already be normalized.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	return &CatOp{
		inputs: append([]*tensor.RawTensor(nil), inputs...),
		output: output,
		dim:    dim,
	}
}

// Backward slices the gradient back into per-input pieces.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	outShape := op.output.Shape()
	outer := 1
	for i := 0; i < op.dim; i++ {
		outer *= outShape[i]
	}
	inner := 1
	for i := op.dim + 1; i < len(outShape); i++ {
		inner *= outShape[i]
	}
	elemSize := op.output.DType().Size()
	outRowBytes := outShape[op.dim] * inner * elemSize

	grads := make([]*tensor.RawTensor, len(op.inputs))
	src := outputGrad.Data()
	colOffset := 0
	for idx, input := range op.inputs {
		grad, err := tensor.NewRaw(input.Shape().Clone(), input.DType(), backend.Device())
		if err != nil {
			panic(fmt.Sprintf("cat backward: failed to allocate gradient: %v", err))
		}
		blockBytes := input.Shape()[op.dim] * inner * elemSize
		dst := grad.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*blockBytes:(o+1)*blockBytes], src[o*outRowBytes+colOffset:])
		}
		colOffset += blockBytes
		grads[idx] = grad
	}
	return grads
}

// Inputs returns the concatenated input tensors.
func (op *CatOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the concatenated tensor.
func (op *CatOp) Output() *tensor.RawTensor { return op.output }
