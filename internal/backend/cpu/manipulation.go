package cpu

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// Cat concatenates tensors along an existing dimension. All inputs must agree
// on every other dimension and on dtype.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors to concatenate")
	}
	first := tensors[0]
	dim = first.Shape().NormalizeDim(dim)

	catSize := 0
	for _, t := range tensors {
		shape := t.Shape()
		if len(shape) != len(first.Shape()) {
			panic(fmt.Sprintf("cat: rank mismatch %v vs %v", first.Shape(), shape))
		}
		if t.DType() != first.DType() {
			panic(fmt.Sprintf("cat: dtype mismatch %s vs %s", first.DType(), t.DType()))
		}
		for i, s := range shape {
			if i != dim && s != first.Shape()[i] {
				panic(fmt.Sprintf("cat: shapes %v and %v differ outside dimension %d", first.Shape(), shape, dim))
			}
		}
		catSize += shape[dim]
	}

	outShape := first.Shape().Clone()
	outShape[dim] = catSize
	result, err := tensor.NewRaw(outShape, first.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cat: failed to create result tensor: %v", err))
	}

	// Copy row blocks: each input contributes a contiguous run of
	// blockBytes per outer index.
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= outShape[i]
	}
	inner := 1
	for i := dim + 1; i < len(outShape); i++ {
		inner *= outShape[i]
	}
	elemSize := first.DType().Size()
	outRowBytes := catSize * inner * elemSize

	dst := result.Data()
	colOffset := 0
	for _, t := range tensors {
		src := t.Data()
		blockBytes := t.Shape()[dim] * inner * elemSize
		for o := 0; o < outer; o++ {
			copy(dst[o*outRowBytes+colOffset:], src[o*blockBytes:(o+1)*blockBytes])
		}
		colOffset += blockBytes
	}
	return result
}

// Unsqueeze inserts a dimension of size 1 at the given index.
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim + 1
	}
	if dim < 0 || dim > ndim {
		panic(fmt.Sprintf("unsqueeze: dimension %d out of range for shape %v", dim, shape))
	}

	newShape := make(tensor.Shape, 0, ndim+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)

	result := x.Clone()
	if err := result.SetShape(newShape); err != nil {
		panic(fmt.Sprintf("unsqueeze: %v", err))
	}
	return result
}

// Squeeze removes a dimension of size 1 at the given index.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = shape.NormalizeDim(dim)
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d of shape %v has size %d, not 1", dim, shape, shape[dim]))
	}

	newShape := make(tensor.Shape, 0, len(shape)-1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, shape[dim+1:]...)

	result := x.Clone()
	if err := result.SetShape(newShape); err != nil {
		panic(fmt.Sprintf("squeeze: %v", err))
	}
	return result
}
